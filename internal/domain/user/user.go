package user

import (
	"context"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Role is a user's access level.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

var (
	// ErrNotFound is returned when a user identifier does not resolve.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when the email or phone is already registered.
	ErrDuplicate = errors.New("user with this email or phone already exists")
)

// User is a registered customer or administrator.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash []byte
	Role         Role
	CreatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Repository defines persistence operations for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// FindByEmailOrPhone resolves a login identifier, which may be either
	// an email address or a phone number.
	FindByEmailOrPhone(ctx context.Context, identifier string) (*User, error)
	Update(ctx context.Context, id string, fields UpdateFields) error
	List(ctx context.Context) ([]User, error)
}

// UpdateFields holds the profile fields a user may change. Nil means
// "leave unchanged".
type UpdateFields struct {
	Name  *string
	Email *string
	Phone *string
}

// Indian mobile numbers: ten digits starting 6-9, optional +91 prefix.
var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil && !strings.ContainsAny(s, " <>")
}

// ValidPhone reports whether s is a valid phone number after stripping
// the +91 prefix, spaces, and dashes.
func ValidPhone(s string) bool {
	s = strings.NewReplacer("+91", "", "-", "", " ", "").Replace(s)
	return phonePattern.MatchString(s)
}
