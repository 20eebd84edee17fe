package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/karyanastore/storefront/internal/domain/user"
)

const (
	createUserSQL = `INSERT INTO users (id, name, email, phone, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	userColumns = `id, name, email, phone, password_hash, role, created_at`

	getUserByIDSQL = `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	findUserByEmailOrPhoneSQL = `SELECT ` + userColumns + ` FROM users
		WHERE LOWER(email) = LOWER($1) OR phone = $1`

	updateUserSQL = `UPDATE users SET
		name  = COALESCE($2, name),
		email = COALESCE($3, email),
		phone = COALESCE($4, phone)
		WHERE id = $1`

	listUsersSQL = `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

var _ user.Repository = (*UserRepository)(nil)

// UserRepository implements user.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create inserts a new user. A clash on the email or phone unique indexes
// surfaces as user.ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	var email, phone *string
	if u.Email != "" {
		email = &u.Email
	}
	if u.Phone != "" {
		phone = &u.Phone
	}

	_, err := r.pool.Exec(ctx, createUserSQL,
		u.ID, u.Name, email, phone, u.PasswordHash, string(u.Role), u.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicate
		}
		return fmt.Errorf("creating user %q: %w", u.ID, err)
	}
	return nil
}

// GetByID returns a single user, or user.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, getUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", id, err)
	}
	return &u, nil
}

// FindByEmailOrPhone resolves a login identifier to a user.
func (r *UserRepository) FindByEmailOrPhone(ctx context.Context, identifier string) (*user.User, error) {
	rows, err := r.pool.Query(ctx, findUserByEmailOrPhoneSQL, identifier)
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, scanUser)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return &u, nil
}

// Update changes only the provided profile fields.
func (r *UserRepository) Update(ctx context.Context, id string, fields user.UpdateFields) error {
	tag, err := r.pool.Exec(ctx, updateUserSQL, id, fields.Name, fields.Email, fields.Phone)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrDuplicate
		}
		return fmt.Errorf("updating user %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}
	return nil
}

// List returns all users, oldest first.
func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx, listUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return pgx.CollectRows(rows, scanUser)
}

func scanUser(row pgx.CollectableRow) (user.User, error) {
	var (
		u     user.User
		email *string
		phone *string
		role  string
	)
	err := row.Scan(&u.ID, &u.Name, &email, &phone, &u.PasswordHash, &role, &u.CreatedAt)
	if email != nil {
		u.Email = *email
	}
	if phone != nil {
		u.Phone = *phone
	}
	u.Role = user.Role(role)
	return u, err
}
