package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/karyanastore/storefront/internal/domain/user"
)

const minPasswordLen = 6

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a customer account. Email and phone are each optional,
// but at least one is required to log in later.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)

	switch {
	case req.Name == "":
		respondMessage(w, http.StatusBadRequest, false, "name is required")
		return
	case len(req.Password) < minPasswordLen:
		respondMessage(w, http.StatusBadRequest, false, "password must be at least 6 characters")
		return
	case req.Email == "" && req.Phone == "":
		respondMessage(w, http.StatusBadRequest, false, "email or phone is required")
		return
	case req.Email != "" && !user.ValidEmail(req.Email):
		respondMessage(w, http.StatusBadRequest, false, "invalid email address")
		return
	case req.Phone != "" && !user.ValidPhone(req.Phone):
		respondMessage(w, http.StatusBadRequest, false, "invalid phone number")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, r, errors.Wrap(err, "hash password"))
		return
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         user.RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		UserID  string `json:"user_id"`
	}{true, "registration successful", u.ID})
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// Login verifies credentials against the stored bcrypt hash. The identifier
// may be an email address or a phone number.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.Identifier == "" || req.Password == "" {
		respondMessage(w, http.StatusBadRequest, false, "identifier and password are required")
		return
	}

	u, err := h.users.FindByEmailOrPhone(r.Context(), req.Identifier)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondMessage(w, http.StatusUnauthorized, false, "invalid credentials")
			return
		}
		respondError(w, r, err)
		return
	}
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.Password)) != nil {
		respondMessage(w, http.StatusUnauthorized, false, "invalid credentials")
		return
	}

	respondJSON(w, http.StatusOK, struct {
		Success bool      `json:"success"`
		Message string    `json:"message"`
		UserID  string    `json:"user_id"`
		Role    user.Role `json:"role"`
	}{true, "login successful", u.ID, u.Role})
}

// Profile returns a user's public profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Success bool         `json:"success"`
		User    userResponse `json:"user"`
	}{true, toUserResponse(u)})
}

type updateProfileRequest struct {
	UserID string  `json:"user_id"`
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Phone  *string `json:"phone"`
}

// UpdateProfile changes the provided profile fields; omitted fields keep
// their current values.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		respondMessage(w, http.StatusBadRequest, false, "user_id is required")
		return
	}
	if req.Name == nil && req.Email == nil && req.Phone == nil {
		respondMessage(w, http.StatusBadRequest, false, "nothing to update")
		return
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		respondMessage(w, http.StatusBadRequest, false, "name cannot be empty")
		return
	}
	if req.Email != nil && !user.ValidEmail(*req.Email) {
		respondMessage(w, http.StatusBadRequest, false, "invalid email address")
		return
	}
	if req.Phone != nil && !user.ValidPhone(*req.Phone) {
		respondMessage(w, http.StatusBadRequest, false, "invalid phone number")
		return
	}

	fields := user.UpdateFields{Name: req.Name, Email: req.Email, Phone: req.Phone}
	if err := h.users.Update(r.Context(), req.UserID, fields); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, true, "profile updated")
}

// UserRole returns just the role for a user ID. The storefront UI uses it
// to decide whether to show admin controls.
func (h *Handler) UserRole(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, struct {
		Success bool      `json:"success"`
		Role    user.Role `json:"role"`
	}{true, u.Role})
}
