package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Role represents the workflow role a user holds. Roles drive both
// authorization at the API edge and recipient resolution when activity is
// fanned out into notifications.
type Role string

// Possible user roles.
const (
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// emailRegex is a basic regex for email validation.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents an account that can create, work on, review, and be
// notified about tasks.
type User struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	HashedPassword string    `json:"-"` // Never expose in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given name, email, and role.
// It generates a new UUID for the user ID and sets timestamps.
// The password hash must be set separately by the caller.
// Returns an error if validation fails.
func NewUser(name, email string, role Role) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrInvalidID
	}

	if u.Name == "" {
		return ErrUserNameEmpty
	}

	if u.Email == "" || !emailRegex.MatchString(u.Email) {
		return ErrInvalidEmail
	}

	if !isValidRole(u.Role) {
		return ErrInvalidRole
	}

	return nil
}

// IsManager reports whether the user holds a reviewing role, meaning the
// user approves or rejects completed work.
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}

// isValidRole checks if the given role is a valid Role.
func isValidRole(role Role) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	default:
		return false
	}
}
