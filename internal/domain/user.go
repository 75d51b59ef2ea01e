package domain

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the authorization level of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Username and password bounds. bcrypt ignores input past 72 bytes.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 50
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// User is a registered account.
type User struct {
	ID             uuid.UUID `json:"id"        db:"id"`
	Username       string    `json:"username"  db:"username"`
	Email          string    `json:"email"     db:"email"`
	Role           Role      `json:"role"      db:"role"`
	Password       string    `json:"-"         db:"-"` // plaintext, only set during registration
	HashedPassword string    `json:"-"         db:"password_hash"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

// NewUser creates a user with role "user". The caller hashes Password and
// clears it before the user is stored.
func NewUser(username, password, email string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Username:  strings.TrimSpace(username),
		Email:     strings.TrimSpace(email),
		Role:      RoleUser,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks the user's fields. A plaintext password is length-checked
// when present; otherwise a hash must already be set.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return NewValidationError("id", "user ID cannot be empty")
	}
	if n := len(u.Username); n < MinUsernameLength || n > MaxUsernameLength {
		return NewValidationError("username", "username must be 3 to 50 characters")
	}
	if !usernamePattern.MatchString(u.Username) {
		return NewValidationError("username", "username may contain letters, digits, '.', '_' and '-'")
	}
	if u.Email != "" {
		if _, err := mail.ParseAddress(u.Email); err != nil {
			return NewValidationError("email", "invalid email format")
		}
	}
	if !u.Role.Valid() {
		return NewValidationError("role", "must be one of user, admin")
	}

	if u.Password != "" {
		if len(u.Password) < MinPasswordLength {
			return NewValidationError("password", "password must be at least 8 characters long")
		}
		if len(u.Password) > MaxPasswordLength {
			return NewValidationError("password", "password must be at most 72 characters long")
		}
	} else if u.HashedPassword == "" {
		return NewValidationError("password", "password cannot be empty")
	}
	return nil
}

// IsAdmin reports whether u holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
