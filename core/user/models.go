package user

import (
	"time"

	"github.com/volatiletech/null/v8"
	"golang.org/x/crypto/bcrypt"

	"github.com/hatag-tech/elearning/core"
)

type Role string

// Roles
const (
	RoleStudent    Role = "Student"
	RoleInstructor Role = "Instructor"
	RoleAdmin      Role = "Admin"
)

var (
	Roles = []Role{RoleStudent, RoleInstructor, RoleAdmin}

	// PasswordHashCost is the bcrypt cost used by SetPassword.
	PasswordHashCost = bcrypt.DefaultCost
)

func (r Role) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	Role         Role        `json:"role"`
	Username     string      `json:"username,omitempty"`
	PasswordHash []byte      `json:"password_hash,omitempty"`
	ProfilePic   null.String `json:"profile_pic"`
	Bio          string      `json:"bio,omitempty"`
	CreatedAt    time.Time   `json:"created_at"` // UTC
	UpdatedAt    time.Time   `json:"updated_at"` // UTC
	LastLogin    null.Time   `json:"last_login"` // UTC
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), PasswordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) HasPassword() bool { return len(u.PasswordHash) > 0 }

func (u *User) IsStudent() bool    { return u.Role == RoleStudent }
func (u *User) IsInstructor() bool { return u.Role == RoleInstructor }
func (u *User) IsAdmin() bool      { return u.Role == RoleAdmin }

// DisplayName returns the username, else the email, else fallback.
func (u User) DisplayName(fallback string) string {
	if u.Username != "" {
		return u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return fallback
}

// Persistable returns the user as it may be written to durable storage:
// a session-scoped profile picture handle is dropped.
func (u User) Persistable() User {
	if u.ProfilePic.Valid && core.IsEphemeralURL(u.ProfilePic.String) {
		u.ProfilePic = null.String{}
	}
	return u
}

type LoginInput struct {
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

// NewUser contains information needed to register a new User.
type NewUser struct {
	Email    string `json:"email" validate:"required,email"`
	Role     Role   `json:"role" validate:"required,selfrole"`
	Password string `json:"password" validate:"required"`
	Username string `json:"username" validate:"omitempty,min=3,max=20"`
}

func (nu *NewUser) clean() {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Username = core.CleanString(nu.Username)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Nil fields are left untouched.
type UpdateUser struct {
	Email      *string      `json:"email" validate:"omitempty,email"`
	Username   *string      `json:"username" validate:"omitempty,min=3,max=20"`
	Password   *string      `json:"password"`
	ProfilePic *null.String `json:"profile_pic"`
	Bio        *string      `json:"bio"`
}

func (uu *UpdateUser) clean() {
	if uu.Email != nil {
		email := core.CleanString(*uu.Email, true /* lower */)
		uu.Email = &email
	}
	if uu.Username != nil {
		uname := core.CleanString(*uu.Username)
		uu.Username = &uname
	}
}
