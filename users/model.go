package users

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// KnownRoles lists the roles a user record may carry.
var KnownRoles = []string{RoleUser, RoleAdmin}

// IsKnownRole reports whether role is one of KnownRoles.
func IsKnownRole(role string) bool {
	for _, r := range KnownRoles {
		if r == role {
			return true
		}
	}
	return false
}

// User is a directory record. PasswordHash is never serialized.
type User struct {
	UID          string    `json:"uid"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Patch lists optional field updates; nil fields are left untouched.
type Patch struct {
	Username     *string
	FirstName    *string
	LastName     *string
	Role         *string
	IsVerified   *bool
	PasswordHash *string
}

func (p Patch) apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}
