package model

import (
	"strings"
	"time"
)

// Role is the closed set of access levels an account can hold.  Values
// are stored verbatim in the users.role column.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ParseRole maps a raw string onto a Role.  Matching ignores case and
// surrounding whitespace; anything outside the enumeration is rejected.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Valid reports whether r is one of the enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// IsAdmin reports whether r grants administrative access.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// User represents an account record as stored in the `users` table.
// The wishlist lives in `wishlist_items` and is only populated when a
// caller asks for it.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Name         – display name, copied onto reviews at creation time.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hash; never serialized.
//	Role         – access level, see Role.
//	Wishlist     – product ids saved by the user.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Wishlist     []uint64  `json:"wishlist"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// NormalizeEmail lower-cases and trims an email so lookups and the
// unique index agree on a single spelling.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
