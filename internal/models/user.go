package models

import (
	"strings"
	"time"
)

// Role represents the access level of a user
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a user in the system
type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"column:password_hash;not null"`
	Role         Role      `json:"role" gorm:"not null;default:'user'"`
	CreatedAt    time.Time `json:"createdAt" gorm:"autoCreateTime"`
}

// TableName specifies the table name for User Model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NormalizeEmail trims and case-folds an email so lookups and the unique
// index agree on what counts as the same address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Identity is the requester attached to a request once a session is resolved.
// The zero value is the anonymous requester used when authentication is off.
type Identity struct {
	UserID uint   `json:"id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// IsAnonymous reports whether no session backs this identity
func (i Identity) IsAnonymous() bool {
	return i.UserID == 0
}

// IdentityOf builds the session identity for a stored user
func IdentityOf(u User) Identity {
	return Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}
