// Package policy implements the owner-or-admin rule. Every function is pure
// and total: each input combination yields allow or deny.
package policy

import (
	"todo-api/internal/apperrors"
	"todo-api/internal/models"
)

// CanAccessTask decides whether identity may read or mutate a task owned by
// ownerID. Tasks without an owner were created anonymously and are open to
// every requester.
func CanAccessTask(identity models.Identity, ownerID *uint) bool {
	if ownerID == nil {
		return true
	}
	if identity.IsAdmin() {
		return true
	}
	return !identity.IsAnonymous() && identity.UserID == *ownerID
}

// CanManageUsers reports whether identity may list or delete other users
func CanManageUsers(identity models.Identity) bool {
	return identity.IsAdmin()
}

// ListScope returns the owner restriction for a task listing, nil meaning all tasks
func ListScope(identity models.Identity) *uint {
	if identity.IsAdmin() || identity.IsAnonymous() {
		return nil
	}
	id := identity.UserID
	return &id
}

// CheckUserDeletion returns the error that blocks identity from deleting targetID, if any
func CheckUserDeletion(identity models.Identity, targetID uint) error {
	if !CanManageUsers(identity) {
		return apperrors.Forbidden("admin access required")
	}
	if identity.UserID == targetID {
		return apperrors.ErrSelfDelete
	}
	return nil
}
