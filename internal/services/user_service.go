package services

import (
	"context"
	"errors"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"
	"todo-api/internal/policy"

	"github.com/sirupsen/logrus"
)

type UserService struct {
	users    UserRepository
	sessions Sessions
	auth     *AuthService
	log      *logrus.Logger
}

func NewUserService(users UserRepository, sessions Sessions, auth *AuthService, log *logrus.Logger) *UserService {
	return &UserService{users: users, sessions: sessions, auth: auth, log: log}
}

// List returns every account; admins only
func (s *UserService) List(ctx context.Context, identity models.Identity) ([]models.User, error) {
	if !policy.CanManageUsers(identity) {
		return nil, apperrors.Forbidden("admin access required")
	}
	return s.users.ListUsers(ctx)
}

// Delete removes an account, its tasks and its live sessions
func (s *UserService) Delete(ctx context.Context, identity models.Identity, id uint) error {
	if err := policy.CheckUserDeletion(identity, id); err != nil {
		return err
	}
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.sessions.RevokeUser(id)
	s.log.WithFields(logrus.Fields{"user_id": id, "admin_id": identity.UserID}).Info("user deleted")
	return nil
}

// SeedAdmin makes sure an admin account exists for email. An existing
// account is promoted; its password is left alone.
func (s *UserService) SeedAdmin(ctx context.Context, email, password string) error {
	email = models.NormalizeEmail(email)
	existing, err := s.users.GetUserByEmail(ctx, email)
	var nf *apperrors.NotFoundError
	switch {
	case err == nil:
		if existing.IsAdmin() {
			return nil
		}
		s.log.WithField("user_id", existing.ID).Info("promoting seeded account to admin")
		return s.users.SetRole(ctx, existing.ID, models.RoleAdmin)
	case errors.As(err, &nf):
		if err := s.auth.validateRequest(RegisterRequest{Email: email, Password: password}); err != nil {
			return err
		}
		_, err := s.auth.createUser(ctx, email, password, models.RoleAdmin)
		return err
	default:
		return err
	}
}
