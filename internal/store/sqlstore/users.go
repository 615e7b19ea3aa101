package sqlstore

import (
	"context"
	"errors"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"

	"gorm.io/gorm"
)

var errEmailTaken = apperrors.Conflict("email already registered")

// CreateUser inserts a user. A taken email yields a ConflictError.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	user.Email = models.NormalizeEmail(user.Email)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return errEmailTaken
		}
		return tx.Create(user).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errEmailTaken
	}
	if err != nil {
		return apperrors.Store("create user", err)
	}
	return nil
}

// GetUserByEmail looks a user up by normalised email
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", 0)
		}
		return nil, apperrors.Store("get user", err)
	}
	return &user, nil
}

// GetUserByID returns one user or a NotFoundError
func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, apperrors.Store("get user", err)
	}
	return &user, nil
}

// ListUsers returns every user ordered by id
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&users).Error; err != nil {
		return nil, apperrors.Store("list users", err)
	}
	return users, nil
}

// DeleteUser removes a user together with every task they own
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the foreign key cascades too; deleting explicitly keeps the
		// behaviour when a sqlite connection runs with foreign keys off
		if err := tx.Where("owner_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.NotFound("user", id)
		}
		return nil
	})
	return apperrors.Store("delete user", err)
}

// SetRole changes a user's role
func (s *Store) SetRole(ctx context.Context, id uint, role models.Role) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return apperrors.Store("set role", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.NotFound("user", id)
	}
	return nil
}
