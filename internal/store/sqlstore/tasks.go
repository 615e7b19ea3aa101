package sqlstore

import (
	"context"
	"errors"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListTasks returns the matching tasks with their owner's email, newest first
// unless the filter asks otherwise.
func (s *Store) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Select("tasks.*, users.email AS owner_email").
		Joins("LEFT JOIN users ON users.id = tasks.owner_id")

	if filter.OwnerID != nil {
		query = query.Where("tasks.owner_id = ?", *filter.OwnerID)
	}
	switch filter.Status {
	case models.StatusActive:
		query = query.Where("tasks.completed = ?", false)
	case models.StatusCompleted:
		query = query.Where("tasks.completed = ?", true)
	case models.StatusOverdue:
		query = query.Where("tasks.completed = ? AND tasks.deadline IS NOT NULL", false)
	}

	order := "DESC"
	if filter.Ascending {
		order = "ASC"
	}
	query = query.Order("tasks.created_at " + order).Order("tasks.id " + order)

	var tasks []models.Task
	if err := query.Find(&tasks).Error; err != nil {
		return nil, apperrors.Store("list tasks", err)
	}

	// deadline parsing and search run in Go so both stores agree on them
	now := s.now()
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t, now) {
			out = append(out, t)
		}
	}
	return out, nil
}

// GetTask returns one task or a NotFoundError
func (s *Store) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.WithContext(ctx).First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("task", id)
		}
		return nil, apperrors.Store("get task", err)
	}
	return &task, nil
}

// CreateTask inserts task and fills in its id
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	task.ID = 0
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error; err != nil {
		return apperrors.Store("create task", err)
	}
	return nil
}

// UpdateTask loads the task, runs apply on it and saves the result in one
// transaction. The id and owner cannot be changed by apply.
func (s *Store) UpdateTask(ctx context.Context, id uint, apply func(*models.Task) error) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTask(tx, id, &task); err != nil {
			return err
		}
		ownerID, createdAt := task.OwnerID, task.CreatedAt
		if err := apply(&task); err != nil {
			return err
		}
		task.ID, task.OwnerID, task.CreatedAt = id, ownerID, createdAt
		return tx.Omit(clause.Associations).Save(&task).Error
	})
	if err != nil {
		return nil, apperrors.Store("update task", err)
	}
	return &task, nil
}

// DeleteTask removes the task once check approves it and returns the removed record
func (s *Store) DeleteTask(ctx context.Context, id uint, check func(*models.Task) error) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockTask(tx, id, &task); err != nil {
			return err
		}
		if check != nil {
			if err := check(&task); err != nil {
				return err
			}
		}
		return tx.Delete(&models.Task{}, id).Error
	})
	if err != nil {
		return nil, apperrors.Store("delete task", err)
	}
	return &task, nil
}

func lockTask(tx *gorm.DB, id uint, task *models.Task) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(task, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("task", id)
	}
	return err
}
