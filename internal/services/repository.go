package services

import (
	"context"

	"todo-api/internal/auth"
	"todo-api/internal/models"
)

// TaskRepository is implemented by both the file store and the sql store
type TaskRepository interface {
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	GetTask(ctx context.Context, id uint) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) error
	UpdateTask(ctx context.Context, id uint, apply func(*models.Task) error) (*models.Task, error)
	DeleteTask(ctx context.Context, id uint, check func(*models.Task) error) (*models.Task, error)
	Ping(ctx context.Context) error
}

// UserRepository stores accounts; only the relational store has one
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	DeleteUser(ctx context.Context, id uint) error
	SetRole(ctx context.Context, id uint, role models.Role) error
}

// Sessions is the part of auth.SessionManager the services need
type Sessions interface {
	Establish(identity models.Identity) (string, *auth.Session, error)
	Revoke(sessionID string)
	RevokeUser(userID uint) int
}
