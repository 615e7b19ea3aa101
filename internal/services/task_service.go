package services

import (
	"context"
	"time"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"
	"todo-api/internal/policy"

	"github.com/sirupsen/logrus"
)

var errTaskForbidden = apperrors.Forbidden("you do not have access to this task")

type TaskService struct {
	repo TaskRepository
	log  *logrus.Logger
	now  func() time.Time
}

func NewTaskService(repo TaskRepository, log *logrus.Logger) *TaskService {
	return &TaskService{repo: repo, log: log, now: time.Now}
}

// List returns the tasks visible to identity. Only admins see owner emails.
func (s *TaskService) List(ctx context.Context, identity models.Identity, filter models.TaskFilter) ([]models.Task, error) {
	filter.OwnerID = policy.ListScope(identity)
	tasks, err := s.repo.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() {
		for i := range tasks {
			tasks[i].OwnerEmail = ""
		}
	}
	return tasks, nil
}

// Get returns one task if identity may see it
func (s *TaskService) Get(ctx context.Context, identity models.Identity, id uint) (*models.Task, error) {
	task, err := s.repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTask(identity, task.OwnerID) {
		return nil, errTaskForbidden
	}
	return task, nil
}

// Create stores a validated task under identity
func (s *TaskService) Create(ctx context.Context, identity models.Identity, task models.Task) (*models.Task, error) {
	now := s.now().UTC()
	task.ID = 0
	task.OwnerID = nil
	task.OwnerEmail = ""
	if !identity.IsAnonymous() {
		owner := identity.UserID
		task.OwnerID = &owner
	}
	task.Priority = models.NormalizePriority(string(task.Priority))
	task.CreatedAt = now
	task.UpdatedAt = now

	if err := s.repo.CreateTask(ctx, &task); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"task_id": task.ID, "user_id": identity.UserID}).Debug("task created")
	return &task, nil
}

// Update merges patch into the task after the ownership check. An empty
// patch is not a mutation, so the stored record comes back untouched.
func (s *TaskService) Update(ctx context.Context, identity models.Identity, id uint, patch models.TaskPatch) (*models.Task, error) {
	if patch.IsEmpty() {
		return s.Get(ctx, identity, id)
	}
	return s.repo.UpdateTask(ctx, id, func(task *models.Task) error {
		if !policy.CanAccessTask(identity, task.OwnerID) {
			return errTaskForbidden
		}
		patch.Apply(task)
		task.UpdatedAt = s.now().UTC()
		return nil
	})
}

// Delete removes the task after the ownership check and returns it
func (s *TaskService) Delete(ctx context.Context, identity models.Identity, id uint) (*models.Task, error) {
	return s.repo.DeleteTask(ctx, id, func(task *models.Task) error {
		if !policy.CanAccessTask(identity, task.OwnerID) {
			return errTaskForbidden
		}
		return nil
	})
}

// Stats counts the tasks visible to identity
func (s *TaskService) Stats(ctx context.Context, identity models.Identity) (models.TaskStats, error) {
	tasks, err := s.repo.ListTasks(ctx, models.TaskFilter{OwnerID: policy.ListScope(identity)})
	if err != nil {
		return models.TaskStats{}, err
	}
	return models.CountTasks(tasks, s.now()), nil
}

// Export returns the visible tasks oldest first, ready to be imported again
func (s *TaskService) Export(ctx context.Context, identity models.Identity) ([]models.Task, error) {
	return s.List(ctx, identity, models.TaskFilter{Ascending: true})
}

// Import creates each task under identity in order. The batch has already
// been validated as a whole; a store failure part way leaves the earlier
// tasks in place.
func (s *TaskService) Import(ctx context.Context, identity models.Identity, tasks []models.Task) ([]models.Task, error) {
	created := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		task, err := s.Create(ctx, identity, t)
		if err != nil {
			return created, err
		}
		created = append(created, *task)
	}
	s.log.WithFields(logrus.Fields{"count": len(created), "user_id": identity.UserID}).Info("tasks imported")
	return created, nil
}

// Ping checks the task store
func (s *TaskService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
