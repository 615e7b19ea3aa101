// Package filestore keeps the whole task collection in a single JSON document.
//
// Every mutating call reads the document, changes it in memory and rewrites
// it. A mutex serialises those cycles inside the process, and the rewrite goes
// through a temporary file plus rename so readers never observe a partial
// document. Separate processes sharing one file are not coordinated.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"
)

// Store is a file-backed task repository
type Store struct {
	path string

	mu sync.Mutex
	// lastID is the highest id this instance has handed out, so deleting the
	// newest task never lets its id come back.
	lastID uint
	now    func() time.Time
}

// New returns a store over path. The file is created on the first write.
func New(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// load reads the collection. A missing, empty or whitespace-only file is an
// empty collection; a single object is accepted as a one-element list.
func (s *Store) load() ([]models.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []models.Task{}, nil
		}
		return nil, apperrors.Store("read tasks file", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []models.Task{}, nil
	}

	if data[0] == '{' {
		var one models.Task
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, apperrors.Store("decode tasks file", err)
		}
		return []models.Task{one}, nil
	}
	var tasks []models.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, apperrors.Store("decode tasks file", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

// save rewrites the whole collection as pretty-printed JSON
func (s *Store) save(tasks []models.Task) error {
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return apperrors.Store("encode tasks file", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Store("create tasks directory", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return apperrors.Store("create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return apperrors.Store("write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return apperrors.Store("close temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return apperrors.Store("replace tasks file", err)
	}
	return nil
}

func indexOf(tasks []models.Task, id uint) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// ListTasks returns the tasks matching filter, newest first unless the filter asks otherwise
func (s *Store) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	tasks, err := s.load()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Matches(t, now) {
			out = append(out, t)
		}
	}
	models.SortTasks(out, filter.Ascending)
	return out, nil
}

// GetTask returns one task or a NotFoundError
func (s *Store) GetTask(ctx context.Context, id uint) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, apperrors.NotFound("task", id)
	}
	return &tasks[i], nil
}

// CreateTask assigns the next id and appends task to the collection
func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return err
	}
	maxID := s.lastID
	for _, t := range tasks {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	task.ID = maxID + 1

	if err := s.save(append(tasks, *task)); err != nil {
		return err
	}
	s.lastID = task.ID
	return nil
}

// UpdateTask runs apply on the stored task and persists the result. An error
// from apply aborts the write.
func (s *Store) UpdateTask(ctx context.Context, id uint, apply func(*models.Task) error) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, apperrors.NotFound("task", id)
	}

	updated := tasks[i]
	if err := apply(&updated); err != nil {
		return nil, err
	}
	updated.ID = id
	tasks[i] = updated

	if err := s.save(tasks); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes a task once check approves it and returns the removed record
func (s *Store) DeleteTask(ctx context.Context, id uint, check func(*models.Task) error) (*models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, apperrors.NotFound("task", id)
	}
	removed := tasks[i]
	if check != nil {
		if err := check(&removed); err != nil {
			return nil, err
		}
	}

	rest := append(tasks[:i:i], tasks[i+1:]...)
	if err := s.save(rest); err != nil {
		return nil, err
	}
	return &removed, nil
}

// Ping reports whether the backing file can be read
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.load()
	return err
}
