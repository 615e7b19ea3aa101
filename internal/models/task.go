package models

import (
	"sort"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// TaskPriority represents the priority of a task
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

// Priorities lists the accepted priority values in display order
var Priorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority reports whether s names one of the accepted priorities
func ParsePriority(s string) (TaskPriority, bool) {
	p := TaskPriority(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, true
	}
	return "", false
}

// NormalizePriority maps missing or unknown input to medium
func NormalizePriority(s string) TaskPriority {
	if p, ok := ParsePriority(s); ok {
		return p
	}
	return PriorityMedium
}

// UpdatableTaskFields is the closed set of keys a client may send on update
var UpdatableTaskFields = []string{
	"title",
	"description",
	"assignee",
	"priority",
	"deadline",
	"categories",
	"completed",
}

// Task represents a task in the system
type Task struct {
	ID          uint                        `json:"id" gorm:"primaryKey"`
	Title       string                      `json:"title" gorm:"not null"`
	Description *string                     `json:"description,omitempty"`
	Assignee    *string                     `json:"assignee,omitempty"`
	Priority    TaskPriority                `json:"priority" gorm:"not null;default:'medium'"`
	Deadline    *string                     `json:"deadline,omitempty"`
	Categories  datatypes.JSONSlice[string] `json:"categories,omitempty"`
	Completed   bool                        `json:"completed" gorm:"not null;default:false"`
	OwnerID     *uint                       `json:"ownerId,omitempty" gorm:"column:owner_id;index"`
	Owner       *User                       `json:"-" gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	OwnerEmail  string                      `json:"ownerEmail,omitempty" gorm:"->;-:migration"`
	CreatedAt   time.Time                   `json:"createdAt" gorm:"autoCreateTime:false"`
	UpdatedAt   time.Time                   `json:"updatedAt" gorm:"autoUpdateTime:false"`
}

// TableName specifies the table name for Task Model
func (Task) TableName() string {
	return "tasks"
}

// IsOverdue reports whether an open task has a deadline in the past
func (t Task) IsOverdue(now time.Time) bool {
	if t.Completed || t.Deadline == nil {
		return false
	}
	deadline, ok := ParseDeadline(*t.Deadline)
	if !ok {
		return false
	}
	return deadline.Before(now)
}

// ParseDeadline accepts the date layouts the clients are known to send
func ParseDeadline(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02",
		"2 Jan 2006",
		"02 Jan 2006",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TaskPatch is a validated partial update. A nil pointer leaves the field
// untouched; an empty string or empty list clears an optional field.
type TaskPatch struct {
	Title       *string
	Description *string
	Assignee    *string
	Priority    *TaskPriority
	Deadline    *string
	Categories  *[]string
	Completed   *bool
}

// IsEmpty reports whether the patch changes nothing
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Assignee == nil &&
		p.Priority == nil && p.Deadline == nil && p.Categories == nil && p.Completed == nil
}

// Apply merges the patch onto t. Identity fields are never touched.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = optional(*p.Description)
	}
	if p.Assignee != nil {
		t.Assignee = optional(*p.Assignee)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Deadline != nil {
		t.Deadline = optional(*p.Deadline)
	}
	if p.Categories != nil {
		t.Categories = CleanCategories(*p.Categories)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
}

// OptionalString trims s and returns nil when nothing is left
func OptionalString(s string) *string {
	return optional(s)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// CleanCategories trims labels, drops blanks and returns nil for an empty list
func CleanCategories(in []string) datatypes.JSONSlice[string] {
	var out datatypes.JSONSlice[string]
	for _, c := range in {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// TaskStatusFilter selects tasks by completion state
type TaskStatusFilter string

const (
	StatusAll       TaskStatusFilter = "all"
	StatusActive    TaskStatusFilter = "active"
	StatusCompleted TaskStatusFilter = "completed"
	StatusOverdue   TaskStatusFilter = "overdue"
)

// ParseStatusFilter maps query input to a filter, defaulting to all
func ParseStatusFilter(s string) (TaskStatusFilter, bool) {
	switch f := TaskStatusFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return StatusAll, true
	case StatusAll, StatusActive, StatusCompleted, StatusOverdue:
		return f, true
	}
	return "", false
}

// TaskFilter narrows a task listing
type TaskFilter struct {
	// OwnerID restricts the listing to one owner when set
	OwnerID   *uint
	Status    TaskStatusFilter
	Query     string
	Ascending bool
}

// Matches applies the whole filter to one task
func (f TaskFilter) Matches(t Task, now time.Time) bool {
	if f.OwnerID != nil && (t.OwnerID == nil || *t.OwnerID != *f.OwnerID) {
		return false
	}
	switch f.Status {
	case StatusActive:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	case StatusOverdue:
		if !t.IsOverdue(now) {
			return false
		}
	}
	return t.matchesQuery(f.Query)
}

func (t Task) matchesQuery(q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	contains := func(s *string) bool {
		return s != nil && strings.Contains(strings.ToLower(*s), q)
	}
	if strings.Contains(strings.ToLower(t.Title), q) || contains(t.Description) || contains(t.Assignee) {
		return true
	}
	for _, c := range t.Categories {
		if strings.Contains(strings.ToLower(c), q) {
			return true
		}
	}
	return false
}

// TaskStats counts tasks by state
type TaskStats struct {
	Total     int `json:"total"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
}

// CountTasks tallies tasks into stats as of now
func CountTasks(tasks []Task, now time.Time) TaskStats {
	var s TaskStats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
		} else {
			s.Active++
		}
		if t.IsOverdue(now) {
			s.Overdue++
		}
	}
	return s
}

// SortTasks orders tasks newest first, or oldest first when ascending.
// Ties on the creation time fall back to the id.
func SortTasks(tasks []Task, ascending bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if ascending {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})
}
