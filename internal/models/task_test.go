package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNormalizePriority(t *testing.T) {
	require.Equal(t, PriorityHigh, NormalizePriority(" HIGH "))
	require.Equal(t, PriorityMedium, NormalizePriority("urgent"))
	require.Equal(t, PriorityMedium, NormalizePriority(""))
	_, ok := ParsePriority("urgent")
	require.False(t, ok)
}

func TestParseDeadline(t *testing.T) {
	for _, s := range []string{"2025-01-31", "2025-01-31T10:30", "2025-01-31T10:30:00Z", "31 Jan 2025"} {
		_, ok := ParseDeadline(s)
		require.True(t, ok, s)
	}
	_, ok := ParseDeadline("tomorrow")
	require.False(t, ok)
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	past, future := "2025-05-01", "2025-07-01"

	require.True(t, Task{Deadline: &past}.IsOverdue(now))
	require.False(t, Task{Deadline: &past, Completed: true}.IsOverdue(now))
	require.False(t, Task{Deadline: &future}.IsOverdue(now))
	require.False(t, Task{}.IsOverdue(now))
}

func TestTaskFilter_Matches(t *testing.T) {
	owner := uint(1)
	other := uint(2)
	desc := "Pick up from the Corner shop"
	task := Task{Title: "Milk", Description: &desc, OwnerID: &owner, Categories: CleanCategories([]string{"Errands"})}
	now := time.Now()

	require.True(t, TaskFilter{}.Matches(task, now))
	require.True(t, TaskFilter{OwnerID: &owner, Query: "corner"}.Matches(task, now))
	require.True(t, TaskFilter{Query: "errand"}.Matches(task, now))
	require.False(t, TaskFilter{OwnerID: &other}.Matches(task, now))
	require.False(t, TaskFilter{Status: StatusCompleted}.Matches(task, now))
	require.True(t, TaskFilter{Status: StatusActive}.Matches(task, now))
	require.False(t, TaskFilter{Query: "bread"}.Matches(task, now))
}

func TestSortTasks(t *testing.T) {
	base := time.Now()
	tasks := []Task{
		{ID: 1, CreatedAt: base},
		{ID: 3, CreatedAt: base.Add(time.Second)},
		{ID: 2, CreatedAt: base},
	}
	SortTasks(tasks, false)
	require.Equal(t, []uint{3, 2, 1}, []uint{tasks[0].ID, tasks[1].ID, tasks[2].ID})
	SortTasks(tasks, true)
	require.Equal(t, []uint{1, 2, 3}, []uint{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}

func TestCountTasks(t *testing.T) {
	past := "2000-01-01"
	stats := CountTasks([]Task{{Completed: true}, {Deadline: &past}, {}}, time.Now())
	require.Equal(t, TaskStats{Total: 3, Active: 2, Completed: 1, Overdue: 1}, stats)
}
