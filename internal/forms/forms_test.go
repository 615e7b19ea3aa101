package forms

import (
	"testing"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"

	"github.com/stretchr/testify/require"
)

func TestCreateTaskForm_Defaults(t *testing.T) {
	f := NewCreateTaskForm()
	require.NoError(t, f.Parse([]byte(`{"title":"  Buy milk  ","description":"   ","priority":"urgent"}`)))

	task := f.Task()
	require.Equal(t, "Buy milk", task.Title)
	require.Nil(t, task.Description)
	require.Nil(t, task.Assignee)
	require.Equal(t, models.PriorityMedium, task.Priority)
	require.False(t, task.Completed)
}

func TestCreateTaskForm_CategoriesFromString(t *testing.T) {
	f := NewCreateTaskForm()
	require.NoError(t, f.Parse([]byte(`{"title":"x","categories":"home, errands,,"}`)))
	require.Equal(t, []string{"home", "errands"}, []string(f.Task().Categories))
}

func TestCreateTaskForm_MissingTitle(t *testing.T) {
	for _, body := range []string{`{"description":"d"}`, `{"title":"   "}`, `{"title":null}`} {
		err := NewCreateTaskForm().Parse([]byte(body))
		var ve *apperrors.ValidationError
		require.ErrorAs(t, err, &ve, body)
		require.Contains(t, ve.Fields, "title")
	}
}

func TestCreateTaskForm_EmptyBody(t *testing.T) {
	for _, body := range []string{``, `{}`, `[1,2]`} {
		var ve *apperrors.ValidationError
		require.ErrorAs(t, NewCreateTaskForm().Parse([]byte(body)), &ve, body)
	}
}

func TestCreateTaskForm_BadDeadline(t *testing.T) {
	var ve *apperrors.ValidationError
	err := NewCreateTaskForm().Parse([]byte(`{"title":"x","deadline":"next tuesday"}`))
	require.ErrorAs(t, err, &ve)
	require.Contains(t, ve.Fields, "deadline")
}

func TestUpdateTaskForm_RejectsUnknownKeys(t *testing.T) {
	err := NewUpdateTaskForm().Parse([]byte(`{"title":"ok","ownerId":7,"id":3}`))

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, []string{"id", "ownerId"}, ve.InvalidFields)
	require.Equal(t, models.UpdatableTaskFields, ve.AllowedFields)
}

func TestUpdateTaskForm_InvalidPriority(t *testing.T) {
	var ve *apperrors.ValidationError
	require.ErrorAs(t, NewUpdateTaskForm().Parse([]byte(`{"priority":"urgent"}`)), &ve)
	require.Equal(t, "must be one of low, medium, high", ve.Fields["priority"])
	for _, p := range models.Priorities {
		require.Contains(t, ve.Fields["priority"], string(p))
	}
}

func TestUpdateTaskForm_Patch(t *testing.T) {
	f := NewUpdateTaskForm()
	require.NoError(t, f.Parse([]byte(`{"completed":true,"priority":"HIGH","description":null,"categories":["a"]}`)))

	desc := "old"
	task := models.Task{Title: "keep", Description: &desc, Priority: models.PriorityLow}
	f.Patch.Apply(&task)

	require.Equal(t, "keep", task.Title)
	require.True(t, task.Completed)
	require.Equal(t, models.PriorityHigh, task.Priority)
	require.Nil(t, task.Description)
	require.Equal(t, []string{"a"}, []string(task.Categories))
}

func TestUpdateTaskForm_TypeErrors(t *testing.T) {
	var ve *apperrors.ValidationError
	require.ErrorAs(t, NewUpdateTaskForm().Parse([]byte(`{"completed":"yes","title":""}`)), &ve)
	require.Contains(t, ve.Fields, "completed")
	require.Contains(t, ve.Fields, "title")
}

func TestImportTasksForm(t *testing.T) {
	f := NewImportTasksForm()
	require.NoError(t, f.Parse([]byte(`[{"title":"a","completed":true},{"title":"b","priority":"low"}]`)))
	require.Len(t, f.Tasks, 2)
	require.True(t, f.Tasks[0].Completed)
	require.Equal(t, models.PriorityLow, f.Tasks[1].Priority)

	var ve *apperrors.ValidationError
	require.ErrorAs(t, NewImportTasksForm().Parse([]byte(`[{"title":"a"},{"description":"no title"}]`)), &ve)
	require.Contains(t, ve.Fields, "[1].title")
}

func TestImportTasksForm_CompletedMustBeBoolean(t *testing.T) {
	var ve *apperrors.ValidationError
	err := NewImportTasksForm().Parse([]byte(`[{"title":"a","completed":true},{"title":"b","completed":"yes"},{"title":"c","completed":null}]`))
	require.ErrorAs(t, err, &ve)
	require.Equal(t, mustBeBoolean, ve.Fields["[1].completed"])
	require.Equal(t, mustBeBoolean, ve.Fields["[2].completed"])
	require.NotContains(t, ve.Fields, "[0].completed")
}
