package forms

import (
	"encoding/json"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"
)

// CreateTaskForm validates the body of a task creation request. Unknown keys
// are ignored; priority falls back to medium when missing or unknown.
type CreateTaskForm struct {
	Title       string
	Description string
	Assignee    string
	Priority    models.TaskPriority
	Deadline    string
	Categories  []string
}

func NewCreateTaskForm() *CreateTaskForm {
	return &CreateTaskForm{}
}

func (f *CreateTaskForm) Parse(body []byte) error {
	raw, err := decodeObject(body)
	if err != nil {
		return err
	}
	if len(raw) == 0 {
		return apperrors.Validation("task data is required", nil)
	}
	return f.fromRaw(raw)
}

func (f *CreateTaskForm) fromRaw(raw map[string]json.RawMessage) error {
	errs := make(map[string]string)
	f.validateAndSetTitle(raw, errs)

	if v, ok := raw["description"]; ok {
		if s, ok := optionalString(v); ok {
			f.Description = s
		} else {
			errs["description"] = mustBeString
		}
	}
	if v, ok := raw["assignee"]; ok {
		if s, ok := optionalString(v); ok {
			f.Assignee = s
		} else {
			errs["assignee"] = mustBeString
		}
	}
	f.Priority = models.PriorityMedium
	if v, ok := raw["priority"]; ok {
		if s, ok := optionalString(v); ok {
			f.Priority = models.NormalizePriority(s)
		}
	}
	if v, ok := raw["deadline"]; ok {
		s, ok := optionalString(v)
		switch {
		case !ok:
			errs["deadline"] = mustBeString
		case !validDeadline(s):
			errs["deadline"] = invalidDeadline
		default:
			f.Deadline = s
		}
	}
	if v, ok := raw["categories"]; ok {
		if list, ok := categories(v); ok {
			f.Categories = models.CleanCategories(list)
		} else {
			errs["categories"] = mustBeStringList
		}
	}

	checkLimits(taskLimits{
		Title:       f.Title,
		Description: f.Description,
		Assignee:    f.Assignee,
		Deadline:    f.Deadline,
		Categories:  f.Categories,
	}, errs)

	if len(errs) > 0 {
		return apperrors.Validation(validationMessage, errs)
	}
	return nil
}

func (f *CreateTaskForm) validateAndSetTitle(raw map[string]json.RawMessage, errs map[string]string) {
	v, ok := raw["title"]
	if !ok || isNull(v) {
		errs["title"] = missedValue
		return
	}
	s, ok := optionalString(v)
	if !ok {
		errs["title"] = mustBeString
		return
	}
	if s == "" {
		errs["title"] = blankTitle
		return
	}
	f.Title = s
}

// Task builds the unsaved task the form describes
func (f *CreateTaskForm) Task() models.Task {
	return models.Task{
		Title:       f.Title,
		Description: models.OptionalString(f.Description),
		Assignee:    models.OptionalString(f.Assignee),
		Priority:    f.Priority,
		Deadline:    models.OptionalString(f.Deadline),
		Categories:  models.CleanCategories(f.Categories),
	}
}
