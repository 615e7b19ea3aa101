package forms

import (
	"bytes"
	"encoding/json"
	"strconv"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"
)

// ImportTasksForm validates an exported task list. Each element must pass the
// creation rules; one bad element rejects the whole batch.
type ImportTasksForm struct {
	Tasks []models.Task
}

func NewImportTasksForm() *ImportTasksForm {
	return &ImportTasksForm{}
}

func (f *ImportTasksForm) Parse(body []byte) error {
	body = bytes.TrimSpace(body)
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil {
		return apperrors.Validation("expected a JSON array of tasks", nil)
	}

	errs := make(map[string]string)
	f.Tasks = make([]models.Task, 0, len(items))
	for i, item := range items {
		prefix := "[" + strconv.Itoa(i) + "]."
		form := NewCreateTaskForm()
		if err := form.fromRaw(item); err != nil {
			if ve, ok := err.(*apperrors.ValidationError); ok {
				for field, msg := range ve.Fields {
					errs[prefix+field] = msg
				}
				continue
			}
			return err
		}
		task := form.Task()
		if v, ok := item["completed"]; ok {
			if err := json.Unmarshal(v, &task.Completed); err != nil || isNull(v) {
				errs[prefix+"completed"] = mustBeBoolean
				continue
			}
		}
		f.Tasks = append(f.Tasks, task)
	}
	if len(errs) > 0 {
		return apperrors.Validation(validationMessage, errs)
	}
	return nil
}
