package forms

import (
	"encoding/json"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"
)

// UpdateTaskForm validates a partial update. Any key outside
// models.UpdatableTaskFields rejects the whole request.
type UpdateTaskForm struct {
	Patch models.TaskPatch
}

func NewUpdateTaskForm() *UpdateTaskForm {
	return &UpdateTaskForm{}
}

func (f *UpdateTaskForm) Parse(body []byte) error {
	raw, err := decodeObject(body)
	if err != nil {
		return err
	}

	allowed := make(map[string]bool, len(models.UpdatableTaskFields))
	for _, k := range models.UpdatableTaskFields {
		allowed[k] = true
	}
	var invalid []string
	for _, k := range sortedKeys(raw) {
		if !allowed[k] {
			invalid = append(invalid, k)
		}
	}
	if len(invalid) > 0 {
		return apperrors.ForbiddenFields(invalid, append([]string(nil), models.UpdatableTaskFields...))
	}

	errs := make(map[string]string)
	var limits taskLimits

	if v, ok := raw["title"]; ok {
		s, ok := optionalString(v)
		switch {
		case !ok:
			errs["title"] = mustBeString
		case s == "":
			errs["title"] = blankTitle
		default:
			f.Patch.Title = &s
			limits.Title = s
		}
	}
	f.Patch.Description = f.optional(raw, "description", errs, &limits.Description)
	f.Patch.Assignee = f.optional(raw, "assignee", errs, &limits.Assignee)

	if v, ok := raw["priority"]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			errs["priority"] = priorityMessage
		} else if p, ok := models.ParsePriority(s); ok {
			f.Patch.Priority = &p
		} else {
			errs["priority"] = priorityMessage
		}
	}

	if d := f.optional(raw, "deadline", errs, &limits.Deadline); d != nil {
		if validDeadline(*d) {
			f.Patch.Deadline = d
		} else {
			errs["deadline"] = invalidDeadline
		}
	}

	if v, ok := raw["categories"]; ok {
		if list, ok := categories(v); ok {
			f.Patch.Categories = &list
			limits.Categories = models.CleanCategories(list)
		} else {
			errs["categories"] = mustBeStringList
		}
	}

	if v, ok := raw["completed"]; ok {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil || isNull(v) {
			errs["completed"] = mustBeBoolean
		} else {
			f.Patch.Completed = &b
		}
	}

	checkLimits(limits, errs)
	if len(errs) > 0 {
		return apperrors.Validation(validationMessage, errs)
	}
	return nil
}

// optional decodes a clearable string field; the returned pointer is nil when
// the key is absent or invalid.
func (f *UpdateTaskForm) optional(raw map[string]json.RawMessage, key string, errs map[string]string, limit *string) *string {
	v, ok := raw[key]
	if !ok {
		return nil
	}
	s, ok := optionalString(v)
	if !ok {
		errs[key] = mustBeString
		return nil
	}
	*limit = s
	return &s
}
