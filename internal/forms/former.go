// Package forms turns raw request bodies into validated task input.
package forms

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"todo-api/internal/apperrors"
	"todo-api/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// Former is implemented by every request form
type Former interface {
	Parse(body []byte) error
}

// ParseAndValidate reads the request body and feeds it to the form
func ParseAndValidate(c *gin.Context, f Former) error {
	body, err := c.GetRawData()
	if err != nil {
		return apperrors.Validation("unable to read request body", nil)
	}
	return f.Parse(body)
}

const (
	missedValue       = "missed value"
	invalidStructure  = "invalid request structure"
	mustBeString      = "must be a string"
	mustBeBoolean     = "must be a boolean"
	mustBeStringList  = "must be a list of strings"
	invalidDeadline   = "must be a date such as 2025-01-31 or an RFC 3339 timestamp"
	blankTitle        = "must be a non-empty string"
	validationMessage = "validation failed"
)

var (
	validate        = newValidator()
	priorityMessage = priorityChoices()
)

func priorityChoices() string {
	names := make([]string, len(models.Priorities))
	for i, p := range models.Priorities {
		names[i] = string(p)
	}
	return "must be one of " + strings.Join(names, ", ")
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// taskLimits carries the size limits shared by create and update
type taskLimits struct {
	Title       string   `json:"title" validate:"max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Assignee    string   `json:"assignee" validate:"max=100"`
	Deadline    string   `json:"deadline" validate:"max=64"`
	Categories  []string `json:"categories" validate:"max=20,dive,max=50"`
}

func checkLimits(l taskLimits, errs map[string]string) {
	err := validate.Struct(l)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["_"] = validationMessage
		return
	}
	for _, fe := range verrs {
		field := fe.Field()
		if i := strings.IndexByte(field, '['); i >= 0 {
			field = field[:i]
		}
		if _, exists := errs[field]; !exists {
			errs[field] = "exceeds the limit of " + fe.Param()
		}
	}
}

// decodeObject splits a JSON object into its raw members
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, apperrors.Validation("task data is required", nil)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, apperrors.Validation(invalidStructure, nil)
	}
	return raw, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// optionalString decodes a string or null; null yields "".
func optionalString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return strings.TrimSpace(s), true
}

// categories accepts a JSON list of strings, a comma-separated string or null
func categories(raw json.RawMessage) ([]string, bool) {
	if isNull(raw) {
		return []string{}, true
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err != nil {
		return nil, false
	}
	return strings.Split(joined, ","), true
}

func validDeadline(s string) bool {
	if s == "" {
		return true
	}
	_, ok := models.ParseDeadline(s)
	return ok
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
