package serial

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrNotFound is returned when no setting matches the requested id.
	ErrNotFound = errors.New("serial setting not found")
	// ErrDuplicateScope is returned when another active setting owns the scope.
	ErrDuplicateScope = errors.New("an active serial setting already exists for this scope")
	// ErrNoActiveSetting is returned by issuance when the scope has no active setting.
	ErrNoActiveSetting = errors.New("no active serial setting for scope")
)

// FieldError describes one invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return e.Field + " " + e.Message
}

// ValidationError collects every invalid field of a request.
type ValidationError struct {
	Fields []FieldError
}

// Add records an invalid field.
func (v *ValidationError) Add(field, message string) {
	v.Fields = append(v.Fields, FieldError{Field: field, Message: message})
}

// OrNil returns v when it holds at least one field error.
func (v *ValidationError) OrNil() error {
	if v == nil || len(v.Fields) == 0 {
		return nil
	}
	return v
}

// Messages renders one line per field.
func (v *ValidationError) Messages() []string {
	return lo.Map(v.Fields, func(f FieldError, _ int) string { return f.String() })
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("invalid serial setting: %s", strings.Join(v.Messages(), "; "))
}
