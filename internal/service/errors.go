package service

import (
	"errors"
	"sort"
	"strings"
)

// ErrForbidden is returned when the acting identity fails an ownership check.
var ErrForbidden = errors.New("you are not allowed to perform this action")

// ValidationError carries per-field messages for a rejected create or
// update. Nothing is persisted when validation fails; entities are validated
// before any repository call.
type ValidationError struct {
	Fields map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

func (e *ValidationError) add(field, msg string) {
	e.Fields[field] = msg
}

func (e *ValidationError) ok() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "validation failed: " + strings.Join(fields, ", ")
}

// AsValidationError unwraps err into a *ValidationError, or returns nil.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
