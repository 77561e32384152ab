package monitor

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// ValidationError marks user-correctable input problems. The boundary
// maps it to HTTP 400 and surfaces the message as-is.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func MissingMetadataField(field string) *ValidationError {
	return &ValidationError{msg: "Missing required metadata field: " + field}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
