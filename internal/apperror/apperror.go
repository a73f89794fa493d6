package apperror

import "errors"

// ErrNotFound covers both a genuinely absent record and one owned by another
// user; callers must not be able to tell the two apart.
var ErrNotFound = errors.New("record not found")

// ErrInvalidCredentials is returned for unknown email and bad password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ValidationError collects per-field rule failures, in the
// field -> messages shape the API serializes under "errors".
type ValidationError struct {
	Fields map[string][]string
	order  []string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

func NewFieldError(field, message string) *ValidationError {
	e := NewValidationError()
	e.Add(field, message)
	return e
}

func (e *ValidationError) Add(field, message string) {
	if _, ok := e.Fields[field]; !ok {
		e.order = append(e.order, field)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

// Message returns the first recorded failure, used as the response's
// top-level "message".
func (e *ValidationError) Message() string {
	if len(e.order) > 0 {
		return e.Fields[e.order[0]][0]
	}
	return "The given data was invalid."
}

func (e *ValidationError) Error() string {
	return e.Message()
}
