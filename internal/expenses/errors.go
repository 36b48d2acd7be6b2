package expenses

import "fmt"

// ValidationError reports a rejected request field. It is returned before any
// storage call is made.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ErrMissingFleetCode is returned whenever a request carries no fleet code.
var ErrMissingFleetCode = &ValidationError{Field: "fleetCode", Message: "fleet code is required"}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
