package allocation

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a referenced equipment item, production or
	// reservation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState is returned when an operation is illegal for the
	// reservation's current status (e.g. removing a checked-out reservation).
	ErrInvalidState = errors.New("operation not allowed in current status")
)

// ConflictError carries the blocking validation result of a rejected mutation.
// Conflicts must be displayed verbatim; nothing is silently coerced.
type ConflictError struct {
	Report Report
}

func (e *ConflictError) Error() string {
	msgs := make([]string, 0, len(e.Report.Conflicts))
	for _, c := range e.Report.Conflicts {
		msgs = append(msgs, fmt.Sprintf("%s: %s", c.Kind, c.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AsConflictError unwraps err into a *ConflictError when possible.
func AsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
