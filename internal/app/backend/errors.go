// internal/app/backend/errors.go
package backend

import (
	"errors"
	"fmt"
)

// ErrInvalidResponse is returned when a listing body is not a JSON array.
var ErrInvalidResponse = errors.New("backend returned an invalid listing")

// StatusError reports a non-2xx reply from the backend.
type StatusError struct {
	Method string
	Path   string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s %s: status %d", e.Method, e.Path, e.Code)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 404
}
