package common

import (
	"errors"
	"fmt"
	"net/http"
)

// Error taxonomy shared by the chat and notification layers. Callers wrap
// these with fmt.Errorf("...: %w", ErrX) and test with errors.Is.
var (
	// ErrValidation is returned for empty or malformed input, before any remote call.
	ErrValidation = errors.New("validation error")
	// ErrNotFound covers unknown conversations/messages and callers without access.
	ErrNotFound = errors.New("not found")
	// ErrTransient is any failed remote call (timeout, 5xx, connectivity).
	ErrTransient = errors.New("transient network error")
	// ErrPermission is row-level authorization failure. It is reported as
	// ErrNotFound to callers of this layer.
	ErrPermission = errors.New("permission denied")
)

// HTTPStatus maps an error from this layer onto a response code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrPermission):
		return http.StatusNotFound
	case errors.Is(err, ErrTransient):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Remote classifies a failed store or network call as ErrTransient.
// Validation and not-found errors pass through; permission failures are
// reported as not found.
func Remote(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, ErrPermission):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, ErrTransient):
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
}
