package hook

import "errors"

// Sentinel errors shared by the registrar, bootstrap and engine packages.
var (
	// ErrEmptyHookName is returned when a hook name is empty.
	ErrEmptyHookName = errors.New("hook name cannot be empty")

	// ErrNilCallback is returned when a nil callback is provided.
	ErrNilCallback = errors.New("callback cannot be nil")

	// ErrHostUnavailable is returned when no host is booted and no base path is defined.
	ErrHostUnavailable = errors.New("host event system is not available")

	// ErrDefinitionsNotFound is returned when the base path does not exist.
	ErrDefinitionsNotFound = errors.New("host definitions not found")

	// ErrMaxDepthExceeded is returned when nested dispatch exceeds the configured depth.
	ErrMaxDepthExceeded = errors.New("maximum dispatch depth exceeded")
)

// Validate checks the arguments common to every registration.
func Validate(name string, cb *Callback) error {
	if name == "" {
		return ErrEmptyHookName
	}
	if cb == nil {
		return ErrNilCallback
	}
	return nil
}
