package claims

import "errors"

// Sentinel errors for the pipeline's failure kinds. Callers match with
// errors.Is; the API layer maps them to HTTP status codes.
var (
	// ErrInvalidArgument marks malformed submit input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrEngineUnavailable marks a workflow engine call that failed
	// after the SDK's retry.
	ErrEngineUnavailable = errors.New("workflow engine unavailable")

	// ErrStoreUnavailable marks a job store call that failed after the
	// SDK's retry.
	ErrStoreUnavailable = errors.New("job store unavailable")

	// ErrNotFound marks a report requested before it exists.
	ErrNotFound = errors.New("not found")
)
