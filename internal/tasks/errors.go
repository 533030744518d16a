package tasks

import "errors"

var (
	// ErrTaskNotFound is returned when a task id does not resolve to a
	// task visible to the caller.
	ErrTaskNotFound = errors.New("task not found")

	// ErrPermissionDenied is returned when the caller may not perform
	// the mutation. Handlers map it to 403; the store itself never
	// changes state when returning it.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidTask is returned for malformed task input.
	ErrInvalidTask = errors.New("invalid task")
)
