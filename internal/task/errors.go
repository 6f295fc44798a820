package task

import "errors"

var (
	// ErrStoreUnavailable classifies any failed store call.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrEmptyQuery is returned when a search is submitted with a blank query.
	ErrEmptyQuery = errors.New("empty search query")

	// ErrValidationFailed is returned when title or description is blank.
	ErrValidationFailed = errors.New("fields empty")

	// ErrNotFound is returned when no task has the requested id.
	ErrNotFound = errors.New("task not found")
)
