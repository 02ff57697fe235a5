package domain

import "errors"

var (
	// ErrNotFound is returned by repositories for unknown keys.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when a status change would regress a workflow.
	ErrInvalidTransition = errors.New("invalid workflow status transition")
)
