package usecase

import (
	"errors"

	"job-copilot/internal/domain"
)

var (
	// ErrInput marks malformed or incomplete caller input. Not retried.
	ErrInput = errors.New("invalid input")
	// ErrConsent is returned when an application is requested without an
	// explicit allowAutoApply flag.
	ErrConsent = errors.New("user consent is required for auto-apply")
	// ErrDependency wraps failures of extraction, matching or generation.
	ErrDependency = errors.New("processing failed")
	ErrNotFound   = domain.ErrNotFound
	ErrQueueFull  = errors.New("workflow queue is full")

	// ErrWorkflowFailed and ErrWorkflowTimeout are reported by the polling
	// client; the first is a server-side failure, the second a client budget.
	ErrWorkflowFailed  = errors.New("workflow failed")
	ErrWorkflowTimeout = errors.New("workflow timed out")
)
