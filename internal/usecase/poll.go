package usecase

import (
	"context"
	"fmt"
	"time"

	"job-copilot/internal/domain"
)

// PollConfig bounds how long a client waits for a workflow.
type PollConfig struct {
	Interval    time.Duration
	MaxAttempts int
}

// DefaultPollConfig waits roughly a minute: 50 attempts, 1.2s apart.
func DefaultPollConfig() PollConfig {
	return PollConfig{Interval: 1200 * time.Millisecond, MaxAttempts: 50}
}

// StatusFetcher loads the current state of one workflow.
type StatusFetcher func(ctx context.Context) (*domain.WorkflowExecution, error)

// Poll fetches the workflow until it reaches a terminal status. A failed
// workflow yields ErrWorkflowFailed; running out of attempts yields
// ErrWorkflowTimeout. Fetch errors are returned as is, without retrying.
func Poll(ctx context.Context, cfg PollConfig, fetch StatusFetcher) (*domain.WorkflowExecution, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultPollConfig().MaxAttempts
	}

	var last *domain.WorkflowExecution
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		w, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		last = w

		switch w.Status {
		case domain.StatusCompleted:
			return w, nil
		case domain.StatusFailed:
			reason := w.Error
			if reason == "" {
				reason = "unknown error"
			}
			return w, fmt.Errorf("%w: %s", ErrWorkflowFailed, reason)
		}

		if attempt == cfg.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-time.After(cfg.Interval):
		}
	}
	return last, fmt.Errorf("%w after %d attempts", ErrWorkflowTimeout, cfg.MaxAttempts)
}
