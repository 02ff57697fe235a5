package repository

import (
	"context"
	"sync"

	"job-copilot/internal/domain"
)

type MemorySubmissions struct {
	mu   sync.Mutex
	subs []domain.Submission
}

func NewMemorySubmissions() *MemorySubmissions {
	return &MemorySubmissions{}
}

func (r *MemorySubmissions) Record(_ context.Context, s domain.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, s)
	return nil
}

func (r *MemorySubmissions) ListByUser(_ context.Context, userID string) ([]domain.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.Submission{}
	for _, s := range r.subs {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}
