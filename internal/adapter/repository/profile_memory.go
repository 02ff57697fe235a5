package repository

import (
	"context"
	"sync"

	"job-copilot/internal/domain"
)

// MemoryProfiles keeps profiles in a map for the lifetime of the process.
type MemoryProfiles struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{profiles: map[string]domain.UserProfile{}}
}

func (r *MemoryProfiles) Get(_ context.Context, userID string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyProfile(&p), nil
}

func (r *MemoryProfiles) Save(_ context.Context, p *domain.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.UserID] = *copyProfile(p)
	return nil
}

func (r *MemoryProfiles) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.profiles, userID)
	return nil
}

func copyProfile(p *domain.UserProfile) *domain.UserProfile {
	out := *p
	if p.StructuredProfile != nil {
		sp := *p.StructuredProfile
		sp.Skills = append([]string(nil), p.StructuredProfile.Skills...)
		out.StructuredProfile = &sp
	}
	return &out
}
