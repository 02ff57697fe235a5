package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"job-copilot/internal/domain"

	"go.uber.org/zap"
)

// ProfileRepo persists user profiles. Get returns domain.ErrNotFound for
// unknown users.
type ProfileRepo interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Save(ctx context.Context, p *domain.UserProfile) error
	Delete(ctx context.Context, userID string) error
}

// ProfileSource tells where the structured profile of a run came from.
type ProfileSource string

const (
	SourceCache     ProfileSource = "cache"
	SourceExtracted ProfileSource = "extracted"
	SourceHint      ProfileSource = "hint"
)

// Profiles owns the per-user profile cache. Reads and writes for one user are
// serialized; concurrent writers for the same user resolve last-writer-wins.
type Profiles struct {
	repo    ProfileRepo
	timeout time.Duration
	logger  *zap.Logger
	locks   *keyedMutex
	now     func() time.Time
}

func NewProfiles(repo ProfileRepo, timeout time.Duration, logger *zap.Logger) *Profiles {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Profiles{repo: repo, timeout: timeout, logger: logger, locks: newKeyedMutex(), now: time.Now}
}

// Upload stores the raw documents of a user and drops any cached structured
// profile so the next chat re-extracts it.
func (p *Profiles) Upload(ctx context.Context, userID, cvText, transcriptText string) error {
	if strings.TrimSpace(cvText) == "" && strings.TrimSpace(transcriptText) == "" {
		return fmt.Errorf("%w: please upload at least a CV or transcript", ErrInput)
	}
	userID = NormalizeUserID(userID)

	unlock := p.locks.Lock(userID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	profile := &domain.UserProfile{
		UserID:         userID,
		CVText:         cvText,
		TranscriptText: transcriptText,
		UpdatedAt:      p.now(),
	}
	if err := p.repo.Save(ctx, profile); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	p.logger.Info("documents uploaded",
		zap.String("user_id", userID),
		zap.Int("cv_chars", len(cvText)),
		zap.Int("transcript_chars", len(transcriptText)),
	)
	return nil
}

// Resolve returns the structured profile of a user, extracting and caching it
// when absent. Users without uploads get a profile derived from empty text.
func (p *Profiles) Resolve(ctx context.Context, userID string) (domain.StructuredProfile, ProfileSource, error) {
	userID = NormalizeUserID(userID)

	unlock := p.locks.Lock(userID)
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	stored, err := p.repo.Get(ctx, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		stored = &domain.UserProfile{UserID: userID}
	case err != nil:
		return domain.StructuredProfile{}, "", fmt.Errorf("load profile: %w", err)
	}

	if stored.StructuredProfile != nil {
		return *stored.StructuredProfile, SourceCache, nil
	}

	sp := ExtractProfile(stored.CVText, stored.TranscriptText)
	stored.StructuredProfile = &sp
	stored.UpdatedAt = p.now()
	if err := p.repo.Save(ctx, stored); err != nil {
		return domain.StructuredProfile{}, "", fmt.Errorf("cache structured profile: %w", err)
	}
	p.logger.Debug("structured profile extracted",
		zap.String("user_id", userID),
		zap.Strings("skills", sp.Skills),
		zap.String("degree", sp.Degree),
	)
	return sp, SourceExtracted, nil
}

// Get returns the stored profile of a user.
func (p *Profiles) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.repo.Get(ctx, NormalizeUserID(userID))
}

// keyedMutex hands out one mutex per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: map[string]*refMutex{}}
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
