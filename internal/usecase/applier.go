package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"job-copilot/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
)

// ApplicationLog records simulated submissions.
type ApplicationLog interface {
	Record(ctx context.Context, s domain.Submission) error
}

// ApplyRequest asks for a simulated application. AllowAutoApply must be set
// and true; a missing flag counts as a refusal.
type ApplyRequest struct {
	UserID         string
	JobID          string
	Provider       string
	AllowAutoApply *bool
}

type Applier struct {
	catalog *Catalog
	log     ApplicationLog
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

func NewApplier(c *Catalog, log ApplicationLog, timeout time.Duration, logger *zap.Logger) *Applier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Applier{catalog: c, log: log, timeout: timeout, logger: logger, now: time.Now}
}

// Apply submits an application for the user. The consent check runs before
// anything else so a refused request leaves no trace.
func (a *Applier) Apply(ctx context.Context, req ApplyRequest) (*domain.Submission, error) {
	if req.AllowAutoApply == nil || !*req.AllowAutoApply {
		return nil, ErrConsent
	}

	jobID := strings.TrimSpace(req.JobID)
	if jobID == "" {
		return nil, fmt.Errorf("%w: jobId is required", ErrInput)
	}
	job, ok := a.catalog.Find(jobID)
	if !ok {
		return nil, fmt.Errorf("%w: unknown job %q", ErrInput, jobID)
	}
	provider := strings.TrimSpace(req.Provider)
	if provider == "" {
		provider = job.Provider
	}

	sub := domain.Submission{
		ID:        uuid.NewString(),
		UserID:    NormalizeUserID(req.UserID),
		JobID:     job.ID,
		Provider:  provider,
		HostLabel: hostLabel(job.URL, provider),
		CreatedAt: a.now(),
	}

	a.logger.Info(fmt.Sprintf("Simulating application for %s to job %s @ %s", sub.UserID, sub.JobID, sub.Provider),
		zap.String("submission_id", sub.ID),
		zap.String("host", sub.HostLabel),
	)

	if a.log != nil {
		ctx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		if err := a.log.Record(ctx, sub); err != nil {
			return nil, fmt.Errorf("record submission: %w", err)
		}
	}
	return &sub, nil
}

// hostLabel reduces a listing URL to its registrable domain for display,
// falling back to the provider name.
func hostLabel(raw, fallback string) string {
	if raw == "" {
		return fallback
	}
	candidate := raw
	if !strings.HasPrefix(candidate, "http://") && !strings.HasPrefix(candidate, "https://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil || u.Hostname() == "" {
		return fallback
	}
	host := u.Hostname()
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return strings.TrimPrefix(etld, "www.")
	}
	return strings.TrimPrefix(host, "www.")
}
