package usecase

import (
	"context"
	"fmt"
	"time"

	"job-copilot/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ChatRequest is one user turn. ProfileHint, when set, replaces the stored
// structured profile for this run only and is never persisted.
type ChatRequest struct {
	UserID      string
	Message     string
	Language    string
	ProfileHint *domain.StructuredProfile
}

// TaskRecorder receives every recorded stage as soon as it completes.
type TaskRecorder func(ctx context.Context, task domain.Task) error

// Orchestrator turns a chat message into the sequenced profile, search and
// document stages and assembles the reply.
type Orchestrator struct {
	profiles     *Profiles
	matcher      *Matcher
	eagerPreview bool
	logger       *zap.Logger
	now          func() time.Time
}

type OrchestratorConfig struct {
	// EagerPreview generates a CV/cover letter for the top job whenever a
	// search returns results, regardless of intent.
	EagerPreview bool
}

func NewOrchestrator(profiles *Profiles, matcher *Matcher, cfg OrchestratorConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		profiles:     profiles,
		matcher:      matcher,
		eagerPreview: cfg.EagerPreview,
		logger:       logger,
		now:          time.Now,
	}
}

// Chat runs the pipeline synchronously without recording tasks.
func (o *Orchestrator) Chat(ctx context.Context, req ChatRequest) (*domain.ChatResult, error) {
	return o.Run(ctx, req, nil)
}

// Run executes the stages in order. Any stage failure stops the run and is
// returned wrapped in ErrDependency.
func (o *Orchestrator) Run(ctx context.Context, req ChatRequest, record TaskRecorder) (*domain.ChatResult, error) {
	req.UserID = NormalizeUserID(req.UserID)
	req.Language = NormalizeLanguage(req.Language)

	f := &flow{req: req, state: stateStart}
	log := o.logger.With(zap.String("user_id", req.UserID))

	for _, st := range o.stages() {
		if f.state != st.from {
			return nil, fmt.Errorf("%w: stage %s expects state %s, got %s", ErrDependency, st.name, st.from, f.state)
		}
		if st.enabled != nil && !st.enabled(f) {
			log.Debug("stage skipped", zap.String("stage", st.name))
			f.state = st.to
			continue
		}

		out, err := o.runStage(ctx, st, f)
		if err != nil {
			log.Error("stage failed", zap.String("stage", st.name), zap.Error(err))
			return nil, fmt.Errorf("%w: %s: %v", ErrDependency, st.name, err)
		}
		f.state = st.to

		if st.task != "" && record != nil {
			task := domain.Task{
				ID:        uuid.NewString(),
				Type:      st.task,
				Output:    out,
				CreatedAt: o.now(),
			}
			if err := record(ctx, task); err != nil {
				return nil, fmt.Errorf("record %s task: %w", st.task, err)
			}
		}
		log.Debug("stage done", zap.String("stage", st.name), zap.Stringer("state", f.state))
	}

	result := &domain.ChatResult{
		Reply:         Reply(f.intent, len(f.jobs)),
		Intent:        f.intent,
		Jobs:          f.jobs,
		GeneratedDocs: f.docs,
	}
	if result.Jobs == nil {
		result.Jobs = []domain.Job{}
	}
	f.state = stateDone

	log.Info("chat flow done",
		zap.Stringer("state", f.state),
		zap.String("intent", string(f.intent)),
		zap.String("profile_source", string(f.source)),
		zap.Int("jobs", len(f.jobs)),
		zap.Bool("docs", f.docs != nil),
	)
	return result, nil
}

// runStage turns a panic inside a stage into an error so a malformed profile
// never takes the worker down.
func (o *Orchestrator) runStage(ctx context.Context, st stage, f *flow) (out interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return st.run(ctx, f)
}
