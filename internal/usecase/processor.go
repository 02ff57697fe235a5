package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"job-copilot/internal/domain"
	"job-copilot/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Renderer turns an HTML document into PDF bytes.
type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// WorkflowRepo is the workflow status table. Transition must refuse any
// change that CanTransition rejects with domain.ErrInvalidTransition, and Get
// must return copies the caller may keep.
type WorkflowRepo interface {
	Create(ctx context.Context, w *domain.WorkflowExecution) error
	Get(ctx context.Context, id string) (*domain.WorkflowExecution, error)
	AppendTask(ctx context.Context, id string, task domain.Task) error
	Transition(ctx context.Context, id string, next domain.WorkflowStatus, upd domain.WorkflowUpdate) error
	// Sweep deletes terminal workflows last updated before the given time.
	Sweep(ctx context.Context, before time.Time) (int, error)
}

type ProcessorConfig struct {
	Workers       int
	QueueSize     int
	RunTimeout    time.Duration
	StoreTimeout  time.Duration
	TTL           time.Duration
	SweepInterval time.Duration
	EagerPreview  bool
}

func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		Workers:       4,
		QueueSize:     64,
		RunTimeout:    30 * time.Second,
		StoreTimeout:  5 * time.Second,
		TTL:           time.Hour,
		SweepInterval: time.Minute,
		EagerPreview:  true,
	}
}

const shutdownMessage = "server shutting down"

type queuedRun struct {
	id  string
	req ChatRequest
}

// Processor dispatches orchestrator runs onto a worker pool and keeps the
// workflow status table up to date.
type Processor struct {
	orch   *Orchestrator
	repo   WorkflowRepo
	cfg    ProcessorConfig
	queue  chan queuedRun
	logger *zap.Logger
	now    func() time.Time
}

func NewProcessor(orch *Orchestrator, repo WorkflowRepo, cfg ProcessorConfig, logger *zap.Logger) *Processor {
	def := DefaultProcessorConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = def.RunTimeout
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{
		orch:   orch,
		repo:   repo,
		cfg:    cfg,
		queue:  make(chan queuedRun, cfg.QueueSize),
		logger: logger,
		now:    time.Now,
	}
}

// Start records a pending workflow and queues it. It returns as soon as the
// workflow is queued; the run happens on a worker started by Run.
func (p *Processor) Start(ctx context.Context, req ChatRequest) (*domain.WorkflowExecution, error) {
	req.UserID = NormalizeUserID(req.UserID)
	req.Language = NormalizeLanguage(req.Language)

	now := p.now()
	w := &domain.WorkflowExecution{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Message:   req.Message,
		Language:  req.Language,
		Status:    domain.StatusPending,
		Tasks:     []domain.Task{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	sctx, cancel := context.WithTimeout(ctx, p.cfg.StoreTimeout)
	defer cancel()
	if err := p.repo.Create(sctx, w); err != nil {
		return nil, fmt.Errorf("create workflow: %w", err)
	}

	select {
	case p.queue <- queuedRun{id: w.ID, req: req}:
	default:
		if err := p.repo.Transition(sctx, w.ID, domain.StatusFailed, domain.WorkflowUpdate{At: p.now(), Error: ErrQueueFull.Error()}); err != nil {
			p.logger.Warn("marking rejected workflow failed", zap.String("workflow_id", w.ID), zap.Error(err))
		}
		return nil, ErrQueueFull
	}

	p.logger.Info("workflow queued",
		zap.String("workflow_id", w.ID),
		zap.String("user_id", req.UserID),
		zap.String("message", logger.Truncate(req.Message, 80)),
		zap.Int("queue_depth", len(p.queue)),
	)
	return w.Clone(), nil
}

// Status returns a snapshot of a workflow.
func (p *Processor) Status(ctx context.Context, id string) (*domain.WorkflowExecution, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StoreTimeout)
	defer cancel()
	return p.repo.Get(ctx, id)
}

// PlannedTasks lists the task types a message is expected to produce.
// Document generation depends on the search returning jobs.
func (p *Processor) PlannedTasks(message string) []domain.TaskType {
	planned := []domain.TaskType{domain.TaskProfileExtraction}
	if ClassifyIntent(message) == domain.IntentJobSearch {
		planned = append(planned, domain.TaskJobSearch)
		if p.cfg.EagerPreview {
			planned = append(planned, domain.TaskDocumentGeneration)
		}
	}
	return planned
}

// Run starts the workers and, when a TTL is configured, the sweeper. It
// blocks until ctx is cancelled. Runs already picked up finish on their own
// timeout; there is no per-workflow cancellation. Workflows still queued at
// shutdown are marked failed.
func (p *Processor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.cfg.Workers; i++ {
		worker := i
		g.Go(func() error {
			for {
				select {
				case <-ctx.Done():
					return nil
				case run := <-p.queue:
					p.execute(run, p.logger.With(zap.Int("worker", worker)))
				}
			}
		})
	}
	if p.cfg.TTL > 0 && p.cfg.SweepInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(p.cfg.SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					p.sweep(ctx)
				}
			}
		})
	}
	err := g.Wait()
	p.drain()
	return err
}

// drain fails every workflow left in the queue so none stays pending after
// the workers are gone.
func (p *Processor) drain() {
	for {
		select {
		case run := <-p.queue:
			log := p.logger.With(zap.String("workflow_id", run.id))
			log.Warn("workflow dropped at shutdown")
			p.finish(run.id, domain.StatusFailed, domain.WorkflowUpdate{At: p.now(), Error: shutdownMessage}, log)
		default:
			return
		}
	}
}

// finish writes a terminal status on a fresh store context, independent of
// the run context that may already be done.
func (p *Processor) finish(id string, status domain.WorkflowStatus, upd domain.WorkflowUpdate, log *zap.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.StoreTimeout)
	defer cancel()
	if err := p.repo.Transition(ctx, id, status, upd); err != nil {
		log.Error("marking workflow "+string(status), zap.Error(err))
		return false
	}
	return true
}

func (p *Processor) sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.StoreTimeout)
	defer cancel()
	n, err := p.repo.Sweep(ctx, p.now().Add(-p.cfg.TTL))
	if err != nil {
		p.logger.Warn("workflow sweep failed", zap.Error(err))
		return
	}
	if n > 0 {
		p.logger.Info("expired workflows removed", zap.Int("count", n))
	}
}

func (p *Processor) execute(run queuedRun, wlog *zap.Logger) {
	log := wlog.With(zap.String("workflow_id", run.id))
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.RunTimeout)
	defer cancel()

	if err := p.repo.Transition(ctx, run.id, domain.StatusRunning, domain.WorkflowUpdate{At: p.now()}); err != nil {
		// swept or already terminal: nothing left to run
		log.Warn("workflow not started", zap.Error(err))
		return
	}
	log.Debug("workflow running")

	record := func(ctx context.Context, task domain.Task) error {
		return p.repo.AppendTask(ctx, run.id, task)
	}
	result, err := p.orch.Run(ctx, run.req, record)
	if err != nil {
		log.Error("workflow failed", zap.Error(err))
		msg := ErrDependency.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "workflow run timed out"
		}
		p.finish(run.id, domain.StatusFailed, domain.WorkflowUpdate{At: p.now(), Error: msg}, log)
		return
	}

	if !p.finish(run.id, domain.StatusCompleted, domain.WorkflowUpdate{At: p.now(), Result: result}, log) {
		return
	}
	log.Info("workflow completed",
		zap.String("intent", string(result.Intent)),
		zap.Int("jobs", len(result.Jobs)),
	)
}
