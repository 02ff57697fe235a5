package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"job-copilot/internal/domain"
)

type workflowEntry struct {
	mu sync.Mutex
	w  *domain.WorkflowExecution
}

// MemoryWorkflows is the in-process workflow status table. The map lock only
// guards membership; each entry has its own mutex so updates to different
// workflows never contend.
type MemoryWorkflows struct {
	mu      sync.RWMutex
	entries map[string]*workflowEntry
}

func NewMemoryWorkflows() *MemoryWorkflows {
	return &MemoryWorkflows{entries: map[string]*workflowEntry{}}
}

func (r *MemoryWorkflows) Create(_ context.Context, w *domain.WorkflowExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[w.ID]; ok {
		return fmt.Errorf("workflow %s already exists", w.ID)
	}
	r.entries[w.ID] = &workflowEntry{w: w.Clone()}
	return nil
}

func (r *MemoryWorkflows) entry(id string) (*workflowEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

func (r *MemoryWorkflows) Get(_ context.Context, id string) (*domain.WorkflowExecution, error) {
	e, err := r.entry(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.w.Clone(), nil
}

func (r *MemoryWorkflows) AppendTask(_ context.Context, id string, task domain.Task) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.w.Status.Terminal() {
		return fmt.Errorf("%w: workflow %s is %s", domain.ErrInvalidTransition, id, e.w.Status)
	}
	e.w.Tasks = append(e.w.Tasks, task)
	e.w.UpdatedAt = task.CreatedAt
	return nil
}

func (r *MemoryWorkflows) Transition(_ context.Context, id string, next domain.WorkflowStatus, upd domain.WorkflowUpdate) error {
	e, err := r.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.w.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, e.w.Status, next)
	}
	applyUpdate(e.w, next, upd)
	return nil
}

// applyUpdate writes a permitted status change onto w.
func applyUpdate(w *domain.WorkflowExecution, next domain.WorkflowStatus, upd domain.WorkflowUpdate) {
	at := upd.At
	if at.IsZero() {
		at = time.Now()
	}
	w.Status = next
	w.UpdatedAt = at
	switch next {
	case domain.StatusRunning:
		w.StartedAt = &at
	case domain.StatusCompleted, domain.StatusFailed:
		w.CompletedAt = &at
		if upd.Result != nil {
			w.Result = (&domain.WorkflowExecution{Result: upd.Result}).Clone().Result
		}
		w.Error = upd.Error
	}
}

func (r *MemoryWorkflows) Sweep(_ context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, e := range r.entries {
		e.mu.Lock()
		expired := e.w.Status.Terminal() && e.w.UpdatedAt.Before(before)
		e.mu.Unlock()
		if expired {
			delete(r.entries, id)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored workflows.
func (r *MemoryWorkflows) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
