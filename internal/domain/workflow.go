package domain

import (
	"time"
)

type WorkflowStatus string

const (
	StatusPending   WorkflowStatus = "pending"
	StatusRunning   WorkflowStatus = "running"
	StatusCompleted WorkflowStatus = "completed"
	StatusFailed    WorkflowStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s WorkflowStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next keeps the status
// monotonic: pending -> running -> completed|failed. A pending workflow may
// also fail directly when it cannot be started.
func (s WorkflowStatus) CanTransition(next WorkflowStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusRunning || next == StatusFailed
	case StatusRunning:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}

type TaskType string

const (
	TaskProfileExtraction  TaskType = "profile_extraction"
	TaskJobSearch          TaskType = "job_search"
	TaskDocumentGeneration TaskType = "document_generation"
)

type Intent string

const (
	IntentGeneral   Intent = "general"
	IntentJobSearch Intent = "job_search"
	IntentApply     Intent = "apply"
)

// Task is one recorded step of a workflow together with its output.
type Task struct {
	ID        string      `json:"task_id"`
	Type      TaskType    `json:"task_type"`
	Output    interface{} `json:"output"`
	CreatedAt time.Time   `json:"created_at"`
}

// ChatResult is the reply payload assembled by the orchestrator.
type ChatResult struct {
	Reply         string         `json:"reply"`
	Intent        Intent         `json:"intent"`
	Jobs          []Job          `json:"jobs"`
	GeneratedDocs *GeneratedDocs `json:"generatedDocs"`
}

// WorkflowExecution tracks one asynchronous run of the orchestrator.
type WorkflowExecution struct {
	ID          string         `json:"workflow_id"`
	UserID      string         `json:"user_id"`
	Message     string         `json:"message"`
	Language    string         `json:"language"`
	Status      WorkflowStatus `json:"status"`
	Tasks       []Task         `json:"tasks"`
	Result      *ChatResult    `json:"result,omitempty"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	StartedAt   *time.Time     `json:"started_at,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
}

// Clone returns a copy that shares no slices or pointers with w.
func (w *WorkflowExecution) Clone() *WorkflowExecution {
	if w == nil {
		return nil
	}
	out := *w
	out.Tasks = append([]Task(nil), w.Tasks...)
	if w.Result != nil {
		r := *w.Result
		r.Jobs = append([]Job(nil), w.Result.Jobs...)
		for i := range r.Jobs {
			r.Jobs[i].RequiredSkills = append([]string(nil), r.Jobs[i].RequiredSkills...)
		}
		if w.Result.GeneratedDocs != nil {
			d := *w.Result.GeneratedDocs
			r.GeneratedDocs = &d
		}
		out.Result = &r
	}
	if w.StartedAt != nil {
		t := *w.StartedAt
		out.StartedAt = &t
	}
	if w.CompletedAt != nil {
		t := *w.CompletedAt
		out.CompletedAt = &t
	}
	return &out
}

// FindTask returns the first task of the given type, if recorded.
func (w *WorkflowExecution) FindTask(t TaskType) (Task, bool) {
	for _, task := range w.Tasks {
		if task.Type == t {
			return task, true
		}
	}
	return Task{}, false
}

// Submission records one simulated job application.
type Submission struct {
	ID        string    `json:"submission_id"`
	UserID    string    `json:"user_id"`
	JobID     string    `json:"job_id"`
	Provider  string    `json:"provider"`
	HostLabel string    `json:"host_label"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkflowUpdate carries the fields written together with a status change.
type WorkflowUpdate struct {
	At     time.Time
	Result *ChatResult
	Error  string
}
