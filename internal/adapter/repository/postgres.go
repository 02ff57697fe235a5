package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"job-copilot/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

type PostgresProfiles struct {
	pool *pgxpool.Pool
}

func NewPostgresProfiles(pool *pgxpool.Pool) *PostgresProfiles {
	return &PostgresProfiles{pool: pool}
}

func (r *PostgresProfiles) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var (
		p          domain.UserProfile
		structured []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT user_id, cv_text, transcript_text, structured_profile, updated_at FROM user_profiles WHERE user_id = $1`,
		userID).Scan(&p.UserID, &p.CVText, &p.TranscriptText, &structured, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(structured) > 0 {
		var sp domain.StructuredProfile
		if err := json.Unmarshal(structured, &sp); err != nil {
			return nil, fmt.Errorf("decode structured profile: %w", err)
		}
		p.StructuredProfile = &sp
	}
	return &p, nil
}

func (r *PostgresProfiles) Save(ctx context.Context, p *domain.UserProfile) error {
	var structured []byte
	if p.StructuredProfile != nil {
		b, err := json.Marshal(p.StructuredProfile)
		if err != nil {
			return err
		}
		structured = b
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO user_profiles (user_id, cv_text, transcript_text, structured_profile, updated_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (user_id) DO UPDATE SET cv_text = EXCLUDED.cv_text, transcript_text = EXCLUDED.transcript_text, structured_profile = EXCLUDED.structured_profile, updated_at = EXCLUDED.updated_at`,
		p.UserID, p.CVText, p.TranscriptText, structured, p.UpdatedAt)
	return err
}

func (r *PostgresProfiles) Delete(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM user_profiles WHERE user_id = $1`, userID)
	return err
}

// PostgresWorkflows keeps the workflow status table in Postgres. Status
// changes are guarded in SQL so concurrent writers cannot regress a workflow.
type PostgresWorkflows struct {
	pool *pgxpool.Pool
}

func NewPostgresWorkflows(pool *pgxpool.Pool) *PostgresWorkflows {
	return &PostgresWorkflows{pool: pool}
}

func (r *PostgresWorkflows) Create(ctx context.Context, w *domain.WorkflowExecution) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO workflows (id, user_id, message, language, status, error, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		w.ID, w.UserID, w.Message, w.Language, string(w.Status), w.Error, w.CreatedAt, w.UpdatedAt)
	return err
}

func (r *PostgresWorkflows) Get(ctx context.Context, id string) (*domain.WorkflowExecution, error) {
	var (
		w      domain.WorkflowExecution
		status string
		result []byte
	)
	err := r.pool.QueryRow(ctx, `SELECT id, user_id, message, language, status, result, error, created_at, updated_at, started_at, completed_at
		FROM workflows WHERE id = $1`, id).
		Scan(&w.ID, &w.UserID, &w.Message, &w.Language, &status, &result, &w.Error, &w.CreatedAt, &w.UpdatedAt, &w.StartedAt, &w.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	w.Status = domain.WorkflowStatus(status)
	if len(result) > 0 {
		var res domain.ChatResult
		if err := json.Unmarshal(result, &res); err != nil {
			return nil, fmt.Errorf("decode workflow result: %w", err)
		}
		w.Result = &res
	}

	rows, err := r.pool.Query(ctx, `SELECT id, task_type, output, created_at FROM workflow_tasks WHERE workflow_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	w.Tasks = []domain.Task{}
	for rows.Next() {
		var (
			t      domain.Task
			typ    string
			output []byte
		)
		if err := rows.Scan(&t.ID, &typ, &output, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = domain.TaskType(typ)
		if len(output) > 0 {
			if err := json.Unmarshal(output, &t.Output); err != nil {
				return nil, fmt.Errorf("decode task output: %w", err)
			}
		}
		w.Tasks = append(w.Tasks, t)
	}
	return &w, rows.Err()
}

func (r *PostgresWorkflows) AppendTask(ctx context.Context, id string, task domain.Task) error {
	output, err := json.Marshal(task.Output)
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `INSERT INTO workflow_tasks (id, workflow_id, task_type, output, created_at)
		SELECT $1, w.id, $3, $4, $5 FROM workflows w WHERE w.id = $2 AND w.status IN ('pending','running')`,
		task.ID, id, string(task.Type), output, task.CreatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missOrTerminal(ctx, id)
	}
	_, err = r.pool.Exec(ctx, `UPDATE workflows SET updated_at = $2 WHERE id = $1`, id, task.CreatedAt)
	return err
}

// previousStatuses lists the statuses a workflow may move to next from.
func previousStatuses(next domain.WorkflowStatus) []string {
	out := []string{}
	for _, s := range []domain.WorkflowStatus{domain.StatusPending, domain.StatusRunning, domain.StatusCompleted, domain.StatusFailed} {
		if s.CanTransition(next) {
			out = append(out, string(s))
		}
	}
	return out
}

func (r *PostgresWorkflows) Transition(ctx context.Context, id string, next domain.WorkflowStatus, upd domain.WorkflowUpdate) error {
	at := upd.At
	if at.IsZero() {
		at = time.Now()
	}
	var result []byte
	if upd.Result != nil {
		b, err := json.Marshal(upd.Result)
		if err != nil {
			return err
		}
		result = b
	}

	var (
		startedAt   *time.Time
		completedAt *time.Time
	)
	if next == domain.StatusRunning {
		startedAt = &at
	} else if next.Terminal() {
		completedAt = &at
	}

	tag, err := r.pool.Exec(ctx, `UPDATE workflows SET status = $2, updated_at = $3,
			started_at = COALESCE($4, started_at),
			completed_at = COALESCE($5, completed_at),
			result = COALESCE($6, result),
			error = $7
		WHERE id = $1 AND status = ANY($8)`,
		id, string(next), at, startedAt, completedAt, result, upd.Error, previousStatuses(next))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missOrTerminal(ctx, id)
	}
	return nil
}

func (r *PostgresWorkflows) missOrTerminal(ctx context.Context, id string) error {
	var status string
	err := r.pool.QueryRow(ctx, `SELECT status FROM workflows WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: workflow %s is %s", domain.ErrInvalidTransition, id, status)
}

func (r *PostgresWorkflows) Sweep(ctx context.Context, before time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM workflows WHERE status IN ('completed','failed') AND updated_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

type PostgresSubmissions struct {
	pool *pgxpool.Pool
}

func NewPostgresSubmissions(pool *pgxpool.Pool) *PostgresSubmissions {
	return &PostgresSubmissions{pool: pool}
}

func (r *PostgresSubmissions) Record(ctx context.Context, s domain.Submission) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO submissions (id, user_id, job_id, provider, host_label, created_at) VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, s.UserID, s.JobID, s.Provider, s.HostLabel, s.CreatedAt)
	return err
}
