package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"job-copilot/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS user_profiles (
	user_id            TEXT PRIMARY KEY,
	cv_text            TEXT NOT NULL DEFAULT '',
	transcript_text    TEXT NOT NULL DEFAULT '',
	structured_profile TEXT,
	updated_at         TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS submissions (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	job_id     TEXT NOT NULL,
	provider   TEXT NOT NULL,
	host_label TEXT NOT NULL,
	created_at TEXT NOT NULL
);
`

// InitSQLite creates the tables used by the SQLite backends.
func InitSQLite(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}
	return nil
}

type SQLiteProfiles struct {
	db *sql.DB
}

func NewSQLiteProfiles(db *sql.DB) *SQLiteProfiles {
	return &SQLiteProfiles{db: db}
}

func (r *SQLiteProfiles) Get(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var (
		p          domain.UserProfile
		structured sql.NullString
		updated    string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, cv_text, transcript_text, structured_profile, updated_at FROM user_profiles WHERE user_id = ?`,
		userID).Scan(&p.UserID, &p.CVText, &p.TranscriptText, &structured, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if structured.Valid && structured.String != "" {
		var sp domain.StructuredProfile
		if err := json.Unmarshal([]byte(structured.String), &sp); err != nil {
			return nil, fmt.Errorf("decode structured profile: %w", err)
		}
		p.StructuredProfile = &sp
	}
	if t, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		p.UpdatedAt = t
	}
	return &p, nil
}

func (r *SQLiteProfiles) Save(ctx context.Context, p *domain.UserProfile) error {
	var structured sql.NullString
	if p.StructuredProfile != nil {
		b, err := json.Marshal(p.StructuredProfile)
		if err != nil {
			return err
		}
		structured = sql.NullString{String: string(b), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO user_profiles (user_id, cv_text, transcript_text, structured_profile, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT (user_id) DO UPDATE SET cv_text = excluded.cv_text, transcript_text = excluded.transcript_text, structured_profile = excluded.structured_profile, updated_at = excluded.updated_at`,
		p.UserID, p.CVText, p.TranscriptText, structured, p.UpdatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (r *SQLiteProfiles) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_profiles WHERE user_id = ?`, userID)
	return err
}

// SQLiteSubmissions is the application log kept next to the profiles.
type SQLiteSubmissions struct {
	db *sql.DB
}

func NewSQLiteSubmissions(db *sql.DB) *SQLiteSubmissions {
	return &SQLiteSubmissions{db: db}
}

func (r *SQLiteSubmissions) Record(ctx context.Context, s domain.Submission) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO submissions (id, user_id, job_id, provider, host_label, created_at) VALUES (?,?,?,?,?,?)`,
		s.ID, s.UserID, s.JobID, s.Provider, s.HostLabel, s.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

// ListByUser returns the submissions of a user, oldest first.
func (r *SQLiteSubmissions) ListByUser(ctx context.Context, userID string) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, job_id, provider, host_label, created_at FROM submissions WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Submission{}
	for rows.Next() {
		var (
			s       domain.Submission
			created string
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.JobID, &s.Provider, &s.HostLabel, &created); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			s.CreatedAt = t
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
