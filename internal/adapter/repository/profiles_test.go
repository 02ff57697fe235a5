package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"job-copilot/internal/domain"
	"job-copilot/pkg/infrastructure"
)

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.UserProfile, error)
	Save(ctx context.Context, p *domain.UserProfile) error
	Delete(ctx context.Context, userID string) error
}

func profileStores(t *testing.T) map[string]profileStore {
	t.Helper()

	file, err := NewFileProfiles(filepath.Join(t.TempDir(), "profiles"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}

	db, err := infrastructure.OpenSQLite(filepath.Join(t.TempDir(), "copilot.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := InitSQLite(context.Background(), db); err != nil {
		t.Fatalf("init sqlite: %v", err)
	}

	return map[string]profileStore{
		"memory": NewMemoryProfiles(),
		"file":   file,
		"sqlite": NewSQLiteProfiles(db),
	}
}

func TestProfileStores(t *testing.T) {
	ctx := context.Background()
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for name, store := range profileStores(t) {
		store := store
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "ghost"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			p := &domain.UserProfile{UserID: "user/1", CVText: "python", UpdatedAt: updated}
			if err := store.Save(ctx, p); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err := store.Get(ctx, "user/1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.CVText != "python" || got.StructuredProfile != nil || !got.UpdatedAt.Equal(updated) {
				t.Fatalf("unexpected profile %+v", got)
			}

			p.StructuredProfile = &domain.StructuredProfile{Name: "Unknown", Degree: domain.DegreeMaster, Skills: []string{"python"}}
			if err := store.Save(ctx, p); err != nil {
				t.Fatalf("save: %v", err)
			}
			got, err = store.Get(ctx, "user/1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if got.StructuredProfile == nil || got.StructuredProfile.Degree != domain.DegreeMaster || !got.StructuredProfile.HasSkill("python") {
				t.Fatalf("structured profile not stored: %+v", got.StructuredProfile)
			}

			// callers must not be able to change stored state through returned values
			got.StructuredProfile.Skills[0] = "cobol"
			again, _ := store.Get(ctx, "user/1")
			if !again.StructuredProfile.HasSkill("python") {
				t.Fatalf("returned profile aliases storage")
			}

			if err := store.Delete(ctx, "user/1"); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if _, err := store.Get(ctx, "user/1"); !errors.Is(err, domain.ErrNotFound) {
				t.Fatalf("expected ErrNotFound after delete, got %v", err)
			}
			if err := store.Delete(ctx, "user/1"); err != nil {
				t.Fatalf("deleting twice: %v", err)
			}
		})
	}
}

func TestFileProfilesSanitizesNames(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileProfiles(dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := store.path("../../etc/passwd"); filepath.Dir(got) != dir {
		t.Fatalf("path escaped the profile dir: %s", got)
	}
}

func TestSubmissionLogs(t *testing.T) {
	ctx := context.Background()
	db, err := infrastructure.OpenSQLite(filepath.Join(t.TempDir(), "copilot.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()
	if err := InitSQLite(ctx, db); err != nil {
		t.Fatalf("init: %v", err)
	}

	type submissionLog interface {
		Record(ctx context.Context, s domain.Submission) error
		ListByUser(ctx context.Context, userID string) ([]domain.Submission, error)
	}
	logs := map[string]submissionLog{
		"memory": NewMemorySubmissions(),
		"sqlite": NewSQLiteSubmissions(db),
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for name, log := range logs {
		for i, id := range []string{"s1", "s2"} {
			s := domain.Submission{ID: id, UserID: "u1", JobID: "job-1", Provider: "MockLinkedIn", HostLabel: "example.com", CreatedAt: base.Add(time.Duration(i) * time.Minute)}
			if err := log.Record(ctx, s); err != nil {
				t.Fatalf("%s: record: %v", name, err)
			}
		}
		if err := log.Record(ctx, domain.Submission{ID: "s3", UserID: "u2", JobID: "job-2", CreatedAt: base}); err != nil {
			t.Fatalf("%s: record: %v", name, err)
		}

		got, err := log.ListByUser(ctx, "u1")
		if err != nil {
			t.Fatalf("%s: list: %v", name, err)
		}
		if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s2" || got[1].HostLabel != "example.com" {
			t.Fatalf("%s: unexpected submissions %+v", name, got)
		}
	}
}
