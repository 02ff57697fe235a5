package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"job-copilot/internal/domain"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// FileProfiles stores one JSON document per user under dir.
type FileProfiles struct {
	dir string
}

func NewFileProfiles(dir string) (*FileProfiles, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	return &FileProfiles{dir: dir}, nil
}

func (r *FileProfiles) path(userID string) string {
	return filepath.Join(r.dir, unsafeFileChars.ReplaceAllString(userID, "_")+".json")
}

func (r *FileProfiles) Get(_ context.Context, userID string) (*domain.UserProfile, error) {
	b, err := os.ReadFile(r.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var p domain.UserProfile
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", userID, err)
	}
	return &p, nil
}

func (r *FileProfiles) Save(_ context.Context, p *domain.UserProfile) error {
	b, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	// write then rename so readers never see a partial file
	tmp, err := os.CreateTemp(r.dir, ".profile-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path(p.UserID))
}

func (r *FileProfiles) Delete(_ context.Context, userID string) error {
	err := os.Remove(r.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
