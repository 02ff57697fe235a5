package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	httpadapter "job-copilot/internal/adapter/http"
	"job-copilot/internal/adapter/repository"
	"job-copilot/internal/domain"
	"job-copilot/internal/model"
	"job-copilot/internal/usecase"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"go.uber.org/zap"
)

func TestAPIErrorMapping(t *testing.T) {
	cases := []struct {
		status  int
		message string
		target  error
	}{
		{http.StatusNotFound, "Not found.", usecase.ErrNotFound},
		{http.StatusServiceUnavailable, "busy", usecase.ErrQueueFull},
		{http.StatusBadRequest, "User consent is required for auto-apply.", usecase.ErrConsent},
		{http.StatusBadRequest, "invalid input: message", usecase.ErrInput},
	}

	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": tc.message})
		}))
		_, err := New(srv.URL).Chat(context.Background(), model.ChatRequest{Message: "hi"})
		srv.Close()

		var apiErr *APIError
		if !errors.As(err, &apiErr) || apiErr.Message != tc.message {
			t.Fatalf("expected APIError with %q, got %v", tc.message, err)
		}
		if !errors.Is(err, tc.target) {
			t.Fatalf("expected %d %q to match %v", tc.status, tc.message, tc.target)
		}
	}
}

func TestWaitWorkflowReportsServerFailure(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := domain.StatusRunning
		if atomic.AddInt32(&calls, 1) >= 3 {
			status = domain.StatusFailed
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"workflow_id": "w1", "status": status, "error": "processing failed"})
	}))
	defer srv.Close()

	_, err := New(srv.URL).WaitWorkflow(context.Background(), "w1", usecase.PollConfig{Interval: time.Millisecond, MaxAttempts: 10})
	if !errors.Is(err, usecase.ErrWorkflowFailed) {
		t.Fatalf("expected ErrWorkflowFailed, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 3 {
		t.Fatalf("expected 3 polls, got %d", calls)
	}
}

func TestClientAgainstServer(t *testing.T) {
	logger := zap.NewNop()
	catalog := usecase.DefaultCatalog()
	profiles := usecase.NewProfiles(repository.NewMemoryProfiles(), 0, logger)
	orch := usecase.NewOrchestrator(profiles, usecase.NewMatcher(catalog), usecase.OrchestratorConfig{EagerPreview: true}, logger)
	processor := usecase.NewProcessor(orch, repository.NewMemoryWorkflows(), usecase.ProcessorConfig{Workers: 1, EagerPreview: true}, logger)
	h := httpadapter.NewHandler(httpadapter.Deps{
		Profiles:     profiles,
		Orchestrator: orch,
		Processor:    processor,
		Applier:      usecase.NewApplier(catalog, repository.NewMemorySubmissions(), 0, logger),
		Logger:       logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = processor.Run(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	srv := httptest.NewServer(adaptor.FiberApp(httpadapter.NewApp(h, 0)))
	defer srv.Close()
	c := New(srv.URL)

	err := c.UploadFiles(context.Background(), "cli-user", map[string]FileUpload{
		"cv": {Name: "cv.txt", Content: []byte("React and Node, JavaScript. Bachelor")},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	start, err := c.StartWorkflow(context.Background(), model.StartRequest{UserInput: "find a job", UserData: model.UserData{UserID: "cli-user"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	w, err := c.WaitWorkflow(context.Background(), start.WorkflowID, usecase.PollConfig{Interval: 10 * time.Millisecond, MaxAttempts: 200})
	if err != nil {
		t.Fatalf("wait: %v", err)
	}
	if w.Result == nil || len(w.Result.Jobs) != 1 || w.Result.Jobs[0].ID != "job-2" {
		t.Fatalf("expected job-2, got %+v", w.Result)
	}

	if _, err := c.Apply(context.Background(), model.ApplyRequest{JobID: "job-2", UserID: "cli-user", AllowAutoApply: false}); !errors.Is(err, usecase.ErrConsent) {
		t.Fatalf("expected ErrConsent, got %v", err)
	}
	res, err := c.Apply(context.Background(), model.ApplyRequest{JobID: "job-2", UserID: "cli-user", AllowAutoApply: true})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if !res.Success || res.Submission.Provider != "MockIndeed" {
		t.Fatalf("unexpected apply answer %+v", res)
	}

	if _, err := c.WorkflowStatus(context.Background(), "missing"); !errors.Is(err, usecase.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
