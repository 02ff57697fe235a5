package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"job-copilot/internal/domain"
	"job-copilot/internal/model"
	"job-copilot/internal/usecase"
)

// Client talks to a running copilot server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Status, e.Message)
}

// Is maps well known statuses onto the use case sentinels so callers can use
// errors.Is on client errors too.
func (e *APIError) Is(target error) bool {
	switch e.Status {
	case http.StatusNotFound:
		return target == usecase.ErrNotFound
	case http.StatusServiceUnavailable:
		return target == usecase.ErrQueueFull
	case http.StatusBadRequest:
		if strings.Contains(strings.ToLower(e.Message), "consent") {
			return target == usecase.ErrConsent
		}
		return target == usecase.ErrInput
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(b))
		}
		return &APIError{Status: resp.StatusCode, Message: e.Error}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out interface{}) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(b), out)
}

// UploadFiles sends the documents as multipart text files. Empty paths are skipped.
func (c *Client) UploadFiles(ctx context.Context, userID string, files map[string]FileUpload) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if userID != "" {
		if err := mw.WriteField("userId", userID); err != nil {
			return err
		}
	}
	for field, f := range files {
		w, err := mw.CreateFormFile(field, filepath.Base(f.Name))
		if err != nil {
			return err
		}
		if _, err := w.Write(f.Content); err != nil {
			return err
		}
	}
	if err := mw.Close(); err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, "/api/upload-docs", mw.FormDataContentType(), &buf, nil)
}

type FileUpload struct {
	Name    string
	Content []byte
}

func (c *Client) Upload(ctx context.Context, req model.UploadRequest) error {
	return c.postJSON(ctx, "/api/upload-docs", req, nil)
}

type ChatResponse struct {
	Reply         string                `json:"reply"`
	Jobs          []domain.Job          `json:"jobs"`
	GeneratedDocs *domain.GeneratedDocs `json:"generatedDocs"`
}

func (c *Client) Chat(ctx context.Context, req model.ChatRequest) (*ChatResponse, error) {
	var out ChatResponse
	if err := c.postJSON(ctx, "/api/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type StartResponse struct {
	WorkflowID   string                `json:"workflow_id"`
	Status       domain.WorkflowStatus `json:"status"`
	PlannedTasks []domain.TaskType     `json:"planned_tasks"`
}

func (c *Client) StartWorkflow(ctx context.Context, req model.StartRequest) (*StartResponse, error) {
	var out StartResponse
	if err := c.postJSON(ctx, "/workflow/start", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) WorkflowStatus(ctx context.Context, id string) (*domain.WorkflowExecution, error) {
	var out domain.WorkflowExecution
	if err := c.do(ctx, http.MethodGet, "/workflow/status/"+id, "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitWorkflow polls the status endpoint until the workflow finishes.
func (c *Client) WaitWorkflow(ctx context.Context, id string, cfg usecase.PollConfig) (*domain.WorkflowExecution, error) {
	return usecase.Poll(ctx, cfg, func(ctx context.Context) (*domain.WorkflowExecution, error) {
		return c.WorkflowStatus(ctx, id)
	})
}

type ApplyResponse struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Submission domain.Submission `json:"submission"`
}

func (c *Client) Apply(ctx context.Context, req model.ApplyRequest) (*ApplyResponse, error) {
	var out ApplyResponse
	if err := c.postJSON(ctx, "/api/apply", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
