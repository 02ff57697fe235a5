package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"job-copilot/internal/adapter/repository"
	"job-copilot/internal/domain"
	"job-copilot/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type stubRenderer struct {
	html string
	err  error
}

func (s *stubRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	s.html = html
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

type testServer struct {
	app       *fiber.App
	processor *usecase.Processor
	renderer  *stubRenderer
	subs      *repository.MemorySubmissions
}

func newTestServer(t *testing.T, runWorkers bool) *testServer {
	t.Helper()
	logger := zap.NewNop()
	catalog := usecase.DefaultCatalog()
	profiles := usecase.NewProfiles(repository.NewMemoryProfiles(), 0, logger)
	orch := usecase.NewOrchestrator(profiles, usecase.NewMatcher(catalog), usecase.OrchestratorConfig{EagerPreview: true}, logger)
	processor := usecase.NewProcessor(orch, repository.NewMemoryWorkflows(), usecase.ProcessorConfig{Workers: 2, EagerPreview: true}, logger)
	subs := repository.NewMemorySubmissions()
	renderer := &stubRenderer{}

	h := NewHandler(Deps{
		Profiles:     profiles,
		Orchestrator: orch,
		Processor:    processor,
		Applier:      usecase.NewApplier(catalog, subs, 0, logger),
		Renderer:     renderer,
		Logger:       logger,
	})

	if runWorkers {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = processor.Run(ctx)
			close(done)
		}()
		t.Cleanup(func() {
			cancel()
			<-done
		})
	}
	return &testServer{app: NewApp(h, 0), processor: processor, renderer: renderer, subs: subs}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := s.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("%s %s: %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	out := map[string]interface{}{}
	b, _ := io.ReadAll(resp.Body)
	if len(b) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(b, &out); err != nil {
			t.Fatalf("decode %s: %v", b, err)
		}
	}
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)
	code, body := s.do(t, http.MethodGet, "/health", nil)
	if code != fiber.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health answer %d %v", code, body)
	}
}

func TestUploadAndChat(t *testing.T) {
	s := newTestServer(t, false)

	code, body := s.do(t, http.MethodPost, "/api/upload-docs", map[string]string{"userId": "u1", "cvText": "Python and SQL", "transcriptText": "Bachelor"})
	if code != fiber.StatusOK || body["success"] != true {
		t.Fatalf("upload failed: %d %v", code, body)
	}

	code, body = s.do(t, http.MethodPost, "/api/chat", map[string]string{"userId": "u1", "message": "Find me a job"})
	if code != fiber.StatusOK {
		t.Fatalf("chat failed: %d %v", code, body)
	}
	jobs, _ := body["jobs"].([]interface{})
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %v", body["jobs"])
	}
	if first := jobs[0].(map[string]interface{}); first["id"] != "job-1" || first["matchScore"] != 1.0 {
		t.Fatalf("unexpected first job %v", first)
	}
	docs, _ := body["generatedDocs"].(map[string]interface{})
	if docs == nil || !strings.Contains(docs["cv"].(string), "Junior Data Scientist") {
		t.Fatalf("expected a CV for the top job, got %v", body["generatedDocs"])
	}
}

func TestUploadRequiresADocument(t *testing.T) {
	s := newTestServer(t, false)
	code, body := s.do(t, http.MethodPost, "/api/upload-docs", map[string]string{"userId": "u1"})
	if code != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d %v", code, body)
	}
	if !strings.Contains(body["error"].(string), "at least a CV or transcript") {
		t.Fatalf("unexpected error %v", body["error"])
	}
}

func multipartRequest(t *testing.T, files map[string]string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(strings.Split(name, ":")[0], strings.Split(name, ":")[1])
		if err != nil {
			t.Fatalf("file: %v", err)
		}
		fw.Write([]byte(content))
	}
	mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload-docs", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadMultipart(t *testing.T) {
	s := newTestServer(t, false)

	code, body := s.send(t, multipartRequest(t, map[string]string{"cv:cv.txt": "golang and sql, Master"}, map[string]string{"userId": "u3"}))
	if code != fiber.StatusOK {
		t.Fatalf("multipart upload failed: %d %v", code, body)
	}
	code, body = s.do(t, http.MethodPost, "/api/chat", map[string]string{"userId": "u3", "message": "find golang jobs"})
	if code != fiber.StatusOK {
		t.Fatalf("chat failed: %d %v", code, body)
	}
	jobs, _ := body["jobs"].([]interface{})
	if len(jobs) != 1 || jobs[0].(map[string]interface{})["matchScore"] != 2.5 {
		t.Fatalf("unexpected jobs %v", body["jobs"])
	}

	code, body = s.send(t, multipartRequest(t, map[string]string{"cv:cv.pdf": "%PDF-1.4"}, nil))
	if code != fiber.StatusBadRequest || !strings.Contains(body["error"].(string), "PDF") {
		t.Fatalf("expected PDF uploads to be refused, got %d %v", code, body)
	}
}

func TestChatValidation(t *testing.T) {
	s := newTestServer(t, false)
	cases := []interface{}{
		map[string]interface{}{},
		map[string]interface{}{"message": ""},
		map[string]interface{}{"message": 42},
	}
	for _, body := range cases {
		if code, resp := s.do(t, http.MethodPost, "/api/chat", body); code != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d %v", body, code, resp)
		}
	}
}

func TestApplyConsent(t *testing.T) {
	s := newTestServer(t, false)

	for _, consent := range []interface{}{nil, false, "true", 1} {
		body := map[string]interface{}{"jobId": "job-1", "provider": "MockLinkedIn"}
		if consent != nil {
			body["allowAutoApply"] = consent
		}
		code, resp := s.do(t, http.MethodPost, "/api/apply", body)
		if code != fiber.StatusBadRequest || resp["error"] != "User consent is required for auto-apply." {
			t.Fatalf("consent %v: expected ConsentError, got %d %v", consent, code, resp)
		}
	}
	for name, body := range map[string]map[string]interface{}{
		"no job id":      {"allowAutoApply": false},
		"empty job id":   {"jobId": "", "allowAutoApply": false},
		"numeric job id": {"jobId": 7},
		"empty body":     {},
	} {
		code, resp := s.do(t, http.MethodPost, "/api/apply", body)
		if code != fiber.StatusBadRequest || resp["error"] != "User consent is required for auto-apply." {
			t.Fatalf("%s: expected ConsentError, got %d %v", name, code, resp)
		}
	}
	if subs, _ := s.subs.ListByUser(context.Background(), usecase.DefaultUserID); len(subs) != 0 {
		t.Fatalf("refused applications were recorded: %v", subs)
	}

	code, resp := s.do(t, http.MethodPost, "/api/apply", map[string]interface{}{"allowAutoApply": true})
	if code != fiber.StatusBadRequest || resp["error"] == "User consent is required for auto-apply." {
		t.Fatalf("expected a validation error once consent is given, got %d %v", code, resp)
	}

	code, resp = s.do(t, http.MethodPost, "/api/apply", map[string]interface{}{"jobId": "job-1", "allowAutoApply": true})
	if code != fiber.StatusOK || resp["success"] != true {
		t.Fatalf("expected success, got %d %v", code, resp)
	}
	if resp["message"] != "Application submitted (simulated for demo)." {
		t.Fatalf("unexpected message %v", resp["message"])
	}

	code, _ = s.do(t, http.MethodPost, "/api/apply", map[string]interface{}{"jobId": "job-404", "allowAutoApply": true})
	if code != fiber.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown job, got %d", code)
	}
}

func TestWorkflowLifecycle(t *testing.T) {
	s := newTestServer(t, true)

	code, body := s.do(t, http.MethodPost, "/workflow/start", map[string]interface{}{
		"user_input":   "Find me a job",
		"user_data":    map[string]string{"userId": "u9", "language": "en"},
		"profile_hint": map[string]interface{}{"skills": []string{"python", "sql"}, "degree": "bachelor"},
	})
	if code != fiber.StatusAccepted {
		t.Fatalf("expected 202, got %d %v", code, body)
	}
	id, _ := body["workflow_id"].(string)
	if id == "" || body["status"] != "pending" {
		t.Fatalf("unexpected start answer %v", body)
	}
	if planned, _ := body["planned_tasks"].([]interface{}); len(planned) != 3 {
		t.Fatalf("expected 3 planned tasks, got %v", body["planned_tasks"])
	}

	w, err := usecase.Poll(context.Background(), usecase.PollConfig{Interval: 10 * time.Millisecond, MaxAttempts: 200}, func(context.Context) (*domain.WorkflowExecution, error) {
		code, body := s.do(t, http.MethodGet, "/workflow/status/"+id, nil)
		if code != fiber.StatusOK {
			return nil, errors.New("unexpected status code")
		}
		return &domain.WorkflowExecution{ID: id, Status: domain.WorkflowStatus(body["status"].(string))}, nil
	})
	if err != nil {
		t.Fatalf("poll: %v", err)
	}
	if w.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %s", w.Status)
	}

	_, body = s.do(t, http.MethodGet, "/workflow/status/"+id, nil)
	if body["intent"] != "job_search" {
		t.Fatalf("expected job_search intent, got %v", body["intent"])
	}
	if tasks, _ := body["tasks"].([]interface{}); len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %v", body["tasks"])
	}

	req := httptest.NewRequest(http.MethodGet, "/workflow/"+id+"/documents.pdf", nil)
	resp, err := s.app.Test(req, 5000)
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK || resp.Header.Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected a PDF, got %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(s.renderer.html, "Junior Data Scientist") {
		t.Fatalf("rendered HTML misses the job title")
	}
}

func TestWorkflowNotFoundAndNotReady(t *testing.T) {
	s := newTestServer(t, false)

	if code, _ := s.do(t, http.MethodGet, "/workflow/status/missing", nil); code != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}

	_, body := s.do(t, http.MethodPost, "/workflow/start", map[string]interface{}{"user_input": "hello"})
	id := body["workflow_id"].(string)

	code, body := s.do(t, http.MethodGet, "/workflow/status/"+id, nil)
	if code != fiber.StatusOK || body["status"] != "pending" {
		t.Fatalf("expected pending, got %d %v", code, body)
	}
	if code, _ := s.do(t, http.MethodGet, "/workflow/"+id+"/documents.pdf", nil); code != fiber.StatusConflict {
		t.Fatalf("expected 409 before documents exist, got %d", code)
	}
}

func TestStartValidation(t *testing.T) {
	s := newTestServer(t, false)
	for _, body := range []interface{}{
		map[string]interface{}{},
		map[string]interface{}{"user_input": "find jobs", "profile_hint": map[string]interface{}{"skills": 3}},
	} {
		if code, resp := s.do(t, http.MethodPost, "/workflow/start", body); code != fiber.StatusBadRequest {
			t.Fatalf("expected 400 for %v, got %d %v", body, code, resp)
		}
	}
}
