package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"job-copilot/internal/domain"
	"job-copilot/internal/model"
	"job-copilot/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxDocumentBytes = 2 << 20

// Handler serves the copilot API on top of the use cases.
type Handler struct {
	profiles  *usecase.Profiles
	orch      *usecase.Orchestrator
	processor *usecase.Processor
	applier   *usecase.Applier
	renderer  usecase.Renderer
	logger    *zap.Logger
}

type Deps struct {
	Profiles     *usecase.Profiles
	Orchestrator *usecase.Orchestrator
	Processor    *usecase.Processor
	Applier      *usecase.Applier
	// Renderer may be nil; the PDF endpoint then answers 503.
	Renderer usecase.Renderer
	Logger   *zap.Logger
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		profiles:  d.Profiles,
		orch:      d.Orchestrator,
		processor: d.Processor,
		applier:   d.Applier,
		renderer:  d.Renderer,
		logger:    logger,
	}
}

// Register mounts every route on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)

	api := app.Group("/api")
	api.Post("/upload-docs", h.UploadDocs)
	api.Post("/chat", h.Chat)
	api.Post("/apply", h.Apply)

	wf := app.Group("/workflow")
	wf.Post("/start", h.StartWorkflow)
	wf.Get("/status/:id", h.WorkflowStatus)
	wf.Get("/:id/documents.pdf", h.WorkflowDocumentsPDF)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// decode validates the raw body against a schema before binding it.
func decode(c *fiber.Ctx, schema string, out interface{}) error {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := model.ValidateJSON(schema, body); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInput, err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", usecase.ErrInput, err)
	}
	return nil
}

func (h *Handler) UploadDocs(c *fiber.Ctx) error {
	var req model.UploadRequest
	if strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm) {
		var err error
		if req, err = readMultipartUpload(c); err != nil {
			return h.fail(c, err, "Failed to process documents.")
		}
	} else if err := decode(c, model.SchemaUpload, &req); err != nil {
		return h.fail(c, err, "Failed to process documents.")
	}

	if err := h.profiles.Upload(c.UserContext(), req.UserID, req.CVText, req.TranscriptText); err != nil {
		return h.fail(c, err, "Failed to process documents.")
	}
	return c.JSON(fiber.Map{"success": true, "message": "Documents uploaded."})
}

func readMultipartUpload(c *fiber.Ctx) (model.UploadRequest, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return model.UploadRequest{}, fmt.Errorf("%w: multipart form: %v", usecase.ErrInput, err)
	}
	req := model.UploadRequest{}
	if ids := form.Value["userId"]; len(ids) > 0 {
		req.UserID = ids[0]
	}
	if req.CVText, err = readTextFile(form, "cv"); err != nil {
		return req, err
	}
	if req.TranscriptText, err = readTextFile(form, "transcript"); err != nil {
		return req, err
	}
	return req, nil
}

// readTextFile returns the content of an uploaded text file, or "" when the
// field is absent. PDFs are refused.
func readTextFile(form *multipart.Form, field string) (string, error) {
	files := form.File[field]
	if len(files) == 0 {
		return "", nil
	}
	fh := files[0]
	if fh.Header.Get(fiber.HeaderContentType) == "application/pdf" || strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return "", fmt.Errorf("%w: %s: PDF uploads are not supported, upload plain text", usecase.ErrInput, field)
	}
	if fh.Size > maxDocumentBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", usecase.ErrInput, field, maxDocumentBytes)
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	b, err := io.ReadAll(io.LimitReader(f, maxDocumentBytes))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *Handler) Chat(c *fiber.Ctx) error {
	var req model.ChatRequest
	if err := decode(c, model.SchemaChat, &req); err != nil {
		return h.fail(c, err, "Chat processing failed.")
	}
	res, err := h.orch.Chat(c.UserContext(), usecase.ChatRequest{
		UserID:   req.UserID,
		Message:  req.Message,
		Language: req.Language,
	})
	if err != nil {
		return h.fail(c, err, "Chat processing failed.")
	}
	return c.JSON(fiber.Map{
		"reply":         res.Reply,
		"jobs":          res.Jobs,
		"generatedDocs": res.GeneratedDocs,
	})
}

func (h *Handler) StartWorkflow(c *fiber.Ctx) error {
	var req model.StartRequest
	if err := decode(c, model.SchemaStart, &req); err != nil {
		return h.fail(c, err, "Failed to start workflow.")
	}
	hint, err := usecase.NewProfileHintFromMap(req.ProfileHint)
	if err != nil {
		return h.fail(c, err, "Failed to start workflow.")
	}

	w, err := h.processor.Start(c.UserContext(), usecase.ChatRequest{
		UserID:      req.UserData.UserID,
		Message:     req.UserInput,
		Language:    req.UserData.Language,
		ProfileHint: hint,
	})
	if err != nil {
		return h.fail(c, err, "Failed to start workflow.")
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"workflow_id":   w.ID,
		"status":        w.Status,
		"planned_tasks": h.processor.PlannedTasks(req.UserInput),
	})
}

func (h *Handler) WorkflowStatus(c *fiber.Ctx) error {
	w, err := h.processor.Status(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to load workflow.")
	}
	return c.JSON(statusBody(w))
}

func statusBody(w *domain.WorkflowExecution) fiber.Map {
	var intent domain.Intent
	if w.Result != nil {
		intent = w.Result.Intent
	}
	return fiber.Map{
		"workflow_id":  w.ID,
		"status":       w.Status,
		"intent":       intent,
		"tasks":        w.Tasks,
		"result":       w.Result,
		"error":        w.Error,
		"created_at":   w.CreatedAt,
		"updated_at":   w.UpdatedAt,
		"started_at":   w.StartedAt,
		"completed_at": w.CompletedAt,
	}
}

func (h *Handler) WorkflowDocumentsPDF(c *fiber.Ctx) error {
	if h.renderer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "PDF rendering is disabled."})
	}
	w, err := h.processor.Status(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err, "Failed to load workflow.")
	}
	if w.Status != domain.StatusCompleted || w.Result == nil || w.Result.GeneratedDocs == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  "No generated documents for this workflow yet.",
			"status": w.Status,
		})
	}

	var jobTitle, company string
	if len(w.Result.Jobs) > 0 {
		jobTitle, company = w.Result.Jobs[0].Title, w.Result.Jobs[0].Company
	}
	html, err := renderDocumentsHTML(documentsPage{
		WorkflowID:  w.ID,
		JobTitle:    jobTitle,
		Company:     company,
		CV:          w.Result.GeneratedDocs.CV,
		CoverLetter: w.Result.GeneratedDocs.CoverLetter,
	})
	if err != nil {
		return h.fail(c, err, "Failed to render documents.")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 90*time.Second)
	defer cancel()
	pdf, err := h.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		return h.fail(c, err, "Failed to render documents.")
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="documents-%s.pdf"`, w.ID))
	return c.Send(pdf)
}

func (h *Handler) Apply(c *fiber.Ctx) error {
	// consent comes before any check of the job fields
	if consent := model.ConsentFromJSON(c.Body()); consent == nil || !*consent {
		return h.fail(c, usecase.ErrConsent, "Failed to apply to job.")
	}

	var req model.ApplyRequest
	if err := decode(c, model.SchemaApply, &req); err != nil {
		return h.fail(c, err, "Failed to apply to job.")
	}
	sub, err := h.applier.Apply(c.UserContext(), usecase.ApplyRequest{
		UserID:         req.UserID,
		JobID:          req.JobID,
		Provider:       req.Provider,
		AllowAutoApply: req.Consent(),
	})
	if err != nil {
		return h.fail(c, err, "Failed to apply to job.")
	}
	return c.JSON(fiber.Map{
		"success":    true,
		"message":    "Application submitted (simulated for demo).",
		"submission": sub,
	})
}
