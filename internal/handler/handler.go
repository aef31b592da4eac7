package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"support-pipeline-go/internal/classifier"
	"support-pipeline-go/internal/mailsource"
	"support-pipeline-go/internal/notifier"
	"support-pipeline-go/internal/pipeline"
	"support-pipeline-go/internal/recordstore"
	"support-pipeline-go/internal/repository"
	"support-pipeline-go/internal/scheduler"
)

// previewLimit caps how many messages a fetch preview returns.
const previewLimit = 10

// Handler contains all HTTP handlers. fetcher, runner, sched, repo and db
// may be nil when the corresponding subsystem is not configured; affected
// endpoints answer 501.
type Handler struct {
	fetcher      mailsource.Fetcher
	classifier   classifier.Classifier
	store        recordstore.Store
	notifier     notifier.Notifier
	runner       *pipeline.Runner
	sched        *scheduler.Scheduler
	repo         *repository.Repository
	db           *gorm.DB
	defaultHours int
}

// New creates the HTTP handler set.
func New(f mailsource.Fetcher, c classifier.Classifier, s recordstore.Store, n notifier.Notifier, runner *pipeline.Runner, sched *scheduler.Scheduler, repo *repository.Repository, db *gorm.DB, defaultHours int) *Handler {
	return &Handler{
		fetcher:      f,
		classifier:   c,
		store:        s,
		notifier:     n,
		runner:       runner,
		sched:        sched,
		repo:         repo,
		db:           db,
		defaultHours: defaultHours,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Database:  "not configured",
		Metrics:   make(map[string]string),
	}

	if h.db != nil {
		response.Database = "ok"
		if err := h.db.Raw("SELECT 1").Error; err != nil {
			response.Status = "error"
			response.Database = "error"
			logrus.Errorf("Database health check failed: %v", err)
		}
	}

	if h.sched != nil && h.sched.IsRunning() {
		response.Metrics["scheduler"] = "running"
		response.Metrics["next_run"] = h.sched.NextRun().Format(time.RFC3339)
	} else {
		response.Metrics["scheduler"] = "stopped"
	}

	statusCode := http.StatusOK
	if response.Status == "error" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

// Fetch retrieves messages for a lookback window without running the
// pipeline, returning a bounded preview.
func (h *Handler) Fetch(c *gin.Context) {
	var req FetchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return
	}
	hours := h.defaultHours
	if req.Hours != nil {
		hours = *req.Hours
	}
	if hours < pipeline.MinHoursBack || hours > pipeline.MaxHoursBack {
		badRequest(c, "Hours must be between 1 and 168")
		return
	}

	if h.fetcher == nil {
		notConfigured(c, "Mailbox access is not configured")
		return
	}

	messages, err := h.fetcher.Fetch(c.Request.Context(), time.Duration(hours)*time.Hour)
	if err != nil {
		logrus.Errorf("Fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "fetch_error",
			Message: "Failed to fetch emails",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	preview := messages
	if len(preview) > previewLimit {
		preview = preview[:previewLimit]
	}
	c.JSON(http.StatusOK, FetchResponse{Count: len(messages), Messages: preview})
}

// Classify classifies a single email ad hoc.
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if req.Subject == nil || req.Body == nil {
		badRequest(c, "Missing required fields: subject and body")
		return
	}

	cls := h.classifier.Classify(c.Request.Context(), *req.Subject, *req.Body)
	c.JSON(http.StatusOK, gin.H{"classification": cls})
}

// RunPipeline triggers one full pipeline run.
func (h *Handler) RunPipeline(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request body")
		return
	}
	hours := h.defaultHours
	if req.Hours != nil {
		hours = *req.Hours
	}

	if h.runner == nil {
		notConfigured(c, "Pipeline is not configured")
		return
	}

	result, err := h.runner.Run(c.Request.Context(), hours, pipeline.TriggerManual)
	if errors.Is(err, pipeline.ErrInvalidWindow) {
		badRequest(c, "Hours must be between 1 and 168")
		return
	}
	if errors.Is(err, pipeline.ErrAlreadyRunning) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "pipeline_busy",
			Message: "A pipeline run is already in progress",
			Code:    http.StatusConflict,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "pipeline_error",
			Message: "Pipeline run failed",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// SendDigest recomputes the summary and posts the digest on demand.
func (h *Handler) SendDigest(c *gin.Context) {
	summary := h.store.Summarize(c.Request.Context())
	if summary.Err != "" {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "summary_error",
			Message: "Failed to get summary: " + summary.Err,
			Code:    http.StatusInternalServerError,
		})
		return
	}

	sent := h.notifier.Notify(c.Request.Context(), summary)
	c.JSON(http.StatusOK, gin.H{"sent": sent, "summary": summary})
}

// Status reports the last run snapshot and scheduler state.
func (h *Handler) Status(c *gin.Context) {
	resp := StatusResponse{}
	if h.runner != nil {
		resp.LastRun = h.runner.LastResult()
	}
	if h.sched != nil && h.sched.IsRunning() {
		resp.SchedulerRunning = true
		resp.NextRun = h.sched.NextRun().Format(time.RFC3339)
	}
	c.JSON(http.StatusOK, resp)
}

// ListRuns returns persisted run history with pagination.
func (h *Handler) ListRuns(c *gin.Context) {
	if h.repo == nil {
		notConfigured(c, "Run history requires a database")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	runs, total, err := h.repo.ListRuns((page-1)*limit, limit)
	if err != nil {
		logrus.Errorf("Failed to list runs: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch runs",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"runs": runs,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// StartScheduler starts the cron scheduler.
func (h *Handler) StartScheduler(c *gin.Context) {
	if h.sched == nil {
		notConfigured(c, "Scheduler is not configured")
		return
	}
	if err := h.sched.Start(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to start scheduler",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scheduler started successfully", "status": "running"})
}

// StopScheduler stops the cron scheduler.
func (h *Handler) StopScheduler(c *gin.Context) {
	if h.sched == nil {
		notConfigured(c, "Scheduler is not configured")
		return
	}
	if err := h.sched.Stop(); err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "scheduler_error",
			Message: "Failed to stop scheduler",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scheduler stopped successfully", "status": "stopped"})
}

// SchedulerStatus reports the scheduler state.
func (h *Handler) SchedulerStatus(c *gin.Context) {
	if h.sched == nil {
		notConfigured(c, "Scheduler is not configured")
		return
	}
	status := "stopped"
	if h.sched.IsRunning() {
		status = "running"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"next_run": h.sched.NextRun(),
		"last_run": h.sched.LastRun(),
	})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: message,
		Code:    http.StatusBadRequest,
	})
}

func notConfigured(c *gin.Context, message string) {
	c.JSON(http.StatusNotImplemented, ErrorResponse{
		Error:   "not_configured",
		Message: message,
		Code:    http.StatusNotImplemented,
	})
}
