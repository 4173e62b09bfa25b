// Package api wires the HTTP routes: the public upload and download flow
// and the admin surface behind basic auth.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reportgen/internal/auth"
	"reportgen/internal/config"
	"reportgen/internal/docgen"
	"reportgen/internal/intake"
	"reportgen/internal/models"
	"reportgen/internal/prompts"
	"reportgen/internal/redis"
	"reportgen/internal/service/report"
	"reportgen/internal/staging"
	"reportgen/internal/storage"
	"reportgen/internal/worker"
)

const reportSessionKey = "report_id"

// Generator produces the report text for one ordered piece list.
type Generator interface {
	Generate(ctx context.Context, pieces []models.ReportPiece) string
}

// Handler wires HTTP routes to the intake, generation and formatting layers.
type Handler struct {
	cfg        *config.Settings
	aggregator *intake.Aggregator
	generator  Generator
	pool       *worker.Pool
	staging    *staging.Store
	reports    *storage.ReportStore
	prompts    *prompts.Store
	formatter  *docgen.Formatter
	limiter    *redis.Client
}

// NewHandler constructs a Handler instance. limiter may be nil, which
// disables upload rate limiting.
func NewHandler(
	cfg *config.Settings,
	aggregator *intake.Aggregator,
	generator Generator,
	pool *worker.Pool,
	stagingStore *staging.Store,
	reports *storage.ReportStore,
	promptStore *prompts.Store,
	limiter *redis.Client,
) *Handler {
	return &Handler{
		cfg:        cfg,
		aggregator: aggregator,
		generator:  generator,
		pool:       pool,
		staging:    stagingStore,
		reports:    reports,
		prompts:    promptStore,
		formatter:  docgen.NewFormatter(cfg),
		limiter:    limiter,
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/", h.index)
	router.POST("/upload", h.rateLimit(), h.uploadFiles)
	router.POST("/report/download", h.downloadReport)

	admin := router.Group("/admin")
	admin.Use(auth.Middleware(auth.StaticCredentials{
		Username: h.cfg.AdminUsername,
		Password: h.cfg.AdminPassword,
	}))
	admin.GET("/stats", h.adminStats)
	admin.GET("/reports", h.adminReports)
	admin.GET("/prompts", h.adminListPrompts)
	admin.GET("/prompts/:name", h.adminGetPrompt)
	admin.PUT("/prompts/:name", h.adminSetPrompt)
}

func (h *Handler) index(c *gin.Context) {
	sess := sessions.Default(c)
	notices := collectFlashes(sess)
	if err := sess.Save(); err != nil {
		log.Printf("save session: %v", err)
	}
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Notices":    notices,
		"MaxFileMB":  h.cfg.MaxFileSizeMB,
		"MaxTotalMB": h.cfg.MaxTotalUploadSizeMB,
	})
}

// multipartOverheadBytes covers boundary markers and part headers on top of
// the file payload budget.
const multipartOverheadBytes = 1 << 20

func (h *Handler) uploadFiles(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.MaxTotalUploadSizeBytes()+multipartOverheadBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.flashAndRedirect(c, models.NoticeError,
				fmt.Sprintf("Total upload size exceeds the limit of %d MB.", h.cfg.MaxTotalUploadSizeMB))
			return
		}
		h.flashAndRedirect(c, models.NoticeError, "No files part in the request.")
		return
	}
	headers := form.File["files[]"]
	uploads := make([]intake.Upload, 0, len(headers))
	for _, fh := range headers {
		fh := fh
		uploads = append(uploads, intake.Upload{
			Name: fh.Filename,
			Size: fh.Size,
			Open: func() (io.ReadCloser, error) { return fh.Open() },
		})
	}

	scratchDir, err := os.MkdirTemp("", "reportgen-upload-")
	if err != nil {
		log.Printf("create scratch dir: %v", err)
		h.flashAndRedirect(c, models.NoticeError, "An internal error occurred while preparing the upload.")
		return
	}
	defer func() {
		if err := os.RemoveAll(scratchDir); err != nil {
			log.Printf("remove scratch dir %s: %v", scratchDir, err)
		}
	}()

	result, err := h.aggregator.Aggregate(uploads, scratchDir)
	if err != nil {
		switch {
		case errors.Is(err, intake.ErrNoFiles):
			h.flashAndRedirect(c, models.NoticeError, "No files selected for uploading.")
		case errors.Is(err, intake.ErrTotalSizeExceeded):
			h.flashAndRedirect(c, models.NoticeError,
				fmt.Sprintf("Total upload size exceeds the limit of %d MB.", h.cfg.MaxTotalUploadSizeMB))
		case errors.Is(err, intake.ErrNothingProcessed):
			h.flashAndRedirect(c, models.NoticeError, "No files were suitable for processing.")
		default:
			log.Printf("aggregate uploads: %v", err)
			h.flashAndRedirect(c, models.NoticeError, "An internal error occurred while processing the upload.")
		}
		return
	}

	start := time.Now()
	text, err := h.pool.Submit(c.Request.Context(), func(ctx context.Context) string {
		return h.generator.Generate(ctx, result.Pieces)
	})
	if err != nil {
		if errors.Is(err, worker.ErrPoolBusy) {
			h.flashAndRedirect(c, models.NoticeWarning,
				"The server is busy generating other reports. Please try again shortly.")
			return
		}
		log.Printf("submit generation: %v", err)
		h.flashAndRedirect(c, models.NoticeError, "Report generation was interrupted. Please try again.")
		return
	}
	duration := time.Since(start)

	if report.IsErrorResult(text) {
		h.logReport(models.ReportError, text, result, duration)
		for _, n := range result.Notices {
			flash(sessions.Default(c), n.Level, n.Message)
		}
		h.flashAndRedirect(c, models.NoticeError, text)
		return
	}

	h.logReport(models.ReportSuccess, "", result, duration)

	id, err := h.staging.Put(text)
	if err != nil {
		log.Printf("stage report: %v", err)
		h.flashAndRedirect(c, models.NoticeError, "The report was generated but could not be stored for download.")
		return
	}
	sess := sessions.Default(c)
	sess.Set(reportSessionKey, id)
	if err := sess.Save(); err != nil {
		log.Printf("save session: %v", err)
	}

	c.HTML(http.StatusOK, "report.html", gin.H{
		"Report":  text,
		"Notices": result.Notices,
	})
}

func (h *Handler) downloadReport(c *gin.Context) {
	sess := sessions.Default(c)
	id, ok := sess.Get(reportSessionKey).(string)
	if !ok || id == "" {
		h.flashAndRedirect(c, models.NoticeWarning, "No report available for download. Please generate it first.")
		return
	}

	text, err := h.staging.Get(id)
	if errors.Is(err, staging.ErrNotFound) {
		sess.Delete(reportSessionKey)
		h.flashAndRedirect(c, models.NoticeWarning, "The report has expired. Please generate it again.")
		return
	}
	if err != nil {
		log.Printf("load staged report %s: %v", id, err)
		h.flashAndRedirect(c, models.NoticeError, "An internal error occurred while preparing the download.")
		return
	}

	data, err := h.formatter.Build(text)
	if err != nil {
		log.Printf("build document: %v", err)
		h.flashAndRedirect(c, models.NoticeError, "An internal error occurred while formatting the document.")
		return
	}

	sess.Delete(reportSessionKey)
	if err := sess.Save(); err != nil {
		log.Printf("save session: %v", err)
	}

	filename := docgen.Filename(time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, docgen.MIMEType, data)

	if err := h.staging.Delete(id); err != nil {
		log.Printf("delete staged report %s: %v", id, err)
	}
}

// logReport records one generation outcome; failures only make noise in the
// log, never in the response.
func (h *Handler) logReport(status models.ReportStatus, message string, result *intake.Result, duration time.Duration) {
	textChars := 0
	for _, p := range result.Pieces {
		textChars += len([]rune(p.Content))
	}
	entry := models.ReportLog{
		ID:         uuid.NewString(),
		Status:     status,
		Message:    message,
		FileCount:  len(result.SavedNames),
		TextChars:  textChars,
		Model:      h.cfg.ModelName,
		DurationMS: duration.Milliseconds(),
		CreatedAt:  time.Now().UTC(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.reports.LogReport(ctx, entry); err != nil {
		log.Printf("log report: %v", err)
	}
}

func (h *Handler) adminStats(c *gin.Context) {
	stats, err := h.reports.Stats(c.Request.Context())
	if err != nil {
		log.Printf("report stats: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) adminReports(c *gin.Context) {
	logs, err := h.reports.RecentReports(c.Request.Context(), 50)
	if err != nil {
		log.Printf("recent reports: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": logs})
}

func (h *Handler) adminListPrompts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"prompts": h.prompts.All()})
}

func (h *Handler) adminGetPrompt(c *gin.Context) {
	name := c.Param("name")
	content, err := h.prompts.Get(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown prompt %q", name)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "content": content})
}

type promptUpdateRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *Handler) adminSetPrompt(c *gin.Context) {
	name := c.Param("name")
	var req promptUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	if err := h.prompts.Set(name, req.Content); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("unknown prompt %q", name)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "content": req.Content})
}
