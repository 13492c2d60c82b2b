package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stocksmarthub/backend/internal/domain"
	"github.com/stocksmarthub/backend/internal/report"
	"github.com/stocksmarthub/backend/internal/usecase"
)

// ImageResolver resolves a single product name
type ImageResolver interface {
	Resolve(ctx context.Context, productName string) (*usecase.Resolution, error)
}

// RunExecutor performs a batch image run
type RunExecutor interface {
	Run(ctx context.Context, opts usecase.RunOptions) (*usecase.RunReport, error)
}

// ReconcileExecutor heals database rows from the dataset
type ReconcileExecutor interface {
	Reconcile(ctx context.Context) (*usecase.ReconcileReport, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver   ImageResolver
	runner     RunExecutor
	reconciler ReconcileExecutor
	products   domain.ProductReader
	summary    domain.SummaryRepository
	logger     *slog.Logger

	// runs and reconciles share the dataset file
	batchMu sync.Mutex
}

// NewHandler creates a new HTTP handler
func NewHandler(
	resolver ImageResolver,
	runner RunExecutor,
	reconciler ReconcileExecutor,
	products domain.ProductReader,
	summary domain.SummaryRepository,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		resolver:   resolver,
		runner:     runner,
		reconciler: reconciler,
		products:   products,
		summary:    summary,
		logger:     logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "stocksmarthub-backend",
		"version": "1.0.0",
	})
}

// ResolveImage resolves one product name through the cache and source chain.
// Neither the dataset nor the database is touched.
func (h *Handler) ResolveImage(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'name' is required"})
		return
	}

	res, err := h.resolver.Resolve(c.Request.Context(), name)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// StartRun executes one synchronous batch run and returns its report
func (h *Handler) StartRun(c *gin.Context) {
	opts := usecase.RunOptions{}
	if raw := c.Query("max"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'max' must be a non-negative integer"})
			return
		}
		opts.MaxProducts = n
	}

	if !h.batchMu.TryLock() {
		h.writeError(c, domain.ErrRunInProgress)
		return
	}
	defer h.batchMu.Unlock()

	rep, err := h.runner.Run(c.Request.Context(), opts)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":  rep,
		"success": rep.Success(),
	})
}

// Reconcile copies dataset image references into product rows that lack them
func (h *Handler) Reconcile(c *gin.Context) {
	if !h.batchMu.TryLock() {
		h.writeError(c, domain.ErrRunInProgress)
		return
	}
	defer h.batchMu.Unlock()

	rep, err := h.reconciler.Reconcile(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

// GetProduct returns a product row with its current image reference
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.products.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Report returns catalog statistics as JSON, Markdown or HTML
func (h *Handler) Report(c *gin.Context) {
	summary, err := h.summary.Summary(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	now := time.Now()
	switch c.DefaultQuery("format", "json") {
	case "json":
		c.JSON(http.StatusOK, summary)
	case "markdown", "md":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown(summary, now)))
	case "html":
		page, err := report.HTML(summary, now)
		if err != nil {
			h.writeError(c, err)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", page)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be json, markdown or html"})
	}
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRunInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrSourceUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
