// Package httpapi exposes each top-level analysis operation as an HTTP tool
// endpoint. The handlers are thin shims: decode a reference or two, call the
// service, map errors to status codes.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/extract"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/inference"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/model"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/service"
	"github.com/LoupRoch/MCP-STEP-Analyzer/internal/store"
)

// Handler serves the analysis operations.
type Handler struct {
	svc       *service.Service
	baselines *store.Store
}

// NewHandler creates a handler over the given service and baseline store.
func NewHandler(svc *service.Service, baselines *store.Store) *Handler {
	return &Handler{svc: svc, baselines: baselines}
}

type refRequest struct {
	File      string `json:"file" binding:"required"`
	Component string `json:"component,omitempty"`
}

type compareRequest struct {
	File1 string `json:"file1" binding:"required"`
	File2 string `json:"file2" binding:"required"`
}

func (h *Handler) Analyze(c *gin.Context) {
	var req refRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Analyze(c.Request.Context(), req.File)
	if err != nil {
		h.fail(c, "analyze", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) Compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Compare(c.Request.Context(), req.File1, req.File2)
	if err != nil {
		h.fail(c, "compare", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) BOM(c *gin.Context) {
	var req refRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bom, err := h.svc.BOM(c.Request.Context(), req.File)
	if err != nil {
		h.fail(c, "bom", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": bom, "total_count": len(bom)})
}

func (h *Handler) Geometry(c *gin.Context) {
	var req refRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Geometry(c.Request.Context(), req.File, req.Component)
	if err != nil {
		h.fail(c, "geometry", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) Interfaces(c *gin.Context) {
	var req refRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Interfaces(c.Request.Context(), req.File)
	if err != nil {
		h.fail(c, "interfaces", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) Validate(c *gin.Context) {
	var req refRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.svc.Validate(c.Request.Context(), req.File)
	if err != nil {
		h.fail(c, "validate", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) ListBaselines(c *gin.Context) {
	summaries, err := h.baselines.List()
	if err != nil {
		h.fail(c, "baselines", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"baselines": summaries})
}

func (h *Handler) GetBaseline(c *gin.Context) {
	b, err := h.baselines.Load(c.Param("id"))
	if err != nil {
		h.fail(c, "baselines", err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBaseline(c *gin.Context) {
	if err := h.baselines.Delete(c.Param("id")); err != nil {
		h.fail(c, "baselines", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// fail maps core errors onto HTTP statuses.
func (h *Handler) fail(c *gin.Context, op string, err error) {
	ctx := c.Request.Context()

	var notFound *model.ComponentNotFoundError
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Error(), "component": notFound})
	case errors.Is(err, extract.ErrModelNotFound), errors.Is(err, store.ErrBaselineNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidBaseline):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, inference.ErrBudgetExceeded):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, extract.ErrExtraction):
		slog.ErrorContext(ctx, "extraction failed", "op", op, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNoExtractor):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(ctx, "operation failed", "op", op, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
