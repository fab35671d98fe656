package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vcscsvcscs/wellness-tracker/internal/adherence"
	"github.com/vcscsvcscs/wellness-tracker/internal/service"
	"go.uber.org/zap"
)

// AdherenceProvider computes transformation scores and per-item adherence
type AdherenceProvider interface {
	TransformationScore(ctx context.Context, userID string, w adherence.Window) (*service.TransformationReport, error)
	ItemAdherence(ctx context.Context, userID string) ([]adherence.ItemAdherence, error)
}

// AdherenceHandler implements the transformation and adherence endpoints
type AdherenceHandler struct {
	service AdherenceProvider
	metrics MetricsRecorder
	now     func() time.Time
	logger  *zap.Logger
}

// NewAdherenceHandler creates a new AdherenceHandler
func NewAdherenceHandler(service AdherenceProvider, metrics MetricsRecorder, logger *zap.Logger) *AdherenceHandler {
	return &AdherenceHandler{
		service: service,
		metrics: metrics,
		now:     time.Now,
		logger:  logger,
	}
}

// GetTransformationScore scores the given range, or the current week without one
func (h *AdherenceHandler) GetTransformationScore(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	r, err := parseDateRange(c, h.now())
	if err != nil {
		validationError(c, "Invalid date range", err)
		return
	}

	var w adherence.Window
	if r.Explicit {
		w = adherence.Window{Start: r.Start, End: r.End}
	}

	result, err := h.service.TransformationScore(c.Request.Context(), userID, w)
	if err != nil {
		h.logger.Error("failed to compute transformation score", zap.Error(err), zap.String("user_id", userID))
		internalError(c, "Failed to compute transformation score", err)
		return
	}

	h.metrics.ScoreComputed(result.Score.Score)
	c.JSON(http.StatusOK, result)
}

// GetAdherence lists streak and adherence ratio per active medication and supplement
func (h *AdherenceHandler) GetAdherence(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	items, err := h.service.ItemAdherence(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to compute item adherence", zap.Error(err), zap.String("user_id", userID))
		internalError(c, "Failed to compute adherence", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"count": len(items),
	})
}
