package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers groups every endpoint implementation
type Handlers struct {
	Health    *HealthHandler
	Migraine  *MigraineHandler
	Adherence *AdherenceHandler
	// Metrics serves the Prometheus registry; nil disables /metrics
	Metrics http.Handler
}

// RegisterRoutes mounts all endpoints on r
func RegisterRoutes(r gin.IRouter, h Handlers) {
	r.GET("/health", h.Health.GetHealth)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	users := r.Group("/api/v1/users/:userId")
	users.GET("/migraine/summary", h.Migraine.GetSummary)
	users.GET("/migraine/report", h.Migraine.GetReport)
	users.GET("/transformation/score", h.Adherence.GetTransformationScore)
	users.GET("/adherence", h.Adherence.GetAdherence)
}
