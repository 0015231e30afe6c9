package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/edugrant/pkg/response"
)

// Pinger is a dependency the health check probes.
type Pinger func(ctx context.Context) error

type HealthHandler struct {
	Checks map[string]Pinger
	Logger *logrus.Logger
}

func NewHealthHandler(checks map[string]Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Checks: checks, Logger: logger}
}

// Health GET /api/health. Liveness is always 200; failing checks are reported in data.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	deps := make(map[string]string, len(h.Checks))
	for name, ping := range h.Checks {
		if err := ping(ctx); err != nil {
			if h.Logger != nil {
				h.Logger.WithError(err).WithField("dependency", name).Warn("health check failed")
			}
			deps[name] = "down"
			continue
		}
		deps[name] = "up"
	}
	response.Success[any](c, http.StatusOK, gin.H{"status": "ok", "dependencies": deps}, "healthy", nil)
}
