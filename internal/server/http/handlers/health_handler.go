package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/storefront/internal/server/http/dto"
)

const healthTimeout = 2 * time.Second

// Health handles GET /healthz.
func Health(facade HealthFacade, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()

		if err := facade.HealthCheck(ctx); err != nil {
			logger.Warn("health check failed", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, dto.Envelope{Error: "storage unavailable", Kind: "unavailable"})
			return
		}
		respond(c, http.StatusOK, "ok", nil)
	}
}
