package router

import (
	"github.com/blockitin/blockitin-ai/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the endpoints outside the API surface.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/", h.Index.Index)
}

// registerHealthRoutes mounts liveness under /api/health. No auth.
func registerHealthRoutes(api *echo.Group, h *handler.Handlers) {
	health := api.Group("/health")
	health.GET("", h.Health.CheckHealth)
	health.GET("/", h.Health.CheckHealth)
	health.GET("/ping", h.Health.Ping)
}
