package handler

import (
	"math"
	"net/http"
	"runtime"
	"time"

	"github.com/blockitin/blockitin-ai/internal/lib/probe"
	"github.com/blockitin/blockitin-ai/internal/middleware"
	"github.com/blockitin/blockitin-ai/internal/model"
	"github.com/blockitin/blockitin-ai/internal/server"
	"github.com/labstack/echo/v4"
)

// Version is reported by the index and health endpoints.
const Version = "1.0.0"

// HealthHandler serves /api/health for monitors and load balancers.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// HealthReport is the body of GET /api/health.
type HealthReport struct {
	Status      string                  `json:"status"`
	Timestamp   string                  `json:"timestamp"`
	Uptime      float64                 `json:"uptime"`
	Environment string                  `json:"environment"`
	Version     string                  `json:"version"`
	Services    map[string]string       `json:"services"`
	Checks      map[string]probe.Result `json:"checks"`
	Memory      MemoryUsage             `json:"memory"`
}

// MemoryUsage is reported in megabytes.
type MemoryUsage struct {
	Used     float64 `json:"used"`
	Total    float64 `json:"total"`
	External float64 `json:"external"`
}

// CheckHealth runs every registered probe. It answers 503 when the database
// or Redis is configured but unreachable; Sheets and AI failures are only
// reported.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	report := h.server.Probes.Run(c.Request().Context())

	body := HealthReport{
		Status:      probe.StatusHealthy,
		Timestamp:   model.Timestamp(time.Now()),
		Uptime:      round2(h.server.Uptime().Seconds()),
		Environment: h.server.Config.Primary.Env,
		Version:     Version,
		Services: map[string]string{
			"database":     report.Status("database"),
			"redis":        report.Status("redis"),
			"googleSheets": report.Status("sheets"),
			"aiService":    report.Status("ai"),
		},
		Checks: report.Results,
		Memory: memoryUsage(),
	}

	if !report.Healthy {
		body.Status = probe.StatusUnhealthy

		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		h.server.LoggerService.RecordEvent("HealthCheckError", map[string]interface{}{
			"check_type":        "overall",
			"operation":         "health_check",
			"error_type":        "overall_unhealthy",
			"total_duration_ms": time.Since(start).Milliseconds(),
		})

		return c.JSON(http.StatusServiceUnavailable, body)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, body)
}

// Ping answers without touching any dependency.
func (h *HealthHandler) Ping(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message":   "pong",
		"timestamp": model.Timestamp(time.Now()),
	})
}

func memoryUsage() MemoryUsage {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MemoryUsage{
		Used:     megabytes(m.HeapAlloc),
		Total:    megabytes(m.HeapSys),
		External: megabytes(m.Sys - m.HeapSys),
	}
}

func megabytes(b uint64) float64 {
	return round2(float64(b) / 1024 / 1024)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
