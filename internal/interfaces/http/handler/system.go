package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/aquaportal/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// readinessTimeout bounds each dependency check
const readinessTimeout = 2 * time.Second

// ReadinessCheck reports whether one dependency is reachable
type ReadinessCheck func(ctx context.Context) error

// SystemHandler serves liveness and readiness endpoints
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	startTime time.Time
	checks    map[string]ReadinessCheck
}

// NewSystemHandler creates a new SystemHandler. Each check is run by the
// readiness check under its name.
func NewSystemHandler(name, version string, checks map[string]ReadinessCheck) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		startTime: time.Now(),
		checks:    checks,
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Name      string `json:"name" example:"aquaportal"`
	Version   string `json:"version" example:"1.0.0"`
	GoVersion string `json:"go_version" example:"go1.25.5"`
	Uptime    string `json:"uptime" example:"1h30m45s"`
}

// ReadinessResponse lists each dependency's state
type ReadinessResponse struct {
	Status string            `json:"status" example:"ready"`
	Checks map[string]string `json:"checks"`
}

// Health godoc
// @Summary      Liveness check
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=HealthResponse}
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{
		Status:    "ok",
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready godoc
// @Summary      Readiness check
// @Description  Checks the database and cache; 503 when any is down
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response{data=ReadinessResponse}
// @Failure      503 {object} dto.Response{data=ReadinessResponse}
// @Router       /ready [get]
func (h *SystemHandler) Ready(c *gin.Context) {
	resp := ReadinessResponse{Status: "ready", Checks: make(map[string]string, len(h.checks))}

	for name, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		err := check(ctx)
		cancel()
		if err != nil {
			resp.Status = "unavailable"
			resp.Checks[name] = err.Error()
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ready" {
		c.JSON(http.StatusServiceUnavailable, dto.Response{Success: false, Data: resp})
		return
	}
	h.Success(c, resp)
}
