package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status        string            `json:"status"`
	Service       string            `json:"service"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Timestamp     int64             `json:"timestamp"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// HealthCheck reports whether one backend is reachable.
type HealthCheck struct {
	Name string
	Up   func() bool
}

type HealthHandler struct {
	service string
	started time.Time
	checks  []HealthCheck
}

func NewHealthHandler(service string, checks ...HealthCheck) *HealthHandler {
	return &HealthHandler{service: service, started: time.Now(), checks: checks}
}

// Check answers 503 with status "degraded" when any backend is down.
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:        "healthy",
		Service:       h.service,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		Timestamp:     time.Now().Unix(),
	}
	code := http.StatusOK

	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
		for _, check := range h.checks {
			if check.Up() {
				resp.Checks[check.Name] = "up"
				continue
			}
			resp.Checks[check.Name] = "down"
			resp.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	c.JSON(code, resp)
}

// connectivity is implemented by backends that can report a live link.
type connectivity interface {
	IsConnected() bool
}

func healthChecks(d Deps) []HealthCheck {
	var checks []HealthCheck
	if conn, ok := d.Events.(connectivity); ok {
		checks = append(checks, HealthCheck{Name: "nats", Up: conn.IsConnected})
	}
	return checks
}
