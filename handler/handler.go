package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loader/metrics"
	"loader/scheduler"
)

// Server is the diagnostics HTTP surface: load snapshots, runtime config
// updates, and prometheus metrics.
type Server struct {
	sched *scheduler.Scheduler
	echo  *echo.Echo
}

// New wires the routes onto a fresh echo instance.
func New(sched *scheduler.Scheduler, collector *metrics.Collector) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{sched: sched, echo: e}

	e.GET("/stats", s.getStats)
	e.POST("/config", s.updateConfig)
	e.GET("/healthz", s.health)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(collector.Registry(), promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})))

	return s
}

// Start serves until the listener fails or the process exits.
func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

// Echo exposes the underlying instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) getStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.sched.Stats())
}

// configUpdateRequest mirrors scheduler.ConfigUpdate; absent fields keep
// their current values.
type configUpdateRequest struct {
	MaxConcurrentPerOrigin  *int     `json:"max_concurrent_per_origin"`
	MediumPriorityThreshold *float64 `json:"medium_priority_threshold"`
}

func (s *Server) updateConfig(c echo.Context) error {
	var req configUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if req.MaxConcurrentPerOrigin != nil && *req.MaxConcurrentPerOrigin <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "max_concurrent_per_origin must be positive"})
	}
	if req.MediumPriorityThreshold != nil && *req.MediumPriorityThreshold <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "medium_priority_threshold must be positive"})
	}
	s.sched.UpdateConfig(scheduler.ConfigUpdate{
		MaxConcurrentPerOrigin:  req.MaxConcurrentPerOrigin,
		MediumPriorityThreshold: req.MediumPriorityThreshold,
	})
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
