package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	obscontext "github.com/smallbiznis/hydrolink/internal/observability/context"
	"github.com/smallbiznis/hydrolink/internal/observability/logger"
	"github.com/smallbiznis/hydrolink/internal/snapshot"
)

// snapshotEnvelope is the wire shape of every data route. Data is never null:
// a cold cache serves an empty array.
type snapshotEnvelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`

	FetchedAt *time.Time `json:"fetched_at"`
	Stale     bool       `json:"stale"`
	LastError string     `json:"last_error,omitempty"`
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "running",
		"service":    s.cfg.ServiceName,
		"version":    s.version,
		"timestamp":  s.clock.Now(),
		"configured": s.cfg.Configured(),
	})
}

func (s *Server) PeakEvents(c *gin.Context) {
	respondSnapshot(c, s, s.query.PeakEvents())
}

func (s *Server) Customers(c *gin.Context) {
	respondSnapshot(c, s, s.query.Customers())
}

func (s *Server) ConsumptionCurrent(c *gin.Context) {
	respondSnapshot(c, s, s.query.ConsumptionCurrent())
}

func (s *Server) Balance(c *gin.Context) {
	respondSnapshot(c, s, s.query.Balances())
}

func respondSnapshot[T any](c *gin.Context, s *Server, snap snapshot.Snapshot[T]) {
	now := s.clock.Now()

	data := snap.Data
	if data == nil {
		data = []T{}
	}

	stale := snap.Stale(s.refreshCfg.Interval, s.refreshCfg.StaleMultiplier, now)
	if stale {
		logger.FromContext(c.Request.Context()).Warn("serving stale snapshot",
			zap.String("request_id", obscontext.RequestIDFromGin(c)),
			zap.String("path", c.FullPath()),
			zap.Timep("fetched_at", snap.FetchedAt),
		)
	}

	c.JSON(http.StatusOK, snapshotEnvelope{
		Success:   true,
		Data:      data,
		Timestamp: now,
		FetchedAt: snap.FetchedAt,
		Stale:     stale,
		LastError: snap.LastError,
	})
}
