// Package status exposes a small HTTP surface over a long-running
// migration: a liveness probe and a progress snapshot, mounted on
// gin-gonic/gin the way a deployed service would expect.
package status

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

// Progress is a point-in-time snapshot of migration throughput, built
// from the counters the caller bumps via Server.RecordRead,
// RecordWritten and RecordSkipped.
type Progress struct {
	RowsRead    int64     `json:"rows_read"`
	RowsWritten int64     `json:"rows_written"`
	RowsSkipped int64     `json:"rows_skipped"`
	LastOffset  int64     `json:"last_offset"`
	LastUpdated time.Time `json:"last_updated"`
}

// Server wraps a gin.Engine serving /healthz and /progress.
type Server struct {
	engine *gin.Engine
	srv    *http.Server

	rowsRead    int64
	rowsWritten int64
	rowsSkipped int64
	lastOffset  int64
}

// New builds a Server for addr (e.g. ":8080"). ListenAndServe serves it
// and blocks until Shutdown stops it gracefully.
func New(addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine}

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/progress", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.snapshot())
	})

	s.srv = &http.Server{
		Addr:    addr,
		Handler: engine,
	}

	return s
}

// ListenAndServe starts serving and blocks until Shutdown is called.
func (s *Server) ListenAndServe() error {
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// RecordRead increments the read counter, to be reflected in /progress.
func (s *Server) RecordRead() {
	atomic.AddInt64(&s.rowsRead, 1)
}

// RecordWritten increments the written counter and records the latest
// checkpoint offset.
func (s *Server) RecordWritten(offset int64) {
	atomic.AddInt64(&s.rowsWritten, 1)
	atomic.StoreInt64(&s.lastOffset, offset)
}

// RecordSkipped increments the skipped (deduped) counter.
func (s *Server) RecordSkipped() {
	atomic.AddInt64(&s.rowsSkipped, 1)
}

func (s *Server) snapshot() Progress {
	return Progress{
		RowsRead:    atomic.LoadInt64(&s.rowsRead),
		RowsWritten: atomic.LoadInt64(&s.rowsWritten),
		RowsSkipped: atomic.LoadInt64(&s.rowsSkipped),
		LastOffset:  atomic.LoadInt64(&s.lastOffset),
		LastUpdated: time.Now(),
	}
}
