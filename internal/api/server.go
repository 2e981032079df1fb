package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shortforge/internal/store"
)

// Pinger reports database liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// UploadBrowser reads upload state for the control endpoints.
type UploadBrowser interface {
	FailedUploads(maxRetries int) ([]store.Video, error)
}

// Retrier resumes a single failed upload.
type Retrier interface {
	RetryUpload(ctx context.Context, videoID string) error
}

// Trigger starts a pipeline run without blocking.
type Trigger interface {
	TriggerNow() bool
	Busy() bool
}

// Server exposes the control API.
type Server struct {
	engine     *gin.Engine
	db         Pinger
	uploads    UploadBrowser
	retrier    Retrier
	trigger    Trigger
	maxRetries int
}

type ServerOptions struct {
	DB         Pinger
	Uploads    UploadBrowser
	Retrier    Retrier
	Trigger    Trigger
	MaxRetries int
}

func NewServer(opts ServerOptions) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		engine:     gin.New(),
		db:         opts.DB,
		uploads:    opts.Uploads,
		retrier:    opts.Retrier,
		trigger:    opts.Trigger,
		maxRetries: opts.MaxRetries,
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/health", s.health)
	s.engine.POST("/generate", s.generate)
	s.engine.GET("/uploads/failed", s.failedUploads)
	s.engine.POST("/uploads/:id/retry", s.retryUpload)
}

// Handler returns the http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run blocks serving the API until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	response := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if s.db != nil {
		if err := s.db.Ping(c.Request.Context()); err != nil {
			response["status"] = "degraded"
			response["database"] = gin.H{"status": "unhealthy", "error": err.Error()}
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response["database"] = gin.H{"status": "healthy"}
	}

	c.JSON(http.StatusOK, response)
}

func (s *Server) generate(c *gin.Context) {
	if s.trigger == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "pipeline not running"})
		return
	}

	queued := s.trigger.TriggerNow()
	c.JSON(http.StatusAccepted, gin.H{
		"queued": queued,
		"busy":   s.trigger.Busy(),
	})
}

func (s *Server) failedUploads(c *gin.Context) {
	records, err := s.uploads.FailedUploads(s.maxRetries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]gin.H, 0, len(records))
	for _, rec := range records {
		out = append(out, gin.H{
			"video_id":    rec.VideoID,
			"title":       rec.Title,
			"status":      rec.Status,
			"retry_count": rec.RetryCount,
			"last_error":  rec.LastError,
		})
	}
	c.JSON(http.StatusOK, gin.H{"uploads": out, "count": len(out)})
}

func (s *Server) retryUpload(c *gin.Context) {
	videoID := c.Param("id")

	if err := s.retrier.RetryUpload(c.Request.Context(), videoID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"video_id": videoID, "status": "uploaded"})
}
