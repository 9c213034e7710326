// Package server exposes the predictor over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	uieval "github.com/jamesainslie/go-uieval"
	"github.com/jamesainslie/go-uieval/predict"
)

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-ID"

// maxUploadBytes bounds the multipart body accepted by /predict.
const maxUploadBytes = 32 << 20

// Server is the prediction HTTP server.
type Server struct {
	predictor predict.Predictor
	router    *gin.Engine
	logger    *slog.Logger
}

// PredictResponse is the /predict response body.
type PredictResponse struct {
	Boxes []uieval.Box `json:"boxes"`
	Error string       `json:"error,omitempty"`
}

// New creates a Server backed by p.
func New(p predict.Predictor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	s := &Server{
		predictor: p,
		router:    router,
		logger:    logger,
	}

	router.Use(gin.Recovery(), s.requestID, s.accessLog)
	router.MaxMultipartMemory = maxUploadBytes

	router.GET("/healthz", s.handleHealth)
	router.POST("/predict", s.handlePredict)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("prediction server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) requestID(c *gin.Context) {
	id := c.GetHeader(RequestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set("request_id", id)
	c.Header(RequestIDHeader, id)
	c.Next()
}

func (s *Server) accessLog(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Info("request",
		"request_id", c.GetString("request_id"),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePredict(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, PredictResponse{Boxes: []uieval.Box{}, Error: "missing image file"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, PredictResponse{Boxes: []uieval.Box{}, Error: "unreadable image file"})
		return
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, PredictResponse{Boxes: []uieval.Box{}, Error: "unreadable image file"})
		return
	}

	boxes, err := s.predictor.Predict(c.Request.Context(), data)
	if err != nil {
		// Failures are reported in the body with a 200 so clients always
		// receive a boxes array.
		s.logger.Warn("prediction failed", "request_id", c.GetString("request_id"), "error", err)
		c.JSON(http.StatusOK, PredictResponse{Boxes: []uieval.Box{}, Error: err.Error()})
		return
	}
	if boxes == nil {
		boxes = []uieval.Box{}
	}

	c.JSON(http.StatusOK, PredictResponse{Boxes: boxes})
}
