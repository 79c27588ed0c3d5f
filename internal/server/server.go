// Package server exposes the matchup feature engine over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pable/go-cricket-metrics/internal/config"
	"github.com/pable/go-cricket-metrics/internal/features"
	"github.com/pable/go-cricket-metrics/internal/ingest"
	"github.com/pable/go-cricket-metrics/internal/logger"
	"github.com/pable/go-cricket-metrics/internal/model"
	"github.com/pable/go-cricket-metrics/internal/registry"
)

// Server answers feature requests against a fixed match history.
type Server struct {
	cfg     config.ServerConfig
	q       *features.Querier
	aliases *ingest.Aliases
	engine  *gin.Engine
}

// New builds the router. aliases may be nil, in which case names must
// already be canonical.
func New(cfg config.ServerConfig, q *features.Querier, aliases *ingest.Aliases) *Server {
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		cfg:     cfg,
		q:       q,
		aliases: aliases,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery(), requestID(), accessLog())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/schema", s.getSchema)
	api.GET("/entities", s.getEntities)
	api.POST("/features", s.postFeatures)
	api.POST("/features/batch", s.postBatch)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving features on %s (%d matches of history)", addr, s.q.Len())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down server")
		return srv.Shutdown(shutdownCtx)
	}
}

// ---- middleware ----

const requestIDKey = "request_id"

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !logger.Enabled(logger.DebugLevel) {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond), c.GetString(requestIDKey))
	}
}

// ---- handlers ----

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"matches": s.q.Len(),
	})
}

func (s *Server) getSchema(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"features": features.Schema})
}

func (s *Server) getEntities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"teams":  s.q.Teams(),
		"venues": s.q.Venues(),
	})
}

// FeatureResponse is the body returned for one matchup.
type FeatureResponse struct {
	RequestID string             `json:"request_id,omitempty"`
	ColdStart bool               `json:"cold_start"`
	Features  map[string]float64 `json:"features"`
	Vector    []float64          `json:"vector"`
	Factors   features.Factors   `json:"factors"`
}

// ErrorResponse is the body returned on failure.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
}

func (s *Server) postFeatures(c *gin.Context) {
	var m features.Matchup
	if err := c.ShouldBindJSON(&m); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: c.GetString(requestIDKey), Error: "invalid request body: " + err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	v, err := s.q.ComputeFeatures(ctx, s.canonical(m))
	if err != nil {
		status, body := errorBody(err)
		body.RequestID = c.GetString(requestIDKey)
		c.JSON(status, body)
		return
	}
	resp := respond(v)
	resp.RequestID = c.GetString(requestIDKey)
	c.JSON(http.StatusOK, resp)
}

// BatchRequest carries several matchups evaluated independently.
type BatchRequest struct {
	Queries []features.Matchup `json:"queries"`
}

// BatchResult is one entry of a batch response; exactly one of Result and
// Error is set.
type BatchResult struct {
	Status int              `json:"status"`
	Result *FeatureResponse `json:"result,omitempty"`
	Error  *ErrorResponse   `json:"error,omitempty"`
}

func (s *Server) postBatch(c *gin.Context) {
	rid := c.GetString(requestIDKey)

	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: rid, Error: "invalid request body: " + err.Error()})
		return
	}
	if len(req.Queries) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: rid, Error: "queries must not be empty"})
		return
	}
	if len(req.Queries) > s.cfg.MaxBatch {
		c.JSON(http.StatusBadRequest, ErrorResponse{RequestID: rid, Error: "too many queries in batch"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	results := make([]BatchResult, len(req.Queries))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, m := range req.Queries {
		g.Go(func() error {
			v, err := s.q.ComputeFeatures(ctx, s.canonical(m))
			if err != nil {
				status, body := errorBody(err)
				results[i] = BatchResult{Status: status, Error: &body}
				return nil
			}
			resp := respond(v)
			results[i] = BatchResult{Status: http.StatusOK, Result: &resp}
			return nil
		})
	}
	g.Wait()

	c.JSON(http.StatusOK, gin.H{
		"request_id": rid,
		"results":    results,
	})
}

// canonical maps aliases and short ids onto canonical names. Names the
// table does not know pass through so the engine reports them.
func (s *Server) canonical(m features.Matchup) features.Matchup {
	m.TossDecision = model.TossDecision(strings.ToLower(strings.TrimSpace(string(m.TossDecision))))
	if s.aliases == nil {
		return m
	}
	team := func(raw string) string {
		if c, err := s.aliases.Team(raw); err == nil && c != "" {
			return c
		}
		return raw
	}
	m.Team1 = team(m.Team1)
	m.Team2 = team(m.Team2)
	m.TossWinner = team(m.TossWinner)
	m.Venue = s.aliases.Venue(m.Venue)
	return m
}

func respond(v features.Vector) FeatureResponse {
	return FeatureResponse{
		ColdStart: v.ColdStart,
		Features:  v.Map(),
		Vector:    v.Values,
		Factors:   v.Explain(),
	}
}

func errorBody(err error) (int, ErrorResponse) {
	var (
		verr *features.ValidationError
		uerr *registry.UnknownEntityError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Field: verr.Field}
	case errors.As(err, &uerr):
		return http.StatusNotFound, ErrorResponse{Error: uerr.Error(), Field: string(uerr.Kind)}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, ErrorResponse{Error: "request timed out"}
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, ErrorResponse{Error: "request cancelled"}
	}
	logger.Error("compute features: %v", err)
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
}
