// Package daemon serves the record store over HTTP with live change streams.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/theirongolddev/aurion/internal/model"
	"github.com/theirongolddev/aurion/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/logger"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr         string
	DatabasePath string
	Roster       model.Roster
	PollInterval time.Duration
	AllowOrigins []string
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	DatabasePath    string    `json:"database_path"`
	PollIntervalMS  int64     `json:"poll_interval_ms"`
	Partners        int       `json:"partners"`
	SubscriberCount int       `json:"subscriber_count"`
	SocketCount     int       `json:"socket_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg       Config
	store     *store.Store
	startedAt time.Time
	now       func() time.Time

	engine   *gin.Engine
	melody   *melody.Melody
	registry *prometheus.Registry
	metrics  *metrics
}

// New returns a daemon service over st with the provided config.
func New(st *store.Store, cfg Config) *Service {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}

	s := &Service{
		cfg:       cfg,
		store:     st,
		startedAt: time.Now(),
		now:       time.Now,
		melody:    newMelody(),
		registry:  prometheus.NewRegistry(),
	}
	s.melody.HandleConnect(s.greet)
	s.metrics = newMetrics(s.registry, st)
	s.engine = s.router()
	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Service) Handler() http.Handler {
	return s.engine
}

func (s *Service) router() *gin.Engine {
	r := gin.New()
	r.ForwardedByClientIP = false
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(logger.SetLogger(
		logger.WithDefaultLevel(zerolog.InfoLevel),
		logger.WithClientErrorLevel(zerolog.InfoLevel),
		logger.WithServerErrorLevel(zerolog.ErrorLevel),
		logger.WithLogger(func(c *gin.Context, l zerolog.Logger) zerolog.Logger {
			return l.With().
				Str("request-id", requestid.Get(c)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Logger()
		})))
	r.Use(s.metrics.middleware())

	if len(s.cfg.AllowOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: s.cfg.AllowOrigins,
			AllowMethods: []string{"OPTIONS", "GET", "POST", "PATCH", "DELETE"},
			AllowHeaders: []string{"Origin", "Content-Length", "Content-Type"},
		}))
	}

	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	// Disable gin's route printing, it clutters logs.
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, numHandlers int) {}
	_ = r.SetTrustedProxies(nil)

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", s.metrics.handler(s.registry))

	v1 := r.Group("/v1")
	v1.GET("/status", s.handleStatus)
	v1.GET("/stream", s.handleStream)
	v1.GET("/ws", s.handleWS)

	report := v1.Group("/report")
	report.GET("/founders", s.handleFounders)
	report.GET("/summary", s.handleSummary)
	report.GET("/funds", s.handleFunds)

	for _, c := range model.Collections {
		g := v1.Group("/" + c.String())
		g.GET("", s.handleList(c))
		g.POST("", s.handleCreate(c))
		g.GET("/:id", s.handleGet(c))
		g.DELETE("/:id", s.handleDelete(c))
	}
	// Records are never edited after creation; the expense status toggle is
	// the only mutation.
	v1.PATCH("/"+model.Expenses.String()+"/:id/toggle", s.handleToggle)

	return r
}

// Run starts the HTTP server, the cross-process change watcher and the
// WebSocket broadcaster until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("daemon http server: %w", err)
		}
	}()
	go func() {
		if err := s.store.Watch(ctx, s.cfg.PollInterval); err != nil {
			errCh <- fmt.Errorf("watching store: %w", err)
		}
	}()
	go s.broadcast(ctx)

	log.Info().
		Str("addr", s.cfg.Addr).
		Str("database", s.cfg.DatabasePath).
		Dur("poll_interval", s.cfg.PollInterval).
		Msg("aurion daemon listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.melody.Close()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		_ = s.melody.Close()
		return err
	}
}

func (s *Service) status() Status {
	return Status{
		StartedAt:       s.startedAt,
		DatabasePath:    s.cfg.DatabasePath,
		PollIntervalMS:  s.cfg.PollInterval.Milliseconds(),
		Partners:        len(s.cfg.Roster),
		SubscriberCount: s.store.SubscriberCount(),
		SocketCount:     s.melody.Len(),
	}
}

func (s *Service) handleHealth(c *gin.Context) {
	c.String(http.StatusOK, "ok\n")
}

func (s *Service) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.status())
}

// stringForm flattens a JSON object into the string fields the tracker input
// rules take. Numbers are accepted and formatted without exponent.
func stringForm(body map[string]any) map[string]string {
	form := make(map[string]string, len(body))
	for k, v := range body {
		switch v := v.(type) {
		case string:
			form[k] = v
		case float64:
			form[k] = strconv.FormatFloat(v, 'f', -1, 64)
		case nil:
			form[k] = ""
		default:
			form[k] = fmt.Sprint(v)
		}
	}
	return form
}
