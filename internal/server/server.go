package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/logging"
	"solvecheck/internal/observability"
	"solvecheck/internal/pipeline"
)

// Runner executes one solve then verify run. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, question string) (*pipeline.Result, error)
}

// Config controls the HTTP listener.
type Config struct {
	Addr           string
	AllowedOrigins []string
	Debug          bool
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DefaultConfig returns listener defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		AllowedOrigins: []string{"*"},
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Minute,
	}
}

// Deps are the collaborators behind the routes.
type Deps struct {
	Pipeline Runner
	Tools    ports.ToolRegistry
	Metrics  http.Handler
	Tracer   *observability.TracerProvider
	Logger   logging.Logger
	Version  string
}

// Server owns the gin engine and the listening http.Server.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	logger     logging.Logger
}

// New builds a Server. Pipeline is required.
func New(deps Deps, config Config) (*Server, error) {
	if deps.Pipeline == nil {
		return nil, errors.New("server requires a pipeline")
	}
	logger := deps.Logger
	if logging.IsNil(logger) {
		logger = logging.NewComponentLogger("HTTPServer")
	}
	deps.Logger = logger

	engine := NewRouter(deps, config)
	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              config.Addr,
			Handler:           engine,
			ReadTimeout:       config.ReadTimeout,
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      config.WriteTimeout,
		},
		logger: logger,
	}, nil
}

// Handler exposes the routes, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return <-errCh
}

// NewRouter wires middleware and routes onto a fresh gin engine.
func NewRouter(deps Deps, config Config) *gin.Engine {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logging.OrNop(deps.Logger)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(observabilityMiddleware(deps.Tracer, logger))
	engine.Use(cors.New(corsConfig(config.AllowedOrigins)))

	h := &handler{
		pipeline: deps.Pipeline,
		tools:    deps.Tools,
		logger:   logger,
		version:  deps.Version,
		started:  time.Now(),
	}

	engine.GET("/healthz", h.health)
	if deps.Metrics != nil {
		engine.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	api := engine.Group("/api/v1")
	api.Use(jsonMiddleware())
	api.POST("/verify", h.verify)
	api.GET("/tools", h.listTools)

	return engine
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", requestIDHeader}
	cfg.ExposeHeaders = []string{requestIDHeader}
	cfg.AllowAllOrigins = len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			cfg.AllowAllOrigins = true
			break
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}
	return cfg
}
