package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/queryms/msconsole/internal/agent"
	"github.com/queryms/msconsole/internal/config"
	"github.com/queryms/msconsole/internal/model/contract"
)

// ChatAgent runs one conversation turn as an event stream.
type ChatAgent interface {
	ChatStream(ctx context.Context, userMessage string, history []contract.Message, modelOverride string) <-chan agent.Event
	Model() string
}

// HealthChecker verifies reachability of the model provider.
type HealthChecker interface {
	Name() string
	Health(ctx context.Context) error
}

// Pinger verifies reachability of the database.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ToolCatalog exposes the advertised tool definitions.
type ToolCatalog interface {
	Descriptors() []contract.ToolDef
}

// Server exposes the chat, tooling, and diagnostics endpoints consumed by the
// desktop client.
type Server struct {
	cfg      config.ServerConfig
	agent    ChatAgent
	provider HealthChecker
	store    Pinger
	tools    ToolCatalog
	server   *http.Server
}

func New(cfg config.ServerConfig, chatAgent ChatAgent, provider HealthChecker, store Pinger, tools ToolCatalog) (*Server, error) {
	readTimeout, err := config.DurationOrDefault(cfg.ReadTimeout, config.DefaultServerReadTimeout)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := config.DurationOrDefault(cfg.WriteTimeout, config.DefaultServerWriteTimeout)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := config.DurationOrDefault(cfg.IdleTimeout, config.DefaultServerIdleTimeout)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		agent:    chatAgent,
		provider: provider,
		store:    store,
		tools:    tools,
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return s, nil
}

// Router builds the HTTP routing table. Exposed for handler tests.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Post("/chat/stream", s.handleChatStream)
	r.Post("/chat", s.handleChat)
	r.Get("/ping", s.handlePing)
	r.Get("/health", s.handleHealth)
	r.Get("/models", s.handleModels)
	r.Get("/tools", s.handleTools)
	r.Post("/test-connection", s.handleTestConnection)

	return r
}

// Start starts the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		slog.Info("Starting HTTP server", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
		}
	}()
}

// Stop shuts the HTTP server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
