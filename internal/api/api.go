// Package api provides HTTP handlers and the main API server logic for the
// insights service.
//
// It exposes the wellness analysis and chat endpoints, an insight history
// endpoint and a health check. The API integrates with the genai, insight,
// store and nudge modules.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/onlyfits/insights/internal/genai"
	"github.com/onlyfits/insights/internal/insight"
	"github.com/onlyfits/insights/internal/models"
	"github.com/onlyfits/insights/internal/nudge"
	"github.com/onlyfits/insights/internal/store"
)

// Default server configuration constants
const (
	// DefaultAddr is the default API listen address.
	DefaultAddr = ":8000"
	// DefaultVersion is reported by the health endpoint when unset.
	DefaultVersion = "dev"
	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Generation provider identifiers accepted by Run.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// wellnessAnalyzer is the server's view of the wellness orchestration service.
type wellnessAnalyzer interface {
	Analyze(ctx context.Context, req *models.WellnessAnalysisRequest) (*models.WellnessAnalysisResponse, error)
}

// chatAnswerer is the server's view of the chat orchestration service.
type chatAnswerer interface {
	Chat(ctx context.Context, req *models.ChatRequest) (*models.ChatResponse, error)
}

// Opts holds configuration options for the API server.
type Opts struct {
	Addr    string
	Version string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithVersion sets the version string reported by the health endpoint.
func WithVersion(version string) Option {
	return func(o *Opts) { o.Version = version }
}

// Server wires the orchestration services into HTTP handlers.
type Server struct {
	addr     string
	version  string
	wellness wellnessAnalyzer
	chat     chatAnswerer
	st       store.Store
}

// NewServer creates a Server around the given services.
func NewServer(wellness wellnessAnalyzer, chat chatAnswerer, st store.Store, opts ...Option) *Server {
	cfg := Opts{Addr: DefaultAddr, Version: DefaultVersion}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		addr:     cfg.Addr,
		version:  cfg.Version,
		wellness: wellness,
		chat:     chat,
		st:       st,
	}
}

// routes registers all endpoints on a fresh mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/analyze/wellness", s.analyzeWellnessHandler)
	mux.HandleFunc("/api/v1/chat/", s.chatHandler)
	mux.HandleFunc("/api/v1/insights", s.insightsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down
// gracefully. In-flight generation calls observe the cancellation through
// their request contexts.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.routes()}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Serve: API listening", "addr", s.addr, "version", s.version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Server.Serve: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Run constructs all modules from their options and serves until interrupted.
// The generation client is built once and shared across requests.
func Run(provider string, genaiOpts []genai.Option, insightOpts []insight.Option, storeOpts []store.Option, nudgeOpts []nudge.Option, apiOpts []Option) error {
	gen, err := newGenerator(provider, genaiOpts)
	if err != nil {
		return fmt.Errorf("failed to create generation client: %w", err)
	}

	st, err := store.NewStore(storeOpts...)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()
	insightOpts = append(insightOpts, insight.WithStore(st))

	if sender, err := nudge.NewTwilioSender(nudgeOpts...); err != nil {
		slog.Info("Run: nudge delivery disabled", "reason", err)
	} else {
		insightOpts = append(insightOpts, insight.WithNudger(sender))
	}

	wellness := insight.NewWellnessService(gen, insightOpts...)
	chat := insight.NewChatService(gen, insightOpts...)
	server := NewServer(wellness, chat, st, apiOpts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Serve(ctx)
}

// newGenerator builds the configured generation provider.
func newGenerator(provider string, opts []genai.Option) (genai.Generator, error) {
	switch provider {
	case ProviderGemini:
		return genai.NewGeminiClient(opts...)
	case ProviderOpenAI, "":
		return genai.NewClient(opts...)
	default:
		return nil, fmt.Errorf("unknown generation provider %q", provider)
	}
}
