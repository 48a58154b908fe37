// Package web provides the HTTP server and handlers for the market analyzer UI.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/kzon-tools/torn-market-analyzer/internal/config"
	"github.com/kzon-tools/torn-market-analyzer/pkg/dictionary"
	"github.com/kzon-tools/torn-market-analyzer/pkg/ratelimit"
)

//go:embed templates
var templateFiles embed.FS

// Server is the HTTP server for the analyzer form.
type Server struct {
	cfg    *config.Config
	dict   *dictionary.Dictionary
	bucket *ratelimit.Bucket
	logger zerolog.Logger

	// submitLimiter throttles analyze submissions across all visitors. The
	// upstream token bucket already bounds API calls; this one keeps the
	// form itself from queueing unbounded fetch batches.
	submitLimiter *rate.Limiter

	tmpl   *template.Template
	router *chi.Mux
	server *http.Server
}

// NewServer creates a new Server instance. The dictionary is loaded once at
// startup and shared read-only across requests.
func NewServer(cfg *config.Config, dict *dictionary.Dictionary, logger zerolog.Logger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFiles, "templates/*.html")
	if err != nil {
		return nil, err
	}

	perMin := cfg.Web.SubmitPerMinute
	s := &Server{
		cfg:           cfg,
		dict:          dict,
		bucket:        ratelimit.NewBucket(cfg.RateLimit.PerMinute, logger),
		logger:        logger.With().Str("component", "web").Logger(),
		submitLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), perMin),
		tmpl:          tmpl,
		router:        chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))
}

func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleIndex)
	s.router.Post("/analyze", s.handleAnalyze)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Web.Addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("addr", s.cfg.Web.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
