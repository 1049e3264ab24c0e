package api

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/rigwire/pkg/catalog"
	"github.com/matzehuels/rigwire/pkg/layout"
	"github.com/matzehuels/rigwire/pkg/pipeline"
	"github.com/matzehuels/rigwire/pkg/route"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 8 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	runner   *pipeline.Runner
	catalog  *catalog.Catalog
	defaults layout.Defaults
	router   []route.Option
	metrics  http.Handler
	logger   *log.Logger
	version  string
	timeout  time.Duration
}

// Option configures a [Server].
type Option func(*Server)

// WithCatalog sets the catalog used when a request carries none.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// WithDefaults sets the outlet defaults for layouts.
func WithDefaults(d layout.Defaults) Option {
	return func(s *Server) { s.defaults = d }
}

// WithRouterOptions sets the options of routers created for /v1/route.
func WithRouterOptions(opts ...route.Option) Option {
	return func(s *Server) { s.router = opts }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithTimeout bounds the handling time of a request.
func WithTimeout(d time.Duration) Option {
	return func(s *Server) { s.timeout = d }
}

// New creates a server around runner. A nil runner gets an uncached one.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	if runner == nil {
		runner = pipeline.NewRunner(nil, nil, nil)
	}
	s := &Server{
		runner:   runner,
		defaults: layout.EditorDefaults(),
		logger:   log.New(io.Discard),
		version:  "dev",
		timeout:  30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the chi router serving all endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	r.Use(cors)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/power", s.handlePower)
		r.Post("/patch", s.handlePatch)
		r.Post("/diagram", s.handleDiagram)
		r.Post("/route", s.handleRoute)
	})
	return r
}
