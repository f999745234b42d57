package web

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/dealdocs/pkg/cookie"
	"github.com/dmitrymomot/dealdocs/pkg/httpserver"
	"github.com/dmitrymomot/dealdocs/pkg/logger"
	"github.com/dmitrymomot/dealdocs/pkg/mailclient"
	"github.com/dmitrymomot/dealdocs/pkg/pipeline"
	"github.com/dmitrymomot/dealdocs/pkg/ratelimiter"
)

// NoticeTooManyShares answers a device that ran out of share tokens.
const NoticeTooManyShares = "Too many documents shared in a row. Wait a few seconds and try again."

// Server routes HTTP requests to the pipeline engine.
type Server struct {
	engine   *pipeline.Engine
	cookies  *cookie.Manager
	registry *mailclient.Registry
	devices  Devices
	limit    *ratelimiter.Bucket
	checks   []httpserver.Check
	log      *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithRegistry(r *mailclient.Registry) Option {
	return func(s *Server) {
		if r != nil {
			s.registry = r
		}
	}
}

// WithDevices sets where device state lives. Defaults to MemoryDevices.
func WithDevices(d Devices) Option {
	return func(s *Server) {
		if d != nil {
			s.devices = d
		}
	}
}

// WithShareLimit throttles shares per device. Unlimited when not set.
func WithShareLimit(b *ratelimiter.Bucket) Option {
	return func(s *Server) { s.limit = b }
}

// WithChecks adds readiness checks to /healthz.
func WithChecks(checks ...httpserver.Check) Option {
	return func(s *Server) { s.checks = append(s.checks, checks...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

func New(engine *pipeline.Engine, cookies *cookie.Manager, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, ErrNoEngine
	}
	if cookies == nil {
		return nil, ErrNoCookies
	}
	s := &Server{
		engine:   engine,
		cookies:  cookies,
		registry: mailclient.DefaultRegistry(),
		devices:  NewMemoryDevices(),
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("web"))
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.logRequests, middleware.Recoverer)

	r.Get("/healthz", httpserver.HealthCheckHandler(s.log, s.checks...))
	r.Get("/mail-clients", s.wrap(s.listClients))

	r.Group(func(r chi.Router) {
		r.Use(s.identify)
		r.Get("/preferences/mail-client", s.wrap(s.getPreference))
		r.Put("/preferences/mail-client", s.wrap(s.putPreference))
		r.Get("/clipboard", s.wrap(s.paste))
		r.Route("/deals/{dealID}/documents", func(r chi.Router) {
			r.Get("/", s.wrap(s.listDocuments))
			r.Get("/{kind}", s.wrap(s.viewDocument))
			r.With(s.limitShares).Post("/{kind}/share", s.wrap(s.share))
		})
	})
	return r
}

func (s *Server) wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(r).Render(w, r); err != nil {
			s.log.ErrorContext(r.Context(), "rendering response", logger.Error(err))
		}
	}
}

func (s *Server) limitShares(next http.Handler) http.Handler {
	if s.limit == nil {
		return next
	}
	key := func(r *http.Request) string {
		if id := DeviceID(r.Context()); id != "" {
			return "share:" + id
		}
		return ""
	}
	denied := s.wrap(func(r *http.Request) Response {
		s.log.WarnContext(r.Context(), "share rate limited", slog.String("device", DeviceID(r.Context())))
		return s.fail(r, http.StatusTooManyRequests, NoticeTooManyShares)
	})
	return ratelimiter.Middleware(s.limit, key, denied)(next)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.InfoContext(r.Context(), "http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			logger.Duration(time.Since(start)),
		)
	})
}

// RequestIDExtractor adds the chi request id to log records.
func RequestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return slog.String("request_id", id), true
}
