package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/luca-patrignani/drand-bataille/application"
	"github.com/luca-patrignani/drand-bataille/identity"
)

// Server handles HTTP requests.
type Server struct {
	games     *application.Orchestrator
	logger    *slog.Logger
	skew      time.Duration
	now       func() time.Time
	timeout   time.Duration
	startTime time.Time
	beacon    *beaconRelay
	replay    *identity.ReplayGuard
}

type ServerOption func(Server) Server

func NewServer(games *application.Orchestrator, opts ...ServerOption) *Server {
	s := Server{
		games:     games,
		logger:    slog.Default(),
		skew:      30 * time.Second,
		now:       time.Now,
		timeout:   60 * time.Second,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		s = opt(s)
	}
	s.replay = identity.NewReplayGuard(s.skew)
	return &s
}

func WithLogger(l *slog.Logger) ServerOption {
	return func(s Server) Server {
		if l != nil {
			s.logger = l
		}
		return s
	}
}

// WithSignatureSkew sets how far a request timestamp may be from the server
// clock.
func WithSignatureSkew(d time.Duration) ServerOption {
	return func(s Server) Server {
		s.skew = d
		return s
	}
}

// WithRequestTimeout bounds the handling of a request, beacon verification
// included.
func WithRequestTimeout(d time.Duration) ServerOption {
	return func(s Server) Server {
		s.timeout = d
		return s
	}
}

func withNow(now func() time.Time) ServerOption {
	return func(s Server) Server {
		s.now = now
		return s
	}
}

// Routes sets up the HTTP routes with their middleware.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/health", s.handleHealth)
	r.Get("/ledger/verify", s.handleVerifyLedger)
	if s.beacon != nil {
		r.Get("/"+BeaconChain+"/info", s.handleBeaconInfo)
		r.Get("/"+BeaconChain+"/public/{round}", s.handleBeaconRound)
	}

	r.Route("/games", func(r chi.Router) {
		r.With(s.authenticate).Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(s.gameID)
			r.Get("/", s.handleGame)
			r.Get("/winner", s.handleWinner)
			r.Get("/next-round", s.handleNextRound)
			r.Get("/turn", s.handleTurn)
			r.Get("/audit", s.handleAudit)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)
				r.Post("/join", s.handleJoin)
				r.Post("/start", s.handleStart)
				r.Post("/draw", s.handleDraw)
			})
		})
	})
	return r
}

// Serve runs the HTTP server on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, srv *http.Server) error {
	srv.Handler = s.Routes()
	errChan := make(chan error, 1)
	go func() {
		var err error
		if srv.TLSConfig != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		errChan <- err
	}()
	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

// writeJSON writes data as a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}
