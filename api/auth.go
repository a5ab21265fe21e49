package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luca-patrignani/drand-bataille/domain/bataille"
	"github.com/luca-patrignani/drand-bataille/identity"
)

type ctxKey int

const (
	callerKey ctxKey = iota
	gameIDKey
)

// authenticate resolves the caller from the identity headers and accepts
// each signed request once.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := identity.FromHTTP(r)
		if err != nil {
			s.writeError(w, unauthorized(err))
			return
		}
		now := s.now()
		caller, err := req.Verify(now, s.skew)
		if err != nil {
			s.writeError(w, unauthorized(err))
			return
		}
		if err := s.replay.Check(req, now); err != nil {
			s.writeError(w, unauthorized(err))
			return
		}
		ctx := context.WithValue(r.Context(), callerKey, bataille.Identity(caller))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func callerFrom(ctx context.Context) bataille.Identity {
	id, _ := ctx.Value(callerKey).(bataille.Identity)
	return id
}

// gameID parses the {id} URL parameter.
func (s *Server) gameID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			s.writeError(w, badRequest(err))
			return
		}
		ctx := context.WithValue(r.Context(), gameIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func gameIDFrom(ctx context.Context) uint64 {
	id, _ := ctx.Value(gameIDKey).(uint64)
	return id
}
