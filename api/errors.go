package api

import (
	"errors"
	"net/http"

	"github.com/luca-patrignani/drand-bataille/domain/bataille"
)

// Reason codes produced by the transport itself.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	"no_such_game":         http.StatusNotFound,
	"game_already_started": http.StatusConflict,
	"game_not_started":     http.StatusConflict,
	"out_of_turn":          http.StatusForbidden,
	"verification_failed":  http.StatusUnprocessableEntity,
	"heap_exhausted":       http.StatusInternalServerError,
	codeBadRequest:         http.StatusBadRequest,
	codeUnauthorized:       http.StatusUnauthorized,
	codeTooEarly:           http.StatusTooEarly,
}

// requestError is a failure detected before reaching the game.
type requestError struct {
	code string
	err  error
}

func (e requestError) Error() string { return e.err.Error() }
func (e requestError) Unwrap() error { return e.err }

func badRequest(err error) error   { return requestError{code: codeBadRequest, err: err} }
func unauthorized(err error) error { return requestError{code: codeUnauthorized, err: err} }

func errorCode(err error) string {
	var re requestError
	if errors.As(err, &re) {
		return re.code
	}
	return bataille.Code(err)
}

// writeError answers with the status and reason code matching err.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errorCode(err)
	status, ok := statusByCode[code]
	if !ok {
		status = http.StatusInternalServerError
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = http.StatusText(status)
	}
	s.writeJSON(w, status, ErrorResponse{Code: code, Message: msg})
}
