package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/luca-patrignani/drand-bataille/domain/bataille"
	"github.com/luca-patrignani/drand-bataille/domain/deck"
)

type createResponse struct {
	ID uint64 `json:"id"`
}

type drawRequest struct {
	Signature string `json:"signature"` // hex
}

// CardView is a card as sent to clients.
type CardView struct {
	Index  int    `json:"index"`
	Family uint8  `json:"family"`
	Value  uint8  `json:"value"`
	Name   string `json:"name"`
}

func cardView(c deck.Card) CardView {
	return CardView{Index: int(c), Family: c.Family(), Value: c.Value(), Name: c.Name()}
}

type PlayerView struct {
	Owner    bataille.Identity `json:"owner"`
	Active   bool              `json:"active"`
	Heap     int               `json:"heap"`
	Revealed []CardView        `json:"revealed"`
}

// GameView is the public state of a game. Heaps are only counted: their
// content is not needed to play.
type GameView struct {
	ID        uint64            `json:"id"`
	Phase     bataille.Phase    `json:"phase"`
	Shared    int               `json:"shared"`
	Players   []PlayerView      `json:"players"`
	Turn      int               `json:"turn"`
	Current   bataille.Identity `json:"current,omitempty"`
	Bataille  bool              `json:"bataille"`
	Tied      []int             `json:"tied,omitempty"`
	NextRound uint64            `json:"next_round"`
	Draws     uint64            `json:"draws"`
	Winner    bataille.Identity `json:"winner,omitempty"`
}

func gameView(id uint64, g *bataille.Game) GameView {
	v := GameView{
		ID:        id,
		Phase:     g.Phase,
		Shared:    g.Shared.Len(),
		Turn:      g.TurnIndex(),
		Bataille:  g.Bataille,
		Tied:      g.Tied,
		NextRound: g.NextDrandRound(),
		Draws:     g.Draws,
		Winner:    g.Winner(),
	}
	if idx := g.CurrentPlayer(); idx >= 0 {
		v.Current = g.Players[idx].Owner
	}
	for i, p := range g.Players {
		pv := PlayerView{Owner: p.Owner, Active: g.IsActive(i), Heap: p.Heap.Len(), Revealed: []CardView{}}
		for _, c := range p.Revealed {
			pv.Revealed = append(pv.Revealed, cardView(c))
		}
		v.Players = append(v.Players, pv)
	}
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"uptime": time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) handleVerifyLedger(w http.ResponseWriter, r *http.Request) {
	l := s.games.Ledger()
	resp := map[string]any{"valid": true, "blocks": l.Len()}
	if err := l.Verify(); err != nil {
		resp["valid"] = false
		resp["error"] = err.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.games.CreateGame(r.Context(), callerFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, createResponse{ID: id})
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	id := gameIDFrom(r.Context())
	if err := s.games.JoinGame(r.Context(), id, callerFrom(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeGame(w, r, id)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	id := gameIDFrom(r.Context())
	if err := s.games.StartGame(r.Context(), id, callerFrom(r.Context())); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeGame(w, r, id)
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req drawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, badRequest(err))
		return
	}
	sig, err := hex.DecodeString(req.Signature)
	if err != nil {
		s.writeError(w, badRequest(err))
		return
	}
	if len(sig) == 0 {
		s.writeError(w, badRequest(errors.New("missing signature")))
		return
	}
	card, err := s.games.Draw(r.Context(), gameIDFrom(r.Context()), callerFrom(r.Context()), sig)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cardView(card))
}

func (s *Server) writeGame(w http.ResponseWriter, r *http.Request, id uint64) {
	g, err := s.games.Game(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, gameView(id, g))
}

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	s.writeGame(w, r, gameIDFrom(r.Context()))
}

func (s *Server) handleWinner(w http.ResponseWriter, r *http.Request) {
	winner, err := s.games.Winner(r.Context(), gameIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"winner": winner})
}

func (s *Server) handleNextRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.games.NextDrandRound(r.Context(), gameIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"round": round})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	turn, err := s.games.Turn(r.Context(), gameIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"turn": turn})
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	report, err := s.games.Audit(r.Context(), gameIDFrom(r.Context()))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}
