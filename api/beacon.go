package api

import (
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/luca-patrignani/drand-bataille/beacon"
)

// BeaconChain is the chain name under which a server publishes its own
// beacon, so that beacon.NewHTTPRelay(url, BeaconChain, nil) can read it.
const BeaconChain = "beacon"

const codeTooEarly = "round_not_published"

type beaconRelay struct {
	source   beacon.Source
	public   string
	schedule beacon.Schedule
	clock    beacon.Clock
}

// WithBeacon publishes the rounds of src in the format of a drand HTTP relay,
// each round from the time the schedule says it exists.
func WithBeacon(src *beacon.LocalBeacon, schedule beacon.Schedule, clock beacon.Clock) ServerOption {
	return func(s Server) Server {
		pub, _ := src.PublicBytes()
		s.beacon = &beaconRelay{source: src, public: hex.EncodeToString(pub), schedule: schedule, clock: clock}
		return s
	}
}

type beaconRound struct {
	Round     uint64 `json:"round"`
	Signature string `json:"signature"`
}

func (s *Server) handleBeaconInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, beacon.Info{
		PublicKey:   s.beacon.public,
		Period:      s.beacon.schedule.Period,
		GenesisTime: s.beacon.schedule.Genesis,
		Scheme:      beacon.SchemeID,
	})
}

func (s *Server) handleBeaconRound(w http.ResponseWriter, r *http.Request) {
	round, err := strconv.ParseUint(chi.URLParam(r, "round"), 10, 64)
	if err != nil || round == 0 {
		s.writeError(w, badRequest(fmt.Errorf("invalid round %q", chi.URLParam(r, "round"))))
		return
	}
	if latest := s.beacon.schedule.ExpectedRound(s.beacon.clock.Now()); round > latest {
		s.writeError(w, requestError{code: codeTooEarly, err: errors.New("round not published yet")})
		return
	}
	sig, err := s.beacon.source.Signature(r.Context(), round)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, beaconRound{Round: round, Signature: hex.EncodeToString(sig)})
}
