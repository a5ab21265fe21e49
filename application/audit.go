package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/luca-patrignani/drand-bataille/domain/bataille"
	"github.com/luca-patrignani/drand-bataille/ledger"
)

// AuditReport is the outcome of replaying a game from the ledger.
type AuditReport struct {
	GameID  uint64            `json:"game_id"`
	Actions int               `json:"actions"`
	Draws   int               `json:"draws"`
	Winner  bataille.Identity `json:"winner"`
	// Problems lists every disagreement between the ledger, the beacon and
	// the stored game. An empty list means the game checks out.
	Problems []string `json:"problems"`
}

// OK reports whether the audit found nothing wrong.
func (r AuditReport) OK() bool {
	return len(r.Problems) == 0
}

// Audit rebuilds the game from its ledger actions using the recorded clock
// readings, verifying every signature again, and compares the result with
// the stored game.
func (o *Orchestrator) Audit(ctx context.Context, id uint64) (AuditReport, error) {
	var (
		stored  *bataille.Game
		actions []ledger.Action
	)
	// the game and its history are read between two commits
	err := o.registry.View(ctx, id, func(g *bataille.Game) {
		stored = g
		actions = o.ledger.ForGame(id)
	})
	if err != nil {
		return AuditReport{}, err
	}
	if err := o.ledger.Verify(); err != nil {
		return AuditReport{}, fmt.Errorf("ledger: %w", err)
	}
	report := AuditReport{GameID: id, Actions: len(actions), Problems: []string{}}

	var g *bataille.Game
	for _, a := range actions {
		if a.Kind == ledger.KindCreate {
			g = bataille.NewGame(bataille.Identity(a.Caller))
		}
	}
	if g == nil {
		report.Problems = append(report.Problems, "no create action recorded")
		return report, nil
	}

	for _, a := range actions {
		switch a.Kind {
		case ledger.KindJoin:
			if err := g.Join(bataille.Identity(a.Caller)); err != nil {
				report.problem("action %s: join replay: %v", a.ID, err)
			}
		case ledger.KindStart:
			if err := o.engine.Start(g, a.Now); err != nil {
				report.problem("action %s: start replay: %v", a.ID, err)
			}
			if g.NextDrandRound() != a.Round {
				report.problem("action %s: start scheduled round %d, recorded %d", a.ID, g.NextDrandRound(), a.Round)
			}
		case ledger.KindDraw:
			report.Draws++
			if g.NextDrandRound() != a.Round {
				report.problem("action %s: draw expected round %d, recorded %d", a.ID, g.NextDrandRound(), a.Round)
			}
			card, err := o.engine.Draw(ctx, g, bataille.Identity(a.Caller), a.Signature, a.Now)
			if err != nil {
				report.problem("action %s: draw replay: %v", a.ID, err)
				continue
			}
			if int(card) != a.Card {
				report.problem("action %s: replay drew card %d, recorded %d", a.ID, card, a.Card)
			}
		}
	}

	report.Winner = g.Winner()
	same, err := sameState(g, stored)
	if err != nil {
		return report, err
	}
	if !same {
		report.problem("replayed state differs from the stored game")
	}
	o.logger.Info("game audited", "game", id, "actions", report.Actions, "problems", len(report.Problems))
	return report, nil
}

func (r *AuditReport) problem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
}

// sameState compares two games through their persisted form.
func sameState(a, b *bataille.Game) (bool, error) {
	ja, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	jb, err := json.Marshal(b)
	if err != nil {
		return false, err
	}
	return string(ja) == string(jb), nil
}
