package main

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/luca-patrignani/drand-bataille/api"
	"github.com/luca-patrignani/drand-bataille/application"
)

func printBanner() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("drand ", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("B", pterm.FgRed.ToStyle()),
		putils.LettersFromStringWithStyle("ataille", pterm.FgDarkGray.ToStyle()),
	).Render()
}

// shortID keeps identities readable: they are hex encoded public keys.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func revealedString(cards []api.CardView) string {
	if len(cards) == 0 {
		return "-"
	}
	names := make([]string, len(cards))
	for i, c := range cards {
		names[i] = c.Name
	}
	return strings.Join(names, " ")
}

func playerPanel(p api.PlayerView, current bool) pterm.Panel {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	status := pterm.LightGreen("Active")
	if !p.Active {
		status = pterm.LightRed("Out")
	}
	title := shortID(string(p.Owner))
	if current {
		title = pterm.LightCyan("> " + title)
	}
	return pterm.Panel{Data: pbox.WithTitle(title).WithTitleTopLeft().Sprintf(
		"%s\nHeap: %d\nTable: %s\n", status, p.Heap, revealedString(p.Revealed))}
}

func boardPanel(g api.GameView) pterm.Panel {
	state := pterm.Sprintf("Shared deck: %d | Next round: %d | Draws: %d", g.Shared, g.NextRound, g.Draws)
	if g.Bataille {
		state += " | " + pterm.LightRed("BATAILLE")
	}
	return pterm.Panel{Data: pterm.BgGreen.Sprint("\n" + state + "\n")}
}

func printGame(g api.GameView, extra ...pterm.Panel) {
	var players []pterm.Panel
	for _, p := range g.Players {
		players = append(players, playerPanel(p, p.Owner == g.Current))
	}
	pterm.DefaultPanel.WithPanels([][]pterm.Panel{
		players,
		{boardPanel(g)},
		extra,
	}).Render()
}

func drawPanel(owner string, card api.CardView, round uint64) pterm.Panel {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|LAST DRAW|")).WithTitleTopCenter().Sprintf(
		"%s drew %s with round %d", pterm.LightCyan(shortID(owner)), card.Name, round)}
}

func auditPanel(r application.AuditReport) pterm.Panel {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	body := pterm.Sprintfln("%d actions, %d draws replayed", r.Actions, r.Draws)
	if r.OK() {
		body += pterm.LightGreen("history matches the stored game")
	} else {
		for _, p := range r.Problems {
			body += pterm.LightRed(p) + "\n"
		}
	}
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightGreen("|AUDIT|")).WithTitleTopCenter().Sprint(body)}
}
