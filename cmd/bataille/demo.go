package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/drand-bataille/api"
	"github.com/luca-patrignani/drand-bataille/application"
	"github.com/luca-patrignani/drand-bataille/beacon"
	"github.com/luca-patrignani/drand-bataille/domain/bataille"
	"github.com/luca-patrignani/drand-bataille/registry"
)

type demoOptions struct {
	players  int
	maxDraws int
	every    int
	delay    time.Duration
}

// runDemo plays a whole game over HTTP. The server publishes its own beacon
// and the players fetch every round from it like they would from a relay.
func runDemo(args []string, logger *slog.Logger) error {
	var opts demoOptions
	cfg, err := parseConfig("demo", args, func(fs *flag.FlagSet) {
		fs.IntVar(&opts.players, "players", 3, "number of players")
		fs.IntVar(&opts.maxDraws, "max-draws", 5000, "stop after this many draws")
		fs.IntVar(&opts.every, "every", 50, "render the table every n draws")
		fs.DurationVar(&opts.delay, "delay", 0, "pause between draws")
	})
	if err != nil {
		return err
	}
	if opts.players < 2 {
		return fmt.Errorf("a game needs at least 2 players, got %d", opts.players)
	}
	store, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	printBanner()

	sched := beacon.Schedule{Genesis: uint64(time.Now().Unix()), Period: cfg.BeaconPeriod}
	clock := beacon.NewManualClock(sched.Genesis)
	local := beacon.NewLocalBeacon(beacon.DefaultSuite(), nil)
	orchestrator := application.NewOrchestrator(
		registry.New(store),
		bataille.Engine{Verifier: local.Verifier(), Schedule: sched, Rules: rules(cfg)},
		application.WithClock(clock),
		application.WithLogger(logger),
	)
	server := api.NewServer(orchestrator,
		api.WithLogger(logger),
		api.WithSignatureSkew(cfg.SignatureSkew),
		api.WithBeacon(local, sched, clock),
	)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: server.Routes()}
	go srv.Serve(ln)
	defer srv.Close()
	base := "http://" + ln.Addr().String()
	pterm.Info.Printfln("Server listening on %s", base)

	ctx := context.Background()
	clients := make([]*api.Client, opts.players)
	for i := range clients {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return err
		}
		clients[i] = api.NewClient(base, priv, nil)
	}
	id, err := setupGame(ctx, clients)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Game %d started with %d players", id, len(clients))

	relay := beacon.NewHTTPRelay(base, api.BeaconChain, nil)
	spinner, _ := pterm.DefaultSpinner.Start("Playing ...")
	view, err := playGame(ctx, clients, relay, clock, sched, id, opts, spinner)
	spinner.Stop()
	if err != nil {
		return err
	}

	report, err := clients[0].Audit(ctx, id)
	if err != nil {
		return err
	}
	printGame(view, auditPanel(report))
	if err := orchestrator.Ledger().Verify(); err != nil {
		pterm.Error.Printfln("Ledger verification failed: %v", err)
		return err
	}
	pterm.Success.Printfln("Ledger verified: %d blocks", orchestrator.Ledger().Len())

	switch {
	case view.Winner != bataille.NoWinner:
		pterm.Success.Printfln("%s won after %d draws", pterm.LightCyan(shortID(string(view.Winner))), view.Draws)
	case view.Phase == bataille.PhaseFinished:
		pterm.Info.Println("The game ended without a winner")
	default:
		pterm.Info.Printfln("Stopped after %d draws", view.Draws)
	}
	if !report.OK() {
		return errors.New("audit failed")
	}
	return nil
}

func setupGame(ctx context.Context, clients []*api.Client) (uint64, error) {
	id, err := clients[0].CreateGame(ctx)
	if err != nil {
		return 0, fmt.Errorf("create game: %w", err)
	}
	for _, c := range clients[1:] {
		if err := c.JoinGame(ctx, id); err != nil {
			return 0, fmt.Errorf("join game %d: %w", id, err)
		}
	}
	if err := clients[0].StartGame(ctx, id); err != nil {
		return 0, fmt.Errorf("start game %d: %w", id, err)
	}
	return id, nil
}

// playGame draws for whoever holds the turn until the game is over. Before
// each draw the clock moves to the publication time of the required round.
func playGame(ctx context.Context, clients []*api.Client, relay *beacon.HTTPRelay, clock *beacon.ManualClock,
	sched beacon.Schedule, id uint64, opts demoOptions, spinner *pterm.SpinnerPrinter) (api.GameView, error) {
	byOwner := make(map[bataille.Identity]*api.Client, len(clients))
	for _, c := range clients {
		byOwner[bataille.Identity(c.Identity())] = c
	}
	for n := 0; ; n++ {
		view, err := clients[0].Game(ctx, id)
		if err != nil {
			return api.GameView{}, err
		}
		if view.Phase != bataille.PhaseStarted || n >= opts.maxDraws {
			return view, nil
		}
		player, ok := byOwner[view.Current]
		if !ok {
			return view, fmt.Errorf("unknown player %q holds the turn", view.Current)
		}
		round := view.NextRound
		if t := sched.RoundTime(round); t > clock.Now() {
			clock.Set(t)
		}
		sig, err := relay.Signature(ctx, round)
		if err != nil {
			return view, err
		}
		card, err := player.Draw(ctx, id, sig)
		if err != nil {
			return view, fmt.Errorf("draw %d: %w", n, err)
		}
		spinner.UpdateText(fmt.Sprintf("Draw %d: %s drew %s", n+1, shortID(player.Identity()), card.Name))
		if opts.every > 0 && (n+1)%opts.every == 0 {
			after, err := clients[0].Game(ctx, id)
			if err != nil {
				return view, err
			}
			printGame(after, drawPanel(player.Identity(), card, round))
		}
		if opts.delay > 0 {
			time.Sleep(opts.delay)
		}
	}
}
