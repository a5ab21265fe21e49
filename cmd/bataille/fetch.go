package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/drand-bataille/beacon"
	"github.com/luca-patrignani/drand-bataille/config"
	"github.com/luca-patrignani/drand-bataille/domain/deck"
	"github.com/luca-patrignani/drand-bataille/rng"
)

// runFetch reads one round from the configured relay, checks it when the
// verifier can run without a local beacon, and shows the card it would draw
// from a full deck. The round timing comes from the relay's chain info.
func runFetch(args []string, logger *slog.Logger) error {
	var round uint64
	cfg, err := parseConfig("fetch", args, func(fs *flag.FlagSet) {
		fs.Uint64Var(&round, "round", 0, "round to fetch, 0 for the current one")
	})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.VerifyTimeout)
	defer cancel()
	relay := beacon.NewHTTPRelay(cfg.RelayURL, cfg.RelayChain, nil)
	info, err := relay.Info(ctx)
	if err != nil {
		return err
	}
	if round == 0 {
		round = info.Schedule().ExpectedRound(beacon.SystemClock{}.Now())
	}
	if cfg.Verifier == config.VerifierBLS && info.Scheme != beacon.SchemeID {
		return fmt.Errorf("relay chain uses scheme %q, the bls verifier checks %q", info.Scheme, beacon.SchemeID)
	}
	sig, err := relay.Signature(ctx, round)
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Round %d: %s", round, hex.EncodeToString(sig))

	if cfg.Verifier != config.VerifierLocal {
		verifier, err := buildVerifier(cfg, nil)
		if err != nil {
			return err
		}
		ok, err := verifier.Verify(ctx, round, sig)
		if err != nil {
			return fmt.Errorf("verify round %d: %w", round, err)
		}
		if !ok {
			pterm.Error.Printfln("Round %d does not verify", round)
			return fmt.Errorf("round %d: bad signature", round)
		}
		pterm.Success.Printfln("Round %d verified", round)
	}

	full := deck.NewFull()
	card, err := full.Draw(rng.Seed(sig))
	if err != nil {
		return err
	}
	logger.Debug("fetched round", "round", round, "relay", cfg.RelayURL, "chain", cfg.RelayChain, "scheme", info.Scheme)
	pterm.Info.Printfln("First card of a fresh game: %s", card)
	return nil
}
