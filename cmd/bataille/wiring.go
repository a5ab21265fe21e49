package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"

	"github.com/luca-patrignani/drand-bataille/beacon"
	"github.com/luca-patrignani/drand-bataille/config"
	"github.com/luca-patrignani/drand-bataille/domain/bataille"
	"github.com/luca-patrignani/drand-bataille/registry"
)

// bindFlags lets command line flags override the environment configuration.
func bindFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "address to listen on")
	fs.BoolVar(&cfg.TLS, "tls", cfg.TLS, "serve HTTPS with a self-signed certificate")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "game store: memory or sqlite")
	fs.StringVar(&cfg.SQLitePath, "sqlite", cfg.SQLitePath, "sqlite database path")
	fs.StringVar(&cfg.Verifier, "verifier", cfg.Verifier, "beacon verifier: local, bls or remote")
	fs.StringVar(&cfg.RemoteVerifierURL, "verifier-url", cfg.RemoteVerifierURL, "remote verifier endpoint")
	fs.StringVar(&cfg.BeaconPublicKey, "beacon-key", cfg.BeaconPublicKey, "beacon public key (hex)")
	fs.StringVar(&cfg.RelayURL, "relay", cfg.RelayURL, "beacon HTTP relay")
	fs.StringVar(&cfg.RelayChain, "chain", cfg.RelayChain, "chain served by the relay")
	fs.Uint64Var(&cfg.BeaconGenesis, "genesis", cfg.BeaconGenesis, "beacon genesis time (unix seconds, 0 for now)")
	fs.Uint64Var(&cfg.BeaconPeriod, "period", cfg.BeaconPeriod, "beacon period (seconds)")
	fs.IntVar(&cfg.BuriedCards, "buried", cfg.BuriedCards, "face-down cards drawn by tied players")
	fs.BoolVar(&cfg.CompareFullCard, "full-card", cfg.CompareFullCard, "break equal values by family")
}

// parseConfig loads the environment, applies flags and validates the result.
func parseConfig(name string, args []string, extra func(fs *flag.FlagSet)) (config.Config, error) {
	var cfg config.Config
	if err := config.ParseEnv(&cfg); err != nil {
		return cfg, err
	}
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	bindFlags(fs, &cfg)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func schedule(cfg config.Config) beacon.Schedule {
	return beacon.Schedule{Genesis: cfg.BeaconGenesis, Period: cfg.BeaconPeriod}
}

func rules(cfg config.Config) bataille.Rules {
	return bataille.Rules{BuriedCards: cfg.BuriedCards, CompareFullCard: cfg.CompareFullCard}
}

// openStore returns the configured store and the function releasing it.
func openStore(cfg config.Config) (registry.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		db, err := registry.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	case config.StoreMemory:
		return registry.NewMemory(), io.NopCloser(nil), nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
}

// buildVerifier returns the configured verifier. The local verifier checks the
// signatures of local, which must then be non-nil.
func buildVerifier(cfg config.Config, local *beacon.LocalBeacon) (beacon.Verifier, error) {
	switch cfg.Verifier {
	case config.VerifierLocal:
		if local == nil {
			return nil, fmt.Errorf("local verifier without a local beacon")
		}
		return local.Verifier(), nil
	case config.VerifierBLS:
		v, err := beacon.NewBLSVerifierFromHex(cfg.BeaconPublicKey)
		if err != nil {
			return nil, err
		}
		return v, nil
	case config.VerifierRemote:
		return beacon.NewRemoteVerifier(cfg.RemoteVerifierURL,
			beacon.WithHTTPClient(&http.Client{}),
			beacon.WithRequestTimeout(cfg.VerifyTimeout),
		), nil
	}
	return nil, fmt.Errorf("unknown verifier %q", cfg.Verifier)
}
