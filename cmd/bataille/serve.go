package main

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/drand-bataille/api"
	"github.com/luca-patrignani/drand-bataille/application"
	"github.com/luca-patrignani/drand-bataille/beacon"
	"github.com/luca-patrignani/drand-bataille/config"
	"github.com/luca-patrignani/drand-bataille/domain/bataille"
	"github.com/luca-patrignani/drand-bataille/registry"
)

func runServe(args []string, logger *slog.Logger) error {
	cfg, err := parseConfig("serve", args, nil)
	if err != nil {
		return err
	}
	store, closer, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	var local *beacon.LocalBeacon
	if cfg.Verifier == config.VerifierLocal {
		local = beacon.NewLocalBeacon(beacon.DefaultSuite(), nil)
	}
	verifier, err := buildVerifier(cfg, local)
	if err != nil {
		return err
	}

	clock := beacon.SystemClock{}
	sched := schedule(cfg)
	if sched.Genesis == 0 {
		sched.Genesis = clock.Now()
	}
	orchestrator := application.NewOrchestrator(
		registry.New(store),
		bataille.Engine{Verifier: verifier, Schedule: sched, Rules: rules(cfg)},
		application.WithClock(clock),
		application.WithLogger(logger),
	)
	opts := []api.ServerOption{
		api.WithLogger(logger),
		api.WithSignatureSkew(cfg.SignatureSkew),
		api.WithRequestTimeout(cfg.VerifyTimeout + 5*time.Second),
	}
	if local != nil {
		pub, _ := local.PublicBytes()
		pterm.Info.Printfln("Local beacon public key: %s", hex.EncodeToString(pub))
		opts = append(opts, api.WithBeacon(local, sched, clock))
	}
	server := api.NewServer(orchestrator, opts...)

	srv := &http.Server{Addr: cfg.Listen}
	if cfg.TLS {
		cert, certPEM, err := api.SelfSignedCert(cfg.Listen)
		if err != nil {
			return err
		}
		srv.TLSConfig = api.TLSConfig(cert)
		pterm.Info.Printfln("Self-signed certificate:\n%s", certPEM)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("listening", "address", cfg.Listen, "store", cfg.Store, "verifier", cfg.Verifier, "tls", cfg.TLS)
	if err := server.Serve(ctx, srv); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}
