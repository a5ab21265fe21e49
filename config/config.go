// Package config holds the settings of the bataille server.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Verifier kinds.
const (
	VerifierLocal  = "local"  // in-process beacon, for demos and tests
	VerifierBLS    = "bls"    // check signatures against a network public key
	VerifierRemote = "remote" // delegate to a verification service
)

// LocalChain is the chain name under which a bataille server publishes its
// local beacon.
const LocalChain = "beacon"

type Config struct {
	Listen string `env:"BATAILLE_LISTEN" envDefault:"127.0.0.1:8080"`
	TLS    bool   `env:"BATAILLE_TLS"`

	Store      string `env:"BATAILLE_STORE" envDefault:"memory"`
	SQLitePath string `env:"BATAILLE_SQLITE_PATH" envDefault:"bataille.db"`

	Verifier          string        `env:"BATAILLE_VERIFIER" envDefault:"local"`
	RemoteVerifierURL string        `env:"BATAILLE_REMOTE_VERIFIER_URL"`
	BeaconPublicKey   string        `env:"BATAILLE_BEACON_PUBLIC_KEY"` // hex, G2 point
	VerifyTimeout     time.Duration `env:"BATAILLE_VERIFY_TIMEOUT" envDefault:"10s"`
	RelayURL          string        `env:"BATAILLE_RELAY_URL" envDefault:"http://127.0.0.1:8080"`
	RelayChain        string        `env:"BATAILLE_RELAY_CHAIN" envDefault:"beacon"`

	// BeaconGenesis 0 starts the local beacon when the process starts.
	BeaconGenesis uint64 `env:"BATAILLE_BEACON_GENESIS"`
	BeaconPeriod  uint64 `env:"BATAILLE_BEACON_PERIOD" envDefault:"3"`

	BuriedCards     int  `env:"BATAILLE_BURIED_CARDS" envDefault:"0"`
	CompareFullCard bool `env:"BATAILLE_COMPARE_FULL_CARD"`

	SignatureSkew time.Duration `env:"BATAILLE_SIGNATURE_SKEW" envDefault:"30s"`
}

// Load reads the configuration from the environment and validates it.
func Load() (Config, error) {
	var c Config
	if err := ParseEnv(&c); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the combination of settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("sqlite store needs a path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store %q", c.Store))
	}
	switch c.Verifier {
	case VerifierLocal:
	case VerifierBLS:
		if c.BeaconPublicKey == "" {
			errs = append(errs, errors.New("bls verifier needs a beacon public key"))
		}
		if c.BeaconGenesis == 0 {
			errs = append(errs, errors.New("bls verifier needs the beacon genesis time"))
		}
	case VerifierRemote:
		if c.RemoteVerifierURL == "" {
			errs = append(errs, errors.New("remote verifier needs a url"))
		}
		if c.BeaconGenesis == 0 {
			errs = append(errs, errors.New("remote verifier needs the beacon genesis time"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown verifier %q", c.Verifier))
	}
	if c.BeaconPeriod == 0 {
		errs = append(errs, errors.New("beacon period must be positive"))
	}
	if c.BuriedCards < 0 {
		errs = append(errs, errors.New("buried cards must not be negative"))
	}
	return errors.Join(errs...)
}
