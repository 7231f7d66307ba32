// Package config loads command settings from .env files and the process
// environment.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/yourorg/zkauction/pkg/auction"
	"github.com/yourorg/zkauction/pkg/verifier"
)

const (
	KeyBiddingDuration    = "AUCTION_BIDDING_DURATION"
	KeyRevealDuration     = "AUCTION_REVEAL_DURATION"
	KeyProofDeadline      = "AUCTION_PROOF_DEADLINE"
	KeyWithdrawalDuration = "AUCTION_WITHDRAWAL_DURATION"
	KeyMaxBidders         = "AUCTION_MAX_BIDDERS"
	KeyFee                = "AUCTION_FEE"
	KeyBudget             = "AUCTION_BUDGET"
	KeyKeyDir             = "AUCTION_KEY_DIR"
	KeyBackend            = "AUCTION_BACKEND"
	KeyLogLevel           = "AUCTION_LOG_LEVEL"
	KeyRPCURL             = "AUCTION_RPC_URL"
)

// Config is everything the commands read from the environment.
type Config struct {
	Auction  auction.Config
	Budget   uint64
	KeyDir   string
	Backend  string
	LogLevel string
	RPCURL   string
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Auction: auction.Config{
			BiddingDuration:    100,
			RevealDuration:     100,
			ProofDeadline:      100,
			WithdrawalDuration: 1000,
			MaxBidders:         8,
			Fee:                1000,
		},
		Budget:   5_000_000,
		KeyDir:   "keys",
		Backend:  "gnark",
		LogLevel: "info",
	}
}

// Load reads the given .env files, or ./.env if none are named and it
// exists, and applies them over Default. Process variables take precedence
// over file values.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			files = []string{".env"}
		}
	}
	fileEnv := map[string]string{}
	if len(files) > 0 {
		var err error
		if fileEnv, err = godotenv.Read(files...); err != nil {
			return nil, errors.Wrap(err, "config: reading env files")
		}
	}
	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	})
}

// FromLookup builds a Config from Default and whatever lookup knows.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	p.uintVar(KeyBiddingDuration, &c.Auction.BiddingDuration)
	p.uintVar(KeyRevealDuration, &c.Auction.RevealDuration)
	p.uintVar(KeyProofDeadline, &c.Auction.ProofDeadline)
	p.uintVar(KeyWithdrawalDuration, &c.Auction.WithdrawalDuration)
	p.intVar(KeyMaxBidders, &c.Auction.MaxBidders)
	p.uintVar(KeyFee, &c.Auction.Fee)
	p.uintVar(KeyBudget, &c.Budget)
	p.strVar(KeyKeyDir, &c.KeyDir)
	p.strVar(KeyBackend, &c.Backend)
	p.strVar(KeyLogLevel, &c.LogLevel)
	p.strVar(KeyRPCURL, &c.RPCURL)

	if p.err != nil {
		return nil, p.err
	}
	return c, nil
}

// Validate checks the settings the commands cannot run without.
func (c *Config) Validate() error {
	if err := c.Auction.Validate(); err != nil {
		return errors.Wrap(err, "config")
	}
	if c.Budget == 0 {
		return errors.Errorf("config: %s must be positive", KeyBudget)
	}
	if c.KeyDir == "" {
		return errors.Errorf("config: %s must not be empty", KeyKeyDir)
	}
	if _, err := verifier.BackendByName(c.Backend); err != nil {
		return errors.Wrap(err, "config")
	}
	return nil
}

// parser keeps the first error so callers can check once.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}
	v, ok := p.lookup(key)
	return v, ok && v != ""
}

func (p *parser) uintVar(key string, dst *uint64) {
	if v, ok := p.get(key); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			p.err = errors.Wrapf(err, "config: %s", key)
			return
		}
		*dst = n
	}
}

func (p *parser) intVar(key string, dst *int) {
	if v, ok := p.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			p.err = errors.Wrapf(err, "config: %s", key)
			return
		}
		*dst = n
	}
}

func (p *parser) strVar(key string, dst *string) {
	if v, ok := p.get(key); ok {
		*dst = v
	}
}
