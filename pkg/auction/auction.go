// Package auction implements a sealed-bid reverse auction whose winner is
// accepted only with a Groth16 proof that the winning commitment holds the
// lowest bid.
//
// Bidders submit 8-word commitments with a fixed fee, later reveal a cipher,
// and the resolver submits a claimed winner together with a proof. The
// public inputs are every commitment in submission order followed by the
// winner's commitment. Funds held by the auction are split into the budget
// escrow and the fee pool; every payout debits the matching balance before
// the external transfer and restores it if the transfer fails.
//
// All operations are serialized. An operation holds a reentrancy guard for
// its whole duration, including while an outgoing transfer runs with the
// lock released; any call made during that window fails with ErrReentrant.
package auction

import (
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/yourorg/zkauction/pkg/commitment"
	"github.com/yourorg/zkauction/pkg/verifier"
)

// Phase is the settlement stage. Destroyed is tracked separately.
type Phase uint8

const (
	Init Phase = iota
	Verified
	Finished
)

func (p Phase) String() string {
	switch p {
	case Init:
		return "init"
	case Verified:
		return "verified"
	case Finished:
		return "finished"
	}
	return "unknown"
}

// Transferer moves value out of the auction's account.
type Transferer interface {
	Transfer(ctx context.Context, to common.Address, amount uint64) error
}

// HeightSource reports the current, non-decreasing height.
type HeightSource interface {
	Height(ctx context.Context) (uint64, error)
}

// ProofVerifier checks a Groth16 proof. *verifier.Verifier implements it.
type ProofVerifier interface {
	Verify(vk *verifier.VerifyingKey, proof *verifier.Proof, inputs []*big.Int) (bool, error)
}

// Config holds the immutable auction parameters. Durations are in height
// units.
type Config struct {
	BiddingDuration    uint64 `json:"biddingDuration"`
	RevealDuration     uint64 `json:"revealDuration"`
	ProofDeadline      uint64 `json:"proofDeadline"`
	WithdrawalDuration uint64 `json:"withdrawalDuration"`
	MaxBidders         int    `json:"maxBidders"`
	Fee                uint64 `json:"fee"`
}

func (c Config) Validate() error {
	switch {
	case c.BiddingDuration == 0:
		return errors.New("bidding duration must be positive")
	case c.RevealDuration == 0:
		return errors.New("reveal duration must be positive")
	case c.ProofDeadline == 0:
		return errors.New("proof deadline must be positive")
	case c.MaxBidders <= 0:
		return errors.New("max bidders must be positive")
	}
	return nil
}

// Params configures New. Transferer and Heights are required; Verifier,
// Hasher and Logger default to the gnark-crypto backend, Keccak256 and a
// no-op logger.
type Params struct {
	Config   Config
	Resolver common.Address
	Budget   uint64
	Key      *verifier.VerifyingKey

	Transferer Transferer
	Heights    HeightSource
	Verifier   ProofVerifier
	Hasher     commitment.Hasher
	Logger     *zerolog.Logger
}

// Schedule holds the absolute phase boundaries.
type Schedule struct {
	Start            uint64 `json:"start"`
	BiddingEnd       uint64 `json:"biddingEnd"`
	RevealEnd        uint64 `json:"revealEnd"`
	ProofDeadlineEnd uint64 `json:"proofDeadlineEnd"`
	WithdrawalEnd    uint64 `json:"withdrawalEnd"`
}

type bidder struct {
	commitment commitment.Commitment
	cipher     common.Hash
	revealed   bool
	paidBack   bool
}

// Auction is one auction instance. Create it with New.
type Auction struct {
	mu      sync.Mutex
	entered bool

	cfg      Config
	schedule Schedule
	resolver common.Address
	budget   uint64
	key      *verifier.VerifyingKey
	slots    int // bidders the key is sized for

	transferer Transferer
	heights    HeightSource
	verifier   ProofVerifier
	hasher     commitment.Hasher
	log        zerolog.Logger

	order   []common.Address
	bidders map[common.Address]*bidder

	phase         Phase
	destroyed     bool
	proofVerified bool
	winner        common.Address
	winningBid    uint64
	winningCommit commitment.Commitment
	feePool       uint64
	budgetEscrow  uint64
	refunded      bool
}

// New creates an auction whose phases start at the current height.
func New(ctx context.Context, p Params) (*Auction, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, errors.Wrap(err, "auction: invalid config")
	}
	if p.Budget == 0 {
		return nil, errors.New("auction: budget must be nonzero")
	}
	if p.Transferer == nil || p.Heights == nil {
		return nil, errors.New("auction: transferer and height source are required")
	}
	if p.Key == nil {
		return nil, errors.New("auction: verifying key is required")
	}
	slots, ok := commitment.BiddersFor(p.Key.NumPublic())
	if !ok || slots > p.Config.MaxBidders {
		return nil, errors.Errorf("auction: verifying key with %d public inputs does not fit %d bidders",
			p.Key.NumPublic(), p.Config.MaxBidders)
	}
	if err := p.Key.Validate(); err != nil {
		return nil, errors.Wrap(err, "auction: verifying key")
	}

	h, err := p.Heights.Height(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "auction: reading start height")
	}

	a := &Auction{
		cfg:          p.Config,
		schedule:     schedule(h, p.Config),
		resolver:     p.Resolver,
		budget:       p.Budget,
		budgetEscrow: p.Budget,
		key:          p.Key,
		slots:        slots,
		transferer:   p.Transferer,
		heights:      p.Heights,
		verifier:     p.Verifier,
		hasher:       p.Hasher,
		log:          zerolog.Nop(),
		bidders:      make(map[common.Address]*bidder),
	}
	if a.verifier == nil {
		a.verifier = verifier.New(verifier.GnarkBackend{})
	}
	if a.hasher == nil {
		a.hasher = commitment.Keccak256{}
	}
	if p.Logger != nil {
		a.log = p.Logger.With().Str("component", "auction").Logger()
	}

	a.log.Info().
		Str("resolver", a.resolver.Hex()).
		Uint64("budget", a.budget).
		Int("slots", slots).
		Uint64("biddingEnd", a.schedule.BiddingEnd).
		Uint64("revealEnd", a.schedule.RevealEnd).
		Uint64("proofDeadlineEnd", a.schedule.ProofDeadlineEnd).
		Uint64("withdrawalEnd", a.schedule.WithdrawalEnd).
		Msg("auction created")
	return a, nil
}

func schedule(h uint64, c Config) Schedule {
	s := Schedule{Start: h, BiddingEnd: h + c.BiddingDuration}
	s.RevealEnd = s.BiddingEnd + c.RevealDuration
	s.ProofDeadlineEnd = s.RevealEnd + c.ProofDeadline
	s.WithdrawalEnd = s.ProofDeadlineEnd + c.WithdrawalDuration
	return s
}

// enter takes the lock and the reentrancy guard. The returned func releases
// both and must run on every exit path.
func (a *Auction) enter(op string) (func(), error) {
	a.mu.Lock()
	if a.entered {
		a.mu.Unlock()
		a.log.Warn().Str("op", op).Msg("reentrant call rejected")
		return nil, fail(op, ErrReentrant)
	}
	a.entered = true
	return func() {
		a.entered = false
		a.mu.Unlock()
	}, nil
}

// transfer runs the external transfer with the lock released. The guard
// stays set, so anything the callee does against the auction is rejected.
func (a *Auction) transfer(ctx context.Context, to common.Address, amount uint64) error {
	a.mu.Unlock()
	defer a.mu.Lock()
	return a.transferer.Transfer(ctx, to, amount)
}

func (a *Auction) height(ctx context.Context, op string) (uint64, error) {
	h, err := a.heights.Height(ctx)
	if err != nil {
		return 0, failWith(op, ErrHeightUnavailable, err)
	}
	return h, nil
}

func (a *Auction) checkResolver(op string, caller common.Address) error {
	if caller != a.resolver {
		return fail(op, ErrNotResolver)
	}
	return nil
}
