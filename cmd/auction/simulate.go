package main

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/yourorg/zkauction/internal/config"
	"github.com/yourorg/zkauction/pkg/auction"
	"github.com/yourorg/zkauction/pkg/commitment"
	"github.com/yourorg/zkauction/pkg/ledger"
	"github.com/yourorg/zkauction/pkg/prover"
	"github.com/yourorg/zkauction/pkg/verifier"
	"github.com/yourorg/zkauction/pkg/witness"
)

var (
	houseAddr    = common.HexToAddress("0xa0c7")
	resolverAddr = common.HexToAddress("0xfeed")
)

// report is what simulate prints: the final auction state plus balances.
type report struct {
	Auction  auction.Snapshot          `json:"auction"`
	Balances map[common.Address]uint64 `json:"balances"`
}

// simulate runs one auction over openings on an in-memory ledger, from
// commitment to teardown.
func simulate(ctx context.Context, cfg *config.Config, openings []witness.Opening, log zerolog.Logger) (*report, error) {
	keys, err := prover.SetupOrLoad(len(openings), cfg.KeyDir)
	if err != nil {
		return nil, err
	}
	vk, err := keys.VerifyingKey()
	if err != nil {
		return nil, err
	}
	backend, err := verifier.BackendByName(cfg.Backend)
	if err != nil {
		return nil, err
	}

	l := ledger.New(log)
	l.Mint(resolverAddr, cfg.Budget)
	for _, o := range openings {
		l.Mint(o.Bidder, cfg.Auction.Fee)
	}

	var a *auction.Auction
	err = l.Call(ctx, resolverAddr, houseAddr, cfg.Budget, func(ctx context.Context) error {
		a, err = auction.New(ctx, auction.Params{
			Config:     cfg.Auction,
			Resolver:   resolverAddr,
			Budget:     cfg.Budget,
			Key:        vk,
			Transferer: l.Escrow(houseAddr),
			Heights:    l,
			Verifier:   verifier.New(backend),
			Hasher:     commitment.MiMC{},
			Logger:     &log,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	// commit
	for _, o := range openings {
		c, err := o.Commitment()
		if err != nil {
			return nil, err
		}
		if err := l.Call(ctx, o.Bidder, houseAddr, cfg.Auction.Fee, func(ctx context.Context) error {
			return a.SubmitCommitment(ctx, o.Bidder, c, cfg.Auction.Fee)
		}); err != nil {
			return nil, err
		}
	}

	// reveal
	sched := a.Schedule()
	l.Mine(sched.BiddingEnd + 1 - sched.Start)
	for _, o := range openings {
		pre, err := commitment.Preimage(o.Bid, o.Salt)
		if err != nil {
			return nil, err
		}
		if err := a.VerifyOpening(o.Bidder, pre); err != nil {
			return nil, err
		}
		if err := a.RevealCipher(ctx, o.Bidder, crypto.Keccak256Hash(pre)); err != nil {
			return nil, err
		}
	}

	// resolve
	res, err := keys.ProveMin(openings)
	if err != nil {
		return nil, err
	}
	win := openings[res.Winner]
	if err := a.Resolve(ctx, resolverAddr, win.Bidder, win.Bid, res.Proof); err != nil {
		return nil, err
	}

	// settle
	for _, o := range openings {
		if o.Bidder == win.Bidder {
			continue
		}
		if err := a.WithdrawFee(ctx, o.Bidder); err != nil {
			return nil, err
		}
	}
	if err := a.ClaimWinnerPayment(ctx, win.Bidder); err != nil {
		return nil, err
	}
	if err := a.ClaimBudgetRefund(ctx, resolverAddr); err != nil && !errors.Is(err, auction.ErrNothingToRefund) {
		return nil, err
	}
	if err := a.Destroy(ctx, resolverAddr); err != nil {
		return nil, err
	}

	out := &report{Auction: a.Snapshot(), Balances: map[common.Address]uint64{
		houseAddr:    l.Balance(houseAddr),
		resolverAddr: l.Balance(resolverAddr),
	}}
	for _, o := range openings {
		out.Balances[o.Bidder] = l.Balance(o.Bidder)
	}
	return out, nil
}
