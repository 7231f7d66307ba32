package auction

import (
	"context"
	"math/rand"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestReentrantWithdrawRejected(t *testing.T) {
	h := resolved(t, 4500000)

	var inner []error
	h.l.OnReceive(b1, func(ctx context.Context, _ common.Address, _ uint64) error {
		inner = append(inner,
			h.a.WithdrawFee(ctx, b1),
			h.a.ClaimWinnerPayment(ctx, b2),
			h.a.SubmitCommitment(ctx, b1, word(7), fee),
		)
		return nil
	})

	require.NoError(t, h.a.WithdrawFee(h.ctx, b1))
	require.Len(t, inner, 3)
	for _, err := range inner {
		requireKind(t, err, ErrReentrant, KindReentrancy)
	}
	require.Equal(t, uint64(3*fee-fee), h.a.FeePool())
	require.Equal(t, uint64(fee), h.l.Sent(house))

	// the guard is released after a successful transfer
	h.l.OnReceive(b1, nil)
	requireKind(t, h.a.WithdrawFee(h.ctx, b1), ErrAlreadyPaid, KindResource)
	h.balanced()
}

func TestReentrantCalleeRevert(t *testing.T) {
	h := resolved(t, 4500000)

	// a callee that propagates the guard error makes its own receipt fail
	h.l.OnReceive(b3, func(ctx context.Context, _ common.Address, _ uint64) error {
		return h.a.WithdrawFee(ctx, b3)
	})
	err := h.a.WithdrawFee(h.ctx, b3)
	requireKind(t, err, ErrTransferFailed, KindTransfer)
	require.ErrorIs(t, err, ErrReentrant)
	require.False(t, h.a.FeePaid(b3))
	require.Equal(t, uint64(3*fee), h.a.FeePool())
	h.balanced()

	// and the guard is released after the failure too
	h.l.OnReceive(b3, nil)
	require.NoError(t, h.a.WithdrawFee(h.ctx, b3))
}

func TestConcurrentCallerDuringTransfer(t *testing.T) {
	h := resolved(t, 4500000)

	started := make(chan struct{})
	release := make(chan struct{})
	h.l.OnReceive(b1, func(context.Context, common.Address, uint64) error {
		close(started)
		<-release
		return nil
	})

	done := make(chan error)
	go func() { done <- h.a.WithdrawFee(h.ctx, b1) }()

	<-started
	// rejected outright, not queued behind the running withdrawal
	requireKind(t, h.a.WithdrawFee(h.ctx, b3), ErrReentrant, KindReentrancy)
	// queries still answer while the transfer is out
	require.True(t, h.a.FeePaid(b1))
	close(release)

	require.NoError(t, <-done)
	require.NoError(t, h.a.WithdrawFee(h.ctx, b3))
	h.balanced()
}

func TestConcurrentSubmissions(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBidders = 16
	h := newHarness(t, cfg, dummyKey(3), &stubVerifier{})

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := common.BytesToAddress([]byte{0xc0, byte(i)})
			errs[i] = h.a.SubmitCommitment(h.ctx, id, word(uint32(i+1)), fee)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 16, h.a.BidderCount())
	require.Equal(t, uint64(16*fee), h.a.FeePool())
}

// TestNoDoublePayout drives random operation sequences with random transfer
// failures and checks that the books always match the account and that
// payouts never exceed what came in.
func TestNoDoublePayout(t *testing.T) {
	actors := []common.Address{b1, b2, b3, resolver}
	bidders := actors[:3]

	for seed := int64(1); seed <= 40; seed++ {
		rng := rand.New(rand.NewSource(seed))
		h, v := stubbed(t, true)
		h.mineTo(11)

		for step := 0; step < 60; step++ {
			b := bidders[rng.Intn(len(bidders))]
			switch rng.Intn(9) {
			case 0:
				v.ok = rng.Intn(2) == 0
				_ = h.a.Resolve(h.ctx, resolver, b, uint64(rng.Intn(budget)+1), dummyProof())
			case 1:
				_ = h.a.WithdrawFee(h.ctx, b)
			case 2:
				_ = h.a.ClaimWinnerPayment(h.ctx, b)
			case 3:
				_ = h.a.ClaimBudgetRefund(h.ctx, resolver)
			case 4:
				_ = h.a.EmergencyWithdraw(h.ctx, resolver)
			case 5:
				_ = h.a.Destroy(h.ctx, resolver)
			case 6:
				h.l.Mine(uint64(rng.Intn(8)))
			case 7:
				h.l.Reject(actors[rng.Intn(len(actors))])
			case 8:
				h.l.Accept(actors[rng.Intn(len(actors))])
			}

			h.balanced()
			require.LessOrEqual(t, h.l.Sent(house), uint64(budget+3*fee), "seed %d step %d", seed, step)
		}

		if w, ok := h.a.Winner(); ok {
			require.LessOrEqual(t, h.l.Balance(w.Address), uint64(10*fee-fee+w.Bid+fee))
		}
	}
}
