package auction

import (
	"context"
	"math/big"
	"sync"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/zkauction/pkg/commitment"
	"github.com/yourorg/zkauction/pkg/curve"
	"github.com/yourorg/zkauction/pkg/ledger"
	"github.com/yourorg/zkauction/pkg/prover"
	"github.com/yourorg/zkauction/pkg/verifier"
	"github.com/yourorg/zkauction/pkg/witness"
)

const (
	fee    = 100
	budget = 5_000_000
)

var (
	resolver = common.HexToAddress("0xfeed")
	house    = common.HexToAddress("0xa0c7")
	b1       = common.HexToAddress("0xb1")
	b2       = common.HexToAddress("0xb2")
	b3       = common.HexToAddress("0xb3")
)

func testConfig() Config {
	return Config{
		BiddingDuration:    10,
		RevealDuration:     10,
		ProofDeadline:      10,
		WithdrawalDuration: 10,
		MaxBidders:         3,
		Fee:                fee,
	}
}

// stubVerifier answers every proof with ok/err and counts calls.
type stubVerifier struct {
	ok    bool
	err   error
	calls int
}

func (s *stubVerifier) Verify(*verifier.VerifyingKey, *verifier.Proof, []*big.Int) (bool, error) {
	s.calls++
	return s.ok, s.err
}

// dummyKey is a well-formed key for n bidders that only a stub can satisfy.
func dummyKey(n int) *verifier.VerifyingKey {
	_, _, g1, g2 := bn254.Generators()
	vk := &verifier.VerifyingKey{
		Alpha: curve.G1FromGnark(&g1),
		Beta:  curve.G2FromGnark(&g2),
		Gamma: curve.G2FromGnark(&g2),
		Delta: curve.G2FromGnark(&g2),
	}
	for i := 0; i < commitment.Words*n+commitment.Words+1; i++ {
		vk.IC = append(vk.IC, curve.G1FromGnark(&g1))
	}
	return vk
}

func dummyProof() *verifier.Proof {
	_, _, g1, g2 := bn254.Generators()
	return &verifier.Proof{A: curve.G1FromGnark(&g1), B: curve.G2FromGnark(&g2), C: curve.G1FromGnark(&g1)}
}

func word(i uint32) commitment.Commitment {
	return commitment.Commitment{0, 0, 0, 0, 0, 0, 0, i}
}

type harness struct {
	t   *testing.T
	ctx context.Context
	l   *ledger.Ledger
	a   *Auction
}

func newHarness(t *testing.T, cfg Config, key *verifier.VerifyingKey, v ProofVerifier) *harness {
	t.Helper()
	ctx := context.Background()
	l := ledger.New(zerolog.Nop())
	l.Mint(resolver, budget)
	for _, b := range []common.Address{b1, b2, b3} {
		l.Mint(b, 10*fee)
	}

	h := &harness{t: t, ctx: ctx, l: l}
	err := l.Call(ctx, resolver, house, budget, func(ctx context.Context) error {
		var err error
		h.a, err = New(ctx, Params{
			Config:     cfg,
			Resolver:   resolver,
			Budget:     budget,
			Key:        key,
			Transferer: l.Escrow(house),
			Heights:    l,
			Verifier:   v,
			Hasher:     commitment.MiMC{},
		})
		return err
	})
	require.NoError(t, err)
	return h
}

func (h *harness) submit(id common.Address, c commitment.Commitment) error {
	return h.l.Call(h.ctx, id, house, fee, func(ctx context.Context) error {
		return h.a.SubmitCommitment(ctx, id, c, fee)
	})
}

func (h *harness) mineTo(height uint64) {
	cur, _ := h.l.Height(h.ctx)
	require.LessOrEqual(h.t, cur, height)
	h.l.Mine(height - cur)
}

// balanced asserts that the auction account holds exactly what its books say.
func (h *harness) balanced() {
	h.t.Helper()
	require.Equal(h.t, h.a.BudgetEscrow()+h.a.FeePool(), h.l.Balance(house))
}

// stubbed returns a harness with three committed bidders and a stub verifier.
func stubbed(t *testing.T, ok bool) (*harness, *stubVerifier) {
	t.Helper()
	v := &stubVerifier{ok: ok}
	h := newHarness(t, testConfig(), dummyKey(3), v)
	for i, b := range []common.Address{b1, b2, b3} {
		require.NoError(t, h.submit(b, word(uint32(i+1))))
	}
	return h, v
}

// resolved returns a stubbed harness resolved with b2 as winner.
func resolved(t *testing.T, bid uint64) *harness {
	t.Helper()
	h, _ := stubbed(t, true)
	h.mineTo(11)
	require.NoError(t, h.a.Resolve(h.ctx, resolver, b2, bid, dummyProof()))
	return h
}

/* ---------------- real proof fixture ---------------- */

type proofFixture struct {
	openings []witness.Opening
	vk       *verifier.VerifyingKey
	proof    *verifier.Proof
}

var (
	proofOnce sync.Once
	proofFix  proofFixture
	proofErr  error
)

// realProof proves that b2's bid is the lowest of three.
func realProof(t *testing.T) proofFixture {
	t.Helper()
	proofOnce.Do(func() {
		proofFix.openings = []witness.Opening{
			{Bidder: b1, Bid: 5200000, Salt: big.NewInt(0x5eed01)},
			{Bidder: b2, Bid: 4500000, Salt: big.NewInt(0x5eed02)},
			{Bidder: b3, Bid: 4800000, Salt: big.NewInt(0x5eed03)},
		}
		keys, err := prover.Setup(3)
		if err != nil {
			proofErr = err
			return
		}
		if proofFix.vk, err = keys.VerifyingKey(); err != nil {
			proofErr = err
			return
		}
		res, err := keys.ProveMin(proofFix.openings)
		if err != nil {
			proofErr = err
			return
		}
		proofFix.proof = res.Proof
	})
	require.NoError(t, proofErr)
	return proofFix
}
