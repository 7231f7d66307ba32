package verifier_test

import (
	"encoding/json"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/zkauction/pkg/curve"
	"github.com/yourorg/zkauction/pkg/prover"
	"github.com/yourorg/zkauction/pkg/verifier"
	"github.com/yourorg/zkauction/pkg/witness"
)

type fixture struct {
	vk     *verifier.VerifyingKey
	proof  *verifier.Proof
	inputs []*big.Int
	keys   *prover.Keys
	open   []witness.Opening
}

var (
	fixOnce sync.Once
	fix     fixture
	fixErr  error
)

func load(t *testing.T) fixture {
	t.Helper()
	fixOnce.Do(func() {
		fix.open = []witness.Opening{
			{Bidder: common.HexToAddress("0xa1"), Bid: 5200000, Salt: big.NewInt(0x1111)},
			{Bidder: common.HexToAddress("0xa2"), Bid: 4500000, Salt: big.NewInt(0x2222)},
			{Bidder: common.HexToAddress("0xa3"), Bid: 4800000, Salt: big.NewInt(0x3333)},
		}
		if fix.keys, fixErr = prover.Setup(3); fixErr != nil {
			return
		}
		if fix.vk, fixErr = fix.keys.VerifyingKey(); fixErr != nil {
			return
		}
		var res *prover.Result
		if res, fixErr = fix.keys.Prove(fix.open, 1); fixErr != nil {
			return
		}
		fix.proof = res.Proof
		fix.inputs = res.Public.Signals()
	})
	require.NoError(t, fixErr)
	return fix
}

func cloneInputs(in []*big.Int) []*big.Int {
	out := make([]*big.Int, len(in))
	for i, v := range in {
		out[i] = new(big.Int).Set(v)
	}
	return out
}

// counting wraps a backend and records how often pairings run.
type counting struct {
	verifier.Backend
	calls int
}

func (c *counting) PairingCheck(g1 []curve.G1, g2 []curve.G2) (bool, error) {
	c.calls++
	return c.Backend.PairingCheck(g1, g2)
}

func TestVerifyAcceptsValidProof(t *testing.T) {
	f := load(t)
	require.Equal(t, 8*3+8, f.vk.NumPublic())

	for _, b := range []verifier.Backend{verifier.GnarkBackend{}, verifier.GethBackend{}} {
		ok, err := verifier.New(b).Verify(f.vk, f.proof, f.inputs)
		require.NoError(t, err, "%v", b)
		require.True(t, ok, "%v", b)
	}
}

func TestVerifyRejectsMutatedInput(t *testing.T) {
	f := load(t)

	for _, i := range []int{0, 7, 12, len(f.inputs) - 1} {
		in := cloneInputs(f.inputs)
		in[i].Add(in[i], big.NewInt(1))
		for _, b := range []verifier.Backend{verifier.GnarkBackend{}, verifier.GethBackend{}} {
			ok, err := verifier.New(b).Verify(f.vk, f.proof, in)
			require.NoError(t, err)
			require.False(t, ok, "input %d accepted by %v", i, b)
		}
	}
}

func TestVerifyRejectsOtherWinner(t *testing.T) {
	f := load(t)

	in := cloneInputs(f.inputs)
	// swap the claimed winner for the highest bidder's commitment
	copy(in[24:], cloneInputs(f.inputs[0:8]))
	ok, err := verifier.Verify(f.vk, f.proof, in)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	f := load(t)

	tamper := []func(p *verifier.Proof){
		func(p *verifier.Proof) { p.A.X.Xor(p.A.X, big.NewInt(1)) },
		func(p *verifier.Proof) { p.C.Y.Xor(p.C.Y, big.NewInt(2)) },
		func(p *verifier.Proof) { p.B.X[1].Xor(p.B.X[1], big.NewInt(1)) },
		func(p *verifier.Proof) { p.A, p.C = p.C, p.A },
		func(p *verifier.Proof) { p.A = curve.Neg(p.A) },
	}
	for i, fn := range tamper {
		p := &verifier.Proof{A: f.proof.A.Clone(), B: f.proof.B.Clone(), C: f.proof.C.Clone()}
		fn(p)
		ok, err := verifier.Verify(f.vk, p, f.inputs)
		require.False(t, ok, "tampered proof %d accepted (err %v)", i, err)
	}
}

func TestVerifyInputOutOfField(t *testing.T) {
	f := load(t)
	b := &counting{Backend: verifier.GnarkBackend{}}

	in := cloneInputs(f.inputs)
	in[3] = curve.ScalarModulus()
	ok, err := verifier.New(b).Verify(f.vk, f.proof, in)
	require.ErrorIs(t, err, verifier.ErrInputOutOfField)
	require.False(t, ok)

	in[3] = big.NewInt(-1)
	_, err = verifier.New(b).Verify(f.vk, f.proof, in)
	require.ErrorIs(t, err, verifier.ErrInputOutOfField)
	require.Zero(t, b.calls)

	// r-1 is a field element and reaches the pairing
	in[3] = new(big.Int).Sub(curve.ScalarModulus(), big.NewInt(1))
	ok, err = verifier.New(b).Verify(f.vk, f.proof, in)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 1, b.calls)
}

func TestVerifyInputCount(t *testing.T) {
	f := load(t)

	_, err := verifier.Verify(f.vk, f.proof, f.inputs[1:])
	require.ErrorIs(t, err, verifier.ErrInputCount)

	_, err = verifier.Verify(f.vk, f.proof, append(cloneInputs(f.inputs), big.NewInt(0)))
	require.ErrorIs(t, err, verifier.ErrInputCount)

	_, err = verifier.Verify(nil, f.proof, f.inputs)
	require.ErrorIs(t, err, verifier.ErrNilProof)
}

func TestVerifyMalformedPoints(t *testing.T) {
	f := load(t)

	p := &verifier.Proof{A: curve.NewG1(big.NewInt(1), big.NewInt(3)), B: f.proof.B, C: f.proof.C}
	_, err := verifier.Verify(f.vk, p, f.inputs)
	require.ErrorIs(t, err, verifier.ErrMalformedPoint)
	require.ErrorIs(t, err, curve.ErrNotOnCurve)

	p = &verifier.Proof{A: f.proof.A, B: f.proof.B, C: curve.NewG1(curve.BaseModulus(), big.NewInt(2))}
	_, err = verifier.Verify(f.vk, p, f.inputs)
	require.ErrorIs(t, err, verifier.ErrMalformedPoint)

	vk := *f.vk
	vk.Gamma = curve.NewG2(big.NewInt(1), big.NewInt(1), big.NewInt(1), big.NewInt(1))
	_, err = verifier.Verify(&vk, f.proof, f.inputs)
	require.ErrorIs(t, err, verifier.ErrMalformedPoint)

	var pe *verifier.PointError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "vk.gamma", pe.Point)
}

func TestJSONRoundTrip(t *testing.T) {
	f := load(t)

	rawVK, err := json.Marshal(f.vk)
	require.NoError(t, err)
	vk, err := verifier.ParseVerifyingKey(rawVK)
	require.NoError(t, err)

	rawProof, err := json.Marshal(f.proof)
	require.NoError(t, err)
	proof, err := verifier.ParseProof(rawProof)
	require.NoError(t, err)

	inputs, err := verifier.ParseSignals(verifier.Signals(f.inputs))
	require.NoError(t, err)

	ok, err := verifier.Verify(vk, proof, inputs)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestParseRejectsForeignHeaders(t *testing.T) {
	_, err := verifier.ParseProof([]byte(`{"protocol":"plonk","curve":"bn128"}`))
	require.Error(t, err)

	_, err = verifier.ParseVerifyingKey([]byte(`{"protocol":"groth16","curve":"bls12381"}`))
	require.Error(t, err)
}

func TestBackendByName(t *testing.T) {
	for name, want := range map[string]string{"": "gnark", "gnark": "gnark", "geth": "geth"} {
		b, err := verifier.BackendByName(name)
		require.NoError(t, err)
		require.Equal(t, want, b.(interface{ String() string }).String())
	}
	_, err := verifier.BackendByName("rapidsnark")
	require.Error(t, err)
}
