package curve

import (
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"
)

// G2 is an affine point of the BN254 G2 group over Fp2. X[0], Y[0] are the
// real parts and X[1], Y[1] the imaginary parts. All-zero is the identity.
type G2 struct {
	X, Y [2]*big.Int
}

// NewG2 copies the coordinates into a point without validating it.
func NewG2(x0, x1, y0, y1 *big.Int) G2 {
	return G2{
		X: [2]*big.Int{new(big.Int).Set(x0), new(big.Int).Set(x1)},
		Y: [2]*big.Int{new(big.Int).Set(y0), new(big.Int).Set(y1)},
	}
}

// G2Infinity returns the identity of G2.
func G2Infinity() G2 {
	return G2{
		X: [2]*big.Int{new(big.Int), new(big.Int)},
		Y: [2]*big.Int{new(big.Int), new(big.Int)},
	}
}

func (q G2) coords() []*big.Int { return []*big.Int{q.X[0], q.X[1], q.Y[0], q.Y[1]} }

func (q G2) IsInfinity() bool {
	for _, c := range q.coords() {
		if c.Sign() != 0 {
			return false
		}
	}
	return true
}

func (q G2) Clone() G2 { return NewG2(q.X[0], q.X[1], q.Y[0], q.Y[1]) }

func (q G2) Equal(o G2) bool {
	oc := o.coords()
	for i, c := range q.coords() {
		if c.Cmp(oc[i]) != 0 {
			return false
		}
	}
	return true
}

func (q G2) String() string {
	for _, c := range q.coords() {
		if c == nil {
			return "G2(nil)"
		}
	}
	return fmt.Sprintf("G2((%s, %s), (%s, %s))", q.X[0], q.X[1], q.Y[0], q.Y[1])
}

// Validate rejects nil or out of range coordinates, points off the twist and
// points outside the r-torsion subgroup. The identity is valid.
func (q G2) Validate() error {
	for _, c := range q.coords() {
		if err := checkCoordinate(c); err != nil {
			return err
		}
	}
	if q.IsInfinity() {
		return nil
	}
	g := q.Gnark()
	if !g.IsOnCurve() {
		return ErrNotOnCurve
	}
	if !g.IsInSubGroup() {
		return ErrNotInSubgroup
	}
	return nil
}

// Gnark converts q to the gnark-crypto representation.
func (q G2) Gnark() bn254.G2Affine {
	var g bn254.G2Affine
	g.X.A0.SetBigInt(q.X[0])
	g.X.A1.SetBigInt(q.X[1])
	g.Y.A0.SetBigInt(q.Y[0])
	g.Y.A1.SetBigInt(q.Y[1])
	return g
}

// G2FromGnark converts a gnark-crypto point.
func G2FromGnark(g *bn254.G2Affine) G2 {
	return G2{
		X: [2]*big.Int{g.X.A0.BigInt(new(big.Int)), g.X.A1.BigInt(new(big.Int))},
		Y: [2]*big.Int{g.Y.A0.BigInt(new(big.Int)), g.Y.A1.BigInt(new(big.Int))},
	}
}

// Gnark converts p to the gnark-crypto representation.
func (p G1) Gnark() bn254.G1Affine {
	var g bn254.G1Affine
	g.X.SetBigInt(p.X)
	g.Y.SetBigInt(p.Y)
	return g
}

// G1FromGnark converts a gnark-crypto point.
func G1FromGnark(g *bn254.G1Affine) G1 {
	return G1{X: g.X.BigInt(new(big.Int)), Y: g.Y.BigInt(new(big.Int))}
}

// Marshal encodes p as x || y, 32 bytes each, the layout of the EIP-196
// precompiles.
func (p G1) Marshal() []byte {
	return append(word32(p.X), word32(p.Y)...)
}

// Marshal encodes q in EIP-197 order: imaginary part first.
func (q G2) Marshal() []byte {
	out := make([]byte, 0, 128)
	out = append(out, word32(q.X[1])...)
	out = append(out, word32(q.X[0])...)
	out = append(out, word32(q.Y[1])...)
	return append(out, word32(q.Y[0])...)
}

// Geth converts p to a go-ethereum cloudflare point. The unmarshal re-checks
// the curve equation.
func (p G1) Geth() (*bn256.G1, error) {
	g := new(bn256.G1)
	if _, err := g.Unmarshal(p.Marshal()); err != nil {
		return nil, err
	}
	return g, nil
}

// Geth converts q to a go-ethereum cloudflare point.
func (q G2) Geth() (*bn256.G2, error) {
	g := new(bn256.G2)
	if _, err := g.Unmarshal(q.Marshal()); err != nil {
		return nil, err
	}
	return g, nil
}
