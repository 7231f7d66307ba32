package curve

import (
	"fmt"
	"math/big"
)

// G1 is an affine point of the BN254 G1 group. (0,0) is the identity.
type G1 struct {
	X, Y *big.Int
}

// NewG1 copies x and y into a point without validating it.
func NewG1(x, y *big.Int) G1 {
	return G1{X: new(big.Int).Set(x), Y: new(big.Int).Set(y)}
}

// G1Infinity returns the identity of G1.
func G1Infinity() G1 { return G1{X: new(big.Int), Y: new(big.Int)} }

// G1Generator returns the standard generator (1, 2).
func G1Generator() G1 { return G1{X: big.NewInt(1), Y: big.NewInt(2)} }

func (p G1) IsInfinity() bool {
	return p.X.Sign() == 0 && p.Y.Sign() == 0
}

func (p G1) Clone() G1 { return NewG1(p.X, p.Y) }

func (p G1) Equal(q G1) bool {
	return p.X.Cmp(q.X) == 0 && p.Y.Cmp(q.Y) == 0
}

func (p G1) String() string {
	if p.X == nil || p.Y == nil {
		return "G1(nil)"
	}
	return fmt.Sprintf("G1(%s, %s)", p.X, p.Y)
}

// Validate rejects nil coordinates, coordinates >= p and points that do not
// satisfy y² = x³ + 3. The identity is valid. G1 has cofactor 1, so being on
// the curve is enough for subgroup membership.
func (p G1) Validate() error {
	if err := checkCoordinate(p.X); err != nil {
		return err
	}
	if err := checkCoordinate(p.Y); err != nil {
		return err
	}
	if p.IsInfinity() {
		return nil
	}
	lhs := mod(new(big.Int).Mul(p.Y, p.Y))
	rhs := new(big.Int).Mul(p.X, p.X)
	rhs.Mul(rhs, p.X)
	rhs.Add(rhs, b)
	if lhs.Cmp(mod(rhs)) != 0 {
		return ErrNotOnCurve
	}
	return nil
}

// Neg returns (x, p - (y mod p)). The identity negates to itself.
func Neg(a G1) G1 {
	if a.IsInfinity() {
		return G1Infinity()
	}
	y := mod(new(big.Int).Set(a.Y))
	if y.Sign() != 0 {
		y.Sub(baseModulus, y)
	}
	return G1{X: new(big.Int).Set(a.X), Y: y}
}

// Add returns a + b.
func Add(a, b G1) G1 {
	switch {
	case a.IsInfinity():
		return b.Clone()
	case b.IsInfinity():
		return a.Clone()
	}
	if a.X.Cmp(b.X) == 0 {
		if a.Y.Cmp(b.Y) == 0 {
			return Double(a)
		}
		// b = -a
		return G1Infinity()
	}

	num := mod(new(big.Int).Sub(b.Y, a.Y))
	den := mod(new(big.Int).Sub(b.X, a.X))
	lambda := mod(num.Mul(num, den.ModInverse(den, baseModulus)))

	return chord(a, b.X, lambda)
}

// Double returns 2a. A point with y == 0 doubles to the identity.
func Double(a G1) G1 {
	if a.IsInfinity() || a.Y.Sign() == 0 {
		return G1Infinity()
	}

	// λ = 3x² / 2y
	num := mod(new(big.Int).Mul(a.X, a.X))
	num.Mul(num, big.NewInt(3))
	den := new(big.Int).Lsh(a.Y, 1)
	mod(den)
	lambda := mod(num.Mul(num, den.ModInverse(den, baseModulus)))

	return chord(a, a.X, lambda)
}

// chord finishes the affine addition law once λ is known:
// x3 = λ² - x1 - x2, y3 = λ(x1 - x3) - y1.
func chord(a G1, x2, lambda *big.Int) G1 {
	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, a.X)
	x3.Sub(x3, x2)
	mod(x3)

	y3 := new(big.Int).Sub(a.X, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, a.Y)
	mod(y3)

	return G1{X: x3, Y: y3}
}

// ScalarMul returns k·a by left-to-right double-and-add over the bits of k.
// Negative scalars multiply the negated point.
func ScalarMul(a G1, k *big.Int) G1 {
	if k.Sign() < 0 {
		return ScalarMul(Neg(a), new(big.Int).Neg(k))
	}
	acc := G1Infinity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		acc = Double(acc)
		if k.Bit(i) == 1 {
			acc = Add(acc, a)
		}
	}
	return acc
}
