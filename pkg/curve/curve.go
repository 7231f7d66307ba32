// Package curve holds the BN254 (alt_bn128) arithmetic used by the Groth16
// verifier: both field moduli, affine G1 arithmetic over math/big, G2 point
// validation, and conversions into the gnark-crypto and go-ethereum pairing
// backends.
//
// The identity of both groups is the all-zero coordinate tuple. Every group
// operation treats it as an ordinary value.
package curve

import (
	"bytes"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/pkg/errors"
)

// b is the constant of y² = x³ + b for G1.
var b = big.NewInt(3)

var (
	baseModulus   = fp.Modulus()
	scalarModulus = fr.Modulus()
)

var (
	ErrNilCoordinate   = errors.New("curve: nil coordinate")
	ErrCoordinateRange = errors.New("curve: coordinate exceeds base field modulus")
	ErrNotOnCurve      = errors.New("curve: point is not on the curve")
	ErrNotInSubgroup   = errors.New("curve: point is not in the prime order subgroup")
)

// BaseModulus returns p, the modulus of the field point coordinates live in.
func BaseModulus() *big.Int { return new(big.Int).Set(baseModulus) }

// ScalarModulus returns r, the group order. Public inputs must be below it.
func ScalarModulus() *big.Int { return new(big.Int).Set(scalarModulus) }

// InScalarField reports whether 0 <= v < r.
func InScalarField(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(scalarModulus) < 0
}

// InBaseField reports whether 0 <= v < p.
func InBaseField(v *big.Int) bool {
	return v != nil && v.Sign() >= 0 && v.Cmp(baseModulus) < 0
}

// ParseScalar parses a decimal or 0x-prefixed hexadecimal integer.
func ParseScalar(s string) (*big.Int, error) {
	base := 10
	if bytes.HasPrefix([]byte(s), []byte("0x")) {
		base = 16
		s = strings.TrimPrefix(s, "0x")
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, errors.Errorf("curve: can not parse %q as integer", s)
	}
	return n, nil
}

func mod(v *big.Int) *big.Int { return v.Mod(v, baseModulus) }

func checkCoordinate(v *big.Int) error {
	if v == nil {
		return ErrNilCoordinate
	}
	if !InBaseField(v) {
		return ErrCoordinateRange
	}
	return nil
}

// word32 returns v as a 32 byte big-endian slice. v must be in the base field.
func word32(v *big.Int) []byte {
	return v.FillBytes(make([]byte, 32))
}
