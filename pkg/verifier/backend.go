package verifier

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	bn256 "github.com/ethereum/go-ethereum/crypto/bn256/cloudflare"
	"github.com/pkg/errors"

	"github.com/yourorg/zkauction/pkg/curve"
)

// Backend evaluates multi-pairing products. It returns true iff
// Π e(g1[i], g2[i]) is the identity of the target group.
type Backend interface {
	PairingCheck(g1 []curve.G1, g2 []curve.G2) (bool, error)
}

var errPairLength = errors.New("verifier: mismatched G1/G2 point counts")

// GnarkBackend pairs with gnark-crypto.
type GnarkBackend struct{}

func (GnarkBackend) PairingCheck(g1 []curve.G1, g2 []curve.G2) (bool, error) {
	if len(g1) != len(g2) {
		return false, errPairLength
	}
	P := make([]bn254.G1Affine, len(g1))
	Q := make([]bn254.G2Affine, len(g2))
	for i := range g1 {
		P[i] = g1[i].Gnark()
		Q[i] = g2[i].Gnark()
	}
	return bn254.PairingCheck(P, Q)
}

func (GnarkBackend) String() string { return "gnark" }

// GethBackend pairs with go-ethereum's cloudflare bn256, the implementation
// behind the 0x08 precompile.
type GethBackend struct{}

func (GethBackend) PairingCheck(g1 []curve.G1, g2 []curve.G2) (bool, error) {
	if len(g1) != len(g2) {
		return false, errPairLength
	}
	a := make([]*bn256.G1, len(g1))
	b := make([]*bn256.G2, len(g2))
	for i := range g1 {
		p, err := g1[i].Geth()
		if err != nil {
			return false, &PointError{Point: fmt.Sprintf("g1[%d]", i), Err: err}
		}
		q, err := g2[i].Geth()
		if err != nil {
			return false, &PointError{Point: fmt.Sprintf("g2[%d]", i), Err: err}
		}
		a[i], b[i] = p, q
	}
	return bn256.PairingCheck(a, b), nil
}

func (GethBackend) String() string { return "geth" }

// BackendByName resolves "gnark" (the default for "") or "geth".
func BackendByName(name string) (Backend, error) {
	switch name {
	case "", "gnark":
		return GnarkBackend{}, nil
	case "geth":
		return GethBackend{}, nil
	default:
		return nil, errors.Errorf("verifier: unknown pairing backend %q", name)
	}
}
