// Package verifier checks Groth16 proofs over BN254.
//
// A proof is accepted iff
//
//	e(A, B) = e(α, β) · e(vk_x, γ) · e(C, δ),  vk_x = IC[0] + Σ inputs[i]·IC[i+1]
//
// which is evaluated as a single four-pair product
// e(A, B) · e(−vk_x, γ) · e(−C, δ) · e(−α, β) == 1.
//
// Verify separates an invalid proof (false, nil) from malformed input
// (false, err): wrong input count, inputs outside the scalar field and points
// that are not group elements are errors.
package verifier

import (
	"fmt"
	"math/big"

	"github.com/pkg/errors"

	"github.com/yourorg/zkauction/pkg/curve"
)

// Verifier evaluates the Groth16 equation with a pluggable pairing backend.
// It keeps no state between calls.
type Verifier struct {
	backend Backend
}

// New returns a Verifier using b, or the gnark-crypto backend if b is nil.
func New(b Backend) *Verifier {
	if b == nil {
		b = GnarkBackend{}
	}
	return &Verifier{backend: b}
}

// Backend returns the pairing backend this verifier uses.
func (v *Verifier) Backend() Backend { return v.backend }

// Verify checks proof against vk and the public inputs, using the default
// backend.
func Verify(vk *VerifyingKey, proof *Proof, inputs []*big.Int) (bool, error) {
	return New(nil).Verify(vk, proof, inputs)
}

func (v *Verifier) Verify(vk *VerifyingKey, proof *Proof, inputs []*big.Int) (bool, error) {
	if vk == nil || proof == nil {
		return false, ErrNilProof
	}
	if len(inputs)+1 != len(vk.IC) {
		return false, errors.Wrapf(ErrInputCount, "got %d inputs, key expects %d", len(inputs), len(vk.IC)-1)
	}
	// every input is range checked before any group arithmetic
	for i, in := range inputs {
		if !curve.InScalarField(in) {
			return false, errors.Wrapf(ErrInputOutOfField, "input %d", i)
		}
	}
	if err := vk.Validate(); err != nil {
		return false, err
	}
	if err := proof.Validate(); err != nil {
		return false, err
	}

	vkX := LinearCombination(vk.IC, inputs)

	g1 := []curve.G1{proof.A, curve.Neg(vkX), curve.Neg(proof.C), curve.Neg(vk.Alpha)}
	g2 := []curve.G2{proof.B, vk.Gamma, vk.Delta, vk.Beta}

	ok, err := v.backend.PairingCheck(g1, g2)
	if err != nil {
		return false, errors.Wrap(err, "verifier: pairing check")
	}
	return ok, nil
}

// LinearCombination computes IC[0] + Σ inputs[i]·IC[i+1]. The caller ensures
// len(ic) == len(inputs)+1.
func LinearCombination(ic []curve.G1, inputs []*big.Int) curve.G1 {
	acc := ic[0].Clone()
	for i, in := range inputs {
		acc = curve.Add(acc, curve.ScalarMul(ic[i+1], in))
	}
	return acc
}

func (p *Proof) String() string {
	return fmt.Sprintf("Proof{A: %s, B: %s, C: %s}", p.A, p.B, p.C)
}
