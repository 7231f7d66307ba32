package verifier

import (
	"github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"
	"github.com/pkg/errors"

	"github.com/yourorg/zkauction/pkg/curve"
)

// ErrUnsupportedCommitment is returned for gnark keys and proofs that carry
// Pedersen commitments; the plain pairing equation does not cover them.
var ErrUnsupportedCommitment = errors.New("verifier: commitment extension is not supported")

// FromGnarkVerifyingKey converts a BN254 key produced by gnark's Setup.
func FromGnarkVerifyingKey(vk groth16.VerifyingKey) (*VerifyingKey, error) {
	k, ok := vk.(*groth16bn254.VerifyingKey)
	if !ok {
		return nil, errors.Errorf("verifier: expected a BN254 verifying key, got %T", vk)
	}
	if len(k.CommitmentKeys) > 0 {
		return nil, ErrUnsupportedCommitment
	}
	out := &VerifyingKey{
		Alpha: curve.G1FromGnark(&k.G1.Alpha),
		Beta:  curve.G2FromGnark(&k.G2.Beta),
		Gamma: curve.G2FromGnark(&k.G2.Gamma),
		Delta: curve.G2FromGnark(&k.G2.Delta),
		IC:    make([]curve.G1, len(k.G1.K)),
	}
	for i := range k.G1.K {
		out.IC[i] = curve.G1FromGnark(&k.G1.K[i])
	}
	return out, nil
}

// FromGnarkProof converts a BN254 proof produced by gnark's Prove.
func FromGnarkProof(p groth16.Proof) (*Proof, error) {
	pr, ok := p.(*groth16bn254.Proof)
	if !ok {
		return nil, errors.Errorf("verifier: expected a BN254 proof, got %T", p)
	}
	if len(pr.Commitments) > 0 {
		return nil, ErrUnsupportedCommitment
	}
	return &Proof{
		A: curve.G1FromGnark(&pr.Ar),
		B: curve.G2FromGnark(&pr.Bs),
		C: curve.G1FromGnark(&pr.Krs),
	}, nil
}
