// Package prover compiles the minimum-commitment circuit, runs or loads the
// Groth16 setup, and produces proofs in the verifier's format. It is the
// off-chain half of the protocol; the auction only ever consumes its output.
package prover

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/yourorg/zkauction/circuits"
	"github.com/yourorg/zkauction/pkg/verifier"
	"github.com/yourorg/zkauction/pkg/witness"
)

// Keys bundles a compiled circuit with its proving and verifying keys.
type Keys struct {
	Bidders int
	CCS     constraint.ConstraintSystem
	PK      groth16.ProvingKey
	VK      groth16.VerifyingKey
}

// Result is a proof together with the inputs it is bound to.
type Result struct {
	Proof  *verifier.Proof
	Public witness.PublicInputs
	Native groth16.Proof
	Winner int
}

// Compile builds the constraint system for n bidders.
func Compile(n int) (constraint.ConstraintSystem, error) {
	if n <= 0 {
		return nil, fmt.Errorf("bidder count must be positive, got %d", n)
	}
	return frontend.Compile(
		circuits.Curve().ScalarField(),
		r1cs.NewBuilder,
		circuits.NewMinCommitment(n),
	)
}

// Setup compiles the circuit and runs a fresh, unsafe single-party setup.
func Setup(n int) (*Keys, error) {
	cs, err := Compile(n)
	if err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, err
	}
	return &Keys{Bidders: n, CCS: cs, PK: pk, VK: vk}, nil
}

// KeyPaths returns the proving, binary verifying and JSON verifying key
// paths for an n-bidder circuit under dir.
func KeyPaths(dir string, n int) (pkPath, vkPath, vkJSONPath string) {
	base := filepath.Join(dir, fmt.Sprintf("min_commitment_%d", n))
	return base + "_pk.bin", base + "_vk.bin", base + "_vk.json"
}

// SetupOrLoad reuses keys cached under dir, or runs Setup and caches them.
// The JSON verifying key is always (re)written next to the binary one.
func SetupOrLoad(n int, dir string) (*Keys, error) {
	cs, err := Compile(n)
	if err != nil {
		return nil, err
	}
	pkPath, vkPath, vkJSONPath := KeyPaths(dir, n)

	keys := &Keys{Bidders: n, CCS: cs}
	if pk, vk, err := load(pkPath, vkPath); err == nil {
		keys.PK, keys.VK = pk, vk
	} else {
		if keys.PK, keys.VK, err = groth16.Setup(cs); err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		if err := save(pkPath, keys.PK); err != nil {
			return nil, err
		}
		if err := save(vkPath, keys.VK); err != nil {
			return nil, err
		}
	}

	vk, err := keys.VerifyingKey()
	if err != nil {
		return nil, err
	}
	if err := verifier.WriteJSON(vkJSONPath, vk); err != nil {
		return nil, err
	}
	return keys, nil
}

// VerifyingKey converts the gnark key into the verifier's format.
func (k *Keys) VerifyingKey() (*verifier.VerifyingKey, error) {
	return verifier.FromGnarkVerifyingKey(k.VK)
}

// Prove proves that openings[winner] holds the lowest bid. It fails if the
// claim is false or the openings do not match the circuit size.
func (k *Keys) Prove(openings []witness.Opening, winner int) (*Result, error) {
	if len(openings) != k.Bidders {
		return nil, fmt.Errorf("circuit is sized for %d bidders, got %d openings", k.Bidders, len(openings))
	}
	bundle, err := witness.Build(openings, winner)
	if err != nil {
		return nil, err
	}
	native, err := groth16.Prove(k.CCS, k.PK, bundle.Full)
	if err != nil {
		return nil, fmt.Errorf("proving failed: %w", err)
	}
	proof, err := verifier.FromGnarkProof(native)
	if err != nil {
		return nil, err
	}
	return &Result{Proof: proof, Public: bundle.Public, Native: native, Winner: winner}, nil
}

// ProveMin proves the lowest bid among openings.
func (k *Keys) ProveMin(openings []witness.Opening) (*Result, error) {
	winner, err := witness.MinIndex(openings)
	if err != nil {
		return nil, err
	}
	return k.Prove(openings, winner)
}

func save(path string, v io.WriterTo) error {
	var b bytes.Buffer
	if _, err := v.WriteTo(&b); err != nil {
		return err
	}
	return os.WriteFile(path, b.Bytes(), 0o644)
}

func load(pkPath, vkPath string) (groth16.ProvingKey, groth16.VerifyingKey, error) {
	pkBytes, err := os.ReadFile(pkPath)
	if err != nil {
		return nil, nil, err
	}
	vkBytes, err := os.ReadFile(vkPath)
	if err != nil {
		return nil, nil, err
	}
	pk := groth16.NewProvingKey(circuits.Curve())
	if _, err := pk.ReadFrom(bytes.NewReader(pkBytes)); err != nil {
		return nil, nil, err
	}
	vk := groth16.NewVerifyingKey(circuits.Curve())
	if _, err := vk.ReadFrom(bytes.NewReader(vkBytes)); err != nil {
		return nil, nil, err
	}
	return pk, vk, nil
}
