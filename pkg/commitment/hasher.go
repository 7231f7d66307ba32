package commitment

import (
	"crypto/sha256"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Hasher maps an arbitrary preimage to a commitment. Prover and verifier must
// agree on the hasher; the auction only compares its outputs.
type Hasher interface {
	Sum(data []byte) (Commitment, error)
}

// Keccak256 is legacy Keccak-256, the EVM hash.
type Keccak256 struct{}

func (Keccak256) Sum(data []byte) (Commitment, error) {
	return FromDigest(crypto.Keccak256(data))
}

// SHA256 is FIPS 180-4 SHA-256.
type SHA256 struct{}

func (SHA256) Sum(data []byte) (Commitment, error) {
	d := sha256.Sum256(data)
	return FromDigest(d[:])
}

var ErrNotFieldBlocks = errors.New("commitment: mimc input must be 32-byte blocks below the scalar modulus")

// MiMC is MiMC over the BN254 scalar field in Miyaguchi-Preneel mode, the
// hash the minimum-commitment circuit recomputes. Input is consumed as
// 32-byte big-endian field elements.
type MiMC struct{}

func (MiMC) Sum(data []byte) (Commitment, error) {
	if len(data) == 0 || len(data)%fr.Bytes != 0 {
		return Commitment{}, ErrNotFieldBlocks
	}
	h := mimc.NewMiMC()
	if _, err := h.Write(data); err != nil {
		return Commitment{}, errors.Wrap(ErrNotFieldBlocks, err.Error())
	}
	return FromDigest(h.Sum(nil))
}

// HasherByName resolves "keccak256" (the default for ""), "sha256" or "mimc".
func HasherByName(name string) (Hasher, error) {
	switch name {
	case "", "keccak256":
		return Keccak256{}, nil
	case "sha256":
		return SHA256{}, nil
	case "mimc":
		return MiMC{}, nil
	}
	return nil, errors.Errorf("commitment: unknown hasher %q", name)
}

var ErrSaltRange = errors.New("commitment: salt must be a non-negative 256-bit integer")

// Preimage lays out pad32(bid) || pad32(salt), the encoding every hasher
// commits to.
func Preimage(bid uint64, salt *big.Int) ([]byte, error) {
	if salt == nil || salt.Sign() < 0 || salt.BitLen() > 256 {
		return nil, ErrSaltRange
	}
	buf := make([]byte, 64)
	new(big.Int).SetUint64(bid).FillBytes(buf[:32])
	salt.FillBytes(buf[32:])
	return buf, nil
}

// Seal commits to (bid, salt) with h.
func Seal(h Hasher, bid uint64, salt *big.Int) (Commitment, error) {
	pre, err := Preimage(bid, salt)
	if err != nil {
		return Commitment{}, err
	}
	return h.Sum(pre)
}
