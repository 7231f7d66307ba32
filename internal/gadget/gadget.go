// Package gadget holds the in-circuit pieces of the commitment schemes: the
// MiMC and Keccak-256 hashes and their split into eight 32-bit words.
package gadget

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	stdhash "github.com/consensys/gnark/std/hash"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/consensys/gnark/std/hash/sha3"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/yourorg/zkauction/pkg/commitment"
)

// MiMC hashes in with the same parameters as commitment.MiMC.
func MiMC(api frontend.API, in ...frontend.Variable) frontend.Variable {
	h, err := mimc.NewMiMC(api)
	if err != nil {
		panic(err)
	}
	h.Write(in...)
	return h.Sum()
}

// AssertWords constrains words to be the big-endian 32-bit limbs of v.
// The top limb is capped at 30 bits since a BN254 scalar never reaches 2^254.
func AssertWords(api frontend.API, words [commitment.Words]frontend.Variable, v frontend.Variable) {
	acc := frontend.Variable(0)
	for i, w := range words {
		width := 32
		if i == 0 {
			width = 30
		}
		api.ToBinary(w, width)
		shift := new(big.Int).Lsh(big.NewInt(1), uint(32*(commitment.Words-1-i)))
		acc = api.Add(acc, api.Mul(w, shift))
	}
	api.AssertIsEqual(acc, v)
}

// Keccak returns a legacy Keccak-256 hasher, the one go-ethereum uses.
func Keccak(api frontend.API) stdhash.BinaryHasher {
	h, err := sha3.NewLegacyKeccak256(api)
	if err != nil {
		panic(err)
	}
	return h
}

// Keccak256Words hashes in and packs the 32-byte digest into big-endian
// 32-bit words, the same layout as commitment.FromDigest.
func Keccak256Words(api frontend.API, in []uints.U8) [commitment.Words]frontend.Variable {
	k := Keccak(api)
	k.Write(in)
	digest := k.Sum()

	var words [commitment.Words]frontend.Variable
	for i := range words {
		acc := frontend.Variable(0)
		for _, b := range digest[4*i : 4*i+4] {
			acc = api.Add(api.Mul(acc, 256), b.Val)
		}
		words[i] = acc
	}
	return words
}
