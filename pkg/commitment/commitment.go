// Package commitment defines the 8-word bid commitment, the pluggable hash
// that produces it, and the packing of commitments into Groth16 public inputs.
package commitment

import (
	"encoding/binary"
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

// Words is the number of 32-bit words in a commitment.
const Words = 8

// Word is one big-endian 32-bit limb of a digest.
type Word = uint32

// Commitment is a 32-byte digest split into eight big-endian words, word 0
// holding the most significant bytes.
type Commitment [Words]Word

var ErrDigestLength = errors.New("commitment: digest must be 32 bytes")

// FromDigest splits a 32-byte digest into words.
func FromDigest(b []byte) (Commitment, error) {
	var c Commitment
	if len(b) != 4*Words {
		return c, ErrDigestLength
	}
	for i := range c {
		c[i] = binary.BigEndian.Uint32(b[4*i:])
	}
	return c, nil
}

// Bytes joins the words back into the digest.
func (c Commitment) Bytes() [32]byte {
	var out [32]byte
	for i, w := range c {
		binary.BigEndian.PutUint32(out[4*i:], w)
	}
	return out
}

func (c Commitment) IsZero() bool { return c == Commitment{} }

func (c Commitment) String() string {
	b := c.Bytes()
	return "0x" + hex.EncodeToString(b[:])
}

// ParseHex decodes a 0x-prefixed 32-byte hex digest.
func ParseHex(s string) (Commitment, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return Commitment{}, errors.Wrap(err, "commitment: bad hex")
	}
	return FromDigest(raw)
}

func (c Commitment) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Commitment) UnmarshalText(text []byte) error {
	v, err := ParseHex(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Fields returns the words as field elements, in order.
func (c Commitment) Fields() []*big.Int {
	out := make([]*big.Int, Words)
	for i, w := range c {
		out[i] = new(big.Int).SetUint64(uint64(w))
	}
	return out
}

// PublicInputs packs the public-input vector a minimum-commitment proof is
// bound to: every bidder's words in bidder order, then the claimed winner's
// words. The result has 8·len(commitments) + 8 entries.
func PublicInputs(commitments []Commitment, winner Commitment) []*big.Int {
	out := make([]*big.Int, 0, Words*(len(commitments)+1))
	for _, c := range commitments {
		out = append(out, c.Fields()...)
	}
	return append(out, winner.Fields()...)
}

// BiddersFor returns how many bidders a key with nPublic inputs was built for,
// or false if nPublic does not have the 8·N + 8 shape with N >= 1.
func BiddersFor(nPublic int) (int, bool) {
	if nPublic < 2*Words || nPublic%Words != 0 {
		return 0, false
	}
	return nPublic/Words - 1, true
}
