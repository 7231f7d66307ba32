package witness

import (
	"github.com/consensys/gnark/std/math/uints"

	"github.com/yourorg/zkauction/circuits"
	"github.com/yourorg/zkauction/pkg/commitment"
)

// BuildOpening assigns the opening circuit for o under a public ceiling and
// returns the Keccak-256 commitment it proves against.
func BuildOpening(o Opening, ceiling uint64) (*circuits.OpeningCircuit, commitment.Commitment, error) {
	pre, err := commitment.Preimage(o.Bid, o.Salt)
	if err != nil {
		return nil, commitment.Commitment{}, err
	}
	c, err := commitment.Keccak256{}.Sum(pre)
	if err != nil {
		return nil, commitment.Commitment{}, err
	}

	a := &circuits.OpeningCircuit{Commitment: words(c), Ceiling: ceiling}
	for i, b := range pre {
		a.Preimage[i] = uints.NewU8(b)
	}
	return a, c, nil
}
