package circuits

import (
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/math/uints"

	"github.com/yourorg/zkauction/internal/gadget"
	"github.com/yourorg/zkauction/pkg/commitment"
)

// PreimageBytes is the length of pad32(bid) || pad32(salt).
const PreimageBytes = 64

// OpeningCircuit proves that a Keccak-256 commitment opens to a bid no
// larger than Ceiling without revealing the bid. Preimage is laid out as
// commitment.Preimage.
type OpeningCircuit struct {
	Commitment [commitment.Words]frontend.Variable `gnark:",public"`
	Ceiling    frontend.Variable                   `gnark:",public"`

	Preimage [PreimageBytes]uints.U8
}

func (c *OpeningCircuit) Define(api frontend.API) error {
	// bytes 0..23 pad the 64-bit bid
	for i := 0; i < 32-BidBits/8; i++ {
		api.AssertIsEqual(c.Preimage[i].Val, 0)
	}
	bid := frontend.Variable(0)
	for _, b := range c.Preimage[32-BidBits/8 : 32] {
		api.ToBinary(b.Val, 8)
		bid = api.Add(api.Mul(bid, 256), b.Val)
	}
	api.ToBinary(c.Ceiling, BidBits)
	api.AssertIsLessOrEqual(bid, c.Ceiling)

	words := gadget.Keccak256Words(api, c.Preimage[:])
	for i := range words {
		api.AssertIsEqual(words[i], c.Commitment[i])
	}
	return nil
}
