package circuits

import (
	"errors"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/frontend"

	"github.com/yourorg/zkauction/internal/gadget"
	"github.com/yourorg/zkauction/pkg/commitment"
)

func Curve() ecc.ID { return ecc.BN254 }

// BidBits bounds every bid so that comparisons stay sound.
const BidBits = 64

// MinCommitmentCircuit proves that Winner opens to the lowest bid among the
// openings of Commitments. Public inputs are laid out as
// commitment.PublicInputs: every commitment's words in order, then Winner.
type MinCommitmentCircuit struct {
	Commitments [][commitment.Words]frontend.Variable `gnark:",public"`
	Winner      [commitment.Words]frontend.Variable   `gnark:",public"`

	Bids       []frontend.Variable
	Salts      []frontend.Variable
	WinnerBid  frontend.Variable
	WinnerSalt frontend.Variable
}

// NewMinCommitment returns an empty circuit sized for n bidders.
func NewMinCommitment(n int) *MinCommitmentCircuit {
	return &MinCommitmentCircuit{
		Commitments: make([][commitment.Words]frontend.Variable, n),
		Bids:        make([]frontend.Variable, n),
		Salts:       make([]frontend.Variable, n),
	}
}

func (c *MinCommitmentCircuit) Define(api frontend.API) error {
	n := len(c.Commitments)
	if n == 0 || len(c.Bids) != n || len(c.Salts) != n {
		return errors.New("circuits: commitments, bids and salts must have the same non-zero length")
	}

	api.ToBinary(c.WinnerBid, BidBits)
	winner := gadget.MiMC(api, c.WinnerBid, c.WinnerSalt)
	gadget.AssertWords(api, c.Winner, winner)

	// Π (winner - h_i) == 0 iff the winner digest is one of the commitments
	member := frontend.Variable(1)
	for i := 0; i < n; i++ {
		api.ToBinary(c.Bids[i], BidBits)
		h := gadget.MiMC(api, c.Bids[i], c.Salts[i])
		gadget.AssertWords(api, c.Commitments[i], h)

		api.AssertIsLessOrEqual(c.WinnerBid, c.Bids[i])
		member = api.Mul(member, api.Sub(winner, h))
	}
	api.AssertIsEqual(member, 0)
	return nil
}
