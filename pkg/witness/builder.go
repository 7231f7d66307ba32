// pkg/witness/builder.go
package witness

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"

	"github.com/yourorg/zkauction/circuits"
	"github.com/yourorg/zkauction/pkg/commitment"
)

// NewSalt draws a uniformly random scalar field element.
func NewSalt() (*big.Int, error) {
	return rand.Int(rand.Reader, fr.Modulus())
}

// LoadOpenings reads a JSON array of openings.
func LoadOpenings(path string) ([]Opening, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read openings: %w", err)
	}
	var out []Opening
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal openings: %w", err)
	}
	for i, o := range out {
		if o.Salt == nil {
			return nil, fmt.Errorf("opening %d has no salt", i)
		}
	}
	return out, nil
}

// MinIndex returns the index of the lowest bid. Ties go to the earliest
// opening, matching bidder insertion order.
func MinIndex(openings []Opening) (int, error) {
	if len(openings) == 0 {
		return 0, fmt.Errorf("no openings")
	}
	best := 0
	for i, o := range openings[1:] {
		if o.Bid < openings[best].Bid {
			best = i + 1
		}
	}
	return best, nil
}

// Build assigns the minimum-commitment circuit for openings, claiming
// openings[winner] as the lowest bid. The assignment is not checked here; an
// unsatisfied claim fails at proving time.
func Build(openings []Opening, winner int) (*Bundle, error) {
	n := len(openings)
	if n == 0 {
		return nil, fmt.Errorf("no openings")
	}
	if winner < 0 || winner >= n {
		return nil, fmt.Errorf("winner index %d out of range [0,%d)", winner, n)
	}

	assignment := circuits.NewMinCommitment(n)
	pub := PublicInputs{Commitments: make([]commitment.Commitment, n)}

	for i, o := range openings {
		c, err := o.Commitment()
		if err != nil {
			return nil, fmt.Errorf("opening %d: %w", i, err)
		}
		pub.Commitments[i] = c
		assignment.Commitments[i] = words(c)
		assignment.Bids[i] = o.Bid
		assignment.Salts[i] = o.Salt
	}

	pub.Winner = pub.Commitments[winner]
	assignment.Winner = words(pub.Winner)
	assignment.WinnerBid = openings[winner].Bid
	assignment.WinnerSalt = openings[winner].Salt

	full, err := frontend.NewWitness(assignment, circuits.Curve().ScalarField())
	if err != nil {
		return nil, fmt.Errorf("failed to build witness: %w", err)
	}

	return &Bundle{
		Full:      full,
		Public:    pub,
		Blueprint: circuits.NewMinCommitment(n),
		Winner:    winner,
	}, nil
}

func words(c commitment.Commitment) [commitment.Words]frontend.Variable {
	var out [commitment.Words]frontend.Variable
	for i, w := range c {
		out[i] = w
	}
	return out
}
