package witness

import (
	"encoding/json"
	"math/big"

	backendwitness "github.com/consensys/gnark/backend/witness"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/yourorg/zkauction/circuits"
	"github.com/yourorg/zkauction/pkg/commitment"
)

// Opening is what a bidder keeps private until the proof is built.
type Opening struct {
	Bidder common.Address
	Bid    uint64
	Salt   *big.Int
}

type openingJSON struct {
	Bidder common.Address        `json:"bidder"`
	Bid    uint64                `json:"bid"`
	Salt   *math.HexOrDecimal256 `json:"salt"`
}

func (o Opening) MarshalJSON() ([]byte, error) {
	return json.Marshal(openingJSON{
		Bidder: o.Bidder,
		Bid:    o.Bid,
		Salt:   (*math.HexOrDecimal256)(o.Salt),
	})
}

func (o *Opening) UnmarshalJSON(data []byte) error {
	var in openingJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	o.Bidder, o.Bid, o.Salt = in.Bidder, in.Bid, (*big.Int)(in.Salt)
	return nil
}

// Commitment seals the opening with the hash the circuit recomputes.
func (o Opening) Commitment() (commitment.Commitment, error) {
	return commitment.Seal(commitment.MiMC{}, o.Bid, o.Salt)
}

// PublicInputs are the values the proof is bound to.
type PublicInputs struct {
	Commitments []commitment.Commitment `json:"commitments"`
	Winner      commitment.Commitment   `json:"winner"`
}

// Signals packs the public inputs in verifier order.
func (p PublicInputs) Signals() []*big.Int {
	return commitment.PublicInputs(p.Commitments, p.Winner)
}

type Bundle struct {
	Full      backendwitness.Witness
	Public    PublicInputs
	Blueprint *circuits.MinCommitmentCircuit
	Winner    int
}
