package auction

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/zkauction/pkg/commitment"
)

// WinnerInfo describes the accepted winner.
type WinnerInfo struct {
	Address    common.Address        `json:"address"`
	Bid        uint64                `json:"bid"`
	Commitment commitment.Commitment `json:"commitment"`
}

// BidderInfo is the public view of one bidder record.
type BidderInfo struct {
	Address    common.Address        `json:"address"`
	Commitment commitment.Commitment `json:"commitment"`
	Cipher     common.Hash           `json:"cipher"`
	Revealed   bool                  `json:"revealed"`
	PaidBack   bool                  `json:"paidBack"`
}

// Snapshot is a consistent copy of the whole auction state.
type Snapshot struct {
	Config        Config         `json:"config"`
	Schedule      Schedule       `json:"schedule"`
	Resolver      common.Address `json:"resolver"`
	Budget        uint64         `json:"budget"`
	Phase         string         `json:"phase"`
	Destroyed     bool           `json:"destroyed"`
	ProofVerified bool           `json:"proofVerified"`
	Winner        *WinnerInfo    `json:"winner,omitempty"`
	FeePool       uint64         `json:"feePool"`
	BudgetEscrow  uint64         `json:"budgetEscrow"`
	Refunded      bool           `json:"refunded"`
	Bidders       []BidderInfo   `json:"bidders"`
}

func (a *Auction) commitmentsLocked() []commitment.Commitment {
	out := make([]commitment.Commitment, len(a.order))
	for i, id := range a.order {
		out[i] = a.bidders[id].commitment
	}
	return out
}

// Commitments lists every commitment in submission order.
func (a *Auction) Commitments() []commitment.Commitment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.commitmentsLocked()
}

// Ciphers lists the revealed ciphers in submission order, with the zero hash
// for bidders that have not revealed.
func (a *Auction) Ciphers() []common.Hash {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]common.Hash, len(a.order))
	for i, id := range a.order {
		out[i] = a.bidders[id].cipher
	}
	return out
}

func (a *Auction) Bidders() []common.Address {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]common.Address(nil), a.order...)
}

func (a *Auction) BidderCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.order)
}

// Winner returns the accepted winner, if any.
func (a *Auction) Winner() (WinnerInfo, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.proofVerified {
		return WinnerInfo{}, false
	}
	return a.winnerLocked(), true
}

func (a *Auction) winnerLocked() WinnerInfo {
	return WinnerInfo{Address: a.winner, Bid: a.winningBid, Commitment: a.winningCommit}
}

func (a *Auction) CommitmentOf(id common.Address) (commitment.Commitment, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.bidders[id]
	if b == nil {
		return commitment.Commitment{}, false
	}
	return b.commitment, true
}

// CipherOf returns id's cipher. ok is false for unknown or unrevealed
// bidders.
func (a *Auction) CipherOf(id common.Address) (cipher common.Hash, ok bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.bidders[id]
	if b == nil || !b.revealed {
		return common.Hash{}, false
	}
	return b.cipher, true
}

// FeePaid reports whether id's fee has been paid back.
func (a *Auction) FeePaid(id common.Address) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := a.bidders[id]
	return b != nil && b.paidBack
}

func (a *Auction) ProofVerified() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.proofVerified
}

func (a *Auction) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

func (a *Auction) Destroyed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.destroyed
}

func (a *Auction) FeePool() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.feePool
}

func (a *Auction) BudgetEscrow() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.budgetEscrow
}

// Schedule returns the absolute phase boundaries.
func (a *Auction) Schedule() Schedule { return a.schedule }

func (a *Auction) Config() Config { return a.cfg }

func (a *Auction) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	s := Snapshot{
		Config:        a.cfg,
		Schedule:      a.schedule,
		Resolver:      a.resolver,
		Budget:        a.budget,
		Phase:         a.phase.String(),
		Destroyed:     a.destroyed,
		ProofVerified: a.proofVerified,
		FeePool:       a.feePool,
		BudgetEscrow:  a.budgetEscrow,
		Refunded:      a.refunded,
		Bidders:       make([]BidderInfo, len(a.order)),
	}
	if a.proofVerified {
		w := a.winnerLocked()
		s.Winner = &w
	}
	for i, id := range a.order {
		b := a.bidders[id]
		s.Bidders[i] = BidderInfo{
			Address:    id,
			Commitment: b.commitment,
			Cipher:     b.cipher,
			Revealed:   b.revealed,
			PaidBack:   b.paidBack,
		}
	}
	return s
}
