package auction

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/zkauction/pkg/commitment"
	"github.com/yourorg/zkauction/pkg/verifier"
)

// SubmitCommitment registers id with commitment c. payment is the value
// attached to the call and must equal the fee.
func (a *Auction) SubmitCommitment(ctx context.Context, id common.Address, c commitment.Commitment, payment uint64) error {
	const op = "submit commitment"
	exit, err := a.enter(op)
	if err != nil {
		return err
	}
	defer exit()

	if a.destroyed {
		return fail(op, ErrDestroyed)
	}
	h, err := a.height(ctx, op)
	if err != nil {
		return err
	}
	switch {
	case h >= a.schedule.BiddingEnd:
		return fail(op, ErrBiddingClosed)
	case len(a.order) >= a.cfg.MaxBidders:
		return fail(op, ErrBidderCap)
	case payment != a.cfg.Fee:
		return fail(op, ErrWrongFee)
	case a.bidders[id] != nil:
		return fail(op, ErrDuplicateBidder)
	case c.IsZero():
		return fail(op, ErrZeroCommitment)
	}

	a.bidders[id] = &bidder{commitment: c}
	a.order = append(a.order, id)
	a.feePool += a.cfg.Fee

	a.log.Info().
		Str("bidder", id.Hex()).
		Str("commitment", c.String()).
		Int("count", len(a.order)).
		Msg("commitment submitted")
	return nil
}

// RevealCipher records the cipher of an existing bidder. Each bidder
// reveals at most once.
func (a *Auction) RevealCipher(ctx context.Context, id common.Address, cipher common.Hash) error {
	const op = "reveal cipher"
	exit, err := a.enter(op)
	if err != nil {
		return err
	}
	defer exit()

	if a.destroyed {
		return fail(op, ErrDestroyed)
	}
	h, err := a.height(ctx, op)
	if err != nil {
		return err
	}
	if h <= a.schedule.BiddingEnd {
		return fail(op, ErrRevealNotOpen)
	}
	if h >= a.schedule.RevealEnd {
		return fail(op, ErrRevealClosed)
	}
	b := a.bidders[id]
	switch {
	case b == nil:
		return fail(op, ErrUnknownBidder)
	case cipher == (common.Hash{}):
		return fail(op, ErrZeroCipher)
	case b.revealed:
		return fail(op, ErrAlreadyRevealed)
	}

	b.cipher = cipher
	b.revealed = true

	a.log.Info().Str("bidder", id.Hex()).Msg("cipher revealed")
	return nil
}

// Resolve accepts winner with bid if proof shows that the winner's
// commitment is the minimum of all commitments. A rejected proof changes
// nothing, so Resolve may be retried until it succeeds once.
func (a *Auction) Resolve(ctx context.Context, caller, winner common.Address, bid uint64, proof *verifier.Proof) error {
	const op = "resolve"
	exit, err := a.enter(op)
	if err != nil {
		return err
	}
	defer exit()

	if a.destroyed {
		return fail(op, ErrDestroyed)
	}
	if err := a.checkResolver(op, caller); err != nil {
		return err
	}
	if a.phase != Init {
		return fail(op, ErrAlreadyResolved)
	}
	h, err := a.height(ctx, op)
	if err != nil {
		return err
	}
	if h <= a.schedule.BiddingEnd {
		return fail(op, ErrBiddingOpen)
	}
	if h > a.schedule.ProofDeadlineEnd {
		return fail(op, ErrProofDeadlinePassed)
	}
	w := a.bidders[winner]
	switch {
	case w == nil:
		return fail(op, ErrUnknownBidder)
	case bid == 0:
		return fail(op, ErrZeroBid)
	case bid > a.budget:
		return fail(op, ErrBidExceedsBudget)
	}

	inputs := commitment.PublicInputs(a.commitmentsLocked(), w.commitment)
	if len(inputs) != a.key.NumPublic() {
		return fail(op, ErrInputLayout)
	}
	ok, err := a.verifier.Verify(a.key, proof, inputs)
	if err != nil {
		a.log.Warn().Err(err).Str("winner", winner.Hex()).Msg("malformed proof rejected")
		return failWith(op, ErrMalformedProof, err)
	}
	if !ok {
		a.log.Warn().Str("winner", winner.Hex()).Msg("invalid proof rejected")
		return fail(op, ErrInvalidProof)
	}

	a.phase = Verified
	a.proofVerified = true
	a.winner = winner
	a.winningBid = bid
	a.winningCommit = w.commitment

	a.log.Info().
		Str("winner", winner.Hex()).
		Uint64("bid", bid).
		Str("commitment", w.commitment.String()).
		Msg("auction resolved")
	return nil
}

// WithdrawFee pays the fee back to a losing bidder once the auction is
// resolved or the proof deadline has passed.
func (a *Auction) WithdrawFee(ctx context.Context, id common.Address) error {
	const op = "withdraw fee"
	exit, err := a.enter(op)
	if err != nil {
		return err
	}
	defer exit()

	if a.destroyed {
		return fail(op, ErrDestroyed)
	}
	b := a.bidders[id]
	if b == nil {
		return fail(op, ErrUnknownBidder)
	}
	if a.phase == Init {
		h, err := a.height(ctx, op)
		if err != nil {
			return err
		}
		if h <= a.schedule.ProofDeadlineEnd {
			return fail(op, ErrFeeWithdrawalNotOpen)
		}
	}
	switch {
	case a.proofVerified && id == a.winner:
		return fail(op, ErrWinnerFee)
	case b.paidBack:
		return fail(op, ErrAlreadyPaid)
	case a.feePool < a.cfg.Fee:
		return fail(op, ErrFeePoolExhausted)
	}

	fee := a.cfg.Fee
	b.paidBack = true
	a.feePool -= fee
	if err := a.transfer(ctx, id, fee); err != nil {
		b.paidBack = false
		a.feePool += fee
		a.log.Warn().Err(err).Str("bidder", id.Hex()).Msg("fee transfer failed")
		return failWith(op, ErrTransferFailed, err)
	}

	a.log.Info().Str("bidder", id.Hex()).Uint64("amount", fee).Msg("fee withdrawn")
	return nil
}

// ClaimWinnerPayment pays the winning bid to the winner. If the transfer
// fails the auction stays Verified and the claim can be retried.
func (a *Auction) ClaimWinnerPayment(ctx context.Context, caller common.Address) error {
	const op = "claim winner payment"
	exit, err := a.enter(op)
	if err != nil {
		return err
	}
	defer exit()

	if !a.proofVerified || caller != a.winner {
		return fail(op, ErrNotWinner)
	}
	if a.destroyed {
		return fail(op, ErrDestroyed)
	}
	if a.phase != Verified {
		return fail(op, ErrNotVerified)
	}
	amount := a.winningBid
	if a.budgetEscrow < amount {
		return fail(op, ErrEscrowExhausted)
	}

	a.phase = Finished
	a.budgetEscrow -= amount
	if err := a.transfer(ctx, caller, amount); err != nil {
		a.phase = Verified
		a.budgetEscrow += amount
		a.log.Warn().Err(err).Str("winner", caller.Hex()).Msg("winner payment failed")
		return failWith(op, ErrTransferFailed, err)
	}

	a.log.Info().Str("winner", caller.Hex()).Uint64("amount", amount).Msg("winner paid")
	return nil
}

// ClaimBudgetRefund returns the unspent budget to the resolver.
func (a *Auction) ClaimBudgetRefund(ctx context.Context, caller common.Address) error {
	const op = "claim budget refund"
	exit, err := a.enter(op)
	if err != nil {
		return err
	}
	defer exit()

	if a.destroyed {
		return fail(op, ErrDestroyed)
	}
	if err := a.checkResolver(op, caller); err != nil {
		return err
	}
	if a.phase != Finished {
		return fail(op, ErrNotFinished)
	}
	if a.refunded {
		return fail(op, ErrRefundClaimed)
	}
	amount := a.budget - a.winningBid
	if amount == 0 || amount > a.budgetEscrow {
		return fail(op, ErrNothingToRefund)
	}

	a.refunded = true
	a.budgetEscrow -= amount
	if err := a.transfer(ctx, caller, amount); err != nil {
		a.refunded = false
		a.budgetEscrow += amount
		a.log.Warn().Err(err).Msg("budget refund failed")
		return failWith(op, ErrTransferFailed, err)
	}

	a.log.Info().Uint64("amount", amount).Msg("budget refunded")
	return nil
}

// EmergencyWithdraw sweeps the budget escrow and the fee pool back to the
// resolver once the withdrawal window has ended.
func (a *Auction) EmergencyWithdraw(ctx context.Context, caller common.Address) error {
	const op = "emergency withdraw"
	exit, err := a.enter(op)
	if err != nil {
		return err
	}
	defer exit()

	if a.destroyed {
		return fail(op, ErrDestroyed)
	}
	if err := a.checkResolver(op, caller); err != nil {
		return err
	}
	h, err := a.height(ctx, op)
	if err != nil {
		return err
	}
	if h <= a.schedule.WithdrawalEnd {
		return fail(op, ErrWithdrawalNotOpen)
	}
	escrow, fees := a.budgetEscrow, a.feePool
	if escrow+fees == 0 {
		return fail(op, ErrNothingToWithdraw)
	}

	a.budgetEscrow, a.feePool = 0, 0
	if err := a.transfer(ctx, caller, escrow+fees); err != nil {
		a.budgetEscrow, a.feePool = escrow, fees
		a.log.Warn().Err(err).Msg("emergency withdrawal failed")
		return failWith(op, ErrTransferFailed, err)
	}

	a.log.Info().Uint64("escrow", escrow).Uint64("fees", fees).Msg("emergency withdrawal")
	return nil
}

// Destroy sweeps whatever the auction still holds to the resolver and
// marks it destroyed. Every later mutation fails with ErrDestroyed.
func (a *Auction) Destroy(ctx context.Context, caller common.Address) error {
	const op = "destroy"
	exit, err := a.enter(op)
	if err != nil {
		return err
	}
	defer exit()

	if a.destroyed {
		return fail(op, ErrDestroyed)
	}
	if err := a.checkResolver(op, caller); err != nil {
		return err
	}
	if a.phase != Finished {
		return fail(op, ErrNotFinished)
	}

	escrow, fees := a.budgetEscrow, a.feePool
	a.budgetEscrow, a.feePool = 0, 0
	a.destroyed = true
	if escrow+fees > 0 {
		if err := a.transfer(ctx, caller, escrow+fees); err != nil {
			a.budgetEscrow, a.feePool = escrow, fees
			a.destroyed = false
			a.log.Warn().Err(err).Msg("destroy sweep failed")
			return failWith(op, ErrTransferFailed, err)
		}
	}

	a.log.Info().Uint64("swept", escrow+fees).Msg("auction destroyed")
	return nil
}

// VerifyOpening checks that preimage hashes to id's commitment under the
// auction's hasher.
func (a *Auction) VerifyOpening(id common.Address, preimage []byte) error {
	const op = "verify opening"
	a.mu.Lock()
	b := a.bidders[id]
	hasher := a.hasher
	a.mu.Unlock()

	if b == nil {
		return fail(op, ErrUnknownBidder)
	}
	got, err := hasher.Sum(preimage)
	if err != nil {
		return failWith(op, ErrCommitmentMismatch, err)
	}
	if got != b.commitment {
		return fail(op, ErrCommitmentMismatch)
	}
	return nil
}
