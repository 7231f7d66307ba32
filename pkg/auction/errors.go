package auction

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies why an operation was refused.
type Kind int

const (
	KindUnknown Kind = iota
	KindPhase
	KindAuthorization
	KindIntegrity
	KindResource
	KindTransfer
	KindReentrancy
)

func (k Kind) String() string {
	switch k {
	case KindPhase:
		return "phase"
	case KindAuthorization:
		return "authorization"
	case KindIntegrity:
		return "integrity"
	case KindResource:
		return "resource"
	case KindTransfer:
		return "transfer"
	case KindReentrancy:
		return "reentrancy"
	}
	return "unknown"
}

// Phase violations.
var (
	ErrDestroyed            = errors.New("auction is destroyed")
	ErrBiddingClosed        = errors.New("bidding is closed")
	ErrBiddingOpen          = errors.New("bidding is still open")
	ErrRevealNotOpen        = errors.New("auction not yet open for reveal")
	ErrRevealClosed         = errors.New("reveal window is closed")
	ErrAlreadyResolved      = errors.New("auction already resolved")
	ErrProofDeadlinePassed  = errors.New("proof deadline has passed")
	ErrFeeWithdrawalNotOpen = errors.New("fees are locked until resolution or the proof deadline")
	ErrNotVerified          = errors.New("auction is not in the verified phase")
	ErrNotFinished          = errors.New("auction is not finished")
	ErrWithdrawalNotOpen    = errors.New("emergency withdrawal is not open yet")
	ErrHeightUnavailable    = errors.New("height source failed")
)

// Authorization violations.
var (
	ErrNotResolver = errors.New("caller is not the resolver")
	ErrNotWinner   = errors.New("caller is not the winner")
	ErrWinnerFee   = errors.New("the winner cannot withdraw a fee")
)

// Integrity violations.
var (
	ErrInvalidProof       = errors.New("proof does not verify")
	ErrMalformedProof     = errors.New("proof or inputs are malformed")
	ErrInputLayout        = errors.New("bidder set does not match the verifying key")
	ErrCommitmentMismatch = errors.New("opening does not match the commitment")
	ErrZeroCommitment     = errors.New("commitment is zero")
	ErrZeroCipher         = errors.New("cipher is zero")
)

// Resource violations.
var (
	ErrDuplicateBidder   = errors.New("bidder already committed")
	ErrBidderCap         = errors.New("bidder limit reached")
	ErrWrongFee          = errors.New("payment does not equal the fee")
	ErrUnknownBidder     = errors.New("unknown bidder")
	ErrAlreadyRevealed   = errors.New("cipher already revealed")
	ErrZeroBid           = errors.New("winning bid is zero")
	ErrBidExceedsBudget  = errors.New("winning bid exceeds the budget")
	ErrAlreadyPaid       = errors.New("fee already paid back")
	ErrFeePoolExhausted  = errors.New("fee pool cannot cover the fee")
	ErrRefundClaimed     = errors.New("budget refund already claimed")
	ErrNothingToRefund   = errors.New("nothing to refund")
	ErrNothingToWithdraw = errors.New("nothing to withdraw")
	ErrEscrowExhausted   = errors.New("budget escrow cannot cover the winning bid")
)

var (
	ErrTransferFailed = errors.New("transfer failed")
	ErrReentrant      = errors.New("reentrant call")
)

var kinds = map[error]Kind{
	ErrDestroyed:            KindPhase,
	ErrBiddingClosed:        KindPhase,
	ErrBiddingOpen:          KindPhase,
	ErrRevealNotOpen:        KindPhase,
	ErrRevealClosed:         KindPhase,
	ErrAlreadyResolved:      KindPhase,
	ErrProofDeadlinePassed:  KindPhase,
	ErrFeeWithdrawalNotOpen: KindPhase,
	ErrNotVerified:          KindPhase,
	ErrNotFinished:          KindPhase,
	ErrWithdrawalNotOpen:    KindPhase,
	ErrHeightUnavailable:    KindPhase,

	ErrNotResolver: KindAuthorization,
	ErrNotWinner:   KindAuthorization,
	ErrWinnerFee:   KindAuthorization,

	ErrInvalidProof:       KindIntegrity,
	ErrMalformedProof:     KindIntegrity,
	ErrInputLayout:        KindIntegrity,
	ErrCommitmentMismatch: KindIntegrity,
	ErrZeroCommitment:     KindIntegrity,
	ErrZeroCipher:         KindIntegrity,

	ErrDuplicateBidder:   KindResource,
	ErrBidderCap:         KindResource,
	ErrWrongFee:          KindResource,
	ErrUnknownBidder:     KindResource,
	ErrAlreadyRevealed:   KindResource,
	ErrZeroBid:           KindResource,
	ErrBidExceedsBudget:  KindResource,
	ErrAlreadyPaid:       KindResource,
	ErrFeePoolExhausted:  KindResource,
	ErrRefundClaimed:     KindResource,
	ErrNothingToRefund:   KindResource,
	ErrNothingToWithdraw: KindResource,
	ErrEscrowExhausted:   KindResource,

	ErrTransferFailed: KindTransfer,
	ErrReentrant:      KindReentrancy,
}

// Error is returned by every refused operation. Err matches one of the
// package sentinels under errors.Is.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("auction: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of an auction error, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func fail(op string, sentinel error) error {
	return &Error{Op: op, Kind: kinds[sentinel], Err: sentinel}
}

// failWith keeps cause in the chain next to sentinel.
func failWith(op string, sentinel, cause error) error {
	return &Error{Op: op, Kind: kinds[sentinel], Err: fmt.Errorf("%w: %w", sentinel, cause)}
}
