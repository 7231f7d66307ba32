// Package ledger is an in-memory value host for running auctions in tests
// and simulations. It keeps balances per address, a manual height counter
// and hooks for failing or re-entrant recipients.
package ledger

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrRejected          = errors.New("ledger: recipient rejected the transfer")
	ErrInsufficientFunds = errors.New("ledger: insufficient funds")
)

// ReceiveFunc runs after value reaches its account. A non-nil error reverts
// the transfer that triggered it.
type ReceiveFunc func(ctx context.Context, from common.Address, amount uint64) error

// Ledger implements the auction's value transfer and height collaborators.
type Ledger struct {
	mu       sync.Mutex
	height   uint64
	balances map[common.Address]uint64
	sent     map[common.Address]uint64
	rejected map[common.Address]bool
	hooks    map[common.Address]ReceiveFunc
	log      zerolog.Logger
}

func New(log zerolog.Logger) *Ledger {
	return &Ledger{
		balances: make(map[common.Address]uint64),
		sent:     make(map[common.Address]uint64),
		rejected: make(map[common.Address]bool),
		hooks:    make(map[common.Address]ReceiveFunc),
		log:      log.With().Str("component", "ledger").Logger(),
	}
}

func (l *Ledger) Mint(addr common.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[addr] += amount
}

func (l *Ledger) Balance(addr common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[addr]
}

// Sent is the total value that left addr through Transfer.
func (l *Ledger) Sent(addr common.Address) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sent[addr]
}

func (l *Ledger) Height(context.Context) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.height, nil
}

// Mine advances the height by n and returns the new height.
func (l *Ledger) Mine(n uint64) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.height += n
	return l.height
}

// Reject makes every transfer to addr fail until Accept is called.
func (l *Ledger) Reject(addr common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rejected[addr] = true
}

func (l *Ledger) Accept(addr common.Address) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.rejected, addr)
}

// OnReceive installs fn as addr's receive hook; nil removes it.
func (l *Ledger) OnReceive(addr common.Address, fn ReceiveFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if fn == nil {
		delete(l.hooks, addr)
		return
	}
	l.hooks[addr] = fn
}

// Transfer moves amount from one account to another and then runs the
// recipient's receive hook, reverting if the hook fails.
func (l *Ledger) Transfer(ctx context.Context, from, to common.Address, amount uint64) error {
	l.mu.Lock()
	if l.rejected[to] {
		l.mu.Unlock()
		return errors.Wrapf(ErrRejected, "to %s", to.Hex())
	}
	if err := l.move(from, to, amount); err != nil {
		l.mu.Unlock()
		return err
	}
	l.sent[from] += amount
	hook := l.hooks[to]
	l.mu.Unlock()

	if hook == nil {
		l.log.Debug().Str("from", from.Hex()).Str("to", to.Hex()).Uint64("amount", amount).Msg("transfer")
		return nil
	}
	if err := hook(ctx, from, amount); err != nil {
		l.mu.Lock()
		l.sent[from] -= amount
		// the hook must not have spent what it received
		revertErr := l.move(to, from, amount)
		l.mu.Unlock()
		if revertErr != nil {
			return errors.Wrap(revertErr, "ledger: reverting transfer")
		}
		return errors.Wrapf(err, "ledger: receive hook of %s", to.Hex())
	}
	return nil
}

// Call attaches value from one account to another and runs fn, which
// stands for the callee's code. If fn fails the value movement is undone.
func (l *Ledger) Call(ctx context.Context, from, to common.Address, value uint64, fn func(ctx context.Context) error) error {
	l.mu.Lock()
	err := l.move(from, to, value)
	l.mu.Unlock()
	if err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		l.mu.Lock()
		if revertErr := l.move(to, from, value); revertErr != nil {
			err = errors.Wrap(revertErr, "ledger: reverting call")
		}
		l.mu.Unlock()
		return err
	}
	return nil
}

// Escrow returns a transferer that pays out of addr's account.
func (l *Ledger) Escrow(addr common.Address) *Account {
	return &Account{ledger: l, addr: addr}
}

func (l *Ledger) move(from, to common.Address, amount uint64) error {
	if l.balances[from] < amount {
		return errors.Wrapf(ErrInsufficientFunds, "%s holds %d, needs %d", from.Hex(), l.balances[from], amount)
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}

// Account is one ledger account acting as a transfer source.
type Account struct {
	ledger *Ledger
	addr   common.Address
}

func (a *Account) Address() common.Address { return a.addr }

func (a *Account) Balance() uint64 { return a.ledger.Balance(a.addr) }

func (a *Account) Transfer(ctx context.Context, to common.Address, amount uint64) error {
	return a.ledger.Transfer(ctx, a.addr, to, amount)
}
