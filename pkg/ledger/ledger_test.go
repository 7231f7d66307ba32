package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
)

func TestTransfer(t *testing.T) {
	ctx := context.Background()
	l := New(zerolog.Nop())
	l.Mint(alice, 100)

	require.NoError(t, l.Transfer(ctx, alice, bob, 40))
	require.Equal(t, uint64(60), l.Balance(alice))
	require.Equal(t, uint64(40), l.Balance(bob))
	require.Equal(t, uint64(40), l.Sent(alice))

	err := l.Transfer(ctx, alice, bob, 61)
	require.ErrorIs(t, err, ErrInsufficientFunds)
	require.Equal(t, uint64(60), l.Balance(alice))
}

func TestReject(t *testing.T) {
	ctx := context.Background()
	l := New(zerolog.Nop())
	l.Mint(alice, 10)
	escrow := l.Escrow(alice)

	l.Reject(bob)
	require.ErrorIs(t, escrow.Transfer(ctx, bob, 5), ErrRejected)
	require.Equal(t, uint64(10), escrow.Balance())
	require.Zero(t, l.Sent(alice))

	l.Accept(bob)
	require.NoError(t, escrow.Transfer(ctx, bob, 5))
	require.Equal(t, uint64(5), l.Balance(bob))
}

func TestReceiveHookRevert(t *testing.T) {
	ctx := context.Background()
	l := New(zerolog.Nop())
	l.Mint(alice, 10)

	boom := errors.New("boom")
	var seen uint64
	l.OnReceive(bob, func(_ context.Context, from common.Address, amount uint64) error {
		require.Equal(t, alice, from)
		seen = amount
		// the value is visible while the hook runs
		require.Equal(t, uint64(7), l.Balance(bob))
		return boom
	})

	err := l.Transfer(ctx, alice, bob, 7)
	require.ErrorIs(t, err, boom)
	require.Equal(t, uint64(7), seen)
	require.Equal(t, uint64(10), l.Balance(alice))
	require.Zero(t, l.Balance(bob))
	require.Zero(t, l.Sent(alice))

	l.OnReceive(bob, nil)
	require.NoError(t, l.Transfer(ctx, alice, bob, 7))
}

func TestCallReverts(t *testing.T) {
	ctx := context.Background()
	l := New(zerolog.Nop())
	l.Mint(alice, 10)

	err := l.Call(ctx, alice, bob, 4, func(context.Context) error {
		require.Equal(t, uint64(4), l.Balance(bob))
		return errors.New("revert")
	})
	require.Error(t, err)
	require.Equal(t, uint64(10), l.Balance(alice))
	require.Zero(t, l.Balance(bob))

	require.NoError(t, l.Call(ctx, alice, bob, 4, func(context.Context) error { return nil }))
	require.Equal(t, uint64(4), l.Balance(bob))

	err = l.Call(ctx, alice, bob, 100, func(context.Context) error {
		t.Fatal("callee must not run without funds")
		return nil
	})
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestMine(t *testing.T) {
	l := New(zerolog.Nop())
	h, err := l.Height(context.Background())
	require.NoError(t, err)
	require.Zero(t, h)
	require.Equal(t, uint64(5), l.Mine(5))
	require.Equal(t, uint64(6), l.Mine(1))
}

/* ---------------- JSON-RPC fixture ---------------- */

func serveBlockNumber(t *testing.T, result string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "eth_blockNumber", req.Method)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
}

func TestRPCHeight(t *testing.T) {
	srv := serveBlockNumber(t, "0x1586abc")
	defer srv.Close()

	src, err := DialHeight(context.Background(), srv.URL)
	require.NoError(t, err)
	defer src.Close()

	h, err := src.Height(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(0x1586abc), h)
}
