package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/zkauction/internal/config"
	"github.com/yourorg/zkauction/pkg/witness"
)

func TestSimulate(t *testing.T) {
	openings, err := witness.LoadOpenings(filepath.Join("..", "..", "pkg", "witness", "testdata", "bids.json"))
	require.NoError(t, err)

	cfg := config.Default()
	cfg.KeyDir = t.TempDir()
	cfg.Backend = "geth"
	require.NoError(t, cfg.Validate())

	rep, err := simulate(context.Background(), cfg, openings, zerolog.Nop())
	require.NoError(t, err)

	snap := rep.Auction
	require.True(t, snap.Destroyed)
	require.Equal(t, "finished", snap.Phase)
	require.NotNil(t, snap.Winner)
	require.Equal(t, openings[1].Bidder, snap.Winner.Address)
	require.Equal(t, openings[1].Bid, snap.Winner.Bid)
	for _, b := range snap.Bidders {
		require.True(t, b.Revealed)
	}

	fee := cfg.Auction.Fee
	require.Zero(t, rep.Balances[houseAddr])
	require.Equal(t, openings[1].Bid, rep.Balances[openings[1].Bidder])
	require.Equal(t, fee, rep.Balances[openings[0].Bidder])
	require.Equal(t, fee, rep.Balances[openings[2].Bidder])
	require.Equal(t, cfg.Budget-openings[1].Bid+fee, rep.Balances[resolverAddr])
}
