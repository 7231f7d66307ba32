package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestFromLookup(t *testing.T) {
	c, err := FromLookup(lookupMap(map[string]string{
		KeyBiddingDuration: "7",
		KeyMaxBidders:      "3",
		KeyFee:             "250",
		KeyBackend:         "geth",
		KeyLogLevel:        "",
	}))
	require.NoError(t, err)
	require.Equal(t, uint64(7), c.Auction.BiddingDuration)
	require.Equal(t, 3, c.Auction.MaxBidders)
	require.Equal(t, uint64(250), c.Auction.Fee)
	require.Equal(t, "geth", c.Backend)
	// empty values keep the default
	require.Equal(t, "info", c.LogLevel)
	require.NoError(t, c.Validate())

	_, err = FromLookup(lookupMap(map[string]string{KeyFee: "-1"}))
	require.ErrorContains(t, err, KeyFee)
}

func TestValidate(t *testing.T) {
	c := Default()
	c.Backend = "rapidsnark"
	require.Error(t, c.Validate())

	c = Default()
	c.Budget = 0
	require.Error(t, c.Validate())

	c = Default()
	c.Auction.MaxBidders = 0
	require.Error(t, c.Validate())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"AUCTION_REVEAL_DURATION=42\nAUCTION_KEY_DIR=/tmp/keys\nAUCTION_BUDGET=9\n"), 0o644))

	// the process environment wins over the file
	t.Setenv(KeyBudget, "11")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(42), c.Auction.RevealDuration)
	require.Equal(t, "/tmp/keys", c.KeyDir)
	require.Equal(t, uint64(11), c.Budget)

	_, err = Load(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}
