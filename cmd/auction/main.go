package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/yourorg/zkauction/internal/config"
	"github.com/yourorg/zkauction/internal/logging"
	"github.com/yourorg/zkauction/pkg/ledger"
	"github.com/yourorg/zkauction/pkg/witness"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:           "auction",
		Short:         "Run zk-gated sealed-bid auctions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level")
	rootCmd.AddCommand(simulateCmd(cfg), heightCmd(cfg))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func simulateCmd(cfg *config.Config) *cobra.Command {
	var bidsPath string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run a full auction over a bids file on an in-memory ledger",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			log, err := logging.Console(cfg.LogLevel, os.Stderr)
			if err != nil {
				return err
			}
			openings, err := witness.LoadOpenings(bidsPath)
			if err != nil {
				return err
			}
			rep, err := simulate(cmd.Context(), cfg, openings, log)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
	cmd.Flags().StringVar(&bidsPath, "bids", "", "JSON file of bid openings")
	cmd.Flags().StringVar(&cfg.KeyDir, "keys", cfg.KeyDir, "Key cache directory")
	cmd.Flags().StringVar(&cfg.Backend, "backend", cfg.Backend, "Pairing backend: gnark or geth")
	cmd.Flags().Uint64Var(&cfg.Budget, "budget", cfg.Budget, "Budget escrowed by the resolver")
	cmd.Flags().Uint64Var(&cfg.Auction.Fee, "fee", cfg.Auction.Fee, "Per-bidder fee")
	_ = cmd.MarkFlagRequired("bids")
	return cmd
}

func heightCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "height",
		Short: "Print the current height reported by an RPC node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.RPCURL == "" {
				return errors.Errorf("--rpc flag or %s env var is required", config.KeyRPCURL)
			}
			src, err := ledger.DialHeight(cmd.Context(), cfg.RPCURL)
			if err != nil {
				return err
			}
			defer src.Close()
			h, err := src.Height(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
	cmd.Flags().StringVar(&cfg.RPCURL, "rpc", cfg.RPCURL, "JSON-RPC endpoint")
	return cmd
}
