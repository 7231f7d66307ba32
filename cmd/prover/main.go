package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yourorg/zkauction/internal/config"
	"github.com/yourorg/zkauction/internal/logging"
	"github.com/yourorg/zkauction/pkg/prover"
	"github.com/yourorg/zkauction/pkg/verifier"
	"github.com/yourorg/zkauction/pkg/witness"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal(err)
	}
	log, err := logging.Console(cfg.LogLevel, os.Stderr)
	if err != nil {
		fatal(err)
	}

	rootCmd := &cobra.Command{
		Use:           "prover",
		Short:         "Compile the minimum-commitment circuit and prove auction winners",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfg.KeyDir, "keys", cfg.KeyDir, "Key cache directory")
	rootCmd.AddCommand(setupCmd(cfg, &log), proveCmd(cfg, &log))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("prover failed")
	}
}

func setupCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var bidders int
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Run (or load) the Groth16 setup for a bidder count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			start := time.Now()
			keys, err := prover.SetupOrLoad(bidders, cfg.KeyDir)
			if err != nil {
				return err
			}
			pkPath, vkPath, vkJSONPath := prover.KeyPaths(cfg.KeyDir, bidders)
			log.Info().
				Int("bidders", keys.Bidders).
				Int("constraints", keys.CCS.GetNbConstraints()).
				Str("pk", pkPath).
				Str("vk", vkPath).
				Str("vkJSON", vkJSONPath).
				Dur("took", time.Since(start)).
				Msg("keys ready")
			return nil
		},
	}
	cmd.Flags().IntVar(&bidders, "bidders", 3, "Number of bidders the circuit is sized for")
	return cmd
}

func proveCmd(cfg *config.Config, log *zerolog.Logger) *cobra.Command {
	var bidsPath, outDir string
	var winner int
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Prove which opening holds the lowest bid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			openings, err := witness.LoadOpenings(bidsPath)
			if err != nil {
				return err
			}
			keys, err := prover.SetupOrLoad(len(openings), cfg.KeyDir)
			if err != nil {
				return err
			}

			start := time.Now()
			var res *prover.Result
			if winner < 0 {
				res, err = keys.ProveMin(openings)
			} else {
				res, err = keys.Prove(openings, winner)
			}
			if err != nil {
				return err
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			proofPath := filepath.Join(outDir, "proof.json")
			publicPath := filepath.Join(outDir, "public.json")
			if err := verifier.WriteJSON(proofPath, res.Proof); err != nil {
				return errors.Wrap(err, "writing proof")
			}
			if err := verifier.WriteJSON(publicPath, res.Public.Signals()); err != nil {
				return errors.Wrap(err, "writing public signals")
			}

			log.Info().
				Int("winner", res.Winner).
				Str("bidder", openings[res.Winner].Bidder.Hex()).
				Uint64("bid", openings[res.Winner].Bid).
				Str("commitment", res.Public.Winner.String()).
				Str("proof", proofPath).
				Str("public", publicPath).
				Dur("took", time.Since(start)).
				Msg("proof written")
			return nil
		},
	}
	cmd.Flags().StringVar(&bidsPath, "bids", "", "JSON file of bid openings")
	cmd.Flags().StringVar(&outDir, "out", ".", "Output directory")
	cmd.Flags().IntVar(&winner, "winner", -1, "Index of the claimed winner (default: lowest bid)")
	_ = cmd.MarkFlagRequired("bids")
	return cmd
}

func fatal(err error) {
	l := zerolog.New(os.Stderr)
	l.Fatal().Err(err).Msg("prover failed")
}
