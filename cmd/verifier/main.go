package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/yourorg/zkauction/internal/config"
	"github.com/yourorg/zkauction/internal/logging"
	"github.com/yourorg/zkauction/pkg/verifier"
)

var errRejected = errors.New("proof rejected")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.Console(cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var proofPath, publicPath, vkPath string

	cmd := &cobra.Command{
		Use:           "verifier",
		Short:         "Verify a Groth16 proof against snarkjs style JSON files",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := verifier.BackendByName(cfg.Backend)
			if err != nil {
				return err
			}
			vk, err := verifier.LoadVerifyingKey(vkPath)
			if err != nil {
				return err
			}
			proof, err := verifier.LoadProof(proofPath)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(publicPath)
			if err != nil {
				return errors.Wrap(err, "reading public signals")
			}
			var signals []string
			if err := json.Unmarshal(raw, &signals); err != nil {
				return errors.Wrap(err, "decoding public signals")
			}
			inputs, err := verifier.ParseSignals(signals)
			if err != nil {
				return err
			}

			ok, err := verifier.New(backend).Verify(vk, proof, inputs)
			if err != nil {
				return errors.Wrap(err, "malformed input")
			}
			if !ok {
				return errRejected
			}
			log.Info().Str("backend", fmt.Sprint(backend)).Int("inputs", len(inputs)).Msg("proof verified")
			return nil
		},
	}

	cmd.Flags().StringVar(&proofPath, "proof", "", "proof.json")
	cmd.Flags().StringVar(&publicPath, "public", "", "public.json")
	cmd.Flags().StringVar(&vkPath, "vk", "", "verification key JSON")
	cmd.Flags().StringVar(&cfg.Backend, "backend", cfg.Backend, "Pairing backend: gnark or geth")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("public")
	_ = cmd.MarkFlagRequired("vk")

	if err := cmd.Execute(); err != nil {
		log.Error().Err(err).Msg("verification failed")
		os.Exit(1)
	}
}
