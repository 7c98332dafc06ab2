package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/saiputravu/kestrel/internal/bench"
)

func newBenchCmd() *cobra.Command {
	var configPath string
	var exportPath string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the pseudorandom order book benchmark harness",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			params, err := bench.LoadParams(configPath)
			if err != nil {
				return err
			}
			if err := params.Validate(); err != nil {
				return err
			}

			runner := bench.NewRunner(params)
			runner.ExportPath = exportPath

			log.Info().
				Int("ops", params.Ops).
				Uint64("seed", params.Seed).
				Str("export", exportPath).
				Msg("starting benchmark run")

			result, err := runner.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			fmt.Printf("run %s: ok=%d partial=%d empty=%d invalid=%d trades=%d\n",
				result.RunID, result.Counts.OK, result.Counts.Partial,
				result.Counts.Empty, result.Counts.Invalid, len(result.Trades))
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML benchmark config")
	cmd.Flags().StringVar(&exportPath, "export", "", "path to stream the trade log as CSV")
	return cmd
}
