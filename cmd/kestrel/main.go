// Command kestrel hosts the two external, non-core consumers of the
// order book: an interactive shell and a pseudorandom benchmark
// harness. Both link the engine in-process; neither speaks a wire
// protocol.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:   "kestrel",
		Short: "Single-symbol limit order book engine",
	}

	root.AddCommand(newShellCmd())
	root.AddCommand(newBenchCmd())

	if err := root.Execute(); err != nil {
		log.Fatal().Err(err).Msg("kestrel exited with error")
	}
}
