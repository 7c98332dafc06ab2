package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/saiputravu/kestrel/internal/book"
	"github.com/saiputravu/kestrel/internal/shell"
)

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive order book session",
		RunE: func(cmd *cobra.Command, args []string) error {
			sh := shell.New(book.NewOrderBook(), os.Stdin, os.Stdout)
			return sh.Run()
		},
	}
}
