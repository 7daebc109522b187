// Package cli implements the dialspace command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagServer string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "dialspace",
		Short: "Real-time room-based chat relay",
	}

	root.PersistentFlags().StringVarP(&flagServer, "server", "s", envOrDefault("DS_SERVER", "http://localhost:8080"), "server URL")

	root.AddCommand(
		newServeCmd(),
		newRoomsCmd(),
		newVersionCmd(),
	)

	return root
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
