// Chlorctl is a control utility for Astral Pool BLE chlorinators.
//
// It talks the eQuilibrium and Halo session protocols: reading water
// chemistry and system state, sending app actions, and serving live
// snapshots over HTTP/WebSocket. Device pairing records (address, variant,
// access code) are kept in a local registry so devices can be addressed by
// nickname.
//
// Usage:
//
//	chlorctl [command] [flags]
//
// Running without arguments launches the live dashboard.
// See 'chlorctl --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pbutterworth/gochlorinator/internal/logging"
	"github.com/pbutterworth/gochlorinator/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chlorctl",
	Short: "Astral Pool BLE Chlorinator Control Utility",
	Long: `A standalone utility for Astral Pool BLE chlorinators.

Reads water chemistry and system state from eQuilibrium and Halo units,
sends app actions (mode, pump speed, heater, solar, lighting), and can
serve live snapshots to dashboards over HTTP and WebSocket.

If no command is specified, the live dashboard will launch automatically.`,
	Version: version.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Initialize(logLevel)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run the dashboard when no subcommand provided
		return runWatch(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("chlorctl %s\n", version.Full())
	},
}
