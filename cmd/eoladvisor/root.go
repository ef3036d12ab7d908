// Package main is the eoladvisor CLI: a thin cobra shell over
// bootstrap.Build, the same construction path the HTTP server uses.
// Every subcommand calls bootstrap.Build once and drives the resulting
// Runtime rather than re-wiring providers/cache/telemetry itself.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "eoladvisor",
	Short: "Conversational end-of-life advisor",
	Long: `eoladvisor answers "is X end of life" questions by classifying a
request, gathering the relevant OS/software inventory, dispatching
lookups across a cascade of vendor connectors and aggregators, and
rendering a categorized markdown report.

Examples:
  # Run the HTTP chat API
  eoladvisor serve

  # Look up a single product directly
  eoladvisor lookup "windows server" --version 2012

  # Dump the current OS inventory
  eoladvisor inventory os --days 30

  # Run a full inventory-grounded report against stdout
  eoladvisor report`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose (debug) logging (honoured by serve only)")
}

func main() {
	Execute()
}
