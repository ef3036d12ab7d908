package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigil-eol/advisor/bootstrap"
	"github.com/vigil-eol/advisor/config"
	"github.com/vigil-eol/advisor/logger"
)

var inventoryDays int

var inventoryCmd = &cobra.Command{
	Use:   "inventory {os|software}",
	Short: "Dump the current OS or software inventory as JSON",
	Long: `Queries the configured telemetry backend directly and prints the
normalized Assets the InventoryCollector produced, without running any
provider lookups.

Examples:
  eoladvisor inventory os --days 30
  eoladvisor inventory software --days 7`,
	Args: cobra.ExactArgs(1),
	RunE: runInventory,
}

func init() {
	inventoryCmd.Flags().IntVar(&inventoryDays, "days", 30, "Lookback window in days")
	rootCmd.AddCommand(inventoryCmd)
}

func runInventory(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.New(cfg)

	rt, err := bootstrap.Build(cfg, log)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer rt.Close()

	if rt.Orchestrator == nil {
		return fmt.Errorf("orchestrator unavailable")
	}
	collector := rt.Orchestrator.InventoryCollector()
	if collector == nil {
		fmt.Fprintln(os.Stderr, "no telemetry backend configured (set TELEMETRY_BACKEND_URL)")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var assets any
	switch args[0] {
	case "os":
		a, err := collector.CollectOS(ctx, inventoryDays)
		if err != nil {
			return fmt.Errorf("collecting os inventory: %w", err)
		}
		assets = a
	case "software":
		a, err := collector.CollectSoftware(ctx, inventoryDays)
		if err != nil {
			return fmt.Errorf("collecting software inventory: %w", err)
		}
		assets = a
	default:
		return fmt.Errorf("unknown inventory kind: %s (use: os, software)", args[0])
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(assets)
}
