package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigil-eol/advisor/bootstrap"
	"github.com/vigil-eol/advisor/config"
	"github.com/vigil-eol/advisor/logger"
	"github.com/vigil-eol/advisor/orchestrator"
	"github.com/vigil-eol/advisor/reporter"
)

var (
	reportTimeout time.Duration
	reportDays    int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run a full inventory-grounded EOL report and print it as markdown",
	Long: `Runs the same Classify -> GatherInventory -> Dispatch -> Aggregate
state machine the chat API uses, seeded with a generic inventory-wide
request, and renders the resulting AggregateReport as markdown.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().DurationVar(&reportTimeout, "timeout", 60*time.Second, "Overall report timeout")
	reportCmd.Flags().IntVar(&reportDays, "days", 30, "Inventory lookback window in days")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.New(cfg)

	rt, err := bootstrap.Build(cfg, log)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	outcome, err := rt.Orchestrator.Run(ctx, orchestrator.Request{
		Message:         "audit my assets for end of life risk",
		InventoryWindow: reportDays,
	})
	if err != nil {
		return fmt.Errorf("running report: %w", err)
	}
	if outcome.Report == nil {
		fmt.Println("no assets found to report on")
		return nil
	}

	fmt.Println(reporter.Render(outcome.Report))
	return nil
}
