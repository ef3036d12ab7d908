package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigil-eol/advisor/bootstrap"
	"github.com/vigil-eol/advisor/cache"
	"github.com/vigil-eol/advisor/config"
	"github.com/vigil-eol/advisor/fingerprint"
	"github.com/vigil-eol/advisor/logger"
	"github.com/vigil-eol/advisor/model"
	"github.com/vigil-eol/advisor/provider"
)

var (
	lookupVersion string
	lookupAgent   string
	lookupTimeout time.Duration
	lookupOS      bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <name>",
	Short: "Look up a single product or OS directly against the provider cascade",
	Long: `Runs one asset directly against the provider registry, not through
the chat orchestrator's router: a fixed agent (--agent) if given,
otherwise every provider supporting the asset's fingerprint in priority
order, stopping at the first successful result (no confidence
threshold is applied).

Examples:
  eoladvisor lookup "windows server" --version 2012 --os
  eoladvisor lookup postgresql --version 9.6
  eoladvisor lookup ubuntu --version 18.04 --agent ubuntu`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupVersion, "version", "", "Version string")
	lookupCmd.Flags().StringVar(&lookupAgent, "agent", "", "Restrict the lookup to one provider id")
	lookupCmd.Flags().DurationVar(&lookupTimeout, "timeout", 15*time.Second, "Per-lookup timeout")
	lookupCmd.Flags().BoolVar(&lookupOS, "os", false, "Treat the name as an operating system rather than software")
	rootCmd.AddCommand(lookupCmd)
}

// lookupExitCode maps an outcome to the exit codes a direct lookup uses:
// 0 success, 2 not found, 3 transient/unexpected error.
func lookupExitCode(res *model.LookupResult, err error) int {
	if err == nil && res != nil && res.Success {
		return 0
	}
	if pe, ok := err.(*model.ProviderError); ok && pe.Kind == model.ErrNotFound {
		return 2
	}
	return 3
}

func runLookup(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.New(cfg)

	rt, err := bootstrap.Build(cfg, log)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer rt.Close()

	kind := fingerprint.KindSoftware
	if lookupOS {
		kind = fingerprint.KindOS
	}
	fp := fingerprint.NewNormalizer().Normalize(args[0], lookupVersion, kind)

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	var candidates []provider.Provider
	if lookupAgent != "" {
		p, ok := rt.Registry.Get(lookupAgent)
		if !ok {
			fmt.Fprintf(os.Stderr, "unknown provider: %s\n", lookupAgent)
			os.Exit(3)
		}
		candidates = []provider.Provider{p}
	} else {
		candidates = rt.Registry.SupportingSorted(fp)
	}

	var res *model.LookupResult
	var lastErr error

	for _, p := range candidates {
		key := cache.Key(p.Id(), fp)
		r, _, lerr := rt.CacheEngine.Get(ctx, key, func(c context.Context) (*model.LookupResult, error) {
			out, _, e := provider.RetryLookup(c, func(cc context.Context) (*model.LookupResult, error) {
				return p.Lookup(cc, fp)
			})
			return out, e
		})
		if lerr == nil && r != nil && r.Success {
			res, lastErr = r, nil
			break
		}
		res, lastErr = r, lerr
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{"result": res, "error": errString(lastErr)})

	os.Exit(lookupExitCode(res, lastErr))
	return nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
