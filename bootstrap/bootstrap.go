// Package bootstrap wires config, the provider registry, cache,
// router, inventory collector, and telemetry recorder into a ready
// Orchestrator — the single construction path both the HTTP server
// (`eoladvisor serve`) and every other CLI subcommand (cmd/eoladvisor) call into, the
// way j0356-eol-scanner's cmd/scan.go calls scanning.NewScanner
// instead of duplicating scanner setup per command.
package bootstrap

import (
	"github.com/rs/zerolog"

	"github.com/vigil-eol/advisor/cache"
	"github.com/vigil-eol/advisor/config"
	"github.com/vigil-eol/advisor/inventory"
	"github.com/vigil-eol/advisor/orchestrator"
	"github.com/vigil-eol/advisor/provider"
	"github.com/vigil-eol/advisor/redisclient"
	"github.com/vigil-eol/advisor/router"
	"github.com/vigil-eol/advisor/telemetry"
)

// Runtime bundles everything Build produced, including the pieces the
// HTTP server's graceful shutdown needs to close cleanly.
type Runtime struct {
	Orchestrator  *orchestrator.Orchestrator
	Registry      *provider.Registry
	CacheEngine   *cache.Engine
	Telemetry     *telemetry.Recorder
	HealthPoller  *provider.HealthPoller
	CatalogSyncer *provider.CatalogSyncer
	redis         *redisclient.Client
}

// Close shuts down background goroutines and the Redis connection, if
// any. Safe to call even when RedisURL was never configured.
func (rt *Runtime) Close() {
	if rt.HealthPoller != nil {
		rt.HealthPoller.Stop()
	}
	if rt.CatalogSyncer != nil {
		rt.CatalogSyncer.Stop()
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
}

// Build constructs a fully wired Runtime from cfg. Telemetry sinks are
// attached when their endpoint env vars are set; Redis is attached
// when RedisURL is set; otherwise the cache runs in-memory only and
// no sinks fire, which is a valid (if less observable) deployment.
func Build(cfg *config.Config, logger zerolog.Logger) (*Runtime, error) {
	registry := provider.NewRegistry()
	registerProviders(registry, cfg)

	sinks, err := buildSinks(cfg, logger)
	if err != nil {
		return nil, err
	}
	recorder := telemetry.NewRecorder(cfg.TelemetryRingSize, sinks...)

	cacheOpts := []cache.Option{
		cache.WithTTL(cfg.CacheTTL),
		cache.WithNegativeTTL(cfg.CacheNegativeTTL),
	}

	var redisClient *redisclient.Client
	if cfg.RedisURL != "" {
		rc, err := redisclient.New(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		redisClient = rc
		cacheOpts = append(cacheOpts, cache.WithBackend(rc))
	}
	cacheEngine := cache.NewEngine(cacheOpts...)

	rt := router.NewRouter(registry)

	var collector *inventory.Collector
	if cfg.TelemetryBackendURL != "" {
		collector = inventory.NewCollector(inventory.NewHTTPBackend(cfg.TelemetryBackendURL))
	}

	orch := orchestrator.New(cfg, registry, cacheEngine, rt, collector, recorder)

	healthPoller := provider.NewHealthPoller(registry, logger, cfg.HealthPollInterval)
	healthPoller.Start()

	catalogSyncer := provider.NewCatalogSyncer(registry, logger, cfg.CatalogSyncInterval)
	catalogSyncer.Start()

	return &Runtime{
		Orchestrator:  orch,
		Registry:      registry,
		CacheEngine:   cacheEngine,
		Telemetry:     recorder,
		HealthPoller:  healthPoller,
		CatalogSyncer: catalogSyncer,
		redis:         redisClient,
	}, nil
}

// registerProviders populates registry with every vendor connector,
// both aggregators, and the web-search fallback (when configured),
// each given its own provider-specific timeout from cfg.
func registerProviders(registry *provider.Registry, cfg *config.Config) {
	mk := func(name string) provider.ProviderConfig {
		return provider.ProviderConfig{Name: name, Timeout: cfg.ProviderTimeout(name)}
	}

	registry.Register(provider.NewMicrosoftProvider(mk("microsoft")))
	registry.Register(provider.NewUbuntuProvider(mk("ubuntu")))
	registry.Register(provider.NewRedHatProvider(mk("redhat")))
	registry.Register(provider.NewOracleProvider(mk("oracle")))
	registry.Register(provider.NewApacheProvider(mk("apache")))
	registry.Register(provider.NewPostgreSQLProvider(mk("postgresql")))
	registry.Register(provider.NewNodeJSProvider(mk("nodejs")))
	registry.Register(provider.NewPHPProvider(mk("php")))
	registry.Register(provider.NewPythonProvider(mk("python")))
	registry.Register(provider.NewVMwareProvider(mk("vmware")))
	registry.Register(provider.NewEndOfLifeDateProvider(mk("endoflife.date")))
	registry.Register(provider.NewEOLStatusProvider(mk("eolstatus.com")))

	if cfg.WebSearchAPIURL != "" {
		searcher := provider.NewHTTPSearcher(cfg.WebSearchAPIURL, cfg.WebSearchAPIKey)
		registry.Register(provider.NewWebSearchProvider(mk("web-search"), searcher))
	}
}

// buildSinks constructs whichever telemetry sinks have their endpoint
// configured. Each sink ships with its own Enabled flag so an
// unconfigured sink is cheap to construct and simply never fires.
func buildSinks(cfg *config.Config, logger zerolog.Logger) ([]telemetry.Sink, error) {
	var sinks []telemetry.Sink

	if cfg.DatadogAPIKey != "" {
		ddCfg := telemetry.DefaultDatadogConfig()
		ddCfg.Enabled = true
		sink, err := telemetry.NewDatadogSink(ddCfg, logger)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	if cfg.SplunkHECURL != "" {
		splunkCfg := telemetry.DefaultSplunkConfig()
		splunkCfg.HECURL = cfg.SplunkHECURL
		splunkCfg.Token = cfg.SplunkHECToken
		splunkCfg.Enabled = true
		sinks = append(sinks, telemetry.NewSplunkSink(splunkCfg, logger))
	}

	if cfg.PagerDutyRoutingKey != "" {
		pdCfg := telemetry.DefaultPagerDutyConfig()
		pdCfg.RoutingKey = cfg.PagerDutyRoutingKey
		pdCfg.Enabled = true
		sinks = append(sinks, telemetry.NewPagerDutySink(pdCfg, logger))
	}

	return sinks, nil
}
