package config_test

import (
	"os"
	"testing"

	"github.com/vigil-eol/advisor/config"
)

func TestLoadConfigFromEnv(t *testing.T) {
	os.Setenv("REDIS_URL", "redis://localhost:6379")
	os.Setenv("ENV", "test")
	os.Setenv("EOLADVISOR_WORKER_POOL_SIZE", "4")
	defer func() {
		os.Unsetenv("REDIS_URL")
		os.Unsetenv("ENV")
		os.Unsetenv("EOLADVISOR_WORKER_POOL_SIZE")
	}()

	cfg := config.Load()
	if cfg.RedisURL != "redis://localhost:6379" {
		t.Fatalf("expected REDIS_URL to be loaded, got %s", cfg.RedisURL)
	}
	if cfg.Env != "test" {
		t.Fatalf("expected ENV=test, got %s", cfg.Env)
	}
	if cfg.WorkerPoolSize != 4 {
		t.Fatalf("expected worker pool size 4, got %d", cfg.WorkerPoolSize)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	os.Unsetenv("EOLADVISOR_WORKER_POOL_SIZE")
	cfg := config.Load()
	if cfg.WorkerPoolSize != 8 {
		t.Fatalf("expected default worker pool size 8, got %d", cfg.WorkerPoolSize)
	}
	if cfg.DefaultRequestTimeout.Seconds() != 60 {
		t.Fatalf("expected default request timeout 60s, got %v", cfg.DefaultRequestTimeout)
	}
	if cfg.DefaultProviderTimeout.Seconds() != 15 {
		t.Fatalf("expected default provider timeout 15s, got %v", cfg.DefaultProviderTimeout)
	}
}
