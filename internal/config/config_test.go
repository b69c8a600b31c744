package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ServiceName != "hydrolink" {
		t.Fatalf("service_name = %q", cfg.ServiceName)
	}
	if cfg.ListenAddr != ":8000" {
		t.Fatalf("listen_addr = %q", cfg.ListenAddr)
	}
	if cfg.Refresh.Interval != 15*time.Minute {
		t.Fatalf("refresh.interval = %s", cfg.Refresh.Interval)
	}
	if cfg.Refresh.FetchTimeout != 60*time.Second {
		t.Fatalf("refresh.fetch_timeout = %s", cfg.Refresh.FetchTimeout)
	}
	if cfg.Refresh.StaleMultiplier != 3 {
		t.Fatalf("refresh.stale_multiplier = %v", cfg.Refresh.StaleMultiplier)
	}
	if cfg.Tracing.Enabled {
		t.Fatal("tracing must be off by default")
	}
	if cfg.Configured() {
		t.Fatal("Configured() must be false without credentials")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HYDROLINK_LISTEN_ADDR", ":9100")
	t.Setenv("HYDROLINK_HYDRO_USERNAME", "alice")
	t.Setenv("HYDROLINK_HYDRO_PASSWORD", "s3cret")
	t.Setenv("HYDROLINK_REFRESH_INTERVAL", "5m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":9100" {
		t.Fatalf("listen_addr = %q", cfg.ListenAddr)
	}
	if !cfg.Configured() {
		t.Fatal("Configured() must be true with both credentials set")
	}
	if cfg.Refresh.Interval != 5*time.Minute {
		t.Fatalf("refresh.interval = %s", cfg.Refresh.Interval)
	}
}

func TestLoadRejectsNonPositiveInterval(t *testing.T) {
	t.Setenv("HYDROLINK_REFRESH_INTERVAL", "0s")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero refresh interval")
	}
}
