// =============================================================================
// File: internal/config/config_test.go
// Validation robustness tests: bad tunables must be caught before the
// demo harness starts, not mid-run.
// =============================================================================
package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("base defaults", func(t *testing.T) {
		if cfg.Listen != ":7788" {
			t.Errorf("Listen default wrong: got %s, want :7788", cfg.Listen)
		}
		if cfg.LogLevel != "info" {
			t.Errorf("LogLevel default wrong: got %s, want info", cfg.LogLevel)
		}
	})

	t.Run("congestion defaults", func(t *testing.T) {
		if cfg.Congestion.MinSndCwnd != 10 {
			t.Errorf("MinSndCwnd default wrong: got %d, want 10", cfg.Congestion.MinSndCwnd)
		}
		if cfg.Congestion.MinSegmentSize != 1448 {
			t.Errorf("MinSegmentSize default wrong: got %d, want 1448", cfg.Congestion.MinSegmentSize)
		}
		if cfg.Congestion.LTIntervalMinRTTs != 4 || cfg.Congestion.LTIntervalMaxRTTs != 16 {
			t.Errorf("LT interval defaults wrong: got [%d,%d], want [4,16]",
				cfg.Congestion.LTIntervalMinRTTs, cfg.Congestion.LTIntervalMaxRTTs)
		}
	})

	t.Run("link defaults", func(t *testing.T) {
		if cfg.Link.BandwidthMbps != 100 {
			t.Errorf("BandwidthMbps default wrong: got %v, want 100", cfg.Link.BandwidthMbps)
		}
		if cfg.Link.Policed {
			t.Error("Policed default should be false")
		}
	})

	t.Run("metrics and telemetry defaults", func(t *testing.T) {
		if !cfg.Metrics.Enabled {
			t.Error("Metrics.Enabled default should be true")
		}
		if cfg.Metrics.Listen != ":9100" {
			t.Errorf("Metrics.Listen default wrong: got %s, want :9100", cfg.Metrics.Listen)
		}
		if !cfg.Telemetry.Enabled {
			t.Error("Telemetry.Enabled default should be true")
		}
	})
}

func TestValidateCongestionBounds(t *testing.T) {
	t.Run("zero min_snd_cwnd rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Congestion.MinSndCwnd = 0
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "min_snd_cwnd") {
			t.Errorf("expected min_snd_cwnd error, got %v", err)
		}
	})

	t.Run("lt_interval_min exceeding lt_interval_max rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Congestion.LTIntervalMinRTTs = 20
		cfg.Congestion.LTIntervalMaxRTTs = 16
		if err := cfg.Validate(); err == nil {
			t.Error("expected lt_interval_min_rtts > lt_interval_max_rtts to be rejected")
		}
	})

	t.Run("lt_bw_max_rtts below lt_interval_max_rtts rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Congestion.LTBwMaxRTTs = 10
		if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "lt_bw_max_rtts") {
			t.Errorf("expected lt_bw_max_rtts error, got %v", err)
		}
	})
}

func TestValidateLinkBounds(t *testing.T) {
	t.Run("non-positive bandwidth rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Link.BandwidthMbps = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected zero bandwidth to be rejected")
		}
	})

	t.Run("loss percent out of range rejected", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Link.LossPercent = 150
		if err := cfg.Validate(); err == nil {
			t.Error("expected out-of-range loss_percent to be rejected")
		}
	})

	t.Run("policed link requires policed_mbps", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Link.Policed = true
		cfg.Link.PolicedMbps = 0
		if err := cfg.Validate(); err == nil {
			t.Error("expected policed link with zero policed_mbps to be rejected")
		}
	})

	t.Run("policed link with valid policed_mbps accepted", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Link.Policed = true
		cfg.Link.PolicedMbps = 20
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected valid policed link to pass, got %v", err)
		}
	})
}

func TestValidateMetricsAndTelemetry(t *testing.T) {
	t.Run("metrics path must start with slash", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics.Path = "metrics"
		if err := cfg.Validate(); err == nil {
			t.Error("expected metrics.path without leading slash to be rejected")
		}
	})

	t.Run("disabled metrics skips validation", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Metrics.Enabled = false
		cfg.Metrics.Listen = "not-a-port"
		if err := cfg.Validate(); err != nil {
			t.Errorf("disabled metrics should skip listen validation: %v", err)
		}
	})

	t.Run("telemetry path must start with slash", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Telemetry.Path = "ws"
		if err := cfg.Validate(); err == nil {
			t.Error("expected telemetry.path without leading slash to be rejected")
		}
	})
}

func TestParsePort(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		want    int
		wantErr bool
	}{
		{"colon prefix", ":54321", 54321, false},
		{"full address", "0.0.0.0:8080", 8080, false},
		{"ipv6 address", "[::]:9000", 9000, false},
		{"bare port", "12345", 12345, false},
		{"invalid format", "invalid", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePort(tt.addr)
			if (err != nil) != tt.wantErr {
				t.Errorf("parsePort(%s) error = %v, wantErr %v", tt.addr, err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parsePort(%s) = %d, want %d", tt.addr, got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load("/nonexistent/path/config.yaml")
		if err == nil {
			t.Error("loading a missing file should fail")
		}
	})

	t.Run("valid config file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.yaml")

		content := `
listen: ":7788"
log_level: "info"

congestion:
  min_snd_cwnd: 10

link:
  bandwidth_mbps: 50
  base_rtt_ms: 60
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write temp config: %v", err)
		}

		cfg, err := Load(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if cfg.Link.BandwidthMbps != 50 {
			t.Errorf("BandwidthMbps wrong: got %v, want 50", cfg.Link.BandwidthMbps)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "invalid.yaml")

		content := `
listen: ":7788"
  invalid: indentation
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write temp config: %v", err)
		}

		if _, err := Load(configPath); err == nil {
			t.Error("invalid YAML should fail to parse")
		}
	})

	t.Run("invalid tunable in file", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "bad_bandwidth.yaml")

		content := `
link:
  bandwidth_mbps: -5
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write temp config: %v", err)
		}

		_, err := Load(configPath)
		if err == nil || !strings.Contains(err.Error(), "bandwidth_mbps") {
			t.Errorf("expected bandwidth_mbps validation error, got %v", err)
		}
	})
}

func TestGenerateExampleConfig(t *testing.T) {
	content := GenerateExampleConfig()
	if !strings.Contains(content, "congestion:") || !strings.Contains(content, "link:") {
		t.Error("example config should document the congestion and link sections")
	}
}
