// =============================================================================
// File: internal/config/config.go
// Tunable surface for the demo harness: contract minimums, RTT floors,
// long-term detector bounds, bootstrap epoch length, and the simulated
// host link parameters cmd/spline-sim drives its fake Host from.
// =============================================================================
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the demo harness. The core
// congestion package itself takes no dependency on this type;
// cmd/spline-sim reads the Link, Metrics and Telemetry sections.
type Config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	Congestion CongestionConfig `yaml:"congestion"`
	Link       LinkConfig       `yaml:"link"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// CongestionConfig mirrors the contract constants types.go defines. Its
// values are loaded and validated, but neither cmd/spline-sim nor the
// congestion package reads them: the controller always runs on the
// constants in types.go, whatever this section holds.
type CongestionConfig struct {
	MinSndCwnd     uint32 `yaml:"min_snd_cwnd"`
	MinSegmentSize uint32 `yaml:"min_segment_size"`
	MinRTTUs       uint32 `yaml:"min_rtt_us"`
	MinRTTWindowS  uint32 `yaml:"min_rtt_window_sec"`

	LTIntervalMinRTTs uint8 `yaml:"lt_interval_min_rtts"`
	LTIntervalMaxRTTs uint8 `yaml:"lt_interval_max_rtts"`
	LTBwMaxRTTs       uint8 `yaml:"lt_bw_max_rtts"`

	BootstrapEpochBaseRounds uint8 `yaml:"bootstrap_epoch_base_rounds"`
	BootstrapEpochJitter     uint8 `yaml:"bootstrap_epoch_jitter"`
}

// LinkConfig parameterizes the synthetic host link cmd/spline-sim
// drives: a fixed-capacity, fixed-RTT path with independent jitter and
// loss, enough to exercise startup ramp, steady state, and
// policed-link/loss scenarios.
type LinkConfig struct {
	BandwidthMbps float64 `yaml:"bandwidth_mbps"`
	BaseRTTMs     int     `yaml:"base_rtt_ms"`
	JitterMs      int     `yaml:"jitter_ms"`
	LossPercent   float64 `yaml:"loss_percent"`
	DurationSec   int     `yaml:"duration_sec"`

	// Policed simulates a traffic-shaping middlebox: once enabled, the
	// link silently caps delivery at PolicedMbps regardless of the
	// nominal BandwidthMbps, so the demo can show the long-term
	// bandwidth detector converge.
	Policed     bool    `yaml:"policed"`
	PolicedMbps float64 `yaml:"policed_mbps"`
}

// MetricsConfig controls the Prometheus /metrics and /healthz server.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Listen     string `yaml:"listen"`
	Path       string `yaml:"path"`
	HealthPath string `yaml:"health_path"`
}

// TelemetryConfig controls the websocket telemetry feed.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	Path    string `yaml:"path"`
}

// Load reads and validates a YAML config file, defaulting anything
// left unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultConfig returns the contract defaults (spec.md §6) wrapped in
// a runnable demo-harness configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:   ":7788",
		LogLevel: "info",

		Congestion: CongestionConfig{
			MinSndCwnd:               10,
			MinSegmentSize:           1448,
			MinRTTUs:                 100_000,
			MinRTTWindowS:            10,
			LTIntervalMinRTTs:        4,
			LTIntervalMaxRTTs:        16,
			LTBwMaxRTTs:              48,
			BootstrapEpochBaseRounds: 10,
			BootstrapEpochJitter:     30,
		},

		Link: LinkConfig{
			BandwidthMbps: 100,
			BaseRTTMs:     40,
			JitterMs:      5,
			LossPercent:   0,
			DurationSec:   60,
			Policed:       false,
			PolicedMbps:   20,
		},

		Metrics: MetricsConfig{
			Enabled:    true,
			Listen:     ":9100",
			Path:       "/metrics",
			HealthPath: "/healthz",
		},

		Telemetry: TelemetryConfig{
			Enabled: true,
			Listen:  ":9101",
			Path:    "/ws/telemetry",
		},
	}
}

// Validate checks that every tunable lands in a sane range, returning
// wrapped errors rather than panicking on bad user input
// (spec.md §7 error taxonomy extends only to the core; ambient config
// validation is ordinary input validation).
func (c *Config) Validate() error {
	if _, err := parsePort(c.Listen); err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	if c.Congestion.MinSndCwnd == 0 {
		return fmt.Errorf("congestion.min_snd_cwnd must be positive")
	}
	if c.Congestion.MinSegmentSize == 0 {
		return fmt.Errorf("congestion.min_segment_size must be positive")
	}
	if c.Congestion.MinRTTUs == 0 {
		return fmt.Errorf("congestion.min_rtt_us must be positive")
	}
	if c.Congestion.LTIntervalMinRTTs == 0 || c.Congestion.LTIntervalMinRTTs > c.Congestion.LTIntervalMaxRTTs {
		return fmt.Errorf("congestion.lt_interval_min_rtts must be positive and <= lt_interval_max_rtts")
	}
	if c.Congestion.LTBwMaxRTTs <= c.Congestion.LTIntervalMaxRTTs {
		return fmt.Errorf("congestion.lt_bw_max_rtts must exceed lt_interval_max_rtts")
	}

	if c.Link.BandwidthMbps <= 0 {
		return fmt.Errorf("link.bandwidth_mbps must be positive")
	}
	if c.Link.BaseRTTMs <= 0 {
		return fmt.Errorf("link.base_rtt_ms must be positive")
	}
	if c.Link.JitterMs < 0 {
		return fmt.Errorf("link.jitter_ms must not be negative")
	}
	if c.Link.LossPercent < 0 || c.Link.LossPercent > 100 {
		return fmt.Errorf("link.loss_percent must be in 0-100")
	}
	if c.Link.Policed && c.Link.PolicedMbps <= 0 {
		return fmt.Errorf("link.policed_mbps must be positive when link.policed is set")
	}

	if c.Metrics.Enabled {
		if _, err := parsePort(c.Metrics.Listen); err != nil {
			return fmt.Errorf("metrics.listen: %w", err)
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return fmt.Errorf("metrics.path must start with /")
		}
	}

	if c.Telemetry.Enabled {
		if _, err := parsePort(c.Telemetry.Listen); err != nil {
			return fmt.Errorf("telemetry.listen: %w", err)
		}
		if !strings.HasPrefix(c.Telemetry.Path, "/") {
			return fmt.Errorf("telemetry.path must start with /")
		}
	}

	return nil
}

func parsePort(addr string) (int, error) {
	if strings.HasPrefix(addr, ":") {
		return strconv.Atoi(addr[1:])
	}
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return strconv.Atoi(addr)
	}
	return strconv.Atoi(portStr)
}

// GenerateExampleConfig returns a fully-commented sample config, in
// the same spirit as the teacher's generated config template.
func GenerateExampleConfig() string {
	return `# spline-sim configuration example
# =============================================================================

listen: ":7788"
log_level: "info"

congestion:
  min_snd_cwnd: 10
  min_segment_size: 1448
  min_rtt_us: 100000
  min_rtt_window_sec: 10
  lt_interval_min_rtts: 4
  lt_interval_max_rtts: 16
  lt_bw_max_rtts: 48
  bootstrap_epoch_base_rounds: 10
  bootstrap_epoch_jitter: 30

link:
  bandwidth_mbps: 100
  base_rtt_ms: 40
  jitter_ms: 5
  loss_percent: 0
  duration_sec: 60
  policed: false
  policed_mbps: 20

metrics:
  enabled: true
  listen: ":9100"
  path: "/metrics"
  health_path: "/healthz"

telemetry:
  enabled: true
  listen: ":9101"
  path: "/ws/telemetry"
`
}

// WriteExampleConfig writes the sample config to disk.
func WriteExampleConfig(path string) error {
	return os.WriteFile(path, []byte(GenerateExampleConfig()), 0644)
}
