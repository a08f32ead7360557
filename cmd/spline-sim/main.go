// =============================================================================
// File: cmd/spline-sim/main.go
// Demo harness entry point (SPEC_FULL.md §5): wires a synthetic link
// Host into a congestion.Controller, drives it round by round, and
// serves Prometheus metrics and a websocket telemetry feed alongside
// the simulation loop via golang.org/x/sync/errgroup, the same
// orchestration idiom the teacher's dependency tree already carries.
// =============================================================================
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bkalimollayev/spline/internal/config"
	"github.com/bkalimollayev/spline/internal/congestion"
	"github.com/bkalimollayev/spline/internal/metrics"
)

var (
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// printfLogger adapts fmt.Printf to congestion.Logger, the demo
// harness's ambient logging texture (SPEC_FULL.md §2.3).
type printfLogger struct{}

func (printfLogger) Debugf(format string, args ...any) {
	fmt.Printf("[spline] "+format+"\n", args...)
}

func main() {
	configFile := flag.String("config", "", "YAML config path (see GenerateExampleConfig)")
	writeExample := flag.String("write-example-config", "", "write a commented example config to this path and exit")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("spline-sim %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	if *writeExample != "" {
		if err := config.WriteExampleConfig(*writeExample); err != nil {
			fmt.Printf("[ERROR] writing example config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("[INFO] wrote example config to %s\n", *writeExample)
		os.Exit(0)
	}

	cfg := config.DefaultConfig()
	if *configFile != "" {
		loaded, err := config.Load(*configFile)
		if err != nil {
			fmt.Printf("[ERROR] loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	printBanner(cfg)

	app := newApplication(cfg)
	if err := app.run(); err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
}

func printBanner(cfg *config.Config) {
	fmt.Println()
	fmt.Println("=== spline-sim: BBR-style congestion control demo harness ===")
	fmt.Printf("  link:      %.1f Mbps, %dms RTT +/-%dms jitter, %.2f%% loss\n",
		cfg.Link.BandwidthMbps, cfg.Link.BaseRTTMs, cfg.Link.JitterMs, cfg.Link.LossPercent)
	if cfg.Link.Policed {
		fmt.Printf("  policed:   capped at %.1f Mbps\n", cfg.Link.PolicedMbps)
	}
	if cfg.Metrics.Enabled {
		fmt.Printf("  metrics:   http://%s%s  (health: %s)\n", cfg.Metrics.Listen, cfg.Metrics.Path, cfg.Metrics.HealthPath)
	}
	if cfg.Telemetry.Enabled {
		fmt.Printf("  telemetry: ws://%s%s\n", cfg.Telemetry.Listen, cfg.Telemetry.Path)
	}
	fmt.Println()
}

// application is the harness's lifecycle owner: one Controller over one
// synthetic host, plus whichever ambient servers the config enables.
type application struct {
	cfg  *config.Config
	host *simHost
	ctrl *congestion.Controller

	simMetrics    *metrics.SimMetrics
	splineMetrics *metrics.SplineMetrics
	metricsServer *metrics.MetricsServer
	telemetry     *telemetryServer
}

func newApplication(cfg *config.Config) *application {
	host := newSimHost(cfg.Link, time.Now().UnixNano())
	ctrl := congestion.NewController(host, printfLogger{})

	app := &application{
		cfg:        cfg,
		host:       host,
		ctrl:       ctrl,
		simMetrics: metrics.New(),
	}

	if cfg.Metrics.Enabled {
		app.metricsServer = metrics.NewMetricsServer(cfg.Metrics.Listen, cfg.Metrics.Path, cfg.Metrics.HealthPath, false)
		app.splineMetrics = metrics.NewSplineMetrics(app.metricsServer.GetRegistry())
		app.metricsServer.MustRegisterCollector(metrics.NewLinkCollector(simLinkStats{cfg.Link}))
		app.metricsServer.SetHealthCheck(func() metrics.HealthStatus {
			return metrics.HealthStatus{
				Status:    "healthy",
				Timestamp: time.Now(),
				Version:   Version,
				Uptime:    app.simMetrics.GetUptime(),
			}
		})
	}

	if cfg.Telemetry.Enabled {
		app.telemetry = newTelemetryServer(cfg.Telemetry.Listen, cfg.Telemetry.Path)
	}

	return app
}

func (app *application) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	if app.metricsServer != nil {
		g.Go(func() error {
			if err := app.metricsServer.Start(gctx); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			<-gctx.Done()
			app.metricsServer.Stop()
			return nil
		})
	}

	if app.telemetry != nil {
		g.Go(func() error {
			return app.telemetry.run(gctx)
		})
	}

	g.Go(func() error {
		return app.simulate(gctx)
	})

	return g.Wait()
}

// simulate drives the link/controller for cfg.Link.DurationSec, one
// RTT-paced round at a time, and feeds every round's outcome to the
// ambient metrics/telemetry stages (ordering per round:
// CongControl, then SetState on a CA-state change, with CwndEvent left
// for a host-observed TX restart the synthetic link never triggers).
func (app *application) simulate(ctx context.Context) error {
	deadline := time.Now().Add(time.Duration(app.cfg.Link.DurationSec) * time.Second)
	prevMode := app.ctrl.Stats().Mode.String()

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		rs, caState := app.host.step()
		app.ctrl.CongControl(caState, rs)
		if caState != congestion.CAOpen {
			app.ctrl.SetState(caState)
		}

		app.simMetrics.IncRounds()
		if rs.Losses {
			app.simMetrics.RecordLossEvent()
		}

		stats := app.ctrl.Stats()
		if mode := stats.Mode.String(); mode != prevMode {
			app.simMetrics.RecordModeSwitch(prevMode, mode)
			prevMode = mode
		}

		if app.splineMetrics != nil {
			app.splineMetrics.Update(stats)
		}
		if app.telemetry != nil {
			app.telemetry.hub.broadcast(newTelemetryFrame(stats))
		}

		time.Sleep(time.Duration(rs.RTTUS) * time.Microsecond)
	}

	fmt.Printf("[INFO] simulation complete: %v\n", app.simMetrics.GetStats())
	return nil
}

// simLinkStats adapts config.LinkConfig to metrics.LinkStats.
type simLinkStats struct {
	link config.LinkConfig
}

func (s simLinkStats) GetBandwidthMbps() float64 { return s.link.BandwidthMbps }
func (s simLinkStats) GetBaseRTTMs() int         { return s.link.BaseRTTMs }
func (s simLinkStats) GetLossPercent() float64   { return s.link.LossPercent }
func (s simLinkStats) GetPoliced() bool          { return s.link.Policed }
func (s simLinkStats) GetPolicedMbps() float64   { return s.link.PolicedMbps }
