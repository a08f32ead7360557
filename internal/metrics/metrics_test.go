package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bkalimollayev/spline/internal/congestion"
)

func TestSplineMetricsUpdateSetsGauges(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewSplineMetrics(registry)

	m.Update(congestion.ConnStats{
		Mode:          congestion.ModeProbeBW,
		CwndSegments:  42,
		PacingRateBPS: 1_000_000,
		BandwidthBPS:  900_000,
		MinRTTUS:      40_000,
		SmoothedRTTUS: 45_000,
		FairnessRatio: 16_777_216,
		StableFlag:    3,
		UnfairFlag:    0,
		LossCount:     1,
	})

	if got := testutil.ToFloat64(m.Cwnd); got != 42 {
		t.Fatalf("expected cwnd gauge 42, got %v", got)
	}
	if got := testutil.ToFloat64(m.Mode.WithLabelValues("probe_bw")); got != 1 {
		t.Fatalf("expected probe_bw mode gauge set, got %v", got)
	}
	if got := testutil.ToFloat64(m.Mode.WithLabelValues("drain")); got != 0 {
		t.Fatalf("expected drain mode gauge unset, got %v", got)
	}
}

func TestSimMetricsTracksRoundsAndSwitches(t *testing.T) {
	m := New()

	for i := 0; i < 5; i++ {
		m.IncRounds()
	}
	if got := m.GetRoundsProcessed(); got != 5 {
		t.Fatalf("expected 5 rounds processed, got %d", got)
	}

	m.RecordModeSwitch("start", "drain")
	m.RecordModeSwitch("drain", "probe_bw")
	if got := m.GetModeSwitches(); got != 2 {
		t.Fatalf("expected 2 mode switches, got %d", got)
	}

	history := m.GetSwitchHistory(1)
	if len(history) != 1 || history[0].ToMode != "probe_bw" {
		t.Fatalf("expected most recent switch to probe_bw, got %+v", history)
	}
}

func TestSimMetricsCapsSwitchHistoryAt100(t *testing.T) {
	m := New()
	for i := 0; i < 150; i++ {
		m.RecordModeSwitch("probe_bw", "probe_rtt")
	}

	history := m.GetSwitchHistory(0)
	if len(history) != 100 {
		t.Fatalf("expected switch history capped at 100, got %d", len(history))
	}
	if got := m.GetModeSwitches(); got != 150 {
		t.Fatalf("expected total switch count uncapped at 150, got %d", got)
	}
}
