// =============================================================================
// File: internal/metrics/gauges.go
// Per-connection congestion gauges (SPEC_FULL.md §3): one prometheus.Gauge
// per exported congestion.ConnStats field, plus a one-hot mode gauge,
// registered on the server's private registry.
// =============================================================================
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bkalimollayev/spline/internal/congestion"
)

// modeNames lists every congestion.Mode value the one-hot mode gauge
// reports on; keep in sync with congestion.Mode's String() cases.
var modeNames = []string{"start", "drain", "probe_bw", "probe_rtt"}

// SplineMetrics holds the Prometheus gauges a running simulation updates
// once per CongControl round via Update.
type SplineMetrics struct {
	Cwnd          prometheus.Gauge
	PacingRate    prometheus.Gauge
	Bandwidth     prometheus.Gauge
	MinRTT        prometheus.Gauge
	SmoothedRTT   prometheus.Gauge
	FairnessRatio prometheus.Gauge
	StableFlag    prometheus.Gauge
	UnfairFlag    prometheus.Gauge
	LossCount     prometheus.Gauge
	Mode          *prometheus.GaugeVec
}

// NewSplineMetrics builds and registers the gauge set on registry.
func NewSplineMetrics(registry *prometheus.Registry) *SplineMetrics {
	const namespace = "spline"
	const subsystem = "congestion"

	m := &SplineMetrics{
		Cwnd: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "cwnd_segments",
			Help: "Current congestion window, in MSS-sized segments.",
		}),
		PacingRate: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "pacing_rate_bytes_per_second",
			Help: "Current pacing rate written to the host, bytes/sec.",
		}),
		Bandwidth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "bandwidth_bytes_per_second",
			Help: "Effective bandwidth estimate used for the BDP target, bytes/sec.",
		}),
		MinRTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "min_rtt_microseconds",
			Help: "Windowed minimum RTT.",
		}),
		SmoothedRTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "smoothed_rtt_microseconds",
			Help: "Host-reported smoothed RTT.",
		}),
		FairnessRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "fairness_ratio",
			Help: "Bandwidth/throughput fairness ratio, BWScale fixed-point units.",
		}),
		StableFlag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "stable_flag",
			Help: "Saturating count of acks judged stable; never reset during a connection.",
		}),
		UnfairFlag: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "unfair_flag",
			Help: "Saturating count of acks judged unfair; never reset during a connection.",
		}),
		LossCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "loss_count",
			Help: "Saturating per-connection loss-event counter.",
		}),
		Mode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: subsystem, Name: "mode",
			Help: "Current phase-machine mode (1 = active, one-hot across mode label values).",
		}, []string{"mode"}),
	}

	registry.MustRegister(
		m.Cwnd, m.PacingRate, m.Bandwidth, m.MinRTT, m.SmoothedRTT,
		m.FairnessRatio, m.StableFlag, m.UnfairFlag, m.LossCount, m.Mode,
	)
	return m
}

// Update pushes a ConnStats snapshot into the gauge set. Call it once
// per CongControl round.
func (m *SplineMetrics) Update(stats congestion.ConnStats) {
	m.Cwnd.Set(float64(stats.CwndSegments))
	m.PacingRate.Set(float64(stats.PacingRateBPS))
	m.Bandwidth.Set(float64(stats.BandwidthBPS))
	m.MinRTT.Set(float64(stats.MinRTTUS))
	m.SmoothedRTT.Set(float64(stats.SmoothedRTTUS))
	m.FairnessRatio.Set(float64(stats.FairnessRatio))
	m.StableFlag.Set(float64(stats.StableFlag))
	m.UnfairFlag.Set(float64(stats.UnfairFlag))
	m.LossCount.Set(float64(stats.LossCount))

	current := stats.Mode.String()
	for _, name := range modeNames {
		val := 0.0
		if name == current {
			val = 1.0
		}
		m.Mode.WithLabelValues(name).Set(val)
	}
}
