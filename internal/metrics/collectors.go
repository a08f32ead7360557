// =============================================================================
// File: internal/metrics/collectors.go
// Pull-based Prometheus collector for the simulated link's ground-truth
// parameters, so a dashboard can plot the congestion estimators against
// what the link actually is instead of only what spline believes it is.
// =============================================================================
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LinkStats is satisfied by the demo harness's link model
// (cmd/spline-sim), kept as an interface here so this package never
// imports the simulator.
type LinkStats interface {
	GetBandwidthMbps() float64
	GetBaseRTTMs() int
	GetLossPercent() float64
	GetPoliced() bool
	GetPolicedMbps() float64
}

// LinkCollector reports the synthetic link's configured parameters as
// gauges, computed at scrape time rather than pushed, since they're
// static for the harness's lifetime and a pull avoids a second update
// path to keep in sync with SplineMetrics.Update.
type LinkCollector struct {
	stats LinkStats

	bandwidthDesc *prometheus.Desc
	baseRTTDesc   *prometheus.Desc
	lossPercent   *prometheus.Desc
	policedDesc   *prometheus.Desc
	policedMbps   *prometheus.Desc
}

// NewLinkCollector builds a collector over the given link stats source.
func NewLinkCollector(stats LinkStats) *LinkCollector {
	const namespace = "spline"
	const subsystem = "link"

	return &LinkCollector{
		stats: stats,

		bandwidthDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "bandwidth_mbps"),
			"Configured nominal link bandwidth.",
			nil, nil,
		),
		baseRTTDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "base_rtt_milliseconds"),
			"Configured fixed link RTT, excluding jitter.",
			nil, nil,
		),
		lossPercent: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "loss_percent"),
			"Configured independent packet loss rate.",
			nil, nil,
		),
		policedDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "policed"),
			"Whether the link is simulating a traffic-policed bottleneck (1 = yes).",
			nil, nil,
		),
		policedMbps: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "policed_mbps"),
			"Configured policed-link bandwidth cap, when policed is set.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *LinkCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.bandwidthDesc
	ch <- c.baseRTTDesc
	ch <- c.lossPercent
	ch <- c.policedDesc
	ch <- c.policedMbps
}

// Collect implements prometheus.Collector.
func (c *LinkCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.bandwidthDesc, prometheus.GaugeValue, c.stats.GetBandwidthMbps())
	ch <- prometheus.MustNewConstMetric(c.baseRTTDesc, prometheus.GaugeValue, float64(c.stats.GetBaseRTTMs()))
	ch <- prometheus.MustNewConstMetric(c.lossPercent, prometheus.GaugeValue, c.stats.GetLossPercent())

	policed := 0.0
	if c.stats.GetPoliced() {
		policed = 1.0
	}
	ch <- prometheus.MustNewConstMetric(c.policedDesc, prometheus.GaugeValue, policed)
	ch <- prometheus.MustNewConstMetric(c.policedMbps, prometheus.GaugeValue, c.stats.GetPolicedMbps())
}
