// =============================================================================
// File: internal/congestion/controller.go
// Controller (spec.md §4.1, §4.12): the public entry points a host calls
// into, wiring RttEstimator, BandwidthEstimator, FairnessTracker,
// LossAccountant, PhaseMachine, GainSelector, CwndEngine and
// PacingController together in the order spec.md §4.12 lays out.
// =============================================================================
package congestion

// Controller is the per-connection congestion-control entry point. The
// host owns one per connection and must not call it concurrently for
// the same connection (spec.md §5).
type Controller struct {
	state *State
	host  Host
	log   Logger
}

// NewController builds a Controller bound to a host and runs Init
// (spec.md §4.2). log may be nil, in which case debug traces are
// discarded.
func NewController(h Host, log Logger) *Controller {
	if log == nil {
		log = noopLogger{}
	}
	c := &Controller{state: &State{}, host: h, log: log}
	c.Init()
	return c
}

// Init resets the connection to its bootstrap state: START mode, the
// nominal RTT floor, and a pacing rate derived from the host's current
// cwnd so the first burst isn't sent unpaced (spec.md §4.2).
func (c *Controller) Init() {
	s := c.state
	*s = State{
		CurrentMode: ModeStart,
		StartPhase:  true,
		LastMinRTT:  MinRTTUS,
		RTTEpoch:    4000,
		PacingGain:  PacingGainStart,
		CwndGain:    CwndGainMin,
		FairnessRat: BWUnit,
	}
	s.CurrCwnd = uint64ToU32(uint64(c.host.SndCwnd()) * uint64(mssOrDefault(c.host)))
	startProbe(s, c.host)
	bbrInitPacingRateFromRtt(s, c.host)
}

// CongControl is the per-ack entry point: it runs every estimator in
// the order spec.md §4.12 / the original spline_update-spline_main
// call chain lays out, then writes the resulting cwnd and pacing rate
// back to the host. Unlike the RTT/bandwidth/phase steps, the
// fairness-ratio refresh is the only step gated on cycle position
// (scc_is_next_cycle_phase or still bootstrapping); the stability
// counters and loss accounting run on every ack regardless of round
// boundary (spec.md §4.6, §4.12 step 3).
func (c *Controller) CongControl(caState CAState, rs *RateSample) {
	s := c.state

	updateMinRTT(s, c.host, rs)
	updateLastAckedSacked(s, c.host, rs)

	if sccIsNextCyclePhase(s, c.host, rs) || s.StartPhase {
		updateFairnessRatio(s, c.host)
	}

	sccUpdateBw(s, c.host, rs)

	fairnessCheck(s)
	checkHighRTT(s, c.host)
	stableCheck(s)
	noteLoss(s, c.host)

	checkProbes(s, c.host)

	splineSaveCwnd(s)
	s.PrevCAState = caState

	splineCwndNextGain(s, rs)

	segments := splineCwndSend(s, c.host, rs)
	c.host.SetSndCwnd(segments)
	bbrSetPacingRate(s, c.host)
	c.host.SetSndSsthreshInfinite()

	c.log.Debugf("spline: mode=%s cwnd=%d bw=%d fairness=%d loss=%d",
		s.CurrentMode, segments, sccBw(s), s.FairnessRat, s.LossCnt)
}

// splineSaveCwnd snapshots the cwnd CwndEngine is about to potentially
// back off, so UndoCwnd can restore it if a loss episode turns out to
// be spurious. The original's own spline_save_cwnd never persists its
// result (it assigns a local that's read back uninitialized), so this
// follows the standard BBR pattern it was evidently modeled on instead
// (spec.md §9 open question, resolved in SPEC_FULL.md §4): capture the
// cwnd while the previous round looked healthy, otherwise keep
// whichever of the prior snapshot and the current cwnd is larger.
func splineSaveCwnd(s *State) {
	if s.PrevCAState < CARecovery && s.CurrentMode != ModeProbeRTT {
		s.PriorCwnd = s.CurrCwnd
	} else {
		s.PriorCwnd = maxU32(s.PriorCwnd, s.CurrCwnd)
	}
}

// ConnStats is a read-only snapshot of a connection's congestion state,
// for ambient instrumentation (metrics, telemetry) that must not reach
// into State directly — the core package owns State's layout and is
// free to change it without breaking every consumer (SPEC_FULL.md §3).
type ConnStats struct {
	Mode          Mode
	CwndSegments  uint32
	PacingRateBPS uint64
	BandwidthBPS  uint64
	MinRTTUS      uint32
	SmoothedRTTUS uint32
	FairnessRatio uint32
	StableFlag    uint32
	UnfairFlag    uint32
	LossCount     uint8
}

// Stats returns the current connection's snapshot. It allocates nothing
// beyond the returned value and may be called as often as a metrics
// scrape needs.
func (c *Controller) Stats() ConnStats {
	s := c.state
	return ConnStats{
		Mode:          s.CurrentMode,
		CwndSegments:  s.CurrCwnd / mssOrDefault(c.host),
		PacingRateBPS: bbrBwToPacingRate(s, c.host),
		BandwidthBPS:  sccRateBytesPerSec(uint64(sccBw(s)), mssOrDefault(c.host), BBRUnit),
		MinRTTUS:      s.LastMinRTT,
		SmoothedRTTUS: s.CurrRTT,
		FairnessRatio: s.FairnessRat,
		StableFlag:    s.StableFlag,
		UnfairFlag:    s.UnfairFlag,
		LossCount:     s.LossCnt,
	}
}

// Ssthresh reports the host's own ssthresh unchanged: spline never
// relies on it, since SetSndSsthreshInfinite runs every round
// (spec.md §4.12, §6).
func (c *Controller) Ssthresh() uint32 {
	return c.host.SndSsthresh()
}

// SndbufExpand asks the host to size its send buffer for the gained
// BDP rather than the bare cwnd, matching the headroom CwndEngine
// already budgets for quantization (spec.md §6 "sndbuf_expand | returns
// 3", original spline_sndbuf_expand).
func (c *Controller) SndbufExpand() uint32 {
	return 3
}

// CwndEvent reacts to a host TX-restart by re-bootstrapping the
// pacing rate, since a long idle period invalidates the previous
// bandwidth sample's pacing basis (spec.md SPEC_FULL §4 supplemented
// feature: CA_EVENT_TX_START).
func (c *Controller) CwndEvent(ev CwndEvent, appLimited bool) {
	if ev == EventTXStart {
		bbrInitPacingRateFromRtt(c.state, c.host)
		if appLimited {
			c.state.RTTCnt = 0
		}
	}
}

// UndoCwnd returns the cwnd to restore after a spurious loss episode
// is reverted: the value splineSaveCwnd captured just before entering
// the loss phase, or the current cwnd if none was captured
// (spec.md §9 open question, resolved in SPEC_FULL.md §4).
func (c *Controller) UndoCwnd() uint32 {
	if c.state.PriorCwnd != 0 {
		return c.state.PriorCwnd
	}
	return c.state.CurrCwnd
}

// SetState records the host's CA state transition. Entering CA_Loss
// forces a round start and feeds the long-term bandwidth detector a
// synthetic loss sample, so a loss episode opens (or advances) a
// long-term sampling interval (spec.md SPEC_FULL §4 supplemented
// feature: LT-bw/SetState(Loss) interaction).
func (c *Controller) SetState(caState CAState) {
	c.state.PrevCAState = caState
	if caState == CALoss {
		c.state.RoundStart = true
		sccLtBwSampling(c.state, c.host, &RateSample{Losses: true})
	}
}

func mssOrDefault(h Host) uint32 {
	if mss := h.MSS(); mss != 0 {
		return mss
	}
	return MinSegmentSize
}

func uint64ToU32(v uint64) uint32 {
	return saturateU32(v)
}
