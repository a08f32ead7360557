// =============================================================================
// File: internal/congestion/phase.go
// PhaseMachine (spec.md §4.8): the START/DRAIN/PROBE_BW/PROBE_RTT cycle,
// its epoch bookkeeping, and the bootstrap jitter drawn from the host's
// PRNG.
// =============================================================================
package congestion

// startProbe begins a new epoch: a fresh jittered epoch length and a
// reset epoch position, anchored to the host's current clock
// (spec.md §4.8 "EPOCH_ROUND = 10 + rand(0..30)").
func startProbe(s *State, h Host) {
	s.EpochRound = uint8(10 + h.Rand()()%31)
	s.Epp = 0
	s.CycleMStamp = h.ClockCacheNS()
}

// checkEpochProbesRttBw picks between PROBE_RTT and PROBE_BW for the
// epoch that is starting: PROBE_RTT when the trust factor has fallen
// below the contract threshold or the connection looks more unfair
// than stable, PROBE_BW otherwise (spec.md §4.8 step 3).
func checkEpochProbesRttBw(s *State) {
	if percentGain(s) < uint32(ThreshTF) || s.UnfairFlag > s.StableFlag {
		s.CurrentMode = ModeProbeRTT
		return
	}
	s.CurrentMode = ModeProbeBW
}

// checkDrainProbe overrides the epoch's mode choice with DRAIN when
// neither rttCheck nor ackCheck holds and the long-term detector's loss count
// has run well past its threshold (spec.md §4.8 step 4).
func checkDrainProbe(s *State) {
	if !rttCheck(s) && !ackCheck(s) && s.LtLastLost > (LTLossThresh+1)*6 {
		s.CurrentMode = ModeDrain
	}
}

// checkProbes is the PhaseMachine's per-ack step, run every call
// regardless of round-start (spec.md §4.8 "Transitions fire when epp ==
// EPOCH_ROUND", original check_probes: no round-start gate). Epp itself
// advances in updateMinRTT on every call, matching the original's
// update_min_rtt; checkProbes only watches for Epp reaching the
// current epoch length and fires the transition when it does. A
// round-start gate here would let Epp overshoot EpochRound on a
// non-round-start ack, stalling every later transition until the
// uint8 wraps. The transition always re-evaluates PROBE_RTT/PROBE_BW
// and the DRAIN override regardless of which mode the epoch started
// in — the original's check_probes runs both checks unconditionally,
// not per current mode.
func checkProbes(s *State, h Host) {
	if s.Epp != s.EpochRound {
		return
	}
	s.Epp = 0

	if s.StartPhase {
		s.EpochRound = 20
		s.StartPhase = false
	} else {
		s.EpochRound = uint8(1 + h.Rand()()%31)
	}

	checkEpochProbesRttBw(s)
	checkDrainProbe(s)
}

// tcpStampUsDelta is the microsecond difference a-b between two
// nanosecond host timestamps, matching tcp_stamp_us_delta's signed
// wraparound-safe subtraction (spec.md §4.12 scc_is_next_cycle_phase).
func tcpStampUsDelta(a, b TimeNS) int64 {
	return int64(uint64(a)-uint64(b)) / 1000
}

// sccPacketsInNetAtEdt estimates packets still in flight at the
// earliest-departure time of the next packet: the host's in-flight
// count minus whatever the current bandwidth would have delivered by
// then (spec.md §4.12, original scc_packets_in_net_at_edt).
func sccPacketsInNetAtEdt(s *State, h Host, inflightNow uint32) uint32 {
	nowNS := h.ClockCacheNS()
	edtNS := nowNS
	if w := h.WstampNS(); w > nowNS {
		edtNS = w
	}
	intervalUS := uint64(edtNS-nowNS) / 1000
	delivered := uint32((uint64(sccBw(s)) * intervalUS) >> BWScale)
	if delivered >= inflightNow {
		return 0
	}
	return inflightNow - delivered
}

// sccIsNextCyclePhase gates the fairness/bandwidth refresh in
// Controller.CongControl (spec.md §4.12 step 3, original
// scc_is_next_cycle_phase): at unity pacing gain, a full cycle tick is
// enough; above unity, a full tick plus either a loss or an inflight
// count that has caught up to the pacing-gained BDP; below unity, a full
// tick or an inflight count that has already drained below the
// cwnd-gained BDP.
func sccIsNextCyclePhase(s *State, h Host, rs *RateSample) bool {
	wstamp := h.WstampNS()
	isFullLength := tcpStampUsDelta(wstamp, s.CycleMStamp) > 1
	s.CycleMStamp = wstamp

	if rs == nil {
		return isFullLength
	}

	bw := uint64(sccBw(s))
	inflight := sccPacketsInNetAtEdt(s, h, rs.PriorInFlight)

	switch {
	case s.PacingGain == BBRUnit:
		return isFullLength
	case s.PacingGain > BBRUnit:
		return isFullLength && (rs.Losses || inflight >= sccBdp(s, bw, bbrGainToBWGain(s.PacingGain)))
	default:
		return isFullLength || inflight <= sccBdp(s, bw, s.CwndGain)
	}
}
