// =============================================================================
// File: internal/congestion/gain.go
// GainSelector (spec.md §4.9, §4.10): the per-mode pacing gain, the
// curr_ack-derived cwnd gain, and the composite gain CwndEngine scales
// the bandwidth-delay product by.
// =============================================================================
package congestion

// gainsMode sets the pacing gain for the currently active mode
// (spec.md §4.9). DRAIN additionally sets a transient cwnd gain that
// splineGain's unconditional recompute below always overwrites before
// it is ever read — matching the original's gains_mode/spline_gain call
// order exactly (spec.md §9 design note). While the long-term detector's
// bandwidth is in use, the pacing gain is held at unity in every mode.
func gainsMode(s *State) {
	switch s.CurrentMode {
	case ModeProbeRTT:
		s.PacingGain = PacingGainProbeRTT
	case ModeDrain:
		s.PacingGain = PacingGainDrain
		s.CwndGain = DrainCwndGain
	case ModeStart:
		s.PacingGain = PacingGainStart
	default:
		s.PacingGain = PacingGainProbeBW
	}
	if s.LtUseBw {
		s.PacingGain = BBRUnit
	}
}

// splineCwndGain is the raw, unclamped BW-scale cwnd gain: how much of
// the ack-driven bandwidth this round's currently-acked bytes represent
// (spec.md §4.9 "cwnd_gain() = curr_ack * 2^24 / ((bw * 1e6) / rtt)").
func splineCwndGain(s *State) uint64 {
	rtt := uint64(s.LastMinRTT)
	if rtt == 0 {
		rtt = uint64(MinRTTUS)
	}
	denom := (uint64(ackDrivenBandwidth(s)) * 1_000_000) / rtt
	if denom == 0 {
		denom = uint64(MinBW)
	}
	return (uint64(s.CurrAck) << BWScale) / denom
}

// cwndGainClamped clamps splineCwndGain to the contract band
// (spec.md §4.9: "clamped to [6,646,946 ; 37,390,997]").
func cwndGainClamped(s *State) uint32 {
	return clampU32(saturateU32(splineCwndGain(s)), CwndGainMin, CwndGainMax)
}

// splineGain is GainSelector's composite step (spec.md §4.10 "gain =
// cwnd_gain * bw_ack * rtt_avg, floored at 646946"): it sets the mode's
// pacing gain, computes and clamps the cwnd gain, scales it by the
// ack-driven bandwidth and the round-trip average, floors the result,
// commits Gain/CwndGain into state, and returns the round-trip average
// for the caller's stable/loss cwnd formulas (original: spline_gain
// returns rtt_avg, not the gain itself).
func splineGain(s *State) uint32 {
	gainsMode(s)
	bwAck := ackDrivenBandwidth(s)
	cg := cwndGainClamped(s)

	rttAvg := (s.LastMinRTT + s.CurrRTT) / 2
	if rttAvg == 0 {
		rttAvg = MinRTTUS
	}

	composite := mulU64Saturating(uint64(cg), uint64(bwAck))
	composite = mulU64Saturating(composite, uint64(rttAvg))

	s.Gain = maxU32(saturateU32(composite), uint32(GainFloor))
	s.CwndGain = cg
	return rttAvg
}
