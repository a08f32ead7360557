// =============================================================================
// File: internal/congestion/cwnd.go
// CwndEngine (spec.md §4.10, §4.11): the per-round gain-based cwnd
// target, the loss-phase backoff, the bandwidth-delay-product fusion,
// and the final clamp written back to the host.
// =============================================================================
package congestion

// sccBdp is the gain-scaled bandwidth-delay product, in bytes, used as
// CwndEngine's final BDP fusion target (spec.md §4.10 "scc_bdp(bw,
// gain) = ceil(bw * last_min_rtt * gain / 2^48)", original scc_bdp).
func sccBdp(s *State, bw uint64, gainBWScale uint32) uint32 {
	num := mulU64Saturating(bw, uint64(s.LastMinRTT))
	num = mulU64Saturating(num, uint64(gainBWScale))
	bdp := ceilDivU64(num, uint64(BWUnit)*uint64(BWUnit))
	return saturateU32(bdp)
}

// sccMaxCwnd is a fairness-scaled ceiling on the current cwnd, floored
// at twice the contract minimum so an unset fairness ratio never
// collapses the bound to zero (spec.md §4.10 "spline_max_cwnd =
// fairness_rat * curr_cwnd >> 24", original spline_max_cwnd).
func sccMaxCwnd(s *State) uint32 {
	scaled := (uint64(s.FairnessRat) * uint64(s.CurrCwnd)) >> BWScale
	v := saturateU32(scaled)
	if v < 2*MinSndCwnd {
		v = 2 * MinSndCwnd
	}
	return v
}

// useLossPhase decides which CwndEngine variant governs this round:
// the connection looks unfair, its high-RTT signal is stale, or it has
// lost too much recently (spec.md §4.10 "unfair_flag>2000 ||
// !high_rtt_check || loss_cnt>10").
func useLossPhase(s *State) bool {
	return s.UnfairFlag > 2000 || !highRTTPredicate(s) || s.LossCnt > 10
}

// cwndLossPhase is the target cwnd, in bytes, while the loss variant
// governs: the gain-scaled BDP, re-averaged against the current RTT and
// further scaled by the fairness ratio (spec.md §4.10 "cwnd_loss =
// fairness_rat * (gain / ((rtt_avg+curr_rtt)/2)) >> 24", original
// cwnd_loss_phase).
func cwndLossPhase(s *State, gain uint64, rttAvg uint32) uint32 {
	rtt := (uint64(rttAvg) + uint64(s.CurrRTT)) / 2
	if rtt == 0 {
		rtt = uint64(MinRTTUS)
	}
	cwnd := divU64(gain, rtt, 0)
	scaled := (cwnd * uint64(s.FairnessRat)) >> BWScale
	return saturateU32(scaled)
}

// cwndStablePhase is the target cwnd, in bytes, while the stable
// variant governs: the gain-scaled BDP alone (spec.md §4.10
// "cwnd_stable = gain / rtt_avg >> 24", original cwnd_stable_phase).
func cwndStablePhase(gain uint64, rttAvg uint32) uint32 {
	rtt := uint64(rttAvg)
	if rtt == 0 {
		rtt = uint64(MinRTTUS)
	}
	cwnd := divU64(gain, rtt, 0) >> BWScale
	return saturateU32(cwnd)
}

// splineCwndNextGain is CwndEngine's per-round gain-based cwnd
// computation (spec.md §4.10, original spline_cwnd_next_gain): pick the
// stable/loss-phase target, apply the loss backoff, scale by the trust
// factor (floored at MinThreshTF), and floor the result at an eighth of
// the fairness-scaled ceiling before adding this round's acked/sacked
// segments.
func splineCwndNextGain(s *State, rs *RateSample) {
	rttAvg := splineGain(s)
	floorCwnd := sccMaxCwnd(s) >> 3
	tf := percentGain(s)

	if useLossPhase(s) {
		s.CurrCwnd = cwndLossPhase(s, uint64(s.Gain), rttAvg)
	} else {
		s.CurrCwnd = cwndStablePhase(uint64(s.Gain), rttAvg)
	}

	lossBackoffCwnd(s)
	if tf < uint32(MinThreshTF) {
		tf = uint32(MinThreshTF)
	}

	s.CurrCwnd = saturateU32((uint64(s.CurrCwnd) * uint64(tf)) >> BWScale)
	s.CurrCwnd = maxU32(s.CurrCwnd, floorCwnd)
	if rs != nil {
		s.CurrCwnd = saturateU32(uint64(s.CurrCwnd) + uint64(rs.AckedSacked))
	}
}

// nextCwnd fuses the per-round gain-based cwnd against the
// bandwidth-delay-product target (spec.md §4.10, original next_cwnd):
// trust the computed cwnd alone once the trust factor has collapsed
// past bootstrap with a heavy loss history, blend the two when the
// fairness counters and loss count show sustained unfairness, and
// otherwise take whichever is larger.
func nextCwnd(s *State, targetCwnd, computedCwnd uint32) uint32 {
	tf := percentGain(s)
	switch {
	case tf < uint32(ThreshTF) && !s.StartPhase && s.LossCnt > 50:
		return computedCwnd
	case ((s.UnfairFlag > 2000 && s.StableFlag < 300) || s.UnfairFlag > s.StableFlag+500) && s.LossCnt > 5:
		return saturateU32(((uint64(targetCwnd) + uint64(computedCwnd)) * 7) >> 4)
	default:
		return maxU32(targetCwnd, computedCwnd)
	}
}

// splineCwndSend is CwndEngine's final write path (spec.md §4.10,
// §4.12, original spline_cwnd_send): the gain-scaled BDP target fused
// against the per-round computed cwnd, floored at the contract minimum,
// with this round's directly-acked/sacked segments added on top and
// capped at the host's configured clamp.
func splineCwndSend(s *State, h Host, rs *RateSample) uint32 {
	targetCwnd := sccBdp(s, uint64(sccBw(s)), s.CwndGain)
	cwndBytes := nextCwnd(s, targetCwnd, s.CurrCwnd)

	mss := h.MSS()
	if mss == 0 {
		mss = MinSegmentSize
	}
	segments := uint32(divU64(uint64(cwndBytes), uint64(mss), 0))
	if segments < MinSndCwnd {
		segments = MinSndCwnd
	}
	if rs != nil {
		segments = saturateU32(uint64(segments) + uint64(rs.AckedSacked))
	}
	if clamp := h.SndCwndClamp(); clamp != 0 && segments > clamp {
		segments = clamp
	}
	return segments
}
