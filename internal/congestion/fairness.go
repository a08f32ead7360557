// =============================================================================
// File: internal/congestion/fairness.go
// FairnessTracker (spec.md §4.6): three stability predicates, the
// saturating stable/unfair counters they drive, the epoch's adaptive
// RTT tolerance band, and the bandwidth/throughput fairness ratio.
// =============================================================================
package congestion

// highRTTPredicate holds when the current round's RTT sits 1ms..~1/4
// epoch above the previous round's RTT — a plausible sign of transient
// queueing rather than a real regime change (spec.md §4.6 high_rtt_check).
func highRTTPredicate(s *State) bool {
	return s.LastRTT+1000 < s.CurrRTT &&
		s.LastRTT+s.RTTEpoch-(s.RTTEpoch*3>>2) > s.CurrRTT
}

// rttCheck is the same band test against the windowed minimum RTT
// instead of the previous round's RTT, with a 3/8 instead of 3/4
// margin (spec.md §4.6 rtt_check).
func rttCheck(s *State) bool {
	return s.LastMinRTT+1000 < s.CurrRTT &&
		s.LastMinRTT+s.RTTEpoch-(s.RTTEpoch*3>>3) > s.CurrRTT
}

// ackCheck holds when newly-delivered bytes are progressing — growing,
// but not by an implausible jump since the last round (spec.md §4.6
// ack_check).
func ackCheck(s *State) bool {
	return s.CurrAck < s.LastAck+7000 &&
		s.LastAck > MinSndCwnd &&
		s.CurrAck > s.LastAck
}

// checkHighRTT advances the high-RTT streak and, once it has run for 50
// rounds, either widens the epoch's RTT tolerance band (when the
// delivery signal still looks healthy and the connection is genuinely
// queuing beyond its current window) or simply restarts the streak
// (spec.md §4.6 "rtt_epoch grows ... when fifty consecutive ... rounds").
func checkHighRTT(s *State, h Host) {
	if !highRTTPredicate(s) {
		s.HighRound++
	} else {
		s.HighRound = 0
	}
	if s.HighRound != 50 {
		return
	}
	s.HighRound = 0
	if ackCheck(s) && bytesInFlight(h) > s.CurrCwnd {
		if s.RTTEpoch < 1<<15 {
			s.RTTEpoch += 4000
		}
	}
}

// fairnessCheck increments UnfairFlag when none of the three stability
// predicates hold, saturating at 1<<16 (spec.md §4.6).
func fairnessCheck(s *State) {
	if s.UnfairFlag == 1<<16 {
		return
	}
	if !rttCheck(s) && !ackCheck(s) && !highRTTPredicate(s) {
		s.UnfairFlag++
	}
}

// stableCheck increments StableFlag when all three stability predicates
// hold, saturating at 1<<16 (spec.md §4.6).
func stableCheck(s *State) {
	if s.StableFlag == 1<<16 {
		return
	}
	if rttCheck(s) && ackCheck(s) && highRTTPredicate(s) {
		s.StableFlag++
	}
}

// updateFairnessRatio recomputes the bandwidth/throughput ratio and
// clamps it to the contract band (spec.md §4.6, §4.10 gain clamp
// table). bw already carries BWScale from sccBw; when throughput is
// zero the fallback denominator is derived from bw itself, matching
// the original's `beta = (gamma >> 2) >> BWScale` rather than a fixed
// floor.
func updateFairnessRatio(s *State, h Host) {
	bw := uint64(sccBw(s))
	tp := uint64(inflightThroughput(s, h))
	if tp == 0 {
		tp = (bw >> 2) >> BWScale
	}
	ratio := divU64(bw, tp, 1)
	s.FairnessRat = clampU32(saturateU32(ratio), 16_646_946, 21_989_530)
}

