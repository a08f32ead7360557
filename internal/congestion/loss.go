// =============================================================================
// File: internal/congestion/loss.go
// LossAccountant (spec.md §4.7): the saturating loss counter and the
// loss-derived trust factor that scales how hard a loss episode backs
// cwnd off.
// =============================================================================
package congestion

// noteLoss is LossAccountant's per-ack step (spec.md §4.7 loss_rate,
// original loss_rate): bump the saturating loss counter when the
// host's lost/delivered counters since the last long-term sampling
// anchor show a loss ratio above the contract threshold, and back it
// off again once the trust factor shows the network has recovered
// (spec.md §8 "loss_cnt non-increasing when tf>THRESH_TF").
func noteLoss(s *State, h Host) {
	lost := uint64(h.Lost()) - uint64(s.LtLastLost)
	delivered := uint64(h.Delivered()) - uint64(s.LtLastDelivered)

	if (lost<<BBRScale) > (delivered>>LTLossThresh) && s.LossCnt < 255 {
		s.LossCnt++
	}

	tf := percentGain(s)
	if s.LossCnt > 1 && tf > uint32(ThreshTF) {
		s.LossCnt--
	}
}

// percentGain is the "adaptive trust factor": how much the recent mix
// of long-term loss and the stability counters earns the connection,
// in BWScale units (spec.md §4.7: "tf = percent_gain(last_lost, stable,
// unfair) = (stable * 3/4 * 2^24) / ((last_lost + unfair) * 3/2)",
// with stable/unfair floored at 1 so the ratio never divides by zero).
func percentGain(s *State) uint32 {
	stable := maxU32(s.StableFlag, 1)
	unfair := maxU32(s.UnfairFlag, 1)

	num := (uint64(stable) * 3 << BWScale) >> 2
	den := (uint64(s.LtLastLost) + uint64(unfair)) * 3 >> 1
	return saturateU32(divU64(num, den, 1))
}

// lossBackoffCwnd applies the cubic/exponential loss backoff on top of
// whatever CwndEngine variant chose s.CurrCwnd this round: once the
// loss count has run past 9, the cwnd is scaled by loss_cnt^3 and
// halved once per lost round, capped at a loss count of 12 so the
// backoff doesn't collapse to nothing on a long loss streak (spec.md
// §4.7 testable scenario "Loss backoff", original loss_backoff_cwnd
// "if (loss_cnt>9) { cap 12; curr_cwnd = curr_cwnd*loss_cnt^3 /
// 2^loss_cnt }").
func lossBackoffCwnd(s *State) {
	if s.LossCnt <= 9 {
		return
	}
	n := s.LossCnt
	if n > 12 {
		n = 12
	}
	cubed := uint64(n) * uint64(n) * uint64(n)
	scaled := mulU64Saturating(uint64(s.CurrCwnd), cubed)
	s.CurrCwnd = saturateU32(scaled >> uint(n))
}
