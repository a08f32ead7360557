// =============================================================================
// File: internal/congestion/rtt.go
// RttEstimator (spec.md §4.3): smoothed/current/last RTT and the windowed
// minimum RTT that anchors bandwidth-delay-product calculations.
// =============================================================================
package congestion

// updateMinRTT is the RttEstimator step, run first in every CongControl
// call (spec.md §3 control flow, §4.3).
func updateMinRTT(s *State, h Host, rs *RateSample) {
	winTicks := MinRTTWindowTics * h.TicksPerSec()
	newMinRTT := h.JiffiesTicks() > s.LastMinRTTStamp+Ticks(winTicks)

	s.LastRTT = s.CurrRTT
	if srtt := h.SRTTUS(); srtt != 0 {
		s.CurrRTT = srtt >> 3
		if s.LastRTT == 0 {
			s.LastRTT = s.CurrRTT
		}
		s.HasSeenRTT = true
	} else {
		s.CurrRTT = MinRTTUS
	}

	if s.CurrRTT < s.LastMinRTT || s.LastMinRTT == 0 {
		s.LastMinRTT = s.CurrRTT
	}
	if rs != nil && rs.RTTUS > 0 {
		rttUS := uint32(rs.RTTUS)
		if rttUS < s.LastMinRTT || (newMinRTT && !rs.IsAckDelayed) {
			s.LastMinRTT = rttUS
			s.LastMinRTTStamp = h.JiffiesTicks()
		}
	}
	if s.LastMinRTT == 0 {
		s.LastMinRTT = MinRTTUS
	}
	if s.LastMinRTT > s.CurrRTT {
		s.LastMinRTT = s.CurrRTT
	}

	s.Epp++
}
