// =============================================================================
// File: internal/congestion/pacing.go
// PacingController (spec.md §4.12, §6): converts a gain-scaled
// bandwidth into the pacing rate the host writes to its socket, and
// bootstraps that rate before the first real bandwidth sample exists.
// =============================================================================
package congestion

// pacingMarginUS is the 99%-of-a-second pacing margin the original
// scc_rate_bytes_per_sec bakes in (USEC_PER_SEC/100 * (100-1)), so the
// emitted pacing rate runs a shade under the raw gained bandwidth
// (spec.md §4.11, §4.12).
const pacingMarginUS = 990000

// sccRateBytesPerSec converts a BWScale bandwidth value through an MSS
// packet-to-byte conversion, a BBRScale gain and the pacing margin
// into plain bytes/sec (spec.md §4.11 "rate = (((bw*mss*gain)>>8) *
// 990000) >> 24", original scc_rate_bytes_per_sec).
func sccRateBytesPerSec(bwScaled uint64, mss uint32, gainBBR uint32) uint64 {
	rate := mulU64Saturating(bwScaled, uint64(mss))
	rate = mulU64Saturating(rate, uint64(gainBBR))
	rate >>= BBRScale
	rate = mulU64Saturating(rate, pacingMarginUS)
	return rate >> BWScale
}

// bbrBwToPacingRate applies the current pacing gain to the effective
// bandwidth and caps the result at the host's configured pacing-rate
// ceiling, if any (spec.md §4.12).
func bbrBwToPacingRate(s *State, h Host) uint64 {
	rate := sccRateBytesPerSec(uint64(sccBw(s)), mssOrDefault(h), s.PacingGain)
	if max := h.MaxPacingRate(); max != 0 && rate > max {
		rate = max
	}
	return rate
}

// bbrSetPacingRate is the PacingController's per-round step: derive
// the rate from the current state and commit it to the host
// (spec.md §4.12).
func bbrSetPacingRate(s *State, h Host) {
	h.SetPacingRateBPS(bbrBwToPacingRate(s, h))
}

// bbrInitPacingRateFromRtt bootstraps a pacing rate from the host's
// current cwnd and RTT before any bandwidth sample exists, so the
// first burst of packets isn't sent unpaced (spec.md §4.12, §4.2
// Init).
func bbrInitPacingRateFromRtt(s *State, h Host) {
	mss := h.MSS()
	if mss == 0 {
		mss = MinSegmentSize
	}
	cwndBytes := uint64(h.SndCwnd()) * uint64(mss)
	rttUS := uint64(s.LastMinRTT)
	if rttUS == 0 {
		rttUS = uint64(MinRTTUS)
	}
	rate := divU64(cwndBytes*1_000_000, rttUS, 0)
	if max := h.MaxPacingRate(); max != 0 && rate > max {
		rate = max
	}
	h.SetPacingRateBPS(rate)
}
