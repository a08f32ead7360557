// =============================================================================
// File: internal/congestion/bandwidth.go
// BandwidthEstimator (spec.md §4.4): per-sample delivery rate, the
// latest accepted sample bandwidth, the ack-driven bandwidth used for
// gain/fairness math, and inflight throughput.
// =============================================================================
package congestion

// bytesInFlight converts the host's in-flight packet count to bytes
// using its current segment size, falling back to the contract minimum.
func bytesInFlight(h Host) uint32 {
	mss := h.MSS()
	if mss == 0 {
		mss = MinSegmentSize
	}
	inflight := uint64(h.PacketsInFlight()) * uint64(mss)
	return saturateU32(inflight)
}

// updateLastAckedSacked shifts CurrAck into LastAck and derives the new
// CurrAck in bytes from the sample's delivered-segment count
// (spec.md §4.4; units resolved in DESIGN.md).
func updateLastAckedSacked(s *State, h Host, rs *RateSample) {
	mss := h.MSS()
	if mss == 0 {
		mss = MinSegmentSize
	}
	s.LastAck = s.CurrAck
	if rs == nil || rs.Delivered < 0 || rs.Delivered > 0x7FFFFFFF {
		s.CurrAck = 0
		return
	}
	s.CurrAck = saturateU32(uint64(rs.Delivered) * uint64(mss))
}

// ackDrivenBandwidth is "bandwidth()" in spec.md §4.4: a bandwidth
// estimate derived from newly-acked bytes over the min-RTT window,
// floored at MinBW.
func ackDrivenBandwidth(s *State) uint32 {
	num := uint64(s.CurrAck) << BWScale * 10000
	den := uint64(s.LastMinRTT)
	bw := divU64(num, den, uint64(MinRTTUS))
	return maxU32(saturateU32(bw), MinBW)
}

// inflightThroughput is the Throughput term of the fairness ratio
// (spec.md §4.4, §4.6).
func inflightThroughput(s *State, h Host) uint32 {
	inflight := bytesInFlight(h)
	if inflight == 0 {
		inflight = 448
	}
	num := uint64(inflight) * 10000
	tp := divU64(num, uint64(s.LastMinRTT), uint64(MinRTTUS))
	return saturateU32(tp)
}

// sccMaxBw chooses between the latest accepted sample bandwidth and the
// ack-driven bandwidth, preferring the larger unless the loss counter
// has crossed 50, in which case only the filtered bandwidth is trusted
// (spec.md §4.4).
func sccMaxBw(s *State) uint32 {
	if s.LossCnt < 50 {
		return maxU32(s.Bw, ackDrivenBandwidth(s))
	}
	return s.Bw
}

// sccBw is the effective bandwidth used for pacing and BDP targets:
// the long-term/policed estimate overrides the filtered one once the
// long-term detector has locked on (spec.md §4.5).
func sccBw(s *State) uint32 {
	if s.LtUseBw {
		return s.LtBw
	}
	return sccMaxBw(s)
}

// sccUpdateBw is the per-ack BandwidthEstimator step: it detects a new
// RTT round, feeds the long-term detector, computes the raw sample
// bandwidth, and — unless the sample is app-limited and below sccMaxBw —
// stores it as Bw (spec.md §4.4). Bw is the latest accepted sample, not
// a windowed maximum: a smaller sample that is not app-limited replaces
// a larger one.
func sccUpdateBw(s *State, h Host, rs *RateSample) {
	s.RoundStart = false
	if !rs.Valid() {
		return
	}

	if rs.PriorDelivered >= s.Delivered {
		s.Delivered = h.Delivered()
		s.RTTCnt++
		s.RoundStart = true
	}

	sccLtBwSampling(s, h, rs)

	sampleBw := saturateU32(divU64(uint64(rs.Delivered)<<BWScale, uint64(rs.IntervalUS), 1))

	if !rs.IsAppLimited || sampleBw >= sccMaxBw(s) {
		s.Bw = sampleBw
	}
}
