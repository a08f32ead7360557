// =============================================================================
// File: internal/congestion/longterm.go
// LongTermBwDetector (spec.md §4.5): detects traffic policers by watching
// for a near-constant delivery rate despite losses, then overrides the
// bandwidth estimate and clamps pacing gain to unity while it holds.
// =============================================================================
package congestion

// ltLossRatioNum is the numerator of the loss-ratio gate the long-term
// sampler requires before it will trust an interval: lost<<8 >= 50*delivered,
// i.e. a loss ratio of 50/256, about 20% (spec.md §4.5). Distinct from LTLossThresh, which
// gates the unrelated DRAIN trigger in phase.go.
const ltLossRatioNum = 50

func sccResetLtBwSamplingInterval(s *State, h Host) {
	s.LtLastStampMS = uint32(h.DeliveredMStamp() / 1000)
	s.LtLastDelivered = h.Delivered()
	s.LtLastLost = h.Lost()
	s.LtRTTCnt = 0
}

func sccResetLtBwSampling(s *State, h Host) {
	s.LtBw = 0
	s.LtUseBw = false
	s.LtIsSampling = false
	s.LtRTTCnt = 0
	sccResetLtBwSamplingInterval(s, h)
}

func sccLtBwIntervalDone(s *State, h Host, bw uint32) {
	if s.LtBw != 0 {
		diff := absDiffU32(bw, s.LtBw)
		ratioOK := uint64(diff)*BBRUnit <= uint64(LTBwRatioBBR)*uint64(s.LtBw)
		absOK := sccRateBytesPerSec(uint64(diff), mssOrDefault(h), BBRUnit) <= LTBwDiffBytesPS
		if ratioOK || absOK {
			s.LtBw = uint32((uint64(bw) + uint64(s.LtBw)) >> 1)
			s.LtUseBw = true
			s.PacingGain = BBRUnit
			return
		}
	}
	s.LtBw = bw
	// interval restarts with fresh anchors: the caller, sccLtBwSampling,
	// takes them from the host through sccResetLtBwSamplingInterval
	// right after this returns.
}

// sccLtBwSampling is the LongTermBwDetector step, run as part of the
// BandwidthEstimator update (spec.md §4.4, §4.5).
func sccLtBwSampling(s *State, h Host, rs *RateSample) {
	if s.LtUseBw {
		if s.CurrentMode == ModeProbeBW && s.RoundStart {
			s.LtRTTCnt++
			if s.LtRTTCnt >= LTBwMaxRTTs {
				sccResetLtBwSampling(s, h)
			}
		}
		return
	}

	if !s.LtIsSampling {
		if !rs.Losses {
			return
		}
		sccResetLtBwSamplingInterval(s, h)
		s.LtIsSampling = true
	}

	if rs.IsAppLimited {
		sccResetLtBwSampling(s, h)
		return
	}

	if s.RoundStart {
		s.LtRTTCnt++
	}
	if s.LtRTTCnt < LTIntvlMinRTTs {
		return
	}
	if s.LtRTTCnt > LTIntvlMaxRTTs {
		sccResetLtBwSampling(s, h)
		return
	}
	if !rs.Losses {
		return
	}

	lost := h.Lost() - s.LtLastLost
	delivered := h.Delivered() - s.LtLastDelivered
	if delivered == 0 || uint64(lost)<<BBRScale < uint64(ltLossRatioNum)*uint64(delivered) {
		return
	}

	nowMS := uint32(h.DeliveredMStamp() / 1000)
	t := nowMS - s.LtLastStampMS
	if int32(t) < 1 {
		return
	}
	if uint64(t) >= (^uint64(0))/1000 {
		sccResetLtBwSampling(s, h)
		return
	}
	tUS := uint64(t) * 1000

	bw := saturateU32(divU64(uint64(delivered)<<BWScale, tUS, 1))
	sccLtBwIntervalDone(s, h, bw)
	sccResetLtBwSamplingInterval(s, h)
}
