package congestion

import "testing"

// ackSample builds a RateSample where deliveredSegments is a count of
// newly-delivered packets (spec.md §3 SampleInputs), not bytes.
func ackSample(deliveredSegments int32, intervalUS int64, rttUS int64, priorDelivered uint32, appLimited, losses bool) *RateSample {
	return &RateSample{
		Delivered:      deliveredSegments,
		IntervalUS:     intervalUS,
		RTTUS:          rttUS,
		PriorDelivered: priorDelivered,
		IsAppLimited:   appLimited,
		Losses:         losses,
	}
}

func TestNewControllerBootstrapsStartMode(t *testing.T) {
	h := newFakeHost()
	c := NewController(h, nil)

	if c.state.CurrentMode != ModeStart {
		t.Fatalf("expected ModeStart after Init, got %s", c.state.CurrentMode)
	}
	if !c.state.StartPhase {
		t.Fatalf("expected StartPhase true after Init")
	}
	if c.state.LastMinRTT != MinRTTUS {
		t.Fatalf("expected bootstrap min-rtt floor %d, got %d", MinRTTUS, c.state.LastMinRTT)
	}
	if len(h.setPacingCalls) != 1 {
		t.Fatalf("expected Init to bootstrap exactly one pacing-rate write, got %d", len(h.setPacingCalls))
	}
}

// TestCongControlNeverBelowMinSndCwnd runs a steady stream of acks
// through the controller and checks that every cwnd write respects the
// contract floor (spec.md §6, §7).
func TestCongControlNeverBelowMinSndCwnd(t *testing.T) {
	h := newFakeHost()
	c := NewController(h, nil)

	h.delivered = 0
	for round := 0; round < 50; round++ {
		h.advance(20_000)
		h.delivered += 2
		rs := ackSample(2, 20_000, 50_000, h.delivered-1, false, false)
		c.CongControl(CAOpen, rs)

		if len(h.setCwndCalls) == 0 {
			t.Fatalf("round %d: expected a cwnd write", round)
		}
		last := h.setCwndCalls[len(h.setCwndCalls)-1]
		if last < MinSndCwnd {
			t.Fatalf("round %d: cwnd %d segments fell below contract floor %d", round, last, MinSndCwnd)
		}
	}
}

// TestFairnessRatioStaysClamped exercises many rounds with a widely
// varying in-flight count and checks the fairness ratio never escapes
// the contract clamp band (spec.md §4.6, §4.10).
func TestFairnessRatioStaysClamped(t *testing.T) {
	h := newFakeHost()
	c := NewController(h, nil)

	h.delivered = 0
	for round := 0; round < 100; round++ {
		h.advance(15_000)
		h.inflight = uint32(1 + round%40)
		h.delivered += 3
		rs := ackSample(3, 15_000, 40_000+int64(round*500), h.delivered-1, round%7 == 0, false)
		c.CongControl(CAOpen, rs)

		fr := c.state.FairnessRat
		if fr < 16_646_946 || fr > 21_989_530 {
			t.Fatalf("round %d: fairness ratio %d escaped clamp band", round, fr)
		}
	}
}

// TestLossPhaseBacksOffCwnd checks that once the host reports CA_Loss,
// the committed cwnd does not grow past what it was the round before
// the loss was observed (spec.md §4.7, §4.10).
func TestLossPhaseBacksOffCwnd(t *testing.T) {
	h := newFakeHost()
	c := NewController(h, nil)

	h.delivered = 0
	for round := 0; round < 20; round++ {
		h.advance(20_000)
		h.delivered += 4
		rs := ackSample(4, 20_000, 50_000, h.delivered-1, false, false)
		c.CongControl(CAOpen, rs)
	}
	preLossCwnd := h.sndCwnd

	for round := 0; round < 5; round++ {
		h.advance(20_000)
		h.delivered += 1
		h.lost += 2
		rs := ackSample(1, 20_000, 60_000, h.delivered-1, false, true)
		c.CongControl(CALoss, rs)
	}

	if h.sndCwnd > preLossCwnd {
		t.Fatalf("expected loss phase to not grow cwnd past %d, got %d", preLossCwnd, h.sndCwnd)
	}
}

// TestUndoCwndReturnsPriorCwndAfterLoss checks the persisted
// pre-loss cwnd is what UndoCwnd hands back (spec.md §9 open question,
// resolved in SPEC_FULL.md §4: the spline_save_cwnd fix).
func TestUndoCwndReturnsPriorCwndAfterLoss(t *testing.T) {
	h := newFakeHost()
	c := NewController(h, nil)

	h.delivered = 0
	for round := 0; round < 10; round++ {
		h.advance(20_000)
		h.delivered += 4
		rs := ackSample(4, 20_000, 50_000, h.delivered-1, false, false)
		c.CongControl(CAOpen, rs)
	}

	h.advance(20_000)
	h.delivered += 1
	h.lost += 1
	rs := ackSample(1, 20_000, 50_000, h.delivered-1, false, true)
	c.CongControl(CALoss, rs)

	if c.state.PriorCwnd == 0 {
		t.Fatalf("expected PriorCwnd to be captured on loss entry")
	}
	if got := c.UndoCwnd(); got != c.state.PriorCwnd {
		t.Fatalf("expected UndoCwnd to return PriorCwnd %d, got %d", c.state.PriorCwnd, got)
	}
}

// TestAppLimitedSampleNeverLowersBandwidth guards the app-limited
// filter in the BandwidthEstimator: a small app-limited sample must
// never be allowed to overwrite a larger existing bandwidth estimate
// (spec.md §4.4, §7 app-limited guard).
func TestAppLimitedSampleNeverLowersBandwidth(t *testing.T) {
	h := newFakeHost()
	c := NewController(h, nil)

	h.delivered = 0
	h.advance(10_000)
	h.delivered += 100
	rs := ackSample(100, 10_000, 40_000, 0, false, false)
	c.CongControl(CAOpen, rs)
	bwAfterBigSample := c.state.Bw

	h.advance(10_000)
	h.delivered += 1
	smallAppLimited := ackSample(1, 10_000, 40_000, h.delivered-1, true, false)
	c.CongControl(CAOpen, smallAppLimited)

	if c.state.Bw < bwAfterBigSample {
		t.Fatalf("app-limited sample must not lower Bw below %d, got %d", bwAfterBigSample, c.state.Bw)
	}
}

// TestSetStateLossSeedsLongTermSampling checks that entering CA_Loss
// feeds the long-term detector a synthetic loss sample on a forced
// round start, which opens a sampling interval and counts that round
// (SPEC_FULL.md §4 supplemented feature).
func TestSetStateLossSeedsLongTermSampling(t *testing.T) {
	h := newFakeHost()
	c := NewController(h, nil)

	c.SetState(CALoss)

	if !c.state.LtIsSampling {
		t.Fatalf("expected LtIsSampling to be set on CA_Loss")
	}
	if c.state.LtRTTCnt != 1 {
		t.Fatalf("expected LtRTTCnt 1 after the forced round start on CA_Loss, got %d", c.state.LtRTTCnt)
	}
}

// TestCwndEventTXStartReboostrapsPacing checks the TX-restart hook
// issues a fresh pacing-rate write (SPEC_FULL.md §4 supplemented
// feature: CA_EVENT_TX_START).
func TestCwndEventTXStartReboostrapsPacing(t *testing.T) {
	h := newFakeHost()
	c := NewController(h, nil)
	before := len(h.setPacingCalls)

	c.CwndEvent(EventTXStart, false)

	if len(h.setPacingCalls) != before+1 {
		t.Fatalf("expected exactly one additional pacing-rate write, got %d new calls", len(h.setPacingCalls)-before)
	}
}
