package congestion

// fakeHost is a deterministic, in-memory Host used by the unit and
// scenario tests. It records every cwnd and pacing-rate write in a call
// log, and its PRNG is a zero-seeded linear congruential generator so
// epoch lengths are reproducible across runs.
type fakeHost struct {
	srttUS     uint32
	sndCwnd    uint32
	mss        uint32
	delivered  uint32
	lost       uint32
	deliveredMStampUS uint64
	wstampNS   TimeNS
	clockNS    TimeNS
	cwndClamp  uint32
	maxPacing  uint64
	inflight   uint32
	ticks      Ticks
	ticksPerSec uint32
	ssthresh   uint32

	randSeed uint32

	setCwndCalls []uint32
	setPacingCalls []uint64
	ssthreshInfiniteCalls int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		srttUS:      50_000,
		sndCwnd:     10,
		mss:         MinSegmentSize,
		cwndClamp:   1 << 20,
		maxPacing:   0,
		ticksPerSec: 1000,
		ssthresh:    0x7fffffff,
	}
}

func (h *fakeHost) SRTTUS() uint32          { return h.srttUS }
func (h *fakeHost) SndCwnd() uint32         { return h.sndCwnd }
func (h *fakeHost) MSS() uint32             { return h.mss }
func (h *fakeHost) Delivered() uint32       { return h.delivered }
func (h *fakeHost) Lost() uint32            { return h.lost }
func (h *fakeHost) DeliveredMStamp() uint64 { return h.deliveredMStampUS }
func (h *fakeHost) WstampNS() TimeNS        { return h.wstampNS }
func (h *fakeHost) ClockCacheNS() TimeNS    { return h.clockNS }
func (h *fakeHost) SndCwndClamp() uint32    { return h.cwndClamp }
func (h *fakeHost) MaxPacingRate() uint64   { return h.maxPacing }
func (h *fakeHost) PacketsInFlight() uint32 { return h.inflight }
func (h *fakeHost) JiffiesTicks() Ticks     { return h.ticks }
func (h *fakeHost) TicksPerSec() uint32     { return h.ticksPerSec }
func (h *fakeHost) SndSsthresh() uint32     { return h.ssthresh }

func (h *fakeHost) Rand() PRNG {
	return func() uint32 {
		h.randSeed = h.randSeed*1664525 + 1013904223
		return h.randSeed
	}
}

func (h *fakeHost) SetSndCwnd(segments uint32) {
	h.sndCwnd = segments
	h.setCwndCalls = append(h.setCwndCalls, segments)
}

func (h *fakeHost) SetPacingRateBPS(rate uint64) {
	h.setPacingCalls = append(h.setPacingCalls, rate)
}

func (h *fakeHost) SetSndSsthreshInfinite() {
	h.ssthresh = 0x7fffffff
	h.ssthreshInfiniteCalls++
}

// advance moves the fake clock forward by the given microseconds,
// keeping ticks, the delivered_mstamp clock, and the clock-cache ns
// clock in sync the way a real host's shared timebase would; wstampNS
// is left unchanged.
func (h *fakeHost) advance(us uint64) {
	h.deliveredMStampUS += us
	h.clockNS += TimeNS(us * 1000)
	h.ticks += Ticks(us * uint64(h.ticksPerSec) / 1_000_000)
}
