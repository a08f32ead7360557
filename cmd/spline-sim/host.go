// =============================================================================
// File: cmd/spline-sim/host.go
// A synthetic congestion.Host: a fixed-capacity, fixed-RTT link with
// independent jitter and loss, enough to exercise startup ramp, steady
// state, and policed-link/loss scenarios (SPEC_FULL.md §5). This is the
// demo harness's stand-in for the real host transport integration
// spec.md §1 places out of scope.
// =============================================================================
package main

import (
	"math/rand"

	"github.com/bkalimollayev/spline/internal/config"
	"github.com/bkalimollayev/spline/internal/congestion"
)

// simHost is driven entirely from one goroutine (the simulation loop in
// main.go): it holds no lock, matching the single-threaded contract
// spec.md §5 places on a real host's per-connection state.
type simHost struct {
	link config.LinkConfig
	rng  *rand.Rand

	srttUS      uint32
	sndCwnd     uint32
	mss         uint32
	delivered   uint32
	lost        uint32
	deliveredMS uint64
	wstampNS    congestion.TimeNS
	clockNS     congestion.TimeNS
	cwndClamp   uint32
	maxPacing   uint64
	inflight    uint32
	ticks       congestion.Ticks
	ticksPerSec uint32
	ssthresh    uint32

	lastPacingRateBPS uint64
}

func newSimHost(link config.LinkConfig, seed int64) *simHost {
	return &simHost{
		link:        link,
		rng:         rand.New(rand.NewSource(seed)),
		srttUS:      uint32(link.BaseRTTMs) * 1000,
		sndCwnd:     10,
		mss:         1448,
		cwndClamp:   1 << 24,
		ticksPerSec: 1000,
		ssthresh:    0x7fffffff,
	}
}

func (h *simHost) SRTTUS() uint32          { return h.srttUS }
func (h *simHost) SndCwnd() uint32         { return h.sndCwnd }
func (h *simHost) MSS() uint32             { return h.mss }
func (h *simHost) Delivered() uint32       { return h.delivered }
func (h *simHost) Lost() uint32            { return h.lost }
func (h *simHost) DeliveredMStamp() uint64 { return h.deliveredMS }
func (h *simHost) WstampNS() congestion.TimeNS     { return h.wstampNS }
func (h *simHost) ClockCacheNS() congestion.TimeNS { return h.clockNS }
func (h *simHost) SndCwndClamp() uint32    { return h.cwndClamp }
func (h *simHost) MaxPacingRate() uint64   { return h.maxPacing }
func (h *simHost) PacketsInFlight() uint32 { return h.inflight }
func (h *simHost) JiffiesTicks() congestion.Ticks { return h.ticks }
func (h *simHost) TicksPerSec() uint32     { return h.ticksPerSec }
func (h *simHost) SndSsthresh() uint32     { return h.ssthresh }

func (h *simHost) Rand() congestion.PRNG {
	return func() uint32 { return h.rng.Uint32() }
}

func (h *simHost) SetSndCwnd(segments uint32)  { h.sndCwnd = segments }
func (h *simHost) SetPacingRateBPS(rate uint64) { h.lastPacingRateBPS = rate }
func (h *simHost) SetSndSsthreshInfinite()      { h.ssthresh = 0x7fffffff }

// capacityBPS is the link's current effective capacity: the policed cap
// once Policed is set, regardless of the nominal BandwidthMbps, so the
// long-term bandwidth detector has something real to converge on.
func (h *simHost) capacityBPS() float64 {
	mbps := h.link.BandwidthMbps
	if h.link.Policed {
		mbps = h.link.PolicedMbps
	}
	return mbps * 1_000_000 / 8
}

// nextRTTUS samples a round's RTT: the configured base plus symmetric
// jitter, floored at 1ms so a zero-jitter config never divides by zero
// downstream.
func (h *simHost) nextRTTUS() uint64 {
	rttMS := h.link.BaseRTTMs
	if h.link.JitterMs > 0 {
		rttMS += h.rng.Intn(2*h.link.JitterMs+1) - h.link.JitterMs
	}
	if rttMS < 1 {
		rttMS = 1
	}
	return uint64(rttMS) * 1000
}

// lossThisRound flips a loss coin scaled by the configured loss percent.
func (h *simHost) lossThisRound() bool {
	if h.link.LossPercent <= 0 {
		return false
	}
	return h.rng.Float64()*100 < h.link.LossPercent
}

// step advances the link by one RTT round: it computes how many bytes
// the link could deliver given the current cwnd and the link capacity
// (the pacing rate is not consulted), rolls
// for loss, updates the host's counters and clocks, and returns a
// RateSample ready for Controller.CongControl.
func (h *simHost) step() (*congestion.RateSample, congestion.CAState) {
	rttUS := h.nextRTTUS()
	cwndBytes := uint64(h.sndCwnd) * uint64(h.mss)
	linkBytes := uint64(h.capacityBPS() * float64(rttUS) / 1_000_000)

	deliveredBytes := cwndBytes
	if linkBytes < deliveredBytes {
		deliveredBytes = linkBytes
	}
	if deliveredBytes == 0 {
		deliveredBytes = uint64(h.mss)
	}

	lostPacket := h.lossThisRound()
	if lostPacket && deliveredBytes > uint64(h.mss) {
		deliveredBytes -= uint64(h.mss)
	}

	priorDelivered := h.delivered
	h.delivered += uint32(deliveredBytes)
	if lostPacket {
		h.lost++
	}
	h.deliveredMS += rttUS
	h.clockNS += congestion.TimeNS(rttUS * 1000)
	h.ticks += congestion.Ticks(rttUS * uint64(h.ticksPerSec) / 1_000_000)
	h.srttUS = uint32((uint64(h.srttUS)*7 + rttUS) / 8)
	h.inflight = uint32(cwndBytes / uint64(h.mss))

	rs := &congestion.RateSample{
		Delivered:      int32(deliveredBytes / uint64(h.mss)),
		IntervalUS:     int64(rttUS),
		RTTUS:          int64(rttUS),
		PriorDelivered: priorDelivered,
		PriorInFlight:  h.inflight,
		Losses:         lostPacket,
	}

	caState := congestion.CAOpen
	if lostPacket {
		caState = congestion.CALoss
	}
	return rs, caState
}
