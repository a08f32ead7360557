// =============================================================================
// File: internal/congestion/host.go
// The external collaborator boundary (spec.md §6): everything the core
// reads from or writes to the host transport, plus the injected PRNG.
// The host transport integration itself is out of scope (spec.md §1) —
// this file only names the contract a host must satisfy.
// =============================================================================
package congestion

// PRNG is a non-blocking source of randomness for epoch jitter
// (spec.md §4.8, §9 "Ambient PRNG"). The host owns the generator;
// the core never seeds or blocks on one.
type PRNG func() uint32

// Host is the set of per-connection fields and actions the congestion
// core depends on but does not own. A real implementation lives in the
// host transport (out of scope here); cmd/spline-sim provides a
// synthetic one for demonstration and the test suite provides fakes.
type Host interface {
	// SRTTUS returns the host's smoothed RTT estimate in microseconds,
	// or 0 if no sample has been taken yet.
	SRTTUS() uint32

	// SndCwnd returns the host's current congestion window, in
	// segments.
	SndCwnd() uint32

	// MSS returns the host's current segment size, or 0 to use the
	// SCC_MIN_SEGMENT_SIZE default.
	MSS() uint32

	// Delivered returns the host's cumulative delivered-bytes counter.
	Delivered() uint32

	// Lost returns the host's cumulative lost-packets counter.
	Lost() uint32

	// DeliveredMStamp returns the host's delivered_mstamp in
	// microseconds.
	DeliveredMStamp() uint64

	// WstampNS returns the host's tcp_wstamp_ns (earliest-departure
	// timestamp of the next packet).
	WstampNS() TimeNS

	// ClockCacheNS returns the host's cached current time
	// (tcp_clock_cache), in nanoseconds.
	ClockCacheNS() TimeNS

	// SndCwndClamp returns the host's configured upper bound on cwnd,
	// in segments.
	SndCwndClamp() uint32

	// MaxPacingRate returns the host's configured pacing-rate ceiling,
	// in bytes/sec.
	MaxPacingRate() uint64

	// PacketsInFlight returns the number of packets the host currently
	// considers outstanding.
	PacketsInFlight() uint32

	// JiffiesTicks returns the host's coarse monotonic tick counter
	// (tcp_jiffies32).
	JiffiesTicks() Ticks

	// TicksPerSec reports the host's tick rate (its HZ), used to
	// convert SCC_MIN_RTT_WIN_SEC into ticks.
	TicksPerSec() uint32

	// Rand returns the host's non-blocking PRNG.
	Rand() PRNG

	// SetSndCwnd writes the new congestion window, in segments.
	SetSndCwnd(segments uint32)

	// SetPacingRateBPS writes the new pacing rate, in bytes/sec.
	SetPacingRateBPS(rate uint64)

	// SetSndSsthreshInfinite disables slow-start thresholding
	// (spec.md §6 "set to infinite each step").
	SetSndSsthreshInfinite()

	// SndSsthresh returns the host's currently configured ssthresh,
	// for Controller.Ssthresh to hand back.
	SndSsthresh() uint32
}

// Logger is the one piece of ambient instrumentation the core exposes —
// the original kernel module's single printk call site (spec.md SPEC_FULL
// §4). The zero value is silent; a host or demo harness may supply one.
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
