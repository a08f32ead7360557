// =============================================================================
// File: internal/congestion/sample.go
// The rate-sample contract consumed from the host on every ack
// (spec.md §3 SampleInputs, §6 external interface).
// =============================================================================
package congestion

// RateSample is the per-ack feedback record the host transport builds
// from its loss-detection and delivery-rate bookkeeping. The core never
// constructs one itself — it only reads the fields below.
type RateSample struct {
	// Delivered is the count of packets newly delivered since the last
	// sample. Negative values are invalid; callers should not call
	// CongControl with Delivered < 0, but the core treats it as "skip
	// bandwidth update" rather than panicking (spec.md §7).
	Delivered int32

	// IntervalUS is the wall-clock span the Delivered count covers.
	// Must be > 0 to be a valid observation.
	IntervalUS int64

	// RTTUS is the RTT observed for this sample, or 0 if none.
	RTTUS int64

	// AckedSacked is the number of segments acked/sacked in this event,
	// added verbatim onto the final cwnd (spec.md §4.10, §4.12).
	AckedSacked uint32

	// PriorInFlight is bytes in flight at the time this sample's
	// packets were sent.
	PriorInFlight uint32

	// PriorDelivered is the host's tp->delivered counter at the time
	// the earliest packet in this sample was sent — compared against
	// State.Delivered to detect a new RTT round (spec.md §4.4).
	PriorDelivered uint32

	Losses        bool
	IsAppLimited  bool
	IsAckDelayed  bool
}

// Valid reports whether the sample carries a usable bandwidth
// observation (spec.md §4.4, §7 "Invalid sample").
func (rs *RateSample) Valid() bool {
	return rs != nil && rs.Delivered >= 0 && rs.IntervalUS > 0
}
