// =============================================================================
// File: internal/congestion/fixedmath.go
// Fixed-point helpers shared by the bandwidth, gain and cwnd arithmetic.
// =============================================================================
package congestion

import "math/bits"

const (
	// BBRScale is the fractional scale used for gains (~0..4x).
	BBRScale = 8
	// BBRUnit represents 1.0 in BBRScale fixed point.
	BBRUnit = 1 << BBRScale

	// BWScale is the fractional scale used for bandwidth and ratio values.
	BWScale = 24
	// BWUnit represents 1.0 in BWScale fixed point.
	BWUnit = 1 << BWScale
)

// mulU64Saturating multiplies two u64 operands and saturates at the u64
// maximum instead of wrapping; callers narrow the result to u32 with
// saturateU32, per spec.md's overflow policy (§4.1, §7).
func mulU64Saturating(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return ^uint64(0)
	}
	return lo
}

// saturateU32 clamps a u64 product down to the u32 range.
func saturateU32(v uint64) uint32 {
	if v > 0xFFFFFFFF {
		return 0xFFFFFFFF
	}
	return uint32(v)
}

// divU64 performs integer division, substituting floor for a zero
// denominator instead of panicking — callers pass the nominal floor
// appropriate to the quantity being divided (MIN_BW, MIN_RTT_US, 1, ...).
func divU64(num, den, floor uint64) uint64 {
	if den == 0 {
		den = floor
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// ceilDivU64 is divU64 rounded up, used for the BDP target.
func ceilDivU64(num, den uint64) uint64 {
	if den == 0 {
		return 0
	}
	return (num + den - 1) / den
}

func maxU32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func minU32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxU64(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func clampU32(v, lo, hi uint32) uint32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absDiffU32(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

// bbrGainToBWGain re-expresses a BBRScale gain (256 == 1.0) in BWScale
// units (2^24 == 1.0) so a single scc_bdp implementation can take
// either a pacing gain or a cwnd gain (spec.md §4.12
// scc_is_next_cycle_phase, which runs the same bdp() against both).
func bbrGainToBWGain(gainBBR uint32) uint32 {
	return saturateU32(divU64(uint64(gainBBR)*uint64(BWUnit), BBRUnit, 1))
}
