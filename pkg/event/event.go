// Package event implements the event-range encoding helper spec.md §9
// calls for: event IDs whose low-order bits are all zero or all one
// denote a range rather than a single discrete event, and every handler
// that enumerates producer/consumer ranges should go through one place
// instead of re-deriving the bit math.
package event

import (
	"math/bits"

	olcb "github.com/openlcb-go/golcb"
)

// Range describes a normalized event range: Base is the first event ID in
// the range and Count is how many consecutive event IDs it covers. A
// non-range (discrete) event reports Count == 1.
type Range struct {
	Base  olcb.EventID
	Count uint64
}

// Decode inspects an event ID's trailing bits to determine whether it
// encodes a range. Trailing zero bits (...xxxx0...0) or trailing one bits
// (...xxxx1...1) both denote "don't care" low bits sized 2^n; a plain
// event has no such run longer than implied by bit 0 itself.
func Decode(id olcb.EventID) (r Range, isRange bool) {
	v := uint64(id)
	if v == 0 {
		return Range{Base: id, Count: 1}, false
	}
	tz := bits.TrailingZeros64(v)
	to := bits.TrailingZeros64(^v)

	n := tz
	if to > tz {
		n = to
	}
	if n == 0 {
		return Range{Base: id, Count: 1}, false
	}
	count := uint64(1) << n
	base := v &^ (count - 1)
	return Range{Base: olcb.EventID(base), Count: count}, true
}

// Encode builds the range-encoded event ID for a base and a power-of-two
// count, using the trailing-zero form: the low n = log2(count) bits of
// the result are cleared. The caller-supplied base's bit n must already be
// set (the "marker bit" immediately above the wildcard run) or the
// resulting ID decodes as a larger range than intended — callers
// constructing a fresh range should pick base as (some aligned value |
// count), not an arbitrary address.
func Encode(base olcb.EventID, count uint64) olcb.EventID {
	if count <= 1 {
		return base
	}
	n := bits.Len64(count - 1)
	mask := olcb.EventID(1)<<uint(n) - 1
	return base &^ mask
}

// Contains reports whether id falls within the range's span.
func (r Range) Contains(id olcb.EventID) bool {
	return uint64(id) >= uint64(r.Base) && uint64(id) < uint64(r.Base)+r.Count
}
