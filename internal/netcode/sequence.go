package netcode

// Sequence is a wrapping 16-bit input/ack sequence number.
type Sequence = uint16

// IsAhead reports whether b is ahead of a under the circular-distance rule:
// b is ahead of a iff (b-a) mod 2^16 lies in (0, 2^15).
func IsAhead(a, b Sequence) bool {
	d := uint16(b - a)
	return d != 0 && d < 1<<15
}

// IsStale reports whether seq is stale relative to lastProcessed, i.e.
// seq <= lastProcessed under circular ordering.
func IsStale(seq, lastProcessed Sequence) bool {
	return !IsAhead(lastProcessed, seq)
}
