package book

import "itchflow/internal/itch"

// Order is the live state of a single resting order. Orders are owned
// exclusively by the Store; callers outside the scan loop only ever see
// copies through a View.
type Order struct {
	Ref    uint64
	Stock  string
	Price  float64
	Volume uint32
	Side   itch.Side
	// Timestamp stays zero for orders created from add messages; the wire
	// timestamp is delivered to snapshot sinks instead of being stored here.
	Timestamp uint64
}
