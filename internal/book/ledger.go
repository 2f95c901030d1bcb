package book

// UnknownStock is recorded when an execution references an order that is
// no longer (or never was) on the book.
const UnknownStock = "UNKNOWN"

// Execution is one trade or fill, immutable once appended.
type Execution struct {
	Stock  string
	Price  float64
	Volume uint32
	// Timestamp is the clock-time string produced by the configured
	// formatter; TimestampNanos keeps the raw decoded value for
	// downstream aggregation.
	Timestamp      string
	TimestampNanos uint64
}

// Ledger is the chronological, append-only record of executions. Records
// are appended in stream order and never mutated or removed.
type Ledger struct {
	records []Execution
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Append(e Execution) {
	l.records = append(l.records, e)
}

func (l *Ledger) Len() int {
	return len(l.records)
}

// Records returns the underlying slice. Callers must treat it as read-only.
func (l *Ledger) Records() []Execution {
	return l.records
}
