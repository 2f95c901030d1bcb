// Package vwap aggregates the execution ledger into time-bucketed,
// per-symbol volume weighted average prices.
package vwap

import (
	"fmt"
	"sort"
	"time"

	"itchflow/internal/book"
)

type bucket struct {
	value    float64
	quantity uint64
}

// Point is the running VWAP of one symbol at the end of one bucket.
type Point struct {
	BucketStart uint64 // nanoseconds since midnight
	VWAP        float64
}

// Aggregator buckets executions between a start and end time at a fixed
// granularity. Executions outside the window are ignored.
type Aggregator struct {
	startNanos uint64
	endNanos   uint64
	granNanos  uint64
	symbols    map[string][]bucket
}

// New builds an aggregator for the window [start, end) at the given
// granularity. start and end are offsets from session midnight.
func New(start, end, granularity time.Duration) (*Aggregator, error) {
	if granularity <= 0 {
		return nil, fmt.Errorf("granularity must be positive, got %s", granularity)
	}
	if end <= start {
		return nil, fmt.Errorf("empty window: %s..%s", start, end)
	}
	return &Aggregator{
		startNanos: uint64(start.Nanoseconds()),
		endNanos:   uint64(end.Nanoseconds()),
		granNanos:  uint64(granularity.Nanoseconds()),
		symbols:    make(map[string][]bucket),
	}, nil
}

func (a *Aggregator) bucketCount() int {
	return int((a.endNanos - a.startNanos + a.granNanos - 1) / a.granNanos)
}

// Add records one execution. Out-of-window executions are dropped.
func (a *Aggregator) Add(stock string, price float64, qty uint32, tsNanos uint64) {
	if tsNanos < a.startNanos || tsNanos >= a.endNanos {
		return
	}
	buckets, ok := a.symbols[stock]
	if !ok {
		buckets = make([]bucket, a.bucketCount())
		a.symbols[stock] = buckets
	}
	idx := (tsNanos - a.startNanos) / a.granNanos
	buckets[idx].value += price * float64(qty)
	buckets[idx].quantity += uint64(qty)
}

// AddLedger feeds every record of the ledger through Add.
func (a *Aggregator) AddLedger(l *book.Ledger) {
	for _, e := range l.Records() {
		a.Add(e.Stock, e.Price, e.Volume, e.TimestampNanos)
	}
}

// Running returns the cumulative VWAP per bucket for one symbol: each
// point covers all executions from the window start through the end of
// its bucket. Symbols with no in-window executions return nil.
func (a *Aggregator) Running(stock string) []Point {
	buckets, ok := a.symbols[stock]
	if !ok {
		return nil
	}
	points := make([]Point, len(buckets))
	var value float64
	var quantity uint64
	for i, b := range buckets {
		value += b.value
		quantity += b.quantity
		avg := 0.0
		if quantity != 0 {
			avg = value / float64(quantity)
		}
		points[i] = Point{
			BucketStart: a.startNanos + uint64(i)*a.granNanos,
			VWAP:        avg,
		}
	}
	return points
}

// Symbols returns every symbol seen, sorted.
func (a *Aggregator) Symbols() []string {
	out := make([]string, 0, len(a.symbols))
	for s := range a.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
