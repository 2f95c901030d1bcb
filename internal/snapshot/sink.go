package snapshot

import (
	"time"

	"itchflow/internal/book"
)

// TimeFormatter turns a raw message timestamp into a clock-time string.
type TimeFormatter func(tsNanos uint64) string

// EpochTime reproduces the historical conversion: the nanosecond value is
// divided by 1e9 and interpreted as a Unix timestamp, so the resulting
// string is anchored to 1970, not to the trading date. Kept as the
// default on purpose; use SessionTime when the session date is known.
func EpochTime(tsNanos uint64) string {
	return time.Unix(int64(tsNanos/1e9), 0).UTC().Format("15:04:05")
}

// SessionTime anchors nanoseconds-since-midnight to the given trading
// date and formats the wall-clock time in UTC.
func SessionTime(date time.Time) TimeFormatter {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return func(tsNanos uint64) string {
		return midnight.Add(time.Duration(tsNanos)).Format("15:04:05")
	}
}

// Sink receives the book state after every mutating event. The view is
// coherent at call time but only until the scanner applies the next
// mutation; sinks that retain or defer must Clone it first. A sink error
// aborts the scan.
type Sink interface {
	Snapshot(view book.View, tsNanos uint64, format TimeFormatter) error
}

// SinkFunc adapts a plain function to the Sink interface.
type SinkFunc func(view book.View, tsNanos uint64, format TimeFormatter) error

func (f SinkFunc) Snapshot(view book.View, tsNanos uint64, format TimeFormatter) error {
	return f(view, tsNanos, format)
}

// Multi fans one notification out to several sinks in order, stopping at
// the first error.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(view book.View, tsNanos uint64, format TimeFormatter) error {
		for _, s := range sinks {
			if err := s.Snapshot(view, tsNanos, format); err != nil {
				return err
			}
		}
		return nil
	})
}
