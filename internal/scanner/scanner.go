package scanner

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"itchflow/internal/book"
	"itchflow/internal/itch"
	"itchflow/internal/metrics"
	"itchflow/internal/snapshot"
	"itchflow/logger"
)

// Progress is invoked as the scan advances, with monotonically increasing
// processed byte counts. It fires at most once per reporting interval
// (0.1% of the feed, minimum one byte) and must return promptly: the
// scan loop is single-threaded and blocks on it.
type Progress func(processed, total int64)

// Result is everything a scan produces: the end-of-stream book, the
// ordered execution ledger, the stock directory seen along the way, and
// run counters.
type Result struct {
	RunID        string
	Book         *book.Store
	Ledger       *book.Ledger
	Directory    map[uint16]string
	SystemEvents []itch.SystemEvent
	Messages     uint64
	UnknownBytes uint64
}

// Scanner drives a single linear pass over a feed buffer. The zero value
// is not usable; construct with New.
type Scanner struct {
	strict   bool
	format   snapshot.TimeFormatter
	sink     snapshot.Sink
	progress Progress
	log      *logger.Entry
}

type Option func(*Scanner)

// WithStrictUnknown turns unrecognized type codes into fatal errors
// instead of one-byte resyncs.
func WithStrictUnknown() Option {
	return func(s *Scanner) { s.strict = true }
}

// WithSink delivers the book view to sink after every mutating event.
func WithSink(sink snapshot.Sink) Option {
	return func(s *Scanner) { s.sink = sink }
}

// WithProgress installs the progress callback.
func WithProgress(fn Progress) Option {
	return func(s *Scanner) { s.progress = fn }
}

// WithTimeFormatter overrides the formatter used for execution records
// and snapshot notifications. Defaults to snapshot.EpochTime.
func WithTimeFormatter(f snapshot.TimeFormatter) Option {
	return func(s *Scanner) { s.format = f }
}

func New(opts ...Option) *Scanner {
	s := &Scanner{
		format: snapshot.EpochTime,
		log:    logger.GetLogger().WithComponent("scanner"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan walks the feed byte by byte: one type-code byte, a catalog length
// lookup, a payload slice, a decode, a mutation. It stops at the end of
// the buffer, on a structural error, on a sink or callback failure, or
// when ctx is cancelled.
func (s *Scanner) Scan(ctx context.Context, data []byte) (*Result, error) {
	res := &Result{
		RunID:     uuid.New().String(),
		Book:      book.NewStore(),
		Ledger:    book.NewLedger(),
		Directory: make(map[uint16]string),
	}

	total := int64(len(data))
	interval := total / 1000
	if interval < 1 {
		interval = 1
	}
	next := interval

	s.log.WithFields(logger.Fields{
		"run_id":      res.RunID,
		"total_bytes": total,
	}).Info("starting feed scan")

	var i int64
	for i < total {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("scan cancelled at offset %d: %w", i, ctx.Err())
		default:
		}

		code := data[i]
		length, known := itch.PayloadLength(code)
		if !known {
			if s.strict {
				return nil, &UnknownTypeError{Offset: i, Type: code}
			}
			res.UnknownBytes++
			metrics.IncrementUnknownByte()
			i++
			next = s.report(i, total, next, interval)
			continue
		}
		if i+1+int64(length) > total {
			return nil, &TruncatedError{Offset: i, Type: code, Need: length, Have: total - i - 1}
		}

		payload := data[i+1 : i+1+int64(length)]
		res.Messages++
		metrics.IncrementMessage(code)

		if err := s.apply(code, payload, res); err != nil {
			return nil, err
		}

		i += 1 + int64(length)
		next = s.report(i, total, next, interval)
	}

	s.log.WithFields(logger.Fields{
		"run_id":        res.RunID,
		"messages":      res.Messages,
		"unknown_bytes": res.UnknownBytes,
		"open_orders":   res.Book.Len(),
		"executions":    res.Ledger.Len(),
	}).Info("feed scan complete")

	return res, nil
}

// apply decodes one message and applies its mutation. Mutating events
// notify the sink; stale references are silent no-ops per the protocol's
// normal variability.
func (s *Scanner) apply(code byte, payload []byte, res *Result) error {
	msg := itch.Decode(code, payload)
	if msg == nil {
		return nil
	}

	switch m := msg.(type) {
	case itch.SystemEvent:
		res.SystemEvents = append(res.SystemEvents, m)
		s.log.WithFields(logger.Fields{
			"event": string(m.EventCode),
			"nanos": m.Timestamp,
		}).Debug("system event")
		return nil

	case itch.StockDirectory:
		res.Directory[m.Locate] = m.Stock
		return nil

	case itch.AddOrder:
		res.Book.Add(book.Order{
			Ref:    m.OrderRef,
			Stock:  m.Stock,
			Price:  m.Price,
			Volume: m.Shares,
			Side:   m.Side,
		})

	case itch.ReplaceOrder:
		res.Book.Replace(m.OldRef, m.NewRef, m.Shares, m.Price)

	case itch.DeleteOrder:
		res.Book.Delete(m.OrderRef)

	case itch.ExecuteOrder:
		stock, price, ok := res.Book.Execute(m.OrderRef, m.Shares)
		if !ok {
			stock, price = book.UnknownStock, 0
		}
		s.appendExecution(res, book.Execution{
			Stock:          stock,
			Price:          price,
			Volume:         m.Shares,
			Timestamp:      s.format(m.Timestamp),
			TimestampNanos: m.Timestamp,
		})

	case itch.ExecuteWithPrice:
		if !m.Printable {
			return nil
		}
		stock, _, ok := res.Book.Execute(m.OrderRef, m.Shares)
		if !ok {
			stock = book.UnknownStock
		}
		s.appendExecution(res, book.Execution{
			Stock:          stock,
			Price:          m.Price,
			Volume:         m.Shares,
			Timestamp:      s.format(m.Timestamp),
			TimestampNanos: m.Timestamp,
		})

	case itch.Trade:
		s.appendExecution(res, book.Execution{
			Stock:          m.Stock,
			Price:          m.Price,
			Volume:         m.Shares,
			Timestamp:      s.format(m.Timestamp),
			TimestampNanos: m.Timestamp,
		})
	}

	return s.notify(res, msg.TimestampNanos())
}

func (s *Scanner) appendExecution(res *Result, e book.Execution) {
	res.Ledger.Append(e)
	metrics.IncrementExecution()
}

// notify hands the current book view to the sink. The view reflects
// exactly the mutation just applied; a sink error aborts the scan.
func (s *Scanner) notify(res *Result, tsNanos uint64) error {
	if s.sink == nil {
		return nil
	}
	metrics.IncrementSnapshot()
	if err := s.sink.Snapshot(res.Book.View(), tsNanos, s.format); err != nil {
		return fmt.Errorf("snapshot sink: %w", err)
	}
	return nil
}

// report fires the progress callback once the cursor crosses the next
// threshold, then moves the threshold past the cursor so no threshold
// fires twice.
func (s *Scanner) report(i, total, next, interval int64) int64 {
	if s.progress == nil || i < next {
		return next
	}
	s.progress(i, total)
	for next <= i {
		next += interval
	}
	return next
}
