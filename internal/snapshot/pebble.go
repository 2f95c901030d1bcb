package snapshot

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cockroachdb/pebble"

	"itchflow/internal/book"
)

// Entry is the persisted form of one snapshot, keyed by event time.
type Entry struct {
	Timestamp string  `json:"timestamp"`
	Nanos     uint64  `json:"nanos"`
	Orders    int     `json:"orders"`
	BidPrice  float64 `json:"bid_price"`
	BidVolume uint32  `json:"bid_volume"`
	HasBid    bool    `json:"has_bid"`
	AskPrice  float64 `json:"ask_price"`
	AskVolume uint32  `json:"ask_volume"`
	HasAsk    bool    `json:"has_ask"`
}

// Store persists one entry per mutating event in a pebble database keyed
// by (timestamp, sequence). The sequence suffix keeps events with equal
// timestamps from overwriting each other, and the big-endian key layout
// makes time-range iteration a plain key scan.
type Store struct {
	db  *pebble.DB
	seq uint64
}

func OpenStore(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func key(tsNanos, seq uint64) []byte {
	k := make([]byte, 17)
	k[0] = 't'
	binary.BigEndian.PutUint64(k[1:9], tsNanos)
	binary.BigEndian.PutUint64(k[9:17], seq)
	return k
}

func (s *Store) Snapshot(view book.View, tsNanos uint64, format TimeFormatter) error {
	top := TopOfBook(view, tsNanos, format)
	e := Entry{
		Timestamp: top.Timestamp,
		Nanos:     tsNanos,
		Orders:    view.Len(),
		BidPrice:  top.BidPrice,
		BidVolume: top.BidVolume,
		HasBid:    top.HasBid,
		AskPrice:  top.AskPrice,
		AskVolume: top.AskVolume,
		HasAsk:    top.HasAsk,
	}

	val, err := json.Marshal(&e)
	if err != nil {
		return fmt.Errorf("encode snapshot entry: %w", err)
	}
	if err := s.db.Set(key(tsNanos, s.seq), val, pebble.NoSync); err != nil {
		return fmt.Errorf("write snapshot entry: %w", err)
	}
	s.seq++
	return nil
}

// Range returns all entries with fromNanos <= t < toNanos in time order.
func (s *Store) Range(fromNanos, toNanos uint64) ([]Entry, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: key(fromNanos, 0),
		UpperBound: key(toNanos, 0),
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot range iterator: %w", err)
	}
	defer iter.Close()

	var out []Entry
	for iter.First(); iter.Valid(); iter.Next() {
		var e Entry
		if err := json.Unmarshal(iter.Value(), &e); err != nil {
			return nil, fmt.Errorf("decode snapshot entry: %w", err)
		}
		out = append(out, e)
	}
	return out, iter.Error()
}
