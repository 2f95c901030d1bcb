package snapshot

import (
	"itchflow/internal/book"
	"itchflow/internal/itch"
)

// Row is one top-of-book observation. HasBid/HasAsk distinguish an empty
// side from a zero price.
type Row struct {
	Timestamp string  `json:"timestamp"`
	BidPrice  float64 `json:"bid_price"`
	BidVolume uint32  `json:"bid_volume"`
	HasBid    bool    `json:"has_bid"`
	AskPrice  float64 `json:"ask_price"`
	AskVolume uint32  `json:"ask_volume"`
	HasAsk    bool    `json:"has_ask"`
}

// TopOfBook reduces a book view to its best bid and ask. Price ties keep
// the larger resting bid and the smaller resting ask, matching how the
// downstream pipeline ranks equal levels.
func TopOfBook(view book.View, tsNanos uint64, format TimeFormatter) Row {
	row := Row{Timestamp: format(tsNanos)}
	view.Each(func(o book.Order) {
		switch o.Side {
		case itch.Buy:
			if !row.HasBid || o.Price > row.BidPrice ||
				(o.Price == row.BidPrice && o.Volume > row.BidVolume) {
				row.BidPrice, row.BidVolume, row.HasBid = o.Price, o.Volume, true
			}
		case itch.Sell:
			if !row.HasAsk || o.Price < row.AskPrice ||
				(o.Price == row.AskPrice && o.Volume < row.AskVolume) {
				row.AskPrice, row.AskVolume, row.HasAsk = o.Price, o.Volume, true
			}
		}
	})
	return row
}

// Recorder captures the best bid and ask after every mutating event, one
// row per notification. It is the in-memory equivalent of the snapshots
// CSV the surrounding pipeline consumes.
type Recorder struct {
	rows []Row
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Snapshot(view book.View, tsNanos uint64, format TimeFormatter) error {
	r.rows = append(r.rows, TopOfBook(view, tsNanos, format))
	return nil
}

// Rows returns all captured rows in event order.
func (r *Recorder) Rows() []Row {
	return r.rows
}
