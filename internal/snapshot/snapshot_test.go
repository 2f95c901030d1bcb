package snapshot

import (
	"errors"
	"testing"
	"time"

	"itchflow/internal/book"
	"itchflow/internal/itch"
)

func viewOf(t *testing.T, orders ...book.Order) book.View {
	t.Helper()
	store := book.NewStore()
	for _, o := range orders {
		store.Add(o)
	}
	return store.View()
}

func TestEpochTime(t *testing.T) {
	cases := []struct {
		nanos uint64
		want  string
	}{
		{0, "00:00:00"},
		{3_661_000_000_000, "01:01:01"},
		{34_200_000_000_000, "09:30:00"},
	}
	for _, c := range cases {
		if got := EpochTime(c.nanos); got != c.want {
			t.Errorf("EpochTime(%d) = %q, want %q", c.nanos, got, c.want)
		}
	}
}

func TestSessionTime(t *testing.T) {
	date := time.Date(2019, time.January, 30, 0, 0, 0, 0, time.UTC)
	format := SessionTime(date)

	if got := format(34_200_000_000_000); got != "09:30:00" {
		t.Errorf("expected 09:30:00, got %q", got)
	}
	if got := format(0); got != "00:00:00" {
		t.Errorf("expected 00:00:00, got %q", got)
	}
}

func TestTopOfBookPicksBestLevels(t *testing.T) {
	view := viewOf(t,
		book.Order{Ref: 1, Stock: "AAPL", Price: 150.0, Volume: 100, Side: itch.Buy},
		book.Order{Ref: 2, Stock: "AAPL", Price: 150.5, Volume: 50, Side: itch.Buy},
		book.Order{Ref: 3, Stock: "AAPL", Price: 151.2, Volume: 80, Side: itch.Sell},
		book.Order{Ref: 4, Stock: "AAPL", Price: 150.8, Volume: 60, Side: itch.Sell},
	)
	row := TopOfBook(view, 0, EpochTime)

	if !row.HasBid || row.BidPrice != 150.5 || row.BidVolume != 50 {
		t.Errorf("unexpected bid: %+v", row)
	}
	if !row.HasAsk || row.AskPrice != 150.8 || row.AskVolume != 60 {
		t.Errorf("unexpected ask: %+v", row)
	}
}

func TestTopOfBookTieBreaks(t *testing.T) {
	view := viewOf(t,
		book.Order{Ref: 1, Price: 150.0, Volume: 40, Side: itch.Buy},
		book.Order{Ref: 2, Price: 150.0, Volume: 90, Side: itch.Buy},
		book.Order{Ref: 3, Price: 151.0, Volume: 90, Side: itch.Sell},
		book.Order{Ref: 4, Price: 151.0, Volume: 40, Side: itch.Sell},
	)
	row := TopOfBook(view, 0, EpochTime)

	if row.BidVolume != 90 {
		t.Errorf("bid tie should keep larger volume, got %d", row.BidVolume)
	}
	if row.AskVolume != 40 {
		t.Errorf("ask tie should keep smaller volume, got %d", row.AskVolume)
	}
}

func TestTopOfBookEmpty(t *testing.T) {
	row := TopOfBook(viewOf(t), 0, EpochTime)
	if row.HasBid || row.HasAsk {
		t.Errorf("empty book should have no sides: %+v", row)
	}
}

func TestRecorderAppendsInOrder(t *testing.T) {
	r := NewRecorder()
	view := viewOf(t, book.Order{Ref: 1, Price: 150.0, Volume: 100, Side: itch.Buy})

	for _, ts := range []uint64{1_000_000_000, 2_000_000_000} {
		if err := r.Snapshot(view, ts, EpochTime); err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
	}

	rows := r.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Timestamp != "00:00:01" || rows[1].Timestamp != "00:00:02" {
		t.Errorf("rows out of order: %q, %q", rows[0].Timestamp, rows[1].Timestamp)
	}
}

func TestMultiStopsAtFirstError(t *testing.T) {
	boom := errors.New("sink failed")
	var afterCalled bool

	sink := Multi(
		SinkFunc(func(book.View, uint64, TimeFormatter) error { return nil }),
		SinkFunc(func(book.View, uint64, TimeFormatter) error { return boom }),
		SinkFunc(func(book.View, uint64, TimeFormatter) error { afterCalled = true; return nil }),
	)

	err := sink.Snapshot(viewOf(t), 0, EpochTime)
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if afterCalled {
		t.Error("sink after the failing one was still invoked")
	}
}

func TestThrottleDropsExcessEvents(t *testing.T) {
	var delivered int
	inner := SinkFunc(func(book.View, uint64, TimeFormatter) error {
		delivered++
		return nil
	})

	throttled := Throttle(inner, 1)
	view := viewOf(t)
	for i := 0; i < 100; i++ {
		if err := throttled.Snapshot(view, 0, EpochTime); err != nil {
			t.Fatalf("throttled snapshot failed: %v", err)
		}
	}

	if delivered != 1 {
		t.Errorf("expected 1 delivered event within the burst, got %d", delivered)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store, err := OpenStore(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	view := viewOf(t,
		book.Order{Ref: 1, Price: 150.0, Volume: 100, Side: itch.Buy},
		book.Order{Ref: 2, Price: 150.5, Volume: 80, Side: itch.Sell},
	)
	for _, ts := range []uint64{100, 200, 200, 300} {
		if err := store.Snapshot(view, ts, EpochTime); err != nil {
			t.Fatalf("snapshot at %d: %v", ts, err)
		}
	}

	entries, err := store.Range(100, 300)
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries in [100, 300), got %d", len(entries))
	}
	if entries[0].Nanos != 100 || entries[1].Nanos != 200 || entries[2].Nanos != 200 {
		t.Errorf("entries out of time order: %+v", entries)
	}
	if entries[0].BidPrice != 150.0 || entries[0].AskPrice != 150.5 || entries[0].Orders != 2 {
		t.Errorf("unexpected entry content: %+v", entries[0])
	}
}
