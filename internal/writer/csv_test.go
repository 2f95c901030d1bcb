package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"itchflow/internal/book"
	"itchflow/internal/itch"
	"itchflow/internal/snapshot"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteExecutionsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "executions.csv")
	records := []book.Execution{
		{Stock: "AAPL", Price: 150.0, Volume: 100, Timestamp: "09:30:01"},
		{Stock: book.UnknownStock, Price: 0, Volume: 10, Timestamp: "09:30:02"},
	}
	if err := WriteExecutionsCSV(path, records); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "stock" || rows[0][3] != "timestamp" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "AAPL" || rows[1][1] != "150" || rows[1][2] != "100" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	if rows[2][0] != "UNKNOWN" || rows[2][1] != "0" {
		t.Errorf("unexpected fallback row: %v", rows[2])
	}
}

func TestWriteBookCSVSortedByRef(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.csv")
	store := book.NewStore()
	store.Add(book.Order{Ref: 9, Stock: "MSFT", Price: 310.5, Volume: 20, Side: itch.Sell})
	store.Add(book.Order{Ref: 2, Stock: "AAPL", Price: 150.0, Volume: 100, Side: itch.Buy})

	if err := WriteBookCSV(path, store.View()); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "2" || rows[2][0] != "9" {
		t.Errorf("rows not sorted by ref: %v", rows[1:])
	}
	if rows[1][4] != "B" || rows[2][4] != "S" {
		t.Errorf("unexpected sides: %v", rows[1:])
	}
}

func TestWriteSnapshotsCSVEmptySides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.csv")
	rows := []snapshot.Row{
		{Timestamp: "09:30:00", BidPrice: 150.0, BidVolume: 100, HasBid: true},
		{Timestamp: "09:30:01"},
	}
	if err := WriteSnapshotsCSV(path, rows); err != nil {
		t.Fatalf("write: %v", err)
	}

	got := readCSV(t, path)
	if len(got) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(got))
	}
	if got[1][1] != "150" || got[1][3] != "" {
		t.Errorf("unexpected bid-only row: %v", got[1])
	}
	if got[2][1] != "" || got[2][3] != "" {
		t.Errorf("empty book row should have empty cells: %v", got[2])
	}
}
