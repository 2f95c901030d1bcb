package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"

	"itchflow/internal/book"
	"itchflow/internal/snapshot"
)

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// WriteExecutionsCSV writes the ledger in stream order.
func WriteExecutionsCSV(path string, records []book.Execution) error {
	rows := make([][]string, 0, len(records))
	for _, e := range records {
		rows = append(rows, []string{
			e.Stock,
			formatPrice(e.Price),
			strconv.FormatUint(uint64(e.Volume), 10),
			e.Timestamp,
		})
	}
	return writeCSV(path, []string{"stock", "price", "volume", "timestamp"}, rows)
}

// WriteBookCSV writes the end-of-stream book sorted by order reference so
// output files are comparable across runs.
func WriteBookCSV(path string, view book.View) error {
	var orders []book.Order
	view.Each(func(o book.Order) {
		orders = append(orders, o)
	})
	sort.Slice(orders, func(i, j int) bool { return orders[i].Ref < orders[j].Ref })

	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			strconv.FormatUint(o.Ref, 10),
			o.Stock,
			formatPrice(o.Price),
			strconv.FormatUint(uint64(o.Volume), 10),
			string(o.Side),
		})
	}
	return writeCSV(path, []string{"order_ref", "stock", "price", "volume", "side"}, rows)
}

// WriteSnapshotsCSV writes recorder rows in event order. Empty book sides
// produce empty cells, not zeroes.
func WriteSnapshotsCSV(path string, rows []snapshot.Row) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		record := []string{r.Timestamp, "", "", "", ""}
		if r.HasBid {
			record[1] = formatPrice(r.BidPrice)
			record[2] = strconv.FormatUint(uint64(r.BidVolume), 10)
		}
		if r.HasAsk {
			record[3] = formatPrice(r.AskPrice)
			record[4] = strconv.FormatUint(uint64(r.AskVolume), 10)
		}
		out = append(out, record)
	}
	header := []string{"timestamp", "best_bid_price", "best_bid_volume", "best_ask_price", "best_ask_volume"}
	return writeCSV(path, header, out)
}
