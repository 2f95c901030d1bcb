package writer

import (
	"bytes"
	"fmt"

	"github.com/google/uuid"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/source"
	pqwriter "github.com/xitongsys/parquet-go/writer"

	"itchflow/internal/book"
	"itchflow/internal/snapshot"
)

// ExecutionRecord represents one execution row in the parquet output.
type ExecutionRecord struct {
	Stock     string  `parquet:"name=stock, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price     float64 `parquet:"name=price, type=DOUBLE"`
	Volume    int64   `parquet:"name=volume, type=INT64"`
	Timestamp string  `parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	Nanos     int64   `parquet:"name=nanos, type=INT64"`
}

// BookRecord represents one open order in the final-book parquet output.
type BookRecord struct {
	OrderRef int64   `parquet:"name=order_ref, type=INT64"`
	Stock    string  `parquet:"name=stock, type=BYTE_ARRAY, convertedtype=UTF8"`
	Price    float64 `parquet:"name=price, type=DOUBLE"`
	Volume   int64   `parquet:"name=volume, type=INT64"`
	Side     string  `parquet:"name=side, type=BYTE_ARRAY, convertedtype=UTF8"`
}

// SnapshotRecord represents one top-of-book row in the parquet output.
type SnapshotRecord struct {
	Timestamp string  `parquet:"name=timestamp, type=BYTE_ARRAY, convertedtype=UTF8"`
	BidPrice  float64 `parquet:"name=bid_price, type=DOUBLE"`
	BidVolume int64   `parquet:"name=bid_volume, type=INT64"`
	HasBid    bool    `parquet:"name=has_bid, type=BOOLEAN"`
	AskPrice  float64 `parquet:"name=ask_price, type=DOUBLE"`
	AskVolume int64   `parquet:"name=ask_volume, type=INT64"`
	HasAsk    bool    `parquet:"name=has_ask, type=BOOLEAN"`
}

// memoryFileWriter implements ParquetFile interface for in-memory writing
type memoryFileWriter struct {
	buffer *bytes.Buffer
}

func newMemoryFileWriter() *memoryFileWriter {
	return &memoryFileWriter{
		buffer: &bytes.Buffer{},
	}
}

func (mfw *memoryFileWriter) Create(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Open(name string) (source.ParquetFile, error) {
	return mfw, nil
}

func (mfw *memoryFileWriter) Seek(offset int64, whence int) (int64, error) {
	return int64(mfw.buffer.Len()), nil
}

func (mfw *memoryFileWriter) Read(b []byte) (int, error) {
	return mfw.buffer.Read(b)
}

func (mfw *memoryFileWriter) Write(b []byte) (int, error) {
	return mfw.buffer.Write(b)
}

func (mfw *memoryFileWriter) Close() error {
	return nil
}

func (mfw *memoryFileWriter) Bytes() []byte {
	return mfw.buffer.Bytes()
}

func writeParquet(fw source.ParquetFile, sample interface{}, write func(pw *pqwriter.ParquetWriter) error) error {
	pw, err := pqwriter.NewParquetWriter(fw, sample, 2)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	if err := write(pw); err != nil {
		return err
	}
	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finalize parquet file: %w", err)
	}
	return nil
}

// WriteExecutionsParquet writes the ledger to a local parquet file.
func WriteExecutionsParquet(path string, records []book.Execution) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	return writeParquet(fw, new(ExecutionRecord), func(pw *pqwriter.ParquetWriter) error {
		for _, e := range records {
			row := ExecutionRecord{
				Stock:     e.Stock,
				Price:     e.Price,
				Volume:    int64(e.Volume),
				Timestamp: e.Timestamp,
				Nanos:     int64(e.TimestampNanos),
			}
			if err := pw.Write(row); err != nil {
				return fmt.Errorf("write execution row: %w", err)
			}
		}
		return nil
	})
}

// WriteBookParquet writes the end-of-stream book to a local parquet file.
func WriteBookParquet(path string, view book.View) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	return writeParquet(fw, new(BookRecord), func(pw *pqwriter.ParquetWriter) error {
		var werr error
		view.Each(func(o book.Order) {
			if werr != nil {
				return
			}
			row := BookRecord{
				OrderRef: int64(o.Ref),
				Stock:    o.Stock,
				Price:    o.Price,
				Volume:   int64(o.Volume),
				Side:     string(o.Side),
			}
			if err := pw.Write(row); err != nil {
				werr = fmt.Errorf("write book row: %w", err)
			}
		})
		return werr
	})
}

// WriteSnapshotsParquet writes recorder rows to a local parquet file.
func WriteSnapshotsParquet(path string, rows []snapshot.Row) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}
	defer fw.Close()

	return writeParquet(fw, new(SnapshotRecord), func(pw *pqwriter.ParquetWriter) error {
		for _, r := range rows {
			row := SnapshotRecord{
				Timestamp: r.Timestamp,
				BidPrice:  r.BidPrice,
				BidVolume: int64(r.BidVolume),
				HasBid:    r.HasBid,
				AskPrice:  r.AskPrice,
				AskVolume: int64(r.AskVolume),
				HasAsk:    r.HasAsk,
			}
			if err := pw.Write(row); err != nil {
				return fmt.Errorf("write snapshot row: %w", err)
			}
		}
		return nil
	})
}

// ExecutionsParquetBytes renders the ledger to an in-memory parquet file
// for direct upload, returning the bytes and a generated batch id.
func ExecutionsParquetBytes(records []book.Execution) ([]byte, string, error) {
	mfw := newMemoryFileWriter()
	err := writeParquet(mfw, new(ExecutionRecord), func(pw *pqwriter.ParquetWriter) error {
		for _, e := range records {
			row := ExecutionRecord{
				Stock:     e.Stock,
				Price:     e.Price,
				Volume:    int64(e.Volume),
				Timestamp: e.Timestamp,
				Nanos:     int64(e.TimestampNanos),
			}
			if err := pw.Write(row); err != nil {
				return fmt.Errorf("write execution row: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return mfw.Bytes(), uuid.New().String(), nil
}
