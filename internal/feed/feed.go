// Package feed maps a raw ITCH feed file into memory for the scanner.
// Plain files are memory-mapped read-only; gzip files are decompressed
// into a buffer since a compressed stream cannot be mapped directly.
package feed

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	mmap "github.com/edsrzf/mmap-go"
)

// Feed is a read-only view over the bytes of one feed file.
type Feed struct {
	data   []byte
	mapped mmap.MMap
	file   *os.File
}

// Open maps path into memory. Files ending in .gz are gunzipped into a
// heap buffer instead.
func Open(path string) (*Feed, error) {
	if strings.HasSuffix(path, ".gz") {
		return openGzip(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat feed: %w", err)
	}
	if info.Size() == 0 {
		return &Feed{file: f}, nil
	}

	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("map feed: %w", err)
	}
	return &Feed{data: m, mapped: m, file: f}, nil
}

func openGzip(path string) (*Feed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gunzip feed: %w", err)
	}
	defer zr.Close()

	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return &Feed{data: data}, nil
}

// Bytes returns the full feed contents. The slice must be treated as
// read-only; for mapped files it aliases the page cache.
func (f *Feed) Bytes() []byte {
	return f.data
}

func (f *Feed) Size() int64 {
	return int64(len(f.data))
}

func (f *Feed) Close() error {
	var err error
	if f.mapped != nil {
		err = f.mapped.Unmap()
		f.mapped = nil
	}
	if f.file != nil {
		if cerr := f.file.Close(); err == nil {
			err = cerr
		}
		f.file = nil
	}
	f.data = nil
	return err
}
