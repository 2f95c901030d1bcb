package feed

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.itch")
	content := []byte{'A', 0x01, 0x02, 0x03}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if !bytes.Equal(f.Bytes(), content) {
		t.Errorf("mapped bytes differ: %v", f.Bytes())
	}
	if f.Size() != int64(len(content)) {
		t.Errorf("size = %d, want %d", f.Size(), len(content))
	}
}

func TestOpenGzipFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.itch.gz")
	content := []byte{'E', 0xff, 0x00, 0x10}

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(content); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if !bytes.Equal(f.Bytes(), content) {
		t.Errorf("decompressed bytes differ: %v", f.Bytes())
	}
}

func TestOpenEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.itch")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	if f.Size() != 0 {
		t.Errorf("expected empty feed, got %d bytes", f.Size())
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "missing.itch")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.itch")
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}

	f, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
