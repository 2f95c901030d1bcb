package itch

import "testing"

func TestCatalogCoversKnownTypes(t *testing.T) {
	if got := TypeCount(); got != 22 {
		t.Fatalf("expected 22 known message types, got %d", got)
	}

	lengths := map[byte]int{
		'S': 11, 'R': 38, 'A': 35, 'F': 39,
		'E': 30, 'C': 35, 'X': 22, 'D': 18,
		'U': 34, 'P': 43, 'Q': 39, 'I': 49,
	}
	for code, want := range lengths {
		got, ok := PayloadLength(code)
		if !ok {
			t.Errorf("type %q missing from catalog", code)
			continue
		}
		if got != want {
			t.Errorf("type %q: expected payload length %d, got %d", code, want, got)
		}
	}
}

func TestCatalogUnknownType(t *testing.T) {
	for _, code := range []byte{'Z', 'z', 0x00, 0xff} {
		if n, ok := PayloadLength(code); ok {
			t.Errorf("expected %q to be unknown, got length %d", code, n)
		}
	}
}
