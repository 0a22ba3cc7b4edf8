package gzip

import (
	"bytes"
	"testing"
)

// TestPrefixDecoderRoundTrip builds a small canonical table (RFC 1951
// section 3.2.2's own worked example: symbols A-H with lengths
// 3,3,3,3,3,2,4,4),
// encodes every symbol with canonicalCodes, and checks Decode recovers
// each one from a concatenated bitstream.
func TestPrefixDecoderRoundTrip(t *testing.T) {
	lengths := []int{3, 3, 3, 3, 3, 2, 4, 4} // 8 symbols, varied lengths
	pd, err := BuildPrefixDecoder(lengths)
	if err != nil {
		t.Fatal(err)
	}

	codes := canonicalCodes(lengths)

	var w bitWriter
	order := []int{0, 5, 7, 2, 5, 6, 1}
	for _, sym := range order {
		c := codes[sym]
		w.WriteCode(c.value, c.length)
	}

	br := NewBitReader(bytes.NewReader(w.Bytes()))
	for _, want := range order {
		got, err := pd.Decode(br)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got != want {
			t.Fatalf("Decode() = %d, want %d", got, want)
		}
	}
}

func TestBuildPrefixDecoderRejectsOversubscribed(t *testing.T) {
	// Two symbols of length 1 is already a complete code; a third symbol
	// at length 1 oversubscribes it.
	_, err := BuildPrefixDecoder([]int{1, 1, 1})
	if err != ErrInvalidCodeLength {
		t.Fatalf("BuildPrefixDecoder() error = %v, want ErrInvalidCodeLength", err)
	}
}

func TestBuildPrefixDecoderDegenerate(t *testing.T) {
	// A single symbol at length 1 (RFC 1951's degenerate single-code case).
	pd, err := BuildPrefixDecoder([]int{1})
	if err != nil {
		t.Fatal(err)
	}

	var w bitWriter
	w.WriteBits(0, 1)
	br := NewBitReader(bytes.NewReader(w.Bytes()))

	sym, err := pd.Decode(br)
	if err != nil || sym != 0 {
		t.Fatalf("Decode() = %d, %v; want 0, nil", sym, err)
	}
}

func TestPrefixDecoderEmptyTable(t *testing.T) {
	pd, err := BuildPrefixDecoder(nil)
	if err != nil {
		t.Fatal(err)
	}
	var w bitWriter
	w.WriteBits(0, 1)
	br := NewBitReader(bytes.NewReader(w.Bytes()))
	if _, err := pd.Decode(br); err != ErrInvalidCode {
		t.Fatalf("Decode() on empty table = %v, want ErrInvalidCode", err)
	}
}
