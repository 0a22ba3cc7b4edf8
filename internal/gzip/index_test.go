package gzip

import (
	"bytes"
	"io"
	"testing"
)

func TestIndexRoundTripsThroughGob(t *testing.T) {
	idx := Index{
		{CompressedOffset: 0, UncompressedOffset: 0},
		{CompressedOffset: 128, UncompressedOffset: 4096},
		{CompressedOffset: 260, UncompressedOffset: 8192},
	}

	var buf bytes.Buffer
	if err := idx.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}

	got, err := LoadIndex(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(idx) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(idx))
	}
	for i := range idx {
		if got[i] != idx[i] {
			t.Fatalf("got[%d] = %+v, want %+v", i, got[i], idx[i])
		}
	}
}

func TestClosestPointBefore(t *testing.T) {
	idx := Index{
		{CompressedOffset: 0, UncompressedOffset: 0},
		{CompressedOffset: 100, UncompressedOffset: 1000},
		{CompressedOffset: 200, UncompressedOffset: 2000},
	}

	cases := []struct {
		offset int64
		want   Point
	}{
		{-1, Point{}},
		{500, Point{CompressedOffset: 0, UncompressedOffset: 0}},
		{1000, Point{CompressedOffset: 100, UncompressedOffset: 1000}},
		{1500, Point{CompressedOffset: 100, UncompressedOffset: 1000}},
		{5000, Point{CompressedOffset: 200, UncompressedOffset: 2000}},
	}

	for _, c := range cases {
		got := idx.closestPointBefore(c.offset)
		if got != c.want {
			t.Fatalf("closestPointBefore(%d) = %+v, want %+v", c.offset, got, c.want)
		}
	}
}

func TestIndexedReaderSeekToMemberBoundary(t *testing.T) {
	first := buildStoredMember(t, []byte("first-member-"), "", false)
	second := buildStoredMember(t, []byte("second-member"), "", false)

	var data bytes.Buffer
	data.Write(first)
	data.Write(second)
	src := bytes.NewReader(data.Bytes())

	ir := NewIndexedReader(src, nil)
	full, err := io.ReadAll(ir)
	if err != nil {
		t.Fatal(err)
	}
	if string(full) != "first-member-second-member" {
		t.Fatalf("full read = %q", full)
	}
	if len(ir.Index()) != 2 {
		t.Fatalf("len(Index()) = %d, want 2", len(ir.Index()))
	}

	if err := ir.Seek(int64(len("first-member-"))); err != nil {
		t.Fatal(err)
	}
	rest, err := io.ReadAll(ir)
	if err != nil {
		t.Fatal(err)
	}
	if string(rest) != "second-member" {
		t.Fatalf("after Seek, read = %q, want %q", rest, "second-member")
	}
}
