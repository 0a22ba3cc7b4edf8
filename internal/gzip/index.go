package gzip

import (
	"bufio"
	"encoding/gob"
	"io"
	"sort"
)

// tellByteReader wraps an io.Reader in a bufio.Reader while counting
// bytes actually consumed from the underlying source, so a caller can
// recover a precise compressed-stream offset even though BitReader (and
// bufio underneath it) reads ahead in chunks. Grounded on the vendored
// gzran's tellReader, same shape and same reason: Seek(0, io.SeekCurrent)
// on the raw source would report bytes already buffered ahead, not bytes
// actually decoded.
type tellByteReader struct {
	r      *bufio.Reader
	offset int64
}

func newTellByteReader(r io.Reader) *tellByteReader {
	return &tellByteReader{r: bufio.NewReader(r)}
}

func (t *tellByteReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	t.offset += int64(n)
	return n, err
}

func (t *tellByteReader) ReadByte() (byte, error) {
	b, err := t.r.ReadByte()
	if err == nil {
		t.offset++
	}
	return b, err
}

func (t *tellByteReader) Offset() int64 {
	return t.offset
}

// Index collects member-boundary offset Points, recorded as an
// IndexedReader decodes forward. Grounded on the vendored gzran.Index
// this package otherwise replaces; the shape (LoadIndex, WriteTo,
// closestPointBefore, gob encoding) is the same, but Point no longer
// carries serialized decompressor state - see the package comment on
// IndexedReader for why.
type Index []Point

// Point records that the member starting at CompressedOffset in the
// source produces uncompressed output starting at UncompressedOffset.
// Unlike the teacher's Point, there is no DecompressorState: because
// internal/gzip never resumes mid-member (spec section 6 - the core
// never seeks), a Point is fully described by the pair of offsets. A
// fresh Reader positioned at CompressedOffset reconstructs everything
// else by decoding the member from its own header.
type Point struct {
	CompressedOffset   int64
	UncompressedOffset int64
}

// LoadIndex deserializes an Index from r.
func LoadIndex(r io.Reader) (Index, error) {
	dec := gob.NewDecoder(r)
	idx := make(Index, 0)
	err := dec.Decode(&idx)
	return idx, err
}

// WriteTo serializes idx to w. It can be read back with LoadIndex.
func (idx Index) WriteTo(w io.Writer) error {
	enc := gob.NewEncoder(w)
	return enc.Encode(idx)
}

func (idx Index) lastUncompressedOffset() int64 {
	if len(idx) == 0 {
		return 0
	}
	return idx[len(idx)-1].UncompressedOffset
}

// closestPointBefore returns the Point with the greatest
// UncompressedOffset not exceeding offset, or the zero Point if none
// qualifies (resume from the start).
func (idx Index) closestPointBefore(offset int64) Point {
	j := sort.Search(len(idx), func(j int) bool {
		return idx[j].UncompressedOffset > offset
	})
	if j == 0 {
		return Point{}
	}
	return idx[j-1]
}

// IndexedReader wraps a Reader over a seekable source and adds
// member-boundary resume: it records a Point at the start of every
// member it decodes, and Seek reopens the source at the closest recorded
// (or newly discovered) member boundary at or before a target
// uncompressed offset, then decodes forward from there, discarding
// output up to the exact target so the next Read starts precisely at it.
type IndexedReader struct {
	src io.ReadSeeker
	idx Index
	r   *Reader

	skip int64 // bytes still to discard after the current Seek
}

// NewIndexedReader constructs an IndexedReader over src, seeded with any
// Points already known (e.g. loaded via LoadIndex from a prior run).
func NewIndexedReader(src io.ReadSeeker, idx Index) *IndexedReader {
	return &IndexedReader{src: src, idx: idx}
}

// Index returns the Points recorded so far.
func (z *IndexedReader) Index() Index {
	return z.idx
}

func (z *IndexedReader) recordPoint(compressedOffset, uncompressedOffset int64) {
	if n := len(z.idx); n > 0 && z.idx[n-1].CompressedOffset >= compressedOffset {
		return
	}
	z.idx = append(z.idx, Point{
		CompressedOffset:   compressedOffset,
		UncompressedOffset: uncompressedOffset,
	})
}

// Seek repositions the reader so the next Read returns bytes starting at
// uncompressedOffset in the decompressed stream. It reopens src at the
// closest known member boundary at or before that offset (or the start,
// if none is known yet) and decodes forward from there.
func (z *IndexedReader) Seek(uncompressedOffset int64) error {
	if uncompressedOffset < 0 {
		return ErrInvalidDistance
	}

	point := z.idx.closestPointBefore(uncompressedOffset)
	if _, err := z.src.Seek(point.CompressedOffset, io.SeekStart); err != nil {
		return err
	}

	// The new Reader counts offsets from point, not from the source start.
	z.r = NewIndexingReader(z.src, func(compressedOffset, uncompressedOffset int64) {
		z.recordPoint(point.CompressedOffset+compressedOffset, point.UncompressedOffset+uncompressedOffset)
	})
	z.skip = uncompressedOffset - point.UncompressedOffset
	return nil
}

// Read implements io.Reader, discarding bytes still owed by a prior
// Seek and recording a fresh Point whenever decoding crosses into a
// member this IndexedReader has not seen before.
func (z *IndexedReader) Read(p []byte) (int, error) {
	if z.r == nil {
		z.r = NewIndexingReader(z.src, z.recordPoint)
	}

	for z.skip > 0 {
		discard := z.skip
		if discard > 4096 {
			discard = 4096
		}
		n, err := z.r.Read(make([]byte, discard))
		z.skip -= int64(n)
		if err != nil {
			return 0, err
		}
	}

	return z.r.Read(p)
}
