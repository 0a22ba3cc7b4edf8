package gzip

import (
	"bufio"
	"io"
)

// BitReader wraps a byte stream and yields 1-16 bits at a time, LSB-first
// for numeric fields and bit-by-bit for prefix-code matching.
//
// The accumulator shape (bits/nbits, fill-until-enough-then-mask) is the
// same one this module's own vendored inflate_state.go names B/Nb, and
// the one Argonauts-inc-deckcodec/internal/bitio.go's Reader.ReadBits
// builds by hand: bits are OR'd into the low end of the accumulator as
// whole bytes arrive, and extraction masks off the low n bits.
type BitReader struct {
	src   io.ByteReader
	bits  uint64 // bit accumulator, LSB-aligned: bit 0 of the stream is bit 0 here
	nbits uint   // number of valid bits currently in bits
}

// NewBitReader constructs a BitReader over r. If r does not already
// implement io.ByteReader, it is wrapped in a bufio.Reader, matching the
// fallback gzran's tellReader and the forked compress/flate Reader both use.
func NewBitReader(r io.Reader) *BitReader {
	if br, ok := r.(io.ByteReader); ok {
		return &BitReader{src: br}
	}
	return &BitReader{src: bufio.NewReader(r)}
}

// fill ensures at least n valid bits are buffered, reading whole bytes
// from the source as needed. n must be <= 57 so the uint64 accumulator
// never overflows when a full byte is OR'd in.
func (b *BitReader) fill(n uint) error {
	for b.nbits < n {
		c, err := b.src.ReadByte()
		if err != nil {
			if err == io.EOF {
				return ErrUnexpectedEOF
			}
			return err
		}
		b.bits |= uint64(c) << b.nbits
		b.nbits += 8
	}
	return nil
}

// ReadBits reads k bits (0 <= k <= 16) and assembles them LSB-first: the
// first bit read becomes bit 0 of the result. Used for numeric fields
// (LEN, NLEN, HLIT/HDIST/HCLEN, extra length/distance bits, ISIZE, CRC32).
func (b *BitReader) ReadBits(k uint) (uint32, error) {
	if k == 0 {
		return 0, nil
	}
	if err := b.fill(k); err != nil {
		return 0, err
	}
	v := uint32(b.bits & (1<<k - 1))
	b.bits >>= k
	b.nbits -= k
	return v, nil
}

// PeekBits returns the next k bits without consuming them.
func (b *BitReader) PeekBits(k uint) (uint32, error) {
	if k == 0 {
		return 0, nil
	}
	if err := b.fill(k); err != nil {
		return 0, err
	}
	return uint32(b.bits & (1<<k - 1)), nil
}

// Drop consumes k bits that have already been validated via PeekBits,
// without re-checking availability.
func (b *BitReader) Drop(k uint) {
	b.bits >>= k
	b.nbits -= k
}

// NextBit reads a single bit for prefix-code matching. Callers matching a
// canonical Huffman code assemble successive NextBit results MSB-first
// (code = code<<1 | bit), since canonical codes are defined by increasing
// bit order left-to-right - the opposite convention from ReadBits.
func (b *BitReader) NextBit() (uint32, error) {
	return b.ReadBits(1)
}

// ReadSymbolBits reads k bits one at a time and assembles them MSB-first:
// the first bit read becomes the high bit of the result. Exposed for
// symmetry with ReadBits and for testing; PrefixDecoder.Decode uses
// NextBit directly so it can test a partial code against the table after
// every bit instead of committing to a fixed width up front.
func (b *BitReader) ReadSymbolBits(k uint) (uint32, error) {
	var v uint32
	for i := uint(0); i < k; i++ {
		bit, err := b.NextBit()
		if err != nil {
			return 0, err
		}
		v = v<<1 | bit
	}
	return v, nil
}

// AlignToByte discards 0-7 bits so the next read starts on a byte boundary.
func (b *BitReader) AlignToByte() {
	drop := b.nbits % 8
	b.bits >>= drop
	b.nbits -= drop
}

// ReadByte reads one raw, byte-aligned byte. It fails if the reader is not
// currently byte-aligned (call AlignToByte first).
func (b *BitReader) ReadByte() (byte, error) {
	if b.nbits%8 != 0 {
		return 0, ErrCorruptBlock
	}
	v, err := b.ReadBits(8)
	if err != nil {
		return 0, err
	}
	return byte(v), nil
}

// ReadBytes reads n raw, byte-aligned bytes.
func (b *BitReader) ReadBytes(n int) ([]byte, error) {
	out := make([]byte, n)
	for i := range out {
		c, err := b.ReadByte()
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Uint16LE reads a 16-bit little-endian numeric field (two byte-aligned
// reads, low byte first) - the wire representation of LEN, NLEN, XLEN,
// and FHCRC's stored CRC16.
func (b *BitReader) Uint16LE() (uint16, error) {
	buf, err := b.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}

// Uint32LE reads a 32-bit little-endian numeric field - MTIME, CRC32, ISIZE.
func (b *BitReader) Uint32LE() (uint32, error) {
	buf, err := b.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}
