package gzip

import (
	"bytes"
	"testing"
)

func TestReadBitsLSBFirst(t *testing.T) {
	// 0b10110010 read 3 bits at a time LSB-first: 010, 110, 10 (2 bits left)
	br := NewBitReader(bytes.NewReader([]byte{0xB2}))

	v, err := br.ReadBits(3)
	if err != nil || v != 0x2 {
		t.Fatalf("first ReadBits(3) = %d, %v; want 2, nil", v, err)
	}
	v, err = br.ReadBits(3)
	if err != nil || v != 0x6 {
		t.Fatalf("second ReadBits(3) = %d, %v; want 6, nil", v, err)
	}
	v, err = br.ReadBits(2)
	if err != nil || v != 0x2 {
		t.Fatalf("third ReadBits(2) = %d, %v; want 2, nil", v, err)
	}
}

func TestPeekBitsDoesNotConsume(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xAA}))

	peeked, err := br.PeekBits(4)
	if err != nil {
		t.Fatal(err)
	}
	read, err := br.ReadBits(4)
	if err != nil {
		t.Fatal(err)
	}
	if peeked != read {
		t.Fatalf("PeekBits() = %d, ReadBits() = %d; want equal", peeked, read)
	}
}

func TestDropConsumesPeekedBits(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xFF, 0x00}))

	if _, err := br.PeekBits(4); err != nil {
		t.Fatal(err)
	}
	br.Drop(4)
	v, err := br.ReadBits(4)
	if err != nil || v != 0xF {
		t.Fatalf("ReadBits(4) after Drop(4) = %d, %v; want 15, nil", v, err)
	}
}

func TestAlignToByteAndReadByte(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xFF, 0x42}))

	if _, err := br.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	br.AlignToByte()
	b, err := br.ReadByte()
	if err != nil || b != 0x42 {
		t.Fatalf("ReadByte() after align = %#x, %v; want 0x42, nil", b, err)
	}
}

func TestReadByteFailsWhenNotAligned(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0xFF, 0x42}))

	if _, err := br.ReadBits(3); err != nil {
		t.Fatal(err)
	}
	if _, err := br.ReadByte(); err != ErrCorruptBlock {
		t.Fatalf("ReadByte() while misaligned = %v, want ErrCorruptBlock", err)
	}
}

func TestUint16LEAndUint32LE(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}))

	v16, err := br.Uint16LE()
	if err != nil || v16 != 0x0201 {
		t.Fatalf("Uint16LE() = %#x, %v; want 0x0201, nil", v16, err)
	}
	v32, err := br.Uint32LE()
	if err != nil || v32 != 0x06050403 {
		t.Fatalf("Uint32LE() = %#x, %v; want 0x06050403, nil", v32, err)
	}
}

func TestReadBitsUnexpectedEOF(t *testing.T) {
	br := NewBitReader(bytes.NewReader(nil))
	if _, err := br.ReadBits(1); err != ErrUnexpectedEOF {
		t.Fatalf("ReadBits on empty input = %v, want ErrUnexpectedEOF", err)
	}
}
