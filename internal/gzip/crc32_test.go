package gzip

import "testing"

func TestCRC32KnownVector(t *testing.T) {
	// The canonical CRC-32 check value for the ASCII string "123456789".
	var c CRC32
	c.UpdateBytes([]byte("123456789"))
	if got, want := c.Sum(), uint32(0xCBF43926); got != want {
		t.Fatalf("Sum() = %#x, want %#x", got, want)
	}
}

func TestCRC32Empty(t *testing.T) {
	var c CRC32
	if got := c.Sum(); got != 0 {
		t.Fatalf("Sum() of untouched CRC32 = %#x, want 0", got)
	}
}

func TestCRC32ByteByByteMatchesBulk(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")

	var bulk CRC32
	bulk.UpdateBytes(data)

	var byByte CRC32
	for _, b := range data {
		byByte.Update(b)
	}

	if bulk.Sum() != byByte.Sum() {
		t.Fatalf("bulk = %#x, byte-by-byte = %#x", bulk.Sum(), byByte.Sum())
	}
}
