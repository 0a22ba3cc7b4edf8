package gzip

import (
	"bytes"
	"testing"
)

// buildStoredMember constructs a complete single-member GZIP stream
// wrapping one stored DEFLATE block containing payload, with the given
// header flags/fields. Grounded on spec.md section 4.5's field order.
func buildStoredMember(t *testing.T, payload []byte, name string, withFHCRC bool) []byte {
	t.Helper()

	var headerCRC CRC32
	var buf bytes.Buffer

	writeAndCRC := func(bs ...byte) {
		buf.Write(bs)
		headerCRC.UpdateBytes(bs)
	}

	writeAndCRC(0x1F, 0x8B, 8) // ID1, ID2, CM

	var flg byte
	if name != "" {
		flg |= flgFNAME
	}
	if withFHCRC {
		flg |= flgFHCRC
	}
	writeAndCRC(flg)
	writeAndCRC(0, 0, 0, 0) // MTIME
	writeAndCRC(0)         // XFL
	writeAndCRC(0xFF)      // OS = unknown

	if name != "" {
		writeAndCRC(append([]byte(name), 0)...)
	}

	if withFHCRC {
		sum := headerCRC.Sum() & 0xFFFF
		buf.WriteByte(byte(sum))
		buf.WriteByte(byte(sum >> 8))
	}

	var bw bitWriter
	bw.WriteBits(1, 1) // BFINAL
	bw.WriteBits(0, 2) // BTYPE = stored
	bw.AlignToByte()
	length := uint16(len(payload))
	bw.WriteByte(byte(length))
	bw.WriteByte(byte(length >> 8))
	nlen := ^length
	bw.WriteByte(byte(nlen))
	bw.WriteByte(byte(nlen >> 8))
	for _, b := range payload {
		bw.WriteByte(b)
	}
	buf.Write(bw.Bytes())

	var payloadCRC CRC32
	payloadCRC.UpdateBytes(payload)
	crc := payloadCRC.Sum()
	buf.WriteByte(byte(crc))
	buf.WriteByte(byte(crc >> 8))
	buf.WriteByte(byte(crc >> 16))
	buf.WriteByte(byte(crc >> 24))

	isize := uint32(len(payload))
	buf.WriteByte(byte(isize))
	buf.WriteByte(byte(isize >> 8))
	buf.WriteByte(byte(isize >> 16))
	buf.WriteByte(byte(isize >> 24))

	return buf.Bytes()
}

func TestMemberDecoderHeaderFields(t *testing.T) {
	data := buildStoredMember(t, []byte("payload"), "greeting.txt", true)

	br := NewBitReader(bytes.NewReader(data))
	w := NewWindowBuffer()
	md := NewMemberDecoder(br, w)
	md.VerifyHeaderCRC = true

	if err := md.Decode(); err != nil {
		t.Fatal(err)
	}

	h := md.Header()
	if h.CM != 8 {
		t.Fatalf("CM = %d, want 8", h.CM)
	}
	if h.Name != "greeting.txt" {
		t.Fatalf("Name = %q, want %q", h.Name, "greeting.txt")
	}
	if string(w.Drain()) != "payload" {
		t.Fatal("unexpected output")
	}
}

func TestMemberDecoderRejectsBadMagic(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0x00, 0x00, 8, 0, 0, 0, 0, 0, 0, 0}))
	w := NewWindowBuffer()
	md := NewMemberDecoder(br, w)
	if err := md.DecodeHeader(); err != ErrBadMagic {
		t.Fatalf("DecodeHeader() error = %v, want ErrBadMagic", err)
	}
}

func TestMemberDecoderRejectsUnsupportedMethod(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0x1F, 0x8B, 7, 0, 0, 0, 0, 0, 0, 0}))
	w := NewWindowBuffer()
	md := NewMemberDecoder(br, w)
	if err := md.DecodeHeader(); err != ErrUnsupportedMethod {
		t.Fatalf("DecodeHeader() error = %v, want ErrUnsupportedMethod", err)
	}
}

func TestMemberDecoderRejectsReservedFlagBits(t *testing.T) {
	br := NewBitReader(bytes.NewReader([]byte{0x1F, 0x8B, 8, 0x20, 0, 0, 0, 0, 0, 0}))
	w := NewWindowBuffer()
	md := NewMemberDecoder(br, w)
	if err := md.DecodeHeader(); err != ErrReservedFlag {
		t.Fatalf("DecodeHeader() error = %v, want ErrReservedFlag", err)
	}
}

func TestMemberDecoderDetectsChecksumMismatch(t *testing.T) {
	data := buildStoredMember(t, []byte("payload"), "", false)
	// Corrupt the trailer CRC32 (last 8 bytes are CRC32+ISIZE; flip a CRC byte).
	data[len(data)-8] ^= 0xFF

	br := NewBitReader(bytes.NewReader(data))
	w := NewWindowBuffer()
	md := NewMemberDecoder(br, w)
	if err := md.Decode(); err != ErrChecksumMismatch {
		t.Fatalf("Decode() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestMemberDecoderDetectsSizeMismatch(t *testing.T) {
	data := buildStoredMember(t, []byte("payload"), "", false)
	// Corrupt ISIZE (last 4 bytes).
	data[len(data)-1] ^= 0xFF

	br := NewBitReader(bytes.NewReader(data))
	w := NewWindowBuffer()
	md := NewMemberDecoder(br, w)
	if err := md.Decode(); err != ErrSizeMismatch {
		t.Fatalf("Decode() error = %v, want ErrSizeMismatch", err)
	}
}
