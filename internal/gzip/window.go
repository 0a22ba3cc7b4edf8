package gzip

// maxDistance is the largest DEFLATE back-reference distance (RFC 1951
// section 3.2.5) and therefore the minimum addressable window size.
const maxDistance = 32768

// WindowBuffer is the LZ77 sliding window for a single GZIP member: an
// append-only byte sequence, addressable by back-reference distance over
// its last maxDistance bytes, that owns the running CRC-32 for the member
// (every byte it emits - literal or back-reference - is folded into the
// checksum in emission order, matching spec section 4.6).
//
// The ring-buffer shape (hist/wrPos/full) is the same one
// awslabs-soci-snapshotter's forked compress/flate dict_decoder.go uses
// for the identical purpose. Output bytes are additionally staged in
// pending so a caller (the Driver) can drain newly produced bytes without
// tearing into ring-buffer index arithmetic itself.
type WindowBuffer struct {
	hist    []byte
	wrPos   int
	full    bool
	total   int64
	pending []byte
	crc     CRC32
}

// NewWindowBuffer returns an empty WindowBuffer sized for the maximum
// DEFLATE back-reference distance.
func NewWindowBuffer() *WindowBuffer {
	return &WindowBuffer{hist: make([]byte, maxDistance)}
}

func (w *WindowBuffer) emit(b byte) {
	w.hist[w.wrPos] = b
	w.wrPos++
	if w.wrPos == len(w.hist) {
		w.wrPos = 0
		w.full = true
	}
	w.total++
	w.pending = append(w.pending, b)
	w.crc.Update(b)
}

// Append writes one literal byte. O(1).
func (w *WindowBuffer) Append(b byte) {
	w.emit(b)
}

// CopyBack appends length bytes read from distance bytes behind the
// current write position, one byte at a time. The naive
// copy(dst, src)-style bulk copy is wrong here whenever distance <
// length: the run must be allowed to reference bytes it has itself just
// produced, which is exactly how DEFLATE encodes run-length repeats (see
// WoozyMasta-lzss/decompress.go's identical overlap branch and comment).
func (w *WindowBuffer) CopyBack(distance, length int) error {
	if distance <= 0 || int64(distance) > w.total || distance > len(w.hist) {
		return ErrInvalidDistance
	}
	for i := 0; i < length; i++ {
		srcPos := w.wrPos - distance
		if srcPos < 0 {
			srcPos += len(w.hist)
		}
		w.emit(w.hist[srcPos])
	}
	return nil
}

// TotalLength returns the number of bytes emitted so far in the member.
func (w *WindowBuffer) TotalLength() int64 {
	return w.total
}

// Tail returns the last k bytes emitted (k is clamped to what's available
// and to the window capacity). Used for debugging and by callers that
// want to inspect recently-produced output without draining it.
func (w *WindowBuffer) Tail(k int) []byte {
	if k > len(w.hist) {
		k = len(w.hist)
	}
	if int64(k) > w.total {
		k = int(w.total)
	}
	out := make([]byte, k)
	pos := w.wrPos - k
	if pos < 0 {
		pos += len(w.hist)
	}
	for i := range out {
		out[i] = w.hist[pos]
		pos++
		if pos == len(w.hist) {
			pos = 0
		}
	}
	return out
}

// Drain returns and clears the bytes produced since the last Drain call,
// for the output sink to consume. Streaming decoders drain frequently so
// this never needs to hold more than one block's worth of output at once.
func (w *WindowBuffer) Drain() []byte {
	p := w.pending
	w.pending = nil
	return p
}

// Checksum returns the CRC-32 accumulated over every byte emitted so far.
func (w *WindowBuffer) Checksum() uint32 {
	return w.crc.Sum()
}
