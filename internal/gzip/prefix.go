package gzip

// maxCodeLength is the largest code length DEFLATE allows (RFC 1951
// section 3.2.2): code lengths are stored in 4 bits (dynamic header) or
// implied by the fixed tables, both bounded at 15.
const maxCodeLength = 15

// PrefixDecoder is an immutable canonical-Huffman decoder built from a
// vector of code lengths (spec section 3, "PrefixDecoder"). Symbols
// sharing a length are assigned consecutive codes in ascending
// symbol-index order, so - for a given length - the Nth assigned code
// (by numeric value) is also the Nth symbol encountered while scanning
// the length vector left to right. That lets Decode index straight into
// a per-length symbol slice instead of walking a tree.
//
// This is the same canonical-assignment algorithm the forked
// compress/flate huffmanDecoder in awslabs-soci-snapshotter__inflate.go
// implements (there via a two-level chunk/link table for speed); the
// version here follows spec section 4.2's literal per-bit contract
// instead, which the spec explicitly allows ("a two-level table is
// acceptable; the contract is the same").
type PrefixDecoder struct {
	minCode    [maxCodeLength + 1]uint32 // first code assigned at this length
	symbols    [maxCodeLength + 1][]uint16
	minLen     int // shortest length with at least one symbol, 0 if none
	maxLen     int
	numSymbols int
}

// BuildPrefixDecoder constructs a PrefixDecoder from lengths[i], the code
// length (0-15) assigned to symbol i. A length of 0 means the symbol is
// absent from the alphabet.
func BuildPrefixDecoder(lengths []int) (*PrefixDecoder, error) {
	var count [maxCodeLength + 1]int
	for _, l := range lengths {
		if l < 0 || l > maxCodeLength {
			return nil, ErrInvalidCodeLength
		}
		count[l]++
	}
	// Absent symbols (length 0) take no part in code assignment.
	count[0] = 0

	pd := &PrefixDecoder{}

	// Canonical code assignment (spec section 3): first_code[1] = 0;
	// first_code[L] = (first_code[L-1] + count[L-1]) << 1.
	var code uint32
	var nextCode [maxCodeLength + 1]uint32
	for l := 1; l <= maxCodeLength; l++ {
		code = (code + uint32(count[l-1])) << 1
		nextCode[l] = code
		pd.minCode[l] = code
	}

	for sym, l := range lengths {
		if l == 0 {
			continue
		}
		if nextCode[l] >= 1<<uint(l) {
			return nil, ErrInvalidCodeLength
		}
		pd.symbols[l] = append(pd.symbols[l], uint16(sym))
		nextCode[l]++
		pd.numSymbols++
		if pd.minLen == 0 || l < pd.minLen {
			pd.minLen = l
		}
		if l > pd.maxLen {
			pd.maxLen = l
		}
	}

	return pd, nil
}

// Decode reads one symbol from br. It reads one bit at a time, appending
// each to a code accumulated MSB-first (the first bit read is the code's
// high bit, per spec section 6's framing rule for prefix codes), and
// checks the accumulated code against each length's assigned range as
// soon as enough bits have been read for that length to be plausible.
func (pd *PrefixDecoder) Decode(br *BitReader) (int, error) {
	if pd.numSymbols == 0 {
		return 0, ErrInvalidCode
	}

	var code uint32
	for l := 1; l <= maxCodeLength; l++ {
		bit, err := br.NextBit()
		if err != nil {
			return 0, err
		}
		code = code<<1 | bit

		syms := pd.symbols[l]
		if len(syms) == 0 {
			continue
		}
		if code >= pd.minCode[l] && code-pd.minCode[l] < uint32(len(syms)) {
			return int(syms[code-pd.minCode[l]]), nil
		}
	}

	return 0, ErrInvalidCode
}
