package gzip

// BlockDecoder is the DEFLATE state machine (spec section 4.4): it reads
// one block's 3-bit header, dispatches to the stored/fixed/dynamic
// handler, and runs the shared literal/length/distance symbol loop until
// EOB (stored blocks have no EOB; they stop when LEN bytes are read).
//
// There is deliberately no BlockDecoder struct: a block carries no state
// across calls beyond the BitReader/WindowBuffer it's handed, so this is
// a set of functions over those two, the same shape spec section 4.4
// describes ("decode_block(BitReader, WindowBuffer, Crc32) -> BFINAL").

// DecodeBlock decodes one DEFLATE block and reports whether it was the
// final block of the member (BFINAL).
func DecodeBlock(br *BitReader, w *WindowBuffer) (bfinal bool, err error) {
	finalBit, err := br.ReadBits(1)
	if err != nil {
		return false, err
	}
	bfinal = finalBit == 1

	btype, err := br.ReadBits(2)
	if err != nil {
		return false, err
	}

	switch btype {
	case 0:
		err = decodeStoredBlock(br, w)
	case 1:
		err = runSymbolLoop(br, w, fixedLitLenDecoder, fixedDistDecoder)
	case 2:
		err = decodeDynamicBlock(br, w)
	default: // 3: reserved
		err = ErrCorruptBlock
	}

	return bfinal, err
}

// decodeStoredBlock handles BTYPE=00 (spec section 4.4). There is no EOB
// marker; the block ends exactly after LEN raw bytes.
func decodeStoredBlock(br *BitReader, w *WindowBuffer) error {
	br.AlignToByte()

	length, err := br.Uint16LE()
	if err != nil {
		return err
	}
	nlen, err := br.Uint16LE()
	if err != nil {
		return err
	}
	if nlen != ^length {
		return ErrCorruptBlock
	}

	for i := 0; i < int(length); i++ {
		b, err := br.ReadByte()
		if err != nil {
			return err
		}
		w.Append(b)
	}
	return nil
}

// decodeDynamicBlock handles BTYPE=10 (spec section 4.4): reads HLIT,
// HDIST, HCLEN, the HCLEN code-length codes (placed via the fixed
// hclenOrder permutation), then decodes a single flat vector of
// HLIT+HDIST code lengths - letting a 16/17/18 repeat straddle the
// HLIT/HDIST boundary naturally, since the split only happens after the
// whole vector is filled.
func decodeDynamicBlock(br *BitReader, w *WindowBuffer) error {
	hlitRaw, err := br.ReadBits(5)
	if err != nil {
		return err
	}
	hlit := int(hlitRaw) + 257

	hdistRaw, err := br.ReadBits(5)
	if err != nil {
		return err
	}
	hdist := int(hdistRaw) + 1

	hclenRaw, err := br.ReadBits(4)
	if err != nil {
		return err
	}
	hclen := int(hclenRaw) + 4

	var clLengths [19]int
	for i := 0; i < hclen; i++ {
		l, err := br.ReadBits(3)
		if err != nil {
			return err
		}
		clLengths[hclenOrder[i]] = int(l)
	}

	clDecoder, err := BuildPrefixDecoder(clLengths[:])
	if err != nil {
		return err
	}

	total := hlit + hdist
	lens := make([]int, 0, total)

	for len(lens) < total {
		sym, err := clDecoder.Decode(br)
		if err != nil {
			return err
		}

		switch {
		case sym <= 15:
			lens = append(lens, sym)

		case sym == 16:
			if len(lens) == 0 {
				return ErrInvalidCodeLength
			}
			extra, err := br.ReadBits(2)
			if err != nil {
				return err
			}
			repeat := 3 + int(extra)
			prev := lens[len(lens)-1]
			if len(lens)+repeat > total {
				return ErrCorruptBlock
			}
			for i := 0; i < repeat; i++ {
				lens = append(lens, prev)
			}

		case sym == 17:
			extra, err := br.ReadBits(3)
			if err != nil {
				return err
			}
			repeat := 3 + int(extra)
			if len(lens)+repeat > total {
				return ErrCorruptBlock
			}
			for i := 0; i < repeat; i++ {
				lens = append(lens, 0)
			}

		case sym == 18:
			extra, err := br.ReadBits(7)
			if err != nil {
				return err
			}
			repeat := 11 + int(extra)
			if len(lens)+repeat > total {
				return ErrCorruptBlock
			}
			for i := 0; i < repeat; i++ {
				lens = append(lens, 0)
			}

		default:
			return ErrInvalidCodeLength
		}
	}

	litLenDecoder, err := BuildPrefixDecoder(lens[:hlit])
	if err != nil {
		return err
	}
	distDecoder, err := BuildPrefixDecoder(lens[hlit:])
	if err != nil {
		return err
	}

	return runSymbolLoop(br, w, litLenDecoder, distDecoder)
}

// runSymbolLoop is the literal/length/distance decode loop shared by
// fixed and dynamic blocks (spec section 4.4, "Symbol loop").
func runSymbolLoop(br *BitReader, w *WindowBuffer, litLen, dist *PrefixDecoder) error {
	for {
		sym, err := litLen.Decode(br)
		if err != nil {
			return err
		}

		switch {
		case sym < 256:
			w.Append(byte(sym))

		case sym == 256:
			return nil

		case sym <= 285:
			idx := sym - 257
			length := lengthBase[idx]
			if nb := lengthExtraBits[idx]; nb > 0 {
				extra, err := br.ReadBits(nb)
				if err != nil {
					return err
				}
				length += int(extra)
			}

			dSym, err := dist.Decode(br)
			if err != nil {
				return err
			}
			if dSym > 29 {
				return ErrInvalidDistance
			}

			distance := distBase[dSym]
			if nb := distExtraBits[dSym]; nb > 0 {
				extra, err := br.ReadBits(nb)
				if err != nil {
					return err
				}
				distance += int(extra)
			}

			if err := w.CopyBack(distance, length); err != nil {
				return err
			}

		default: // 286, 287: reserved
			return ErrCorruptBlock
		}
	}
}
