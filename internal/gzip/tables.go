package gzip

// Fixed Huffman code lengths and the length/distance base+extra tables
// from RFC 1951 section 3.2.5 and 3.2.6, embedded verbatim per spec
// section 4.4. Cross-checked against the lengthBase/lengthExtra/
// offsetBase/offsetExtra tables in the forked compress/flate decoder at
// awslabs-soci-snapshotter__inflate.go, which encode the same constants.

// fixedLitLenLengths are RFC 1951 section 3.2.6's static literal/length
// code lengths: 0-143 -> 8 bits, 144-255 -> 9 bits, 256-279 -> 7 bits,
// 280-287 -> 8 bits.
var fixedLitLenLengths = func() []int {
	l := make([]int, 288)
	for i := 0; i < 144; i++ {
		l[i] = 8
	}
	for i := 144; i < 256; i++ {
		l[i] = 9
	}
	for i := 256; i < 280; i++ {
		l[i] = 7
	}
	for i := 280; i < 288; i++ {
		l[i] = 8
	}
	return l
}()

// fixedDistLengths are the 30 fixed distance codes, all of length 5.
var fixedDistLengths = func() []int {
	l := make([]int, 30)
	for i := range l {
		l[i] = 5
	}
	return l
}()

var fixedLitLenDecoder *PrefixDecoder
var fixedDistDecoder *PrefixDecoder

func init() {
	var err error
	fixedLitLenDecoder, err = BuildPrefixDecoder(fixedLitLenLengths)
	if err != nil {
		panic("gzip: invalid fixed literal/length table: " + err.Error())
	}
	fixedDistDecoder, err = BuildPrefixDecoder(fixedDistLengths)
	if err != nil {
		panic("gzip: invalid fixed distance table: " + err.Error())
	}
}

// hclenOrder is the fixed permutation (RFC 1951 section 3.2.7) that maps
// the HCLEN code-length symbols read from the stream into slots of a
// 19-entry code-length alphabet vector.
var hclenOrder = [19]int{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// lengthBase/lengthExtra give, for litlen symbols 257-285 (index 0 here
// is symbol 257), the base match length and number of extra bits to add.
var lengthBase = [29]int{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13,
	15, 17, 19, 23, 27, 31, 35, 43, 51, 59,
	67, 83, 99, 115, 131, 163, 195, 227, 258,
}
var lengthExtraBits = [29]uint{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1,
	1, 1, 2, 2, 2, 2, 3, 3, 3, 3,
	4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// distBase/distExtra give, for distance symbols 0-29, the base distance
// and number of extra bits to add.
var distBase = [30]int{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25,
	33, 49, 65, 97, 129, 193, 257, 385, 513, 769,
	1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}
var distExtraBits = [30]uint{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3,
	4, 4, 5, 5, 6, 6, 7, 7, 8, 8,
	9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}
