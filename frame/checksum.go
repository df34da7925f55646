// https://github.com/usbarmory/enc28j60
//
// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package frame

// Checksum computes the IPv4/ICMP one's-complement 16-bit checksum over
// data: accumulate 16-bit big-endian words in a wider integer, fold
// end-around carries, then take the bitwise complement. An odd-length
// input is padded with one zero byte for the purposes of the sum only.
//
// Callers computing a checksum to embed in a header must zero the checksum
// field in data before calling Checksum.
func Checksum(data []byte) uint16 {
	return ^fold(sum16(data))
}

// VerifyChecksum reports whether data's embedded checksum is self-
// consistent: the one's-complement sum over the whole buffer (with the
// checksum field left as transmitted) folds to 0xFFFF.
func VerifyChecksum(data []byte) bool {
	return fold(sum16(data)) == 0xFFFF
}

func sum16(data []byte) uint32 {
	var sum uint32

	n := len(data)

	for i := 0; i+1 < n; i += 2 {
		sum += uint32(data[i])<<8 | uint32(data[i+1])
	}

	if n%2 == 1 {
		sum += uint32(data[n-1]) << 8
	}

	return sum
}

func fold(sum uint32) uint16 {
	for sum>>16 != 0 {
		sum = (sum & 0xFFFF) + (sum >> 16)
	}

	return uint16(sum)
}
