package kv

import "math/bits"

const (
	groupSize       = 16
	maxAvgGroupLoad = 14
)

// Fast16WayHashMatch returns the bitset of control bytes equal to hash.
//
// https://graphics.stanford.edu/~seander/bithacks.html##ValueInWord
// bit manipulation is inconvenient for [16]int8{}, there
// is not exists uint128 in Go.
// Otherwise, we can check the hash value like:
// (0x0101_0101_0101_0101_0101_0101_0101_0101 * hash) ^ uint128([16]int8)
// Then convert it to uint16 by byte manipulation.
func Fast16WayHashMatch(md *[groupSize]int8, hash int8) uint16 {
	res := uint16(0)
	for i := 0; i < groupSize; i++ {
		if md[i] == hash { // XOR byte.
			res |= 1 << uint(i)
		}
	}
	return res
}

func metadataMatchH2(md *swissMapMetadata, h2 h2) bitset {
	return bitset(Fast16WayHashMatch((*[groupSize]int8)(md), int8(h2)))
}

func metadataMatchEmpty(md *swissMapMetadata) bitset {
	return bitset(Fast16WayHashMatch((*[groupSize]int8)(md), empty))
}

func nextMatch(bs *bitset) uint32 {
	s := uint32(bits.TrailingZeros16(uint16(*bs)))
	*bs &= ^(1 << s) // unset bits
	return s
}
