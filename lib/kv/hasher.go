package kv

import (
	"hash/maphash"
	"math/bits"
)

// Hasher spreads keys over the swiss table groups.
// Every table owns its seed and picks a new one on rehash.
type Hasher[K comparable] struct {
	seed maphash.Seed
}

func (h Hasher[K]) Hash(key K) uint64 {
	return maphash.Comparable(h.seed, key)
}

func newHasher[K comparable]() Hasher[K] {
	return Hasher[K]{
		seed: maphash.MakeSeed(),
	}
}

// contentSeed is shared by all containers of the process, so equal
// contents always produce equal container hashes.
var contentSeed = maphash.MakeSeed()

// ContentHash is the hash of a single element as it is summed into the
// running hash of a container.
func ContentHash[T comparable](item T) uint64 {
	return maphash.Comparable(contentSeed, item)
}

func entryHash[K comparable, V comparable](key K, val V) uint64 {
	return ContentHash(key) ^ bits.RotateLeft64(ContentHash(val), 29)
}
