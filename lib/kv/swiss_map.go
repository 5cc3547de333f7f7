package kv

import (
	"github.com/benz9527/xcoll/lib/infra"
)

// References:
// https://www.dolthub.com/blog/2023-03-28-swiss-map/
// https://github.com/dolthub/swiss/blob/main/map.go
// https://faultlore.com/blah/hashbrown-tldr/
// https://github.com/abseil/abseil-cpp/blob/master/absl/container/internal/raw_hash_set.h

// swissMap is the hash table behind HashMap and HashSet.
// Keys live in groups of 16 slots. Each group has 16 control bytes that hold
// either the 7 bit h2 suffix of a resident key, empty or deleted (tombstone).
// A lookup probes groups linearly starting from h1 and stops at the first
// group that still has an empty slot.
/*
 index |   0    |   1    |   2    |   3    |   4    | ... |   15   |
-------|--------|--------|--------|--------|--------|     |--------|
 value | (5,7)  |        | (39,8) |        |        | ... |        |
-------|--------|--------|--------|--------|--------|     |--------|
 ctrl  |01010111|10000000|00110110|10000000|10000000| ... |10000000|
*/

const (
	h1Mask  uint64 = 0xffff_ffff_ffff_ff80
	h2Mask  uint64 = 0x0000_0000_0000_007f
	empty   int8   = -128 // 0b1000_0000, 0x80
	deleted int8   = -2   // 0b1111_1110, 0xFE

	// Keeps limit = groups * maxAvgGroupLoad inside uint32.
	maxGroups uint32 = 1 << 28
)

// A 57 bits hash prefix. Used as an index into the groups array.
type h1 uint64

// A 7 bits hash suffix. In FULL control byte format.
type h2 int8

type bitset uint16

type swissMapMetadata [groupSize]int8

type swissMapGroup[K comparable, V any] struct {
	keys [groupSize]K
	vals [groupSize]V
}

type swissMap[K comparable, V any] struct {
	ctrlMetadatas []swissMapMetadata
	groups        []swissMapGroup[K, V]
	hasher        Hasher[K]
	resident      uint32 // slots in use, tombstones included
	dead          uint32 // tombstones
	limit         uint32 // max resident slots before rehash
}

// find returns the group and slot index of key.
func (m *swissMap[K, V]) find(key K) (i, j uint32, ok bool) {
	h1, h2 := splitHash(m.hasher.Hash(key))
	i = linearProbing(h1, uint32(len(m.groups)))
	for {
		matchBitset := metadataMatchH2(&m.ctrlMetadatas[i], h2)
		for /* hash collision */ matchBitset != 0 {
			j = nextMatch(&matchBitset)
			if key == m.groups[i].keys[j] {
				return i, j, true
			}
		}
		if metadataMatchEmpty(&m.ctrlMetadatas[i]) != 0 {
			return 0, 0, false
		}
		i += 1                          // open-addressing (linear-probing) next group
		if i >= uint32(len(m.groups)) { // wrap-around
			i = 0
		}
	}
}

// insert places a key known to be absent.
func (m *swissMap[K, V]) insert(key K, val V) {
	h1, h2 := splitHash(m.hasher.Hash(key))
	i := linearProbing(h1, uint32(len(m.groups)))
	for {
		if matchBitset := metadataMatchEmpty(&m.ctrlMetadatas[i]); matchBitset != 0 {
			j := nextMatch(&matchBitset)
			m.groups[i].keys[j] = key
			m.groups[i].vals[j] = val
			m.ctrlMetadatas[i][j] = int8(h2)
			m.resident++
			return
		}
		i += 1
		if i >= uint32(len(m.groups)) {
			i = 0
		}
	}
}

// Put stores val under key and returns the value it replaced, if any.
// Only a new key may grow the table, so overwrites keep the layout.
func (m *swissMap[K, V]) Put(key K, val V) (prev V, replaced bool) {
	return m.upsert(key, val, true)
}

// PutIfAbsent stores val only if key is absent. It returns the value
// that stays in the table and whether val was inserted.
func (m *swissMap[K, V]) PutIfAbsent(key K, val V) (stored V, inserted bool) {
	prev, exists := m.upsert(key, val, false)
	if exists {
		return prev, false
	}
	return val, true
}

func (m *swissMap[K, V]) upsert(key K, val V, overwrite bool) (prev V, exists bool) {
	if i, j, ok := m.find(key); ok {
		prev = m.groups[i].vals[j]
		if overwrite {
			m.groups[i].vals[j] = val
		}
		return prev, true
	}
	if m.resident >= m.limit {
		m.rehash(m.nextCap())
	}
	m.insert(key, val)
	return prev, false
}

func (m *swissMap[K, V]) Get(key K) (val V, exists bool) {
	i, j, ok := m.find(key)
	if !ok {
		return val, false
	}
	return m.groups[i].vals[j], true
}

// Delete removes key and returns the stored key and value.
func (m *swissMap[K, V]) Delete(key K) (k K, v V, ok bool) {
	i, j, found := m.find(key)
	if !found {
		return k, v, false
	}
	k, v = m.groups[i].keys[j], m.groups[i].vals[j]
	// No probe ever went past a group with an empty slot.
	if metadataMatchEmpty(&m.ctrlMetadatas[i]) != 0 {
		m.ctrlMetadatas[i][j] = empty
		m.resident--
	} else {
		m.ctrlMetadatas[i][j] = deleted
		m.dead++
	}
	var (
		zeroK K
		zeroV V
	)
	m.groups[i].keys[j] = zeroK
	m.groups[i].vals[j] = zeroV
	return k, v, true
}

func (m *swissMap[K, V]) Foreach(action func(i uint64, key K, val V) bool) {
	oldControl, oldGroups := m.ctrlMetadatas, m.groups
	idx := uint64(0)
	for i := range oldGroups {
		for j, ctrl := range oldControl[i] {
			if ctrl == empty || ctrl == deleted {
				continue
			}
			k, v := oldGroups[i].keys[j], oldGroups[i].vals[j]
			if _continue := action(idx, k, v); !_continue {
				return
			}
			idx++
		}
	}
}

func (m *swissMap[K, V]) Clear() {
	for i := range m.ctrlMetadatas {
		m.ctrlMetadatas[i] = newEmptyMetadata()
	}
	clear(m.groups)
	m.resident, m.dead = 0, 0
}

func (m *swissMap[K, V]) Len() int64 {
	return int64(m.resident - m.dead)
}

// Cap is the number of inserts left before the next rehash.
func (m *swissMap[K, V]) Cap() int64 {
	return int64(m.limit - m.resident)
}

func (m *swissMap[K, V]) nextCap() uint32 {
	if m.dead >= (m.resident >> 1) {
		// Mostly tombstones, rehash in place.
		return uint32(len(m.groups))
	}
	newCap := uint32(len(m.groups)) * 2
	if newCap > maxGroups {
		panic(infra.NewErrorStack("[swiss-map] overflow"))
	}
	return newCap
}

func (m *swissMap[K, V]) rehash(newGroups uint32) {
	oldGroups, oldControl := m.groups, m.ctrlMetadatas
	m.groups = make([]swissMapGroup[K, V], newGroups)
	m.ctrlMetadatas = make([]swissMapMetadata, newGroups)
	for i := 0; i < len(m.groups); i++ {
		m.ctrlMetadatas[i] = newEmptyMetadata()
	}

	m.hasher = newHasher[K]()
	m.limit = newGroups * maxAvgGroupLoad
	m.resident, m.dead = 0, 0
	for i := range oldControl {
		for j := range oldControl[i] {
			ctrl := oldControl[i][j]
			if ctrl == empty || ctrl == deleted {
				continue
			}
			m.insert(oldGroups[i].keys[j], oldGroups[i].vals[j])
		}
	}
}

func (m *swissMap[K, V]) loadFactor() float64 {
	slots := float64(len(m.groups) * groupSize)
	return float64(m.resident-m.dead) / slots
}

// walker visits the slots in table order. The owning container bumps its
// stamp before any change that could move a slot.
func (m *swissMap[K, V]) walker() *swissMapWalker[K, V] {
	return &swissMapWalker[K, V]{m: m}
}

type swissMapWalker[K comparable, V any] struct {
	m    *swissMap[K, V]
	i, j int
}

func (w *swissMapWalker[K, V]) Next() (Entry[K, V], bool) {
	for w.i < len(w.m.groups) {
		for w.j < groupSize {
			j := w.j
			w.j++
			if ctrl := w.m.ctrlMetadatas[w.i][j]; ctrl == empty || ctrl == deleted {
				continue
			}
			return NewEntry(w.m.groups[w.i].keys[j], w.m.groups[w.i].vals[j]), true
		}
		w.i++
		w.j = 0
	}
	return Entry[K, V]{}, false
}

func (w *swissMapWalker[K, V]) Reset() {
	w.i, w.j = 0, 0
}

// @param capacity, how many elements will be stored in the map
func newSwissMap[K comparable, V any](capacity uint32) *swissMap[K, V] {
	groups := calcGroups(capacity)
	m := &swissMap[K, V]{
		ctrlMetadatas: make([]swissMapMetadata, groups),
		groups:        make([]swissMapGroup[K, V], groups),
		hasher:        newHasher[K](),
		resident:      0,
		dead:          0,
		limit:         groups * maxAvgGroupLoad,
	}
	for i := 0; i < len(m.ctrlMetadatas); i++ {
		m.ctrlMetadatas[i] = newEmptyMetadata()
	}
	return m
}

// calcGroups rounds up to a power of 2, linearProbing masks with groups-1.
func calcGroups(size uint32) uint32 {
	groups := (size + maxAvgGroupLoad - 1) / maxAvgGroupLoad
	if groups > maxGroups {
		groups = maxGroups
	}
	n := uint32(1)
	for n < groups {
		n <<= 1
	}
	return n
}

func newEmptyMetadata() swissMapMetadata {
	var m swissMapMetadata
	for i := 0; i < len(m); i++ {
		m[i] = empty
	}
	return m
}

func splitHash(hash uint64) (hi h1, lo h2) {
	return h1((hash & h1Mask) >> 7), h2(hash & h2Mask)
}

func linearProbing(hi h1, groups uint32) uint32 {
	return uint32(hi) & (groups - 1)
}
