package kv

import (
	randv2 "math/rand/v2"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/infra"
)

func TestHashMap_AddGetRemove(t *testing.T) {
	m := NewHashMap[string, int]()
	require.True(t, m.Add("a", 1))
	require.True(t, m.Add("b", 2))
	require.False(t, m.Add("a", 100))
	require.Equal(t, int64(2), m.Len())

	v, err := m.Get("a")
	require.NoError(t, err)
	require.Equal(t, 1, v)

	e, err := m.Remove("a")
	require.NoError(t, err)
	require.Equal(t, NewEntry("a", 1), e)
	require.False(t, m.Contains("a"))
	v, err = m.Get("b")
	require.NoError(t, err)
	require.Equal(t, 2, v)

	_, err = m.Get("missing")
	require.ErrorIs(t, err, infra.ErrNotFound)
	_, err = m.Remove("missing")
	require.ErrorIs(t, err, infra.ErrNotFound)
	require.Equal(t, int64(1), m.Len())
}

func TestHashMap_RemoveReturnsStoredEntry(t *testing.T) {
	type key struct {
		id   int
		name string
	}
	m := NewHashMap[key, string]()
	stored := key{id: 7, name: "seven"}
	require.True(t, m.Add(stored, "v"))
	e, err := m.Remove(key{id: 7, name: "seven"})
	require.NoError(t, err)
	require.Equal(t, stored, e.Key())
	require.Equal(t, "v", e.Val())
}

func TestHashMap_SetKeepsCursor(t *testing.T) {
	m := NewHashMapFrom(map[int]int{1: 1, 2: 2, 3: 3})
	c := m.Cursor()
	ok, err := c.Advance()
	require.NoError(t, err)
	require.True(t, ok)

	m.Set(1, 10)
	ok, err = c.Advance()
	require.NoError(t, err)
	require.True(t, ok)

	m.Set(4, 4)
	_, err = c.Advance()
	require.ErrorIs(t, err, infra.ErrInvalidatedCursor)
}

func TestHashMap_FailFast(t *testing.T) {
	testcases := []struct {
		name   string
		mutate func(m *HashMap[int, int])
	}{
		{"add", func(m *HashMap[int, int]) { m.Add(100, 100) }},
		{"remove", func(m *HashMap[int, int]) { _, _ = m.Remove(1) }},
		{"clear", func(m *HashMap[int, int]) { m.Clear() }},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			m := NewHashMapFrom(map[int]int{1: 1, 2: 2})
			c := m.Cursor()
			tc.mutate(m)
			_, err := c.Advance()
			require.ErrorIs(tt, err, infra.ErrInvalidatedCursor)
			c.Reset()
			_, err = c.Advance()
			require.ErrorIs(tt, err, infra.ErrInvalidatedCursor)
		})
	}
}

func TestHashMap_Cursor(t *testing.T) {
	src := map[string]int{"x": 1, "y": 2, "z": 3}
	m := NewHashMapFrom(src)
	c := m.Cursor()
	_, err := c.Current()
	require.ErrorIs(t, err, infra.ErrInvalidCursorAccess)

	entries, err := cursor.Collect(c)
	require.NoError(t, err)
	require.Len(t, entries, len(src))
	got := lo.SliceToMap(entries, func(e Entry[string, int]) (string, int) {
		return e.Key(), e.Val()
	})
	require.Equal(t, src, got)

	ok, err := c.Advance()
	require.NoError(t, err)
	require.False(t, ok)
	_, err = c.Current()
	require.ErrorIs(t, err, infra.ErrInvalidCursorAccess)

	c.Reset()
	again, err := cursor.Collect(c)
	require.NoError(t, err)
	require.ElementsMatch(t, entries, again)
}

func TestHashMap_EqualAndHash(t *testing.T) {
	pairs := lo.Map(lo.Range(500), func(i int, _ int) Entry[int, string] {
		return NewEntry(i, lo.RandomString(8, lo.LettersCharset))
	})
	m1 := NewHashMap[int, string]()
	for _, p := range pairs {
		m1.Add(p.Key(), p.Val())
	}
	m2 := NewHashMap[int, string](WithHashMapCapacity(1))
	for _, p := range lo.Shuffle(lo.Reverse(append([]Entry[int, string]{}, pairs...))) {
		m2.Add(p.Key(), p.Val())
	}
	require.True(t, m1.Equal(m2))
	require.True(t, m2.Equal(m1))
	require.Equal(t, m1.Hash(), m2.Hash())
	require.ElementsMatch(t, m1.Keys(), m2.Keys())
	require.ElementsMatch(t, m1.Values(), m2.Values())
	require.ElementsMatch(t, m1.Entries(), pairs)

	m2.Set(0, "changed")
	require.False(t, m1.Equal(m2))
	require.NotEqual(t, m1.Hash(), m2.Hash())
	m2.Set(0, pairs[0].Val())
	require.True(t, m1.Equal(m2))
	require.Equal(t, m1.Hash(), m2.Hash())

	_, err := m2.Remove(499)
	require.NoError(t, err)
	require.False(t, m1.Equal(m2))
	require.False(t, m1.Equal(nil))
	require.True(t, m1.Equal(m1))

	m1.Clear()
	m2.Clear()
	require.Equal(t, uint64(0), m1.Hash())
	require.True(t, m1.Equal(m2))
}

func TestHashMap_Randomized(t *testing.T) {
	m := NewHashMap[uint16, int]()
	ref := make(map[uint16]int)
	rng := randv2.New(randv2.NewPCG(42, 1024))
	for i := 0; i < 20_000; i++ {
		k := uint16(rng.IntN(2048))
		switch rng.IntN(4) {
		case 0:
			_, exists := ref[k]
			require.Equal(t, !exists, m.Add(k, i))
			if !exists {
				ref[k] = i
			}
		case 1:
			m.Set(k, i)
			ref[k] = i
		case 2:
			e, err := m.Remove(k)
			if v, exists := ref[k]; exists {
				require.NoError(t, err)
				require.Equal(t, NewEntry(k, v), e)
				delete(ref, k)
			} else {
				require.ErrorIs(t, err, infra.ErrNotFound)
			}
		default:
			v, err := m.Get(k)
			if exp, exists := ref[k]; exists {
				require.NoError(t, err)
				require.Equal(t, exp, v)
			} else {
				require.Error(t, err)
			}
		}
		require.Equal(t, int64(len(ref)), m.Len())
	}
	require.True(t, m.Equal(NewHashMapFrom(ref)))
	require.Equal(t, NewHashMapFrom(ref).Hash(), m.Hash())
}

func TestHashMap_Foreach(t *testing.T) {
	m := NewHashMapFrom(map[int]int{1: 1, 2: 2, 3: 3, 4: 4})
	var idxs []int64
	sum := 0
	m.Foreach(func(idx int64, key int, val int) bool {
		idxs = append(idxs, idx)
		sum += val
		return true
	})
	require.Equal(t, []int64{0, 1, 2, 3}, idxs)
	assert.Equal(t, 10, sum)
}
