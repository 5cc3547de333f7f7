package tree

import (
	randv2 "math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/infra"
	"github.com/benz9527/xcoll/lib/kv"
)

type version struct {
	major, minor int
}

func (v version) CompareTo(o version) int64 {
	if v.major != o.major {
		return int64(v.major - o.major)
	}
	return int64(v.minor - o.minor)
}

func (v version) String() string {
	return strconv.Itoa(v.major) + "." + strconv.Itoa(v.minor)
}

type intKey int

func (k intKey) CompareTo(o intKey) int64 {
	return int64(k) - int64(o)
}

func TestOrderedMap_AddGetRemove(t *testing.T) {
	m := NewOrderedMap[string, int]()
	require.True(t, m.Add("a", 1))
	require.True(t, m.Add("b", 2))
	require.NoError(t, m.CheckInvariants())

	e, err := m.Remove("a")
	require.NoError(t, err)
	require.Equal(t, kv.NewEntry("a", 1), e)
	require.False(t, m.Contains("a"))
	v, err := m.Get("b")
	require.NoError(t, err)
	require.Equal(t, 2, v)
	require.NoError(t, m.CheckInvariants())

	_, err = m.Remove("a")
	require.ErrorIs(t, err, infra.ErrNotFound)
	require.Equal(t, int64(1), m.Len())
}

func TestOrderedMap_GetMissing(t *testing.T) {
	m := NewOrderedMap[string, int]()
	_, err := m.Get("missing")
	require.ErrorIs(t, err, infra.ErrNotFound)
	var es infra.ErrorStack
	require.ErrorAs(t, err, &es)
	require.NotEmpty(t, es.Frames())

	_, err = m.Min()
	require.ErrorIs(t, err, infra.ErrNotFound)
	_, err = m.Max()
	require.ErrorIs(t, err, infra.ErrNotFound)
}

func TestOrderedMap_AddKeepsValue(t *testing.T) {
	m := NewOrderedMap[int, string]()
	require.True(t, m.Add(1, "first"))
	require.False(t, m.Add(1, "second"))
	require.Equal(t, int64(1), m.Len())
	v, err := m.Get(1)
	require.NoError(t, err)
	require.Equal(t, "first", v)

	m.Set(1, "third")
	v, err = m.Get(1)
	require.NoError(t, err)
	require.Equal(t, "third", v)
	require.Equal(t, int64(1), m.Len())

	m.Set(2, "inserted")
	require.Equal(t, int64(2), m.Len())
	require.Equal(t, []int{1, 2}, m.Keys())
	require.Equal(t, []string{"third", "inserted"}, m.Values())
	require.NoError(t, m.CheckInvariants())
}

func TestOrderedMap_ReverseComparator(t *testing.T) {
	reverse := func(i, j int) int64 {
		return int64(j - i)
	}
	m := NewOrderedMapFunc[int, string](reverse)
	for _, k := range []int{1, 2, 3} {
		m.Add(k, strconv.Itoa(k))
	}
	require.Equal(t, []int{3, 2, 1}, m.Keys())

	desc := NewOrderedMap[int, string](WithDescending())
	for _, k := range []int{2, 1, 3} {
		desc.Add(k, strconv.Itoa(k))
	}
	require.Equal(t, []int{3, 2, 1}, desc.Keys())
	minEntry, err := desc.Min()
	require.NoError(t, err)
	require.Equal(t, 3, minEntry.Key())
	maxEntry, err := desc.Max()
	require.NoError(t, err)
	require.Equal(t, 1, maxEntry.Key())
	require.True(t, m.Equal(desc))
}

func TestOrderedMap_NilComparator(t *testing.T) {
	require.Panics(t, func() {
		NewOrderedMapFunc[int, int](nil)
	})
}

func TestOrderedMap_SelfOrder(t *testing.T) {
	m := NewOrderedMapSelf[version, string]()
	m.Add(version{1, 10}, "c")
	m.Add(version{1, 2}, "b")
	m.Add(version{0, 9}, "a")
	require.Equal(t, []string{"a", "b", "c"}, m.Values())
	require.Equal(t, []version{{0, 9}, {1, 2}, {1, 10}}, m.Keys())
	require.NoError(t, m.CheckInvariants())
}

func TestOrderedMap_SameShapeForEveryStrategy(t *testing.T) {
	natural := NewOrderedMap[int, int]()
	external := NewOrderedMapFunc[int, int](func(i, j int) int64 {
		switch {
		case i < j:
			return -1
		case i > j:
			return 1
		}
		return 0
	})
	self := NewOrderedMapSelf[intKey, int]()

	rng := randv2.New(randv2.NewPCG(7, 11))
	for i := 0; i < 2_000; i++ {
		k := rng.IntN(500)
		if rng.IntN(4) == 0 {
			_, err1 := natural.Remove(k)
			_, err2 := external.Remove(k)
			_, err3 := self.Remove(intKey(k))
			require.Equal(t, err1 == nil, err2 == nil)
			require.Equal(t, err1 == nil, err3 == nil)
			continue
		}
		natural.Add(k, i)
		external.Add(k, i)
		self.Add(intKey(k), i)
	}

	var b1, b2, b3 strings.Builder
	require.NoError(t, natural.Dump(&b1))
	require.NoError(t, external.Dump(&b2))
	require.NoError(t, self.Dump(&b3))
	require.Equal(t, b1.String(), b2.String())
	require.Equal(t, b1.String(), b3.String())
	require.Equal(t, natural.Depth(), self.Depth())
}

func TestOrderedMap_InvariantsAfterEveryOp(t *testing.T) {
	m := NewOrderedMap[uint32, uint32]()
	ref := make(map[uint32]uint32)
	rng := randv2.New(randv2.NewPCG(2024, 4202))
	for i := uint32(0); i < 3_000; i++ {
		k := uint32(rng.IntN(300))
		switch rng.IntN(3) {
		case 0:
			e, err := m.Remove(k)
			if v, ok := ref[k]; ok {
				require.NoError(t, err)
				require.Equal(t, kv.NewEntry(k, v), e)
				require.False(t, m.Contains(k))
				delete(ref, k)
			} else {
				require.ErrorIs(t, err, infra.ErrNotFound)
			}
		case 1:
			m.Set(k, i)
			ref[k] = i
		default:
			_, exists := ref[k]
			require.Equal(t, !exists, m.Add(k, i))
			if !exists {
				ref[k] = i
			}
		}
		require.NoError(t, m.CheckInvariants())
		require.Equal(t, int64(len(ref)), m.Len())
	}

	keys := lo.Keys(ref)
	require.ElementsMatch(t, keys, m.Keys())
	var prev uint32
	m.Foreach(func(idx int64, key uint32, val uint32) bool {
		if idx > 0 {
			require.Less(t, prev, key)
		}
		prev = key
		require.Equal(t, ref[key], val)
		return true
	})
}

func TestOrderedMap_RoundTrip(t *testing.T) {
	m := NewOrderedMap[int, string]()
	for i := 0; i < 100; i += 2 {
		m.Add(i, "v")
	}
	for k := 1; k < 100; k += 2 {
		require.True(t, m.Add(k, strconv.Itoa(k)))
		e, err := m.Remove(k)
		require.NoError(t, err)
		require.Equal(t, kv.NewEntry(k, strconv.Itoa(k)), e)
		require.False(t, m.Contains(k))
	}
	require.Equal(t, int64(50), m.Len())
	require.NoError(t, m.CheckInvariants())
}

func TestOrderedMap_Equal(t *testing.T) {
	pairs := lo.Map(lo.Range(200), func(i int, _ int) kv.Entry[int, []byte] {
		return kv.NewEntry(i*3, []byte(strconv.Itoa(i)))
	})
	m1 := NewOrderedMap[int, []byte]()
	for _, p := range pairs {
		m1.Add(p.Key(), p.Val())
	}
	m2 := NewOrderedMap[int, []byte]()
	for _, p := range lo.Shuffle(append([]kv.Entry[int, []byte]{}, pairs...)) {
		m2.Add(p.Key(), p.Val())
	}
	require.True(t, m1.Equal(m2))
	require.True(t, m2.Equal(m1))
	require.True(t, m1.Equal(m1))

	desc := NewOrderedMap[int, []byte](WithDescending())
	for _, p := range pairs {
		desc.Add(p.Key(), p.Val())
	}
	require.True(t, m1.Equal(desc))

	m2.Set(0, []byte("other"))
	require.False(t, m1.Equal(m2))
	byLen := func(a, b []byte) bool {
		return len(a) == len(b)
	}
	m2.Set(0, []byte("x"))
	require.True(t, m1.Equal(m2, byLen))

	_, err := m2.Remove(3)
	require.NoError(t, err)
	require.False(t, m1.Equal(m2))
	require.False(t, m1.Equal(nil))
}

func TestOrderedMap_EqualHashMap(t *testing.T) {
	om := NewOrderedMap[string, int]()
	hm := kv.NewHashMap[string, int]()
	for i, k := range []string{"x", "a", "m", "q"} {
		om.Add(k, i)
		hm.Add(k, i)
	}
	require.True(t, om.Equal(hm))
	require.True(t, hm.Equal(om))
	hm.Set("q", 100)
	require.False(t, om.Equal(hm))
	require.False(t, hm.Equal(om))
}

func TestOrderedMap_Cursor(t *testing.T) {
	m := NewOrderedMap[int, int]()
	c := m.Cursor()
	ok, err := c.Advance()
	require.NoError(t, err)
	require.False(t, ok)

	for _, k := range []int{5, 1, 3} {
		m.Add(k, k*10)
	}
	c = m.Cursor()
	_, err = c.Current()
	require.ErrorIs(t, err, infra.ErrInvalidCursorAccess)

	entries, err := cursor.Collect(c)
	require.NoError(t, err)
	require.Equal(t, []kv.Entry[int, int]{
		kv.NewEntry(1, 10), kv.NewEntry(3, 30), kv.NewEntry(5, 50),
	}, entries)
	_, err = c.Current()
	require.ErrorIs(t, err, infra.ErrInvalidCursorAccess)
	ok, err = c.Advance()
	require.NoError(t, err)
	require.False(t, ok)

	c.Reset()
	ok, err = c.Advance()
	require.NoError(t, err)
	require.True(t, ok)
	e, err := c.Current()
	require.NoError(t, err)
	require.Equal(t, 1, e.Key())

	// An in place overwrite keeps the cursor alive.
	m.Set(3, 33)
	ok, err = c.Advance()
	require.NoError(t, err)
	require.True(t, ok)
	e, err = c.Current()
	require.NoError(t, err)
	require.Equal(t, kv.NewEntry(3, 33), e)
}

func TestOrderedMap_FailFast(t *testing.T) {
	testcases := []struct {
		name   string
		mutate func(m *OrderedMap[int, int])
	}{
		{"add", func(m *OrderedMap[int, int]) { m.Add(100, 1) }},
		{"set new key", func(m *OrderedMap[int, int]) { m.Set(100, 1) }},
		{"remove", func(m *OrderedMap[int, int]) { _, _ = m.Remove(2) }},
		{"clear", func(m *OrderedMap[int, int]) { m.Clear() }},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			m := NewOrderedMap[int, int]()
			for i := 0; i < 4; i++ {
				m.Add(i, i)
			}
			c := m.Cursor()
			ok, err := c.Advance()
			require.NoError(tt, err)
			require.True(tt, ok)

			tc.mutate(m)
			_, err = c.Advance()
			require.ErrorIs(tt, err, infra.ErrInvalidatedCursor)
			_, err = c.Current()
			require.ErrorIs(tt, err, infra.ErrInvalidCursorAccess)
			c.Reset()
			_, err = c.Advance()
			require.ErrorIs(tt, err, infra.ErrInvalidatedCursor)
		})
	}

	// A failed add or remove is not a mutation.
	m := NewOrderedMap[int, int]()
	m.Add(1, 1)
	c := m.Cursor()
	m.Add(1, 2)
	_, err := m.Remove(7)
	require.Error(t, err)
	ok, err := c.Advance()
	require.NoError(t, err)
	require.True(t, ok)
}

func TestOrderedMap_ClearAndDepth(t *testing.T) {
	m := NewOrderedMap[int, int]()
	for i := 0; i < 1_000; i++ {
		m.Add(i, i)
	}
	assert.LessOrEqual(t, m.Depth(), 20)
	assert.GreaterOrEqual(t, m.Depth(), 10)
	require.Len(t, m.Entries(), 1_000)

	calls := 0
	m.Foreach(func(idx int64, key int, val int) bool {
		calls++
		return idx < 9
	})
	require.Equal(t, 10, calls)

	m.Clear()
	require.Equal(t, int64(0), m.Len())
	require.Equal(t, 0, m.Depth())
	require.Empty(t, m.Keys())
	require.NoError(t, m.CheckInvariants())
	require.True(t, m.Add(1, 1))
}
