package tree

import (
	"errors"
	randv2 "math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xcoll/lib/infra"
)

type checkData struct {
	color RBColor
	key   uint64
}

func requireColors(t *testing.T, tree *rbTree[uint64, uint64], expected []checkData) {
	t.Helper()
	require.Equal(t, int64(len(expected)), tree.Len())
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, expected[idx].color, color, "key %d", key)
		require.Equal(t, expected[idx].key, key)
		return true
	})
	require.NoError(t, tree.checkInvariants())
}

func TestNilNode(t *testing.T) {
	var nilNode RBNode[uint64, uint64] = nil
	require.True(t, nilNode == nil)

	var nilNode2 *rbNode[uint64, uint64] = nil
	nilNode = nilNode2
	require.True(t, nilNode != nil)
	require.Nil(t, nilNode)
	require.Nil(t, nilNode2.Left())
	require.Nil(t, nilNode2.Right())
}

func TestRBColorString(t *testing.T) {
	require.Equal(t, "Black", Black.String())
	require.Equal(t, "Red", Red.String())
	require.Equal(t, "RBColor(7)", RBColor(7).String())
}

func TestRbtreeBalance_ColorSequence(t *testing.T) {
	tree := newRBTree[uint64, uint64](infra.NaturalOrder[uint64]())

	require.True(t, tree.Insert(52, 1))
	requireColors(t, tree, []checkData{{Black, 52}})

	// lbal, no rotation
	require.True(t, tree.Insert(47, 1))
	requireColors(t, tree, []checkData{{Red, 47}, {Black, 52}})

	// lbal, left-left single rotation
	require.True(t, tree.Insert(3, 1))
	requireColors(t, tree, []checkData{{Black, 3}, {Black, 47}, {Black, 52}})
	require.Equal(t, uint64(47), tree.root.key)

	require.True(t, tree.Insert(35, 1))
	requireColors(t, tree, []checkData{{Black, 3}, {Red, 35}, {Black, 47}, {Black, 52}})

	// rbal, right-left double rotation
	require.True(t, tree.Insert(20, 1))
	requireColors(t, tree, []checkData{{Black, 3}, {Red, 20}, {Black, 35}, {Black, 47}, {Black, 52}})
	require.Equal(t, uint64(20), tree.root.left.key)

	// equal key, nothing changes
	require.False(t, tree.Insert(35, 2))
	requireColors(t, tree, []checkData{{Black, 3}, {Red, 20}, {Black, 35}, {Black, 47}, {Black, 52}})
	require.Equal(t, uint64(1), tree.search(35).val)

	// root removal goes through join
	removed := tree.Remove(47)
	require.NotNil(t, removed)
	require.Equal(t, uint64(47), removed.key)
	require.Nil(t, removed.left)
	require.Nil(t, removed.right)
	requireColors(t, tree, []checkData{{Black, 3}, {Black, 20}, {Black, 35}, {Red, 52}})
	require.Equal(t, uint64(20), tree.root.key)

	// black leaf removal goes through balLeft and rbal
	require.NotNil(t, tree.Remove(3))
	requireColors(t, tree, []checkData{{Black, 20}, {Black, 35}, {Black, 52}})
	require.Equal(t, uint64(35), tree.root.key)

	require.Nil(t, tree.Remove(3))
	require.Equal(t, int64(3), tree.Len())
}

func TestRbtreeJoin(t *testing.T) {
	red := func(key int, l, r *rbNode[int, int]) *rbNode[int, int] {
		return &rbNode[int, int]{key: key, left: l, right: r, color: Red}
	}
	black := func(key int, l, r *rbNode[int, int]) *rbNode[int, int] {
		return &rbNode[int, int]{key: key, left: l, right: r, color: Black}
	}

	require.Nil(t, join[int, int](nil, nil))
	single := black(1, nil, nil)
	require.Same(t, single, join(nil, single))
	require.Same(t, single, join(single, nil))

	// red, black: descends through the red side
	root := join(red(1, nil, nil), black(3, nil, nil))
	require.Equal(t, 1, root.key)
	require.Equal(t, 3, root.right.key)

	// black, black with a red spine result
	root = join(black(2, nil, red(3, nil, nil)), black(6, red(5, nil, nil), nil))
	require.Equal(t, Red, root.color)
	tree := &rbTree[int, int]{root: root, count: 4, cmp: infra.NaturalOrder[int]()}
	root.color = Black
	require.NoError(t, tree.checkInvariants())
	var keys []int
	tree.Foreach(func(_ int64, _ RBColor, key int, _ int) bool {
		keys = append(keys, key)
		return true
	})
	require.Equal(t, []int{2, 3, 5, 6}, keys)
}

func TestRbtree_ScenarioInsertOrder(t *testing.T) {
	tree := newRBTree[int, struct{}](infra.NaturalOrder[int]())
	for _, k := range []int{5, 3, 8, 1, 4, 7, 9, 2, 6} {
		require.True(t, tree.Insert(k, struct{}{}))
		require.NoError(t, tree.checkInvariants())
	}
	var keys []int
	tree.Foreach(func(idx int64, _ RBColor, key int, _ struct{}) bool {
		require.Equal(t, int64(key-1), idx)
		keys = append(keys, key)
		return true
	})
	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, keys)
	require.Equal(t, 1, tree.minimum().key)
	require.Equal(t, 9, tree.maximum().key)
}

func rbtreeRandomInsertAndRemoveRunCore(t *testing.T, total int, keyRange int, checkEvery int) {
	rng := randv2.New(randv2.NewPCG(uint64(total), uint64(keyRange)))
	tree := newRBTree[int, int](infra.NaturalOrder[int]())
	ref := make(map[int]int, keyRange)
	for i := 0; i < total; i++ {
		k := rng.IntN(keyRange)
		if rng.IntN(3) == 0 {
			removed := tree.Remove(k)
			if v, ok := ref[k]; ok {
				require.NotNil(t, removed)
				require.Equal(t, k, removed.key)
				require.Equal(t, v, removed.val)
				delete(ref, k)
			} else {
				require.Nil(t, removed)
			}
		} else {
			_, exists := ref[k]
			require.Equal(t, !exists, tree.Insert(k, i))
			if !exists {
				ref[k] = i
			}
		}
		require.Equal(t, int64(len(ref)), tree.Len())
		if i%checkEvery == 0 {
			require.NoError(t, tree.checkInvariants())
		}
	}
	require.NoError(t, tree.checkInvariants())
	for k, v := range ref {
		node := tree.search(k)
		require.NotNil(t, node)
		require.Equal(t, v, node.val)
	}
}

func TestRbtreeRandomInsertAndRemove(t *testing.T) {
	testcases := []struct {
		name       string
		total      int
		keyRange   int
		checkEvery int
	}{
		{"dense keys, check every op", 5_000, 256, 1},
		{"sparse keys, check every op", 5_000, 1 << 20, 1},
		{"large", 200_000, 20_000, 997},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			rbtreeRandomInsertAndRemoveRunCore(tt, tc.total, tc.keyRange, tc.checkEvery)
		})
	}
}

func TestRbtreeSequentialInsertAndRelease(t *testing.T) {
	insertTotal := uint64(100_000)
	tree := newRBTree[uint64, uint64](infra.NaturalOrder[uint64]())

	rand := uint64(randv2.Uint32() % 1_000)
	for i := uint64(0); i < insertTotal; i++ {
		tree.Insert(i, 1)
		if i%1000 == rand {
			require.NoError(t, RedViolationValidate[uint64, uint64](tree))
			require.NoError(t, BlackViolationValidate[uint64, uint64](tree))
		}
	}
	tree.Foreach(func(idx int64, color RBColor, key uint64, val uint64) bool {
		require.Equal(t, uint64(idx), key)
		return true
	})
	// Height of a red-black tree is at most 2*log2(n+1).
	require.LessOrEqual(t, tree.depth(), 2*17)

	for i := uint64(0); i < insertTotal; i += 2 {
		require.NotNil(t, tree.Remove(i))
	}
	require.NoError(t, tree.checkInvariants())
	require.Equal(t, int64(insertTotal/2), tree.Len())

	tree.Release()
	require.Equal(t, int64(0), tree.Len())
	require.Nil(t, tree.Root())
	require.Equal(t, 0, tree.depth())
}

func TestRbtreeReverseSequentialRemove(t *testing.T) {
	total := int64(10_000)
	tree := newRBTree[int64, uint64](infra.ReverseOrder(infra.NaturalOrder[int64]()))
	for i := int64(0); i < total; i++ {
		tree.Insert(i, 1)
	}
	tree.Foreach(func(idx int64, color RBColor, key int64, val uint64) bool {
		require.Equal(t, total-1-idx, key)
		return true
	})
	for i := total - 1; i >= 0; i-- {
		require.NotNil(t, tree.Remove(i))
		if i%500 == 0 {
			require.NoError(t, tree.checkInvariants())
		}
	}
	require.Nil(t, tree.root)
	require.Equal(t, int64(0), tree.Len())
}

func TestRbtreeWalker(t *testing.T) {
	tree := newRBTree[int, string](infra.NaturalOrder[int]())
	w := tree.walker()
	w.Reset()
	_, ok := w.Next()
	require.False(t, ok)

	for _, k := range []int{4, 2, 6, 1, 3, 5, 7} {
		tree.Insert(k, strings.Repeat("x", k))
	}
	for round := 0; round < 2; round++ {
		w.Reset()
		for i := 1; i <= 7; i++ {
			e, ok := w.Next()
			require.True(t, ok)
			require.Equal(t, i, e.Key())
			require.Equal(t, strings.Repeat("x", i), e.Val())
		}
		_, ok = w.Next()
		require.False(t, ok)
	}
}

func TestRbtreeDump(t *testing.T) {
	tree := newRBTree[uint64, uint64](infra.NaturalOrder[uint64]())
	var builder strings.Builder
	require.NoError(t, tree.Dump(&builder))
	require.Equal(t, "<empty>\n", builder.String())

	for _, k := range []uint64{52, 47, 3, 35, 20} {
		tree.Insert(k, 0)
	}
	builder.Reset()
	require.NoError(t, tree.Dump(&builder))
	expected := " /----- 52 (B)\n" +
		"47 (B)\n" +
		" |      " + " /----- 35 (B)\n" +
		" \\----- 20 (R)\n" +
		"        " + " \\----- 3 (B)\n"
	require.Equal(t, expected, builder.String())
}

func TestViolationValidate(t *testing.T) {
	cmp := infra.NaturalOrder[int]()
	node := func(key int, color RBColor, l, r *rbNode[int, int]) *rbNode[int, int] {
		return &rbNode[int, int]{key: key, color: color, left: l, right: r}
	}

	tree := &rbTree[int, int]{cmp: cmp}
	require.NoError(t, tree.checkInvariants())

	tree = &rbTree[int, int]{root: node(2, Red, nil, nil), count: 1, cmp: cmp}
	err := tree.checkInvariants()
	require.ErrorIs(t, err, ErrRootViolation)

	tree = &rbTree[int, int]{root: node(3, Black, node(2, Red, node(1, Red, nil, nil), nil), nil), count: 3, cmp: cmp}
	err = tree.checkInvariants()
	require.ErrorIs(t, err, ErrRedViolation)
	require.False(t, errors.Is(err, ErrBlackViolation))
	require.False(t, errors.Is(err, ErrOrderViolation))

	tree = &rbTree[int, int]{root: node(2, Black, node(1, Black, nil, nil), nil), count: 2, cmp: cmp}
	require.ErrorIs(t, BlackViolationValidate[int, int](tree), ErrBlackViolation)
	require.NoError(t, RedViolationValidate[int, int](tree))

	tree = &rbTree[int, int]{root: node(2, Black, node(3, Red, nil, nil), node(1, Red, nil, nil)), count: 3, cmp: cmp}
	require.ErrorIs(t, tree.checkInvariants(), ErrOrderViolation)

	tree = &rbTree[int, int]{root: node(2, Black, node(1, Red, nil, nil), node(3, Red, nil, nil)), count: 5, cmp: cmp}
	require.ErrorIs(t, tree.checkInvariants(), ErrSizeViolation)
}

func BenchmarkRBTree_Random(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := newRBTree[int, []byte](infra.NaturalOrder[int]())

	rngArr := make([]int, 0, b.N)
	for i := 0; i < b.N; i++ {
		rngArr = append(rngArr, randv2.Int())
	}

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(rngArr[i], testByBytes)
	}
}

func BenchmarkRBTree_Serial(b *testing.B) {
	testByBytes := []byte(`abc`)

	b.StopTimer()
	tree := newRBTree[int, []byte](infra.NaturalOrder[int]())

	b.StartTimer()
	for i := 0; i < b.N; i++ {
		tree.Insert(i, testByBytes)
	}
}
