package tree

import (
	"io"
	"reflect"

	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/infra"
	"github.com/benz9527/xcoll/lib/kv"
)

type orderedMapConfig struct {
	isDesc bool
}

type OrderedMapOption func(cfg *orderedMapConfig)

// WithDescending reverses the ordering the container was built with.
func WithDescending() OrderedMapOption {
	return func(cfg *orderedMapConfig) {
		cfg.isDesc = true
	}
}

var _ kv.Map[int, string] = (*OrderedMap[int, string])(nil)

// OrderedMap keeps unique keys sorted by a comparator fixed at construction.
// Not safe for concurrent use.
type OrderedMap[K any, V any] struct {
	tree  *rbTree[K, V]
	stamp cursor.Stamp
}

// NewOrderedMap orders keys by the built-in ordering of K.
func NewOrderedMap[K infra.OrderedKey, V any](opts ...OrderedMapOption) *OrderedMap[K, V] {
	return NewOrderedMapFunc[K, V](infra.NaturalOrder[K](), opts...)
}

// NewOrderedMapSelf orders keys by their CompareTo method.
func NewOrderedMapSelf[K infra.Comparable[K], V any](opts ...OrderedMapOption) *OrderedMap[K, V] {
	return NewOrderedMapFunc[K, V](infra.SelfOrder[K](), opts...)
}

// NewOrderedMapFunc orders keys by cmp, which must be a total order.
func NewOrderedMapFunc[K any, V any](cmp infra.OrderedKeyComparator[K], opts ...OrderedMapOption) *OrderedMap[K, V] {
	if cmp == nil {
		panic(infra.NewErrorStack("[ordered-map] nil comparator"))
	}
	cfg := &orderedMapConfig{}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.isDesc {
		cmp = infra.ReverseOrder(cmp)
	}
	return &OrderedMap[K, V]{
		tree: newRBTree[K, V](cmp),
	}
}

// Add inserts the pair if key is absent. An existing value is kept.
func (m *OrderedMap[K, V]) Add(key K, val V) bool {
	if !m.tree.Insert(key, val) {
		return false
	}
	m.stamp.Bump()
	return true
}

// Set overwrites the value of an existing key in place or inserts the pair.
// An overwrite does not change the tree shape or invalidate cursors.
func (m *OrderedMap[K, V]) Set(key K, val V) {
	if node := m.tree.search(key); node != nil {
		node.val = val
		return
	}
	m.tree.Insert(key, val)
	m.stamp.Bump()
}

func (m *OrderedMap[K, V]) Get(key K) (V, error) {
	node := m.tree.search(key)
	if node == nil {
		var zero V
		return zero, infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[ordered-map] get")
	}
	return node.val, nil
}

func (m *OrderedMap[K, V]) Contains(key K) bool {
	return m.tree.contains(key)
}

// Remove deletes key and returns the entry that was stored for it.
func (m *OrderedMap[K, V]) Remove(key K) (kv.Entry[K, V], error) {
	node := m.tree.Remove(key)
	if node == nil {
		return kv.Entry[K, V]{}, infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[ordered-map] remove")
	}
	m.stamp.Bump()
	return kv.NewEntry(node.key, node.val), nil
}

func (m *OrderedMap[K, V]) Len() int64 {
	return m.tree.Len()
}

func (m *OrderedMap[K, V]) Clear() {
	m.tree.Release()
	m.stamp.Bump()
}

// Foreach visits the entries in order until action returns false.
func (m *OrderedMap[K, V]) Foreach(action func(idx int64, key K, val V) bool) {
	m.tree.Foreach(func(idx int64, _ RBColor, key K, val V) bool {
		return action(idx, key, val)
	})
}

// Cursor walks the entries in order.
func (m *OrderedMap[K, V]) Cursor() cursor.Cursor[kv.Entry[K, V]] {
	return cursor.New[kv.Entry[K, V]](&m.stamp, m.tree.walker())
}

func (m *OrderedMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.Foreach(func(_ int64, key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (m *OrderedMap[K, V]) Values() []V {
	vals := make([]V, 0, m.Len())
	m.Foreach(func(_ int64, _ K, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}

func (m *OrderedMap[K, V]) Entries() []kv.Entry[K, V] {
	entries := make([]kv.Entry[K, V], 0, m.Len())
	m.Foreach(func(_ int64, key K, val V) bool {
		entries = append(entries, kv.NewEntry(key, val))
		return true
	})
	return entries
}

func (m *OrderedMap[K, V]) Min() (kv.Entry[K, V], error) {
	node := m.tree.minimum()
	if node == nil {
		return kv.Entry[K, V]{}, infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[ordered-map] min")
	}
	return kv.NewEntry(node.key, node.val), nil
}

func (m *OrderedMap[K, V]) Max() (kv.Entry[K, V], error) {
	node := m.tree.maximum()
	if node == nil {
		return kv.Entry[K, V]{}, infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[ordered-map] max")
	}
	return kv.NewEntry(node.key, node.val), nil
}

// Depth is the height of the underlying tree, for diagnostics.
func (m *OrderedMap[K, V]) Depth() int {
	return m.tree.depth()
}

// Dump writes the tree shape with node colors to w.
func (m *OrderedMap[K, V]) Dump(w io.Writer) error {
	return m.tree.Dump(w)
}

// CheckInvariants validates the red-black properties, the key order and
// the element count. All violations found are combined.
func (m *OrderedMap[K, V]) CheckInvariants() error {
	return m.tree.checkInvariants()
}

// Equal reports whether other holds the same entries. Values are compared
// with valEq, reflect.DeepEqual by default.
// Two ordered maps are compared by a single merge of their in order
// sequences first, anything else by membership.
func (m *OrderedMap[K, V]) Equal(other kv.Map[K, V], valEq ...func(a, b V) bool) bool {
	if other == nil || m.Len() != other.Len() {
		return false
	}
	eq := func(a, b V) bool {
		return reflect.DeepEqual(a, b)
	}
	if len(valEq) > 0 && valEq[0] != nil {
		eq = valEq[0]
	}
	if o, ok := other.(*OrderedMap[K, V]); ok {
		if o == m {
			return true
		}
		if m.mergeEqual(o, eq) {
			return true
		}
		// The orderings may differ, membership decides.
	}
	equal := true
	m.Foreach(func(_ int64, key K, val V) bool {
		v, err := other.Get(key)
		equal = err == nil && eq(val, v)
		return equal
	})
	return equal
}

func (m *OrderedMap[K, V]) mergeEqual(o *OrderedMap[K, V], eq func(a, b V) bool) bool {
	this, that := m.tree.walker(), o.tree.walker()
	this.Reset()
	that.Reset()
	for {
		e1, ok1 := this.Next()
		e2, ok2 := that.Next()
		if !ok1 || !ok2 {
			return ok1 == ok2
		}
		if m.tree.cmp(e1.Key(), e2.Key()) != 0 || !eq(e1.Val(), e2.Val()) {
			return false
		}
	}
}
