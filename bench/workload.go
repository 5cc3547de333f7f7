package bench

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/benz9527/xcoll/lib/cursor"
	"github.com/benz9527/xcoll/lib/kv"
	"github.com/benz9527/xcoll/lib/list"
	"github.com/benz9527/xcoll/lib/tree"
)

var (
	ErrInvalidConfig = errors.New("[xcollbench] invalid config")
	ErrMismatch      = errors.New("[xcollbench] container disagrees with the reference model")
)

type opKind uint8

const (
	opAdd opKind = iota
	opSet
	opGet
	opRemove
	opIterate
	_opMax
)

var opNames = [_opMax]string{"add", "set", "get", "remove", "iterate"}

func (op opKind) String() string {
	if op >= _opMax {
		return "unknown"
	}
	return opNames[op]
}

// opWeights is the cumulative distribution of the random operations,
// iterations are rare because they are O(n).
var opWeights = [_opMax]int{35, 55, 80, 99, 100}

func nextOp(rng *rand.Rand) opKind {
	n := rng.IntN(opWeights[_opMax-1])
	for op, w := range opWeights {
		if n < w {
			return opKind(op)
		}
	}
	return opGet
}

// workload applies an operation to a container and to its reference model
// and reports the first disagreement.
type workload interface {
	apply(op opKind, key, val int) error
	// verify compares the whole container with the model and validates the
	// container invariants.
	verify() error
	len() int64
}

func newWorkload(kind Kind, keySpace int) (workload, error) {
	switch kind {
	case OrderedMapKind:
		m := tree.NewOrderedMap[int, int]()
		return &mapWorkload{target: m, ref: make(map[int]int), sorted: true, check: m.CheckInvariants}, nil
	case HashMapKind:
		return &mapWorkload{target: kv.NewHashMap[int, int](), ref: make(map[int]int)}, nil
	case OrderedSetKind:
		s := tree.NewOrderedSet[int]()
		return &setWorkload{target: s, ref: make(map[int]struct{}), sorted: true, check: s.CheckInvariants}, nil
	case HashSetKind:
		return &setWorkload{target: kv.NewHashSet[int](), ref: make(map[int]struct{})}, nil
	case ArrayListKind:
		return &listWorkload{target: list.NewArrayList[int](), keySpace: keySpace}, nil
	case LinkedListKind:
		return &listWorkload{target: list.NewLinkedList[int](), keySpace: keySpace}, nil
	default:
	}
	return nil, fmt.Errorf("%w: unknown container kind %q", ErrInvalidConfig, kind)
}

func mismatch(op opKind, key int, format string, args ...any) error {
	return fmt.Errorf("%w: %s(%d) %s", ErrMismatch, op, key, fmt.Sprintf(format, args...))
}

type mapTarget interface {
	Add(key, val int) bool
	Set(key, val int)
	Get(key int) (int, error)
	Contains(key int) bool
	Remove(key int) (kv.Entry[int, int], error)
	Len() int64
	Cursor() cursor.Cursor[kv.Entry[int, int]]
}

type mapWorkload struct {
	target mapTarget
	ref    map[int]int
	sorted bool
	check  func() error
}

func (w *mapWorkload) len() int64 {
	return w.target.Len()
}

func (w *mapWorkload) apply(op opKind, key, val int) error {
	prev, present := w.ref[key]
	switch op {
	case opAdd:
		if added := w.target.Add(key, val); added == present {
			return mismatch(op, key, "added %v, present %v", added, present)
		}
		if !present {
			w.ref[key] = val
		}
	case opSet:
		w.target.Set(key, val)
		w.ref[key] = val
	case opGet:
		got, err := w.target.Get(key)
		if present != (err == nil) || present && got != prev {
			return mismatch(op, key, "got %d (err %v), want %d (present %v)", got, err, prev, present)
		}
		if w.target.Contains(key) != present {
			return mismatch(op, key, "contains disagrees")
		}
	case opRemove:
		e, err := w.target.Remove(key)
		if present != (err == nil) || present && (e.Key() != key || e.Val() != prev) {
			return mismatch(op, key, "removed %v (err %v), want %d (present %v)", e, err, prev, present)
		}
		delete(w.ref, key)
	case opIterate:
		entries, err := cursor.Collect(w.target.Cursor())
		if err != nil {
			return err
		}
		if len(entries) != len(w.ref) {
			return mismatch(op, key, "iterated %d entries, want %d", len(entries), len(w.ref))
		}
	default:
	}
	if w.target.Len() != int64(len(w.ref)) {
		return mismatch(op, key, "len %d, want %d", w.target.Len(), len(w.ref))
	}
	return nil
}

func (w *mapWorkload) verify() error {
	entries, err := cursor.Collect(w.target.Cursor())
	if err != nil {
		return err
	}
	if len(entries) != len(w.ref) {
		return mismatch(opIterate, -1, "iterated %d entries, want %d", len(entries), len(w.ref))
	}
	for i, e := range entries {
		if v, ok := w.ref[e.Key()]; !ok || v != e.Val() {
			return mismatch(opIterate, e.Key(), "unexpected value %d", e.Val())
		}
		if w.sorted && i > 0 && entries[i-1].Key() >= e.Key() {
			return mismatch(opIterate, e.Key(), "out of order after %d", entries[i-1].Key())
		}
	}
	if w.check != nil {
		return w.check()
	}
	return nil
}

type setTarget interface {
	Add(item int) bool
	Contains(item int) bool
	Remove(item int) (int, error)
	Len() int64
	Cursor() cursor.Cursor[int]
}

type setWorkload struct {
	target setTarget
	ref    map[int]struct{}
	sorted bool
	check  func() error
}

func (w *setWorkload) len() int64 {
	return w.target.Len()
}

func (w *setWorkload) apply(op opKind, key, _ int) error {
	_, present := w.ref[key]
	switch op {
	case opAdd, opSet:
		if added := w.target.Add(key); added == present {
			return mismatch(op, key, "added %v, present %v", added, present)
		}
		w.ref[key] = struct{}{}
	case opGet:
		if w.target.Contains(key) != present {
			return mismatch(op, key, "contains disagrees, present %v", present)
		}
	case opRemove:
		item, err := w.target.Remove(key)
		if present != (err == nil) || present && item != key {
			return mismatch(op, key, "removed %d (err %v), present %v", item, err, present)
		}
		delete(w.ref, key)
	case opIterate:
		items, err := cursor.Collect(w.target.Cursor())
		if err != nil {
			return err
		}
		if len(items) != len(w.ref) {
			return mismatch(op, key, "iterated %d items, want %d", len(items), len(w.ref))
		}
	default:
	}
	if w.target.Len() != int64(len(w.ref)) {
		return mismatch(op, key, "len %d, want %d", w.target.Len(), len(w.ref))
	}
	return nil
}

func (w *setWorkload) verify() error {
	items, err := cursor.Collect(w.target.Cursor())
	if err != nil {
		return err
	}
	if len(items) != len(w.ref) {
		return mismatch(opIterate, -1, "iterated %d items, want %d", len(items), len(w.ref))
	}
	for _, item := range items {
		if _, ok := w.ref[item]; !ok {
			return mismatch(opIterate, item, "unexpected item")
		}
	}
	if w.sorted && !slices.IsSorted(items) {
		return mismatch(opIterate, -1, "items out of order")
	}
	if w.check != nil {
		return w.check()
	}
	return nil
}

// listWorkload maps keys to positions, the model is a plain slice.
// The length is bounded by the key space so positional access stays cheap.
type listWorkload struct {
	target   list.List[int]
	ref      []int
	keySpace int
}

func (w *listWorkload) len() int64 {
	return w.target.Len()
}

func (w *listWorkload) apply(op opKind, key, val int) error {
	switch {
	case len(w.ref) == 0 && op != opIterate:
		op = opAdd
	case len(w.ref) >= w.keySpace && op == opAdd:
		op = opRemove
	default:
	}
	switch op {
	case opAdd:
		idx := key % (len(w.ref) + 1)
		if err := w.target.AddAt(int64(idx), val); err != nil {
			return err
		}
		w.ref = slices.Insert(w.ref, idx, val)
	case opSet:
		idx := key % len(w.ref)
		prev, err := w.target.Set(int64(idx), val)
		if err != nil {
			return err
		}
		if prev != w.ref[idx] {
			return mismatch(op, idx, "replaced %d, want %d", prev, w.ref[idx])
		}
		w.ref[idx] = val
	case opGet:
		idx := key % len(w.ref)
		got, err := w.target.Get(int64(idx))
		if err != nil {
			return err
		}
		if got != w.ref[idx] {
			return mismatch(op, idx, "got %d, want %d", got, w.ref[idx])
		}
		if !w.target.Contains(got) {
			return mismatch(op, idx, "contains disagrees for %d", got)
		}
	case opRemove:
		idx := key % len(w.ref)
		var (
			item int
			err  error
		)
		if idx == len(w.ref)-1 {
			item, err = w.target.RemoveLast()
		} else {
			item, err = w.target.RemoveAt(int64(idx))
		}
		if err != nil {
			return err
		}
		if item != w.ref[idx] {
			return mismatch(op, idx, "removed %d, want %d", item, w.ref[idx])
		}
		w.ref = slices.Delete(w.ref, idx, idx+1)
	case opIterate:
		return w.verify()
	default:
	}
	if w.target.Len() != int64(len(w.ref)) {
		return mismatch(op, key, "len %d, want %d", w.target.Len(), len(w.ref))
	}
	return nil
}

func (w *listWorkload) verify() error {
	items, err := cursor.Collect(w.target.Cursor())
	if err != nil {
		return err
	}
	if !slices.Equal(items, w.ref) {
		return mismatch(opIterate, -1, "items differ from the model")
	}
	return nil
}
