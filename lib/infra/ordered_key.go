package infra

import "cmp"

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

// Unsigned is a constraint that permits any unsigned integer type.
// If future releases of Go add new predeclared unsigned integer types,
// this constraint will be modified to include them.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Integer is a constraint that permits any integer type.
// If future releases of Go add new predeclared integer types,
// this constraint will be modified to include them.
type Integer interface {
	Signed | Unsigned
}

// Float is a constraint that permits any floating-point type.
// If future releases of Go add new predeclared floating-point types,
// this constraint will be modified to include them.
type Float interface {
	~float32 | ~float64
}

// OrderedKey
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// Comparable is implemented by key types that carry their own ordering.
// The result follows OrderedKeyComparator.
type Comparable[K any] interface {
	CompareTo(other K) int64
}

// OrderedKeyComparator
// Assume i is the new key.
//  1. i == j (i-j == 0, return 0)
//  2. i > j (i-j > 0, return 1), turn to right part.
//  3. i < j (i-j < 0, return -1), turn to left part.
//
// It must be a total order and must not change while a container uses it.
type OrderedKeyComparator[K any] func(i, j K) int64

// NaturalOrder compares keys by the built-in ordering of K.
// NaN sorts before any other float, the same as cmp.Compare.
func NaturalOrder[K OrderedKey]() OrderedKeyComparator[K] {
	return func(i, j K) int64 {
		return int64(cmp.Compare(i, j))
	}
}

// SelfOrder compares keys by their own CompareTo method.
func SelfOrder[K Comparable[K]]() OrderedKeyComparator[K] {
	return func(i, j K) int64 {
		return i.CompareTo(j)
	}
}

// ReverseOrder flips the result of c.
func ReverseOrder[K any](c OrderedKeyComparator[K]) OrderedKeyComparator[K] {
	if c == nil {
		return nil
	}
	return func(i, j K) int64 {
		return c(j, i)
	}
}
