package tree

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

// RBNode is a read only view of a tree node.
// A nil child is reported as a nil interface.
type RBNode[K any, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
}

// RBTree is what the invariant validators need to see of a tree.
type RBTree[K any, V any] interface {
	Len() int64
	Root() RBNode[K, V]
}
