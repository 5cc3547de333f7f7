package tree

import (
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/benz9527/xcoll/lib/infra"
)

var (
	ErrRedViolation   = errors.New("rbtree red violation")
	ErrBlackViolation = errors.New("rbtree black violation")
	ErrRootViolation  = errors.New("rbtree root violation")
	ErrOrderViolation = errors.New("rbtree order violation")
	ErrSizeViolation  = errors.New("rbtree size violation")
)

func isRedNode[K any, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// RedViolationValidate checks that no red node has a red child.
func RedViolationValidate[K any, V any](tree RBTree[K, V]) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	stack := make([]RBNode[K, V], 0, 32)
	defer func() {
		clear(stack)
	}()
	stack = append(stack, aux)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		l, r := aux.Left(), aux.Right()
		if isRedNode(aux) && (isRedNode(l) || isRedNode(r)) {
			return fmt.Errorf("%w: red node %v has a red child", ErrRedViolation, aux.Key())
		}
		if l != nil {
			stack = append(stack, l)
		}
		if r != nil {
			stack = append(stack, r)
		}
	}
	return nil
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/

// BlackViolationValidate checks that every path from the root to a NIL
// leaf passes the same number of black nodes.
func BlackViolationValidate[K any, V any](tree RBTree[K, V]) error {
	root := tree.Root()
	if root == nil {
		return nil
	}

	type frame struct {
		node   RBNode[K, V]
		blacks int
	}
	stack := make([]frame, 0, 32)
	stack = append(stack, frame{node: root})
	expected := -1
	for size := len(stack); size > 0; size = len(stack) {
		f := stack[size-1]
		stack = stack[:size-1]
		blacks := f.blacks
		if !isRedNode(f.node) {
			blacks++
		}
		for _, child := range [2]RBNode[K, V]{f.node.Left(), f.node.Right()} {
			if child != nil {
				stack = append(stack, frame{node: child, blacks: blacks})
				continue
			}
			if expected < 0 {
				expected = blacks
			} else if blacks != expected {
				return fmt.Errorf("%w: black depth %d below %v, expected %d",
					ErrBlackViolation, blacks, f.node.Key(), expected)
			}
		}
	}
	return nil
}

// RootViolationValidate checks that a non-empty tree has a black root.
func RootViolationValidate[K any, V any](tree RBTree[K, V]) error {
	if root := tree.Root(); isRedNode(root) {
		return fmt.Errorf("%w: red root %v", ErrRootViolation, root.Key())
	}
	return nil
}

// OrderViolationValidate checks that the in order keys are strictly
// ascending under cmp and that their number matches Len.
func OrderViolationValidate[K any, V any](tree RBTree[K, V], cmp infra.OrderedKeyComparator[K]) error {
	var (
		prev  K
		count int64
	)
	stack := make([]RBNode[K, V], 0, 32)
	defer func() {
		clear(stack)
	}()
	for aux := tree.Root(); aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if count > 0 && cmp(prev, aux.Key()) >= 0 {
			return fmt.Errorf("%w: %v is not after %v", ErrOrderViolation, aux.Key(), prev)
		}
		prev = aux.Key()
		count++
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	if count != tree.Len() {
		return fmt.Errorf("%w: %d nodes, len %d", ErrSizeViolation, count, tree.Len())
	}
	return nil
}

func (tree *rbTree[K, V]) checkInvariants() error {
	return multierr.Combine(
		RootViolationValidate[K, V](tree),
		RedViolationValidate[K, V](tree),
		BlackViolationValidate[K, V](tree),
		OrderViolationValidate[K, V](tree, tree.cmp),
	)
}
