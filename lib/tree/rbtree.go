package tree

import (
	"fmt"
	"io"
	"strings"

	"github.com/benz9527/xcoll/lib/infra"
	"github.com/benz9527/xcoll/lib/kv"
)

// References:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// https://www.cs.kent.ac.uk/people/staff/smk/redblack/rb.html
// rbtree properties:
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
//
// Nodes carry no parent pointer. Every mutation takes a subtree and
// returns its new root, the caller stores it back into the parent link.

type rbNode[K any, V any] struct {
	left  *rbNode[K, V]
	right *rbNode[K, V]
	key   K
	val   V
	color RBColor
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

func isRed[K any, V any](node *rbNode[K, V]) bool {
	return node != nil && node.color == Red
}

// lbal repairs a red-red violation in the left subtree of the black node t
// with a single (left-left) or double (left-right) rotation.
func lbal[K any, V any](t *rbNode[K, V]) *rbNode[K, V] {
	t.color = Black
	d := t.left
	if !isRed(d) {
		return t
	}
	switch {
	case isRed(d.left):
		d.left.color = Black
		t.left = d.right
		d.right = t
		return d
	case isRed(d.right):
		bc := d.right
		d.color = Black
		t.left = bc.right
		bc.right = t
		d.right = bc.left
		bc.left = d
		return bc
	}
	return t
}

// rbal mirrors lbal: right-right and right-left cases.
func rbal[K any, V any](t *rbNode[K, V]) *rbNode[K, V] {
	t.color = Black
	e := t.right
	if !isRed(e) {
		return t
	}
	switch {
	case isRed(e.right):
		e.right.color = Black
		t.right = e.left
		e.left = t
		return e
	case isRed(e.left):
		bc := e.left
		e.color = Black
		t.right = bc.left
		bc.left = t
		e.left = bc.right
		bc.right = e
		return bc
	}
	return t
}

// balLeft restores the black height of t after its left subtree lost one
// black level.
func balLeft[K any, V any](t *rbNode[K, V]) *rbNode[K, V] {
	switch {
	case isRed(t.left):
		t.color = Red
		t.left.color = Black
		return t
	case t.right == nil:
		return t
	case !isRed(t.right):
		t.right.color = Red
		return rbal(t)
	case t.right.left != nil && !isRed(t.right.left):
		t.color = Black
		trl := t.right.left
		t.right.left = trl.right
		if t.right.right != nil {
			t.right.right.color = Red
		}
		t.right = rbal(t.right)
		trl.right = t.right
		t.right = trl.left
		trl.left = t
		trl.color = Red
		return trl
	}
	panic(infra.NewErrorStack("[rbtree] left rebalance on a broken tree"))
}

// balRight mirrors balLeft.
func balRight[K any, V any](t *rbNode[K, V]) *rbNode[K, V] {
	switch {
	case isRed(t.right):
		t.color = Red
		t.right.color = Black
		return t
	case t.left == nil:
		return t
	case !isRed(t.left):
		t.left.color = Red
		return lbal(t)
	case t.left.right != nil && !isRed(t.left.right):
		t.color = Black
		tlr := t.left.right
		t.left.right = tlr.left
		if t.left.left != nil {
			t.left.left.color = Red
		}
		t.left = lbal(t.left)
		tlr.left = t.left
		t.left = tlr.right
		tlr.right = t
		tlr.color = Red
		return tlr
	}
	panic(infra.NewErrorStack("[rbtree] right rebalance on a broken tree"))
}

// join merges two subtrees where every key of l precedes every key of r.
// It replaces a removed node by its two children.
func join[K any, V any](l, r *rbNode[K, V]) *rbNode[K, V] {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	if l.color != r.color {
		if l.color == Red {
			l.right = join(l.right, r)
			return l
		}
		r.left = join(l, r.left)
		return r
	}
	bc := join(l.right, r.left)
	if isRed(bc) {
		l.right = bc.left
		bc.left = l
		r.left = bc.right
		bc.right = r
		return bc
	}
	r.left = bc
	l.right = r
	if l.color == Black {
		return balLeft(l)
	}
	return l
}

type rbTree[K any, V any] struct {
	root  *rbNode[K, V]
	count int64
	cmp   infra.OrderedKeyComparator[K]
}

func newRBTree[K any, V any](cmp infra.OrderedKeyComparator[K]) *rbTree[K, V] {
	return &rbTree[K, V]{cmp: cmp}
}

func (tree *rbTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

func (tree *rbTree[K, V]) search(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.cmp(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K, V]) contains(key K) bool {
	return tree.search(key) != nil
}

// Insert adds the pair unless an equal key is stored, the stored value is
// kept in that case.
func (tree *rbTree[K, V]) Insert(key K, val V) bool {
	root, inserted := tree.insert(tree.root, key, val)
	root.color = Black
	tree.root = root
	if inserted {
		tree.count++
	}
	return inserted
}

func (tree *rbTree[K, V]) insert(n *rbNode[K, V], key K, val V) (*rbNode[K, V], bool) {
	if n == nil {
		return &rbNode[K, V]{key: key, val: val, color: Red}, true
	}
	var inserted bool
	res := tree.cmp(key, n.key)
	switch {
	case res < 0:
		n.left, inserted = tree.insert(n.left, key, val)
		if n.color == Black {
			n = lbal(n)
		}
	case res > 0:
		n.right, inserted = tree.insert(n.right, key, val)
		if n.color == Black {
			n = rbal(n)
		}
	}
	return n, inserted
}

// Remove unlinks the node of key and returns it, nil if key is absent.
func (tree *rbTree[K, V]) Remove(key K) *rbNode[K, V] {
	if !tree.contains(key) {
		return nil
	}
	root, removed := tree.delete(tree.root, key)
	if root != nil {
		root.color = Black
	}
	tree.root = root
	tree.count--
	return removed
}

// delete requires key to be present in n.
func (tree *rbTree[K, V]) delete(n *rbNode[K, V], key K) (root, removed *rbNode[K, V]) {
	if n == nil {
		panic(infra.WrapErrorStackWithMessage(infra.ErrNotFound, "[rbtree] delete"))
	}
	res := tree.cmp(key, n.key)
	switch {
	case res < 0:
		leftBlack := !isRed(n.left)
		n.left, removed = tree.delete(n.left, key)
		if leftBlack {
			n = balLeft(n)
		} else {
			n.color = Red
		}
		return n, removed
	case res > 0:
		rightBlack := !isRed(n.right)
		n.right, removed = tree.delete(n.right, key)
		if rightBlack {
			n = balRight(n)
		} else {
			n.color = Red
		}
		return n, removed
	}
	root = join(n.left, n.right)
	n.left, n.right = nil, nil
	return root, n
}

func (tree *rbTree[K, V]) minimum() *rbNode[K, V] {
	aux := tree.root
	for ; aux != nil && aux.left != nil; aux = aux.left {
	}
	return aux
}

func (tree *rbTree[K, V]) maximum() *rbNode[K, V] {
	aux := tree.root
	for ; aux != nil && aux.right != nil; aux = aux.right {
	}
	return aux
}

// depth is the height of the tree, for diagnostics only.
func (tree *rbTree[K, V]) depth() int {
	return nodeDepth(tree.root)
}

func nodeDepth[K any, V any](node *rbNode[K, V]) int {
	if node == nil {
		return 0
	}
	return 1 + max(nodeDepth(node.left), nodeDepth(node.right))
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	size := tree.count
	aux := tree.root
	if size <= 0 || aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, 32)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// Release drops every node without rebalancing.
func (tree *rbTree[K, V]) Release() {
	aux := tree.root
	tree.root, tree.count = nil, 0
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, 32)
	stack = append(stack, aux)
	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		stack = stack[:size-1]
		if aux.left != nil {
			stack = append(stack, aux.left)
		}
		if aux.right != nil {
			stack = append(stack, aux.right)
		}
		aux.left, aux.right = nil, nil
	}
}

// walker yields the entries in comparator order.
func (tree *rbTree[K, V]) walker() *rbTreeWalker[K, V] {
	return &rbTreeWalker[K, V]{tree: tree}
}

type rbTreeWalker[K any, V any] struct {
	tree  *rbTree[K, V]
	stack []*rbNode[K, V]
}

func (w *rbTreeWalker[K, V]) pushLeftSpine(aux *rbNode[K, V]) {
	for ; aux != nil; aux = aux.left {
		w.stack = append(w.stack, aux)
	}
}

func (w *rbTreeWalker[K, V]) Next() (kv.Entry[K, V], bool) {
	size := len(w.stack)
	if size == 0 {
		return kv.Entry[K, V]{}, false
	}
	aux := w.stack[size-1]
	w.stack[size-1] = nil
	w.stack = w.stack[:size-1]
	w.pushLeftSpine(aux.right)
	return kv.NewEntry(aux.key, aux.val), true
}

func (w *rbTreeWalker[K, V]) Reset() {
	clear(w.stack)
	w.stack = w.stack[:0]
	w.pushLeftSpine(w.tree.root)
}

// Dump writes the tree rotated by 90 degrees, the right subtree on top.
//
//	 /----- 9 (R)
//	5 (B)
//	 \----- 3 (R)
func (tree *rbTree[K, V]) Dump(w io.Writer) error {
	if tree.root == nil {
		_, err := io.WriteString(w, "<empty>\n")
		return err
	}
	var builder strings.Builder
	if tree.root.right != nil {
		dumpNode(&builder, tree.root.right, true, "")
	}
	_, _ = fmt.Fprintf(&builder, "%v (%s)\n", tree.root.key, colorTag(tree.root.color))
	if tree.root.left != nil {
		dumpNode(&builder, tree.root.left, false, "")
	}
	_, err := io.WriteString(w, builder.String())
	return err
}

func dumpNode[K any, V any](builder *strings.Builder, node *rbNode[K, V], isRight bool, indent string) {
	if node.right != nil {
		next := indent + "        "
		if !isRight {
			next = indent + " |      "
		}
		dumpNode(builder, node.right, true, next)
	}
	_, _ = builder.WriteString(indent)
	if isRight {
		_, _ = builder.WriteString(" /")
	} else {
		_, _ = builder.WriteString(" \\")
	}
	_, _ = fmt.Fprintf(builder, "----- %v (%s)\n", node.key, colorTag(node.color))
	if node.left != nil {
		next := indent + " |      "
		if !isRight {
			next = indent + "        "
		}
		dumpNode(builder, node.left, false, next)
	}
}

func colorTag(color RBColor) string {
	if color == Red {
		return "R"
	}
	return "B"
}
