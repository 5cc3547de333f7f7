package list

import (
	"github.com/benz9527/xcoll/lib/kv"
)

func positionalHash[T comparable](l List[T]) uint64 {
	h := uint64(1)
	l.Foreach(func(_ int64, item T) bool {
		h = 31*h + kv.ContentHash(item)
		return true
	})
	return h
}

func positionalEqual[T comparable](l, other List[T]) bool {
	if other == nil || l.Len() != other.Len() {
		return false
	}
	c := other.Cursor()
	equal := true
	l.Foreach(func(_ int64, item T) bool {
		ok, err := c.Advance()
		if err != nil || !ok {
			equal = false
			return false
		}
		that, err := c.Current()
		equal = err == nil && that == item
		return equal
	})
	return equal
}
