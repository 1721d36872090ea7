// Package chain implements the persistent singly-linked lists that back
// every flaw and structural list a Plan holds (steps, links, open
// conditions, unsafes, mutex threats, unexpanded steps, decomposition
// links). Chains are shared by many plans at once: a plan that drops an
// element produces a new head that may share its tail with the chain it
// was built from, so the cost of a refinement is proportional to what
// changed, not to the size of the plan.
package chain

// Chain is an immutable cons cell: a head value and a pointer to the rest
// of the chain. A nil *Chain[T] is the empty chain.
type Chain[T any] struct {
	Head T
	Tail *Chain[T]
}

// Cons prepends v to c, returning a new chain that shares c as its tail.
func Cons[T any](v T, c *Chain[T]) *Chain[T] {
	return &Chain[T]{Head: v, Tail: c}
}

// Len returns the number of elements in c.
func Len[T any](c *Chain[T]) int {
	n := 0
	for ; c != nil; c = c.Tail {
		n++
	}
	return n
}

// ToSlice materializes c into a slice in head-to-tail order.
func ToSlice[T any](c *Chain[T]) []T {
	out := make([]T, 0, Len(c))
	for ; c != nil; c = c.Tail {
		out = append(out, c.Head)
	}
	return out
}

// FromSlice builds a chain from s, with s[0] ending up at the head and
// s[len(s)-1] at the tail, so that ToSlice(FromSlice(s)) == s.
func FromSlice[T any](s []T) *Chain[T] {
	var c *Chain[T]
	for _, v := range s {
		c = Cons(v, c)
	}
	return reverse(c)
}

func reverse[T any](c *Chain[T]) *Chain[T] {
	var out *Chain[T]
	for ; c != nil; c = c.Tail {
		out = Cons(c.Head, out)
	}
	return out
}

// Remove returns a new chain with the first element satisfying match
// removed. The returned chain shares every tail segment of c that follows
// the removed element; segments before it are freshly allocated. Returns
// c unchanged (by value, same structural shape) and false if no element
// matched.
func Remove[T any](c *Chain[T], match func(T) bool) (*Chain[T], bool) {
	if c == nil {
		return nil, false
	}
	if match(c.Head) {
		return c.Tail, true
	}
	rest, ok := Remove(c.Tail, match)
	if !ok {
		return c, false
	}
	return Cons(c.Head, rest), true
}

// Append returns a chain consisting of every element of a followed by
// every element of b. b is reused as-is (shared); a's elements are
// prepended fresh.
func Append[T any](a, b *Chain[T]) *Chain[T] {
	elems := ToSlice(a)
	out := b
	for i := len(elems) - 1; i >= 0; i-- {
		out = Cons(elems[i], out)
	}
	return out
}

// Find returns the first element satisfying match and true, or the zero
// value and false.
func Find[T any](c *Chain[T], match func(T) bool) (T, bool) {
	for ; c != nil; c = c.Tail {
		if match(c.Head) {
			return c.Head, true
		}
	}
	var zero T
	return zero, false
}

// Filter returns a freshly built chain containing only elements for which
// keep returns true, preserving order.
func Filter[T any](c *Chain[T], keep func(T) bool) *Chain[T] {
	var kept []T
	for ; c != nil; c = c.Tail {
		if keep(c.Head) {
			kept = append(kept, c.Head)
		}
	}
	return FromSlice(kept)
}
