// Package orderedset provides a set that remembers insertion order.
package orderedset

import (
	"fmt"
	"iter"
	"strings"
)

// Set holds unique comparable values and iterates them in the order they
// were first added. It is a map over nodes of a doubly linked list anchored
// on a sentinel, so Add, Contains, and Discard are all constant time. The
// zero value is not usable; build sets with New. A Set is not safe for
// concurrent use.
type Set[T comparable] struct {
	nodes map[T]*node[T]
	// sentinel: end.next is the oldest node, end.prev the newest
	end *node[T]
}

type node[T comparable] struct {
	value      T
	prev, next *node[T]
}

// New returns a set holding the given values in first-added order.
func New[T comparable](values ...T) *Set[T] {
	end := &node[T]{}
	end.prev, end.next = end, end

	s := &Set[T]{nodes: make(map[T]*node[T]), end: end}
	for _, v := range values {
		s.Add(v)
	}

	return s
}

// Len reports how many values the set holds.
func (s *Set[T]) Len() int {
	return len(s.nodes)
}

// Contains reports whether v is in the set.
func (s *Set[T]) Contains(v T) bool {
	_, ok := s.nodes[v]

	return ok
}

// Add inserts v at the end of the order. Adding a value already present
// changes nothing, including its position.
func (s *Set[T]) Add(v T) {
	if s.Contains(v) {
		return
	}

	n := &node[T]{value: v, prev: s.end.prev, next: s.end}
	n.prev.next = n
	s.end.prev = n
	s.nodes[v] = n
}

// Discard removes v, reporting whether it was present.
func (s *Set[T]) Discard(v T) bool {
	n, ok := s.nodes[v]
	if !ok {
		return false
	}

	delete(s.nodes, v)
	n.prev.next = n.next
	n.next.prev = n.prev

	return true
}

// All iterates the values in insertion order.
func (s *Set[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := s.end.next; n != s.end; n = n.next {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Backward iterates the values in reverse insertion order.
func (s *Set[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := s.end.prev; n != s.end; n = n.prev {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Values returns the values as a new slice in insertion order.
func (s *Set[T]) Values() []T {
	values := make([]T, 0, s.Len())
	for v := range s.All() {
		values = append(values, v)
	}

	return values
}

// PopFirst removes and returns the oldest value, or false when the set is
// empty.
func (s *Set[T]) PopFirst() (T, bool) {
	if s.Len() == 0 {
		var zero T

		return zero, false
	}

	v := s.end.next.value
	s.Discard(v)

	return v, true
}

// PopLast removes and returns the newest value, or false when the set is
// empty.
func (s *Set[T]) PopLast() (T, bool) {
	if s.Len() == 0 {
		var zero T

		return zero, false
	}

	v := s.end.prev.value
	s.Discard(v)

	return v, true
}

// Equal reports whether both sets hold the same values in the same order.
func (s *Set[T]) Equal(other *Set[T]) bool {
	if s.Len() != other.Len() {
		return false
	}

	a, b := s.end.next, other.end.next
	for a != s.end {
		if a.value != b.value {
			return false
		}

		a, b = a.next, b.next
	}

	return true
}

// String renders the set constructor-style, in insertion order.
func (s *Set[T]) String() string {
	var b strings.Builder

	b.WriteString("orderedset.New(")

	for i, v := range s.Values() {
		if i > 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%v", v)
	}

	b.WriteString(")")

	return b.String()
}
