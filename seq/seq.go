// Package seq provides small iteration helpers: fixed-size chunking,
// sliding windows, and first-element access with a fallback.
//
// Everything here works on iter.Seq or plain slices; bridge between the two
// with the standard library's slices.Values and slices.Collect.
package seq

import (
	"fmt"
	"iter"
)

// Chunks lazily splits s into non-overlapping groups of chunkSize elements,
// in order. Every group is exactly chunkSize long except the last, which
// holds whatever remains. Concatenating the groups reproduces s. Chunks
// panics if chunkSize is not positive.
func Chunks[T any](s iter.Seq[T], chunkSize int) iter.Seq[[]T] {
	if chunkSize <= 0 {
		panic(fmt.Sprintf("seq: chunk size must be positive, got %d", chunkSize))
	}

	return func(yield func([]T) bool) {
		group := make([]T, 0, chunkSize)

		for v := range s {
			group = append(group, v)

			if len(group) == chunkSize {
				if !yield(group) {
					return
				}

				group = make([]T, 0, chunkSize)
			}
		}

		if len(group) > 0 {
			yield(group)
		}
	}
}

// Windows yields the sliding windows of windowSize consecutive elements
// over s, advancing one element at a time: len(s)-windowSize+1 windows, or
// none when s is shorter than windowSize. Windows share backing memory with
// s. Windows panics if windowSize is not positive.
func Windows[S ~[]T, T any](s S, windowSize int) iter.Seq[S] {
	if windowSize <= 0 {
		panic(fmt.Sprintf("seq: window size must be positive, got %d", windowSize))
	}

	return func(yield func(S) bool) {
		for i := 0; i+windowSize <= len(s); i++ {
			if !yield(s[i : i+windowSize : i+windowSize]) {
				return
			}
		}
	}
}

// First returns the first element of s, or false when s is empty.
func First[T any](s iter.Seq[T]) (T, bool) {
	for v := range s {
		return v, true
	}

	var zero T

	return zero, false
}

// FirstOr returns the first element of s, or fallback when s is empty.
func FirstOr[T any](s iter.Seq[T], fallback T) T {
	if v, ok := First(s); ok {
		return v
	}

	return fallback
}
