// Package dict provides copy-based helpers over Go maps: merging with or
// without a combiner, inversion, filtering, and key renames.
package dict

import "maps"

// Merge returns a new map holding every key of a and b. Keys present in
// both take b's value. Neither input is modified.
func Merge[M ~map[K]V, K comparable, V any](a, b M) M {
	merged := make(M, len(a)+len(b))
	maps.Copy(merged, a)
	maps.Copy(merged, b)

	return merged
}

// MergeWith is Merge with a custom combiner: keys present in both maps take
// combine(key, aValue, bValue) instead of b's value.
func MergeWith[M ~map[K]V, K comparable, V any](a, b M, combine func(K, V, V) V) M {
	merged := make(M, len(a)+len(b))
	maps.Copy(merged, a)

	for k, bv := range b {
		if av, both := a[k]; both {
			merged[k] = combine(k, av, bv)

			continue
		}

		merged[k] = bv
	}

	return merged
}

// Swap returns a new map with keys and values inverted. Duplicate values
// keep one arbitrary surviving key, following map iteration order; callers
// who care must deduplicate first.
func Swap[M ~map[K]V, K, V comparable](m M) map[V]K {
	swapped := make(map[V]K, len(m))
	for k, v := range m {
		swapped[v] = k
	}

	return swapped
}

// Pick returns a copy of m holding only the listed keys. Keys absent from m
// are ignored.
func Pick[M ~map[K]V, K comparable, V any](m M, keys ...K) M {
	picked := make(M, len(keys))

	for _, k := range keys {
		if v, ok := m[k]; ok {
			picked[k] = v
		}
	}

	return picked
}

// Omit returns a copy of m without the listed keys.
func Omit[M ~map[K]V, K comparable, V any](m M, keys ...K) M {
	drop := make(map[K]struct{}, len(keys))
	for _, k := range keys {
		drop[k] = struct{}{}
	}

	omitted := make(M, len(m))

	for k, v := range m {
		if _, dropped := drop[k]; !dropped {
			omitted[k] = v
		}
	}

	return omitted
}

// Rename moves the value under oldKey to newKey, in place. An absent oldKey
// is a no-op, as is renaming a key onto itself. Whatever sat under newKey
// is overwritten.
func Rename[M ~map[K]V, K comparable, V any](m M, oldKey, newKey K) {
	v, ok := m[oldKey]
	if !ok || oldKey == newKey {
		return
	}

	delete(m, oldKey)
	m[newKey] = v
}

// RenameCopy returns a copy of m with the value under oldKey moved to
// newKey, leaving m unmodified.
func RenameCopy[M ~map[K]V, K comparable, V any](m M, oldKey, newKey K) M {
	renamed := make(M, len(m))
	maps.Copy(renamed, m)
	Rename(renamed, oldKey, newKey)

	return renamed
}
