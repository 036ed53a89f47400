// Package bmap implements a hashmap keyed by []byte, adapted from the
// teacher's own internal/bmap for use by package rules' rule table:
// grammar rule names are byte slices into the source, and a lookup
// happens for every identifier reference the checker and emitter resolve.
package bmap

import (
	"unsafe"
)

// BMap is a generic map with []byte keys. Keys cannot be deleted; setting
// an existing key overwrites its value -- the last-definition-wins
// semantics rules.Table relies on for duplicate rule definitions. Added
// keys are copied into an internal byte slice so the map never aliases
// caller memory; lookups use unsafe.String to compare without allocating.
type BMap[T any] struct {
	keys []byte
	smap map[string]T
}

// New creates an empty BMap. sizeHint, if positive, pre-sizes the internal
// map to reduce rehashing for grammars with roughly that many rules.
func New[T any](sizeHint int) *BMap[T] {
	return &BMap[T]{
		smap: make(map[string]T, sizeHint),
	}
}

// Get returns the value stored under key and whether it was present.
func (m *BMap[T]) Get(key []byte) (T, bool) {
	skey := ""
	if len(key) != 0 {
		skey = unsafe.String(&key[0], len(key))
	}
	result, has := m.smap[skey]
	return result, has
}

// Set stores value under key, overwriting any previous value for that key.
func (m *BMap[T]) Set(key []byte, value T) {
	skey := ""
	_, has := m.Get(key)
	if !has && len(key) != 0 {
		ofs := len(m.keys)
		m.keys = append(m.keys, key...)
		key = m.keys[ofs : ofs+len(key)]
	}

	if len(key) != 0 {
		skey = unsafe.String(&key[0], len(key))
	}
	m.smap[skey] = value
}

// Len returns the number of distinct keys stored.
func (m *BMap[T]) Len() int {
	return len(m.smap)
}

// Keys returns every stored key's byte representation, in unspecified
// order; callers that need a deterministic order sort the result
// themselves.
func (m *BMap[T]) Keys() [][]byte {
	result := make([][]byte, 0, len(m.smap))
	for k := range m.smap {
		result = append(result, []byte(k))
	}
	return result
}
