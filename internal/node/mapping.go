// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package node

import (
	"iter"
	"slices"
)

// Mapping is an ordered map of string keys to nodes. A nil *Mapping behaves
// as an empty, read-only mapping.
type Mapping struct {
	keys   []string
	values map[string]*Node
}

// NewMapping returns an empty mapping.
func NewMapping() *Mapping {
	return &Mapping{values: make(map[string]*Node)}
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in order.
func (m *Mapping) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Get returns the value stored under key.
func (m *Mapping) Get(key string) (*Node, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Mapping) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Mapping returns the value under key if it is present and is a mapping.
func (m *Mapping) Mapping(key string) (*Mapping, bool) {
	v, ok := m.Get(key)
	if !ok {
		return nil, false
	}
	return v.AsMapping()
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position and has its value replaced.
func (m *Mapping) Set(key string, v *Node) {
	if v == nil {
		v = Null()
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key and reports whether it was present.
func (m *Mapping) Delete(key string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	return true
}

// All iterates over a snapshot of the entries in order, so the mapping may be
// modified during iteration. Entries deleted before they are reached are skipped.
func (m *Mapping) All() iter.Seq2[string, *Node] {
	return func(yield func(string, *Node) bool) {
		for _, k := range m.Keys() {
			v, ok := m.Get(k)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Replace moves the entries of src into m, discarding the previous entries
// of m. src is left empty.
func (m *Mapping) Replace(src *Mapping) {
	m.keys, m.values = src.keys, src.values
	src.keys, src.values = nil, make(map[string]*Node)
}

// Clone returns a deep copy of m.
func (m *Mapping) Clone() *Mapping {
	c := NewMapping()
	for k, v := range m.All() {
		c.Set(k, v.Clone())
	}
	return c
}

// Equal reports whether m and other hold equal values under the same keys,
// regardless of key order.
func (m *Mapping) Equal(other *Mapping) bool {
	if m.Len() != other.Len() {
		return false
	}
	for k, v := range m.All() {
		ov, ok := other.Get(k)
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// SoftMerge fills target with the entries of source as non-overriding
// defaults. Keys missing from target are copied in; where both sides hold a
// mapping under the same key the merge recurses; any other collision leaves
// target untouched.
func SoftMerge(target, source *Mapping) {
	for k, sv := range source.All() {
		tv, ok := target.Get(k)
		if !ok {
			target.Set(k, sv.Clone())
			continue
		}
		tm, tIsMap := tv.AsMapping()
		sm, sIsMap := sv.AsMapping()
		if tIsMap && sIsMap {
			SoftMerge(tm, sm)
		}
	}
}
