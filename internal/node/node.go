// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package node

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which variant a Node holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

// String returns the name of the kind as used in error messages.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Node is a single value in the config tree. The zero value and a nil *Node
// are both Null.
type Node struct {
	kind Kind
	b    bool
	// s holds the string value, or the canonical literal of a number.
	s   string
	seq []*Node
	m   *Mapping
}

// Null returns a new Null node.
func Null() *Node { return &Node{kind: KindNull} }

// Bool returns a new Bool node.
func Bool(b bool) *Node { return &Node{kind: KindBool, b: b} }

// Str returns a new String node.
func Str(s string) *Node { return &Node{kind: KindString, s: s} }

// Int returns a new Number node holding an integer.
func Int(i int64) *Node { return &Node{kind: KindNumber, s: strconv.FormatInt(i, 10)} }

// Float returns a new Number node holding a float.
func Float(f float64) *Node {
	return &Node{kind: KindNumber, s: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Seq returns a new Sequence node holding items.
func Seq(items ...*Node) *Node {
	if items == nil {
		items = []*Node{}
	}
	return &Node{kind: KindSequence, seq: items}
}

// Map returns a new Mapping node wrapping m. A nil m yields an empty mapping.
func Map(m *Mapping) *Node {
	if m == nil {
		m = NewMapping()
	}
	return &Node{kind: KindMapping, m: m}
}

// Kind returns the variant held by n.
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

func (n *Node) IsNull() bool     { return n.Kind() == KindNull }
func (n *Node) IsString() bool   { return n.Kind() == KindString }
func (n *Node) IsMapping() bool  { return n.Kind() == KindMapping }
func (n *Node) IsSequence() bool { return n.Kind() == KindSequence }

// AsString returns the string value if n is a String.
func (n *Node) AsString() (string, bool) {
	if n.Kind() != KindString {
		return "", false
	}
	return n.s, true
}

// AsBool returns the boolean value if n is a Bool.
func (n *Node) AsBool() (bool, bool) {
	if n.Kind() != KindBool {
		return false, false
	}
	return n.b, true
}

// AsNumber returns the canonical number literal if n is a Number.
func (n *Node) AsNumber() (string, bool) {
	if n.Kind() != KindNumber {
		return "", false
	}
	return n.s, true
}

// AsSequence returns the items if n is a Sequence. The returned slice shares
// storage with n, so assigning to an element rewrites the node in place.
func (n *Node) AsSequence() ([]*Node, bool) {
	if n.Kind() != KindSequence {
		return nil, false
	}
	return n.seq, true
}

// AsMapping returns the mapping if n is a Mapping.
func (n *Node) AsMapping() (*Mapping, bool) {
	if n.Kind() != KindMapping {
		return nil, false
	}
	return n.m, true
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	if n == nil {
		return Null()
	}
	c := &Node{kind: n.kind, b: n.b, s: n.s}
	switch n.kind {
	case KindSequence:
		c.seq = make([]*Node, len(n.seq))
		for i, item := range n.seq {
			c.seq[i] = item.Clone()
		}
	case KindMapping:
		c.m = n.m.Clone()
	}
	return c
}

// Equal reports whether n and other hold the same value. Mapping equality
// ignores key order; numbers compare by value.
func (n *Node) Equal(other *Node) bool {
	if n.Kind() != other.Kind() {
		return false
	}
	switch n.Kind() {
	case KindNull:
		return true
	case KindBool:
		return n.b == other.b
	case KindString:
		return n.s == other.s
	case KindNumber:
		if n.s == other.s {
			return true
		}
		a, errA := strconv.ParseFloat(n.s, 64)
		b, errB := strconv.ParseFloat(other.s, 64)
		return errA == nil && errB == nil && a == b
	case KindSequence:
		if len(n.seq) != len(other.seq) {
			return false
		}
		for i := range n.seq {
			if !n.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return n.m.Equal(other.m)
	}
	return false
}

// String renders n as single-line flow YAML, for logs and error messages.
func (n *Node) String() string {
	y := n.toYAML()
	setFlow(y)
	out, err := yaml.Marshal(y)
	if err != nil {
		return "<" + n.Kind().String() + ">"
	}
	return strings.TrimSpace(string(out))
}

func setFlow(y *yaml.Node) {
	if y.Kind == yaml.MappingNode || y.Kind == yaml.SequenceNode {
		y.Style |= yaml.FlowStyle
	}
	for _, c := range y.Content {
		setFlow(c)
	}
}
