// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package node

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// ToCty converts n into its cty equivalent. Sequences become tuples and
// mappings become objects, since config values are not homogeneously typed.
func ToCty(n *Node) (cty.Value, error) {
	switch n.Kind() {
	case KindNull:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case KindBool:
		return cty.BoolVal(n.b), nil
	case KindNumber:
		v, err := cty.ParseNumberVal(n.s)
		if err != nil {
			return cty.NilVal, fmt.Errorf("unable to convert number %q: %w", n.s, err)
		}
		return v, nil
	case KindString:
		return cty.StringVal(n.s), nil
	case KindSequence:
		if len(n.seq) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, 0, len(n.seq))
		for i, item := range n.seq {
			v, err := ToCty(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("[%d]: %w", i, err)
			}
			vals = append(vals, v)
		}
		return cty.TupleVal(vals), nil
	case KindMapping:
		return MappingToCty(n.m)
	}
	return cty.NilVal, fmt.Errorf("unsupported node kind %s", n.Kind())
}

// MappingToCty converts m into a cty object.
func MappingToCty(m *Mapping) (cty.Value, error) {
	if m.Len() == 0 {
		return cty.EmptyObjectVal, nil
	}
	attrs := make(map[string]cty.Value, m.Len())
	for k, v := range m.All() {
		cv, err := ToCty(v)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", k, err)
		}
		attrs[k] = cv
	}
	return cty.ObjectVal(attrs), nil
}
