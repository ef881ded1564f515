// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package node

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"gopkg.in/yaml.v3"
)

// Decode reads a single YAML document from r. An empty document decodes to Null.
func Decode(r io.Reader) (*Node, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Null(), nil
		}
		return nil, cfgerr.Wrap(cfgerr.Syntax, "", "unable to parse yaml", err)
	}
	return FromYAML(&doc)
}

// Parse decodes a YAML document held in a string.
func Parse(src string) (*Node, error) {
	return Decode(strings.NewReader(src))
}

// ParseLiteral parses s as a YAML literal, so "7" yields a Number, "true" a
// Bool and "[a, b]" a Sequence. Anything that is not valid YAML is an error.
func ParseLiteral(s string) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		return nil, cfgerr.Wrap(cfgerr.Syntax, "", fmt.Sprintf("invalid literal %q", s), err)
	}
	return FromYAML(&doc)
}

// FromYAML converts a yaml.v3 node tree. Aliases and "<<" merge keys are
// resolved; mapping keys must be strings and unique.
func FromYAML(y *yaml.Node) (*Node, error) {
	return fromYAML("", y)
}

func fromYAML(path string, y *yaml.Node) (*Node, error) {
	if y == nil {
		return Null(), nil
	}

	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(path, y.Content[0])
	case yaml.AliasNode:
		return fromYAML(path, y.Alias)
	case yaml.ScalarNode:
		return fromScalar(path, y)
	case yaml.SequenceNode:
		items := make([]*Node, 0, len(y.Content))
		for i, c := range y.Content {
			item, err := fromYAML(fmt.Sprintf("%s[%d]", path, i), c)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return Seq(items...), nil
	case yaml.MappingNode:
		m, err := fromMapping(path, y)
		if err != nil {
			return nil, err
		}
		return Map(m), nil
	}
	return nil, cfgerr.Syntaxf(path, "unsupported yaml node kind %d", y.Kind)
}

func fromScalar(path string, y *yaml.Node) (*Node, error) {
	switch y.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := y.Decode(&b); err != nil {
			return nil, cfgerr.Wrap(cfgerr.Syntax, path, "invalid bool", err)
		}
		return Bool(b), nil
	case "!!int":
		var v any
		if err := y.Decode(&v); err != nil {
			return nil, cfgerr.Wrap(cfgerr.Syntax, path, "invalid integer", err)
		}
		switch i := v.(type) {
		case int:
			return Int(int64(i)), nil
		case int64:
			return Int(i), nil
		case uint64:
			return &Node{kind: KindNumber, s: strconv.FormatUint(i, 10)}, nil
		case *big.Int:
			return &Node{kind: KindNumber, s: i.String()}, nil
		case float64:
			return Float(i), nil
		}
		return Str(y.Value), nil
	case "!!float":
		var f float64
		if err := y.Decode(&f); err != nil {
			return nil, cfgerr.Wrap(cfgerr.Syntax, path, "invalid float", err)
		}
		return Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their source text.
		return Str(y.Value), nil
	}
}

func fromMapping(path string, y *yaml.Node) (*Mapping, error) {
	m := NewMapping()
	var merges []*yaml.Node

	for i := 0; i+1 < len(y.Content); i += 2 {
		k, v := y.Content[i], y.Content[i+1]
		if k.Kind == yaml.AliasNode {
			k = k.Alias
		}
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		if k.Kind != yaml.ScalarNode || k.ShortTag() != "!!str" {
			return nil, cfgerr.Syntaxf(path, "key is invalid type in mapping: %q (line %d), key must be a string", k.Value, k.Line)
		}
		if m.Has(k.Value) {
			return nil, cfgerr.Syntaxf(path, "duplicate key %q (line %d)", k.Value, k.Line)
		}
		value, err := fromYAML(cfgerr.Join(path, k.Value), v)
		if err != nil {
			return nil, err
		}
		m.Set(k.Value, value)
	}

	// Explicit keys win over merged ones; earlier merge sources win over later ones.
	for _, src := range merges {
		if src.Kind == yaml.AliasNode {
			src = src.Alias
		}
		sources := []*yaml.Node{src}
		if src.Kind == yaml.SequenceNode {
			sources = src.Content
		}
		for _, s := range sources {
			merged, err := fromYAML(path, s)
			if err != nil {
				return nil, err
			}
			mm, ok := merged.AsMapping()
			if !ok {
				return nil, cfgerr.Syntaxf(path, "merge key value must be a mapping, got %s", merged.Kind())
			}
			for k, v := range mm.All() {
				if !m.Has(k) {
					m.Set(k, v)
				}
			}
		}
	}

	return m, nil
}

// MarshalYAML implements yaml.Marshaler.
func (n *Node) MarshalYAML() (any, error) {
	return n.toYAML(), nil
}

func (n *Node) toYAML() *yaml.Node {
	switch n.Kind() {
	case KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(n.b)}
	case KindNumber:
		tag := "!!float"
		if isIntegerLiteral(n.s) {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: formatNumber(n.s)}
	case KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.s}
	case KindSequence:
		y := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range n.seq {
			y.Content = append(y.Content, item.toYAML())
		}
		return y
	case KindMapping:
		y := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for k, v := range n.m.All() {
			y.Content = append(y.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				v.toYAML(),
			)
		}
		return y
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func isIntegerLiteral(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return true
	}
	_, ok := new(big.Int).SetString(s, 10)
	return ok
}

// formatNumber maps Go float spellings to their YAML equivalents.
func formatNumber(s string) string {
	switch s {
	case "+Inf":
		return ".inf"
	case "-Inf":
		return "-.inf"
	case "NaN":
		return ".nan"
	}
	return s
}
