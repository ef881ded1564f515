package shorthand

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/node"
)

type levelKind int

const (
	levelUnset levelKind = iota
	levelLeaf
	levelMap
	levelSeq
)

// level is one node of the decoded query before value coercion.
type level struct {
	kind  levelKind
	value string

	keys  []string
	named map[string]*level

	items map[int]*level
}

// DecodeQuery decodes a URL query string into a mapping. Bracket notation
// builds nested structure: `arr[0]=x` and `arr[]=x` build sequences,
// `obj[k]=v` builds mappings. Values are coerced into config literals: an
// empty value means true, anything else is parsed as a YAML literal.
func DecodeQuery(query string) (*node.Mapping, error) {
	root := &level{kind: levelMap}

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, cfgerr.Wrap(cfgerr.Syntax, "", "invalid shorthand key encoding", err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, cfgerr.Wrap(cfgerr.Syntax, "", "invalid shorthand value encoding", err)
		}

		segments, err := splitKey(key)
		if err != nil {
			return nil, err
		}
		if err := root.insert(key, segments, value); err != nil {
			return nil, err
		}
	}

	n, err := root.toNode(false)
	if err != nil {
		return nil, err
	}
	m, _ := n.AsMapping()
	return m, nil
}

// splitKey turns `a[b][0][]` into ["a", "b", "0", ""].
func splitKey(key string) ([]string, error) {
	i := strings.IndexByte(key, '[')
	if i < 0 {
		return []string{key}, nil
	}
	if i == 0 {
		return nil, cfgerr.Syntaxf("", "invalid shorthand key %q: missing name", key)
	}

	segments := []string{key[:i]}
	rest := key[i:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, cfgerr.Syntaxf("", "invalid shorthand key %q: unexpected %q", key, rest)
		}
		j := strings.IndexByte(rest, ']')
		if j < 0 {
			return nil, cfgerr.Syntaxf("", "invalid shorthand key %q: unbalanced brackets", key)
		}
		segments = append(segments, rest[1:j])
		rest = rest[j+1:]
	}
	return segments, nil
}

func (l *level) insert(key string, segments []string, value string) error {
	cur := l
	for _, seg := range segments {
		next, err := cur.descend(key, seg)
		if err != nil {
			return err
		}
		cur = next
	}
	if cur.kind != levelUnset {
		return cfgerr.Syntaxf("", "multiple values for shorthand key %q", key)
	}
	cur.kind = levelLeaf
	cur.value = value
	return nil
}

func (l *level) descend(key, seg string) (*level, error) {
	index, isIndex := -1, seg == ""
	if i, err := strconv.Atoi(seg); err == nil && i >= 0 {
		index, isIndex = i, true
	}

	if l.kind == levelUnset {
		if isIndex {
			l.kind = levelSeq
			l.items = make(map[int]*level)
		} else {
			l.kind = levelMap
		}
	}

	switch l.kind {
	case levelSeq:
		if !isIndex {
			return nil, cfgerr.Syntaxf("", "shorthand key %q mixes sequence and mapping notation", key)
		}
		if index < 0 {
			index = 0
			for i := range l.items {
				index = max(index, i+1)
			}
		}
		child, ok := l.items[index]
		if !ok {
			child = &level{}
			l.items[index] = child
		}
		return child, nil
	case levelMap:
		if l.named == nil {
			l.named = make(map[string]*level)
		}
		child, ok := l.named[seg]
		if !ok {
			child = &level{}
			l.named[seg] = child
			l.keys = append(l.keys, seg)
		}
		return child, nil
	default:
		return nil, cfgerr.Syntaxf("", "shorthand key %q is assigned both a value and nested properties", key)
	}
}

// toNode converts the level, coercing leaves. Leaves directly inside a
// sequence are parsed as plain literals.
func (l *level) toNode(inSequence bool) (*node.Node, error) {
	switch l.kind {
	case levelLeaf:
		if inSequence {
			return parseLiteral(l.value)
		}
		return coerce(l.value)
	case levelSeq:
		indexes := make([]int, 0, len(l.items))
		for i := range l.items {
			indexes = append(indexes, i)
		}
		slices.Sort(indexes)
		items := make([]*node.Node, 0, len(indexes))
		for _, i := range indexes {
			item, err := l.items[i].toNode(true)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return node.Seq(items...), nil
	case levelMap:
		m := node.NewMapping()
		for _, k := range l.keys {
			v, err := l.named[k].toNode(false)
			if err != nil {
				return nil, err
			}
			m.Set(k, v)
		}
		return node.Map(m), nil
	}
	return node.Null(), nil
}

func coerce(value string) (*node.Node, error) {
	if value == "" {
		return node.Bool(true), nil
	}
	return parseLiteral(value)
}

func parseLiteral(value string) (*node.Node, error) {
	n, err := node.ParseLiteral(value)
	if err != nil {
		return nil, cfgerr.Wrap(cfgerr.Syntax, "", "invalid shorthand value "+strconv.Quote(value), err)
	}
	return n, nil
}
