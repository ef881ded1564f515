// Package shorthand parses property shorthand attached to mapping keys.
//
// A key has the form ["!"]base["?"query]. The query is a URL query string
// whose decoded values become default properties of the key's value; the "!"
// prefix additionally injects `in: base`, so `!web: {...}` scopes its
// contents to the web workspace.
package shorthand

import (
	"strings"

	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/syntax"
)

const (
	implicitScopePrefix = "!"
	querySeparator      = "?"
)

// Parser splits shorthand keys into their base key and properties.
type Parser struct {
	syntax syntax.Syntax
}

// NewParser returns a parser using the given vocabulary.
func NewParser(syn syntax.Syntax) *Parser {
	return &Parser{syntax: syn}
}

// Parse returns the base key and shorthand properties of key. A key with no
// shorthand is returned unchanged with empty properties.
func (p *Parser) Parse(key string) (string, *node.Mapping, error) {
	rest, implicit := strings.CutPrefix(key, implicitScopePrefix)
	parts := strings.Split(rest, querySeparator)
	base := parts[0]

	if len(parts) == 1 && !implicit {
		return key, node.NewMapping(), nil
	}
	if len(parts) > 2 {
		return "", nil, cfgerr.Syntaxf("", "invalid property shorthand syntax: %s", strings.Join(parts[1:], querySeparator))
	}

	props := node.NewMapping()
	if len(parts) == 2 {
		var err error
		props, err = DecodeQuery(parts[1])
		if err != nil {
			return "", nil, err
		}
	}

	inKey := p.syntax.Name(syntax.KeyIn)
	if implicit && !props.Has(inKey) {
		props.Set(inKey, node.Str(base))
	}

	return base, props, nil
}

// BaseKey strips the query, and the implicit scope prefix when allowImplicit
// is set, without decoding anything.
func BaseKey(key string, allowImplicit bool) string {
	if allowImplicit {
		key = strings.TrimPrefix(key, implicitScopePrefix)
	}
	base, _, _ := strings.Cut(key, querySeparator)
	return base
}

// HasShorthand reports whether key carries a query or the implicit scope prefix.
func HasShorthand(key string) bool {
	return strings.HasPrefix(key, implicitScopePrefix) || strings.Contains(key, querySeparator)
}
