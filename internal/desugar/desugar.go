// Package desugar rewrites shorthand keys of a config tree into their base
// keys, merging the shorthand properties into the values as defaults.
package desugar

import (
	"context"

	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/shorthand"
	"github.com/specialistvlad/projectmanager/internal/syntax"
)

// PropertiesNormalizer canonicalizes decoded shorthand properties before
// they are merged.
type PropertiesNormalizer interface {
	Properties(ctx context.Context, path string, props *node.Mapping) error
}

// Desugarer resolves shorthand keys depth first.
type Desugarer struct {
	parser *shorthand.Parser
	props  PropertiesNormalizer
}

// New creates a Desugarer. props may be nil, in which case shorthand
// properties are merged as decoded.
func New(syn syntax.Syntax, props PropertiesNormalizer) *Desugarer {
	return &Desugarer{parser: shorthand.NewParser(syn), props: props}
}

// Mapping desugars m in place. Shorthand entries are reinserted under their
// base key; when a base key is authored more than once, the entry processed
// last wins.
func (d *Desugarer) Mapping(ctx context.Context, path string, m *node.Mapping) error {
	logger := ctxlog.FromContext(ctx)

	out := node.NewMapping()
	for key, value := range m.All() {
		base, props, err := d.parser.Parse(key)
		if err != nil {
			return cfgerr.WithPath(err, cfgerr.Join(path, key))
		}
		keyPath := cfgerr.Join(path, base)

		if base != key {
			logger.Debug("Desugaring shorthand key.", "path", path, "key", key, "base", base)
			if err := d.apply(ctx, keyPath, value, props); err != nil {
				return err
			}
			if out.Has(base) {
				logger.Debug("Shorthand key replaces an entry authored under its base key.", "path", keyPath)
			}
		}

		if err := d.Node(ctx, keyPath, value); err != nil {
			return err
		}
		out.Set(base, value)
	}

	m.Replace(out)
	return nil
}

// Node desugars the mappings reachable from n: n itself when it is a
// mapping, or its mapping elements when it is a sequence.
func (d *Desugarer) Node(ctx context.Context, path string, n *node.Node) error {
	if m, ok := n.AsMapping(); ok {
		return d.Mapping(ctx, path, m)
	}
	items, ok := n.AsSequence()
	if !ok {
		return nil
	}
	for _, item := range items {
		if m, ok := item.AsMapping(); ok {
			if err := d.Mapping(ctx, path, m); err != nil {
				return err
			}
		}
	}
	return nil
}

// apply merges shorthand properties into value as non-overriding defaults.
func (d *Desugarer) apply(ctx context.Context, path string, value *node.Node, props *node.Mapping) error {
	if d.props != nil && props.Len() > 0 {
		if err := d.props.Properties(ctx, path, props); err != nil {
			return err
		}
	}

	if m, ok := value.AsMapping(); ok {
		node.SoftMerge(m, props)
		return nil
	}
	items, ok := value.AsSequence()
	if !ok {
		return cfgerr.Syntaxf(path, "property shorthand can not be applied to a %s value", value.Kind())
	}
	for _, item := range items {
		m, ok := item.AsMapping()
		if !ok {
			return cfgerr.Syntaxf(path, "property shorthand can not be applied to a sequence of %s values", item.Kind())
		}
		node.SoftMerge(m, props)
	}
	return nil
}
