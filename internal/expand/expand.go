package expand

import (
	"context"

	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/shorthand"
	"github.com/specialistvlad/projectmanager/internal/syntax"
)

// PathResolver classifies config values that may name a directory.
type PathResolver interface {
	// Classify returns the canonical absolute path of value when it looks
	// like a path, resolving it against baseDir.
	Classify(value, baseDir string) (string, bool, error)
	IsDir(path string) bool
}

// Expander rewrites authoring sugar in a config tree into canonical form.
type Expander struct {
	syntax    syntax.Syntax
	paths     PathResolver
	configDir string
}

// New creates an Expander that resolves relative paths against configDir.
func New(syn syntax.Syntax, paths PathResolver, configDir string) *Expander {
	return &Expander{syntax: syn, paths: paths, configDir: configDir}
}

// Project expands a whole project document in place. Only the workspaces,
// state and commands root keys are allowed.
func (e *Expander) Project(ctx context.Context, root *node.Mapping) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Expanding project config.", "config_dir", e.configDir)

	for key := range root.All() {
		switch e.syntax.Lookup(key) {
		case syntax.KeyWorkspaces, syntax.KeyState, syntax.KeyCommands:
		default:
			return cfgerr.Referencef("", "unable to process unknown key: %s", key)
		}
	}

	for key, value := range root.All() {
		m, err := e.sectionMapping(root, key, value)
		if err != nil {
			return err
		}

		switch e.syntax.Lookup(key) {
		case syntax.KeyWorkspaces:
			err = e.Workspaces(ctx, key, m)
		case syntax.KeyState:
			err = e.State(ctx, key, m)
		case syntax.KeyCommands:
			err = e.Scope(ctx, key, m, true)
		}
		if err != nil {
			return err
		}
	}

	logger.Debug("Project config expanded.")
	return nil
}

// sectionMapping returns the mapping under a root key. An empty (null)
// section is replaced by an empty mapping.
func (e *Expander) sectionMapping(root *node.Mapping, key string, value *node.Node) (*node.Mapping, error) {
	if value.IsNull() {
		m := node.NewMapping()
		root.Set(key, node.Map(m))
		return m, nil
	}
	m, ok := value.AsMapping()
	if !ok {
		return nil, cfgerr.Syntaxf(key, "section must be a mapping, got %s", value.Kind())
	}
	return m, nil
}

// Workspaces replaces every workspace value with the canonical absolute path
// of the directory it names.
func (e *Expander) Workspaces(ctx context.Context, path string, workspaces *node.Mapping) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Expanding workspaces.", "path", path)

	for name, value := range workspaces.All() {
		keyPath := cfgerr.Join(path, name)
		s, ok := value.AsString()
		if !ok {
			return cfgerr.Syntaxf(keyPath, "workspace value must be a string, got %s", value.Kind())
		}

		dir, isPath, err := e.paths.Classify(s, e.configDir)
		if err != nil {
			return cfgerr.Wrap(cfgerr.Reference, keyPath, "invalid workspace path", err)
		}
		if !isPath {
			return cfgerr.Referencef(keyPath, "unable to get path for '%s'", s)
		}
		if !e.paths.IsDir(dir) {
			return cfgerr.Referencef(keyPath, "invalid working directory path: %s, path must be to a directory", dir)
		}

		logger.Debug("Expanded workspace.", "path", keyPath, "dir", dir)
		workspaces.Set(name, node.Str(dir))
	}
	return nil
}

// State expands the state section. Only variables are allowed in it.
func (e *Expander) State(ctx context.Context, path string, state *node.Mapping) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Expanding state.", "path", path)

	if err := e.moveShorthandVariables(path, state); err != nil {
		return err
	}

	for key, value := range state.All() {
		base := shorthand.BaseKey(key, true)
		keyPath := cfgerr.Join(path, base)

		switch e.syntax.Lookup(base) {
		case syntax.KeyVariables:
			vars, err := e.variablesMapping(keyPath, value)
			if err != nil {
				return err
			}
			state.Set(key, node.Map(e.Variables(ctx, keyPath, vars)))
		default:
			if e.syntax.IsStateReserved(base) {
				return cfgerr.Referencef(keyPath, "processing a reserved key that should have been explicitly handled")
			}
			return cfgerr.Referencef(path, "unable to process unknown key: %s", key)
		}
	}
	return nil
}

// Variables returns the canonical form of a variables mapping: "$name" keys
// are renamed to "name" and every value is wrapped as {value: v}.
func (e *Expander) Variables(ctx context.Context, path string, vars *node.Mapping) *node.Mapping {
	ctxlog.FromContext(ctx).Debug("Expanding variables.", "path", path, "count", vars.Len())

	valueKey := e.syntax.Name(syntax.KeyValue)
	out := node.NewMapping()
	for key, value := range vars.All() {
		name, _ := e.syntax.VariableName(key)
		wrapped := node.NewMapping()
		wrapped.Set(valueKey, value)
		out.Set(name, node.Map(wrapped))
	}
	return out
}

func (e *Expander) variablesMapping(path string, value *node.Node) (*node.Mapping, error) {
	if value.IsNull() {
		return node.NewMapping(), nil
	}
	vars, ok := value.AsMapping()
	if !ok {
		return nil, cfgerr.Syntaxf(path, "variables must be a mapping, got %s", value.Kind())
	}
	return vars, nil
}

// moveShorthandVariables moves "$name" keys of m into m's variables mapping.
func (e *Expander) moveShorthandVariables(path string, m *node.Mapping) error {
	var vars *node.Mapping
	for key, value := range m.All() {
		name, ok := e.syntax.VariableName(key)
		if !ok {
			continue
		}
		if vars == nil {
			var err error
			if vars, err = e.childMapping(path, m, e.syntax.Name(syntax.KeyVariables)); err != nil {
				return err
			}
		}
		m.Delete(key)
		vars.Set(name, value)
	}
	return nil
}

// childMapping returns the mapping stored under key, creating it when absent.
func (e *Expander) childMapping(path string, m *node.Mapping, key string) (*node.Mapping, error) {
	value, ok := m.Get(key)
	if !ok || value.IsNull() {
		child := node.NewMapping()
		m.Set(key, node.Map(child))
		return child, nil
	}
	child, ok := value.AsMapping()
	if !ok {
		return nil, cfgerr.Syntaxf(cfgerr.Join(path, key), "must be a mapping, got %s", value.Kind())
	}
	return child, nil
}
