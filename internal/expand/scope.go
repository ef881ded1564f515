package expand

import (
	"context"
	"strings"

	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/shorthand"
	"github.com/specialistvlad/projectmanager/internal/syntax"
)

const compoundTaskSeparator = "&&"

// Scope expands a commands scope in place. Nested mapping values are
// expanded as named sub-scopes. With strict set, keys that are neither
// reserved, commands nor sub-scopes are an error; otherwise they are left
// alone.
func (e *Expander) Scope(ctx context.Context, path string, scope *node.Mapping, strict bool) error {
	ctxlog.FromContext(ctx).Debug("Expanding scope.", "path", path, "strict", strict)

	if err := e.moveShorthandVariables(path, scope); err != nil {
		return err
	}
	if err := e.moveRun(path, scope); err != nil {
		return err
	}
	if err := e.promoteCommands(path, scope); err != nil {
		return err
	}

	for key, value := range scope.All() {
		base := shorthand.BaseKey(key, true)
		keyPath := cfgerr.Join(path, base)

		switch e.syntax.Lookup(base) {
		case syntax.KeyVariables:
			vars, err := e.variablesMapping(keyPath, value)
			if err != nil {
				return err
			}
			scope.Set(key, node.Map(e.Variables(ctx, keyPath, vars)))
		case syntax.KeyPre, syntax.KeyPost:
			tc, err := e.TaskCollection(ctx, keyPath, value)
			if err != nil {
				return err
			}
			scope.Set(key, tc)
		case syntax.KeyCommands:
			commands, err := e.childMapping(path, scope, key)
			if err != nil {
				return err
			}
			if err := e.Commands(ctx, keyPath, commands); err != nil {
				return err
			}
		case syntax.KeyIn:
			in, err := e.PotentialPath(ctx, keyPath, value)
			if err != nil {
				return err
			}
			scope.Set(key, in)
		case syntax.KeyResetIn, syntax.KeyResetPre, syntax.KeyResetPost:
		default:
			if e.syntax.IsScopeReserved(base) {
				return cfgerr.Referencef(keyPath, "processing a reserved key that should have been explicitly handled")
			}
			if sub, ok := value.AsMapping(); ok {
				if err := e.Scope(ctx, keyPath, sub, strict); err != nil {
					return err
				}
				continue
			}
			if strict {
				return cfgerr.Referencef(path, "unable to process unknown key: %s", key)
			}
		}
	}
	return nil
}

// moveRun rewrites `run` into the scope's default command. Shorthand on the
// key is carried over, so `run?parallel` becomes `commands[".?parallel"]`.
func (e *Expander) moveRun(path string, scope *node.Mapping) error {
	runKey := e.syntax.Name(syntax.KeyRun)
	for key, value := range scope.All() {
		if shorthand.BaseKey(key, false) != runKey {
			continue
		}
		commands, err := e.childMapping(path, scope, e.syntax.Name(syntax.KeyCommands))
		if err != nil {
			return err
		}
		scope.Delete(key)
		commands.Set(e.syntax.DefaultCommand+strings.TrimPrefix(key, runKey), value)
	}
	return nil
}

// promoteCommands moves string-valued keys that are not reserved into the
// scope's commands.
func (e *Expander) promoteCommands(path string, scope *node.Mapping) error {
	var commands *node.Mapping
	for key, value := range scope.All() {
		if !value.IsString() || e.syntax.IsScopeReserved(shorthand.BaseKey(key, true)) {
			continue
		}
		if commands == nil {
			var err error
			if commands, err = e.childMapping(path, scope, e.syntax.Name(syntax.KeyCommands)); err != nil {
				return err
			}
		}
		scope.Delete(key)
		commands.Set(key, value)
	}
	return nil
}

// Commands expands every entry of a commands mapping as a task collection.
func (e *Expander) Commands(ctx context.Context, path string, commands *node.Mapping) error {
	for name, value := range commands.All() {
		tc, err := e.TaskCollection(ctx, cfgerr.Join(path, name), value)
		if err != nil {
			return err
		}
		commands.Set(name, tc)
	}
	return nil
}

// TaskCollection returns the canonical task collection for value. A bare
// task or task list is wrapped as {tasks: value}; compound "a && b" tasks
// are split into separate entries.
func (e *Expander) TaskCollection(ctx context.Context, path string, value *node.Node) (*node.Node, error) {
	tasksKey := e.syntax.Name(syntax.KeyTasks)

	tc, ok := value.AsMapping()
	if !ok {
		tc = node.NewMapping()
		tc.Set(tasksKey, value)
	}

	tasks, ok := tc.Get(tasksKey)
	if !ok {
		return nil, cfgerr.Syntaxf(path, "task collection is missing %s", tasksKey)
	}
	if tasks.IsString() {
		tasks = node.Seq(tasks)
	}
	items, ok := tasks.AsSequence()
	if !ok {
		return nil, cfgerr.Syntaxf(path, "invalid command format, %s must be a string or an array of strings", tasksKey)
	}

	split := make([]*node.Node, 0, len(items))
	for _, item := range items {
		s, ok := item.AsString()
		if !ok {
			return nil, cfgerr.Syntaxf(path, "invalid command format, %s must be a string or an array of strings", tasksKey)
		}
		for _, part := range strings.Split(s, compoundTaskSeparator) {
			split = append(split, node.Str(strings.TrimSpace(part)))
		}
	}
	tc.Set(tasksKey, node.Seq(split...))

	inKey := e.syntax.Name(syntax.KeyIn)
	if in, ok := tc.Get(inKey); ok {
		resolved, err := e.PotentialPath(ctx, cfgerr.Join(path, inKey), in)
		if err != nil {
			return nil, err
		}
		tc.Set(inKey, resolved)
	}

	ctxlog.FromContext(ctx).Debug("Expanded task collection.", "path", path, "tasks", len(split))
	return node.Map(tc), nil
}

// PotentialPath canonicalizes an `in` value. Workspace references are kept;
// a value that looks like a path must name an existing directory; any other
// value is taken to be a workspace name and rewritten as a reference.
func (e *Expander) PotentialPath(ctx context.Context, path string, value *node.Node) (*node.Node, error) {
	s, ok := value.AsString()
	if !ok {
		return nil, cfgerr.Syntaxf(path, "working directory must be a string, got %s", value.Kind())
	}
	if _, ok := e.syntax.ParseWorkspaceRef(s); ok {
		return value, nil
	}

	dir, isPath, err := e.paths.Classify(s, e.configDir)
	if err != nil {
		return nil, cfgerr.Wrap(cfgerr.Reference, path, "invalid working directory path", err)
	}
	if !isPath {
		ctxlog.FromContext(ctx).Debug("Deferring workspace reference.", "path", path, "workspace", s)
		return node.Str(e.syntax.WorkspaceRef(s)), nil
	}
	if !e.paths.IsDir(dir) {
		return nil, cfgerr.Referencef(path, "invalid working directory path: %s, path must be to a directory", dir)
	}
	return node.Str(dir), nil
}

// Properties canonicalizes the reserved entries of shorthand properties
// before they are merged into a value: `$name` moves into variables, `run`
// becomes the default command, `in` is classified, `pre`, `post` and
// commands become task collections and `variables` are wrapped. Other
// entries are left as decoded and are never promoted to commands.
func (e *Expander) Properties(ctx context.Context, path string, props *node.Mapping) error {
	if err := e.moveShorthandVariables(path, props); err != nil {
		return err
	}
	if err := e.moveRun(path, props); err != nil {
		return err
	}

	for key, value := range props.All() {
		keyPath := cfgerr.Join(path, key)

		switch e.syntax.Lookup(key) {
		case syntax.KeyCommands:
			commands, err := e.childMapping(path, props, key)
			if err != nil {
				return err
			}
			if err := e.Commands(ctx, keyPath, commands); err != nil {
				return err
			}
		case syntax.KeyIn:
			in, err := e.PotentialPath(ctx, keyPath, value)
			if err != nil {
				return err
			}
			props.Set(key, in)
		case syntax.KeyPre, syntax.KeyPost:
			tc, err := e.TaskCollection(ctx, keyPath, value)
			if err != nil {
				return err
			}
			props.Set(key, tc)
		case syntax.KeyVariables:
			vars, err := e.variablesMapping(keyPath, value)
			if err != nil {
				return err
			}
			props.Set(key, node.Map(e.Variables(ctx, keyPath, vars)))
		}
	}
	return nil
}
