// Package resolver turns a command path such as "api:build" into the fully
// folded CommandScope for that command.
package resolver

import (
	"context"
	"strings"

	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/config"
	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/scope"
	"github.com/specialistvlad/projectmanager/internal/syntax"
)

// Phase is the state of a single resolution.
type Phase int

const (
	PhaseDescending Phase = iota
	PhaseResolvingLeaf
	PhaseResolved
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseDescending:
		return "descending"
	case PhaseResolvingLeaf:
		return "resolving_leaf"
	case PhaseResolved:
		return "resolved"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolver resolves commands of one canonical project. It only reads the
// project, so one Resolver may serve concurrent resolutions.
type Resolver struct {
	project *config.Project
	syntax  syntax.Syntax
}

// New creates a Resolver for project.
func New(project *config.Project) *Resolver {
	return &Resolver{project: project, syntax: project.Syntax()}
}

// resolution is the working state of one Resolve call.
type resolution struct {
	phase    Phase
	scope    *scope.CommandScope
	current  *node.Mapping
	resolved []string
	leaf     string
}

// Resolve folds every scope along path, starting from the state variables
// and then initial, and selects the target command. The default command of
// the final scope takes precedence over a command of the same name.
func (r *Resolver) Resolve(ctx context.Context, path string, initial *node.Mapping) (*scope.CommandScope, error) {
	logger := ctxlog.FromContext(ctx).With("command", path)

	commands, ok := r.project.Commands()
	if !ok {
		return nil, cfgerr.Resolutionf("", "unable to run command, no commands defined in config")
	}
	if strings.TrimSpace(path) == "" {
		return nil, cfgerr.Resolutionf("", "no command given")
	}

	res := &resolution{phase: PhaseDescending, scope: scope.New(), current: commands}
	commandsKey := r.syntax.Name(syntax.KeyCommands)

	if err := r.seed(res, initial); err != nil {
		return nil, err
	}
	if err := res.scope.Accumulate(commandsKey, commands, "", r.syntax); err != nil {
		return nil, err
	}

	segments := r.syntax.SplitPath(path)
	for i, segment := range segments {
		next, ok := r.subScope(res.current, segment)
		if ok {
			res.current = next
			res.resolved = append(res.resolved, segment)
			if err := res.scope.Accumulate(r.breadcrumb(res.resolved), next, "", r.syntax); err != nil {
				return nil, err
			}
			continue
		}
		if i < len(segments)-1 {
			res.phase = PhaseFailed
			logger.Debug("Resolution failed.", "phase", res.phase, "resolved", r.syntax.JoinPath(res.resolved...))
			return nil, cfgerr.Resolutionf(r.breadcrumb(res.resolved), "scope not found: %s", segment)
		}
		res.leaf = segment
	}

	res.phase = PhaseResolvingLeaf
	logger.Debug("Resolving command.", "phase", res.phase, "resolved", r.syntax.JoinPath(res.resolved...), "leaf", res.leaf)

	target, filtered, err := r.target(res)
	if err != nil {
		res.phase = PhaseFailed
		return nil, err
	}
	if err := res.scope.Accumulate(cfgerr.Join(r.breadcrumb(res.resolved), commandsKey), filtered, target, r.syntax); err != nil {
		return nil, err
	}
	if err := r.bindWorkspaces(res.scope); err != nil {
		res.phase = PhaseFailed
		return nil, err
	}

	res.phase = PhaseResolved
	logger.Debug("Command resolved.", "phase", res.phase, "target", target, "dir", res.scope.Dir())
	return res.scope, nil
}

// seed folds the state variables, then the initial values.
func (r *Resolver) seed(res *resolution, initial *node.Mapping) error {
	state := node.NewMapping()
	state.Set(r.syntax.Name(syntax.KeyVariables), node.Map(r.project.Variables()))
	if err := res.scope.Accumulate(r.syntax.Name(syntax.KeyState), state, "", r.syntax); err != nil {
		return err
	}
	for name, value := range initial.All() {
		res.scope.SetVariable(name, value.Clone())
	}
	return nil
}

// subScope returns the named sub-scope of m. Reserved keys are never scopes.
func (r *Resolver) subScope(m *node.Mapping, segment string) (*node.Mapping, bool) {
	if r.syntax.IsScopeReserved(segment) {
		return nil, false
	}
	return m.Mapping(segment)
}

// target picks the command to run from the commands of the current scope
// and returns a copy of those commands holding only the reserved keys and
// the target.
func (r *Resolver) target(res *resolution) (string, *node.Mapping, error) {
	commands, _ := res.current.Mapping(r.syntax.Name(syntax.KeyCommands))

	target := res.leaf
	if target == "" {
		target = res.resolved[len(res.resolved)-1]
		if commands.Has(r.syntax.DefaultCommand) {
			target = r.syntax.DefaultCommand
		}
	}

	entry, ok := commands.Get(target)
	if !ok || !entry.IsMapping() {
		return "", nil, cfgerr.Resolutionf(r.breadcrumb(res.resolved), "command not found: %s", target)
	}

	filtered := node.NewMapping()
	for key, value := range commands.All() {
		if key == target || r.syntax.IsScopeReserved(key) {
			filtered.Set(key, value)
		}
	}
	return target, filtered, nil
}

// bindWorkspaces replaces workspace references with workspace directories.
func (r *Resolver) bindWorkspaces(s *scope.CommandScope) error {
	bind := func(dir *string) error {
		name, ok := r.syntax.ParseWorkspaceRef(*dir)
		if !ok {
			return nil
		}
		path, ok := r.project.Workspace(name)
		if !ok {
			return cfgerr.Referencef("", "unknown workspace: %s", name)
		}
		*dir = path
		return nil
	}

	if err := bind(&s.WorkingDir); err != nil {
		return err
	}
	if err := bind(&s.Command.WorkingDir); err != nil {
		return err
	}
	for _, group := range [][]scope.TaskCollection{s.PreTasks, s.PostTasks} {
		for i := range group {
			if err := bind(&group[i].WorkingDir); err != nil {
				return err
			}
		}
	}
	return nil
}

// breadcrumb renders the resolved segments as a dotted error path.
func (r *Resolver) breadcrumb(resolved []string) string {
	path := r.syntax.Name(syntax.KeyCommands)
	for _, segment := range resolved {
		path = cfgerr.Join(path, segment)
	}
	return path
}
