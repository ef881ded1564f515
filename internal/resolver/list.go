package resolver

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/syntax"
	"golang.org/x/sync/errgroup"
)

// List returns every command path that can be passed to Resolve, sorted.
// The default command of a scope is listed as the scope's own path, and the
// root default command as the default command key itself.
func (r *Resolver) List() []string {
	commands, ok := r.project.Commands()
	if !ok {
		return nil
	}

	var paths []string
	r.collect(commands, nil, &paths)
	slices.Sort(paths)
	return slices.Compact(paths)
}

func (r *Resolver) collect(m *node.Mapping, prefix []string, paths *[]string) {
	commandsKey := r.syntax.Name(syntax.KeyCommands)

	if cmds, ok := m.Mapping(commandsKey); ok {
		for name, value := range cmds.All() {
			if !value.IsMapping() || r.syntax.IsScopeReserved(name) {
				continue
			}
			switch {
			case name != r.syntax.DefaultCommand:
				*paths = append(*paths, r.syntax.JoinPath(append(slices.Clone(prefix), name)...))
			case len(prefix) == 0:
				*paths = append(*paths, r.syntax.DefaultCommand)
			default:
				*paths = append(*paths, r.syntax.JoinPath(prefix...))
			}
		}
	}

	for key, value := range m.All() {
		sub, ok := value.AsMapping()
		if !ok || r.syntax.IsScopeReserved(key) {
			continue
		}
		r.collect(sub, append(slices.Clone(prefix), key), paths)
	}
}

// VerifyAll resolves every listed command concurrently and returns the first
// failure. The project is only read, so the resolutions share it.
func (r *Resolver) VerifyAll(ctx context.Context) error {
	paths := r.List()
	ctxlog.FromContext(ctx).Debug("Verifying commands.", "count", len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := r.Resolve(ctx, path, nil); err != nil {
				return fmt.Errorf("command %q: %w", path, err)
			}
			return nil
		})
	}
	return g.Wait()
}
