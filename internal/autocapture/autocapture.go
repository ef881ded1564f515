// Package autocapture adds the subdirectories of the working directory to a
// project's workspaces.
package autocapture

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/fsutil"
	"github.com/specialistvlad/projectmanager/internal/node"
)

// Lister lists the immediate subdirectories of a directory.
type Lister interface {
	ListSubdirs(dir string) ([]fsutil.Entry, error)
}

// Capture inserts every non-hidden subdirectory of workingDir into
// workspaces, keyed by its name with spaces replaced by "-". Explicit
// entries are never changed: a candidate whose name is already a key, or
// whose path is already a value, is skipped with a warning.
func Capture(ctx context.Context, workingDir string, workspaces *node.Mapping, lister Lister) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Auto-capturing workspaces.", "dir", workingDir)

	entries, err := lister.ListSubdirs(workingDir)
	if err != nil {
		return fmt.Errorf("failed to auto-capture workspaces: %w", err)
	}

	paths := make(map[string]struct{}, workspaces.Len())
	for _, v := range workspaces.All() {
		if s, ok := v.AsString(); ok {
			paths[s] = struct{}{}
		}
	}

	captured := 0
	for _, e := range entries {
		if strings.HasPrefix(e.Name, ".") {
			continue
		}
		name := strings.ReplaceAll(e.Name, " ", "-")

		_, pathTaken := paths[e.Path]
		if workspaces.Has(name) || pathTaken {
			logger.Warn("Conflicting key or value already present in workspaces, skipping.", "key", name, "path", e.Path)
			continue
		}

		workspaces.Set(name, node.Str(e.Path))
		paths[e.Path] = struct{}{}
		captured++
	}

	logger.Debug("Auto-captured workspaces.", "count", captured)
	return nil
}
