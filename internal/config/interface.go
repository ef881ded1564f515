package config

import (
	"context"

	"github.com/specialistvlad/projectmanager/internal/autocapture"
	"github.com/specialistvlad/projectmanager/internal/expand"
)

// Loader is the interface for loading a canonical project.
type Loader interface {
	// Load reads the project file at path and returns its canonical form.
	// On any failure no project is returned.
	Load(ctx context.Context, path string) (*Project, error)
}

// FileSystem is the set of file system collaborators the loader needs.
type FileSystem interface {
	expand.PathResolver
	autocapture.Lister
}
