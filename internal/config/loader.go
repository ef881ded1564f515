package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/specialistvlad/projectmanager/internal/autocapture"
	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/desugar"
	"github.com/specialistvlad/projectmanager/internal/expand"
	"github.com/specialistvlad/projectmanager/internal/fsutil"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/syntax"
)

// FileLoader loads YAML project files from disk.
type FileLoader struct {
	syntax syntax.Syntax
	fs     FileSystem
}

// NewFileLoader creates a loader. A nil fs uses the real file system.
func NewFileLoader(syn syntax.Syntax, fs FileSystem) *FileLoader {
	if fs == nil {
		fs = fsutil.OS{}
	}
	return &FileLoader{syntax: syn, fs: fs}
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, path string) (*Project, error) {
	logger := ctxlog.FromContext(ctx)

	configPath, err := fsutil.Canonicalize(path, "")
	if err != nil {
		return nil, fmt.Errorf("unable to find '%s': %w", path, err)
	}
	configDir := filepath.Dir(configPath)
	logger.Debug("Processing config file.", "path", configPath)

	f, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer f.Close()

	doc, err := node.Decode(f)
	if err != nil {
		return nil, err
	}

	root, err := l.documentMapping(doc)
	if err != nil {
		return nil, err
	}
	if err := l.canonicalize(ctx, configDir, root); err != nil {
		return nil, err
	}

	logger.Debug("Config file loaded.", "path", configPath)
	return NewProject(root, configPath, configDir, l.syntax), nil
}

func (l *FileLoader) documentMapping(doc *node.Node) (*node.Mapping, error) {
	if doc.IsNull() {
		return node.NewMapping(), nil
	}
	root, ok := doc.AsMapping()
	if !ok {
		return nil, cfgerr.Syntaxf("", "project config must be a mapping, got %s", doc.Kind())
	}
	return root, nil
}

// canonicalize runs the pipeline passes over root in place.
func (l *FileLoader) canonicalize(ctx context.Context, configDir string, root *node.Mapping) error {
	expander := expand.New(l.syntax, l.fs, configDir)
	desugarer := desugar.New(l.syntax, expander)
	commandsKey := l.syntax.Name(syntax.KeyCommands)
	workspacesKey := l.syntax.Name(syntax.KeyWorkspaces)

	if err := expander.Project(ctx, root); err != nil {
		return err
	}

	commands, hasCommands := root.Mapping(commandsKey)
	if hasCommands {
		if err := desugarer.Mapping(ctx, commandsKey, commands); err != nil {
			return err
		}
	}

	workspaces, ok := root.Mapping(workspacesKey)
	if !ok {
		workspaces = node.NewMapping()
		root.Set(workspacesKey, node.Map(workspaces))
	}
	if err := autocapture.Capture(ctx, configDir, workspaces, l.fs); err != nil {
		return err
	}

	if hasCommands {
		if err := desugarer.Mapping(ctx, commandsKey, commands); err != nil {
			return err
		}
	}
	return nil
}
