package config

import (
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/syntax"
)

// Project is a loaded, canonical project config.
type Project struct {
	// Root is the canonical document. It must not be modified once loaded.
	Root *node.Mapping
	// Path is the canonical absolute path of the project file.
	Path string
	// Dir is the directory containing the project file. Relative paths in
	// the config are resolved against it.
	Dir string

	syntax syntax.Syntax
}

// NewProject wraps an already canonical document.
func NewProject(root *node.Mapping, path, dir string, syn syntax.Syntax) *Project {
	return &Project{Root: root, Path: path, Dir: dir, syntax: syn}
}

// Syntax returns the vocabulary the project was loaded with.
func (p *Project) Syntax() syntax.Syntax {
	return p.syntax
}

// Workspaces returns the workspace name to directory mapping, which may be empty.
func (p *Project) Workspaces() *node.Mapping {
	m, _ := p.Root.Mapping(p.syntax.Name(syntax.KeyWorkspaces))
	if m == nil {
		return node.NewMapping()
	}
	return m
}

// Workspace returns the directory of the named workspace.
func (p *Project) Workspace(name string) (string, bool) {
	v, ok := p.Workspaces().Get(name)
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Commands returns the root commands scope.
func (p *Project) Commands() (*node.Mapping, bool) {
	return p.Root.Mapping(p.syntax.Name(syntax.KeyCommands))
}

// Variables returns the canonical state variables, which may be empty.
func (p *Project) Variables() *node.Mapping {
	state, ok := p.Root.Mapping(p.syntax.Name(syntax.KeyState))
	if !ok {
		return node.NewMapping()
	}
	vars, _ := state.Mapping(p.syntax.Name(syntax.KeyVariables))
	if vars == nil {
		return node.NewMapping()
	}
	return vars
}
