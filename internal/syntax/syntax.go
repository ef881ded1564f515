// Package syntax holds the fixed vocabulary of the config language: the
// reserved key names, the command path separator and the prefixes used by
// authoring sugar. A Syntax value is immutable and is passed explicitly to
// every pass, so passes can be exercised with alternate vocabularies.
package syntax

import (
	"maps"
	"strings"
)

// Key is the closed set of names the config language recognizes. Any other
// name is KeyCustom.
type Key int

const (
	KeyCustom Key = iota
	KeyIn
	KeyResetIn
	KeyVariables
	KeyPre
	KeyResetPre
	KeyPost
	KeyResetPost
	KeyRun
	KeyCommands
	KeyTasks
	KeyBackground
	KeyResetBackground
	KeyParallel
	KeyResetParallel
	KeyValue
	KeyWorkspaces
	KeyState
)

// scopeReserved are the keys that may never be used as a sub-scope or an
// implicit command name.
var scopeReserved = []Key{
	KeyIn, KeyResetIn, KeyVariables, KeyPre, KeyResetPre,
	KeyPost, KeyResetPost, KeyRun, KeyCommands, KeyTasks,
}

var stateReserved = []Key{KeyVariables}

var defaultNames = map[Key]string{
	KeyIn:              "in",
	KeyResetIn:         "-in",
	KeyVariables:       "variables",
	KeyPre:             "pre",
	KeyResetPre:        "-pre",
	KeyPost:            "post",
	KeyResetPost:       "-post",
	KeyRun:             "run",
	KeyCommands:        "commands",
	KeyTasks:           "tasks",
	KeyBackground:      "background",
	KeyResetBackground: "-background",
	KeyParallel:        "parallel",
	KeyResetParallel:   "-parallel",
	KeyValue:           "value",
	KeyWorkspaces:      "workspaces",
	KeyState:           "state",
}

// Syntax is the vocabulary used by the pipeline and the resolver.
type Syntax struct {
	// Separator joins command path segments, e.g. "api:build".
	Separator string
	// DefaultCommand is the commands key that holds a scope's default command.
	DefaultCommand string
	// WorkspacePrefix marks a deferred workspace reference, e.g. "ws:api".
	WorkspacePrefix string
	// VariablePrefix marks variable shorthand keys, e.g. "$name".
	VariablePrefix string

	names  map[Key]string
	lookup map[string]Key
}

// Default returns the standard vocabulary.
func Default() Syntax {
	s := Syntax{
		Separator:       ":",
		DefaultCommand:  ".",
		WorkspacePrefix: "ws:",
		VariablePrefix:  "$",
	}
	s.index(maps.Clone(defaultNames))
	return s
}

// WithName returns a copy of s in which k is spelled name.
func (s Syntax) WithName(k Key, name string) Syntax {
	names := maps.Clone(s.names)
	names[k] = name
	s.index(names)
	return s
}

func (s *Syntax) index(names map[Key]string) {
	s.names = names
	s.lookup = make(map[string]Key, len(names))
	for k, name := range names {
		s.lookup[name] = k
	}
}

// Name returns the spelling of k.
func (s Syntax) Name(k Key) string {
	return s.names[k]
}

// Lookup classifies name, returning KeyCustom for names outside the vocabulary.
func (s Syntax) Lookup(name string) Key {
	if k, ok := s.lookup[name]; ok {
		return k
	}
	return KeyCustom
}

// IsScopeReserved reports whether name is a reserved scope key.
func (s Syntax) IsScopeReserved(name string) bool {
	return s.in(scopeReserved, name)
}

// IsStateReserved reports whether name is a reserved state key.
func (s Syntax) IsStateReserved(name string) bool {
	return s.in(stateReserved, name)
}

func (s Syntax) in(set []Key, name string) bool {
	k := s.Lookup(name)
	for _, r := range set {
		if r == k {
			return true
		}
	}
	return false
}

// SplitPath splits a command path into its segments.
func (s Syntax) SplitPath(path string) []string {
	return strings.Split(path, s.Separator)
}

// JoinPath joins command path segments.
func (s Syntax) JoinPath(segments ...string) string {
	return strings.Join(segments, s.Separator)
}

// WorkspaceRef returns the deferred reference form of a workspace name.
func (s Syntax) WorkspaceRef(name string) string {
	return s.WorkspacePrefix + name
}

// ParseWorkspaceRef returns the workspace name if v is a deferred reference.
func (s Syntax) ParseWorkspaceRef(v string) (string, bool) {
	return strings.CutPrefix(v, s.WorkspacePrefix)
}

// VariableName returns the variable name if key uses the variable shorthand.
func (s Syntax) VariableName(key string) (string, bool) {
	return strings.CutPrefix(key, s.VariablePrefix)
}
