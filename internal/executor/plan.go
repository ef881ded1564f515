package executor

import (
	"github.com/google/uuid"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/scope"
)

// Plan is one resolved command invocation.
type Plan struct {
	ID      uuid.UUID
	Command string
	Scope   *scope.CommandScope
	// Args are forwarded to the command unchanged.
	Args []string
	// Workspaces maps workspace names to their directories.
	Workspaces map[string]string
}

// NewPlan creates a plan with a fresh ID.
func NewPlan(command string, s *scope.CommandScope, args []string, workspaces *node.Mapping) *Plan {
	ws := make(map[string]string, workspaces.Len())
	for name, v := range workspaces.All() {
		if dir, ok := v.AsString(); ok {
			ws[name] = dir
		}
	}
	return &Plan{
		ID:         uuid.New(),
		Command:    command,
		Scope:      s,
		Args:       args,
		Workspaces: ws,
	}
}
