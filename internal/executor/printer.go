package executor

import (
	"context"
	"fmt"
	"io"

	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/scope"
	"gopkg.in/yaml.v3"
)

// Printer is an Executor that writes the plan as YAML instead of running it.
type Printer struct {
	w io.Writer
	// Render interpolates task templates before printing.
	Render bool
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, render bool) *Printer {
	return &Printer{w: w, Render: render}
}

type planDocument struct {
	ID      string              `yaml:"id"`
	Command string              `yaml:"command"`
	Dir     string              `yaml:"dir,omitempty"`
	Scope   *scope.CommandScope `yaml:"scope"`
	Args    []string            `yaml:"args,omitempty"`
}

// Execute implements Executor.
func (p *Printer) Execute(ctx context.Context, plan *Plan) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Printing plan.", "plan_id", plan.ID, "command", plan.Command, "render", p.Render)

	s := plan.Scope
	if p.Render {
		rendered, err := renderScope(plan)
		if err != nil {
			return err
		}
		s = rendered
	}

	doc := planDocument{
		ID:      plan.ID.String(),
		Command: plan.Command,
		Dir:     s.Dir(),
		Scope:   s,
		Args:    plan.Args,
	}

	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to print plan: %w", err)
	}
	return enc.Close()
}

// renderScope returns a copy of the plan scope with every task interpolated.
func renderScope(plan *Plan) (*scope.CommandScope, error) {
	evalCtx, err := plan.EvalContext()
	if err != nil {
		return nil, err
	}

	renderGroup := func(tc scope.TaskCollection) (scope.TaskCollection, error) {
		tasks := make([]string, len(tc.Tasks))
		for i, task := range tc.Tasks {
			if tasks[i], err = Interpolate(task, evalCtx); err != nil {
				return scope.TaskCollection{}, err
			}
		}
		tc.Tasks = tasks
		return tc, nil
	}

	out := *plan.Scope
	if out.Command, err = renderGroup(plan.Scope.Command); err != nil {
		return nil, err
	}
	out.PreTasks, out.PostTasks = nil, nil
	for _, tc := range plan.Scope.PreTasks {
		r, err := renderGroup(tc)
		if err != nil {
			return nil, err
		}
		out.PreTasks = append(out.PreTasks, r)
	}
	for _, tc := range plan.Scope.PostTasks {
		r, err := renderGroup(tc)
		if err != nil {
			return nil, err
		}
		out.PostTasks = append(out.PostTasks, r)
	}
	return &out, nil
}
