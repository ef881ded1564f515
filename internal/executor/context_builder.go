package executor

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// EvalContext builds the HCL evaluation context of the plan. It exposes the
// folded variables as `var`, workspace directories as `workspace`, the
// forwarded arguments as `args` and the command directory as `dir`.
func (p *Plan) EvalContext() (*hcl.EvalContext, error) {
	vars := make(map[string]cty.Value, len(p.Scope.Variables))
	for name, v := range p.Scope.Variables {
		cv, err := node.ToCty(v)
		if err != nil {
			return nil, fmt.Errorf("variable %q: %w", name, err)
		}
		vars[name] = cv
	}

	workspaces := make(map[string]cty.Value, len(p.Workspaces))
	for name, dir := range p.Workspaces {
		workspaces[name] = cty.StringVal(dir)
	}

	args := cty.ListValEmpty(cty.String)
	if len(p.Args) > 0 {
		vals := make([]cty.Value, len(p.Args))
		for i, a := range p.Args {
			vals[i] = cty.StringVal(a)
		}
		args = cty.ListVal(vals)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"var":       cty.ObjectVal(vars),
			"workspace": cty.ObjectVal(workspaces),
			"args":      args,
			"dir":       cty.StringVal(p.Scope.Dir()),
		},
	}, nil
}

// Interpolate renders a task as an HCL template against evalCtx, so
// `echo ${var.env}` expands the env variable. A shell-style `${NAME}` is an
// unknown variable and fails; `$${NAME}` renders it literally.
func Interpolate(task string, evalCtx *hcl.EvalContext) (string, error) {
	expr, diags := hclsyntax.ParseTemplate([]byte(task), "task", hcl.InitialPos)
	if diags.HasErrors() {
		return "", fmt.Errorf("invalid task template %q: %w", task, diags)
	}
	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return "", fmt.Errorf("unable to render task %q: %w", task, diags)
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("task %q does not render to a string: %w", task, err)
	}
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("task %q renders to no value", task)
	}
	return val.AsString(), nil
}
