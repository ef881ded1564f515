package executor

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

func testPlan(t *testing.T) *Plan {
	t.Helper()
	s := scope.New()
	s.SetVariable("env", node.Str("dev"))
	s.SetVariable("replicas", node.Int(3))
	s.WorkingDir = "/repo/api"
	s.PreTasks = []scope.TaskCollection{{Tasks: []string{"make lint"}}}
	s.Command = scope.TaskCollection{Tasks: []string{"deploy --env ${var.env} --replicas ${var.replicas}"}, Parallel: true}

	ws := node.NewMapping()
	ws.Set("api", node.Str("/repo/api"))
	ws.Set("web", node.Str("/repo/web"))
	return NewPlan("api:deploy", s, []string{"--dry-run"}, ws)
}

func TestNewPlan(t *testing.T) {
	p := testPlan(t)

	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.NotEqual(t, p.ID, testPlan(t).ID)
	assert.Equal(t, map[string]string{"api": "/repo/api", "web": "/repo/web"}, p.Workspaces)
}

func TestPlan_EvalContext(t *testing.T) {
	evalCtx, err := testPlan(t).EvalContext()
	require.NoError(t, err)

	vars := evalCtx.Variables
	assert.True(t, vars["var"].GetAttr("env").RawEquals(cty.StringVal("dev")))
	assert.True(t, vars["workspace"].GetAttr("web").RawEquals(cty.StringVal("/repo/web")))
	assert.True(t, vars["dir"].RawEquals(cty.StringVal("/repo/api")))
	assert.Equal(t, 1, vars["args"].LengthInt())
}

func TestInterpolate(t *testing.T) {
	evalCtx, err := testPlan(t).EvalContext()
	require.NoError(t, err)

	testCases := []struct {
		name      string
		task      string
		expected  string
		expectErr bool
	}{
		{name: "plain task", task: "make build", expected: "make build"},
		{name: "shell variables are kept", task: "echo $HOME", expected: "echo $HOME"},
		{name: "variables", task: "deploy ${var.env} x${var.replicas}", expected: "deploy dev x3"},
		{name: "workspaces", task: "cd ${workspace.web}", expected: "cd /repo/web"},
		{name: "unknown variable", task: "echo ${var.missing}", expectErr: true},
		{name: "unclosed template", task: "echo ${var.env", expectErr: true},
		{name: "shell-style braces", task: "echo ${HOME}", expectErr: true},
		{name: "escaped shell-style braces", task: "echo $${HOME}", expected: "echo ${HOME}"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Interpolate(tc.task, evalCtx)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestPrinter_Execute(t *testing.T) {
	testCases := []struct {
		name            string
		render          bool
		expectedCommand string
	}{
		{name: "as resolved", expectedCommand: "deploy --env ${var.env} --replicas ${var.replicas}"},
		{name: "rendered", render: true, expectedCommand: "deploy --env dev --replicas 3"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := testPlan(t)
			var buf bytes.Buffer

			require.NoError(t, NewPrinter(&buf, tc.render).Execute(context.Background(), p))

			var got map[string]any
			require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
			expected := map[string]any{
				"id":      p.ID.String(),
				"command": "api:deploy",
				"dir":     "/repo/api",
				"args":    []any{"--dry-run"},
				"scope": map[string]any{
					"variables": map[string]any{"env": "dev", "replicas": 3},
					"in":        "/repo/api",
					"pre":       []any{map[string]any{"tasks": []any{"make lint"}}},
					"command": map[string]any{
						"tasks":    []any{tc.expectedCommand},
						"parallel": true,
					},
				},
			}
			if diff := cmp.Diff(expected, got); diff != "" {
				t.Errorf("printed plan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrinter_RenderDoesNotMutatePlan(t *testing.T) {
	p := testPlan(t)
	before := p.Scope.Command.Tasks[0]

	require.NoError(t, NewPrinter(&bytes.Buffer{}, true).Execute(context.Background(), p))

	assert.Equal(t, before, p.Scope.Command.Tasks[0])
}

func TestExecutorFunc(t *testing.T) {
	var got *Plan
	var exec Executor = ExecutorFunc(func(_ context.Context, plan *Plan) error {
		got = plan
		return nil
	})

	p := testPlan(t)
	require.NoError(t, exec.Execute(context.Background(), p))
	assert.Same(t, p, got)
}
