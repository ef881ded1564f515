package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/projectmanager/internal/app"
	"github.com/specialistvlad/projectmanager/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeProject(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const project = `
state:
  $greeting: hello
commands:
  run: make
  web:
    build: npm run build
`

func TestImplicitRun(t *testing.T) {
	testCases := []struct {
		name     string
		argv     []string
		expected []string
	}{
		{name: "command path", argv: []string{"web:build"}, expected: []string{"run", "web:build"}},
		{name: "after app flags", argv: []string{"-c", "p.yaml", "--log-level=debug", "web"}, expected: []string{"-c", "p.yaml", "--log-level=debug", "run", "web"}},
		{name: "variables", argv: []string{"--env=prod", "web"}, expected: []string{"run", "--env=prod", "web"}},
		{name: "subcommand", argv: []string{"--config", "p.yaml", "list"}, expected: []string{"--config", "p.yaml", "list"}},
		{name: "explicit run", argv: []string{"run", "web"}, expected: []string{"run", "web"}},
		{name: "help", argv: []string{"--help"}, expected: []string{"--help"}},
		{name: "only app flags", argv: []string{"--render"}, expected: []string{"--render"}},
		{name: "nothing", argv: []string{}, expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{})
			assert.Equal(t, tc.expected, implicitRun(root, tc.argv))
		})
	}
}

func TestConsumeAppFlags(t *testing.T) {
	root := NewRootCommand(&bytes.Buffer{}, &bytes.Buffer{})
	fs := root.PersistentFlags()

	rest, err := consumeAppFlags(fs, []string{"-c", "other.yaml", "--render", "--log-format=json", "--env=prod", "build"})
	require.NoError(t, err)

	assert.Equal(t, []string{"--env=prod", "build"}, rest)
	assert.Equal(t, "other.yaml", fs.Lookup("config").Value.String())
	assert.Equal(t, "true", fs.Lookup("render").Value.String())
	assert.Equal(t, "json", fs.Lookup("log-format").Value.String())

	_, err = consumeAppFlags(fs, []string{"--config"})
	assert.Error(t, err)
}

func TestExecute_Run(t *testing.T) {
	path := writeProject(t, project)
	var plans []*executor.Plan
	recorder := app.WithExecutor(executor.ExecutorFunc(func(_ context.Context, p *executor.Plan) error {
		plans = append(plans, p)
		return nil
	}))

	err := Execute(context.Background(), &bytes.Buffer{}, &bytes.Buffer{},
		[]string{"-c", path, "--greeting=hi", "web:build", "--", "--prod"}, recorder)
	require.NoError(t, err)

	require.Len(t, plans, 1)
	assert.Equal(t, "web:build", plans[0].Command)
	assert.Equal(t, []string{"npm run build"}, plans[0].Scope.Command.Tasks)
	assert.Equal(t, []string{"--prod"}, plans[0].Args)
	greeting, _ := plans[0].Scope.Variables["greeting"].AsString()
	assert.Equal(t, "hi", greeting)
}

func TestExecute_PrintsPlan(t *testing.T) {
	path := writeProject(t, project)
	out := &bytes.Buffer{}

	require.NoError(t, Execute(context.Background(), out, &bytes.Buffer{}, []string{"--config=" + path, "run", "."}))

	var printed struct {
		Command string `yaml:"command"`
		Scope   struct {
			Command struct {
				Tasks []string `yaml:"tasks"`
			} `yaml:"command"`
		} `yaml:"scope"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &printed))
	assert.Equal(t, ".", printed.Command)
	assert.Equal(t, []string{"make"}, printed.Scope.Command.Tasks)
}

func TestExecute_List(t *testing.T) {
	path := writeProject(t, project)
	out := &bytes.Buffer{}

	require.NoError(t, Execute(context.Background(), out, &bytes.Buffer{}, []string{"-c", path, "list", "--check"}))

	assert.Equal(t, "Available commands:\n- .\n- web:build\n", out.String())
}

func TestExecute_Config(t *testing.T) {
	path := writeProject(t, project)
	out := &bytes.Buffer{}

	require.NoError(t, Execute(context.Background(), out, &bytes.Buffer{}, []string{"config", "-c", path}))

	assert.Contains(t, out.String(), "greeting:")
	assert.Contains(t, out.String(), "- npm run build")
}

func TestExecute_Errors(t *testing.T) {
	path := writeProject(t, project)

	testCases := []struct {
		name         string
		argv         []string
		expectedCode int
		expectedMsg  string
	}{
		{
			name:         "unknown flag",
			argv:         []string{"list", "--nope"},
			expectedCode: 2,
			expectedMsg:  "unknown flag: --nope",
		},
		{
			name:         "invalid log level",
			argv:         []string{"-c", path, "--log-level=loud", "list"},
			expectedCode: 2,
			expectedMsg:  "invalid log-level",
		},
		{
			name:         "no command path",
			argv:         []string{"-c", path, "run", "--env=prod"},
			expectedCode: 2,
			expectedMsg:  "no command given",
		},
		{
			name:         "missing command",
			argv:         []string{"-c", path, "web:deploy"},
			expectedCode: 1,
			expectedMsg:  "commands.web - command not found: deploy",
		},
		{
			name:         "missing scope",
			argv:         []string{"-c", path, "api:build"},
			expectedCode: 1,
			expectedMsg:  "commands - scope not found: api",
		},
		{
			name:         "missing project file",
			argv:         []string{"-c", filepath.Join(t.TempDir(), "none.yaml"), "list"},
			expectedCode: 1,
			expectedMsg:  "unable to find",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Execute(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, tc.argv)

			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tc.expectedCode, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.expectedMsg)
		})
	}
}

func TestExecute_ShorthandScopeProperties(t *testing.T) {
	path := writeProject(t, "commands:\n  \"api?run=make&$env=prod\":\n    build: go build\n")
	var plans []*executor.Plan
	recorder := app.WithExecutor(executor.ExecutorFunc(func(_ context.Context, p *executor.Plan) error {
		plans = append(plans, p)
		return nil
	}))

	require.NoError(t, Execute(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-c", path, "api"}, recorder))
	require.NoError(t, Execute(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"-c", path, "api:build"}, recorder))

	require.Len(t, plans, 2)
	assert.Equal(t, []string{"make"}, plans[0].Scope.Command.Tasks)
	assert.Equal(t, []string{"go build"}, plans[1].Scope.Command.Tasks)
	for _, p := range plans {
		env, ok := p.Scope.Variables["env"]
		require.True(t, ok, "env variable missing for %s", p.Command)
		value, _ := env.AsString()
		assert.Equal(t, "prod", value)
	}
}
