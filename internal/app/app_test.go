package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/projectmanager/internal/cfgerr"
	"github.com/specialistvlad/projectmanager/internal/executor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProject = `
workspaces:
  api: ./api
state:
  $env: dev
commands:
  "!api":
    build: go build ./...
    run: go run .
  lint: golangci-lint run
`

// setupAppTest writes testProject to a temp dir and returns an App whose
// executor records the plans it receives.
func setupAppTest(t *testing.T, content string) (*App, *[]*executor.Plan, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "api"), 0o755))
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewConfig(Config{ConfigPath: path, LogLevel: "debug"})
	require.NoError(t, err)

	var plans []*executor.Plan
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}
	a := NewApp(out, logs, cfg, WithExecutor(executor.ExecutorFunc(func(_ context.Context, p *executor.Plan) error {
		plans = append(plans, p)
		return nil
	})))

	t.Cleanup(func() {
		if os.Getenv("PM_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, &plans, out, logs
}

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name      string
		input     Config
		expectErr bool
		expected  Config
	}{
		{
			name:     "defaults",
			input:    Config{ConfigPath: "project.yaml"},
			expected: Config{ConfigPath: "project.yaml", LogLevel: "warn", LogFormat: "text"},
		},
		{
			name:     "explicit values",
			input:    Config{ConfigPath: "p.yaml", LogLevel: "debug", LogFormat: "json", Render: true},
			expected: Config{ConfigPath: "p.yaml", LogLevel: "debug", LogFormat: "json", Render: true},
		},
		{name: "missing path", input: Config{}, expectErr: true},
		{name: "bad level", input: Config{ConfigPath: "p.yaml", LogLevel: "loud"}, expectErr: true},
		{name: "bad format", input: Config{ConfigPath: "p.yaml", LogFormat: "xml"}, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.input)
			if tc.expectErr {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, *cfg)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger("info", "json", &buf)

	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"key":"value"`)
}

func TestApp_Run(t *testing.T) {
	a, plans, _, logs := setupAppTest(t, testProject)

	err := a.Run(context.Background(), []string{"--env=prod", "--verbose", "api:build", "--", "-v", "extra"})
	require.NoError(t, err)

	require.Len(t, *plans, 1)
	p := (*plans)[0]
	assert.Equal(t, "api:build", p.Command)
	assert.Equal(t, []string{"-v", "extra"}, p.Args)
	assert.Equal(t, []string{"go build ./..."}, p.Scope.Command.Tasks)
	assert.Equal(t, p.Workspaces["api"], p.Scope.Dir())
	env, _ := p.Scope.Variables["env"].AsString()
	assert.Equal(t, "prod", env)
	verbose, _ := p.Scope.Variables["verbose"].AsBool()
	assert.True(t, verbose)
	assert.Contains(t, logs.String(), "plan_id="+p.ID.String())
}

func TestApp_RunDefaultCommand(t *testing.T) {
	a, plans, _, _ := setupAppTest(t, testProject)

	require.NoError(t, a.Run(context.Background(), []string{"api"}))

	require.Len(t, *plans, 1)
	assert.Equal(t, []string{"go run ."}, (*plans)[0].Scope.Command.Tasks)
}

func TestApp_RunErrors(t *testing.T) {
	a, plans, _, _ := setupAppTest(t, testProject)

	err := a.Run(context.Background(), []string{"--env=prod"})
	var usageErr *UsageError
	assert.ErrorAs(t, err, &usageErr)

	err = a.Run(context.Background(), []string{"api:nope"})
	assert.Equal(t, cfgerr.Resolution, cfgerr.KindOf(err))

	assert.Empty(t, *plans)
}

func TestApp_List(t *testing.T) {
	a, _, _, _ := setupAppTest(t, testProject)

	commands, err := a.List(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, []string{"api", "api:build", "lint"}, commands)
}

func TestApp_LoadError(t *testing.T) {
	a, _, _, _ := setupAppTest(t, "scripts: {build: make}\n")

	_, err := a.List(context.Background(), false)

	require.Error(t, err)
	assert.Equal(t, cfgerr.Reference, cfgerr.KindOf(err))
}

func TestApp_Dump(t *testing.T) {
	a, _, out, _ := setupAppTest(t, testProject)

	require.NoError(t, a.Dump(context.Background()))

	assert.Contains(t, out.String(), "workspaces:")
	assert.Contains(t, out.String(), "- golangci-lint run")
}

func TestApp_PrintsPlanByDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte("commands:\n  hello: echo ${var.name}\n"), 0o600))
	cfg, err := NewConfig(Config{ConfigPath: path, Render: true})
	require.NoError(t, err)
	out := &bytes.Buffer{}

	require.NoError(t, NewApp(out, &bytes.Buffer{}, cfg).Run(context.Background(), []string{"--name=world", "hello"}))

	assert.Contains(t, out.String(), "command: hello\n")
	assert.Contains(t, out.String(), "- echo world\n")
}
