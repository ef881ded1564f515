package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/projectmanager/internal/args"
	"github.com/specialistvlad/projectmanager/internal/config"
	"github.com/specialistvlad/projectmanager/internal/ctxlog"
	"github.com/specialistvlad/projectmanager/internal/executor"
	"github.com/specialistvlad/projectmanager/internal/node"
	"github.com/specialistvlad/projectmanager/internal/resolver"
	"github.com/specialistvlad/projectmanager/internal/syntax"
	"gopkg.in/yaml.v3"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	executor executor.Executor
}

// Option customizes an App.
type Option func(*App)

// WithLoader replaces the file loader.
func WithLoader(l config.Loader) Option {
	return func(a *App) { a.loader = l }
}

// WithExecutor replaces the plan printer.
func WithExecutor(e executor.Executor) Option {
	return func(a *App) { a.executor = e }
}

// NewApp is the constructor for the main application. Command output goes
// to outW and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   config.NewFileLoader(syntax.Default(), nil),
		executor: executor.NewPrinter(outW, cfg.Render),
	}
	for _, opt := range opts {
		opt(a)
	}
	logger.Debug("App configured.", "config_path", cfg.ConfigPath)
	return a
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}

// Load loads the canonical project.
func (a *App) Load(ctx context.Context) (*config.Project, error) {
	ctx = a.context(ctx)
	project, err := a.loader.Load(ctx, a.config.ConfigPath)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Project loaded.", "path", project.Path, "workspaces", project.Workspaces().Len())
	return project, nil
}

// List returns the resolvable commands. With check set every command is
// resolved first, and the first failure is returned instead.
func (a *App) List(ctx context.Context, check bool) ([]string, error) {
	project, err := a.Load(ctx)
	if err != nil {
		return nil, err
	}
	r := resolver.New(project)
	if check {
		if err := r.VerifyAll(a.context(ctx)); err != nil {
			return nil, err
		}
	}
	return r.List(), nil
}

// Run resolves the command named in argv and hands the plan to the
// executor. argv holds leading --flag and --name=value arguments that seed
// variables, the command path, and the arguments forwarded to the command.
func (a *App) Run(ctx context.Context, argv []string) error {
	tokens := args.Tokenize(argv)
	initial, rest := args.InitialScope(tokens)
	if len(rest) == 0 || rest[0].Kind != args.Constant {
		return &UsageError{Message: "no command given"}
	}
	path := rest[0].Value
	forwarded := argv[len(argv)-len(rest)+1:]
	if len(forwarded) > 0 && forwarded[0] == "--" {
		forwarded = forwarded[1:]
	}

	project, err := a.Load(ctx)
	if err != nil {
		return err
	}

	ctx = a.context(ctx)
	s, err := resolver.New(project).Resolve(ctx, path, initial)
	if err != nil {
		return err
	}

	plan := executor.NewPlan(path, s, forwarded, project.Workspaces())
	ctx = ctxlog.With(ctx, "plan_id", plan.ID.String())
	ctxlog.FromContext(ctx).Info("Command resolved.", "command", path, "dir", s.Dir())

	if err := a.executor.Execute(ctx, plan); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

// Dump writes the canonical project as YAML.
func (a *App) Dump(ctx context.Context) error {
	project, err := a.Load(ctx)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(a.outW)
	enc.SetIndent(2)
	if err := enc.Encode(node.Map(project.Root)); err != nil {
		return fmt.Errorf("failed to print config: %w", err)
	}
	return enc.Close()
}

// UsageError reports invalid command line usage.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}
