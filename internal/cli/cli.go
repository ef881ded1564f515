package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/specialistvlad/projectmanager/internal/app"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	render     bool

	outW, errW io.Writer
	appOpts    []app.Option
}

// valueFlags are the persistent flags that take a separate value argument.
var valueFlags = []string{"--config", "-c", "--log-level", "--log-format"}

// NewRootCommand builds the pm command tree.
func NewRootCommand(outW, errW io.Writer, appOpts ...app.Option) *cobra.Command {
	o := &rootOptions{outW: outW, errW: errW, appOpts: appOpts}

	root := &cobra.Command{
		Use:   "pm",
		Short: "Resolve and run project commands declared in a YAML project file",
		Long: `pm reads a project file describing workspaces, variables and scoped
commands, and resolves a command path such as "api:build" into the tasks to
run, where to run them and with which variables.

A first argument that is not a pm command is run as a command path, so
"pm api:build" is the same as "pm run api:build".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "project.yaml", "Path to the project file.")
	pf.StringVar(&o.logLevel, "log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVar(&o.logFormat, "log-format", "text", "Log output format. Options: 'text' or 'json'.")
	pf.BoolVar(&o.render, "render", false, "Preview printed tasks rendered as HCL templates over var, workspace, args and dir. Resolution is unaffected; shell-style ${NAME} references fail to render.")

	root.AddCommand(newListCommand(o), newRunCommand(o), newConfigCommand(o))
	return root
}

func newListCommand(o *rootOptions) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the commands that can be run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp()
			if err != nil {
				return err
			}
			commands, err := a.List(cmd.Context(), check)
			if err != nil {
				return err
			}
			fmt.Fprintln(o.outW, "Available commands:")
			for _, c := range commands {
				fmt.Fprintf(o.outW, "- %s\n", c)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "Resolve every command and fail on the first one that does not resolve.")
	return cmd
}

func newRunCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [--name | --name=value ...] <command> [-- args...]",
		Short: "Resolve a command and hand it to the executor",
		Long: `Resolve a command path and hand the resulting plan to the executor.

Leading --name and --name=value arguments set variables (a bare flag is true).
Arguments after the command path, or after "--", are forwarded to the command.`,
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, argv []string) error {
			rest, err := consumeAppFlags(cmd.Root().PersistentFlags(), argv)
			if err != nil {
				return &ExitError{Code: 2, Message: err.Error()}
			}
			if len(rest) > 0 && (rest[0] == "-h" || rest[0] == "--help") {
				return cmd.Help()
			}
			a, err := o.newApp()
			if err != nil {
				return err
			}
			return a.Run(cmd.Context(), rest)
		},
	}
}

func newConfigCommand(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the canonical project config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := o.newApp()
			if err != nil {
				return err
			}
			return a.Dump(cmd.Context())
		},
	}
}

func (o *rootOptions) newApp() (*app.App, error) {
	cfg, err := app.NewConfig(app.Config{
		ConfigPath: o.configPath,
		LogLevel:   strings.ToLower(o.logLevel),
		LogFormat:  strings.ToLower(o.logFormat),
		Render:     o.render,
	})
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	return app.NewApp(o.outW, o.errW, cfg, o.appOpts...), nil
}

// consumeAppFlags applies the leading persistent flags of argv, which the run
// command receives unparsed, and returns the remaining arguments.
func consumeAppFlags(fs *pflag.FlagSet, argv []string) ([]string, error) {
	for len(argv) > 0 {
		arg := argv[0]
		name, value, hasValue := strings.Cut(arg, "=")

		f := lookupFlag(fs, name)
		if f == nil {
			return argv, nil
		}
		switch {
		case hasValue:
			argv = argv[1:]
		case f.Value.Type() == "bool":
			value, argv = "true", argv[1:]
		case len(argv) > 1:
			value, argv = argv[1], argv[2:]
		default:
			return nil, fmt.Errorf("flag needs an argument: %s", arg)
		}
		if err := fs.Set(f.Name, value); err != nil {
			return nil, fmt.Errorf("invalid argument %q for %q flag: %w", value, arg, err)
		}
	}
	return argv, nil
}

func lookupFlag(fs *pflag.FlagSet, arg string) *pflag.Flag {
	if name, ok := strings.CutPrefix(arg, "--"); ok {
		return fs.Lookup(name)
	}
	if short, ok := strings.CutPrefix(arg, "-"); ok && len(short) == 1 {
		return fs.ShorthandLookup(short)
	}
	return nil
}

// implicitRun inserts "run" before the first argument after the persistent
// flags when that argument is not a pm command.
func implicitRun(root *cobra.Command, argv []string) []string {
	i := 0
	for i < len(argv) {
		arg := argv[i]
		if slices.Contains(valueFlags, arg) {
			i += 2
			continue
		}
		name, _, _ := strings.Cut(arg, "=")
		if f := lookupFlag(root.PersistentFlags(), name); f != nil {
			i++
			continue
		}
		break
	}
	if i >= len(argv) {
		return argv
	}

	switch first := argv[i]; first {
	case "help", "-h", "--help", "completion":
		return argv
	default:
		for _, c := range root.Commands() {
			if c.Name() == first || c.HasAlias(first) {
				return argv
			}
		}
	}
	return slices.Concat(argv[:i], []string{"run"}, argv[i:])
}

// Execute runs the command tree with argv and maps failures to ExitError.
func Execute(ctx context.Context, outW, errW io.Writer, argv []string, appOpts ...app.Option) error {
	root := NewRootCommand(outW, errW, appOpts...)
	root.SetArgs(implicitRun(root, argv))

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	var usageErr *app.UsageError
	if errors.As(err, &usageErr) {
		return &ExitError{Code: 2, Message: usageErr.Message}
	}
	return &ExitError{Code: 1, Message: err.Error()}
}
