// Package cli builds the pm cobra command tree: `list` prints the resolvable
// command paths, `run` resolves a path and hands the plan to the executor,
// and `config` prints the canonical project. A first argument that is not a
// subcommand gets an implicit `run`. Failures surface as ExitError carrying
// the process exit code.
package cli
