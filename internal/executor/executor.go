// Package executor hands resolved commands over for execution. The core only
// resolves what to run; an Executor decides how.
package executor

import "context"

// Executor runs, or otherwise consumes, a resolved plan.
type Executor interface {
	Execute(ctx context.Context, plan *Plan) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, plan *Plan) error

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, plan *Plan) error {
	return f(ctx, plan)
}
