package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"jasper/internal/evaluator"
	"jasper/internal/foreign"
	"jasper/internal/object"
	"jasper/internal/parser"
	"jasper/internal/sout"
	"jasper/internal/util"
	"log/slog"
	"os"
	"time"
)

// Runner owns one global environment together with the host collaborators
// wired to it. Programs run through the same Runner share definitions.
type Runner struct {
	Config    util.Configuration
	Evaluator *evaluator.Evaluator
	Out       *sout.SOut
	// ASTOut receives the tree dump when Config.DebugAST is set.
	ASTOut io.Writer

	registry *foreign.Registry
}

func New(config util.Configuration, out io.Writer) *Runner {
	registry := foreign.NewRegistry(config)

	env := evaluator.NewEnvironment()
	registry.Install(env)

	so := sout.New(out)
	r := &Runner{
		Config:    config,
		Evaluator: evaluator.New(env, so, registry.Lookup),
		Out:       so,
		ASTOut:    os.Stderr,
		registry:  registry,
	}
	slog.Debug("runner ready",
		slog.Uint64("env", env.ID),
		slog.Any("namespaces", registry.Namespaces()),
	)
	return r
}

// Run evaluates src and returns its final value. A configured timeout
// bounds the whole run.
func (r *Runner) Run(ctx context.Context, src string) (object.Value, error) {
	if r.Config.DebugAST != "" {
		if err := r.dumpAST(src); err != nil {
			return nil, err
		}
	}

	if r.Config.Timeout.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Config.Timeout.Duration)
		defer cancel()
	}

	slog.Info(" ---- begin ----")
	defer slog.Info(" ---- done ----")

	start := time.Now()
	val, err := r.Evaluator.Run(ctx, src)
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("program exceeded timeout of %s: %w", r.Config.Timeout.Duration, err)
	}
	slog.Debug("run finished", slog.Duration("elapsed", time.Since(start)), slog.Bool("ok", err == nil))
	return val, err
}

// RunFile reads and runs a source file.
func (r *Runner) RunFile(ctx context.Context, path string) (object.Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return r.Run(ctx, string(src))
}

func (r *Runner) dumpAST(src string) error {
	program, err := parser.ParseProgram(src)
	if err != nil {
		return err
	}
	rendered, err := parser.Render(program, r.Config.DebugAST)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.ASTOut, "%s\n", rendered)
	return err
}

// Close releases host resources such as database handles.
func (r *Runner) Close() error {
	return r.registry.Close()
}
