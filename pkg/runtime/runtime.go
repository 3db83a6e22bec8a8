// Package runtime provides the top-level Pal runtime orchestrator.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pal-lang/pal/pkg/ast"
	"github.com/pal-lang/pal/pkg/config"
	"github.com/pal-lang/pal/pkg/diagnostics"
	"github.com/pal-lang/pal/pkg/evaluator"
	"github.com/pal-lang/pal/pkg/formatter"
	"github.com/pal-lang/pal/pkg/lexer"
	"github.com/pal-lang/pal/pkg/parser"
	"github.com/pal-lang/pal/pkg/validator"
)

// Runtime wires together all Pal components for program execution.
type Runtime struct {
	out     io.Writer
	logger  *slog.Logger
	cfg     *config.Config
	verbose bool
	runID   string
	trace   func(event evaluator.TraceEvent)
}

// Option is a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithOutput sets the stream receiving program output and diagnostics.
func WithOutput(w io.Writer) Option {
	return func(rt *Runtime) {
		rt.out = w
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithConfig applies limits and verbosity from a loaded configuration.
func WithConfig(cfg *config.Config) Option {
	return func(rt *Runtime) {
		rt.cfg = cfg
		rt.verbose = cfg.Verbose
	}
}

// WithVerbose dumps the source, tokens, tree and timing around each run.
func WithVerbose(v bool) Option {
	return func(rt *Runtime) {
		rt.verbose = v
	}
}

// WithRunID sets the run ID for trace events.
func WithRunID(id string) Option {
	return func(rt *Runtime) {
		rt.runID = id
	}
}

// WithTrace sets the trace callback.
func WithTrace(fn func(event evaluator.TraceEvent)) Option {
	return func(rt *Runtime) {
		rt.trace = fn
	}
}

// New creates a new Runtime with the given options.
// By default output goes to stdout and the built-in configuration applies.
func New(opts ...Option) *Runtime {
	rt := &Runtime{
		out:   os.Stdout,
		cfg:   config.Default(),
		runID: "cli",
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.logger == nil {
		rt.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: rt.cfg.Level()}))
	}
	return rt
}

// Run lexes, parses, and executes a Pal program. Every diagnostic is written
// to the output stream as it would be shown to a user. Scan and parse errors
// come back as *DiagnosticError and suppress execution; a runtime error
// comes back as *evaluator.RuntimeError.
func (rt *Runtime) Run(ctx context.Context, source, filename string) error {
	start := time.Now()
	if rt.verbose {
		defer func() {
			elapsed := strconv.FormatFloat(time.Since(start).Seconds(), 'f', -1, 64)
			fmt.Fprintf(rt.out, "Execution finished in %s seconds\n", elapsed)
		}()
		fmt.Fprintln(rt.out, source)
	}

	program, c := rt.parse(source, filename)
	if c.HadError() {
		diags := c.Errors()
		rt.report(diags)
		return &DiagnosticError{Diagnostics: diags}
	}
	if rt.verbose {
		fmt.Fprintln(rt.out, formatter.Dump(program))
	}
	for _, w := range validator.Validate(program) {
		rt.logger.Warn("lint", "file", filename, "code", w.Code, "line", w.Line, "message", w.Message)
	}

	evalStart := time.Now()
	result, err := evaluator.Execute(ctx, program.Statements, rt.execOptions())
	rt.logger.Debug("evaluated", "file", filename, "elapsed", time.Since(evalStart),
		"statements", result.Statements, "iterations", result.Iterations)
	if err != nil {
		rt.report(result.Diagnostics)
		return err
	}
	return nil
}

// parse runs the lexer and parser. In verbose mode every token is echoed.
func (rt *Runtime) parse(source, filename string) (*ast.Program, *diagnostics.Collector) {
	c := &diagnostics.Collector{}

	lexStart := time.Now()
	tokens, lexDiags := lexer.Tokenize(source)
	c.Extend(lexDiags)
	rt.logger.Debug("lexed", "file", filename, "tokens", len(tokens), "elapsed", time.Since(lexStart))
	if rt.verbose {
		for _, tok := range tokens {
			fmt.Fprintln(rt.out, tok.String())
		}
	}

	parseStart := time.Now()
	program, parseDiags := parser.Parse(tokens)
	c.Extend(parseDiags)
	rt.logger.Debug("parsed", "file", filename, "statements", len(program.Statements), "elapsed", time.Since(parseStart))

	return program, c
}

func (rt *Runtime) report(diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(rt.out, d.String())
	}
}

// Check lexes and parses a Pal program without executing it. Parse errors
// are returned alone; a clean parse returns the lint warnings.
func (rt *Runtime) Check(source, filename string) []diagnostics.Diagnostic {
	program, diags := parser.ParseSource(source)
	if len(diags) > 0 {
		rt.logger.Debug("checked", "file", filename, "errors", len(diags))
		return diags
	}
	warnings := validator.Validate(program)
	rt.logger.Debug("checked", "file", filename, "warnings", len(warnings))
	return warnings
}

// Format parses and formats a Pal program.
func (rt *Runtime) Format(source, filename string) (string, error) {
	program, diags := parser.ParseSource(source)
	if len(diags) > 0 {
		rt.logger.Debug("format skipped", "file", filename, "errors", len(diags))
		return "", &DiagnosticError{Diagnostics: diags}
	}
	rt.logger.Debug("formatted", "file", filename, "statements", len(program.Statements))
	return formatter.Format(program), nil
}

// execOptions constructs evaluator options from the runtime's configuration.
func (rt *Runtime) execOptions() evaluator.ExecOptions {
	return evaluator.ExecOptions{
		Out:    rt.out,
		Logger: rt.logger,
		Budget: rt.cfg.Budget(),
		Trace:  rt.trace,
		RunID:  rt.runID,
	}
}

// DiagnosticError wraps scan and parse diagnostics as an error.
type DiagnosticError struct {
	Diagnostics []diagnostics.Diagnostic
}

func (e *DiagnosticError) Error() string {
	msgs := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		msgs[i] = d.String()
	}
	return strings.Join(msgs, "; ")
}

// Exit statuses of the pal command.
const (
	ExitOK      = 0
	ExitUsage   = 1
	ExitStatic  = 65
	ExitRuntime = 70
)

// ExitCode maps the error from Run to a process exit status.
func ExitCode(err error) int {
	var derr *DiagnosticError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &derr):
		return ExitStatic
	case IsRuntimeError(err):
		return ExitRuntime
	default:
		return ExitUsage
	}
}

// IsRuntimeError reports whether err carries an evaluation failure rather
// than a static one.
func IsRuntimeError(err error) bool {
	var rte *evaluator.RuntimeError
	return errors.As(err, &rte)
}
