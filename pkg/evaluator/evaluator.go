package evaluator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/pal-lang/pal/pkg/ast"
	"github.com/pal-lang/pal/pkg/diagnostics"
	"github.com/pal-lang/pal/pkg/lexer"
)

// TraceEventType identifies the type of a trace event.
type TraceEventType string

const (
	TraceRunStart     TraceEventType = "run_start"
	TraceRunEnd       TraceEventType = "run_end"
	TraceStmtStart    TraceEventType = "stmt_start"
	TraceStmtEnd      TraceEventType = "stmt_end"
	TraceBlockEnter   TraceEventType = "block_enter"
	TraceBlockExit    TraceEventType = "block_exit"
	TraceRuntimeError TraceEventType = "runtime_error"
)

// TraceEvent represents a single trace event emitted during execution.
type TraceEvent struct {
	Timestamp string            `json:"ts"`
	RunID     string            `json:"runId"`
	Event     TraceEventType    `json:"event"`
	Line      int               `json:"line,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// ExecOptions configures program execution.
type ExecOptions struct {
	// Out receives print output. Output is discarded when nil.
	Out    io.Writer
	Logger *slog.Logger
	Budget Budget
	Trace  func(event TraceEvent)
	RunID  string
}

// ExecResult holds the result of a program execution.
type ExecResult struct {
	Diagnostics []diagnostics.Diagnostic
	Statements  int64
	Iterations  int64
}

// RuntimeError aborts evaluation. It is returned, never panicked, through
// every evaluation function.
type RuntimeError struct {
	Code    string
	Message string
	Line    int
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s [line %d]", e.Message, e.Line)
}

// Diagnostic converts the error into its reportable form.
func (e *RuntimeError) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(e.Code, e.Message, e.Line, "")
}

// ErrIncompleteProgram is returned when asked to run a program that still
// holds declarations which failed to parse.
var ErrIncompleteProgram = errors.New("evaluator: program contains unparsed declarations")

func runtimeError(code string, line int, msg string) *RuntimeError {
	return &RuntimeError{Code: code, Message: msg, Line: line}
}

// Interpreter executes Pal statements against a persistent global frame.
// It is not safe for concurrent use.
type Interpreter struct {
	ctx     context.Context
	opts    ExecOptions
	logger  *slog.Logger
	env     *Env
	scope   Handle
	tracker BudgetTracker
}

// New creates an Interpreter with a fresh global frame.
func New(opts ExecOptions) *Interpreter {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Budget.MaxDepth <= 0 {
		opts.Budget.MaxDepth = DefaultMaxDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	}
	return &Interpreter{
		ctx:    context.Background(),
		opts:   opts,
		logger: logger,
		env:    NewEnv(),
		scope:  Global,
	}
}

// Execute runs a Pal program in a new Interpreter. A runtime error is both
// returned and recorded in the result's diagnostics.
func Execute(ctx context.Context, stmts []ast.Stmt, opts ExecOptions) (*ExecResult, error) {
	in := New(opts)
	err := in.Interpret(ctx, stmts)
	result := &ExecResult{
		Statements: in.tracker.Statements,
		Iterations: in.tracker.Iterations,
	}
	var rte *RuntimeError
	if errors.As(err, &rte) {
		result.Diagnostics = append(result.Diagnostics, rte.Diagnostic())
	}
	return result, err
}

// Interpret executes stmts in order against the global frame. The first
// runtime error aborts the remaining statements. Bindings made by earlier
// calls stay visible.
func (in *Interpreter) Interpret(ctx context.Context, stmts []ast.Stmt) error {
	for _, s := range stmts {
		if s == nil {
			return ErrIncompleteProgram
		}
	}

	defer in.begin(ctx)()

	line := 1
	if len(stmts) > 0 {
		line = stmts[0].Line()
	}
	in.emit(TraceRunStart, line, nil)

	for _, s := range stmts {
		if err := in.execute(s); err != nil {
			in.fail(err)
			in.emit(TraceRunEnd, line, map[string]string{"status": "error"})
			return err
		}
	}

	in.emit(TraceRunEnd, line, map[string]string{"status": "ok"})
	return nil
}

// Evaluate evaluates a single expression in the global frame.
func (in *Interpreter) Evaluate(ctx context.Context, expr ast.Expr) (Value, error) {
	defer in.begin(ctx)()

	v, err := in.evaluate(expr)
	if err != nil {
		in.fail(err)
		return nil, err
	}
	return v, nil
}

// Globals lists the names bound in the global frame, sorted.
func (in *Interpreter) Globals() []string {
	names := in.env.Names(Global)
	sort.Strings(names)
	return names
}

// Lookup returns the global binding of name.
func (in *Interpreter) Lookup(name string) (Value, bool) {
	return in.env.Get(Global, name)
}

// begin resets per-run state. The returned func releases the time budget.
func (in *Interpreter) begin(ctx context.Context) context.CancelFunc {
	cancel := context.CancelFunc(func() {})
	if in.opts.Budget.TimeMs > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(in.opts.Budget.TimeMs)*time.Millisecond)
	}
	in.ctx = ctx
	in.scope = Global
	in.tracker = BudgetTracker{}
	return cancel
}

func (in *Interpreter) fail(err error) {
	var rte *RuntimeError
	if !errors.As(err, &rte) {
		return
	}
	in.logger.Debug("runtime error", "code", rte.Code, "line", rte.Line, "message", rte.Message)
	in.emit(TraceRuntimeError, rte.Line, map[string]string{"code": rte.Code, "message": rte.Message})
}

func (in *Interpreter) emit(event TraceEventType, line int, data map[string]string) {
	if in.opts.Trace != nil {
		in.opts.Trace(TraceEvent{
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
			RunID:     in.opts.RunID,
			Event:     event,
			Line:      line,
			Data:      data,
		})
	}
}

// enter guards recursion into node. The returned func must be deferred.
func (in *Interpreter) enter(node ast.Node) (func(), error) {
	in.tracker.Depth++
	leave := func() { in.tracker.Depth-- }
	if in.tracker.Depth > in.opts.Budget.MaxDepth {
		return leave, runtimeError(diagnostics.EDepth, node.Line(), "Maximum evaluation depth exceeded.")
	}
	return leave, nil
}

// --- Statements ---

func (in *Interpreter) execute(stmt ast.Stmt) error {
	if stmt == nil {
		return ErrIncompleteProgram
	}
	leave, err := in.enter(stmt)
	defer leave()
	if err != nil {
		return err
	}

	in.tracker.Statements++
	line := stmt.Line()
	if in.opts.Trace != nil {
		in.emit(TraceStmtStart, line, map[string]string{"kind": stmt.Kind()})
		defer in.emit(TraceStmtEnd, line, map[string]string{"kind": stmt.Kind()})
	}

	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := in.evaluate(s.Expr)
		return err

	case *ast.PrintStmt:
		v, err := in.evaluate(s.Expr)
		if err != nil {
			return err
		}
		if _, err := io.WriteString(in.opts.Out, Stringify(v)+"\n"); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil

	case *ast.VarStmt:
		v := NewNil()
		if s.Init != nil {
			if v, err = in.evaluate(s.Init); err != nil {
				return err
			}
		}
		in.env.Define(in.scope, s.Name.Lexeme, v)
		return nil

	case *ast.BlockStmt:
		return in.executeBlock(s)

	case *ast.IfStmt:
		cond, err := in.evaluate(s.Cond)
		if err != nil {
			return err
		}
		if Truthiness(cond) {
			return in.execute(s.Then)
		}
		if s.Else != nil {
			return in.execute(s.Else)
		}
		return nil

	case *ast.WhileStmt:
		return in.executeWhile(s)
	}
	return fmt.Errorf("evaluator: unsupported statement %T", stmt)
}

// executeBlock runs the body in a new frame. The previous scope is restored
// on every exit path.
func (in *Interpreter) executeBlock(block *ast.BlockStmt) error {
	prev := in.scope
	h := in.env.Push(prev)
	in.scope = h
	in.logger.Debug("block enter", "frame", int(h), "line", block.Line())
	in.emit(TraceBlockEnter, block.Line(), map[string]string{"frame": strconv.Itoa(int(h))})
	defer func() {
		in.scope = prev
		in.env.Pop(h)
		in.logger.Debug("block exit", "frame", int(h))
		in.emit(TraceBlockExit, block.Line(), map[string]string{"frame": strconv.Itoa(int(h))})
	}()

	for _, s := range block.Body {
		if err := in.execute(s); err != nil {
			return err
		}
	}
	return nil
}

func (in *Interpreter) executeWhile(loop *ast.WhileStmt) error {
	for {
		if err := in.ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return runtimeError(diagnostics.EBudget, loop.Line(), "Time budget exceeded.")
			}
			return runtimeError(diagnostics.ECancelled, loop.Line(), "Execution cancelled.")
		}

		cond, err := in.evaluate(loop.Cond)
		if err != nil {
			return err
		}
		if !Truthiness(cond) {
			return nil
		}

		if limit := in.opts.Budget.MaxIterations; limit > 0 && in.tracker.Iterations >= limit {
			return runtimeError(diagnostics.EBudget, loop.Line(), "Loop iteration budget exceeded.")
		}
		in.tracker.Iterations++

		if err := in.execute(loop.Body); err != nil {
			return err
		}
	}
}

// --- Expressions ---

func (in *Interpreter) evaluate(expr ast.Expr) (Value, error) {
	leave, err := in.enter(expr)
	defer leave()
	if err != nil {
		return nil, err
	}

	switch e := expr.(type) {
	case *ast.Literal:
		return FromLiteral(e.Value), nil

	case *ast.Grouping:
		return in.evaluate(e.Inner)

	case *ast.Variable:
		v, ok := in.env.Get(in.scope, e.Name.Lexeme)
		if !ok {
			return nil, undefined(e.Name)
		}
		return v, nil

	case *ast.Assign:
		v, err := in.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if !in.env.Assign(in.scope, e.Name.Lexeme, v) {
			return nil, undefined(e.Name)
		}
		return v, nil

	case *ast.Logical:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Op.Type == lexer.TokOr {
			if Truthiness(left) {
				return left, nil
			}
		} else if !Truthiness(left) {
			return left, nil
		}
		return in.evaluate(e.Right)

	case *ast.Unary:
		operand, err := in.evaluate(e.Operand)
		if err != nil {
			return nil, err
		}
		return unaryOp(e.Op, operand)

	case *ast.Binary:
		left, err := in.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := in.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		return binaryOp(e.Op, left, right)
	}
	return nil, fmt.Errorf("evaluator: unsupported expression %T", expr)
}

func undefined(name lexer.Token) *RuntimeError {
	return runtimeError(diagnostics.EUndefined, name.Line, fmt.Sprintf("Undefined variable '%s'.", name.Lexeme))
}

func unaryOp(op lexer.Token, operand Value) (Value, error) {
	switch op.Type {
	case lexer.TokBang:
		return NewBool(!Truthiness(operand)), nil
	case lexer.TokMinus:
		n, ok := operand.(Number)
		if !ok {
			return nil, runtimeError(diagnostics.EType, op.Line, "Operand must be a number.")
		}
		return NewNumber(-n.Value), nil
	}
	return nil, fmt.Errorf("evaluator: unknown unary operator %s", op.Lexeme)
}

func binaryOp(op lexer.Token, left, right Value) (Value, error) {
	switch op.Type {
	case lexer.TokEqualEqual:
		return NewBool(Equal(left, right)), nil
	case lexer.TokBangEqual:
		return NewBool(!Equal(left, right)), nil
	case lexer.TokPlus:
		if l, ok := left.(Number); ok {
			if r, ok := right.(Number); ok {
				return NewNumber(l.Value + r.Value), nil
			}
		}
		if l, ok := left.(String); ok {
			if r, ok := right.(String); ok {
				return NewString(l.Value + r.Value), nil
			}
		}
		return nil, runtimeError(diagnostics.EType, op.Line, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(Number)
	r, rok := right.(Number)
	if !lok || !rok {
		return nil, runtimeError(diagnostics.EType, op.Line, "Operands must be numbers")
	}
	switch op.Type {
	case lexer.TokMinus:
		return NewNumber(l.Value - r.Value), nil
	case lexer.TokStar:
		return NewNumber(l.Value * r.Value), nil
	case lexer.TokSlash:
		return NewNumber(l.Value / r.Value), nil
	case lexer.TokGreater:
		return NewBool(l.Value > r.Value), nil
	case lexer.TokGreaterEqual:
		return NewBool(l.Value >= r.Value), nil
	case lexer.TokLess:
		return NewBool(l.Value < r.Value), nil
	case lexer.TokLessEqual:
		return NewBool(l.Value <= r.Value), nil
	}
	return nil, fmt.Errorf("evaluator: unknown binary operator %s", op.Lexeme)
}
