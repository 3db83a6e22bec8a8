package runtime

import (
	"context"
	"fmt"

	"github.com/pal-lang/pal/pkg/evaluator"
	"github.com/pal-lang/pal/pkg/lexer"
	"github.com/pal-lang/pal/pkg/parser"
)

// Session runs successive inputs against one set of globals, as a REPL
// does. A failed input leaves earlier bindings intact.
type Session struct {
	rt *Runtime
	in *evaluator.Interpreter
}

// NewSession starts a session with empty globals.
func (rt *Runtime) NewSession() *Session {
	return &Session{rt: rt, in: evaluator.New(rt.execOptions())}
}

// Exec runs one input. An input that is a single bare expression has its
// value printed; anything else runs as a program. Diagnostics are written
// to the output stream and returned as with Run.
func (s *Session) Exec(ctx context.Context, input string) error {
	tokens, lexDiags := lexer.Tokenize(input)
	if len(lexDiags) > 0 {
		s.rt.report(lexDiags)
		return &DiagnosticError{Diagnostics: lexDiags}
	}

	if expr, diags := parser.ParseExpression(tokens); len(diags) == 0 {
		v, err := s.in.Evaluate(ctx, expr)
		if err != nil {
			fmt.Fprintln(s.rt.out, err.Error())
			return err
		}
		fmt.Fprintln(s.rt.out, evaluator.Stringify(v))
		return nil
	}

	program, diags := parser.Parse(tokens)
	if len(diags) > 0 {
		s.rt.report(diags)
		return &DiagnosticError{Diagnostics: diags}
	}
	if err := s.in.Interpret(ctx, program.Statements); err != nil {
		fmt.Fprintln(s.rt.out, err.Error())
		return err
	}
	return nil
}

// Complete reports whether input parses without hitting end of input, so a
// line editor knows to ask for more. Other errors count as complete; Exec
// reports them.
func Complete(input string) bool {
	tokens, lexDiags := lexer.Tokenize(input)
	for _, d := range lexDiags {
		if d.Message == "Unterminated string." {
			return false
		}
	}
	if _, diags := parser.ParseExpression(tokens); len(diags) == 0 {
		return true
	}
	_, diags := parser.Parse(tokens)
	for _, d := range diags {
		if d.Where == " at end" {
			return false
		}
	}
	return true
}

// Globals lists the names defined so far.
func (s *Session) Globals() []string {
	return s.in.Globals()
}
