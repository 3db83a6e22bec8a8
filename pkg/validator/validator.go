// Package validator implements static lint checks over Pal programs.
//
// Findings are warnings: they never stop a program from running, since the
// offending code may be unreachable.
package validator

import (
	"fmt"
	"sort"

	"github.com/pal-lang/pal/pkg/ast"
	"github.com/pal-lang/pal/pkg/diagnostics"
	"github.com/pal-lang/pal/pkg/lexer"
)

type binding struct {
	name lexer.Token
	used bool
}

type scope struct {
	bindings map[string]*binding
	parent   *scope
}

func newScope(parent *scope) *scope {
	return &scope{bindings: make(map[string]*binding), parent: parent}
}

func (s *scope) lookup(name string) *binding {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b
		}
	}
	return nil
}

func (s *scope) add(name lexer.Token) {
	s.bindings[name.Lexeme] = &binding{name: name}
}

type validator struct {
	diags []diagnostics.Diagnostic
	scope *scope
}

// Validate checks program and returns its warnings in source order.
// Names in predeclared count as globals, as in a REPL session.
//
// Two checks run:
//   - W_UNBOUND: a variable is read or assigned before any declaration of it
//     is in scope.
//   - W_UNUSED: a block-local variable is declared but never read.
func Validate(program *ast.Program, predeclared ...string) []diagnostics.Diagnostic {
	v := &validator{scope: newScope(nil)}
	for _, name := range predeclared {
		v.scope.add(lexer.Token{Type: lexer.TokIdent, Lexeme: name})
	}
	v.validateStatements(program.Statements)

	sort.SliceStable(v.diags, func(i, j int) bool {
		return v.diags[i].Line < v.diags[j].Line
	})
	return v.diags
}

func (v *validator) warn(code string, tok lexer.Token, msg string) {
	v.diags = append(v.diags, diagnostics.MakeDiag(code, msg, tok.Line, diagnostics.At(tok.Lexeme, false)))
}

func (v *validator) validateStatements(stmts []ast.Stmt) {
	for _, s := range stmts {
		v.validateStmt(s)
	}
}

func (v *validator) validateStmt(s ast.Stmt) {
	switch stmt := s.(type) {
	case nil:
		// A declaration that failed to parse.
	case *ast.ExprStmt:
		v.validateExpr(stmt.Expr)
	case *ast.PrintStmt:
		v.validateExpr(stmt.Expr)
	case *ast.VarStmt:
		// The initializer sees the scope as it was before the declaration.
		if stmt.Init != nil {
			v.validateExpr(stmt.Init)
		}
		v.scope.add(stmt.Name)
	case *ast.BlockStmt:
		v.scope = newScope(v.scope)
		v.validateStatements(stmt.Body)
		v.closeScope()
	case *ast.IfStmt:
		v.validateExpr(stmt.Cond)
		v.validateStmt(stmt.Then)
		if stmt.Else != nil {
			v.validateStmt(stmt.Else)
		}
	case *ast.WhileStmt:
		v.validateExpr(stmt.Cond)
		v.validateStmt(stmt.Body)
	}
}

func (v *validator) closeScope() {
	var unused []*binding
	for _, b := range v.scope.bindings {
		if !b.used {
			unused = append(unused, b)
		}
	}
	sort.Slice(unused, func(i, j int) bool {
		return unused[i].name.Line < unused[j].name.Line
	})
	for _, b := range unused {
		v.warn(diagnostics.WUnused, b.name, fmt.Sprintf("Local variable '%s' is never read.", b.name.Lexeme))
	}
	v.scope = v.scope.parent
}

func (v *validator) validateExpr(e ast.Expr) {
	switch expr := e.(type) {
	case *ast.Literal:
	case *ast.Grouping:
		v.validateExpr(expr.Inner)
	case *ast.Unary:
		v.validateExpr(expr.Operand)
	case *ast.Binary:
		v.validateExpr(expr.Left)
		v.validateExpr(expr.Right)
	case *ast.Logical:
		v.validateExpr(expr.Left)
		v.validateExpr(expr.Right)
	case *ast.Variable:
		b := v.scope.lookup(expr.Name.Lexeme)
		if b == nil {
			v.unbound(expr.Name)
			return
		}
		b.used = true
	case *ast.Assign:
		v.validateExpr(expr.Value)
		if v.scope.lookup(expr.Name.Lexeme) == nil {
			v.unbound(expr.Name)
		}
	}
}

func (v *validator) unbound(name lexer.Token) {
	v.warn(diagnostics.WUnbound, name, fmt.Sprintf("Variable '%s' is used before it is declared.", name.Lexeme))
}
