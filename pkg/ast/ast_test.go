package ast_test

import (
	"testing"

	"github.com/pal-lang/pal/pkg/ast"
	"github.com/pal-lang/pal/pkg/lexer"
)

func TestNodeKinds(t *testing.T) {
	name := lexer.Token{Type: lexer.TokIdent, Lexeme: "x", Line: 1}
	lit := &ast.Literal{Value: 1.0, SrcLine: 1}

	nodes := []ast.Node{
		lit,
		&ast.Grouping{Inner: lit},
		&ast.Unary{Operand: lit},
		&ast.Binary{Left: lit, Right: lit},
		&ast.Logical{Left: lit, Right: lit},
		&ast.Variable{Name: name},
		&ast.Assign{Name: name, Value: lit},
		&ast.ExprStmt{Expr: lit},
		&ast.PrintStmt{Expr: lit},
		&ast.VarStmt{Name: name},
		&ast.BlockStmt{},
		&ast.IfStmt{Cond: lit},
		&ast.WhileStmt{Cond: lit},
		&ast.Program{},
	}

	expected := []string{
		"Literal", "Grouping", "Unary", "Binary", "Logical", "Variable", "Assign",
		"ExprStmt", "PrintStmt", "VarStmt", "BlockStmt", "IfStmt", "WhileStmt",
		"Program",
	}

	for i, node := range nodes {
		if got := node.Kind(); got != expected[i] {
			t.Errorf("node %d: got Kind() = %q, want %q", i, got, expected[i])
		}
	}
}

func TestNodeLines(t *testing.T) {
	op := lexer.Token{Type: lexer.TokPlus, Lexeme: "+", Line: 4}
	left := &ast.Literal{Value: 1.0, SrcLine: 3}
	right := &ast.Literal{Value: 2.0, SrcLine: 5}

	bin := &ast.Binary{Left: left, Op: op, Right: right}
	if got := bin.Line(); got != 4 {
		t.Errorf("Binary line: got %d, want 4", got)
	}
	if got := (&ast.Grouping{Inner: bin}).Line(); got != 4 {
		t.Errorf("Grouping line: got %d, want 4", got)
	}

	prog := &ast.Program{Statements: []ast.Stmt{nil, &ast.ExprStmt{Expr: right}}}
	if got := prog.Line(); got != 5 {
		t.Errorf("Program line: got %d, want 5", got)
	}
	if got := (&ast.Program{}).Line(); got != 1 {
		t.Errorf("empty Program line: got %d, want 1", got)
	}
}
