package formatter

import (
	"strings"

	"github.com/pal-lang/pal/pkg/ast"
)

// Dump renders any AST node in a parenthesized prefix form, one top-level
// statement per line for programs. Failed declarations show as <error>.
func Dump(n ast.Node) string {
	var b strings.Builder
	dumpNode(&b, n)
	return b.String()
}

func dumpNode(b *strings.Builder, n ast.Node) {
	switch node := n.(type) {
	case *ast.Program:
		for i, s := range node.Statements {
			if i > 0 {
				b.WriteByte('\n')
			}
			dumpStmt(b, s)
		}
	case ast.Stmt:
		dumpStmt(b, node)
	case ast.Expr:
		dumpExpr(b, node)
	}
}

func dumpStmt(b *strings.Builder, s ast.Stmt) {
	switch stmt := s.(type) {
	case nil:
		b.WriteString("<error>")
	case *ast.ExprStmt:
		parenthesize(b, ";", stmt.Expr)
	case *ast.PrintStmt:
		parenthesize(b, "print", stmt.Expr)
	case *ast.VarStmt:
		b.WriteString("(var " + stmt.Name.Lexeme)
		if stmt.Init != nil {
			b.WriteString(" = ")
			dumpExpr(b, stmt.Init)
		}
		b.WriteByte(')')
	case *ast.BlockStmt:
		b.WriteString("(block")
		for _, inner := range stmt.Body {
			b.WriteByte(' ')
			dumpStmt(b, inner)
		}
		b.WriteByte(')')
	case *ast.IfStmt:
		if stmt.Else == nil {
			parenthesize(b, "if", stmt.Cond, stmt.Then)
		} else {
			parenthesize(b, "if-else", stmt.Cond, stmt.Then, stmt.Else)
		}
	case *ast.WhileStmt:
		parenthesize(b, "while", stmt.Cond, stmt.Body)
	}
}

func dumpExpr(b *strings.Builder, e ast.Expr) {
	switch expr := e.(type) {
	case *ast.Literal:
		b.WriteString(formatLiteral(expr.Value))
	case *ast.Grouping:
		parenthesize(b, "group", expr.Inner)
	case *ast.Unary:
		parenthesize(b, expr.Op.Lexeme, expr.Operand)
	case *ast.Binary:
		parenthesize(b, expr.Op.Lexeme, expr.Left, expr.Right)
	case *ast.Logical:
		parenthesize(b, expr.Op.Lexeme, expr.Left, expr.Right)
	case *ast.Variable:
		b.WriteString(expr.Name.Lexeme)
	case *ast.Assign:
		b.WriteString("(= " + expr.Name.Lexeme + " ")
		dumpExpr(b, expr.Value)
		b.WriteByte(')')
	}
}

func parenthesize(b *strings.Builder, name string, parts ...ast.Node) {
	b.WriteString("(" + name)
	for _, p := range parts {
		b.WriteByte(' ')
		dumpNode(b, p)
	}
	b.WriteByte(')')
}
