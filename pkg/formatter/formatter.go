// Package formatter implements the Pal source code formatter and AST dump.
package formatter

import (
	"strconv"
	"strings"

	"github.com/pal-lang/pal/pkg/ast"
	"github.com/pal-lang/pal/pkg/lexer"
)

const indent = "  "

// Format pretty-prints a Pal AST back to source code. Groupings are kept as
// written, so the output parses back to the same tree. Loops written with
// "for" come out in their while form.
func Format(program *ast.Program) string {
	var lines []string
	for _, s := range program.Statements {
		if s == nil {
			continue
		}
		lines = append(lines, formatStmt(s, 0))
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// HasComments checks if a source string contains Pal comments (// prefix).
// Slashes inside string literals do not count; strings may span lines.
func HasComments(source string) bool {
	inString := false
	for i := 0; i < len(source); i++ {
		switch {
		case source[i] == '"':
			inString = !inString
		case !inString && source[i] == '/' && i+1 < len(source) && source[i+1] == '/':
			return true
		}
	}
	return false
}

func formatStmt(s ast.Stmt, depth int) string {
	prefix := strings.Repeat(indent, depth)
	return prefix + formatStmtInline(s, depth)
}

// formatStmtInline renders s without leading indentation. Nested lines
// are indented relative to depth.
func formatStmtInline(s ast.Stmt, depth int) string {
	switch stmt := s.(type) {
	case *ast.ExprStmt:
		return formatExpr(stmt.Expr) + ";"
	case *ast.PrintStmt:
		return "print " + formatExpr(stmt.Expr) + ";"
	case *ast.VarStmt:
		if stmt.Init == nil {
			return "var " + stmt.Name.Lexeme + ";"
		}
		return "var " + stmt.Name.Lexeme + " = " + formatExpr(stmt.Init) + ";"
	case *ast.BlockStmt:
		return formatBlock(stmt.Body, depth)
	case *ast.IfStmt:
		out := "if (" + formatExpr(stmt.Cond) + ") " + formatStmtInline(stmt.Then, depth)
		if stmt.Else != nil {
			out += " else " + formatStmtInline(stmt.Else, depth)
		}
		return out
	case *ast.WhileStmt:
		return "while (" + formatExpr(stmt.Cond) + ") " + formatStmtInline(stmt.Body, depth)
	}
	return ""
}

func formatBlock(stmts []ast.Stmt, depth int) string {
	var lines []string
	for _, s := range stmts {
		if s == nil {
			continue
		}
		lines = append(lines, formatStmt(s, depth+1))
	}
	if len(lines) == 0 {
		return "{}"
	}
	return "{\n" + strings.Join(lines, "\n") + "\n" + strings.Repeat(indent, depth) + "}"
}

func formatExpr(e ast.Expr) string {
	switch expr := e.(type) {
	case *ast.Literal:
		return formatLiteral(expr.Value)
	case *ast.Grouping:
		return "(" + formatExpr(expr.Inner) + ")"
	case *ast.Unary:
		operand := formatExpr(expr.Operand)
		if expr.Op.Type == lexer.TokMinus && strings.HasPrefix(operand, "-") {
			return expr.Op.Lexeme + " " + operand
		}
		return expr.Op.Lexeme + operand
	case *ast.Binary:
		return formatExpr(expr.Left) + " " + expr.Op.Lexeme + " " + formatExpr(expr.Right)
	case *ast.Logical:
		return formatExpr(expr.Left) + " " + expr.Op.Lexeme + " " + formatExpr(expr.Right)
	case *ast.Variable:
		return expr.Name.Lexeme
	case *ast.Assign:
		return expr.Name.Lexeme + " = " + formatExpr(expr.Value)
	}
	return ""
}

// formatLiteral renders a literal as source text. Strings carry no escapes.
func formatLiteral(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return `"` + val + `"`
	}
	return ""
}
