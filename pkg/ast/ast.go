// Package ast defines the Pal language AST node types.
//
// The variant sets are closed: Expr and Stmt carry unexported marker
// methods, so every implementation lives in this package and consumers
// dispatch with exhaustive type switches.
package ast

import "github.com/pal-lang/pal/pkg/lexer"

// Node is the interface implemented by all AST nodes.
type Node interface {
	Kind() string
	// Line is the source line used for diagnostics about the node.
	Line() int
}

// --- Expr is the interface for all expression nodes ---

type Expr interface {
	Node
	exprNode() // sealed marker
}

// --- Stmt is the interface for all statement nodes ---

type Stmt interface {
	Node
	stmtNode() // sealed marker
}

// --- Expressions ---

// Literal holds nil, a bool, a float64, or a string.
type Literal struct {
	Value   any
	SrcLine int
}

func (n *Literal) Kind() string { return "Literal" }
func (n *Literal) Line() int    { return n.SrcLine }
func (n *Literal) exprNode()    {}

type Grouping struct {
	Inner Expr
}

func (n *Grouping) Kind() string { return "Grouping" }
func (n *Grouping) Line() int    { return n.Inner.Line() }
func (n *Grouping) exprNode()    {}

type Unary struct {
	Op      lexer.Token
	Operand Expr
}

func (n *Unary) Kind() string { return "Unary" }
func (n *Unary) Line() int    { return n.Op.Line }
func (n *Unary) exprNode()    {}

type Binary struct {
	Left  Expr
	Op    lexer.Token
	Right Expr
}

func (n *Binary) Kind() string { return "Binary" }
func (n *Binary) Line() int    { return n.Op.Line }
func (n *Binary) exprNode()    {}

// Logical is a short-circuiting "and" / "or".
type Logical struct {
	Left  Expr
	Op    lexer.Token
	Right Expr
}

func (n *Logical) Kind() string { return "Logical" }
func (n *Logical) Line() int    { return n.Op.Line }
func (n *Logical) exprNode()    {}

type Variable struct {
	Name lexer.Token
}

func (n *Variable) Kind() string { return "Variable" }
func (n *Variable) Line() int    { return n.Name.Line }
func (n *Variable) exprNode()    {}

type Assign struct {
	Name  lexer.Token
	Value Expr
}

func (n *Assign) Kind() string { return "Assign" }
func (n *Assign) Line() int    { return n.Name.Line }
func (n *Assign) exprNode()    {}

// --- Statements ---

type ExprStmt struct {
	Expr Expr
}

func (n *ExprStmt) Kind() string { return "ExprStmt" }
func (n *ExprStmt) Line() int    { return n.Expr.Line() }
func (n *ExprStmt) stmtNode()    {}

type PrintStmt struct {
	Keyword lexer.Token
	Expr    Expr
}

func (n *PrintStmt) Kind() string { return "PrintStmt" }
func (n *PrintStmt) Line() int    { return n.Keyword.Line }
func (n *PrintStmt) stmtNode()    {}

type VarStmt struct {
	Name lexer.Token
	Init Expr // nil when the declaration has no initializer
}

func (n *VarStmt) Kind() string { return "VarStmt" }
func (n *VarStmt) Line() int    { return n.Name.Line }
func (n *VarStmt) stmtNode()    {}

type BlockStmt struct {
	Body    []Stmt
	SrcLine int
}

func (n *BlockStmt) Kind() string { return "BlockStmt" }
func (n *BlockStmt) Line() int    { return n.SrcLine }
func (n *BlockStmt) stmtNode()    {}

type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when there is no else branch
}

func (n *IfStmt) Kind() string { return "IfStmt" }
func (n *IfStmt) Line() int    { return n.Cond.Line() }
func (n *IfStmt) stmtNode()    {}

type WhileStmt struct {
	Cond Expr
	Body Stmt
}

func (n *WhileStmt) Kind() string { return "WhileStmt" }
func (n *WhileStmt) Line() int    { return n.Cond.Line() }
func (n *WhileStmt) stmtNode()    {}

// --- Program ---

// Program is the top-level statement list. A nil entry marks a declaration
// that failed to parse; programs with nil entries are never evaluated.
type Program struct {
	Statements []Stmt
}

func (n *Program) Kind() string { return "Program" }
func (n *Program) Line() int {
	for _, s := range n.Statements {
		if s != nil {
			return s.Line()
		}
	}
	return 1
}
