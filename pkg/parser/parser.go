// Package parser implements the Pal language parser.
package parser

import (
	"errors"

	"github.com/pal-lang/pal/pkg/ast"
	"github.com/pal-lang/pal/pkg/diagnostics"
	"github.com/pal-lang/pal/pkg/lexer"
)

// DefaultMaxDepth bounds statement and expression nesting.
const DefaultMaxDepth = 512

// Error is a parse error raised at a token. It unwinds to the nearest
// declaration boundary, where the parser records it and synchronizes.
type Error struct {
	Token   lexer.Token
	Message string
}

func (e *Error) Error() string {
	return e.Diagnostic().String()
}

// Diagnostic converts the error into its reportable form.
func (e *Error) Diagnostic() diagnostics.Diagnostic {
	return diagnostics.MakeDiag(
		diagnostics.EParse,
		e.Message,
		e.Token.Line,
		diagnostics.At(e.Token.Lexeme, e.Token.Type == lexer.TokEOF),
	)
}

// errHalted unwinds every enclosing production once nesting overflowed.
// It is never reported.
var errHalted = errors.New("parser halted")

type parser struct {
	tokens   []lexer.Token
	pos      int
	depth    int
	maxDepth int
	halted   bool
	diags    []diagnostics.Diagnostic
}

// Option configures the parser.
type Option func(*parser)

// WithMaxDepth overrides DefaultMaxDepth.
func WithMaxDepth(n int) Option {
	return func(p *parser) {
		if n > 0 {
			p.maxDepth = n
		}
	}
}

func newParser(tokens []lexer.Token, opts []Option) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != lexer.TokEOF {
		line := 1
		if len(tokens) > 0 {
			line = tokens[len(tokens)-1].Line
		}
		tokens = append(tokens[:len(tokens):len(tokens)], lexer.Token{Type: lexer.TokEOF, Line: line})
	}
	p := &parser{tokens: tokens, maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse builds a program from a token stream. Every parse error in the
// stream is reported; a declaration that failed to parse is recorded as a
// nil statement.
func Parse(tokens []lexer.Token, opts ...Option) (*ast.Program, []diagnostics.Diagnostic) {
	p := newParser(tokens, opts)
	prog := p.parseProgram()
	return prog, p.diags
}

// ParseSource tokenizes source and parses it. Scan diagnostics come first,
// followed by parse diagnostics.
func ParseSource(source string, opts ...Option) (*ast.Program, []diagnostics.Diagnostic) {
	tokens, lexDiags := lexer.Tokenize(source)
	prog, parseDiags := Parse(tokens, opts...)
	return prog, append(lexDiags, parseDiags...)
}

// ParseExpression parses a token stream holding exactly one expression.
func ParseExpression(tokens []lexer.Token, opts ...Option) (ast.Expr, []diagnostics.Diagnostic) {
	p := newParser(tokens, opts)
	expr, err := p.expression()
	if err != nil {
		p.report(err)
		return nil, p.diags
	}
	if !p.atEnd() {
		p.report(p.errorAt(p.peek(), "Expect end of expression."))
		return nil, p.diags
	}
	return expr, p.diags
}

// --- Token cursor ---

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) previous() lexer.Token {
	return p.tokens[p.pos-1]
}

func (p *parser) atEnd() bool {
	return p.peek().Type == lexer.TokEOF
}

func (p *parser) advance() lexer.Token {
	if !p.atEnd() {
		p.pos++
	}
	return p.previous()
}

func (p *parser) check(typ lexer.TokenType) bool {
	if p.atEnd() {
		return false
	}
	return p.peek().Type == typ
}

// match consumes the next token if it has one of the given types.
func (p *parser) match(types ...lexer.TokenType) bool {
	for _, typ := range types {
		if p.check(typ) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *parser) consume(typ lexer.TokenType, msg string) (lexer.Token, error) {
	if p.check(typ) {
		return p.advance(), nil
	}
	return lexer.Token{}, p.errorAt(p.peek(), msg)
}

func (p *parser) errorAt(tok lexer.Token, msg string) *Error {
	return &Error{Token: tok, Message: msg}
}

func (p *parser) report(err error) {
	var pe *Error
	if errors.As(err, &pe) {
		p.diags = append(p.diags, pe.Diagnostic())
	}
}

// nest tracks recursion into a nested production. The returned func must be
// deferred by the caller.
func (p *parser) nest() (func(), error) {
	p.depth++
	leave := func() { p.depth-- }
	if p.halted {
		return leave, errHalted
	}
	if p.depth > p.maxDepth {
		p.report(p.errorAt(p.peek(), "Too much nesting."))
		p.halted = true
		return leave, errHalted
	}
	return leave, nil
}

// synchronize discards tokens until a likely statement boundary: just past
// a ';' or before a keyword that starts a statement.
func (p *parser) synchronize() {
	p.advance()
	for !p.atEnd() {
		if p.previous().Type == lexer.TokSemicolon {
			return
		}
		switch p.peek().Type {
		case lexer.TokClass, lexer.TokFun, lexer.TokVar, lexer.TokFor,
			lexer.TokIf, lexer.TokWhile, lexer.TokPrint, lexer.TokReturn:
			return
		}
		p.advance()
	}
}

// --- Program ---

func (p *parser) parseProgram() *ast.Program {
	var stmts []ast.Stmt
	for !p.atEnd() && !p.halted {
		stmts = append(stmts, p.declaration())
	}
	return &ast.Program{Statements: stmts}
}

// --- Declarations ---

// declaration is the error boundary: a failed declaration is reported,
// the parser resynchronizes, and nil takes the declaration's place.
func (p *parser) declaration() ast.Stmt {
	var stmt ast.Stmt
	var err error
	if p.match(lexer.TokVar) {
		stmt, err = p.varDeclaration()
	} else {
		stmt, err = p.statement()
	}
	if err != nil {
		p.report(err)
		if !p.halted {
			p.synchronize()
		}
		return nil
	}
	return stmt
}

func (p *parser) varDeclaration() (ast.Stmt, error) {
	name, err := p.consume(lexer.TokIdent, "Expect variable name.")
	if err != nil {
		return nil, err
	}
	var init ast.Expr
	if p.match(lexer.TokEqual) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after variable declaration."); err != nil {
		return nil, err
	}
	return &ast.VarStmt{Name: name, Init: init}, nil
}

// --- Statements ---

func (p *parser) statement() (ast.Stmt, error) {
	leave, err := p.nest()
	defer leave()
	if err != nil {
		return nil, err
	}

	switch {
	case p.match(lexer.TokFor):
		return p.forStatement()
	case p.match(lexer.TokIf):
		return p.ifStatement()
	case p.match(lexer.TokPrint):
		return p.printStatement()
	case p.match(lexer.TokWhile):
		return p.whileStatement()
	case p.match(lexer.TokLeftBrace):
		line := p.previous().Line
		body, err := p.block()
		if err != nil {
			return nil, err
		}
		return &ast.BlockStmt{Body: body, SrcLine: line}, nil
	default:
		return p.expressionStatement()
	}
}

// forStatement desugars
//
//	for (init; cond; incr) body
//
// into
//
//	{ init; while (cond) { body; incr; } }
//
// leaving out the parts that are absent. A missing condition is true.
func (p *parser) forStatement() (ast.Stmt, error) {
	forTok := p.previous()
	if _, err := p.consume(lexer.TokLeftParen, "Expect '(' after 'for'."); err != nil {
		return nil, err
	}

	var init ast.Stmt
	var err error
	switch {
	case p.match(lexer.TokSemicolon):
	case p.match(lexer.TokVar):
		init, err = p.varDeclaration()
	default:
		init, err = p.expressionStatement()
	}
	if err != nil {
		return nil, err
	}

	var cond ast.Expr
	if !p.check(lexer.TokSemicolon) {
		if cond, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after loop condition."); err != nil {
		return nil, err
	}

	var incr ast.Expr
	if !p.check(lexer.TokRightParen) {
		if incr, err = p.expression(); err != nil {
			return nil, err
		}
	}
	if _, err := p.consume(lexer.TokRightParen, "Expect ')' after for clauses."); err != nil {
		return nil, err
	}

	body, err := p.statement()
	if err != nil {
		return nil, err
	}

	if incr != nil {
		body = &ast.BlockStmt{
			Body:    []ast.Stmt{body, &ast.ExprStmt{Expr: incr}},
			SrcLine: forTok.Line,
		}
	}
	if cond == nil {
		cond = &ast.Literal{Value: true, SrcLine: forTok.Line}
	}
	body = &ast.WhileStmt{Cond: cond, Body: body}
	if init != nil {
		body = &ast.BlockStmt{Body: []ast.Stmt{init, body}, SrcLine: forTok.Line}
	}
	return body, nil
}

func (p *parser) ifStatement() (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokLeftParen, "Expect '(' after 'if'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokRightParen, "Expect ')' after if condition."); err != nil {
		return nil, err
	}

	then, err := p.statement()
	if err != nil {
		return nil, err
	}
	// The else binds to the nearest if.
	var els ast.Stmt
	if p.match(lexer.TokElse) {
		if els, err = p.statement(); err != nil {
			return nil, err
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) printStatement() (ast.Stmt, error) {
	keyword := p.previous()
	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.PrintStmt{Keyword: keyword, Expr: value}, nil
}

func (p *parser) whileStatement() (ast.Stmt, error) {
	if _, err := p.consume(lexer.TokLeftParen, "Expect '(' after 'while'."); err != nil {
		return nil, err
	}
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokRightParen, "Expect ')' after condition."); err != nil {
		return nil, err
	}
	body, err := p.statement()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Cond: cond, Body: body}, nil
}

func (p *parser) expressionStatement() (ast.Stmt, error) {
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consume(lexer.TokSemicolon, "Expect ';' after value."); err != nil {
		return nil, err
	}
	return &ast.ExprStmt{Expr: expr}, nil
}

// --- Block ---

func (p *parser) block() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for !p.check(lexer.TokRightBrace) && !p.atEnd() && !p.halted {
		stmts = append(stmts, p.declaration())
	}
	if p.halted {
		return nil, errHalted
	}
	if _, err := p.consume(lexer.TokRightBrace, "Expect '}' after block."); err != nil {
		return nil, err
	}
	return stmts, nil
}

// --- Expressions ---

func (p *parser) expression() (ast.Expr, error) {
	return p.assignment()
}

func (p *parser) assignment() (ast.Expr, error) {
	leave, err := p.nest()
	defer leave()
	if err != nil {
		return nil, err
	}

	expr, err := p.or()
	if err != nil {
		return nil, err
	}

	if p.match(lexer.TokEqual) {
		equals := p.previous()
		value, err := p.assignment()
		if err != nil {
			return nil, err
		}
		if v, ok := expr.(*ast.Variable); ok {
			return &ast.Assign{Name: v.Name, Value: value}, nil
		}
		// Reported without unwinding: the parser is not confused.
		p.report(p.errorAt(equals, "Invalid assignment target."))
	}
	return expr, nil
}

func (p *parser) or() (ast.Expr, error) {
	left, err := p.and()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokOr) {
		op := p.previous()
		right, err := p.and()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) and() (ast.Expr, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokAnd) {
		op := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		left = &ast.Logical{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) equality() (ast.Expr, error) {
	left, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokBangEqual, lexer.TokEqualEqual) {
		op := p.previous()
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) comparison() (ast.Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokGreater, lexer.TokGreaterEqual, lexer.TokLess, lexer.TokLessEqual) {
		op := p.previous()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) term() (ast.Expr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokMinus, lexer.TokPlus) {
		op := p.previous()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) factor() (ast.Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.match(lexer.TokSlash, lexer.TokStar) {
		op := p.previous()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *parser) unary() (ast.Expr, error) {
	if p.match(lexer.TokBang, lexer.TokMinus) {
		op := p.previous()
		leave, err := p.nest()
		defer leave()
		if err != nil {
			return nil, err
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Op: op, Operand: operand}, nil
	}
	return p.primary()
}

func (p *parser) primary() (ast.Expr, error) {
	tok := p.peek()
	switch {
	case p.match(lexer.TokFalse):
		return &ast.Literal{Value: false, SrcLine: tok.Line}, nil
	case p.match(lexer.TokTrue):
		return &ast.Literal{Value: true, SrcLine: tok.Line}, nil
	case p.match(lexer.TokNil):
		return &ast.Literal{Value: nil, SrcLine: tok.Line}, nil
	case p.match(lexer.TokNumber, lexer.TokString):
		return &ast.Literal{Value: tok.Literal, SrcLine: tok.Line}, nil
	case p.match(lexer.TokIdent):
		return &ast.Variable{Name: tok}, nil
	case p.match(lexer.TokLeftParen):
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consume(lexer.TokRightParen, "Expect ')' after expression."); err != nil {
			return nil, err
		}
		return &ast.Grouping{Inner: inner}, nil
	}
	return nil, p.errorAt(tok, "Expect expression.")
}
