// Package lexer implements the Pal language tokenizer.
package lexer

import (
	"fmt"
	"sort"
	"strconv"
	"unicode/utf8"

	"github.com/pal-lang/pal/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Punctuation
	TokLeftParen  TokenType = iota // (
	TokRightParen                  // )
	TokLeftBrace                   // {
	TokRightBrace                  // }
	TokComma                       // ,
	TokDot                         // .
	TokMinus                       // -
	TokPlus                        // +
	TokSemicolon                   // ;
	TokSlash                       // /
	TokStar                        // *

	// One or two character operators
	TokBang         // !
	TokBangEqual    // !=
	TokEqual        // =
	TokEqualEqual   // ==
	TokGreater      // >
	TokGreaterEqual // >=
	TokLess         // <
	TokLessEqual    // <=

	// Literals
	TokIdent
	TokString
	TokNumber

	// Keywords
	TokAnd
	TokClass
	TokElse
	TokFalse
	TokFun
	TokFor
	TokIf
	TokNil
	TokOr
	TokPrint
	TokReturn
	TokSuper
	TokThis
	TokTrue
	TokVar
	TokWhile

	// Special
	TokEOF
)

var tokenNames = [...]string{
	TokLeftParen:    "LEFT_PAREN",
	TokRightParen:   "RIGHT_PAREN",
	TokLeftBrace:    "LEFT_BRACE",
	TokRightBrace:   "RIGHT_BRACE",
	TokComma:        "COMMA",
	TokDot:          "DOT",
	TokMinus:        "MINUS",
	TokPlus:         "PLUS",
	TokSemicolon:    "SEMICOLON",
	TokSlash:        "SLASH",
	TokStar:         "STAR",
	TokBang:         "BANG",
	TokBangEqual:    "BANG_EQUAL",
	TokEqual:        "EQUAL",
	TokEqualEqual:   "EQUAL_EQUAL",
	TokGreater:      "GREATER",
	TokGreaterEqual: "GREATER_EQUAL",
	TokLess:         "LESS",
	TokLessEqual:    "LESS_EQUAL",
	TokIdent:        "IDENTIFIER",
	TokString:       "STRING",
	TokNumber:       "NUMBER",
	TokAnd:          "AND",
	TokClass:        "CLASS",
	TokElse:         "ELSE",
	TokFalse:        "FALSE",
	TokFun:          "FUN",
	TokFor:          "FOR",
	TokIf:           "IF",
	TokNil:          "NIL",
	TokOr:           "OR",
	TokPrint:        "PRINT",
	TokReturn:       "RETURN",
	TokSuper:        "SUPER",
	TokThis:         "THIS",
	TokTrue:         "TRUE",
	TokVar:          "VAR",
	TokWhile:        "WHILE",
	TokEOF:          "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token represents a single lexer token.
type Token struct {
	Type   TokenType
	Lexeme string
	// Literal is a float64 for numbers, a string for strings, and nil otherwise.
	Literal any
	Line    int
}

// String renders the token as "<TYPE> <lexeme> <literal>" for verbose dumps.
func (t Token) String() string {
	lit := "nil"
	switch v := t.Literal.(type) {
	case float64:
		lit = strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		lit = v
	}
	return fmt.Sprintf("%s %s %s", t.Type, t.Lexeme, lit)
}

var keywords = map[string]TokenType{
	"and":    TokAnd,
	"class":  TokClass,
	"else":   TokElse,
	"false":  TokFalse,
	"for":    TokFor,
	"fun":    TokFun,
	"if":     TokIf,
	"nil":    TokNil,
	"or":     TokOr,
	"print":  TokPrint,
	"return": TokReturn,
	"super":  TokSuper,
	"this":   TokThis,
	"true":   TokTrue,
	"var":    TokVar,
	"while":  TokWhile,
}

// LookupKeyword returns the keyword token type for ident, or TokIdent.
func LookupKeyword(ident string) TokenType {
	if tokType, ok := keywords[ident]; ok {
		return tokType
	}
	return TokIdent
}

// Keywords returns the reserved words in sorted order.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for w := range keywords {
		words = append(words, w)
	}
	sort.Strings(words)
	return words
}

type scanner struct {
	source string
	start  int
	pos    int
	line   int
	tokens []Token
	diags  []diagnostics.Diagnostic
}

func newScanner(source string) *scanner {
	return &scanner{
		source: source,
		line:   1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekNext() byte {
	if s.pos+1 >= len(s.source) {
		return 0
	}
	return s.source[s.pos+1]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	return ch
}

// match consumes the next byte if it equals want.
func (s *scanner) match(want byte) bool {
	if s.atEnd() || s.source[s.pos] != want {
		return false
	}
	s.pos++
	return true
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

func (s *scanner) addToken(typ TokenType, literal any) {
	s.tokens = append(s.tokens, Token{
		Type:    typ,
		Lexeme:  s.source[s.start:s.pos],
		Literal: literal,
		Line:    s.line,
	})
}

func (s *scanner) lexError(msg string) {
	s.diags = append(s.diags, diagnostics.MakeDiag(diagnostics.EScan, msg, s.line, ""))
}

func (s *scanner) scanString() {
	for !s.atEnd() && s.peek() != '"' {
		if s.peek() == '\n' {
			s.line++
		}
		s.advance()
	}
	if s.atEnd() {
		s.lexError("Unterminated string.")
		return
	}
	s.advance() // closing "
	s.addToken(TokString, s.source[s.start+1:s.pos-1])
}

func (s *scanner) scanNumber() {
	for isDigit(s.peek()) {
		s.advance()
	}
	// A trailing '.' without digits belongs to the next token.
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.advance()
		for isDigit(s.peek()) {
			s.advance()
		}
	}
	// Only overflow can fail here, and ParseFloat then returns +Inf.
	value, _ := strconv.ParseFloat(s.source[s.start:s.pos], 64)
	s.addToken(TokNumber, value)
}

func (s *scanner) scanIdentOrKeyword() {
	for isAlphaNumeric(s.peek()) {
		s.advance()
	}
	s.addToken(LookupKeyword(s.source[s.start:s.pos]), nil)
}

func (s *scanner) scanToken() {
	ch := s.advance()
	switch ch {
	case ' ', '\r', '\t':
	case '\n':
		s.line++
	case '(':
		s.addToken(TokLeftParen, nil)
	case ')':
		s.addToken(TokRightParen, nil)
	case '{':
		s.addToken(TokLeftBrace, nil)
	case '}':
		s.addToken(TokRightBrace, nil)
	case ',':
		s.addToken(TokComma, nil)
	case '.':
		s.addToken(TokDot, nil)
	case '-':
		s.addToken(TokMinus, nil)
	case '+':
		s.addToken(TokPlus, nil)
	case ';':
		s.addToken(TokSemicolon, nil)
	case '*':
		s.addToken(TokStar, nil)
	case '!':
		if s.match('=') {
			s.addToken(TokBangEqual, nil)
		} else {
			s.addToken(TokBang, nil)
		}
	case '=':
		if s.match('=') {
			s.addToken(TokEqualEqual, nil)
		} else {
			s.addToken(TokEqual, nil)
		}
	case '<':
		if s.match('=') {
			s.addToken(TokLessEqual, nil)
		} else {
			s.addToken(TokLess, nil)
		}
	case '>':
		if s.match('=') {
			s.addToken(TokGreaterEqual, nil)
		} else {
			s.addToken(TokGreater, nil)
		}
	case '/':
		if s.match('/') {
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
		} else {
			s.addToken(TokSlash, nil)
		}
	case '"':
		s.scanString()
	default:
		switch {
		case isDigit(ch):
			s.scanNumber()
		case isAlpha(ch):
			s.scanIdentOrKeyword()
		default:
			// Skip the whole UTF-8 sequence so one character yields one error.
			if ch >= utf8.RuneSelf {
				_, size := utf8.DecodeRuneInString(s.source[s.start:])
				s.pos = s.start + size
			}
			s.lexError("Unexpected character.")
		}
	}
}

// Tokenize breaks source code into a slice of tokens terminated by exactly
// one EOF token. Scan errors are returned as diagnostics; scanning always
// runs to the end of the input.
func Tokenize(source string) ([]Token, []diagnostics.Diagnostic) {
	s := newScanner(source)
	for !s.atEnd() {
		s.start = s.pos
		s.scanToken()
	}
	s.tokens = append(s.tokens, Token{Type: TokEOF, Lexeme: "", Line: s.line})
	return s.tokens, s.diags
}
