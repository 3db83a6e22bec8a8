// Package help holds the reference text shown by "pal help".
package help

import (
	"fmt"
	"strings"

	"github.com/pal-lang/pal/pkg/lexer"
)

// Version is the language revision the reference describes.
const Version = "v1.0"

// QUICKREF is the summary printed by "pal help" with no topic.
var QUICKREF = `Pal ` + Version + ` quick reference

  var x = 1;                 declare (initializer optional, defaults to nil)
  x = x + 1;                 assign an existing variable
  print x;                   write a value and a newline
  { ... }                    block with its own scope
  if (c) s; else s;          conditional
  while (c) s;               loop
  for (init; cond; incr) s;  loop sugar

Operators, loosest first: = or and == != < <= > >= + - * / ! -

Topics (pal help <topic>, prefixes accepted):
  ` + strings.Join(TopicList, ", ") + `
`

// TopicList is the display order of the topics.
var TopicList = []string{"syntax", "types", "scope", "flow", "budget", "diagnostics", "repl", "examples"}

// Topics maps a topic name to its text.
var Topics = map[string]string{
	"syntax": `Programs are a sequence of declarations and statements.

  program     := declaration* EOF
  declaration := "var" IDENT ( "=" expression )? ";" | statement
  statement   := "print" expression ";"
               | "{" declaration* "}"
               | "if" "(" expression ")" statement ( "else" statement )?
               | "while" "(" expression ")" statement
               | "for" "(" ( varDecl | exprStmt | ";" ) expression? ";" expression? ")" statement
               | expression ";"

Comments start with // and run to the end of the line.
Strings are double quoted, may span lines and have no escapes.
Numbers are decimal: 12, 3.5. A leading or trailing dot is not a number.
`,
	"types": `Values are nil, booleans, numbers and strings.

  nil and false are falsey; everything else (0, "") is truthy.
  Numbers are 64-bit floats. 1/0 prints inf, 0/0 prints nan.
  + adds two numbers or joins two strings; mixing them is an error.
  == never errors: values of different types are simply unequal.
  Integral numbers print without a fraction: 3, not 3.0.
`,
	"scope": `Each block opens a new scope chained to the enclosing one.

  var in a block shadows an outer name until the block ends.
  Assignment updates the nearest enclosing binding and never creates one.
  Redeclaring a global replaces it.
  A for loop's initializer lives in a scope wrapping the whole loop.
`,
	"flow": `and / or short-circuit and return an operand, not a boolean:

  nil or "x"    => "x"
  1 and 2       => 2

while re-evaluates its condition before every iteration.
for (init; cond; incr) body runs as { init; while (cond) { body incr; } }.
else binds to the nearest if.
`,
	"budget": `Runs can be bounded (flags or config file):

  --max-iterations N   total loop iterations per run
  --time-ms N          wall-clock limit
  max_depth            nesting limit for evaluation (config only)

Exceeding a limit is a runtime error (exit 70).
`,
	"diagnostics": `Every error prints one line and sets the exit status.

  [line N] Error: message            scan error (exit 65)
  [line N] Error at 'tok': message   parse error (exit 65)
  [line N] Error at end: message     parse error at end of input
  message [line N]                   runtime error (exit 70)

All scan and parse errors are reported; nothing runs if any occur.
A runtime error stops the program; earlier output stays.
"pal check" adds warnings (W_UNBOUND, W_UNUSED) that never fail a run.
`,
	"repl": `pal repl keeps globals between inputs.

  A bare expression prints its value: 1 + 2 => 3
  Unfinished input continues on the next line.
  .globals  list defined variables
  .exit     leave (Ctrl-D works too)
`,
	"examples": `Fibonacci below 100:

  var a = 0;
  var temp;
  for (var b = 1; a < 100; b = temp + b) {
    print a;
    temp = a;
    a = b;
  }

Shadowing:

  var a = "global";
  { var a = "local"; print a; }
  print a;
`,
}

// MatchTopic resolves an exact topic name or a unique prefix of one.
func MatchTopic(query string) (string, string, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[q]; ok {
		return q, content, nil
	}
	if q == "" {
		return "", "", fmt.Errorf("empty topic")
	}

	var matches []string
	for _, name := range TopicList {
		if strings.HasPrefix(name, q) {
			matches = append(matches, name)
		}
	}
	switch len(matches) {
	case 0:
		return "", "", fmt.Errorf("unknown topic %q", query)
	case 1:
		return matches[0], Topics[matches[0]], nil
	default:
		return "", "", fmt.Errorf("ambiguous topic %q: %s", query, strings.Join(matches, ", "))
	}
}

// reserved words the grammar does not use yet.
var reserved = map[string]bool{"class": true, "fun": true, "return": true, "super": true, "this": true}

// KeywordIndex lists every keyword, marking those reserved for future use.
func KeywordIndex() string {
	words := lexer.Keywords()

	var b strings.Builder
	used := 0
	for _, w := range words {
		if reserved[w] {
			fmt.Fprintf(&b, "  %-8s (reserved)\n", w)
			continue
		}
		used++
		fmt.Fprintf(&b, "  %s\n", w)
	}
	fmt.Fprintf(&b, "Total: %d keywords, %d in use\n", len(words), used)
	return b.String()
}
