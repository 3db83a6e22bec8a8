package formatter_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pal-lang/pal/pkg/ast"
	"github.com/pal-lang/pal/pkg/formatter"
	"github.com/pal-lang/pal/pkg/lexer"
	"github.com/pal-lang/pal/pkg/parser"
)

func mustParse(t *testing.T, source string) *ast.Program {
	t.Helper()
	prog, diags := parser.ParseSource(source)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return prog
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", ""},
		{"print", "print   1+2 ;", "print 1 + 2;\n"},
		{"var", "var a;var b=\"s\";", "var a;\nvar b = \"s\";\n"},
		{"grouping kept", "print (1+2)*3;", "print (1 + 2) * 3;\n"},
		{"unary", "print -(-1); print !!x; print - -1;", "print -(-1);\nprint !!x;\nprint - -1;\n"},
		{"logical", "print a or b and c;", "print a or b and c;\n"},
		{"assign", "a = b = 2;", "a = b = 2;\n"},
		{"numbers", "print 1.50; print 100;", "print 1.5;\nprint 100;\n"},
		{"empty block", "{}", "{}\n"},
		{
			"nested block",
			"{ var a = 1; { print a; } }",
			"{\n  var a = 1;\n  {\n    print a;\n  }\n}\n",
		},
		{
			"if else",
			"if (x) { print 1; } else print 2;",
			"if (x) {\n  print 1;\n} else print 2;\n",
		},
		{
			"while",
			"while (i < 3) { i = i + 1; }",
			"while (i < 3) {\n  i = i + 1;\n}\n",
		},
		{
			"for becomes while",
			"for (var i = 0; i < 2; i = i + 1) print i;",
			"{\n  var i = 0;\n  while (i < 2) {\n    print i;\n    i = i + 1;\n  }\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatter.Format(mustParse(t, tt.src))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFormatIsStable(t *testing.T) {
	sources := []string{
		"var x = 1; while (x < 10) { if (x > 5 and x != 7) print x; else { x = x + 1; } x = x + 1; }",
		"if (a) if (b) print 1; else print 2;",
		"print \"a\" + \"b\"; print -(1 - 2) / 3 * 4;",
		"for (;;) {}",
	}
	for _, src := range sources {
		first := formatter.Format(mustParse(t, src))
		second := formatter.Format(mustParse(t, first))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("format not stable for %q (-first +second):\n%s", src, diff)
		}
		if a, b := formatter.Dump(mustParse(t, src)), formatter.Dump(mustParse(t, first)); a != b {
			t.Errorf("format changed the tree for %q:\n%s\n%s", src, a, b)
		}
	}
}

func TestFormatSkipsFailedDeclarations(t *testing.T) {
	prog, _ := parser.ParseSource("print ;\nprint 1;")
	if got, want := formatter.Format(prog), "print 1;\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestHasComments(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"print 1;", false},
		{"// note\nprint 1;", true},
		{"print 1; // trailing", true},
		{`print "a // b";`, false},
		{"print \"multi\n// line\";", false},
		{"print 1 / 2;", false},
		{"print \"a\"; // after string", true},
	}
	for _, tt := range tests {
		if got := formatter.HasComments(tt.src); got != tt.want {
			t.Errorf("HasComments(%q) = %v, want %v", tt.src, got, tt.want)
		}
	}
}

func TestDump(t *testing.T) {
	prog := mustParse(t, "var a = 1;\n{ print a; }\nif (a) a = nil; else print \"s\";\nwhile (false) a;")
	want := "(var a = 1)\n" +
		"(block (print a))\n" +
		"(if-else a (; (= a nil)) (print \"s\"))\n" +
		"(while false (; a))"
	if diff := cmp.Diff(want, formatter.Dump(prog)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpFailedDeclaration(t *testing.T) {
	prog, _ := parser.ParseSource("print ;\n{ var = 1; }")
	want := "<error>\n(block <error>)"
	if diff := cmp.Diff(want, formatter.Dump(prog)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestDumpExpr(t *testing.T) {
	expr := &ast.Binary{
		Left:  &ast.Unary{Op: lexer.Token{Type: lexer.TokMinus, Lexeme: "-"}, Operand: &ast.Literal{Value: 123.0}},
		Op:    lexer.Token{Type: lexer.TokStar, Lexeme: "*"},
		Right: &ast.Grouping{Inner: &ast.Literal{Value: 45.67}},
	}
	if got, want := formatter.Dump(expr), "(* (- 123) (group 45.67))"; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}
