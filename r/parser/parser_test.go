package parser

import (
	"strings"
	"testing"
)

func parseOne(t *testing.T, src string) *Node {
	t.Helper()
	result := Parse([]byte(src))
	stmts := result.Statements()
	if len(stmts) != 1 {
		t.Fatalf("parse %q: got %d statements, want 1\n%s", src, len(stmts), result.Program)
	}
	return stmts[0]
}

func TestParseExpressions(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"x", "x"},
		{"42L", "42L"},
		{"'a'", "'a'"},
		{"NULL", "NULL"},
		{"1 + 2 * 3", "(+ 1 (* 2 3))"},
		{"(1 + 2) * 3", "(* (paren (+ 1 2)) 3)"},
		{"a - b - c", "(- (- a b) c)"},
		{"2^3^2", "(^ 2 (^ 3 2))"},
		{"2**3", "(** 2 3)"},
		{"-2^2", "(- (^ 2 2))"},
		{"-1:3", "(: (- 1) 3)"},
		{"a ^ -b", "(^ a (- b))"},
		{"!x == y", "(! (== x y))"},
		{"!a & b", "(& (! a) b)"},
		{"a && b || c", "(|| (&& a b) c)"},
		{"a | b & c", "(| a (& b c))"},
		{"x <- y <- 1", "(<- x (<- y 1))"},
		{"1 -> x", "(-> 1 x)"},
		{"1 -> x -> y", "(-> (-> 1 x) y)"},
		{"x <<- 1", "(<<- x 1)"},
		{"x = 5", "(= x 5)"},
		{"x <- y = 2", "(= (<- x y) 2)"},
		{"x = y <- 2", "(= x (<- y 2))"},
		{"dt[, a := 1]", "([ dt <missing> (:= a 1))"},
		{"a %in% b | c", "(| (%in% a b) c)"},
		{"a %>% f %>% g", "(%>% (%>% a f) g)"},
		{"x |> f()", "(|> x (call f))"},
		{"1:n - 1", "(- (: 1 n) 1)"},
		{"y ~ x + z", "(~ y (+ x z))"},
		{"~ x", "(~ x)"},
		{"?help", "(? help)"},
		{"a * b / c", "(/ (* a b) c)"},
		{"-a + b", "(+ (- a) b)"},
		{"- -a", "(- (- a))"},
		{"-x[1]", "(- ([ x 1))"},
		{"f(x)", "(call f x)"},
		{"f()", "(call f)"},
		{"f(x, y = 2)", "(call f x y=2)"},
		{"f(a = )", "(call f a=)"},
		{"f('a' = 1, NULL = 2)", "(call f 'a'=1 NULL=2)"},
		{"f(,)", "(call f <missing> <missing>)"},
		{"f(x)(y)", "(call (call f x) y)"},
		{"x[1, ]", "([ x 1 <missing>)"},
		{"x[[1]]", "([[ x 1)"},
		{"x[[i]][[j]]", "([[ ([[ x i) j)"},
		{"x$a$b", "($ ($ x a) b)"},
		{"x$'a'", "($ x 'a')"},
		{"obj@slot", "(@ obj slot)"},
		{"base::paste(a)", "(call (:: base paste) a)"},
		{"pkg:::hidden", "(::: pkg hidden)"},
		{"x$f(1)", "(call ($ x f) 1)"},
		{"function(a, b = 2) a + b", "(function (a b=2) (+ a b))"},
		{"function() NULL", "(function () NULL)"},
		{"function(...) list(...)", "(function (...) (call list ...))"},
		{"\\(x) x + 1", "(function (x) (+ x 1))"},
		{"x <- function(a) a + 1", "(<- x (function (a) (+ a 1)))"},
		{"function(x) x -> y", "(function (x) (-> x y))"},
		{"if (a) b", "(if a b)"},
		{"if (a) b else c", "(if a b c)"},
		{"if (a) b else c + 1", "(if a b (+ c 1))"},
		{"y <- if (a) 1 else 2", "(<- y (if a 1 2))"},
		{"for (i in 1:10) print(i)", "(for i (: 1 10) (call print i))"},
		{"while (TRUE) break", "(while TRUE break)"},
		{"repeat { next }", "(repeat ({ next))"},
		{"{}", "({)"},
		{"{ a; b }", "({ a b)"},
		{"`my var` <- 1", "(<- `my var` 1)"},
		{"x[-1]", "([ x (- 1))"},
		{"lapply(xs, function(x) x^2)", "(call lapply xs (function (x) (^ x 2)))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Parse([]byte(tt.input))
			if len(result.Diagnostics) != 0 {
				t.Errorf("unexpected diagnostics: %v", result.Diagnostics)
			}
			stmts := result.Statements()
			if len(stmts) != 1 {
				t.Fatalf("got %d statements, want 1\n%s", len(stmts), result.Program)
			}
			if got := stmts[0].Sexpr(); got != tt.want {
				t.Errorf("Sexpr() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParseNodeKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  NodeKind
	}{
		{"x <- 1", KindAssignment},
		{"x -> y", KindAssignment},
		{"x == 1", KindBinary},
		{"-x", KindUnary},
		{"f(x)", KindCall},
		{"function(x) x", KindFunction},
		{"\\(x) x", KindFunction},
		{"{ x }", KindBlock},
		{"(x)", KindParen},
		{"if (a) b", KindIf},
		{"for (i in x) i", KindFor},
		{"while (a) b", KindWhile},
		{"repeat b", KindRepeat},
		{"break", KindBreak},
		{"next", KindNext},
		{"x[1]", KindSubset},
		{"x[[1]]", KindSubset2},
		{"x$a", KindDollar},
		{"x@a", KindSlot},
		{"a::b", KindNamespace},
		{"1", KindLiteral},
		{"TRUE", KindLiteral},
		{"x", KindSymbol},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseOne(t, tt.input).Kind; got != tt.kind {
				t.Errorf("Kind = %v, want %v", got, tt.kind)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"comments only", "# just a comment\n\n# another\n", nil},
		{"newlines", "a\nb\n\nc", []string{"a", "b", "c"}},
		{"semicolons", "a; b;c", []string{"a", "b", "c"}},
		{"continuation after operator", "x <- 1 +\n  2", []string{"(<- x (+ 1 2))"}},
		{"continuation inside parens", "f(a,\n  b\n)", []string{"(call f a b)"}},
		{"continuation inside brackets", "x[1,\n  2]", []string{"([ x 1 2)"}},
		{"newline ends statement", "x <- 1\n+ 2", []string{"(<- x 1)", "(+ 2)"}},
		{"call needs same line", "f\n(1)", []string{"f", "(paren 1)"}},
		{"body on next line", "function(x)\n  x", []string{"(function (x) x)"}},
		{"if body on next line", "if (a)\n  b", []string{"(if a b)"}},
		{"else on same line as brace", "if (a) {\n  b\n} else {\n  c\n}", []string{"(if a ({ b) ({ c))"}},
		{"for body on next line", "for (i in x)\n  f(i)", []string{"(for i x (call f i))"}},
		{"block statements", "{\n  a\n\n  b\n}", []string{"({ a b)"}},
		{"pipe chain", "x |>\n  f() |>\n  g()", []string{"(|> (|> x (call f)) (call g))"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse([]byte(tt.input))
			if len(result.Diagnostics) != 0 {
				t.Errorf("unexpected diagnostics: %v", result.Diagnostics)
			}
			stmts := result.Statements()
			var got []string
			for _, s := range stmts {
				got = append(got, s.Sexpr())
			}
			if strings.Join(got, " | ") != strings.Join(tt.want, " | ") {
				t.Errorf("statements = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseDanglingElse(t *testing.T) {
	stmt := parseOne(t, "if (a) if (b) x else y")
	if got, want := stmt.Sexpr(), "(if a (if b x y))"; got != want {
		t.Errorf("Sexpr() = %s, want %s", got, want)
	}
	if stmt.Else() != nil {
		t.Errorf("outer if has an else branch: %s", stmt.Else().Sexpr())
	}
	inner := stmt.Then()
	if inner == nil || inner.Kind != KindIf || inner.Else() == nil {
		t.Fatalf("inner if = %v, want if with else", inner)
	}
}

func TestParseElseOnNewLine(t *testing.T) {
	t.Run("inside braces", func(t *testing.T) {
		result := Parse([]byte("{\n  if (a) b\n  else c\n}"))
		if len(result.Diagnostics) != 0 {
			t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
		}
		block := result.Statements()[0]
		stmts := block.Statements()
		if len(stmts) != 1 || stmts[0].Sexpr() != "(if a b c)" {
			t.Errorf("block statements = %v", stmts)
		}
	})

	t.Run("inside parens", func(t *testing.T) {
		result := Parse([]byte("(if (a) b\nelse c)"))
		if len(result.Diagnostics) != 0 {
			t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
		}
		if got := result.Statements()[0].Sexpr(); got != "(paren (if a b c))" {
			t.Errorf("Sexpr() = %s", got)
		}
	})

	t.Run("top level", func(t *testing.T) {
		result := Parse([]byte("if (a) b\nelse c"))
		if !result.HasErrors() {
			t.Fatal("expected an error for else at the start of a top-level line")
		}
		stmts := result.Statements()
		if len(stmts) != 2 || stmts[0].Sexpr() != "(if a b)" || !stmts[1].IsError() {
			t.Errorf("statements = %v", stmts)
		}
		if !strings.Contains(result.Diagnostics[0].Message, "'else'") {
			t.Errorf("message = %q, want mention of 'else'", result.Diagnostics[0].Message)
		}
	})
}

func TestParseRecovery(t *testing.T) {
	result := Parse([]byte("x <- 1\ny <- )\nz <- 2\n"))

	if len(result.Diagnostics) == 0 {
		t.Fatal("expected diagnostics")
	}
	stmts := result.Statements()
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3\n%s", len(stmts), result.Program)
	}
	if errs := result.Program.Errors(); len(errs) != 1 {
		t.Errorf("got %d error nodes, want 1", len(errs))
	}
	if stmts[0].HasErrors() || stmts[0].Sexpr() != "(<- x 1)" {
		t.Errorf("first statement = %s", stmts[0].Sexpr())
	}
	if stmts[2].HasErrors() || stmts[2].Sexpr() != "(<- z 2)" {
		t.Errorf("third statement = %s", stmts[2].Sexpr())
	}
	if got := result.Program.Text(); got != "x <- 1\ny <- )\nz <- 2\n" {
		t.Errorf("Text() = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		code   Code
		errors int
	}{
		{"trailing operator", "x <- 1 +", CodeMissingOperand, 1},
		{"two operators", "1 + * 2", CodeMissingOperand, 1},
		{"stray closer", "x <- 1)", CodeUnexpectedToken, 1},
		{"junk in call", "f(1 2)", CodeUnexpectedToken, 1},
		{"missing close paren", "f(1", CodeUnclosed, 1},
		{"open call at end", "f(", CodeUnclosed, 1},
		{"missing close brace", "{ x", CodeUnclosed, 1},
		{"empty parens", "()", CodeExpected, 1},
		{"adjacent operands", "x y", CodeUnexpectedToken, 1},
		{"binary at start", "* 2", CodeUnexpectedToken, 1},
		{"missing condition paren", "if a b", CodeExpected, 2},
		{"missing in", "for (i x) y", CodeExpected, 2},
		{"missing selector", "x$", CodeExpected, 1},
		{"trailing comma in formals", "function(a,) a", CodeExpected, 1},
		{"chained comparison", "a < b < c", CodeNonAssociative, 0},
		{"unterminated string", "x <- 'abc", CodeUnterminatedString, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Parse([]byte(tt.input))
			if len(result.Diagnostics) == 0 {
				t.Fatalf("no diagnostics\n%s", result.Program)
			}
			if result.Diagnostics[0].Code != tt.code {
				t.Errorf("code = %s, want %s (%v)", result.Diagnostics[0].Code, tt.code, result.Diagnostics)
			}
			if got := len(result.Program.Errors()); got != tt.errors {
				t.Errorf("got %d error nodes, want %d\n%s", got, tt.errors, result.Program)
			}
			if got := result.Program.Text(); got != tt.input {
				t.Errorf("Text() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestParseDocComments(t *testing.T) {
	src := `x <- 1 # not documentation

#' Add two numbers
#'
#' @param a first
#' @param b second
add <- function(a, b) a + b
`
	result := Parse([]byte(src))
	stmts := result.Statements()
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if docs := stmts[0].DocComments(); len(docs) != 0 {
		t.Errorf("first statement docs = %v, want none", docs)
	}
	for _, tok := range stmts[0].Tokens() {
		for _, tr := range tok.Trailing {
			if tr.Kind == TriviaDocComment {
				t.Errorf("doc comment attached as trailing trivia of %q", tok.Literal)
			}
		}
	}
	docs := stmts[1].DocComments()
	if len(docs) != 4 {
		t.Fatalf("second statement docs = %d, want 4", len(docs))
	}
	if docs[0].DocText() != "Add two numbers" {
		t.Errorf("first doc line = %q", docs[0].DocText())
	}
}

func TestParseDocCommentAfterCode(t *testing.T) {
	src := "x <- 1 #' Adds\nf <- function(x) x\n"
	result := Parse([]byte(src))
	if len(result.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
	}
	stmts := result.Statements()
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2\n%s", len(stmts), result.Program)
	}
	for _, tok := range stmts[0].Tokens() {
		for _, tr := range tok.Trailing {
			if tr.Kind == TriviaDocComment {
				t.Errorf("doc comment attached as trailing trivia of %q", tok.Literal)
			}
		}
	}
	docs := stmts[1].DocComments()
	if len(docs) != 1 || docs[0].DocText() != "Adds" {
		t.Errorf("second statement docs = %v, want [#' Adds]", docs)
	}
	if got := result.Program.Text(); got != src {
		t.Errorf("Text() = %q, want %q", got, src)
	}
}

func TestParseOpenCallAtEnd(t *testing.T) {
	result := Parse([]byte("f("))
	if got := result.Program.Sexpr(); strings.Contains(got, "<missing>") {
		t.Errorf("Sexpr() = %s, want no missing argument", got)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Code != CodeUnclosed {
		t.Errorf("diagnostics = %v, want one unclosed", result.Diagnostics)
	}
}

func TestParserReleasesConsumedTokens(t *testing.T) {
	window := 0
	symbol := Leaf(KindSymbol, TokenIdent)
	g := NewGrammar()
	g.Define("Program", Build(KindProgram, Seq(Lines(Ref("Statement")), Expect(Tok(TokenEOF), "expected end of input"))))
	g.Define("Statement", Func(func(p *Parser) Outcome {
		window = max(window, len(p.tokens))
		return p.attempt(symbol)
	}))

	src := strings.Repeat("x\n", 500)
	result, err := ParseProgram(strings.NewReader(src), WithGrammar(g, "Program")).Finish()
	if err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if got := len(result.Statements()); got != 500 {
		t.Fatalf("got %d statements, want 500", got)
	}
	if window > 2 {
		t.Errorf("token window grew to %d, want at most 2", window)
	}
	if got := result.Program.Text(); got != src {
		t.Error("Text() does not reproduce the input")
	}
}

func TestParseExpressionEntry(t *testing.T) {
	p := ParseExpression(strings.NewReader("a + b"))
	result, err := p.Finish()
	if err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", result.Diagnostics)
	}

	p.Reset(strings.NewReader("a\nb"))
	result, err = p.Finish()
	if err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Code != CodeTrailingInput {
		t.Errorf("diagnostics = %v, want trailing input", result.Diagnostics)
	}
}

func TestParseWithFileAndStartLine(t *testing.T) {
	result := Parse([]byte("x +"), WithFile("R/a.R"), WithStartLine(10))
	if len(result.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v", result.Diagnostics)
	}
	start := result.Diagnostics[0].Span.Start
	if start.File != "R/a.R" || start.Line != 10 {
		t.Errorf("diagnostic at %s, want R/a.R:10", start)
	}
}

func TestParseDeterministic(t *testing.T) {
	src := []byte("f <- function(x, ...) {\n  if (x > 0) -x else x^2 # branch\n}\ny <- f(3) |> g(\n")
	first := Parse(src)
	second := Parse(src)
	if first.Program.StringWithPositions() != second.Program.StringWithPositions() {
		t.Error("two parses of the same input produced different trees")
	}
	if len(first.Diagnostics) != len(second.Diagnostics) {
		t.Error("two parses of the same input produced different diagnostics")
	}
}

func TestParseSpansNested(t *testing.T) {
	result := Parse([]byte("f <- function(a = { 1 }, b) {\n  g(a)[[b]]$c\n}\nx <- (1 +"))
	Walk(result.Program, func(n *Node) bool {
		for i, child := range n.Children {
			if child.Span.Start.Offset < n.Span.Start.Offset || child.Span.End.Offset > n.Span.End.Offset {
				t.Errorf("%v span %v not inside parent %v", child.Kind, child.Span, n.Span)
			}
			if i > 0 && n.Children[i-1].Span.End.Offset > child.Span.Start.Offset {
				t.Errorf("%v overlaps previous sibling in %v", child.Kind, n.Kind)
			}
		}
		return true
	})
}
