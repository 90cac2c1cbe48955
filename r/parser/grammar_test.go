package parser

import (
	"reflect"
	"testing"
)

func parseWith(t *testing.T, g *Grammar, src string) *Result {
	t.Helper()
	if missing := g.Undefined(); len(missing) != 0 {
		t.Fatalf("grammar has undefined rules: %v", missing)
	}
	return Parse([]byte(src), WithGrammar(g, "Start"))
}

func TestGrammarChoiceBacktracks(t *testing.T) {
	g := NewGrammar()
	g.Define("Start", Build(KindProgram, Seq(Ref("Sum"), Tok(TokenEOF))))
	g.Define("Sum", Choice(
		Build(KindBinary, Seq(Leaf(KindSymbol, TokenIdent), Tok(TokenPlus), Leaf(KindSymbol, TokenIdent))),
		Build(KindBinary, Seq(Leaf(KindSymbol, TokenIdent), Tok(TokenMinus), Leaf(KindSymbol, TokenIdent))),
	))

	result := parseWith(t, g, "a - b")
	if len(result.Diagnostics) != 0 {
		t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
	}
	if got := result.Program.Sexpr(); got != "(program (- a b))" {
		t.Errorf("Sexpr() = %s", got)
	}
	if got := result.Program.Text(); got != "a - b" {
		t.Errorf("Text() = %q", got)
	}
}

func TestGrammarRepeat(t *testing.T) {
	tests := []struct {
		name  string
		rule  *Rule
		input string
		want  int
	}{
		{"many empty", Many(Leaf(KindLiteral, TokenNumber)), "", 0},
		{"many several", Many(Leaf(KindLiteral, TokenNumber)), "1 2 3", 3},
		{"some one", Some(Leaf(KindLiteral, TokenNumber)), "1", 1},
		{"optional absent", Opt(Leaf(KindLiteral, TokenNumber)), "", 0},
		{"optional present", Opt(Leaf(KindLiteral, TokenNumber)), "7", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrammar()
			g.Define("Start", Build(KindProgram, Seq(tt.rule, Tok(TokenEOF))))
			result := parseWith(t, g, tt.input)
			if len(result.Diagnostics) != 0 {
				t.Fatalf("unexpected diagnostics: %v", result.Diagnostics)
			}
			if got := len(result.Statements()); got != tt.want {
				t.Errorf("got %d items, want %d", got, tt.want)
			}
		})
	}
}

func TestGrammarSomeRequiresOne(t *testing.T) {
	p := ParseProgram(nil, WithGrammar(NewGrammar(), "Start"))
	p.input = []byte("x")
	if _, err := p.Finish(); err != nil {
		t.Fatal(err)
	}
	if o := p.attempt(Some(Leaf(KindLiteral, TokenNumber))); o.Status != NoMatch {
		t.Errorf("Some() status = %v, want NoMatch", o.Status)
	}
	if p.pos != 0 {
		t.Errorf("pos = %d after NoMatch, want 0", p.pos)
	}
}

func TestGrammarNot(t *testing.T) {
	g := NewGrammar()
	g.Define("Start", Build(KindProgram, Seq(
		Not(Tok(TokenMinus)),
		Choice(Leaf(KindLiteral, TokenNumber), Seq(Tok(TokenMinus), Leaf(KindLiteral, TokenNumber))),
		Tok(TokenEOF),
	)))

	if result := parseWith(t, g, "1"); len(result.Statements()) != 1 {
		t.Errorf("Not() rejected input it should allow: %s", result.Program)
	}
	result := parseWith(t, g, "-1")
	if got := len(result.Statements()); got != 0 {
		t.Errorf("Not() allowed input it should reject: %s", result.Program)
	}
}

func TestGrammarExpectRecovers(t *testing.T) {
	g := NewGrammar()
	g.Define("Start", Build(KindProgram, Seq(
		Leaf(KindSymbol, TokenIdent),
		Tok(TokenEqAssign),
		Expect(Leaf(KindLiteral, TokenNumber), "expected number"),
		Tok(TokenEOF),
	)))

	result := parseWith(t, g, "a = b c")
	if len(result.Diagnostics) != 1 {
		t.Fatalf("diagnostics = %v, want 1", result.Diagnostics)
	}
	d := result.Diagnostics[0]
	if d.Code != CodeExpected || d.Message != "expected number" {
		t.Errorf("diagnostic = %v", d)
	}
	errs := result.Program.Errors()
	if len(errs) != 1 || len(errs[0].Tokens()) != 2 {
		t.Fatalf("error nodes = %v", errs)
	}
	if got := result.Program.Text(); got != "a = b c" {
		t.Errorf("Text() = %q", got)
	}
}

func TestGrammarListAndClose(t *testing.T) {
	g := NewGrammar()
	g.Define("Start", Build(KindProgram, Seq(Ref("Call"), Tok(TokenEOF))))
	g.Define("Call", Build(KindCall, Seq(
		Leaf(KindSymbol, TokenIdent),
		Tok(TokenLParen),
		Nested(NestParen, Seq(
			Opt(List(Build(KindArg, Leaf(KindLiteral, TokenNumber)), TokenComma, "expected number")),
			Close(TokenRParen, "expected ')'"),
		)),
	)))

	tests := []struct {
		name  string
		input string
		want  string
		codes []Code
	}{
		{"empty", "f()", "(program (call f))", nil},
		{"items", "f(1,\n 2)", "(program (call f 1 2))", nil},
		{"missing item", "f(1,)", "(program (call f 1 <error>))", []Code{CodeExpected}},
		{"junk", "f(1 x)", "(program (call f 1 <error>))", []Code{CodeUnexpectedToken}},
		{"unclosed", "f(1", "(program (call f 1 <error>))", []Code{CodeUnclosed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseWith(t, g, tt.input)
			var codes []Code
			for _, d := range result.Diagnostics {
				codes = append(codes, d.Code)
			}
			if !reflect.DeepEqual(codes, tt.codes) {
				t.Errorf("codes = %v, want %v", codes, tt.codes)
			}
			if got := result.Program.Sexpr(); got != tt.want {
				t.Errorf("Sexpr() = %s, want %s", got, tt.want)
			}
			if got := result.Program.Text(); got != tt.input {
				t.Errorf("Text() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestGrammarUndefined(t *testing.T) {
	g := NewGrammar()
	g.Define("Start", Seq(Ref("A"), Ref("Missing"), Ref("Other")))
	g.Define("A", Tok(TokenIdent))
	if got, want := g.Undefined(), []string{"Missing", "Other"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Undefined() = %v, want %v", got, want)
	}
	if got, want := g.Names(), []string{"A", "Start"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRGrammarComplete(t *testing.T) {
	g := RGrammar()
	if missing := g.Undefined(); len(missing) != 0 {
		t.Errorf("R grammar references undefined rules: %v", missing)
	}
	if g.Rule("Program") == nil {
		t.Error("R grammar has no Program rule")
	}
}
