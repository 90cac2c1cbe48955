package parser

import (
	"bytes"
	"io"
)

type Option func(*Parser)

func WithFile(path string) Option {
	return func(p *Parser) {
		p.file = path
	}
}

func WithStartLine(line int) Option {
	return func(p *Parser) {
		p.startLine = line
	}
}

// WithGrammar parses with g starting at the rule named start instead of
// the R grammar.
func WithGrammar(g *Grammar, start string) Option {
	return func(p *Parser) {
		p.grammar = g
		p.start = start
	}
}

type Parser struct {
	file       string
	startLine  int
	reader     io.Reader
	input      []byte
	grammar    *Grammar
	start      string
	expression bool

	lexer *Lexer
	// tokens is the window of scanned tokens starting at index base. pos
	// and marks are absolute token indexes.
	tokens []Token
	base   int
	pos    int
	// held counts the marks that may still be reset to. Tokens before pos
	// are dropped only while it is zero.
	held    int
	pending []Trivia
	nesting []Nesting
	diags   []Diagnostic
}

// Result is the outcome of parsing one source buffer. Program is never nil
// and covers the whole input, even when Diagnostics reports errors.
type Result struct {
	Program     *Node
	Diagnostics []Diagnostic
	Source      []byte
}

func (r *Result) HasErrors() bool {
	return HasErrors(r.Diagnostics)
}

func (r *Result) Statements() []*Node {
	return r.Program.Statements()
}

func ParseProgram(r io.Reader, opts ...Option) *Parser {
	p := &Parser{
		startLine: 1,
		reader:    r,
		grammar:   RGrammar(),
		start:     "Program",
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseExpression parses input that should hold exactly one expression.
// Anything else is reported as a diagnostic; the tree still covers the
// whole input.
func ParseExpression(r io.Reader, opts ...Option) *Parser {
	p := ParseProgram(r, opts...)
	p.expression = true
	return p
}

// Parse is a convenience wrapper around ParseProgram for in-memory source.
func Parse(src []byte, opts ...Option) *Result {
	result, _ := ParseProgram(bytes.NewReader(src), opts...).Finish()
	return result
}

func (p *Parser) readAll() error {
	if p.input != nil {
		return nil
	}
	data, err := io.ReadAll(p.reader)
	if err != nil {
		return err
	}
	p.input = data
	return nil
}

// Finish reads the remaining input and parses it. The only error returned
// is a failure to read.
func (p *Parser) Finish() (*Result, error) {
	if err := p.readAll(); err != nil {
		return nil, err
	}
	p.lexer = newLexer(p.input, p.file, p.startLine)
	p.tokens = nil
	p.base = 0
	p.pos = 0
	p.held = 0
	p.pending = nil
	p.nesting = []Nesting{NestTop}
	p.diags = nil

	var root *Node
	if rule := p.grammar.Rule(p.start); rule != nil {
		if out := p.attempt(rule); len(out.Nodes) == 1 {
			root = out.Nodes[0]
		} else if len(out.Nodes) > 1 {
			root = NewNode(KindProgram, out.Nodes...)
		}
	}
	if root == nil {
		root = newEmpty(KindProgram, p.lexer.Position())
	}
	if p.expression {
		p.checkSingleExpression(root)
	}

	diags := make([]Diagnostic, 0, len(p.lexer.Diagnostics())+len(p.diags))
	diags = append(diags, p.lexer.Diagnostics()...)
	diags = append(diags, p.diags...)
	SortDiagnostics(diags)
	return &Result{Program: root, Diagnostics: diags, Source: p.input}, nil
}

func (p *Parser) checkSingleExpression(root *Node) {
	stmts := root.Statements()
	switch {
	case len(stmts) == 0:
		p.diags = append(p.diags, errorAt(CodeExpected, root.Span, "expected an expression"))
	case len(stmts) > 1:
		p.diags = append(p.diags, errorAt(CodeTrailingInput, stmts[1].Span, "unexpected input after expression"))
	}
}

func (p *Parser) Reset(r io.Reader) {
	p.reader = r
	p.input = nil
	p.lexer = nil
	p.tokens = nil
	p.base = 0
	p.pos = 0
	p.held = 0
	p.pending = nil
	p.diags = nil
}

// at returns the i-th buffered token, scanning more input as needed. Past
// the end it keeps returning the EOF token.
func (p *Parser) at(i int) *Token {
	i -= p.base
	for len(p.tokens) <= i {
		if n := len(p.tokens); n > 0 && p.tokens[n-1].Kind == TokenEOF {
			return &p.tokens[n-1]
		}
		p.tokens = append(p.tokens, p.lexer.NextToken())
	}
	return &p.tokens[i]
}

// release drops the consumed tokens from the window. Nodes own copies of
// their tokens, so only marks could still refer to them.
func (p *Parser) release() {
	if p.held > 0 {
		return
	}
	n := p.pos - p.base
	if n <= 0 {
		return
	}
	k := copy(p.tokens, p.tokens[n:])
	clear(p.tokens[k:])
	p.tokens = p.tokens[:k]
	p.base = p.pos
}

func (p *Parser) currentNesting() Nesting {
	return p.nesting[len(p.nesting)-1]
}

// newlinesIgnored reports whether line breaks are insignificant at the
// current position: inside parentheses and brackets.
func (p *Parser) newlinesIgnored() bool {
	n := p.currentNesting()
	return n == NestParen || n == NestBracket
}

func (p *Parser) peek() *Token {
	return p.peekN(0)
}

func (p *Parser) peekN(n int) *Token {
	ignore := p.newlinesIgnored()
	for i := p.pos; ; i++ {
		tok := p.at(i)
		if ignore && tok.Kind == TokenNewline {
			continue
		}
		if n == 0 || tok.Kind == TokenEOF {
			return tok
		}
		n--
	}
}

// advance consumes the next token. Line breaks demoted since the previous
// token are prepended to its leading trivia.
func (p *Parser) advance() *Token {
	if p.newlinesIgnored() {
		p.skipNewlines()
	}
	tok := *p.at(p.pos)
	p.pos++
	if len(p.pending) > 0 {
		leading := make([]Trivia, 0, len(p.pending)+len(tok.Leading))
		leading = append(leading, p.pending...)
		tok.Leading = append(leading, tok.Leading...)
		p.pending = nil
	}
	return &tok
}

func (p *Parser) skipNewlines() {
	for {
		tok := p.at(p.pos)
		if tok.Kind != TokenNewline {
			return
		}
		p.pending = append(p.pending, tok.Leading...)
		if tok.Literal != "" {
			p.pending = append(p.pending, Trivia{Kind: TriviaLineBreak, Span: tok.Span, Text: tok.Literal})
		}
		p.pending = append(p.pending, tok.Trailing...)
		p.pos++
	}
}

type mark struct {
	pos     int
	pending []Trivia
	diags   int
}

func (p *Parser) mark() mark {
	return mark{pos: p.pos, pending: p.pending, diags: len(p.diags)}
}

func (p *Parser) reset(m mark) {
	p.pos = m.pos
	p.pending = m.pending
	p.diags = p.diags[:m.diags]
}

func (p *Parser) isSyncPoint(tok *Token) bool {
	switch tok.Kind {
	case TokenEOF:
		return true
	case TokenNewline, TokenSemicolon:
		return !p.newlinesIgnored()
	case TokenComma:
		return p.newlinesIgnored()
	case TokenRParen, TokenRBrace, TokenRBracket:
		for i := len(p.nesting) - 1; i >= 0; i-- {
			if p.nesting[i].closer() == tok.Kind {
				return true
			}
		}
	}
	return false
}

func (p *Parser) atSync() bool {
	return p.isSyncPoint(p.peek())
}

// recover skips input up to the next synchronization point and returns the
// skipped tokens wrapped in an error node. Brackets opened while skipping
// are skipped up to their closer. Closers that match no enclosing bracket
// are skipped as well.
func (p *Parser) recover(code Code, message string) *Node {
	first := p.peek()
	err := NewError(message, first.Span.Start)
	got := *first
	err.Error.Got = &got

	depth := 0
	for {
		tok := p.peek()
		if tok.Kind == TokenEOF || (depth == 0 && p.isSyncPoint(tok)) {
			break
		}
		switch tok.Kind {
		case TokenLParen, TokenLBrace, TokenLBracket:
			depth++
		case TokenLBB:
			depth += 2
		case TokenRParen, TokenRBrace, TokenRBracket:
			if depth > 0 {
				depth--
			}
		}
		err.AddChild(newLeaf(KindToken, p.advance()))
	}

	if first.Kind != TokenError {
		span := err.Span
		if span.IsEmpty() {
			span = first.Span
		}
		p.diags = append(p.diags, errorAt(code, span, "%s", message))
	}
	return err
}

func (p *Parser) missingOperand() *Node {
	tok := p.peek()
	err := NewError("missing operand", tok.Span.Start)
	got := *tok
	err.Error.Got = &got
	p.diags = append(p.diags, errorAt(CodeMissingOperand, Span{Start: tok.Span.Start, End: tok.Span.Start},
		"missing operand before %s", describe(tok)))
	return err
}

func (p *Parser) unexpected() string {
	return "unexpected " + describe(p.peek())
}

// describe names a token the way R's parser does in its messages.
func describe(tok *Token) string {
	switch tok.Kind {
	case TokenEOF:
		return "end of input"
	case TokenNewline:
		return "end of line"
	case TokenIdent:
		return "symbol"
	case TokenNumber:
		return "numeric constant"
	case TokenString:
		return "string constant"
	case TokenError:
		return "input"
	}
	return "'" + tok.Literal + "'"
}
