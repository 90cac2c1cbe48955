// Package ebnflex matches the lexical productions of an EBNF grammar
// against raw input. It is used to cross-check a hand-written scanner
// against its reference grammar.
package ebnflex

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is a run of input matched by one production.
type Token struct {
	Kind     string
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return grammar, nil
}

type memoKey struct {
	name   string
	offset int
}

// Matcher finds the longest prefix of its input matched by a production.
// Matching is greedy: repetitions take as many iterations as they can and
// alternatives pick their longest match, without backtracking. That is
// enough for the lexical part of a grammar.
type Matcher struct {
	grammar  ebnf.Grammar
	input    []byte
	memo     map[memoKey]int // -1 = no match
	visiting map[memoKey]bool
}

func NewMatcher(grammar ebnf.Grammar, input []byte) *Matcher {
	return &Matcher{
		grammar:  grammar,
		input:    input,
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
}

// Match returns the length of the longest match of production name at
// offset.
func (m *Matcher) Match(name string, offset int) (int, bool) {
	key := memoKey{name: name, offset: offset}
	if n, ok := m.memo[key]; ok {
		return n, n >= 0
	}
	// left recursion
	if m.visiting[key] {
		return 0, false
	}

	prod, ok := m.grammar[name]
	if !ok {
		m.memo[key] = -1
		return 0, false
	}

	m.visiting[key] = true
	n, ok := m.match(prod.Expr, offset)
	delete(m.visiting, key)

	if !ok {
		n = -1
	}
	m.memo[key] = n
	return n, ok
}

func (m *Matcher) match(expr ebnf.Expression, offset int) (int, bool) {
	switch e := expr.(type) {
	case nil:
		return 0, true

	case *ebnf.Token:
		s := e.String
		if offset+len(s) > len(m.input) || string(m.input[offset:offset+len(s)]) != s {
			return 0, false
		}
		return len(s), true

	case *ebnf.Range:
		if offset >= len(m.input) {
			return 0, false
		}
		r, size := utf8.DecodeRune(m.input[offset:])
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		if r < lo || r > hi {
			return 0, false
		}
		return size, true

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n, ok := m.match(item, offset+total)
			if !ok {
				return 0, false
			}
			total += n
		}
		return total, true

	case ebnf.Alternative:
		best, found := 0, false
		for _, alt := range e {
			if n, ok := m.match(alt, offset); ok && (!found || n > best) {
				best, found = n, true
			}
		}
		return best, found

	case *ebnf.Repetition:
		total := 0
		for {
			n, ok := m.match(e.Body, offset+total)
			if !ok || n == 0 {
				return total, true
			}
			total += n
		}

	case *ebnf.Option:
		if n, ok := m.match(e.Body, offset); ok {
			return n, true
		}
		return 0, true

	case *ebnf.Group:
		return m.match(e.Body, offset)

	case *ebnf.Name:
		return m.Match(e.String, offset)
	}
	return 0, false
}

// Lexer splits input into tokens using a fixed set of productions,
// taking the longest match at each position. Ties go to the production
// listed first.
type Lexer struct {
	matcher  *Matcher
	tokens   []string
	input    []byte
	filename string
	pos      int
	line     int
	column   int
}

func NewLexer(grammar ebnf.Grammar, tokens []string, input []byte, filename string) *Lexer {
	return &Lexer{
		matcher:  NewMatcher(grammar, input),
		tokens:   tokens,
		input:    input,
		filename: filename,
		line:     1,
		column:   1,
	}
}

// Position returns the current position in the input.
func (l *Lexer) Position() Position {
	return Position{
		Filename: l.filename,
		Offset:   l.pos,
		Line:     l.line,
		Column:   l.column,
	}
}

func (l *Lexer) advance() {
	if l.pos >= len(l.input) {
		return
	}
	if l.input[l.pos] == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	l.pos++
}

// NextToken returns the next token, or an ERROR token of one byte when no
// production matches. At the end of input it returns io.EOF.
func (l *Lexer) NextToken() (Token, error) {
	start := l.Position()
	if l.pos >= len(l.input) {
		return Token{Kind: "EOF", Position: start}, io.EOF
	}

	bestKind, bestLen := "", 0
	for _, name := range l.tokens {
		if n, ok := l.matcher.Match(name, l.pos); ok && n > bestLen {
			bestKind, bestLen = name, n
		}
	}
	if bestLen == 0 {
		bestKind, bestLen = "ERROR", 1
	}

	literal := string(l.input[l.pos : l.pos+bestLen])
	for range bestLen {
		l.advance()
	}
	return Token{Kind: bestKind, Literal: literal, Position: start}, nil
}

// Tokenize reads all tokens from input, ending with the EOF token.
func (l *Lexer) Tokenize() []Token {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		tokens = append(tokens, tok)
		if err == io.EOF {
			return tokens
		}
	}
}
