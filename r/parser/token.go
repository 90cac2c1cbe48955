package parser

import "fmt"

// Position is a location in the source. Column counts bytes from 1.
type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File != "" {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}

func (s Span) IsEmpty() bool {
	return s.Start.Offset == s.End.Offset
}

// Cover returns the smallest span containing both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start.Offset < s.Start.Offset {
		s.Start = other.Start
	}
	if other.End.Offset > s.End.Offset {
		s.End = other.End
	}
	return s
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenNewline

	// Literals and names
	TokenIdent
	TokenNumber
	TokenString

	// Keywords
	TokenIf
	TokenElse
	TokenRepeat
	TokenWhile
	TokenFunction
	TokenFor
	TokenIn
	TokenNext
	TokenBreak
	TokenTrue
	TokenFalse
	TokenNull
	TokenInf
	TokenNaN
	TokenNA
	TokenNAInteger
	TokenNAReal
	TokenNACharacter
	TokenNAComplex

	// Punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenLBB
	TokenRBracket
	TokenComma
	TokenSemicolon

	// Operators
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenCaret
	TokenSpecial
	TokenLess
	TokenGreater
	TokenLessEq
	TokenGreaterEq
	TokenEqEq
	TokenNotEq
	TokenBang
	TokenAnd
	TokenAndAnd
	TokenOr
	TokenOrOr
	TokenTilde
	TokenQuestion
	TokenColon
	TokenColonColon
	TokenColonColonColon
	TokenDollar
	TokenAt
	TokenLeftAssign
	TokenSuperAssign
	TokenRightAssign
	TokenSuperRightAssign
	TokenEqAssign
	TokenColonAssign
	TokenPipe
	TokenBackslash
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:              "EOF",
	TokenError:            "Error",
	TokenNewline:          "Newline",
	TokenIdent:            "Ident",
	TokenNumber:           "Number",
	TokenString:           "String",
	TokenIf:               "if",
	TokenElse:             "else",
	TokenRepeat:           "repeat",
	TokenWhile:            "while",
	TokenFunction:         "function",
	TokenFor:              "for",
	TokenIn:               "in",
	TokenNext:             "next",
	TokenBreak:            "break",
	TokenTrue:             "TRUE",
	TokenFalse:            "FALSE",
	TokenNull:             "NULL",
	TokenInf:              "Inf",
	TokenNaN:              "NaN",
	TokenNA:               "NA",
	TokenNAInteger:        "NA_integer_",
	TokenNAReal:           "NA_real_",
	TokenNACharacter:      "NA_character_",
	TokenNAComplex:        "NA_complex_",
	TokenLParen:           "(",
	TokenRParen:           ")",
	TokenLBrace:           "{",
	TokenRBrace:           "}",
	TokenLBracket:         "[",
	TokenLBB:              "[[",
	TokenRBracket:         "]",
	TokenComma:            ",",
	TokenSemicolon:        ";",
	TokenPlus:             "+",
	TokenMinus:            "-",
	TokenStar:             "*",
	TokenSlash:            "/",
	TokenCaret:            "^",
	TokenSpecial:          "%%",
	TokenLess:             "<",
	TokenGreater:          ">",
	TokenLessEq:           "<=",
	TokenGreaterEq:        ">=",
	TokenEqEq:             "==",
	TokenNotEq:            "!=",
	TokenBang:             "!",
	TokenAnd:              "&",
	TokenAndAnd:           "&&",
	TokenOr:               "|",
	TokenOrOr:             "||",
	TokenTilde:            "~",
	TokenQuestion:         "?",
	TokenColon:            ":",
	TokenColonColon:       "::",
	TokenColonColonColon:  ":::",
	TokenDollar:           "$",
	TokenAt:               "@",
	TokenLeftAssign:       "<-",
	TokenSuperAssign:      "<<-",
	TokenRightAssign:      "->",
	TokenSuperRightAssign: "->>",
	TokenEqAssign:         "=",
	TokenColonAssign:      ":=",
	TokenPipe:             "|>",
	TokenBackslash:        "\\",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// TokenClass is the coarse classification of a token kind.
type TokenClass int

const (
	ClassEOF TokenClass = iota
	ClassError
	ClassNewline
	ClassIdentifier
	ClassKeyword
	ClassNumeric
	ClassString
	ClassOperator
	ClassPunctuation
)

var tokenClassNames = map[TokenClass]string{
	ClassEOF:         "EOF",
	ClassError:       "Error",
	ClassNewline:     "Newline",
	ClassIdentifier:  "Identifier",
	ClassKeyword:     "Keyword",
	ClassNumeric:     "Numeric",
	ClassString:      "String",
	ClassOperator:    "Operator",
	ClassPunctuation: "Punctuation",
}

func (c TokenClass) String() string {
	if name, ok := tokenClassNames[c]; ok {
		return name
	}
	return "Unknown"
}

func (k TokenKind) Class() TokenClass {
	switch {
	case k == TokenEOF:
		return ClassEOF
	case k == TokenError:
		return ClassError
	case k == TokenNewline:
		return ClassNewline
	case k == TokenIdent:
		return ClassIdentifier
	case k == TokenNumber:
		return ClassNumeric
	case k == TokenString:
		return ClassString
	case k >= TokenIf && k <= TokenNAComplex:
		return ClassKeyword
	case k >= TokenLParen && k <= TokenSemicolon:
		return ClassPunctuation
	default:
		return ClassOperator
	}
}

// IsConstant reports whether the kind is a literal value: numbers, strings
// and the constant keywords such as TRUE or NA_integer_.
func (k TokenKind) IsConstant() bool {
	switch k {
	case TokenNumber, TokenString:
		return true
	}
	return k >= TokenTrue && k <= TokenNAComplex
}

type Token struct {
	Kind     TokenKind
	Span     Span
	Literal  string
	Leading  []Trivia
	Trailing []Trivia
}

// FullSpan covers the token together with its leading and trailing trivia.
func (t *Token) FullSpan() Span {
	span := t.Span
	if len(t.Leading) > 0 {
		span = span.Cover(t.Leading[0].Span)
	}
	if len(t.Trailing) > 0 {
		span = span.Cover(t.Trailing[len(t.Trailing)-1].Span)
	}
	return span
}

// Text returns the exact source bytes owned by the token: leading trivia,
// the token itself and trailing trivia.
func (t *Token) Text() string {
	if len(t.Leading) == 0 && len(t.Trailing) == 0 {
		return t.Literal
	}
	var b []byte
	for _, tr := range t.Leading {
		b = append(b, tr.Text...)
	}
	b = append(b, t.Literal...)
	for _, tr := range t.Trailing {
		b = append(b, tr.Text...)
	}
	return string(b)
}

var keywords = map[string]TokenKind{
	"if":            TokenIf,
	"else":          TokenElse,
	"repeat":        TokenRepeat,
	"while":         TokenWhile,
	"function":      TokenFunction,
	"for":           TokenFor,
	"in":            TokenIn,
	"next":          TokenNext,
	"break":         TokenBreak,
	"TRUE":          TokenTrue,
	"FALSE":         TokenFalse,
	"NULL":          TokenNull,
	"Inf":           TokenInf,
	"NaN":           TokenNaN,
	"NA":            TokenNA,
	"NA_integer_":   TokenNAInteger,
	"NA_real_":      TokenNAReal,
	"NA_character_": TokenNACharacter,
	"NA_complex_":   TokenNAComplex,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}
