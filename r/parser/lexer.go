package parser

import (
	"unicode"
	"unicode/utf8"
)

// Lexer turns R source into tokens on demand. Every byte of the input ends
// up in exactly one token: either as the token text or as leading or
// trailing trivia.
type Lexer struct {
	input []byte
	// src holds the input once as a string; token and trivia text are
	// slices of it.
	src    string
	file   string
	pos    int
	line   int
	column int

	// significant is set once a non-newline token has been produced and
	// cleared when the following line break is turned into a Newline token.
	significant bool
	diags       []Diagnostic
}

func NewLexer(input []byte, file string) *Lexer {
	return newLexer(input, file, 1)
}

func newLexer(input []byte, file string, line int) *Lexer {
	return &Lexer{
		input:  input,
		src:    string(input),
		file:   file,
		pos:    0,
		line:   line,
		column: 1,
	}
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

// Diagnostics returns the problems found in the input scanned so far.
func (l *Lexer) Diagnostics() []Diagnostic {
	return l.diags
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) atLineBreak() bool {
	ch := l.peek()
	return ch == '\n' || (ch == '\r' && l.peekN(1) == '\n')
}

func (l *Lexer) atSpace() bool {
	ch := l.peek()
	switch ch {
	case ' ', '\t', '\f', '\v':
		return true
	case '\r':
		return l.peekN(1) != '\n'
	}
	return l.pos == 0 && hasBOM(l.input)
}

func hasBOM(b []byte) bool {
	return len(b) >= 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: l.Position()},
		Literal: l.src[start.Offset:l.pos],
	}
}

func (l *Lexer) trivia(kind TriviaKind, start Position) Trivia {
	return Trivia{
		Kind: kind,
		Span: Span{Start: start, End: l.Position()},
		Text: l.src[start.Offset:l.pos],
	}
}

func (l *Lexer) errorToken(code Code, start Position, format string, args ...any) Token {
	tok := l.token(TokenError, start)
	l.diags = append(l.diags, errorAt(code, tok.Span, format, args...))
	return tok
}

// NextToken returns the next token. The first line break after a
// significant token is returned as a Newline token; blank lines and
// comment-only lines become leading trivia of the token that follows.
func (l *Lexer) NextToken() Token {
	var leading []Trivia
	for {
		start := l.Position()
		switch {
		case l.atEOF():
			tok := l.token(TokenEOF, start)
			tok.Leading = leading
			return tok
		case l.atSpace():
			leading = append(leading, l.scanWhitespace())
		case l.peek() == '#' && l.peekN(1) == '\'' && l.significant:
			// A doc comment ending a line of code documents what follows,
			// so the statement is closed by a zero-width Newline first.
			l.significant = false
			tok := l.token(TokenNewline, start)
			tok.Leading = leading
			return tok
		case l.peek() == '#':
			leading = append(leading, l.scanComment())
		case l.atLineBreak():
			if l.significant {
				l.significant = false
				l.scanLineEnd()
				tok := l.token(TokenNewline, start)
				tok.Leading = leading
				return tok
			}
			l.scanLineEnd()
			leading = append(leading, l.trivia(TriviaLineBreak, start))
		default:
			tok := l.scanToken(start)
			tok.Leading = leading
			tok.Trailing = l.scanTrailing()
			l.significant = true
			return tok
		}
	}
}

func (l *Lexer) scanWhitespace() Trivia {
	start := l.Position()
	if l.pos == 0 && hasBOM(l.input) {
		l.advanceN(3)
	}
	for l.atSpace() {
		l.advance()
	}
	return l.trivia(TriviaWhitespace, start)
}

func (l *Lexer) scanComment() Trivia {
	start := l.Position()
	for !l.atEOF() && !l.atLineBreak() {
		l.advance()
	}
	tr := l.trivia(TriviaComment, start)
	tr.Kind = classifyComment(tr.Text)
	return tr
}

func (l *Lexer) scanLineEnd() {
	if l.peek() == '\r' {
		l.advance()
	}
	l.advance()
}

// scanTrailing claims same-line whitespace and an optional comment for the
// token just scanned, but only when nothing else follows on that line. Doc
// comments are left for the next token.
func (l *Lexer) scanTrailing() []Trivia {
	pos, line, column := l.pos, l.line, l.column
	var trailing []Trivia
	if l.atSpace() {
		trailing = append(trailing, l.scanWhitespace())
	}
	if l.peek() == '#' {
		if l.peekN(1) == '\'' {
			return trailing
		}
		return append(trailing, l.scanComment())
	}
	if l.atEOF() || l.atLineBreak() {
		return trailing
	}
	l.pos, l.line, l.column = pos, line, column
	return nil
}

func (l *Lexer) scanToken(start Position) Token {
	ch := l.peek()
	switch {
	case ch == '"' || ch == '\'':
		return l.scanString(start)
	case ch == '`':
		return l.scanBacktick(start)
	case (ch == 'r' || ch == 'R') && (l.peekN(1) == '"' || l.peekN(1) == '\''):
		return l.scanRawString(start)
	case isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))):
		return l.scanNumber(start)
	case ch == '_':
		return l.scanPlaceholder(start)
	case l.atIdentStart():
		return l.scanIdent(start)
	}
	return l.scanOperator(start)
}

func (l *Lexer) atIdentStart() bool {
	ch := l.peek()
	if ch == '.' || isASCIILetter(ch) {
		return true
	}
	if ch < utf8.RuneSelf {
		return false
	}
	r, _ := utf8.DecodeRune(l.input[l.pos:])
	return r != utf8.RuneError && unicode.IsLetter(r)
}

func (l *Lexer) atIdentPart() bool {
	ch := l.peek()
	if ch == '.' || ch == '_' || isASCIILetter(ch) || isDigit(ch) {
		return true
	}
	if ch < utf8.RuneSelf {
		return false
	}
	r, _ := utf8.DecodeRune(l.input[l.pos:])
	return r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r))
}

func (l *Lexer) advanceRune() {
	_, size := utf8.DecodeRune(l.input[l.pos:])
	l.advanceN(size)
}

func (l *Lexer) scanIdent(start Position) Token {
	for !l.atEOF() && l.atIdentPart() {
		l.advanceRune()
	}
	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

// scanPlaceholder handles the pipe placeholder "_". Names may not start
// with an underscore otherwise.
func (l *Lexer) scanPlaceholder(start Position) Token {
	l.advance()
	if !l.atIdentPart() {
		return l.token(TokenIdent, start)
	}
	for !l.atEOF() && l.atIdentPart() {
		l.advanceRune()
	}
	return l.errorToken(CodeInvalidCharacter, start, "unexpected input %q", l.src[start.Offset:l.pos])
}

func (l *Lexer) scanNumber(start Position) Token {
	malformed := false
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		digits := l.scanDigits(isHexDigit)
		if l.peek() == '.' {
			l.advance()
			digits += l.scanDigits(isHexDigit)
		}
		if digits == 0 {
			malformed = true
		}
		if l.peek() == 'p' || l.peek() == 'P' {
			malformed = !l.scanExponent() || malformed
		}
	} else {
		l.scanDigits(isDigit)
		if l.peek() == '.' {
			l.advance()
			l.scanDigits(isDigit)
		}
		if l.peek() == 'e' || l.peek() == 'E' {
			malformed = !l.scanExponent()
		}
	}
	if l.peek() == 'L' || l.peek() == 'i' {
		l.advance()
	}
	if malformed {
		return l.errorToken(CodeMalformedNumber, start, "malformed number %q", l.src[start.Offset:l.pos])
	}
	return l.token(TokenNumber, start)
}

func (l *Lexer) scanDigits(accept func(byte) bool) int {
	n := 0
	for accept(l.peek()) {
		l.advance()
		n++
	}
	return n
}

func (l *Lexer) scanExponent() bool {
	l.advance()
	if l.peek() == '+' || l.peek() == '-' {
		l.advance()
	}
	return l.scanDigits(isDigit) > 0
}

func (l *Lexer) scanString(start Position) Token {
	quote := l.advance()
	var bad []Diagnostic
	for {
		if l.atEOF() {
			return l.errorToken(CodeUnterminatedString, start, "unterminated string constant")
		}
		ch := l.peek()
		if ch == quote {
			l.advance()
			break
		}
		if ch == '\\' {
			escStart := l.Position()
			l.advance()
			if !l.scanEscape() {
				span := Span{Start: escStart, End: l.Position()}
				bad = append(bad, errorAt(CodeInvalidEscape, span,
					"'%s' is an unrecognized escape in character string", l.src[escStart.Offset:l.pos]))
			}
			continue
		}
		l.advance()
	}
	tok := l.token(TokenString, start)
	if len(bad) > 0 {
		tok.Kind = TokenError
		l.diags = append(l.diags, bad...)
	}
	return tok
}

// scanEscape consumes the escape sequence after a backslash and reports
// whether it is one R accepts.
func (l *Lexer) scanEscape() bool {
	if l.atEOF() {
		return true
	}
	ch := l.peek()
	switch ch {
	case '\'', '"', '`', '\\', ' ', '\n', 'n', 'r', 't', 'b', 'a', 'f', 'v':
		l.advance()
		return true
	case '\r':
		return true
	case 'x':
		l.advance()
		return l.scanHexDigits(2) > 0
	case 'u':
		l.advance()
		return l.scanUnicodeEscape(4)
	case 'U':
		l.advance()
		return l.scanUnicodeEscape(8)
	}
	if ch >= '0' && ch <= '7' {
		for i := 0; i < 3 && l.peek() >= '0' && l.peek() <= '7'; i++ {
			l.advance()
		}
		return true
	}
	l.advanceRune()
	return false
}

func (l *Lexer) scanHexDigits(max int) int {
	n := 0
	for n < max && isHexDigit(l.peek()) {
		l.advance()
		n++
	}
	return n
}

func (l *Lexer) scanUnicodeEscape(max int) bool {
	if l.peek() != '{' {
		return l.scanHexDigits(max) > 0
	}
	l.advance()
	if l.scanHexDigits(max) == 0 {
		return false
	}
	if l.peek() != '}' {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) scanRawString(start Position) Token {
	l.advance()
	quote := l.advance()
	dashes := 0
	for l.peek() == '-' {
		l.advance()
		dashes++
	}
	var closer byte
	switch l.peek() {
	case '(':
		closer = ')'
	case '[':
		closer = ']'
	case '{':
		closer = '}'
	default:
		return l.errorToken(CodeUnterminatedString, start, "malformed raw string literal")
	}
	l.advance()
	for {
		if l.atEOF() {
			return l.errorToken(CodeUnterminatedString, start, "unterminated raw string constant")
		}
		if l.peek() == closer && l.closesRawString(quote, dashes) {
			l.advanceN(dashes + 2)
			return l.token(TokenString, start)
		}
		l.advance()
	}
}

func (l *Lexer) closesRawString(quote byte, dashes int) bool {
	for i := 1; i <= dashes; i++ {
		if l.peekN(i) != '-' {
			return false
		}
	}
	return l.peekN(dashes+1) == quote
}

func (l *Lexer) scanBacktick(start Position) Token {
	l.advance()
	for {
		if l.atEOF() {
			return l.errorToken(CodeUnterminatedName, start, "unterminated backtick name")
		}
		ch := l.advance()
		if ch == '\\' {
			l.advance()
			continue
		}
		if ch == '`' {
			return l.token(TokenIdent, start)
		}
	}
}

func (l *Lexer) emit(kind TokenKind, start Position, n int) Token {
	l.advanceN(n)
	return l.token(kind, start)
}

func (l *Lexer) scanOperator(start Position) Token {
	ch := l.peek()
	next := l.peekN(1)
	switch ch {
	case '(':
		return l.emit(TokenLParen, start, 1)
	case ')':
		return l.emit(TokenRParen, start, 1)
	case '{':
		return l.emit(TokenLBrace, start, 1)
	case '}':
		return l.emit(TokenRBrace, start, 1)
	case '[':
		if next == '[' {
			return l.emit(TokenLBB, start, 2)
		}
		return l.emit(TokenLBracket, start, 1)
	case ']':
		return l.emit(TokenRBracket, start, 1)
	case ',':
		return l.emit(TokenComma, start, 1)
	case ';':
		return l.emit(TokenSemicolon, start, 1)
	case '+':
		return l.emit(TokenPlus, start, 1)
	case '*':
		if next == '*' {
			return l.emit(TokenCaret, start, 2)
		}
		return l.emit(TokenStar, start, 1)
	case '/':
		return l.emit(TokenSlash, start, 1)
	case '^':
		return l.emit(TokenCaret, start, 1)
	case '~':
		return l.emit(TokenTilde, start, 1)
	case '?':
		return l.emit(TokenQuestion, start, 1)
	case '$':
		return l.emit(TokenDollar, start, 1)
	case '@':
		return l.emit(TokenAt, start, 1)
	case '\\':
		return l.emit(TokenBackslash, start, 1)
	case '-':
		if next == '>' {
			if l.peekN(2) == '>' {
				return l.emit(TokenSuperRightAssign, start, 3)
			}
			return l.emit(TokenRightAssign, start, 2)
		}
		return l.emit(TokenMinus, start, 1)
	case '<':
		switch {
		case next == '<' && l.peekN(2) == '-':
			return l.emit(TokenSuperAssign, start, 3)
		case next == '-':
			return l.emit(TokenLeftAssign, start, 2)
		case next == '=':
			return l.emit(TokenLessEq, start, 2)
		}
		return l.emit(TokenLess, start, 1)
	case '>':
		if next == '=' {
			return l.emit(TokenGreaterEq, start, 2)
		}
		return l.emit(TokenGreater, start, 1)
	case '=':
		if next == '=' {
			return l.emit(TokenEqEq, start, 2)
		}
		return l.emit(TokenEqAssign, start, 1)
	case '!':
		if next == '=' {
			return l.emit(TokenNotEq, start, 2)
		}
		return l.emit(TokenBang, start, 1)
	case '&':
		if next == '&' {
			return l.emit(TokenAndAnd, start, 2)
		}
		return l.emit(TokenAnd, start, 1)
	case '|':
		switch next {
		case '|':
			return l.emit(TokenOrOr, start, 2)
		case '>':
			return l.emit(TokenPipe, start, 2)
		}
		return l.emit(TokenOr, start, 1)
	case ':':
		switch {
		case next == ':' && l.peekN(2) == ':':
			return l.emit(TokenColonColonColon, start, 3)
		case next == ':':
			return l.emit(TokenColonColon, start, 2)
		case next == '=':
			return l.emit(TokenColonAssign, start, 2)
		}
		return l.emit(TokenColon, start, 1)
	case '%':
		return l.scanSpecial(start)
	}
	l.advanceRune()
	return l.errorToken(CodeInvalidCharacter, start, "unexpected input %q", l.src[start.Offset:l.pos])
}

// scanSpecial scans a user operator such as %in% or %>%. The closing
// percent sign must be on the same line.
func (l *Lexer) scanSpecial(start Position) Token {
	l.advance()
	for !l.atEOF() && !l.atLineBreak() {
		if l.advance() == '%' {
			return l.token(TokenSpecial, start)
		}
	}
	return l.errorToken(CodeUnterminatedOp, start, "unterminated operator %q", l.src[start.Offset:l.pos])
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isASCIILetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}
