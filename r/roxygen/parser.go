package roxygen

import (
	"strings"
	"unicode"

	"github.com/dhamidi/rfmt/r/parser"
)

// ParseTrivia parses the doc comments among trivia, as returned by
// parser.Node.DocComments.
func ParseTrivia(trivia []parser.Trivia) *Block {
	var lines []string
	for _, tr := range trivia {
		if tr.Kind == parser.TriviaDocComment {
			lines = append(lines, tr.DocText())
		}
	}
	if len(lines) == 0 {
		return nil
	}
	return Parse(lines)
}

// Parse parses the text of a roxygen block, one element per comment line
// with the #' prefix already removed.
func Parse(lines []string) *Block {
	b := &Block{}

	i := 0
	for i < len(lines) && !isTagLine(lines[i]) {
		i++
	}
	intro := paragraphs(lines[:i])
	if len(intro) > 0 {
		b.Title = parseInline(intro[0])
		for _, para := range intro[1:] {
			b.Description = append(b.Description, parseInline(para))
		}
	}

	for i < len(lines) {
		name, rest := splitTag(lines[i])
		body := []string{rest}
		i++
		for i < len(lines) && !isTagLine(lines[i]) {
			body = append(body, lines[i])
			i++
		}
		b.addTag(name, body)
	}
	return b
}

func (b *Block) addTag(name string, body []string) {
	text := strings.TrimSpace(strings.Join(body, "\n"))

	switch name {
	case "title":
		b.Title = parseInline(text)
	case "description":
		for _, para := range paragraphs(body) {
			b.Description = append(b.Description, parseInline(para))
		}
	case "details":
		for _, para := range paragraphs(body) {
			b.Details = append(b.Details, parseInline(para))
		}
	case "param":
		names, desc := splitWord(text)
		b.Tags = append(b.Tags, Param{Names: strings.Split(names, ","), Description: parseInline(desc)})
	case "return", "returns":
		b.Tags = append(b.Tags, Return{Description: parseInline(text)})
	case "export":
		b.Tags = append(b.Tags, Export{Name: text})
	case "examples":
		b.Tags = append(b.Tags, Examples{Code: verbatim(body)})
	case "rdname":
		b.Tags = append(b.Tags, RdName{Name: text})
	case "seealso":
		b.Tags = append(b.Tags, SeeAlso{Description: parseInline(text)})
	case "inheritParams":
		b.Tags = append(b.Tags, InheritParams{Source: text})
	default:
		b.Tags = append(b.Tags, UnknownTag{Name: name, Content: parseInline(text)})
	}
}

// isTagLine reports whether a line starts a block tag. "@@" is an escaped
// at sign, not a tag.
func isTagLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < 2 || trimmed[0] != '@' {
		return false
	}
	return unicode.IsLetter(rune(trimmed[1]))
}

func splitTag(line string) (name, rest string) {
	trimmed := strings.TrimLeft(line, " \t")[1:]
	end := strings.IndexFunc(trimmed, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	if end < 0 {
		return trimmed, ""
	}
	return trimmed[:end], strings.TrimPrefix(trimmed[end:], " ")
}

func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}
	return s[:end], strings.TrimSpace(s[end:])
}

// paragraphs joins lines into paragraphs separated by blank lines.
func paragraphs(lines []string) []string {
	var paras []string
	var current []string
	flush := func() {
		if len(current) > 0 {
			paras = append(paras, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		current = append(current, strings.TrimSpace(line))
	}
	flush()
	return paras
}

// verbatim keeps example code as written, dropping blank lines around it.
func verbatim(lines []string) string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

// inlineParser is a recursive-descent parser for the markup inside a tag or
// paragraph: `code`, [links], Rd macros and the @@ escape.
type inlineParser struct {
	input []rune
	pos   int
	len   int
}

func parseInline(s string) []Node {
	if s == "" {
		return nil
	}
	p := &inlineParser{input: []rune(s)}
	p.len = len(p.input)
	return p.parseContent(false)
}

// parseContent parses text up to the end of input, or up to an unmatched
// '}' when inMacro is true.
func (p *inlineParser) parseContent(inMacro bool) []Node {
	var nodes []Node
	var text strings.Builder
	depth := 0

	flush := func() {
		if text.Len() > 0 {
			nodes = append(nodes, Text{Content: text.String()})
			text.Reset()
		}
	}

	for p.pos < p.len {
		ch := p.peek()
		switch {
		case ch == '`':
			if code, ok := p.parseCodeSpan(); ok {
				flush()
				nodes = append(nodes, code)
				continue
			}
			text.WriteRune(ch)
			p.advance(1)

		case ch == '[':
			if link, ok := p.parseLink(); ok {
				flush()
				nodes = append(nodes, link)
				continue
			}
			text.WriteRune(ch)
			p.advance(1)

		case ch == '\\' && unicode.IsLetter(p.peekAt(1)):
			flush()
			nodes = append(nodes, p.parseMacro())

		case ch == '\\' && (p.peekAt(1) == '%' || p.peekAt(1) == '{' || p.peekAt(1) == '}' || p.peekAt(1) == '\\'):
			text.WriteRune(p.peekAt(1))
			p.advance(2)

		case ch == '@' && p.peekAt(1) == '@':
			text.WriteRune('@')
			p.advance(2)

		case ch == '{' && inMacro:
			depth++
			text.WriteRune(ch)
			p.advance(1)

		case ch == '}' && inMacro:
			if depth == 0 {
				flush()
				return nodes
			}
			depth--
			text.WriteRune(ch)
			p.advance(1)

		default:
			text.WriteRune(ch)
			p.advance(1)
		}
	}

	flush()
	return nodes
}

// parseCodeSpan parses a span delimited by a run of backticks. The closing
// run must have the same length.
func (p *inlineParser) parseCodeSpan() (Node, bool) {
	start := p.pos
	n := 0
	for p.peekAt(n) == '`' {
		n++
	}
	fence := strings.Repeat("`", n)
	for i := p.pos + n; i+n <= p.len; i++ {
		if string(p.input[i:i+n]) == fence && (i+n == p.len || p.input[i+n] != '`') {
			content := string(p.input[start+n : i])
			p.pos = i + n
			return Code{Content: strings.TrimSpace(content)}, true
		}
	}
	return nil, false
}

// parseLink parses [topic], [pkg::topic()] and [label][topic].
func (p *inlineParser) parseLink() (Node, bool) {
	start := p.pos
	first, ok := p.readBracketed()
	if !ok || first == "" {
		p.pos = start
		return nil, false
	}
	if p.peek() == '[' {
		mark := p.pos
		if target, ok := p.readBracketed(); ok && target != "" {
			return Link{Target: target, Label: first}, true
		}
		p.pos = mark
	}
	return Link{Target: first}, true
}

func (p *inlineParser) readBracketed() (string, bool) {
	if p.peek() != '[' {
		return "", false
	}
	p.advance(1)
	begin := p.pos
	depth := 0
	for p.pos < p.len {
		switch p.peek() {
		case '[':
			depth++
		case ']':
			if depth == 0 {
				content := string(p.input[begin:p.pos])
				p.advance(1)
				return content, true
			}
			depth--
		case '\n':
			return "", false
		}
		p.advance(1)
	}
	return "", false
}

// parseMacro parses \name{...}. A macro without braces is kept as text.
func (p *inlineParser) parseMacro() Node {
	p.advance(1)
	name := p.readName()
	if p.peek() != '{' {
		return Text{Content: "\\" + name}
	}
	p.advance(1)

	switch name {
	case "code", "verb", "env", "file", "pkg":
		content := p.readBalanced()
		return Code{Content: content}
	case "link", "linkS4class":
		return Link{Target: p.readBalanced()}
	}

	content := p.parseContent(true)
	if p.peek() == '}' {
		p.advance(1)
	}
	return Macro{Name: name, Content: content}
}

// readBalanced reads up to the '}' closing the current macro and consumes
// it.
func (p *inlineParser) readBalanced() string {
	start := p.pos
	depth := 0
	for p.pos < p.len {
		ch := p.peek()
		if ch == '{' {
			depth++
		} else if ch == '}' {
			if depth == 0 {
				break
			}
			depth--
		}
		p.advance(1)
	}
	content := string(p.input[start:p.pos])
	if p.peek() == '}' {
		p.advance(1)
	}
	return content
}

func (p *inlineParser) readName() string {
	start := p.pos
	for p.pos < p.len && (unicode.IsLetter(p.peek()) || unicode.IsDigit(p.peek())) {
		p.advance(1)
	}
	return string(p.input[start:p.pos])
}

func (p *inlineParser) peek() rune {
	if p.pos >= p.len {
		return 0
	}
	return p.input[p.pos]
}

func (p *inlineParser) peekAt(offset int) rune {
	pos := p.pos + offset
	if pos >= p.len || pos < 0 {
		return 0
	}
	return p.input[pos]
}

func (p *inlineParser) advance(n int) {
	p.pos += n
	if p.pos > p.len {
		p.pos = p.len
	}
}
