package parser

import "sort"

// Status is the result of attempting a rule at the current position.
type Status int

const (
	// NoMatch means the rule does not apply here. Nothing was consumed.
	NoMatch Status = iota
	// Matched means the rule applied cleanly.
	Matched
	// Recovered means the rule applied but error nodes had to be inserted.
	Recovered
)

func (s Status) String() string {
	switch s {
	case NoMatch:
		return "NoMatch"
	case Matched:
		return "Matched"
	case Recovered:
		return "Recovered"
	}
	return "Unknown"
}

type Outcome struct {
	Status Status
	Nodes  []*Node
}

var noMatch = Outcome{Status: NoMatch}

func matched(nodes ...*Node) Outcome {
	return Outcome{Status: Matched, Nodes: nodes}
}

func recovered(nodes ...*Node) Outcome {
	return Outcome{Status: Recovered, Nodes: nodes}
}

func (o *Outcome) add(other Outcome) {
	o.Nodes = append(o.Nodes, other.Nodes...)
	if other.Status == Recovered {
		o.Status = Recovered
	}
}

// Nesting controls whether line breaks separate statements.
type Nesting int

const (
	NestTop Nesting = iota
	NestBrace
	NestParen
	NestBracket
)

func (n Nesting) closer() TokenKind {
	switch n {
	case NestBrace:
		return TokenRBrace
	case NestParen:
		return TokenRParen
	case NestBracket:
		return TokenRBracket
	}
	return TokenEOF
}

type RuleKind int

const (
	RuleToken RuleKind = iota
	RuleSeq
	RuleChoice
	RuleRepeat
	RuleOptional
	RuleNot
	RuleRef
	RuleBuild
	RuleNested
	RuleSkipLines
	RuleSkipLinesBefore
	RuleExpect
	RuleClose
	RuleList
	RuleLines
	RulePostfix
	RuleSuffix
	RuleEmpty
	RuleFunc
)

var ruleKindNames = map[RuleKind]string{
	RuleToken:           "Token",
	RuleSeq:             "Seq",
	RuleChoice:          "Choice",
	RuleRepeat:          "Repeat",
	RuleOptional:        "Optional",
	RuleNot:             "Not",
	RuleRef:             "Ref",
	RuleBuild:           "Build",
	RuleNested:          "Nested",
	RuleSkipLines:       "SkipLines",
	RuleSkipLinesBefore: "SkipLinesBefore",
	RuleExpect:          "Expect",
	RuleClose:           "Close",
	RuleList:            "List",
	RuleLines:           "Lines",
	RulePostfix:         "Postfix",
	RuleSuffix:          "Suffix",
	RuleEmpty:           "Empty",
	RuleFunc:            "Func",
}

func (k RuleKind) String() string {
	if name, ok := ruleKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Rule is one node of a grammar. Rules are plain data; the parser
// interprets them with attempt.
type Rule struct {
	Kind     RuleKind
	Name     string
	Tokens   []TokenKind
	Node     NodeKind
	Children []*Rule
	Min      int
	Nesting  Nesting
	Message  string
	Func     func(*Parser) Outcome
}

// Tok matches one token of the given kinds and yields a KindToken leaf.
func Tok(kinds ...TokenKind) *Rule {
	return Leaf(KindToken, kinds...)
}

// Leaf matches one token of the given kinds and yields a leaf of kind.
func Leaf(kind NodeKind, kinds ...TokenKind) *Rule {
	return &Rule{Kind: RuleToken, Node: kind, Tokens: kinds}
}

func Seq(rules ...*Rule) *Rule {
	return &Rule{Kind: RuleSeq, Children: rules}
}

// Choice tries each alternative in order and takes the first that applies.
func Choice(rules ...*Rule) *Rule {
	return &Rule{Kind: RuleChoice, Children: rules}
}

func Many(r *Rule) *Rule {
	return &Rule{Kind: RuleRepeat, Children: []*Rule{r}}
}

func Some(r *Rule) *Rule {
	return &Rule{Kind: RuleRepeat, Children: []*Rule{r}, Min: 1}
}

func Opt(r *Rule) *Rule {
	return &Rule{Kind: RuleOptional, Children: []*Rule{r}}
}

// Not succeeds without consuming input when r does not apply.
func Not(r *Rule) *Rule {
	return &Rule{Kind: RuleNot, Children: []*Rule{r}}
}

func Ref(name string) *Rule {
	return &Rule{Kind: RuleRef, Name: name}
}

// Build wraps everything r yields into a single node of kind.
func Build(kind NodeKind, r *Rule) *Rule {
	return &Rule{Kind: RuleBuild, Node: kind, Children: []*Rule{r}}
}

// Nested runs r inside a bracketing construct.
func Nested(n Nesting, r *Rule) *Rule {
	return &Rule{Kind: RuleNested, Nesting: n, Children: []*Rule{r}}
}

// SkipLines turns the line breaks at the current position into trivia.
func SkipLines() *Rule {
	return &Rule{Kind: RuleSkipLines}
}

// SkipLinesBefore turns a line break into trivia when kind follows it and
// the parser is inside braces or brackets. At the top level the line break
// stays a statement separator.
func SkipLinesBefore(kind TokenKind) *Rule {
	return &Rule{Kind: RuleSkipLinesBefore, Tokens: []TokenKind{kind}}
}

// Expect requires r. When r does not apply, the input up to the next
// synchronization point becomes an error node.
func Expect(r *Rule, message string) *Rule {
	return &Rule{Kind: RuleExpect, Message: message, Children: []*Rule{r}}
}

// Close requires a closing delimiter, skipping unexpected input in front
// of it.
func Close(kind TokenKind, message string) *Rule {
	return &Rule{Kind: RuleClose, Tokens: []TokenKind{kind}, Message: message}
}

// List matches item { sep item }.
func List(item *Rule, sep TokenKind, message string) *Rule {
	return &Rule{Kind: RuleList, Tokens: []TokenKind{sep}, Message: message, Children: []*Rule{item}}
}

// Lines matches statements separated by line breaks or semicolons up to
// one of the closing kinds or the end of input.
func Lines(item *Rule, closers ...TokenKind) *Rule {
	return &Rule{Kind: RuleLines, Tokens: closers, Children: []*Rule{item}}
}

// Postfix matches base followed by any number of suffixes. Each suffix
// wraps everything matched so far.
func Postfix(base *Rule, suffixes ...*Rule) *Rule {
	return &Rule{Kind: RulePostfix, Children: append([]*Rule{base}, suffixes...)}
}

func Suffix(kind NodeKind, r *Rule) *Rule {
	return &Rule{Kind: RuleSuffix, Node: kind, Children: []*Rule{r}}
}

func Empty() *Rule {
	return &Rule{Kind: RuleEmpty}
}

func Func(fn func(*Parser) Outcome) *Rule {
	return &Rule{Kind: RuleFunc, Func: fn}
}

// Grammar is a set of named rules.
type Grammar struct {
	rules map[string]*Rule
}

func NewGrammar() *Grammar {
	return &Grammar{rules: make(map[string]*Rule)}
}

func (g *Grammar) Define(name string, r *Rule) {
	g.rules[name] = r
}

func (g *Grammar) Rule(name string) *Rule {
	return g.rules[name]
}

func (g *Grammar) Names() []string {
	names := make([]string, 0, len(g.rules))
	for name := range g.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Undefined returns the names referenced by some rule but never defined.
func (g *Grammar) Undefined() []string {
	seen := make(map[string]bool)
	var missing []string
	var visit func(r *Rule)
	visit = func(r *Rule) {
		if r == nil {
			return
		}
		if r.Kind == RuleRef && g.rules[r.Name] == nil && !seen[r.Name] {
			seen[r.Name] = true
			missing = append(missing, r.Name)
		}
		for _, child := range r.Children {
			visit(child)
		}
	}
	for _, name := range g.Names() {
		visit(g.rules[name])
	}
	sort.Strings(missing)
	return missing
}

// infallible reports whether r can never produce NoMatch.
func (r *Rule) infallible() bool {
	switch r.Kind {
	case RuleOptional, RuleEmpty, RuleSkipLines, RuleSkipLinesBefore,
		RuleExpect, RuleClose, RuleLines:
		return true
	case RuleRepeat:
		return r.Min == 0
	case RuleBuild, RuleNested:
		return r.Children[0].infallible()
	case RuleSeq:
		return infallibleFrom(r.Children) == 0
	}
	return false
}

// infallibleFrom returns the index from which every rule in rules is
// infallible, or len(rules) if the last one can fail.
func infallibleFrom(rules []*Rule) int {
	i := len(rules)
	for i > 0 && rules[i-1].infallible() {
		i--
	}
	return i
}

func (r *Rule) accepts(kind TokenKind) bool {
	for _, k := range r.Tokens {
		if k == kind {
			return true
		}
	}
	return false
}

// attempt interprets r at the current position. A NoMatch outcome leaves
// the parser exactly where it was.
func (p *Parser) attempt(r *Rule) Outcome {
	switch r.Kind {
	case RuleToken:
		tok := p.peek()
		if !r.accepts(tok.Kind) {
			return noMatch
		}
		leaf := newLeaf(r.Node, p.advance())
		if r.Node == KindError {
			leaf.Error = &Error{Message: "invalid token", Got: leaf.Token}
		}
		return matched(leaf)

	case RuleSeq:
		m := p.mark()
		// Once the remaining children cannot fail the mark is no longer
		// needed.
		committed := infallibleFrom(r.Children)
		p.held++
		out := matched()
		for i, child := range r.Children {
			if i == committed {
				p.held--
			}
			o := p.attempt(child)
			if o.Status == NoMatch {
				if i < committed {
					p.held--
				}
				p.reset(m)
				return noMatch
			}
			out.add(o)
		}
		if committed == len(r.Children) {
			p.held--
		}
		return out

	case RuleChoice:
		p.held++
		defer func() { p.held-- }()
		for _, child := range r.Children {
			m := p.mark()
			if o := p.attempt(child); o.Status != NoMatch {
				return o
			}
			p.reset(m)
		}
		return noMatch

	case RuleRepeat:
		p.held++
		defer func() { p.held-- }()
		m := p.mark()
		out := matched()
		count := 0
		for {
			before := p.mark()
			o := p.attempt(r.Children[0])
			if o.Status == NoMatch {
				p.reset(before)
				break
			}
			out.add(o)
			count++
			if p.pos == before.pos {
				break
			}
		}
		if count < r.Min {
			p.reset(m)
			return noMatch
		}
		return out

	case RuleOptional:
		if o := p.attempt(r.Children[0]); o.Status != NoMatch {
			return o
		}
		return matched()

	case RuleNot:
		m := p.mark()
		p.held++
		o := p.attempt(r.Children[0])
		p.held--
		p.reset(m)
		if o.Status == NoMatch {
			return matched()
		}
		return noMatch

	case RuleRef:
		target := p.grammar.Rule(r.Name)
		if target == nil {
			return noMatch
		}
		return p.attempt(target)

	case RuleBuild:
		pos := p.peek().Span.Start
		o := p.attempt(r.Children[0])
		if o.Status == NoMatch {
			return noMatch
		}
		n := NewNode(r.Node, o.Nodes...)
		if len(o.Nodes) == 0 {
			n.Span = Span{Start: pos, End: pos}
		}
		return Outcome{Status: o.Status, Nodes: []*Node{n}}

	case RuleNested:
		p.nesting = append(p.nesting, r.Nesting)
		o := p.attempt(r.Children[0])
		p.nesting = p.nesting[:len(p.nesting)-1]
		return o

	case RuleSkipLines:
		p.skipNewlines()
		return matched()

	case RuleSkipLinesBefore:
		if p.currentNesting() != NestTop && p.at(p.pos).Kind == TokenNewline && r.accepts(p.at(p.pos+1).Kind) {
			p.skipNewlines()
		}
		return matched()

	case RuleExpect:
		if o := p.attempt(r.Children[0]); o.Status != NoMatch {
			return o
		}
		return recovered(p.recover(CodeExpected, r.Message))

	case RuleClose:
		if r.accepts(p.peek().Kind) {
			return matched(newLeaf(KindToken, p.advance()))
		}
		out := recovered(p.recover(CodeUnclosed, r.Message))
		if r.accepts(p.peek().Kind) {
			out.Nodes = append(out.Nodes, newLeaf(KindToken, p.advance()))
		}
		return out

	case RuleList:
		return p.attemptList(r)

	case RuleLines:
		return p.attemptLines(r)

	case RulePostfix:
		return p.attemptPostfix(r)

	case RuleSuffix:
		return p.attempt(r.Children[0])

	case RuleEmpty:
		return matched()

	case RuleFunc:
		return r.Func(p)
	}
	return noMatch
}

func (p *Parser) attemptList(r *Rule) Outcome {
	item := r.Children[0]
	out := p.attempt(item)
	if out.Status == NoMatch {
		return noMatch
	}
	for {
		if r.accepts(p.peek().Kind) {
			out.add(matched(newLeaf(KindToken, p.advance())))
			if o := p.attempt(item); o.Status != NoMatch {
				out.add(o)
			} else {
				out.add(recovered(p.recover(CodeExpected, r.Message)))
			}
			continue
		}
		if p.atSync() {
			return out
		}
		before := p.pos
		out.add(recovered(p.recover(CodeUnexpectedToken, p.unexpected())))
		if p.pos == before {
			return out
		}
	}
}

func (p *Parser) attemptLines(r *Rule) Outcome {
	item := r.Children[0]
	out := matched()
	for {
		p.release()
		tok := p.peek()
		switch {
		case tok.Kind == TokenNewline || tok.Kind == TokenSemicolon:
			out.add(matched(newLeaf(KindToken, p.advance())))
			continue
		case tok.Kind == TokenEOF || r.accepts(tok.Kind) || p.atSync():
			return out
		}

		o := p.attempt(item)
		if o.Status == NoMatch {
			before := p.pos
			out.add(recovered(p.recover(CodeUnexpectedToken, p.unexpected())))
			if p.pos == before {
				return out
			}
			continue
		}
		out.add(o)

		tok = p.peek()
		if tok.Kind == TokenNewline || tok.Kind == TokenSemicolon || tok.Kind == TokenEOF || r.accepts(tok.Kind) || p.atSync() {
			continue
		}
		before := p.pos
		out.add(recovered(p.recover(CodeUnexpectedToken, p.unexpected())))
		if p.pos == before {
			return out
		}
	}
}

func (p *Parser) attemptPostfix(r *Rule) Outcome {
	out := p.attempt(r.Children[0])
	if out.Status == NoMatch || len(out.Nodes) != 1 {
		return out
	}
	left := out.Nodes[0]
	status := out.Status
	for {
		applied := false
		for _, suffix := range r.Children[1:] {
			o := p.attempt(suffix)
			if o.Status == NoMatch {
				continue
			}
			left = NewNode(suffix.Node, append([]*Node{left}, o.Nodes...)...)
			if o.Status == Recovered {
				status = Recovered
			}
			applied = true
			break
		}
		if !applied {
			return Outcome{Status: status, Nodes: []*Node{left}}
		}
	}
}
