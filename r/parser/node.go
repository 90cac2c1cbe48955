package parser

import "strings"

type NodeKind int

const (
	KindError NodeKind = iota

	KindProgram
	KindBlock
	KindParen

	// Definitions and calls
	KindFunction
	KindFormal
	KindCall
	KindArg
	KindMissing

	// Control flow
	KindIf
	KindFor
	KindWhile
	KindRepeat
	KindBreak
	KindNext

	// Operators
	KindBinary
	KindUnary
	KindAssignment

	// Access
	KindSubset
	KindSubset2
	KindDollar
	KindSlot
	KindNamespace

	// Leaves
	KindLiteral
	KindSymbol
	KindToken
)

var nodeKindNames = map[NodeKind]string{
	KindError:      "Error",
	KindProgram:    "Program",
	KindBlock:      "Block",
	KindParen:      "Paren",
	KindFunction:   "Function",
	KindFormal:     "Formal",
	KindCall:       "Call",
	KindArg:        "Arg",
	KindMissing:    "Missing",
	KindIf:         "If",
	KindFor:        "For",
	KindWhile:      "While",
	KindRepeat:     "Repeat",
	KindBreak:      "Break",
	KindNext:       "Next",
	KindBinary:     "Binary",
	KindUnary:      "Unary",
	KindAssignment: "Assignment",
	KindSubset:     "Subset",
	KindSubset2:    "Subset2",
	KindDollar:     "Dollar",
	KindSlot:       "Slot",
	KindNamespace:  "Namespace",
	KindLiteral:    "Literal",
	KindSymbol:     "Symbol",
	KindToken:      "Token",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Error struct {
	Message  string
	Expected []TokenKind
	Got      *Token
}

// Node is a node of the concrete syntax tree. Leaves own exactly one token;
// inner nodes own their children. Punctuation, keywords, operators and
// statement separators are kept as KindToken leaves so that the tokens of a
// tree, read in order, reproduce the source.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
	Error    *Error
}

func newLeaf(kind NodeKind, tok *Token) *Node {
	return &Node{Kind: kind, Span: tok.Span, Token: tok}
}

// NewNode builds an inner node spanning its children.
func NewNode(kind NodeKind, children ...*Node) *Node {
	n := &Node{Kind: kind}
	for _, child := range children {
		n.AddChild(child)
	}
	return n
}

// NewBinary combines two operands. Chaining a non-associative operator
// without parentheses, as in a < b < c, still yields a tree but also a
// diagnostic.
func NewBinary(left, op, right *Node) (*Node, *Diagnostic) {
	kind := KindBinary
	info, _ := BinaryOperator(op.Token.Kind)
	if info.IsAssignment() {
		kind = KindAssignment
	}
	n := NewNode(kind, left, op, right)
	if info.Assoc != AssocNone {
		return n, nil
	}
	for _, side := range []*Node{left, right} {
		if side.Kind != KindBinary {
			continue
		}
		if other, ok := BinaryOperator(side.Operator().Kind); ok && other.Assoc == AssocNone && other.Tier == info.Tier {
			d := errorAt(CodeNonAssociative, n.Span, "operator '%s' is non-associative and cannot be chained", op.Token.Literal)
			return n, &d
		}
	}
	return n, nil
}

func NewUnary(op, operand *Node) *Node {
	return NewNode(KindUnary, op, operand)
}

// NewError builds an error node. Without children it is zero-width at pos.
func NewError(message string, pos Position, children ...*Node) *Node {
	n := &Node{
		Kind:  KindError,
		Span:  Span{Start: pos, End: pos},
		Error: &Error{Message: message},
	}
	for _, child := range children {
		n.AddChild(child)
	}
	return n
}

func newEmpty(kind NodeKind, pos Position) *Node {
	return &Node{Kind: kind, Span: Span{Start: pos, End: pos}}
}

func (n *Node) AddChild(child *Node) {
	if child == nil {
		return
	}
	if len(n.Children) == 0 && n.Token == nil {
		n.Span = child.Span
	} else {
		n.Span = n.Span.Cover(child.Span)
	}
	n.Children = append(n.Children, child)
}

func (n *Node) IsError() bool {
	return n.Kind == KindError
}

// IsLeaf reports whether the node owns a token.
func (n *Node) IsLeaf() bool {
	return n.Token != nil
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// Parts returns the children that are not punctuation, keyword or operator
// leaves: the operands of an operator, the condition and branches of an if,
// the formals and body of a function and so on.
func (n *Node) Parts() []*Node {
	var parts []*Node
	for _, child := range n.Children {
		if child.Kind != KindToken {
			parts = append(parts, child)
		}
	}
	return parts
}

func (n *Node) part(i int) *Node {
	parts := n.Parts()
	if i < 0 {
		i += len(parts)
	}
	if i < 0 || i >= len(parts) {
		return nil
	}
	return parts[i]
}

// Statements returns the statements of a Program or Block without the
// separators and delimiters around them.
func (n *Node) Statements() []*Node {
	return n.Parts()
}

// Operator returns the operator token of a Binary, Unary or Assignment.
func (n *Node) Operator() *Token {
	for _, child := range n.Children {
		if child.Kind == KindToken {
			return child.Token
		}
	}
	return nil
}

func (n *Node) Left() *Node {
	return n.part(0)
}

func (n *Node) Right() *Node {
	return n.part(1)
}

func (n *Node) Operand() *Node {
	return n.part(0)
}

func (n *Node) Condition() *Node {
	if n.Kind != KindIf && n.Kind != KindWhile {
		return nil
	}
	return n.part(0)
}

func (n *Node) Then() *Node {
	if n.Kind != KindIf {
		return nil
	}
	return n.part(1)
}

func (n *Node) Else() *Node {
	if n.Kind != KindIf {
		return nil
	}
	return n.part(2)
}

func (n *Node) Formals() []*Node {
	return n.ChildrenOfKind(KindFormal)
}

func (n *Node) Args() []*Node {
	return n.ChildrenOfKind(KindArg)
}

// Body returns the body of a function or loop.
func (n *Node) Body() *Node {
	switch n.Kind {
	case KindFunction, KindFor, KindWhile, KindRepeat:
		body := n.part(-1)
		if body == nil || body.Kind == KindFormal {
			return nil
		}
		return body
	}
	return nil
}

// Name returns the name of a Formal or of a named Arg.
func (n *Node) Name() *Node {
	switch n.Kind {
	case KindFormal:
		return n.FirstChildOfKind(KindSymbol)
	case KindArg:
		if len(n.Children) >= 2 && n.Children[1].Kind == KindToken && n.Children[1].Token.Kind == TokenEqAssign {
			return n.Children[0]
		}
	}
	return nil
}

// Value returns the default of a Formal or the value of an Arg.
func (n *Node) Value() *Node {
	switch n.Kind {
	case KindFormal:
		return n.part(1)
	case KindArg:
		if n.Name() != nil {
			return n.part(1)
		}
		return n.part(0)
	}
	return nil
}

func (n *Node) String() string {
	return n.stringIndent(0, false)
}

func (n *Node) StringWithPositions() string {
	return n.stringIndent(0, true)
}

func (n *Node) stringIndent(indent int, showPositions bool) string {
	prefix := strings.Repeat("  ", indent)

	result := prefix + n.Kind.String()
	if showPositions {
		result += " [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]"
	}
	if n.Token != nil {
		result += " " + n.Token.Literal
	}
	if n.Error != nil {
		result += " ERROR: " + n.Error.Message
	}
	result += "\n"

	for _, child := range n.Children {
		result += child.stringIndent(indent+1, showPositions)
	}
	return result
}

// Sexpr renders the tree as a compact s-expression that makes grouping
// explicit, e.g. "(+ 1 (* 2 3))".
func (n *Node) Sexpr() string {
	var b strings.Builder
	n.writeSexpr(&b)
	return b.String()
}

func (n *Node) writeSexpr(b *strings.Builder) {
	list := func(head string, parts []*Node) {
		b.WriteString("(")
		b.WriteString(head)
		for _, p := range parts {
			b.WriteString(" ")
			p.writeSexpr(b)
		}
		b.WriteString(")")
	}
	switch n.Kind {
	case KindLiteral, KindSymbol, KindBreak, KindNext, KindToken:
		b.WriteString(n.TokenLiteral())
	case KindError:
		b.WriteString("<error>")
	case KindMissing:
		b.WriteString("<missing>")
	case KindProgram:
		list("program", n.Parts())
	case KindBlock:
		list("{", n.Parts())
	case KindParen:
		list("paren", n.Parts())
	case KindBinary, KindAssignment, KindUnary:
		op := "?"
		if tok := n.Operator(); tok != nil {
			op = tok.Literal
		}
		list(op, n.Parts())
	case KindCall:
		list("call", n.Parts())
	case KindArg, KindFormal:
		if name := n.Name(); name != nil {
			b.WriteString(name.TokenLiteral())
			v := n.Value()
			if n.Kind == KindArg || v != nil {
				b.WriteString("=")
			}
			if v != nil {
				v.writeSexpr(b)
			}
			return
		}
		if v := n.Value(); v != nil {
			v.writeSexpr(b)
		}
	case KindFunction:
		b.WriteString("(function (")
		for i, f := range n.Formals() {
			if i > 0 {
				b.WriteString(" ")
			}
			f.writeSexpr(b)
		}
		b.WriteString(")")
		if body := n.Body(); body != nil {
			b.WriteString(" ")
			body.writeSexpr(b)
		}
		b.WriteString(")")
	case KindIf:
		list("if", n.Parts())
	case KindFor:
		list("for", n.Parts())
	case KindWhile:
		list("while", n.Parts())
	case KindRepeat:
		list("repeat", n.Parts())
	case KindSubset:
		list("[", n.Parts())
	case KindSubset2:
		list("[[", n.Parts())
	case KindDollar:
		list("$", n.Parts())
	case KindSlot:
		list("@", n.Parts())
	case KindNamespace:
		op := "::"
		if tok := n.Operator(); tok != nil {
			op = tok.Literal
		}
		list(op, n.Parts())
	default:
		list(n.Kind.String(), n.Parts())
	}
}
