package parser

// Role tells the resolver how to treat one element of an expression run.
type Role int

const (
	RoleOperand Role = iota
	RolePrefix
	RoleBinary
)

// RunItem is one element of a flat expression run. Prefix and binary items
// hold KindToken leaves; operands hold fully parsed operand nodes with
// calls, indexing and member access already applied.
type RunItem struct {
	Role Role
	Node *Node
}

// parseExpr collects the run prefix* operand { binop prefix* operand } and
// hands it to Resolve. Line breaks after an operator never end the run.
func (p *Parser) parseExpr() Outcome {
	operand := p.grammar.Rule("Operand")
	var run []RunItem
	status := Matched
	for {
		for {
			if _, ok := PrefixOperator(p.peek().Kind); !ok {
				break
			}
			run = append(run, RunItem{Role: RolePrefix, Node: newLeaf(KindToken, p.advance())})
			p.skipNewlines()
		}

		o := noMatch
		if operand != nil {
			o = p.attempt(operand)
		}
		if o.Status == NoMatch {
			if len(run) == 0 {
				return noMatch
			}
			status = Recovered
			tok := p.peek()
			_, binary := BinaryOperator(tok.Kind)
			if binary || tok.Kind == TokenElse || p.atSync() {
				run = append(run, RunItem{Role: RoleOperand, Node: p.missingOperand()})
			} else {
				run = append(run, RunItem{Role: RoleOperand, Node: p.recover(CodeUnexpectedToken, p.unexpected())})
			}
			if !binary {
				break
			}
		} else {
			if o.Status == Recovered {
				status = Recovered
			}
			run = append(run, RunItem{Role: RoleOperand, Node: o.Nodes[0]})
		}

		if _, ok := BinaryOperator(p.peek().Kind); !ok {
			break
		}
		run = append(run, RunItem{Role: RoleBinary, Node: newLeaf(KindToken, p.advance())})
		p.skipNewlines()
	}

	node, diags := Resolve(run)
	p.diags = append(p.diags, diags...)
	return Outcome{Status: status, Nodes: []*Node{node}}
}

// Resolve turns a flat run into a tree using precedence climbing over the
// operator table. The result is unique for a given run.
func Resolve(run []RunItem) (*Node, []Diagnostic) {
	r := &resolver{run: run}
	n := r.parse(0)
	return n, r.diags
}

type resolver struct {
	run   []RunItem
	pos   int
	diags []Diagnostic
}

func (r *resolver) parse(minBP int) *Node {
	if r.pos >= len(r.run) {
		var pos Position
		if len(r.run) > 0 {
			pos = r.run[len(r.run)-1].Node.Span.End
		}
		return NewError("missing operand", pos)
	}
	item := r.run[r.pos]
	r.pos++

	var left *Node
	switch item.Role {
	case RolePrefix:
		op, _ := PrefixOperator(item.Node.Token.Kind)
		left = NewUnary(item.Node, r.parse(op.PrefixBindingPower()))
	case RoleBinary:
		left = NewError("missing operand", item.Node.Span.Start)
		r.pos--
	default:
		left = item.Node
	}

	for r.pos < len(r.run) {
		item := r.run[r.pos]
		if item.Role != RoleBinary {
			break
		}
		op, _ := BinaryOperator(item.Node.Token.Kind)
		lbp, rbp := op.BindingPower()
		if lbp < minBP {
			break
		}
		r.pos++
		node, d := NewBinary(left, item.Node, r.parse(rbp))
		if d != nil {
			r.diags = append(r.diags, *d)
		}
		left = node
	}
	return left
}
