package parser

import (
	"io"
	"strings"
)

// Walk visits n and its descendants depth-first in source order. Children
// of a node are skipped when fn returns false for it.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// Tokens returns the tokens owned by the leaves under n, in source order.
func (n *Node) Tokens() []*Token {
	var tokens []*Token
	Walk(n, func(node *Node) bool {
		if node.Token != nil {
			tokens = append(tokens, node.Token)
		}
		return true
	})
	return tokens
}

func (n *Node) FirstToken() *Token {
	var first *Token
	Walk(n, func(node *Node) bool {
		if first != nil {
			return false
		}
		if node.Token != nil {
			first = node.Token
			return false
		}
		return true
	})
	return first
}

// LeadingTrivia returns the trivia in front of the first token of n. For a
// statement this includes the comments and doc comments written above it.
func (n *Node) LeadingTrivia() []Trivia {
	if tok := n.FirstToken(); tok != nil {
		return tok.Leading
	}
	return nil
}

// DocComments returns the roxygen block directly above n.
func (n *Node) DocComments() []Trivia {
	return DocBlock(n.LeadingTrivia())
}

// Errors returns every error node under n.
func (n *Node) Errors() []*Node {
	var errs []*Node
	Walk(n, func(node *Node) bool {
		if node.IsError() {
			errs = append(errs, node)
		}
		return true
	})
	return errs
}

func (n *Node) HasErrors() bool {
	return len(n.Errors()) > 0
}

// Text reproduces the source covered by n including the trivia attached to
// its tokens. For a Program this is the complete input.
func (n *Node) Text() string {
	var b strings.Builder
	n.WriteTo(&b)
	return b.String()
}

func (n *Node) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, tok := range n.Tokens() {
		for _, tr := range tok.Leading {
			k, err := io.WriteString(w, tr.Text)
			total += int64(k)
			if err != nil {
				return total, err
			}
		}
		k, err := io.WriteString(w, tok.Literal)
		total += int64(k)
		if err != nil {
			return total, err
		}
		for _, tr := range tok.Trailing {
			k, err := io.WriteString(w, tr.Text)
			total += int64(k)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}
