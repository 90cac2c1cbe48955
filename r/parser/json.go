package parser

import "encoding/json"

type jsonNode struct {
	Kind     string      `json:"kind"`
	Span     *jsonSpan   `json:"span,omitempty"`
	Token    *jsonToken  `json:"token,omitempty"`
	Error    *jsonError  `json:"error,omitempty"`
	Children []*jsonNode `json:"children,omitempty"`
}

type jsonSpan struct {
	Start jsonPosition `json:"start"`
	End   jsonPosition `json:"end"`
}

type jsonPosition struct {
	Offset int `json:"offset"`
	Line   int `json:"line"`
	Column int `json:"column"`
}

type jsonToken struct {
	Kind     string       `json:"kind"`
	Text     string       `json:"text"`
	Leading  []jsonTrivia `json:"leading,omitempty"`
	Trailing []jsonTrivia `json:"trailing,omitempty"`
}

type jsonTrivia struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type jsonError struct {
	Message  string   `json:"message"`
	Expected []string `json:"expected,omitempty"`
	Got      string   `json:"got,omitempty"`
}

func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON())
}

func toJSONSpan(s Span) *jsonSpan {
	return &jsonSpan{
		Start: jsonPosition{Offset: s.Start.Offset, Line: s.Start.Line, Column: s.Start.Column},
		End:   jsonPosition{Offset: s.End.Offset, Line: s.End.Line, Column: s.End.Column},
	}
}

func toJSONTrivia(trivia []Trivia) []jsonTrivia {
	if len(trivia) == 0 {
		return nil
	}
	out := make([]jsonTrivia, len(trivia))
	for i, tr := range trivia {
		out[i] = jsonTrivia{Kind: tr.Kind.String(), Text: tr.Text}
	}
	return out
}

func (n *Node) toJSON() *jsonNode {
	jn := &jsonNode{
		Kind: n.Kind.String(),
	}

	if n.Span.Start.Line != 0 || n.Span.End.Line != 0 {
		jn.Span = toJSONSpan(n.Span)
	}

	if n.Token != nil {
		jn.Token = &jsonToken{
			Kind:     n.Token.Kind.String(),
			Text:     n.Token.Literal,
			Leading:  toJSONTrivia(n.Token.Leading),
			Trailing: toJSONTrivia(n.Token.Trailing),
		}
	}

	if n.Error != nil {
		jn.Error = &jsonError{
			Message: n.Error.Message,
		}
		for _, exp := range n.Error.Expected {
			jn.Error.Expected = append(jn.Error.Expected, exp.String())
		}
		if n.Error.Got != nil {
			jn.Error.Got = n.Error.Got.Literal
		}
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = child.toJSON()
		}
	}

	return jn
}
