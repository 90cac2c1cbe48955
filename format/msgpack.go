package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dhamidi/rfmt/r/parser"
)

// Current schema version - increment when WireDocument changes.
const wireSchemaVersion uint16 = 1

// WireDocument is the msgpack form of a parse result. It keeps every token
// and trivia, so Text reproduces the source.
type WireDocument struct {
	Schema      uint16           `msgpack:"v"`
	Tree        *WireNode        `msgpack:"t"`
	Diagnostics []WireDiagnostic `msgpack:"d,omitempty"`
}

type WireNode struct {
	Kind     string      `msgpack:"k"`
	Start    int         `msgpack:"s"`
	End      int         `msgpack:"e"`
	Token    *WireToken  `msgpack:"tok,omitempty"`
	Error    string      `msgpack:"err,omitempty"`
	Children []*WireNode `msgpack:"c,omitempty"`
}

type WireToken struct {
	Kind     string       `msgpack:"k"`
	Text     string       `msgpack:"x"`
	Leading  []WireTrivia `msgpack:"l,omitempty"`
	Trailing []WireTrivia `msgpack:"r,omitempty"`
}

type WireTrivia struct {
	Kind string `msgpack:"k"`
	Text string `msgpack:"x"`
}

type WireDiagnostic struct {
	Severity string `msgpack:"sev"`
	Code     string `msgpack:"code"`
	Message  string `msgpack:"msg"`
	Start    int    `msgpack:"s"`
	End      int    `msgpack:"e"`
	Line     int    `msgpack:"line"`
	Column   int    `msgpack:"col"`
}

type MsgpackEncoder struct {
	w io.Writer
}

func NewMsgpackEncoder(w io.Writer) *MsgpackEncoder {
	return &MsgpackEncoder{w: w}
}

func (e *MsgpackEncoder) Encode(result *parser.Result) error {
	return msgpack.NewEncoder(e.w).Encode(ToWire(result))
}

func (e *MsgpackEncoder) MarshalText(result *parser.Result) ([]byte, error) {
	return msgpack.Marshal(ToWire(result))
}

// DecodeMsgpack reads a document written by MsgpackEncoder.
func DecodeMsgpack(r io.Reader) (*WireDocument, error) {
	var doc WireDocument
	if err := msgpack.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	if doc.Schema != wireSchemaVersion {
		return nil, fmt.Errorf("unsupported schema version %d", doc.Schema)
	}
	return &doc, nil
}

func ToWire(result *parser.Result) *WireDocument {
	doc := &WireDocument{Schema: wireSchemaVersion, Tree: toWireNode(result.Program)}
	for _, d := range result.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, WireDiagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  d.Message,
			Start:    d.Span.Start.Offset,
			End:      d.Span.End.Offset,
			Line:     d.Span.Start.Line,
			Column:   d.Span.Start.Column,
		})
	}
	return doc
}

func toWireNode(n *parser.Node) *WireNode {
	wn := &WireNode{
		Kind:  n.Kind.String(),
		Start: n.Span.Start.Offset,
		End:   n.Span.End.Offset,
	}
	if n.Token != nil {
		wn.Token = &WireToken{
			Kind:     n.Token.Kind.String(),
			Text:     n.Token.Literal,
			Leading:  toWireTrivia(n.Token.Leading),
			Trailing: toWireTrivia(n.Token.Trailing),
		}
	}
	if n.Error != nil {
		wn.Error = n.Error.Message
	}
	for _, child := range n.Children {
		wn.Children = append(wn.Children, toWireNode(child))
	}
	return wn
}

func toWireTrivia(trivia []parser.Trivia) []WireTrivia {
	if len(trivia) == 0 {
		return nil
	}
	out := make([]WireTrivia, len(trivia))
	for i, tr := range trivia {
		out[i] = WireTrivia{Kind: tr.Kind.String(), Text: tr.Text}
	}
	return out
}

// Text reproduces the source the document was encoded from.
func (d *WireDocument) Text() string {
	var sb strings.Builder
	var walk func(n *WireNode)
	walk = func(n *WireNode) {
		if n == nil {
			return
		}
		if n.Token != nil {
			for _, tr := range n.Token.Leading {
				sb.WriteString(tr.Text)
			}
			sb.WriteString(n.Token.Text)
			for _, tr := range n.Token.Trailing {
				sb.WriteString(tr.Text)
			}
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(d.Tree)
	return sb.String()
}
