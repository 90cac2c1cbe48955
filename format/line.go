package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/rfmt/r/parser"
)

// LineEncoder lists the tokens of a tree one per line:
//
//	line:col<TAB>kind<TAB>"literal"<TAB>leading trivia kinds
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(result *parser.Result) error {
	text, err := e.MarshalText(result)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(result *parser.Result) ([]byte, error) {
	var sb strings.Builder
	for _, tok := range result.Program.Tokens() {
		fmt.Fprintf(&sb, "%d:%d\t%s\t%q", tok.Span.Start.Line, tok.Span.Start.Column, tok.Kind, tok.Literal)
		if s := triviaKinds(tok.Leading); s != "" {
			fmt.Fprintf(&sb, "\tleading=%s", s)
		}
		if s := triviaKinds(tok.Trailing); s != "" {
			fmt.Fprintf(&sb, "\ttrailing=%s", s)
		}
		sb.WriteString("\n")
	}
	return []byte(sb.String()), nil
}

func triviaKinds(trivia []parser.Trivia) string {
	kinds := make([]string, len(trivia))
	for i, tr := range trivia {
		kinds[i] = tr.Kind.String()
	}
	return strings.Join(kinds, ",")
}
