package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/rfmt/r/parser"
)

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(result *parser.Result) error {
	text, err := e.MarshalText(result)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *ASTJSONEncoder) MarshalText(result *parser.Result) ([]byte, error) {
	doc := astJSONDocument{Tree: result.Program}
	for _, d := range result.Diagnostics {
		doc.Diagnostics = append(doc.Diagnostics, astJSONDiagnostic{
			Severity: d.Severity.String(),
			Code:     string(d.Code),
			Message:  d.Message,
			Start:    astJSONPosition{Line: d.Span.Start.Line, Column: d.Span.Start.Column},
			End:      astJSONPosition{Line: d.Span.End.Line, Column: d.Span.End.Column},
		})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// The tree itself is encoded by parser.Node.MarshalJSON.
type astJSONDocument struct {
	Tree        *parser.Node        `json:"tree"`
	Diagnostics []astJSONDiagnostic `json:"diagnostics,omitempty"`
}

type astJSONDiagnostic struct {
	Severity string          `json:"severity"`
	Code     string          `json:"code"`
	Message  string          `json:"message"`
	Start    astJSONPosition `json:"start"`
	End      astJSONPosition `json:"end"`
}

type astJSONPosition struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}
