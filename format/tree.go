package format

import (
	"io"

	"github.com/dhamidi/rfmt/r/parser"
)

// TreeEncoder prints the indented kind/token view of parser.Node.String.
type TreeEncoder struct {
	w         io.Writer
	positions bool
}

func NewTreeEncoder(w io.Writer) *TreeEncoder {
	return &TreeEncoder{w: w}
}

// WithPositions adds the span of every node to the output.
func (e *TreeEncoder) WithPositions() *TreeEncoder {
	e.positions = true
	return e
}

func (e *TreeEncoder) Encode(result *parser.Result) error {
	text, err := e.MarshalText(result)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TreeEncoder) MarshalText(result *parser.Result) ([]byte, error) {
	if e.positions {
		return []byte(result.Program.StringWithPositions()), nil
	}
	return []byte(result.Program.String()), nil
}
