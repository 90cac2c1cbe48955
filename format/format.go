// Package format renders parse results: JSON and msgpack tree dumps, an
// indented tree view, token listings, the identity reprint and
// human-readable diagnostics.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/rfmt/r/parser"
)

type Encoder interface {
	Encode(result *parser.Result) error
	MarshalText(result *parser.Result) ([]byte, error)
}

// Formats lists the names accepted by NewEncoder.
var Formats = []string{"json", "tree", "msgpack", "tokens"}

func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewASTJSONEncoder(w), nil
	case "tree":
		return NewTreeEncoder(w), nil
	case "msgpack":
		return NewMsgpackEncoder(w), nil
	case "tokens":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q", name)
}
