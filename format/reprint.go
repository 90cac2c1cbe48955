package format

import (
	"bytes"
	"fmt"
	"io"

	"github.com/dhamidi/rfmt/r/parser"
)

// Reprint writes the tokens of n with their trivia in source order. For a
// Program this is the identity emitter: the output equals the input.
func Reprint(w io.Writer, n *parser.Node) error {
	_, err := n.WriteTo(w)
	return err
}

func ReprintString(n *parser.Node) string {
	return n.Text()
}

// RoundTripError describes where a reprint first differs from its input.
type RoundTripError struct {
	Offset int
	Want   string
	Got    string
	Reason string
}

func (e *RoundTripError) Error() string {
	return fmt.Sprintf("%s at offset %d: want %q, got %q", e.Reason, e.Offset, e.Want, e.Got)
}

// CheckRoundTrip parses src, verifies that the reprint reproduces it byte
// for byte and that parsing the reprint yields the same tree.
func CheckRoundTrip(src []byte, opts ...parser.Option) (*parser.Result, error) {
	result := parser.Parse(src, opts...)

	var out bytes.Buffer
	if err := Reprint(&out, result.Program); err != nil {
		return result, fmt.Errorf("reprint: %w", err)
	}
	if !bytes.Equal(out.Bytes(), src) {
		return result, mismatch("reprint differs from input", src, out.Bytes())
	}

	again := parser.Parse(out.Bytes(), opts...)
	first, second := result.Program.StringWithPositions(), again.Program.StringWithPositions()
	if first != second {
		return result, mismatch("reparse produced a different tree", []byte(first), []byte(second))
	}
	if len(result.Diagnostics) != len(again.Diagnostics) {
		return result, fmt.Errorf("reparse produced %d diagnostics, want %d", len(again.Diagnostics), len(result.Diagnostics))
	}
	return result, nil
}

func mismatch(reason string, want, got []byte) error {
	i := 0
	for i < len(want) && i < len(got) && want[i] == got[i] {
		i++
	}
	return &RoundTripError{Offset: i, Want: excerpt(want, i), Got: excerpt(got, i), Reason: reason}
}

func excerpt(b []byte, at int) string {
	end := at + 20
	if end > len(b) {
		end = len(b)
	}
	return string(b[at:end])
}
