package codebase

import (
	"bytes"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/dhamidi/rfmt/r/parser"
)

// toProtocol converts a byte offset into content to an LSP position,
// whose character counts UTF-16 code units.
func toProtocol(content []byte, offset int) protocol.Position {
	offset = max(0, min(offset, len(content)))
	line := bytes.Count(content[:offset], []byte{'\n'})
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1

	units := 0
	for rest := content[lineStart:offset]; len(rest) > 0; {
		r, size := utf8.DecodeRune(rest)
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		units += n
		rest = rest[size:]
	}

	l, err := safecast.Conv[uint32](line)
	if err != nil {
		l = 0
	}
	ch, err := safecast.Conv[uint32](units)
	if err != nil {
		ch = 0
	}
	return protocol.Position{Line: l, Character: ch}
}

func toProtocolRange(content []byte, span parser.Span) protocol.Range {
	return protocol.Range{
		Start: toProtocol(content, span.Start.Offset),
		End:   toProtocol(content, span.End.Offset),
	}
}

// fromProtocol converts an LSP position to a byte offset into content.
// Positions past the end of a line clamp to the line end.
func fromProtocol(content []byte, pos protocol.Position) int {
	offset := 0
	for line := uint32(0); line < pos.Line; line++ {
		i := bytes.IndexByte(content[offset:], '\n')
		if i < 0 {
			return len(content)
		}
		offset += i + 1
	}

	units := uint32(0)
	for offset < len(content) && content[offset] != '\n' && units < pos.Character {
		r, size := utf8.DecodeRune(content[offset:])
		n := utf16.RuneLen(r)
		if n < 0 {
			n = 1
		}
		c, err := safecast.Conv[uint32](n)
		if err != nil {
			break
		}
		units += c
		offset += size
	}
	return offset
}
