package parser

import "strings"

type TriviaKind int

const (
	// TriviaWhitespace is a run of spaces, tabs, form feeds or a byte order mark.
	TriviaWhitespace TriviaKind = iota
	// TriviaLineBreak is a line break that does not separate statements.
	TriviaLineBreak
	// TriviaComment is a "#" comment up to, not including, the end of the line.
	TriviaComment
	// TriviaDocComment is a roxygen "#'" comment.
	TriviaDocComment
)

var triviaKindNames = map[TriviaKind]string{
	TriviaWhitespace: "Whitespace",
	TriviaLineBreak:  "LineBreak",
	TriviaComment:    "Comment",
	TriviaDocComment: "DocComment",
}

func (k TriviaKind) String() string {
	if name, ok := triviaKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

type Trivia struct {
	Kind TriviaKind
	Span Span
	Text string
}

func (t Trivia) IsComment() bool {
	return t.Kind == TriviaComment || t.Kind == TriviaDocComment
}

// DocText returns the content of a doc comment with the "#'" marker and a
// single following space removed.
func (t Trivia) DocText() string {
	s := strings.TrimPrefix(t.Text, "#'")
	s = strings.TrimPrefix(s, " ")
	return strings.TrimRight(s, "\r")
}

func classifyComment(text string) TriviaKind {
	if strings.HasPrefix(text, "#'") {
		return TriviaDocComment
	}
	return TriviaComment
}

// DocBlock returns the doc comments that directly precede the end of the
// given leading trivia. A blank line or an ordinary comment between a doc
// comment and the end breaks the block.
func DocBlock(leading []Trivia) []Trivia {
	var block []Trivia
	breaks := 0
	for _, tr := range leading {
		switch tr.Kind {
		case TriviaDocComment:
			if breaks > 1 {
				block = nil
			}
			block = append(block, tr)
			breaks = 0
		case TriviaComment:
			block = nil
			breaks = 0
		case TriviaLineBreak:
			breaks++
		}
	}
	if breaks > 1 {
		return nil
	}
	return block
}
