package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/rfmt/ebnflex"
	"github.com/dhamidi/rfmt/r/parser"
)

// lexicalProductions maps scanner token kinds to the reference grammar
// production that must match their literal exactly.
var lexicalProductions = map[parser.TokenKind]string{
	parser.TokenNumber:  "number",
	parser.TokenString:  "string",
	parser.TokenIdent:   "identifier",
	parser.TokenSpecial: "special",
}

var lexicalOrder = []string{"number", "string", "identifier", "special"}

func newEbnfLexcheckCmd() *cobra.Command {
	var grammarFile string

	cmd := &cobra.Command{
		Use:   "lexcheck <file.R>...",
		Short: "Cross-check the R scanner against the lexical productions of the reference grammar",
		Long: `Scan R files and classify every name, number, string and %op% literal
with the reference grammar. A literal is reported when the grammar assigns
it a different class or does not match all of it.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			grammar, err := loadReferenceGrammar(grammarFile)
			if err != nil {
				printErrors(err)
				return err
			}

			mismatches := 0
			for _, filename := range args {
				src, err := os.ReadFile(filename)
				if err != nil {
					return fmt.Errorf("read %s: %w", filename, err)
				}
				for _, m := range lexcheck(grammar, src, filename) {
					fmt.Fprintln(cmd.OutOrStdout(), m)
					mismatches++
				}
			}
			if mismatches > 0 {
				return fmt.Errorf("%d literals disagree with the reference grammar", mismatches)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&grammarFile, "grammar", "", "EBNF file to check against (default: the embedded reference grammar)")

	return cmd
}

func loadReferenceGrammar(filename string) (ebnf.Grammar, error) {
	if filename != "" {
		return ebnflex.LoadGrammar(filename)
	}
	return ebnf.Parse("r.ebnf", bytes.NewReader(parser.ReferenceGrammar))
}

type lexMismatch struct {
	pos  parser.Position
	want string
	got  ebnflex.Token
	lit  string
}

func (m lexMismatch) String() string {
	if m.got.Kind != m.want {
		return fmt.Sprintf("%s: %q scanned as %s, grammar says %s", m.pos, m.lit, m.want, m.got.Kind)
	}
	return fmt.Sprintf("%s: %q: %s matches only %q", m.pos, m.lit, m.want, m.got.Literal)
}

func lexcheck(grammar ebnf.Grammar, src []byte, filename string) []lexMismatch {
	var mismatches []lexMismatch
	lexer := parser.NewLexer(src, filename)
	for {
		tok := lexer.NextToken()
		if tok.Kind == parser.TokenEOF {
			return mismatches
		}
		want, ok := lexicalProductions[tok.Kind]
		if !ok {
			continue
		}
		got, _ := ebnflex.NewLexer(grammar, lexicalOrder, []byte(tok.Literal), "").NextToken()
		if got.Kind != want || got.Literal != tok.Literal {
			mismatches = append(mismatches, lexMismatch{pos: tok.Span.Start, want: want, got: got, lit: tok.Literal})
		}
	}
}
