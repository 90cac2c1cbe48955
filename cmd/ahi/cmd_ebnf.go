package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"unicode"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/rfmt/r/parser"
)

func newEbnfCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ebnf",
		Short:         "EBNF grammar tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newEbnfCheckCmd())
	cmd.AddCommand(newEbnfLexcheckCmd())

	return cmd
}

func newEbnfCheckCmd() *cobra.Command {
	var startProduction string
	var checkRules bool

	cmd := &cobra.Command{
		Use:   "check [file]",
		Short: "Parse and verify an EBNF grammar file",
		Long: `Parse and verify an EBNF grammar. Without a file the reference grammar
embedded in the R parser is checked.

With --rules, every upper-case production must also be a rule of the
parser's rule table and the other way around.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := "r.ebnf"
			var src io.Reader = bytes.NewReader(parser.ReferenceGrammar)
			if len(args) == 1 {
				filename = args[0]
				f, err := os.Open(filename)
				if err != nil {
					return fmt.Errorf("open file: %w", err)
				}
				defer f.Close()
				src = f
			}

			grammar, err := ebnf.Parse(filename, src)
			if err != nil {
				printErrors(err)
				return err
			}

			if startProduction != "" {
				if err := ebnf.Verify(grammar, startProduction); err != nil {
					printErrors(err)
					return err
				}
			}

			if checkRules {
				problems := compareRules(grammar, parser.RGrammar())
				for _, p := range problems {
					fmt.Println(p)
				}
				if len(problems) > 0 {
					return fmt.Errorf("%s: %d productions disagree with the rule table", filename, len(problems))
				}
			}

			fmt.Printf("%s: %d productions ok\n", filename, len(grammar))
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "Program", "start production for verification (if empty, only checks syntax)")
	cmd.Flags().BoolVar(&checkRules, "rules", false, "compare upper-case productions with the parser's rule table")

	return cmd
}

// compareRules lists upper-case productions without a rule and rules
// without a production.
func compareRules(grammar ebnf.Grammar, g *parser.Grammar) []string {
	var problems []string
	rules := make(map[string]bool)
	for _, name := range g.Names() {
		rules[name] = true
		if _, ok := grammar[name]; !ok && isStructural(name) {
			problems = append(problems, fmt.Sprintf("rule %s has no production", name))
		}
	}
	for name := range grammar {
		if unicode.IsUpper(rune(name[0])) && !rules[name] {
			problems = append(problems, fmt.Sprintf("production %s has no rule", name))
		}
	}
	sort.Strings(problems)
	return problems
}

// Helper rules that exist only to drive the parser have no production.
func isStructural(rule string) bool {
	return rule != "ArgEnd"
}

func printErrors(err error) {
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Println(v.Index(i).Interface())
		}
	} else {
		fmt.Println(err)
	}
}
