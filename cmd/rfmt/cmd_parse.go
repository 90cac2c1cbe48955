package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/rfmt/format"
	"github.com/dhamidi/rfmt/r/parser"
)

func newParseCmd() *cobra.Command {
	var outputFormat string
	var includePositions bool
	var expression bool
	var startLine int

	cmd := &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse an R file and dump the syntax tree",
		Long: `Parse an R file and dump its concrete syntax tree.

Reads from stdin when no file (or "-") is given. Diagnostics go to stderr;
the tree is printed even when the input has syntax errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			var encoder format.Encoder
			if outputFormat == "tree" && includePositions {
				encoder = format.NewTreeEncoder(cmd.OutOrStdout()).WithPositions()
			} else {
				encoder, err = format.NewEncoder(outputFormat, cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}

			opts := []parser.Option{parser.WithFile(name), parser.WithStartLine(startLine)}
			var result *parser.Result
			if expression {
				result, err = parser.ParseExpression(bytes.NewReader(src), opts...).Finish()
			} else {
				result, err = parser.ParseProgram(bytes.NewReader(src), opts...).Finish()
			}
			if err != nil {
				return fmt.Errorf("parse %s: %w", name, err)
			}

			if err := encoder.Encode(result); err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			printer := format.NewDiagnosticPrinter(cmd.ErrOrStderr(), isTerminalFile(cmd.ErrOrStderr()))
			return printer.Print(name, src, result.Diagnostics)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "tree", "output format ("+strings.Join(format.Formats, ", ")+")")
	cmd.Flags().BoolVar(&includePositions, "positions", false, "include spans in tree output")
	cmd.Flags().BoolVarP(&expression, "expression", "e", false, "parse a single expression instead of a program")
	cmd.Flags().IntVar(&startLine, "start-line", 1, "line number of the first line of input")

	return cmd
}

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens [file]",
		Short: "List the tokens of an R file with their trivia",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			result := parser.Parse(src, parser.WithFile(name))
			if err := format.NewLineEncoder(cmd.OutOrStdout()).Encode(result); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}
}
