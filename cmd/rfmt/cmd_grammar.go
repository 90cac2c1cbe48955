package main

import (
	"github.com/spf13/cobra"

	"github.com/dhamidi/rfmt/r/parser"
)

func newGrammarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grammar",
		Short: "Print the EBNF reference grammar of the recognized R syntax",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := cmd.OutOrStdout().Write(parser.ReferenceGrammar)
			return err
		},
	}
}
