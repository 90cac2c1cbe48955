package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/rfmt/format"
	"github.com/dhamidi/rfmt/r/parser"
)

func newRoundtripCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roundtrip [paths...]",
		Short: "Verify that parsing and reprinting R files is lossless",
		Long: `Parse each file, reprint the tree token by token and compare the output
with the input byte for byte. The reprint is parsed again and must yield
the same tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			proj, err := loadProject(".")
			if err != nil {
				return err
			}
			files, err := sourceFiles(proj, args)
			if err != nil {
				return err
			}

			failed := 0
			for _, path := range files {
				src, err := proj.ReadSource(path)
				if err != nil {
					return err
				}
				name := proj.Rel(path)
				if _, err := format.CheckRoundTrip(src, parser.WithFile(name)); err != nil {
					failed++
					var rt *format.RoundTripError
					if errors.As(err, &rt) {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: FAIL at byte %d: %s\n", name, rt.Offset, rt.Reason)
					} else {
						fmt.Fprintf(cmd.OutOrStdout(), "%s: FAIL: %s\n", name, err)
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", name)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files do not round-trip", failed, len(files))
			}
			return nil
		},
	}
	return cmd
}
