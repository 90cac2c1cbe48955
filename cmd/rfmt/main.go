package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose int
	var logFile string

	rootCmd := &cobra.Command{
		Use:           "rfmt",
		Short:         "Lossless R parser and source tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbose, path)
		},
	}

	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "log more (repeat for debug output)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newRoundtripCmd())
	rootCmd.AddCommand(newDocCmd())
	rootCmd.AddCommand(newGrammarCmd())
	rootCmd.AddCommand(newLSPCmd())

	return rootCmd
}
