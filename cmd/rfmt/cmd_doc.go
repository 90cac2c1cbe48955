package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/rfmt/r/codebase"
	"github.com/dhamidi/rfmt/r/parser"
	"github.com/dhamidi/rfmt/r/roxygen"
	"github.com/dhamidi/rfmt/ui"
)

func newDocCmd() *cobra.Command {
	var all bool
	var short bool
	var serve string

	cmd := &cobra.Command{
		Use:   "doc [file] [name]",
		Short: "Show roxygen documentation of top-level functions",
		Long: `Print the roxygen blocks attached to the function definitions of an R file.

With a name, only that function is shown. --all also lists functions
without documentation; --short prints one line per function.

With --serve, the documentation of the whole project is served as HTML.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if serve != "" {
				return serveDocs(cmd, serve)
			}
			var name string
			if len(args) == 2 {
				name = args[1]
				args = args[:1]
			}
			file, src, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			result := parser.Parse(src, parser.WithFile(file))
			defs := roxygen.Definitions(result.Program)

			out := cmd.OutOrStdout()
			shown := 0
			for _, def := range defs {
				if name != "" && def.Name != name {
					continue
				}
				if def.Block == nil && !all && name == "" {
					continue
				}
				if short {
					fmt.Fprintf(out, "%s\t%s\n", def.Name, roxygen.Summary(def.Block))
					shown++
					continue
				}
				if shown > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s(%s)\n", def.Name, strings.Join(formalNames(def.Function), ", "))
				if doc := roxygen.Format(def.Block); doc != "" {
					fmt.Fprintf(out, "\n%s\n", indent(doc, "    "))
				}
				shown++
			}

			if name != "" && shown == 0 {
				return fmt.Errorf("%s: no function named %q", file, name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "include undocumented functions")
	cmd.Flags().BoolVarP(&short, "short", "s", false, "one line per function")
	cmd.Flags().StringVar(&serve, "serve", "", "serve project documentation over HTTP on this address, e.g. :8080")

	return cmd
}

func serveDocs(cmd *cobra.Command, addr string) error {
	proj, err := loadProject(".")
	if err != nil {
		return err
	}
	c := codebase.New(proj)
	if err := c.ScanAll(cmd.Context()); err != nil {
		return fmt.Errorf("scan %s: %w", proj.RootDir, err)
	}
	w := codebase.NewFileWatcher(c, time.Second)
	w.Start()
	defer w.Stop()

	server, err := ui.NewServer(c)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}
	displayAddr := addr
	if strings.HasPrefix(addr, ":") {
		displayAddr = "localhost" + addr
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Serving documentation at http://%s\n", displayAddr)
	return http.ListenAndServe(addr, server)
}

func formalNames(fn *parser.Node) []string {
	var names []string
	for _, f := range fn.Formals() {
		if n := f.Name(); n != nil {
			names = append(names, n.TokenLiteral())
		}
	}
	return names
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, "\n")
}
