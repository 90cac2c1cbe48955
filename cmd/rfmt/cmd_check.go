package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/rfmt/driver"
	"github.com/dhamidi/rfmt/format"
	"github.com/dhamidi/rfmt/project"
	"github.com/dhamidi/rfmt/r/codebase"
)

type checkOptions struct {
	jobs     int
	color    string
	maxDiags int
	watch    bool
	interval time.Duration
}

func newCheckCmd() *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [paths...]",
		Short: "Report syntax errors in R files",
		Long: `Parse R files in parallel and report their diagnostics.

Without arguments the files of the project are checked, as configured by
the nearest .rfmt.toml. Directories are searched for R files. Exits with a
non-zero status if any file has errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.watch && len(args) > 0 {
				return fmt.Errorf("--watch checks the whole project and takes no paths")
			}
			proj, err := loadProject(".")
			if err != nil {
				return err
			}
			applyCheckFlags(cmd, proj, &opts)
			if opts.jobs < 0 {
				return fmt.Errorf("--jobs must not be negative")
			}

			useColor, err := colorEnabled(opts.color, isTerminalFile(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			printer := format.NewDiagnosticPrinter(cmd.OutOrStdout(), useColor)
			printer.SetLimit(opts.maxDiags)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			if opts.watch {
				return watch(ctx, proj, printer, opts.interval, cmd.ErrOrStderr())
			}

			files, err := sourceFiles(proj, args)
			if err != nil {
				return err
			}
			return check(ctx, proj, files, opts.driverOptions(proj), printer, cmd.ErrOrStderr())
		},
	}
	bindCheckFlags(cmd, &opts)

	return cmd
}

func bindCheckFlags(cmd *cobra.Command, opts *checkOptions) {
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 0, "number of files parsed in parallel (default from config)")
	cmd.Flags().StringVar(&opts.color, "color", "", "colorize output: auto, on or off (default from config)")
	cmd.Flags().IntVar(&opts.maxDiags, "max-diagnostics", 0, "stop printing after this many diagnostics (default from config)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "keep running and recheck files when they change")
	cmd.Flags().DurationVar(&opts.interval, "interval", time.Second, "poll interval for --watch")
}

// applyCheckFlags fills unset flags from the project configuration.
func applyCheckFlags(cmd *cobra.Command, proj *project.Project, opts *checkOptions) {
	if !cmd.Flags().Changed("jobs") {
		opts.jobs = proj.Config.Jobs()
	}
	if !cmd.Flags().Changed("color") {
		opts.color = proj.Config.Check.Color
	}
	if !cmd.Flags().Changed("max-diagnostics") {
		opts.maxDiags = proj.Config.Check.MaxDiagnostics
	}
}

func (o checkOptions) driverOptions(proj *project.Project) driver.Options {
	return driver.Options{
		Jobs: o.jobs,
		Read: proj.ReadSource,
		Name: proj.Rel,
	}
}

func check(ctx context.Context, proj *project.Project, files []string, opts driver.Options, printer *format.DiagnosticPrinter, stderr io.Writer) error {
	results, err := driver.ParseFiles(ctx, files, opts)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", proj.Rel(r.Path), r.Err)
			continue
		}
		if err := printer.Print(proj.Rel(r.Path), r.Source, r.Result.Diagnostics); err != nil {
			return err
		}
	}

	summary := driver.Summarize(results)
	if n := printer.Dropped(); n > 0 {
		fmt.Fprintf(stderr, "%d more diagnostics not shown\n", n)
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files have errors", summary.Failed, summary.Files)
	}
	return nil
}

func watch(ctx context.Context, proj *project.Project, printer *format.DiagnosticPrinter, interval time.Duration, stderr io.Writer) error {
	c := codebase.New(proj)
	c.OnUpdate(func(f *codebase.FileInfo) {
		if len(f.Result.Diagnostics) == 0 {
			fmt.Fprintf(stderr, "%s: ok\n", proj.Rel(f.Path))
			return
		}
		if err := printer.Print(proj.Rel(f.Path), f.Content, f.Result.Diagnostics); err != nil {
			fmt.Fprintf(stderr, "%s: %s\n", proj.Rel(f.Path), err)
		}
	})
	c.OnRemove(func(path string) {
		fmt.Fprintf(stderr, "%s: removed\n", proj.Rel(path))
	})

	w := codebase.NewFileWatcher(c, interval)
	w.Start()
	defer w.Stop()

	fmt.Fprintf(stderr, "watching %s\n", proj.RootDir)
	<-ctx.Done()
	return nil
}
