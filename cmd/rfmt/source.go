package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dhamidi/rfmt/project"
)

// readSource reads a file argument, or stdin for "-" or no argument. Files
// are decoded with the encoding of the project they belong to.
func readSource(stdin io.Reader, args []string) (name string, src []byte, err error) {
	if len(args) == 0 || args[0] == "-" {
		src, err = io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", src, nil
	}

	name = args[0]
	proj, err := project.LoadFrom(filepath.Dir(name))
	if err != nil {
		return "", nil, fmt.Errorf("load project: %w", err)
	}
	src, err = proj.ReadSource(name)
	if err != nil {
		return "", nil, err
	}
	return name, src, nil
}

func loadProject(dir string) (*project.Project, error) {
	proj, err := project.LoadFrom(dir)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	return proj, nil
}

// sourceFiles resolves command line paths, falling back to the files of
// the project.
func sourceFiles(proj *project.Project, args []string) ([]string, error) {
	if len(args) == 0 {
		return proj.Files()
	}
	return proj.Resolve(args)
}

func isTerminalFile(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}
