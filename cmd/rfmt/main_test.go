package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files[".rfmt.toml"] = "[check]\ncolor = \"off\"\n"
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Chdir(root)
	return root
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"tree", "x <- 1\n", []string{"parse"}, "Program\n  Assignment\n"},
		{"positions", "x", []string{"parse", "--positions"}, "Symbol [<stdin>:1:1-<stdin>:1:2] x"},
		{"json", "x", []string{"parse", "-f", "json"}, `"tree":`},
		{"expression", "1 + 2", []string{"parse", "-e", "-"}, "Binary"},
		{"tokens", "f(x)", []string{"tokens"}, "1:1\tIdent\t\"f\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, tt.stdin, tt.args...)
			if err != nil {
				t.Fatalf("%v: %v", tt.args, err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output %q does not contain %q", out, tt.want)
			}
		})
	}
}

func TestParseCommandReportsDiagnostics(t *testing.T) {
	out, errOut, err := run(t, "f(\n", "parse")
	if err != nil {
		t.Fatalf("parse should not fail on syntax errors: %v", err)
	}
	if !strings.Contains(out, "Program") {
		t.Errorf("tree missing: %q", out)
	}
	if !strings.Contains(errOut, "<stdin>:") || !strings.Contains(errOut, "error[") {
		t.Errorf("diagnostics = %q", errOut)
	}
}

func TestParseCommandUnknownFormat(t *testing.T) {
	if _, _, err := run(t, "x", "parse", "-f", "yaml"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestCheckCommand(t *testing.T) {
	setupProject(t, map[string]string{
		"R/good.R": "add <- function(x, y) x + y\n",
		"R/bad.R":  "f <- function(x {\n  x\n}\n",
	})

	out, _, err := run(t, "", "check")
	if err == nil || !strings.Contains(err.Error(), "1 of 2 files have errors") {
		t.Fatalf("check error = %v", err)
	}
	if !strings.Contains(out, filepath.Join("R", "bad.R")+":1:") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("color should be off")
	}

	if _, _, err := run(t, "", "check", filepath.Join("R", "good.R")); err != nil {
		t.Errorf("check good.R: %v", err)
	}
}

func TestCheckJobs(t *testing.T) {
	root := setupProject(t, map[string]string{
		"R/good.R": "add <- function(x, y) x + y\n",
	})
	config := "[check]\ncolor = \"off\"\njobs = 3\n"
	if err := os.WriteFile(filepath.Join(root, ".rfmt.toml"), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	proj, err := loadProject(".")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"from config", nil, 3},
		{"short flag", []string{"-j", "1"}, 1},
		{"long flag", []string{"--jobs", "8"}, 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			var opts checkOptions
			bindCheckFlags(cmd, &opts)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			applyCheckFlags(cmd, proj, &opts)
			if got := opts.driverOptions(proj).Jobs; got != tt.want {
				t.Errorf("driver jobs = %d, want %d", got, tt.want)
			}
		})
	}

	if _, _, err := run(t, "", "check", "-j", "1"); err != nil {
		t.Errorf("check -j 1: %v", err)
	}
	if _, _, err := run(t, "", "check", "--jobs=-1"); err == nil || !strings.Contains(err.Error(), "negative") {
		t.Errorf("check --jobs=-1 error = %v", err)
	}
}

func TestCheckWatchRejectsPaths(t *testing.T) {
	setupProject(t, map[string]string{
		"R/good.R": "x <- 1\n",
	})
	_, _, err := run(t, "", "check", "--watch", "R")
	if err == nil || !strings.Contains(err.Error(), "takes no paths") {
		t.Errorf("check --watch R error = %v", err)
	}
}

func TestRoundtripCommand(t *testing.T) {
	setupProject(t, map[string]string{
		"a.R": "# comment\nx <- c(1,  2) # trailing\n\n\nif (x) y else z\n",
		"b.R": "broken <- (\n",
	})

	out, _, err := run(t, "", "roundtrip")
	if err != nil {
		t.Fatalf("roundtrip: %v\n%s", err, out)
	}
	if !strings.Contains(out, "a.R: ok") || !strings.Contains(out, "b.R: ok") {
		t.Errorf("output = %q", out)
	}
}

func TestDocCommand(t *testing.T) {
	root := setupProject(t, map[string]string{
		"R/add.R": "#' Add two numbers\n#' @param x,y numbers\nadd <- function(x, y) x + y\n\nhelper <- function() NULL\n",
	})
	file := filepath.Join(root, "R", "add.R")

	out, _, err := run(t, "", "doc", "--short", file)
	if err != nil {
		t.Fatal(err)
	}
	if out != "add\tAdd two numbers\n" {
		t.Errorf("short = %q", out)
	}

	out, _, err = run(t, "", "doc", "--all", "--short", file)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "helper\t\n") {
		t.Errorf("all = %q", out)
	}

	out, _, err = run(t, "", "doc", file, "add")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "add(x, y)\n\n    Add two numbers") {
		t.Errorf("doc = %q", out)
	}

	if _, _, err := run(t, "", "doc", file, "missing"); err == nil {
		t.Error("unknown function should fail")
	}
}

func TestGrammarCommand(t *testing.T) {
	out, _, err := run(t, "", "grammar")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Program") {
		t.Errorf("grammar output = %q", out)
	}
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	tests := []struct {
		mode    string
		tty     bool
		want    bool
		wantErr bool
	}{
		{"on", false, true, false},
		{"off", true, false, false},
		{"auto", true, true, false},
		{"auto", false, false, false},
		{"", true, true, false},
		{"sometimes", true, false, true},
	}
	for _, tt := range tests {
		got, err := colorEnabled(tt.mode, tt.tty)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("colorEnabled(%q, %v) = %v, %v", tt.mode, tt.tty, got, err)
		}
	}

	t.Setenv("NO_COLOR", "1")
	if got, _ := colorEnabled("auto", true); got {
		t.Error("NO_COLOR should disable auto color")
	}
}
