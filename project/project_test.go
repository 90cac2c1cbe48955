package project

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindConfigWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), "")
	nested := filepath.Join(root, "R", "sub")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if got != filepath.Join(root, ConfigFile) {
		t.Errorf("FindConfig = %q, want %q", got, filepath.Join(root, ConfigFile))
	}
}

func TestLoadFromWithoutConfig(t *testing.T) {
	root := t.TempDir()
	proj, err := LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if proj.ConfigPath != "" {
		t.Skipf("found %s above the temporary directory", proj.ConfigPath)
	}
	if proj.RootDir != root {
		t.Errorf("RootDir = %q, want %q", proj.RootDir, root)
	}
	if !reflect.DeepEqual(proj.Config, DefaultConfig()) {
		t.Errorf("Config = %+v, want defaults", proj.Config)
	}
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
		check   func(t *testing.T, cfg Config)
	}{
		{
			name: "full",
			content: `
[files]
include = ["R", "tests"]
exclude = ["tests/fixtures"]
encoding = "latin1"

[check]
jobs = 3
max_diagnostics = 10
color = "off"
`,
			check: func(t *testing.T, cfg Config) {
				if !reflect.DeepEqual(cfg.Files.Include, []string{"R", "tests"}) {
					t.Errorf("Include = %v", cfg.Files.Include)
				}
				if cfg.Files.Encoding != "latin1" {
					t.Errorf("Encoding = %q", cfg.Files.Encoding)
				}
				if cfg.Jobs() != 3 || cfg.Check.MaxDiagnostics != 10 || cfg.Check.Color != "off" {
					t.Errorf("Check = %+v", cfg.Check)
				}
			},
		},
		{
			name:    "defaults kept for missing keys",
			content: "[check]\njobs = 2\n",
			check: func(t *testing.T, cfg Config) {
				if !reflect.DeepEqual(cfg.Files.Extensions, []string{".R", ".r"}) {
					t.Errorf("Extensions = %v", cfg.Files.Extensions)
				}
				if cfg.Check.Color != "auto" {
					t.Errorf("Color = %q", cfg.Check.Color)
				}
			},
		},
		{name: "syntax error", content: "[files\n", wantErr: "failed to parse TOML"},
		{name: "unknown key", content: "[check]\nfast = true\n", wantErr: "unknown key check.fast"},
		{name: "bad color", content: "[check]\ncolor = \"always\"\n", wantErr: "color must be"},
		{name: "negative jobs", content: "[check]\njobs = -1\n", wantErr: "jobs must not be negative"},
		{name: "bad encoding", content: "[files]\nencoding = \"ebcdic\"\n", wantErr: "unsupported encoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ConfigFile)
			writeFile(t, path, tt.content)

			cfg, _, err := LoadConfig(path)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("LoadConfig error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadConfig: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), "[files]\ninclude = [\"R\", \"tests\"]\nexclude = [\"tests/fixtures\", \"renv\"]\n")
	for _, name := range []string{
		"R/a.R",
		"R/b.r",
		"R/notes.md",
		"R/renv/skip.R",
		"tests/test-a.R",
		"tests/fixtures/broken.R",
		"inst/ignored.R",
	} {
		writeFile(t, filepath.Join(root, filepath.FromSlash(name)), "x\n")
	}

	proj, err := LoadFrom(filepath.Join(root, "R"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if proj.RootDir != root {
		t.Fatalf("RootDir = %q, want %q", proj.RootDir, root)
	}

	files, err := proj.Files()
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	var rel []string
	for _, f := range files {
		rel = append(rel, filepath.ToSlash(proj.Rel(f)))
	}
	want := []string{"R/a.R", "R/b.r", "tests/test-a.R"}
	if !reflect.DeepEqual(rel, want) {
		t.Errorf("Files = %v, want %v", rel, want)
	}
}

func TestResolveKeepsExplicitFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ConfigFile), "")
	script := filepath.Join(root, "script.txt")
	writeFile(t, script, "x\n")
	writeFile(t, filepath.Join(root, "dir", "a.R"), "x\n")

	proj, err := LoadFrom(root)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	files, err := proj.Resolve([]string{script, filepath.Join(root, "dir"), script})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{filepath.Join(root, "dir", "a.R"), script}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Resolve = %v, want %v", files, want)
	}

	if _, err := proj.Resolve([]string{filepath.Join(root, "missing.R")}); err == nil {
		t.Error("Resolve of a missing path should fail")
	}
}

func TestReadSourceEncoding(t *testing.T) {
	tests := []struct {
		name        string
		config      string
		description string
		want        string
	}{
		{name: "utf-8 default", want: "x <- \"\xe9\"\n"},
		{name: "from DESCRIPTION", description: "Package: demo\nEncoding: latin1\n", want: "x <- \"é\"\n"},
		{name: "config wins over DESCRIPTION", config: "[files]\nencoding = \"UTF-8\"\n", description: "Package: demo\nEncoding: latin1\n", want: "x <- \"\xe9\"\n"},
		{name: "windows-1252", config: "[files]\nencoding = \"cp1252\"\n", want: "x <- \"é\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeFile(t, filepath.Join(root, ConfigFile), tt.config)
			if tt.description != "" {
				writeFile(t, filepath.Join(root, "DESCRIPTION"), tt.description)
			}
			path := filepath.Join(root, "R", "a.R")
			writeFile(t, path, "x <- \"\xe9\"\n")

			proj, err := LoadFrom(root)
			if err != nil {
				t.Fatalf("LoadFrom: %v", err)
			}
			got, err := proj.ReadSource(path)
			if err != nil {
				t.Fatalf("ReadSource: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("ReadSource = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseDescription(t *testing.T) {
	desc, err := ParseDescription([]byte("Package: demo\nTitle: A Demo\nDescription: First line\n    second line.\r\nEncoding: UTF-8\n"))
	if err != nil {
		t.Fatalf("ParseDescription: %v", err)
	}
	if desc.Package() != "demo" {
		t.Errorf("Package = %q", desc.Package())
	}
	if desc.Encoding() != "UTF-8" {
		t.Errorf("Encoding = %q", desc.Encoding())
	}
	if got := desc.Fields["Description"]; got != "First line\nsecond line." {
		t.Errorf("Description = %q", got)
	}

	for _, bad := range []string{"  leading continuation\n", "no colon here\n"} {
		if _, err := ParseDescription([]byte(bad)); err == nil {
			t.Errorf("ParseDescription(%q) should fail", bad)
		}
	}
}
