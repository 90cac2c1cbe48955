package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// ConfigFile is the name of the configuration file looked up from the
// working directory towards the file system root.
const ConfigFile = ".rfmt.toml"

var ErrNoConfig = errors.New("no " + ConfigFile + " found")

type Config struct {
	Files FilesConfig `toml:"files"`
	Check CheckConfig `toml:"check"`
}

type FilesConfig struct {
	Include    []string `toml:"include"`
	Exclude    []string `toml:"exclude"`
	Extensions []string `toml:"extensions"`
	Encoding   string   `toml:"encoding"`
}

type CheckConfig struct {
	Jobs           int    `toml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Color          string `toml:"color"`
}

func DefaultConfig() Config {
	return Config{
		Files: FilesConfig{
			Include:    []string{"."},
			Exclude:    []string{".git", "renv", "packrat"},
			Extensions: []string{".R", ".r"},
			Encoding:   "UTF-8",
		},
		Check: CheckConfig{
			MaxDiagnostics: 200,
			Color:          "auto",
		},
	}
}

// Jobs returns the configured parallelism, defaulting to GOMAXPROCS.
func (c Config) Jobs() int {
	if c.Check.Jobs > 0 {
		return c.Check.Jobs
	}
	return runtime.GOMAXPROCS(0)
}

// Project is a directory tree of R sources with its configuration.
type Project struct {
	RootDir    string
	ConfigPath string // empty when running with defaults
	Config     Config
	Package    *Description // nil outside R packages
}

// Load finds the configuration for the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom finds the configuration for dir. Without a config file the
// project is rooted at dir and uses DefaultConfig.
func LoadFrom(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}

	proj := &Project{RootDir: abs, Config: DefaultConfig()}
	encodingSet := false

	path, err := FindConfig(abs)
	switch {
	case errors.Is(err, ErrNoConfig):
	case err != nil:
		return nil, err
	default:
		cfg, meta, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		proj.RootDir = filepath.Dir(path)
		proj.ConfigPath = path
		proj.Config = cfg
		encodingSet = meta.IsDefined("files", "encoding")
	}

	desc, err := ReadDescription(filepath.Join(proj.RootDir, "DESCRIPTION"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	proj.Package = desc
	if desc != nil && !encodingSet && desc.Encoding() != "" {
		proj.Config.Files.Encoding = desc.Encoding()
	}
	if _, err := Decoder(proj.Config.Files.Encoding); err != nil {
		return nil, err
	}
	return proj, nil
}

// FindConfig walks up from startDir looking for ConfigFile.
func FindConfig(startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ConfigFile)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfig
		}
		dir = parent
	}
}

// LoadConfig decodes a config file on top of DefaultConfig. Unknown keys
// and invalid values are errors.
func LoadConfig(path string) (Config, toml.MetaData, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, meta, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, meta, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if meta.IsDefined("check", "jobs") && cfg.Check.Jobs < 0 {
		return Config{}, meta, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if meta.IsDefined("check", "max_diagnostics") && cfg.Check.MaxDiagnostics < 0 {
		return Config{}, meta, fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	switch cfg.Check.Color {
	case "auto", "on", "off":
	default:
		return Config{}, meta, fmt.Errorf("%s: [check].color must be auto, on or off, got %q", path, cfg.Check.Color)
	}
	if _, err := Decoder(cfg.Files.Encoding); err != nil {
		return Config{}, meta, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, meta, nil
}

// Files returns the R sources below the include directories, sorted.
func (p *Project) Files() ([]string, error) {
	var roots []string
	for _, inc := range p.Config.Files.Include {
		roots = append(roots, filepath.Join(p.RootDir, filepath.FromSlash(inc)))
	}
	return p.Resolve(roots)
}

// Resolve expands paths given on the command line: files are kept as
// they are, directories are walked with the project's filters.
func (p *Project) Resolve(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && p.excluded(path) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && p.isSource(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan R files in %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (p *Project) isSource(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range p.Config.Files.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}

// excluded matches exclude entries against the base name and against the
// path relative to the project root.
func (p *Project) excluded(path string) bool {
	base := filepath.Base(path)
	rel, err := filepath.Rel(p.RootDir, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, ex := range p.Config.Files.Exclude {
		ex = strings.TrimSuffix(ex, "/")
		if base == ex || rel == ex || strings.HasPrefix(rel, ex+"/") {
			return true
		}
	}
	return false
}

// ReadSource reads a file and converts it to UTF-8 using the project's
// encoding.
func (p *Project) ReadSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	out, err := Transcode(data, p.Config.Files.Encoding)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

// Rel returns path relative to the project root for display.
func (p *Project) Rel(path string) string {
	rel, err := filepath.Rel(p.RootDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
