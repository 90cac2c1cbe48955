// Package codebase keeps the parsed R files of a project in memory and
// serves them to editors over LSP.
package codebase

import (
	"context"
	"sort"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/rfmt/driver"
	"github.com/dhamidi/rfmt/project"
	"github.com/dhamidi/rfmt/r/parser"
	"github.com/dhamidi/rfmt/r/roxygen"
)

var log = commonlog.GetLogger("rfmt.codebase")

type Codebase struct {
	mu       sync.RWMutex
	project  *project.Project
	files    map[string]*FileInfo
	onUpdate []func(*FileInfo)
	onRemove []func(string)
}

// FileInfo is the latest parse of one file. It is replaced, never
// mutated, when the file changes.
type FileInfo struct {
	Path        string
	Content     []byte
	Result      *parser.Result
	Definitions []roxygen.Definition
}

func New(proj *project.Project) *Codebase {
	return &Codebase{
		project: proj,
		files:   make(map[string]*FileInfo),
	}
}

func (c *Codebase) RootDir() string {
	return c.project.RootDir
}

func (c *Codebase) Project() *project.Project {
	return c.project
}

// OnUpdate registers fn to be called after a file was (re)parsed.
func (c *Codebase) OnUpdate(fn func(*FileInfo)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUpdate = append(c.onUpdate, fn)
}

// OnRemove registers fn to be called after a file was dropped.
func (c *Codebase) OnRemove(fn func(path string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onRemove = append(c.onRemove, fn)
}

// ScanAll parses every source file of the project.
func (c *Codebase) ScanAll(ctx context.Context) error {
	files, err := c.project.Files()
	if err != nil {
		return err
	}
	results, err := driver.ParseFiles(ctx, files, driver.Options{
		Jobs: c.project.Config.Jobs(),
		Read: c.project.ReadSource,
		Name: c.project.Rel,
	})
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		c.store(newFileInfo(r.Path, r.Source, r.Result))
	}
	log.Infof("scanned %d files in %s", len(results), c.project.RootDir)
	return nil
}

func (c *Codebase) ScanFile(path string) error {
	content, err := c.project.ReadSource(path)
	if err != nil {
		return err
	}
	c.UpdateFile(path, content)
	return nil
}

// UpdateFile reparses the whole content of path.
func (c *Codebase) UpdateFile(path string, content []byte) *FileInfo {
	res := parser.Parse(content, parser.WithFile(c.project.Rel(path)))
	info := newFileInfo(path, content, res)
	c.store(info)
	return info
}

func newFileInfo(path string, content []byte, res *parser.Result) *FileInfo {
	return &FileInfo{
		Path:        path,
		Content:     content,
		Result:      res,
		Definitions: roxygen.Definitions(res.Program),
	}
}

func (c *Codebase) store(info *FileInfo) {
	c.mu.Lock()
	c.files[info.Path] = info
	listeners := c.onUpdate
	c.mu.Unlock()

	log.Debugf("%s: %d diagnostics", info.Path, len(info.Result.Diagnostics))
	for _, fn := range listeners {
		fn(info)
	}
}

func (c *Codebase) RemoveFile(path string) {
	c.mu.Lock()
	_, ok := c.files[path]
	delete(c.files, path)
	listeners := c.onRemove
	c.mu.Unlock()

	if !ok {
		return
	}
	for _, fn := range listeners {
		fn(path)
	}
}

func (c *Codebase) GetFile(path string) *FileInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.files[path]
}

// Files returns the known files sorted by path.
func (c *Codebase) Files() []*FileInfo {
	c.mu.RLock()
	files := make([]*FileInfo, 0, len(c.files))
	for _, f := range c.files {
		files = append(files, f)
	}
	c.mu.RUnlock()

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files
}

type DefinitionRef struct {
	Path string
	roxygen.Definition
}

// FindDefinition returns the top-level functions named name across all
// files.
func (c *Codebase) FindDefinition(name string) []DefinitionRef {
	var refs []DefinitionRef
	for _, f := range c.Files() {
		for _, def := range f.Definitions {
			if def.Name == name {
				refs = append(refs, DefinitionRef{Path: f.Path, Definition: def})
			}
		}
	}
	return refs
}

// SymbolAt returns the innermost symbol leaf at a byte offset.
func (f *FileInfo) SymbolAt(offset int) *parser.Node {
	var found *parser.Node
	parser.Walk(f.Result.Program, func(n *parser.Node) bool {
		if offset < n.Span.Start.Offset || offset > n.Span.End.Offset {
			return false
		}
		if n.Kind == parser.KindSymbol {
			found = n
		}
		return true
	})
	return found
}
