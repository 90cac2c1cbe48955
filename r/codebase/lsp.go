package codebase

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/rfmt/project"
	"github.com/dhamidi/rfmt/r/parser"
	"github.com/dhamidi/rfmt/r/roxygen"
)

const lsName = "rfmt"

var lspLog = commonlog.GetLogger("rfmt.lsp")

// LSPServer reparses whole documents on every change and reports syntax
// errors, outlines and roxygen documentation.
type LSPServer struct {
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string

	mu     sync.Mutex
	open   map[string]protocol.DocumentUri
	notify glsp.NotifyFunc
}

func NewLSPServer(version string) *LSPServer {
	ls := &LSPServer{
		version: version,
		open:    make(map[string]protocol.DocumentUri),
	}

	ls.handler = protocol.Handler{
		Initialize:                 ls.initialize,
		Initialized:                ls.initialized,
		Shutdown:                   ls.shutdown,
		SetTrace:                   ls.setTrace,
		TextDocumentDidOpen:        ls.textDocumentDidOpen,
		TextDocumentDidChange:      ls.textDocumentDidChange,
		TextDocumentDidClose:       ls.textDocumentDidClose,
		TextDocumentDidSave:        ls.textDocumentDidSave,
		TextDocumentDocumentSymbol: ls.textDocumentDocumentSymbol,
		TextDocumentHover:          ls.textDocumentHover,
		TextDocumentDefinition:     ls.textDocumentDefinition,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	proj, err := project.LoadFrom(rootDir)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	ls.attach(New(proj), ctx.Notify)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// attach wires a codebase so that every reparse of an open document is
// published to the client.
func (ls *LSPServer) attach(c *Codebase, notify glsp.NotifyFunc) {
	ls.codebase = c
	ls.notify = notify
	c.OnUpdate(func(f *FileInfo) {
		ls.mu.Lock()
		uri, ok := ls.open[f.Path]
		ls.mu.Unlock()
		if ok {
			ls.publish(uri, f.Content, f.Result.Diagnostics)
		}
	})
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	go func() {
		if err := ls.codebase.ScanAll(context.Background()); err != nil {
			lspLog.Errorf("scan %s: %s", ls.codebase.RootDir(), err)
		}
	}()
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.mu.Lock()
	ls.open[path] = params.TextDocument.URI
	ls.mu.Unlock()

	ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text))
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.codebase.UpdateFile(path, []byte(textChange.Text))
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.mu.Lock()
	delete(ls.open, path)
	ls.mu.Unlock()

	ls.publish(params.TextDocument.URI, nil, nil)
	if err := ls.codebase.ScanFile(path); err != nil {
		ls.codebase.RemoveFile(path)
	}
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.codebase.UpdateFile(path, []byte(*params.Text))
	} else if err := ls.codebase.ScanFile(path); err != nil {
		lspLog.Warningf("%s: %s", path, err)
	}
	return nil
}

func (ls *LSPServer) publish(uri protocol.DocumentUri, content []byte, diags []parser.Diagnostic) {
	if ls.notify == nil {
		return
	}
	ls.notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(content, diags),
	})
}

func toProtocolDiagnostics(content []byte, diags []parser.Diagnostic) []protocol.Diagnostic {
	out := []protocol.Diagnostic{}
	source := lsName
	for _, d := range diags {
		severity := toProtocolSeverity(d.Severity)
		out = append(out, protocol.Diagnostic{
			Range:    toProtocolRange(content, d.Span),
			Severity: &severity,
			Code:     &protocol.IntegerOrString{Value: string(d.Code)},
			Source:   &source,
			Message:  d.Message,
		})
	}
	return out
}

func toProtocolSeverity(s parser.Severity) protocol.DiagnosticSeverity {
	switch s {
	case parser.SevError:
		return protocol.DiagnosticSeverityError
	case parser.SevWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityInformation
	}
}

func (ls *LSPServer) textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}
	return documentSymbols(file), nil
}

func documentSymbols(file *FileInfo) []protocol.DocumentSymbol {
	symbols := []protocol.DocumentSymbol{}
	for _, def := range file.Definitions {
		sym := protocol.DocumentSymbol{
			Name:           def.Name,
			Kind:           protocol.SymbolKindFunction,
			Range:          toProtocolRange(file.Content, def.Statement.Span),
			SelectionRange: toProtocolRange(file.Content, nameNode(def).Span),
		}
		if def.Block != nil {
			detail := roxygen.Summary(def.Block)
			sym.Detail = &detail
		}
		symbols = append(symbols, sym)
	}
	return symbols
}

// nameNode returns the binding target of a definition, which is on the
// right for -> and ->>.
func nameNode(def roxygen.Definition) *parser.Node {
	if def.Statement.Left() == def.Function {
		return def.Statement.Right()
	}
	return def.Statement.Left()
}

func (ls *LSPServer) symbolAt(uri protocol.DocumentUri, pos protocol.Position) (*FileInfo, *parser.Node) {
	path, err := uriToPath(uri)
	if err != nil {
		return nil, nil
	}
	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}
	return file, file.SymbolAt(fromProtocol(file.Content, pos))
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	file, sym := ls.symbolAt(params.TextDocument.URI, params.Position)
	if sym == nil {
		return nil, nil
	}
	for _, ref := range ls.codebase.FindDefinition(sym.TokenLiteral()) {
		if ref.Block == nil {
			continue
		}
		r := toProtocolRange(file.Content, sym.Span)
		return &protocol.Hover{
			Contents: protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: hoverText(ref.Definition),
			},
			Range: &r,
		}, nil
	}
	return nil, nil
}

func hoverText(def roxygen.Definition) string {
	var formals []string
	for _, f := range def.Function.Formals() {
		if name := f.Name(); name != nil {
			formals = append(formals, name.TokenLiteral())
		}
	}
	var b strings.Builder
	fmt.Fprintf(&b, "```r\n%s(%s)\n```\n\n", def.Name, strings.Join(formals, ", "))
	b.WriteString(roxygen.Format(def.Block))
	return b.String()
}

func (ls *LSPServer) textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	_, sym := ls.symbolAt(params.TextDocument.URI, params.Position)
	if sym == nil {
		return nil, nil
	}
	var locations []protocol.Location
	for _, ref := range ls.codebase.FindDefinition(sym.TokenLiteral()) {
		file := ls.codebase.GetFile(ref.Path)
		if file == nil {
			continue
		}
		locations = append(locations, protocol.Location{
			URI:   pathToURI(ref.Path),
			Range: toProtocolRange(file.Content, nameNode(ref.Definition).Span),
		})
	}
	if len(locations) == 0 {
		return nil, nil
	}
	return locations, nil
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return protocol.DocumentUri(u.String())
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
