// Package ui serves the roxygen documentation of an R codebase as HTML.
package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sort"
	"strings"

	"github.com/dhamidi/rfmt/r/codebase"
	"github.com/dhamidi/rfmt/r/roxygen"
)

//go:embed static templates
var embeddedFS embed.FS

const maxResults = 50

type Server struct {
	codebase  *codebase.Codebase
	templates *template.Template
	mux       *http.ServeMux
}

func NewServer(c *codebase.Codebase) (*Server, error) {
	funcMap := template.FuncMap{
		"summary": roxygen.Summary,
		"formatDoc": func(b *roxygen.Block) template.HTML {
			doc := roxygen.Format(b)
			if doc == "" {
				return ""
			}
			var paras []string
			for _, p := range strings.Split(doc, "\n\n") {
				paras = append(paras, "<p>"+strings.ReplaceAll(template.HTMLEscapeString(p), "\n", "<br>")+"</p>")
			}
			return template.HTML(strings.Join(paras, "\n"))
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(mustSub(embeddedFS, "templates"), "*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		codebase:  c,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(mustSub(embeddedFS, "static")))))
	s.mux.HandleFunc("GET /f/{name}", s.handleFunction)
	s.mux.HandleFunc("GET /sidebar", s.handleSidebar)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}

// Entry is one documented definition as listed in the sidebar.
type Entry struct {
	Name    string
	File    string
	Summary string
	Line    int
}

// entries lists the documented definitions of the codebase sorted by
// name, keeping only those whose name contains query.
func (s *Server) entries(query string) []Entry {
	query = strings.ToLower(query)
	var out []Entry
	for _, f := range s.codebase.Files() {
		for _, def := range f.Definitions {
			if def.Block == nil {
				continue
			}
			if query != "" && !strings.Contains(strings.ToLower(def.Name), query) {
				continue
			}
			out = append(out, Entry{
				Name:    def.Name,
				File:    s.codebase.Project().Rel(f.Path),
				Summary: roxygen.Summary(def.Block),
				Line:    def.Statement.Span.Start.Line,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type listData struct {
	Entries      []Entry
	Active       string
	Query        string
	TotalMatches int
	HasMore      bool
}

func (s *Server) list(query, active string) listData {
	all := s.entries(query)
	data := listData{
		Entries:      all,
		Active:       active,
		Query:        query,
		TotalMatches: len(all),
		HasMore:      len(all) > maxResults,
	}
	if data.HasMore {
		data.Entries = all[:maxResults]
	}
	return data
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", struct {
		Root string
		List listData
	}{
		Root: s.codebase.RootDir(),
		List: s.list("", ""),
	})
}

func (s *Server) handleSidebar(w http.ResponseWriter, r *http.Request) {
	s.render(w, "_sidebar.html", s.list(r.URL.Query().Get("q"), r.URL.Query().Get("active")))
}

type FunctionViewData struct {
	List    listData
	Name    string
	Params  []string
	Entries []FunctionDoc
}

// FunctionDoc is one definition of a name; a name may be defined in
// more than one file.
type FunctionDoc struct {
	File   string
	Line   int
	Block  *roxygen.Block
	Source string
}

func (s *Server) handleFunction(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	refs := s.codebase.FindDefinition(name)
	if len(refs) == 0 {
		http.Error(w, "function not found", http.StatusNotFound)
		return
	}

	data := FunctionViewData{List: s.list("", name), Name: name}
	for _, f := range refs[0].Function.Formals() {
		if n := f.Name(); n != nil {
			data.Params = append(data.Params, n.TokenLiteral())
		}
	}
	for _, ref := range refs {
		data.Entries = append(data.Entries, FunctionDoc{
			File:   s.codebase.Project().Rel(ref.Path),
			Line:   ref.Statement.Span.Start.Line,
			Block:  ref.Block,
			Source: ref.Statement.Text(),
		})
	}

	if r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(functionJSON(data))
		return
	}
	s.render(w, "function.html", data)
}

type functionDocJSON struct {
	Name    string   `json:"name"`
	Params  []string `json:"params"`
	File    string   `json:"file"`
	Line    int      `json:"line"`
	Title   string   `json:"title,omitempty"`
	Doc     string   `json:"doc,omitempty"`
	Exports bool     `json:"exported"`
}

func functionJSON(data FunctionViewData) []functionDocJSON {
	var out []functionDocJSON
	for _, e := range data.Entries {
		out = append(out, functionDocJSON{
			Name:    data.Name,
			Params:  data.Params,
			File:    e.File,
			Line:    e.Line,
			Title:   roxygen.Summary(e.Block),
			Doc:     roxygen.Format(e.Block),
			Exports: e.Block != nil && e.Block.Exported(),
		})
	}
	return out
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
