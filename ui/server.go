// Package ui serves a small web front end: paste a hex dump, get its trace.
package ui

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"slices"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/serialdump/catalog"
	"github.com/dhamidi/serialdump/format"
	"github.com/dhamidi/serialdump/stream"
	"github.com/dhamidi/serialdump/trace"
)

//go:embed static templates
var embeddedFS embed.FS

var log = commonlog.GetLogger("serialdump.ui")

// maxUpload bounds posted stream files.
const maxUpload = 32 << 20

type Server struct {
	catalog    *catalog.Catalog
	mux        *http.ServeMux
	templateFS fs.FS
	funcMap    template.FuncMap
}

// NewServer builds the handler. The class listing is served only when cat
// is not nil.
func NewServer(cat *catalog.Catalog) (*Server, error) {
	staticFS := overlayFS("ui/static", mustSub(embeddedFS, "static"))
	templateFS := overlayFS("ui/templates", mustSub(embeddedFS, "templates"))

	funcMap := template.FuncMap{
		"flags": func(f stream.ClassDescFlags) string {
			return strings.Join(f.Names(), " | ")
		},
		"typeCode": func(c stream.TypeCode) string {
			return string(rune(c))
		},
	}

	if _, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "*.html"); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		catalog:    cat,
		mux:        http.NewServeMux(),
		templateFS: templateFS,
		funcMap:    funcMap,
	}

	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	s.mux.HandleFunc("POST /dump", s.handleDump)
	s.mux.HandleFunc("GET /classes", s.handleClasses)
	s.mux.HandleFunc("GET /{$}", s.handleIndex)

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log.Debugf("%s %s", r.Method, r.URL.Path)
	s.mux.ServeHTTP(w, r)
}

// render parses the templates on every call so edits under ui/templates
// show up without a restart. Pages are executed into a buffer so a failing
// template yields a 500 instead of a truncated page.
func (s *Server) render(w http.ResponseWriter, name string, data any) {
	tmpl, err := template.New("").Funcs(s.funcMap).ParseFS(s.templateFS, "*.html")
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		log.Errorf("render %s: %s", name, err)
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Errorf("write %s: %s", name, err)
	}
}

// DumpResult is what the index page shows after a submission.
type DumpResult struct {
	Input   string
	Trace   string
	Error   string
	Catalog bool
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", DumpResult{Catalog: s.catalog != nil})
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	data, input, err := readSubmission(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	text, st, parseErr := trace.Dump(data)
	result := DumpResult{Input: input, Trace: text, Catalog: s.catalog != nil}
	if parseErr != nil {
		result.Error = parseErr.Error()
	}

	if r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		if parseErr != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			if err := json.NewEncoder(w).Encode(result); err != nil {
				log.Errorf("encode json: %s", err)
			}
			return
		}
		if err := format.NewJSONEncoder(w).Encode(st); err != nil {
			log.Errorf("encode json: %s", err)
		}
		return
	}

	s.render(w, "index.html", result)
}

// readSubmission returns the posted stream bytes: an uploaded raw file when
// present, the hex field otherwise.
func readSubmission(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		if err := r.ParseForm(); err != nil {
			return nil, "", fmt.Errorf("invalid form data: %w", err)
		}
	}

	if file, _, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxUpload))
		if err != nil {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		return data, "", nil
	}

	input := r.FormValue("hex")
	if strings.TrimSpace(input) == "" {
		return nil, "", fmt.Errorf("must provide hex or file")
	}
	data, err := stream.DecodeHex(input)
	if err != nil {
		return nil, input, err
	}
	return data, input, nil
}

func (s *Server) handleClasses(w http.ResponseWriter, r *http.Request) {
	if s.catalog == nil {
		http.Error(w, "no catalog configured", http.StatusNotFound)
		return
	}

	pattern := r.URL.Query().Get("q")
	classes, err := s.catalog.Classes(r.Context(), pattern)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(classes); err != nil {
			log.Errorf("encode json: %s", err)
		}
		return
	}

	data := struct {
		Pattern string
		Classes []*catalog.Class
	}{
		Pattern: pattern,
		Classes: classes,
	}
	s.render(w, "classes.html", data)
}

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}

// overlay serves files from a directory on disk when it exists, falling
// back to the embedded copy.
type overlay struct {
	primary   fs.FS
	secondary fs.FS
}

func overlayFS(primaryPath string, secondary fs.FS) fs.FS {
	return &overlay{
		primary:   os.DirFS(primaryPath),
		secondary: secondary,
	}
}

func (o *overlay) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	return o.secondary.Open(name)
}

func (o *overlay) ReadDir(name string) ([]fs.DirEntry, error) {
	entries := make(map[string]fs.DirEntry)
	for _, fsys := range []fs.FS{o.secondary, o.primary} {
		if list, err := fs.ReadDir(fsys, name); err == nil {
			for _, e := range list {
				entries[e.Name()] = e
			}
		}
	}

	result := make([]fs.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, e)
	}
	slices.SortFunc(result, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return result, nil
}
