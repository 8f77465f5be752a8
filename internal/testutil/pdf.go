// Package testutil provides fixtures shared by package tests.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dgallion1/docbind/internal/render"
)

// PDF returns a document with the given number of pages. Page i reads
// "<label> page i" so tests can tell documents apart after merging.
func PDF(t testing.TB, label string, pages int) []byte {
	t.Helper()
	doc := render.NewDocument()
	for i := 1; i <= pages; i++ {
		doc.AddPage().Text(render.EntryStyle, 72, 700, fmt.Sprintf("%s page %d", label, i))
	}
	b, err := doc.Bytes()
	if err != nil {
		t.Fatalf("build fixture pdf: %v", err)
	}
	return b
}

// FileServer serves fixed bodies by path and counts requests per path.
type FileServer struct {
	*httptest.Server

	mu    sync.Mutex
	files map[string]file
	hits  map[string]int
}

type file struct {
	body        []byte
	contentType string
	status      int
}

// NewFileServer starts a server. It is closed when the test finishes.
func NewFileServer(t testing.TB) *FileServer {
	t.Helper()
	fs := &FileServer{files: make(map[string]file), hits: make(map[string]int)}
	fs.Server = httptest.NewServer(http.HandlerFunc(fs.serve))
	t.Cleanup(fs.Close)
	return fs
}

// AddPDF serves body as application/pdf at path and returns its URL.
func (fs *FileServer) AddPDF(path string, body []byte) string {
	return fs.Add(path, http.StatusOK, "application/pdf", body)
}

// Add serves body with an explicit status and content type.
func (fs *FileServer) Add(path string, status int, contentType string, body []byte) string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = file{body: body, contentType: contentType, status: status}
	return fs.URL + path
}

// Hits returns how many requests path has received.
func (fs *FileServer) Hits(path string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.hits[path]
}

func (fs *FileServer) serve(w http.ResponseWriter, r *http.Request) {
	fs.mu.Lock()
	f, ok := fs.files[r.URL.Path]
	fs.hits[r.URL.Path]++
	fs.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.contentType != "" {
		w.Header().Set("Content-Type", f.contentType)
	}
	w.WriteHeader(f.status)
	w.Write(f.body)
}
