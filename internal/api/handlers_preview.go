package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/dgallion1/docbind/internal/exhibit"
	"github.com/dgallion1/docbind/internal/pipeline"
	"github.com/dgallion1/docbind/internal/render"
)

var previewMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeRequest(w, r)
	if err != nil {
		jsonStepError(w, err.Error(), pipeline.StepValidate, "", http.StatusBadRequest)
		return
	}

	preview, err := s.merger.Preview(r.Context(), req)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	if wantsHTML(r) {
		page, err := previewHTML(preview)
		if err != nil {
			s.requestLogger(r).Error("render preview", "error", err)
			jsonError(w, "failed to render preview", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(page)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(preview)
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// previewHTML renders the exhibit list as a standalone HTML page.
func previewHTML(p *pipeline.Preview) ([]byte, error) {
	md := exhibit.Markdown(render.IndexTitle, p.Entries)
	md += fmt.Sprintf("\n%d pages in total, %d of them index.\n", p.Pages, p.IndexPages)

	var body bytes.Buffer
	if err := previewMarkdown.Convert([]byte(md), &body); err != nil {
		return nil, err
	}

	var page bytes.Buffer
	fmt.Fprintf(&page, "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>%s</title></head><body>\n",
		html.EscapeString(render.IndexTitle))
	page.Write(body.Bytes())
	page.WriteString("</body></html>\n")
	return page.Bytes(), nil
}
