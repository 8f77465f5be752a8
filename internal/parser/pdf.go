// Package parser reads text back out of PDF documents.
package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"strings"
	"unicode/utf8"

	pdflib "github.com/ledongthuc/pdf"
)

// maxTitleRunes bounds titles derived from document text.
const maxTitleRunes = 120

// PageText extracts the plain text of one page (1-based).
func PageText(data []byte, page int) (string, error) {
	reader, err := pdflib.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	if page < 1 || page > reader.NumPage() {
		return "", fmt.Errorf("page %d out of range (1-%d)", page, reader.NumPage())
	}
	p := reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}
	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extract page %d text: %w", page, err)
	}
	return text, nil
}

// FirstLine returns the first non-blank line of text on the first page.
func FirstLine(data []byte) (string, error) {
	text, err := PageText(data, 1)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			return truncate(line, maxTitleRunes), nil
		}
	}
	return "", nil
}

// DeriveTitle picks a title for an untitled document: the first text line of
// its first page, else the file name from its URL.
func DeriveTitle(data []byte, sourceURL string) string {
	if line, err := FirstLine(data); err == nil && line != "" {
		return line
	}
	u, err := url.Parse(sourceURL)
	if err != nil {
		return sourceURL
	}
	name := strings.TrimSuffix(path.Base(u.Path), path.Ext(u.Path))
	if name == "" || name == "." || name == "/" {
		return u.Host
	}
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
