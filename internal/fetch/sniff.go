package fetch

import (
	"bytes"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/net/html"
)

// signatureWindow is how far into the body the %PDF- marker may appear.
// Readers tolerate leading garbage before the header within this window.
const signatureWindow = 1024

var pdfSignature = []byte("%PDF-")

// HasPDFSignature reports whether body carries the PDF header marker within
// its first 1024 bytes.
func HasPDFSignature(body []byte) bool {
	return bytes.Contains(body[:min(len(body), signatureWindow)], pdfSignature)
}

// pdfContentTypes are the media types servers use for PDF downloads.
// Generic binary types are accepted because many hosts mislabel PDFs.
var pdfContentTypes = map[string]bool{
	"application/pdf":            true,
	"application/x-pdf":          true,
	"application/acrobat":        true,
	"application/octet-stream":   true,
	"binary/octet-stream":        true,
	"application/download":       true,
	"application/x-download":     true,
	"application/force-download": true,
}

// acceptableContentType reports whether a Content-Type header value could
// describe a PDF. A missing header is accepted and left to the body sniff.
func acceptableContentType(header string) bool {
	if strings.TrimSpace(header) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	return pdfContentTypes[mediaType]
}

func looksLikeHTML(header string, body []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(header); err == nil &&
		(mediaType == "text/html" || mediaType == "application/xhtml+xml") {
		return true
	}
	head := strings.ToLower(string(bytes.TrimSpace(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

// describeBody summarises a rejected body for error messages. HTML pages
// are reported with their title, which usually explains why a share link
// returned a web page instead of the file.
func describeBody(header string, body []byte) string {
	if looksLikeHTML(header, body) {
		if title := htmlTitle(body); title != "" {
			return fmt.Sprintf("received an HTML page (%q) instead of a PDF", title)
		}
		return "received an HTML page instead of a PDF"
	}
	if header != "" {
		return fmt.Sprintf("unexpected content type %q", header)
	}
	return ""
}

func htmlTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return findTitle(doc)
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.Join(strings.Fields(buf.String()), " ")
}
