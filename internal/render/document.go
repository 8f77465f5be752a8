package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Page draws text onto one US Letter page of a Document.
type Page struct {
	doc *Document
}

// Text draws s with its baseline starting at (x, y), measured from the
// bottom-left corner of the page.
func (p *Page) Text(style Style, x, y float64, s string) {
	p.doc.text(style, x, y, s)
}

// Document builds text-only pages in the standard Type 1 fonts.
type Document struct {
	pdf *gofpdf.Fpdf
	err error
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	pdf := gofpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTextColor(0, 0, 0)
	return &Document{pdf: pdf}
}

// AddPage appends a blank page and returns it for drawing.
func (d *Document) AddPage() *Page {
	d.pdf.AddPage()
	return &Page{doc: d}
}

// PageCount is the number of pages added so far.
func (d *Document) PageCount() int {
	return d.pdf.PageNo()
}

// gofpdf passes runes outside cp1252 through as raw UTF-8, so text is
// encoded here and unsupported runes become '?'.
var winAnsi = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())

func (d *Document) text(style Style, x, y float64, s string) {
	if d.err != nil {
		return
	}
	encoded, err := winAnsi.String(s)
	if err != nil {
		d.err = fmt.Errorf("render: encode %q: %w", s, err)
		return
	}
	family, face := style.face()
	d.pdf.SetFont(family, face, float64(style.Size))
	d.pdf.Text(x, PageHeight-y, encoded)
}

// Bytes serializes the document.
func (d *Document) Bytes() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.pdf.PageNo() == 0 {
		return nil, fmt.Errorf("render: document has no pages")
	}
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// face splits a PostScript font name such as "Helvetica-Bold" into the
// family and style string gofpdf expects.
func (s Style) face() (family, style string) {
	family, variant, _ := strings.Cut(s.Font, "-")
	switch variant {
	case "Bold":
		return family, "B"
	case "Oblique", "Italic":
		return family, "I"
	case "BoldOblique", "BoldItalic":
		return family, "BI"
	}
	return family, ""
}
