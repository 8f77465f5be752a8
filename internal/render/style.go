// Package render produces the pages docbind generates itself (covers and the
// exhibit list) and applies page-number stamps to existing documents.
package render

import "github.com/pdfcpu/pdfcpu/pkg/font"

// US Letter in points.
const (
	PageWidth  = 612.0
	PageHeight = 792.0
)

// Style is a font face and size. Every measure and draw call takes one
// explicitly; nothing carries font state between calls.
type Style struct {
	Font string
	Size int
}

var (
	CoverStyle      = Style{Font: "Helvetica-Bold", Size: 18}
	HeadingStyle    = Style{Font: "Helvetica-Bold", Size: 16}
	SectionStyle    = Style{Font: "Helvetica-Bold", Size: 13}
	EntryStyle      = Style{Font: "Helvetica", Size: 12}
	PageNumberStyle = Style{Font: "Helvetica", Size: 10}
)

// Width is the rendered width of text in points.
func (s Style) Width(text string) float64 {
	return font.TextWidth(text, s.Font, s.Size)
}

// WithSize returns a copy of s at a different size.
func (s Style) WithSize(size int) Style {
	s.Size = size
	return s
}
