package render

import "strings"

const (
	coverMargin  = 72.0
	minCoverSize = 8
)

// RenderCoverPage returns a single-page document with label centered on the
// page. The font shrinks from CoverStyle's size until the label fits between
// the side margins, down to a minimum of 8 pt.
func RenderCoverPage(label string) ([]byte, error) {
	label = strings.TrimSpace(label)
	style := CoverFit(label)

	doc := NewDocument()
	page := doc.AddPage()
	x := (PageWidth - style.Width(label)) / 2
	page.Text(style, x, PageHeight/2, label)
	return doc.Bytes()
}

// CoverFit picks the cover style for label.
func CoverFit(label string) Style {
	style := CoverStyle
	maxWidth := PageWidth - 2*coverMargin
	for style.Size > minCoverSize && style.Width(label) > maxWidth {
		style = style.WithSize(style.Size - 1)
	}
	return style
}
