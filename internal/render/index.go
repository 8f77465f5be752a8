package render

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docbind/internal/exhibit"
)

// IndexTitle heads the first page of the exhibit list.
const IndexTitle = "Exhibit List"

// Index page geometry, in points.
const (
	LeftMargin    = 70.0
	RightMargin   = 50.0
	PageRefColumn = 80.0
	MaxTextWidth  = PageWidth - LeftMargin - RightMargin - PageRefColumn

	LineHeight  = 20.0
	HeadingY    = 750.0
	FirstEntryY = 720.0
	TopY        = 750.0
	BottomY     = 50.0

	SectionGapBefore = 8.0
	SectionGapAfter  = 4.0
)

// IndexLine is one wrapped line of an entry placed on an index page.
type IndexLine struct {
	Entry int // position in the entry list
	Text  string
	Style Style
	Y     float64
	Last  bool // the entry's page reference is drawn on this line
}

// IndexPage holds the lines placed on one page of the exhibit list.
type IndexPage struct {
	Heading bool
	Lines   []IndexLine
}

// IndexLayout is the placement of every entry line across index pages.
type IndexLayout struct {
	Pages []IndexPage
}

// PageCount is the number of pages the exhibit list occupies.
func (l IndexLayout) PageCount() int {
	return len(l.Pages)
}

// Wrap greedily packs words into lines no wider than maxWidth. A single word
// wider than maxWidth is emitted on a line of its own. An empty string
// yields one empty line.
func Wrap(text string, style Style, maxWidth float64) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	current := words[0]
	for _, w := range words[1:] {
		candidate := current + " " + w
		if style.Width(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = w
	}
	return append(lines, current)
}

// LayoutIndex places entry labels on index pages. Placement depends only on
// labels and header flags, never on page references, so the page count is
// known before any reference is assigned.
func LayoutIndex(entries []exhibit.Entry) IndexLayout {
	var layout IndexLayout
	page := IndexPage{Heading: true}
	y := FirstEntryY
	atTop := true

	newPage := func() {
		layout.Pages = append(layout.Pages, page)
		page = IndexPage{}
		y = TopY
		atTop = true
	}

	for i, e := range entries {
		style := EntryStyle
		if e.SectionHeader {
			style = SectionStyle
			if !atTop {
				y -= SectionGapBefore
			}
		}

		lines := Wrap(e.Label, style, MaxTextWidth)
		// Keep an entry's lines together, and a section header with the
		// entry it heads, unless they cannot fit on any page.
		need := float64(len(lines)-1) * LineHeight
		if e.SectionHeader && i+1 < len(entries) && !entries[i+1].SectionHeader {
			need += SectionGapAfter + float64(keptLines(entries[i+1].Label))*LineHeight
		}
		if !atTop && y-need < BottomY && TopY-need >= BottomY {
			newPage()
		}
		for j, text := range lines {
			if y < BottomY {
				newPage()
			}
			page.Lines = append(page.Lines, IndexLine{
				Entry: i,
				Text:  text,
				Style: style,
				Y:     y,
				Last:  j == len(lines)-1,
			})
			y -= LineHeight
			atTop = false
		}

		if e.SectionHeader {
			y -= SectionGapAfter
		}
	}
	layout.Pages = append(layout.Pages, page)
	return layout
}

// keptLines is how many lines of a document entry stay on one page: all of
// them, or one when the entry is longer than a page.
func keptLines(label string) int {
	n := len(Wrap(label, EntryStyle, MaxTextWidth))
	if n > linesLeft(TopY) {
		return 1
	}
	return n
}

// linesLeft is how many lines fit on the current page from cursor y down.
func linesLeft(y float64) int {
	if y < BottomY {
		return 0
	}
	return int((y-BottomY)/LineHeight) + 1
}

// RenderIndex draws a layout produced by LayoutIndex. Each entry's page
// reference is right-aligned against the right margin on its last line.
func RenderIndex(layout IndexLayout, entries []exhibit.Entry) ([]byte, error) {
	doc := NewDocument()
	for _, p := range layout.Pages {
		page := doc.AddPage()
		if p.Heading {
			page.Text(HeadingStyle, LeftMargin, HeadingY, IndexTitle)
		}
		for _, ln := range p.Lines {
			if ln.Entry < 0 || ln.Entry >= len(entries) {
				return nil, fmt.Errorf("render: index line refers to entry %d of %d", ln.Entry, len(entries))
			}
			page.Text(ln.Style, LeftMargin, ln.Y, ln.Text)
			if !ln.Last {
				continue
			}
			if ref := entries[ln.Entry].PageRef; ref != "" {
				page.Text(ln.Style, PageWidth-RightMargin-ln.Style.Width(ref), ln.Y, ref)
			}
		}
	}
	return doc.Bytes()
}
