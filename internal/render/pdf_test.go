package render

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/dgallion1/docbind/internal/exhibit"
	"github.com/dgallion1/docbind/internal/parser"
)

func textDocument(t *testing.T, pages int) []byte {
	t.Helper()
	doc := NewDocument()
	for i := 1; i <= pages; i++ {
		doc.AddPage().Text(EntryStyle, 72, 700, fmt.Sprintf("Body page %d", i))
	}
	b, err := doc.Bytes()
	if err != nil {
		t.Fatalf("build fixture: %v", err)
	}
	return b
}

func TestDocument_Bytes(t *testing.T) {
	b := textDocument(t, 3)
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Error("expected PDF signature")
	}
	n, err := PageCount(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 pages, got %d", n)
	}
	text, err := parser.PageText(b, 2)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(text, "Body page 2") {
		t.Errorf("expected page 2 text, got %q", text)
	}
}

func TestDocument_EmptyIsError(t *testing.T) {
	if _, err := NewDocument().Bytes(); err == nil {
		t.Error("expected error for document without pages")
	}
}

func TestDocument_WinAnsiText(t *testing.T) {
	doc := NewDocument()
	doc.AddPage().Text(EntryStyle, 72, 700, "Déclaration € 5")
	doc.AddPage().Text(SectionStyle, 72, 700, "Exhibit \u4e00")
	b, err := doc.Bytes()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.PageCount() != 2 {
		t.Errorf("expected 2 pages, got %d", doc.PageCount())
	}
	text, err := parser.PageText(b, 2)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(text, "Exhibit") {
		t.Errorf("expected page 2 text, got %q", text)
	}
}

func TestStyleFace(t *testing.T) {
	tests := []struct {
		font   string
		family string
		style  string
	}{
		{"Helvetica", "Helvetica", ""},
		{"Helvetica-Bold", "Helvetica", "B"},
		{"Helvetica-Oblique", "Helvetica", "I"},
		{"Times-BoldItalic", "Times", "BI"},
		{"Times-Roman", "Times", ""},
	}
	for _, tt := range tests {
		family, style := Style{Font: tt.font, Size: 12}.face()
		if family != tt.family || style != tt.style {
			t.Errorf("face(%q) = %q %q, want %q %q", tt.font, family, style, tt.family, tt.style)
		}
	}
}

func TestRenderCoverPage(t *testing.T) {
	doc, err := RenderCoverPage("Exhibit 1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := PageCount(doc)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 1 {
		t.Errorf("expected a single cover page, got %d", n)
	}
	text, err := parser.PageText(doc, 1)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(text, "Exhibit 1") {
		t.Errorf("expected cover label, got %q", text)
	}
}

func TestCoverFit(t *testing.T) {
	if got := CoverFit("Exhibit 1"); got != CoverStyle {
		t.Errorf("short label should keep the default style, got %+v", got)
	}
	long := strings.Repeat("Very Long Section Name ", 6)
	got := CoverFit(long)
	if got.Size >= CoverStyle.Size {
		t.Errorf("expected long label to shrink below %d, got %d", CoverStyle.Size, got.Size)
	}
	if got.Size > minCoverSize && got.Width(long) > PageWidth-2*coverMargin {
		t.Errorf("label still overflows at %dpt", got.Size)
	}
}

func TestStampPageNumbers_PreservesPages(t *testing.T) {
	src := textDocument(t, 3)
	orig := bytes.Clone(src)

	stamped, err := StampPageNumbers(src, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(src, orig) {
		t.Error("input document was modified")
	}
	n, err := PageCount(stamped)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 pages, got %d", n)
	}

	dims, err := api.PageDims(bytes.NewReader(stamped), newConfiguration())
	if err != nil {
		t.Fatalf("page dims: %v", err)
	}
	for i, d := range dims {
		if d.Width != PageWidth || d.Height != PageHeight {
			t.Errorf("page %d: dimensions changed to %.0fx%.0f", i+1, d.Width, d.Height)
		}
	}
}

func TestStampPageNumbers_RejectsGarbage(t *testing.T) {
	if _, err := StampPageNumbers([]byte("%PDF-1.4 not really"), 1); err == nil {
		t.Error("expected error for unparsable document")
	}
}

func TestPageNumberDescription(t *testing.T) {
	desc := pageNumberDescription()
	for _, want := range []string{"pos:br", "off:-30 15", "scale:1 abs", "rot:0"} {
		if !strings.Contains(desc, want) {
			t.Errorf("expected %q in %q", want, desc)
		}
	}
	if _, err := PageNumberOverlay(12); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMerge(t *testing.T) {
	out, err := Merge([][]byte{textDocument(t, 2), textDocument(t, 3)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := PageCount(out)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 pages, got %d", n)
	}
	if _, err := Merge(nil); err == nil {
		t.Error("expected error for empty merge")
	}
}

func TestAddOutline(t *testing.T) {
	doc := textDocument(t, 5)
	entries := []exhibit.Entry{
		{Label: "Exhibit 1", SectionHeader: true, StartPage: 2, EndPage: 2},
		{Label: "Lease", StartPage: 3, EndPage: 4},
		{Label: "Notice", StartPage: 5, EndPage: 5},
	}
	out, err := AddOutline(doc, entries)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err := PageCount(out)
	if err != nil {
		t.Fatalf("page count: %v", err)
	}
	if n != 5 {
		t.Errorf("expected 5 pages, got %d", n)
	}

	same, err := AddOutline(doc, nil)
	if err != nil || !bytes.Equal(same, doc) {
		t.Error("expected document unchanged without entries")
	}
}
