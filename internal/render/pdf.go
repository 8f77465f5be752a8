package render

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/dgallion1/docbind/internal/exhibit"
)

// Page number stamp placement: offset from the bottom-right corner.
const (
	pageNumberRight  = 30
	pageNumberBottom = 15
	pageNumberColor  = "#1F4E9D"
)

var disableConfigDir sync.Once

// newConfiguration returns a relaxed pdfcpu configuration that never touches
// the user's pdfcpu config directory.
func newConfiguration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount parses doc and returns its number of pages.
func PageCount(doc []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc), newConfiguration())
	if err != nil {
		return 0, fmt.Errorf("read pdf: %w", err)
	}
	return n, nil
}

func pageNumberDescription() string {
	return fmt.Sprintf("font:%s, points:%d, pos:br, off:-%d %d, scale:1 abs, rot:0, fillcolor:%s",
		PageNumberStyle.Font, PageNumberStyle.Size, pageNumberRight, pageNumberBottom, pageNumberColor)
}

// PageNumberOverlay builds the stamp printing n near the bottom-right corner.
func PageNumberOverlay(n int) (*model.Watermark, error) {
	wm, err := api.TextWatermark(strconv.Itoa(n), pageNumberDescription(), true, false, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("page number stamp: %w", err)
	}
	return wm, nil
}

// StampPageNumbers returns a copy of doc where page i (0-based) carries the
// number start+i. Page content, dimensions and count are preserved; doc is
// not modified.
func StampPageNumbers(doc []byte, start int) ([]byte, error) {
	pages, err := PageCount(doc)
	if err != nil {
		return nil, err
	}

	stamps := make(map[int]*model.Watermark, pages)
	for i := 0; i < pages; i++ {
		wm, err := PageNumberOverlay(start + i)
		if err != nil {
			return nil, err
		}
		stamps[i+1] = wm
	}

	var out bytes.Buffer
	if err := api.AddWatermarksMap(bytes.NewReader(doc), &out, stamps, newConfiguration()); err != nil {
		return nil, fmt.Errorf("stamp page numbers: %w", err)
	}
	return out.Bytes(), nil
}

// Merge concatenates docs in order into one document.
func Merge(docs [][]byte) ([]byte, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("merge: no documents")
	}
	readers := make([]io.ReadSeeker, len(docs))
	for i, d := range docs {
		readers[i] = bytes.NewReader(d)
	}
	var out bytes.Buffer
	if err := api.MergeRaw(readers, &out, false, newConfiguration()); err != nil {
		return nil, fmt.Errorf("merge: %w", err)
	}
	return out.Bytes(), nil
}

// AddOutline adds bookmarks mirroring the exhibit list: one per section with
// its documents nested below. Entries before the first section header become
// top-level bookmarks.
func AddOutline(doc []byte, entries []exhibit.Entry) ([]byte, error) {
	var bms []pdfcpu.Bookmark
	for _, e := range entries {
		if e.StartPage < 1 {
			continue
		}
		bm := pdfcpu.Bookmark{Title: e.Label, PageFrom: e.StartPage, Bold: e.SectionHeader}
		if !e.SectionHeader && len(bms) > 0 && bms[len(bms)-1].Bold {
			parent := &bms[len(bms)-1]
			parent.Kids = append(parent.Kids, bm)
			continue
		}
		bms = append(bms, bm)
	}
	if len(bms) == 0 {
		return doc, nil
	}

	var out bytes.Buffer
	if err := api.AddBookmarks(bytes.NewReader(doc), &out, bms, true, newConfiguration()); err != nil {
		return nil, fmt.Errorf("add bookmarks: %w", err)
	}
	return out.Bytes(), nil
}
