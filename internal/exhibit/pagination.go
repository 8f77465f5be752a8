package exhibit

import (
	"fmt"
	"strconv"
)

// PageCounter hands out 1-based starting pages to units in the order they
// are appended to the output. It must be advanced in exactly that order.
type PageCounter struct {
	next int
}

// NewPageCounter returns a counter positioned at page 1.
func NewPageCounter() *PageCounter {
	return &PageCounter{next: 1}
}

// Advance returns the page a unit of the given length starts at and moves
// the counter past it. Units always have at least one page.
func (c *PageCounter) Advance(pages int) int {
	if pages < 1 {
		panic(fmt.Sprintf("exhibit: unit with %d pages", pages))
	}
	start := c.next
	c.next += pages
	return start
}

// Total is the number of pages scheduled so far.
func (c *PageCounter) Total() int {
	return c.next - 1
}

// Entry is one line item of the exhibit list. Entries are built in the same
// order their units are appended to the output.
type Entry struct {
	Label         string `json:"label"`
	PageRef       string `json:"page_ref"`
	SectionHeader bool   `json:"section_header"`
	StartPage     int    `json:"start_page"`
	EndPage       int    `json:"end_page"`
}

// SetPages records the page span of the unit the entry refers to.
func (e *Entry) SetPages(start, pages int) {
	e.StartPage = start
	e.EndPage = start + pages - 1
	e.PageRef = PageRef(start, pages)
}

// PageRef formats a page span as "N" for single pages or "A-B" for ranges.
func PageRef(start, pages int) string {
	if pages <= 1 {
		return strconv.Itoa(start)
	}
	return fmt.Sprintf("%d-%d", start, start+pages-1)
}
