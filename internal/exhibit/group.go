package exhibit

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// SortMode selects which key orders sections and the documents within them.
type SortMode string

const (
	// SortByOrder uses the explicit order field, falling back to numbers
	// parsed from labels to break ties.
	SortByOrder SortMode = "order"
	// SortByLabel ignores the order field and uses numbers parsed from the
	// section label and document title.
	SortByLabel SortMode = "label"
)

// ParseSortMode validates a mode name. An empty name selects SortByOrder.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByOrder:
		return SortByOrder, nil
	case SortByLabel:
		return SortByLabel, nil
	default:
		return "", fmt.Errorf("unknown sort mode %q (want %q or %q)", s, SortByOrder, SortByLabel)
	}
}

// Item is a descriptor together with its position in the request, so fetched
// content can be matched back to it after grouping.
type Item struct {
	Index int
	Descriptor
}

// Section is a named group of documents rendered behind one cover page.
type Section struct {
	Label string
	Key   int
	Items []Item
}

// Grouping is the resolved display order for one request.
type Grouping struct {
	// FrontMatter documents keep their request order.
	FrontMatter []Item
	Sections    []Section
}

// Documents returns the number of grouped (non front matter) documents.
func (g Grouping) Documents() int {
	n := 0
	for _, s := range g.Sections {
		n += len(s.Items)
	}
	return n
}

// Group splits front matter from sectioned documents, groups the latter by
// section label and orders sections and their documents according to mode.
// The comparison is total, so the result does not depend on input order.
func Group(descs []Descriptor, mode SortMode) Grouping {
	var g Grouping
	bySection := make(map[string]int)

	for i, d := range descs {
		item := Item{Index: i, Descriptor: d}
		if d.IsFrontMatter() {
			g.FrontMatter = append(g.FrontMatter, item)
			continue
		}
		label := strings.TrimSpace(d.Section)
		idx, ok := bySection[label]
		if !ok {
			idx = len(g.Sections)
			bySection[label] = idx
			g.Sections = append(g.Sections, Section{Label: label})
		}
		g.Sections[idx].Items = append(g.Sections[idx].Items, item)
	}

	for i := range g.Sections {
		s := &g.Sections[i]
		s.Key = sectionKey(*s, mode)
		slices.SortStableFunc(s.Items, func(a, b Item) int {
			return compareItems(a, b, mode)
		})
	}
	slices.SortStableFunc(g.Sections, func(a, b Section) int {
		return cmp.Or(
			cmp.Compare(a.Key, b.Key),
			cmp.Compare(OrderingKey(a.Label), OrderingKey(b.Label)),
			strings.Compare(a.Label, b.Label),
		)
	})
	return g
}

func sectionKey(s Section, mode SortMode) int {
	if mode == SortByLabel {
		return OrderingKey(s.Label)
	}
	key := s.Items[0].Order
	for _, it := range s.Items[1:] {
		key = min(key, it.Order)
	}
	return key
}

func compareItems(a, b Item, mode SortMode) int {
	var byOrder int
	if mode == SortByOrder {
		byOrder = cmp.Compare(a.Order, b.Order)
	}
	return cmp.Or(
		byOrder,
		cmp.Compare(OrderingKey(a.Title), OrderingKey(b.Title)),
		strings.Compare(a.Title, b.Title),
		strings.Compare(a.URL, b.URL),
	)
}
