package pipeline

import (
	"fmt"

	"github.com/dgallion1/docbind/internal/exhibit"
	"github.com/dgallion1/docbind/internal/render"
)

// unit is one page sequence of the output: a cover or a fetched document.
// Its start page is fixed when the plan is built and never changes.
type unit struct {
	cover bool
	label string
	url   string
	data  []byte
	pages int
	start int
}

// plan is the frozen output order with every page reference assigned.
type plan struct {
	layout   render.IndexLayout
	entries  []exhibit.Entry
	units    []unit
	sections int
	total    int
}

// newPlan lays out the index from labels alone, then walks the units in
// output order: index pages, front matter, then each section's cover and
// documents. Entries and units are emitted in the same walk.
func newPlan(g exhibit.Grouping, bodies [][]byte, pages []int) *plan {
	p := &plan{sections: len(g.Sections)}
	for _, s := range g.Sections {
		p.entries = append(p.entries, exhibit.Entry{Label: s.Label, SectionHeader: true})
		for _, it := range s.Items {
			p.entries = append(p.entries, exhibit.Entry{Label: it.Title})
		}
	}
	p.layout = render.LayoutIndex(p.entries)

	counter := exhibit.NewPageCounter()
	counter.Advance(p.layout.PageCount())

	for _, it := range g.FrontMatter {
		n := pages[it.Index]
		p.units = append(p.units, unit{
			label: it.Title,
			url:   it.URL,
			data:  bodies[it.Index],
			pages: n,
			start: counter.Advance(n),
		})
	}

	e := 0
	for _, s := range g.Sections {
		start := counter.Advance(1)
		p.entries[e].SetPages(start, 1)
		e++
		p.units = append(p.units, unit{cover: true, label: s.Label, pages: 1, start: start})

		for _, it := range s.Items {
			n := pages[it.Index]
			start := counter.Advance(n)
			p.entries[e].SetPages(start, n)
			e++
			p.units = append(p.units, unit{
				label: it.Title,
				url:   it.URL,
				data:  bodies[it.Index],
				pages: n,
				start: start,
			})
		}
	}
	p.total = counter.Total()
	return p
}

// assemble renders the index and covers, stamps every unit and merges them
// in plan order. The merged page count must match the plan.
func assemble(p *plan, bookmarks bool) ([]byte, error) {
	index, err := render.RenderIndex(p.layout, p.entries)
	if err != nil {
		return nil, stepErr(StepAssemble, "", fmt.Errorf("render index: %w", err))
	}
	n, err := render.PageCount(index)
	if err != nil {
		return nil, stepErr(StepAssemble, "", fmt.Errorf("count index pages: %w", err))
	}
	if n != p.layout.PageCount() {
		return nil, stepErr(StepAssemble, "", &LayoutError{
			Detail: fmt.Sprintf("index rendered %d pages, planned %d", n, p.layout.PageCount()),
		})
	}

	parts := make([][]byte, 0, len(p.units)+1)
	parts = append(parts, index)
	for _, u := range p.units {
		data := u.data
		if u.cover {
			if data, err = render.RenderCoverPage(u.label); err != nil {
				return nil, stepErr(StepAssemble, "", fmt.Errorf("render cover %q: %w", u.label, err))
			}
		}
		stamped, err := render.StampPageNumbers(data, u.start)
		if err != nil {
			if u.cover {
				return nil, stepErr(StepAssemble, "", fmt.Errorf("stamp cover %q: %w", u.label, err))
			}
			return nil, stepErr(StepParse, u.url, &ParseError{URL: u.url, Err: err})
		}
		parts = append(parts, stamped)
	}

	merged, err := render.Merge(parts)
	if err != nil {
		return nil, stepErr(StepAssemble, "", err)
	}
	if n, err = render.PageCount(merged); err != nil {
		return nil, stepErr(StepAssemble, "", fmt.Errorf("count merged pages: %w", err))
	}
	if n != p.total {
		return nil, stepErr(StepAssemble, "", &LayoutError{
			Detail: fmt.Sprintf("merged %d pages, planned %d", n, p.total),
		})
	}

	if bookmarks {
		if merged, err = render.AddOutline(merged, p.entries); err != nil {
			return nil, stepErr(StepAssemble, "", fmt.Errorf("add outline: %w", err))
		}
	}
	return merged, nil
}
