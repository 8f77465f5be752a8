// Package exhibit groups document descriptors into sections, orders them, and
// tracks the page numbers each section cover and document will occupy in the
// merged output.
package exhibit

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Descriptor names one source document to include in the merged output.
// An Order of zero marks the document as front matter.
type Descriptor struct {
	Order   int    `json:"order"`
	Section string `json:"section"`
	Title   string `json:"title"`
	URL     string `json:"pdf_url"`
}

// UnmarshalJSON accepts both the English field names and the legacy
// ordem/secao/titulo names sent by older clients.
func (d *Descriptor) UnmarshalJSON(data []byte) error {
	var raw struct {
		Order   *int   `json:"order"`
		Ordem   *int   `json:"ordem"`
		Section string `json:"section"`
		Secao   string `json:"secao"`
		Title   string `json:"title"`
		Titulo  string `json:"titulo"`
		URL     string `json:"pdf_url"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*d = Descriptor{
		Section: firstNonEmpty(raw.Section, raw.Secao),
		Title:   firstNonEmpty(raw.Title, raw.Titulo),
		URL:     strings.TrimSpace(raw.URL),
	}
	switch {
	case raw.Order != nil:
		d.Order = *raw.Order
	case raw.Ordem != nil:
		d.Order = *raw.Ordem
	}
	return nil
}

// IsFrontMatter reports whether the document is placed without a cover
// page or an index entry.
func (d Descriptor) IsFrontMatter() bool {
	return d.Order == 0
}

// Validate checks the fields a merge cannot proceed without.
func (d Descriptor) Validate() error {
	if d.Order < 0 {
		return fmt.Errorf("order must not be negative (got %d)", d.Order)
	}
	if d.URL == "" {
		return fmt.Errorf("pdf_url is required")
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return fmt.Errorf("invalid pdf_url %q: %w", d.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("pdf_url %q must use http or https", d.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("pdf_url %q has no host", d.URL)
	}
	if !d.IsFrontMatter() && strings.TrimSpace(d.Section) == "" {
		return fmt.Errorf("section is required for %q", d.URL)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
