package exhibit

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"
)

func sectionLabels(g Grouping) []string {
	var out []string
	for _, s := range g.Sections {
		out = append(out, s.Label)
	}
	return out
}

func itemTitles(s Section) []string {
	var out []string
	for _, it := range s.Items {
		out = append(out, it.Title)
	}
	return out
}

func TestGroup_ByOrder(t *testing.T) {
	descs := []Descriptor{
		{Order: 4, Section: "Exhibit 2", Title: "Invoice", URL: "https://x/4.pdf"},
		{Order: 1, Section: "Exhibit 1", Title: "Contract", URL: "https://x/1.pdf"},
		{Order: 3, Section: "Exhibit 2", Title: "Letter", URL: "https://x/3.pdf"},
		{Order: 2, Section: "Exhibit 1", Title: "Amendment", URL: "https://x/2.pdf"},
	}
	g := Group(descs, SortByOrder)

	if got := sectionLabels(g); !slices.Equal(got, []string{"Exhibit 1", "Exhibit 2"}) {
		t.Fatalf("unexpected section order %v", got)
	}
	if got := itemTitles(g.Sections[0]); !slices.Equal(got, []string{"Contract", "Amendment"}) {
		t.Errorf("unexpected Exhibit 1 order %v", got)
	}
	if got := itemTitles(g.Sections[1]); !slices.Equal(got, []string{"Letter", "Invoice"}) {
		t.Errorf("unexpected Exhibit 2 order %v", got)
	}
	if g.Sections[0].Items[0].Index != 1 {
		t.Errorf("expected request index 1, got %d", g.Sections[0].Items[0].Index)
	}
	if g.Documents() != 4 {
		t.Errorf("expected 4 documents, got %d", g.Documents())
	}
}

func TestGroup_ByLabel(t *testing.T) {
	descs := []Descriptor{
		{Order: 1, Section: "Exhibit 10", Title: "Doc 2", URL: "https://x/a.pdf"},
		{Order: 2, Section: "Appendix", Title: "Notes", URL: "https://x/b.pdf"},
		{Order: 3, Section: "Exhibit 2", Title: "Doc 1", URL: "https://x/c.pdf"},
		{Order: 4, Section: "Exhibit 10", Title: "Doc 1", URL: "https://x/d.pdf"},
		{Order: 5, Section: "Exhibit 10", Title: "Summary", URL: "https://x/e.pdf"},
	}
	g := Group(descs, SortByLabel)

	if got := sectionLabels(g); !slices.Equal(got, []string{"Exhibit 2", "Exhibit 10", "Appendix"}) {
		t.Fatalf("unexpected section order %v", got)
	}
	if got := itemTitles(g.Sections[1]); !slices.Equal(got, []string{"Doc 1", "Doc 2", "Summary"}) {
		t.Errorf("unparsable titles should sort last, got %v", got)
	}
	if g.Sections[2].Key != SentinelKey {
		t.Errorf("expected sentinel key for Appendix, got %d", g.Sections[2].Key)
	}
}

func TestGroup_FrontMatterExcluded(t *testing.T) {
	descs := []Descriptor{
		{Order: 0, Title: "Cover letter", URL: "https://x/cover.pdf"},
		{Order: 1, Section: "Exhibit 1", Title: "Contract", URL: "https://x/1.pdf"},
		{Order: 0, Title: "Certificate of service", URL: "https://x/cert.pdf"},
	}
	g := Group(descs, SortByOrder)

	if len(g.FrontMatter) != 2 {
		t.Fatalf("expected 2 front matter items, got %d", len(g.FrontMatter))
	}
	if g.FrontMatter[0].Title != "Cover letter" || g.FrontMatter[1].Title != "Certificate of service" {
		t.Errorf("front matter should keep request order, got %q, %q", g.FrontMatter[0].Title, g.FrontMatter[1].Title)
	}
	if len(g.Sections) != 1 || g.Documents() != 1 {
		t.Errorf("expected a single section with one document, got %d sections", len(g.Sections))
	}
}

func TestGroup_DeterministicUnderPermutation(t *testing.T) {
	descs := []Descriptor{
		{Order: 1, Section: "Exhibit 1", Title: "A", URL: "https://x/1.pdf"},
		{Order: 1, Section: "Exhibit 1", Title: "B", URL: "https://x/2.pdf"},
		{Order: 2, Section: "Exhibit 2", Title: "Tab 2", URL: "https://x/3.pdf"},
		{Order: 2, Section: "Exhibit 2", Title: "Tab 1", URL: "https://x/4.pdf"},
		{Order: 2, Section: "Exhibit 3", Title: "C", URL: "https://x/5.pdf"},
		{Order: 3, Section: "Misc", Title: "D", URL: "https://x/6.pdf"},
		{Order: 3, Section: "Misc", Title: "D", URL: "https://x/7.pdf"},
	}

	flatten := func(g Grouping) []string {
		var out []string
		for _, s := range g.Sections {
			for _, it := range s.Items {
				out = append(out, s.Label+"/"+it.Title+"/"+it.URL)
			}
		}
		return out
	}

	for _, mode := range []SortMode{SortByOrder, SortByLabel} {
		want := flatten(Group(descs, mode))
		rng := rand.New(rand.NewPCG(1, 2))
		for i := 0; i < 20; i++ {
			shuffled := slices.Clone(descs)
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			if got := flatten(Group(shuffled, mode)); !slices.Equal(got, want) {
				t.Fatalf("mode %s: order changed under permutation:\n got %v\nwant %v", mode, got, want)
			}
		}
	}
}

func TestParseSortMode(t *testing.T) {
	for in, want := range map[string]SortMode{"": SortByOrder, "order": SortByOrder, "LABEL": SortByLabel} {
		got, err := ParseSortMode(in)
		if err != nil || got != want {
			t.Errorf("ParseSortMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseSortMode("title"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestDescriptor_LegacyFieldNames(t *testing.T) {
	var d Descriptor
	body := `{"ordem": 2, "secao": "Exhibit 1", "titulo": "Contract", "pdf_url": " https://x/1.pdf "}`
	if err := json.Unmarshal([]byte(body), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Descriptor{Order: 2, Section: "Exhibit 1", Title: "Contract", URL: "https://x/1.pdf"}
	if d != want {
		t.Errorf("expected %+v, got %+v", want, d)
	}
}

func TestDescriptor_Validate(t *testing.T) {
	tests := []struct {
		name    string
		d       Descriptor
		wantErr bool
	}{
		{"valid", Descriptor{Order: 1, Section: "Exhibit 1", URL: "https://x/a.pdf"}, false},
		{"front matter without section", Descriptor{Order: 0, URL: "http://x/a.pdf"}, false},
		{"missing url", Descriptor{Order: 1, Section: "Exhibit 1"}, true},
		{"bad scheme", Descriptor{Order: 1, Section: "Exhibit 1", URL: "file:///etc/passwd"}, true},
		{"missing section", Descriptor{Order: 3, URL: "https://x/a.pdf"}, true},
		{"negative order", Descriptor{Order: -1, Section: "S", URL: "https://x/a.pdf"}, true},
	}
	for _, tt := range tests {
		err := tt.d.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
