// Package pipeline turns a list of document descriptors into one paginated,
// indexed PDF.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docbind/internal/exhibit"
	"github.com/dgallion1/docbind/internal/parser"
	"github.com/dgallion1/docbind/internal/render"
)

// Fetcher retrieves the raw bytes of a source document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Storage persists a finished output and returns its public URL.
type Storage interface {
	Store(ctx context.Context, id string, data []byte) (string, error)
}

// Options tunes a Merger.
type Options struct {
	SortMode           exhibit.SortMode // default when a request names none
	Bookmarks          bool
	MaxConcurrentFetch int
	RunTTL             time.Duration
}

// Merger runs the fetch, paginate and assemble steps for each request.
type Merger struct {
	fetcher Fetcher
	store   Storage
	log     *slog.Logger
	opts    Options
	runs    *RunStore
}

func New(fetcher Fetcher, store Storage, log *slog.Logger, opts Options) *Merger {
	if opts.SortMode == "" {
		opts.SortMode = exhibit.SortByOrder
	}
	if opts.MaxConcurrentFetch <= 0 {
		opts.MaxConcurrentFetch = 4
	}
	return &Merger{
		fetcher: fetcher,
		store:   store,
		log:     log,
		opts:    opts,
		runs:    NewRunStore(opts.RunTTL),
	}
}

// Runs returns the registry of recent merge runs.
func (m *Merger) Runs() *RunStore {
	return m.runs
}

// Request is one merge job.
type Request struct {
	Documents []exhibit.Descriptor
	SortMode  exhibit.SortMode // empty selects the merger default
}

// Output is an assembled document that has not been stored yet.
type Output struct {
	ID      string
	Data    []byte
	Pages   int
	Entries []exhibit.Entry
}

// Result describes a stored output.
type Result struct {
	ID      string          `json:"id"`
	URL     string          `json:"download_url"`
	Pages   int             `json:"pages"`
	Entries []exhibit.Entry `json:"exhibits"`
}

// Preview is the exhibit list a request would produce.
type Preview struct {
	Pages      int             `json:"pages"`
	IndexPages int             `json:"index_pages"`
	Entries    []exhibit.Entry `json:"exhibits"`
}

// Merge builds the output for req and stores it. Nothing is stored unless
// every step succeeds.
func (m *Merger) Merge(ctx context.Context, req Request) (*Result, error) {
	run := newRun(uuid.NewString(), len(req.Documents))
	m.runs.Put(run)
	log := m.log.With("run_id", run.ID)

	out, err := m.build(ctx, run, req, log)
	if err != nil {
		run.Fail(err)
		return nil, err
	}

	run.SetStatus(StatusStoring, StepStore)
	url, err := m.store.Store(ctx, out.ID, out.Data)
	if err != nil {
		err = stepErr(StepStore, "", err)
		run.Fail(err)
		log.Error("store output failed", "error", err)
		return nil, err
	}
	run.Complete(url)
	log.Info("merge completed", "pages", out.Pages, "bytes", len(out.Data), "url", url)

	return &Result{ID: out.ID, URL: url, Pages: out.Pages, Entries: out.Entries}, nil
}

// Build assembles the output for req without storing it.
func (m *Merger) Build(ctx context.Context, req Request) (*Output, error) {
	run := newRun(uuid.NewString(), len(req.Documents))
	return m.build(ctx, run, req, m.log.With("run_id", run.ID))
}

// Preview fetches and paginates req and returns the exhibit list it would
// produce, without assembling or storing anything.
func (m *Merger) Preview(ctx context.Context, req Request) (*Preview, error) {
	run := newRun(uuid.NewString(), len(req.Documents))
	p, err := m.plan(ctx, run, req, m.log.With("run_id", run.ID))
	if err != nil {
		return nil, err
	}
	return &Preview{Pages: p.total, IndexPages: p.layout.PageCount(), Entries: p.entries}, nil
}

func (m *Merger) build(ctx context.Context, run *Run, req Request, log *slog.Logger) (*Output, error) {
	start := time.Now()
	p, err := m.plan(ctx, run, req, log)
	if err != nil {
		return nil, err
	}

	run.SetStatus(StatusAssembling, StepAssemble)
	data, err := assemble(p, m.opts.Bookmarks)
	if err != nil {
		var le *LayoutError
		if errors.As(err, &le) {
			log.Error("assembled output does not match plan", "error", err)
		}
		return nil, err
	}
	log.Info("assembled output",
		"sections", p.sections,
		"pages", p.total,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &Output{ID: run.ID, Data: data, Pages: p.total, Entries: p.entries}, nil
}

// plan runs every step up to and including pagination.
func (m *Merger) plan(ctx context.Context, run *Run, req Request, log *slog.Logger) (*plan, error) {
	mode := req.SortMode
	if mode == "" {
		mode = m.opts.SortMode
	}

	run.SetStatus(StatusValidating, StepValidate)
	if err := validate(req.Documents); err != nil {
		return nil, stepErr(StepValidate, "", err)
	}

	run.SetStatus(StatusFetching, StepFetch)
	bodies, err := m.fetchAll(ctx, run, req.Documents)
	if err != nil {
		log.Warn("fetch failed", "error", err)
		return nil, err
	}

	run.SetStatus(StatusParsing, StepParse)
	descs, pages, err := inspect(req.Documents, bodies)
	if err != nil {
		log.Warn("parse failed", "error", err)
		return nil, err
	}

	run.SetStatus(StatusPlanning, StepPlan)
	grouping := exhibit.Group(descs, mode)
	p := newPlan(grouping, bodies, pages)
	run.SetLayout(p.sections, p.total)
	log.Info("planned output",
		"documents", len(descs),
		"front_matter", len(grouping.FrontMatter),
		"sections", p.sections,
		"index_pages", p.layout.PageCount(),
		"pages", p.total,
		"sort_mode", string(mode),
	)
	return p, nil
}

func validate(docs []exhibit.Descriptor) error {
	if len(docs) == 0 {
		return &ValidationError{Index: -1, Err: errNoDocuments}
	}
	for i, d := range docs {
		if err := d.Validate(); err != nil {
			return &ValidationError{Index: i, Err: err}
		}
	}
	return nil
}

// inspect counts the pages of every fetched document and fills in missing
// titles. It returns a copy of docs; the request is left untouched.
func inspect(docs []exhibit.Descriptor, bodies [][]byte) ([]exhibit.Descriptor, []int, error) {
	descs := make([]exhibit.Descriptor, len(docs))
	pages := make([]int, len(docs))
	for i, d := range docs {
		n, err := render.PageCount(bodies[i])
		if err == nil && n < 1 {
			err = fmt.Errorf("document has no pages")
		}
		if err != nil {
			return nil, nil, stepErr(StepParse, d.URL, &ParseError{URL: d.URL, Err: err})
		}
		if d.Title == "" {
			d.Title = parser.DeriveTitle(bodies[i], d.URL)
		}
		descs[i] = d
		pages[i] = n
	}
	return descs, pages, nil
}
