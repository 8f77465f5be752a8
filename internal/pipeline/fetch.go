package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/docbind/internal/exhibit"
)

// fetchAll downloads every document with bounded concurrency and returns the
// bodies indexed like docs. A URL listed more than once is fetched once.
// The first failure cancels the fetches still running.
func (m *Merger) fetchAll(ctx context.Context, run *Run, docs []exhibit.Descriptor) ([][]byte, error) {
	byURL := make(map[string][]int)
	var urls []string
	for i, d := range docs {
		if _, ok := byURL[d.URL]; !ok {
			urls = append(urls, d.URL)
		}
		byURL[d.URL] = append(byURL[d.URL], i)
	}

	bodies := make([][]byte, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.MaxConcurrentFetch)
	for _, url := range urls {
		g.Go(func() error {
			body, err := m.fetcher.Fetch(gctx, url)
			if err != nil {
				return stepErr(StepFetch, url, err)
			}
			for _, i := range byURL[url] {
				bodies[i] = body
				run.IncrFetched()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bodies, nil
}
