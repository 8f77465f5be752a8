package pipeline

import (
	"sync"
	"time"
)

// RunStatus represents the step a merge run is in.
type RunStatus string

const (
	StatusValidating RunStatus = "validating"
	StatusFetching   RunStatus = "fetching"
	StatusParsing    RunStatus = "parsing"
	StatusPlanning   RunStatus = "planning"
	StatusAssembling RunStatus = "assembling"
	StatusStoring    RunStatus = "storing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Run tracks the state of a single merge request.
type Run struct {
	mu sync.Mutex

	ID     string
	Status RunStatus
	Step   Step

	Progress Progress

	URL       string
	CreatedAt time.Time
	UpdatedAt time.Time

	errors []string
}

// Progress tracks processing progress.
type Progress struct {
	Documents int      `json:"documents"`
	Fetched   int      `json:"fetched"`
	Sections  int      `json:"sections"`
	Pages     int      `json:"pages"`
	Errors    []string `json:"errors"`
}

func newRun(id string, documents int) *Run {
	now := time.Now()
	return &Run{
		ID:        id,
		Status:    StatusValidating,
		Step:      StepValidate,
		Progress:  Progress{Documents: documents},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RunStore is a thread-safe in-memory run registry with TTL eviction.
type RunStore struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewRunStore(ttl time.Duration) *RunStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &RunStore{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

func (s *RunStore) Put(run *Run) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
}

func (s *RunStore) Get(id string) *Run {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs[id]
}

// Cleanup removes expired runs.
func (s *RunStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, run := range s.runs {
		run.mu.Lock()
		updated := run.UpdatedAt
		run.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.runs, id)
		}
	}
}

// Len returns the number of tracked runs.
func (s *RunStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.runs)
}

// SetStatus updates run status atomically.
func (r *Run) SetStatus(status RunStatus, step Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Step = step
	r.UpdatedAt = time.Now()
}

// Fail marks the run failed at its current step and records err.
func (r *Run) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusFailed
	r.errors = append(r.errors, err.Error())
	r.Progress.Errors = r.errors
	r.UpdatedAt = time.Now()
}

// IncrFetched atomically increments the number of fetched documents.
func (r *Run) IncrFetched() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.Fetched++
	r.UpdatedAt = time.Now()
}

// SetLayout records the section and total page counts once planned.
func (r *Run) SetLayout(sections, pages int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.Sections = sections
	r.Progress.Pages = pages
	r.UpdatedAt = time.Now()
}

// Complete marks the run done with the stored output's URL.
func (r *Run) Complete(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusCompleted
	r.URL = url
	r.UpdatedAt = time.Now()
}

// RunSnapshot is a read-only, JSON-safe copy of run state.
type RunSnapshot struct {
	ID        string    `json:"id"`
	Status    RunStatus `json:"status"`
	Step      Step      `json:"step"`
	Progress  Progress  `json:"progress"`
	URL       string    `json:"download_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the run state.
func (r *Run) Snapshot() RunSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	errs := r.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	p := r.Progress
	p.Errors = errs
	return RunSnapshot{
		ID:        r.ID,
		Status:    r.Status,
		Step:      r.Step,
		Progress:  p,
		URL:       r.URL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
