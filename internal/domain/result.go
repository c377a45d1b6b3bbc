package domain

import "fmt"

// Op identifies the kind of file operation a result refers to.
type Op string

const (
	OpCopy   Op = "copy"
	OpDelete Op = "delete"
)

// FileResult records the outcome of a single copy or delete.
type FileResult struct {
	Op   Op
	Path string
	Err  error
}

// OK reports whether the operation succeeded.
func (r FileResult) OK() bool { return r.Err == nil }

// Summary aggregates per-file outcomes for one run.
type Summary struct {
	Results  []FileResult
	Canceled bool
}

// Add appends a result to the summary.
func (s *Summary) Add(r FileResult) {
	s.Results = append(s.Results, r)
}

// Failed returns the results that recorded an error.
func (s *Summary) Failed() []FileResult {
	var failed []FileResult
	for _, r := range s.Results {
		if !r.OK() {
			failed = append(failed, r)
		}
	}
	return failed
}

// Err returns an aggregate error when any file operation failed, nil
// otherwise.
func (s *Summary) Err() error {
	failed := s.Failed()
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d file operations failed", len(failed), len(s.Results))
}
