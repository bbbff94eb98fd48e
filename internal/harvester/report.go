package harvester

import (
	"fmt"
	"time"
)

// Status is the outcome of one article within a cycle.
type Status string

const (
	StatusPublished Status = "published"
	StatusDuplicate Status = "duplicate"
	StatusFiltered  Status = "filtered"
	StatusFailed    Status = "failed"
)

// ArticleResult records what happened to a single fetched article.
type ArticleResult struct {
	ID       string
	Title    string
	Status   Status
	Degraded bool
	Err      error
}

// Report summarises one cycle.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Fetched    int
	FetchErr   error
	Results    []ArticleResult
}

// Count returns how many results have the given status.
func (r Report) Count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

func (r Report) String() string {
	if r.FetchErr != nil {
		return fmt.Sprintf("fetch failed: %v", r.FetchErr)
	}
	return fmt.Sprintf("fetched=%d published=%d duplicate=%d filtered=%d failed=%d",
		r.Fetched,
		r.Count(StatusPublished),
		r.Count(StatusDuplicate),
		r.Count(StatusFiltered),
		r.Count(StatusFailed),
	)
}
