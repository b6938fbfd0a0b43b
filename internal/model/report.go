package model

import "time"

// PlatformStats are the per-platform counts of one cycle.
type PlatformStats struct {
	Platform Platform
	Found    int   // postings returned by the source
	Matched  int   // postings that passed the filter
	New      int   // matches delivered for the first time
	Failed   int   // matches whose delivery failed
	Err      error // non-nil when the fetch failed
}

// Report summarises one polling cycle.
type Report struct {
	Started    time.Time
	Finished   time.Time
	Platforms  []PlatformStats
	PersistErr error
}

func (r Report) TotalFound() int {
	n := 0
	for _, p := range r.Platforms {
		n += p.Found
	}
	return n
}

func (r Report) TotalMatched() int {
	n := 0
	for _, p := range r.Platforms {
		n += p.Matched
	}
	return n
}

func (r Report) TotalNew() int {
	n := 0
	for _, p := range r.Platforms {
		n += p.New
	}
	return n
}

// FailedPlatforms returns the platforms whose fetch failed this cycle.
func (r Report) FailedPlatforms() []Platform {
	var out []Platform
	for _, p := range r.Platforms {
		if p.Err != nil {
			out = append(out, p.Platform)
		}
	}
	return out
}
