package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/amishk599/internradar/internal/model"
)

// DefaultPersistTimeout bounds the end-of-cycle snapshot write. It runs
// detached from cycle cancellation so a shutdown still records deliveries.
const DefaultPersistTimeout = 30 * time.Second

// Phase is the poller's position in a cycle.
type Phase int32

const (
	PhaseIdle Phase = iota
	PhaseFetching
	PhaseFiltering
	PhaseNotifying
	PhaseReporting
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseFetching:
		return "fetching"
	case PhaseFiltering:
		return "filtering"
	case PhaseNotifying:
		return "notifying"
	case PhaseReporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// Poller owns one polling cycle across all platforms:
// fetch → filter → dedup → notify → mark seen, then summary and persist.
type Poller struct {
	sources        []model.Source
	filter         model.PostingFilter
	seen           model.SeenSet
	notifier       model.Notifier
	persistTimeout time.Duration
	logger         *slog.Logger

	phase atomic.Int32

	mu   sync.Mutex
	last *model.Report
}

// NewPoller creates a poller wired with all its dependencies. Sources are
// polled in the given order.
func NewPoller(
	sources []model.Source,
	filter model.PostingFilter,
	seen model.SeenSet,
	notifier model.Notifier,
	logger *slog.Logger,
) *Poller {
	return &Poller{
		sources:        sources,
		filter:         filter,
		seen:           seen,
		notifier:       notifier,
		persistTimeout: DefaultPersistTimeout,
		logger:         logger,
	}
}

// Phase returns the current cycle phase. Safe for concurrent use.
func (p *Poller) Phase() Phase {
	return Phase(p.phase.Load())
}

// LastReport returns the report of the most recent completed cycle.
func (p *Poller) LastReport() (model.Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return model.Report{}, false
	}
	return *p.last, true
}

func (p *Poller) setPhase(ph Phase) {
	if prev := Phase(p.phase.Swap(int32(ph))); prev != ph {
		p.logger.Debug("phase changed", "from", prev.String(), "to", ph.String())
	}
}

// RunCycle polls every source once, sends one summary and persists the seen
// set once. A failing platform never aborts the others. When ctx is cancelled
// no further postings are offered, but the cycle still reports and persists.
func (p *Poller) RunCycle(ctx context.Context) model.Report {
	report := model.Report{Started: time.Now()}
	offered := make(map[string]bool)

	for _, src := range p.sources {
		if err := ctx.Err(); err != nil {
			report.Platforms = append(report.Platforms, model.PlatformStats{
				Platform: src.Platform(),
				Err:      &model.FetchError{Platform: src.Platform(), Err: err},
			})
			continue
		}
		report.Platforms = append(report.Platforms, p.pollSource(ctx, src, offered))
	}

	p.setPhase(PhaseReporting)
	report.Finished = time.Now()

	if err := p.notifier.NotifySummary(ctx, report); err != nil {
		p.logger.Warn("summary not delivered", "error", err)
	}

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.persistTimeout)
	defer cancel()
	if err := p.seen.Persist(persistCtx); err != nil {
		report.PersistErr = err
		p.logger.Error("seen set not persisted, keeping in-memory state", "error", err)
	}

	p.mu.Lock()
	p.last = &report
	p.mu.Unlock()
	p.setPhase(PhaseIdle)

	p.logger.Info("cycle complete",
		"found", report.TotalFound(),
		"matched", report.TotalMatched(),
		"new", report.TotalNew(),
		"failed_platforms", len(report.FailedPlatforms()),
		"took", report.Finished.Sub(report.Started).Round(time.Millisecond),
	)
	return report
}

// pollSource runs the pipeline for one platform. offered holds IDs already
// handed to the notifier this cycle.
func (p *Poller) pollSource(ctx context.Context, src model.Source, offered map[string]bool) model.PlatformStats {
	platform := src.Platform()
	stats := model.PlatformStats{Platform: platform}
	logger := p.logger.With("platform", string(platform))

	p.setPhase(PhaseFetching)
	postings, err := src.FetchPostings(ctx)
	if err != nil {
		stats.Err = &model.FetchError{Platform: platform, Err: err}
		logger.Error("fetch failed", "error", err)
		return stats
	}
	stats.Found = len(postings)

	p.setPhase(PhaseFiltering)
	var fresh []model.Posting
	for _, posting := range postings {
		if !p.filter.Match(posting) {
			continue
		}
		stats.Matched++
		if p.seen.Contains(posting.ID) || offered[posting.ID] {
			continue
		}
		offered[posting.ID] = true
		fresh = append(fresh, posting)
	}

	p.setPhase(PhaseNotifying)
	for _, posting := range fresh {
		if ctx.Err() != nil {
			logger.Info("cycle cancelled, remaining postings deferred", "pending", len(fresh)-stats.New-stats.Failed)
			break
		}
		if err := p.notifier.Notify(ctx, posting); err != nil {
			stats.Failed++
			logger.Warn("delivery failed, will retry next cycle", "id", posting.ID, "title", posting.Title, "error", err)
			continue
		}
		p.seen.Add(posting.ID)
		stats.New++
	}

	logger.Info("polled platform",
		"found", stats.Found,
		"matched", stats.Matched,
		"new", stats.New,
		"failed", stats.Failed,
	)
	return stats
}
