package notifier

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/internradar/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes postings and summaries to the logger instead of a chat.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the posting. Logging does not fail.
func (n *LogNotifier) Notify(_ context.Context, p model.Posting) error {
	args := []any{
		"platform", string(p.Platform),
		"id", p.ID,
		"title", p.Title,
		"company", p.Company,
		"location", p.Location,
		"stipend", p.Stipend,
		"url", p.URL,
	}
	if p.PostedOn != "" {
		args = append(args, "posted", p.PostedOn)
	}
	n.logger.Info("new posting", args...)
	return nil
}

// NotifySummary logs one line per platform and the totals.
func (n *LogNotifier) NotifySummary(_ context.Context, r model.Report) error {
	for _, ps := range r.Platforms {
		if ps.Err != nil {
			n.logger.Warn("platform summary", "platform", string(ps.Platform), "error", ps.Err)
			continue
		}
		n.logger.Info("platform summary",
			"platform", string(ps.Platform),
			"found", ps.Found,
			"matched", ps.Matched,
			"new", ps.New,
			"failed", ps.Failed,
		)
	}
	n.logger.Info("cycle summary",
		"found", r.TotalFound(),
		"matched", r.TotalMatched(),
		"new", r.TotalNew(),
		"took", r.Finished.Sub(r.Started).Round(time.Millisecond),
	)
	return nil
}
