package store

import (
	"context"
	"log/slog"
	"slices"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/amishk599/internradar/internal/model"
)

// DefaultMaxEntries bounds the seen set; the oldest IDs are evicted first.
const DefaultMaxEntries = 2000

var _ model.SeenSet = (*SeenSet)(nil)

// SeenSet is the in-memory, insertion-ordered set of delivered posting IDs.
// It is owned by a single poller and is not safe for concurrent use. The
// backend only ever sees full snapshots.
type SeenSet struct {
	backend    model.SeenBackend
	ids        mapset.Set[string]
	order      []string // oldest first
	maxEntries int
	logger     *slog.Logger
}

// NewSeenSet returns an empty set backed by backend. maxEntries <= 0 means
// DefaultMaxEntries.
func NewSeenSet(backend model.SeenBackend, maxEntries int, logger *slog.Logger) *SeenSet {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &SeenSet{
		backend:    backend,
		ids:        mapset.NewThreadUnsafeSet[string](),
		maxEntries: maxEntries,
		logger:     logger,
	}
}

// Load replaces the in-memory contents with the backend snapshot. Missing or
// unreadable snapshots leave the set empty; that is logged, never fatal.
func (s *SeenSet) Load(ctx context.Context) {
	s.ids.Clear()
	s.order = nil

	ids, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warn("seen set unreadable, starting empty",
			"backend", s.backend.Name(),
			"error", &model.PersistenceError{Backend: s.backend.Name(), Err: err},
		)
		return
	}
	for _, id := range ids {
		s.Add(id)
	}
	s.logger.Info("seen set loaded", "backend", s.backend.Name(), "entries", s.Len())
}

// Contains reports whether id was recorded.
func (s *SeenSet) Contains(id string) bool {
	return s.ids.Contains(id)
}

// Add records id. Adding an existing id is a no-op. When the set grows past
// its capacity the oldest ids are dropped.
func (s *SeenSet) Add(id string) {
	if id == "" || !s.ids.Add(id) {
		return
	}
	s.order = append(s.order, id)

	if over := len(s.order) - s.maxEntries; over > 0 {
		for _, old := range s.order[:over] {
			s.ids.Remove(old)
		}
		s.order = slices.Delete(s.order, 0, over)
	}
}

// Len returns the number of recorded ids.
func (s *SeenSet) Len() int {
	return s.ids.Cardinality()
}

// IDs returns a copy of the recorded ids, oldest first.
func (s *SeenSet) IDs() []string {
	return slices.Clone(s.order)
}

// Persist writes the full set through the backend. On failure the in-memory
// set is unchanged and remains authoritative.
func (s *SeenSet) Persist(ctx context.Context) error {
	if err := s.backend.Save(ctx, s.IDs()); err != nil {
		return &model.PersistenceError{Backend: s.backend.Name(), Err: err}
	}
	s.logger.Debug("seen set persisted", "backend", s.backend.Name(), "entries", s.Len())
	return nil
}
