package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/cognicore/ngramq/pkg/ngramq/analytics"
	"github.com/cognicore/ngramq/pkg/ngramq/internalerr"
	"github.com/cognicore/ngramq/pkg/ngramq/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu       sync.RWMutex
	analyses map[string]store.Analysis
	now      func() time.Time
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		analyses: make(map[string]store.Analysis),
		now:      time.Now,
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveAnalysis implements store.Store.
func (s *Store) SaveAnalysis(_ context.Context, a store.Analysis) (store.Analysis, error) {
	a = store.Prepare(a, s.now())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analyses[a.ID] = a
	return clone(a), nil
}

// LoadAnalysis implements store.Store.
func (s *Store) LoadAnalysis(_ context.Context, id string) (store.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.analyses[id]
	if !ok {
		return store.Analysis{}, internalerr.ErrNotFound
	}
	return clone(a), nil
}

// ListAnalyses implements store.Store.
func (s *Store) ListAnalyses(_ context.Context) ([]store.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]store.Summary, 0, len(s.analyses))
	for _, a := range s.analyses {
		out = append(out, a.Summary())
	}
	store.SortSummaries(out)
	return out, nil
}

// DeleteAnalysis implements store.Store.
func (s *Store) DeleteAnalysis(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.analyses[id]; !ok {
		return internalerr.ErrNotFound
	}
	delete(s.analyses, id)
	return nil
}

func clone(a store.Analysis) store.Analysis {
	results := make(map[int][]analytics.NgramAggregate, len(a.Results))
	for n, rows := range a.Results {
		results[n] = append([]analytics.NgramAggregate(nil), rows...)
	}
	a.Results = results
	a.Settings.NgramSizes = append([]int(nil), a.Settings.NgramSizes...)
	a.Settings.StopWords = append([]string(nil), a.Settings.StopWords...)
	return a
}
