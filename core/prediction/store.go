package prediction

import (
	"context"
	"sort"
	"sync"
)

// ModelStore persists fitted models.
type ModelStore interface {
	SaveModel(ctx context.Context, m Model) error
	// LatestModel returns the most recently fitted model. The boolean is false
	// when no model has been saved yet.
	LatestModel(ctx context.Context) (Model, bool, error)
}

// ObservationStore persists training observations.
type ObservationStore interface {
	AppendObservations(ctx context.Context, obs []Observation) error
	Observations(ctx context.Context) ([]Observation, error)
}

// MemoryStore keeps models and observations in memory.
type MemoryStore struct {
	mu     sync.Mutex
	models []Model
	obs    []Observation
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// SaveModel appends the model.
func (s *MemoryStore) SaveModel(_ context.Context, m Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = append(s.models, m)
	return nil
}

// LatestModel returns the model with the most recent fit time.
func (s *MemoryStore) LatestModel(context.Context) (Model, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.models) == 0 {
		return Model{}, false, nil
	}
	latest := s.models[0]
	for _, m := range s.models[1:] {
		if !m.FittedAt.Before(latest.FittedAt) {
			latest = m
		}
	}
	return latest, true, nil
}

// AppendObservations stores the observations.
func (s *MemoryStore) AppendObservations(_ context.Context, obs []Observation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.obs = append(s.obs, obs...)
	return nil
}

// Observations returns all observations ordered by timestamp.
func (s *MemoryStore) Observations(context.Context) ([]Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := make([]Observation, len(s.obs))
	copy(res, s.obs)
	sort.Slice(res, func(i, j int) bool { return res[i].Timestamp.Before(res[j].Timestamp) })
	return res, nil
}
