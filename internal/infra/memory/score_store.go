package memory

import (
	"context"
	"sort"
	"sync"

	"quiznight/internal/domain"
)

// ScoreStore keeps leaderboard entries in memory, append-only.
type ScoreStore struct {
	mu      sync.RWMutex
	entries []domain.ScoreEntry
	nextID  int64
}

func NewScoreStore() *ScoreStore {
	return &ScoreStore{nextID: 1}
}

func (s *ScoreStore) Insert(_ context.Context, name string, score int) (domain.ScoreEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := domain.ScoreEntry{ID: s.nextID, Name: name, Score: score}
	s.nextID++
	s.entries = append(s.entries, entry)
	return entry, nil
}

// ListRanked returns all entries sorted by score descending; ties keep
// insertion order.
func (s *ScoreStore) ListRanked(_ context.Context) ([]domain.ScoreEntry, error) {
	s.mu.RLock()
	out := make([]domain.ScoreEntry, len(s.entries))
	copy(out, s.entries)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out, nil
}
