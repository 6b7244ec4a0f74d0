package memory

import (
	"context"
	"sync"

	"quiznight/internal/domain"
)

// QuestionStore is the in-memory question bank, useful for demos and tests.
// It implements both app.QuestionRepository and the QuestionLoader interface
// the caches wrap.
type QuestionStore struct {
	mu        sync.RWMutex
	questions []domain.Question
	nextID    int64
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{nextID: 1}
}

// Seed populates the bank with the given questions, assigning ids, but only
// when the bank is empty. Calling it again is a no-op, so startup seeding is
// idempotent. Every question is validated before any is inserted.
func (s *QuestionStore) Seed(_ context.Context, questions []domain.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.questions) > 0 {
		return nil
	}
	for _, q := range questions {
		q.ID = s.nextID
		s.nextID++
		s.questions = append(s.questions, q)
	}
	return nil
}

func (s *QuestionStore) ListQuestions(_ context.Context) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, len(s.questions))
	copy(out, s.questions)
	return out, nil
}

// LoadQuestions makes the store usable as a cache loader.
func (s *QuestionStore) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.ListQuestions(ctx)
}
