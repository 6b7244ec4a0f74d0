package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quiznight/internal/domain"
)

// SessionRepository abstracts how per-visitor session state is stored
// (in-memory, Redis, etc). Get returns domain.ErrSessionNotFound for unknown
// session ids.
type SessionRepository interface {
	Get(ctx context.Context, sessionID string) (domain.SessionState, error)
	Put(ctx context.Context, sessionID string, state domain.SessionState) error
	Delete(ctx context.Context, sessionID string) error
}

// QuestionRepository loads the question bank (from cache/backing store).
type QuestionRepository interface {
	ListQuestions(ctx context.Context) ([]domain.Question, error)
}

// ScoreRepository persists finished scores and serves the ranked history.
// Insert must be atomic per row; entries are immutable once written.
type ScoreRepository interface {
	Insert(ctx context.Context, name string, score int) (domain.ScoreEntry, error)
	ListRanked(ctx context.Context) ([]domain.ScoreEntry, error)
}

// Progress is the 1-based "question X of N" counter shown while playing.
type Progress struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

// QuizService contains the core quiz use cases: start a session over a
// shuffled question order, step through it scoring answers, and record the
// final score on the leaderboard exactly once.
type QuizService struct {
	sessions  SessionRepository
	questions QuestionRepository
	scores    ScoreRepository

	rndMu sync.Mutex
	rnd   *rand.Rand

	subMu       sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

func NewQuizService(sessions SessionRepository, questions QuestionRepository, scores ScoreRepository) *QuizService {
	return NewQuizServiceWithRand(sessions, questions, scores, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuizServiceWithRand pins the shuffle source for deterministic tests.
func NewQuizServiceWithRand(sessions SessionRepository, questions QuestionRepository, scores ScoreRepository, rnd *rand.Rand) *QuizService {
	return &QuizService{
		sessions:    sessions,
		questions:   questions,
		scores:      scores,
		rnd:         rnd,
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

const anonymousName = "Anonymous"

// Start creates fresh session state for the visitor: a uniformly random
// permutation of all question ids, position 0, score 0, unsaved. Any previous
// state for the session id is overwritten, not merged.
func (s *QuizService) Start(ctx context.Context, sessionID, name string) (domain.SessionState, error) {
	if name == "" {
		name = anonymousName
	}

	questions, err := s.questions.ListQuestions(ctx)
	if err != nil {
		return domain.SessionState{}, err
	}

	order := make([]int64, len(questions))
	for i, q := range questions {
		order[i] = q.ID
	}
	s.rndMu.Lock()
	s.rnd.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	s.rndMu.Unlock()

	state := domain.SessionState{Name: name, Order: order}
	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return domain.SessionState{}, err
	}
	return state, nil
}

// Current returns the question at the session's position along with 1-based
// progress, or finished=true once the position has passed the end of the
// order (immediately so for an empty question bank).
func (s *QuizService) Current(ctx context.Context, sessionID string) (domain.Question, Progress, bool, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Question{}, Progress{}, false, err
	}
	if state.Finished() {
		return domain.Question{}, Progress{}, true, nil
	}

	question, err := s.questionByID(ctx, state.Order[state.Position])
	if err != nil {
		return domain.Question{}, Progress{}, false, err
	}
	return question, Progress{Index: state.Position + 1, Total: len(state.Order)}, false, nil
}

// Advance applies a submitted answer to the current question and moves the
// session forward one position. Open questions ignore the answer entirely;
// scored questions award one point when the normalized answer matches the
// non-empty correct letter. Unrecognized or empty answers are not errors,
// they simply score nothing. Advancing a finished session is a caller error.
func (s *QuizService) Advance(ctx context.Context, sessionID, answer string) (domain.SessionState, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionState{}, err
	}
	if state.Finished() {
		return domain.SessionState{}, domain.ErrSessionFinished
	}

	question, err := s.questionByID(ctx, state.Order[state.Position])
	if err != nil {
		return domain.SessionState{}, err
	}

	if question.Scored() {
		if got := domain.NormalizeAnswer(answer); question.Correct != "" && got == question.Correct {
			state.Score++
		}
	}
	state.Position++

	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return domain.SessionState{}, err
	}
	return state, nil
}

// Record writes the session's final score to the leaderboard unless it has
// been written already. The saved flag makes repeated calls (every visit to
// the leaderboard view) idempotent after the first successful write.
func (s *QuizService) Record(ctx context.Context, sessionID string) (domain.SessionState, bool, error) {
	state, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.SessionState{}, false, err
	}
	if state.Saved || state.Name == "" {
		return state, false, nil
	}

	if _, err := s.scores.Insert(ctx, state.Name, state.Score); err != nil {
		return domain.SessionState{}, false, err
	}
	state.Saved = true
	if err := s.sessions.Put(ctx, sessionID, state); err != nil {
		return domain.SessionState{}, false, err
	}

	if lb, err := s.Ranked(ctx); err == nil {
		s.broadcast(lb)
	}
	return state, true, nil
}

// Ranked returns the score history sorted by score descending. The stores
// order ties by insertion.
func (s *QuizService) Ranked(ctx context.Context) (domain.Leaderboard, error) {
	entries, err := s.scores.ListRanked(ctx)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{Entries: entries}, nil
}

// Subscribe returns a channel receiving the ranked leaderboard whenever a new
// score is recorded, primed with the current standings. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(ctx context.Context) (<-chan domain.Leaderboard, func(), error) {
	initial, err := s.Ranked(ctx)
	if err != nil {
		return nil, nil, err
	}

	ch := make(chan domain.Leaderboard, 8)
	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()
	ch <- initial

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel, nil
}

func (s *QuizService) broadcast(lb domain.Leaderboard) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale update so a slow client never blocks the rest.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

func (s *QuizService) questionByID(ctx context.Context, id int64) (domain.Question, error) {
	questions, err := s.questions.ListQuestions(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	for _, q := range questions {
		if q.ID == id {
			return q, nil
		}
	}
	return domain.Question{}, domain.ErrQuestionNotFound
}
