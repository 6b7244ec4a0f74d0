package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quiznight/internal/domain"
)

// QuestionLoader fetches the question bank from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

// QuestionCache caches the question bank in Redis as a JSON blob under
// quiz:questions and falls back to a loader on cache miss. Correct letters
// are part of the cached form (domain.Question hides them from API JSON), so
// scoring works off the cache alone.
type QuestionCache struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionCache(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

const questionsKey = "quiz:questions"

// cachedQuestion is the Redis wire form; unlike the API form it carries the
// correct letter.
type cachedQuestion struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	Type    string `json:"type"`
	OptionA string `json:"a,omitempty"`
	OptionB string `json:"b,omitempty"`
	OptionC string `json:"c,omitempty"`
	OptionD string `json:"d,omitempty"`
	Correct string `json:"correct,omitempty"`
}

func (c *QuestionCache) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := c.fromCache(ctx); ok {
		return questions, nil
	}

	result, err, _ := c.sf.Do(questionsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := c.fromCache(ctx); ok {
			return questions, nil
		}

		questions, err := c.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		cached := make([]cachedQuestion, len(questions))
		for i, q := range questions {
			cached[i] = cachedQuestion{
				ID:      q.ID,
				Text:    q.Text,
				Type:    string(q.Type),
				OptionA: q.OptionA,
				OptionB: q.OptionB,
				OptionC: q.OptionC,
				OptionD: q.OptionD,
				Correct: q.Correct,
			}
		}
		raw, err := json.Marshal(cached)
		if err != nil {
			return nil, fmt.Errorf("marshal question cache: %w", err)
		}
		_ = c.client.Set(ctx, questionsKey, raw, c.ttlWithJitter()).Err()

		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) fromCache(ctx context.Context) ([]domain.Question, bool) {
	raw, err := c.client.Get(ctx, questionsKey).Bytes()
	if err != nil {
		return nil, false
	}
	var cached []cachedQuestion
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	questions := make([]domain.Question, len(cached))
	for i, q := range cached {
		questions[i] = domain.Question{
			ID:      q.ID,
			Text:    q.Text,
			Type:    domain.QuestionType(q.Type),
			OptionA: q.OptionA,
			OptionB: q.OptionB,
			OptionC: q.OptionC,
			OptionD: q.OptionD,
			Correct: q.Correct,
		}
	}
	return questions, true
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
