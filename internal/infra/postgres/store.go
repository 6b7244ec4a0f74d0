package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiznight/internal/domain"
)

// Store persists questions and scores in Postgres. It serves as
// QuestionLoader for the caches and as app.ScoreRepository.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Seed inserts the demo questions when the table is empty; reruns are no-ops.
func (s *Store) Seed(ctx context.Context, questions []domain.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, q := range questions {
		_, err := tx.Exec(ctx,
			`INSERT INTO questions (question_text, question_type, option_a, option_b, option_c, option_d, correct_answer)
			 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))`,
			q.Text, string(q.Type), q.OptionA, q.OptionB, q.OptionC, q.OptionD, q.Correct)
		if err != nil {
			return fmt.Errorf("seed question: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// LoadQuestions returns the full question bank in insertion order.
func (s *Store) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question_text, question_type,
		        COALESCE(option_a, ''), COALESCE(option_b, ''),
		        COALESCE(option_c, ''), COALESCE(option_d, ''),
		        COALESCE(correct_answer, '')
		 FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q     domain.Question
			qType string
		)
		if err := rows.Scan(&q.ID, &q.Text, &qType, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD, &q.Correct); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(qType)
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) Insert(ctx context.Context, name string, score int) (domain.ScoreEntry, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO scores (name, score) VALUES ($1, $2) RETURNING id`, name, score).Scan(&id)
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("insert score: %w", err)
	}
	return domain.ScoreEntry{ID: id, Name: name, Score: score}, nil
}

// ListRanked orders by score descending, insertion order breaking ties.
func (s *Store) ListRanked(ctx context.Context) ([]domain.ScoreEntry, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, name, score FROM scores ORDER BY score DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var entries []domain.ScoreEntry
	for rows.Next() {
		var e domain.ScoreEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Score); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
