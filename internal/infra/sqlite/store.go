package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"quiznight/internal/domain"
)

// Store persists the question bank and the leaderboard in SQLite. It serves
// as QuestionLoader for the caches and as app.ScoreRepository.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and prepares
// the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := New(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle, applying pragmas and the schema.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}

	statements := []string{
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_text TEXT NOT NULL,
			question_type TEXT NOT NULL,
			option_a TEXT,
			option_b TEXT,
			option_c TEXT,
			option_d TEXT,
			correct_answer TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			score INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_scores_score ON scores(score DESC);`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Seed inserts the demo questions when the table is empty; reruns are no-ops.
func (s *Store) Seed(ctx context.Context, questions []domain.Question) error {
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return fmt.Errorf("count questions: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, q := range questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (question_text, question_type, option_a, option_b, option_c, option_d, correct_answer)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			q.Text, string(q.Type),
			toNullString(q.OptionA), toNullString(q.OptionB),
			toNullString(q.OptionC), toNullString(q.OptionD),
			toNullString(q.Correct),
		)
		if err != nil {
			return fmt.Errorf("seed question: %w", err)
		}
	}
	return tx.Commit()
}

// LoadQuestions returns the full question bank in insertion order.
func (s *Store) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question_text, question_type, option_a, option_b, option_c, option_d, correct_answer
		 FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var (
			q          domain.Question
			qType      string
			a, b, c, d sql.NullString
			correct    sql.NullString
		)
		if err := rows.Scan(&q.ID, &q.Text, &qType, &a, &b, &c, &d, &correct); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		q.Type = domain.QuestionType(qType)
		q.OptionA, q.OptionB, q.OptionC, q.OptionD = a.String, b.String, c.String, d.String
		q.Correct = correct.String
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) Insert(ctx context.Context, name string, score int) (domain.ScoreEntry, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO scores (name, score) VALUES (?, ?)`, name, score)
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("insert score: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.ScoreEntry{}, fmt.Errorf("score id: %w", err)
	}
	return domain.ScoreEntry{ID: id, Name: name, Score: score}, nil
}

// ListRanked orders by score descending, insertion order breaking ties.
func (s *Store) ListRanked(ctx context.Context) ([]domain.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, score FROM scores ORDER BY score DESC, id ASC`)
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

func toNullString(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
