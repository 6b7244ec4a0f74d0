package domain

import "errors"

var (
	// ErrSessionNotFound is returned when a visitor acts before starting a quiz.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrSessionFinished is returned when advance is called on a finished session.
	ErrSessionFinished = errors.New("quiz session already finished")
	// ErrQuestionNotFound indicates the session order references a question id
	// missing from the store. Fatal to the session; the visitor must restart.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrInvalidQuestion indicates seed or load data violating the question
	// invariants (scored question without a valid correct letter, or an open
	// question carrying one).
	ErrInvalidQuestion = errors.New("invalid question data")
)
