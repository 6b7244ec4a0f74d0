package domain

import "strings"

// QuestionType discriminates how a question is presented and scored.
type QuestionType string

const (
	// TypeMCQ is a multiple-choice question with up to four labeled options.
	TypeMCQ QuestionType = "MCQ"
	// TypeTF is a true/false question using options A and B.
	TypeTF QuestionType = "TF"
	// TypeOpen is a free-text question that never affects the score.
	TypeOpen QuestionType = "OPEN"
)

// Question is a single quiz question. Unused option slots are empty strings;
// Correct holds the letter of the right option (A-D) and is empty for open
// questions.
type Question struct {
	ID      int64        `json:"id"`
	Text    string       `json:"text"`
	Type    QuestionType `json:"type"`
	OptionA string       `json:"optionA,omitempty"`
	OptionB string       `json:"optionB,omitempty"`
	OptionC string       `json:"optionC,omitempty"`
	OptionD string       `json:"optionD,omitempty"`
	Correct string       `json:"-"`
}

// Options returns the populated option labels keyed by letter.
func (q Question) Options() map[string]string {
	opts := make(map[string]string, 4)
	for letter, text := range map[string]string{"A": q.OptionA, "B": q.OptionB, "C": q.OptionC, "D": q.OptionD} {
		if text != "" {
			opts[letter] = text
		}
	}
	return opts
}

// Validate enforces the seed/load-time invariants: scored questions must name
// a correct letter that references a populated option, open questions must not
// carry one. A scored question with a blank correct letter could never be
// answered right, so it is rejected instead of silently tolerated.
func (q Question) Validate() error {
	switch q.Type {
	case TypeMCQ, TypeTF:
		if q.Correct == "" {
			return ErrInvalidQuestion
		}
		if _, ok := q.Options()[q.Correct]; !ok {
			return ErrInvalidQuestion
		}
	case TypeOpen:
		if q.Correct != "" {
			return ErrInvalidQuestion
		}
	default:
		return ErrInvalidQuestion
	}
	return nil
}

// Scored reports whether answers to this question count toward the score.
func (q Question) Scored() bool {
	return q.Type != TypeOpen
}

// SessionState is one visitor's quiz attempt: the shuffled question order,
// how far they have gotten, their running score, and whether the final score
// has already been written to the leaderboard.
type SessionState struct {
	Name     string  `json:"name"`
	Order    []int64 `json:"order"`
	Position int     `json:"position"`
	Score    int     `json:"score"`
	Saved    bool    `json:"saved"`
}

// Finished reports whether the visitor has answered every question.
func (s SessionState) Finished() bool {
	return s.Position >= len(s.Order)
}

// ScoreEntry is one immutable leaderboard row.
type ScoreEntry struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Leaderboard is the ranked score history shown after a playthrough.
type Leaderboard struct {
	Entries []ScoreEntry `json:"entries"`
}

// NormalizeAnswer maps a raw submitted answer to comparison form: surrounding
// whitespace stripped, uppercased. Empty input stays empty and never matches.
func NormalizeAnswer(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
