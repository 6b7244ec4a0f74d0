package app_test

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"quiznight/internal/app"
	"quiznight/internal/domain"
	"quiznight/internal/infra/memory"
)

func TestStartShufflesAPermutation(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, bankWithScored(7, 2))

	state, err := service.Start(ctx, "v1", "Ana")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(state.Order) != 9 {
		t.Fatalf("expected order over 9 questions, got %d", len(state.Order))
	}
	seen := make(map[int64]bool, len(state.Order))
	for _, id := range state.Order {
		if seen[id] {
			t.Fatalf("duplicate id %d in order %v", id, state.Order)
		}
		seen[id] = true
	}
	for id := int64(1); id <= 9; id++ {
		if !seen[id] {
			t.Fatalf("order %v omits id %d", state.Order, id)
		}
	}
	if state.Position != 0 || state.Score != 0 || state.Saved {
		t.Fatalf("expected fresh state, got %+v", state)
	}
}

func TestFullPlaythroughScoresCorrectAnswers(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, bankWithScored(3, 2))

	state, err := service.Start(ctx, "v1", "Ana")
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Answer every scored question correctly (with messy casing/whitespace),
	// type something into the open ones.
	for i := 0; i < len(state.Order); i++ {
		q, progress, finished, err := service.Current(ctx, "v1")
		if err != nil {
			t.Fatalf("current at %d: %v", i, err)
		}
		if finished {
			t.Fatalf("finished early at position %d", i)
		}
		if progress.Index != i+1 || progress.Total != len(state.Order) {
			t.Fatalf("expected progress %d/%d, got %d/%d", i+1, len(state.Order), progress.Index, progress.Total)
		}

		answer := "anything goes"
		if q.Scored() {
			answer = "  " + q.Correct + " " // normalization must absorb this
		}
		if state, err = service.Advance(ctx, "v1", answer); err != nil {
			t.Fatalf("advance at %d: %v", i, err)
		}
		if state.Position != i+1 {
			t.Fatalf("expected position %d, got %d", i+1, state.Position)
		}
	}

	if !state.Finished() {
		t.Fatalf("expected finished after %d advances, got %+v", len(state.Order), state)
	}
	if state.Score != 3 {
		t.Fatalf("expected score 3 (scored questions only), got %d", state.Score)
	}

	if _, _, finished, err := service.Current(ctx, "v1"); err != nil || !finished {
		t.Fatalf("expected finished sentinel, got finished=%v err=%v", finished, err)
	}
}

func TestWrongAndMissingAnswersScoreZero(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, bankWithScored(2, 0))

	state, _ := service.Start(ctx, "v1", "Ana")
	if state, _ = service.Advance(ctx, "v1", "Z"); state.Score != 0 {
		t.Fatalf("wrong letter scored: %+v", state)
	}
	if state, _ = service.Advance(ctx, "v1", ""); state.Score != 0 {
		t.Fatalf("empty answer scored: %+v", state)
	}
	if !state.Finished() {
		t.Fatalf("expected finished, got %+v", state)
	}
}

func TestAdvanceAfterFinishedIsAnError(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, bankWithScored(1, 0))

	if _, err := service.Start(ctx, "v1", "Ana"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Advance(ctx, "v1", "A"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, err := service.Advance(ctx, "v1", "A"); !errors.Is(err, domain.ErrSessionFinished) {
		t.Fatalf("expected ErrSessionFinished, got %v", err)
	}
}

func TestEmptyBankFinishesImmediately(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, nil)

	state, err := service.Start(ctx, "v1", "Ana")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(state.Order) != 0 || !state.Finished() {
		t.Fatalf("expected immediately finished state, got %+v", state)
	}
	if _, _, finished, err := service.Current(ctx, "v1"); err != nil || !finished {
		t.Fatalf("expected finished without any advance, got finished=%v err=%v", finished, err)
	}
}

func TestRecordIsIdempotent(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, bankWithScored(1, 1))

	state, _ := service.Start(ctx, "v1", "X")
	for range state.Order {
		q, _, _, err := service.Current(ctx, "v1")
		if err != nil {
			t.Fatalf("current: %v", err)
		}
		answer := "whatever"
		if q.Scored() {
			answer = "a" // lowercase on purpose
		}
		if _, err := service.Advance(ctx, "v1", answer); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	state, recorded, err := service.Record(ctx, "v1")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !recorded || !state.Saved {
		t.Fatalf("expected first record to persist, got recorded=%v state=%+v", recorded, state)
	}

	if _, recorded, err = service.Record(ctx, "v1"); err != nil || recorded {
		t.Fatalf("expected second record to be a no-op, got recorded=%v err=%v", recorded, err)
	}

	lb, err := service.Ranked(ctx)
	if err != nil {
		t.Fatalf("ranked: %v", err)
	}
	if len(lb.Entries) != 1 {
		t.Fatalf("expected exactly one entry, got %d", len(lb.Entries))
	}
	if lb.Entries[0].Name != "X" || lb.Entries[0].Score != 1 {
		t.Fatalf("expected (X, 1), got %+v", lb.Entries[0])
	}
}

func TestRankedSortsDescending(t *testing.T) {
	ctx := context.Background()
	scores := memory.NewScoreStore()
	service := app.NewQuizService(memory.NewSessionStore(), memory.NewQuestionStore(), scores)

	for _, e := range []struct {
		name  string
		score int
	}{{"Ana", 3}, {"Uli", 5}, {"Leo", 1}} {
		if _, err := scores.Insert(ctx, e.name, e.score); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	lb, err := service.Ranked(ctx)
	if err != nil {
		t.Fatalf("ranked: %v", err)
	}
	want := []string{"Uli", "Ana", "Leo"}
	for i, name := range want {
		if lb.Entries[i].Name != name {
			t.Fatalf("expected %v at rank %d, got %+v", name, i, lb.Entries)
		}
	}
}

func TestRestartDiscardsProgress(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, bankWithScored(2, 0))

	if _, err := service.Start(ctx, "v1", "Ana"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Advance(ctx, "v1", "A"); err != nil {
		t.Fatalf("advance: %v", err)
	}

	state, err := service.Start(ctx, "v1", "Ana")
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if state.Position != 0 || state.Score != 0 || state.Saved {
		t.Fatalf("expected restart to discard progress, got %+v", state)
	}
}

func TestSubscribeReceivesRecordedScores(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, bankWithScored(1, 0))

	ch, cancel, err := service.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	<-ch // initial snapshot

	if _, err := service.Start(ctx, "v1", "Ana"); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := service.Advance(ctx, "v1", "A"); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, _, err := service.Record(ctx, "v1"); err != nil {
		t.Fatalf("record: %v", err)
	}

	update := <-ch
	if len(update.Entries) != 1 || update.Entries[0].Score != 1 {
		t.Fatalf("expected broadcast with score 1, got %+v", update.Entries)
	}
}

func TestStartDefaultsAnonymous(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService(t, bankWithScored(0, 1))

	state, err := service.Start(ctx, "v1", "")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if state.Name != "Anonymous" {
		t.Fatalf("expected Anonymous, got %q", state.Name)
	}
}

// newTestService wires the service against in-memory stores with a fixed
// shuffle seed.
func newTestService(t *testing.T, questions []domain.Question) (*app.QuizService, *memory.QuestionStore) {
	t.Helper()
	store := memory.NewQuestionStore()
	if err := store.Seed(context.Background(), questions); err != nil {
		t.Fatalf("seed: %v", err)
	}
	service := app.NewQuizServiceWithRand(
		memory.NewSessionStore(),
		store,
		memory.NewScoreStore(),
		rand.New(rand.NewSource(42)),
	)
	return service, store
}

// bankWithScored builds scored questions (MCQ answered by "A") plus open ones.
func bankWithScored(scored, open int) []domain.Question {
	questions := make([]domain.Question, 0, scored+open)
	for i := 0; i < scored; i++ {
		questions = append(questions, domain.Question{
			Text:    "Pick the first option",
			Type:    domain.TypeMCQ,
			OptionA: "Right",
			OptionB: "Wrong",
			Correct: "A",
		})
	}
	for i := 0; i < open; i++ {
		questions = append(questions, domain.Question{
			Text: "Tell us something",
			Type: domain.TypeOpen,
		})
	}
	return questions
}
