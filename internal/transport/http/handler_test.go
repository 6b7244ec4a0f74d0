package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"quiznight/internal/app"
	"quiznight/internal/domain"
	"quiznight/internal/infra/memory"
)

func TestQuizFlowEndToEnd(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()
	client := newClientWithJar(t)

	// Start a quiz as X. The redirect chain lands on /play.
	resp, err := client.PostForm(server.URL+"/start", url.Values{"name": {"X"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	var play playResponse
	decodeBody(t, resp, &play)
	if play.Progress.Index != 1 || play.Progress.Total != 2 {
		t.Fatalf("expected progress 1/2, got %+v", play.Progress)
	}

	// Answer both questions with "a": scores the MCQ (correct letter A,
	// case-insensitive), ignored for the open question.
	var lb leaderboardResponse
	for i := 0; i < 2; i++ {
		resp, err := client.PostForm(server.URL+"/play", url.Values{"answer": {"a"}})
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if i == 0 {
			decodeBody(t, resp, &play)
			if play.Progress.Index != 2 {
				t.Fatalf("expected progress 2/2 after first answer, got %+v", play.Progress)
			}
		} else {
			// The final redirect chain ends on the leaderboard.
			decodeBody(t, resp, &lb)
		}
	}

	if lb.Name != "X" || lb.Score != 1 {
		t.Fatalf("expected X with score 1, got %+v", lb)
	}
	if len(lb.Entries) != 1 || lb.Entries[0].Name != "X" || lb.Entries[0].Score != 1 {
		t.Fatalf("expected one recorded entry (X, 1), got %+v", lb.Entries)
	}

	// Revisiting the leaderboard must not add a second row.
	resp, err = client.Get(server.URL + "/leaderboard")
	if err != nil {
		t.Fatalf("leaderboard revisit: %v", err)
	}
	decodeBody(t, resp, &lb)
	if len(lb.Entries) != 1 {
		t.Fatalf("expected still one entry after revisit, got %d", len(lb.Entries))
	}
}

func TestPlayDoesNotLeakCorrectAnswer(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()
	client := newClientWithJar(t)

	resp, err := client.PostForm(server.URL+"/start", url.Values{"name": {"Ana"}})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(strings.ToLower(string(body)), "correct") {
		t.Fatalf("question payload leaks the correct answer: %s", body)
	}
}

func TestPlayWithoutSessionGoesToLeaderboard(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	// No cookie jar, no session: /play should route to the leaderboard
	// without recording anything.
	resp, err := http.Get(server.URL + "/play")
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	var lb leaderboardResponse
	decodeBody(t, resp, &lb)
	if lb.Name != "" || len(lb.Entries) != 0 {
		t.Fatalf("expected empty leaderboard view, got %+v", lb)
	}
}

func TestStartRequiresPost(t *testing.T) {
	server, _ := newTestServer(t)
	defer server.Close()

	resp, err := http.Get(server.URL + "/start")
	if err != nil {
		t.Fatalf("get start: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *app.QuizService) {
	t.Helper()
	store := memory.NewQuestionStore()
	err := store.Seed(context.Background(), []domain.Question{
		{Text: "Pick A", Type: domain.TypeMCQ, OptionA: "Right", OptionB: "Wrong", Correct: "A"},
		{Text: "Say anything", Type: domain.TypeOpen},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	service := app.NewQuizService(memory.NewSessionStore(), store, memory.NewScoreStore())

	mux := http.NewServeMux()
	NewHandler(service).Register(mux)
	return httptest.NewServer(mux), service
}

func newClientWithJar(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode body: %v", err)
	}
}
