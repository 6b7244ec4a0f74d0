package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"

	"quiznight/internal/app"
	"quiznight/internal/domain"
)

const sessionCookie = "quiz_session"

// Handler exposes the quiz flow over HTTP: start a session, step through the
// questions, then view the leaderboard. Responses are JSON; the redirects
// between the steps are real 303s so a plain form frontend works against it.
type Handler struct {
	service *app.QuizService
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{service: service}
}

// Register wires the quiz routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/start", h.handleStart)
	mux.HandleFunc("/play", h.handlePlay)
	mux.HandleFunc("/leaderboard", h.handleLeaderboard)
}

// handleStart creates fresh session state for the visitor, overwriting any
// quiz already in flight, and sends them into the play flow.
func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	sessionID := h.sessionID(r)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if _, err := h.service.Start(r.Context(), sessionID, r.PostFormValue("name")); err != nil {
		h.fail(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/play", http.StatusSeeOther)
}

type playResponse struct {
	Question domain.Question `json:"question"`
	Progress app.Progress    `json:"progress"`
}

// handlePlay shows the current question on GET and applies an answer on
// POST. Finished (or never-started) sessions are routed to the leaderboard
// instead of ever advancing past the end.
func (h *Handler) handlePlay(w http.ResponseWriter, r *http.Request) {
	sessionID := h.sessionID(r)
	if sessionID == "" {
		http.Redirect(w, r, "/leaderboard", http.StatusSeeOther)
		return
	}

	question, progress, finished, err := h.service.Current(r.Context(), sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Redirect(w, r, "/leaderboard", http.StatusSeeOther)
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	if finished {
		http.Redirect(w, r, "/leaderboard", http.StatusSeeOther)
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, playResponse{Question: question, Progress: progress})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		if _, err := h.service.Advance(r.Context(), sessionID, r.PostFormValue("answer")); err != nil {
			h.fail(w, err)
			return
		}
		http.Redirect(w, r, "/play", http.StatusSeeOther)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type leaderboardResponse struct {
	Entries []domain.ScoreEntry `json:"entries"`
	Name    string              `json:"name,omitempty"`
	Score   int                 `json:"score"`
}

// handleLeaderboard records the visitor's finished score (first visit only,
// later visits are no-ops) and returns the ranked history alongside their
// own result.
func (h *Handler) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var name string
	var score int
	if sessionID := h.sessionID(r); sessionID != "" {
		state, _, err := h.service.Record(r.Context(), sessionID)
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			// Nothing to record; plain leaderboard view.
		case err != nil:
			h.fail(w, err)
			return
		default:
			name = state.Name
			score = state.Score
		}
	}

	lb, err := h.service.Ranked(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, leaderboardResponse{Entries: lb.Entries, Name: name, Score: score})
}

func (h *Handler) sessionID(r *http.Request) string {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// fail maps domain errors to status codes without leaking details; fatal
// session errors force the visitor to restart rather than silently skipping.
func (h *Handler) fail(w http.ResponseWriter, err error) {
	log.Printf("quiz handler error: %v", err)
	switch {
	case errors.Is(err, domain.ErrSessionFinished):
		http.Error(w, "quiz already finished", http.StatusConflict)
	case errors.Is(err, domain.ErrQuestionNotFound):
		http.Error(w, "quiz data changed, please restart", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}
