package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"assessment-engine/internal/app"
	"assessment-engine/internal/domain"
	"assessment-engine/internal/render"
	"assessment-engine/internal/report"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the websocket endpoint and the read-only REST API.
func NewRouter(service *app.AttemptService, ws *WSHandler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	api := &apiHandler{service: service}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Logger, middleware.Timeout(30*time.Second))
		r.Route("/quizzes/{quizID}", func(r chi.Router) {
			r.Get("/", api.getQuiz)
			r.Get("/attempts", api.listAttempts)
			r.Get("/attempts.xlsx", api.exportAttempts)
		})
		r.Route("/attempts/{attemptID}", func(r chi.Router) {
			r.Get("/", api.getAttempt)
			r.Get("/report.pdf", api.attemptPDF)
		})
	})
	return r
}

type apiHandler struct {
	service *app.AttemptService
}

// publicQuiz is a quiz as shown before an attempt: no correctness data.
type publicQuiz struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Description      string                `json:"description,omitempty"`
	TimeLimit        int                   `json:"timeLimit"`
	PassingScore     int                   `json:"passingScore"`
	ShuffleQuestions bool                  `json:"shuffleQuestions"`
	AllowRetry       bool                  `json:"allowRetry"`
	TotalPoints      int                   `json:"totalPoints"`
	Questions        []render.QuestionView `json:"questions"`
}

func (a *apiHandler) getQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.service.Quiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	out := publicQuiz{
		ID:               quiz.ID,
		Title:            quiz.Title,
		Description:      quiz.Description,
		TimeLimit:        quiz.TimeLimit,
		PassingScore:     quiz.PassingScore,
		ShuffleQuestions: quiz.ShuffleQuestions,
		AllowRetry:       quiz.AllowRetry,
		TotalPoints:      quiz.TotalPoints(),
		Questions:        make([]render.QuestionView, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		out.Questions = append(out.Questions, render.Question(q, domain.Response{}, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *apiHandler) listAttempts(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		writeErr(w, http.StatusBadRequest, "missing userId")
		return
	}
	history, err := a.service.History(r.Context(), chi.URLParam(r, "quizID"), userID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}

func (a *apiHandler) exportAttempts(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.service.Quiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	attempts, err := a.service.Attempts(r.Context(), quiz.ID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteAttemptsXLSX(&buf, quiz, attempts); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", quiz.ID+"-attempts.xlsx"))
	_, _ = w.Write(buf.Bytes())
}

func (a *apiHandler) getAttempt(w http.ResponseWriter, r *http.Request) {
	attempt, err := a.service.Attempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attempt)
}

func (a *apiHandler) attemptPDF(w http.ResponseWriter, r *http.Request) {
	attempt, err := a.service.Attempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	quiz, err := a.service.Quiz(r.Context(), attempt.QuizID)
	if err != nil {
		writeServiceErr(w, err)
		return
	}

	var buf bytes.Buffer
	if err := report.New(quiz, attempt, report.Actions{}).WritePDF(&buf); err != nil {
		writeServiceErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", attempt.ID+".pdf"))
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error string `json:"error"`
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errResp{Error: msg})
}

func writeServiceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrAttemptNotFound), errors.Is(err, domain.ErrSessionNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidQuiz), errors.Is(err, domain.ErrUnsupportedQuestionType):
		writeErr(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrAlreadyPassed), errors.Is(err, domain.ErrRetryNotAllowed):
		writeErr(w, http.StatusConflict, err.Error())
	default:
		log.Printf("api error: %v", err)
		writeErr(w, http.StatusInternalServerError, "internal error")
	}
}
