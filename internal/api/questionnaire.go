package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MikeSquared-Agency/Qualis/internal/questionnaire"
	"github.com/MikeSquared-Agency/Qualis/internal/scoring"
)

// QuestionnaireHandler serves the catalogue and stateless scoring.
type QuestionnaireHandler struct {
	engine *scoring.Engine
}

func NewQuestionnaireHandler(e *scoring.Engine) *QuestionnaireHandler {
	return &QuestionnaireHandler{engine: e}
}

func (h *QuestionnaireHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, questionnaire.ToDocument(h.engine.Catalogue()))
}

type ScoreRequest struct {
	Answers scoring.Answers `json:"answers"`
}

type ScoreResponse struct {
	Scores    scoring.Result           `json:"scores"`
	Subscales []scoring.SubscaleResult `json:"subscales"`
	Total     int                      `json:"total"`
	Missing   []string                 `json:"missing"`
}

// Score computes scores for an answer map without persisting anything.
func (h *QuestionnaireHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := scoring.ValidateAnswers(req.Answers); err != nil {
		writeRangeError(w, err)
		return
	}

	b := h.engine.Explain(req.Answers)
	missing := h.engine.Missing(req.Answers)
	if missing == nil {
		missing = []string{}
	}
	writeJSON(w, http.StatusOK, ScoreResponse{
		Scores:    b.Scores(),
		Subscales: b.Subscales,
		Total:     b.Total,
		Missing:   missing,
	})
}

func writeRangeError(w http.ResponseWriter, err error) {
	body := map[string]string{"error": err.Error()}
	var rangeErr *scoring.RangeError
	if errors.As(err, &rangeErr) {
		body["code"] = rangeErr.Code
	}
	writeJSON(w, http.StatusBadRequest, body)
}
