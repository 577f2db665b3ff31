package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Qualis/internal/intake"
	"github.com/MikeSquared-Agency/Qualis/internal/scoring"
	"github.com/MikeSquared-Agency/Qualis/internal/store"
)

type AssessmentsHandler struct {
	service *intake.Service
	store   store.Store
}

func NewAssessmentsHandler(svc *intake.Service, s store.Store) *AssessmentsHandler {
	return &AssessmentsHandler{service: svc, store: s}
}

type CreateAssessmentRequest struct {
	ParticipantID string          `json:"participant_id"`
	Questionnaire string          `json:"questionnaire,omitempty"`
	Timepoint     string          `json:"timepoint,omitempty"`
	Answers       scoring.Answers `json:"answers"`
}

func (h *AssessmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.service.Submit(r.Context(), intake.Submission{
		ParticipantID: req.ParticipantID,
		Questionnaire: req.Questionnaire,
		Timepoint:     req.Timepoint,
		Answers:       req.Answers,
		Source:        store.SourceAPI,
		SubmittedBy:   r.Header.Get(HeaderClientID),
	})
	if err != nil {
		var invalid *intake.InvalidError
		if errors.As(err, &invalid) {
			body := map[string]string{"error": invalid.Error(), "reason": invalid.Reason}
			var rangeErr *scoring.RangeError
			if errors.As(err, &rangeErr) {
				body["code"] = rangeErr.Code
			}
			writeJSON(w, http.StatusBadRequest, body)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

func (h *AssessmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.AssessmentFilter{
		ParticipantID: q.Get("participant_id"),
		Questionnaire: q.Get("questionnaire"),
		Timepoint:     q.Get("timepoint"),
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid limit")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid offset")
		return
	}

	list, err := h.store.ListAssessments(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []*store.Assessment{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *AssessmentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid assessment ID")
		return
	}

	a, err := h.store.GetAssessment(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "assessment not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// intParam parses an optional non-negative integer query parameter.
func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("negative value")
	}
	return n, nil
}
