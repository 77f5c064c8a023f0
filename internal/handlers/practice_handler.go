package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
	"github.com/AdamRogowski/LanguageLearningApp/internal/service"
)

// PracticeHandler handles the practice session flow
type PracticeHandler struct {
	practice *service.PracticeService
}

// NewPracticeHandler creates a new practice handler
func NewPracticeHandler(practice *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practice: practice}
}

// mode reads the practice mode from the query string; unknown values fall
// back to normal
func mode(r *http.Request) service.Mode {
	return service.NormalizeMode(r.URL.Query().Get("mode"))
}

// Start handles POST /api/practice/{id}/start?mode=
func (h *PracticeHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	started, err := h.practice.Start(r.Context(), userID(r), id, mode(r))
	if err != nil {
		respondError(w, r, err)
		return
	}

	if !started {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"started": false,
			"message": "Target progress has been reached for all words. Reset progress or raise the target in lesson settings.",
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"started": true})
}

// Question handles GET /api/practice/{id}/question?mode=
func (h *PracticeHandler) Question(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	question, err := h.practice.CurrentQuestion(r.Context(), userID(r), id, mode(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, question)
}

// Submit handles POST /api/practice/{id}/submit?mode=
func (h *PracticeHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Answer string `json:"answer"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	feedback, err := h.practice.Submit(r.Context(), userID(r), id, mode(r), req.Answer)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, feedback)
}

// Acknowledge handles POST /api/practice/{id}/acknowledge?mode=
func (h *PracticeHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	// The accept flag is optional; an empty body means a plain acknowledge.
	var req struct {
		AcceptAsCorrect bool `json:"accept_as_correct"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		respondError(w, r, apperr.Validation("invalid request body"))
		return
	}

	result, err := h.practice.Acknowledge(r.Context(), userID(r), id, mode(r), req.AcceptAsCorrect)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if !result.Acknowledged {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"acknowledged": false,
			"message":      "nothing to acknowledge",
		})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Cancel handles POST /api/practice/{id}/cancel?mode=
func (h *PracticeHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.practice.Cancel(r.Context(), userID(r), id, mode(r)); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
