package handlers

import (
	"net/http"

	"github.com/AdamRogowski/LanguageLearningApp/internal/service"
)

// LessonHandler handles lesson authoring and enrollment settings
type LessonHandler struct {
	lessons  *service.LessonService
	practice *service.PracticeService
}

// NewLessonHandler creates a new lesson handler
func NewLessonHandler(lessons *service.LessonService, practice *service.PracticeService) *LessonHandler {
	return &LessonHandler{lessons: lessons, practice: practice}
}

// Create handles POST /api/lessons
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.LessonInput
	if err := decodeJSON(r, &input); err != nil {
		respondError(w, r, err)
		return
	}

	enrollment, err := h.lessons.Create(userID(r), input)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]int64{
		"enrollment_id": enrollment.ID,
		"lesson_id":     enrollment.LessonID,
	})
}

// Get handles GET /api/lessons/{id} (id is the enrollment id)
func (h *LessonHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	lesson, enrollment, err := h.lessons.GetWithWords(userID(r), id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	type wordView struct {
		ID          int64  `json:"id"`
		Prompt      string `json:"prompt"`
		Translation string `json:"translation"`
		Usage       string `json:"usage,omitempty"`
		Hint        string `json:"hint,omitempty"`
	}
	words := make([]wordView, 0, len(lesson.Words))
	for _, word := range lesson.Words {
		words = append(words, wordView{
			ID:          word.ID,
			Prompt:      word.Prompt,
			Translation: word.Translation,
			Usage:       word.Usage,
			Hint:        word.Hint,
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"enrollment_id":        enrollment.ID,
		"title":                lesson.Lesson.Title,
		"description":          lesson.Lesson.Description,
		"target_progress":      enrollment.TargetProgress,
		"practice_window":      enrollment.PracticeWindow,
		"allowed_error_margin": enrollment.AllowedErrorMargin,
		"words":                words,
	})
}

// UpdateSettings handles POST /api/lessons/{id}/settings
func (h *LessonHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		TargetProgress     int `json:"target_progress"`
		PracticeWindow     int `json:"practice_window"`
		AllowedErrorMargin int `json:"allowed_error_margin"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.lessons.UpdateSettings(userID(r), id, req.TargetProgress, req.PracticeWindow, req.AllowedErrorMargin); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ResetProgress handles POST /api/lessons/{id}/reset
func (h *LessonHandler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.practice.ResetProgress(r.Context(), userID(r), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// Delete handles POST /api/lessons/{id}/delete
func (h *LessonHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		DeleteLesson bool `json:"delete_lesson"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.lessons.DeleteEnrollment(userID(r), id, req.DeleteLesson); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
