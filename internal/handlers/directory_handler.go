package handlers

import (
	"net/http"

	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
	"github.com/AdamRogowski/LanguageLearningApp/internal/service"
)

// DirectoryHandler handles folder-tree requests
type DirectoryHandler struct {
	dirs *service.DirectoryService
}

// NewDirectoryHandler creates a new directory handler
func NewDirectoryHandler(dirs *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{dirs: dirs}
}

type directoryView struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	IsRoot bool   `json:"is_root"`
}

type enrollmentView struct {
	ID            int64  `json:"id"`
	LessonTitle   string `json:"lesson_title"`
	TotalWords    int    `json:"total_words"`
	MasteredWords int    `json:"mastered_words"`
}

type listingResponse struct {
	Directory      directoryView            `json:"directory"`
	Subdirectories []directoryView          `json:"subdirectories"`
	Lessons        []enrollmentView         `json:"lessons"`
	Breadcrumb     []models.BreadcrumbEntry `json:"breadcrumb"`
}

func toDirectoryView(d models.Directory) directoryView {
	return directoryView{ID: d.ID, Name: d.Name, IsRoot: d.IsRoot}
}

// Root handles GET /api/directories and serves the root listing, creating
// the root folder on first touch
func (h *DirectoryHandler) Root(w http.ResponseWriter, r *http.Request) {
	root, err := h.dirs.GetOrCreateRoot(userID(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondListing(w, r, root.ID)
}

// Get handles GET /api/directories/{id}
func (h *DirectoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	h.respondListing(w, r, id)
}

func (h *DirectoryHandler) respondListing(w http.ResponseWriter, r *http.Request, dirID int64) {
	listing, err := h.dirs.ListChildren(userID(r), dirID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := listingResponse{
		Directory:      toDirectoryView(listing.Directory),
		Subdirectories: make([]directoryView, 0, len(listing.Subdirectories)),
		Lessons:        make([]enrollmentView, 0, len(listing.Enrollments)),
		Breadcrumb:     listing.Breadcrumb,
	}
	for _, d := range listing.Subdirectories {
		resp.Subdirectories = append(resp.Subdirectories, toDirectoryView(d))
	}
	for _, e := range listing.Enrollments {
		resp.Lessons = append(resp.Lessons, enrollmentView{
			ID:            e.Enrollment.ID,
			LessonTitle:   e.LessonTitle,
			TotalWords:    e.TotalWords,
			MasteredWords: e.MasteredWords,
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// Create handles POST /api/directories
func (h *DirectoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ParentID int64  `json:"parent_id"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	dir, err := h.dirs.Create(userID(r), req.ParentID, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toDirectoryView(*dir))
}

// Rename handles POST /api/directories/{id}/rename
func (h *DirectoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.dirs.Rename(userID(r), id, req.Name); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

// Move handles POST /api/directories/{id}/move
func (h *DirectoryHandler) Move(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		NewParentID int64 `json:"new_parent_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	moved, err := h.dirs.Move(userID(r), id, req.NewParentID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	status := "moved"
	if !moved {
		status = "already there"
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": status})
}

// Delete handles POST /api/directories/{id}/delete
func (h *DirectoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		Strategy string `json:"strategy"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	strategy, err := service.ParseDeleteStrategy(req.Strategy)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.dirs.Delete(userID(r), id, strategy); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// MoveLesson handles POST /api/lessons/{id}/move
func (h *DirectoryHandler) MoveLesson(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req struct {
		DirectoryID int64 `json:"directory_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.dirs.MoveEnrollment(userID(r), id, req.DirectoryID); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}
