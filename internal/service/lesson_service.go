package service

import (
	"fmt"
	"strings"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
	"github.com/AdamRogowski/LanguageLearningApp/internal/database"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
	"github.com/AdamRogowski/LanguageLearningApp/internal/repository"
)

// WordInput is one word of a lesson being authored
type WordInput struct {
	Prompt      string `json:"prompt"`
	Translation string `json:"translation"`
	Usage       string `json:"usage,omitempty"`
	Hint        string `json:"hint,omitempty"`
}

// LessonInput is a lesson being authored, together with the author's
// enrollment settings
type LessonInput struct {
	Title               string      `json:"title"`
	Description         string      `json:"description,omitempty"`
	PromptLanguage      string      `json:"prompt_language"`
	TranslationLanguage string      `json:"translation_language"`
	IsPublic            bool        `json:"is_public"`
	Words               []WordInput `json:"words"`
	DirectoryID         *int64      `json:"directory_id,omitempty"`
	TargetProgress      int         `json:"target_progress"`
	PracticeWindow      int         `json:"practice_window"`
	AllowedErrorMargin  int         `json:"allowed_error_margin"`
}

// LessonService is the catalog boundary: lesson authoring and the
// enrollment bookkeeping the practice engine reads from
type LessonService struct {
	db          *database.DB
	lessons     *repository.LessonRepository
	enrollments *repository.EnrollmentRepository
	dirs        *repository.DirectoryRepository
}

// NewLessonService creates a new lesson service
func NewLessonService(db *database.DB, lessons *repository.LessonRepository, enrollments *repository.EnrollmentRepository, dirs *repository.DirectoryRepository) *LessonService {
	return &LessonService{db: db, lessons: lessons, enrollments: enrollments, dirs: dirs}
}

// Create authors a lesson with its words and enrolls the author in it.
// Everything commits in one transaction so a half-written lesson never
// becomes visible.
func (s *LessonService) Create(userID int64, input LessonInput) (*models.Enrollment, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, apperr.Validation("lesson title must not be empty")
	}
	if strings.TrimSpace(input.PromptLanguage) == "" || strings.TrimSpace(input.TranslationLanguage) == "" {
		return nil, apperr.Validation("both languages are required")
	}
	if len(input.Words) == 0 {
		return nil, apperr.Validation("a lesson needs at least one word")
	}
	for i, w := range input.Words {
		if strings.TrimSpace(w.Prompt) == "" || strings.TrimSpace(w.Translation) == "" {
			return nil, apperr.Validation("word %d needs both a prompt and a translation", i+1)
		}
	}
	if err := validateEnrollmentSettings(input.TargetProgress, input.PracticeWindow, input.AllowedErrorMargin); err != nil {
		return nil, err
	}

	if input.DirectoryID != nil {
		dir, err := s.dirs.GetByID(*input.DirectoryID, userID)
		if err != nil {
			return nil, err
		}
		if dir == nil {
			return nil, apperr.NotFound("folder not found")
		}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lessons := s.lessons.WithTx(tx)
	enrollments := s.enrollments.WithTx(tx)

	promptLang, err := lessons.GetOrCreateLanguage(strings.TrimSpace(input.PromptLanguage))
	if err != nil {
		return nil, err
	}
	translationLang, err := lessons.GetOrCreateLanguage(strings.TrimSpace(input.TranslationLanguage))
	if err != nil {
		return nil, err
	}

	lesson, err := lessons.CreateLesson(&models.Lesson{
		Title:                 input.Title,
		Description:           strings.TrimSpace(input.Description),
		PromptLanguageID:      promptLang.ID,
		TranslationLanguageID: translationLang.ID,
		IsPublic:              input.IsPublic,
		CreatedBy:             userID,
	})
	if err != nil {
		return nil, err
	}

	for _, w := range input.Words {
		_, err := lessons.AddWord(&models.Word{
			LessonID:    lesson.ID,
			Prompt:      strings.TrimSpace(w.Prompt),
			Translation: strings.TrimSpace(w.Translation),
			Usage:       strings.TrimSpace(w.Usage),
			Hint:        strings.TrimSpace(w.Hint),
		})
		if err != nil {
			return nil, err
		}
	}

	enrollment, err := enrollments.Create(&models.Enrollment{
		OwnerID:            userID,
		LessonID:           lesson.ID,
		DirectoryID:        input.DirectoryID,
		TargetProgress:     input.TargetProgress,
		PracticeWindow:     input.PracticeWindow,
		AllowedErrorMargin: input.AllowedErrorMargin,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return enrollment, nil
}

// Enroll binds a user to an existing lesson (their own or a public one)
func (s *LessonService) Enroll(userID, lessonID int64, directoryID *int64, targetProgress, practiceWindow, margin int) (*models.Enrollment, error) {
	if err := validateEnrollmentSettings(targetProgress, practiceWindow, margin); err != nil {
		return nil, err
	}

	lesson, err := s.lessons.GetLesson(lessonID)
	if err != nil {
		return nil, err
	}
	if lesson == nil {
		return nil, apperr.NotFound("lesson not found")
	}
	if !lesson.IsPublic && lesson.CreatedBy != userID {
		return nil, apperr.Forbidden("this lesson is not shared")
	}

	existing, err := s.enrollments.GetByOwnerAndLesson(userID, lessonID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Validation("already enrolled in this lesson")
	}

	return s.enrollments.Create(&models.Enrollment{
		OwnerID:            userID,
		LessonID:           lessonID,
		DirectoryID:        directoryID,
		TargetProgress:     targetProgress,
		PracticeWindow:     practiceWindow,
		AllowedErrorMargin: margin,
	})
}

// UpdateSettings changes an enrollment's practice parameters
func (s *LessonService) UpdateSettings(userID, enrollmentID int64, targetProgress, practiceWindow, margin int) error {
	if err := validateEnrollmentSettings(targetProgress, practiceWindow, margin); err != nil {
		return err
	}

	enrollment, err := s.enrollments.GetByID(enrollmentID)
	if err != nil {
		return err
	}
	if enrollment == nil || enrollment.OwnerID != userID {
		return apperr.NotFound("lesson not found")
	}

	return s.enrollments.UpdateSettings(enrollment.ID, targetProgress, practiceWindow, margin)
}

// GetWithWords returns the lesson behind an enrollment together with its words
func (s *LessonService) GetWithWords(userID, enrollmentID int64) (*models.LessonWithWords, *models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(enrollmentID)
	if err != nil {
		return nil, nil, err
	}
	if enrollment == nil || enrollment.OwnerID != userID {
		return nil, nil, apperr.NotFound("lesson not found")
	}

	lesson, err := s.lessons.GetLesson(enrollment.LessonID)
	if err != nil {
		return nil, nil, err
	}
	if lesson == nil {
		return nil, nil, apperr.NotFound("lesson not found")
	}

	words, err := s.lessons.GetLessonWords(lesson.ID)
	if err != nil {
		return nil, nil, err
	}
	return &models.LessonWithWords{Lesson: *lesson, Words: words}, enrollment, nil
}

// DeleteEnrollment removes a user's binding to a lesson. The shared lesson
// survives unless deleteLesson is set and the caller authored it.
func (s *LessonService) DeleteEnrollment(userID, enrollmentID int64, deleteLesson bool) error {
	enrollment, err := s.enrollments.GetByID(enrollmentID)
	if err != nil {
		return err
	}
	if enrollment == nil || enrollment.OwnerID != userID {
		return apperr.NotFound("lesson not found")
	}

	if deleteLesson {
		lesson, err := s.lessons.GetLesson(enrollment.LessonID)
		if err != nil {
			return err
		}
		if lesson == nil {
			return apperr.NotFound("lesson not found")
		}
		if lesson.CreatedBy != userID {
			return apperr.Forbidden("only the lesson author can delete it")
		}
		// Cascades remove the words and every enrollment, this one included
		return s.lessons.DeleteLesson(lesson.ID)
	}

	return s.enrollments.Delete(enrollment.ID)
}

func validateEnrollmentSettings(targetProgress, practiceWindow, margin int) error {
	if targetProgress < 1 {
		return apperr.Validation("target progress must be at least 1")
	}
	if practiceWindow < 1 {
		return apperr.Validation("practice window must be at least 1")
	}
	if margin < 0 {
		return apperr.Validation("error margin must not be negative")
	}
	return nil
}
