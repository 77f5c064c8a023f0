package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamRogowski/LanguageLearningApp/internal/database"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
)

// LessonRepository handles database operations for lessons, words and languages
type LessonRepository struct {
	db database.DBTX
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db database.DBTX) *LessonRepository {
	return &LessonRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *LessonRepository) WithTx(tx *database.Tx) *LessonRepository {
	return &LessonRepository{db: tx}
}

// GetOrCreateLanguage finds a language by name, creating it when absent
func (r *LessonRepository) GetOrCreateLanguage(name string) (*models.Language, error) {
	lang := &models.Language{}
	err := r.db.QueryRow("SELECT id, name FROM languages WHERE name = ?", name).Scan(&lang.ID, &lang.Name)
	if err == nil {
		return lang, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to look up language: %w", err)
	}

	id, err := r.db.ExecReturningID("INSERT INTO languages (name) VALUES (?)", name)
	if err != nil {
		return nil, fmt.Errorf("failed to create language: %w", err)
	}
	return &models.Language{ID: id, Name: name}, nil
}

// CreateLesson inserts a lesson and returns it
func (r *LessonRepository) CreateLesson(l *models.Lesson) (*models.Lesson, error) {
	query := `
		INSERT INTO lessons (title, description, prompt_language_id, translation_language_id, is_public, created_by)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		l.Title, l.Description, l.PromptLanguageID, l.TranslationLanguageID, l.IsPublic, l.CreatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create lesson: %w", err)
	}

	created := *l
	created.ID = id
	created.CreatedAt = time.Now()
	return &created, nil
}

// GetLesson retrieves a lesson by id, or nil when absent
func (r *LessonRepository) GetLesson(id int64) (*models.Lesson, error) {
	query := `
		SELECT id, title, description, prompt_language_id, translation_language_id, is_public, created_by, created_at
		FROM lessons
		WHERE id = ?
	`
	l := &models.Lesson{}
	err := r.db.QueryRow(query, id).Scan(
		&l.ID, &l.Title, &l.Description, &l.PromptLanguageID, &l.TranslationLanguageID,
		&l.IsPublic, &l.CreatedBy, &l.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return l, nil
}

// AddWord inserts one word into a lesson
func (r *LessonRepository) AddWord(w *models.Word) (*models.Word, error) {
	query := `
		INSERT INTO words (lesson_id, prompt, translation, usage_text, hint)
		VALUES (?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, w.LessonID, w.Prompt, w.Translation, w.Usage, w.Hint)
	if err != nil {
		return nil, fmt.Errorf("failed to add word: %w", err)
	}

	created := *w
	created.ID = id
	return &created, nil
}

// GetWord retrieves one word, or nil when absent
func (r *LessonRepository) GetWord(id int64) (*models.Word, error) {
	query := `
		SELECT id, lesson_id, prompt, translation, usage_text, hint
		FROM words
		WHERE id = ?
	`
	w := &models.Word{}
	err := r.db.QueryRow(query, id).Scan(&w.ID, &w.LessonID, &w.Prompt, &w.Translation, &w.Usage, &w.Hint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get word: %w", err)
	}
	return w, nil
}

// GetLessonWords retrieves all words of a lesson in insertion order
func (r *LessonRepository) GetLessonWords(lessonID int64) ([]models.Word, error) {
	query := `
		SELECT id, lesson_id, prompt, translation, usage_text, hint
		FROM words
		WHERE lesson_id = ?
		ORDER BY id
	`
	rows, err := r.db.Query(query, lessonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	defer rows.Close()

	var words []models.Word
	for rows.Next() {
		var w models.Word
		if err := rows.Scan(&w.ID, &w.LessonID, &w.Prompt, &w.Translation, &w.Usage, &w.Hint); err != nil {
			return nil, err
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

// DeleteLesson removes a lesson and, via cascades, its words and enrollments
func (r *LessonRepository) DeleteLesson(id int64) error {
	if _, err := r.db.Exec("DELETE FROM lessons WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete lesson: %w", err)
	}
	return nil
}
