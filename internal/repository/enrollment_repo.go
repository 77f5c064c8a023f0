package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AdamRogowski/LanguageLearningApp/internal/database"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
)

// EnrollmentRepository handles database operations for lesson enrollments
type EnrollmentRepository struct {
	db database.DBTX
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db database.DBTX) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *EnrollmentRepository) WithTx(tx *database.Tx) *EnrollmentRepository {
	return &EnrollmentRepository{db: tx}
}

// Create inserts an enrollment binding a user to a lesson
func (r *EnrollmentRepository) Create(e *models.Enrollment) (*models.Enrollment, error) {
	query := `
		INSERT INTO enrollments (owner_id, lesson_id, directory_id, target_progress, practice_window, allowed_error_margin)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		e.OwnerID, e.LessonID, e.DirectoryID, e.TargetProgress, e.PracticeWindow, e.AllowedErrorMargin,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	created := *e
	created.ID = id
	created.CreatedAt = time.Now()
	return &created, nil
}

// GetByID retrieves an enrollment by id, or nil when absent
func (r *EnrollmentRepository) GetByID(id int64) (*models.Enrollment, error) {
	query := `
		SELECT id, owner_id, lesson_id, directory_id, target_progress, practice_window, allowed_error_margin, created_at
		FROM enrollments
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByOwnerAndLesson retrieves a user's enrollment in a lesson, or nil
func (r *EnrollmentRepository) GetByOwnerAndLesson(ownerID, lessonID int64) (*models.Enrollment, error) {
	query := `
		SELECT id, owner_id, lesson_id, directory_id, target_progress, practice_window, allowed_error_margin, created_at
		FROM enrollments
		WHERE owner_id = ? AND lesson_id = ?
	`
	return r.scanOne(r.db.QueryRow(query, ownerID, lessonID))
}

// ListByDirectory retrieves enrollment overviews for one directory, with
// word counts and mastered counts aggregated in a single query.
// A nil directoryID lists enrollments not linked to any directory (orphans
// surfaced in the root).
func (r *EnrollmentRepository) ListByDirectory(ownerID int64, directoryID *int64) ([]models.EnrollmentOverview, error) {
	query := `
		SELECT e.id, e.owner_id, e.lesson_id, e.directory_id, e.target_progress, e.practice_window,
		       e.allowed_error_margin, e.created_at, l.title,
		       (SELECT COUNT(*) FROM words w WHERE w.lesson_id = e.lesson_id),
		       (SELECT COUNT(*) FROM word_mastery m WHERE m.enrollment_id = e.id AND m.current_progress >= e.target_progress)
		FROM enrollments e
		JOIN lessons l ON l.id = e.lesson_id
		WHERE e.owner_id = ?
	`
	args := []interface{}{ownerID}
	if directoryID != nil {
		query += " AND e.directory_id = ?"
		args = append(args, *directoryID)
	} else {
		query += " AND e.directory_id IS NULL"
	}
	query += " ORDER BY LOWER(l.title)"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	var overviews []models.EnrollmentOverview
	for rows.Next() {
		var o models.EnrollmentOverview
		var dirID sql.NullInt64
		err := rows.Scan(
			&o.Enrollment.ID, &o.Enrollment.OwnerID, &o.Enrollment.LessonID, &dirID,
			&o.Enrollment.TargetProgress, &o.Enrollment.PracticeWindow, &o.Enrollment.AllowedErrorMargin,
			&o.Enrollment.CreatedAt, &o.LessonTitle, &o.TotalWords, &o.MasteredWords,
		)
		if err != nil {
			return nil, err
		}
		if dirID.Valid {
			o.Enrollment.DirectoryID = &dirID.Int64
		}
		overviews = append(overviews, o)
	}
	return overviews, rows.Err()
}

// UpdateSettings changes the practice parameters of an enrollment
func (r *EnrollmentRepository) UpdateSettings(id int64, targetProgress, practiceWindow, allowedErrorMargin int) error {
	query := `
		UPDATE enrollments
		SET target_progress = ?, practice_window = ?, allowed_error_margin = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, targetProgress, practiceWindow, allowedErrorMargin, id); err != nil {
		return fmt.Errorf("failed to update enrollment settings: %w", err)
	}
	return nil
}

// UpdateDirectory relinks an enrollment to a different directory
func (r *EnrollmentRepository) UpdateDirectory(id int64, directoryID *int64) error {
	if _, err := r.db.Exec("UPDATE enrollments SET directory_id = ? WHERE id = ?", directoryID, id); err != nil {
		return fmt.Errorf("failed to move enrollment: %w", err)
	}
	return nil
}

// ReparentByDirectory relinks every enrollment in one directory to another
func (r *EnrollmentRepository) ReparentByDirectory(fromDirectoryID, toDirectoryID int64) error {
	_, err := r.db.Exec(
		"UPDATE enrollments SET directory_id = ? WHERE directory_id = ?",
		toDirectoryID, fromDirectoryID,
	)
	if err != nil {
		return fmt.Errorf("failed to reparent enrollments: %w", err)
	}
	return nil
}

// DeleteByDirectories removes all enrollments linked to the given directories
func (r *EnrollmentRepository) DeleteByDirectories(directoryIDs []int64) error {
	if len(directoryIDs) == 0 {
		return nil
	}
	query := "DELETE FROM enrollments WHERE directory_id IN (" + placeholders(len(directoryIDs)) + ")"
	args := make([]interface{}, len(directoryIDs))
	for i, id := range directoryIDs {
		args[i] = id
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete enrollments: %w", err)
	}
	return nil
}

// Delete removes one enrollment; the shared lesson survives
func (r *EnrollmentRepository) Delete(id int64) error {
	if _, err := r.db.Exec("DELETE FROM enrollments WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return nil
}

func (r *EnrollmentRepository) scanOne(row *sql.Row) (*models.Enrollment, error) {
	e := &models.Enrollment{}
	var dirID sql.NullInt64
	err := row.Scan(
		&e.ID, &e.OwnerID, &e.LessonID, &dirID,
		&e.TargetProgress, &e.PracticeWindow, &e.AllowedErrorMargin, &e.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", err)
	}
	if dirID.Valid {
		e.DirectoryID = &dirID.Int64
	}
	return e, nil
}
