package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamRogowski/LanguageLearningApp/internal/database"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
)

// MasteryRepository is the per-word progress store. Every mutation is a
// single atomic statement.
type MasteryRepository struct {
	db database.DBTX
}

// NewMasteryRepository creates a new mastery repository
func NewMasteryRepository(db database.DBTX) *MasteryRepository {
	return &MasteryRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *MasteryRepository) WithTx(tx *database.Tx) *MasteryRepository {
	return &MasteryRepository{db: tx}
}

// GetByID retrieves one mastery row
func (r *MasteryRepository) GetByID(id int64) (*models.WordMastery, error) {
	query := `
		SELECT id, enrollment_id, word_id, current_progress, notes
		FROM word_mastery
		WHERE id = ?
	`
	m := &models.WordMastery{}
	err := r.db.QueryRow(query, id).Scan(&m.ID, &m.EnrollmentID, &m.WordID, &m.CurrentProgress, &m.Notes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mastery row: %w", err)
	}
	return m, nil
}

// GetOrCreate retrieves the mastery row for (enrollment, word), creating it
// with zero progress when absent
func (r *MasteryRepository) GetOrCreate(enrollmentID, wordID int64) (*models.WordMastery, error) {
	query := `
		SELECT id, enrollment_id, word_id, current_progress, notes
		FROM word_mastery
		WHERE enrollment_id = ? AND word_id = ?
	`
	m := &models.WordMastery{}
	err := r.db.QueryRow(query, enrollmentID, wordID).Scan(&m.ID, &m.EnrollmentID, &m.WordID, &m.CurrentProgress, &m.Notes)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get mastery row: %w", err)
	}

	id, err := r.db.ExecReturningID(
		"INSERT INTO word_mastery (enrollment_id, word_id, current_progress, notes) VALUES (?, ?, 0, '')",
		enrollmentID, wordID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mastery row: %w", err)
	}

	return &models.WordMastery{ID: id, EnrollmentID: enrollmentID, WordID: wordID}, nil
}

// EnsureRows creates mastery rows with zero progress for every lesson word
// that lacks one for this enrollment. A single bulk statement keeps the
// self-healing step atomic.
func (r *MasteryRepository) EnsureRows(enrollmentID int64) error {
	query := `
		INSERT INTO word_mastery (enrollment_id, word_id, current_progress, notes)
		SELECT e.id, w.id, 0, ''
		FROM enrollments e
		JOIN words w ON w.lesson_id = e.lesson_id
		WHERE e.id = ?
		  AND NOT EXISTS (
			SELECT 1 FROM word_mastery m
			WHERE m.enrollment_id = e.id AND m.word_id = w.id
		  )
	`
	if _, err := r.db.Exec(query, enrollmentID); err != nil {
		return fmt.Errorf("failed to backfill mastery rows: %w", err)
	}
	return nil
}

// ListEligibleIDs returns the ids of mastery rows still below the
// enrollment's target progress
func (r *MasteryRepository) ListEligibleIDs(enrollmentID int64) ([]int64, error) {
	query := `
		SELECT m.id
		FROM word_mastery m
		JOIN enrollments e ON e.id = m.enrollment_id
		WHERE m.enrollment_id = ? AND m.current_progress < e.target_progress
		ORDER BY m.id
	`
	rows, err := r.db.Query(query, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible words: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Increment adds one to a word's progress
func (r *MasteryRepository) Increment(id int64) error {
	_, err := r.db.Exec(
		"UPDATE word_mastery SET current_progress = current_progress + 1 WHERE id = ?", id,
	)
	if err != nil {
		return fmt.Errorf("failed to increment progress: %w", err)
	}
	return nil
}

// DecrementFloorZero subtracts one from a word's progress, never below zero
func (r *MasteryRepository) DecrementFloorZero(id int64) error {
	query := `
		UPDATE word_mastery
		SET current_progress = CASE WHEN current_progress > 0 THEN current_progress - 1 ELSE 0 END
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, id); err != nil {
		return fmt.Errorf("failed to decrement progress: %w", err)
	}
	return nil
}

// ResetAll sets every word's progress to zero for an enrollment in one
// statement, so a failed reset never leaves mixed progress
func (r *MasteryRepository) ResetAll(enrollmentID int64) error {
	_, err := r.db.Exec(
		"UPDATE word_mastery SET current_progress = 0 WHERE enrollment_id = ?", enrollmentID,
	)
	if err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}

// UpdateNotes replaces the free-text notes on a mastery row
func (r *MasteryRepository) UpdateNotes(id int64, notes string) error {
	_, err := r.db.Exec("UPDATE word_mastery SET notes = ? WHERE id = ?", notes, id)
	if err != nil {
		return fmt.Errorf("failed to update notes: %w", err)
	}
	return nil
}
