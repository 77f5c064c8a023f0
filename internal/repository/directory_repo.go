package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AdamRogowski/LanguageLearningApp/internal/database"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
)

// RootDirectoryName is the fixed name of every user's root folder
const RootDirectoryName = "Home"

// DirectoryRepository handles database operations for the directory tree
type DirectoryRepository struct {
	db database.DBTX
}

// NewDirectoryRepository creates a new directory repository
func NewDirectoryRepository(db database.DBTX) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// WithTx returns a copy of the repository bound to a transaction
func (r *DirectoryRepository) WithTx(tx *database.Tx) *DirectoryRepository {
	return &DirectoryRepository{db: tx}
}

// GetByID retrieves a directory owned by the given user.
// Returns nil when it does not exist or belongs to someone else.
func (r *DirectoryRepository) GetByID(id, ownerID int64) (*models.Directory, error) {
	query := `
		SELECT id, owner_id, parent_id, name, is_root
		FROM directories
		WHERE id = ? AND owner_id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id, ownerID))
}

// GetRoot retrieves the user's root directory, or nil if none exists yet
func (r *DirectoryRepository) GetRoot(ownerID int64) (*models.Directory, error) {
	query := `
		SELECT id, owner_id, parent_id, name, is_root
		FROM directories
		WHERE owner_id = ? AND is_root = ?
	`
	return r.scanOne(r.db.QueryRow(query, ownerID, true))
}

// Create inserts a directory and returns it
func (r *DirectoryRepository) Create(ownerID int64, parentID *int64, name string, isRoot bool) (*models.Directory, error) {
	query := `
		INSERT INTO directories (owner_id, parent_id, name, is_root)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, ownerID, parentID, name, isRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &models.Directory{
		ID:       id,
		OwnerID:  ownerID,
		ParentID: parentID,
		Name:     name,
		IsRoot:   isRoot,
	}, nil
}

// SiblingNameExists reports whether another directory with the same
// case-insensitive name exists under the given parent. excludeID skips the
// directory being renamed.
func (r *DirectoryRepository) SiblingNameExists(ownerID int64, parentID *int64, name string, excludeID int64) (bool, error) {
	query := `
		SELECT COUNT(*)
		FROM directories
		WHERE owner_id = ? AND LOWER(name) = LOWER(?) AND id != ?
	`
	args := []interface{}{ownerID, name, excludeID}
	if parentID != nil {
		query += " AND parent_id = ?"
		args = append(args, *parentID)
	} else {
		query += " AND parent_id IS NULL"
	}

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check sibling names: %w", err)
	}
	return count > 0, nil
}

// UpdateName renames a directory
func (r *DirectoryRepository) UpdateName(id int64, name string) error {
	_, err := r.db.Exec("UPDATE directories SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return fmt.Errorf("failed to rename directory: %w", err)
	}
	return nil
}

// UpdateParent re-parents a directory
func (r *DirectoryRepository) UpdateParent(id int64, parentID *int64) error {
	_, err := r.db.Exec("UPDATE directories SET parent_id = ? WHERE id = ?", parentID, id)
	if err != nil {
		return fmt.Errorf("failed to move directory: %w", err)
	}
	return nil
}

// ListChildren retrieves the immediate subdirectories of a directory, sorted by name
func (r *DirectoryRepository) ListChildren(ownerID, parentID int64) ([]models.Directory, error) {
	query := `
		SELECT id, owner_id, parent_id, name, is_root
		FROM directories
		WHERE owner_id = ? AND parent_id = ?
		ORDER BY LOWER(name)
	`
	rows, err := r.db.Query(query, ownerID, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subdirectories: %w", err)
	}
	defer rows.Close()

	var dirs []models.Directory
	for rows.Next() {
		dir, err := scanDirectory(rows)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, *dir)
	}
	return dirs, rows.Err()
}

// CollectSubtree returns the ids of a directory and all its descendants,
// breadth-first. The visited set caps traversal even if parent links are
// corrupted into a cycle.
func (r *DirectoryRepository) CollectSubtree(ownerID, rootID int64) ([]int64, error) {
	visited := map[int64]bool{rootID: true}
	ids := []int64{rootID}

	for frontier := []int64{rootID}; len(frontier) > 0; {
		current := frontier[0]
		frontier = frontier[1:]

		rows, err := r.db.Query(
			"SELECT id FROM directories WHERE owner_id = ? AND parent_id = ?",
			ownerID, current,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to collect subtree: %w", err)
		}
		for rows.Next() {
			var id int64
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			if !visited[id] {
				visited[id] = true
				ids = append(ids, id)
				frontier = append(frontier, id)
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	return ids, nil
}

// DeleteByIDs removes the given directories
func (r *DirectoryRepository) DeleteByIDs(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	query := "DELETE FROM directories WHERE id IN (" + placeholders(len(ids)) + ")"
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := r.db.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to delete directories: %w", err)
	}
	return nil
}

// ReparentChildren moves all immediate subdirectories of a directory to a new parent
func (r *DirectoryRepository) ReparentChildren(dirID int64, newParentID int64) error {
	_, err := r.db.Exec("UPDATE directories SET parent_id = ? WHERE parent_id = ?", newParentID, dirID)
	if err != nil {
		return fmt.Errorf("failed to reparent subdirectories: %w", err)
	}
	return nil
}

func (r *DirectoryRepository) scanOne(row *sql.Row) (*models.Directory, error) {
	dir, err := scanDirectory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return dir, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDirectory(row rowScanner) (*models.Directory, error) {
	dir := &models.Directory{}
	var parentID sql.NullInt64
	if err := row.Scan(&dir.ID, &dir.OwnerID, &parentID, &dir.Name, &dir.IsRoot); err != nil {
		return nil, err
	}
	if parentID.Valid {
		dir.ParentID = &parentID.Int64
	}
	return dir, nil
}

// placeholders builds a "?, ?, ?" list of the given length
func placeholders(n int) string {
	if n == 0 {
		return ""
	}
	out := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		if i > 0 {
			out = append(out, ", "...)
		}
		out = append(out, '?')
	}
	return string(out)
}
