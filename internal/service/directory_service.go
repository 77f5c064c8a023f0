package service

import (
	"fmt"
	"strings"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
	"github.com/AdamRogowski/LanguageLearningApp/internal/database"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
	"github.com/AdamRogowski/LanguageLearningApp/internal/repository"
)

// DeleteStrategy selects what happens to a deleted directory's contents
type DeleteStrategy int

const (
	// DeleteCascade removes the directory, its whole subtree and the
	// enrollments linked anywhere inside it
	DeleteCascade DeleteStrategy = iota

	// DeleteReparent relinks immediate children (subdirectories and
	// enrollments) to the deleted directory's former parent
	DeleteReparent
)

// ParseDeleteStrategy maps the API strategy string onto the enum
func ParseDeleteStrategy(s string) (DeleteStrategy, error) {
	switch s {
	case "cascade":
		return DeleteCascade, nil
	case "reparent":
		return DeleteReparent, nil
	default:
		return 0, apperr.Validation("unknown delete strategy %q", s)
	}
}

// DirectoryListing is the content of one directory plus its breadcrumb
type DirectoryListing struct {
	Directory      models.Directory
	Subdirectories []models.Directory
	Enrollments    []models.EnrollmentOverview
	Breadcrumb     []models.BreadcrumbEntry
}

// DirectoryService owns the per-user folder tree: path resolution, cycle
// prevention and safe move/delete semantics
type DirectoryService struct {
	db          *database.DB
	dirs        *repository.DirectoryRepository
	enrollments *repository.EnrollmentRepository
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(db *database.DB, dirs *repository.DirectoryRepository, enrollments *repository.EnrollmentRepository) *DirectoryService {
	return &DirectoryService{db: db, dirs: dirs, enrollments: enrollments}
}

// GetOrCreateRoot returns the user's root directory, creating it lazily the
// first time the tree is touched. Idempotent.
func (s *DirectoryService) GetOrCreateRoot(userID int64) (*models.Directory, error) {
	root, err := s.dirs.GetRoot(userID)
	if err != nil {
		return nil, err
	}
	if root != nil {
		return root, nil
	}
	return s.dirs.Create(userID, nil, repository.RootDirectoryName, true)
}

// Create adds a subdirectory under parent. The name must be non-empty after
// trimming and unique among siblings case-insensitively.
func (s *DirectoryService) Create(userID, parentID int64, name string) (*models.Directory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.ErrInvalidName
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dirs := s.dirs.WithTx(tx)

	parent, err := dirs.GetByID(parentID, userID)
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperr.NotFound("folder not found")
	}

	taken, err := dirs.SiblingNameExists(userID, &parent.ID, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperr.ErrDuplicateName
	}

	dir, err := dirs.Create(userID, &parent.ID, name, false)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return dir, nil
}

// Rename changes a directory's name with the same validation as Create,
// scoped to siblings under the current parent
func (s *DirectoryService) Rename(userID, dirID int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return apperr.ErrInvalidName
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dirs := s.dirs.WithTx(tx)

	dir, err := dirs.GetByID(dirID, userID)
	if err != nil {
		return err
	}
	if dir == nil {
		return apperr.NotFound("folder not found")
	}
	if dir.IsRoot {
		return apperr.ErrProtectedRoot
	}

	taken, err := dirs.SiblingNameExists(userID, dir.ParentID, newName, dir.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.ErrDuplicateName
	}

	if err := dirs.UpdateName(dir.ID, newName); err != nil {
		return err
	}
	return tx.Commit()
}

// Move re-parents a directory. Moving to the current parent is a reported
// no-op (returns false). Moving the root, or moving a directory into itself
// or one of its descendants, fails. The cycle check and the sibling-name
// check both run inside the transaction, so concurrent edits from two tabs
// cannot slip a cycle past the validation.
func (s *DirectoryService) Move(userID, dirID, newParentID int64) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dirs := s.dirs.WithTx(tx)

	dir, err := dirs.GetByID(dirID, userID)
	if err != nil {
		return false, err
	}
	if dir == nil {
		return false, apperr.NotFound("folder not found")
	}
	if dir.IsRoot {
		return false, apperr.ErrProtectedRoot
	}

	newParent, err := dirs.GetByID(newParentID, userID)
	if err != nil {
		return false, err
	}
	if newParent == nil {
		return false, apperr.NotFound("destination folder not found")
	}

	if dir.ParentID != nil && *dir.ParentID == newParent.ID {
		return false, nil
	}

	if err := s.checkNoCycle(dirs, dir, newParent); err != nil {
		return false, err
	}

	taken, err := dirs.SiblingNameExists(userID, &newParent.ID, dir.Name, dir.ID)
	if err != nil {
		return false, err
	}
	if taken {
		return false, apperr.ErrDuplicateName
	}

	if err := dirs.UpdateParent(dir.ID, &newParent.ID); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// checkNoCycle walks the proposed destination's ancestor chain; if it passes
// through the directory being moved, committing the move would detach the
// subtree from the root. The visited set bounds the walk on corrupted data.
func (s *DirectoryService) checkNoCycle(dirs *repository.DirectoryRepository, dir, newParent *models.Directory) error {
	if newParent.ID == dir.ID {
		return apperr.ErrCyclicMove
	}

	visited := map[int64]bool{}
	current := newParent
	for current != nil {
		if current.ID == dir.ID {
			return apperr.ErrCyclicMove
		}
		if visited[current.ID] {
			break
		}
		visited[current.ID] = true

		if current.ParentID == nil {
			break
		}
		next, err := dirs.GetByID(*current.ParentID, dir.OwnerID)
		if err != nil {
			return err
		}
		current = next
	}
	return nil
}

// Delete removes a directory. Cascade deletes the whole subtree and its
// enrollments; reparent relinks immediate children to the former parent
// before removing the now-empty directory.
func (s *DirectoryService) Delete(userID, dirID int64, strategy DeleteStrategy) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	dirs := s.dirs.WithTx(tx)
	enrollments := s.enrollments.WithTx(tx)

	dir, err := dirs.GetByID(dirID, userID)
	if err != nil {
		return err
	}
	if dir == nil {
		return apperr.NotFound("folder not found")
	}
	if dir.IsRoot {
		return apperr.ErrProtectedRoot
	}

	switch strategy {
	case DeleteCascade:
		subtree, err := dirs.CollectSubtree(userID, dir.ID)
		if err != nil {
			return err
		}
		if err := enrollments.DeleteByDirectories(subtree); err != nil {
			return err
		}
		if err := dirs.DeleteByIDs(subtree); err != nil {
			return err
		}

	case DeleteReparent:
		// Non-root directories always have a parent
		if dir.ParentID == nil {
			return apperr.ErrProtectedRoot
		}
		if err := dirs.ReparentChildren(dir.ID, *dir.ParentID); err != nil {
			return err
		}
		if err := enrollments.ReparentByDirectory(dir.ID, *dir.ParentID); err != nil {
			return err
		}
		if err := dirs.DeleteByIDs([]int64{dir.ID}); err != nil {
			return err
		}

	default:
		return apperr.Validation("unknown delete strategy")
	}

	return tx.Commit()
}

// Path returns the directories from the root down to dir inclusive. The
// walk tracks visited ids and stops on a repeat, returning the partial path
// found so far instead of hanging on corrupted parent links.
func (s *DirectoryService) Path(userID, dirID int64) ([]models.Directory, error) {
	dir, err := s.dirs.GetByID(dirID, userID)
	if err != nil {
		return nil, err
	}
	if dir == nil {
		return nil, apperr.NotFound("folder not found")
	}

	var reversed []models.Directory
	visited := map[int64]bool{}

	current := dir
	for current != nil && !visited[current.ID] {
		visited[current.ID] = true
		reversed = append(reversed, *current)

		if current.ParentID == nil {
			break
		}
		current, err = s.dirs.GetByID(*current.ParentID, userID)
		if err != nil {
			return nil, err
		}
	}

	path := make([]models.Directory, len(reversed))
	for i, d := range reversed {
		path[len(reversed)-1-i] = d
	}
	return path, nil
}

// PathString renders the path as /Home/Child/.../Self
func (s *DirectoryService) PathString(userID, dirID int64) (string, error) {
	path, err := s.Path(userID, dirID)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, dir := range path {
		sb.WriteString("/")
		sb.WriteString(dir.Name)
	}
	return sb.String(), nil
}

// Breadcrumb returns the path as id/name pairs for navigation
func (s *DirectoryService) Breadcrumb(userID, dirID int64) ([]models.BreadcrumbEntry, error) {
	path, err := s.Path(userID, dirID)
	if err != nil {
		return nil, err
	}

	crumbs := make([]models.BreadcrumbEntry, len(path))
	for i, dir := range path {
		crumbs[i] = models.BreadcrumbEntry{ID: dir.ID, Name: dir.Name}
	}
	return crumbs, nil
}

// ListChildren returns a directory's subdirectories, its enrollments with
// progress overviews, and the breadcrumb leading to it. For the root this
// also surfaces orphaned enrollments with no directory link.
func (s *DirectoryService) ListChildren(userID, dirID int64) (*DirectoryListing, error) {
	dir, err := s.dirs.GetByID(dirID, userID)
	if err != nil {
		return nil, err
	}
	if dir == nil {
		return nil, apperr.NotFound("folder not found")
	}

	subdirs, err := s.dirs.ListChildren(userID, dir.ID)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollments.ListByDirectory(userID, &dir.ID)
	if err != nil {
		return nil, err
	}
	if dir.IsRoot {
		orphans, err := s.enrollments.ListByDirectory(userID, nil)
		if err != nil {
			return nil, err
		}
		enrollments = append(enrollments, orphans...)
	}

	breadcrumb, err := s.Breadcrumb(userID, dir.ID)
	if err != nil {
		return nil, err
	}

	return &DirectoryListing{
		Directory:      *dir,
		Subdirectories: subdirs,
		Enrollments:    enrollments,
		Breadcrumb:     breadcrumb,
	}, nil
}

// MoveEnrollment relinks a lesson enrollment to another directory
func (s *DirectoryService) MoveEnrollment(userID, enrollmentID, targetDirID int64) error {
	target, err := s.dirs.GetByID(targetDirID, userID)
	if err != nil {
		return err
	}
	if target == nil {
		return apperr.NotFound("destination folder not found")
	}

	enrollment, err := s.enrollments.GetByID(enrollmentID)
	if err != nil {
		return err
	}
	if enrollment == nil || enrollment.OwnerID != userID {
		return apperr.NotFound("lesson not found")
	}

	if enrollment.DirectoryID != nil && *enrollment.DirectoryID == target.ID {
		return nil
	}
	return s.enrollments.UpdateDirectory(enrollment.ID, &target.ID)
}
