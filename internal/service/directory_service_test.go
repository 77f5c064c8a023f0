package service

import (
	"errors"
	"testing"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
)

func TestGetOrCreateRootIdempotent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")

	root, err := env.directorySvc.GetOrCreateRoot(user.ID)
	if err != nil {
		t.Fatalf("GetOrCreateRoot failed: %v", err)
	}
	if !root.IsRoot {
		t.Error("root directory should have IsRoot set")
	}
	if root.ParentID != nil {
		t.Error("root directory should have no parent")
	}

	again, err := env.directorySvc.GetOrCreateRoot(user.ID)
	if err != nil {
		t.Fatalf("GetOrCreateRoot failed: %v", err)
	}
	if again.ID != root.ID {
		t.Errorf("second call created a new root: %d != %d", again.ID, root.ID)
	}
}

func TestRootsArePerUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	aliceRoot, err := env.directorySvc.GetOrCreateRoot(alice.ID)
	if err != nil {
		t.Fatalf("GetOrCreateRoot failed: %v", err)
	}
	bobRoot, err := env.directorySvc.GetOrCreateRoot(bob.ID)
	if err != nil {
		t.Fatalf("GetOrCreateRoot failed: %v", err)
	}
	if aliceRoot.ID == bobRoot.ID {
		t.Error("users must not share a root directory")
	}

	// A user cannot see another user's directories
	if dir, err := env.dirs.GetByID(bobRoot.ID, alice.ID); err != nil || dir != nil {
		t.Errorf("GetByID across users = (%v, %v), want (nil, nil)", dir, err)
	}
}

func TestCreateDirectory(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	dir, err := env.directorySvc.Create(user.ID, root.ID, "  Verbs  ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if dir.Name != "Verbs" {
		t.Errorf("name = %q, want trimmed %q", dir.Name, "Verbs")
	}

	// Sibling names are unique case-insensitively
	if _, err := env.directorySvc.Create(user.ID, root.ID, "verbs"); !errors.Is(err, apperr.ErrDuplicateName) {
		t.Errorf("duplicate sibling error = %v, want ErrDuplicateName", err)
	}

	// The same name is fine in a different parent
	if _, err := env.directorySvc.Create(user.ID, dir.ID, "Verbs"); err != nil {
		t.Errorf("same name under another parent failed: %v", err)
	}

	if _, err := env.directorySvc.Create(user.ID, root.ID, "   "); !errors.Is(err, apperr.ErrInvalidName) {
		t.Errorf("blank name error = %v, want ErrInvalidName", err)
	}
}

func TestRename(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	a, err := env.directorySvc.Create(user.ID, root.ID, "A")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := env.directorySvc.Create(user.ID, root.ID, "B"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := env.directorySvc.Rename(user.ID, a.ID, "C"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if err := env.directorySvc.Rename(user.ID, a.ID, "b"); !errors.Is(err, apperr.ErrDuplicateName) {
		t.Errorf("rename onto sibling error = %v, want ErrDuplicateName", err)
	}

	if err := env.directorySvc.Rename(user.ID, root.ID, "NewRoot"); !errors.Is(err, apperr.ErrProtectedRoot) {
		t.Errorf("rename root error = %v, want ErrProtectedRoot", err)
	}
}

func TestMove(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	a, _ := env.directorySvc.Create(user.ID, root.ID, "A")
	b, _ := env.directorySvc.Create(user.ID, a.ID, "B")
	c, _ := env.directorySvc.Create(user.ID, root.ID, "C")

	// Moving to the current parent is a reported no-op
	moved, err := env.directorySvc.Move(user.ID, a.ID, root.ID)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if moved {
		t.Error("move to current parent should report false")
	}

	// A directory cannot move into itself or its own subtree
	if _, err := env.directorySvc.Move(user.ID, a.ID, a.ID); !errors.Is(err, apperr.ErrCyclicMove) {
		t.Errorf("move into itself error = %v, want ErrCyclicMove", err)
	}
	if _, err := env.directorySvc.Move(user.ID, a.ID, b.ID); !errors.Is(err, apperr.ErrCyclicMove) {
		t.Errorf("move into descendant error = %v, want ErrCyclicMove", err)
	}

	// The root never moves
	if _, err := env.directorySvc.Move(user.ID, root.ID, c.ID); !errors.Is(err, apperr.ErrProtectedRoot) {
		t.Errorf("move root error = %v, want ErrProtectedRoot", err)
	}

	moved, err = env.directorySvc.Move(user.ID, b.ID, c.ID)
	if err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if !moved {
		t.Error("valid move should report true")
	}

	path, err := env.directorySvc.PathString(user.ID, b.ID)
	if err != nil {
		t.Fatalf("PathString failed: %v", err)
	}
	if path != "/Home/C/B" {
		t.Errorf("path = %q, want /Home/C/B", path)
	}
}

func TestMoveDuplicateNameAtDestination(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	a, _ := env.directorySvc.Create(user.ID, root.ID, "A")
	if _, err := env.directorySvc.Create(user.ID, a.ID, "Shared"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	shared, _ := env.directorySvc.Create(user.ID, root.ID, "Shared")

	if _, err := env.directorySvc.Move(user.ID, shared.ID, a.ID); !errors.Is(err, apperr.ErrDuplicateName) {
		t.Errorf("move onto name collision error = %v, want ErrDuplicateName", err)
	}
}

func TestPathString(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	a, _ := env.directorySvc.Create(user.ID, root.ID, "Grammar")
	b, _ := env.directorySvc.Create(user.ID, a.ID, "Verbs")

	path, err := env.directorySvc.PathString(user.ID, b.ID)
	if err != nil {
		t.Fatalf("PathString failed: %v", err)
	}
	if path != "/Home/Grammar/Verbs" {
		t.Errorf("path = %q, want /Home/Grammar/Verbs", path)
	}

	rootPath, err := env.directorySvc.PathString(user.ID, root.ID)
	if err != nil {
		t.Fatalf("PathString failed: %v", err)
	}
	if rootPath != "/Home" {
		t.Errorf("root path = %q, want /Home", rootPath)
	}
}

func TestPathSurvivesCorruptedParentLinks(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	a, _ := env.directorySvc.Create(user.ID, root.ID, "A")
	b, _ := env.directorySvc.Create(user.ID, a.ID, "B")

	// Corrupt the tree behind the service's back: A's parent becomes B
	if _, err := env.db.Exec("UPDATE directories SET parent_id = ? WHERE id = ?", b.ID, a.ID); err != nil {
		t.Fatalf("Failed to corrupt tree: %v", err)
	}

	// The walk must terminate and return the partial path it found
	path, err := env.directorySvc.Path(user.ID, b.ID)
	if err != nil {
		t.Fatalf("Path failed on corrupted tree: %v", err)
	}
	if len(path) == 0 {
		t.Error("partial path should not be empty")
	}
	if path[len(path)-1].ID != b.ID {
		t.Error("path should still end at the requested directory")
	}
}

func TestDeleteCascade(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	a, _ := env.directorySvc.Create(user.ID, root.ID, "A")
	b, _ := env.directorySvc.Create(user.ID, a.ID, "B")

	enrollment := env.createLesson(t, user.ID, "Animals", [3]int{3, 5, 0}, [2]string{"hund", "dog"})
	if err := env.directorySvc.MoveEnrollment(user.ID, enrollment.ID, b.ID); err != nil {
		t.Fatalf("MoveEnrollment failed: %v", err)
	}

	if err := env.directorySvc.Delete(user.ID, a.ID, DeleteCascade); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	for _, id := range []int64{a.ID, b.ID} {
		if dir, err := env.dirs.GetByID(id, user.ID); err != nil || dir != nil {
			t.Errorf("directory %d should be gone, got (%v, %v)", id, dir, err)
		}
	}
	if e, err := env.enrollments.GetByID(enrollment.ID); err != nil || e != nil {
		t.Errorf("enrollment should be gone, got (%v, %v)", e, err)
	}
}

func TestDeleteReparent(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	a, _ := env.directorySvc.Create(user.ID, root.ID, "A")
	b, _ := env.directorySvc.Create(user.ID, a.ID, "B")

	enrollment := env.createLesson(t, user.ID, "Animals", [3]int{3, 5, 0}, [2]string{"hund", "dog"})
	if err := env.directorySvc.MoveEnrollment(user.ID, enrollment.ID, a.ID); err != nil {
		t.Fatalf("MoveEnrollment failed: %v", err)
	}

	if err := env.directorySvc.Delete(user.ID, a.ID, DeleteReparent); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// The subdirectory and the enrollment both moved up to the root
	moved, err := env.dirs.GetByID(b.ID, user.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if moved == nil || moved.ParentID == nil || *moved.ParentID != root.ID {
		t.Errorf("subdirectory should now live under the root, got %+v", moved)
	}

	e, err := env.enrollments.GetByID(enrollment.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if e == nil || e.DirectoryID == nil || *e.DirectoryID != root.ID {
		t.Errorf("enrollment should now live under the root, got %+v", e)
	}
}

func TestDeleteRootProtected(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	for _, strategy := range []DeleteStrategy{DeleteCascade, DeleteReparent} {
		if err := env.directorySvc.Delete(user.ID, root.ID, strategy); !errors.Is(err, apperr.ErrProtectedRoot) {
			t.Errorf("delete root error = %v, want ErrProtectedRoot", err)
		}
	}
}

func TestListChildrenRootIncludesOrphans(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "a@example.com")
	root, _ := env.directorySvc.GetOrCreateRoot(user.ID)

	sub, _ := env.directorySvc.Create(user.ID, root.ID, "Sub")

	// One enrollment filed in a folder, one left without a directory link
	filed := env.createLesson(t, user.ID, "Filed", [3]int{3, 5, 0}, [2]string{"eins", "one"})
	if err := env.directorySvc.MoveEnrollment(user.ID, filed.ID, sub.ID); err != nil {
		t.Fatalf("MoveEnrollment failed: %v", err)
	}
	orphan := env.createLesson(t, user.ID, "Orphan", [3]int{3, 5, 0}, [2]string{"zwei", "two"})

	listing, err := env.directorySvc.ListChildren(user.ID, root.ID)
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(listing.Subdirectories) != 1 {
		t.Errorf("got %d subdirectories, want 1", len(listing.Subdirectories))
	}
	if len(listing.Enrollments) != 1 || listing.Enrollments[0].Enrollment.ID != orphan.ID {
		t.Errorf("root listing should surface only the orphaned enrollment, got %+v", listing.Enrollments)
	}

	subListing, err := env.directorySvc.ListChildren(user.ID, sub.ID)
	if err != nil {
		t.Fatalf("ListChildren failed: %v", err)
	}
	if len(subListing.Enrollments) != 1 || subListing.Enrollments[0].Enrollment.ID != filed.ID {
		t.Errorf("folder listing should show the filed enrollment, got %+v", subListing.Enrollments)
	}
	if len(subListing.Breadcrumb) != 2 {
		t.Errorf("breadcrumb length = %d, want 2", len(subListing.Breadcrumb))
	}
}

func TestParseDeleteStrategy(t *testing.T) {
	tests := []struct {
		input   string
		want    DeleteStrategy
		wantErr bool
	}{
		{"cascade", DeleteCascade, false},
		{"reparent", DeleteReparent, false},
		{"", 0, true},
		{"nuke", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseDeleteStrategy(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDeleteStrategy(%q) should fail", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDeleteStrategy(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseDeleteStrategy(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
