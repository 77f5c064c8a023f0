package service

import (
	"path/filepath"
	"testing"

	"github.com/AdamRogowski/LanguageLearningApp/internal/database"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
	"github.com/AdamRogowski/LanguageLearningApp/internal/repository"
	"github.com/AdamRogowski/LanguageLearningApp/internal/session"
)

// testEnv wires the full service stack onto a throwaway SQLite database
// and an in-memory session store
type testEnv struct {
	db       *database.DB
	sessions *session.MemoryStore

	users       *repository.UserRepository
	dirs        *repository.DirectoryRepository
	lessons     *repository.LessonRepository
	enrollments *repository.EnrollmentRepository
	mastery     *repository.MasteryRepository

	directorySvc *DirectoryService
	lessonSvc    *LessonService
	practiceSvc  *PracticeService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Open(database.Options{
		Type: "sqlite",
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	env := &testEnv{
		db:          db,
		sessions:    session.NewMemoryStore(),
		users:       repository.NewUserRepository(db),
		dirs:        repository.NewDirectoryRepository(db),
		lessons:     repository.NewLessonRepository(db),
		enrollments: repository.NewEnrollmentRepository(db),
		mastery:     repository.NewMasteryRepository(db),
	}
	env.directorySvc = NewDirectoryService(db, env.dirs, env.enrollments)
	env.lessonSvc = NewLessonService(db, env.lessons, env.enrollments, env.dirs)
	env.practiceSvc = NewPracticeService(env.enrollments, env.mastery, env.lessons, env.users, env.sessions, nil)
	return env
}

func (env *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := env.users.Create(email, "hash", "Test User")
	if err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

// createLesson authors a lesson through the lesson service and returns the
// author's enrollment
func (env *testEnv) createLesson(t *testing.T, userID int64, title string, settings [3]int, words ...[2]string) *models.Enrollment {
	t.Helper()

	input := LessonInput{
		Title:               title,
		PromptLanguage:      "German",
		TranslationLanguage: "English",
		TargetProgress:      settings[0],
		PracticeWindow:      settings[1],
		AllowedErrorMargin:  settings[2],
	}
	for _, w := range words {
		input.Words = append(input.Words, WordInput{Prompt: w[0], Translation: w[1]})
	}

	enrollment, err := env.lessonSvc.Create(userID, input)
	if err != nil {
		t.Fatalf("Failed to create lesson: %v", err)
	}
	return enrollment
}
