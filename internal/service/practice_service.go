package service

import (
	"context"
	"log"
	"math/rand"

	"github.com/AdamRogowski/LanguageLearningApp/internal/apperr"
	"github.com/AdamRogowski/LanguageLearningApp/internal/models"
	"github.com/AdamRogowski/LanguageLearningApp/internal/repository"
	"github.com/AdamRogowski/LanguageLearningApp/internal/scoring"
	"github.com/AdamRogowski/LanguageLearningApp/internal/session"
)

// Question is the current prompt of a live practice session
type Question struct {
	Completed bool   `json:"completed"`
	Question  string `json:"question,omitempty"`
	WordID    int64  `json:"word_id,omitempty"`
	Hint      string `json:"hint,omitempty"`
	Mode      Mode   `json:"mode"`
	Remaining int    `json:"remaining"`
}

// Feedback is the verdict on a submitted answer, shown to the user before
// they acknowledge it
type Feedback struct {
	Correct       bool              `json:"correct"`
	Distance      int               `json:"edit_distance"`
	CorrectAnswer string            `json:"correct_answer"`
	Diff          []scoring.Segment `json:"diff,omitempty"`
}

// AckResult reports what an acknowledgment did
type AckResult struct {
	Acknowledged     bool `json:"acknowledged"`
	Correct          bool `json:"correct,omitempty"`
	ProgressDelta    int  `json:"progress_delta,omitempty"`
	CurrentProgress  int  `json:"current_progress,omitempty"`
	SessionCompleted bool `json:"session_completed"`
}

// EmailNotifier sends the session-complete summary; nil-safe via the
// disabled EmailService
type EmailNotifier interface {
	SendPracticeSummary(ctx context.Context, toEmail, toName, lessonTitle string, mastered, total int) error
}

// PracticeService is the stateful quiz engine. Durable progress lives in
// the mastery repository; the in-flight window/pool/pending state lives in
// the session store, guarded by compare-and-swap.
type PracticeService struct {
	enrollments *repository.EnrollmentRepository
	mastery     *repository.MasteryRepository
	lessons     *repository.LessonRepository
	users       *repository.UserRepository
	sessions    session.Store
	email       EmailNotifier
}

// NewPracticeService creates a new practice service
func NewPracticeService(
	enrollments *repository.EnrollmentRepository,
	mastery *repository.MasteryRepository,
	lessons *repository.LessonRepository,
	users *repository.UserRepository,
	sessions session.Store,
	email EmailNotifier,
) *PracticeService {
	return &PracticeService{
		enrollments: enrollments,
		mastery:     mastery,
		lessons:     lessons,
		users:       users,
		sessions:    sessions,
		email:       email,
	}
}

// getOwnedEnrollment loads an enrollment and checks it belongs to the caller
func (s *PracticeService) getOwnedEnrollment(userID, enrollmentID int64) (*models.Enrollment, error) {
	enrollment, err := s.enrollments.GetByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil || enrollment.OwnerID != userID {
		return nil, apperr.NotFound("lesson not found")
	}
	return enrollment, nil
}

// Start builds a fresh session for (user, enrollment, mode), superseding any
// existing one for the same key. Missing mastery rows are backfilled first,
// then the eligible words are shuffled and split into window and pool.
// Returns false when every word has already reached the target.
func (s *PracticeService) Start(ctx context.Context, userID, enrollmentID int64, mode Mode) (bool, error) {
	enrollment, err := s.getOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return false, err
	}

	if err := s.mastery.EnsureRows(enrollment.ID); err != nil {
		return false, err
	}

	ids, err := s.mastery.ListEligibleIDs(enrollment.ID)
	if err != nil {
		return false, err
	}
	if len(ids) == 0 {
		return false, nil
	}

	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})

	windowSize := enrollment.PracticeWindow
	if windowSize > len(ids) {
		windowSize = len(ids)
	}

	state := &session.State{
		Window: ids[:windowSize],
		Pool:   ids[windowSize:],
	}
	if err := s.sessions.Replace(ctx, s.key(userID, enrollment.ID, mode), state); err != nil {
		return false, err
	}
	return true, nil
}

// CurrentQuestion returns the head-of-window question, or a completed
// signal once the window has drained. Completion tears the session down and
// sends the summary email.
func (s *PracticeService) CurrentQuestion(ctx context.Context, userID, enrollmentID int64, mode Mode) (*Question, error) {
	enrollment, err := s.getOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}

	key := s.key(userID, enrollment.ID, mode)
	state, err := s.sessions.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, apperr.NotFound("no practice session in progress")
	}

	if len(state.Window) == 0 {
		if err := s.sessions.Delete(ctx, key); err != nil {
			return nil, err
		}
		s.sendSummary(ctx, enrollment)
		return &Question{Completed: true, Mode: mode}, nil
	}

	mastery, word, err := s.resolveWord(enrollment, state.Window[0])
	if err != nil {
		return nil, err
	}

	return &Question{
		Question:  modePolarities[mode].question(word),
		WordID:    mastery.WordID,
		Hint:      word.Hint,
		Mode:      mode,
		Remaining: len(state.Window) + len(state.Pool),
	}, nil
}

// Submit scores an answer against the current head-of-window word and
// stores it as the pending verdict. Window and pool are untouched until the
// answer is acknowledged.
func (s *PracticeService) Submit(ctx context.Context, userID, enrollmentID int64, mode Mode, answer string) (*Feedback, error) {
	enrollment, err := s.getOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}

	key := s.key(userID, enrollment.ID, mode)
	state, err := s.sessions.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if state == nil || len(state.Window) == 0 {
		return nil, apperr.NotFound("no practice session in progress")
	}

	mastery, word, err := s.resolveWord(enrollment, state.Window[0])
	if err != nil {
		return nil, err
	}

	expected := modePolarities[mode].answer(word)
	verdict := scoring.Score(answer, expected, enrollment.AllowedErrorMargin)

	state.Pending = &session.PendingAnswer{
		MasteryID:     mastery.ID,
		WordID:        word.ID,
		Answer:        answer,
		CorrectAnswer: expected,
		Correct:       verdict.Correct,
		Distance:      verdict.Distance,
		Diff:          verdict.Diff,
	}
	if err := s.sessions.Swap(ctx, key, state, state.Version); err != nil {
		return nil, err
	}

	return &Feedback{
		Correct:       verdict.Correct,
		Distance:      verdict.Distance,
		CorrectAnswer: expected,
		Diff:          verdict.Diff,
	}, nil
}

// Acknowledge consumes the pending verdict. A correct (or force-accepted)
// answer bumps the word's progress and retires it from the window, pulling
// a replacement from the pool; a wrong answer drops progress (floored at
// zero) and requeues the same word at the window's tail so it stays in view
// this session. A second acknowledge with nothing pending is a reported
// no-op. The session write is compare-and-swap, so a concurrent double
// acknowledge loses with a stale-session error before any progress change.
func (s *PracticeService) Acknowledge(ctx context.Context, userID, enrollmentID int64, mode Mode, forceCorrect bool) (*AckResult, error) {
	enrollment, err := s.getOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return nil, err
	}

	key := s.key(userID, enrollment.ID, mode)
	state, err := s.sessions.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if state == nil || state.Pending == nil {
		return &AckResult{Acknowledged: false}, nil
	}
	if len(state.Window) == 0 || state.Window[0] != state.Pending.MasteryID {
		// Pending answer no longer matches the head; treat as stale
		return nil, apperr.ErrStaleSession
	}

	pending := *state.Pending
	accepted := pending.Correct || forceCorrect

	if accepted {
		state.Window = state.Window[1:]
		if len(state.Pool) > 0 {
			state.Window = append(state.Window, state.Pool[0])
			state.Pool = state.Pool[1:]
		}
	} else {
		head := state.Window[0]
		state.Window = append(state.Window[1:], head)
	}
	state.Pending = nil

	// Claim the transition first; only the CAS winner touches progress
	if err := s.sessions.Swap(ctx, key, state, state.Version); err != nil {
		return nil, err
	}

	mastery, err := s.mastery.GetByID(pending.MasteryID)
	if err != nil {
		return nil, err
	}
	if mastery == nil {
		return nil, apperr.NotFound("word not found")
	}

	result := &AckResult{
		Acknowledged:     true,
		Correct:          accepted,
		SessionCompleted: len(state.Window) == 0,
	}

	if accepted {
		if err := s.mastery.Increment(mastery.ID); err != nil {
			return nil, err
		}
		result.ProgressDelta = 1
		result.CurrentProgress = mastery.CurrentProgress + 1
	} else {
		if err := s.mastery.DecrementFloorZero(mastery.ID); err != nil {
			return nil, err
		}
		if mastery.CurrentProgress > 0 {
			result.ProgressDelta = -1
			result.CurrentProgress = mastery.CurrentProgress - 1
		}
	}

	return result, nil
}

// Cancel discards the session state for this mode only. Progress already
// committed by prior acknowledgments is untouched. Safe to call with no
// live session.
func (s *PracticeService) Cancel(ctx context.Context, userID, enrollmentID int64, mode Mode) error {
	enrollment, err := s.getOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return err
	}
	return s.sessions.Delete(ctx, s.key(userID, enrollment.ID, mode))
}

// ResetProgress zeroes every word's progress for the enrollment and drops
// any live sessions, for a full restart
func (s *PracticeService) ResetProgress(ctx context.Context, userID, enrollmentID int64) error {
	enrollment, err := s.getOwnedEnrollment(userID, enrollmentID)
	if err != nil {
		return err
	}

	if err := s.mastery.ResetAll(enrollment.ID); err != nil {
		return err
	}
	for _, mode := range Modes() {
		if err := s.sessions.Delete(ctx, s.key(userID, enrollment.ID, mode)); err != nil {
			return err
		}
	}
	return nil
}

// resolveWord loads the mastery row and its word, verifying both still
// belong to this enrollment
func (s *PracticeService) resolveWord(enrollment *models.Enrollment, masteryID int64) (*models.WordMastery, *models.Word, error) {
	mastery, err := s.mastery.GetByID(masteryID)
	if err != nil {
		return nil, nil, err
	}
	if mastery == nil || mastery.EnrollmentID != enrollment.ID {
		return nil, nil, apperr.NotFound("word not found")
	}

	word, err := s.lessons.GetWord(mastery.WordID)
	if err != nil {
		return nil, nil, err
	}
	if word == nil {
		return nil, nil, apperr.NotFound("word not found")
	}
	return mastery, word, nil
}

func (s *PracticeService) key(userID, enrollmentID int64, mode Mode) session.Key {
	return session.Key{UserID: userID, EnrollmentID: enrollmentID, Mode: string(mode)}
}

// sendSummary emails the session-complete summary; failures are logged, not
// returned, since the session itself finished fine
func (s *PracticeService) sendSummary(ctx context.Context, enrollment *models.Enrollment) {
	if s.email == nil {
		return
	}

	user, err := s.users.GetByID(enrollment.OwnerID)
	if err != nil || user == nil {
		log.Printf("practice summary: failed to load user %d: %v", enrollment.OwnerID, err)
		return
	}
	lesson, err := s.lessons.GetLesson(enrollment.LessonID)
	if err != nil || lesson == nil {
		log.Printf("practice summary: failed to load lesson %d: %v", enrollment.LessonID, err)
		return
	}

	overviews, err := s.enrollments.ListByDirectory(enrollment.OwnerID, enrollment.DirectoryID)
	if err != nil {
		log.Printf("practice summary: failed to load progress: %v", err)
		return
	}
	mastered, total := 0, 0
	for _, o := range overviews {
		if o.Enrollment.ID == enrollment.ID {
			mastered, total = o.MasteredWords, o.TotalWords
			break
		}
	}

	if err := s.email.SendPracticeSummary(ctx, user.Email, user.Name, lesson.Title, mastered, total); err != nil {
		log.Printf("practice summary: failed to send email to %s: %v", user.Email, err)
	}
}
