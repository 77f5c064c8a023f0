// Package session holds the ephemeral per-(user, enrollment, mode) practice
// state in a keyed store with optimistic concurrency control.
package session

import (
	"context"
	"fmt"

	"github.com/AdamRogowski/LanguageLearningApp/internal/scoring"
)

// Key identifies one live practice session
type Key struct {
	UserID       int64
	EnrollmentID int64
	Mode         string
}

// String renders the storage key
func (k Key) String() string {
	return fmt.Sprintf("practice:%d:%d:%s", k.UserID, k.EnrollmentID, k.Mode)
}

// PendingAnswer is a submitted answer awaiting acknowledgment
type PendingAnswer struct {
	MasteryID     int64             `json:"mastery_id"`
	WordID        int64             `json:"word_id"`
	Answer        string            `json:"answer"`
	CorrectAnswer string            `json:"correct_answer"`
	Correct       bool              `json:"correct"`
	Distance      int               `json:"distance"`
	Diff          []scoring.Segment `json:"diff,omitempty"`
}

// State is the stored practice session: the active window of mastery ids,
// the reserve pool waiting to enter it, and the optional pending answer.
// Version increments on every write and backs the compare-and-swap guard.
type State struct {
	Window  []int64        `json:"window"`
	Pool    []int64        `json:"pool"`
	Pending *PendingAnswer `json:"pending,omitempty"`
	Version int64          `json:"version"`
}

// Store persists practice session state between requests.
//
// Replace writes unconditionally and is used by session start, which always
// supersedes prior state. Swap writes only if the stored version still equals
// fromVersion (absent state counts as version 0) and fails with
// apperr.ErrStaleSession otherwise; it assigns fromVersion+1 to the written
// state. Get returns nil without error when no state exists.
type Store interface {
	Get(ctx context.Context, key Key) (*State, error)
	Replace(ctx context.Context, key Key, state *State) error
	Swap(ctx context.Context, key Key, state *State, fromVersion int64) error
	Delete(ctx context.Context, key Key) error
}
