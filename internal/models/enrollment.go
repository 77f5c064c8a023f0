package models

import "time"

// Enrollment is a user's personal binding to a lesson: where it lives in
// their directory tree and how practice behaves for them.
type Enrollment struct {
	ID                 int64
	OwnerID            int64
	LessonID           int64
	DirectoryID        *int64 // nil resolves to the owner's root
	TargetProgress     int    // per-word mastery goal, >= 1
	PracticeWindow     int    // active working-set size, >= 1
	AllowedErrorMargin int    // tolerated edit distance, >= 0
	CreatedAt          time.Time
}

// WordMastery is per-enrollment progress for one word
type WordMastery struct {
	ID              int64
	EnrollmentID    int64
	WordID          int64
	CurrentProgress int
	Notes           string
}

// EnrollmentOverview combines an enrollment with lesson info and progress
// aggregates for directory listings
type EnrollmentOverview struct {
	Enrollment    Enrollment
	LessonTitle   string
	TotalWords    int
	MasteredWords int
}
