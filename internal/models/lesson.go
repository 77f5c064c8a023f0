package models

import "time"

// Language is a named language used as the prompt or translation side of a lesson
type Language struct {
	ID   int64
	Name string
}

// Lesson is a shared word list; users bind to it through an Enrollment
type Lesson struct {
	ID                    int64
	Title                 string
	Description           string
	PromptLanguageID      int64
	TranslationLanguageID int64
	IsPublic              bool
	CreatedBy             int64
	CreatedAt             time.Time
}

// Word is a single vocabulary item in a lesson
type Word struct {
	ID          int64
	LessonID    int64
	Prompt      string
	Translation string
	Usage       string
	Hint        string
}

// LessonWithWords combines a lesson with its words
type LessonWithWords struct {
	Lesson Lesson
	Words  []Word
}
