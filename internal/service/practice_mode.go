package service

import "github.com/AdamRogowski/LanguageLearningApp/internal/models"

// Mode determines question/answer polarity for a practice session
type Mode string

const (
	// ModeNormal asks the translation and expects the prompt
	ModeNormal Mode = "normal"

	// ModeReverse asks the prompt and expects the translation
	ModeReverse Mode = "reverse"
)

// polarity selects the question and expected-answer sides of a word.
// Adding a mode is an entry here, not a new branch in the session logic.
type polarity struct {
	question func(*models.Word) string
	answer   func(*models.Word) string
}

var modePolarities = map[Mode]polarity{
	ModeNormal: {
		question: func(w *models.Word) string { return w.Translation },
		answer:   func(w *models.Word) string { return w.Prompt },
	},
	ModeReverse: {
		question: func(w *models.Word) string { return w.Prompt },
		answer:   func(w *models.Word) string { return w.Translation },
	},
}

// NormalizeMode maps a mode string onto a known Mode; unknown strings fall
// back to normal semantics
func NormalizeMode(s string) Mode {
	if _, ok := modePolarities[Mode(s)]; ok {
		return Mode(s)
	}
	return ModeNormal
}

// Modes lists every supported practice mode
func Modes() []Mode {
	return []Mode{ModeNormal, ModeReverse}
}
