// Package scoring compares a submitted answer against the expected one and
// renders the divergence for feedback display.
package scoring

import (
	"html"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Segment is one run of the expected answer in a rendered diff. Mismatch
// marks the runs the submitted answer got wrong. Text is HTML-escaped so it
// can be embedded in a rendering surface as-is.
type Segment struct {
	Text     string `json:"text"`
	Mismatch bool   `json:"mismatch"`
}

// Verdict is the result of scoring one answer
type Verdict struct {
	Distance int       `json:"distance"`
	Correct  bool      `json:"correct"`
	Diff     []Segment `json:"diff,omitempty"`
}

// Score computes the edit distance between the submitted and expected
// answers and whether it falls within the allowed margin. Both sides are
// trimmed, and the distance is computed case-insensitively over Unicode
// code points. When the distance is non-zero the verdict carries a diff of
// the expected answer; an exact match has no diff.
func Score(submitted, expected string, margin int) Verdict {
	submitted = strings.TrimSpace(submitted)
	expected = strings.TrimSpace(expected)

	distance := levenshtein.ComputeDistance(
		strings.ToLower(submitted),
		strings.ToLower(expected),
	)

	verdict := Verdict{
		Distance: distance,
		Correct:  distance <= margin,
	}
	if distance != 0 {
		verdict.Diff = highlightDifferences(submitted, expected)
	}
	return verdict
}

// highlightDifferences aligns the submitted answer against the expected one
// and returns the expected string split into matched and mismatched runs.
func highlightDifferences(submitted, expected string) []Segment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(submitted, expected, false))

	segments := make([]Segment, 0, len(diffs))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			segments = append(segments, Segment{Text: html.EscapeString(d.Text)})
		case diffmatchpatch.DiffInsert:
			// Text the expected answer has and the submission lacks or replaced
			segments = append(segments, Segment{Text: html.EscapeString(d.Text), Mismatch: true})
		}
		// DiffDelete carries text only the submission had; it contributes
		// nothing to the expected side.
	}
	return segments
}
