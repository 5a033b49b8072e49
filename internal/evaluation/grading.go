package evaluation

import (
	"fmt"
	"math"
	"strings"

	"github.com/RishiKendai/eduscore/internal/models"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

const (
	grammarWeight    = 0.4
	vocabularyWeight = 0.2
	coherenceWeight  = 0.2
	originalWeight   = 0.2
)

var gradeLadder = []struct {
	min   float64
	grade string
}{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
}

// FinalScore blends the analyzer scores; originality is the complement of the
// plagiarism percentage.
func FinalScore(c models.Components) float64 {
	plagiarismPct := 0.0
	if c.Plagiarism != nil {
		plagiarismPct = c.Plagiarism.Percentage
	}
	score := grammarWeight*c.Grammar.Score +
		vocabularyWeight*c.Vocabulary.Score +
		coherenceWeight*c.Coherence.Score +
		originalWeight*(100-plagiarismPct)
	return math.Round(score*100) / 100
}

func Grade(score float64) string {
	for _, step := range gradeLadder {
		if score >= step.min {
			return step.grade
		}
	}
	return "F"
}

func Feedback(c models.Components) string {
	var parts []string

	switch {
	case c.Grammar.Score > 90:
		parts = append(parts, "Excellent work! Your writing is grammatically sound.")
	case c.Grammar.Score > 75:
		parts = append(parts, "Good job. There are a few grammar issues to address.")
	default:
		parts = append(parts, "Needs improvement. Please review the grammar errors carefully.")
	}

	if c.Grammar.ErrorCount > 0 {
		parts = append(parts, fmt.Sprintf("Found %d potential grammar or style issues.", c.Grammar.ErrorCount))
	}

	if c.Plagiarism != nil {
		switch c.Plagiarism.SuspicionLevel {
		case plagiarism.SuspicionHigh:
			parts = append(parts, fmt.Sprintf("Warning: %.2f%% similarity with existing documents indicates likely plagiarism.", c.Plagiarism.Percentage))
		case plagiarism.SuspicionMedium:
			parts = append(parts, fmt.Sprintf("Note: %.2f%% similarity with existing documents. Please cite your sources.", c.Plagiarism.Percentage))
		}
	}

	return strings.Join(parts, " ")
}
