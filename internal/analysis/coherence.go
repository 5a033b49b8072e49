package analysis

import (
	"strings"

	"github.com/montanaflynn/stats"

	"github.com/RishiKendai/eduscore/internal/models"
)

var transitionPhrases = []string{
	"however", "therefore", "furthermore", "moreover", "consequently",
	"nevertheless", "nonetheless", "meanwhile", "subsequently", "conversely",
	"similarly", "additionally", "finally", "initially", "specifically",
	"for example", "in conclusion", "on the other hand", "as a result",
}

const (
	minParagraphs = 3
	maxParagraphs = 15
)

// Paragraphs splits text on blank lines and drops empty blocks.
func Paragraphs(text string) []string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// AnalyzeCoherence rates paragraph structure, transition usage and length
// balance, weighted 0.3/0.4/0.3.
func AnalyzeCoherence(text string) models.CoherenceResult {
	paragraphs := Paragraphs(text)
	if len(paragraphs) == 0 {
		return models.CoherenceResult{}
	}

	lengths := make(stats.Float64Data, len(paragraphs))
	for i, p := range paragraphs {
		lengths[i] = float64(len(strings.Fields(p)))
	}

	mean, _ := stats.Mean(lengths)
	stdev := 0.0
	if len(lengths) > 1 {
		stdev, _ = stats.StandardDeviationSample(lengths)
	}

	lower := strings.ToLower(text)
	transitions := 0
	for _, phrase := range transitionPhrases {
		transitions += strings.Count(lower, phrase)
	}
	perParagraph := float64(transitions) / float64(len(paragraphs))

	scoreStructure := 50.0
	if len(paragraphs) >= minParagraphs && len(paragraphs) <= maxParagraphs {
		scoreStructure = 100
	}
	scoreFlow := clamp(perParagraph*2, 0, 1) * 100

	cv := 0.0
	if mean > 0 {
		cv = stdev / mean
	}
	scoreBalance := clamp(100-cv*50, 0, 100)

	score := clamp(scoreStructure*0.3+scoreFlow*0.4+scoreBalance*0.3, 0, 100)

	rating := "Needs Improvement"
	if scoreStructure > 80 {
		rating = "Good"
	}

	return models.CoherenceResult{
		Score: round(score, 2),
		Analysis: &models.CoherenceAnalysis{
			ParagraphCount:      len(paragraphs),
			AvgParagraphLength:  round(mean, 1),
			TransitionWordCount: transitions,
			StructureRating:     rating,
		},
	}
}
