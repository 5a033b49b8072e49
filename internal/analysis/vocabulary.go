package analysis

import (
	"github.com/RishiKendai/eduscore/internal/models"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

var academicWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"analysis", "approach", "assessment", "assumption", "authority", "available",
		"benefit", "concept", "consistent", "constitutional", "context", "contract",
		"creation", "data", "definition", "derived", "distribution", "economic",
		"environment", "established", "estimate", "evidence", "export", "factors",
		"financial", "formula", "function", "identified", "income", "indicate",
		"individual", "interpretation", "involved", "issues", "labor", "legal",
		"legislation", "major", "method", "occur", "percent", "period", "policy",
		"principle", "procedure", "process", "required", "research", "response",
		"role", "section", "sector", "significant", "similar", "source", "specific",
		"structure", "theory", "variable", "subsequent", "sufficient",
	} {
		academicWords[w] = struct{}{}
	}
}

// AnalyzeVocabulary rates lexical diversity, word length and academic word
// usage, weighted 0.4/0.3/0.3.
func AnalyzeVocabulary(text string) models.VocabularyResult {
	words := plagiarism.Words(text)
	if len(words) == 0 {
		return models.VocabularyResult{}
	}

	unique := make(map[string]struct{}, len(words))
	letters := 0
	academic := 0
	for _, w := range words {
		unique[w] = struct{}{}
		letters += len([]rune(w))
		if _, ok := academicWords[w]; ok {
			academic++
		}
	}

	total := float64(len(words))
	ttr := float64(len(unique)) / total
	avgLen := float64(letters) / total
	academicShare := float64(academic) / total

	scoreTTR := clamp(ttr*2, 0, 1) * 100
	scoreLen := (avgLen - 3) / 3
	if scoreLen > 1 {
		scoreLen = 1
	}
	scoreLen *= 100
	scoreAcademic := clamp(academicShare*20, 0, 1) * 100

	score := clamp(scoreTTR*0.4+scoreLen*0.3+scoreAcademic*0.3, 0, 100)

	return models.VocabularyResult{
		Score: round(score, 2),
		Metrics: &models.VocabularyMetrics{
			LexicalDiversity:       round(ttr, 2),
			AvgWordLength:          round(avgLen, 2),
			AcademicWordPercentage: round(academicShare*100, 2),
			UniqueWords:            len(unique),
			TotalWords:             len(words),
		},
	}
}
