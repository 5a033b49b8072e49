package plagiarism

import "math"

// SuspicionLevel is the coarse classification of a plagiarism percentage
type SuspicionLevel string

const (
	SuspicionLow    SuspicionLevel = "low"
	SuspicionMedium SuspicionLevel = "medium"
	SuspicionHigh   SuspicionLevel = "high"
)

// Match is a corpus document whose similarity reached the threshold
type Match struct {
	DocID      string  `json:"doc_id" bson:"doc_id"`
	Similarity float64 `json:"similarity" bson:"similarity"` // percentage, 2 decimals
}

// Report is the outcome of a plagiarism check
type Report struct {
	Percentage     float64        `json:"percentage" bson:"percentage"`
	Matches        []Match        `json:"matches" bson:"matches"`
	SuspicionLevel SuspicionLevel `json:"suspicion_level" bson:"suspicion_level"`
}

// EmptyReport is returned for texts that carry no comparable content
func EmptyReport() *Report {
	return &Report{
		Percentage:     0,
		Matches:        []Match{},
		SuspicionLevel: SuspicionLow,
	}
}

// SuspicionFor classifies a percentage in [0, 100].
// Bounds are exclusive: exactly 70 is medium and exactly 30 is low.
func SuspicionFor(percentage float64) SuspicionLevel {
	if percentage > 70 {
		return SuspicionHigh
	} else if percentage > 30 {
		return SuspicionMedium
	}
	return SuspicionLow
}

// ToPercentage scales a similarity in [0, 1] to a percentage rounded to 2 decimals
func ToPercentage(similarity float64) float64 {
	return math.Round(similarity*10000) / 100
}
