package plagiarism

import "fmt"

// Comparison holds the exact and estimated similarity of two texts
type Comparison struct {
	Jaccard        float64 `json:"jaccard"`
	Estimate       float64 `json:"estimate"`
	ShinglesA      int     `json:"shingles_a"`
	ShinglesB      int     `json:"shingles_b"`
	Shared         int     `json:"shared"`
	AboveThreshold bool    `json:"above_threshold"`
}

// JaccardSimilarity computes |A ∩ B| / |A ∪ B| on the shingle sets themselves.
// Two empty sets score 0, matching the treatment of empty signatures.
func JaccardSimilarity(a, b ShingleSet) float64 {
	shared := sharedCount(a, b)
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0.0
	}
	return float64(shared) / float64(union)
}

func sharedCount(a, b ShingleSet) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	shared := 0
	for s := range a {
		if _, ok := b[s]; ok {
			shared++
		}
	}
	return shared
}

// Compare measures two texts directly without touching the corpus
func (d *Detector) Compare(textA, textB string) (*Comparison, error) {
	shinglesA := d.tokenizer.Tokenize(textA)
	shinglesB := d.tokenizer.Tokenize(textB)

	estimate, err := d.generator.Generate(shinglesA).Similarity(d.generator.Generate(shinglesB))
	if err != nil {
		return nil, fmt.Errorf("failed to estimate similarity: %w", err)
	}

	return &Comparison{
		Jaccard:        JaccardSimilarity(shinglesA, shinglesB),
		Estimate:       estimate,
		ShinglesA:      len(shinglesA),
		ShinglesB:      len(shinglesB),
		Shared:         sharedCount(shinglesA, shinglesB),
		AboveThreshold: estimate >= d.cfg.Threshold,
	}, nil
}
