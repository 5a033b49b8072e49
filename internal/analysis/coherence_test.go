package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParagraphs(t *testing.T) {
	assert.Nil(t, Paragraphs("   "))
	assert.Equal(t, []string{"one", "two"}, Paragraphs("one\n\n\n\n  two  \n\n"))
}

func TestAnalyzeCoherence(t *testing.T) {
	t.Run("Should return zero score for empty text", func(t *testing.T) {
		result := AnalyzeCoherence("")
		assert.Zero(t, result.Score)
		assert.Nil(t, result.Analysis)
	})

	t.Run("Should score balanced essay with transitions", func(t *testing.T) {
		text := "However the cat sat.\n\nThe dog ran far.\n\nBirds fly very high."
		result := AnalyzeCoherence(text)
		require.NotNil(t, result.Analysis)

		assert.InDelta(t, 86.67, result.Score, 1e-9)
		assert.Equal(t, 3, result.Analysis.ParagraphCount)
		assert.Equal(t, 4.0, result.Analysis.AvgParagraphLength)
		assert.Equal(t, 1, result.Analysis.TransitionWordCount)
		assert.Equal(t, "Good", result.Analysis.StructureRating)
	})

	t.Run("Should penalise single paragraph structure", func(t *testing.T) {
		result := AnalyzeCoherence("Just one paragraph here.")
		require.NotNil(t, result.Analysis)

		assert.InDelta(t, 45.0, result.Score, 1e-9)
		assert.Equal(t, "Needs Improvement", result.Analysis.StructureRating)
	})

	t.Run("Should lower balance for uneven paragraphs", func(t *testing.T) {
		even := AnalyzeCoherence("a b c d\n\ne f g h\n\ni j k l")
		uneven := AnalyzeCoherence("a\n\ne f g h i j k l m n o\n\np q")
		assert.Greater(t, even.Score, uneven.Score)
	})
}
