package models

import (
	"time"

	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

type Step string

const (
	StepQueued    Step = "queued"
	StepStarted   Step = "started"
	StepAnalyzing Step = "analyzing"
	StepCompleted Step = "completed"
	StepFailed    Step = "failed"
)

// GrammarIssue is a single LanguageTool finding trimmed for display
type GrammarIssue struct {
	Message      string   `bson:"message" json:"message"`
	ShortMessage string   `bson:"short_message" json:"short_message"`
	Offset       int      `bson:"offset" json:"offset"`
	Length       int      `bson:"length" json:"length"`
	Replacements []string `bson:"replacements" json:"replacements"`
	Suggestion   string   `bson:"suggestion" json:"suggestion"`
	RuleID       string   `bson:"rule_id" json:"rule_id"`
	RuleCategory string   `bson:"rule_category" json:"rule_category"`
	Context      string   `bson:"context" json:"context"`
}

type GrammarResult struct {
	Score       float64        `bson:"score" json:"score"`
	Errors      []GrammarIssue `bson:"errors" json:"errors"`
	ErrorCount  int            `bson:"error_count" json:"error_count"`
	SystemError string         `bson:"system_error,omitempty" json:"system_error,omitempty"`
}

type VocabularyMetrics struct {
	LexicalDiversity       float64 `bson:"lexical_diversity" json:"lexical_diversity"`
	AvgWordLength          float64 `bson:"avg_word_length" json:"avg_word_length"`
	AcademicWordPercentage float64 `bson:"academic_word_percentage" json:"academic_word_percentage"`
	UniqueWords            int     `bson:"unique_words" json:"unique_words"`
	TotalWords             int     `bson:"total_words" json:"total_words"`
}

type VocabularyResult struct {
	Score   float64            `bson:"score" json:"score"`
	Metrics *VocabularyMetrics `bson:"metrics,omitempty" json:"metrics,omitempty"`
}

type CoherenceAnalysis struct {
	ParagraphCount      int     `bson:"paragraph_count" json:"paragraph_count"`
	AvgParagraphLength  float64 `bson:"avg_paragraph_length_words" json:"avg_paragraph_length_words"`
	TransitionWordCount int     `bson:"transition_word_count" json:"transition_word_count"`
	StructureRating     string  `bson:"structure_rating" json:"structure_rating"`
}

type CoherenceResult struct {
	Score    float64            `bson:"score" json:"score"`
	Analysis *CoherenceAnalysis `bson:"analysis,omitempty" json:"analysis,omitempty"`
}

// Components holds the per-analyzer results of one evaluation
type Components struct {
	Grammar    GrammarResult      `bson:"grammar" json:"grammar"`
	Vocabulary VocabularyResult   `bson:"vocabulary" json:"vocabulary"`
	Coherence  CoherenceResult    `bson:"coherence" json:"coherence"`
	Plagiarism *plagiarism.Report `bson:"plagiarism" json:"plagiarism"`
}

// Evaluation represents a scored essay stored in MongoDB
type Evaluation struct {
	DocumentID       string     `bson:"document_id" json:"document_id"`
	TenantID         string     `bson:"tenant_id" json:"tenant_id"`
	UserID           string     `bson:"user_id" json:"user_id"`
	FinalScore       float64    `bson:"final_score" json:"final_score"`
	Grade            string     `bson:"grade" json:"grade"`
	Components       Components `bson:"components" json:"components"`
	Feedback         string     `bson:"feedback" json:"feedback"`
	ProcessingTimeMs float64    `bson:"processing_time_ms" json:"processing_time_ms"`
	CreatedAt        time.Time  `bson:"created_at" json:"created_at"`
}
