package models

import (
	"time"
)

// Document statuses
const (
	DocumentStatusExtracted        = "extracted"
	DocumentStatusProcessing       = "processing"
	DocumentStatusEvaluated        = "evaluated"
	DocumentStatusFailedEvaluation = "failed_evaluation"
)

// Document is an essay stored in MongoDB together with its extracted text
type Document struct {
	ID            string    `bson:"_id" json:"id"`
	TenantID      string    `bson:"tenant_id" json:"tenantId"`
	UploadedBy    string    `bson:"uploaded_by" json:"uploadedBy"`
	Title         string    `bson:"title" json:"title"`
	ExtractedText string    `bson:"extracted_text" json:"extractedText,omitempty"`
	WordCount     int       `bson:"word_count" json:"wordCount"`
	Status        string    `bson:"status" json:"status"`
	ErrorMessage  string    `bson:"error_message,omitempty" json:"errorMessage,omitempty"`
	FinalScore    *float64  `bson:"final_score,omitempty" json:"finalScore,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

// DocumentEvent represents a document submission read from the Redis stream
type DocumentEvent struct {
	DocumentID string `json:"documentId"`
	TenantID   string `json:"tenantId"`
	UserID     string `json:"userId"`
	Title      string `json:"title"`
	Text       string `json:"text"`
}
