package stream

import (
	"fmt"

	"github.com/RishiKendai/eduscore/internal/models"
)

// StreamMessage is a raw entry read from the documents stream
type StreamMessage struct {
	ID     string
	Fields map[string]string
}

// ParseDocumentEvent validates the stream fields of a document submission.
func ParseDocumentEvent(msg *StreamMessage) (*models.DocumentEvent, error) {
	event := &models.DocumentEvent{
		DocumentID: msg.Fields["documentId"],
		TenantID:   msg.Fields["tenantId"],
		UserID:     msg.Fields["userId"],
		Title:      msg.Fields["title"],
		Text:       msg.Fields["text"],
	}

	if event.DocumentID == "" {
		return nil, fmt.Errorf("message %s: missing documentId", msg.ID)
	}
	if event.Text == "" {
		return nil, fmt.Errorf("message %s: missing text", msg.ID)
	}

	return event, nil
}
