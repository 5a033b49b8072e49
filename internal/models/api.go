package models

// CreateDocumentRequest adds a document to the tenant corpus
type CreateDocumentRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text" binding:"required"`
}

type CreateDocumentResponse struct {
	DocumentID string `json:"documentId"`
	Indexed    bool   `json:"indexed"`
}

// CheckRequest scores text against the tenant corpus without indexing it
type CheckRequest struct {
	Text      string `json:"text" binding:"required"`
	ExcludeID string `json:"excludeId"`
}

type CompareRequest struct {
	TextA string `json:"textA" binding:"required"`
	TextB string `json:"textB" binding:"required"`
}

// EvaluateResponse represents the response from the evaluate endpoint
type EvaluateResponse struct {
	Step       Step   `json:"step"`
	DocumentID string `json:"documentId"`
}

type StatusResponse struct {
	DocumentID string `json:"documentId"`
	Step       Step   `json:"step"`
}

type CorpusStatsResponse struct {
	TenantID         string `json:"tenantId"`
	StoredDocuments  int64  `json:"storedDocuments"`
	IndexedDocuments int    `json:"indexedDocuments"`
	Generation       uint64 `json:"generation"`
}
