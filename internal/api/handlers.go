package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RishiKendai/eduscore/internal/evaluation"
	"github.com/RishiKendai/eduscore/internal/metrics"
	"github.com/RishiKendai/eduscore/internal/models"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
	"github.com/RishiKendai/eduscore/internal/preprocess"
	"github.com/RishiKendai/eduscore/internal/repository"
)

type DocumentStore interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
	FindDocument(ctx context.Context, id string) (*models.Document, error)
	DeleteDocument(ctx context.Context, id string) (bool, error)
	CountDocumentsByTenant(ctx context.Context, tenantID string) (int64, error)
}

type EvaluationReader interface {
	GetEvaluation(ctx context.Context, documentID string) (*models.Evaluation, error)
}

type StatusStore interface {
	SetStatus(ctx context.Context, documentID string, step models.Step) error
	GetStatus(ctx context.Context, documentID string) (models.Step, error)
}

type JobSubmitter interface {
	Submit(job evaluation.Job) error
}

// Handler holds dependencies for handlers
type Handler struct {
	detectors   *plagiarism.Registry
	documents   DocumentStore
	evaluations EvaluationReader
	status      StatusStore
	pool        JobSubmitter
	newJob      func(documentID string) evaluation.Job
	cache       *ReportCache
}

func NewHandler(
	detectors *plagiarism.Registry,
	documents DocumentStore,
	evaluations EvaluationReader,
	status StatusStore,
	pool JobSubmitter,
	newJob func(documentID string) evaluation.Job,
	cache *ReportCache,
) *Handler {
	return &Handler{
		detectors:   detectors,
		documents:   documents,
		evaluations: evaluations,
		status:      status,
		pool:        pool,
		newJob:      newJob,
		cache:       cache,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":           "healthy",
		"tenants":          len(h.detectors.Tenants()),
		"corpus_documents": h.detectors.Size(),
	})
}

// CreateDocument stores a document and adds it to the tenant corpus.
func (h *Handler) CreateDocument(c *gin.Context) {
	var req models.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	text := preprocess.CleanText(req.Text)
	if text == "" {
		badRequest(c, "text must not be blank")
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	tenant := tenantFrom(c)
	ctx := c.Request.Context()

	existing, err := h.documents.FindDocument(ctx, id)
	if err == nil && existing.TenantID != tenant {
		c.JSON(http.StatusConflict, ErrorResponse{
			Error: "Document id already in use",
			Code:  "DOCUMENT_ID_CONFLICT",
		})
		return
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		internalError(c, err, "Failed to look up document")
		return
	}

	doc := &models.Document{
		ID:            id,
		TenantID:      tenant,
		UploadedBy:    c.GetString(ctxUser),
		Title:         req.Title,
		ExtractedText: text,
		Status:        models.DocumentStatusExtracted,
	}
	doc.WordCount = len(strings.Fields(text))
	if existing != nil {
		doc.CreatedAt = existing.CreatedAt
	}
	if err := h.documents.SaveDocument(ctx, doc); err != nil {
		internalError(c, err, "Failed to store document")
		return
	}

	detector := h.detectors.Get(tenant)
	if err := detector.AddDocument(id, text); err != nil {
		internalError(c, err, "Failed to index document")
		return
	}
	metrics.CorpusSize.WithLabelValues(tenant).Set(float64(detector.Len()))

	c.JSON(http.StatusCreated, models.CreateDocumentResponse{
		DocumentID: id,
		Indexed:    detector.Contains(id),
	})
}

// DeleteDocument removes a document from storage and from the tenant corpus.
func (h *Handler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	tenant := tenantFrom(c)
	ctx := c.Request.Context()

	doc, ok := h.loadDocument(c, id)
	if !ok {
		return
	}

	if _, err := h.documents.DeleteDocument(ctx, doc.ID); err != nil {
		internalError(c, err, "Failed to delete document")
		return
	}

	detector := h.detectors.Get(tenant)
	detector.RemoveDocument(doc.ID)
	metrics.CorpusSize.WithLabelValues(tenant).Set(float64(detector.Len()))

	c.Status(http.StatusNoContent)
}

// CorpusStats compares the caller's stored documents with what its detector indexed.
// Stored documents too short for a shingle are never indexed.
func (h *Handler) CorpusStats(c *gin.Context) {
	tenant := tenantFrom(c)

	stored, err := h.documents.CountDocumentsByTenant(c.Request.Context(), tenant)
	if err != nil {
		internalError(c, err, "Failed to count documents")
		return
	}

	detector := h.detectors.Get(tenant)
	c.JSON(http.StatusOK, models.CorpusStatsResponse{
		TenantID:         tenant,
		StoredDocuments:  stored,
		IndexedDocuments: detector.Len(),
		Generation:       detector.Generation(),
	})
}

// CheckPlagiarism scores text against the tenant corpus without indexing it.
func (h *Handler) CheckPlagiarism(c *gin.Context) {
	var req models.CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	tenant := tenantFrom(c)
	text := preprocess.CleanText(req.Text)
	detector := h.detectors.Get(tenant)
	generation := detector.Generation()

	if report, ok := h.cache.Get(tenant, generation, text, req.ExcludeID); ok {
		c.Header("X-Cache", "HIT")
		c.JSON(http.StatusOK, report)
		return
	}

	report, err := detector.Check(text, req.ExcludeID)
	if err != nil {
		internalError(c, err, "Failed to check plagiarism")
		return
	}
	h.cache.Add(tenant, generation, text, req.ExcludeID, report)
	metrics.PlagiarismChecks.WithLabelValues(string(report.SuspicionLevel)).Inc()

	c.Header("X-Cache", "MISS")
	c.JSON(http.StatusOK, report)
}

// Compare reports exact and estimated similarity of two texts.
func (h *Handler) Compare(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	comparison, err := h.detectors.Get(tenantFrom(c)).Compare(
		preprocess.CleanText(req.TextA),
		preprocess.CleanText(req.TextB),
	)
	if err != nil {
		internalError(c, err, "Failed to compare texts")
		return
	}

	c.JSON(http.StatusOK, comparison)
}

// Evaluate queues a stored document for a full evaluation.
func (h *Handler) Evaluate(c *gin.Context) {
	doc, ok := h.loadDocument(c, c.Param("id"))
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.status.SetStatus(ctx, doc.ID, models.StepQueued); err != nil {
		log.Warn().Err(err).Str("documentId", doc.ID).Msg("Failed to update queued status")
	}

	if err := h.pool.Submit(h.newJob(doc.ID)); err != nil {
		log.Error().Err(err).Str("documentId", doc.ID).Msg("Failed to submit evaluation job")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: "Evaluation queue unavailable",
			Code:  "QUEUE_UNAVAILABLE",
		})
		return
	}

	c.JSON(http.StatusAccepted, models.EvaluateResponse{
		Step:       models.StepQueued,
		DocumentID: doc.ID,
	})
}

func (h *Handler) Status(c *gin.Context) {
	doc, ok := h.loadDocument(c, c.Param("id"))
	if !ok {
		return
	}

	step, err := h.status.GetStatus(c.Request.Context(), doc.ID)
	if errors.Is(err, evaluation.ErrStatusNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "No evaluation in progress",
			Code:  "STATUS_NOT_FOUND",
		})
		return
	}
	if err != nil {
		internalError(c, err, "Failed to read status")
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{DocumentID: doc.ID, Step: step})
}

func (h *Handler) GetEvaluation(c *gin.Context) {
	doc, ok := h.loadDocument(c, c.Param("id"))
	if !ok {
		return
	}

	result, err := h.evaluations.GetEvaluation(c.Request.Context(), doc.ID)
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: "Evaluation not yet available",
			Code:  "EVALUATION_NOT_FOUND",
		})
		return
	}
	if err != nil {
		internalError(c, err, "Failed to read evaluation")
		return
	}

	c.JSON(http.StatusOK, result)
}

// loadDocument writes a 404 for documents that are missing or owned by
// another tenant.
func (h *Handler) loadDocument(c *gin.Context, id string) (*models.Document, bool) {
	doc, err := h.documents.FindDocument(c.Request.Context(), id)
	if err == nil && doc.TenantID == tenantFrom(c) {
		return doc, true
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		internalError(c, err, "Failed to load document")
		return nil, false
	}
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error: "Document not found",
		Code:  "DOCUMENT_NOT_FOUND",
	})
	return nil, false
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: msg,
		Code:  "INVALID_REQUEST",
	})
}

func internalError(c *gin.Context, err error, msg string) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(msg)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: msg,
		Code:  "INTERNAL_ERROR",
	})
}
