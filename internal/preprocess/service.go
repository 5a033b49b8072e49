package preprocess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/RishiKendai/eduscore/internal/models"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
	"github.com/RishiKendai/eduscore/internal/repository"
)

var (
	ErrEmptyDocument = errors.New("document has no text")

	// ErrDocumentConflict is returned when a document id is already owned by another tenant
	ErrDocumentConflict = errors.New("document id belongs to another tenant")
)

type DocumentRepository interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
	FindDocument(ctx context.Context, id string) (*models.Document, error)
	ForEachDocument(ctx context.Context, fn func(*models.Document) error) error
}

type Evaluator interface {
	EvaluateDocument(ctx context.Context, documentID string) (*models.Evaluation, error)
}

type Service struct {
	documents DocumentRepository
	evaluator Evaluator
	detectors *plagiarism.Registry
}

func NewService(documents DocumentRepository, evaluator Evaluator, detectors *plagiarism.Registry) *Service {
	return &Service{
		documents: documents,
		evaluator: evaluator,
		detectors: detectors,
	}
}

// IngestDocument cleans and stores a submitted document, then evaluates it.
// A missing document id is replaced with a generated one and a missing
// tenant with the default tenant. Ids stored under another tenant are refused
// with ErrDocumentConflict.
func (s *Service) IngestDocument(ctx context.Context, event *models.DocumentEvent) (string, error) {
	text := CleanText(event.Text)
	if text == "" {
		return "", ErrEmptyDocument
	}

	id := event.DocumentID
	if id == "" {
		id = uuid.NewString()
	}
	tenant := event.TenantID
	if tenant == "" {
		tenant = plagiarism.DefaultTenant
	}

	now := time.Now().UTC()
	createdAt := now
	if event.DocumentID != "" {
		existing, err := s.documents.FindDocument(ctx, id)
		switch {
		case err == nil && existing.TenantID != tenant:
			return "", fmt.Errorf("%w: %s", ErrDocumentConflict, id)
		case err == nil:
			createdAt = existing.CreatedAt
		case !errors.Is(err, repository.ErrNotFound):
			return "", fmt.Errorf("failed to look up document: %w", err)
		}
	}

	doc := &models.Document{
		ID:            id,
		TenantID:      tenant,
		UploadedBy:    event.UserID,
		Title:         event.Title,
		ExtractedText: text,
		WordCount:     len(strings.Fields(text)),
		Status:        models.DocumentStatusExtracted,
		CreatedAt:     createdAt,
		UpdatedAt:     now,
	}

	if err := s.documents.SaveDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}

	if _, err := s.evaluator.EvaluateDocument(ctx, id); err != nil {
		return id, fmt.Errorf("failed to evaluate document: %w", err)
	}

	return id, nil
}

// WarmCorpus rebuilds every tenant detector from stored documents with at
// most concurrency documents being fingerprinted at once.
func (s *Service) WarmCorpus(ctx context.Context, concurrency int) (int, error) {
	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrency))

	var indexed atomic.Int64
	err := s.documents.ForEachDocument(gctx, func(doc *models.Document) error {
		if doc.ExtractedText == "" {
			return nil
		}
		g.Go(func() error {
			if err := s.detectors.Get(doc.TenantID).AddDocument(doc.ID, doc.ExtractedText); err != nil {
				return fmt.Errorf("failed to index document %s: %w", doc.ID, err)
			}
			indexed.Add(1)
			return nil
		})
		return gctx.Err()
	})
	if waitErr := g.Wait(); waitErr != nil {
		return int(indexed.Load()), waitErr
	}
	if err != nil {
		return int(indexed.Load()), fmt.Errorf("failed to read documents: %w", err)
	}

	log.Info().
		Int64("documents", indexed.Load()).
		Int("tenants", len(s.detectors.Tenants())).
		Dur("elapsed", time.Since(start)).
		Msg("Plagiarism corpus warmed")

	return int(indexed.Load()), nil
}
