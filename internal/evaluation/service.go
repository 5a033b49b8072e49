package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/RishiKendai/eduscore/internal/analysis"
	"github.com/RishiKendai/eduscore/internal/metrics"
	"github.com/RishiKendai/eduscore/internal/models"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

var ErrNoText = errors.New("no text provided for evaluation")

type GrammarAnalyzer interface {
	Analyze(ctx context.Context, text string) models.GrammarResult
}

type DocumentStore interface {
	FindDocument(ctx context.Context, id string) (*models.Document, error)
	SetDocumentStatus(ctx context.Context, id, status string, finalScore *float64, errMsg string) error
}

type EvaluationStore interface {
	UpsertEvaluation(ctx context.Context, evaluation *models.Evaluation) error
}

type StatusStore interface {
	SetStatus(ctx context.Context, documentID string, step models.Step) error
}

// Service runs every analyzer over a document and persists the graded result
type Service struct {
	grammar     GrammarAnalyzer
	detectors   *plagiarism.Registry
	documents   DocumentStore
	evaluations EvaluationStore
	status      StatusStore
	timeout     time.Duration
}

func NewService(
	grammar GrammarAnalyzer,
	detectors *plagiarism.Registry,
	documents DocumentStore,
	evaluations EvaluationStore,
	status StatusStore,
	timeout time.Duration,
) *Service {
	return &Service{
		grammar:     grammar,
		detectors:   detectors,
		documents:   documents,
		evaluations: evaluations,
		status:      status,
		timeout:     timeout,
	}
}

// Analyze scores text without touching storage. The document is checked
// against its tenant corpus, excluding itself, and then indexed.
func (s *Service) Analyze(ctx context.Context, tenantID, documentID, text string) (*models.Evaluation, error) {
	if text == "" {
		return nil, ErrNoText
	}

	start := time.Now()
	var components models.Components

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		components.Grammar = s.grammar.Analyze(gctx, text)
		return nil
	})
	g.Go(func() error {
		detector := s.detectors.Get(tenantID)
		report, err := detector.Check(text, documentID)
		if err != nil {
			return fmt.Errorf("failed to check plagiarism: %w", err)
		}
		if err := detector.AddDocument(documentID, text); err != nil {
			return fmt.Errorf("failed to index document: %w", err)
		}
		components.Plagiarism = report
		metrics.PlagiarismChecks.WithLabelValues(string(report.SuspicionLevel)).Inc()
		metrics.CorpusSize.WithLabelValues(tenantOrDefault(tenantID)).Set(float64(detector.Len()))
		return nil
	})
	components.Vocabulary = analysis.AnalyzeVocabulary(text)
	components.Coherence = analysis.AnalyzeCoherence(text)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	finalScore := FinalScore(components)
	evaluation := &models.Evaluation{
		DocumentID:       documentID,
		TenantID:         tenantID,
		FinalScore:       finalScore,
		Grade:            Grade(finalScore),
		Components:       components,
		Feedback:         Feedback(components),
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000,
		CreatedAt:        time.Now().UTC(),
	}

	return evaluation, nil
}

// EvaluateDocument loads a stored document, evaluates it and records the
// outcome on both the evaluation and the document.
func (s *Service) EvaluateDocument(ctx context.Context, documentID string) (*models.Evaluation, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.setStatus(ctx, documentID, models.StepStarted)

	doc, err := s.documents.FindDocument(ctx, documentID)
	if err != nil {
		s.fail(ctx, documentID, err)
		return nil, fmt.Errorf("failed to load document: %w", err)
	}

	s.setStatus(ctx, documentID, models.StepAnalyzing)

	evaluation, err := s.Analyze(ctx, doc.TenantID, doc.ID, doc.ExtractedText)
	if err != nil {
		s.fail(ctx, documentID, err)
		return nil, err
	}
	evaluation.UserID = doc.UploadedBy

	if err := s.evaluations.UpsertEvaluation(ctx, evaluation); err != nil {
		s.fail(ctx, documentID, err)
		return nil, fmt.Errorf("failed to store evaluation: %w", err)
	}

	score := evaluation.FinalScore
	if err := s.documents.SetDocumentStatus(ctx, documentID, models.DocumentStatusEvaluated, &score, ""); err != nil {
		return nil, fmt.Errorf("failed to update document status: %w", err)
	}

	s.setStatus(ctx, documentID, models.StepCompleted)
	metrics.EvaluationCount.WithLabelValues("completed").Inc()
	metrics.EvaluationDuration.Observe(time.Since(start).Seconds())

	log.Info().
		Str("documentId", documentID).
		Float64("finalScore", evaluation.FinalScore).
		Str("grade", evaluation.Grade).
		Str("suspicion", string(evaluation.Components.Plagiarism.SuspicionLevel)).
		Msg("Evaluation completed")

	return evaluation, nil
}

func (s *Service) fail(ctx context.Context, documentID string, cause error) {
	metrics.EvaluationCount.WithLabelValues("failed").Inc()
	log.Error().Err(cause).Str("documentId", documentID).Msg("Evaluation failed")

	s.setStatus(ctx, documentID, models.StepFailed)
	if err := s.documents.SetDocumentStatus(ctx, documentID, models.DocumentStatusFailedEvaluation, nil, cause.Error()); err != nil {
		log.Error().Err(err).Str("documentId", documentID).Msg("Failed to mark document as failed")
	}
}

// status tracking is best effort
func (s *Service) setStatus(ctx context.Context, documentID string, step models.Step) {
	if s.status == nil {
		return
	}
	if err := s.status.SetStatus(ctx, documentID, step); err != nil {
		log.Warn().Err(err).Str("documentId", documentID).Msg("Failed to record evaluation status")
	}
}

func tenantOrDefault(tenantID string) string {
	if tenantID == "" {
		return plagiarism.DefaultTenant
	}
	return tenantID
}

// EvaluationJob evaluates one stored document on the worker pool
type EvaluationJob struct {
	service    *Service
	documentID string
}

func NewEvaluationJob(service *Service, documentID string) *EvaluationJob {
	return &EvaluationJob{service: service, documentID: documentID}
}

func (j *EvaluationJob) Execute(ctx context.Context) error {
	_, err := j.service.EvaluateDocument(ctx, j.documentID)
	return err
}
