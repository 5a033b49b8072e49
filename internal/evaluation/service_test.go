package evaluation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RishiKendai/eduscore/internal/models"
	"github.com/RishiKendai/eduscore/internal/plagiarism"
)

const essay = `Climate change is one of the most significant challenges facing the world today.
Rising temperatures affect ecosystems, agriculture and human health in complex ways.

However, coordinated policy and research can reduce emissions substantially.
Renewable energy adoption has accelerated across many economic sectors.

In conclusion, individual and collective action together determine the outcome.`

var errNotFound = errors.New("document not found")

type fakeGrammar struct {
	result models.GrammarResult
}

func (f fakeGrammar) Analyze(context.Context, string) models.GrammarResult {
	return f.result
}

type memoryDocuments struct {
	mu       sync.Mutex
	docs     map[string]*models.Document
	statuses map[string]string
	errors   map[string]string
}

func newMemoryDocuments(docs ...*models.Document) *memoryDocuments {
	m := &memoryDocuments{
		docs:     map[string]*models.Document{},
		statuses: map[string]string{},
		errors:   map[string]string{},
	}
	for _, d := range docs {
		m.docs[d.ID] = d
	}
	return m
}

func (m *memoryDocuments) FindDocument(_ context.Context, id string) (*models.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, errNotFound
	}
	return doc, nil
}

func (m *memoryDocuments) SetDocumentStatus(_ context.Context, id, status string, _ *float64, errMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[id] = status
	m.errors[id] = errMsg
	return nil
}

type memoryEvaluations struct {
	mu    sync.Mutex
	saved map[string]*models.Evaluation
}

func (m *memoryEvaluations) UpsertEvaluation(_ context.Context, e *models.Evaluation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = map[string]*models.Evaluation{}
	}
	m.saved[e.DocumentID] = e
	return nil
}

type recordingStatus struct {
	mu    sync.Mutex
	steps map[string][]models.Step
}

func (r *recordingStatus) SetStatus(_ context.Context, id string, step models.Step) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.steps == nil {
		r.steps = map[string][]models.Step{}
	}
	r.steps[id] = append(r.steps[id], step)
	return nil
}

type serviceFixture struct {
	service     *Service
	registry    *plagiarism.Registry
	documents   *memoryDocuments
	evaluations *memoryEvaluations
	status      *recordingStatus
}

func newServiceFixture(t *testing.T, docs ...*models.Document) *serviceFixture {
	t.Helper()
	registry, err := plagiarism.NewRegistry(plagiarism.DefaultConfig())
	require.NoError(t, err)

	f := &serviceFixture{
		registry:    registry,
		documents:   newMemoryDocuments(docs...),
		evaluations: &memoryEvaluations{},
		status:      &recordingStatus{},
	}
	f.service = NewService(
		fakeGrammar{result: models.GrammarResult{Score: 100, Errors: []models.GrammarIssue{}}},
		registry,
		f.documents,
		f.evaluations,
		f.status,
		0,
	)
	return f
}

func TestService_Analyze(t *testing.T) {
	t.Run("Should reject empty text", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.service.Analyze(context.Background(), "t", "doc", "")
		assert.ErrorIs(t, err, ErrNoText)
	})

	t.Run("Should score original essay and index it", func(t *testing.T) {
		f := newServiceFixture(t)

		evaluation, err := f.service.Analyze(context.Background(), "school", "doc-1", essay)
		require.NoError(t, err)

		require.NotNil(t, evaluation.Components.Plagiarism)
		assert.Empty(t, evaluation.Components.Plagiarism.Matches)
		assert.Equal(t, plagiarism.SuspicionLow, evaluation.Components.Plagiarism.SuspicionLevel)
		assert.Equal(t, FinalScore(evaluation.Components), evaluation.FinalScore)
		assert.Equal(t, Grade(evaluation.FinalScore), evaluation.Grade)
		assert.True(t, f.registry.Get("school").Contains("doc-1"))
	})

	t.Run("Should flag copy within the same tenant only", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()

		original, err := f.service.Analyze(ctx, "school", "doc-1", essay)
		require.NoError(t, err)

		copied, err := f.service.Analyze(ctx, "school", "doc-2", essay)
		require.NoError(t, err)
		report := copied.Components.Plagiarism
		require.Len(t, report.Matches, 1)
		assert.Equal(t, "doc-1", report.Matches[0].DocID)
		assert.Equal(t, 100.0, report.Percentage)
		assert.Equal(t, plagiarism.SuspicionHigh, report.SuspicionLevel)
		assert.InDelta(t, original.FinalScore-20, copied.FinalScore, 1e-9)
		assert.Contains(t, copied.Feedback, "Warning")

		other, err := f.service.Analyze(ctx, "other-school", "doc-3", essay)
		require.NoError(t, err)
		assert.Empty(t, other.Components.Plagiarism.Matches)
	})

	t.Run("Should not match a document against itself on re-evaluation", func(t *testing.T) {
		f := newServiceFixture(t)
		ctx := context.Background()

		_, err := f.service.Analyze(ctx, "school", "doc-1", essay)
		require.NoError(t, err)
		again, err := f.service.Analyze(ctx, "school", "doc-1", essay)
		require.NoError(t, err)
		assert.Empty(t, again.Components.Plagiarism.Matches)
		assert.Equal(t, 1, f.registry.Get("school").Len())
	})
}

func TestService_EvaluateDocument(t *testing.T) {
	t.Run("Should persist evaluation and update status", func(t *testing.T) {
		doc := &models.Document{ID: "doc-1", TenantID: "school", UploadedBy: "user-1", ExtractedText: essay}
		f := newServiceFixture(t, doc)

		evaluation, err := f.service.EvaluateDocument(context.Background(), "doc-1")
		require.NoError(t, err)

		assert.Equal(t, "user-1", evaluation.UserID)
		assert.Same(t, evaluation, f.evaluations.saved["doc-1"])
		assert.Equal(t, models.DocumentStatusEvaluated, f.documents.statuses["doc-1"])
		assert.Equal(t,
			[]models.Step{models.StepStarted, models.StepAnalyzing, models.StepCompleted},
			f.status.steps["doc-1"])
	})

	t.Run("Should mark missing document as failed", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.service.EvaluateDocument(context.Background(), "missing")
		assert.ErrorIs(t, err, errNotFound)
		assert.Equal(t, models.DocumentStatusFailedEvaluation, f.documents.statuses["missing"])
		assert.Equal(t, []models.Step{models.StepStarted, models.StepFailed}, f.status.steps["missing"])
	})

	t.Run("Should fail documents without text", func(t *testing.T) {
		doc := &models.Document{ID: "blank", TenantID: "school"}
		f := newServiceFixture(t, doc)

		_, err := f.service.EvaluateDocument(context.Background(), "blank")
		assert.ErrorIs(t, err, ErrNoText)
		assert.Equal(t, ErrNoText.Error(), f.documents.errors["blank"])
		assert.Empty(t, f.evaluations.saved)
	})

	t.Run("Should run as a pool job", func(t *testing.T) {
		doc := &models.Document{ID: "doc-1", TenantID: "school", ExtractedText: essay}
		f := newServiceFixture(t, doc)

		require.NoError(t, NewEvaluationJob(f.service, "doc-1").Execute(context.Background()))
		assert.Contains(t, f.evaluations.saved, "doc-1")
	})
}
