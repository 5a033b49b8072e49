package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/RishiKendai/eduscore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const evaluationsCollection = "evaluations"

func evaluationsByDocument() bson.D { return bson.D{{Key: "document_id", Value: 1}} }

type EvaluationsRepository struct {
	mongoRepo *MongoRepository
}

func NewEvaluationsRepository(mongoRepo *MongoRepository) *EvaluationsRepository {
	return &EvaluationsRepository{
		mongoRepo: mongoRepo,
	}
}

// UpsertEvaluation keeps a single evaluation per document.
func (r *EvaluationsRepository) UpsertEvaluation(ctx context.Context, evaluation *models.Evaluation) error {
	filter := bson.M{"document_id": evaluation.DocumentID}
	opts := options.Replace().SetUpsert(true)
	if err := r.mongoRepo.ReplaceOne(ctx, evaluationsCollection, filter, evaluation, opts); err != nil {
		return fmt.Errorf("failed to upsert evaluation: %w", err)
	}
	return nil
}

func (r *EvaluationsRepository) GetEvaluation(ctx context.Context, documentID string) (*models.Evaluation, error) {
	var evaluation models.Evaluation
	err := r.mongoRepo.FindOne(ctx, evaluationsCollection, bson.M{"document_id": documentID}).Decode(&evaluation)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("evaluation for %s: %w", documentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find evaluation: %w", err)
	}
	return &evaluation, nil
}

func (r *EvaluationsRepository) DeleteEvaluation(ctx context.Context, documentID string) error {
	if _, err := r.mongoRepo.DeleteOne(ctx, evaluationsCollection, bson.M{"document_id": documentID}); err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	return nil
}
