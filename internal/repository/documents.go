package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/eduscore/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const documentsCollection = "documents"

func documentsByTenant() bson.D { return bson.D{{Key: "tenant_id", Value: 1}} }
func documentsByStatus() bson.D { return bson.D{{Key: "status", Value: 1}} }

type DocumentsRepository struct {
	mongoRepo *MongoRepository
}

func NewDocumentsRepository(mongoRepo *MongoRepository) *DocumentsRepository {
	return &DocumentsRepository{
		mongoRepo: mongoRepo,
	}
}

// SaveDocument inserts the document or replaces the stored copy with the same id.
func (r *DocumentsRepository) SaveDocument(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	opts := options.Replace().SetUpsert(true)
	if err := r.mongoRepo.ReplaceOne(ctx, documentsCollection, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (r *DocumentsRepository) FindDocument(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := r.mongoRepo.FindOne(ctx, documentsCollection, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &doc, nil
}

func (r *DocumentsRepository) SetDocumentStatus(ctx context.Context, id, status string, finalScore *float64, errMsg string) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if finalScore != nil {
		set["final_score"] = *finalScore
	}
	update := bson.M{"$set": set}
	if errMsg != "" {
		set["error_message"] = errMsg
	} else {
		update["$unset"] = bson.M{"error_message": ""}
	}

	res, err := r.mongoRepo.UpdateOne(ctx, documentsCollection, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("document %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *DocumentsRepository) DeleteDocument(ctx context.Context, id string) (bool, error) {
	deleted, err := r.mongoRepo.DeleteOne(ctx, documentsCollection, bson.M{"_id": id})
	if err != nil {
		return false, fmt.Errorf("failed to delete document: %w", err)
	}
	return deleted > 0, nil
}

func (r *DocumentsRepository) CountDocumentsByTenant(ctx context.Context, tenantID string) (int64, error) {
	count, err := r.mongoRepo.CountDocuments(ctx, documentsCollection, bson.M{"tenant_id": tenantID})
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// ForEachDocument streams every document that has extracted text. Only the
// fields needed to fingerprint are loaded.
func (r *DocumentsRepository) ForEachDocument(ctx context.Context, fn func(*models.Document) error) error {
	filter := bson.M{"extracted_text": bson.M{"$nin": bson.A{nil, ""}}}
	opts := options.Find().
		SetProjection(bson.M{"_id": 1, "tenant_id": 1, "extracted_text": 1}).
		SetBatchSize(500)

	cursor, err := r.mongoRepo.FindMany(ctx, documentsCollection, filter, opts)
	if err != nil {
		return fmt.Errorf("failed to find documents: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc models.Document
		if err := cursor.Decode(&doc); err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}
		if err := fn(&doc); err != nil {
			return err
		}
	}
	return cursor.Err()
}
