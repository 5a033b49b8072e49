package repository

import (
	"context"
	"errors"

	mongoInfra "github.com/RishiKendai/eduscore/internal/infra/mongo"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("not found")

type MongoRepository struct {
	db *mongo.Database
}

func NewMongoRepository(client *mongoInfra.Client) *MongoRepository {
	return &MongoRepository{
		db: client.Database,
	}
}

func (r *MongoRepository) InsertOne(ctx context.Context, collection string, document interface{}, opts ...*options.InsertOneOptions) error {
	_, err := r.db.Collection(collection).InsertOne(ctx, document, opts...)
	return err
}

func (r *MongoRepository) ReplaceOne(ctx context.Context, collection string, filter, replacement interface{}, opts ...*options.ReplaceOptions) error {
	_, err := r.db.Collection(collection).ReplaceOne(ctx, filter, replacement, opts...)
	return err
}

func (r *MongoRepository) UpdateOne(ctx context.Context, collection string, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	return r.db.Collection(collection).UpdateOne(ctx, filter, update, opts...)
}

func (r *MongoRepository) DeleteOne(ctx context.Context, collection string, filter interface{}) (int64, error) {
	res, err := r.db.Collection(collection).DeleteOne(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *MongoRepository) FindOne(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	return r.db.Collection(collection).FindOne(ctx, filter, opts...)
}

func (r *MongoRepository) FindMany(ctx context.Context, collection string, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	return r.db.Collection(collection).Find(ctx, filter, opts...)
}

func (r *MongoRepository) CountDocuments(ctx context.Context, collection string, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return r.db.Collection(collection).CountDocuments(ctx, filter, opts...)
}

func (r *MongoRepository) GetCollection(collectionName string) *mongo.Collection {
	return r.db.Collection(collectionName)
}

// EnsureIndexes creates the secondary indexes the repositories query on.
func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(documentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: documentsByTenant()},
		{Keys: documentsByStatus()},
	})
	if err != nil {
		return err
	}
	_, err = r.db.Collection(evaluationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    evaluationsByDocument(),
		Options: options.Index().SetUnique(true),
	})
	return err
}
