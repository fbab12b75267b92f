package mongo

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const auditLogCollectionName = "audit_logs"

// mongoAuditLogRepository is insert-only: there is no update or delete path.
type mongoAuditLogRepository struct {
	collection *mongo.Collection
}

func NewMongoAuditLogRepository(db *mongo.Database) repository.AuditLogRepository {
	return &mongoAuditLogRepository{
		collection: db.Collection(auditLogCollectionName),
	}
}

func (r *mongoAuditLogRepository) Append(ctx context.Context, entry *domain.AuditLog) error {
	if entry.ID == primitive.NilObjectID {
		entry.ID = primitive.NewObjectID()
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return wrapError(err)
}

func (r *mongoAuditLogRepository) ListRecent(ctx context.Context, limit int64) ([]domain.AuditLog, error) {
	// _id breaks ties between entries written in the same millisecond
	findOptions := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []domain.AuditLog{}
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func auditLogIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "timestamp", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "actorId", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index(),
		},
	}
}
