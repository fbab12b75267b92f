// internal/repository/mongo/workout_log_repo.go
package mongo

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutLogCollectionName = "workout_logs"

// mongoWorkoutLogRepository implements repository.WorkoutLogRepository
type mongoWorkoutLogRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutLogRepository creates a new WorkoutLog repository.
func NewMongoWorkoutLogRepository(db *mongo.Database) repository.WorkoutLogRepository {
	return &mongoWorkoutLogRepository{
		collection: db.Collection(workoutLogCollectionName),
	}
}

// Create inserts a new workout log. Timestamp is set by the service.
func (r *mongoWorkoutLogRepository) Create(ctx context.Context, entry *domain.WorkoutLog) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.ExerciseID == primitive.NilObjectID || entry.RoutineID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log requires userId, exerciseId and routineId")
	}
	entry.ID = primitive.NewObjectID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		return primitive.NilObjectID, wrapError(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted workout log ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single workout log by its ID.
func (r *mongoWorkoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	var entry domain.WorkoutLog
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry); err != nil {
		return nil, wrapError(err)
	}
	return &entry, nil
}

// ListByUser returns the user's logs, newest first, optionally for one exercise.
func (r *mongoWorkoutLogRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error) {
	filter := bson.M{"userId": userID}
	if exerciseID != nil {
		filter["exerciseId"] = *exerciseID
	}
	return r.find(ctx, filter)
}

// ListSince returns the logs of a routine recorded at or after since.
func (r *mongoWorkoutLogRepository) ListSince(ctx context.Context, userID, routineID primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error) {
	filter := bson.M{
		"userId":    userID,
		"routineId": routineID,
		"timestamp": bson.M{"$gte": since},
	}
	return r.find(ctx, filter)
}

func (r *mongoWorkoutLogRepository) find(ctx context.Context, filter bson.M) ([]domain.WorkoutLog, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []domain.WorkoutLog{}
	if err = cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// Update is only used for administrative corrections.
func (r *mongoWorkoutLogRepository) Update(ctx context.Context, entry *domain.WorkoutLog) error {
	if entry.ID == primitive.NilObjectID {
		return errors.New("workout log ID is required for update")
	}

	updateDoc := bson.M{
		"$set": bson.M{
			"weight":      entry.Weight,
			"reps":        entry.Reps,
			"rpe":         entry.RPE,
			"notes":       entry.Notes,
			"correctedBy": entry.CorrectedBy,
			"correctedAt": entry.CorrectedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func workoutLogIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index(),
		},
		{
			// completed-this-week lookups
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "routineId", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseId", Value: 1}},
			Options: options.Index(),
		},
	}
}
