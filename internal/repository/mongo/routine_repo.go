// internal/repository/mongo/routine_repo.go
package mongo

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	routineCollectionName            = "routines"
	independentRoutineCollectionName = "independent_routines"
)

// mongoRoutineRepository implements repository.RoutineRepository for one namespace.
type mongoRoutineRepository struct {
	namespace  domain.RoutineNamespace
	collection *mongo.Collection
}

// NewMongoRoutineRepository creates the routine repository of the given namespace.
// Each namespace lives in its own collection.
func NewMongoRoutineRepository(db *mongo.Database, namespace domain.RoutineNamespace) (repository.RoutineRepository, error) {
	var name string
	switch namespace {
	case domain.NamespaceCoached:
		name = routineCollectionName
	case domain.NamespaceIndependent:
		name = independentRoutineCollectionName
	default:
		return nil, fmt.Errorf("unknown routine namespace %q", namespace)
	}
	return &mongoRoutineRepository{
		namespace:  namespace,
		collection: db.Collection(name),
	}, nil
}

func (r *mongoRoutineRepository) Namespace() domain.RoutineNamespace {
	return r.namespace
}

// Create inserts a new routine. Status and timestamps are set by the caller.
func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.MonthlyRoutine) (primitive.ObjectID, error) {
	if routine.UserID == primitive.NilObjectID || routine.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("routine requires userId and coachId")
	}
	routine.ID = primitive.NewObjectID()
	if routine.CreatedAt.IsZero() {
		routine.CreatedAt = time.Now().UTC()
	}
	routine.UpdatedAt = routine.CreatedAt

	result, err := r.collection.InsertOne(ctx, routine)
	if err != nil {
		return primitive.NilObjectID, wrapError(err)
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted routine ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single routine by its ID.
func (r *mongoRoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MonthlyRoutine, error) {
	var routine domain.MonthlyRoutine
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&routine); err != nil {
		return nil, wrapError(err)
	}
	return &routine, nil
}

// GetActiveByUser returns the routine currently in effect for the user.
func (r *mongoRoutineRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.MonthlyRoutine, error) {
	var routine domain.MonthlyRoutine
	filter := bson.M{"userId": userID, "status": domain.RoutineStatusActive}
	// newest wins if a race left more than one active
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if err := r.collection.FindOne(ctx, filter, findOptions).Decode(&routine); err != nil {
		return nil, wrapError(err)
	}
	return &routine, nil
}

// ListByUser retrieves every routine of the user, newest first.
func (r *mongoRoutineRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MonthlyRoutine, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	routines := []domain.MonthlyRoutine{}
	if err = cursor.All(ctx, &routines); err != nil {
		return nil, err
	}
	return routines, nil
}

// ArchiveAllForUser marks every non-archived routine of the user as ARCHIVED.
func (r *mongoRoutineRepository) ArchiveAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"userId": userID,
		"status": bson.M{"$ne": domain.RoutineStatusArchived},
	}
	update := bson.M{"$set": bson.M{"status": domain.RoutineStatusArchived, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

// Update stores the editable parts of a routine. Owner, author, status and
// CreatedAt are never changed here.
func (r *mongoRoutineRepository) Update(ctx context.Context, routine *domain.MonthlyRoutine) error {
	if routine.ID == primitive.NilObjectID {
		return errors.New("routine ID is required for update")
	}

	routine.UpdatedAt = time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"month":     routine.Month,
			"year":      routine.Year,
			"title":     routine.Title,
			"weeks":     routine.Weeks,
			"updatedAt": routine.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": routine.ID}, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a routine by id.
func (r *mongoRoutineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func routineIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			// active routine lookup
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}},
			Options: options.Index(),
		},
	}
}
