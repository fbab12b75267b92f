package mongo

import (
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection used by the app.
// Failures are logged, not fatal: the app still works without them, only slower.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	ensure := []struct {
		collection string
		indexes    []mongo.IndexModel
	}{
		{userCollectionName, userIndexes()},
		{routineCollectionName, routineIndexes()},
		{independentRoutineCollectionName, routineIndexes()},
		{workoutLogCollectionName, workoutLogIndexes()},
		{auditLogCollectionName, auditLogIndexes()},
		{exerciseCollectionName, exerciseIndexes()},
	}
	for _, e := range ensure {
		if _, err := db.Collection(e.collection).Indexes().CreateMany(ctx, e.indexes); err != nil {
			log.Printf("WARN: Failed to create indexes for collection %s: %v", e.collection, err)
		}
	}
}

// wrapError maps driver errors onto repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return repository.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrDuplicate
	}
	return err
}
