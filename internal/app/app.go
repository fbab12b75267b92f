// Package app wires configuration into repositories and storage for the
// server and the operator CLI.
package app

import (
	"alcyxob/gym-manager/internal/config"
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/repository/memory"
	"alcyxob/gym-manager/internal/repository/mongo"
	"alcyxob/gym-manager/internal/storage"
	"context"
	"fmt"
	"log"
	"time"
)

// Repositories holds one implementation of every repository interface.
type Repositories struct {
	Users               repository.UserRepository
	Routines            repository.RoutineRepository
	IndependentRoutines repository.RoutineRepository
	WorkoutLogs         repository.WorkoutLogRepository
	AuditLogs           repository.AuditLogRepository
	Exercises           repository.ExerciseRepository
	Branding            repository.BrandingRepository
}

// AllRoutines returns both routine namespaces.
func (r *Repositories) AllRoutines() []repository.RoutineRepository {
	return []repository.RoutineRepository{r.Routines, r.IndependentRoutines}
}

// OpenRepositories connects the configured database driver. The returned
// close func is never nil.
func OpenRepositories(ctx context.Context, cfg config.DatabaseConfig) (*Repositories, func(), error) {
	switch cfg.Driver {
	case "memory":
		log.Println("WARN: Using the in-memory store, data is lost on exit.")
		store := memory.NewStore()
		return &Repositories{
			Users:               store.Users,
			Routines:            store.Routines,
			IndependentRoutines: store.IndependentRoutines,
			WorkoutLogs:         store.WorkoutLogs,
			AuditLogs:           store.AuditLogs,
			Exercises:           store.Exercises,
			Branding:            store.Branding,
		}, func() {}, nil
	case "mongo":
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	dbClient, err := mongo.ConnectDB(cfg.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to MongoDB: %w", err)
	}
	closeDB := func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}
	appDB := dbClient.Database(cfg.Name)
	log.Println("Database connection established.")

	indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	mongo.EnsureIndexes(indexCtx, appDB)

	coached, err := mongo.NewMongoRoutineRepository(appDB, domain.NamespaceCoached)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	independent, err := mongo.NewMongoRoutineRepository(appDB, domain.NamespaceIndependent)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	return &Repositories{
		Users:               mongo.NewMongoUserRepository(appDB),
		Routines:            coached,
		IndependentRoutines: independent,
		WorkoutLogs:         mongo.NewMongoWorkoutLogRepository(appDB),
		AuditLogs:           mongo.NewMongoAuditLogRepository(appDB),
		Exercises:           mongo.NewMongoExerciseRepository(appDB),
		Branding:            mongo.NewMongoBrandingRepository(appDB),
	}, closeDB, nil
}

// OpenStorage returns S3 storage when a bucket is configured and the local
// placeholder otherwise.
func OpenStorage(ctx context.Context, cfg config.S3Config) (storage.FileStorage, error) {
	if cfg.BucketName == "" {
		log.Println("WARN: s3.bucket_name not set, media URLs point at the local placeholder.")
		return storage.NewMemoryStorage(""), nil
	}
	return storage.NewS3Storage(ctx, cfg)
}
