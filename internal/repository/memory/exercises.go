package memory

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ExerciseRepository struct {
	mu        sync.RWMutex
	exercises map[primitive.ObjectID]domain.Exercise
}

func NewExerciseRepository() *ExerciseRepository {
	return &ExerciseRepository{exercises: make(map[primitive.ObjectID]domain.Exercise)}
}

func (r *ExerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.CreatedBy == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and author are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	exercise.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now
	r.exercises[exercise.ID] = *exercise
	return exercise.ID, nil
}

func (r *ExerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ex, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &ex, nil
}

func (r *ExerciseRepository) List(ctx context.Context) ([]domain.Exercise, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Exercise, 0, len(r.exercises))
	for _, ex := range r.exercises {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MuscleGroup != out[j].MuscleGroup {
			return out[i].MuscleGroup < out[j].MuscleGroup
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (r *ExerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.exercises[exercise.ID]
	if !ok {
		return repository.ErrNotFound
	}
	exercise.CreatedBy = stored.CreatedBy
	exercise.CreatedAt = stored.CreatedAt
	exercise.UpdatedAt = time.Now().UTC()
	r.exercises[exercise.ID] = *exercise
	return nil
}

func (r *ExerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.exercises[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.exercises, id)
	return nil
}
