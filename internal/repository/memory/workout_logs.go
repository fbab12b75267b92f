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

type WorkoutLogRepository struct {
	mu   sync.RWMutex
	logs map[primitive.ObjectID]domain.WorkoutLog
}

func NewWorkoutLogRepository() *WorkoutLogRepository {
	return &WorkoutLogRepository{logs: make(map[primitive.ObjectID]domain.WorkoutLog)}
}

func (r *WorkoutLogRepository) Create(ctx context.Context, entry *domain.WorkoutLog) (primitive.ObjectID, error) {
	if entry.UserID == primitive.NilObjectID || entry.ExerciseID == primitive.NilObjectID || entry.RoutineID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log requires userId, exerciseId and routineId")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry.ID = primitive.NewObjectID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	r.logs[entry.ID] = *entry
	return entry.ID, nil
}

func (r *WorkoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entry, nil
}

func (r *WorkoutLogRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error) {
	return r.filter(func(l domain.WorkoutLog) bool {
		return l.UserID == userID && (exerciseID == nil || l.ExerciseID == *exerciseID)
	}), nil
}

func (r *WorkoutLogRepository) ListSince(ctx context.Context, userID, routineID primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error) {
	return r.filter(func(l domain.WorkoutLog) bool {
		return l.UserID == userID && l.RoutineID == routineID && !l.Timestamp.Before(since)
	}), nil
}

func (r *WorkoutLogRepository) filter(keep func(domain.WorkoutLog) bool) []domain.WorkoutLog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.WorkoutLog{}
	for _, l := range r.logs {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out
}

func (r *WorkoutLogRepository) Update(ctx context.Context, entry *domain.WorkoutLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.logs[entry.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Weight = entry.Weight
	stored.Reps = entry.Reps
	stored.RPE = entry.RPE
	stored.Notes = entry.Notes
	stored.CorrectedBy = entry.CorrectedBy
	stored.CorrectedAt = entry.CorrectedAt
	r.logs[entry.ID] = stored
	return nil
}
