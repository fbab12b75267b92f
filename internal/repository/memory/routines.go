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

// RoutineRepository keeps the routines of one namespace.
type RoutineRepository struct {
	namespace domain.RoutineNamespace

	mu       sync.RWMutex
	routines map[primitive.ObjectID]domain.MonthlyRoutine
}

func NewRoutineRepository(namespace domain.RoutineNamespace) *RoutineRepository {
	return &RoutineRepository{
		namespace: namespace,
		routines:  make(map[primitive.ObjectID]domain.MonthlyRoutine),
	}
}

func (r *RoutineRepository) Namespace() domain.RoutineNamespace {
	return r.namespace
}

func (r *RoutineRepository) Create(ctx context.Context, routine *domain.MonthlyRoutine) (primitive.ObjectID, error) {
	if routine.UserID == primitive.NilObjectID || routine.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("routine requires userId and coachId")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	routine.ID = primitive.NewObjectID()
	if routine.CreatedAt.IsZero() {
		routine.CreatedAt = time.Now().UTC()
	}
	routine.UpdatedAt = routine.CreatedAt
	r.routines[routine.ID] = cloneRoutine(*routine)
	return routine.ID, nil
}

func (r *RoutineRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MonthlyRoutine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	routine, ok := r.routines[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneRoutine(routine)
	return &out, nil
}

func (r *RoutineRepository) GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.MonthlyRoutine, error) {
	routines, _ := r.ListByUser(ctx, userID)
	for _, routine := range routines {
		if routine.Status == domain.RoutineStatusActive {
			return &routine, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *RoutineRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MonthlyRoutine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.MonthlyRoutine{}
	for _, routine := range r.routines {
		if routine.UserID == userID {
			out = append(out, cloneRoutine(routine))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.Hex() > out[j].ID.Hex()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *RoutineRepository) ArchiveAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	now := time.Now().UTC()
	for id, routine := range r.routines {
		if routine.UserID == userID && routine.Status != domain.RoutineStatusArchived {
			routine.Status = domain.RoutineStatusArchived
			routine.UpdatedAt = now
			r.routines[id] = routine
			n++
		}
	}
	return n, nil
}

func (r *RoutineRepository) Update(ctx context.Context, routine *domain.MonthlyRoutine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.routines[routine.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Month = routine.Month
	stored.Year = routine.Year
	stored.Title = routine.Title
	stored.Weeks = routine.Weeks
	stored.UpdatedAt = time.Now().UTC()
	r.routines[routine.ID] = cloneRoutine(stored)
	routine.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *RoutineRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.routines[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.routines, id)
	return nil
}

// cloneRoutine copies the nested week/day slices so callers never share
// backing arrays with the stored document.
func cloneRoutine(in domain.MonthlyRoutine) domain.MonthlyRoutine {
	out := in
	out.Weeks = make([]domain.RoutineWeek, len(in.Weeks))
	for i, w := range in.Weeks {
		out.Weeks[i] = w
		out.Weeks[i].Days = make([]domain.RoutineDay, len(w.Days))
		for j, d := range w.Days {
			out.Weeks[i].Days[j] = d
			out.Weeks[i].Days[j].Exercises = append([]domain.ExerciseAssignment(nil), d.Exercises...)
		}
	}
	return out
}
