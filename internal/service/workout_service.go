package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrWorkoutLogNotFound = &DomainError{Code: CodeNotFound, Message: "workout log not found"}

// WorkoutEntry is one completed exercise as reported by the member.
type WorkoutEntry struct {
	ExerciseID primitive.ObjectID
	RoutineID  primitive.ObjectID
	Weight     float64
	Reps       int
	RPE        float64
	Notes      string
}

// WorkoutCorrection is an administrative fix of a logged entry.
type WorkoutCorrection struct {
	Weight *float64
	Reps   *int
	RPE    *float64
	Notes  *string
}

type WorkoutService interface {
	LogWorkout(ctx context.Context, actor Actor, entry WorkoutEntry) (*domain.WorkoutLog, error)
	ListLogs(ctx context.Context, actor Actor, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error)
	// CompletedThisWeek returns the exercises of routineID logged since
	// Monday 00:00 UTC of the current week.
	CompletedThisWeek(ctx context.Context, actor Actor, userID, routineID primitive.ObjectID) ([]primitive.ObjectID, error)
	CorrectLog(ctx context.Context, actor Actor, logID primitive.ObjectID, fix WorkoutCorrection) (*domain.WorkoutLog, error)
}

type workoutService struct {
	logs     repository.WorkoutLogRepository
	routines []repository.RoutineRepository
	audit    AuditRecorder
	clock    Clock
}

// NewWorkoutService takes the routine repositories of every namespace a
// member can train from.
func NewWorkoutService(logs repository.WorkoutLogRepository, routines []repository.RoutineRepository, audit AuditRecorder, clock Clock) WorkoutService {
	if clock == nil {
		clock = SystemClock
	}
	return &workoutService{
		logs:     logs,
		routines: routines,
		audit:    audit,
		clock:    clock,
	}
}

// StartOfWeek returns Monday 00:00 UTC of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	y, m, d := t.Date()
	return time.Date(y, m, d-daysSinceMonday, 0, 0, 0, 0, time.UTC)
}

func (s *workoutService) LogWorkout(ctx context.Context, actor Actor, entry WorkoutEntry) (*domain.WorkoutLog, error) {
	if entry.ExerciseID == primitive.NilObjectID || entry.RoutineID == primitive.NilObjectID {
		return nil, validationError("exerciseId and routineId are required")
	}
	if err := validateMeasures(entry.Weight, entry.Reps, entry.RPE); err != nil {
		return nil, err
	}

	routine, err := s.findRoutine(ctx, entry.RoutineID)
	if err != nil {
		return nil, err
	}
	if routine.UserID != actor.ID {
		return nil, &DomainError{Code: CodeForbidden, Message: "routine belongs to another user"}
	}
	if !routineHasExercise(routine, entry.ExerciseID) {
		return nil, validationError("exercise %s is not part of routine %s", entry.ExerciseID.Hex(), routine.ID.Hex())
	}

	record := &domain.WorkoutLog{
		UserID:     actor.ID,
		ExerciseID: entry.ExerciseID,
		RoutineID:  entry.RoutineID,
		Weight:     entry.Weight,
		Reps:       entry.Reps,
		RPE:        entry.RPE,
		Notes:      strings.TrimSpace(entry.Notes),
		Timestamp:  s.clock(),
	}
	logID, err := s.logs.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = logID

	s.audit.Record(ctx, actor.ID, domain.AuditLogWorkout,
		fmt.Sprintf("log %s: exercise %s of routine %s", logID.Hex(), entry.ExerciseID.Hex(), entry.RoutineID.Hex()))
	return record, nil
}

func (s *workoutService) ListLogs(ctx context.Context, actor Actor, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error) {
	if !actor.IsStaff() && actor.ID != userID {
		return nil, &DomainError{Code: CodeForbidden, Message: "access denied to this user's workouts"}
	}
	return s.logs.ListByUser(ctx, userID, exerciseID)
}

func (s *workoutService) CompletedThisWeek(ctx context.Context, actor Actor, userID, routineID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if !actor.IsStaff() && actor.ID != userID {
		return nil, &DomainError{Code: CodeForbidden, Message: "access denied to this user's workouts"}
	}
	if routineID == primitive.NilObjectID {
		return nil, validationError("routineId is required")
	}

	logs, err := s.logs.ListSince(ctx, userID, routineID, StartOfWeek(s.clock()))
	if err != nil {
		return nil, err
	}

	seen := make(map[primitive.ObjectID]struct{}, len(logs))
	done := []primitive.ObjectID{}
	for _, l := range logs {
		if _, ok := seen[l.ExerciseID]; ok {
			continue
		}
		seen[l.ExerciseID] = struct{}{}
		done = append(done, l.ExerciseID)
	}
	sort.Slice(done, func(i, j int) bool { return done[i].Hex() < done[j].Hex() })
	return done, nil
}

func (s *workoutService) CorrectLog(ctx context.Context, actor Actor, logID primitive.ObjectID, fix WorkoutCorrection) (*domain.WorkoutLog, error) {
	if !actor.IsStaff() {
		return nil, &DomainError{Code: CodeForbidden, Message: "only coaches and admins can correct workout logs"}
	}
	record, err := s.logs.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutLogNotFound
		}
		return nil, err
	}

	if fix.Weight != nil {
		record.Weight = *fix.Weight
	}
	if fix.Reps != nil {
		record.Reps = *fix.Reps
	}
	if fix.RPE != nil {
		record.RPE = *fix.RPE
	}
	if fix.Notes != nil {
		record.Notes = strings.TrimSpace(*fix.Notes)
	}
	if err := validateMeasures(record.Weight, record.Reps, record.RPE); err != nil {
		return nil, err
	}

	now := s.clock()
	record.CorrectedBy = &actor.ID
	record.CorrectedAt = &now
	if err := s.logs.Update(ctx, record); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, domain.AuditCorrectWorkoutLog,
		fmt.Sprintf("log %s of user %s", record.ID.Hex(), record.UserID.Hex()))
	return record, nil
}

// findRoutine looks the routine up in every namespace.
func (s *workoutService) findRoutine(ctx context.Context, routineID primitive.ObjectID) (*domain.MonthlyRoutine, error) {
	for _, repo := range s.routines {
		routine, err := repo.GetByID(ctx, routineID)
		if err == nil {
			return routine, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
	}
	return nil, validationError("routineId %s does not reference an existing routine", routineID.Hex())
}

func routineHasExercise(routine *domain.MonthlyRoutine, exerciseID primitive.ObjectID) bool {
	for _, ex := range routine.Exercises() {
		if ex.ExerciseID == exerciseID {
			return true
		}
	}
	return false
}

func validateMeasures(weight float64, reps int, rpe float64) error {
	if weight < 0 {
		return validationError("weight cannot be negative")
	}
	if reps < 0 {
		return validationError("reps cannot be negative")
	}
	if rpe < 0 || rpe > 10 {
		return validationError("rpe must be between 0 and 10")
	}
	return nil
}
