// Package memory holds in-process implementations of the repository
// interfaces. They back the "memory" database driver and the service tests.
package memory

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
)

// Store groups one instance of every repository sharing nothing but the process.
type Store struct {
	Users               *UserRepository
	Routines            *RoutineRepository
	IndependentRoutines *RoutineRepository
	WorkoutLogs         *WorkoutLogRepository
	AuditLogs           *AuditLogRepository
	Exercises           *ExerciseRepository
	Branding            *BrandingRepository
}

func NewStore() *Store {
	return &Store{
		Users:               NewUserRepository(),
		Routines:            NewRoutineRepository(domain.NamespaceCoached),
		IndependentRoutines: NewRoutineRepository(domain.NamespaceIndependent),
		WorkoutLogs:         NewWorkoutLogRepository(),
		AuditLogs:           NewAuditLogRepository(),
		Exercises:           NewExerciseRepository(),
		Branding:            NewBrandingRepository(),
	}
}

var (
	_ repository.UserRepository       = (*UserRepository)(nil)
	_ repository.RoutineRepository    = (*RoutineRepository)(nil)
	_ repository.WorkoutLogRepository = (*WorkoutLogRepository)(nil)
	_ repository.AuditLogRepository   = (*AuditLogRepository)(nil)
	_ repository.ExerciseRepository   = (*ExerciseRepository)(nil)
	_ repository.BrandingRepository   = (*BrandingRepository)(nil)
)
