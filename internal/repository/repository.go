package repository

import (
	"alcyxob/gym-manager/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrDuplicate    = RepositoryError("duplicate key")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	CountByRole(ctx context.Context, role domain.Role) (int64, error)
	// Update replaces every mutable field of the stored user.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// RoutineRepository stores monthly routines of one namespace.
// ArchiveAllForUser must have applied to every matching document before it returns.
type RoutineRepository interface {
	Namespace() domain.RoutineNamespace
	Create(ctx context.Context, routine *domain.MonthlyRoutine) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.MonthlyRoutine, error)
	GetActiveByUser(ctx context.Context, userID primitive.ObjectID) (*domain.MonthlyRoutine, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.MonthlyRoutine, error) // newest first
	ArchiveAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
	Update(ctx context.Context, routine *domain.MonthlyRoutine) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// WorkoutLogRepository defines the interface for interacting with workout logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutLog, error)
	// ListByUser returns newest first; a nil exerciseID means every exercise.
	ListByUser(ctx context.Context, userID primitive.ObjectID, exerciseID *primitive.ObjectID) ([]domain.WorkoutLog, error)
	ListSince(ctx context.Context, userID, routineID primitive.ObjectID, since time.Time) ([]domain.WorkoutLog, error)
	Update(ctx context.Context, log *domain.WorkoutLog) error
}

// AuditLogRepository is append-only.
type AuditLogRepository interface {
	Append(ctx context.Context, entry *domain.AuditLog) error
	ListRecent(ctx context.Context, limit int64) ([]domain.AuditLog, error) // newest first
}

// ExerciseRepository defines the interface for the exercise media bank.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	List(ctx context.Context) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// BrandingRepository holds the single branding document.
type BrandingRepository interface {
	Get(ctx context.Context) (*domain.Branding, error)
	Save(ctx context.Context, branding *domain.Branding) error // upsert
}
