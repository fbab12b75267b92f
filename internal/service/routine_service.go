package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrRoutineNotFound = &DomainError{Code: CodeNotFound, Message: "routine not found"}

// RoutinePatch carries the fields a PATCH may change. Status is not one of
// them: only publishing moves routines between ACTIVE and ARCHIVED.
type RoutinePatch struct {
	Month *int
	Year  *int
	Title *string
	Weeks *[]domain.RoutineWeek
}

type RoutineService interface {
	Namespace() domain.RoutineNamespace
	Publish(ctx context.Context, actor Actor, draft RoutineDraft) (*domain.MonthlyRoutine, error)
	GetActive(ctx context.Context, actor Actor, userID primitive.ObjectID) (*domain.MonthlyRoutine, error)
	ListForUser(ctx context.Context, actor Actor, userID primitive.ObjectID) ([]domain.MonthlyRoutine, error)
	Get(ctx context.Context, actor Actor, routineID primitive.ObjectID) (*domain.MonthlyRoutine, error)
	Update(ctx context.Context, actor Actor, routineID primitive.ObjectID, patch RoutinePatch) (*domain.MonthlyRoutine, error)
	Delete(ctx context.Context, actor Actor, routineID primitive.ObjectID) error
}

// routineService applies the access policy of a namespace around the
// publisher and the repository of that namespace.
type routineService struct {
	routines  repository.RoutineRepository
	publisher *RoutinePublisher
	audit     AuditRecorder
}

// NewRoutineService wires one namespace. Coached routines are written by
// staff; independent routines by their owner (or an admin).
func NewRoutineService(routines repository.RoutineRepository, publisher *RoutinePublisher, audit AuditRecorder) RoutineService {
	return &routineService{
		routines:  routines,
		publisher: publisher,
		audit:     audit,
	}
}

func (s *routineService) Namespace() domain.RoutineNamespace {
	return s.routines.Namespace()
}

func (s *routineService) Publish(ctx context.Context, actor Actor, draft RoutineDraft) (*domain.MonthlyRoutine, error) {
	if s.Namespace() == domain.NamespaceIndependent {
		if draft.UserID == primitive.NilObjectID {
			draft.UserID = actor.ID
		}
	}
	if err := s.checkWrite(actor, draft.UserID); err != nil {
		return nil, err
	}
	return s.publisher.Publish(ctx, actor.ID, draft)
}

func (s *routineService) GetActive(ctx context.Context, actor Actor, userID primitive.ObjectID) (*domain.MonthlyRoutine, error) {
	if err := checkRead(actor, userID); err != nil {
		return nil, err
	}
	routine, err := s.routines.GetActiveByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &DomainError{Code: CodeNotFound, Message: "no active routine"}
	}
	return routine, err
}

func (s *routineService) ListForUser(ctx context.Context, actor Actor, userID primitive.ObjectID) ([]domain.MonthlyRoutine, error) {
	if err := checkRead(actor, userID); err != nil {
		return nil, err
	}
	return s.routines.ListByUser(ctx, userID)
}

func (s *routineService) Get(ctx context.Context, actor Actor, routineID primitive.ObjectID) (*domain.MonthlyRoutine, error) {
	routine, err := s.load(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if err := checkRead(actor, routine.UserID); err != nil {
		return nil, err
	}
	return routine, nil
}

func (s *routineService) Update(ctx context.Context, actor Actor, routineID primitive.ObjectID, patch RoutinePatch) (*domain.MonthlyRoutine, error) {
	routine, err := s.load(ctx, routineID)
	if err != nil {
		return nil, err
	}
	if err := s.checkWrite(actor, routine.UserID); err != nil {
		return nil, err
	}

	if patch.Month != nil {
		routine.Month = *patch.Month
	}
	if patch.Year != nil {
		routine.Year = *patch.Year
	}
	if patch.Title != nil {
		routine.Title = *patch.Title
	}
	if patch.Weeks != nil {
		routine.Weeks = *patch.Weeks
	}
	if err := validateRoutineBody(routine.Month, routine.Year, routine.Weeks); err != nil {
		return nil, err
	}

	if err := s.routines.Update(ctx, routine); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, domain.AuditUpdateRoutine,
		fmt.Sprintf("%s routine %s of user %s", s.Namespace(), routine.ID.Hex(), routine.UserID.Hex()))
	return routine, nil
}

func (s *routineService) Delete(ctx context.Context, actor Actor, routineID primitive.ObjectID) error {
	routine, err := s.load(ctx, routineID)
	if err != nil {
		return err
	}
	if err := s.checkWrite(actor, routine.UserID); err != nil {
		return err
	}
	if err := s.routines.Delete(ctx, routineID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRoutineNotFound
		}
		return err
	}
	s.audit.Record(ctx, actor.ID, domain.AuditDeleteRoutine,
		fmt.Sprintf("%s routine %s of user %s (was %s)", s.Namespace(), routine.ID.Hex(), routine.UserID.Hex(), routine.Status))
	return nil
}

func (s *routineService) load(ctx context.Context, routineID primitive.ObjectID) (*domain.MonthlyRoutine, error) {
	if routineID == primitive.NilObjectID {
		return nil, validationError("routine id is required")
	}
	routine, err := s.routines.GetByID(ctx, routineID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	return routine, nil
}

func (s *routineService) checkWrite(actor Actor, ownerID primitive.ObjectID) error {
	switch s.Namespace() {
	case domain.NamespaceIndependent:
		if actor.ID == ownerID || actor.IsAdmin() {
			return nil
		}
		return &DomainError{Code: CodeForbidden, Message: "self-managed routines can only be changed by their owner"}
	default:
		if actor.IsStaff() {
			return nil
		}
		return &DomainError{Code: CodeForbidden, Message: "only coaches and admins can manage routines"}
	}
}

func checkRead(actor Actor, ownerID primitive.ObjectID) error {
	if actor.IsStaff() || actor.ID == ownerID {
		return nil
	}
	return &DomainError{Code: CodeForbidden, Message: "access denied to this user's routines"}
}
