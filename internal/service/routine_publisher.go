package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrPublishIncomplete means the previous routines were archived but the new
// one could not be stored: the user is left without an active routine.
var ErrPublishIncomplete = &DomainError{Code: CodePublishIncomplete}

// RoutineDraft is the routine a coach (or member, for self-managed
// routines) wants to put in effect.
type RoutineDraft struct {
	UserID primitive.ObjectID
	Month  int
	Year   int
	Title  string
	Weeks  []domain.RoutineWeek
}

// RoutinePublisher keeps exactly one ACTIVE routine per user inside one
// routine namespace. It does no authorization.
//
// Archive-then-insert is not transactional and concurrent publishes for the
// same user are not guarded: sequential publishes always end with the last
// one active, interleaved ones can leave two ACTIVE routines until the next
// publish. GetActiveByUser returns the newest.
type RoutinePublisher struct {
	routines repository.RoutineRepository
	users    repository.UserRepository
	audit    AuditRecorder
	clock    Clock
	metrics  *metrics.Metrics
}

func NewRoutinePublisher(
	routines repository.RoutineRepository,
	users repository.UserRepository,
	audit AuditRecorder,
	clock Clock,
	m *metrics.Metrics,
) *RoutinePublisher {
	if clock == nil {
		clock = SystemClock
	}
	return &RoutinePublisher{
		routines: routines,
		users:    users,
		audit:    audit,
		clock:    clock,
		metrics:  m,
	}
}

// Publish archives every routine of draft.UserID in this namespace, then
// stores the draft as the ACTIVE routine and records the audit entry.
func (p *RoutinePublisher) Publish(ctx context.Context, coachID primitive.ObjectID, draft RoutineDraft) (*domain.MonthlyRoutine, error) {
	namespace := string(p.routines.Namespace())

	if err := validateDraft(coachID, draft); err != nil {
		p.metrics.RoutinePublished(namespace, "invalid")
		return nil, err
	}
	if _, err := p.users.GetByID(ctx, draft.UserID); err != nil {
		p.metrics.RoutinePublished(namespace, "invalid")
		if errors.Is(err, repository.ErrNotFound) {
			return nil, validationError("userId %s does not reference an existing user", draft.UserID.Hex())
		}
		return nil, err
	}

	// 1. archive
	archived, err := p.routines.ArchiveAllForUser(ctx, draft.UserID)
	if err != nil {
		p.metrics.RoutinePublished(namespace, "error")
		return nil, fmt.Errorf("archive routines of user %s: %w", draft.UserID.Hex(), err)
	}

	// 2. insert
	now := p.clock()
	routine := &domain.MonthlyRoutine{
		UserID:    draft.UserID,
		CoachID:   coachID,
		Month:     draft.Month,
		Year:      draft.Year,
		Title:     draft.Title,
		Status:    domain.RoutineStatusActive,
		Weeks:     draft.Weeks,
		CreatedAt: now,
		UpdatedAt: now,
	}
	routineID, err := p.routines.Create(ctx, routine)
	if err != nil {
		log.Printf("CRITICAL: archived %d %s routine(s) of user %s but failed to insert the new one: %v",
			archived, namespace, draft.UserID.Hex(), err)
		p.metrics.RoutinePublished(namespace, "incomplete")
		return nil, &DomainError{
			Code:    CodePublishIncomplete,
			Message: "Previous routines were archived but the new routine could not be saved. Publish it again.",
			Err:     err,
		}
	}
	routine.ID = routineID

	// 3. audit
	p.audit.Record(ctx, coachID, domain.AuditCreateRoutine, fmt.Sprintf("%s routine %s (%02d/%d) for user %s, archived %d",
		namespace, routineID.Hex(), draft.Month, draft.Year, draft.UserID.Hex(), archived))
	p.metrics.RoutinePublished(namespace, "ok")

	return routine, nil
}

func validateDraft(coachID primitive.ObjectID, draft RoutineDraft) error {
	if coachID == primitive.NilObjectID {
		return validationError("coachId is required")
	}
	if draft.UserID == primitive.NilObjectID {
		return validationError("userId is required")
	}
	return validateRoutineBody(draft.Month, draft.Year, draft.Weeks)
}

func validateRoutineBody(month, year int, weeks []domain.RoutineWeek) error {
	if month < 1 || month > 12 {
		return validationError("month must be between 1 and 12")
	}
	if year < 2000 || year > 2100 {
		return validationError("year must be between 2000 and 2100")
	}
	for wi, w := range weeks {
		for di, d := range w.Days {
			for ei, ex := range d.Exercises {
				if ex.ExerciseID == primitive.NilObjectID {
					return validationError("week %d, day %d, exercise %d: exerciseId is required", wi+1, di+1, ei+1)
				}
				if ex.Series < 0 {
					return validationError("week %d, day %d, exercise %d: series cannot be negative", wi+1, di+1, ei+1)
				}
			}
		}
	}
	return nil
}
