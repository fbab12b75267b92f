package service

import (
	"alcyxob/gym-manager/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (f *fixture) routineServices() (coached, independent RoutineService) {
	coached = NewRoutineService(f.store.Routines, f.publisher(f.store.Routines), f.audit)
	independent = NewRoutineService(f.store.IndependentRoutines, f.publisher(f.store.IndependentRoutines), f.audit)
	return coached, independent
}

func TestRoutineService_CoachedWritesNeedStaff(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "member", domain.RoleUser, testNow.AddDate(0, 1, 0))
	coach := f.addUser(t, "coach", domain.RoleCoach, time.Time{})
	coached, _ := f.routineServices()
	ctx := context.Background()

	_, err := coached.Publish(ctx, actorOf(user), f.draft(user.ID, "self"))
	assert.ErrorIs(t, err, ErrForbidden)

	routine, err := coached.Publish(ctx, actorOf(coach), f.draft(user.ID, "plan"))
	require.NoError(t, err)

	// members read their own routines but cannot edit them
	got, err := coached.GetActive(ctx, actorOf(user), user.ID)
	require.NoError(t, err)
	assert.Equal(t, routine.ID, got.ID)

	title := "edited"
	_, err = coached.Update(ctx, actorOf(user), routine.ID, RoutinePatch{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, coached.Delete(ctx, actorOf(user), routine.ID), ErrForbidden)
}

func TestRoutineService_ReadsAreStaffOrOwner(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "member", domain.RoleUser, testNow.AddDate(0, 1, 0))
	stranger := f.addUser(t, "stranger", domain.RoleUser, testNow.AddDate(0, 1, 0))
	coach := f.addUser(t, "coach", domain.RoleCoach, time.Time{})
	coached, _ := f.routineServices()
	ctx := context.Background()

	routine, err := coached.Publish(ctx, actorOf(coach), f.draft(user.ID, "plan"))
	require.NoError(t, err)

	_, err = coached.Get(ctx, actorOf(stranger), routine.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = coached.ListForUser(ctx, actorOf(stranger), user.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := coached.ListForUser(ctx, actorOf(coach), user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = coached.GetActive(ctx, actorOf(stranger), stranger.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoutineService_IndependentIsSelfManaged(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "member", domain.RoleUser, testNow.AddDate(0, 1, 0))
	other := f.addUser(t, "other", domain.RoleUser, testNow.AddDate(0, 1, 0))
	_, independent := f.routineServices()
	ctx := context.Background()

	draft := f.draft(primitive.NilObjectID, "mine")
	routine, err := independent.Publish(ctx, actorOf(user), draft)
	require.NoError(t, err)
	assert.Equal(t, user.ID, routine.UserID)
	assert.Equal(t, user.ID, routine.CoachID)

	_, err = independent.Publish(ctx, actorOf(other), f.draft(user.ID, "not yours"))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.ErrorIs(t, independent.Delete(ctx, actorOf(other), routine.ID), ErrForbidden)
}

func TestRoutineService_UpdateAndDeleteTouchOnlyTheTarget(t *testing.T) {
	f := newFixture(t)
	user := f.addUser(t, "member", domain.RoleUser, testNow.AddDate(0, 1, 0))
	coach := f.addUser(t, "coach", domain.RoleCoach, time.Time{})
	coached, _ := f.routineServices()
	ctx := context.Background()

	old, err := coached.Publish(ctx, actorOf(coach), f.draft(user.ID, "old"))
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	current, err := coached.Publish(ctx, actorOf(coach), f.draft(user.ID, "current"))
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	title := "renamed"
	month := 2
	updated, err := coached.Update(ctx, actorOf(coach), old.ID, RoutinePatch{Title: &title, Month: &month})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, domain.RoutineStatusArchived, updated.Status)

	badMonth := 0
	_, err = coached.Update(ctx, actorOf(coach), old.ID, RoutinePatch{Month: &badMonth})
	assert.ErrorIs(t, err, ErrValidation)

	f.clock.Advance(time.Minute)
	require.NoError(t, coached.Delete(ctx, actorOf(coach), old.ID))

	active, err := coached.GetActive(ctx, actorOf(user), user.ID)
	require.NoError(t, err)
	assert.Equal(t, current.ID, active.ID)
	assert.Equal(t, map[string]domain.RoutineStatus{"current": domain.RoutineStatusActive}, statuses(t, f.store.Routines, user.ID))

	_, err = coached.Get(ctx, actorOf(coach), old.ID)
	assert.ErrorIs(t, err, ErrRoutineNotFound)

	assert.Equal(t, []domain.AuditAction{
		domain.AuditDeleteRoutine, domain.AuditUpdateRoutine, domain.AuditCreateRoutine, domain.AuditCreateRoutine,
	}, f.auditActions(t))
}
