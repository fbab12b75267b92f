package memory

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUsers_DuplicateEmailAndCount(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()

	_, err := users.Create(ctx, &domain.User{Name: "Ana", Email: "ana@gym.test", Role: domain.RoleAdmin})
	require.NoError(t, err)
	_, err = users.Create(ctx, &domain.User{Name: "Ana 2", Email: "ana@gym.test", Role: domain.RoleUser})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	_, err = users.Create(ctx, &domain.User{Name: "Bo", Email: "bo@gym.test", Role: domain.RoleUser})
	require.NoError(t, err)

	admins, err := users.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)

	_, err = users.GetByID(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, users.Delete(ctx, primitive.NewObjectID()), repository.ErrNotFound)
}

func TestRoutines_ArchiveIsScopedToUser(t *testing.T) {
	ctx := context.Background()
	routines := NewRoutineRepository(domain.NamespaceCoached)
	coach, alice, bob := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, user := range []primitive.ObjectID{alice, alice, bob} {
		_, err := routines.Create(ctx, &domain.MonthlyRoutine{
			UserID: user, CoachID: coach, Month: 1, Year: 2025,
			Status: domain.RoutineStatusActive, CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}

	n, err := routines.ArchiveAllForUser(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = routines.GetActiveByUser(ctx, alice)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	active, err := routines.GetActiveByUser(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, bob, active.UserID)

	list, err := routines.ListByUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].CreatedAt.After(list[1].CreatedAt))
}

func TestRoutines_ReturnedCopiesAreDetached(t *testing.T) {
	ctx := context.Background()
	routines := NewRoutineRepository(domain.NamespaceIndependent)
	user := primitive.NewObjectID()
	id, err := routines.Create(ctx, &domain.MonthlyRoutine{
		UserID: user, CoachID: user, Status: domain.RoutineStatusActive,
		Weeks: []domain.RoutineWeek{{Number: 1, Days: []domain.RoutineDay{{Name: "A"}}}},
	})
	require.NoError(t, err)

	got, err := routines.GetByID(ctx, id)
	require.NoError(t, err)
	got.Weeks[0].Days[0].Name = "changed"

	again, err := routines.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Weeks[0].Days[0].Name)
}

func TestWorkoutLogs_ListSince(t *testing.T) {
	ctx := context.Background()
	logs := NewWorkoutLogRepository()
	user, routine := primitive.NewObjectID(), primitive.NewObjectID()
	monday := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

	for _, ts := range []time.Time{monday.Add(-time.Second), monday, monday.Add(48 * time.Hour)} {
		_, err := logs.Create(ctx, &domain.WorkoutLog{UserID: user, RoutineID: routine, ExerciseID: primitive.NewObjectID(), Timestamp: ts})
		require.NoError(t, err)
	}

	since, err := logs.ListSince(ctx, user, routine, monday)
	require.NoError(t, err)
	require.Len(t, since, 2)
	assert.Equal(t, monday.Add(48*time.Hour), since[0].Timestamp)
}

func TestAuditLogs_NewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	audit := NewAuditLogRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, audit.Append(ctx, &domain.AuditLog{Action: domain.AuditCreateUser, Timestamp: base.Add(time.Duration(i) * time.Minute)}))
	}

	recent, err := audit.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, base.Add(2*time.Minute), recent[0].Timestamp)
	assert.Equal(t, base.Add(time.Minute), recent[1].Timestamp)
}

func TestAuditLogs_EqualTimestampsOrderByID(t *testing.T) {
	ctx := context.Background()
	audit := NewAuditLogRepository()
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]primitive.ObjectID, 5)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}

	for _, i := range []int{3, 0, 4, 1, 2} {
		require.NoError(t, audit.Append(ctx, &domain.AuditLog{ID: ids[i], Action: domain.AuditCreateUser, Timestamp: at}))
	}

	recent, err := audit.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, len(ids))
	for i, entry := range recent {
		assert.Equal(t, ids[len(ids)-1-i], entry.ID)
	}
}

func TestBranding_NotFoundUntilSaved(t *testing.T) {
	ctx := context.Background()
	branding := NewBrandingRepository()

	_, err := branding.Get(ctx)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, branding.Save(ctx, &domain.Branding{GymName: "Iron"}))
	got, err := branding.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Iron", got.GymName)
}
