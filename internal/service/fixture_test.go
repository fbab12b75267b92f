package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/repository/memory"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testNow = time.Date(2025, time.January, 8, 15, 0, 0, 0, time.UTC) // a Wednesday

// testClock starts at testNow and only moves when told to.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: testNow}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store *memory.Store
	clock *testClock
	audit AuditService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := newTestClock()
	store := memory.NewStore()
	return &fixture{
		store: store,
		clock: clock,
		audit: NewAuditService(store.AuditLogs, clock.Now, time.Second, nil),
	}
}

func (f *fixture) addUser(t *testing.T, name string, role domain.Role, end time.Time) domain.User {
	t.Helper()
	user := &domain.User{
		Name:                name,
		Email:               name + "@gym.test",
		Role:                role,
		Status:              domain.UserStatusActive,
		SubscriptionEndDate: end,
	}
	_, err := f.store.Users.Create(context.Background(), user)
	require.NoError(t, err)
	return *user
}

// auditActions flushes pending entries and returns their actions, newest first.
func (f *fixture) auditActions(t *testing.T) []domain.AuditAction {
	t.Helper()
	f.audit.Flush()
	entries, err := f.audit.List(context.Background(), 0)
	require.NoError(t, err)
	actions := make([]domain.AuditAction, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func actorOf(u domain.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

func oneExerciseWeeks(exerciseID primitive.ObjectID) []domain.RoutineWeek {
	return []domain.RoutineWeek{{
		Number: 1,
		Days: []domain.RoutineDay{{
			Name: "Day 1",
			Exercises: []domain.ExerciseAssignment{
				{ExerciseID: exerciseID, Name: "Squat", Series: 4, Reps: "8-10", Rest: "90s"},
			},
		}},
	}}
}
