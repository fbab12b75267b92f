package service

import (
	"alcyxob/gym-manager/internal/domain"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) accounts(defaultDays int) AccountService {
	return NewAccountService(f.store.Users, f.audit, NewSubscriptionEvaluator(DefaultWarningDays), f.clock.Now, defaultDays, nil)
}

func TestCreateUser_PinsStaffAndForcesFirstLogin(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	accounts := f.accounts(0)
	past := testNow.AddDate(-1, 0, 0)

	coach, err := accounts.CreateUser(context.Background(), actorOf(admin), NewUser{
		Name:                "Coach Carter",
		Email:               "  Coach@Gym.TEST ",
		Password:            "s3cret-pass",
		Role:                domain.RoleCoach,
		SubscriptionEndDate: &past,
	})
	require.NoError(t, err)

	assert.Equal(t, "coach@gym.test", coach.Email)
	assert.True(t, coach.IsFirstLogin)
	assert.Equal(t, domain.StaffSubscriptionEnd, coach.SubscriptionEndDate)
	assert.NotEmpty(t, coach.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", coach.PasswordHash)
	assert.Equal(t, []domain.AuditAction{domain.AuditCreateUser}, f.auditActions(t))
}

func TestCreateUser_MemberEndDate(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	ctx := context.Background()
	end := testNow.AddDate(0, 1, 0)

	supplied, err := f.accounts(0).CreateUser(ctx, actorOf(admin), NewUser{Name: "a", Email: "a@gym.test", Role: domain.RoleUser, SubscriptionEndDate: &end})
	require.NoError(t, err)
	assert.Equal(t, end, supplied.SubscriptionEndDate)

	defaulted, err := f.accounts(0).CreateUser(ctx, actorOf(admin), NewUser{Name: "b", Email: "b@gym.test", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, testNow, defaulted.SubscriptionEndDate)
	assert.Equal(t, domain.UserStatusActive, defaulted.Status)
	assert.Empty(t, defaulted.PasswordHash)

	configured, err := f.accounts(30).CreateUser(ctx, actorOf(admin), NewUser{Name: "c", Email: "c@gym.test", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, 30), configured.SubscriptionEndDate)
}

func TestCreateUser_Rejections(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	coach := f.addUser(t, "coach", domain.RoleCoach, time.Time{})
	accounts := f.accounts(0)
	ctx := context.Background()

	_, err := accounts.CreateUser(ctx, actorOf(coach), NewUser{Name: "x", Email: "x@gym.test", Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = accounts.CreateUser(ctx, actorOf(admin), NewUser{Name: "x", Email: "ADMIN@gym.test", Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = accounts.CreateUser(ctx, actorOf(admin), NewUser{Name: "x", Email: "not-an-email", Role: domain.RoleUser})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = accounts.CreateUser(ctx, actorOf(admin), NewUser{Name: "x", Email: "y@gym.test", Role: "OWNER"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = accounts.CreateUser(ctx, actorOf(admin), NewUser{Name: "x", Email: "z@gym.test", Role: domain.RoleUser, Password: "short"})
	assert.ErrorIs(t, err, ErrValidation)

	users, err := f.store.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUpdateUser_RepinsStaff(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	member := f.addUser(t, "member", domain.RoleUser, testNow.AddDate(0, 0, -10))
	accounts := f.accounts(0)
	ctx := context.Background()

	promote := domain.RoleCoach
	updated, err := accounts.UpdateUser(ctx, actorOf(admin), member.ID, UserPatch{Role: &promote})
	require.NoError(t, err)
	assert.Equal(t, domain.StaffSubscriptionEnd, updated.SubscriptionEndDate)

	// an explicit date on a staff account does not survive either
	soon := testNow.AddDate(0, 0, 1)
	updated, err = accounts.UpdateUser(ctx, actorOf(admin), member.ID, UserPatch{SubscriptionEndDate: &soon})
	require.NoError(t, err)
	assert.Equal(t, domain.StaffSubscriptionEnd, updated.SubscriptionEndDate)

	stored, err := f.store.Users.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StaffSubscriptionEnd, stored.SubscriptionEndDate)

	demote := domain.RoleUser
	updated, err = accounts.UpdateUser(ctx, actorOf(admin), member.ID, UserPatch{Role: &demote, SubscriptionEndDate: &soon})
	require.NoError(t, err)
	assert.Equal(t, soon, updated.SubscriptionEndDate)
}

func TestUpdateUser_LastAdminKeepsRole(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	accounts := f.accounts(0)

	demote := domain.RoleCoach
	_, err := accounts.UpdateUser(context.Background(), actorOf(admin), admin.ID, UserPatch{Role: &demote})

	assert.Equal(t, CodeLastAdmin, CodeOf(err))
	stored, err := f.store.Users.GetByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, stored.Role)
}

func TestDeleteUser_LastAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	f.addUser(t, "coach", domain.RoleCoach, time.Time{})
	f.addUser(t, "member", domain.RoleUser, testNow.AddDate(0, 1, 0))
	accounts := f.accounts(0)
	ctx := context.Background()

	err := accounts.DeleteUser(ctx, actorOf(admin), admin.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLastAdmin)
	assert.Equal(t, CodeLastAdmin, CodeOf(err))
	users, err := f.store.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Empty(t, f.auditActions(t))
}

func TestDeleteUser_AdminWithAnotherAdmin(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	second := f.addUser(t, "second", domain.RoleAdmin, time.Time{})
	accounts := f.accounts(0)
	ctx := context.Background()

	require.NoError(t, accounts.DeleteUser(ctx, actorOf(admin), second.ID))
	assert.ErrorIs(t, accounts.DeleteUser(ctx, actorOf(admin), second.ID), ErrNotFound)
	assert.ErrorIs(t, accounts.DeleteUser(ctx, actorOf(admin), admin.ID), ErrLastAdmin)
	assert.Equal(t, []domain.AuditAction{domain.AuditDeleteUser}, f.auditActions(t))
}

func TestAdmins_CrossRemovalKeepsOne(t *testing.T) {
	f := newFixture(t)
	first := f.addUser(t, "first", domain.RoleAdmin, time.Time{})
	second := f.addUser(t, "second", domain.RoleAdmin, time.Time{})
	accounts := f.accounts(0)
	ctx := context.Background()

	// second still holds an admin token after being demoted
	demote := domain.RoleCoach
	_, err := accounts.UpdateUser(ctx, actorOf(first), second.ID, UserPatch{Role: &demote})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	assert.ErrorIs(t, accounts.DeleteUser(ctx, actorOf(second), first.ID), ErrLastAdmin)
	_, err = accounts.UpdateUser(ctx, actorOf(second), first.ID, UserPatch{Role: &demote})
	assert.Equal(t, CodeLastAdmin, CodeOf(err))

	admins, err := f.store.Users.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), admins)
	assert.Equal(t, []domain.AuditAction{domain.AuditUpdateUser}, f.auditActions(t))
}

func TestListUsers_ProjectsStaffWithoutWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	coach := &domain.User{
		Name:                "coach",
		Email:               "coach@gym.test",
		Role:                domain.RoleCoach,
		Status:              domain.UserStatusInactive,
		SubscriptionEndDate: testNow.AddDate(-1, 0, 0),
	}
	_, err := f.store.Users.Create(ctx, coach)
	require.NoError(t, err)
	f.addUser(t, "member", domain.RoleUser, testNow.AddDate(0, 0, -1))

	views, err := f.accounts(0).ListUsers(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 2)

	byName := map[string]UserWithStatus{}
	for _, v := range views {
		byName[v.User.Name] = v
	}
	assert.Equal(t, domain.UserStatusActive, byName["coach"].User.Status)
	assert.Equal(t, domain.StaffSubscriptionEnd, byName["coach"].User.SubscriptionEndDate)
	assert.Equal(t, SubscriptionOK, byName["coach"].Subscription.State)
	assert.Equal(t, SubscriptionExpired, byName["member"].Subscription.State)

	stored, err := f.store.Users.GetByID(ctx, coach.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserStatusInactive, stored.Status)
	assert.Equal(t, testNow.AddDate(-1, 0, 0), stored.SubscriptionEndDate)
}

func TestListExpiring(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "coach", domain.RoleCoach, testNow.AddDate(-1, 0, 0))
	f.addUser(t, "gone", domain.RoleUser, testNow.AddDate(0, 0, -2))
	f.addUser(t, "soon", domain.RoleUser, testNow.AddDate(0, 0, 5))
	f.addUser(t, "later", domain.RoleUser, testNow.AddDate(0, 2, 0))

	views, err := f.accounts(0).ListExpiring(context.Background(), 7)
	require.NoError(t, err)

	var names []string
	for _, v := range views {
		names = append(names, v.User.Name)
	}
	assert.ElementsMatch(t, []string{"gone", "soon"}, names)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	accounts := f.accounts(0)
	ctx := context.Background()

	member, err := accounts.CreateUser(ctx, actorOf(admin), NewUser{Name: "m", Email: "m@gym.test", Role: domain.RoleUser, Password: "temporary-1"})
	require.NoError(t, err)

	assert.ErrorIs(t, accounts.ChangePassword(ctx, member.ID, "wrong-one", "brand-new-1"), ErrUnauthorized)
	require.NoError(t, accounts.ChangePassword(ctx, member.ID, "temporary-1", "brand-new-1"))

	stored, err := f.store.Users.GetByID(ctx, member.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsFirstLogin)
	assert.Contains(t, f.auditActions(t), domain.AuditChangePassword)
}

func TestExtendSubscription(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", domain.RoleAdmin, time.Time{})
	member := f.addUser(t, "member", domain.RoleUser, testNow.AddDate(0, 0, -1))
	accounts := f.accounts(0)
	ctx := context.Background()
	end := testNow.AddDate(0, 3, 0)

	_, err := accounts.ExtendSubscription(ctx, actorOf(member), member.ID, end)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = accounts.ExtendSubscription(ctx, actorOf(admin), admin.ID, end)
	assert.ErrorIs(t, err, ErrValidation)

	updated, err := accounts.ExtendSubscription(ctx, actorOf(admin), member.ID, end)
	require.NoError(t, err)
	assert.Equal(t, end, updated.SubscriptionEndDate)

	view, err := accounts.GetUser(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, SubscriptionOK, view.Subscription.State)
	assert.Equal(t, []domain.AuditAction{domain.AuditExtendSubscription}, f.auditActions(t))
}
