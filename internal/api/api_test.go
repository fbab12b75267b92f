package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"
	"alcyxob/gym-manager/internal/repository/memory"
	"alcyxob/gym-manager/internal/service"
	"alcyxob/gym-manager/internal/storage"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct-horse"

type testAPI struct {
	router *gin.Engine
	store  *memory.Store
	audit  service.AuditService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	m := metrics.New("test", prometheus.NewRegistry())
	evaluator := service.NewSubscriptionEvaluator(service.DefaultWarningDays)
	audit := service.NewAuditService(store.AuditLogs, nil, time.Second, m)
	t.Cleanup(audit.Flush)
	files := storage.NewMemoryStorage("http://media.test")

	accounts := service.NewAccountService(store.Users, audit, evaluator, nil, 30, m)
	auth := service.NewAuthService(store.Users, accounts, evaluator, nil, service.AuthConfig{JWTSecret: "api-test"}, m)
	coached := service.NewRoutineService(store.Routines,
		service.NewRoutinePublisher(store.Routines, store.Users, audit, nil, m), audit)
	independent := service.NewRoutineService(store.IndependentRoutines,
		service.NewRoutinePublisher(store.IndependentRoutines, store.Users, audit, nil, m), audit)

	router := gin.New()
	router.Use(m.GinMiddleware())
	SetupRoutes(router, Services{
		Auth:                auth,
		Accounts:            accounts,
		Routines:            coached,
		IndependentRoutines: independent,
		Workouts: service.NewWorkoutService(store.WorkoutLogs,
			[]repository.RoutineRepository{store.Routines, store.IndependentRoutines}, audit, nil),
		Exercises: service.NewExerciseService(store.Exercises, files, audit, nil, 0),
		Branding:  service.NewBrandingService(store.Branding, files, audit, nil, 0),
		Audit:     audit,
	})
	return &testAPI{router: router, store: store, audit: audit}
}

func (a *testAPI) addUser(t *testing.T, email string, role domain.Role, end time.Time) domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &domain.User{
		Name:                email,
		Email:               email,
		PasswordHash:        string(hash),
		Role:                role,
		Status:              domain.UserStatusActive,
		SubscriptionEndDate: end,
	}
	_, err = a.store.Users.Create(context.Background(), user)
	require.NoError(t, err)
	return *user
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) login(t *testing.T, email string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPing(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)
	a.addUser(t, "soon@gym.test", domain.RoleUser, time.Now().Add(24*time.Hour))
	a.addUser(t, "gone@gym.test", domain.RoleUser, time.Now().Add(-24*time.Hour))

	w := a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "soon@gym.test", "password": testPassword})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[LoginResponse](t, w)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, service.SubscriptionWarning, resp.Subscription.State)

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "gone@gym.test", "password": testPassword})
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "SUBSCRIPTION_EXPIRED", body["code"])
	assert.Equal(t, service.RenewalMessage, body["error"])

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "soon@gym.test", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	a := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/v1/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.do(t, http.MethodGet, "/api/v1/me", "garbage", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodGet, "/api/v1/branding", "", nil).Code)
}

func TestMe_ProjectsStaff(t *testing.T) {
	a := newTestAPI(t)
	coach := a.addUser(t, "coach@gym.test", domain.RoleCoach, time.Now().AddDate(-1, 0, 0))
	token := a.login(t, "coach@gym.test")

	w := a.do(t, http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[UserResponse](t, w)
	assert.Equal(t, coach.ID.Hex(), me.ID)
	assert.Equal(t, domain.UserStatusActive, me.Status)
	assert.True(t, me.SubscriptionEndDate.Equal(domain.StaffSubscriptionEnd))
	require.NotNil(t, me.Subscription)
	assert.Equal(t, service.SubscriptionOK, me.Subscription.State)
}

func TestPublishRoutine(t *testing.T) {
	a := newTestAPI(t)
	a.addUser(t, "coach@gym.test", domain.RoleCoach, time.Time{})
	member := a.addUser(t, "member@gym.test", domain.RoleUser, time.Now().AddDate(0, 1, 0))
	coachToken := a.login(t, "coach@gym.test")
	memberToken := a.login(t, "member@gym.test")

	routine := func(userID, title string) gin.H {
		return gin.H{
			"userId": userID, "month": 3, "year": 2025, "title": title,
			"weeks": []gin.H{{"number": 1, "days": []gin.H{{"name": "A", "exercises": []gin.H{
				{"exerciseId": primitive.NewObjectID().Hex(), "name": "Squat", "series": 3, "reps": "10"},
			}}}}},
		}
	}

	w := a.do(t, http.MethodPost, "/api/v1/routines", memberToken, routine(member.ID.Hex(), "self"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/routines", coachToken, routine("", "no user"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION", decode[map[string]any](t, w)["code"])

	w = a.do(t, http.MethodPost, "/api/v1/routines", coachToken, routine("zzz", "bad id"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/routines", coachToken, routine(primitive.NewObjectID().Hex(), "unknown user"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/routines", coachToken, routine(member.ID.Hex(), "R1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	r1 := decode[domain.MonthlyRoutine](t, w)
	time.Sleep(2 * time.Millisecond)
	w = a.do(t, http.MethodPost, "/api/v1/routines", coachToken, routine(member.ID.Hex(), "R2"))
	require.Equal(t, http.StatusCreated, w.Code)
	r2 := decode[domain.MonthlyRoutine](t, w)

	w = a.do(t, http.MethodGet, "/api/v1/me/routines/active", memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, r2.ID, decode[domain.MonthlyRoutine](t, w).ID)

	w = a.do(t, http.MethodGet, "/api/v1/users/"+member.ID.Hex()+"/routines", coachToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]domain.MonthlyRoutine](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, r2.ID, list[0].ID)
	assert.Equal(t, r1.ID, list[1].ID)
	assert.Equal(t, domain.RoutineStatusArchived, list[1].Status)
}

func TestIndependentRoutines(t *testing.T) {
	a := newTestAPI(t)
	a.addUser(t, "member@gym.test", domain.RoleUser, time.Now().AddDate(0, 1, 0))
	token := a.login(t, "member@gym.test")

	w := a.do(t, http.MethodPost, "/api/v1/me/independent-routines", token, gin.H{"month": 5, "year": 2025, "title": "mine"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	mine := decode[domain.MonthlyRoutine](t, w)

	w = a.do(t, http.MethodGet, "/api/v1/me/independent-routines/active", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, mine.ID, decode[domain.MonthlyRoutine](t, w).ID)

	// the coached namespace is untouched
	w = a.do(t, http.MethodGet, "/api/v1/me/routines/active", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodDelete, "/api/v1/me/independent-routines/"+mine.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestDeleteLastAdmin(t *testing.T) {
	a := newTestAPI(t)
	admin := a.addUser(t, "admin@gym.test", domain.RoleAdmin, time.Time{})
	a.addUser(t, "coach@gym.test", domain.RoleCoach, time.Time{})
	a.addUser(t, "member@gym.test", domain.RoleUser, time.Now().AddDate(0, 1, 0))
	token := a.login(t, "admin@gym.test")

	w := a.do(t, http.MethodDelete, "/api/v1/users/"+admin.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "LAST_ADMIN", decode[map[string]any](t, w)["code"])

	w = a.do(t, http.MethodGet, "/api/v1/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]UserResponse](t, w), 3)
}

func TestCreateUser(t *testing.T) {
	a := newTestAPI(t)
	a.addUser(t, "admin@gym.test", domain.RoleAdmin, time.Time{})
	a.addUser(t, "coach@gym.test", domain.RoleCoach, time.Time{})
	adminToken := a.login(t, "admin@gym.test")
	coachToken := a.login(t, "coach@gym.test")
	body := gin.H{"name": "New Coach", "email": "new@gym.test", "role": "COACH", "subscriptionEndDate": "2020-01-01T00:00:00Z"}

	assert.Equal(t, http.StatusForbidden, a.do(t, http.MethodPost, "/api/v1/users", coachToken, body).Code)

	w := a.do(t, http.MethodPost, "/api/v1/users", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[UserResponse](t, w)
	assert.True(t, created.IsFirstLogin)
	assert.True(t, created.SubscriptionEndDate.Equal(domain.StaffSubscriptionEnd))

	w = a.do(t, http.MethodPost, "/api/v1/users", adminToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	a.audit.Flush()
	w = a.do(t, http.MethodGet, "/api/v1/audit", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]domain.AuditLog](t, w)
	require.NotEmpty(t, entries)
	assert.Equal(t, domain.AuditCreateUser, entries[0].Action)
}

func TestWorkoutFlow(t *testing.T) {
	a := newTestAPI(t)
	a.addUser(t, "coach@gym.test", domain.RoleCoach, time.Time{})
	member := a.addUser(t, "member@gym.test", domain.RoleUser, time.Now().AddDate(0, 1, 0))
	coachToken := a.login(t, "coach@gym.test")
	memberToken := a.login(t, "member@gym.test")
	exerciseID := primitive.NewObjectID()

	w := a.do(t, http.MethodPost, "/api/v1/routines", coachToken, gin.H{
		"userId": member.ID.Hex(), "month": 3, "year": 2025,
		"weeks": []gin.H{{"number": 1, "days": []gin.H{{"name": "A", "exercises": []gin.H{
			{"exerciseId": exerciseID.Hex(), "series": 3, "reps": "10"},
		}}}}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	routine := decode[domain.MonthlyRoutine](t, w)

	w = a.do(t, http.MethodPost, "/api/v1/me/workouts", memberToken, gin.H{
		"exerciseId": exerciseID.Hex(), "routineId": routine.ID.Hex(), "weight": 60, "reps": 10, "rpe": 7,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	logged := decode[domain.WorkoutLog](t, w)

	w = a.do(t, http.MethodPost, "/api/v1/me/workouts", memberToken, gin.H{
		"exerciseId": exerciseID.Hex(), "routineId": routine.ID.Hex(), "reps": -1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/me/workouts/completed?routineId="+routine.ID.Hex(), memberToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{exerciseID.Hex()}, decode[CompletedResponse](t, w).ExerciseIDs)

	w = a.do(t, http.MethodPatch, "/api/v1/workouts/"+logged.ID.Hex(), memberToken, gin.H{"reps": 12})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = a.do(t, http.MethodPatch, "/api/v1/workouts/"+logged.ID.Hex(), coachToken, gin.H{"reps": 12})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 12, decode[domain.WorkoutLog](t, w).Reps)
}

func TestBrandingAndExercises(t *testing.T) {
	a := newTestAPI(t)
	a.addUser(t, "admin@gym.test", domain.RoleAdmin, time.Time{})
	token := a.login(t, "admin@gym.test")

	w := a.do(t, http.MethodPut, "/api/v1/branding", token, gin.H{"gymName": "Iron Temple", "primaryColor": "#112233"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/v1/branding", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Iron Temple", decode[map[string]any](t, w)["gymName"])

	w = a.do(t, http.MethodPut, "/api/v1/branding", token, gin.H{"primaryColor": "blue"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/exercises", token, gin.H{"name": "Row", "muscleGroup": "Back"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	exercise := decode[map[string]any](t, w)

	w = a.do(t, http.MethodPost, "/api/v1/exercises/"+exercise["id"].(string)+"/media-url", token, gin.H{"contentType": "image/png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ticket := decode[service.UploadTicket](t, w)

	w = a.do(t, http.MethodPost, "/api/v1/exercises/"+exercise["id"].(string)+"/media", token, gin.H{"objectKey": ticket.ObjectKey, "contentType": "image/png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode[map[string]any](t, w)["mediaUrl"], ticket.ObjectKey)

	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/v1/exercises/not-an-id", token, nil).Code)
}
