package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var (
	ErrLastAdmin     = &DomainError{Code: CodeLastAdmin, Message: "The last administrator account cannot be deleted."}
	ErrLastAdminRole = &DomainError{Code: CodeLastAdmin, Message: "The last administrator cannot lose the ADMIN role."}
	ErrEmailTaken    = &DomainError{Code: CodeConflict, Message: "A user with this email already exists."}
	ErrUserNotFound  = &DomainError{Code: CodeNotFound, Message: "user not found"}
	ErrAdminRequired = &DomainError{Code: CodeForbidden, Message: "administrator role required"}
	ErrWrongPassword = &DomainError{Code: CodeUnauthorized, Message: "current password is incorrect"}
)

// SystemActor performs operator actions (bootstrap from the CLI). Its audit
// entries carry the zero id.
var SystemActor = Actor{Role: domain.RoleAdmin}

// NewUser is the input of CreateUser. A nil SubscriptionEndDate lets the
// configured default apply to members; staff are always pinned.
type NewUser struct {
	Name                string
	Email               string
	Password            string // optional, social accounts have none
	Role                domain.Role
	Status              domain.UserStatus
	SubscriptionEndDate *time.Time
	Origin              string
}

// UserPatch holds the fields an update may touch; nil means unchanged.
type UserPatch struct {
	Name                *string
	Email               *string
	Role                *domain.Role
	Status              *domain.UserStatus
	SubscriptionEndDate *time.Time
}

// UserWithStatus is a projected user and its subscription evaluation.
type UserWithStatus struct {
	User         domain.User
	Subscription SubscriptionStatus
}

type AccountService interface {
	CreateUser(ctx context.Context, actor Actor, in NewUser) (*domain.User, error)
	UpdateUser(ctx context.Context, actor Actor, userID primitive.ObjectID, patch UserPatch) (*domain.User, error)
	DeleteUser(ctx context.Context, actor Actor, userID primitive.ObjectID) error
	// ListUsers lists every user, or only those of role when it is set.
	ListUsers(ctx context.Context, role domain.Role) ([]UserWithStatus, error)
	GetUser(ctx context.Context, userID primitive.ObjectID) (*UserWithStatus, error)
	// ListExpiring returns members whose subscription ends within the given
	// number of days or has already ended.
	ListExpiring(ctx context.Context, withinDays int) ([]UserWithStatus, error)
	ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error
	// RegisterSocial creates the member account of a first social login.
	RegisterSocial(ctx context.Context, email, name, provider string) (*domain.User, error)
	ExtendSubscription(ctx context.Context, actor Actor, userID primitive.ObjectID, end time.Time) (*domain.User, error)
}

type accountService struct {
	users                   repository.UserRepository
	audit                   AuditRecorder
	evaluator               SubscriptionEvaluator
	clock                   Clock
	defaultSubscriptionDays int
	metrics                 *metrics.Metrics
}

func NewAccountService(
	users repository.UserRepository,
	audit AuditRecorder,
	evaluator SubscriptionEvaluator,
	clock Clock,
	defaultSubscriptionDays int,
	m *metrics.Metrics,
) AccountService {
	if clock == nil {
		clock = SystemClock
	}
	return &accountService{
		users:                   users,
		audit:                   audit,
		evaluator:               evaluator,
		clock:                   clock,
		defaultSubscriptionDays: defaultSubscriptionDays,
		metrics:                 m,
	}
}

// NormalizeEmail is the form emails are stored and looked up in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *accountService) CreateUser(ctx context.Context, actor Actor, in NewUser) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	user, err := s.buildUser(in)
	if err != nil {
		return nil, err
	}

	userID, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = userID

	s.audit.Record(ctx, actor.ID, domain.AuditCreateUser,
		fmt.Sprintf("user %s (%s, %s)", userID.Hex(), user.Email, user.Role))
	return user, nil
}

func (s *accountService) RegisterSocial(ctx context.Context, email, name, provider string) (*domain.User, error) {
	if strings.TrimSpace(name) == "" {
		name = strings.SplitN(NormalizeEmail(email), "@", 2)[0]
	}
	user, err := s.buildUser(NewUser{
		Name:   name,
		Email:  email,
		Role:   domain.RoleUser,
		Origin: provider,
	})
	if err != nil {
		return nil, err
	}

	userID, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	user.ID = userID
	if s.defaultSubscriptionDays <= 0 {
		log.Printf("WARN: social signup %s via %s starts with an expired subscription until staff extend it",
			user.Email, provider)
	}

	s.audit.Record(ctx, userID, domain.AuditSocialSignup, fmt.Sprintf("user %s (%s) via %s", userID.Hex(), user.Email, provider))
	return user, nil
}

// buildUser validates in and applies the creation rules: first login is
// forced, staff get the far-future end date, members the supplied or
// default one.
func (s *accountService) buildUser(in NewUser) (*domain.User, error) {
	email := NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationError("a valid email is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, validationError("name is required")
	}
	if !in.Role.Valid() {
		return nil, validationError("role must be one of ADMIN, COACH, USER")
	}
	status := in.Status
	if status == "" {
		status = domain.UserStatusActive
	}
	if status != domain.UserStatusActive && status != domain.UserStatusInactive {
		return nil, validationError("status must be ACTIVE or INACTIVE")
	}

	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Role:         in.Role,
		Status:       status,
		IsFirstLogin: true,
		Origin:       in.Origin,
	}
	if user.Origin == "" {
		user.Origin = "local"
	}

	if in.Password != "" {
		hash, err := hashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	switch {
	case user.Role.IsStaff():
		user.SubscriptionEndDate = domain.StaffSubscriptionEnd
	case in.SubscriptionEndDate != nil && !in.SubscriptionEndDate.IsZero():
		user.SubscriptionEndDate = in.SubscriptionEndDate.UTC()
	default:
		user.SubscriptionEndDate = s.clock().AddDate(0, 0, s.defaultSubscriptionDays)
		log.Printf("WARN: member %s created without subscription end date, defaulting to %s (%d day(s) from now)",
			email, user.SubscriptionEndDate.Format(time.RFC3339), s.defaultSubscriptionDays)
	}
	return user, nil
}

func (s *accountService) UpdateUser(ctx context.Context, actor Actor, userID primitive.ObjectID, patch UserPatch) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	wasAdmin := user.IsAdmin()

	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			return nil, validationError("name cannot be empty")
		}
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email == "" || !strings.Contains(email, "@") {
			return nil, validationError("a valid email is required")
		}
		user.Email = email
	}
	if patch.Role != nil {
		if !patch.Role.Valid() {
			return nil, validationError("role must be one of ADMIN, COACH, USER")
		}
		user.Role = *patch.Role
	}
	if patch.Status != nil {
		if *patch.Status != domain.UserStatusActive && *patch.Status != domain.UserStatusInactive {
			return nil, validationError("status must be ACTIVE or INACTIVE")
		}
		user.Status = *patch.Status
	}
	if patch.SubscriptionEndDate != nil {
		user.SubscriptionEndDate = patch.SubscriptionEndDate.UTC()
	}
	// staff never keep a real end date, whatever the patch touched
	if user.Role.IsStaff() {
		user.SubscriptionEndDate = domain.StaffSubscriptionEnd
	}

	if wasAdmin && !user.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, ErrLastAdminRole); err != nil {
			return nil, err
		}
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	s.audit.Record(ctx, actor.ID, domain.AuditUpdateUser, describePatch(user, patch))
	return user, nil
}

func (s *accountService) DeleteUser(ctx context.Context, actor Actor, userID primitive.ObjectID) error {
	if !actor.IsAdmin() {
		return ErrAdminRequired
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		if err := s.ensureAnotherAdmin(ctx, ErrLastAdmin); err != nil {
			return err
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	s.audit.Record(ctx, actor.ID, domain.AuditDeleteUser,
		fmt.Sprintf("user %s (%s, %s)", user.ID.Hex(), user.Email, user.Role))
	return nil
}

// ensureAnotherAdmin returns rejection when at most one ADMIN is stored.
func (s *accountService) ensureAnotherAdmin(ctx context.Context, rejection error) error {
	admins, err := s.users.CountByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count administrators: %w", err)
	}
	if admins <= 1 {
		return rejection
	}
	return nil
}

func (s *accountService) ListUsers(ctx context.Context, role domain.Role) ([]UserWithStatus, error) {
	var (
		users []domain.User
		err   error
	)
	if role == "" {
		users, err = s.users.List(ctx)
	} else {
		if !role.Valid() {
			return nil, validationError("unknown role %q", role)
		}
		users, err = s.users.ListByRole(ctx, role)
	}
	if err != nil {
		return nil, err
	}

	now := s.clock()
	out := make([]UserWithStatus, 0, len(users))
	for _, u := range users {
		out = append(out, s.withStatus(u, s.evaluator, now))
	}
	return out, nil
}

func (s *accountService) GetUser(ctx context.Context, userID primitive.ObjectID) (*UserWithStatus, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := s.withStatus(*user, s.evaluator, s.clock())
	return &view, nil
}

func (s *accountService) ListExpiring(ctx context.Context, withinDays int) ([]UserWithStatus, error) {
	if withinDays < 0 {
		return nil, validationError("days cannot be negative")
	}
	members, err := s.users.ListByRole(ctx, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	evaluator := NewSubscriptionEvaluator(withinDays)
	now := s.clock()
	out := []UserWithStatus{}
	for _, u := range members {
		view := s.withStatus(u, evaluator, now)
		if view.Subscription.State != SubscriptionOK {
			out = append(out, view)
		}
	}
	return out, nil
}

func (s *accountService) ChangePassword(ctx context.Context, userID primitive.ObjectID, current, next string) error {
	user, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	// accounts without a password (first login, social signup) set one freely
	if user.PasswordHash != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
			return ErrWrongPassword
		}
	}
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.IsFirstLogin = false

	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.audit.Record(ctx, user.ID, domain.AuditChangePassword, fmt.Sprintf("user %s", user.ID.Hex()))
	return nil
}

func (s *accountService) ExtendSubscription(ctx context.Context, actor Actor, userID primitive.ObjectID, end time.Time) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if end.IsZero() {
		return nil, validationError("subscriptionEndDate is required")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsStaff() {
		return nil, validationError("staff accounts have no subscription to extend")
	}

	previous := user.SubscriptionEndDate
	user.SubscriptionEndDate = end.UTC()
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, actor.ID, domain.AuditExtendSubscription, fmt.Sprintf("user %s: %s -> %s",
		user.ID.Hex(), previous.Format(time.DateOnly), user.SubscriptionEndDate.Format(time.DateOnly)))
	return user, nil
}

func (s *accountService) load(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	if userID == primitive.NilObjectID {
		return nil, validationError("user id is required")
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *accountService) withStatus(u domain.User, evaluator SubscriptionEvaluator, now time.Time) UserWithStatus {
	projected := u.Projected()
	projected.PasswordHash = ""
	status := evaluator.Evaluate(&projected, now)
	s.metrics.SubscriptionEvaluated(string(status.State))
	return UserWithStatus{User: projected, Subscription: status}
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", validationError("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func describePatch(user *domain.User, patch UserPatch) string {
	var fields []string
	if patch.Name != nil {
		fields = append(fields, "name")
	}
	if patch.Email != nil {
		fields = append(fields, "email")
	}
	if patch.Role != nil {
		fields = append(fields, "role="+string(user.Role))
	}
	if patch.Status != nil {
		fields = append(fields, "status="+string(user.Status))
	}
	if patch.SubscriptionEndDate != nil {
		fields = append(fields, "subscriptionEndDate="+user.SubscriptionEndDate.Format(time.DateOnly))
	}
	return fmt.Sprintf("user %s: %s", user.ID.Hex(), strings.Join(fields, ", "))
}
