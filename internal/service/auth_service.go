package service

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/metrics"
	"alcyxob/gym-manager/internal/repository"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "gym-manager"

var (
	ErrAuthenticationFailed = &DomainError{Code: CodeUnauthorized, Message: "Invalid email or password."}
	ErrInvalidToken         = &DomainError{Code: CodeUnauthorized, Message: "Invalid or expired token."}
	ErrInvalidAssertion     = &DomainError{Code: CodeUnauthorized, Message: "Invalid social login assertion."}
	ErrSocialDisabled       = &DomainError{Code: CodeForbidden, Message: "Social login is not enabled."}
	ErrAccountInactive      = &DomainError{Code: CodeForbidden, Message: "This account is inactive. Please contact the gym staff."}
	ErrSubscriptionExpired  = &DomainError{Code: CodeSubscriptionExpired, Message: RenewalMessage}
)

// Session is what a successful login hands back to the client.
type Session struct {
	Token        string
	ExpiresAt    time.Time
	User         domain.User // projected, no password hash
	Subscription SubscriptionStatus
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	// SocialLogin accepts an identity assertion signed by the trusted
	// identity broker. Unknown emails sign up as members.
	SocialLogin(ctx context.Context, provider, assertion string) (*Session, error)
	Me(ctx context.Context, userID primitive.ObjectID) (*UserWithStatus, error)
	ParseToken(token string) (Actor, error)
}

// AuthConfig carries the token and identity broker settings.
type AuthConfig struct {
	JWTSecret     string
	JWTExpiration time.Duration
	SocialSecret  string // empty disables social login
	SocialIssuer  string
}

type authService struct {
	users     repository.UserRepository
	accounts  AccountService
	evaluator SubscriptionEvaluator
	clock     Clock
	cfg       AuthConfig
	metrics   *metrics.Metrics
}

// NewAuthService creates the auth service. It panics on an empty JWT
// secret, configuration validation rejects that earlier.
func NewAuthService(
	users repository.UserRepository,
	accounts AccountService,
	evaluator SubscriptionEvaluator,
	clock Clock,
	cfg AuthConfig,
	m *metrics.Metrics,
) AuthService {
	if cfg.JWTSecret == "" {
		panic("JWT secret cannot be empty")
	}
	if cfg.JWTExpiration <= 0 {
		cfg.JWTExpiration = time.Hour
	}
	if clock == nil {
		clock = SystemClock
	}
	return &authService{
		users:     users,
		accounts:  accounts,
		evaluator: evaluator,
		clock:     clock,
		cfg:       cfg,
		metrics:   m,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, validationError("email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.metrics.Login("password", "failed")
			return nil, ErrAuthenticationFailed
		}
		s.metrics.Login("password", "error")
		return nil, err
	}
	// social accounts without a password cannot log in this way
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.metrics.Login("password", "failed")
		return nil, ErrAuthenticationFailed
	}

	return s.openSession(user, "password")
}

func (s *authService) SocialLogin(ctx context.Context, provider, assertion string) (*Session, error) {
	if s.cfg.SocialSecret == "" {
		return nil, ErrSocialDisabled
	}
	identity, err := s.verifyAssertion(provider, assertion)
	if err != nil {
		s.metrics.Login("social", "failed")
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, NormalizeEmail(identity.Email))
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.accounts.RegisterSocial(ctx, identity.Email, identity.Name, identity.Provider)
	}
	if err != nil {
		s.metrics.Login("social", "error")
		return nil, err
	}

	return s.openSession(user, "social")
}

// openSession runs the subscription check shared by every login method.
func (s *authService) openSession(user *domain.User, method string) (*Session, error) {
	projected := user.Projected()
	projected.PasswordHash = ""

	status := s.evaluator.Evaluate(&projected, s.clock())
	s.metrics.SubscriptionEvaluated(string(status.State))

	if !projected.IsStaff() {
		if status.State == SubscriptionExpired {
			s.metrics.Login(method, "expired")
			return nil, ErrSubscriptionExpired
		}
		if projected.Status == domain.UserStatusInactive {
			s.metrics.Login(method, "inactive")
			return nil, ErrAccountInactive
		}
	}

	token, expiresAt, err := s.generateJWT(&projected)
	if err != nil {
		s.metrics.Login(method, "error")
		return nil, fmt.Errorf("generate token: %w", err)
	}
	s.metrics.Login(method, "ok")

	return &Session{
		Token:        token,
		ExpiresAt:    expiresAt,
		User:         projected,
		Subscription: status,
	}, nil
}

func (s *authService) Me(ctx context.Context, userID primitive.ObjectID) (*UserWithStatus, error) {
	return s.accounts.GetUser(ctx, userID)
}

// --- JWT ---

type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(user *domain.User) (string, time.Time, error) {
	now := s.clock()
	expiresAt := now.Add(s.cfg.JWTExpiration)
	claims := &jwtClaims{
		UserID: user.ID.Hex(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ParseToken verifies a session token against the service clock.
func (s *authService) ParseToken(token string) (Actor, error) {
	claims := &jwtClaims{}
	if err := s.parseHS256(token, s.cfg.JWTSecret, claims); err != nil {
		return Actor{}, ErrInvalidToken
	}
	if !claims.VerifyExpiresAt(s.clock(), true) || !claims.VerifyIssuer(tokenIssuer, true) {
		return Actor{}, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil || !claims.Role.Valid() {
		return Actor{}, ErrInvalidToken
	}
	return Actor{ID: userID, Role: claims.Role}, nil
}

// SocialIdentity is the payload of an identity broker assertion.
type SocialIdentity struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

func (s *authService) verifyAssertion(provider, assertion string) (*SocialIdentity, error) {
	if assertion == "" {
		return nil, validationError("assertion is required")
	}
	identity := &SocialIdentity{}
	if err := s.parseHS256(assertion, s.cfg.SocialSecret, identity); err != nil {
		return nil, ErrInvalidAssertion
	}
	if !identity.VerifyExpiresAt(s.clock(), true) {
		return nil, ErrInvalidAssertion
	}
	if s.cfg.SocialIssuer != "" && !identity.VerifyIssuer(s.cfg.SocialIssuer, true) {
		return nil, ErrInvalidAssertion
	}
	if identity.Email == "" || (provider != "" && !strings.EqualFold(provider, identity.Provider)) {
		return nil, ErrInvalidAssertion
	}
	identity.Provider = strings.ToLower(identity.Provider)
	return identity, nil
}

// parseHS256 checks the signature only. Time based claims are verified by
// the callers against the service clock.
func (s *authService) parseHS256(token, secret string, claims jwt.Claims) error {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	_, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	return err
}
