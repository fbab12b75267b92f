package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AuthHandler holds the authentication service dependency.
type AuthHandler struct {
	authService    service.AuthService
	accountService service.AccountService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, accountService service.AccountService) *AuthHandler {
	return &AuthHandler{authService: authService, accountService: accountService}
}

// --- Request/Response Structs ---

// UserResponse excludes sensitive info like password hash. Staff users
// are always shown ACTIVE with the far-future end date.
type UserResponse struct {
	ID                  string                      `json:"id"`
	Name                string                      `json:"name"`
	Email               string                      `json:"email"`
	Role                domain.Role                 `json:"role"`
	Status              domain.UserStatus           `json:"status"`
	SubscriptionEndDate time.Time                   `json:"subscriptionEndDate"`
	IsFirstLogin        bool                        `json:"isFirstLogin"`
	Origin              string                      `json:"origin,omitempty"`
	CreatedAt           time.Time                   `json:"createdAt"`
	Subscription        *service.SubscriptionStatus `json:"subscription,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SocialLoginRequest struct {
	Provider  string `json:"provider" binding:"required"`
	Assertion string `json:"assertion" binding:"required"`
}

type LoginResponse struct {
	Token        string                     `json:"token"`
	ExpiresAt    time.Time                  `json:"expiresAt"`
	User         UserResponse               `json:"user"`
	Subscription service.SubscriptionStatus `json:"subscription"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

// --- Handler Methods ---

// Login godoc
// @Summary Log in with email and password
// @Description Returns a JWT and the subscription state. Members whose subscription ended get 403 SUBSCRIPTION_EXPIRED.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 400 {object} gin.H "Invalid input (validation error)"
// @Failure 401 {object} gin.H "Unauthorized (invalid credentials)"
// @Failure 403 {object} gin.H "Subscription expired or account inactive"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSessionToResponse(session))
}

// SocialLogin godoc
// @Summary Log in with an identity broker assertion
// @Description First logins create a member account.
// @Tags Auth
// @Accept json
// @Produce json
// @Param assertion body SocialLoginRequest true "Provider and signed assertion"
// @Success 200 {object} LoginResponse "Login successful"
// @Failure 401 {object} gin.H "Invalid assertion"
// @Router /auth/social [post]
func (h *AuthHandler) SocialLogin(c *gin.Context) {
	var req SocialLoginRequest
	if !bindJSON(c, &req) {
		return
	}

	session, err := h.authService.SocialLogin(c.Request.Context(), req.Provider, req.Assertion)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapSessionToResponse(session))
}

// Me returns the caller's profile and subscription state.
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}

	view, err := h.authService.Me(c.Request.Context(), actor.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(&view.User, &view.Subscription))
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.accountService.ChangePassword(c.Request.Context(), actor.ID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MapUserToResponse converts a domain User to a UserResponse DTO. The user
// is expected to be projected already.
func MapUserToResponse(user *domain.User, status *service.SubscriptionStatus) UserResponse {
	if user == nil {
		return UserResponse{}
	}
	return UserResponse{
		ID:                  user.ID.Hex(),
		Name:                user.Name,
		Email:               user.Email,
		Role:                user.Role,
		Status:              user.Status,
		SubscriptionEndDate: user.SubscriptionEndDate,
		IsFirstLogin:        user.IsFirstLogin,
		Origin:              user.Origin,
		CreatedAt:           user.CreatedAt,
		Subscription:        status,
	}
}

func mapSessionToResponse(session *service.Session) LoginResponse {
	return LoginResponse{
		Token:        session.Token,
		ExpiresAt:    session.ExpiresAt,
		User:         MapUserToResponse(&session.User, nil),
		Subscription: session.Subscription,
	}
}
