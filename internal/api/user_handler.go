package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// UserHandler exposes account administration.
type UserHandler struct {
	accountService service.AccountService
}

func NewUserHandler(accountService service.AccountService) *UserHandler {
	return &UserHandler{accountService: accountService}
}

type CreateUserRequest struct {
	Name                string            `json:"name" binding:"required"`
	Email               string            `json:"email" binding:"required,email"`
	Password            string            `json:"password" binding:"omitempty,min=8"`
	Role                domain.Role       `json:"role" binding:"required,oneof=ADMIN COACH USER"`
	Status              domain.UserStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	SubscriptionEndDate *time.Time        `json:"subscriptionEndDate"`
}

// UpdateUserRequest only changes the fields present in the body.
type UpdateUserRequest struct {
	Name                *string            `json:"name"`
	Email               *string            `json:"email" binding:"omitempty,email"`
	Role                *domain.Role       `json:"role" binding:"omitempty,oneof=ADMIN COACH USER"`
	Status              *domain.UserStatus `json:"status" binding:"omitempty,oneof=ACTIVE INACTIVE"`
	SubscriptionEndDate *time.Time         `json:"subscriptionEndDate"`
}

type ExtendSubscriptionRequest struct {
	SubscriptionEndDate time.Time `json:"subscriptionEndDate" binding:"required"`
}

// ListUsers godoc
// @Summary List users with their subscription state
// @Tags Users
// @Produce json
// @Param role query string false "ADMIN, COACH or USER"
// @Success 200 {array} UserResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	views, err := h.accountService.ListUsers(c.Request.Context(), domain.Role(c.Query("role")))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := make([]UserResponse, len(views))
	for i := range views {
		resp[i] = MapUserToResponse(&views[i].User, &views[i].Subscription)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	view, err := h.accountService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(&view.User, &view.Subscription))
}

// CreateUser godoc
// @Summary Create a user (admin)
// @Description Staff accounts never expire. Members without an end date get the configured default.
// @Tags Users
// @Accept json
// @Produce json
// @Param user body CreateUserRequest true "New user"
// @Success 201 {object} UserResponse
// @Failure 409 {object} gin.H "Email already in use"
// @Router /users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accountService.CreateUser(c.Request.Context(), actor, service.NewUser{
		Name:                req.Name,
		Email:               req.Email,
		Password:            req.Password,
		Role:                req.Role,
		Status:              req.Status,
		SubscriptionEndDate: req.SubscriptionEndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithUser(c, http.StatusCreated, user)
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accountService.UpdateUser(c.Request.Context(), actor, userID, service.UserPatch{
		Name:                req.Name,
		Email:               req.Email,
		Role:                req.Role,
		Status:              req.Status,
		SubscriptionEndDate: req.SubscriptionEndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithUser(c, http.StatusOK, user)
}

// DeleteUser godoc
// @Summary Delete a user (admin)
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Failure 409 {object} gin.H "LAST_ADMIN: the last administrator cannot be deleted"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.accountService.DeleteUser(c.Request.Context(), actor, userID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) ExtendSubscription(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req ExtendSubscriptionRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.accountService.ExtendSubscription(c.Request.Context(), actor, userID, req.SubscriptionEndDate)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondWithUser(c, http.StatusOK, user)
}

// respondWithUser re-reads the user so the response carries the
// projection and a fresh evaluation.
func (h *UserHandler) respondWithUser(c *gin.Context, status int, user *domain.User) {
	view, err := h.accountService.GetUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, MapUserToResponse(&view.User, &view.Subscription))
}
