package api

import (
	"alcyxob/gym-manager/internal/domain"
	"alcyxob/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineHandler serves one routine namespace. The same handler type is
// mounted for coached and self-managed routines.
type RoutineHandler struct {
	routineService service.RoutineService
}

func NewRoutineHandler(routineService service.RoutineService) *RoutineHandler {
	return &RoutineHandler{routineService: routineService}
}

// PublishRoutineRequest is the routine to put in effect. UserID may be
// omitted for self-managed routines.
type PublishRoutineRequest struct {
	UserID string               `json:"userId"`
	Month  int                  `json:"month" binding:"required"`
	Year   int                  `json:"year" binding:"required"`
	Title  string               `json:"title"`
	Weeks  []domain.RoutineWeek `json:"weeks"`
}

// PatchRoutineRequest changes content only. Status is not patchable.
type PatchRoutineRequest struct {
	Month *int                  `json:"month"`
	Year  *int                  `json:"year"`
	Title *string               `json:"title"`
	Weeks *[]domain.RoutineWeek `json:"weeks"`
}

// Publish godoc
// @Summary Publish a monthly routine
// @Description Archives every routine of the user in this namespace and stores the new one as ACTIVE.
// @Tags Routines
// @Accept json
// @Produce json
// @Param routine body PublishRoutineRequest true "Routine"
// @Success 201 {object} domain.MonthlyRoutine
// @Failure 400 {object} gin.H "Invalid routine or unknown user"
// @Failure 500 {object} gin.H "PUBLISH_INCOMPLETE: previous routines archived, new one not saved"
// @Router /routines [post]
func (h *RoutineHandler) Publish(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req PublishRoutineRequest
	if !bindJSON(c, &req) {
		return
	}

	userID := primitive.NilObjectID
	if req.UserID != "" {
		var err error
		if userID, err = primitive.ObjectIDFromHex(req.UserID); err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid userId format")
			return
		}
	}

	routine, err := h.routineService.Publish(c.Request.Context(), actor, service.RoutineDraft{
		UserID: userID,
		Month:  req.Month,
		Year:   req.Year,
		Title:  req.Title,
		Weeks:  req.Weeks,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, routine)
}

func (h *RoutineHandler) Get(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	routineID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	routine, err := h.routineService.Get(c.Request.Context(), actor, routineID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

func (h *RoutineHandler) Patch(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	routineID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req PatchRoutineRequest
	if !bindJSON(c, &req) {
		return
	}

	routine, err := h.routineService.Update(c.Request.Context(), actor, routineID, service.RoutinePatch{
		Month: req.Month,
		Year:  req.Year,
		Title: req.Title,
		Weeks: req.Weeks,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}

func (h *RoutineHandler) Delete(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	routineID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.routineService.Delete(c.Request.Context(), actor, routineID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListForUser lists the routines of :id, newest first.
func (h *RoutineHandler) ListForUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	h.list(c, actor, userID)
}

func (h *RoutineHandler) ActiveForUser(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	userID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	h.active(c, actor, userID)
}

func (h *RoutineHandler) ListMine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	h.list(c, actor, actor.ID)
}

func (h *RoutineHandler) ActiveMine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	h.active(c, actor, actor.ID)
}

func (h *RoutineHandler) list(c *gin.Context, actor service.Actor, userID primitive.ObjectID) {
	routines, err := h.routineService.ListForUser(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routines)
}

func (h *RoutineHandler) active(c *gin.Context, actor service.Actor, userID primitive.ObjectID) {
	routine, err := h.routineService.GetActive(c.Request.Context(), actor, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, routine)
}
