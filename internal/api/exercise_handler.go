package api

import (
	"alcyxob/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler holds the exercise service dependency.
type ExerciseHandler struct {
	exerciseService service.ExerciseService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(exerciseService service.ExerciseService) *ExerciseHandler {
	return &ExerciseHandler{exerciseService: exerciseService}
}

// --- DTOs ---

type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	MuscleGroup string `json:"muscleGroup"` // e.g., "Chest", "Legs"
	Description string `json:"description"`
}

type UpdateExerciseRequest struct {
	Name        *string `json:"name"`
	MuscleGroup *string `json:"muscleGroup"`
	Description *string `json:"description"`
}

type MediaUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmMediaRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// --- Handlers ---

// CreateExercise godoc
// @Summary Add an exercise to the media bank
// @Tags Exercises
// @Accept json
// @Produce json
// @Param exercise body CreateExerciseRequest true "Exercise"
// @Success 201 {object} service.ExerciseView
// @Router /exercises [post]
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req CreateExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.Create(c.Request.Context(), actor, service.ExerciseInput{
		Name:        &req.Name,
		MuscleGroup: &req.MuscleGroup,
		Description: &req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, exercise)
}

func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	exercises, err := h.exerciseService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercises)
}

func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	exercise, err := h.exerciseService.Get(c.Request.Context(), exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.Update(c.Request.Context(), actor, exerciseID, service.ExerciseInput{
		Name:        req.Name,
		MuscleGroup: req.MuscleGroup,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}

func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.exerciseService.Delete(c.Request.Context(), actor, exerciseID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestMediaUploadURL godoc
// @Summary Get a presigned URL to upload exercise media
// @Description The client PUTs the file with the same Content-Type, then confirms the returned objectKey.
// @Tags Exercises
// @Accept json
// @Produce json
// @Param id path string true "Exercise ID"
// @Param request body MediaUploadURLRequest true "Content type (image/* or video/*)"
// @Success 200 {object} service.UploadTicket
// @Router /exercises/{id}/media-url [post]
func (h *ExerciseHandler) RequestMediaUploadURL(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req MediaUploadURLRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := h.exerciseService.RequestMediaUploadURL(c.Request.Context(), actor, exerciseID, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ticket)
}

func (h *ExerciseHandler) ConfirmMedia(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req ConfirmMediaRequest
	if !bindJSON(c, &req) {
		return
	}

	exercise, err := h.exerciseService.ConfirmMedia(c.Request.Context(), actor, exerciseID, req.ObjectKey, req.ContentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, exercise)
}
