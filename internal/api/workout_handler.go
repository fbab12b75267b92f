package api

import (
	"alcyxob/gym-manager/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WorkoutHandler struct {
	workoutService service.WorkoutService
}

func NewWorkoutHandler(workoutService service.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{workoutService: workoutService}
}

type LogWorkoutRequest struct {
	ExerciseID string  `json:"exerciseId" binding:"required"`
	RoutineID  string  `json:"routineId" binding:"required"`
	Weight     float64 `json:"weight" binding:"min=0"`
	Reps       int     `json:"reps" binding:"min=0"`
	RPE        float64 `json:"rpe" binding:"min=0,max=10"`
	Notes      string  `json:"notes"`
}

type CorrectWorkoutRequest struct {
	Weight *float64 `json:"weight" binding:"omitempty,min=0"`
	Reps   *int     `json:"reps" binding:"omitempty,min=0"`
	RPE    *float64 `json:"rpe" binding:"omitempty,min=0,max=10"`
	Notes  *string  `json:"notes"`
}

type CompletedResponse struct {
	RoutineID   string   `json:"routineId"`
	ExerciseIDs []string `json:"exerciseIds"`
}

func (h *WorkoutHandler) LogWorkout(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req LogWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
		return
	}
	routineID, err := primitive.ObjectIDFromHex(req.RoutineID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid routineId format")
		return
	}

	logged, err := h.workoutService.LogWorkout(c.Request.Context(), actor, service.WorkoutEntry{
		ExerciseID: exerciseID,
		RoutineID:  routineID,
		Weight:     req.Weight,
		Reps:       req.Reps,
		RPE:        req.RPE,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, logged)
}

// ListMine lists the caller's logs, optionally for one ?exerciseId=.
func (h *WorkoutHandler) ListMine(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var exerciseID *primitive.ObjectID
	if raw := c.Query("exerciseId"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
			return
		}
		exerciseID = &id
	}

	logs, err := h.workoutService.ListLogs(c.Request.Context(), actor, actor.ID, exerciseID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// CompletedThisWeek answers which exercises of ?routineId= the caller
// already did since Monday.
func (h *WorkoutHandler) CompletedThisWeek(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	routineID, err := primitive.ObjectIDFromHex(c.Query("routineId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "routineId query parameter is required")
		return
	}

	done, err := h.workoutService.CompletedThisWeek(c.Request.Context(), actor, actor.ID, routineID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := CompletedResponse{RoutineID: routineID.Hex(), ExerciseIDs: make([]string, len(done))}
	for i, id := range done {
		resp.ExerciseIDs[i] = id.Hex()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *WorkoutHandler) CorrectLog(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	logID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	var req CorrectWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	corrected, err := h.workoutService.CorrectLog(c.Request.Context(), actor, logID, service.WorkoutCorrection{
		Weight: req.Weight,
		Reps:   req.Reps,
		RPE:    req.RPE,
		Notes:  req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, corrected)
}
