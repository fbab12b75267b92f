package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditAction tags the kind of mutation an AuditLog entry describes.
type AuditAction string

const (
	AuditCreateUser         AuditAction = "CREATE_USER"
	AuditUpdateUser         AuditAction = "UPDATE_USER"
	AuditDeleteUser         AuditAction = "DELETE_USER"
	AuditExtendSubscription AuditAction = "EXTEND_SUBSCRIPTION"
	AuditChangePassword     AuditAction = "CHANGE_PASSWORD"
	AuditSocialSignup       AuditAction = "SOCIAL_SIGNUP"
	AuditCreateRoutine      AuditAction = "CREATE_ROUTINE"
	AuditUpdateRoutine      AuditAction = "UPDATE_ROUTINE"
	AuditDeleteRoutine      AuditAction = "DELETE_ROUTINE"
	AuditLogWorkout         AuditAction = "LOG_WORKOUT"
	AuditCorrectWorkoutLog  AuditAction = "CORRECT_WORKOUT_LOG"
	AuditCreateExercise     AuditAction = "CREATE_EXERCISE"
	AuditUpdateExercise     AuditAction = "UPDATE_EXERCISE"
	AuditDeleteExercise     AuditAction = "DELETE_EXERCISE"
	AuditUpdateBranding     AuditAction = "UPDATE_BRANDING"
)

// AuditLog is an append-only trace of a mutating action.
type AuditLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	ActorID   primitive.ObjectID `bson:"actorId" json:"actorId"`
	Action    AuditAction        `bson:"action" json:"action"`
	Details   string             `bson:"details,omitempty" json:"details,omitempty"`
}
