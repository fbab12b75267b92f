package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutLog records one completed exercise instance.
type WorkoutLog struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	RoutineID  primitive.ObjectID `bson:"routineId" json:"routineId"`
	Weight     float64            `bson:"weight" json:"weight"` // kg
	Reps       int                `bson:"reps" json:"reps"`
	RPE        float64            `bson:"rpe,omitempty" json:"rpe,omitempty"` // 0-10
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Timestamp  time.Time          `bson:"timestamp" json:"timestamp"`

	// Set only when staff corrected the entry.
	CorrectedBy *primitive.ObjectID `bson:"correctedBy,omitempty" json:"correctedBy,omitempty"`
	CorrectedAt *time.Time          `bson:"correctedAt,omitempty" json:"correctedAt,omitempty"`
}
