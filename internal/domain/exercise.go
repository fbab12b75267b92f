// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is an entry of the gym's exercise media bank.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedBy   primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	Name        string             `bson:"name" json:"name"`
	MuscleGroup string             `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g., "Chest", "Legs"
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	MediaKey    string             `bson:"mediaKey,omitempty" json:"-"` // object key in the bucket
	MediaType   string             `bson:"mediaType,omitempty" json:"mediaType,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
