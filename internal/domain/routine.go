package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoutineStatus marks whether a routine is the one currently in effect.
type RoutineStatus string

const (
	RoutineStatusActive   RoutineStatus = "ACTIVE"
	RoutineStatusArchived RoutineStatus = "ARCHIVED"
)

// RoutineNamespace separates coach-authored routines from the ones members
// manage themselves. The single-active rule holds per namespace.
type RoutineNamespace string

const (
	NamespaceCoached     RoutineNamespace = "coached"
	NamespaceIndependent RoutineNamespace = "independent"
)

// ExerciseAssignment is one exercise prescribed on a given day.
type ExerciseAssignment struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Name       string             `bson:"name,omitempty" json:"name,omitempty"` // denormalized for display
	Series     int                `bson:"series" json:"series"`
	Reps       string             `bson:"reps" json:"reps"` // "8-10", "AMRAP", "30s"
	Rest       string             `bson:"rest,omitempty" json:"rest,omitempty"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	MediaURL   string             `bson:"mediaUrl,omitempty" json:"mediaUrl,omitempty"`
}

type RoutineDay struct {
	Name      string               `bson:"name" json:"name"` // e.g. "Day 1: Push"
	Exercises []ExerciseAssignment `bson:"exercises" json:"exercises"`
}

type RoutineWeek struct {
	Number int          `bson:"number" json:"number"`
	Days   []RoutineDay `bson:"days" json:"days"`
}

// MonthlyRoutine is the plan a member follows for one month.
type MonthlyRoutine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`   // who the routine is for
	CoachID   primitive.ObjectID `bson:"coachId" json:"coachId"` // who published it
	Month     int                `bson:"month" json:"month"`     // 1-12
	Year      int                `bson:"year" json:"year"`
	Title     string             `bson:"title,omitempty" json:"title,omitempty"`
	Status    RoutineStatus      `bson:"status" json:"status"`
	Weeks     []RoutineWeek      `bson:"weeks" json:"weeks"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Exercises returns every assignment of the routine in week/day order.
func (r *MonthlyRoutine) Exercises() []ExerciseAssignment {
	var out []ExerciseAssignment
	for _, w := range r.Weeks {
		for _, d := range w.Days {
			out = append(out, d.Exercises...)
		}
	}
	return out
}
