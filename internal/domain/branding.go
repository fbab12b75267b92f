package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BrandingDocumentID is the fixed _id of the single branding document.
const BrandingDocumentID = "branding"

// Branding holds the gym's customizable look.
type Branding struct {
	ID             string              `bson:"_id" json:"-"`
	GymName        string              `bson:"gymName" json:"gymName"`
	PrimaryColor   string              `bson:"primaryColor" json:"primaryColor"`     // #RRGGBB
	SecondaryColor string              `bson:"secondaryColor" json:"secondaryColor"` // #RRGGBB
	LogoKey        string              `bson:"logoKey,omitempty" json:"-"`
	UpdatedBy      *primitive.ObjectID `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt      time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// DefaultBranding is served until an administrator customizes the gym.
func DefaultBranding() Branding {
	return Branding{
		ID:             BrandingDocumentID,
		GymName:        "My Gym",
		PrimaryColor:   "#1E88E5",
		SecondaryColor: "#FFC107",
	}
}
