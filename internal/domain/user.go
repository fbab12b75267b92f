package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleCoach Role = "COACH"
	RoleUser  Role = "USER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCoach, RoleUser:
		return true
	}
	return false
}

// IsStaff is true for roles that never expire.
func (r Role) IsStaff() bool {
	return r == RoleAdmin || r == RoleCoach
}

// UserStatus is the account status stored on the user document.
type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

// StaffSubscriptionEnd is the far-future end date pinned on staff accounts.
var StaffSubscriptionEnd = time.Date(2099, time.December, 31, 23, 59, 59, 0, time.UTC)

// User represents an administrator, coach or gym member.
type User struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name                string             `bson:"name" json:"name"`
	Email               string             `bson:"email" json:"email"` // unique, stored lowercase
	PasswordHash        string             `bson:"passwordHash,omitempty" json:"-"`
	Role                Role               `bson:"role" json:"role"`
	Status              UserStatus         `bson:"status" json:"status"`
	SubscriptionEndDate time.Time          `bson:"subscriptionEndDate" json:"subscriptionEndDate"`
	IsFirstLogin        bool               `bson:"isFirstLogin" json:"isFirstLogin"`
	Origin              string             `bson:"origin,omitempty" json:"origin,omitempty"` // "local", "google", ...
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) IsStaff() bool {
	return u.Role.IsStaff()
}

// Projected returns a copy of u as it must be shown to readers: staff accounts
// are always ACTIVE with the far-future end date, whatever is stored.
func (u User) Projected() User {
	if u.Role.IsStaff() {
		u.Status = UserStatusActive
		u.SubscriptionEndDate = StaffSubscriptionEnd
	}
	return u
}
