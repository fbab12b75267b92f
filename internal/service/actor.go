package service

import (
	"alcyxob/gym-manager/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   primitive.ObjectID
	Role domain.Role
}

func (a Actor) IsStaff() bool {
	return a.Role.IsStaff()
}

func (a Actor) IsAdmin() bool {
	return a.Role == domain.RoleAdmin
}
