// Package access описывает роль вызывающего и единые проверки прав,
// которыми пользуются заказы и админка.
package access

import (
	"github.com/google/uuid"
	"github.com/shophub/shop-api/internal/domain/models"
)

type Role uint8

const (
	RoleCustomer Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "customer"
}

// RoleOf переводит флаг isAdmin из хранилища в роль
func RoleOf(user *models.User) Role {
	if user != nil && user.IsAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}

// Identity - пользователь, которого jwt middleware положил в контекст
type Identity struct {
	UserID uuid.UUID
	Name   string
	Email  string
	Role   Role
}

func IdentityOf(user *models.User) Identity {
	return Identity{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   RoleOf(user),
	}
}

type Decision uint8

const (
	Allowed Decision = iota
	Denied
)

// CheckOwnership разрешает доступ только владельцу. Роль админа здесь не дает обхода:
// чужие заказы админ смотрит через свои маршруты.
func CheckOwnership(ownerID uuid.UUID, caller Identity) Decision {
	if ownerID == caller.UserID {
		return Allowed
	}
	return Denied
}

// CheckRole - ролевой шлюз
func CheckRole(caller Identity, required Role) Decision {
	if required == RoleAdmin && caller.Role != RoleAdmin {
		return Denied
	}
	return Allowed
}
