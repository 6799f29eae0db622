package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type UserRole string

const (
	UserRoleCaregiver    UserRole = "caregiver"
	UserRoleCarereceiver UserRole = "carereceiver"
	UserRoleAdmin        UserRole = "admin"
)

// Capability - право на действие, не привязанное к владению записью.
type Capability string

const (
	CapabilityReferenceCreate Capability = "reference:create"
	CapabilityReferenceEdit   Capability = "reference:edit"
)

var roleCapabilities = map[UserRole][]Capability{
	UserRoleCaregiver: {CapabilityReferenceCreate},
	UserRoleAdmin:     {CapabilityReferenceCreate, CapabilityReferenceEdit},
}

func (r UserRole) Can(capability Capability) bool {
	for _, c := range roleCapabilities[r] {
		if c == capability {
			return true
		}
	}
	return false
}

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleCaregiver, UserRoleCarereceiver, UserRoleAdmin:
		return true
	}
	return false
}

type CreateUserDTO struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Role         UserRole
}

// Actor - аутентифицированный пользователь, от имени которого выполняется запрос.
type Actor struct {
	UserID uuid.UUID
	Role   UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == UserRoleAdmin
}
