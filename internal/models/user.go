package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's role in the platform.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleMayor          Role = "PREFEITO"
	RoleRepresentative Role = "REPRESENTANTE"
)

// ValidRole reports whether s is one of the known roles.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleAdmin, RoleMayor, RoleRepresentative:
		return true
	}
	return false
}

// User is a platform user identified by CPF.
type User struct {
	ID               uuid.UUID  `json:"id"`
	CPF              string     `json:"cpf"`
	Name             string     `json:"name"`
	Password         string     `json:"-"`
	Role             Role       `json:"role"`
	MunicipalityID   *uuid.UUID `json:"municipality_id,omitempty"`
	MunicipalityName string     `json:"municipality_name,omitempty"`
	Weight           float64    `json:"weight"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// UserPublic is User without sensitive fields for API responses.
type UserPublic struct {
	ID               uuid.UUID  `json:"id"`
	CPF              string     `json:"cpf"`
	Name             string     `json:"name"`
	Role             Role       `json:"role"`
	MunicipalityID   *uuid.UUID `json:"municipality_id,omitempty"`
	MunicipalityName string     `json:"municipality_name,omitempty"`
	Weight           float64    `json:"weight"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"created_at"`
}

// ToPublic converts User to UserPublic.
func (u *User) ToPublic() UserPublic {
	return UserPublic{
		ID:               u.ID,
		CPF:              u.CPF,
		Name:             u.Name,
		Role:             u.Role,
		MunicipalityID:   u.MunicipalityID,
		MunicipalityName: u.MunicipalityName,
		Weight:           u.Weight,
		Active:           u.Active,
		CreatedAt:        u.CreatedAt,
	}
}
