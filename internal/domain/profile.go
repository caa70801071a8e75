package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role representa o perfil de acesso de um usuário. O conjunto é fechado:
// qualquer novo papel exige tratamento explícito nos agregadores.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleSeller  Role = "SELLER"
	RoleFactory Role = "FACTORY"
)

// Valid verifica se o papel é um dos valores conhecidos
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleFactory:
		return true
	}
	return false
}

type Profile struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	Deleted      bool       `json:"deleted"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type UpdateProfileRequest struct {
	ID     string  `json:"id"`
	Name   *string `json:"name"`
	Email  *string `json:"email"`
	Role   *Role   `json:"role"`
	Active *bool   `json:"active"`
}

type Claims struct {
	ProfileID   string
	ProfileName string
	Email       string
	Role        Role
	Active      bool
	jwt.RegisteredClaims
}
