package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles recognized by the portal. Which of them may close or cancel a
// voting session is deployment configuration, not a property of the role.
const (
	RoleAdmin       = "admin"
	RolePresidente  = "presidente"
	RoleSecretario  = "secretario"
	RoleConselheiro = "conselheiro"
)

// User is a portal account. Councilors get one so they can vote; the
// secretary and president accounts additionally close sessions.
type User struct {
	gorm.Model
	Name      string    `gorm:"column:name;size:255;not null" json:"name"`
	Email     string    `gorm:"column:email;size:255;not null;uniqueIndex" json:"email"`
	Password  string    `gorm:"column:password;size:255;not null" json:"-"`
	Role      string    `gorm:"column:role;size:32;not null;default:conselheiro" json:"role"`
	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	LastLogin time.Time `gorm:"column:last_login" json:"last_login"`
}

func (User) TableName() string {
	return "users"
}

// Identity is the caller identity handed to services by the auth
// middleware. Services trust it; only the middleware builds it.
type Identity struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}
