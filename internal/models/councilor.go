package models

import (
	"gorm.io/gorm"
)

// Councilor is a CODEMA member. Titular members hold a seat; suplentes
// stand in when their titular is absent. Only active councilors enter a
// session's roster snapshot.
type Councilor struct {
	gorm.Model
	UserID   uint   `gorm:"column:user_id;index" json:"user_id"`
	Name     string `gorm:"column:name;size:255;not null" json:"name"`
	Cargo    string `gorm:"column:cargo;size:255" json:"cargo"`
	Entidade string `gorm:"column:entidade;size:255" json:"entidade"`
	Titular  bool   `gorm:"column:titular;default:true" json:"titular"`
	Ativo    bool   `gorm:"column:ativo;default:true" json:"ativo"`
}

func (Councilor) TableName() string {
	return "councilors"
}

// CreateCouncilorRequest defines the input for registering a councilor
type CreateCouncilorRequest struct {
	UserID   uint   `json:"user_id"`
	Name     string `json:"name" binding:"required"`
	Cargo    string `json:"cargo"`
	Entidade string `json:"entidade"`
	Titular  *bool  `json:"titular"`
}

// UpdateCouncilorRequest defines the mutable councilor fields
type UpdateCouncilorRequest struct {
	Name     string `json:"name"`
	Cargo    string `json:"cargo"`
	Entidade string `json:"entidade"`
	Titular  *bool  `json:"titular"`
	Ativo    *bool  `json:"ativo"`
}
