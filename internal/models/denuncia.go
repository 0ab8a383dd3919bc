package models

import (
	"time"
)

// DenunciaStatus is the complaint lifecycle state
type DenunciaStatus string

const (
	DenunciaRecebida     DenunciaStatus = "recebida"
	DenunciaEmApuracao   DenunciaStatus = "em_apuracao"
	DenunciaProcedente   DenunciaStatus = "procedente"
	DenunciaImprocedente DenunciaStatus = "improcedente"
	DenunciaArquivada    DenunciaStatus = "arquivada"
)

// Denuncia is a citizen environmental complaint under council review.
type Denuncia struct {
	ID          string         `gorm:"column:id;primaryKey;size:36" json:"id"`
	Protocolo   string         `gorm:"column:protocolo;size:32;not null;uniqueIndex" json:"protocolo"`
	Titulo      string         `gorm:"column:titulo;size:255;not null" json:"titulo"`
	Descricao   string         `gorm:"column:descricao;type:text;not null" json:"descricao"`
	Local       string         `gorm:"column:local;size:512" json:"local"`
	Denunciante string         `gorm:"column:denunciante;size:255" json:"denunciante"`
	Status      DenunciaStatus `gorm:"column:status;size:16;not null;index" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func (Denuncia) TableName() string {
	return "denuncias"
}

// Decisao is the council's decision over a denuncia on the meeting agenda
type Decisao string

const (
	DecisaoProcedente   Decisao = "procedente"
	DecisaoImprocedente Decisao = "improcedente"
	DecisaoDiligencia   Decisao = "diligencia"
	DecisaoArquivada    Decisao = "arquivada"
)

func (d Decisao) Valid() bool {
	switch d {
	case DecisaoProcedente, DecisaoImprocedente, DecisaoDiligencia, DecisaoArquivada:
		return true
	}
	return false
}

// DenunciaStatus returns the complaint status implied by the decision.
func (d Decisao) DenunciaStatus() DenunciaStatus {
	switch d {
	case DecisaoProcedente:
		return DenunciaProcedente
	case DecisaoImprocedente:
		return DenunciaImprocedente
	case DecisaoDiligencia:
		return DenunciaEmApuracao
	default:
		return DenunciaArquivada
	}
}

// DenunciaTally is the secretary-entered aggregate vote over a denuncia.
// There is no per-voter ledger here; the row is last-write-wins.
type DenunciaTally struct {
	DenunciaID      string    `gorm:"column:denuncia_id;size:36;primaryKey" json:"denuncia_id"`
	VotosFavoraveis int       `gorm:"column:votos_favoraveis;not null" json:"votos_favoraveis"`
	VotosContrarios int       `gorm:"column:votos_contrarios;not null" json:"votos_contrarios"`
	Abstencoes      int       `gorm:"column:abstencoes;not null" json:"abstencoes"`
	Decisao         Decisao   `gorm:"column:decisao;size:16;not null" json:"decisao"`
	RegisteredBy    uint      `gorm:"column:registered_by" json:"registered_by"`
	RegisteredAt    time.Time `gorm:"column:registered_at;not null" json:"registered_at"`
}

func (DenunciaTally) TableName() string {
	return "denuncia_tallies"
}

// CreateDenunciaRequest defines the citizen complaint intake input
type CreateDenunciaRequest struct {
	Titulo      string `json:"titulo" binding:"required"`
	Descricao   string `json:"descricao" binding:"required"`
	Local       string `json:"local"`
	Denunciante string `json:"denunciante"`
}

// RegisterTallyRequest is the secretary-entered aggregate tally input
type RegisterTallyRequest struct {
	VotosFavoraveis int     `json:"votos_favoraveis"`
	VotosContrarios int     `json:"votos_contrarios"`
	Abstencoes      int     `json:"abstencoes"`
	Decisao         Decisao `json:"decisao" binding:"required"`
}
