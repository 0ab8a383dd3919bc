package models

import (
	"time"
)

// MeetingStatus is the meeting lifecycle state
type MeetingStatus string

const (
	MeetingAgendada    MeetingStatus = "agendada"
	MeetingEmAndamento MeetingStatus = "em_andamento"
	MeetingConcluida   MeetingStatus = "concluida"
	MeetingCancelada   MeetingStatus = "cancelada"
)

// CanTransition reports whether the state machine permits m -> next.
func (m MeetingStatus) CanTransition(next MeetingStatus) bool {
	switch m {
	case MeetingAgendada:
		return next == MeetingEmAndamento || next == MeetingCancelada
	case MeetingEmAndamento:
		return next == MeetingConcluida || next == MeetingCancelada
	default:
		return false
	}
}

// Meeting is a council session with an ordered agenda.
type Meeting struct {
	ID        string        `gorm:"column:id;primaryKey;size:36" json:"id"`
	Title     string        `gorm:"column:title;size:255;not null" json:"title"`
	Location  string        `gorm:"column:location;size:255" json:"location"`
	ScheduledAt time.Time   `gorm:"column:scheduled_at;not null" json:"scheduled_at"`
	Status    MeetingStatus `gorm:"column:status;size:16;not null;index" json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	Items []AgendaItem `gorm:"foreignKey:MeetingID" json:"items,omitempty"`
}

func (Meeting) TableName() string {
	return "meetings"
}

// AgendaItem is one entry on a meeting agenda; it may reference a voting
// session or a denuncia under review.
type AgendaItem struct {
	ID         string `gorm:"column:id;primaryKey;size:36" json:"id"`
	MeetingID  string `gorm:"column:meeting_id;size:36;not null;index" json:"meeting_id"`
	Position   int    `gorm:"column:position;not null" json:"position"`
	Title      string `gorm:"column:title;size:255;not null" json:"title"`
	SessionID  string `gorm:"column:session_id;size:36" json:"session_id,omitempty"`
	DenunciaID string `gorm:"column:denuncia_id;size:36" json:"denuncia_id,omitempty"`
}

func (AgendaItem) TableName() string {
	return "agenda_items"
}

// CreateMeetingRequest defines the input for scheduling a meeting
type CreateMeetingRequest struct {
	Title       string    `json:"title" binding:"required"`
	Location    string    `json:"location"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

// AddAgendaItemRequest defines the input for appending an agenda item
type AddAgendaItemRequest struct {
	Title      string `json:"title" binding:"required"`
	SessionID  string `json:"session_id"`
	DenunciaID string `json:"denuncia_id"`
}
