package models

import (
	"time"
)

// Document is the archive metadata row for an object stored in MinIO.
type Document struct {
	ID          string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Title       string    `gorm:"column:title;size:255;not null" json:"title"`
	Category    string    `gorm:"column:category;size:64;index" json:"category"`
	ObjectName  string    `gorm:"column:object_name;size:512;not null" json:"object_name"`
	ContentType string    `gorm:"column:content_type;size:128" json:"content_type"`
	Size        int64     `gorm:"column:size" json:"size"`
	URL         string    `gorm:"column:url;size:1024" json:"url"`
	UploadedBy  uint      `gorm:"column:uploaded_by" json:"uploaded_by"`
	MeetingID   string    `gorm:"column:meeting_id;size:36;index" json:"meeting_id,omitempty"`
	DenunciaID  string    `gorm:"column:denuncia_id;size:36;index" json:"denuncia_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}
