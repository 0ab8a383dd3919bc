package document

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path"
	"time"

	"codema-service/internal/audit"
	"codema-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentService struct {
	db      *gorm.DB
	store   ObjectStore
	auditor audit.Emitter
}

func NewDocumentService(db *gorm.DB, store ObjectStore, auditor audit.Emitter) *DocumentService {
	return &DocumentService{db: db, store: store, auditor: auditor}
}

// Upload stores the object and its metadata row.
func (s *DocumentService) Upload(ctx context.Context, caller models.Identity, title, category, meetingID, denunciaID string, file *multipart.FileHeader) (*models.Document, error) {
	id := uuid.New().String()
	objectName := fmt.Sprintf("%s/%s%s", category, id, path.Ext(file.Filename))

	url, err := s.store.Put(ctx, objectName, file)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:          id,
		Title:       title,
		Category:    category,
		ObjectName:  objectName,
		ContentType: file.Header.Get("Content-Type"),
		Size:        file.Size,
		URL:         url,
		UploadedBy:  caller.UserID,
		MeetingID:   meetingID,
		DenunciaID:  denunciaID,
	}
	if err := s.db.WithContext(ctx).Create(doc).Error; err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, audit.Record{
		Action:   audit.ActionUploadDocument,
		ActorID:  caller.UserID,
		EntityID: doc.ID,
		Details:  objectName,
	})
	return doc, nil
}

func (s *DocumentService) List(ctx context.Context, category string) ([]models.Document, error) {
	var docs []models.Document
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if category != "" {
		q = q.Where("category = ?", category)
	}
	err := q.Find(&docs).Error
	return docs, err
}

// DownloadURL returns a short-lived signed URL for the stored object.
func (s *DocumentService) DownloadURL(ctx context.Context, id string) (string, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrDocumentNotFound
	}
	if err != nil {
		return "", err
	}
	return s.store.PresignedURL(ctx, doc.ObjectName, 15*time.Minute)
}
