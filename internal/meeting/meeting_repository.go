package meeting

import (
	"context"

	"codema-service/internal/models"

	"gorm.io/gorm"
)

type MeetingRepository interface {
	Create(ctx context.Context, meeting *models.Meeting) error
	FindByID(ctx context.Context, id string) (*models.Meeting, error)
	List(ctx context.Context) ([]*models.Meeting, error)
	TransitionStatus(ctx context.Context, id string, from, to models.MeetingStatus) (bool, error)
	AddItem(ctx context.Context, item *models.AgendaItem) error
	CountItems(ctx context.Context, meetingID string) (int64, error)
}

type meetingRepository struct {
	db *gorm.DB
}

func NewMeetingRepository(db *gorm.DB) MeetingRepository {
	return &meetingRepository{db: db}
}

func (r *meetingRepository) Create(ctx context.Context, meeting *models.Meeting) error {
	return r.db.WithContext(ctx).Create(meeting).Error
}

func (r *meetingRepository) FindByID(ctx context.Context, id string) (*models.Meeting, error) {
	var meeting models.Meeting
	err := r.db.WithContext(ctx).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&meeting, "id = ?", id).Error
	return &meeting, err
}

func (r *meetingRepository) List(ctx context.Context) ([]*models.Meeting, error) {
	var meetings []*models.Meeting
	err := r.db.WithContext(ctx).Order("scheduled_at DESC").Find(&meetings).Error
	return meetings, err
}

func (r *meetingRepository) TransitionStatus(ctx context.Context, id string, from, to models.MeetingStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Meeting{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *meetingRepository) AddItem(ctx context.Context, item *models.AgendaItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *meetingRepository) CountItems(ctx context.Context, meetingID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.AgendaItem{}).
		Where("meeting_id = ?", meetingID).
		Count(&count).Error
	return count, err
}
