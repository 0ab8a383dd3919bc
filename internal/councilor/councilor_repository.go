package councilor

import (
	"context"

	"codema-service/internal/models"

	"gorm.io/gorm"
)

type CouncilorRepository interface {
	Create(ctx context.Context, councilor *models.Councilor) error
	FindByID(ctx context.Context, id uint) (*models.Councilor, error)
	FindByUserID(ctx context.Context, userID uint) (*models.Councilor, error)
	List(ctx context.Context) ([]models.Councilor, error)
	ListActive(ctx context.Context) ([]models.Councilor, error)
	Update(ctx context.Context, councilor *models.Councilor) error
}

type councilorRepository struct {
	db *gorm.DB
}

func NewCouncilorRepository(db *gorm.DB) CouncilorRepository {
	return &councilorRepository{db: db}
}

func (r *councilorRepository) Create(ctx context.Context, councilor *models.Councilor) error {
	return r.db.WithContext(ctx).Create(councilor).Error
}

func (r *councilorRepository) FindByID(ctx context.Context, id uint) (*models.Councilor, error) {
	var councilor models.Councilor
	err := r.db.WithContext(ctx).First(&councilor, "id = ?", id).Error
	return &councilor, err
}

func (r *councilorRepository) FindByUserID(ctx context.Context, userID uint) (*models.Councilor, error) {
	var councilor models.Councilor
	err := r.db.WithContext(ctx).First(&councilor, "user_id = ?", userID).Error
	if err != nil {
		return nil, err
	}
	return &councilor, nil
}

func (r *councilorRepository) List(ctx context.Context) ([]models.Councilor, error) {
	var councilors []models.Councilor
	err := r.db.WithContext(ctx).Order("name").Find(&councilors).Error
	return councilors, err
}

func (r *councilorRepository) ListActive(ctx context.Context) ([]models.Councilor, error) {
	var councilors []models.Councilor
	err := r.db.WithContext(ctx).Where("ativo = ?", true).Order("name").Find(&councilors).Error
	return councilors, err
}

func (r *councilorRepository) Update(ctx context.Context, councilor *models.Councilor) error {
	return r.db.WithContext(ctx).Save(councilor).Error
}
