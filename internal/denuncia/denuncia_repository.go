package denuncia

import (
	"context"
	"errors"

	"codema-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DenunciaRepository interface {
	Create(ctx context.Context, denuncia *models.Denuncia) error
	FindByID(ctx context.Context, id string) (*models.Denuncia, error)
	List(ctx context.Context) ([]*models.Denuncia, error)
	UpdateStatus(ctx context.Context, id string, status models.DenunciaStatus) error

	// UpsertTally is last-write-wins on the aggregate row.
	UpsertTally(ctx context.Context, tally *models.DenunciaTally) error
	GetTally(ctx context.Context, denunciaID string) (*models.DenunciaTally, error)

	Transaction(ctx context.Context, fn func(DenunciaRepository) error) error
}

type denunciaRepository struct {
	db *gorm.DB
}

func NewDenunciaRepository(db *gorm.DB) DenunciaRepository {
	return &denunciaRepository{db: db}
}

func (r *denunciaRepository) Create(ctx context.Context, denuncia *models.Denuncia) error {
	return r.db.WithContext(ctx).Create(denuncia).Error
}

func (r *denunciaRepository) FindByID(ctx context.Context, id string) (*models.Denuncia, error) {
	var denuncia models.Denuncia
	err := r.db.WithContext(ctx).First(&denuncia, "id = ?", id).Error
	return &denuncia, err
}

func (r *denunciaRepository) List(ctx context.Context) ([]*models.Denuncia, error) {
	var denuncias []*models.Denuncia
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&denuncias).Error
	return denuncias, err
}

func (r *denunciaRepository) UpdateStatus(ctx context.Context, id string, status models.DenunciaStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Denuncia{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *denunciaRepository) UpsertTally(ctx context.Context, tally *models.DenunciaTally) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "denuncia_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"votos_favoraveis", "votos_contrarios", "abstencoes", "decisao", "registered_by", "registered_at",
		}),
	}).Create(tally).Error
}

func (r *denunciaRepository) GetTally(ctx context.Context, denunciaID string) (*models.DenunciaTally, error) {
	var tally models.DenunciaTally
	err := r.db.WithContext(ctx).First(&tally, "denuncia_id = ?", denunciaID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &tally, err
}

func (r *denunciaRepository) Transaction(ctx context.Context, fn func(DenunciaRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&denunciaRepository{db: tx})
	})
}
