package councilor

import (
	"context"
	"errors"

	"codema-service/internal/models"

	"gorm.io/gorm"
)

var ErrCouncilorNotFound = errors.New("councilor not found")

type CouncilorService struct {
	repo CouncilorRepository
}

func NewCouncilorService(repo CouncilorRepository) *CouncilorService {
	return &CouncilorService{repo: repo}
}

func (s *CouncilorService) Create(ctx context.Context, req models.CreateCouncilorRequest) (*models.Councilor, error) {
	councilor := &models.Councilor{
		UserID:   req.UserID,
		Name:     req.Name,
		Cargo:    req.Cargo,
		Entidade: req.Entidade,
		Titular:  true,
		Ativo:    true,
	}
	if req.Titular != nil {
		councilor.Titular = *req.Titular
	}
	if err := s.repo.Create(ctx, councilor); err != nil {
		return nil, err
	}
	return councilor, nil
}

func (s *CouncilorService) Get(ctx context.Context, id uint) (*models.Councilor, error) {
	councilor, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouncilorNotFound
	}
	return councilor, err
}

func (s *CouncilorService) List(ctx context.Context) ([]models.Councilor, error) {
	return s.repo.List(ctx)
}

func (s *CouncilorService) Update(ctx context.Context, id uint, req models.UpdateCouncilorRequest) (*models.Councilor, error) {
	councilor, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCouncilorNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		councilor.Name = req.Name
	}
	if req.Cargo != "" {
		councilor.Cargo = req.Cargo
	}
	if req.Entidade != "" {
		councilor.Entidade = req.Entidade
	}
	if req.Titular != nil {
		councilor.Titular = *req.Titular
	}
	if req.Ativo != nil {
		councilor.Ativo = *req.Ativo
	}

	if err := s.repo.Update(ctx, councilor); err != nil {
		return nil, err
	}
	return councilor, nil
}
