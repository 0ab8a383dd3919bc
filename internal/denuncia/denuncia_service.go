package denuncia

import (
	"context"
	"errors"
	"fmt"
	"time"

	"codema-service/internal/audit"
	"codema-service/internal/models"
	"codema-service/internal/realtime"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrDenunciaNotFound = errors.New("denuncia not found")
	ErrInvalidCounts    = errors.New("vote counts must be non-negative and sum to at least 1")
	ErrInvalidDecisao   = errors.New("unknown decision")
	ErrUnauthorized     = errors.New("caller is not allowed to register an agenda tally")
)

// TallyPolicy decides which roles may enter the aggregate agenda tally.
type TallyPolicy interface {
	CanClose(role string) bool
}

type DenunciaService struct {
	repo    DenunciaRepository
	policy  TallyPolicy
	pub     realtime.Publisher
	auditor audit.Emitter
}

func NewDenunciaService(repo DenunciaRepository, policy TallyPolicy, pub realtime.Publisher, auditor audit.Emitter) *DenunciaService {
	return &DenunciaService{
		repo:    repo,
		policy:  policy,
		pub:     pub,
		auditor: auditor,
	}
}

// Create files a citizen complaint with a fresh protocol number.
func (s *DenunciaService) Create(ctx context.Context, req models.CreateDenunciaRequest) (*models.Denuncia, error) {
	now := time.Now().UTC()
	denuncia := &models.Denuncia{
		ID:          uuid.New().String(),
		Protocolo:   fmt.Sprintf("DEN-%d-%s", now.Year(), uuid.New().String()[:8]),
		Titulo:      req.Titulo,
		Descricao:   req.Descricao,
		Local:       req.Local,
		Denunciante: req.Denunciante,
		Status:      models.DenunciaRecebida,
	}
	if err := s.repo.Create(ctx, denuncia); err != nil {
		return nil, err
	}
	return denuncia, nil
}

func (s *DenunciaService) Get(ctx context.Context, id string) (*models.Denuncia, error) {
	denuncia, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDenunciaNotFound
	}
	return denuncia, err
}

func (s *DenunciaService) List(ctx context.Context) ([]*models.Denuncia, error) {
	return s.repo.List(ctx)
}

func (s *DenunciaService) GetTally(ctx context.Context, denunciaID string) (*models.DenunciaTally, error) {
	return s.repo.GetTally(ctx, denunciaID)
}

// RegisterTally stores the secretary-entered aggregate vote and propagates
// the decision onto the parent complaint's status. The row is
// last-write-wins; re-entering the tally overwrites the previous one.
func (s *DenunciaService) RegisterTally(ctx context.Context, denunciaID string, caller models.Identity, req models.RegisterTallyRequest) (*models.DenunciaTally, error) {
	if !s.policy.CanClose(caller.Role) {
		return nil, ErrUnauthorized
	}
	if !req.Decisao.Valid() {
		return nil, ErrInvalidDecisao
	}
	if req.VotosFavoraveis < 0 || req.VotosContrarios < 0 || req.Abstencoes < 0 {
		return nil, ErrInvalidCounts
	}
	if req.VotosFavoraveis+req.VotosContrarios+req.Abstencoes < 1 {
		return nil, ErrInvalidCounts
	}

	tally := &models.DenunciaTally{
		DenunciaID:      denunciaID,
		VotosFavoraveis: req.VotosFavoraveis,
		VotosContrarios: req.VotosContrarios,
		Abstencoes:      req.Abstencoes,
		Decisao:         req.Decisao,
		RegisteredBy:    caller.UserID,
		RegisteredAt:    time.Now().UTC(),
	}

	err := s.repo.Transaction(ctx, func(tx DenunciaRepository) error {
		if _, err := tx.FindByID(ctx, denunciaID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDenunciaNotFound
			}
			return err
		}
		if err := tx.UpsertTally(ctx, tally); err != nil {
			return err
		}
		return tx.UpdateStatus(ctx, denunciaID, req.Decisao.DenunciaStatus())
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, audit.Record{
		Action:   audit.ActionRegisterTally,
		ActorID:  caller.UserID,
		EntityID: denunciaID,
		Details:  string(req.Decisao),
	})
	s.pub.Publish(ctx, realtime.NewEvent(realtime.EventDenunciaDecidida, denunciaID, tally))
	return tally, nil
}
