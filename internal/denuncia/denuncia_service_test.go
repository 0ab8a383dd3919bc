package denuncia

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"codema-service/internal/audit"
	"codema-service/internal/config"
	"codema-service/internal/models"
	"codema-service/internal/realtime"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, event realtime.Event) {}

func newTestService(t *testing.T) *DenunciaService {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Denuncia{}, &models.DenunciaTally{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	policy := config.VotingConfig{CloserRoles: []string{models.RoleAdmin, models.RolePresidente, models.RoleSecretario}}
	return NewDenunciaService(NewDenunciaRepository(db), policy, nopPublisher{}, audit.NopEmitter{})
}

func secretary() models.Identity {
	return models.Identity{UserID: 7, Role: models.RoleSecretario}
}

func fileComplaint(t *testing.T, svc *DenunciaService) *models.Denuncia {
	t.Helper()
	denuncia, err := svc.Create(context.Background(), models.CreateDenunciaRequest{
		Titulo:    "Desmatamento em área de preservação",
		Descricao: "Corte raso observado na margem do córrego",
		Local:     "Zona rural, setor norte",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return denuncia
}

func TestCreateDenuncia(t *testing.T) {
	svc := newTestService(t)
	denuncia := fileComplaint(t, svc)

	if denuncia.Status != models.DenunciaRecebida {
		t.Errorf("Status = %s, want %s", denuncia.Status, models.DenunciaRecebida)
	}
	if denuncia.Protocolo == "" {
		t.Error("a protocol number must be assigned on intake")
	}
}

func TestRegisterTally(t *testing.T) {
	ctx := context.Background()

	t.Run("CountValidation", func(t *testing.T) {
		svc := newTestService(t)
		denuncia := fileComplaint(t, svc)

		cases := []models.RegisterTallyRequest{
			{VotosFavoraveis: -1, VotosContrarios: 2, Decisao: models.DecisaoProcedente},
			{VotosFavoraveis: 2, VotosContrarios: -3, Decisao: models.DecisaoProcedente},
			{VotosFavoraveis: 1, Abstencoes: -1, Decisao: models.DecisaoProcedente},
			{Decisao: models.DecisaoProcedente}, // all zero
		}
		for i, req := range cases {
			if _, err := svc.RegisterTally(ctx, denuncia.ID, secretary(), req); !errors.Is(err, ErrInvalidCounts) {
				t.Errorf("case %d: err = %v, want ErrInvalidCounts", i, err)
			}
		}
	})

	t.Run("InvalidDecisao", func(t *testing.T) {
		svc := newTestService(t)
		denuncia := fileComplaint(t, svc)
		_, err := svc.RegisterTally(ctx, denuncia.ID, secretary(), models.RegisterTallyRequest{
			VotosFavoraveis: 5, Decisao: "adiada",
		})
		if !errors.Is(err, ErrInvalidDecisao) {
			t.Errorf("err = %v, want ErrInvalidDecisao", err)
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		svc := newTestService(t)
		denuncia := fileComplaint(t, svc)
		_, err := svc.RegisterTally(ctx, denuncia.ID, models.Identity{UserID: 9, Role: models.RoleConselheiro},
			models.RegisterTallyRequest{VotosFavoraveis: 5, Decisao: models.DecisaoProcedente})
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("StatusPropagation", func(t *testing.T) {
		propagations := map[models.Decisao]models.DenunciaStatus{
			models.DecisaoProcedente:   models.DenunciaProcedente,
			models.DecisaoImprocedente: models.DenunciaImprocedente,
			models.DecisaoDiligencia:   models.DenunciaEmApuracao,
			models.DecisaoArquivada:    models.DenunciaArquivada,
		}
		for decisao, wantStatus := range propagations {
			t.Run(string(decisao), func(t *testing.T) {
				svc := newTestService(t)
				denuncia := fileComplaint(t, svc)

				_, err := svc.RegisterTally(ctx, denuncia.ID, secretary(), models.RegisterTallyRequest{
					VotosFavoraveis: 6, VotosContrarios: 2, Abstencoes: 1, Decisao: decisao,
				})
				if err != nil {
					t.Fatalf("RegisterTally: %v", err)
				}

				got, err := svc.Get(ctx, denuncia.ID)
				if err != nil {
					t.Fatalf("Get: %v", err)
				}
				if got.Status != wantStatus {
					t.Errorf("Status = %s, want %s", got.Status, wantStatus)
				}
			})
		}
	})

	t.Run("LastWriteWins", func(t *testing.T) {
		svc := newTestService(t)
		denuncia := fileComplaint(t, svc)

		_, err := svc.RegisterTally(ctx, denuncia.ID, secretary(), models.RegisterTallyRequest{
			VotosFavoraveis: 6, VotosContrarios: 2, Decisao: models.DecisaoProcedente,
		})
		if err != nil {
			t.Fatalf("first RegisterTally: %v", err)
		}
		_, err = svc.RegisterTally(ctx, denuncia.ID, secretary(), models.RegisterTallyRequest{
			VotosFavoraveis: 3, VotosContrarios: 5, Decisao: models.DecisaoImprocedente,
		})
		if err != nil {
			t.Fatalf("second RegisterTally: %v", err)
		}

		tally, err := svc.GetTally(ctx, denuncia.ID)
		if err != nil {
			t.Fatalf("GetTally: %v", err)
		}
		if tally.VotosFavoraveis != 3 || tally.VotosContrarios != 5 || tally.Decisao != models.DecisaoImprocedente {
			t.Errorf("tally = %+v, want the re-entered aggregate", tally)
		}

		got, _ := svc.Get(ctx, denuncia.ID)
		if got.Status != models.DenunciaImprocedente {
			t.Errorf("Status = %s, want improcedente after revision", got.Status)
		}
	})

	t.Run("UnknownDenuncia", func(t *testing.T) {
		svc := newTestService(t)
		_, err := svc.RegisterTally(ctx, "missing", secretary(), models.RegisterTallyRequest{
			VotosFavoraveis: 1, Decisao: models.DecisaoProcedente,
		})
		if !errors.Is(err, ErrDenunciaNotFound) {
			t.Errorf("err = %v, want ErrDenunciaNotFound", err)
		}
	})
}
