package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"codema-service/internal/audit"
	"codema-service/internal/config"
	"codema-service/internal/councilor"
	"codema-service/internal/models"
	"codema-service/internal/realtime"
	"codema-service/internal/tally"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (p *capturePublisher) Publish(ctx context.Context, event realtime.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *capturePublisher) byType(eventType string) []realtime.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []realtime.Event
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	svc     *SessionService
	repo    SessionRepository
	roster  councilor.CouncilorRepository
	pub     *capturePublisher
	db      *gorm.DB
	callers []models.Identity // callers[i] maps to councilor i+1
}

// newFixture builds a service over an in-memory store with n active
// councilors whose accounts are user ids 101..100+n.
func newFixture(t *testing.T, n int) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(
		&models.Councilor{},
		&models.VotingSession{},
		&models.BallotOption{},
		&models.RosterEntry{},
		&models.Vote{},
		&models.TallyResult{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	rosterRepo := councilor.NewCouncilorRepository(db)
	callers := make([]models.Identity, 0, n)
	for i := 1; i <= n; i++ {
		c := &models.Councilor{
			UserID:  uint(100 + i),
			Name:    fmt.Sprintf("Conselheiro %02d", i),
			Titular: true,
			Ativo:   true,
		}
		if err := rosterRepo.Create(context.Background(), c); err != nil {
			t.Fatalf("seed councilor: %v", err)
		}
		callers = append(callers, models.Identity{UserID: c.UserID, Role: models.RoleConselheiro})
	}

	pub := &capturePublisher{}
	repo := NewSessionRepository(db)
	policy := config.VotingConfig{CloserRoles: []string{models.RoleAdmin, models.RolePresidente, models.RoleSecretario}}
	svc := NewSessionService(repo, rosterRepo, policy, pub, audit.NopEmitter{})

	return &fixture{svc: svc, repo: repo, roster: rosterRepo, pub: pub, db: db, callers: callers}
}

func (f *fixture) president() models.Identity {
	return models.Identity{UserID: 1, Role: models.RolePresidente}
}

// openSession creates and opens a favor/contra/abstain ballot and returns
// it with option ids resolved.
func (f *fixture) openSession(t *testing.T, rule models.MajorityRule, pct float64) (*models.VotingSession, map[string]string) {
	t.Helper()
	session, err := f.svc.CreateSession(context.Background(), models.CreateSessionRequest{
		Title:                 "Resolução 01/2025",
		MaioriaRequerida:      rule,
		PercentualQualificada: pct,
		Options: []models.NewOptionRequest{
			{Label: "Favorável"},
			{Label: "Contrário"},
			{Label: "Abstenção", IsAbstention: true},
		},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	session, err = f.svc.OpenSession(context.Background(), session.ID, f.president())
	if err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	options := make(map[string]string)
	for _, opt := range session.Options {
		options[opt.Label] = opt.ID
	}
	return session, options
}

func (f *fixture) vote(t *testing.T, sessionID string, caller models.Identity, optionID string) {
	t.Helper()
	if _, err := f.svc.CastVote(context.Background(), sessionID, caller, models.CastVoteRequest{OptionID: optionID}); err != nil {
		t.Fatalf("CastVote(%d): %v", caller.UserID, err)
	}
}

func TestCreateSessionValidation(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()

	t.Run("QualificadaRequiresPercentual", func(t *testing.T) {
		_, err := f.svc.CreateSession(ctx, models.CreateSessionRequest{
			Title:            "x",
			MaioriaRequerida: models.MaioriaQualificada,
			Options:          []models.NewOptionRequest{{Label: "a"}, {Label: "b"}},
		})
		if !errors.Is(err, ErrInvalidMajority) {
			t.Errorf("err = %v, want ErrInvalidMajority", err)
		}
	})

	t.Run("PercentualBounds", func(t *testing.T) {
		for _, pct := range []float64{50, 49, 100.5, -1} {
			_, err := f.svc.CreateSession(ctx, models.CreateSessionRequest{
				Title:                 "x",
				MaioriaRequerida:      models.MaioriaQualificada,
				PercentualQualificada: pct,
				Options:               []models.NewOptionRequest{{Label: "a"}, {Label: "b"}},
			})
			if !errors.Is(err, ErrInvalidMajority) {
				t.Errorf("pct=%v: err = %v, want ErrInvalidMajority", pct, err)
			}
		}
	})

	t.Run("UnknownRule", func(t *testing.T) {
		_, err := f.svc.CreateSession(ctx, models.CreateSessionRequest{
			Title:            "x",
			MaioriaRequerida: "unanime",
			Options:          []models.NewOptionRequest{{Label: "a"}, {Label: "b"}},
		})
		if !errors.Is(err, ErrInvalidMajority) {
			t.Errorf("err = %v, want ErrInvalidMajority", err)
		}
	})
}

func TestSingleVoteInvariant(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	session, options := f.openSession(t, models.MaioriaSimples, 0)
	voter := f.callers[0]

	f.vote(t, session.ID, voter, options["Favorável"])
	f.vote(t, session.ID, voter, options["Contrário"])
	f.vote(t, session.ID, voter, options["Favorável"])

	ballot, err := f.svc.GetVoterBallot(ctx, session.ID, voter)
	if err != nil {
		t.Fatalf("GetVoterBallot: %v", err)
	}
	if ballot == nil || ballot.OptionID == nil || *ballot.OptionID != options["Favorável"] {
		t.Errorf("ballot = %+v, want the last submitted option", ballot)
	}

	votes, err := f.svc.GetVotes(ctx, session.ID, f.president())
	if err != nil {
		t.Fatalf("GetVotes: %v", err)
	}
	if len(votes) != 1 {
		t.Errorf("len(votes) = %d, want exactly one record per voter", len(votes))
	}

	t.Run("RevisionToImpediment", func(t *testing.T) {
		_, err := f.svc.CastVote(ctx, session.ID, voter, models.CastVoteRequest{
			Impedimento:       true,
			MotivoImpedimento: "parte interessada no processo",
		})
		if err != nil {
			t.Fatalf("CastVote impediment: %v", err)
		}
		ballot, err := f.svc.GetVoterBallot(ctx, session.ID, voter)
		if err != nil {
			t.Fatalf("GetVoterBallot: %v", err)
		}
		if !ballot.Impedimento || ballot.OptionID != nil {
			t.Errorf("ballot = %+v, want impediment with no option", ballot)
		}
	})
}

func TestCastVoteValidation(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	session, options := f.openSession(t, models.MaioriaSimples, 0)

	t.Run("NotEligible", func(t *testing.T) {
		outsider := models.Identity{UserID: 999, Role: models.RoleConselheiro}
		_, err := f.svc.CastVote(ctx, session.ID, outsider, models.CastVoteRequest{OptionID: options["Favorável"]})
		if !errors.Is(err, ErrNotEligible) {
			t.Errorf("err = %v, want ErrNotEligible", err)
		}
	})

	t.Run("CouncilorAddedMidSessionNotEligible", func(t *testing.T) {
		late := &models.Councilor{UserID: 500, Name: "Novato", Ativo: true, Titular: true}
		if err := f.roster.Create(ctx, late); err != nil {
			t.Fatalf("create councilor: %v", err)
		}
		_, err := f.svc.CastVote(ctx, session.ID, models.Identity{UserID: 500, Role: models.RoleConselheiro},
			models.CastVoteRequest{OptionID: options["Favorável"]})
		if !errors.Is(err, ErrNotEligible) {
			t.Errorf("err = %v, want ErrNotEligible for a councilor outside the frozen roster", err)
		}
	})

	t.Run("DeactivatedMidSessionRejected", func(t *testing.T) {
		// the frozen roster keeps the denominator, but a councilor who is
		// no longer active may not cast
		c, err := f.roster.FindByUserID(ctx, f.callers[2].UserID)
		if err != nil {
			t.Fatalf("find councilor: %v", err)
		}
		c.Ativo = false
		if err := f.roster.Update(ctx, c); err != nil {
			t.Fatalf("update councilor: %v", err)
		}

		_, err = f.svc.CastVote(ctx, session.ID, f.callers[2], models.CastVoteRequest{OptionID: options["Favorável"]})
		if !errors.Is(err, ErrNotEligible) {
			t.Errorf("err = %v, want ErrNotEligible for a deactivated councilor", err)
		}

		stats, err := f.svc.LiveStats(ctx, session.ID)
		if err != nil {
			t.Fatalf("LiveStats: %v", err)
		}
		if stats.TotalEligible != 5 {
			t.Errorf("TotalEligible = %d, want the frozen 5", stats.TotalEligible)
		}
	})

	t.Run("InvalidOption", func(t *testing.T) {
		_, err := f.svc.CastVote(ctx, session.ID, f.callers[1], models.CastVoteRequest{OptionID: "nope"})
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("err = %v, want ErrInvalidOption", err)
		}
	})

	t.Run("MissingImpedimentReason", func(t *testing.T) {
		_, err := f.svc.CastVote(ctx, session.ID, f.callers[1], models.CastVoteRequest{Impedimento: true, MotivoImpedimento: "  "})
		if !errors.Is(err, ErrMissingImpedimentReason) {
			t.Errorf("err = %v, want ErrMissingImpedimentReason", err)
		}
	})

	t.Run("OptionAndImpedimentConflict", func(t *testing.T) {
		_, err := f.svc.CastVote(ctx, session.ID, f.callers[1], models.CastVoteRequest{
			OptionID:          options["Favorável"],
			Impedimento:       true,
			MotivoImpedimento: "x",
		})
		if !errors.Is(err, ErrAmbiguousBallot) {
			t.Errorf("err = %v, want ErrAmbiguousBallot", err)
		}
	})

	t.Run("VoteBeforeOpen", func(t *testing.T) {
		pending, err := f.svc.CreateSession(ctx, models.CreateSessionRequest{
			Title:            "ainda em preparo",
			MaioriaRequerida: models.MaioriaSimples,
			Options:          []models.NewOptionRequest{{Label: "a"}, {Label: "b"}},
		})
		if err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
		_, err = f.svc.CastVote(ctx, pending.ID, f.callers[0], models.CastVoteRequest{OptionID: pending.Options[0].ID})
		if !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("err = %v, want ErrInvalidSessionState", err)
		}
	})
}

func TestRosterSnapshotFrozen(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	session, _ := f.openSession(t, models.MaioriaSimples, 0)

	// deactivating a councilor mid-session must not move the denominator
	c, err := f.roster.FindByUserID(ctx, f.callers[4].UserID)
	if err != nil {
		t.Fatalf("find councilor: %v", err)
	}
	c.Ativo = false
	if err := f.roster.Update(ctx, c); err != nil {
		t.Fatalf("update councilor: %v", err)
	}

	stats, err := f.svc.LiveStats(ctx, session.ID)
	if err != nil {
		t.Fatalf("LiveStats: %v", err)
	}
	if stats.TotalEligible != 5 {
		t.Errorf("TotalEligible = %d, want the 5 frozen at open time", stats.TotalEligible)
	}
	if stats.QuorumNecessario != 3 {
		t.Errorf("QuorumNecessario = %d, want 3", stats.QuorumNecessario)
	}
}

func TestRosterReadAtOpen(t *testing.T) {
	// registry changes landing before the open belong in the snapshot
	f := newFixture(t, 4)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx, models.CreateSessionRequest{
		Title:            "pauta nova",
		MaioriaRequerida: models.MaioriaSimples,
		Options:          []models.NewOptionRequest{{Label: "a"}, {Label: "b"}},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	late := &models.Councilor{UserID: 600, Name: "Empossado", Titular: true, Ativo: true}
	if err := f.roster.Create(ctx, late); err != nil {
		t.Fatalf("create councilor: %v", err)
	}

	if _, err := f.svc.OpenSession(ctx, session.ID, f.president()); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}

	stats, err := f.svc.LiveStats(ctx, session.ID)
	if err != nil {
		t.Fatalf("LiveStats: %v", err)
	}
	if stats.TotalEligible != 5 {
		t.Errorf("TotalEligible = %d, want 5 including the councilor sworn in before the open", stats.TotalEligible)
	}
}

func TestVoteTransactionRollsBackAfterClose(t *testing.T) {
	// a vote write that loses the session lock to the closing transition
	// must roll back entirely; a ballot never lands in a closed ledger
	f := newFixture(t, 3)
	ctx := context.Background()
	session, options := f.openSession(t, models.MaioriaSimples, 0)
	f.vote(t, session.ID, f.callers[0], options["Favorável"])

	if _, err := f.svc.CloseSession(ctx, session.ID, f.president()); err != nil {
		t.Fatalf("CloseSession: %v", err)
	}

	loser, err := f.roster.FindByUserID(ctx, f.callers[1].UserID)
	if err != nil {
		t.Fatalf("find councilor: %v", err)
	}
	optionID := options["Contrário"]
	err = f.repo.Transaction(ctx, func(tx SessionRepository) error {
		if err := tx.UpsertVote(ctx, &models.Vote{
			SessionID:   session.ID,
			CouncilorID: loser.ID,
			OptionID:    &optionID,
			CastAt:      time.Now().UTC(),
		}); err != nil {
			return err
		}
		open, err := tx.LockOpen(ctx, session.ID)
		if err != nil {
			return err
		}
		if !open {
			return ErrInvalidSessionState
		}
		return nil
	})
	if !errors.Is(err, ErrInvalidSessionState) {
		t.Fatalf("err = %v, want ErrInvalidSessionState", err)
	}

	votes, err := f.svc.GetVotes(ctx, session.ID, f.president())
	if err != nil {
		t.Fatalf("GetVotes: %v", err)
	}
	if len(votes) != 1 {
		t.Errorf("len(votes) = %d, want 1; the rolled-back ballot must not persist", len(votes))
	}
}

func TestCloseSession(t *testing.T) {
	ctx := context.Background()

	t.Run("SimplesApproved", func(t *testing.T) {
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaSimples, 0)
		for _, caller := range f.callers[:3] {
			f.vote(t, session.ID, caller, options["Favorável"])
		}
		f.vote(t, session.ID, f.callers[3], options["Contrário"])

		result, err := f.svc.CloseSession(ctx, session.ID, f.president())
		if err != nil {
			t.Fatalf("CloseSession: %v", err)
		}
		if !result.Approved || result.Reason != models.ResultAprovada {
			t.Errorf("result = approved=%t reason=%s, want approved", result.Approved, result.Reason)
		}
		if result.WinningOptionID == nil || *result.WinningOptionID != options["Favorável"] {
			t.Errorf("winner = %v, want Favorável", result.WinningOptionID)
		}
		if result.TotalPresent != 4 || result.TotalEligible != 5 {
			t.Errorf("present/eligible = %d/%d, want 4/5", result.TotalPresent, result.TotalEligible)
		}
		if result.HashFinal == "" {
			t.Error("HashFinal must be set")
		}

		if got := f.pub.byType(realtime.EventSessionClosed); len(got) != 1 {
			t.Errorf("session_closed events = %d, want 1", len(got))
		}
	})

	t.Run("QuorumFailureTagged", func(t *testing.T) {
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaSimples, 0)
		f.vote(t, session.ID, f.callers[0], options["Favorável"])
		f.vote(t, session.ID, f.callers[1], options["Favorável"])

		result, err := f.svc.CloseSession(ctx, session.ID, f.president())
		if err != nil {
			t.Fatalf("CloseSession: %v", err)
		}
		if result.Approved {
			t.Error("quorum failure must force approved=false")
		}
		if result.Reason != models.ResultSemQuorum {
			t.Errorf("Reason = %s, want %s", result.Reason, models.ResultSemQuorum)
		}
		if result.QuorumReached {
			t.Error("QuorumReached must be false")
		}
	})

	t.Run("TieTagged", func(t *testing.T) {
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaSimples, 0)
		f.vote(t, session.ID, f.callers[0], options["Favorável"])
		f.vote(t, session.ID, f.callers[1], options["Favorável"])
		f.vote(t, session.ID, f.callers[2], options["Contrário"])
		f.vote(t, session.ID, f.callers[3], options["Contrário"])

		result, err := f.svc.CloseSession(ctx, session.ID, f.president())
		if err != nil {
			t.Fatalf("CloseSession: %v", err)
		}
		if result.Approved || result.WinningOptionID != nil || result.Reason != models.ResultEmpate {
			t.Errorf("result = %+v, want tagged tie with no winner", result)
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		f := newFixture(t, 5)
		session, _ := f.openSession(t, models.MaioriaSimples, 0)
		_, err := f.svc.CloseSession(ctx, session.ID, f.callers[0])
		if !errors.Is(err, ErrUnauthorized) {
			t.Errorf("err = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("IdempotentClose", func(t *testing.T) {
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaSimples, 0)
		for _, caller := range f.callers[:3] {
			f.vote(t, session.ID, caller, options["Favorável"])
		}

		first, err := f.svc.CloseSession(ctx, session.ID, f.president())
		if err != nil {
			t.Fatalf("first CloseSession: %v", err)
		}

		_, err = f.svc.CloseSession(ctx, session.ID, f.president())
		if !errors.Is(err, ErrAlreadyClosed) {
			t.Errorf("second close err = %v, want ErrAlreadyClosed", err)
		}

		result, err := f.svc.GetResult(ctx, session.ID)
		if err != nil {
			t.Fatalf("GetResult: %v", err)
		}
		if result.HashFinal != first.HashFinal || !result.ClosedAt.Equal(first.ClosedAt) {
			t.Error("second close attempt must not change the persisted result")
		}
	})

	t.Run("FreezeInvariant", func(t *testing.T) {
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaSimples, 0)
		for _, caller := range f.callers[:3] {
			f.vote(t, session.ID, caller, options["Favorável"])
		}
		if _, err := f.svc.CloseSession(ctx, session.ID, f.president()); err != nil {
			t.Fatalf("CloseSession: %v", err)
		}

		_, err := f.svc.CastVote(ctx, session.ID, f.callers[4], models.CastVoteRequest{OptionID: options["Contrário"]})
		if !errors.Is(err, ErrInvalidSessionState) {
			t.Errorf("vote after close err = %v, want ErrInvalidSessionState", err)
		}

		votes, err := f.svc.GetVotes(ctx, session.ID, f.president())
		if err != nil {
			t.Fatalf("GetVotes: %v", err)
		}
		if len(votes) != 3 {
			t.Errorf("len(votes) = %d after close, want the 3 frozen records", len(votes))
		}
	})

	t.Run("ImpedimentExclusion", func(t *testing.T) {
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaSimples, 0)
		for _, caller := range f.callers[:3] {
			f.vote(t, session.ID, caller, options["Favorável"])
		}
		_, err := f.svc.CastVote(ctx, session.ID, f.callers[3], models.CastVoteRequest{
			Impedimento:       true,
			MotivoImpedimento: "conflito de interesse",
		})
		if err != nil {
			t.Fatalf("CastVote impediment: %v", err)
		}

		result, err := f.svc.CloseSession(ctx, session.ID, f.president())
		if err != nil {
			t.Fatalf("CloseSession: %v", err)
		}
		if result.TotalPresent != 4 {
			t.Errorf("TotalPresent = %d, want 4 (impeded voter is present)", result.TotalPresent)
		}
		if result.VotosComputados != 3 {
			t.Errorf("VotosComputados = %d, want 3 (impeded voter excluded)", result.VotosComputados)
		}
		if result.Impedimentos != 1 {
			t.Errorf("Impedimentos = %d, want 1", result.Impedimentos)
		}
	})

	t.Run("AbsolutaAgainstEligible", func(t *testing.T) {
		// 3 of 5 votes favor: 3 > 2.5 passes absoluta even though two
		// councilors stayed home
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaAbsoluta, 0)
		for _, caller := range f.callers[:3] {
			f.vote(t, session.ID, caller, options["Favorável"])
		}

		result, err := f.svc.CloseSession(ctx, session.ID, f.president())
		if err != nil {
			t.Fatalf("CloseSession: %v", err)
		}
		if !result.Approved {
			t.Error("3 of 5 eligible must pass maioria absoluta")
		}
	})
}

func TestCancelSession(t *testing.T) {
	ctx := context.Background()

	t.Run("FromAberta", func(t *testing.T) {
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaSimples, 0)
		f.vote(t, session.ID, f.callers[0], options["Favorável"])

		if err := f.svc.CancelSession(ctx, session.ID, "pauta retirada", f.president()); err != nil {
			t.Fatalf("CancelSession: %v", err)
		}

		got, err := f.svc.GetSession(ctx, session.ID)
		if err != nil {
			t.Fatalf("GetSession: %v", err)
		}
		if got.Status != models.SessionCancelada || got.CancelReason != "pauta retirada" {
			t.Errorf("session = status=%s reason=%q, want cancelada", got.Status, got.CancelReason)
		}

		// votes are retained for audit but never finalized
		votes, err := f.svc.GetVotes(ctx, session.ID, f.president())
		if err != nil {
			t.Fatalf("GetVotes: %v", err)
		}
		if len(votes) != 1 {
			t.Errorf("len(votes) = %d, want the cast vote retained", len(votes))
		}
		if _, err := f.svc.GetResult(ctx, session.ID); !errors.Is(err, ErrNotFinalized) {
			t.Errorf("GetResult err = %v, want ErrNotFinalized", err)
		}
	})

	t.Run("FromPreparando", func(t *testing.T) {
		f := newFixture(t, 5)
		session, err := f.svc.CreateSession(ctx, models.CreateSessionRequest{
			Title:            "x",
			MaioriaRequerida: models.MaioriaSimples,
			Options:          []models.NewOptionRequest{{Label: "a"}, {Label: "b"}},
		})
		if err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
		if err := f.svc.CancelSession(ctx, session.ID, "duplicada", f.president()); err != nil {
			t.Fatalf("CancelSession: %v", err)
		}
	})

	t.Run("TerminalStatesReject", func(t *testing.T) {
		f := newFixture(t, 5)
		session, options := f.openSession(t, models.MaioriaSimples, 0)
		for _, caller := range f.callers[:3] {
			f.vote(t, session.ID, caller, options["Favorável"])
		}
		if _, err := f.svc.CloseSession(ctx, session.ID, f.president()); err != nil {
			t.Fatalf("CloseSession: %v", err)
		}
		if err := f.svc.CancelSession(ctx, session.ID, "tarde demais", f.president()); !errors.Is(err, ErrAlreadyClosed) {
			t.Errorf("cancel after close err = %v, want ErrAlreadyClosed", err)
		}
	})

	t.Run("Unauthorized", func(t *testing.T) {
		f := newFixture(t, 5)
		session, _ := f.openSession(t, models.MaioriaSimples, 0)
		if err := f.svc.CancelSession(ctx, session.ID, "x", f.callers[0]); !errors.Is(err, ErrUnauthorized) {
			t.Errorf("err = %v, want ErrUnauthorized", err)
		}
	})
}

func TestExportAndHashRoundTrip(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	session, options := f.openSession(t, models.MaioriaSimples, 0)
	for _, caller := range f.callers[:3] {
		f.vote(t, session.ID, caller, options["Favorável"])
	}
	f.vote(t, session.ID, f.callers[3], options["Contrário"])

	result, err := f.svc.CloseSession(ctx, session.ID, f.president())
	if err != nil {
		t.Fatalf("CloseSession: %v", err)
	}

	export, err := f.svc.ExportResults(ctx, session.ID)
	if err != nil {
		t.Fatalf("ExportResults: %v", err)
	}
	if export.Result == nil {
		t.Fatal("export must carry the finalized result")
	}

	// recompute the digest from the persisted snapshot; tampering with any
	// input would break this equality
	stats := tally.ComputeStats(export.Roster, export.Session.Options, export.Votes)
	recomputed := tally.FinalHash(session.ID, export.Votes, stats, export.Result.RuleApplied, export.Result.ClosedAt)
	if recomputed != result.HashFinal {
		t.Errorf("recomputed hash %s != stored %s", recomputed, result.HashFinal)
	}
	// timestamptz columns keep microseconds only; finer precision in the
	// closing instant would make the digest unverifiable after a read back
	if result.ClosedAt.Nanosecond()%int(time.Microsecond) != 0 {
		t.Errorf("ClosedAt %v carries sub-microsecond precision", result.ClosedAt)
	}
}

func TestSecretBallotHidesChoices(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()

	session, err := f.svc.CreateSession(ctx, models.CreateSessionRequest{
		Title:            "votação secreta",
		VotoSecreto:      true,
		MaioriaRequerida: models.MaioriaSimples,
		Options:          []models.NewOptionRequest{{Label: "Favorável"}, {Label: "Contrário"}},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if _, err := f.svc.OpenSession(ctx, session.ID, f.president()); err != nil {
		t.Fatalf("OpenSession: %v", err)
	}
	session, _ = f.svc.GetSession(ctx, session.ID)
	f.vote(t, session.ID, f.callers[0], session.Options[0].ID)

	votes, err := f.svc.GetVotes(ctx, session.ID, f.callers[1])
	if err != nil {
		t.Fatalf("GetVotes: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("len(votes) = %d, want 1", len(votes))
	}
	if votes[0].OptionID != nil {
		t.Error("secret ballot must withhold option choices from regular councilors while open")
	}

	// the closer roles still see the full record
	votes, err = f.svc.GetVotes(ctx, session.ID, f.president())
	if err != nil {
		t.Fatalf("GetVotes: %v", err)
	}
	if votes[0].OptionID == nil {
		t.Error("closer roles must see the full record")
	}
}

func TestOpenSessionTransitions(t *testing.T) {
	f := newFixture(t, 5)
	ctx := context.Background()
	session, _ := f.openSession(t, models.MaioriaSimples, 0)

	if _, err := f.svc.OpenSession(ctx, session.ID, f.president()); !errors.Is(err, ErrInvalidSessionState) {
		t.Errorf("re-open err = %v, want ErrInvalidSessionState", err)
	}
	if _, err := f.svc.OpenSession(ctx, "missing", f.president()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("open missing err = %v, want ErrSessionNotFound", err)
	}
}
