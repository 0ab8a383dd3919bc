package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codema-service/internal/audit"
	"codema-service/internal/models"
	"codema-service/internal/realtime"
	"codema-service/internal/tally"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound         = errors.New("session not found")
	ErrInvalidSessionState     = errors.New("operation not permitted in the current session state")
	ErrNotEligible             = errors.New("voter is not on the session roster")
	ErrInvalidOption           = errors.New("unknown ballot option")
	ErrMissingImpedimentReason = errors.New("impediment requires a reason")
	ErrAmbiguousBallot         = errors.New("vote must carry either an option or an impediment, not both")
	ErrAlreadyClosed           = errors.New("session is already closed")
	ErrUnauthorized            = errors.New("caller is not allowed to close or cancel sessions")
	ErrInvalidMajority         = errors.New("invalid majority configuration")
	ErrNotFinalized            = errors.New("session has no finalized result")
)

// CloserPolicy decides which caller roles may close or cancel a session.
// It is deployment configuration injected into the engine, never engine
// constants.
type CloserPolicy interface {
	CanClose(role string) bool
}

// RosterSource resolves the councilor behind a voting account.
type RosterSource interface {
	FindByUserID(ctx context.Context, userID uint) (*models.Councilor, error)
}

type SessionService struct {
	repo    SessionRepository
	roster  RosterSource
	policy  CloserPolicy
	pub     realtime.Publisher
	auditor audit.Emitter
}

func NewSessionService(repo SessionRepository, roster RosterSource, policy CloserPolicy, pub realtime.Publisher, auditor audit.Emitter) *SessionService {
	return &SessionService{
		repo:    repo,
		roster:  roster,
		policy:  policy,
		pub:     pub,
		auditor: auditor,
	}
}

// CreateSession validates the ballot configuration and stores the session
// in the preparando state.
func (s *SessionService) CreateSession(ctx context.Context, req models.CreateSessionRequest) (*models.VotingSession, error) {
	if !req.MaioriaRequerida.Valid() {
		return nil, fmt.Errorf("%w: unknown rule %q", ErrInvalidMajority, req.MaioriaRequerida)
	}
	if req.MaioriaRequerida == models.MaioriaQualificada {
		if req.PercentualQualificada <= 50 || req.PercentualQualificada > 100 {
			return nil, fmt.Errorf("%w: percentual_qualificada must be in (50, 100]", ErrInvalidMajority)
		}
	} else {
		// present only for the qualificada rule
		req.PercentualQualificada = 0
	}
	if len(req.Options) < 2 {
		return nil, fmt.Errorf("%w: a ballot needs at least two options", ErrInvalidMajority)
	}

	session := &models.VotingSession{
		ID:                    uuid.New().String(),
		Title:                 strings.TrimSpace(req.Title),
		ResolutionRef:         req.ResolutionRef,
		MeetingID:             req.MeetingID,
		VotoSecreto:           req.VotoSecreto,
		MaioriaRequerida:      req.MaioriaRequerida,
		PercentualQualificada: req.PercentualQualificada,
		Status:                models.SessionPreparando,
	}
	for i, opt := range req.Options {
		session.Options = append(session.Options, models.BallotOption{
			ID:           uuid.New().String(),
			SessionID:    session.ID,
			Label:        opt.Label,
			Color:        opt.Color,
			Position:     i,
			IsAbstention: opt.IsAbstention,
		})
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// OpenSession advances preparando -> aberta and freezes the roster: every
// active councilor at this moment becomes an eligible voter, and the
// quorum denominator never moves again.
func (s *SessionService) OpenSession(ctx context.Context, sessionID string, caller models.Identity) (*models.VotingSession, error) {
	now := time.Now().UTC()
	var snapshotSize int
	err := s.repo.Transaction(ctx, func(tx SessionRepository) error {
		won, err := tx.TransitionStatus(ctx, sessionID, models.SessionPreparando, models.SessionAberta,
			map[string]interface{}{"opened_at": now})
		if err != nil {
			return err
		}
		if !won {
			return s.transitionFailure(ctx, tx, sessionID)
		}

		// read the registry inside the transaction so a councilor change
		// cannot slip between the status advance and the snapshot
		councilors, err := tx.ActiveCouncilors(ctx)
		if err != nil {
			return err
		}
		entries := make([]models.RosterEntry, 0, len(councilors))
		for _, c := range councilors {
			entries = append(entries, models.RosterEntry{
				SessionID:   sessionID,
				CouncilorID: c.ID,
				Name:        c.Name,
				Cargo:       c.Cargo,
				Titular:     c.Titular,
			})
		}
		snapshotSize = len(entries)
		return tx.SnapshotRoster(ctx, entries)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, audit.Record{
		Action:   audit.ActionOpenSession,
		ActorID:  caller.UserID,
		EntityID: sessionID,
		Details:  fmt.Sprintf("roster snapshot of %d councilors", snapshotSize),
	})
	return s.repo.FindByID(ctx, sessionID)
}

// CastVote records or revises the caller's ballot. The open check takes
// the session row lock inside the vote transaction, so a vote racing the
// close either commits before the freeze or is rejected; it is never
// silently lost.
func (s *SessionService) CastVote(ctx context.Context, sessionID string, caller models.Identity, req models.CastVoteRequest) (*models.Vote, error) {
	councilor, err := s.roster.FindByUserID(ctx, caller.UserID)
	if err != nil || councilor == nil {
		return nil, ErrNotEligible
	}
	if !councilor.Ativo {
		return nil, ErrNotEligible
	}

	vote := &models.Vote{
		SessionID:     sessionID,
		CouncilorID:   councilor.ID,
		Impedimento:   req.Impedimento,
		Justificativa: req.Justificativa,
		CastAt:        time.Now().UTC(),
	}
	if req.Impedimento {
		if req.OptionID != "" {
			return nil, ErrAmbiguousBallot
		}
		if strings.TrimSpace(req.MotivoImpedimento) == "" {
			return nil, ErrMissingImpedimentReason
		}
		vote.MotivoImpedimento = req.MotivoImpedimento
	} else {
		if req.OptionID == "" {
			return nil, ErrInvalidOption
		}
		optionID := req.OptionID
		vote.OptionID = &optionID
	}

	err = s.repo.Transaction(ctx, func(tx SessionRepository) error {
		session, err := tx.FindByID(ctx, sessionID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		// the conditional write both checks the state and holds the
		// session row lock until commit, serializing this vote against a
		// concurrent closing CAS
		open, err := tx.LockOpen(ctx, sessionID)
		if err != nil {
			return err
		}
		if !open {
			return ErrInvalidSessionState
		}

		if vote.OptionID != nil {
			valid := false
			for _, opt := range session.Options {
				if opt.ID == *vote.OptionID {
					valid = true
					break
				}
			}
			if !valid {
				return ErrInvalidOption
			}
		}

		roster, err := tx.GetRoster(ctx, sessionID)
		if err != nil {
			return err
		}
		onRoster := false
		for _, entry := range roster {
			if entry.CouncilorID == councilor.ID {
				onRoster = true
				break
			}
		}
		if !onRoster {
			return ErrNotEligible
		}

		return tx.UpsertVote(ctx, vote)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, audit.Record{
		Action:   audit.ActionCastVote,
		ActorID:  caller.UserID,
		EntityID: sessionID,
		Details:  fmt.Sprintf("councilor %d", councilor.ID),
	})
	s.publishLiveStats(ctx, sessionID)
	return vote, nil
}

// GetVoterBallot returns the caller's own current vote, or nil.
func (s *SessionService) GetVoterBallot(ctx context.Context, sessionID string, caller models.Identity) (*models.Vote, error) {
	councilor, err := s.roster.FindByUserID(ctx, caller.UserID)
	if err != nil || councilor == nil {
		return nil, ErrNotEligible
	}
	return s.repo.GetVote(ctx, sessionID, councilor.ID)
}

// GetVotes returns the live vote records. For a secret ballot the chosen
// options are withheld from callers outside the closer roles until the
// session is finalized.
func (s *SessionService) GetVotes(ctx context.Context, sessionID string, caller models.Identity) ([]models.Vote, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	votes, err := s.repo.GetVotes(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.VotoSecreto && session.Status == models.SessionAberta && !s.policy.CanClose(caller.Role) {
		for i := range votes {
			votes[i].OptionID = nil
			votes[i].Justificativa = ""
		}
	}
	return votes, nil
}

// LiveStats recomputes the session statistics from the current ledger.
func (s *SessionService) LiveStats(ctx context.Context, sessionID string) (*tally.Stats, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	roster, err := s.repo.GetRoster(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	votes, err := s.repo.GetVotes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	stats := tally.ComputeStats(roster, session.Options, votes)
	return &stats, nil
}

// CloseSession finalizes the session: the status CAS freezes the ledger,
// the tally runs over the frozen snapshot, and the result row lands in the
// same transaction. A lost CAS means somebody else already advanced the
// state; nothing is recomputed.
func (s *SessionService) CloseSession(ctx context.Context, sessionID string, caller models.Identity) (*models.TallyResult, error) {
	if !s.policy.CanClose(caller.Role) {
		return nil, ErrUnauthorized
	}

	// timestamptz keeps microseconds; the digest must be reproducible
	// from the persisted row
	closedAt := time.Now().UTC().Truncate(time.Microsecond)
	var result *models.TallyResult

	err := s.repo.Transaction(ctx, func(tx SessionRepository) error {
		won, err := tx.TransitionStatus(ctx, sessionID, models.SessionAberta, models.SessionEncerrada,
			map[string]interface{}{"closed_at": closedAt})
		if err != nil {
			return err
		}
		if !won {
			return s.transitionFailure(ctx, tx, sessionID)
		}

		session, err := tx.FindByID(ctx, sessionID)
		if err != nil {
			return err
		}
		roster, err := tx.GetRoster(ctx, sessionID)
		if err != nil {
			return err
		}
		votes, err := tx.GetVotes(ctx, sessionID)
		if err != nil {
			return err
		}

		stats := tally.ComputeStats(roster, session.Options, votes)
		outcome, err := tally.Resolve(stats, session.Options, session.MaioriaRequerida, session.PercentualQualificada)
		if err != nil {
			return err
		}

		result = &models.TallyResult{
			SessionID:        sessionID,
			VotesByOption:    stats.VotesByOption,
			Percentages:      outcome.Percentages,
			Abstentions:      stats.Abstentions,
			Impedimentos:     stats.Impedimentos,
			TotalEligible:    stats.TotalEligible,
			TotalPresent:     stats.TotalPresent,
			VotosComputados:  stats.VotosComputados,
			QuorumNecessario: stats.QuorumNecessario,
			QuorumReached:    stats.QuorumAtingido,
			Approved:         outcome.Approved,
			WinningOptionID:  outcome.WinningOptionID,
			Reason:           outcome.Reason,
			RuleApplied:      session.MaioriaRequerida,
			HashFinal:        tally.FinalHash(sessionID, votes, stats, session.MaioriaRequerida, closedAt),
			ClosedBy:         caller.UserID,
			ClosedAt:         closedAt,
		}
		return tx.CreateResult(ctx, result)
	})
	if err != nil {
		return nil, err
	}

	s.auditor.Emit(ctx, audit.Record{
		Action:   audit.ActionCloseSession,
		ActorID:  caller.UserID,
		EntityID: sessionID,
		Details:  fmt.Sprintf("approved=%t reason=%s", result.Approved, result.Reason),
	})
	s.pub.Publish(ctx, realtime.NewEvent(realtime.EventSessionClosed, sessionID, result))
	return result, nil
}

// CancelSession aborts a session from preparando or aberta. Votes are kept
// for audit but never finalized; no result row is produced.
func (s *SessionService) CancelSession(ctx context.Context, sessionID string, reason string, caller models.Identity) error {
	if !s.policy.CanClose(caller.Role) {
		return ErrUnauthorized
	}

	err := s.repo.Transaction(ctx, func(tx SessionRepository) error {
		updates := map[string]interface{}{"cancel_reason": reason}
		won, err := tx.TransitionStatus(ctx, sessionID, models.SessionAberta, models.SessionCancelada, updates)
		if err != nil {
			return err
		}
		if won {
			return nil
		}
		won, err = tx.TransitionStatus(ctx, sessionID, models.SessionPreparando, models.SessionCancelada, updates)
		if err != nil {
			return err
		}
		if !won {
			return s.transitionFailure(ctx, tx, sessionID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.auditor.Emit(ctx, audit.Record{
		Action:   audit.ActionCancelSession,
		ActorID:  caller.UserID,
		EntityID: sessionID,
		Details:  reason,
	})
	s.pub.Publish(ctx, realtime.NewEvent(realtime.EventSessionCancelled, sessionID, nil))
	return nil
}

// ExportResults produces the serializable snapshot for external audit tools.
func (s *SessionService) ExportResults(ctx context.Context, sessionID string) (*models.SessionExport, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	roster, err := s.repo.GetRoster(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	votes, err := s.repo.GetVotes(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result, err := s.repo.GetResult(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &models.SessionExport{
		Session: *session,
		Roster:  roster,
		Votes:   votes,
		Result:  result,
	}, nil
}

// GetSession returns one session with its ballot options.
func (s *SessionService) GetSession(ctx context.Context, sessionID string) (*models.VotingSession, error) {
	session, err := s.repo.FindByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

// ListSessions returns all sessions, newest first.
func (s *SessionService) ListSessions(ctx context.Context) ([]*models.VotingSession, error) {
	return s.repo.List(ctx)
}

// GetResult returns the finalized tally of a closed session.
func (s *SessionService) GetResult(ctx context.Context, sessionID string) (*models.TallyResult, error) {
	result, err := s.repo.GetResult(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ErrNotFinalized
	}
	return result, nil
}

// transitionFailure maps a lost status CAS to the precise rejection: the
// session may not exist, may already be finalized, or may simply not be in
// the state the operation requires.
func (s *SessionService) transitionFailure(ctx context.Context, tx SessionRepository, sessionID string) error {
	session, err := tx.FindByID(ctx, sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}
	if session.Status == models.SessionEncerrada {
		return ErrAlreadyClosed
	}
	return ErrInvalidSessionState
}

func (s *SessionService) publishLiveStats(ctx context.Context, sessionID string) {
	stats, err := s.LiveStats(ctx, sessionID)
	if err != nil {
		return
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.EventVoteCast, sessionID, stats))
}
