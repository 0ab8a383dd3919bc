package session

import (
	"context"
	"errors"
	"time"

	"codema-service/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SessionRepository is the persistence boundary of the voting engine. The
// store must provide atomic upsert for votes and a conditional status
// update for sessions; everything else is plain CRUD.
type SessionRepository interface {
	Create(ctx context.Context, session *models.VotingSession) error
	FindByID(ctx context.Context, id string) (*models.VotingSession, error)
	List(ctx context.Context) ([]*models.VotingSession, error)

	// TransitionStatus performs the compare-and-set state advance. It
	// reports whether this call won the transition.
	TransitionStatus(ctx context.Context, id string, from, to models.SessionStatus, updates map[string]interface{}) (bool, error)

	// LockOpen confirms the session is still open via a conditional write
	// on the session row. Run inside a vote transaction it holds the row
	// lock until commit, so a vote racing the closing CAS either commits
	// strictly before the freeze or is rejected; it can never land in a
	// closed ledger unseen by the tally.
	LockOpen(ctx context.Context, id string) (bool, error)

	// ActiveCouncilors reads the current active registry rows. The open
	// transaction calls it so the snapshot and the status advance commit
	// together.
	ActiveCouncilors(ctx context.Context) ([]models.Councilor, error)

	SnapshotRoster(ctx context.Context, entries []models.RosterEntry) error
	GetRoster(ctx context.Context, sessionID string) ([]models.RosterEntry, error)

	UpsertVote(ctx context.Context, vote *models.Vote) error
	GetVotes(ctx context.Context, sessionID string) ([]models.Vote, error)
	GetVote(ctx context.Context, sessionID string, councilorID uint) (*models.Vote, error)

	CreateResult(ctx context.Context, result *models.TallyResult) error
	GetResult(ctx context.Context, sessionID string) (*models.TallyResult, error)

	// Transaction runs fn against a repository bound to one database
	// transaction; fn returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(SessionRepository) error) error
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.VotingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *sessionRepository) FindByID(ctx context.Context, id string) (*models.VotingSession, error) {
	var session models.VotingSession
	err := r.db.WithContext(ctx).Preload("Options").First(&session, "id = ?", id).Error
	return &session, err
}

func (r *sessionRepository) List(ctx context.Context) ([]*models.VotingSession, error) {
	var sessions []*models.VotingSession
	err := r.db.WithContext(ctx).Preload("Options").Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepository) TransitionStatus(ctx context.Context, id string, from, to models.SessionStatus, updates map[string]interface{}) (bool, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.VotingSession{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *sessionRepository) LockOpen(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.VotingSession{}).
		Where("id = ? AND status = ?", id, models.SessionAberta).
		Update("updated_at", time.Now().UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *sessionRepository) ActiveCouncilors(ctx context.Context) ([]models.Councilor, error) {
	var councilors []models.Councilor
	err := r.db.WithContext(ctx).Where("ativo = ?", true).Order("name").Find(&councilors).Error
	return councilors, err
}

func (r *sessionRepository) SnapshotRoster(ctx context.Context, entries []models.RosterEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *sessionRepository) GetRoster(ctx context.Context, sessionID string) ([]models.RosterEntry, error) {
	var roster []models.RosterEntry
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&roster).Error
	return roster, err
}

// UpsertVote is last-write-wins per (session, voter): a revised vote
// replaces the earlier record in place.
func (r *sessionRepository) UpsertVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "councilor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"option_id", "impedimento", "motivo_impedimento", "justificativa", "cast_at",
		}),
	}).Create(vote).Error
}

func (r *sessionRepository) GetVotes(ctx context.Context, sessionID string) ([]models.Vote, error) {
	var votes []models.Vote
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("councilor_id").Find(&votes).Error
	return votes, err
}

func (r *sessionRepository) GetVote(ctx context.Context, sessionID string, councilorID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND councilor_id = ?", sessionID, councilorID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &vote, err
}

func (r *sessionRepository) CreateResult(ctx context.Context, result *models.TallyResult) error {
	return r.db.WithContext(ctx).Create(result).Error
}

func (r *sessionRepository) GetResult(ctx context.Context, sessionID string) (*models.TallyResult, error) {
	var result models.TallyResult
	err := r.db.WithContext(ctx).First(&result, "session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &result, err
}

func (r *sessionRepository) Transaction(ctx context.Context, fn func(SessionRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&sessionRepository{db: tx})
	})
}
