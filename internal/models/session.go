package models

import (
	"time"
)

// SessionStatus is the voting session lifecycle state
type SessionStatus string

const (
	SessionPreparando SessionStatus = "preparando"
	SessionAberta     SessionStatus = "aberta"
	SessionEncerrada  SessionStatus = "encerrada"
	SessionCancelada  SessionStatus = "cancelada"
)

// Terminal reports whether no further transition is permitted.
func (s SessionStatus) Terminal() bool {
	return s == SessionEncerrada || s == SessionCancelada
}

// CanTransition reports whether the state machine permits s -> next.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	switch s {
	case SessionPreparando:
		return next == SessionAberta || next == SessionCancelada
	case SessionAberta:
		return next == SessionEncerrada || next == SessionCancelada
	default:
		return false
	}
}

// MajorityRule selects how the resolution engine decides approval
type MajorityRule string

const (
	MaioriaSimples     MajorityRule = "simples"
	MaioriaAbsoluta    MajorityRule = "absoluta"
	MaioriaQualificada MajorityRule = "qualificada"
)

func (m MajorityRule) Valid() bool {
	return m == MaioriaSimples || m == MaioriaAbsoluta || m == MaioriaQualificada
}

// VotingSession is one collegiate ballot over a resolution or agenda item.
type VotingSession struct {
	ID                   string        `gorm:"column:id;primaryKey;size:36" json:"id"`
	Title                string        `gorm:"column:title;size:255;not null" json:"title"`
	ResolutionRef        string        `gorm:"column:resolution_ref;size:255" json:"resolution_ref"`
	MeetingID            string        `gorm:"column:meeting_id;size:36;index" json:"meeting_id,omitempty"`
	VotoSecreto          bool          `gorm:"column:voto_secreto;default:false" json:"voto_secreto"`
	MaioriaRequerida     MajorityRule  `gorm:"column:maioria_requerida;size:16;not null" json:"maioria_requerida"`
	PercentualQualificada float64      `gorm:"column:percentual_qualificada" json:"percentual_qualificada,omitempty"`
	Status               SessionStatus `gorm:"column:status;size:16;not null;index" json:"status"`
	OpenedAt             *time.Time    `gorm:"column:opened_at" json:"opened_at,omitempty"`
	ClosedAt             *time.Time    `gorm:"column:closed_at" json:"closed_at,omitempty"`
	CancelReason         string        `gorm:"column:cancel_reason;size:512" json:"cancel_reason,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`

	Options []BallotOption `gorm:"foreignKey:SessionID" json:"options,omitempty"`
}

func (VotingSession) TableName() string {
	return "voting_sessions"
}

// BallotOption is one choice on a session's ballot. An option flagged as
// abstention is tallied separately and never wins.
type BallotOption struct {
	ID           string `gorm:"column:id;primaryKey;size:36" json:"id"`
	SessionID    string `gorm:"column:session_id;size:36;not null;index" json:"session_id"`
	Label        string `gorm:"column:label;size:255;not null" json:"label"`
	Color        string `gorm:"column:color;size:16" json:"color"`
	Position     int    `gorm:"column:position;not null" json:"position"`
	IsAbstention bool   `gorm:"column:is_abstention;default:false" json:"is_abstention"`
}

func (BallotOption) TableName() string {
	return "ballot_options"
}

// RosterEntry is the frozen snapshot of one eligible voter, taken when the
// session opens. Councilor changes after that never move the quorum
// denominator.
type RosterEntry struct {
	SessionID   string `gorm:"column:session_id;size:36;primaryKey" json:"session_id"`
	CouncilorID uint   `gorm:"column:councilor_id;primaryKey" json:"councilor_id"`
	Name        string `gorm:"column:name;size:255;not null" json:"name"`
	Cargo       string `gorm:"column:cargo;size:255" json:"cargo"`
	Titular     bool   `gorm:"column:titular" json:"titular"`
}

func (RosterEntry) TableName() string {
	return "session_rosters"
}

// Vote is the single live ballot record of one voter in one session.
// Exactly one of OptionID or Impedimento is set.
type Vote struct {
	SessionID         string    `gorm:"column:session_id;size:36;primaryKey" json:"session_id"`
	CouncilorID       uint      `gorm:"column:councilor_id;primaryKey" json:"councilor_id"`
	OptionID          *string   `gorm:"column:option_id;size:36" json:"option_id,omitempty"`
	Impedimento       bool      `gorm:"column:impedimento;default:false" json:"impedimento"`
	MotivoImpedimento string    `gorm:"column:motivo_impedimento;size:512" json:"motivo_impedimento,omitempty"`
	Justificativa     string    `gorm:"column:justificativa;size:512" json:"justificativa,omitempty"`
	CastAt            time.Time `gorm:"column:cast_at;not null" json:"cast_at"`
}

func (Vote) TableName() string {
	return "votes"
}

// ResultReason tags how the final outcome came about
type ResultReason string

const (
	ResultAprovada  ResultReason = "aprovada"
	ResultRejeitada ResultReason = "rejeitada"
	ResultSemQuorum ResultReason = "sem_quorum"
	ResultEmpate    ResultReason = "empate"
)

// TallyResult is the immutable outcome persisted once at closure.
type TallyResult struct {
	SessionID       string          `gorm:"column:session_id;size:36;primaryKey" json:"session_id"`
	VotesByOption   map[string]int  `gorm:"column:votes_by_option;serializer:json" json:"votes_by_option"`
	Percentages     map[string]float64 `gorm:"column:percentages;serializer:json" json:"percentages"`
	Abstentions     int             `gorm:"column:abstentions" json:"abstentions"`
	Impedimentos    int             `gorm:"column:impedimentos" json:"impedimentos"`
	TotalEligible   int             `gorm:"column:total_eligible" json:"total_eligible"`
	TotalPresent    int             `gorm:"column:total_present" json:"total_present"`
	VotosComputados int             `gorm:"column:votos_computados" json:"votos_computados"`
	QuorumNecessario int            `gorm:"column:quorum_necessario" json:"quorum_necessario"`
	QuorumReached   bool            `gorm:"column:quorum_reached" json:"quorum_reached"`
	Approved        bool            `gorm:"column:approved" json:"approved"`
	WinningOptionID *string         `gorm:"column:winning_option_id;size:36" json:"winning_option_id"`
	Reason          ResultReason    `gorm:"column:reason;size:16;not null" json:"reason"`
	RuleApplied     MajorityRule    `gorm:"column:rule_applied;size:16;not null" json:"rule_applied"`
	HashFinal       string          `gorm:"column:hash_final;size:64;not null" json:"hash_final"`
	ClosedBy        uint            `gorm:"column:closed_by" json:"closed_by"`
	ClosedAt        time.Time       `gorm:"column:closed_at;not null" json:"closed_at"`
}

func (TallyResult) TableName() string {
	return "tally_results"
}

// CreateSessionRequest defines the input for creating a voting session
type CreateSessionRequest struct {
	Title                 string              `json:"title" binding:"required"`
	ResolutionRef         string              `json:"resolution_ref"`
	MeetingID             string              `json:"meeting_id"`
	VotoSecreto           bool                `json:"voto_secreto"`
	MaioriaRequerida      MajorityRule        `json:"maioria_requerida" binding:"required"`
	PercentualQualificada float64             `json:"percentual_qualificada"`
	Options               []NewOptionRequest  `json:"options" binding:"required,min=2"`
}

// NewOptionRequest is one ballot option in a session creation request
type NewOptionRequest struct {
	Label        string `json:"label" binding:"required"`
	Color        string `json:"color"`
	IsAbstention bool   `json:"is_abstention"`
}

// CastVoteRequest defines the input for casting or revising a vote
type CastVoteRequest struct {
	OptionID          string `json:"option_id"`
	Impedimento       bool   `json:"impedimento"`
	MotivoImpedimento string `json:"motivo_impedimento"`
	Justificativa     string `json:"justificativa"`
}

// CancelSessionRequest carries the reason for a cancellation
type CancelSessionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SessionExport is the serializable snapshot handed to external audit tools
type SessionExport struct {
	Session VotingSession `json:"session"`
	Roster  []RosterEntry `json:"roster"`
	Votes   []Vote        `json:"votes"`
	Result  *TallyResult  `json:"result,omitempty"`
}
