package meeting

import (
	"context"
	"errors"

	"codema-service/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrInvalidMeetingState = errors.New("operation not permitted in the current meeting state")
)

type MeetingService struct {
	repo MeetingRepository
}

func NewMeetingService(repo MeetingRepository) *MeetingService {
	return &MeetingService{repo: repo}
}

func (s *MeetingService) Create(ctx context.Context, req models.CreateMeetingRequest) (*models.Meeting, error) {
	meeting := &models.Meeting{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Location:    req.Location,
		ScheduledAt: req.ScheduledAt,
		Status:      models.MeetingAgendada,
	}
	if err := s.repo.Create(ctx, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (s *MeetingService) Get(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMeetingNotFound
	}
	return meeting, err
}

func (s *MeetingService) List(ctx context.Context) ([]*models.Meeting, error) {
	return s.repo.List(ctx)
}

// Transition advances the meeting state machine; an impossible advance is
// rejected, never reinterpreted.
func (s *MeetingService) Transition(ctx context.Context, id string, to models.MeetingStatus) (*models.Meeting, error) {
	meeting, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !meeting.Status.CanTransition(to) {
		return nil, ErrInvalidMeetingState
	}

	won, err := s.repo.TransitionStatus(ctx, id, meeting.Status, to)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrInvalidMeetingState
	}
	return s.Get(ctx, id)
}

// AddItem appends an agenda entry at the end of the meeting's pauta.
func (s *MeetingService) AddItem(ctx context.Context, meetingID string, req models.AddAgendaItemRequest) (*models.AgendaItem, error) {
	meeting, err := s.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting.Status == models.MeetingConcluida || meeting.Status == models.MeetingCancelada {
		return nil, ErrInvalidMeetingState
	}

	count, err := s.repo.CountItems(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	item := &models.AgendaItem{
		ID:         uuid.New().String(),
		MeetingID:  meetingID,
		Position:   int(count),
		Title:      req.Title,
		SessionID:  req.SessionID,
		DenunciaID: req.DenunciaID,
	}
	if err := s.repo.AddItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
