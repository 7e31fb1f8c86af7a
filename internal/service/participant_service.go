package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/repository"
	"truthfeed/internal/validation"

	"github.com/google/uuid"
)

// ParticipantService handles joining a study and the game clock.
type ParticipantService struct {
	participants repository.ParticipantRepository
	studies      repository.StudyRepository
	log          *slog.Logger
	now          func() time.Time
	newSession   func() string
}

// JoinStudyInput describes a new participant. The counters are the starting
// point of the participant's interaction log.
type JoinStudyInput struct {
	StudyID            uint
	MsID               int
	Username           string
	Avatar             string
	InitialFollowers   int
	InitialCredibility int
}

// NewParticipantService returns a new ParticipantService.
func NewParticipantService(
	participants repository.ParticipantRepository,
	studies repository.StudyRepository,
	log *slog.Logger,
) *ParticipantService {
	return &ParticipantService{
		participants: participants,
		studies:      studies,
		log:          log,
		now:          time.Now,
		newSession:   uuid.NewString,
	}
}

// JoinStudy creates a participant with a fresh session id.
func (s *ParticipantService) JoinStudy(ctx context.Context, in JoinStudyInput) (*models.Participant, error) {
	username := validation.NormalizeUsername(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateAvatarURL(in.Avatar); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	study, err := s.studies.GetByIDWith(ctx, in.StudyID)
	if err != nil {
		return nil, err
	}
	if study.ClosedAt != nil {
		return nil, models.NewValidationError("study is closed")
	}

	p := &models.Participant{
		MsID:             in.MsID,
		StudyID:          study.ID,
		SessionID:        s.newSession(),
		Avatar:           in.Avatar,
		Username:         username,
		NbFollower:       in.InitialFollowers,
		CredibilityScore: in.InitialCredibility,
	}
	if err := s.participants.Create(ctx, p); err != nil {
		return nil, err
	}

	ctx = observability.WithParticipantID(observability.WithStudyID(ctx, study.ID), p.ID)
	s.log.InfoContext(ctx, "Participant joined", slog.String("session_id", p.SessionID))
	return p, nil
}

// StartGame stamps game_start_time once.
func (s *ParticipantService) StartGame(ctx context.Context, participantID uint) (*models.Participant, error) {
	p, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if p.GameStartTime != nil {
		return nil, models.NewValidationError("game already started")
	}
	if err := s.participants.SetGameStart(ctx, p.ID, s.now().UTC()); err != nil {
		return nil, err
	}
	return s.participants.GetByID(ctx, p.ID)
}

// FinishGame stamps game_finish_time after a started game.
func (s *ParticipantService) FinishGame(ctx context.Context, participantID uint) (*models.Participant, error) {
	p, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if p.GameStartTime == nil {
		return nil, models.NewValidationError("game has not started")
	}
	if p.GameFinishTime != nil {
		return nil, models.NewValidationError("game already finished")
	}
	finish := s.now().UTC()
	if finish.Before(*p.GameStartTime) {
		return nil, models.NewValidationError("game_finish_time must not be before game_start_time")
	}
	if err := s.participants.SetGameFinish(ctx, p.ID, finish); err != nil {
		return nil, err
	}
	return s.participants.GetByID(ctx, p.ID)
}

// GetBySession resolves a participant from a session id.
func (s *ParticipantService) GetBySession(ctx context.Context, sessionID string) (*models.Participant, error) {
	return s.participants.GetBySessionID(ctx, strings.TrimSpace(sessionID))
}
