package repository

import (
	"context"
	"errors"
	"time"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParticipantRepository defines the interface for participant data operations.
// The counter columns are only written through UpdateCounters, which the
// interaction service calls inside the transaction that appends the log row.
type ParticipantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	GetByID(ctx context.Context, id uint) (*models.Participant, error)
	GetByIDWith(ctx context.Context, id uint, joins ...ParticipantJoin) (*models.Participant, error)
	// GetForUpdate reads the participant and locks its row until the
	// surrounding transaction ends. SQLite ignores the lock clause.
	GetForUpdate(ctx context.Context, id uint) (*models.Participant, error)
	GetBySessionID(ctx context.Context, sessionID string) (*models.Participant, error)
	ListByStudy(ctx context.Context, studyID uint) ([]*models.Participant, error)
	UpdateCounters(ctx context.Context, id uint, c models.Counters) error
	SetGameStart(ctx context.Context, id uint, at time.Time) error
	SetGameFinish(ctx context.Context, id uint, at time.Time) error
	WithTx(tx *gorm.DB) ParticipantRepository
}

type participantRepository struct {
	t table
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *gorm.DB, opts ...Option) ParticipantRepository {
	return &participantRepository{t: newTable(db, "participants", "Participant", opts)}
}

func (r *participantRepository) WithTx(tx *gorm.DB) ParticipantRepository {
	return &participantRepository{t: r.t.withTx(tx)}
}

func (r *participantRepository) Create(ctx context.Context, p *models.Participant) error {
	if p.StudyID == 0 {
		return models.NewValidationError("participant must be linked to a study")
	}
	return r.t.create(ctx, p, fieldsOf("fk_linked_study", p.StudyID, "session_id", p.SessionID))
}

func (r *participantRepository) GetByID(ctx context.Context, id uint) (*models.Participant, error) {
	return lookup[models.Participant, noJoin](ctx, r.t, id, nil)
}

func (r *participantRepository) GetByIDWith(ctx context.Context, id uint, joins ...ParticipantJoin) (*models.Participant, error) {
	return lookup[models.Participant](ctx, r.t, id, joins)
}

func (r *participantRepository) GetForUpdate(ctx context.Context, id uint) (*models.Participant, error) {
	if err := requireID(r.t.resource, id); err != nil {
		return nil, err
	}
	defer observability.TrackQuery("get_for_update", r.t.name)()

	var p models.Participant
	err := r.t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError(r.t.resource, id)
	}
	if err != nil {
		return nil, r.t.fail(ctx, "get_for_update", err)
	}
	return &p, nil
}

func (r *participantRepository) GetBySessionID(ctx context.Context, sessionID string) (*models.Participant, error) {
	if sessionID == "" {
		return nil, models.NewValidationError("session id is required")
	}
	defer observability.TrackQuery("get_by_session_id", r.t.name)()

	var p models.Participant
	err := r.t.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError(r.t.resource, sessionID)
	}
	if err != nil {
		return nil, r.t.fail(ctx, "get_by_session_id", err)
	}
	return &p, nil
}

func (r *participantRepository) ListByStudy(ctx context.Context, studyID uint) ([]*models.Participant, error) {
	if err := requireID("Study", studyID); err != nil {
		return nil, err
	}
	return list[models.Participant, noJoin](ctx, r.t, "list_by_study", nil, func(q *gorm.DB) *gorm.DB {
		return q.Where("fk_linked_study = ?", studyID).Order("id ASC")
	})
}

func (r *participantRepository) UpdateCounters(ctx context.Context, id uint, c models.Counters) error {
	return r.t.updateColumns(ctx, "update_counters", &models.Participant{}, id, map[string]interface{}{
		"nb_follower":       c.Followers,
		"credibility_score": c.Credibility,
	})
}

func (r *participantRepository) SetGameStart(ctx context.Context, id uint, at time.Time) error {
	return r.t.updateColumns(ctx, "set_game_start", &models.Participant{}, id, map[string]interface{}{"game_start_time": at})
}

func (r *participantRepository) SetGameFinish(ctx context.Context, id uint, at time.Time) error {
	return r.t.updateColumns(ctx, "set_game_finish", &models.Participant{}, id, map[string]interface{}{"game_finish_time": at})
}
