package repository

import (
	"context"
	"time"

	"truthfeed/internal/models"

	"gorm.io/gorm"
)

// StudyRepository defines the interface for study data operations
type StudyRepository interface {
	Create(ctx context.Context, study *models.Study) error
	// GetByID loads the study with its settings bundle and admins.
	GetByID(ctx context.Context, id uint) (*models.Study, error)
	GetByIDWith(ctx context.Context, id uint, joins ...StudyJoin) (*models.Study, error)
	SetOpened(ctx context.Context, id, adminID uint, at time.Time) error
	SetClosed(ctx context.Context, id, adminID uint, at time.Time) error
	RecordResultDownload(ctx context.Context, id, adminID uint, at time.Time) error
	WithTx(tx *gorm.DB) StudyRepository
}

type studyRepository struct {
	t table
}

// NewStudyRepository creates a new study repository
func NewStudyRepository(db *gorm.DB, opts ...Option) StudyRepository {
	return &studyRepository{t: newTable(db, "studies", "Study", opts)}
}

func (r *studyRepository) WithTx(tx *gorm.DB) StudyRepository {
	return &studyRepository{t: r.t.withTx(tx)}
}

func (r *studyRepository) Create(ctx context.Context, study *models.Study) error {
	if err := study.Validate(); err != nil {
		return err
	}
	return r.t.create(ctx, study, fieldsOf(
		"fk_ui_settings", study.UISettingsID,
		"fk_basic_settings", study.BasicSettingsID,
		"fk_advanced_settings", study.AdvancedSettingsID,
		"fk_opened_by", study.OpenedByID,
		"fk_closed_by", study.ClosedByID,
	))
}

func (r *studyRepository) GetByID(ctx context.Context, id uint) (*models.Study, error) {
	return r.GetByIDWith(ctx, id, StudyDetails...)
}

func (r *studyRepository) GetByIDWith(ctx context.Context, id uint, joins ...StudyJoin) (*models.Study, error) {
	return lookup[models.Study](ctx, r.t, id, joins)
}

func (r *studyRepository) SetOpened(ctx context.Context, id, adminID uint, at time.Time) error {
	return r.t.updateColumns(ctx, "set_opened", &models.Study{}, id, map[string]interface{}{
		"opened_at":    at,
		"fk_opened_by": adminID,
	})
}

func (r *studyRepository) SetClosed(ctx context.Context, id, adminID uint, at time.Time) error {
	return r.t.updateColumns(ctx, "set_closed", &models.Study{}, id, map[string]interface{}{
		"closed_at":    at,
		"fk_closed_by": adminID,
	})
}

func (r *studyRepository) RecordResultDownload(ctx context.Context, id, adminID uint, at time.Time) error {
	return r.t.updateColumns(ctx, "record_result_download", &models.Study{}, id, map[string]interface{}{
		"result_last_download_time":  at,
		"fk_result_last_download_by": adminID,
	})
}
