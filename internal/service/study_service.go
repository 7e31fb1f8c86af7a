// Package service holds the study, participant, post and interaction
// workflows built on the repositories.
package service

import (
	"context"
	"log/slog"
	"time"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/repository"

	"gorm.io/gorm"
)

// StudyService composes studies and drives their lifecycle.
type StudyService struct {
	db       *gorm.DB
	studies  repository.StudyRepository
	settings repository.SettingsRepository
	log      *slog.Logger
	now      func() time.Time
}

// SettingsBundle is one row of each settings table. Pages is optional.
type SettingsBundle struct {
	UI       *models.StudyUISettings
	Basic    *models.StudyBasicSettings
	Advanced *models.StudyAdvancedSettings
	Pages    *models.StudyPagesSettings
}

// ComposeStudyInput references rows that must already exist.
type ComposeStudyInput struct {
	UISettingsID       uint
	BasicSettingsID    uint
	AdvancedSettingsID uint
	PagesSettingsID    *uint
	OpenedByID         uint
	ClosedByID         uint
}

// NewStudyService returns a new StudyService.
func NewStudyService(
	db *gorm.DB,
	studies repository.StudyRepository,
	settings repository.SettingsRepository,
	log *slog.Logger,
) *StudyService {
	return &StudyService{
		db:       db,
		studies:  studies,
		settings: settings,
		log:      log,
		now:      time.Now,
	}
}

// CreateSettings inserts a settings bundle in one transaction and fills in the ids.
func (s *StudyService) CreateSettings(ctx context.Context, b SettingsBundle) (SettingsBundle, error) {
	if b.UI == nil || b.Basic == nil || b.Advanced == nil {
		return b, models.NewValidationError("ui, basic and advanced settings are required")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings := s.settings.WithTx(tx)
		if err := settings.CreateUI(ctx, b.UI); err != nil {
			return err
		}
		if err := settings.CreateBasic(ctx, b.Basic); err != nil {
			return err
		}
		if err := settings.CreateAdvanced(ctx, b.Advanced); err != nil {
			return err
		}
		if b.Pages != nil {
			return settings.CreatePages(ctx, b.Pages)
		}
		return nil
	})
	return b, err
}

// ComposeStudy creates a study over existing settings and admins. Nothing is
// created on the study's behalf; a dangling reference is a constraint violation.
func (s *StudyService) ComposeStudy(ctx context.Context, in ComposeStudyInput) (*models.Study, error) {
	study := &models.Study{
		UISettingsID:       in.UISettingsID,
		BasicSettingsID:    in.BasicSettingsID,
		AdvancedSettingsID: in.AdvancedSettingsID,
		PagesSettingsID:    in.PagesSettingsID,
		OpenedByID:         in.OpenedByID,
		ClosedByID:         in.ClosedByID,
	}
	if err := s.studies.Create(ctx, study); err != nil {
		return nil, err
	}

	s.log.InfoContext(observability.WithStudyID(ctx, study.ID), "Study composed",
		slog.Uint64("opened_by", uint64(study.OpenedByID)),
		slog.Uint64("closed_by", uint64(study.ClosedByID)),
	)
	return s.studies.GetByID(ctx, study.ID)
}

// GetStudy loads a study with its settings and admins.
func (s *StudyService) GetStudy(ctx context.Context, id uint) (*models.Study, error) {
	return s.studies.GetByID(ctx, id)
}

// OpenStudy stamps opened_at once. A closed study cannot be reopened.
func (s *StudyService) OpenStudy(ctx context.Context, studyID, adminID uint) (*models.Study, error) {
	study, err := s.studies.GetByIDWith(ctx, studyID)
	if err != nil {
		return nil, err
	}
	if study.ClosedAt != nil {
		return nil, models.NewValidationError("study is already closed")
	}
	if study.OpenedAt != nil {
		return nil, models.NewValidationError("study is already open")
	}
	if err := requireAdmin(adminID); err != nil {
		return nil, err
	}

	if err := s.studies.SetOpened(ctx, studyID, adminID, s.now().UTC()); err != nil {
		return nil, err
	}
	s.log.InfoContext(observability.WithStudyID(ctx, studyID), "Study opened", slog.Uint64("admin_id", uint64(adminID)))
	return s.studies.GetByID(ctx, studyID)
}

// CloseStudy stamps closed_at, which may not precede opened_at.
func (s *StudyService) CloseStudy(ctx context.Context, studyID, adminID uint) (*models.Study, error) {
	study, err := s.studies.GetByIDWith(ctx, studyID)
	if err != nil {
		return nil, err
	}
	if study.OpenedAt == nil {
		return nil, models.NewValidationError("study has not been opened")
	}
	if study.ClosedAt != nil {
		return nil, models.NewValidationError("study is already closed")
	}
	if err := requireAdmin(adminID); err != nil {
		return nil, err
	}

	closedAt := s.now().UTC()
	if closedAt.Before(*study.OpenedAt) {
		return nil, models.NewValidationError("closed_at must not be before opened_at")
	}
	if err := s.studies.SetClosed(ctx, studyID, adminID, closedAt); err != nil {
		return nil, err
	}
	s.log.InfoContext(observability.WithStudyID(ctx, studyID), "Study closed", slog.Uint64("admin_id", uint64(adminID)))
	return s.studies.GetByID(ctx, studyID)
}

// RecordResultDownload stamps who exported the study's results and when.
func (s *StudyService) RecordResultDownload(ctx context.Context, studyID, adminID uint) error {
	if err := requireAdmin(adminID); err != nil {
		return err
	}
	return s.studies.RecordResultDownload(ctx, studyID, adminID, s.now().UTC())
}

func requireAdmin(adminID uint) error {
	if adminID == 0 {
		return models.NewInvalidIDError("Admin user", adminID)
	}
	return nil
}
