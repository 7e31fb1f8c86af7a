package repository

import (
	"context"

	"truthfeed/internal/models"

	"gorm.io/gorm"
)

// SettingsRepository stores the four settings tables a study references.
// Settings rows are created ahead of the study and never cascade-created.
type SettingsRepository interface {
	CreateUI(ctx context.Context, s *models.StudyUISettings) error
	CreateBasic(ctx context.Context, s *models.StudyBasicSettings) error
	CreateAdvanced(ctx context.Context, s *models.StudyAdvancedSettings) error
	CreatePages(ctx context.Context, s *models.StudyPagesSettings) error
	GetUIByID(ctx context.Context, id uint) (*models.StudyUISettings, error)
	GetBasicByID(ctx context.Context, id uint) (*models.StudyBasicSettings, error)
	GetAdvancedByID(ctx context.Context, id uint) (*models.StudyAdvancedSettings, error)
	GetPagesByID(ctx context.Context, id uint) (*models.StudyPagesSettings, error)
	WithTx(tx *gorm.DB) SettingsRepository
}

type settingsRepository struct {
	ui       table
	basic    table
	advanced table
	pages    table
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *gorm.DB, opts ...Option) SettingsRepository {
	return &settingsRepository{
		ui:       newTable(db, "study_ui_settings", "UI settings", opts),
		basic:    newTable(db, "study_basic_settings", "Basic settings", opts),
		advanced: newTable(db, "study_advanced_settings", "Advanced settings", opts),
		pages:    newTable(db, "study_pages_settings", "Pages settings", opts),
	}
}

func (r *settingsRepository) WithTx(tx *gorm.DB) SettingsRepository {
	return &settingsRepository{
		ui:       r.ui.withTx(tx),
		basic:    r.basic.withTx(tx),
		advanced: r.advanced.withTx(tx),
		pages:    r.pages.withTx(tx),
	}
}

func (r *settingsRepository) CreateUI(ctx context.Context, s *models.StudyUISettings) error {
	return r.ui.create(ctx, s, nil)
}

func (r *settingsRepository) CreateBasic(ctx context.Context, s *models.StudyBasicSettings) error {
	return r.basic.create(ctx, s, fieldsOf("name", s.Name))
}

func (r *settingsRepository) CreateAdvanced(ctx context.Context, s *models.StudyAdvancedSettings) error {
	return r.advanced.create(ctx, s, nil)
}

func (r *settingsRepository) CreatePages(ctx context.Context, s *models.StudyPagesSettings) error {
	return r.pages.create(ctx, s, nil)
}

func (r *settingsRepository) GetUIByID(ctx context.Context, id uint) (*models.StudyUISettings, error) {
	return lookup[models.StudyUISettings, noJoin](ctx, r.ui, id, nil)
}

func (r *settingsRepository) GetBasicByID(ctx context.Context, id uint) (*models.StudyBasicSettings, error) {
	return lookup[models.StudyBasicSettings, noJoin](ctx, r.basic, id, nil)
}

func (r *settingsRepository) GetAdvancedByID(ctx context.Context, id uint) (*models.StudyAdvancedSettings, error) {
	return lookup[models.StudyAdvancedSettings, noJoin](ctx, r.advanced, id, nil)
}

func (r *settingsRepository) GetPagesByID(ctx context.Context, id uint) (*models.StudyPagesSettings, error) {
	return lookup[models.StudyPagesSettings, noJoin](ctx, r.pages, id, nil)
}

// AdminUserRepository stores the admins that open, close and export studies.
type AdminUserRepository interface {
	Create(ctx context.Context, admin *models.AdminUser) error
	GetByID(ctx context.Context, id uint) (*models.AdminUser, error)
}

type adminUserRepository struct {
	t table
}

// NewAdminUserRepository creates a new admin user repository
func NewAdminUserRepository(db *gorm.DB, opts ...Option) AdminUserRepository {
	return &adminUserRepository{t: newTable(db, "admin_users", "Admin user", opts)}
}

func (r *adminUserRepository) Create(ctx context.Context, admin *models.AdminUser) error {
	return r.t.create(ctx, admin, fieldsOf("access_right", admin.AccessRight))
}

func (r *adminUserRepository) GetByID(ctx context.Context, id uint) (*models.AdminUser, error) {
	return lookup[models.AdminUser, noJoin](ctx, r.t, id, nil)
}
