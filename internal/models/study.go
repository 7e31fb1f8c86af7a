// Package models contains the persistent entities of a misinformation study.
package models

import (
	"time"
)

// AdminUser opens, closes and exports studies.
type AdminUser struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	AccessRight int       `gorm:"not null;default:0" json:"access_right"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

// Study ties a settings bundle to the admins that run it. Participants and
// posts point back to it through fk_linked_study.
type Study struct {
	ID                 uint  `gorm:"primaryKey" json:"id"`
	UISettingsID       uint  `gorm:"column:fk_ui_settings;not null" json:"fk_ui_settings"`
	BasicSettingsID    uint  `gorm:"column:fk_basic_settings;not null" json:"fk_basic_settings"`
	AdvancedSettingsID uint  `gorm:"column:fk_advanced_settings;not null" json:"fk_advanced_settings"`
	PagesSettingsID    *uint `gorm:"column:fk_pages_settings" json:"fk_pages_settings,omitempty"`
	OpenedByID         uint  `gorm:"column:fk_opened_by;not null" json:"fk_opened_by"`
	ClosedByID         uint  `gorm:"column:fk_closed_by;not null" json:"fk_closed_by"`

	OpenedAt               *time.Time `json:"opened_at,omitempty"`
	ClosedAt               *time.Time `json:"closed_at,omitempty"`
	ResultLastDownloadTime *time.Time `json:"result_last_download_time,omitempty"`
	ResultLastDownloadByID *uint      `gorm:"column:fk_result_last_download_by" json:"fk_result_last_download_by,omitempty"`
	CreatedAt              time.Time  `gorm:"not null" json:"created_at"`

	UISettings           *StudyUISettings       `gorm:"foreignKey:UISettingsID" json:"ui_settings,omitempty"`
	BasicSettings        *StudyBasicSettings    `gorm:"foreignKey:BasicSettingsID" json:"basic_settings,omitempty"`
	AdvancedSettings     *StudyAdvancedSettings `gorm:"foreignKey:AdvancedSettingsID" json:"advanced_settings,omitempty"`
	PagesSettings        *StudyPagesSettings    `gorm:"foreignKey:PagesSettingsID" json:"pages_settings,omitempty"`
	OpenedBy             *AdminUser             `gorm:"foreignKey:OpenedByID" json:"opened_by,omitempty"`
	ClosedBy             *AdminUser             `gorm:"foreignKey:ClosedByID" json:"closed_by,omitempty"`
	ResultLastDownloadBy *AdminUser             `gorm:"foreignKey:ResultLastDownloadByID" json:"result_last_download_by,omitempty"`
}

func (Study) TableName() string {
	return "studies"
}

// Validate checks the invariants that do not need the database.
func (s *Study) Validate() error {
	if s.UISettingsID == 0 || s.BasicSettingsID == 0 || s.AdvancedSettingsID == 0 {
		return NewValidationError("ui, basic and advanced settings IDs are required")
	}
	if s.PagesSettingsID != nil && *s.PagesSettingsID == 0 {
		return NewValidationError("pages settings ID must be greater than 0 when set")
	}
	if s.OpenedByID == 0 || s.ClosedByID == 0 {
		return NewValidationError("opened_by and closed_by admin IDs are required")
	}
	if s.OpenedAt != nil && s.ClosedAt != nil && s.ClosedAt.Before(*s.OpenedAt) {
		return NewValidationError("closed_at must not be before opened_at")
	}
	return nil
}

// IsOpen reports whether the study has been opened and not yet closed.
func (s *Study) IsOpen() bool {
	return s.OpenedAt != nil && s.ClosedAt == nil
}
