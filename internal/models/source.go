package models

import "time"

// Source is a simulated author persona. Posts and comments are attributed
// to a source, and TruePostPercentage drives how often generated posts are true.
type Source struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	MsID               string    `json:"ms_id"`
	Name               string    `gorm:"not null" json:"name"`
	Style              string    `json:"style"`
	MaxPosts           int       `json:"max_posts"`
	TruePostPercentage int       `gorm:"not null;default:0" json:"true_post_percentage"`
	Avatar             string    `json:"avatar"`
	CreatedAt          time.Time `gorm:"not null" json:"created_at"`
}

func (Source) TableName() string {
	return "sources"
}

// Validate checks the percentage and post budget.
func (s *Source) Validate() error {
	if s.TruePostPercentage < 0 || s.TruePostPercentage > 100 {
		return NewValidationError("true_post_percentage must be between 0 and 100")
	}
	if s.MaxPosts < 0 {
		return NewValidationError("max_posts must not be negative")
	}
	return nil
}
