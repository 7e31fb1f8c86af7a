package models

import (
	"time"

	"gorm.io/gorm"
)

// NoInteractionTime marks a timing column the client never reported.
const NoInteractionTime int64 = -1

// PostInteraction records one reaction of a participant to a post together
// with the participant's counters before and after it. Rows are never updated
// or deleted; the ordered log is the source of truth for the counters.
type PostInteraction struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	Order                 int       `gorm:"column:order;not null" json:"order"`
	ParticipantID         uint      `gorm:"column:fk_participant_id;not null;index" json:"fk_participant_id"`
	PostID                uint      `gorm:"column:fk_post_id;not null;index" json:"fk_post_id"`
	CommentID             *uint     `gorm:"column:fk_comment_id" json:"fk_comment_id,omitempty"`
	ReactionType          Reaction  `gorm:"size:16;not null" json:"reaction_type"`
	Flagged               bool      `json:"flagged"`
	Shared                bool      `json:"shared"`
	FirstTimeToInteractMs int64     `gorm:"column:first_time_to_interact_ms" json:"first_time_to_interact_ms"`
	LastInteractionTimeMs int64     `gorm:"column:last_interaction_time_ms" json:"last_interaction_time_ms"`
	UserFollowerBefore    int       `json:"user_follower_before"`
	UserFollowerAfter     int       `json:"user_follower_after"`
	UserCredibilityBefore int       `json:"user_credibility_before"`
	UserCredibilityAfter  int       `json:"user_credibility_after"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`

	Participant *Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
	Post        *Post        `gorm:"foreignKey:PostID" json:"post,omitempty"`
	Comment     *Comment     `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
}

func (PostInteraction) TableName() string {
	return "posts_interactions"
}

// BeforeUpdate keeps the log append-only.
func (*PostInteraction) BeforeUpdate(_ *gorm.DB) error {
	return ErrAppendOnly
}

// BeforeDelete keeps the log append-only.
func (*PostInteraction) BeforeDelete(_ *gorm.DB) error {
	return ErrAppendOnly
}

// Before returns the counters snapshotted before the reaction.
func (i *PostInteraction) Before() Counters {
	return Counters{Followers: i.UserFollowerBefore, Credibility: i.UserCredibilityBefore}
}

// After returns the counters snapshotted after the reaction.
func (i *PostInteraction) After() Counters {
	return Counters{Followers: i.UserFollowerAfter, Credibility: i.UserCredibilityAfter}
}

// CommentInteraction records a participant's reaction to a comment.
type CommentInteraction struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	CommentID             uint      `gorm:"column:fk_comment_id;not null;index" json:"fk_comment_id"`
	ParticipantID         uint      `gorm:"column:fk_participant_id;not null;index" json:"fk_participant_id"`
	ReactionType          Reaction  `gorm:"size:16;not null" json:"reaction_type"`
	FirstTimeToInteractMs int64     `gorm:"column:first_time_to_interact_ms" json:"first_time_to_interact_ms"`
	LastInteractionTimeMs int64     `gorm:"column:last_interaction_time_ms" json:"last_interaction_time_ms"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`

	Comment     *Comment     `gorm:"foreignKey:CommentID" json:"comment,omitempty"`
	Participant *Participant `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
}

func (CommentInteraction) TableName() string {
	return "comments_interactions"
}

func (*CommentInteraction) BeforeUpdate(_ *gorm.DB) error {
	return ErrAppendOnly
}

func (*CommentInteraction) BeforeDelete(_ *gorm.DB) error {
	return ErrAppendOnly
}
