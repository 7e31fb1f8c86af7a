package models

import (
	"fmt"
	"time"
)

// Post is a generated piece of feed content. Posts are static once created:
// the shown counters are what participants see, the delta fields are what a
// reaction does to the participant.
type Post struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	MsID       string `json:"ms_id"`
	StudyID    uint   `gorm:"column:fk_linked_study;not null;index" json:"fk_linked_study"`
	SourceID   uint   `gorm:"column:fk_source_id;not null;index" json:"fk_source_id"`
	Headline   string `gorm:"not null" json:"headline"`
	Content    string `gorm:"type:text;not null" json:"content"`
	IsTrueFact bool   `json:"is_true_fact"`

	// Shown when the post is presented.
	NumberOfLikes   int `gorm:"not null;default:0" json:"number_of_likes"`
	NumberOfDislike int `gorm:"not null;default:0" json:"number_of_dislike"`
	NumberOfShared  int `gorm:"not null;default:0" json:"number_of_shared"`
	NumberOfFlagged int `gorm:"not null;default:0" json:"number_of_flagged"`

	ChangesToFollowerOnLike       int `gorm:"not null;default:0" json:"changes_to_follower_on_like"`
	ChangesToFollowerOnDislike    int `gorm:"not null;default:0" json:"changes_to_follower_on_dislike"`
	ChangesToFollowerOnShare      int `gorm:"not null;default:0" json:"changes_to_follower_on_share"`
	ChangesToFollowerOnFlag       int `gorm:"not null;default:0" json:"changes_to_follower_on_flag"`
	ChangesToCredibilityOnLike    int `gorm:"not null;default:0" json:"changes_to_credibility_on_like"`
	ChangesToCredibilityOnDislike int `gorm:"not null;default:0" json:"changes_to_credibility_on_dislike"`
	ChangesToCredibilityOnShare   int `gorm:"not null;default:0" json:"changes_to_credibility_on_share"`
	ChangesToCredibilityOnFlag    int `gorm:"not null;default:0" json:"changes_to_credibility_on_flag"`

	NumberOfReactions int       `gorm:"not null;default:0" json:"number_of_reactions"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`

	Study  *Study  `gorm:"foreignKey:StudyID" json:"linked_study,omitempty"`
	Source *Source `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// Delta returns the counter change configured for reaction r.
func (p *Post) Delta(r Reaction) (Delta, error) {
	switch r {
	case ReactionLike:
		return Delta{Followers: p.ChangesToFollowerOnLike, Credibility: p.ChangesToCredibilityOnLike}, nil
	case ReactionDislike:
		return Delta{Followers: p.ChangesToFollowerOnDislike, Credibility: p.ChangesToCredibilityOnDislike}, nil
	case ReactionShare:
		return Delta{Followers: p.ChangesToFollowerOnShare, Credibility: p.ChangesToCredibilityOnShare}, nil
	case ReactionFlag:
		return Delta{Followers: p.ChangesToFollowerOnFlag, Credibility: p.ChangesToCredibilityOnFlag}, nil
	}
	return Delta{}, NewValidationError(fmt.Sprintf("unknown reaction type %q", r))
}

// SetDelta configures the counter change for reaction r.
func (p *Post) SetDelta(r Reaction, d Delta) error {
	switch r {
	case ReactionLike:
		p.ChangesToFollowerOnLike, p.ChangesToCredibilityOnLike = d.Followers, d.Credibility
	case ReactionDislike:
		p.ChangesToFollowerOnDislike, p.ChangesToCredibilityOnDislike = d.Followers, d.Credibility
	case ReactionShare:
		p.ChangesToFollowerOnShare, p.ChangesToCredibilityOnShare = d.Followers, d.Credibility
	case ReactionFlag:
		p.ChangesToFollowerOnFlag, p.ChangesToCredibilityOnFlag = d.Followers, d.Credibility
	default:
		return NewValidationError(fmt.Sprintf("unknown reaction type %q", r))
	}
	return nil
}

// Comment is a source-authored reply shown under a post.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SourceID  uint      `gorm:"column:fk_source_id;not null;index" json:"fk_source_id"`
	PostID    uint      `gorm:"column:fk_post_id;not null;index" json:"fk_post_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	Source *Source `gorm:"foreignKey:SourceID" json:"source,omitempty"`
	Post   *Post   `gorm:"foreignKey:PostID" json:"linked_post,omitempty"`
}

func (Comment) TableName() string {
	return "comments"
}
