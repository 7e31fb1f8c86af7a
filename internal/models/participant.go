package models

import (
	"time"

	"gorm.io/gorm"
)

// Participant is a study-scoped actor. NbFollower and CredibilityScore are a
// cached projection of the participant's post interaction log; they are only
// written by the interaction service in the same transaction as the log row.
// InitialFollower and InitialCredibility hold the values the participant
// joined with and never change; the log replays from them.
type Participant struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	MsID               int        `json:"ms_id"`
	StudyID            uint       `gorm:"column:fk_linked_study;not null;index" json:"fk_linked_study"`
	SessionID          string     `gorm:"index" json:"session_id"`
	Avatar             string     `json:"avatar"`
	Username           string     `json:"username"`
	NbFollower         int        `gorm:"not null;default:0" json:"nb_follower"`
	CredibilityScore   int        `gorm:"not null;default:0" json:"credibility_score"`
	InitialFollower    int        `gorm:"not null;default:0" json:"initial_follower"`
	InitialCredibility int        `gorm:"not null;default:0" json:"initial_credibility"`
	GameStartTime      *time.Time `json:"game_start_time,omitempty"`
	GameFinishTime     *time.Time `json:"game_finish_time,omitempty"`
	CreatedAt          time.Time  `gorm:"not null" json:"created_at"`

	Study *Study `gorm:"foreignKey:StudyID" json:"linked_study,omitempty"`
}

func (Participant) TableName() string {
	return "participants"
}

// Counters returns the participant's cached follower and credibility values.
func (p *Participant) Counters() Counters {
	return Counters{Followers: p.NbFollower, Credibility: p.CredibilityScore}
}

// Initial returns the counters the participant joined with.
func (p *Participant) Initial() Counters {
	return Counters{Followers: p.InitialFollower, Credibility: p.InitialCredibility}
}

// BeforeCreate pins the join-time counters to the values being inserted.
func (p *Participant) BeforeCreate(*gorm.DB) error {
	p.InitialFollower, p.InitialCredibility = p.NbFollower, p.CredibilityScore
	return nil
}

// Counters is a follower/credibility pair.
type Counters struct {
	Followers   int `json:"followers"`
	Credibility int `json:"credibility"`
}

// Apply returns c shifted by d.
func (c Counters) Apply(d Delta) Counters {
	return Counters{
		Followers:   c.Followers + d.Followers,
		Credibility: c.Credibility + d.Credibility,
	}
}
