package models

import (
	"fmt"
	"strings"
)

// Reaction is the closed set of reactions a participant can have to a post.
type Reaction string

const (
	ReactionLike    Reaction = "like"
	ReactionDislike Reaction = "dislike"
	ReactionShare   Reaction = "share"
	ReactionFlag    Reaction = "flag"
)

// Reactions lists every valid reaction.
var Reactions = []Reaction{ReactionLike, ReactionDislike, ReactionShare, ReactionFlag}

// ParseReaction normalizes s and rejects unknown reactions.
func ParseReaction(s string) (Reaction, error) {
	r := Reaction(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", NewValidationError(fmt.Sprintf("unknown reaction type %q", s))
	}
	return r, nil
}

func (r Reaction) Valid() bool {
	switch r {
	case ReactionLike, ReactionDislike, ReactionShare, ReactionFlag:
		return true
	}
	return false
}

func (r Reaction) String() string {
	return string(r)
}

// Delta is the signed change a reaction applies to a participant's counters.
type Delta struct {
	Followers   int `json:"followers"`
	Credibility int `json:"credibility"`
}
