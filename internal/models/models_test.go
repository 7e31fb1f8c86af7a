package models

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReaction(t *testing.T) {
	tests := []struct {
		in      string
		want    Reaction
		wantErr bool
	}{
		{"like", ReactionLike, false},
		{" Dislike ", ReactionDislike, false},
		{"SHARE", ReactionShare, false},
		{"flag", ReactionFlag, false},
		{"love", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReaction(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPost_Delta(t *testing.T) {
	post := &Post{
		ChangesToFollowerOnLike:       10,
		ChangesToFollowerOnDislike:    -10,
		ChangesToFollowerOnShare:      5,
		ChangesToFollowerOnFlag:       15,
		ChangesToCredibilityOnLike:    11,
		ChangesToCredibilityOnDislike: 12,
		ChangesToCredibilityOnShare:   25,
		ChangesToCredibilityOnFlag:    -18,
	}

	want := map[Reaction]Delta{
		ReactionLike:    {Followers: 10, Credibility: 11},
		ReactionDislike: {Followers: -10, Credibility: 12},
		ReactionShare:   {Followers: 5, Credibility: 25},
		ReactionFlag:    {Followers: 15, Credibility: -18},
	}
	for r, d := range want {
		got, err := post.Delta(r)
		require.NoError(t, err)
		assert.Equal(t, d, got, "reaction %s", r)
	}

	_, err := post.Delta(Reaction("boost"))
	assert.True(t, IsValidation(err))
}

func TestPost_SetDelta(t *testing.T) {
	var post Post
	for i, r := range Reactions {
		require.NoError(t, post.SetDelta(r, Delta{Followers: i + 1, Credibility: -(i + 1)}))
	}
	for i, r := range Reactions {
		d, err := post.Delta(r)
		require.NoError(t, err)
		assert.Equal(t, Delta{Followers: i + 1, Credibility: -(i + 1)}, d)
	}
	assert.Error(t, post.SetDelta(Reaction("x"), Delta{}))
}

func TestCounters_Apply(t *testing.T) {
	before := Counters{Followers: 100, Credibility: 40}
	after := before.Apply(Delta{Followers: 5, Credibility: -3})
	assert.Equal(t, Counters{Followers: 105, Credibility: 37}, after)
	assert.Equal(t, Counters{Followers: 100, Credibility: 40}, before)
}

func TestStudy_Validate(t *testing.T) {
	opened := time.Date(2024, 4, 11, 12, 0, 0, 0, time.UTC)
	closedEarly := opened.Add(-time.Hour)
	closedLate := opened.Add(time.Hour)
	zero := uint(0)

	valid := func() Study {
		return Study{UISettingsID: 1, BasicSettingsID: 1, AdvancedSettingsID: 1, OpenedByID: 1, ClosedByID: 1}
	}

	tests := []struct {
		name    string
		mutate  func(*Study)
		wantErr bool
	}{
		{"valid", func(*Study) {}, false},
		{"missing ui settings", func(s *Study) { s.UISettingsID = 0 }, true},
		{"zero pages settings", func(s *Study) { s.PagesSettingsID = &zero }, true},
		{"missing closer", func(s *Study) { s.ClosedByID = 0 }, true},
		{"closed before opened", func(s *Study) { s.OpenedAt, s.ClosedAt = &opened, &closedEarly }, true},
		{"closed after opened", func(s *Study) { s.OpenedAt, s.ClosedAt = &opened, &closedLate }, false},
		{"closed equal opened", func(s *Study) { s.OpenedAt, s.ClosedAt = &opened, &opened }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid()
			tt.mutate(&s)
			err := s.Validate()
			if tt.wantErr {
				assert.True(t, IsValidation(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSource_Validate(t *testing.T) {
	for _, pct := range []int{0, 50, 100} {
		s := Source{TruePostPercentage: pct}
		assert.NoError(t, s.Validate(), "pct %d", pct)
	}
	for _, pct := range []int{-1, 101} {
		s := Source{TruePostPercentage: pct}
		assert.Error(t, s.Validate(), "pct %d", pct)
	}
	assert.Error(t, (&Source{MaxPosts: -1}).Validate())
}

func TestAppError_Classification(t *testing.T) {
	cause := errors.New("driver: connection refused")
	backend := NewBackendError("post", "read", cause)
	wrapped := fmt.Errorf("load feed: %w", backend)

	assert.True(t, IsBackend(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.Contains(t, backend.Error(), "connection refused")

	assert.True(t, IsNotFound(NewNotFoundError("study", 3)))
	assert.True(t, IsInvalidID(NewInvalidIDError("study", 0)))
	assert.True(t, IsConstraintViolation(NewConstraintError("study", cause)))
	assert.Equal(t, "", ErrorCode(cause))
	assert.False(t, IsNotFound(nil))
}
