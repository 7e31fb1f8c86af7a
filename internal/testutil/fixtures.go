package testutil

import (
	"testing"

	"truthfeed/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Settings is one row of each settings table.
type Settings struct {
	UI       *models.StudyUISettings
	Basic    *models.StudyBasicSettings
	Advanced *models.StudyAdvancedSettings
	Pages    *models.StudyPagesSettings
}

func CreateAdmin(t *testing.T, db *gorm.DB, accessRight int) *models.AdminUser {
	t.Helper()
	admin := &models.AdminUser{AccessRight: accessRight}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

func CreateSettings(t *testing.T, db *gorm.DB) Settings {
	t.Helper()
	s := Settings{
		UI:       &models.StudyUISettings{DisplayPostsInFeed: true, DisplayFollowers: true, DisplayCredibility: true},
		Basic:    &models.StudyBasicSettings{Name: "Fixture Study", Length: 10, RequireReactions: true},
		Advanced: &models.StudyAdvancedSettings{MinimumCommentLength: 50, PromptDelaySeconds: 60, ReactDelaySeconds: 30},
		Pages:    &models.StudyPagesSettings{PreIntro: "Welcome", Debrief: "Thanks"},
	}
	require.NoError(t, db.Create(s.UI).Error)
	require.NoError(t, db.Create(s.Basic).Error)
	require.NoError(t, db.Create(s.Advanced).Error)
	require.NoError(t, db.Create(s.Pages).Error)
	return s
}

// CreateStudy creates an admin, a settings bundle and a study using both.
func CreateStudy(t *testing.T, db *gorm.DB) *models.Study {
	t.Helper()
	admin := CreateAdmin(t, db, 1)
	s := CreateSettings(t, db)
	study := &models.Study{
		UISettingsID:       s.UI.ID,
		BasicSettingsID:    s.Basic.ID,
		AdvancedSettingsID: s.Advanced.ID,
		PagesSettingsID:    &s.Pages.ID,
		OpenedByID:         admin.ID,
		ClosedByID:         admin.ID,
	}
	require.NoError(t, db.Create(study).Error)
	return study
}

func CreateSource(t *testing.T, db *gorm.DB, truePostPercentage int) *models.Source {
	t.Helper()
	source := &models.Source{Name: "Daily Planet", Style: "tabloid", MaxPosts: 10, TruePostPercentage: truePostPercentage}
	require.NoError(t, db.Create(source).Error)
	return source
}

func CreateParticipant(t *testing.T, db *gorm.DB, studyID uint, followers, credibility int) *models.Participant {
	t.Helper()
	p := &models.Participant{
		StudyID:          studyID,
		Username:         "participant",
		NbFollower:       followers,
		CredibilityScore: credibility,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// CreatePost creates a post in studyID by sourceID; mutate may set deltas.
func CreatePost(t *testing.T, db *gorm.DB, studyID, sourceID uint, mutate func(*models.Post)) *models.Post {
	t.Helper()
	post := &models.Post{
		StudyID:  studyID,
		SourceID: sourceID,
		Headline: "Local bees learn to count",
		Content:  "Researchers observed bees counting to four.",
	}
	if mutate != nil {
		mutate(post)
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func CreateComment(t *testing.T, db *gorm.DB, postID, sourceID uint) *models.Comment {
	t.Helper()
	c := &models.Comment{PostID: postID, SourceID: sourceID, Content: "Source please."}
	require.NoError(t, db.Create(c).Error)
	return c
}
