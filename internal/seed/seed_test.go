package seed

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPreset_MatchesExampleStudy(t *testing.T) {
	p, err := DefaultPreset()
	require.NoError(t, err)

	assert.Equal(t, 1, p.Admin.AccessRight)
	assert.Equal(t, "Example Study", p.Basic.Name)
	assert.Equal(t, 10, p.Basic.Length)
	assert.True(t, p.Basic.RequireIdentification)
	assert.Equal(t, 12345, p.Advanced.GenCompletionCode)
	assert.False(t, p.UI.CommentEnabledReactions)
	require.NotNil(t, p.Pages)
	assert.Equal(t, "Study debriefing", p.Pages.Debrief)
	assert.Len(t, p.Sources, 2)
}

func TestParsePreset_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "basic:\n  name: x\nbogus: 1\n",
		"missing study name": "open: true\n",
		"bad percentage":     "basic:\n  name: x\nsources:\n  - name: s\n    true_post_percentage: 140\n",
		"negative count":     "basic:\n  name: x\nparticipants:\n  count: -1\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePreset(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := LoadPreset("nope")
	assert.Error(t, err)
}

func TestLoadPresetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.yml")
	require.NoError(t, os.WriteFile(path, []byte("name: small\nbasic:\n  name: Small\n"), 0o600))

	p, err := LoadPresetFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Small", p.Basic.Name)
	assert.Nil(t, p.Pages)
}

func TestFactory_IsDeterministic(t *testing.T) {
	a, b := NewFactory(42), NewFactory(42)
	sa, sb := a.Source(), b.Source()
	assert.Equal(t, sa.Name, sb.Name)
	assert.Equal(t, sa.TruePostPercentage, sb.TruePostPercentage)
	assert.NoError(t, sa.Validate())
	assert.Contains(t, sourceStyles, sa.Style)

	pa := a.Participant(3, 1, 100, 50)
	assert.Equal(t, uint(3), pa.StudyID)
	assert.NotEmpty(t, pa.Username)
	assert.Equal(t, 100, pa.InitialFollowers)
}

func TestSeeder_SeedStudy(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	p, err := DefaultPreset()
	require.NoError(t, err)

	res, err := NewSeeder(db, NewFactory(1), observability.NopLogger()).SeedStudy(ctx, p)
	require.NoError(t, err)

	assert.Equal(t, uint(1), res.Admin.ID)
	require.NotNil(t, res.Study.OpenedBy)
	assert.Equal(t, uint(1), res.Study.OpenedBy.ID)
	assert.NotNil(t, res.Study.OpenedAt)
	assert.Nil(t, res.Study.ClosedAt)
	require.NotNil(t, res.Study.PagesSettings)
	assert.Equal(t, "Welcome to the study!", res.Study.PagesSettings.PreIntro)

	assert.Len(t, res.Sources, 3)
	require.Len(t, res.Participants, 5)
	for i, participant := range res.Participants {
		assert.Equal(t, res.Study.ID, participant.StudyID)
		assert.Equal(t, i+1, participant.MsID)
		assert.Equal(t, models.Counters{Followers: 100, Credibility: 50}, participant.Counters())
		assert.NotEmpty(t, participant.SessionID)
	}

	var studies int64
	require.NoError(t, db.Model(&models.Study{}).Count(&studies).Error)
	assert.Equal(t, int64(1), studies)
}

func TestSeeder_NeedsFactoryForFakes(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	p, err := DefaultPreset()
	require.NoError(t, err)

	_, err = NewSeeder(db, nil, observability.NopLogger()).SeedStudy(context.Background(), p)
	assert.Error(t, err)

	var admins int64
	require.NoError(t, db.Model(&models.AdminUser{}).Count(&admins).Error)
	assert.Zero(t, admins)
}

func TestSeeder_FailureLeavesNothingBehind(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	p, err := DefaultPreset()
	require.NoError(t, err)
	// Participants are the last step; a missing table fails it after the
	// admin, settings, study and sources were written.
	require.NoError(t, db.Exec("DROP TABLE participants").Error)

	_, err = NewSeeder(db, NewFactory(1), observability.NopLogger()).SeedStudy(context.Background(), p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create participant 1")

	for _, model := range []any{&models.AdminUser{}, &models.StudyBasicSettings{}, &models.Study{}, &models.Source{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T rows survived the failed seed", model)
	}
}

func TestAvatarURL_EscapesSeed(t *testing.T) {
	got := avatarURL("Smith & Sons, Ltd")
	assert.Equal(t, "https://api.dicebear.com/7.x/identicon/svg?seed=Smith-%26-Sons%2C-Ltd", got)
	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "Smith-&-Sons,-Ltd", u.Query().Get("seed"))
}
