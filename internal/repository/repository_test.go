package repository

import (
	"context"
	"testing"
	"time"

	"truthfeed/internal/cache"
	"truthfeed/internal/models"
	"truthfeed/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestStudyRepository_ExampleScenario(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	admins := NewAdminUserRepository(db)
	settings := NewSettingsRepository(db)
	studies := NewStudyRepository(db)

	admin := &models.AdminUser{AccessRight: 1}
	require.NoError(t, admins.Create(ctx, admin))
	assert.Equal(t, uint(1), admin.ID)

	ui := &models.StudyUISettings{DisplayPostsInFeed: true}
	basic := &models.StudyBasicSettings{Name: "Example Study", Length: 10}
	advanced := &models.StudyAdvancedSettings{MinimumCommentLength: 50}
	pages := &models.StudyPagesSettings{PreIntro: "Welcome to the study!"}
	require.NoError(t, settings.CreateUI(ctx, ui))
	require.NoError(t, settings.CreateBasic(ctx, basic))
	require.NoError(t, settings.CreateAdvanced(ctx, advanced))
	require.NoError(t, settings.CreatePages(ctx, pages))
	for _, id := range []uint{ui.ID, basic.ID, advanced.ID, pages.ID} {
		assert.Equal(t, uint(1), id)
	}

	pagesID := uint(1)
	study := &models.Study{
		UISettingsID:       1,
		BasicSettingsID:    1,
		AdvancedSettingsID: 1,
		PagesSettingsID:    &pagesID,
		OpenedByID:         1,
		ClosedByID:         1,
	}
	require.NoError(t, studies.Create(ctx, study))

	got, err := studies.GetByID(ctx, study.ID)
	require.NoError(t, err)
	assert.Equal(t, study.ID, got.ID)
	require.NotNil(t, got.OpenedBy)
	assert.Equal(t, uint(1), got.OpenedBy.ID)
	require.NotNil(t, got.ClosedBy)
	assert.Equal(t, 1, got.ClosedBy.AccessRight)
	require.NotNil(t, got.BasicSettings)
	assert.Equal(t, "Example Study", got.BasicSettings.Name)
	require.NotNil(t, got.PagesSettings)
	assert.Equal(t, "Welcome to the study!", got.PagesSettings.PreIntro)
	assert.NotNil(t, got.UISettings)
	assert.NotNil(t, got.AdvancedSettings)
	assert.Nil(t, got.ResultLastDownloadBy)
}

func TestStudyRepository_RoundTripKeepsReferences(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	opener := testutil.CreateAdmin(t, db, 1)
	closer := testutil.CreateAdmin(t, db, 2)
	s := testutil.CreateSettings(t, db)
	studies := NewStudyRepository(db)

	study := &models.Study{
		UISettingsID:       s.UI.ID,
		BasicSettingsID:    s.Basic.ID,
		AdvancedSettingsID: s.Advanced.ID,
		OpenedByID:         opener.ID,
		ClosedByID:         closer.ID,
	}
	require.NoError(t, studies.Create(ctx, study))

	got, err := studies.GetByIDWith(ctx, study.ID)
	require.NoError(t, err)
	assert.Equal(t, s.UI.ID, got.UISettingsID)
	assert.Equal(t, s.Basic.ID, got.BasicSettingsID)
	assert.Equal(t, s.Advanced.ID, got.AdvancedSettingsID)
	assert.Nil(t, got.PagesSettingsID)
	assert.Equal(t, opener.ID, got.OpenedByID)
	assert.Equal(t, closer.ID, got.ClosedByID)
	assert.Nil(t, got.OpenedBy, "no joins requested")

	got, err = studies.GetByIDWith(ctx, study.ID, StudyJoinClosedBy)
	require.NoError(t, err)
	require.NotNil(t, got.ClosedBy)
	assert.Equal(t, 2, got.ClosedBy.AccessRight)
	assert.Nil(t, got.OpenedBy)
}

func TestStudyRepository_DanglingReferenceIsConstraintViolation(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	admin := testutil.CreateAdmin(t, db, 1)
	studies := NewStudyRepository(db)

	err := studies.Create(ctx, &models.Study{
		UISettingsID:       42,
		BasicSettingsID:    42,
		AdvancedSettingsID: 42,
		OpenedByID:         admin.ID,
		ClosedByID:         admin.ID,
	})
	require.Error(t, err)
	assert.True(t, models.IsConstraintViolation(err), "got %v", err)
}

func TestStudyRepository_Lifecycle(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	study := testutil.CreateStudy(t, db)
	downloader := testutil.CreateAdmin(t, db, 3)
	studies := NewStudyRepository(db)

	require.NoError(t, studies.SetOpened(ctx, study.ID, study.OpenedByID, fixedTime))
	require.NoError(t, studies.SetClosed(ctx, study.ID, study.ClosedByID, fixedTime.Add(time.Hour)))
	require.NoError(t, studies.RecordResultDownload(ctx, study.ID, downloader.ID, fixedTime.Add(2*time.Hour)))

	got, err := studies.GetByID(ctx, study.ID)
	require.NoError(t, err)
	require.NotNil(t, got.OpenedAt)
	require.NotNil(t, got.ClosedAt)
	assert.True(t, got.ClosedAt.After(*got.OpenedAt))
	require.NotNil(t, got.ResultLastDownloadBy)
	assert.Equal(t, downloader.ID, got.ResultLastDownloadBy.ID)

	err = studies.SetOpened(ctx, study.ID+100, study.OpenedByID, fixedTime)
	assert.True(t, models.IsNotFound(err))
}

func TestLookup_MissingRowsAreNotFound(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()

	_, err := NewStudyRepository(db).GetByID(ctx, 404)
	assert.True(t, models.IsNotFound(err))
	_, err = NewPostRepository(db).GetByID(ctx, 404)
	assert.True(t, models.IsNotFound(err))
	_, err = NewParticipantRepository(db).GetBySessionID(ctx, "nope")
	assert.True(t, models.IsNotFound(err))
	_, err = NewPostInteractionRepository(db).GetByID(ctx, 404)
	assert.True(t, models.IsNotFound(err))
	_, err = NewSettingsRepository(db).GetPagesByID(ctx, 404)
	assert.True(t, models.IsNotFound(err))
}

func TestSourceRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	sources := NewSourceRepository(db)

	assert.True(t, models.IsValidation(sources.Create(ctx, &models.Source{Name: "Bad", TruePostPercentage: 101})))

	a := &models.Source{Name: "Herald", TruePostPercentage: 50, MaxPosts: 3}
	b := &models.Source{Name: "Gazette", TruePostPercentage: 0}
	require.NoError(t, sources.Create(ctx, a))
	require.NoError(t, sources.Create(ctx, b))

	got, err := sources.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, 50, got.TruePostPercentage)

	all, err := sources.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Herald", all[0].Name)
}

func TestParticipantRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	study := testutil.CreateStudy(t, db)
	participants := NewParticipantRepository(db)

	assert.True(t, models.IsValidation(participants.Create(ctx, &models.Participant{Username: "orphan"})))

	p := &models.Participant{StudyID: study.ID, SessionID: "sess-1", Username: "alice", NbFollower: 100, CredibilityScore: 50}
	require.NoError(t, participants.Create(ctx, p))

	bySession, err := participants.GetBySessionID(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, bySession.ID)

	withStudy, err := participants.GetByIDWith(ctx, p.ID, ParticipantJoinStudy)
	require.NoError(t, err)
	require.NotNil(t, withStudy.Study)
	assert.Equal(t, study.ID, withStudy.Study.ID)

	require.NoError(t, participants.UpdateCounters(ctx, p.ID, models.Counters{Followers: 110, Credibility: 61}))
	require.NoError(t, participants.SetGameStart(ctx, p.ID, fixedTime))
	require.NoError(t, participants.SetGameFinish(ctx, p.ID, fixedTime.Add(time.Minute)))

	locked, err := participants.GetForUpdate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, models.Counters{Followers: 110, Credibility: 61}, locked.Counters())
	require.NotNil(t, locked.GameFinishTime)

	list, err := participants.ListByStudy(ctx, study.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = participants.GetBySessionID(ctx, "")
	assert.True(t, models.IsValidation(err))
}

func TestPostRepository_GetByIDJoinsStudyAndSource(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	study := testutil.CreateStudy(t, db)
	source := testutil.CreateSource(t, db, 50)
	post := testutil.CreatePost(t, db, study.ID, source.ID, nil)
	posts := NewPostRepository(db)

	got, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, got.ID)
	require.NotNil(t, got.Study)
	assert.Equal(t, study.ID, got.Study.ID)
	require.NotNil(t, got.Source)
	assert.Equal(t, "Daily Planet", got.Source.Name)

	bare, err := posts.GetByIDWith(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, bare.Source)
}

func TestPostRepository_CollectionsAndBatch(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	study := testutil.CreateStudy(t, db)
	other := testutil.CreateStudy(t, db)
	source := testutil.CreateSource(t, db, 50)
	posts := NewPostRepository(db)

	empty, err := posts.GetAllByStudyID(ctx, study.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	batch := []*models.Post{
		{StudyID: study.ID, SourceID: source.ID, Headline: "One", Content: "First"},
		{StudyID: study.ID, SourceID: source.ID, Headline: "Two", Content: "Second"},
		{StudyID: other.ID, SourceID: source.ID, Headline: "Three", Content: "Third"},
	}
	require.NoError(t, posts.CreateBatch(ctx, batch))

	got, err := posts.GetAllByStudyID(ctx, study.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "One", got[0].Headline)
	require.NotNil(t, got[0].Source)
	require.NotNil(t, got[0].Study)

	n, err := posts.CountBySource(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestPostRepository_CreateBatchIsAllOrNothing(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	study := testutil.CreateStudy(t, db)
	source := testutil.CreateSource(t, db, 50)
	posts := NewPostRepository(db)

	err := posts.CreateBatch(ctx, []*models.Post{
		{StudyID: study.ID, SourceID: source.ID, Headline: "Good", Content: "Fine"},
		{StudyID: study.ID, SourceID: source.ID + 50, Headline: "Bad", Content: "Dangling source"},
	})
	require.Error(t, err)
	assert.True(t, models.IsConstraintViolation(err))

	n, err := posts.CountBySource(ctx, source.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.True(t, models.IsValidation(posts.Create(ctx, &models.Post{StudyID: study.ID, SourceID: source.ID})))
}

func TestPostRepository_CacheAside(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := cache.NewStore(client, nil)

	study := testutil.CreateStudy(t, db)
	source := testutil.CreateSource(t, db, 50)
	post := testutil.CreatePost(t, db, study.ID, source.ID, nil)
	posts := NewPostRepository(db, WithCache(store))

	first, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.PostKey(post.ID)))

	// A second read is served from Redis even when the row is gone.
	require.NoError(t, db.Exec("DELETE FROM posts WHERE id = ?", post.ID).Error)

	second, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Headline, second.Headline)
	require.NotNil(t, second.Source)

	_, err = posts.GetAllByStudyID(ctx, study.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.StudyPostsKey(study.ID)))

	require.NoError(t, posts.Create(ctx, &models.Post{StudyID: study.ID, SourceID: source.ID, Headline: "New", Content: "Body"}))
	assert.False(t, mr.Exists(cache.StudyPostsKey(study.ID)))
}

func TestPostRepository_CachedPostsCarryCurrentStudy(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	store := cache.NewStore(client, nil)

	study := testutil.CreateStudy(t, db)
	source := testutil.CreateSource(t, db, 50)
	post := testutil.CreatePost(t, db, study.ID, source.ID, nil)
	posts := NewPostRepository(db, WithCache(store))

	before, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, before.Study)
	assert.Nil(t, before.Study.ClosedAt)
	_, err = posts.GetAllByStudyID(ctx, study.ID)
	require.NoError(t, err)

	cached, err := mr.Get(cache.PostKey(post.ID))
	require.NoError(t, err)
	assert.NotContains(t, cached, "linked_study")

	require.NoError(t, NewStudyRepository(db).SetClosed(ctx, study.ID, study.ClosedByID, fixedTime))

	after, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, after.Study)
	require.NotNil(t, after.Study.ClosedAt)
	assert.True(t, after.Study.ClosedAt.Equal(fixedTime))
	require.NotNil(t, after.Source)

	all, err := posts.GetAllByStudyID(ctx, study.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.NotNil(t, all[0].Study.ClosedAt)
}

func TestSourceRepository_CacheAside(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sources := NewSourceRepository(db, WithCache(cache.NewStore(client, nil)))
	source := testutil.CreateSource(t, db, 30)

	first, err := sources.GetByID(ctx, source.ID)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.SourceKey(source.ID)))
	assert.InDelta(t, cache.SourceTTL.Seconds(), mr.TTL(cache.SourceKey(source.ID)).Seconds(), 1)

	require.NoError(t, db.Exec("DELETE FROM sources WHERE id = ?", source.ID).Error)

	second, err := sources.GetByID(ctx, source.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, 30, second.TruePostPercentage)

	_, err = sources.GetByID(ctx, 0)
	assert.True(t, models.IsInvalidID(err))
}

func TestCommentRepository(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	ctx := context.Background()
	study := testutil.CreateStudy(t, db)
	source := testutil.CreateSource(t, db, 50)
	post := testutil.CreatePost(t, db, study.ID, source.ID, nil)
	comments := NewCommentRepository(db)

	c := &models.Comment{PostID: post.ID, SourceID: source.ID, Content: "Really?"}
	require.NoError(t, comments.Create(ctx, c))
	assert.True(t, models.IsValidation(comments.Create(ctx, &models.Comment{PostID: post.ID, SourceID: source.ID})))

	got, err := comments.GetByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Source)

	withPost, err := comments.GetByIDWith(ctx, c.ID, CommentJoinPost)
	require.NoError(t, err)
	require.NotNil(t, withPost.Post)
	assert.Equal(t, post.ID, withPost.Post.ID)

	list, err := comments.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
