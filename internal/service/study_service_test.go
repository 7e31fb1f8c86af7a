package service

import (
	"context"
	"testing"
	"time"

	"truthfeed/internal/cache"
	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/repository"
	"truthfeed/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// studyRepoStub is a stub for repository.StudyRepository.
type studyRepoStub struct {
	repository.StudyRepository
	getFn      func(context.Context, uint) (*models.Study, error)
	setClosed  func(context.Context, uint, uint, time.Time) error
	setOpened  func(context.Context, uint, uint, time.Time) error
	downloadFn func(context.Context, uint, uint, time.Time) error
}

func (s *studyRepoStub) GetByID(ctx context.Context, id uint) (*models.Study, error) {
	return s.getFn(ctx, id)
}
func (s *studyRepoStub) GetByIDWith(ctx context.Context, id uint, _ ...repository.StudyJoin) (*models.Study, error) {
	return s.getFn(ctx, id)
}
func (s *studyRepoStub) SetOpened(ctx context.Context, id, adminID uint, at time.Time) error {
	return s.setOpened(ctx, id, adminID, at)
}
func (s *studyRepoStub) SetClosed(ctx context.Context, id, adminID uint, at time.Time) error {
	return s.setClosed(ctx, id, adminID, at)
}
func (s *studyRepoStub) RecordResultDownload(ctx context.Context, id, adminID uint, at time.Time) error {
	return s.downloadFn(ctx, id, adminID, at)
}

func TestStudyService_ExampleScenario(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.studyService()

	admin := &models.AdminUser{AccessRight: 1}
	require.NoError(t, e.admins.Create(ctx, admin))
	require.Equal(t, uint(1), admin.ID)

	bundle, err := svc.CreateSettings(ctx, SettingsBundle{
		UI:       &models.StudyUISettings{DisplayPostsInFeed: true},
		Basic:    &models.StudyBasicSettings{Name: "Example"},
		Advanced: &models.StudyAdvancedSettings{MinimumCommentLength: 50},
		Pages:    &models.StudyPagesSettings{PreIntro: "Hello"},
	})
	require.NoError(t, err)
	for _, id := range []uint{bundle.UI.ID, bundle.Basic.ID, bundle.Advanced.ID, bundle.Pages.ID} {
		require.Equal(t, uint(1), id)
	}

	pages := uint(1)
	study, err := svc.ComposeStudy(ctx, ComposeStudyInput{
		UISettingsID:       1,
		BasicSettingsID:    1,
		AdvancedSettingsID: 1,
		PagesSettingsID:    &pages,
		OpenedByID:         1,
		ClosedByID:         1,
	})
	require.NoError(t, err)
	require.NotNil(t, study.OpenedBy)
	assert.Equal(t, uint(1), study.OpenedBy.ID)
	require.NotNil(t, study.ClosedBy)
	assert.Equal(t, uint(1), study.ClosedBy.ID)
	require.NotNil(t, study.BasicSettings)
	assert.Equal(t, "Example", study.BasicSettings.Name)

	got, err := svc.GetStudy(ctx, study.ID)
	require.NoError(t, err)
	assert.Equal(t, study.ID, got.ID)
}

func TestStudyService_ComposeRejectsDanglingReferences(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.studyService()
	testutil.CreateAdmin(t, e.db, 1)

	_, err := svc.ComposeStudy(ctx, ComposeStudyInput{
		UISettingsID: 7, BasicSettingsID: 7, AdvancedSettingsID: 7, OpenedByID: 1, ClosedByID: 1,
	})
	assertCode(t, err, models.CodeConstraintViolation)

	var n int64
	require.NoError(t, e.db.Model(&models.StudyUISettings{}).Count(&n).Error)
	assert.Zero(t, n, "settings must not be cascade-created")
}

func TestStudyService_CreateSettingsIsAtomic(t *testing.T) {
	e := newEnv(t)
	svc := e.studyService()

	_, err := svc.CreateSettings(context.Background(), SettingsBundle{UI: &models.StudyUISettings{}})
	assertValidationError(t, err)

	// A failing insert after the first one leaves nothing behind.
	require.NoError(t, e.db.Exec("DROP TABLE study_advanced_settings").Error)
	_, err = svc.CreateSettings(context.Background(), SettingsBundle{
		UI:       &models.StudyUISettings{},
		Basic:    &models.StudyBasicSettings{Name: "x"},
		Advanced: &models.StudyAdvancedSettings{},
	})
	assertCode(t, err, models.CodeBackend)

	var n int64
	require.NoError(t, e.db.Model(&models.StudyBasicSettings{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestStudyService_Lifecycle(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	svc := e.studyService()
	study := testutil.CreateStudy(t, e.db)
	closer := testutil.CreateAdmin(t, e.db, 2)

	opened := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return opened }

	_, err := svc.CloseStudy(ctx, study.ID, closer.ID)
	assertValidationError(t, err)

	got, err := svc.OpenStudy(ctx, study.ID, study.OpenedByID)
	require.NoError(t, err)
	require.NotNil(t, got.OpenedAt)
	assert.True(t, got.IsOpen())

	_, err = svc.OpenStudy(ctx, study.ID, study.OpenedByID)
	assertValidationError(t, err)

	svc.now = func() time.Time { return opened.Add(48 * time.Hour) }
	got, err = svc.CloseStudy(ctx, study.ID, closer.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ClosedAt)
	assert.False(t, got.ClosedAt.Before(*got.OpenedAt))
	require.NotNil(t, got.ClosedBy)
	assert.Equal(t, closer.ID, got.ClosedBy.ID)

	_, err = svc.OpenStudy(ctx, study.ID, study.OpenedByID)
	assertValidationError(t, err)

	require.NoError(t, svc.RecordResultDownload(ctx, study.ID, closer.ID))
	got, err = svc.GetStudy(ctx, study.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ResultLastDownloadBy)
	assert.Equal(t, closer.ID, got.ResultLastDownloadBy.ID)

	err = svc.RecordResultDownload(ctx, study.ID, 0)
	assertCode(t, err, models.CodeInvalidID)
}

func TestStudyService_CloseBeforeOpenIsRejected(t *testing.T) {
	t.Parallel()

	opened := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	closedCalled := false
	repo := &studyRepoStub{
		getFn: func(_ context.Context, id uint) (*models.Study, error) {
			return &models.Study{ID: id, OpenedAt: &opened}, nil
		},
		setClosed: func(context.Context, uint, uint, time.Time) error {
			closedCalled = true
			return nil
		},
	}
	svc := NewStudyService((*gorm.DB)(nil), repo, nil, observability.NopLogger())
	svc.now = func() time.Time { return opened.Add(-time.Minute) }

	_, err := svc.CloseStudy(context.Background(), 3, 1)
	assertValidationError(t, err)
	assert.False(t, closedCalled)
}

func TestStudyService_PropagatesNotFound(t *testing.T) {
	t.Parallel()

	repo := &studyRepoStub{
		getFn: func(_ context.Context, id uint) (*models.Study, error) {
			return nil, models.NewNotFoundError("Study", id)
		},
	}
	svc := NewStudyService(nil, repo, nil, observability.NopLogger())

	_, err := svc.OpenStudy(context.Background(), 9, 1)
	assertCode(t, err, models.CodeNotFound)
	_, err = svc.CloseStudy(context.Background(), 9, 1)
	assertCode(t, err, models.CodeNotFound)
}

func TestStudyService_CloseIsVisibleThroughCachedPosts(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	posts := repository.NewPostRepository(e.db, repository.WithCache(cache.NewStore(client, nil)))

	svc := e.studyService()
	study := testutil.CreateStudy(t, e.db)
	source := testutil.CreateSource(t, e.db, 50)
	post := testutil.CreatePost(t, e.db, study.ID, source.ID, nil)

	opened := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return opened }
	_, err := svc.OpenStudy(ctx, study.ID, study.OpenedByID)
	require.NoError(t, err)

	warm, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, warm.Study.OpenedAt)
	assert.Nil(t, warm.Study.ClosedAt)
	require.True(t, mr.Exists(cache.PostKey(post.ID)))

	svc.now = func() time.Time { return opened.Add(time.Hour) }
	closed, err := svc.CloseStudy(ctx, study.ID, study.ClosedByID)
	require.NoError(t, err)

	reread, err := posts.GetByID(ctx, post.ID)
	require.NoError(t, err)
	require.NotNil(t, reread.Study.ClosedAt)
	assert.True(t, reread.Study.ClosedAt.Equal(*closed.ClosedAt))
}
