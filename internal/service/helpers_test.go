package service

import (
	"errors"
	"testing"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/repository"
	"truthfeed/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// assertCode asserts that err is an AppError with the given code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}

// env is a sqlite database with every repository wired to it.
type env struct {
	db                  *gorm.DB
	settings            repository.SettingsRepository
	admins              repository.AdminUserRepository
	studies             repository.StudyRepository
	sources             repository.SourceRepository
	participants        repository.ParticipantRepository
	posts               repository.PostRepository
	comments            repository.CommentRepository
	postInteractions    repository.PostInteractionRepository
	commentInteractions repository.CommentInteractionRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	return &env{
		db:                  db,
		settings:            repository.NewSettingsRepository(db),
		admins:              repository.NewAdminUserRepository(db),
		studies:             repository.NewStudyRepository(db),
		sources:             repository.NewSourceRepository(db),
		participants:        repository.NewParticipantRepository(db),
		posts:               repository.NewPostRepository(db),
		comments:            repository.NewCommentRepository(db),
		postInteractions:    repository.NewPostInteractionRepository(db),
		commentInteractions: repository.NewCommentInteractionRepository(db),
	}
}

func (e *env) interactionService() *InteractionService {
	return NewInteractionService(e.db, e.participants, e.posts, e.comments,
		e.postInteractions, e.commentInteractions, observability.NopLogger())
}

func (e *env) studyService() *StudyService {
	return NewStudyService(e.db, e.studies, e.settings, observability.NopLogger())
}

func (e *env) participantService() *ParticipantService {
	return NewParticipantService(e.participants, e.studies, observability.NopLogger())
}
