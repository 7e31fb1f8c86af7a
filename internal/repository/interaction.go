package repository

import (
	"context"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"

	"gorm.io/gorm"
)

// PostInteractionRepository appends to and reads the post interaction log.
// The log has no update or delete.
type PostInteractionRepository interface {
	Create(ctx context.Context, interaction *models.PostInteraction) error
	GetByID(ctx context.Context, id uint) (*models.PostInteraction, error)
	GetByIDWith(ctx context.Context, id uint, joins ...PostInteractionJoin) (*models.PostInteraction, error)
	// GetAllByPostID returns the post's interactions with their participants.
	GetAllByPostID(ctx context.Context, postID uint) ([]*models.PostInteraction, error)
	// ListByParticipant returns the participant's log in append order.
	ListByParticipant(ctx context.Context, participantID uint) ([]*models.PostInteraction, error)
	CountByParticipant(ctx context.Context, participantID uint) (int64, error)
	WithTx(tx *gorm.DB) PostInteractionRepository
}

type postInteractionRepository struct {
	t table
}

// NewPostInteractionRepository creates a new post interaction repository
func NewPostInteractionRepository(db *gorm.DB, opts ...Option) PostInteractionRepository {
	return &postInteractionRepository{t: newTable(db, "posts_interactions", "Post interaction", opts)}
}

func (r *postInteractionRepository) WithTx(tx *gorm.DB) PostInteractionRepository {
	return &postInteractionRepository{t: r.t.withTx(tx)}
}

func (r *postInteractionRepository) Create(ctx context.Context, i *models.PostInteraction) error {
	if i.ID != 0 {
		return models.NewValidationError("post interactions are append-only")
	}
	if !i.ReactionType.Valid() {
		return models.NewValidationError("unknown reaction type " + i.ReactionType.String())
	}
	return r.t.create(ctx, i, fieldsOf(
		"fk_participant_id", i.ParticipantID,
		"fk_post_id", i.PostID,
		"reaction_type", i.ReactionType,
		"order", i.Order,
	))
}

func (r *postInteractionRepository) GetByID(ctx context.Context, id uint) (*models.PostInteraction, error) {
	return lookup[models.PostInteraction, noJoin](ctx, r.t, id, nil)
}

func (r *postInteractionRepository) GetByIDWith(ctx context.Context, id uint, joins ...PostInteractionJoin) (*models.PostInteraction, error) {
	return lookup[models.PostInteraction](ctx, r.t, id, joins)
}

func (r *postInteractionRepository) GetAllByPostID(ctx context.Context, postID uint) ([]*models.PostInteraction, error) {
	if err := requireID("Post", postID); err != nil {
		return nil, err
	}
	joins := []PostInteractionJoin{PostInteractionJoinParticipant, PostInteractionJoinPost}
	return list[models.PostInteraction](ctx, r.t, "get_all_by_post_id", joins, func(q *gorm.DB) *gorm.DB {
		return q.Where("fk_post_id = ?", postID).Order("id ASC")
	})
}

func (r *postInteractionRepository) ListByParticipant(ctx context.Context, participantID uint) ([]*models.PostInteraction, error) {
	if err := requireID("Participant", participantID); err != nil {
		return nil, err
	}
	return list[models.PostInteraction, noJoin](ctx, r.t, "list_by_participant", nil, func(q *gorm.DB) *gorm.DB {
		return q.Where("fk_participant_id = ?", participantID).Order(`"order" ASC, id ASC`)
	})
}

func (r *postInteractionRepository) CountByParticipant(ctx context.Context, participantID uint) (int64, error) {
	if err := requireID("Participant", participantID); err != nil {
		return 0, err
	}
	defer observability.TrackQuery("count_by_participant", r.t.name)()

	var n int64
	err := r.t.db.WithContext(ctx).Model(&models.PostInteraction{}).
		Where("fk_participant_id = ?", participantID).
		Count(&n).Error
	if err != nil {
		return 0, r.t.fail(ctx, "count_by_participant", err)
	}
	return n, nil
}

// CommentInteractionRepository appends to and reads the comment interaction log.
type CommentInteractionRepository interface {
	Create(ctx context.Context, interaction *models.CommentInteraction) error
	GetByID(ctx context.Context, id uint) (*models.CommentInteraction, error)
	GetByIDWith(ctx context.Context, id uint, joins ...CommentInteractionJoin) (*models.CommentInteraction, error)
	ListByComment(ctx context.Context, commentID uint) ([]*models.CommentInteraction, error)
	ListByParticipant(ctx context.Context, participantID uint) ([]*models.CommentInteraction, error)
	WithTx(tx *gorm.DB) CommentInteractionRepository
}

type commentInteractionRepository struct {
	t table
}

// NewCommentInteractionRepository creates a new comment interaction repository
func NewCommentInteractionRepository(db *gorm.DB, opts ...Option) CommentInteractionRepository {
	return &commentInteractionRepository{t: newTable(db, "comments_interactions", "Comment interaction", opts)}
}

func (r *commentInteractionRepository) WithTx(tx *gorm.DB) CommentInteractionRepository {
	return &commentInteractionRepository{t: r.t.withTx(tx)}
}

func (r *commentInteractionRepository) Create(ctx context.Context, i *models.CommentInteraction) error {
	if i.ID != 0 {
		return models.NewValidationError("comment interactions are append-only")
	}
	if !i.ReactionType.Valid() {
		return models.NewValidationError("unknown reaction type " + i.ReactionType.String())
	}
	return r.t.create(ctx, i, fieldsOf(
		"fk_comment_id", i.CommentID,
		"fk_participant_id", i.ParticipantID,
		"reaction_type", i.ReactionType,
	))
}

func (r *commentInteractionRepository) GetByID(ctx context.Context, id uint) (*models.CommentInteraction, error) {
	return lookup[models.CommentInteraction, noJoin](ctx, r.t, id, nil)
}

func (r *commentInteractionRepository) GetByIDWith(ctx context.Context, id uint, joins ...CommentInteractionJoin) (*models.CommentInteraction, error) {
	return lookup[models.CommentInteraction](ctx, r.t, id, joins)
}

func (r *commentInteractionRepository) ListByComment(ctx context.Context, commentID uint) ([]*models.CommentInteraction, error) {
	if err := requireID("Comment", commentID); err != nil {
		return nil, err
	}
	joins := []CommentInteractionJoin{CommentInteractionJoinParticipant}
	return list[models.CommentInteraction](ctx, r.t, "list_by_comment", joins, func(q *gorm.DB) *gorm.DB {
		return q.Where("fk_comment_id = ?", commentID).Order("id ASC")
	})
}

func (r *commentInteractionRepository) ListByParticipant(ctx context.Context, participantID uint) ([]*models.CommentInteraction, error) {
	if err := requireID("Participant", participantID); err != nil {
		return nil, err
	}
	return list[models.CommentInteraction, noJoin](ctx, r.t, "list_by_participant", nil, func(q *gorm.DB) *gorm.DB {
		return q.Where("fk_participant_id = ?", participantID).Order("id ASC")
	})
}
