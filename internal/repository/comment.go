package repository

import (
	"context"
	"strings"

	"truthfeed/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	GetByIDWith(ctx context.Context, id uint, joins ...CommentJoin) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	WithTx(tx *gorm.DB) CommentRepository
}

type commentRepository struct {
	t table
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB, opts ...Option) CommentRepository {
	return &commentRepository{t: newTable(db, "comments", "Comment", opts)}
}

func (r *commentRepository) WithTx(tx *gorm.DB) CommentRepository {
	return &commentRepository{t: r.t.withTx(tx)}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if comment.PostID == 0 || comment.SourceID == 0 {
		return models.NewValidationError("comment must be linked to a post and a source")
	}
	if strings.TrimSpace(comment.Content) == "" {
		return models.NewValidationError("comment content is required")
	}
	return r.t.create(ctx, comment, fieldsOf("fk_post_id", comment.PostID, "fk_source_id", comment.SourceID))
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return r.GetByIDWith(ctx, id, CommentJoinSource)
}

func (r *commentRepository) GetByIDWith(ctx context.Context, id uint, joins ...CommentJoin) (*models.Comment, error) {
	return lookup[models.Comment](ctx, r.t, id, joins)
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if err := requireID("Post", postID); err != nil {
		return nil, err
	}
	return list[models.Comment](ctx, r.t, "list_by_post", []CommentJoin{CommentJoinSource}, func(q *gorm.DB) *gorm.DB {
		return q.Where("fk_post_id = ?", postID).Order("id ASC")
	})
}
