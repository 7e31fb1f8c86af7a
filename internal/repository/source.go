package repository

import (
	"context"

	"truthfeed/internal/cache"
	"truthfeed/internal/models"

	"gorm.io/gorm"
)

// SourceRepository stores the author personas posts and comments are attributed to.
type SourceRepository interface {
	Create(ctx context.Context, source *models.Source) error
	GetByID(ctx context.Context, id uint) (*models.Source, error)
	List(ctx context.Context) ([]*models.Source, error)
}

type sourceRepository struct {
	t     table
	cache *cache.Store
}

// NewSourceRepository creates a new source repository. Sources never change
// after creation, so GetByID reads through the cache when one is configured.
func NewSourceRepository(db *gorm.DB, opts ...Option) SourceRepository {
	o := applyOptions(opts)
	return &sourceRepository{t: newTable(db, "sources", "Source", opts), cache: o.cache}
}

func (r *sourceRepository) Create(ctx context.Context, source *models.Source) error {
	if err := source.Validate(); err != nil {
		return err
	}
	return r.t.create(ctx, source, fieldsOf("name", source.Name, "true_post_percentage", source.TruePostPercentage))
}

func (r *sourceRepository) GetByID(ctx context.Context, id uint) (*models.Source, error) {
	if err := requireID(r.t.resource, id); err != nil {
		return nil, err
	}

	var source models.Source
	_, err := r.cache.Aside(ctx, cache.SourceKey(id), &source, cache.SourceTTL, func() error {
		found, err := lookup[models.Source, noJoin](ctx, r.t, id, nil)
		if err != nil {
			return err
		}
		source = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &source, nil
}

func (r *sourceRepository) List(ctx context.Context) ([]*models.Source, error) {
	return list[models.Source, noJoin](ctx, r.t, "list", nil, func(q *gorm.DB) *gorm.DB {
		return q.Order("id ASC")
	})
}
