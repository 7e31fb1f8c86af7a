package repository

import (
	"context"
	"strings"

	"truthfeed/internal/cache"
	"truthfeed/internal/models"
	"truthfeed/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations. Posts are
// static once created, so the post row and its source are cached when a
// cache is configured. The study changes over its lifecycle and is always
// read from the database.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	CreateBatch(ctx context.Context, posts []*models.Post) error
	// GetByID loads the post with its study and source.
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetByIDWith(ctx context.Context, id uint, joins ...PostJoin) (*models.Post, error)
	GetAllByStudyID(ctx context.Context, studyID uint) ([]*models.Post, error)
	CountBySource(ctx context.Context, sourceID uint) (int64, error)
	WithTx(tx *gorm.DB) PostRepository
}

type postRepository struct {
	t       table
	studies table
	cache   *cache.Store
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, opts ...Option) PostRepository {
	o := applyOptions(opts)
	return &postRepository{
		t:       newTable(db, "posts", "Post", opts),
		studies: newTable(db, "studies", "Study", opts),
		cache:   o.cache,
	}
}

func (r *postRepository) WithTx(tx *gorm.DB) PostRepository {
	return &postRepository{t: r.t.withTx(tx), studies: r.studies.withTx(tx), cache: r.cache}
}

// cachedJoins is what goes into the cache: everything in PostDetails that
// never changes.
var cachedJoins = []PostJoin{PostJoinSource}

// attachStudy loads the current study row onto posts of one study.
func (r *postRepository) attachStudy(ctx context.Context, studyID uint, posts ...*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	study, err := lookup[models.Study, StudyJoin](ctx, r.studies, studyID, nil)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.Study = study
	}
	return nil
}

func validatePost(post *models.Post) error {
	if post.StudyID == 0 || post.SourceID == 0 {
		return models.NewValidationError("post must be linked to a study and a source")
	}
	if strings.TrimSpace(post.Headline) == "" || strings.TrimSpace(post.Content) == "" {
		return models.NewValidationError("post headline and content are required")
	}
	return nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := validatePost(post); err != nil {
		return err
	}
	err := r.t.create(ctx, post, fieldsOf(
		"fk_linked_study", post.StudyID,
		"fk_source_id", post.SourceID,
		"is_true_fact", post.IsTrueFact,
	))
	if err == nil {
		r.cache.InvalidateStudyPosts(ctx, post.StudyID)
	}
	return err
}

// CreateBatch inserts all posts or none.
func (r *postRepository) CreateBatch(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	studies := make(map[uint]struct{})
	for _, post := range posts {
		if err := validatePost(post); err != nil {
			return err
		}
		studies[post.StudyID] = struct{}{}
	}

	defer observability.TrackQuery("create_batch", r.t.name)()
	err := r.t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).CreateInBatches(posts, 100).Error
	})
	if err != nil {
		return r.t.fail(ctx, "create_batch", err)
	}
	r.t.log.LogCreate(ctx, fieldsOf("count", len(posts)))

	for studyID := range studies {
		r.cache.InvalidateStudyPosts(ctx, studyID)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	if err := requireID(r.t.resource, id); err != nil {
		return nil, err
	}

	var post models.Post
	hit, err := r.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		found, err := r.GetByIDWith(ctx, id, cachedJoins...)
		if err != nil {
			return err
		}
		post = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if r.cache.Enabled() {
		observability.PostCacheLookups.WithLabelValues(cacheResult(hit)).Inc()
	}
	if err := r.attachStudy(ctx, post.StudyID, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByIDWith(ctx context.Context, id uint, joins ...PostJoin) (*models.Post, error) {
	return lookup[models.Post](ctx, r.t, id, joins)
}

// GetAllByStudyID returns the study's posts with study and source, oldest first.
func (r *postRepository) GetAllByStudyID(ctx context.Context, studyID uint) ([]*models.Post, error) {
	if err := requireID("Study", studyID); err != nil {
		return nil, err
	}

	var posts []*models.Post
	_, err := r.cache.Aside(ctx, cache.StudyPostsKey(studyID), &posts, cache.StudyPostsTTL, func() error {
		found, err := list[models.Post](ctx, r.t, "get_all_by_study_id", cachedJoins, func(q *gorm.DB) *gorm.DB {
			return q.Where("fk_linked_study = ?", studyID).Order("id ASC")
		})
		if err != nil {
			return err
		}
		posts = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.attachStudy(ctx, studyID, posts...); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) CountBySource(ctx context.Context, sourceID uint) (int64, error) {
	if err := requireID("Source", sourceID); err != nil {
		return 0, err
	}
	defer observability.TrackQuery("count_by_source", r.t.name)()

	var n int64
	if err := r.t.db.WithContext(ctx).Model(&models.Post{}).Where("fk_source_id = ?", sourceID).Count(&n).Error; err != nil {
		return 0, r.t.fail(ctx, "count_by_source", err)
	}
	return n, nil
}

func cacheResult(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
