package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync"

	"truthfeed/internal/generator"
	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/repository"
)

// Drafter produces post text.
type Drafter interface {
	Generate(ctx context.Context, opts generator.Options) (generator.Draft, error)
}

// ReactionProfile is what a generated post shows and what each reaction does.
type ReactionProfile struct {
	Likes    int
	Dislikes int
	Shared   int
	Flagged  int
	Deltas   map[models.Reaction]models.Delta
}

// DefaultReactionProfile is applied to generated posts unless overridden.
func DefaultReactionProfile() ReactionProfile {
	return ReactionProfile{
		Likes:    10,
		Dislikes: 12,
		Deltas: map[models.Reaction]models.Delta{
			models.ReactionLike:    {Followers: 10, Credibility: 11},
			models.ReactionDislike: {Followers: 10, Credibility: 12},
			models.ReactionShare:   {Followers: 5, Credibility: 25},
			models.ReactionFlag:    {Followers: 15, Credibility: 18},
		},
	}
}

func (p ReactionProfile) apply(post *models.Post) error {
	post.NumberOfLikes = p.Likes
	post.NumberOfDislike = p.Dislikes
	post.NumberOfShared = p.Shared
	post.NumberOfFlagged = p.Flagged
	for reaction, d := range p.Deltas {
		if err := post.SetDelta(reaction, d); err != nil {
			return err
		}
	}
	return nil
}

// PostService turns generated drafts into posts and attaches comments.
type PostService struct {
	studies  repository.StudyRepository
	posts    repository.PostRepository
	sources  repository.SourceRepository
	comments repository.CommentRepository
	drafter  Drafter
	profile  ReactionProfile
	log      *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// GeneratePostInput targets one post. Options are passed to the drafter as-is.
type GeneratePostInput struct {
	StudyID  uint
	SourceID uint
	Options  generator.Options
}

// BuildPostsInput generates Amount posts for a source, drawing truthfulness
// from the source's true_post_percentage.
type BuildPostsInput struct {
	StudyID   uint
	SourceID  uint
	Amount    int
	Model     string
	NoHashtag bool
	Theme     string
	MinChar   int
	MaxChar   int
}

// AddCommentInput is a source-authored reply.
type AddCommentInput struct {
	PostID   uint
	SourceID uint
	Content  string
}

// NewPostService returns a new PostService. A nil rng is seeded from the
// default source.
func NewPostService(
	studies repository.StudyRepository,
	posts repository.PostRepository,
	sources repository.SourceRepository,
	comments repository.CommentRepository,
	drafter Drafter,
	profile ReactionProfile,
	rng *rand.Rand,
	log *slog.Logger,
) *PostService {
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &PostService{
		studies:  studies,
		posts:    posts,
		sources:  sources,
		comments: comments,
		drafter:  drafter,
		profile:  profile,
		rng:      rng,
		log:      log,
	}
}

// GeneratePost drafts and stores one post.
func (s *PostService) GeneratePost(ctx context.Context, in GeneratePostInput) (*models.Post, error) {
	if err := s.requireTargets(ctx, in.StudyID, in.SourceID); err != nil {
		return nil, err
	}
	post, err := s.draftPost(ctx, in.StudyID, in.SourceID, in.Options)
	if err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// BuildPosts drafts up to Amount posts without exceeding the source's
// max_posts, then stores them all or none.
func (s *PostService) BuildPosts(ctx context.Context, in BuildPostsInput) ([]*models.Post, error) {
	if in.Amount <= 0 {
		return nil, models.NewValidationError("amount must be positive")
	}
	ctx = observability.WithStudyID(ctx, in.StudyID)

	// Drafts cost a model call each, so the targets are checked first.
	if _, err := s.studies.GetByIDWith(ctx, in.StudyID); err != nil {
		return nil, err
	}
	source, err := s.sources.GetByID(ctx, in.SourceID)
	if err != nil {
		return nil, err
	}

	amount := in.Amount
	if source.MaxPosts > 0 {
		existing, err := s.posts.CountBySource(ctx, source.ID)
		if err != nil {
			return nil, err
		}
		remaining := source.MaxPosts - int(existing)
		if remaining <= 0 {
			return nil, models.NewValidationError(fmt.Sprintf("source %d already has %d of %d posts", source.ID, existing, source.MaxPosts))
		}
		amount = min(amount, remaining)
	}

	posts := make([]*models.Post, 0, amount)
	for i := 0; i < amount; i++ {
		opts := s.newOptions(source.TruePostPercentage)
		if in.Model != "" {
			opts.Model = in.Model
		}
		if in.Theme != "" {
			opts.Theme = in.Theme
		}
		if in.MinChar > 0 {
			opts.MinChar = in.MinChar
		}
		if in.MaxChar > 0 {
			opts.MaxChar = in.MaxChar
		}
		opts.NoHashtag = in.NoHashtag

		post, err := s.draftPost(ctx, in.StudyID, source.ID, opts)
		if err != nil {
			return nil, fmt.Errorf("post %d of %d: %w", i+1, amount, err)
		}
		posts = append(posts, post)
	}

	if err := s.posts.CreateBatch(ctx, posts); err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "Posts built",
		slog.Uint64("source_id", uint64(source.ID)),
		slog.Int("requested", in.Amount),
		slog.Int("created", len(posts)),
	)
	return posts, nil
}

// AddComment attaches a source-authored comment to a post.
func (s *PostService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("comment content is required")
	}
	post, err := s.posts.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if _, err := s.sources.GetByID(ctx, in.SourceID); err != nil {
		return nil, err
	}

	comment := &models.Comment{PostID: post.ID, SourceID: in.SourceID, Content: in.Content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *PostService) requireTargets(ctx context.Context, studyID, sourceID uint) error {
	if _, err := s.studies.GetByIDWith(ctx, studyID); err != nil {
		return err
	}
	_, err := s.sources.GetByID(ctx, sourceID)
	return err
}

func (s *PostService) newOptions(truePercentage int) generator.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return generator.NewOptions(s.rng, truePercentage)
}

func (s *PostService) draftPost(ctx context.Context, studyID, sourceID uint, opts generator.Options) (*models.Post, error) {
	draft, err := s.drafter.Generate(ctx, opts)
	if err != nil {
		return nil, err
	}
	post := &models.Post{
		StudyID:    studyID,
		SourceID:   sourceID,
		Headline:   draft.Headline,
		Content:    draft.Content,
		IsTrueFact: draft.IsTrueFact,
	}
	if err := s.profile.apply(post); err != nil {
		return nil, err
	}
	return post, nil
}
