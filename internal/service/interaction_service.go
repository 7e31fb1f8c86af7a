package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"truthfeed/internal/models"
	"truthfeed/internal/observability"
	"truthfeed/internal/repository"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// ErrChainBroken reports an interaction log whose counters do not follow
// from one row to the next.
var ErrChainBroken = errors.New("interaction chain broken")

// InteractionService records reactions and keeps the participant's cached
// counters equal to the last row of its interaction log.
type InteractionService struct {
	db                  *gorm.DB
	participants        repository.ParticipantRepository
	posts               repository.PostRepository
	comments            repository.CommentRepository
	postInteractions    repository.PostInteractionRepository
	commentInteractions repository.CommentInteractionRepository
	log                 *slog.Logger
}

// ReactToPostInput is one reaction to a post. Nil timings are stored as
// models.NoInteractionTime.
type ReactToPostInput struct {
	ParticipantID         uint
	PostID                uint
	CommentID             *uint
	Reaction              models.Reaction
	FirstTimeToInteractMs *int64
	LastInteractionTimeMs *int64
}

// ReactToCommentInput is one reaction to a comment.
type ReactToCommentInput struct {
	ParticipantID         uint
	CommentID             uint
	Reaction              models.Reaction
	FirstTimeToInteractMs *int64
	LastInteractionTimeMs *int64
}

// Replay is a participant's counters derived from its interaction log.
type Replay struct {
	ParticipantID uint
	Interactions  int
	Derived       models.Counters
	Cached        models.Counters
}

// InSync reports whether the cached columns match the log.
func (r *Replay) InSync() bool {
	return r.Derived == r.Cached
}

// NewInteractionService returns a new InteractionService.
func NewInteractionService(
	db *gorm.DB,
	participants repository.ParticipantRepository,
	posts repository.PostRepository,
	comments repository.CommentRepository,
	postInteractions repository.PostInteractionRepository,
	commentInteractions repository.CommentInteractionRepository,
	log *slog.Logger,
) *InteractionService {
	return &InteractionService{
		db:                  db,
		participants:        participants,
		posts:               posts,
		comments:            comments,
		postInteractions:    postInteractions,
		commentInteractions: commentInteractions,
		log:                 log,
	}
}

// ReactToPost appends an interaction row and moves the participant's counters
// by the post's delta for the reaction, in one transaction.
func (s *InteractionService) ReactToPost(ctx context.Context, in ReactToPostInput) (*models.PostInteraction, error) {
	if !in.Reaction.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("unknown reaction type %q", in.Reaction))
	}

	ctx = observability.WithParticipantID(ctx, in.ParticipantID)
	span, ctx := observability.NewSpan(ctx, "interaction.ReactToPost")
	defer span.End()
	span.AddAttributes(
		attribute.Int("participant.id", int(in.ParticipantID)),
		attribute.Int("post.id", int(in.PostID)),
		attribute.String("reaction", in.Reaction.String()),
	)

	var row *models.PostInteraction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		participants := s.participants.WithTx(tx)
		interactions := s.postInteractions.WithTx(tx)

		p, err := participants.GetForUpdate(ctx, in.ParticipantID)
		if err != nil {
			return err
		}
		post, err := s.posts.WithTx(tx).GetByID(ctx, in.PostID)
		if err != nil {
			return err
		}
		if post.StudyID != p.StudyID {
			return models.NewValidationError("post belongs to another study")
		}
		if in.CommentID != nil {
			comment, err := s.comments.WithTx(tx).GetByIDWith(ctx, *in.CommentID)
			if err != nil {
				return err
			}
			if comment.PostID != post.ID {
				return models.NewValidationError("comment does not belong to the post")
			}
		}

		delta, err := post.Delta(in.Reaction)
		if err != nil {
			return err
		}
		count, err := interactions.CountByParticipant(ctx, p.ID)
		if err != nil {
			return err
		}

		before := p.Counters()
		after := before.Apply(delta)
		row = &models.PostInteraction{
			Order:                 int(count) + 1,
			ParticipantID:         p.ID,
			PostID:                post.ID,
			CommentID:             in.CommentID,
			ReactionType:          in.Reaction,
			Flagged:               in.Reaction == models.ReactionFlag,
			Shared:                in.Reaction == models.ReactionShare,
			FirstTimeToInteractMs: msOrDefault(in.FirstTimeToInteractMs),
			LastInteractionTimeMs: msOrDefault(in.LastInteractionTimeMs),
			UserFollowerBefore:    before.Followers,
			UserFollowerAfter:     after.Followers,
			UserCredibilityBefore: before.Credibility,
			UserCredibilityAfter:  after.Credibility,
		}
		if err := interactions.Create(ctx, row); err != nil {
			return err
		}
		return participants.UpdateCounters(ctx, p.ID, after)
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	observability.InteractionsRecorded.WithLabelValues("post", in.Reaction.String()).Inc()
	s.log.InfoContext(ctx, "Post interaction recorded",
		slog.Uint64("post_id", uint64(row.PostID)),
		slog.Int("order", row.Order),
		slog.String("reaction", row.ReactionType.String()),
		slog.Int("followers_after", row.UserFollowerAfter),
		slog.Int("credibility_after", row.UserCredibilityAfter),
	)
	return row, nil
}

// ReactToComment appends a comment interaction. Comment reactions do not
// move the participant's counters.
func (s *InteractionService) ReactToComment(ctx context.Context, in ReactToCommentInput) (*models.CommentInteraction, error) {
	if !in.Reaction.Valid() {
		return nil, models.NewValidationError(fmt.Sprintf("unknown reaction type %q", in.Reaction))
	}
	ctx = observability.WithParticipantID(ctx, in.ParticipantID)

	p, err := s.participants.GetByID(ctx, in.ParticipantID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByIDWith(ctx, in.CommentID, repository.CommentJoinPost)
	if err != nil {
		return nil, err
	}
	if comment.Post != nil && comment.Post.StudyID != p.StudyID {
		return nil, models.NewValidationError("comment belongs to another study")
	}

	row := &models.CommentInteraction{
		CommentID:             comment.ID,
		ParticipantID:         p.ID,
		ReactionType:          in.Reaction,
		FirstTimeToInteractMs: msOrDefault(in.FirstTimeToInteractMs),
		LastInteractionTimeMs: msOrDefault(in.LastInteractionTimeMs),
	}
	if err := s.commentInteractions.Create(ctx, row); err != nil {
		return nil, err
	}

	observability.InteractionsRecorded.WithLabelValues("comment", in.Reaction.String()).Inc()
	return row, nil
}

// ReplayParticipant derives the participant's counters from its log,
// starting at the counters it joined with. The first row must start there,
// every later row where the previous one ended, and each row must end at its
// start plus the post's delta; otherwise the error wraps ErrChainBroken. A
// participant with no rows derives its join-time counters.
func (s *InteractionService) ReplayParticipant(ctx context.Context, participantID uint) (*Replay, error) {
	p, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	return replay(ctx, p, s.posts, s.postInteractions)
}

// RecomputeParticipant rewrites the cached counters from the log.
func (s *InteractionService) RecomputeParticipant(ctx context.Context, participantID uint) (*models.Participant, error) {
	ctx = observability.WithParticipantID(ctx, participantID)

	var result *models.Participant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		participants := s.participants.WithTx(tx)
		p, err := participants.GetForUpdate(ctx, participantID)
		if err != nil {
			return err
		}
		r, err := replay(ctx, p, s.posts.WithTx(tx), s.postInteractions.WithTx(tx))
		if err != nil {
			return err
		}
		if !r.InSync() {
			s.log.WarnContext(ctx, "Participant counters drifted from log",
				slog.Int("cached_followers", r.Cached.Followers),
				slog.Int("derived_followers", r.Derived.Followers),
				slog.Int("cached_credibility", r.Cached.Credibility),
				slog.Int("derived_credibility", r.Derived.Credibility),
			)
			if err := participants.UpdateCounters(ctx, p.ID, r.Derived); err != nil {
				return err
			}
		}
		result, err = participants.GetByID(ctx, p.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func replay(
	ctx context.Context,
	p *models.Participant,
	posts repository.PostRepository,
	interactions repository.PostInteractionRepository,
) (*Replay, error) {
	rows, err := interactions.ListByParticipant(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	r := &Replay{ParticipantID: p.ID, Interactions: len(rows), Cached: p.Counters(), Derived: p.Initial()}
	postsByID := make(map[uint]*models.Post)
	for _, row := range rows {
		if row.Before() != r.Derived {
			return nil, fmt.Errorf("%w: order %d starts at %+v, expected %+v",
				ErrChainBroken, row.Order, row.Before(), r.Derived)
		}

		post, ok := postsByID[row.PostID]
		if !ok {
			post, err = posts.GetByID(ctx, row.PostID)
			if err != nil {
				return nil, err
			}
			postsByID[row.PostID] = post
		}
		delta, err := post.Delta(row.ReactionType)
		if err != nil {
			return nil, err
		}
		if want := row.Before().Apply(delta); row.After() != want {
			return nil, fmt.Errorf("%w: order %d ends at %+v, expected %+v",
				ErrChainBroken, row.Order, row.After(), want)
		}
		r.Derived = row.After()
	}
	return r, nil
}

func msOrDefault(v *int64) int64 {
	if v == nil {
		return models.NoInteractionTime
	}
	return *v
}
