package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	PostKeyPrefix       = "post:%d"
	StudyPostsKeyPrefix = "study:%d:posts"
	SourceKeyPrefix     = "source:%d"
)

// Post rows and sources never change after creation, so their TTLs only
// bound memory use. Cached posts never embed their study, which does change.
const (
	PostTTL       = 30 * time.Minute
	StudyPostsTTL = 10 * time.Minute
	SourceTTL     = 30 * time.Minute
)

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func StudyPostsKey(studyID uint) string {
	return fmt.Sprintf(StudyPostsKeyPrefix, studyID)
}

func SourceKey(sourceID uint) string {
	return fmt.Sprintf(SourceKeyPrefix, sourceID)
}

// Invalidate drops key. Failures are logged; a stale entry expires with its TTL.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if !s.Enabled() || len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.log.WarnContext(ctx, "cache invalidate failed", "keys", keys, "error", err)
	}
}

// InvalidateStudyPosts drops the cached post list of a study.
func (s *Store) InvalidateStudyPosts(ctx context.Context, studyID uint) {
	s.Invalidate(ctx, StudyPostsKey(studyID))
}
