package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix   = "profile:%d"
	StoryKeyPrefix     = "story:%d"
	StoriesListKey     = "stories:list"
	SessionTokenPrefix = "session:%s"
	RevokedTokenPrefix = "revoked:%s"
)

const (
	ProfileTTL = 5 * time.Minute
	StoryTTL   = 30 * time.Minute
	ListTTL    = time.Minute
)

func ProfileKey(profileID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, profileID)
}

func StoryKey(storyID uint) string {
	return fmt.Sprintf(StoryKeyPrefix, storyID)
}

func SessionTokenKey(clientID string) string {
	return fmt.Sprintf(SessionTokenPrefix, clientID)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenPrefix, jti)
}

// RevokeToken denylists a token ID until its natural expiry.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return client.Set(ctx, RevokedTokenKey(jti), "1", ttl).Err()
}

// IsTokenRevoked reports whether a token ID is denylisted. Lookups fail
// open so an unreachable Redis does not lock every session out.
func IsTokenRevoked(ctx context.Context, jti string) bool {
	if client == nil || jti == "" {
		return false
	}
	n, err := client.Exists(ctx, RevokedTokenKey(jti)).Result()
	if err != nil {
		return false
	}
	return n > 0
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProfile(ctx context.Context, profileID uint) {
	Invalidate(ctx, ProfileKey(profileID))
}

func InvalidateStory(ctx context.Context, storyID uint) {
	Invalidate(ctx, StoryKey(storyID))
}

func InvalidateStoriesList(ctx context.Context) {
	Invalidate(ctx, StoriesListKey)
}
