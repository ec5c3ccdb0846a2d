package nostrchat

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"nostr-chat/internal/util"
)

// KindMetadata is the event kind carrying profile metadata (NIP-01 kind 0)
const KindMetadata = 0

// ProfileTTL is the validity window for cached profile metadata.
// Expiry is soft: entries may be removed by a timer or lazily at read time,
// both converging on the default profile.
const ProfileTTL = 60 * time.Minute

// ProfileStore is the process-wide profile cache. Implementations must be
// safe for concurrent use: independent subscriptions can ingest metadata for
// the same key at once (last write wins, no field merging).
type ProfileStore interface {
	// GetOrDefault returns the cached profile for pubkey, or a default
	// profile built from the key alone when absent or expired.
	GetOrDefault(ctx context.Context, pubkey string) ProfileInfo

	// Ingest parses a kind-0 content payload and replaces the cached
	// profile for pubkey, restarting its TTL. Malformed payloads are
	// discarded silently; one bad event must not disrupt the stream.
	Ingest(ctx context.Context, pubkey string, content string)

	// Close releases timers/connections held by the store.
	Close() error
}

// NewProfileStore selects the cache backend: Redis when REDIS_URL is set and
// reachable, in-memory otherwise.
func NewProfileStore() ProfileStore {
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		store, err := NewRedisProfileStore(redisURL, "chat:", ProfileTTL)
		if err == nil {
			slog.Info("redis profile cache initialized")
			return store
		}
		slog.Warn("redis connection failed, using memory profile cache", "error", err)
	}
	return NewMemoryProfileStore(ProfileTTL)
}

// IngestMetadataEvent routes a metadata event into the profile store.
// Non-metadata kinds are ignored.
func IngestMetadataEvent(ctx context.Context, store ProfileStore, evt Event) {
	if evt.Kind != KindMetadata {
		return
	}
	store.Ingest(ctx, evt.PubKey, evt.Content)
}

// DefaultProfile returns the empty profile view for a pubkey with no cached
// metadata.
func DefaultProfile(pubkey string) ProfileInfo {
	return ProfileInfo{PubKey: pubkey}
}

// parseProfileMetadata parses kind-0 content. The error return keeps the
// silent-discard policy local to the ingest path.
func parseProfileMetadata(pubkey string, content string) (ProfileInfo, error) {
	var profile ProfileInfo
	if err := json.Unmarshal([]byte(content), &profile); err != nil {
		return ProfileInfo{}, err
	}
	profile.PubKey = pubkey
	return profile, nil
}

// discardMetadata logs and counts a malformed payload without mutating state
func discardMetadata(pubkey string, err error) {
	profileDiscardsTotal.Add(1)
	slog.Debug("discarding malformed profile metadata",
		"pubkey", util.ShortID(pubkey),
		"error", err)
}
