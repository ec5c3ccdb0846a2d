package nostrchat

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nostr-chat/internal/util"
)

// MemoryProfileStore implements ProfileStore using a map with per-entry
// expiry timers.
type MemoryProfileStore struct {
	mu      sync.Mutex
	entries map[string]*profileEntry
	ttl     time.Duration
}

type profileEntry struct {
	profile   ProfileInfo
	expiresAt time.Time
	gen       uint64
	timer     *time.Timer
}

// NewMemoryProfileStore creates a new in-memory profile store
func NewMemoryProfileStore(ttl time.Duration) *MemoryProfileStore {
	return &MemoryProfileStore{
		entries: make(map[string]*profileEntry),
		ttl:     ttl,
	}
}

func (s *MemoryProfileStore) GetOrDefault(ctx context.Context, pubkey string) ProfileInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[pubkey]
	if !ok {
		cacheMissesTotal.Add(1)
		return DefaultProfile(pubkey)
	}

	// Lazy expiry at read time; the timer path converges on the same state
	if time.Now().After(entry.expiresAt) {
		entry.timer.Stop()
		delete(s.entries, pubkey)
		cacheMissesTotal.Add(1)
		return DefaultProfile(pubkey)
	}

	cacheHitsTotal.Add(1)
	return entry.profile
}

func (s *MemoryProfileStore) Ingest(ctx context.Context, pubkey string, content string) {
	profile, err := parseProfileMetadata(pubkey, content)
	if err != nil {
		discardMetadata(pubkey, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Overwrite wholesale and restart the TTL. The generation counter keeps
	// an already-scheduled expiry callback from clearing the newer entry.
	gen := uint64(1)
	if old, ok := s.entries[pubkey]; ok {
		old.timer.Stop()
		gen = old.gen + 1
	}

	entry := &profileEntry{
		profile:   profile,
		expiresAt: time.Now().Add(s.ttl),
		gen:       gen,
	}
	entry.timer = time.AfterFunc(s.ttl, func() {
		s.expire(pubkey, gen)
	})
	s.entries[pubkey] = entry

	profileIngestsTotal.Add(1)
	slog.Debug("profile cached", "pubkey", util.ShortID(pubkey), "gen", gen)
}

// expire removes an entry only if its generation still matches; a stale
// callback from before a re-ingest is a no-op.
func (s *MemoryProfileStore) expire(pubkey string, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[pubkey]; ok && entry.gen == gen {
		delete(s.entries, pubkey)
	}
}

// Close cancels all pending expiry timers
func (s *MemoryProfileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pubkey, entry := range s.entries {
		entry.timer.Stop()
		delete(s.entries, pubkey)
	}
	return nil
}

// Len reports the number of live entries (expired-but-unreaped entries excluded)
func (s *MemoryProfileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	now := time.Now()
	for _, entry := range s.entries {
		if now.Before(entry.expiresAt) {
			n++
		}
	}
	return n
}
