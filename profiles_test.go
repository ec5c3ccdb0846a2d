package nostrchat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

const testPubkey = "7e7e9c42a91bfef19fa929e5fda1b72e0ebc1a4c1141673e2794234d86addf4e"

func TestGetOrDefaultUnknownKey(t *testing.T) {
	store := NewMemoryProfileStore(ProfileTTL)
	defer store.Close()

	profile := store.GetOrDefault(context.Background(), testPubkey)
	if profile.PubKey != testPubkey {
		t.Errorf("default profile should carry the key, got %q", profile.PubKey)
	}
	if profile.Name != "" || profile.Picture != "" {
		t.Errorf("default profile should have no metadata fields, got %+v", profile)
	}
}

func TestIngestAndGet(t *testing.T) {
	store := NewMemoryProfileStore(ProfileTTL)
	defer store.Close()
	ctx := context.Background()

	store.Ingest(ctx, testPubkey, `{"name":"alice","picture":"https://example.com/a.png","about":"hi"}`)

	profile := store.GetOrDefault(ctx, testPubkey)
	if profile.Name != "alice" {
		t.Errorf("expected name alice, got %q", profile.Name)
	}
	if profile.Picture != "https://example.com/a.png" {
		t.Errorf("unexpected picture %q", profile.Picture)
	}
	if profile.PubKey != testPubkey {
		t.Errorf("expected pubkey set on ingested profile, got %q", profile.PubKey)
	}
}

func TestIngestMalformedPayloadIsNoOp(t *testing.T) {
	store := NewMemoryProfileStore(ProfileTTL)
	defer store.Close()
	ctx := context.Background()

	store.Ingest(ctx, testPubkey, `{"name":"alice"}`)

	for _, payload := range []string{"", "not json", `{"name":`, `[1,2,3`, "\x00\x01"} {
		store.Ingest(ctx, testPubkey, payload)
	}

	// The earlier valid entry must survive untouched
	profile := store.GetOrDefault(ctx, testPubkey)
	if profile.Name != "alice" {
		t.Errorf("malformed ingest mutated the cache: got name %q", profile.Name)
	}
}

func TestIngestOverwritesWholesale(t *testing.T) {
	store := NewMemoryProfileStore(ProfileTTL)
	defer store.Close()
	ctx := context.Background()

	store.Ingest(ctx, testPubkey, `{"name":"alice","about":"first bio"}`)
	store.Ingest(ctx, testPubkey, `{"name":"alice2"}`)

	profile := store.GetOrDefault(ctx, testPubkey)
	if profile.Name != "alice2" {
		t.Errorf("expected replaced name alice2, got %q", profile.Name)
	}
	if profile.About != "" {
		t.Errorf("fields must not merge across ingests, got about %q", profile.About)
	}
}

func TestEntryExpiresAfterTTL(t *testing.T) {
	store := NewMemoryProfileStore(60 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	store.Ingest(ctx, testPubkey, `{"name":"alice"}`)

	if got := store.GetOrDefault(ctx, testPubkey); got.Name != "alice" {
		t.Fatalf("expected cached profile inside TTL window, got %+v", got)
	}

	time.Sleep(120 * time.Millisecond)

	if got := store.GetOrDefault(ctx, testPubkey); got.Name != "" {
		t.Errorf("expected default profile after TTL, got name %q", got.Name)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store after expiry, got %d entries", store.Len())
	}
}

// Regression: re-ingest must reset the TTL window, and the expiry scheduled
// by the first ingest must not remove the newer entry. Scaled-down replay of
// the ingest-at-0, ingest-at-50min, check-at-70min, check-at-111min scenario.
func TestReingestResetsTTLWindow(t *testing.T) {
	ttl := 200 * time.Millisecond
	store := NewMemoryProfileStore(ttl)
	defer store.Close()
	ctx := context.Background()

	store.Ingest(ctx, testPubkey, `{"name":"v1"}`)

	time.Sleep(150 * time.Millisecond)
	store.Ingest(ctx, testPubkey, `{"name":"v2"}`)

	// t=~260ms: past the first ingest's expiry, inside the second's window
	time.Sleep(110 * time.Millisecond)
	if got := store.GetOrDefault(ctx, testPubkey); got.Name != "v2" {
		t.Errorf("stale expiry removed the refreshed entry: got %+v", got)
	}

	// t=~460ms: past the second window too
	time.Sleep(200 * time.Millisecond)
	if got := store.GetOrDefault(ctx, testPubkey); got.Name != "" {
		t.Errorf("expected default profile after refreshed TTL elapsed, got name %q", got.Name)
	}
}

func TestConcurrentIngestLastWriteWins(t *testing.T) {
	store := NewMemoryProfileStore(ProfileTTL)
	defer store.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Ingest(ctx, testPubkey, fmt.Sprintf(`{"name":"writer-%d"}`, i))
		}(i)
	}
	wg.Wait()

	// Some single writer won; the entry must be a complete profile, not a blend
	profile := store.GetOrDefault(ctx, testPubkey)
	if profile.Name == "" {
		t.Error("expected a cached profile after concurrent ingests")
	}
	if store.Len() != 1 {
		t.Errorf("expected one entry, got %d", store.Len())
	}
}

func TestIngestMetadataEventKindGuard(t *testing.T) {
	store := NewMemoryProfileStore(ProfileTTL)
	defer store.Close()
	ctx := context.Background()

	IngestMetadataEvent(ctx, store, Event{
		ID:      "n1",
		PubKey:  testPubkey,
		Kind:    1,
		Content: `{"name":"not-metadata"}`,
	})
	if got := store.GetOrDefault(ctx, testPubkey); got.Name != "" {
		t.Errorf("kind 1 event must not populate the profile cache, got %q", got.Name)
	}

	IngestMetadataEvent(ctx, store, Event{
		ID:      "m1",
		PubKey:  testPubkey,
		Kind:    KindMetadata,
		Content: `{"name":"alice"}`,
	})
	if got := store.GetOrDefault(ctx, testPubkey); got.Name != "alice" {
		t.Errorf("kind 0 event should populate the profile cache, got %q", got.Name)
	}
}
