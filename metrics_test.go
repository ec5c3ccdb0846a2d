package nostrchat

import (
	"context"
	"testing"
)

func TestMetricsCountDiscards(t *testing.T) {
	store := NewMemoryProfileStore(ProfileTTL)
	defer store.Close()

	before := MetricsSnapshot()
	store.Ingest(context.Background(), testPubkey, "not json")
	after := MetricsSnapshot()

	if after.ProfileDiscards != before.ProfileDiscards+1 {
		t.Errorf("expected discard counter to advance by 1, got %d -> %d",
			before.ProfileDiscards, after.ProfileDiscards)
	}
	if after.ProfileIngests != before.ProfileIngests {
		t.Errorf("discarded payload must not count as an ingest")
	}
}
