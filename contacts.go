package nostrchat

import (
	"context"
	"sync"
)

// Aggregator merges the two subscription streams of a chat session (events
// addressed to the active key, events authored by it) into a unified contact
// list, a last-event-per-contact map, and the unread set. Inputs mutate
// under a lock; Snapshot always recomputes derived state from scratch since
// relays give no ordering guarantee on created_at.
type Aggregator struct {
	mu           sync.RWMutex
	activePubkey string
	wellKnown    []DirectoryName
	loginTime    int64
	seen         map[string]bool
	received     []Event
	sent         []Event
}

// ChatState is the derived view of a chat session at one point in time.
//
// ContactKeys lists well-known directory contacts first (directory order),
// then contacts discovered via traffic in first-seen order; the active key
// never appears, but an empty string can (events whose recipient could not
// be derived — callers filter as needed). LastEventByContact has no entry
// for contacts with no matching event; look up with the comma-ok form.
// Events is the raw received-then-sent merge. Duplicate IDs delivered by
// both subscriptions are NOT collapsed before key derivation or unread
// classification; relay-level dedupe belongs to the transport.
type ChatState struct {
	ContactKeys        []string
	Events             []Event
	LastEventByContact map[string]Event
	UnreadEvents       []Event
}

// NewAggregator creates an aggregator for the given active pubkey
func NewAggregator(activePubkey string) *Aggregator {
	return &Aggregator{
		activePubkey: activePubkey,
		seen:         make(map[string]bool),
	}
}

// SetDirectory installs the well-known name directory. Its names become
// global contacts, present even with zero event traffic.
func (a *Aggregator) SetDirectory(dir *WellKnownDirectory) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if dir == nil {
		a.wellKnown = nil
		return
	}
	a.wellKnown = append([]DirectoryName(nil), dir.Names...)
}

// SetLoginTime sets the session boundary for unread classification
func (a *Aggregator) SetLoginTime(ts int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.loginTime = ts
}

// MarkSeen records event IDs as read. The set only grows; persistence of
// seen state is the caller's responsibility.
func (a *Aggregator) MarkSeen(ids ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, id := range ids {
		a.seen[id] = true
	}
}

// AddReceived appends events from the received subscription
func (a *Aggregator) AddReceived(evts ...Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.received = append(a.received, evts...)
}

// AddSent appends events from the sent subscription
func (a *Aggregator) AddSent(evts ...Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sent = append(a.sent, evts...)
}

// ContactKey derives the other party of an event: for self-authored events
// the recipient tag, otherwise the author. Empty when no recipient tag
// exists on an outgoing event.
func (a *Aggregator) ContactKey(evt Event) string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return contactKey(evt, a.activePubkey)
}

func contactKey(evt Event, activePubkey string) string {
	if evt.PubKey == activePubkey {
		return KeyFromTags(evt.Tags)
	}
	return evt.PubKey
}

// Snapshot recomputes the derived chat state from current inputs
func (a *Aggregator) Snapshot() ChatState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	merged := make([]Event, 0, len(a.received)+len(a.sent))
	merged = append(merged, a.received...)
	merged = append(merged, a.sent...)

	// No active key yet: no contacts, no unread, no error
	if a.activePubkey == "" {
		return ChatState{
			Events:             merged,
			LastEventByContact: make(map[string]Event),
		}
	}

	// Global contacts first, in directory order
	contactKeys := make([]string, 0, len(a.wellKnown))
	inSet := make(map[string]bool)
	for _, entry := range a.wellKnown {
		key := ToHexKey(entry.Key)
		if key == a.activePubkey || inSet[key] {
			continue
		}
		contactKeys = append(contactKeys, key)
		inSet[key] = true
	}

	// Then traffic-discovered contacts in first-seen order
	for _, evt := range merged {
		key := contactKey(evt, a.activePubkey)
		if key == a.activePubkey || inSet[key] {
			continue
		}
		contactKeys = append(contactKeys, key)
		inSet[key] = true
	}

	lastEvent := make(map[string]Event, len(contactKeys))
	for _, ck := range contactKeys {
		if evt, ok := lastEventFor(merged, ck); ok {
			lastEvent[ck] = evt
		}
	}

	return ChatState{
		ContactKeys:        contactKeys,
		Events:             merged,
		LastEventByContact: lastEvent,
		UnreadEvents:       UnreadEvents(merged, a.activePubkey, a.loginTime, a.seen),
	}
}

// lastEventFor finds the most recent event exchanged with a contact. An
// event matches when its author or its recipient tag equals the contact key.
// On equal created_at the later position in the merge wins, so the scan
// updates on >= rather than >.
func lastEventFor(merged []Event, ck string) (Event, bool) {
	var best Event
	found := false
	for _, evt := range merged {
		if evt.PubKey != ck && KeyFromTags(evt.Tags) != ck {
			continue
		}
		if !found || evt.CreatedAt >= best.CreatedAt {
			best = evt
			found = true
		}
	}
	return best, found
}

// Run consumes the session's subscription channels until ctx is cancelled or
// all channels close. Metadata events go to the profile store; sent/received
// events update the aggregator, and onChange (if non-nil) receives a fresh
// snapshot after each delta. Recomputation is synchronous and does no I/O.
func (a *Aggregator) Run(ctx context.Context, received, sent, metadata <-chan Event, profiles ProfileStore, onChange func(ChatState)) {
	for received != nil || sent != nil || metadata != nil {
		changed := false

		select {
		case <-ctx.Done():
			return

		case evt, ok := <-received:
			if !ok {
				received = nil
				continue
			}
			a.AddReceived(evt)
			changed = true

		case evt, ok := <-sent:
			if !ok {
				sent = nil
				continue
			}
			a.AddSent(evt)
			changed = true

		case evt, ok := <-metadata:
			if !ok {
				metadata = nil
				continue
			}
			if profiles != nil {
				IngestMetadataEvent(ctx, profiles, evt)
			}
		}

		if changed && onChange != nil {
			onChange(a.Snapshot())
		}
	}
}
