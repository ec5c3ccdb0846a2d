// Package nostrchat implements the client-side aggregation core of a
// relay-based messaging protocol: profile metadata caching with bounded
// staleness, contact-list derivation from event traffic plus a well-known
// name directory, last-event-per-contact computation, and unread
// classification. Relay transport, signature verification, and key
// generation are external collaborators; the core consumes already-verified
// events and a pre-existing public key.
package nostrchat

import "nostr-chat/internal/types"

// Type aliases for internal/types
type Event = types.Event
type Filter = types.Filter
type ProfileInfo = types.ProfileInfo
