package nostrchat

import "context"

// EventSource is the relay collaborator contract: subscribe by filter, get
// already-verified events asynchronously. Connection management, reconnect
// policy, and signature verification all live behind this interface.
type EventSource interface {
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, error)
}

// ReceivedFilter matches events addressed to the active key
func ReceivedFilter(activePubkey string, kinds ...int) Filter {
	return Filter{Kinds: kinds, PTags: []string{activePubkey}}
}

// SentFilter matches events authored by the active key
func SentFilter(activePubkey string) Filter {
	return Filter{Authors: []string{activePubkey}}
}

// MetadataFilter matches profile metadata events for the given authors
func MetadataFilter(authors ...string) Filter {
	return Filter{Kinds: []int{KindMetadata}, Authors: authors}
}
