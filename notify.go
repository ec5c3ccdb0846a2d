package nostrchat

import (
	"fmt"
	"sync"
)

// NotificationSink receives the side effects of unread-count changes. The
// audio asset and window handling belong to the embedding UI.
type NotificationSink interface {
	PlaySound()
	SetTitle(title string)
}

// FormatTitle renders the window/process title for an unread count
func FormatTitle(title string, unread int) string {
	if unread > 0 {
		return fmt.Sprintf("%s (%d)", title, unread)
	}
	return title
}

// Notifier watches successive chat snapshots and drives the sink: title on
// every count change, sound only on increases.
type Notifier struct {
	mu        sync.Mutex
	title     string
	sink      NotificationSink
	lastCount int
}

// NewNotifier creates a notifier with the given base title
func NewNotifier(title string, sink NotificationSink) *Notifier {
	return &Notifier{title: title, sink: sink}
}

// Observe processes a snapshot, firing sink effects as needed
func (n *Notifier) Observe(state ChatState) {
	n.mu.Lock()
	defer n.mu.Unlock()

	count := len(state.UnreadEvents)
	if n.sink == nil || count == n.lastCount {
		n.lastCount = count
		return
	}

	if count > n.lastCount {
		n.sink.PlaySound()
	}
	n.sink.SetTitle(FormatTitle(n.title, count))
	n.lastCount = count
}
