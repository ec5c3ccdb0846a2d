package nostrchat

// UnreadEvents filters the merged event collection to unread events: not
// authored by the active key, created strictly after loginTime, and not in
// the caller-supplied seen-ID set. The three conditions are necessary and
// sufficient; the result is empty when activePubkey is empty.
func UnreadEvents(events []Event, activePubkey string, loginTime int64, seen map[string]bool) []Event {
	if activePubkey == "" {
		return nil
	}

	var unread []Event
	for _, evt := range events {
		if evt.PubKey == activePubkey {
			continue
		}
		if evt.CreatedAt <= loginTime {
			continue
		}
		if seen[evt.ID] {
			continue
		}
		unread = append(unread, evt)
	}
	return unread
}
