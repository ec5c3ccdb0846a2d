package nostrchat

import "testing"

type fakeSink struct {
	sounds int
	titles []string
}

func (f *fakeSink) PlaySound()            { f.sounds++ }
func (f *fakeSink) SetTitle(title string) { f.titles = append(f.titles, title) }

func TestFormatTitle(t *testing.T) {
	if got := FormatTitle("chat", 0); got != "chat" {
		t.Errorf("zero unread should render the bare title, got %q", got)
	}
	if got := FormatTitle("chat", 3); got != "chat (3)" {
		t.Errorf("expected \"chat (3)\", got %q", got)
	}
}

func unreadState(n int) ChatState {
	events := make([]Event, n)
	for i := range events {
		events[i] = Event{ID: string(rune('a' + i)), PubKey: "bob", CreatedAt: 100}
	}
	return ChatState{UnreadEvents: events}
}

func TestNotifierSoundOnIncreaseOnly(t *testing.T) {
	sink := &fakeSink{}
	n := NewNotifier("chat", sink)

	n.Observe(unreadState(0))
	if sink.sounds != 0 {
		t.Errorf("no sound expected at count 0, got %d", sink.sounds)
	}

	n.Observe(unreadState(2))
	if sink.sounds != 1 {
		t.Errorf("expected one sound on increase, got %d", sink.sounds)
	}

	// Decrease updates the title but stays silent
	n.Observe(unreadState(1))
	if sink.sounds != 1 {
		t.Errorf("decrease must not play a sound, got %d", sink.sounds)
	}

	// Unchanged count does nothing
	n.Observe(unreadState(1))
	if sink.sounds != 1 || len(sink.titles) != 2 {
		t.Errorf("unchanged count should be a no-op, sounds=%d titles=%v", sink.sounds, sink.titles)
	}

	want := []string{"chat (2)", "chat (1)"}
	for i, title := range want {
		if sink.titles[i] != title {
			t.Errorf("titles[%d] = %q, want %q", i, sink.titles[i], title)
		}
	}
}

func TestNotifierNilSink(t *testing.T) {
	n := NewNotifier("chat", nil)
	// Must not panic
	n.Observe(unreadState(3))
	n.Observe(unreadState(0))
}
