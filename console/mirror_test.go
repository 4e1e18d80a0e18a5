package console

import (
	"testing"

	"pkt.systems/agentdeck/internal/eventbus"
	"pkt.systems/agentdeck/schema"
)

func TestMirrorLiveTranscriptReplaced(t *testing.T) {
	m := NewMirror(MirrorOptions{})
	m.Apply(eventbus.Event{Type: eventbus.EventTranscript, Transcript: schema.TranscriptEvent{Lines: []string{"hel"}}})
	m.Apply(eventbus.Event{Type: eventbus.EventTranscript, Transcript: schema.TranscriptEvent{Lines: []string{"hello"}}})

	view := m.View()
	if len(view.Live) != 1 || view.Live[0] != "hello" {
		t.Fatalf("live = %v, want the latest full render only", view.Live)
	}
	if len(view.Scrollback) != 0 {
		t.Fatalf("non-final render reached scrollback: %v", view.Scrollback)
	}
}

func TestMirrorFinalTranscriptMovesToScrollback(t *testing.T) {
	m := NewMirror(MirrorOptions{})
	m.Apply(eventbus.Event{Type: eventbus.EventTranscript, Transcript: schema.TranscriptEvent{Lines: []string{"answer"}}})
	m.Apply(eventbus.Event{Type: eventbus.EventTranscript, Transcript: schema.TranscriptEvent{Lines: []string{"answer"}, Final: true}})

	view := m.View()
	if len(view.Live) != 0 {
		t.Fatalf("live not cleared after final: %v", view.Live)
	}
	if len(view.Scrollback) == 0 || view.Scrollback[0] != "answer" {
		t.Fatalf("scrollback = %v", view.Scrollback)
	}
}

func TestMirrorScrollbackCapped(t *testing.T) {
	m := NewMirror(MirrorOptions{MaxScrollback: 3})
	for i := 0; i < 5; i++ {
		m.Apply(eventbus.Event{Type: eventbus.EventSystem, System: schema.SystemLineEvent{Lines: []string{"line"}}})
	}
	if got := len(m.View().Scrollback); got != 3 {
		t.Fatalf("scrollback holds %d lines, want 3", got)
	}
}

func TestMirrorSessionSwitchResets(t *testing.T) {
	m := NewMirror(MirrorOptions{})
	m.Apply(eventbus.Event{Type: eventbus.EventSystem, System: schema.SystemLineEvent{Lines: []string{"old"}}})
	m.Apply(eventbus.Event{Type: eventbus.EventTool, Tool: schema.ToolEvent{Activities: []schema.ToolActivity{{Tool: "search"}}}})
	m.Apply(eventbus.Event{Type: eventbus.EventSession, Session: schema.SessionEvent{
		Session:  schema.SessionInfo{ID: "sess-2"},
		Switched: true,
	}})

	view := m.View()
	if len(view.Scrollback) != 0 || len(view.Tools) != 0 {
		t.Fatalf("switch did not reset: %+v", view)
	}
	if view.Session.ID != "sess-2" {
		t.Fatalf("session = %q, want sess-2", view.Session.ID)
	}
}

func TestMirrorSessionCreatedKeepsState(t *testing.T) {
	m := NewMirror(MirrorOptions{})
	m.Apply(eventbus.Event{Type: eventbus.EventSystem, System: schema.SystemLineEvent{Lines: []string{"kept"}}})
	m.Apply(eventbus.Event{Type: eventbus.EventSession, Session: schema.SessionEvent{
		Session: schema.SessionInfo{ID: "sess-1"},
	}})
	if got := len(m.View().Scrollback); got != 1 {
		t.Fatalf("session_created reset scrollback: %d lines", got)
	}
}

func TestMirrorNotifyCalledPerEvent(t *testing.T) {
	calls := 0
	m := NewMirror(MirrorOptions{Notify: func() { calls++ }})
	m.Apply(eventbus.Event{Type: eventbus.EventStatus, Status: schema.StatusEvent{Phase: schema.StatusReady}})
	m.Apply(eventbus.Event{Type: eventbus.EventConn, Conn: schema.ConnEvent{State: schema.ConnOpen, Epoch: 1}})
	if calls != 2 {
		t.Fatalf("notify called %d times, want 2", calls)
	}
}

func TestMirrorViewIsCopy(t *testing.T) {
	m := NewMirror(MirrorOptions{})
	m.Apply(eventbus.Event{Type: eventbus.EventSystem, System: schema.SystemLineEvent{Lines: []string{"line"}}})
	view := m.View()
	view.Scrollback[0] = "mutated"
	if m.View().Scrollback[0] != "line" {
		t.Fatal("View aliases mirror state")
	}
}
