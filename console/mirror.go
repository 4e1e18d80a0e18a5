package console

import (
	"context"
	"sync"

	"pkt.systems/agentdeck/internal/eventbus"
	"pkt.systems/agentdeck/schema"
)

// View is one consistent snapshot of everything the surfaces draw.
type View struct {
	Session        schema.SessionInfo
	Conn           schema.ConnState
	Epoch          uint64
	Status         schema.StatusEvent
	Scrollback     []string
	Live           []string
	Thinking       []string
	ThinkingActive bool
	Tools          []schema.ToolActivity
	Sandbox        []string
	Preview        schema.PreviewSnapshot
	Apps           []schema.TaskbarApp
	Todos          []schema.TodoItem
}

// Mirror keeps the surface-facing copy of the sync state. It subscribes
// to the event bus as soon as it is constructed and folds every event
// into the view; surfaces pull the view lazily when they redraw. The
// mirror never reaches into the core service.
type Mirror struct {
	mu   sync.Mutex
	view View

	maxScrollback int
	maxSandbox    int

	// notify is poked after every applied event so the owner can
	// schedule a redraw. Called without the mirror lock held.
	notify func()
}

// MirrorOptions configures a Mirror.
type MirrorOptions struct {
	MaxScrollback int
	MaxSandbox    int
	Notify        func()
}

// NewMirror builds an empty mirror.
func NewMirror(opts MirrorOptions) *Mirror {
	if opts.MaxScrollback <= 0 {
		opts.MaxScrollback = 5000
	}
	if opts.MaxSandbox <= 0 {
		opts.MaxSandbox = 2000
	}
	m := &Mirror{
		maxScrollback: opts.MaxScrollback,
		maxSandbox:    opts.MaxSandbox,
		notify:        opts.Notify,
	}
	m.view.Conn = schema.ConnConnecting
	return m
}

// Run folds bus events into the view until the context ends or the
// channel closes.
func (m *Mirror) Run(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.Apply(ev)
		}
	}
}

// Apply folds one event into the view.
func (m *Mirror) Apply(ev eventbus.Event) {
	m.mu.Lock()
	switch ev.Type {
	case eventbus.EventTranscript:
		if ev.Transcript.Final {
			m.appendScrollbackLocked(ev.Transcript.Lines)
			m.appendScrollbackLocked([]string{""})
			m.view.Live = nil
		} else {
			m.view.Live = append([]string(nil), ev.Transcript.Lines...)
		}
	case eventbus.EventThinking:
		m.view.Thinking = append([]string(nil), ev.Thinking.Lines...)
		m.view.ThinkingActive = ev.Thinking.Active
	case eventbus.EventSystem:
		m.appendScrollbackLocked(ev.System.Lines)
	case eventbus.EventStatus:
		m.view.Status = ev.Status
	case eventbus.EventConn:
		m.view.Conn = ev.Conn.State
		m.view.Epoch = ev.Conn.Epoch
	case eventbus.EventTool:
		m.view.Tools = append([]schema.ToolActivity(nil), ev.Tool.Activities...)
	case eventbus.EventSandbox:
		m.view.Sandbox = append(m.view.Sandbox, ev.Sandbox.Lines...)
		if len(m.view.Sandbox) > m.maxSandbox {
			m.view.Sandbox = m.view.Sandbox[len(m.view.Sandbox)-m.maxSandbox:]
		}
	case eventbus.EventPreview:
		m.view.Preview = ev.Preview.Snapshot
		m.view.Apps = append([]schema.TaskbarApp(nil), ev.Preview.Apps...)
	case eventbus.EventSession:
		if ev.Session.Switched {
			m.resetSessionLocked()
		}
		m.view.Session = ev.Session.Session
	case eventbus.EventTodo:
		m.view.Todos = append([]schema.TodoItem(nil), ev.Todo.Items...)
	}
	notify := m.notify
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// SetNotify installs the redraw callback. Used when the consumer of
// the view is constructed after the mirror.
func (m *Mirror) SetNotify(f func()) {
	m.mu.Lock()
	m.notify = f
	m.mu.Unlock()
}

// Notice appends console-local lines to the scrollback. Used for
// command feedback that never passes through the core service.
func (m *Mirror) Notice(lines ...string) {
	m.mu.Lock()
	m.appendScrollbackLocked(lines)
	notify := m.notify
	m.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// View returns a copy safe to render from.
func (m *Mirror) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	view := m.view
	view.Scrollback = append([]string(nil), m.view.Scrollback...)
	view.Live = append([]string(nil), m.view.Live...)
	view.Thinking = append([]string(nil), m.view.Thinking...)
	view.Tools = append([]schema.ToolActivity(nil), m.view.Tools...)
	view.Sandbox = append([]string(nil), m.view.Sandbox...)
	view.Apps = append([]schema.TaskbarApp(nil), m.view.Apps...)
	view.Todos = append([]schema.TodoItem(nil), m.view.Todos...)
	return view
}

func (m *Mirror) appendScrollbackLocked(lines []string) {
	if len(lines) == 0 {
		return
	}
	m.view.Scrollback = append(m.view.Scrollback, lines...)
	if len(m.view.Scrollback) > m.maxScrollback {
		m.view.Scrollback = m.view.Scrollback[len(m.view.Scrollback)-m.maxScrollback:]
	}
}

func (m *Mirror) resetSessionLocked() {
	m.view.Scrollback = nil
	m.view.Live = nil
	m.view.Thinking = nil
	m.view.ThinkingActive = false
	m.view.Tools = nil
	m.view.Sandbox = nil
	m.view.Preview = schema.PreviewSnapshot{Mode: schema.PreviewEmpty, Status: schema.PreviewIdle}
	m.view.Apps = nil
	m.view.Todos = nil
}
