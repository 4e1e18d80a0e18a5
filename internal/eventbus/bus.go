package eventbus

import (
	"context"
	"sync"

	"pkt.systems/agentdeck/schema"
	"pkt.systems/pslog"
)

// EventType identifies the event payload.
type EventType string

const (
	// EventTranscript carries a full re-render of the in-flight response.
	EventTranscript EventType = "transcript"
	// EventThinking carries the rendered reasoning section.
	EventThinking EventType = "thinking"
	// EventSystem carries system notice lines.
	EventSystem EventType = "system"
	// EventStatus carries status-bar updates.
	EventStatus EventType = "status"
	// EventConn carries transport state transitions.
	EventConn EventType = "conn"
	// EventTool carries tool ledger updates.
	EventTool EventType = "tool"
	// EventSandbox carries sandbox output lines.
	EventSandbox EventType = "sandbox"
	// EventPreview carries preview/taskbar updates.
	EventPreview EventType = "preview"
	// EventSession carries session identity changes.
	EventSession EventType = "session"
	// EventTodo carries todo list refreshes.
	EventTodo EventType = "todo"
)

// Event represents one UI-facing change emitted by the core service.
type Event struct {
	Type       EventType
	Transcript schema.TranscriptEvent
	Thinking   schema.ThinkingEvent
	System     schema.SystemLineEvent
	Status     schema.StatusEvent
	Conn       schema.ConnEvent
	Tool       schema.ToolEvent
	Sandbox    schema.SandboxEvent
	Preview    schema.PreviewEvent
	Session    schema.SessionEvent
	Todo       schema.TodoEvent
}

// Bus fans core events out to surface subscribers. It satisfies the
// core event sink so mirrors observe changes by subscription instead of
// diffing rendered output.
type Bus struct {
	mu    sync.Mutex
	subs  map[chan Event]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan Event]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns a channel + cancel.
func (b *Bus) Subscribe() (<-chan Event, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan Event, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	if b.log != nil {
		b.log.Debug("eventbus subscribe", "subs", count)
	}
	// Close under the lock so a concurrent publish never sends on a
	// closed channel. Cancel is idempotent.
	return ch, func() {
		b.mu.Lock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
		b.mu.Unlock()
		if b.log != nil {
			b.log.Debug("eventbus unsubscribe")
		}
	}
}

// OnTranscript publishes a transcript re-render.
func (b *Bus) OnTranscript(event schema.TranscriptEvent) {
	b.publish(Event{Type: EventTranscript, Transcript: event})
}

// OnThinking publishes a reasoning section update.
func (b *Bus) OnThinking(event schema.ThinkingEvent) {
	b.publish(Event{Type: EventThinking, Thinking: event})
}

// OnSystemLine publishes system notice lines.
func (b *Bus) OnSystemLine(event schema.SystemLineEvent) {
	b.publish(Event{Type: EventSystem, System: event})
}

// OnStatus publishes a status-bar update.
func (b *Bus) OnStatus(event schema.StatusEvent) {
	b.publish(Event{Type: EventStatus, Status: event})
}

// OnConn publishes a transport state transition.
func (b *Bus) OnConn(event schema.ConnEvent) {
	b.publish(Event{Type: EventConn, Conn: event})
}

// OnToolActivity publishes a ledger change.
func (b *Bus) OnToolActivity(event schema.ToolEvent) {
	b.publish(Event{Type: EventTool, Tool: event})
}

// OnSandboxOutput publishes sandbox output lines.
func (b *Bus) OnSandboxOutput(event schema.SandboxEvent) {
	b.publish(Event{Type: EventSandbox, Sandbox: event})
}

// OnPreview publishes a preview/taskbar change.
func (b *Bus) OnPreview(event schema.PreviewEvent) {
	b.publish(Event{Type: EventPreview, Preview: event})
}

// OnSession publishes a session identity change.
func (b *Bus) OnSession(event schema.SessionEvent) {
	b.publish(Event{Type: EventSession, Session: event})
}

// OnTodo publishes a todo list refresh.
func (b *Bus) OnTodo(event schema.TodoEvent) {
	b.publish(Event{Type: EventTodo, Todo: event})
}

// publish sends to every subscriber while holding the lock; a slow
// subscriber with a full buffer is dropped, never waited on. Sending
// under the lock keeps publish ordered with unsubscribe's close.
func (b *Bus) publish(event Event) {
	if b == nil {
		return
	}
	b.mu.Lock()
	dropped := 0
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	b.mu.Unlock()
	if dropped > 0 && b.log != nil {
		b.log.Trace("eventbus dropped", "type", event.Type, "count", dropped)
	}
}
