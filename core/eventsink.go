package core

import "pkt.systems/agentdeck/schema"

// EventSink receives UI-facing events from the core service. Sinks are
// invoked synchronously from the service and must not call back into
// it.
type EventSink interface {
	OnTranscript(event schema.TranscriptEvent)
	OnThinking(event schema.ThinkingEvent)
	OnSystemLine(event schema.SystemLineEvent)
	OnStatus(event schema.StatusEvent)
	OnConn(event schema.ConnEvent)
	OnToolActivity(event schema.ToolEvent)
	OnSandboxOutput(event schema.SandboxEvent)
	OnPreview(event schema.PreviewEvent)
	OnSession(event schema.SessionEvent)
	OnTodo(event schema.TodoEvent)
}
