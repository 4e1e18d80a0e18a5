package schema

// Events published by the core service to its sinks. Surfaces render
// from these; they never read core state directly.

// TranscriptEvent replaces the rendered in-flight response. Lines is
// the full re-render of the accumulated content, not a delta.
type TranscriptEvent struct {
	SessionID SessionID
	Lines     []string
	Final     bool
}

// ThinkingEvent replaces the rendered reasoning section.
type ThinkingEvent struct {
	SessionID SessionID
	Lines     []string
	Active    bool
}

// SystemLineEvent appends system notice lines to the transcript.
type SystemLineEvent struct {
	Lines []string
}

// StatusEvent updates the status bar.
type StatusEvent struct {
	Phase   StatusPhase
	Message string
	Model   string
}

// ConnEvent reports a transport state transition.
type ConnEvent struct {
	State ConnState
	Epoch uint64
}

// ToolEvent carries the current ledger view after a change.
type ToolEvent struct {
	Activities []ToolActivity
}

// SandboxEvent appends lines to the sandbox output view.
type SandboxEvent struct {
	Lines []string
}

// PreviewEvent carries the preview state and taskbar after a change.
type PreviewEvent struct {
	Snapshot PreviewSnapshot
	Apps     []TaskbarApp
}

// SessionEvent reports session identity changes.
type SessionEvent struct {
	Session  SessionInfo
	Switched bool
}

// TodoEvent carries a refreshed todo list.
type TodoEvent struct {
	Items []TodoItem
}
