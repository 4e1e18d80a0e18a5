package schema

import "encoding/json"

// EventKind is the type tag of one inbound envelope.
type EventKind string

const (
	// EventSessionCreated indicates the server assigned a new session.
	EventSessionCreated EventKind = "session_created"
	// EventStreamStart indicates an assistant response began.
	EventStreamStart EventKind = "stream_start"
	// EventToken carries one streamed response token.
	EventToken EventKind = "token"
	// EventThinkingStart indicates a reasoning block began.
	EventThinkingStart EventKind = "thinking_start"
	// EventThinkingToken carries one streamed reasoning token.
	EventThinkingToken EventKind = "thinking_token"
	// EventThinkingEnd indicates a reasoning block ended.
	EventThinkingEnd EventKind = "thinking_end"
	// EventToolStart indicates a tool invocation began.
	EventToolStart EventKind = "tool_start"
	// EventToolEnd indicates a tool invocation finished.
	EventToolEnd EventKind = "tool_end"
	// EventTodoUpdate carries a refreshed todo list.
	EventTodoUpdate EventKind = "todo_update"
	// EventMemoryUpdate indicates the memory store changed.
	EventMemoryUpdate EventKind = "memory_update"
	// EventBrowserStart indicates a browsing tool opened a URL.
	EventBrowserStart EventKind = "browser_start"
	// EventBrowserResult carries browsing tool output.
	EventBrowserResult EventKind = "browser_result"
	// EventStreamEnd indicates the assistant response completed.
	EventStreamEnd EventKind = "stream_end"
	// EventError carries a producer-side error.
	EventError EventKind = "error"
	// EventStopped indicates generation stopped on user request.
	EventStopped EventKind = "stopped"
	// EventSystem carries a system notice line.
	EventSystem EventKind = "system"
	// EventStatus carries agent status and active model identity.
	EventStatus EventKind = "status"
	// EventDockerCommand indicates a sandbox command started.
	EventDockerCommand EventKind = "docker_command"
	// EventDockerOutput carries sandbox command output.
	EventDockerOutput EventKind = "docker_output"
	// EventServerStarted indicates a server came up in the sandbox.
	EventServerStarted EventKind = "server_started"
	// EventCanvasURL points the live preview at a URL.
	EventCanvasURL EventKind = "canvas_url"
	// EventHTMLCreated points the live preview at a created document.
	EventHTMLCreated EventKind = "html_created"
	// EventGUIStarted indicates the remote desktop became available.
	EventGUIStarted EventKind = "gui_started"
	// EventReminderTriggered indicates a reminder fired.
	EventReminderTriggered EventKind = "reminder_triggered"
)

// Envelope is one decoded unit of transport traffic. The wire format is
// flat JSON keyed by Type; only the fields relevant to a given kind are
// populated. Unknown fields are ignored on decode.
type Envelope struct {
	Type       EventKind       `json:"type"`
	Content    string          `json:"content,omitempty"`
	Session    *SessionInfo    `json:"session,omitempty"`
	SessionID  SessionID       `json:"session_id,omitempty"`
	Tool       string          `json:"tool,omitempty"`
	Input      string          `json:"input,omitempty"`
	Output     string          `json:"output,omitempty"`
	URL        string          `json:"url,omitempty"`
	Path       string          `json:"path,omitempty"`
	Command    string          `json:"command,omitempty"`
	Status     string          `json:"status,omitempty"`
	Message    string          `json:"message,omitempty"`
	Model      string          `json:"model,omitempty"`
	Title      string          `json:"title,omitempty"`
	Port       int             `json:"port,omitempty"`
	ServerType string          `json:"server_type,omitempty"`
	Reminder   *Reminder       `json:"reminder,omitempty"`
	Todos      []TodoItem      `json:"todos,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// DecodeEnvelope parses one transport frame. Malformed frames return
// ErrMalformedEnvelope; the caller drops them without dispatching.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, ErrMalformedEnvelope
	}
	if env.Type == "" {
		return Envelope{}, ErrMalformedEnvelope
	}
	env.Raw = append(json.RawMessage(nil), data...)
	return env, nil
}

// StatusPhase classifies producer status updates.
type StatusPhase string

const (
	// StatusThinking indicates the agent is generating.
	StatusThinking StatusPhase = "thinking"
	// StatusTool indicates a tool is executing.
	StatusTool StatusPhase = "tool"
	// StatusSwitching indicates a model fallback switch.
	StatusSwitching StatusPhase = "switching"
	// StatusReady indicates the agent is idle.
	StatusReady StatusPhase = "ready"
)
