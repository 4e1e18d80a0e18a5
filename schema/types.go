package schema

import "time"

// ClientID identifies one console process on the transport.
type ClientID string

// SessionID identifies a conversation session.
type SessionID string

// ActivityID identifies one tool invocation in the ledger.
type ActivityID uint64

// AppID identifies a taskbar app entry.
type AppID string

// ConnState describes the transport connection state.
type ConnState string

const (
	// ConnConnecting indicates a dial attempt is in progress.
	ConnConnecting ConnState = "connecting"
	// ConnOpen indicates the transport is open.
	ConnOpen ConnState = "open"
	// ConnClosed indicates the transport is closed.
	ConnClosed ConnState = "closed"
)

// SessionInfo is the server-side view of a session.
type SessionInfo struct {
	ID           SessionID `json:"id"`
	Title        string    `json:"title,omitempty"`
	Summary      string    `json:"summary,omitempty"`
	MessageCount int       `json:"message_count,omitempty"`
}

// Settings is the backend model configuration.
type Settings struct {
	Provider  string   `json:"provider,omitempty"`
	Model     string   `json:"model,omitempty"`
	Fallbacks []string `json:"fallbacks,omitempty"`
}

// TodoItem is a checklist entry from todo_update events.
type TodoItem struct {
	Text      string `json:"text,omitempty"`
	Completed bool   `json:"completed,omitempty"`
}

// Reminder is a scheduled reminder entry.
type Reminder struct {
	ID      string    `json:"id,omitempty"`
	Message string    `json:"message,omitempty"`
	At      time.Time `json:"at,omitzero"`
}

// DesktopStatus reports the remote-desktop bridge state.
type DesktopStatus struct {
	Running bool   `json:"running"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ExecResult is the outcome of a sandbox command execution.
type ExecResult struct {
	Success    bool   `json:"success"`
	Stdout     string `json:"stdout,omitempty"`
	Stderr     string `json:"stderr,omitempty"`
	ReturnCode int    `json:"returncode,omitempty"`
	Error      string `json:"error,omitempty"`
}
