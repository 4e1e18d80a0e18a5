package schema

// Outbound transport envelopes.

// MessageRequest asks the agent to respond to user content.
type MessageRequest struct {
	Type        string       `json:"type"`
	Content     string       `json:"content"`
	SessionID   SessionID    `json:"session_id,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is one file attached to an outbound message.
type Attachment struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type,omitempty"`
	Data     string `json:"data"`
}

// StopRequest cancels the in-flight generation.
type StopRequest struct {
	Type string `json:"type"`
}

// NewMessageRequest builds a message envelope for the transport.
func NewMessageRequest(content string, sessionID SessionID, attachments []Attachment) MessageRequest {
	return MessageRequest{
		Type:        "message",
		Content:     content,
		SessionID:   sessionID,
		Attachments: attachments,
	}
}

// NewStopRequest builds a stop envelope for the transport.
func NewStopRequest() StopRequest {
	return StopRequest{Type: "stop"}
}

// SwitchSessionRequest asks the producer to resume a stored session.
type SwitchSessionRequest struct {
	Type      string    `json:"type"`
	SessionID SessionID `json:"session_id"`
}

// NewSwitchSessionRequest builds a session switch envelope.
func NewSwitchSessionRequest(id SessionID) SwitchSessionRequest {
	return SwitchSessionRequest{Type: "switch_session", SessionID: id}
}

// Backend HTTP payloads.

// ReminderInput is a reminder creation request. Validate before sending.
type ReminderInput struct {
	Message string `json:"message"`
	At      string `json:"at"`
}

// Validate reports ErrMissingField when a required field is empty. No
// network call is made for invalid input.
func (r ReminderInput) Validate() error {
	if r.Message == "" || r.At == "" {
		return ErrMissingField
	}
	return nil
}

// MemoryInput is a memory entry creation request.
type MemoryInput struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

// Validate reports ErrMissingField when a required field is empty.
func (m MemoryInput) Validate() error {
	if m.Key == "" || m.Content == "" {
		return ErrMissingField
	}
	return nil
}

// ExecRequest runs a command in the sandbox.
type ExecRequest struct {
	Command string `json:"command"`
	Timeout int    `json:"timeout,omitempty"`
}

// FileWriteRequest writes a file under a workspace or sandbox root.
type FileWriteRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
