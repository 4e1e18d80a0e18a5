package core

import (
	"context"

	"pkt.systems/agentdeck/schema"
	"pkt.systems/pslog"
)

// Transport is the outbound half of the event stream.
type Transport interface {
	// Open reports whether an envelope sent now would actually leave.
	Open() bool
	// Send writes an envelope. Not queued when closed.
	Send(v any) error
}

// Backend is the collaborator HTTP surface the service consumes.
type Backend interface {
	ReadWorkspaceFile(ctx context.Context, path string) (string, error)
	ListSessions(ctx context.Context) ([]schema.SessionInfo, error)
	DeleteSession(ctx context.Context, id schema.SessionID) error
	DesktopStatus(ctx context.Context) (schema.DesktopStatus, error)
	StartDesktop(ctx context.Context) error
}

// TitleProber resolves page titles for web previews. Optional.
type TitleProber interface {
	Title(ctx context.Context, pageURL string) (string, error)
}

// Renderer formats accumulated response content into display lines.
type Renderer interface {
	// Render is the incremental full re-render applied on every token.
	Render(content string) []string
	// RenderFinal is applied once at finalization and may additionally
	// syntax-highlight fenced code.
	RenderFinal(content string) []string
}

// ServiceDeps captures dependencies for the core service.
type ServiceDeps struct {
	Transport Transport
	Backend   Backend
	Titles    TitleProber
	Renderer  Renderer
	EventSink EventSink
	Logger    pslog.Logger
}
