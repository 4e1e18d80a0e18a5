package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"pkt.systems/agentdeck/internal/logx"
	"pkt.systems/agentdeck/schema"
	"pkt.systems/pslog"
)

// Config tunes the core service. Zero values fall back to defaults.
type Config struct {
	// DesktopSettle is the wait after starting the remote-desktop bridge
	// before loading its URL.
	DesktopSettle time.Duration
	// LoadTimeout bounds a preview load. When it elapses the preview
	// status is forced to connected.
	LoadTimeout time.Duration
	// DesktopBridgeURL is the fixed local URL of the remote-desktop
	// bridge viewer.
	DesktopBridgeURL string
	// SandboxMaxLines caps the retained sandbox scrollback.
	SandboxMaxLines int
	// LedgerMaxEntries caps the retained tool activity history.
	LedgerMaxEntries int
}

const (
	defaultDesktopSettle    = 2 * time.Second
	defaultLoadTimeout      = 10 * time.Second
	defaultDesktopBridgeURL = "http://localhost:6080/vnc.html"
)

type serviceTimeouts struct {
	desktopSettle time.Duration
	loadTimeout   time.Duration
}

type sessionState struct {
	ID     schema.SessionID
	Title  string
	Active bool
}

// Service is the client-side sync layer between the producer event
// stream and the console surfaces. All state lives behind one mutex;
// sinks see a serialized event order.
type Service struct {
	mu sync.Mutex

	// baseLog is unbound; log carries the current session id and is
	// rebound on every session boundary.
	baseLog   pslog.Logger
	log       pslog.Logger
	sink      EventSink
	renderer  Renderer
	transport Transport
	backend   Backend
	titles    TitleProber

	session sessionState
	stream  *streamBuffer
	ledger  *ledger
	sandbox *buffer
	preview *previewManager
	model   string

	thinking       strings.Builder
	thinkingTitle  string
	thinkingActive bool

	timeouts         serviceTimeouts
	desktopBridgeURL string
	previewUpdatedAt time.Time

	// Injected clocks so tests run without real sleeps.
	now   func() time.Time
	after func(time.Duration, func())
	sleep func(time.Duration)
}

// NewService wires the sync layer. EventSink and Renderer are required;
// Titles may be nil to skip web-preview title resolution.
func NewService(cfg Config, deps ServiceDeps) *Service {
	if cfg.DesktopSettle <= 0 {
		cfg.DesktopSettle = defaultDesktopSettle
	}
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaultLoadTimeout
	}
	if cfg.DesktopBridgeURL == "" {
		cfg.DesktopBridgeURL = defaultDesktopBridgeURL
	}
	log := deps.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Service{
		baseLog:   log,
		log:       log,
		sink:      deps.EventSink,
		renderer:  deps.Renderer,
		transport: deps.Transport,
		backend:   deps.Backend,
		titles:    deps.Titles,
		ledger:    newLedger(cfg.LedgerMaxEntries),
		sandbox:   newBuffer(cfg.SandboxMaxLines),
		preview:   newPreviewManager(),
		timeouts: serviceTimeouts{
			desktopSettle: cfg.DesktopSettle,
			loadTimeout:   cfg.LoadTimeout,
		},
		desktopBridgeURL: cfg.DesktopBridgeURL,
		now:              time.Now,
		after: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		sleep: time.Sleep,
	}
}

// SendMessage submits user content to the agent. Whitespace-only
// content is rejected before touching the transport.
func (s *Service) SendMessage(content string, attachments []schema.Attachment) error {
	if strings.TrimSpace(content) == "" && len(attachments) == 0 {
		return schema.ErrEmptyMessage
	}
	s.mu.Lock()
	sessionID := s.session.ID
	s.mu.Unlock()
	return s.transport.Send(schema.NewMessageRequest(content, sessionID, attachments))
}

// StopGeneration cancels the in-flight response. A stop with the
// transport closed is a silent no-op: there is nothing to stop that the
// producer would still honor.
func (s *Service) StopGeneration() error {
	if !s.transport.Open() {
		return nil
	}
	return s.transport.Send(schema.NewStopRequest())
}

// NewSession clears all per-session state. The producer assigns the new
// session id via a session_created event on the next message.
func (s *Service) NewSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetSessionLocked(schema.SessionInfo{})
}

// SwitchSession resumes a stored session. Per-session state is cleared
// locally; the producer replays nothing, so surfaces start blank. With
// the transport closed the switch still happens locally and the
// producer picks the session up from the next message's session id.
func (s *Service) SwitchSession(info schema.SessionInfo) error {
	s.mu.Lock()
	s.resetSessionLocked(info)
	s.mu.Unlock()
	if !s.transport.Open() {
		return nil
	}
	return s.transport.Send(schema.NewSwitchSessionRequest(info.ID))
}

// Sessions lists stored sessions from the backend.
func (s *Service) Sessions(ctx context.Context) ([]schema.SessionInfo, error) {
	return s.backend.ListSessions(ctx)
}

// DeleteSession removes a stored session. Deleting the current session
// clears local state as well.
func (s *Service) DeleteSession(ctx context.Context, id schema.SessionID) error {
	if err := s.backend.DeleteSession(ctx, id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session.ID == id {
		s.resetSessionLocked(schema.SessionInfo{})
	}
	return nil
}

// Session returns the current session identity.
func (s *Service) Session() schema.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return schema.SessionInfo{ID: s.session.ID, Title: s.session.Title}
}

// ToolActivities returns the retained tool ledger, oldest first.
func (s *Service) ToolActivities() []schema.ToolActivity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.snapshot()
}

// SandboxOutput returns the retained sandbox scrollback.
func (s *Service) SandboxOutput() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sandbox.Snapshot()
}

// HandleConn reacts to transport state transitions. A closure finalizes
// the live stream: the producer does not resume token streams across
// connections.
func (s *Service) HandleConn(state schema.ConnState, epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch state {
	case schema.ConnOpen:
		s.log.Debug("transport open", "epoch", epoch)
		s.sink.OnSystemLine(schema.SystemLineEvent{Lines: []string{"connected"}})
	case schema.ConnClosed:
		s.log.Debug("transport closed", "epoch", epoch)
		s.finalizeStream()
		s.setStatusLocked(schema.StatusReady, "")
		s.sink.OnSystemLine(schema.SystemLineEvent{Lines: []string{"connection lost, reconnecting"}})
	}
	s.sink.OnConn(schema.ConnEvent{State: state, Epoch: epoch})
}

// resetSessionLocked clears stream, thinking, ledger, sandbox and
// preview state for a session boundary.
func (s *Service) resetSessionLocked(info schema.SessionInfo) {
	s.stream = nil
	s.thinking.Reset()
	s.thinkingTitle = ""
	s.thinkingActive = false
	s.ledger.reset()
	s.sandbox.Reset()
	s.preview.resetLocked()
	s.session = sessionState{ID: info.ID, Title: info.Title}
	s.log = logx.WithSession(s.baseLog, info.ID)
	s.sink.OnSession(schema.SessionEvent{Session: info, Switched: true})
	s.sink.OnToolActivity(schema.ToolEvent{})
	s.sink.OnSandboxOutput(schema.SandboxEvent{})
	s.emitPreview()
}

func (s *Service) setStatusLocked(phase schema.StatusPhase, message string) {
	s.sink.OnStatus(schema.StatusEvent{Phase: phase, Message: message, Model: s.model})
}
