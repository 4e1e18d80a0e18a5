package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"pkt.systems/agentdeck/schema"
)

// sinkRecorder captures every sink event for assertions. Safe for use
// from preview goroutines.
type sinkRecorder struct {
	mu          sync.Mutex
	transcripts []schema.TranscriptEvent
	thinking    []schema.ThinkingEvent
	systemLines []string
	statuses    []schema.StatusEvent
	conns       []schema.ConnEvent
	tools       []schema.ToolEvent
	sandbox     []string
	previews    []schema.PreviewEvent
	sessions    []schema.SessionEvent
	todos       []schema.TodoEvent
}

func (r *sinkRecorder) OnTranscript(event schema.TranscriptEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transcripts = append(r.transcripts, event)
}

func (r *sinkRecorder) OnThinking(event schema.ThinkingEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.thinking = append(r.thinking, event)
}

func (r *sinkRecorder) OnSystemLine(event schema.SystemLineEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systemLines = append(r.systemLines, event.Lines...)
}

func (r *sinkRecorder) OnStatus(event schema.StatusEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, event)
}

func (r *sinkRecorder) OnConn(event schema.ConnEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns = append(r.conns, event)
}

func (r *sinkRecorder) OnToolActivity(event schema.ToolEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools = append(r.tools, event)
}

func (r *sinkRecorder) OnSandboxOutput(event schema.SandboxEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sandbox = append(r.sandbox, event.Lines...)
}

func (r *sinkRecorder) OnPreview(event schema.PreviewEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.previews = append(r.previews, event)
}

func (r *sinkRecorder) OnSession(event schema.SessionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = append(r.sessions, event)
}

func (r *sinkRecorder) OnTodo(event schema.TodoEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.todos = append(r.todos, event)
}

func (r *sinkRecorder) lastTranscript(t *testing.T) schema.TranscriptEvent {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.transcripts) == 0 {
		t.Fatal("no transcript events recorded")
	}
	return r.transcripts[len(r.transcripts)-1]
}

func (r *sinkRecorder) transcriptCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transcripts)
}

type fakeTransport struct {
	mu   sync.Mutex
	open bool
	sent []any
}

func (f *fakeTransport) Open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeTransport) Send(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.open {
		return schema.ErrNotConnected
	}
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeBackend struct {
	mu       sync.Mutex
	files    map[string]string
	readErr  error
	sessions []schema.SessionInfo
	desktop  schema.DesktopStatus
	started  bool
	fetched  chan struct{}
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		files:   map[string]string{},
		fetched: make(chan struct{}, 8),
	}
}

func (f *fakeBackend) ReadWorkspaceFile(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer func() { f.fetched <- struct{}{} }()
	if f.readErr != nil {
		return "", f.readErr
	}
	return f.files[path], nil
}

func (f *fakeBackend) ListSessions(context.Context) ([]schema.SessionInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions, nil
}

func (f *fakeBackend) DeleteSession(_ context.Context, id schema.SessionID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, si := range f.sessions {
		if si.ID == id {
			f.sessions = append(f.sessions[:i], f.sessions[i+1:]...)
			return nil
		}
	}
	return schema.ErrSessionNotFound
}

func (f *fakeBackend) DesktopStatus(context.Context) (schema.DesktopStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.desktop, nil
}

func (f *fakeBackend) StartDesktop(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	f.desktop.Running = true
	return nil
}

// plainRenderer splits content on newlines without markup handling, so
// tests can assert on raw accumulated content.
type plainRenderer struct{}

func (plainRenderer) Render(content string) []string {
	return splitLines(content)
}

func (plainRenderer) RenderFinal(content string) []string {
	return splitLines(content)
}

func splitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		}
	}
	return append(lines, content[start:])
}

// testClock provides deterministic time and captured timers.
type testClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []func()
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *testClock) After(_ time.Duration, f func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers = append(c.timers, f)
}

// fire runs and clears all captured timer callbacks.
func (c *testClock) fire() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, f := range timers {
		f()
	}
}

type testRig struct {
	svc       *Service
	sink      *sinkRecorder
	transport *fakeTransport
	backend   *fakeBackend
	clock     *testClock
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	rig := &testRig{
		sink:      &sinkRecorder{},
		transport: &fakeTransport{open: true},
		backend:   newFakeBackend(),
		clock:     newTestClock(),
	}
	rig.svc = NewService(Config{}, ServiceDeps{
		Transport: rig.transport,
		Backend:   rig.backend,
		Renderer:  plainRenderer{},
		EventSink: rig.sink,
	})
	rig.svc.now = rig.clock.Now
	rig.svc.after = rig.clock.After
	rig.svc.sleep = func(time.Duration) {}
	return rig
}

func (rig *testRig) dispatch(env schema.Envelope) {
	rig.svc.Dispatch(env)
}

// waitFetched blocks until the fake backend served a workspace read.
func (rig *testRig) waitFetched(t *testing.T) {
	t.Helper()
	select {
	case <-rig.backend.fetched:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for workspace fetch")
	}
}

// waitPreview polls until the preview snapshot satisfies cond.
func (rig *testRig) waitPreview(t *testing.T, cond func(schema.PreviewSnapshot) bool) schema.PreviewSnapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap, _ := rig.svc.Preview()
		if cond(snap) {
			return snap
		}
		time.Sleep(2 * time.Millisecond)
	}
	snap, _ := rig.svc.Preview()
	t.Fatalf("preview never reached expected state, last: %+v", snap)
	return snap
}

func TestSendMessageRejectsEmpty(t *testing.T) {
	rig := newTestRig(t)
	for _, content := range []string{"", "   ", "\n\t"} {
		if err := rig.svc.SendMessage(content, nil); err != schema.ErrEmptyMessage {
			t.Errorf("SendMessage(%q) = %v, want ErrEmptyMessage", content, err)
		}
	}
	if rig.transport.sentCount() != 0 {
		t.Fatalf("empty messages reached transport: %d sends", rig.transport.sentCount())
	}
}

func TestSendMessageCarriesSessionID(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventSessionCreated, SessionID: "sess-1"})
	if err := rig.svc.SendMessage("hello", nil); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	req, ok := rig.transport.sent[0].(schema.MessageRequest)
	if !ok {
		t.Fatalf("sent %T, want MessageRequest", rig.transport.sent[0])
	}
	if req.SessionID != "sess-1" || req.Content != "hello" || req.Type != "message" {
		t.Fatalf("unexpected request: %+v", req)
	}
}

func TestStopGenerationClosedTransportIsNoop(t *testing.T) {
	rig := newTestRig(t)
	rig.transport.open = false
	if err := rig.svc.StopGeneration(); err != nil {
		t.Fatalf("StopGeneration on closed transport: %v", err)
	}
	if rig.transport.sentCount() != 0 {
		t.Fatal("stop request queued on closed transport")
	}
}

func TestStopGenerationSendsStop(t *testing.T) {
	rig := newTestRig(t)
	if err := rig.svc.StopGeneration(); err != nil {
		t.Fatalf("StopGeneration: %v", err)
	}
	if _, ok := rig.transport.sent[0].(schema.StopRequest); !ok {
		t.Fatalf("sent %T, want StopRequest", rig.transport.sent[0])
	}
}

func TestNewSessionClearsState(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventSessionCreated, SessionID: "sess-1"})
	rig.dispatch(schema.Envelope{Type: schema.EventToolStart, Tool: "search", Input: "go"})
	rig.dispatch(schema.Envelope{Type: schema.EventDockerOutput, Output: "hi"})
	if err := rig.svc.OpenPreviewURL("example.com"); err != nil {
		t.Fatalf("OpenPreviewURL: %v", err)
	}

	rig.svc.NewSession()

	if got := rig.svc.Session().ID; got != "" {
		t.Fatalf("session id after NewSession = %q, want empty", got)
	}
	if acts := rig.svc.ToolActivities(); len(acts) != 0 {
		t.Fatalf("ledger not cleared: %d entries", len(acts))
	}
	if out := rig.svc.SandboxOutput(); len(out) != 0 {
		t.Fatalf("sandbox not cleared: %v", out)
	}
	snap, apps := rig.svc.Preview()
	if snap.Mode != schema.PreviewEmpty || len(apps) != 0 {
		t.Fatalf("preview not cleared: mode=%s apps=%d", snap.Mode, len(apps))
	}
}

func TestConnClosedFinalizesStream(t *testing.T) {
	rig := newTestRig(t)
	rig.dispatch(schema.Envelope{Type: schema.EventStreamStart})
	rig.dispatch(schema.Envelope{Type: schema.EventToken, Content: "partial"})

	rig.svc.HandleConn(schema.ConnClosed, 1)

	last := rig.sink.lastTranscript(t)
	if !last.Final {
		t.Fatal("closure did not finalize the live stream")
	}
	if last.Lines[0] != "partial" {
		t.Fatalf("finalized content = %q, want %q", last.Lines[0], "partial")
	}
}
