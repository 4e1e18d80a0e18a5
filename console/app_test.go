package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"pkt.systems/agentdeck/schema"
)

type fakeController struct {
	sent      []string
	stopped   int
	newCalls  int
	switched  []schema.SessionID
	deleted   []schema.SessionID
	opened    []string
	closed    int
	minimized int
	restored  []schema.AppID
	maximized int
	sessions  []schema.SessionInfo
}

func (f *fakeController) SendMessage(content string, _ []schema.Attachment) error {
	f.sent = append(f.sent, content)
	return nil
}

func (f *fakeController) StopGeneration() error {
	f.stopped++
	return nil
}

func (f *fakeController) NewSession() { f.newCalls++ }

func (f *fakeController) SwitchSession(info schema.SessionInfo) error {
	f.switched = append(f.switched, info.ID)
	return nil
}

func (f *fakeController) Sessions(context.Context) ([]schema.SessionInfo, error) {
	return f.sessions, nil
}

func (f *fakeController) DeleteSession(_ context.Context, id schema.SessionID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeController) OpenPreviewURL(raw string) error {
	f.opened = append(f.opened, raw)
	return nil
}

func (f *fakeController) MinimizePreview()                 { f.minimized++ }
func (f *fakeController) RestoreApp(id schema.AppID) error { f.restored = append(f.restored, id); return nil }
func (f *fakeController) ClosePreview()                    { f.closed++ }
func (f *fakeController) ToggleMaximize()                  { f.maximized++ }

func newTestApp(t *testing.T) (*App, *fakeController, *Mirror) {
	t.Helper()
	ctrl := &fakeController{}
	mirror := NewMirror(MirrorOptions{})
	app, err := NewApp(AppOptions{
		Controller: ctrl,
		Mirror:     mirror,
		Output:     &strings.Builder{},
	})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, ctrl, mirror
}

func TestExecLinePlainTextSendsMessage(t *testing.T) {
	app, ctrl, mirror := newTestApp(t)
	quit, err := app.execLine(context.Background(), "hello agent")
	if err != nil || quit {
		t.Fatalf("execLine: quit=%v err=%v", quit, err)
	}
	if len(ctrl.sent) != 1 || ctrl.sent[0] != "hello agent" {
		t.Fatalf("sent = %v", ctrl.sent)
	}
	view := mirror.View()
	if len(view.Scrollback) == 0 || view.Scrollback[0] != "> hello agent" {
		t.Fatalf("no local echo: %v", view.Scrollback)
	}
}

func TestExecLineCommands(t *testing.T) {
	app, ctrl, _ := newTestApp(t)
	ctx := context.Background()

	lines := []string{
		"/new",
		"/stop",
		"/switch sess-2",
		"/delete sess-3",
		"/open example.com",
		"/min",
		"/restore app_web",
		"/max",
		"/close",
	}
	for _, line := range lines {
		if quit, err := app.execLine(ctx, line); err != nil || quit {
			t.Fatalf("%q: quit=%v err=%v", line, quit, err)
		}
	}

	if ctrl.newCalls != 1 || ctrl.stopped != 1 || ctrl.minimized != 1 || ctrl.maximized != 1 || ctrl.closed != 1 {
		t.Fatalf("controller calls = %+v", ctrl)
	}
	if len(ctrl.switched) != 1 || ctrl.switched[0] != "sess-2" {
		t.Fatalf("switched = %v", ctrl.switched)
	}
	if len(ctrl.deleted) != 1 || ctrl.deleted[0] != "sess-3" {
		t.Fatalf("deleted = %v", ctrl.deleted)
	}
	if len(ctrl.opened) != 1 || ctrl.opened[0] != "example.com" {
		t.Fatalf("opened = %v", ctrl.opened)
	}
	if len(ctrl.restored) != 1 || ctrl.restored[0] != "app_web" {
		t.Fatalf("restored = %v", ctrl.restored)
	}
}

func TestExecLineQuit(t *testing.T) {
	app, _, _ := newTestApp(t)
	for _, line := range []string{"/quit", "/q"} {
		quit, err := app.execLine(context.Background(), line)
		if err != nil || !quit {
			t.Fatalf("%q: quit=%v err=%v", line, quit, err)
		}
	}
}

func TestExecLineUnknownCommand(t *testing.T) {
	app, ctrl, _ := newTestApp(t)
	_, err := app.execLine(context.Background(), "/frobnicate")
	if err == nil {
		t.Fatal("unknown command accepted")
	}
	if len(ctrl.sent) != 0 {
		t.Fatal("unknown command sent as message")
	}
}

func TestExecLineUsageErrors(t *testing.T) {
	app, _, _ := newTestApp(t)
	for _, line := range []string{"/switch", "/delete", "/open", "/restore", "/switch a b"} {
		if _, err := app.execLine(context.Background(), line); err == nil {
			t.Errorf("%q: expected usage error", line)
		}
	}
}

func TestExecLineSessionsListsIntoScrollback(t *testing.T) {
	app, ctrl, mirror := newTestApp(t)
	ctrl.sessions = []schema.SessionInfo{
		{ID: "sess-1", Title: "first", MessageCount: 4},
		{ID: "sess-2", Title: "second"},
	}
	if _, err := app.execLine(context.Background(), "/sessions"); err != nil {
		t.Fatalf("execLine: %v", err)
	}
	joined := strings.Join(mirror.View().Scrollback, "\n")
	if !strings.Contains(joined, "sess-1") || !strings.Contains(joined, "(4 messages)") {
		t.Fatalf("scrollback = %q", joined)
	}
}

func TestHoldClosedPanelKeepsPreviewBriefly(t *testing.T) {
	app, _, _ := newTestApp(t)
	app.panelCloseDelay = 50 * time.Millisecond

	open := schema.PreviewSnapshot{Mode: schema.PreviewWeb, URL: "https://example.com", Status: schema.PreviewConnected}
	if got := app.holdClosedPanel(open); got.Mode != schema.PreviewWeb {
		t.Fatalf("open panel replaced: %+v", got)
	}

	empty := schema.PreviewSnapshot{Mode: schema.PreviewEmpty, Status: schema.PreviewIdle}
	held := app.holdClosedPanel(empty)
	if held.Mode != schema.PreviewWeb {
		t.Fatalf("panel collapsed immediately: %+v", held)
	}

	time.Sleep(60 * time.Millisecond)
	if got := app.holdClosedPanel(empty); got.Mode != schema.PreviewEmpty {
		t.Fatalf("panel still held after delay: %+v", got)
	}
}

func TestNewAppValidation(t *testing.T) {
	_, err := NewApp(AppOptions{})
	if err == nil {
		t.Fatal("NewApp accepted missing dependencies")
	}
}
