package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"pkt.systems/agentdeck/schema"
	"pkt.systems/pslog"
)

// Controller is the control surface the console drives. The core sync
// service satisfies it.
type Controller interface {
	SendMessage(content string, attachments []schema.Attachment) error
	StopGeneration() error
	NewSession()
	SwitchSession(info schema.SessionInfo) error
	Sessions(ctx context.Context) ([]schema.SessionInfo, error)
	DeleteSession(ctx context.Context, id schema.SessionID) error
	OpenPreviewURL(raw string) error
	MinimizePreview()
	RestoreApp(id schema.AppID) error
	ClosePreview()
	ToggleMaximize()
}

// AppOptions configures the interactive console loop.
type AppOptions struct {
	Controller Controller
	Mirror     *Mirror
	Theme      string
	// CompactWidth is the threshold below which the single-column
	// layout is used.
	CompactWidth int
	// PanelCloseDelay keeps a closed preview panel on screen briefly so
	// the layout does not snap while the user is looking at it.
	PanelCloseDelay time.Duration
	Input           io.Reader
	Output          io.Writer
	// Size reports the terminal dimensions. Polled on redraw.
	Size   func() (width, height int, err error)
	Logger pslog.Logger
}

// App runs the interactive console: it folds keystrokes into an input
// line, executes slash commands against the controller and redraws the
// surface whenever the mirror changes.
type App struct {
	ctrl    Controller
	mirror  *Mirror
	surface *Surface
	screen  *screen
	input   io.Reader
	size    func() (int, int, error)
	log     pslog.Logger

	panelCloseDelay time.Duration

	redraw chan struct{}

	// Loop-local state, touched only from Run.
	line        []rune
	prevPreview schema.PreviewSnapshot
	heldPreview schema.PreviewSnapshot
	holdUntil   time.Time
}

// NewApp wires the console loop. The returned app's RequestRedraw is
// normally the mirror's notify callback.
func NewApp(opts AppOptions) (*App, error) {
	if opts.Controller == nil {
		return nil, errors.New("console controller is required")
	}
	if opts.Mirror == nil {
		return nil, errors.New("console mirror is required")
	}
	if opts.Output == nil {
		return nil, errors.New("console output is required")
	}
	log := opts.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	size := opts.Size
	if size == nil {
		size = func() (int, int, error) { return 80, 24, nil }
	}
	return &App{
		ctrl:            opts.Controller,
		mirror:          opts.Mirror,
		surface:         NewSurface(opts.Theme, opts.CompactWidth),
		screen:          newScreen(opts.Output),
		input:           opts.Input,
		size:            size,
		log:             log,
		panelCloseDelay: opts.PanelCloseDelay,
		redraw:          make(chan struct{}, 1),
	}, nil
}

// RequestRedraw schedules a repaint. Safe from any goroutine; multiple
// requests coalesce into one.
func (a *App) RequestRedraw() {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

// Run blocks until the context ends or the user quits.
func (a *App) Run(ctx context.Context) error {
	a.screen.EnterAltScreen()
	defer a.screen.ExitAltScreen()

	keys := make(chan byte, 64)
	if a.input != nil {
		go func() {
			defer close(keys)
			buf := make([]byte, 256)
			for {
				n, err := a.input.Read(buf)
				for i := 0; i < n; i++ {
					select {
					case keys <- buf[i]:
					case <-ctx.Done():
						return
					}
				}
				if err != nil {
					return
				}
			}
		}()
	}

	// Resize is polled; raw-mode stdin gives no SIGWINCH channel that
	// is portable across the supported platforms.
	resize := time.NewTicker(500 * time.Millisecond)
	defer resize.Stop()

	a.paint()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.redraw:
			a.paint()
		case <-resize.C:
			a.paint()
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			quit, err := a.handleKey(ctx, key, keys)
			if err != nil {
				a.log.Warn("console command failed", "err", err)
				a.mirror.Notice("error: " + err.Error())
			}
			if quit {
				return nil
			}
			a.paint()
		}
	}
}

func (a *App) handleKey(ctx context.Context, key byte, keys <-chan byte) (bool, error) {
	switch key {
	case 0x03: // ctrl-c stops generation, never the console
		return false, a.ctrl.StopGeneration()
	case 0x04: // ctrl-d quits
		return true, nil
	case '\r', '\n':
		line := strings.TrimSpace(string(a.line))
		a.line = a.line[:0]
		if line == "" {
			return false, nil
		}
		return a.execLine(ctx, line)
	case 0x7f, 0x08: // backspace
		if len(a.line) > 0 {
			a.line = a.line[:len(a.line)-1]
		}
		return false, nil
	case 0x1b: // swallow escape sequences from arrow keys etc.
		drainEscape(keys)
		return false, nil
	default:
		if key >= 0x20 {
			a.line = append(a.line, rune(key))
		}
		return false, nil
	}
}

// execLine runs one submitted line: slash commands drive the
// controller, anything else goes to the agent.
func (a *App) execLine(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		a.mirror.Notice("> " + line)
		return false, a.ctrl.SendMessage(line, nil)
	}
	fields := strings.Fields(line)
	command, args := fields[0], fields[1:]
	switch command {
	case "/quit", "/q":
		return true, nil
	case "/stop":
		return false, a.ctrl.StopGeneration()
	case "/new":
		a.ctrl.NewSession()
		return false, nil
	case "/sessions":
		sessions, err := a.ctrl.Sessions(ctx)
		if err != nil {
			return false, err
		}
		if len(sessions) == 0 {
			a.mirror.Notice("no stored sessions")
			return false, nil
		}
		lines := make([]string, 0, len(sessions))
		for _, s := range sessions {
			label := fmt.Sprintf("%s  %s", s.ID, s.Title)
			if s.MessageCount > 0 {
				label += fmt.Sprintf(" (%d messages)", s.MessageCount)
			}
			lines = append(lines, label)
		}
		a.mirror.Notice(lines...)
		return false, nil
	case "/switch":
		if len(args) != 1 {
			return false, errors.New("usage: /switch <session-id>")
		}
		return false, a.ctrl.SwitchSession(schema.SessionInfo{ID: schema.SessionID(args[0])})
	case "/delete":
		if len(args) != 1 {
			return false, errors.New("usage: /delete <session-id>")
		}
		return false, a.ctrl.DeleteSession(ctx, schema.SessionID(args[0]))
	case "/open":
		if len(args) != 1 {
			return false, errors.New("usage: /open <url>")
		}
		return false, a.ctrl.OpenPreviewURL(args[0])
	case "/close":
		a.ctrl.ClosePreview()
		return false, nil
	case "/min":
		a.ctrl.MinimizePreview()
		return false, nil
	case "/restore":
		if len(args) != 1 {
			return false, errors.New("usage: /restore <app-id>")
		}
		return false, a.ctrl.RestoreApp(schema.AppID(args[0]))
	case "/max":
		a.ctrl.ToggleMaximize()
		return false, nil
	case "/help":
		a.mirror.Notice(
			"/new /sessions /switch <id> /delete <id>",
			"/open <url> /close /min /restore <app-id> /max",
			"/stop /quit  (ctrl-c stops generation, ctrl-d quits)",
		)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %s", command)
	}
}

func (a *App) paint() {
	width, height, err := a.size()
	if err != nil || width <= 0 || height <= 0 {
		width, height = 80, 24
	}
	view := a.mirror.View()
	view.Preview = a.holdClosedPanel(view.Preview)
	lines := a.surface.Render(view, string(a.line), width, height)
	if err := a.screen.Render(lines, height, len(a.line)+3); err != nil {
		a.log.Warn("console paint failed", "err", err)
	}
}

// holdClosedPanel keeps the last preview on screen for the configured
// delay after it closes, then lets the layout collapse.
func (a *App) holdClosedPanel(current schema.PreviewSnapshot) schema.PreviewSnapshot {
	now := time.Now()
	if current.Mode != schema.PreviewEmpty {
		a.prevPreview = current
		a.heldPreview = schema.PreviewSnapshot{}
		return current
	}
	if a.prevPreview.Mode != schema.PreviewEmpty && a.panelCloseDelay > 0 {
		a.heldPreview = a.prevPreview
		a.heldPreview.Status = schema.PreviewIdle
		a.holdUntil = now.Add(a.panelCloseDelay)
		a.prevPreview = schema.PreviewSnapshot{}
		time.AfterFunc(a.panelCloseDelay, a.RequestRedraw)
	}
	if a.heldPreview.Mode != schema.PreviewEmpty && now.Before(a.holdUntil) {
		return a.heldPreview
	}
	a.heldPreview = schema.PreviewSnapshot{}
	return current
}

func drainEscape(keys <-chan byte) {
	for {
		select {
		case b, ok := <-keys:
			if !ok {
				return
			}
			// CSI final bytes end the sequence.
			if b >= 0x40 && b <= 0x7e && b != '[' {
				return
			}
		case <-time.After(10 * time.Millisecond):
			return
		}
	}
}
