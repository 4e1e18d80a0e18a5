package core

import (
	"context"
	"fmt"
	"strconv"

	"pkt.systems/agentdeck/schema"
)

// previewManager is the live-preview/window state machine: one of
// {empty, web, document, desktop} in a single viewport, plus a taskbar
// of minimizable apps keyed by mode kind.
type previewManager struct {
	mode         schema.PreviewMode
	url          string
	document     string
	documentPath string
	caption      string
	status       schema.PreviewStatus
	maximized    bool
	minimized    bool
	apps         []schema.TaskbarApp
	// loadSeq invalidates pending load/settle timers whenever content
	// changes underneath them.
	loadSeq int
}

func newPreviewManager() *previewManager {
	return &previewManager{
		mode:   schema.PreviewEmpty,
		status: schema.PreviewIdle,
	}
}

// resetLocked clears the viewport and the taskbar. Lock held by the
// caller via Service.mu.
func (p *previewManager) resetLocked() {
	p.loadSeq++
	p.mode = schema.PreviewEmpty
	p.url = ""
	p.document = ""
	p.documentPath = ""
	p.caption = ""
	p.status = schema.PreviewIdle
	p.maximized = false
	p.minimized = false
	p.apps = nil
}

// OpenPreviewURL shows a web preview from direct user URL entry. The
// URL is normalized first; an invalid URL returns ErrInvalidURL with no
// state change.
func (s *Service) OpenPreviewURL(raw string) error {
	normalized, err := schema.NormalizeURL(raw)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showWeb(normalized)
	return nil
}

// MinimizePreview hides the viewport but keeps mode and content so the
// taskbar can restore them.
func (s *Service) MinimizePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview.mode == schema.PreviewEmpty || s.preview.minimized {
		return
	}
	s.preview.minimized = true
	s.preview.status = schema.PreviewIdle
	s.setAppMinimized(schema.AppIDForMode(s.preview.mode), true)
	s.emitPreview()
}

// RestoreApp re-opens a taskbar app with its last known content. The
// taskbar entry's Name holds that content (URL or document path), so a
// restore after the viewport switched to another mode still reloads
// what the app last showed.
func (s *Service) RestoreApp(id schema.AppID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var app *schema.TaskbarApp
	for i := range s.preview.apps {
		if s.preview.apps[i].ID == id {
			app = &s.preview.apps[i]
			break
		}
	}
	if app == nil {
		return schema.ErrAppNotFound
	}
	switch app.Kind {
	case schema.PreviewWeb:
		s.showWeb(app.Name)
	case schema.PreviewDocument:
		s.showDocument(app.Name)
	case schema.PreviewDesktop:
		s.showDesktop()
	}
	return nil
}

// ClosePreview removes the current mode's taskbar app and returns the
// viewport to empty.
func (s *Service) ClosePreview() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.preview.mode == schema.PreviewEmpty {
		return
	}
	s.removeApp(schema.AppIDForMode(s.preview.mode))
	s.preview.loadSeq++
	s.preview.mode = schema.PreviewEmpty
	s.preview.url = ""
	s.preview.document = ""
	s.preview.documentPath = ""
	s.preview.caption = ""
	s.preview.minimized = false
	s.preview.status = schema.PreviewIdle
	s.emitPreview()
}

// ToggleMaximize flips the fullscreen presentation of the viewport
// container. Mode is unchanged.
func (s *Service) ToggleMaximize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview.maximized = !s.preview.maximized
	s.emitPreview()
}

// Preview returns the current preview snapshot and taskbar.
func (s *Service) Preview() (schema.PreviewSnapshot, []schema.TaskbarApp) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.previewSnapshotLocked(), s.appsLocked()
}

// showWeb loads a normalized absolute URL into the viewport.
// Lock held.
func (s *Service) showWeb(url string) {
	s.preview.loadSeq++
	seq := s.preview.loadSeq
	s.preview.mode = schema.PreviewWeb
	s.preview.url = url
	s.preview.document = ""
	s.preview.documentPath = ""
	s.preview.caption = url
	s.preview.status = schema.PreviewLoading
	s.preview.minimized = false
	s.upsertApp(schema.PreviewWeb, url)
	s.armLoadTimeout(seq)
	s.emitPreview()
	if s.titles != nil {
		go s.probeTitle(seq, url)
	}
}

// showDocument loads a document blob fetched from the workspace.
// Lock held.
func (s *Service) showDocument(path string) {
	s.preview.loadSeq++
	seq := s.preview.loadSeq
	s.preview.mode = schema.PreviewDocument
	s.preview.url = ""
	s.preview.document = ""
	s.preview.documentPath = path
	s.preview.caption = path
	s.preview.status = schema.PreviewLoading
	s.preview.minimized = false
	s.upsertApp(schema.PreviewDocument, path)
	s.armLoadTimeout(seq)
	s.emitPreview()
	go s.fetchDocument(seq, path)
}

// showDesktop probes the remote-desktop bridge, starting it when
// needed, then loads the fixed local bridge URL. Lock held.
func (s *Service) showDesktop() {
	s.preview.loadSeq++
	seq := s.preview.loadSeq
	s.preview.mode = schema.PreviewDesktop
	s.preview.url = ""
	s.preview.document = ""
	s.preview.documentPath = ""
	s.preview.caption = "Remote desktop"
	s.preview.status = schema.PreviewLoading
	s.preview.minimized = false
	s.upsertApp(schema.PreviewDesktop, "Remote desktop")
	s.armLoadTimeout(seq)
	s.emitPreview()
	go s.connectDesktop(seq)
}

func (s *Service) fetchDocument(seq int, path string) {
	content, err := s.backend.ReadWorkspaceFile(context.Background(), path)
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.preview.loadSeq {
		return
	}
	if err != nil {
		s.log.Warn("document fetch failed", "path", path, "err", err)
		s.preview.caption = fmt.Sprintf("failed to load %s", path)
		s.preview.status = schema.PreviewConnected
		s.emitPreview()
		return
	}
	s.preview.document = content
	s.preview.status = schema.PreviewConnected
	s.emitPreview()
}

func (s *Service) connectDesktop(seq int) {
	ctx := context.Background()
	status, err := s.backend.DesktopStatus(ctx)
	if err == nil && !status.Running {
		if err := s.backend.StartDesktop(ctx); err != nil {
			s.log.Warn("desktop bridge start failed", "err", err)
		} else {
			// The bridge reports nothing on readiness; wait the fixed
			// settle delay before loading it.
			s.sleep(s.timeouts.desktopSettle)
		}
	} else if err != nil {
		s.log.Warn("desktop bridge probe failed", "err", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.preview.loadSeq {
		return
	}
	s.preview.url = s.desktopBridgeURL
	s.emitPreview()
}

func (s *Service) probeTitle(seq int, url string) {
	title, err := s.titles.Title(context.Background(), url)
	if err != nil || title == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.preview.loadSeq || s.preview.mode != schema.PreviewWeb {
		return
	}
	s.preview.caption = title
	s.emitPreview()
}

// armLoadTimeout forces the status to connected after the bounded load
// wait. A heuristic liveness signal only; real load completion is not
// observable from here.
func (s *Service) armLoadTimeout(seq int) {
	s.after(s.timeouts.loadTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != s.preview.loadSeq {
			return
		}
		if s.preview.status == schema.PreviewLoading {
			s.preview.status = schema.PreviewConnected
			s.emitPreview()
		}
	})
}

func (s *Service) upsertApp(kind schema.PreviewMode, name string) {
	id := schema.AppIDForMode(kind)
	for i := range s.preview.apps {
		if s.preview.apps[i].ID == id {
			s.preview.apps[i].Name = name
			s.preview.apps[i].Minimized = false
			return
		}
	}
	s.preview.apps = append(s.preview.apps, schema.TaskbarApp{
		ID:        id,
		Name:      name,
		Icon:      appIcon(kind),
		Kind:      kind,
		Minimized: false,
	})
}

func (s *Service) setAppMinimized(id schema.AppID, minimized bool) {
	for i := range s.preview.apps {
		if s.preview.apps[i].ID == id {
			s.preview.apps[i].Minimized = minimized
			return
		}
	}
}

func (s *Service) removeApp(id schema.AppID) {
	for i := range s.preview.apps {
		if s.preview.apps[i].ID == id {
			s.preview.apps = append(s.preview.apps[:i], s.preview.apps[i+1:]...)
			return
		}
	}
}

func (s *Service) appsLocked() []schema.TaskbarApp {
	if len(s.preview.apps) == 0 {
		return nil
	}
	return append([]schema.TaskbarApp(nil), s.preview.apps...)
}

func (s *Service) previewSnapshotLocked() schema.PreviewSnapshot {
	return schema.PreviewSnapshot{
		Mode:          s.preview.mode,
		URL:           s.preview.url,
		Document:      s.preview.document,
		DocumentPath:  s.preview.documentPath,
		Caption:       s.preview.caption,
		Status:        s.preview.status,
		Maximized:     s.preview.maximized,
		Minimized:     s.preview.minimized,
		LastUpdatedAt: s.previewUpdatedAt,
	}
}

func (s *Service) emitPreview() {
	s.previewUpdatedAt = s.now()
	s.sink.OnPreview(schema.PreviewEvent{
		Snapshot: s.previewSnapshotLocked(),
		Apps:     s.appsLocked(),
	})
}

func appIcon(kind schema.PreviewMode) string {
	switch kind {
	case schema.PreviewWeb:
		return "🌐"
	case schema.PreviewDocument:
		return "📄"
	case schema.PreviewDesktop:
		return "🖥"
	default:
		return ""
	}
}

func serverURL(port int) string {
	return "http://localhost:" + strconv.Itoa(port)
}
