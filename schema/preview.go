package schema

import "time"

// PreviewMode identifies what the live-preview viewport shows.
type PreviewMode string

const (
	// PreviewEmpty indicates nothing is shown.
	PreviewEmpty PreviewMode = "empty"
	// PreviewWeb indicates an embedded web page.
	PreviewWeb PreviewMode = "web"
	// PreviewDocument indicates a static document.
	PreviewDocument PreviewMode = "document"
	// PreviewDesktop indicates a remote desktop stream.
	PreviewDesktop PreviewMode = "desktop"
)

// PreviewStatus describes the viewport's load state.
type PreviewStatus string

const (
	// PreviewLoading indicates content is loading.
	PreviewLoading PreviewStatus = "loading"
	// PreviewConnected indicates content loaded, or the bounded load
	// wait elapsed. A heuristic liveness signal, not a completion ack.
	PreviewConnected PreviewStatus = "connected"
	// PreviewIdle indicates the viewport is empty or minimized.
	PreviewIdle PreviewStatus = "idle"
)

// AppIDForMode derives the taskbar app id for a preview mode. One app
// exists per mode kind; reopening the same kind refreshes that entry.
func AppIDForMode(mode PreviewMode) AppID {
	switch mode {
	case PreviewWeb:
		return "app_web"
	case PreviewDocument:
		return "app_document"
	case PreviewDesktop:
		return "app_desktop"
	default:
		return ""
	}
}

// TaskbarApp is a minimizable record of one previously- or
// currently-shown preview mode.
type TaskbarApp struct {
	ID        AppID       `json:"id"`
	Name      string      `json:"name"`
	Icon      string      `json:"icon,omitempty"`
	Kind      PreviewMode `json:"kind"`
	Minimized bool        `json:"minimized"`
}

// PreviewSnapshot is a read-only view of the preview state machine.
type PreviewSnapshot struct {
	Mode          PreviewMode   `json:"mode"`
	URL           string        `json:"url,omitempty"`
	Document      string        `json:"document,omitempty"`
	DocumentPath  string        `json:"document_path,omitempty"`
	Caption       string        `json:"caption,omitempty"`
	Status        PreviewStatus `json:"status"`
	Maximized     bool          `json:"maximized"`
	Minimized     bool          `json:"minimized"`
	LastUpdatedAt time.Time     `json:"last_updated_at,omitzero"`
}
