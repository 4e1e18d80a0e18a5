package console

import (
	"fmt"
	"strings"
	"time"

	"pkt.systems/agentdeck/schema"
)

// durTruncate rounds displayed tool durations.
const durTruncate = 100 * time.Millisecond

// Surface renders a View into terminal lines. The primary layout puts
// the transcript in a left column and the activity panels (tools,
// todos, taskbar) in a right column; below a configurable width it
// falls back to the single-column compact layout.
type Surface struct {
	theme        theme
	compactWidth int
}

// NewSurface builds a surface for the named theme.
func NewSurface(themeName string, compactWidth int) *Surface {
	if compactWidth <= 0 {
		compactWidth = 48
	}
	return &Surface{
		theme:        themeForName(themeName),
		compactWidth: compactWidth,
	}
}

// Render produces exactly height lines of at most width visible runes.
func (s *Surface) Render(view View, input string, width, height int) []string {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	if width < s.compactWidth {
		return s.renderCompact(view, input, width, height)
	}

	lines := make([]string, 0, height)
	lines = append(lines, s.renderHeader(view, width))

	bodyHeight := height - 3
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	if view.Preview.Maximized && view.Preview.Mode != schema.PreviewEmpty {
		lines = append(lines, s.renderPreviewPanel(view, width, bodyHeight)...)
	} else {
		sideWidth := width / 3
		if sideWidth > 44 {
			sideWidth = 44
		}
		mainWidth := width - sideWidth - 1
		main := s.renderTranscript(view, mainWidth, bodyHeight)
		side := s.renderSidePanel(view, sideWidth, bodyHeight)
		for i := 0; i < bodyHeight; i++ {
			lines = append(lines, padToWidth(main[i], mainWidth)+s.styled("│", s.theme.SystemFG)+side[i])
		}
	}

	lines = append(lines, s.renderStatus(view, width))
	lines = append(lines, s.renderPrompt(input, width))
	return lines
}

func (s *Surface) renderHeader(view View, width int) string {
	title := string(view.Session.ID)
	if view.Session.Title != "" {
		title = view.Session.Title
	}
	if title == "" {
		title = "new session"
	}
	conn := string(view.Conn)
	text := " agentdeck │ " + title + " │ " + conn + " "
	line := ansiBgRGB(s.theme.HeaderBG) + ansiFgRGB(s.theme.HeaderFG) + ansiBold + padToWidth(sanitizeLine(text), width)
	return trimANSIToWidth(line, width) + ansiReset
}

// renderTranscript fits scrollback, live response and active reasoning
// into height lines, keeping the tail.
func (s *Surface) renderTranscript(view View, width, height int) []string {
	var all []string
	for _, raw := range view.Scrollback {
		all = append(all, s.transcriptLine(raw, width)...)
	}
	if view.ThinkingActive && len(view.Thinking) > 0 {
		for _, raw := range view.Thinking {
			for _, wrapped := range wrapPlain(raw, width) {
				all = append(all, ansiItalic+ansiFgRGB(s.theme.ThinkingFG)+wrapped+ansiReset)
			}
		}
	}
	for _, raw := range view.Live {
		all = append(all, s.transcriptLine(raw, width)...)
	}
	return tailFit(all, height)
}

// transcriptLine wraps one pre-rendered line. Lines carrying CSI
// styling from the markdown renderer pass through trimmed instead of
// re-wrapped; other escape sequences (OSC title sets, cursor moves
// smuggled in by tool output) are stripped first.
func (s *Surface) transcriptLine(raw string, width int) []string {
	cleaned := stripNonSGR(raw)
	if strings.ContainsRune(cleaned, 0x1b) {
		return []string{trimANSIToWidth(cleaned, width)}
	}
	return wrapPlain(cleaned, width)
}

func (s *Surface) renderSidePanel(view View, width, height int) []string {
	var lines []string
	lines = append(lines, s.panelTitle("tools", width))
	lines = append(lines, s.renderToolLines(view.Tools, width)...)
	if len(view.Todos) > 0 {
		lines = append(lines, s.panelTitle("todo", width))
		lines = append(lines, s.renderTodoLines(view.Todos, width)...)
	}
	if len(view.Apps) > 0 || view.Preview.Mode != schema.PreviewEmpty {
		lines = append(lines, s.panelTitle("preview", width))
		lines = append(lines, s.renderPreviewSummary(view, width)...)
	}
	if len(view.Sandbox) > 0 {
		lines = append(lines, s.panelTitle("sandbox", width))
		for _, raw := range tailFit(view.Sandbox, 8) {
			lines = append(lines, s.styled(trimANSIToWidth(sanitizeLine(raw), width), s.theme.SandboxFG))
		}
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return tailPad(lines, height, width)
}

func (s *Surface) renderToolLines(tools []schema.ToolActivity, width int) []string {
	if len(tools) == 0 {
		return []string{s.styled(" none", s.theme.SystemFG)}
	}
	shown := tools
	if len(shown) > 6 {
		shown = shown[len(shown)-6:]
	}
	lines := make([]string, 0, len(shown))
	for _, act := range shown {
		marker := "⋯"
		color := s.theme.ToolRunningFG
		if act.Status == schema.ToolCompleted {
			marker = "✓"
			color = s.theme.ToolDoneFG
		}
		label := fmt.Sprintf(" %s %s", marker, act.Tool)
		if act.Status == schema.ToolCompleted && act.Duration() > 0 {
			label += " (" + act.Duration().Truncate(durTruncate).String() + ")"
		}
		lines = append(lines, s.styled(trimANSIToWidth(sanitizeLine(label), width), color))
	}
	return lines
}

func (s *Surface) renderTodoLines(todos []schema.TodoItem, width int) []string {
	lines := make([]string, 0, len(todos))
	for _, todo := range todos {
		if todo.Completed {
			lines = append(lines, s.styled(trimANSIToWidth(" [x] "+sanitizeLine(todo.Text), width), s.theme.TodoDoneFG))
		} else {
			lines = append(lines, trimANSIToWidth(" [ ] "+sanitizeLine(todo.Text), width))
		}
	}
	return lines
}

func (s *Surface) renderPreviewSummary(view View, width int) []string {
	var lines []string
	if view.Preview.Mode != schema.PreviewEmpty && !view.Preview.Minimized {
		label := fmt.Sprintf(" %s %s [%s]", modeGlyph(view.Preview.Mode), view.Preview.Caption, view.Preview.Status)
		lines = append(lines, trimANSIToWidth(sanitizeLine(label), width))
	}
	for _, app := range view.Apps {
		state := "open"
		if app.Minimized {
			state = "min"
		}
		label := fmt.Sprintf("  %s %s (%s)", app.Icon, app.Name, state)
		lines = append(lines, s.styled(trimANSIToWidth(sanitizeLine(label), width), s.theme.TaskbarFG))
	}
	return lines
}

// renderPreviewPanel is the maximized full-body preview.
func (s *Surface) renderPreviewPanel(view View, width, height int) []string {
	var lines []string
	caption := fmt.Sprintf("%s %s [%s]", modeGlyph(view.Preview.Mode), view.Preview.Caption, view.Preview.Status)
	lines = append(lines, s.styled(trimANSIToWidth(sanitizeLine(caption), width), s.theme.PanelTitleFG))
	switch view.Preview.Mode {
	case schema.PreviewDocument:
		for _, raw := range strings.Split(view.Preview.Document, "\n") {
			lines = append(lines, trimANSIToWidth(sanitizeLine(raw), width))
			if len(lines) >= height {
				break
			}
		}
	case schema.PreviewWeb, schema.PreviewDesktop:
		lines = append(lines, s.styled(" open in a browser: "+view.Preview.URL, s.theme.SystemFG))
	}
	return tailPad(lines[:min(len(lines), height)], height, width)
}

func (s *Surface) renderStatus(view View, width int) string {
	var parts []string
	switch view.Status.Phase {
	case schema.StatusThinking:
		parts = append(parts, "thinking…")
	case schema.StatusTool:
		parts = append(parts, "tool: "+view.Status.Message)
	case schema.StatusSwitching:
		parts = append(parts, "switching model: "+view.Status.Message)
	default:
		parts = append(parts, "ready")
	}
	if view.Status.Model != "" {
		parts = append(parts, view.Status.Model)
	}
	if view.Conn != schema.ConnOpen {
		parts = append(parts, string(view.Conn))
	}
	line := " " + strings.Join(parts, " │ ")
	return s.styled(trimANSIToWidth(sanitizeLine(line), width), s.theme.StatusFG)
}

func (s *Surface) renderPrompt(input string, width int) string {
	line := "> " + sanitizeLine(input)
	return ansiBold + ansiFgRGB(s.theme.PromptFG) + trimANSIToWidth(line, width) + ansiReset
}

func (s *Surface) panelTitle(title string, width int) string {
	return ansiBold + ansiFgRGB(s.theme.PanelTitleFG) + trimANSIToWidth(" "+title, width) + ansiReset
}

func (s *Surface) styled(text string, color rgb) string {
	if text == "" {
		return text
	}
	return ansiFgRGB(color) + text + ansiReset
}

func modeGlyph(mode schema.PreviewMode) string {
	switch mode {
	case schema.PreviewWeb:
		return "🌐"
	case schema.PreviewDocument:
		return "📄"
	case schema.PreviewDesktop:
		return "🖥"
	default:
		return " "
	}
}

// tailFit keeps the last height lines, padding with blanks on top when
// there are fewer.
func tailFit(lines []string, height int) []string {
	if height <= 0 {
		return nil
	}
	if len(lines) > height {
		lines = lines[len(lines)-height:]
	}
	out := make([]string, 0, height)
	for i := len(lines); i < height; i++ {
		out = append(out, "")
	}
	return append(out, lines...)
}

// tailPad truncates to height and pads every line to width.
func tailPad(lines []string, height, width int) []string {
	if len(lines) > height {
		lines = lines[:height]
	}
	out := make([]string, 0, height)
	for _, line := range lines {
		out = append(out, padToWidth(line, width))
	}
	for len(out) < height {
		out = append(out, padToWidth("", width))
	}
	return out
}
