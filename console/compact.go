package console

import (
	"fmt"

	"pkt.systems/agentdeck/schema"
)

// renderCompact is the single-column narrow layout: header, transcript
// tail, a one-line tool summary, status and prompt. Side panels are
// collapsed into summaries so the transcript keeps most of the rows.
func (s *Surface) renderCompact(view View, input string, width, height int) []string {
	lines := make([]string, 0, height)
	lines = append(lines, s.renderHeader(view, width))

	extra := 0
	toolLine := s.compactToolLine(view, width)
	if toolLine != "" {
		extra++
	}
	previewLine := s.compactPreviewLine(view, width)
	if previewLine != "" {
		extra++
	}

	bodyHeight := height - 3 - extra
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	lines = append(lines, s.renderTranscript(view, width, bodyHeight)...)
	if toolLine != "" {
		lines = append(lines, toolLine)
	}
	if previewLine != "" {
		lines = append(lines, previewLine)
	}
	lines = append(lines, s.renderStatus(view, width))
	lines = append(lines, s.renderPrompt(input, width))
	return lines
}

func (s *Surface) compactToolLine(view View, width int) string {
	running := 0
	last := ""
	for _, act := range view.Tools {
		if act.Status == schema.ToolRunning {
			running++
			last = act.Tool
		}
	}
	if running == 0 {
		return ""
	}
	label := fmt.Sprintf(" ⋯ %s", last)
	if running > 1 {
		label = fmt.Sprintf(" ⋯ %s (+%d)", last, running-1)
	}
	return s.styled(trimANSIToWidth(sanitizeLine(label), width), s.theme.ToolRunningFG)
}

func (s *Surface) compactPreviewLine(view View, width int) string {
	if view.Preview.Mode == schema.PreviewEmpty || view.Preview.Minimized {
		return ""
	}
	label := fmt.Sprintf(" %s %s [%s]", modeGlyph(view.Preview.Mode), view.Preview.Caption, view.Preview.Status)
	return s.styled(trimANSIToWidth(sanitizeLine(label), width), s.theme.TaskbarFG)
}
