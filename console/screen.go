package console

import (
	"fmt"
	"io"
	"strings"
)

// screen paints full frames into the alternate screen buffer. Because
// token streaming repaints on every token, Render diffs against the
// previously painted frame and rewrites only the rows that changed.
type screen struct {
	out  io.Writer
	prev []string
}

func newScreen(out io.Writer) *screen {
	return &screen{out: out}
}

func (s *screen) EnterAltScreen() {
	s.prev = nil
	_, _ = io.WriteString(s.out, "\x1b[?1049h\x1b[H\x1b[2J")
}

func (s *screen) ExitAltScreen() {
	s.prev = nil
	_, _ = io.WriteString(s.out, "\x1b[?1049l\x1b[?25h")
}

// Render paints one frame and parks the cursor. Rows identical to the
// previous frame are skipped; rows past the new frame's end are erased.
func (s *screen) Render(lines []string, cursorRow, cursorCol int) error {
	if cursorRow < 1 {
		cursorRow = 1
	}
	if cursorCol < 1 {
		cursorCol = 1
	}
	var b strings.Builder
	b.WriteString("\x1b[?25l")
	for i, line := range lines {
		if i < len(s.prev) && s.prev[i] == line {
			continue
		}
		fmt.Fprintf(&b, "\x1b[%d;1H\x1b[2K", i+1)
		b.WriteString(line)
	}
	for i := len(lines); i < len(s.prev); i++ {
		fmt.Fprintf(&b, "\x1b[%d;1H\x1b[2K", i+1)
	}
	fmt.Fprintf(&b, "\x1b[%d;%dH", cursorRow, cursorCol)
	b.WriteString("\x1b[?25h")

	s.prev = append(s.prev[:0], lines...)
	_, err := io.WriteString(s.out, b.String())
	return err
}
