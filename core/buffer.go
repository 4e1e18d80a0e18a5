package core

// buffer stores scrollback lines with a cap. Used for sandbox output;
// oldest lines are evicted once the cap is reached.
type buffer struct {
	lines    []string
	maxLines int
}

const defaultMaxLines = 2000

func newBuffer(maxLines int) *buffer {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}
	return &buffer{maxLines: maxLines}
}

// Append adds lines, trimming from the front past the cap.
func (b *buffer) Append(lines ...string) {
	if len(lines) == 0 {
		return
	}
	b.lines = append(b.lines, lines...)
	if len(b.lines) > b.maxLines {
		trim := len(b.lines) - b.maxLines
		b.lines = b.lines[trim:]
	}
}

// Snapshot returns a copy of the retained lines.
func (b *buffer) Snapshot() []string {
	if b == nil || len(b.lines) == 0 {
		return nil
	}
	return append([]string(nil), b.lines...)
}

// Reset drops all retained lines.
func (b *buffer) Reset() {
	b.lines = nil
}

// Len reports the number of retained lines.
func (b *buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.lines)
}
