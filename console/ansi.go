package console

import (
	"strings"
	"unicode/utf8"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiDim    = "\x1b[2m"
	ansiItalic = "\x1b[3m"
)

// sanitizeLine strips escape sequences and control characters from
// producer text so external output cannot corrupt the terminal. Tabs
// become four spaces.
func sanitizeLine(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		ch := text[i]
		if ch == 0x1b {
			i = skipEscape(text, i+1)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			i++
			continue
		}
		if r == '\r' {
			i += size
			continue
		}
		if r == '\t' {
			b.WriteString("    ")
			i += size
			continue
		}
		if r < 0x20 || r == 0x7f {
			i += size
			continue
		}
		b.WriteRune(r)
		i += size
	}
	return b.String()
}

// stripNonSGR removes every escape sequence except CSI SGR styling
// ("ESC [ ... m"), so renderer colors survive while anything that could
// move the cursor or retitle the terminal is dropped.
func stripNonSGR(text string) string {
	if !strings.ContainsRune(text, 0x1b) {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		if text[i] != 0x1b {
			b.WriteByte(text[i])
			i++
			continue
		}
		start := i
		end := skipEscape(text, i+1)
		if end > start+2 && text[start+1] == '[' && text[end-1] == 'm' {
			b.WriteString(text[start:end])
		}
		i = end
	}
	return b.String()
}

func skipEscape(text string, i int) int {
	if i >= len(text) {
		return i
	}
	switch text[i] {
	case '[':
		return skipCSI(text, i+1)
	case ']':
		return skipOSC(text, i+1)
	default:
		return i + 1
	}
}

func skipCSI(text string, i int) int {
	for i < len(text) {
		b := text[i]
		if b >= 0x40 && b <= 0x7e {
			return i + 1
		}
		i++
	}
	return i
}

func skipOSC(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case 0x07:
			return i + 1
		case 0x1b:
			if i+1 < len(text) && text[i+1] == '\\' {
				return i + 2
			}
		}
		i++
	}
	return i
}

// visibleWidth counts printable runes, skipping escape sequences. Wide
// CJK runes count as one; acceptable for a status console.
func visibleWidth(text string) int {
	width := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			i = skipEscape(text, i+1)
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		i += size
		width++
	}
	return width
}

// trimANSIToWidth truncates to width visible runes while keeping every
// escape sequence, so styling stays balanced after the cut.
func trimANSIToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	visible := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			start := i
			i = skipEscape(text, i+1)
			b.WriteString(text[start:i])
			continue
		}
		if visible >= width {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		b.WriteRune(r)
		i += size
		visible++
	}
	return b.String()
}

// padToWidth right-pads with spaces up to width visible runes.
func padToWidth(text string, width int) string {
	if visible := visibleWidth(text); visible < width {
		return text + strings.Repeat(" ", width-visible)
	}
	return trimANSIToWidth(text, width)
}

// wrapPlain word-wraps sanitized text into lines of at most width
// visible runes. Words longer than the width are hard-split.
func wrapPlain(text string, width int) []string {
	if width <= 0 {
		return []string{""}
	}
	sanitized := sanitizeLine(text)
	if sanitized == "" {
		return []string{""}
	}
	var lines []string
	var b strings.Builder
	visible := 0
	flush := func() {
		lines = append(lines, b.String())
		b.Reset()
		visible = 0
	}
	for _, word := range strings.Fields(sanitized) {
		runes := []rune(word)
		if len(runes) > width {
			if visible > 0 {
				flush()
			}
			for start := 0; start < len(runes); start += width {
				end := start + width
				if end > len(runes) {
					end = len(runes)
				}
				b.WriteString(string(runes[start:end]))
				visible = end - start
				if visible == width {
					flush()
				}
			}
			continue
		}
		needed := len(runes)
		if visible > 0 {
			needed++
		}
		if visible+needed > width {
			flush()
		}
		if visible > 0 {
			b.WriteByte(' ')
			visible++
		}
		b.WriteString(word)
		visible += len(runes)
	}
	if visible > 0 || len(lines) == 0 {
		flush()
	}
	return lines
}
