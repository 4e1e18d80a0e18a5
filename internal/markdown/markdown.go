// Package markdown parses the subset of markdown the agent emits:
// inline bold, italic and code spans, plus the block elements in
// block.go. Parsing must tolerate truncated input at any byte; streamed
// responses are re-parsed on every token.
package markdown

import "strings"

// Span represents a styled slice of text.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	Code   bool
}

// inlineState walks one line, toggling styles at marker boundaries. A
// marker with no closing counterpart is treated as literal text so a
// response cut mid-span never drops characters.
type inlineState struct {
	spans  []Span
	buf    strings.Builder
	bold   bool
	italic bool
	code   bool
}

func (st *inlineState) flush() {
	if st.buf.Len() == 0 {
		return
	}
	st.spans = append(st.spans, Span{
		Text:   st.buf.String(),
		Bold:   st.bold,
		Italic: st.italic,
		Code:   st.code,
	})
	st.buf.Reset()
}

// toggle flips one style at a confirmed marker boundary.
func (st *inlineState) toggle(style *bool) {
	st.flush()
	*style = !*style
}

// ParseInline parses inline markdown into styled spans. Supported
// markers: **bold**, __bold__, *italic*, _italic_, and `code`. Markers
// inside a code span are literal.
func ParseInline(input string) []Span {
	if input == "" {
		return nil
	}
	st := &inlineState{}
	for i := 0; i < len(input); {
		ch := input[i]
		switch {
		case ch == '\\' && i+1 < len(input):
			st.buf.WriteByte(input[i+1])
			i += 2
		case ch == '`' && (st.code || strings.Contains(input[i+1:], "`")):
			st.toggle(&st.code)
			i++
		case st.code:
			st.buf.WriteByte(ch)
			i++
		case ch == '*' || ch == '_':
			i += consumeStyleMarker(st, input[i:], ch)
		default:
			st.buf.WriteByte(ch)
			i++
		}
	}
	st.flush()
	return st.spans
}

// consumeStyleMarker handles a run of * or _ at the start of rest and
// returns how many bytes were consumed.
func consumeStyleMarker(st *inlineState, rest string, marker byte) int {
	double := string([]byte{marker, marker})
	if strings.HasPrefix(rest, double) {
		if st.bold || strings.Contains(rest[2:], double) {
			st.toggle(&st.bold)
		} else {
			st.buf.WriteString(double)
		}
		return 2
	}
	if st.italic || strings.Contains(rest[1:], string(marker)) {
		st.toggle(&st.italic)
	} else {
		st.buf.WriteByte(marker)
	}
	return 1
}
