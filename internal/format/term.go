package format

import (
	"fmt"
	"strings"

	"pkt.systems/agentdeck/internal/highlight"
	"pkt.systems/agentdeck/internal/markdown"
)

const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiItalic = "\x1b[3m"
	ansiDim    = "\x1b[2m"
	ansiCyan   = "\x1b[36m"
)

// TermRenderer renders markdown response content into ANSI terminal
// lines. Built for streaming: the whole accumulated content is
// re-rendered on every call, so partial markup (an unterminated fence,
// a dangling bold marker) always renders as well-formed output.
type TermRenderer struct {
	// Color disables all ANSI sequences when false.
	Color bool
	// Highlight syntax-highlights fenced code. Only applied by
	// RenderFinal; per-token highlighting would dominate render cost.
	Highlight bool
}

// NewTermRenderer returns a renderer with color and final-pass
// highlighting enabled.
func NewTermRenderer() *TermRenderer {
	return &TermRenderer{Color: true, Highlight: true}
}

// Render formats content for an in-flight response.
func (r *TermRenderer) Render(content string) []string {
	return r.render(content, false)
}

// RenderFinal formats a completed response, additionally highlighting
// fenced code blocks.
func (r *TermRenderer) RenderFinal(content string) []string {
	return r.render(content, r.Highlight)
}

func (r *TermRenderer) render(content string, highlightCode bool) []string {
	var out []string
	for _, block := range markdown.ParseBlocks(content) {
		switch block.Kind {
		case markdown.BlockHeading:
			out = append(out, r.style(block.Text, ansiBold))
		case markdown.BlockBullet:
			out = append(out, "  • "+r.inline(block.Text))
		case markdown.BlockCode:
			out = append(out, r.codeBlock(block, highlightCode)...)
		default:
			out = append(out, r.inline(block.Text))
		}
	}
	return out
}

func (r *TermRenderer) codeBlock(block markdown.Block, highlightCode bool) []string {
	lines := block.Lines
	if highlightCode {
		lines = highlight.Code(lines, block.Lang)
	}
	fence := "```"
	if block.Lang != "" {
		fence += block.Lang
	}
	out := make([]string, 0, len(lines)+2)
	out = append(out, r.style(fence, ansiDim))
	out = append(out, lines...)
	out = append(out, r.style("```", ansiDim))
	return out
}

// inline renders bold, italic and code spans within one line.
func (r *TermRenderer) inline(text string) string {
	spans := markdown.ParseInline(text)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	for _, span := range spans {
		if !r.Color {
			b.WriteString(span.Text)
			continue
		}
		var codes []string
		if span.Bold {
			codes = append(codes, ansiBold)
		}
		if span.Italic {
			codes = append(codes, ansiItalic)
		}
		if span.Code {
			codes = append(codes, ansiCyan)
		}
		if len(codes) == 0 {
			b.WriteString(span.Text)
			continue
		}
		fmt.Fprintf(&b, "%s%s%s", strings.Join(codes, ""), span.Text, ansiReset)
	}
	return b.String()
}

func (r *TermRenderer) style(text, code string) string {
	if !r.Color || text == "" {
		return text
	}
	return code + text + ansiReset
}
