// Package highlight applies ANSI syntax highlighting to fenced code.
// It runs once per response, at stream finalization; incremental
// renders show code unstyled.
package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const defaultStyle = "monokai"

// Code highlights source lines for the given language and returns the
// styled lines. On any tokenization failure the input is returned
// unchanged; highlighting is display-only and must never drop content.
func Code(lines []string, lang string) []string {
	if len(lines) == 0 {
		return nil
	}
	src := strings.Join(lines, "\n")

	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Analyse(src)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(defaultStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return lines
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return lines
	}
	var out strings.Builder
	if err := formatter.Format(&out, style, iterator); err != nil {
		return lines
	}
	styled := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(styled) != len(lines) {
		// Formatter reflowed the block; prefer the original content.
		return lines
	}
	return styled
}
