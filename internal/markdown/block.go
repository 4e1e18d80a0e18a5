package markdown

import "strings"

// BlockKind identifies a block-level element.
type BlockKind int

const (
	// BlockText is a plain text or paragraph line.
	BlockText BlockKind = iota
	// BlockHeading is an ATX heading line.
	BlockHeading
	// BlockBullet is a list item line.
	BlockBullet
	// BlockCode is a fenced code block.
	BlockCode
)

// Block is one block-level element of a markdown document.
type Block struct {
	Kind  BlockKind
	Level int
	Lang  string
	Text  string
	Lines []string
}

// ParseBlocks splits markdown source into block-level elements. An
// unterminated fence swallows the rest of the input as code, so a
// response cut mid-fence still parses to a well-formed block list.
// Streaming callers re-parse the whole accumulated content on every
// token for exactly this reason.
func ParseBlocks(src string) []Block {
	if src == "" {
		return nil
	}
	var blocks []Block
	lines := strings.Split(src, "\n")
	i := 0
	for i < len(lines) {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			lang := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			var body []string
			i++
			for i < len(lines) {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
					i++
					break
				}
				body = append(body, lines[i])
				i++
			}
			blocks = append(blocks, Block{Kind: BlockCode, Lang: lang, Lines: body})
			continue
		}
		if level := headingLevel(trimmed); level > 0 {
			blocks = append(blocks, Block{
				Kind:  BlockHeading,
				Level: level,
				Text:  strings.TrimSpace(trimmed[level:]),
			})
			i++
			continue
		}
		if text, ok := bulletText(trimmed); ok {
			blocks = append(blocks, Block{Kind: BlockBullet, Text: text})
			i++
			continue
		}
		blocks = append(blocks, Block{Kind: BlockText, Text: line})
		i++
	}
	return blocks
}

func headingLevel(line string) int {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0
	}
	if level == len(line) || line[level] != ' ' {
		return 0
	}
	return level
}

func bulletText(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):]), true
		}
	}
	return "", false
}
