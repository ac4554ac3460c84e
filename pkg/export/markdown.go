package export

import "strings"

// mdBlock is one renderable line of a markdown report. Level 1..3 marks a
// heading, Bullet marks a list item, a zero value with empty Text is a
// blank separator line.
type mdBlock struct {
	Level  int
	Bullet bool
	Text   string
}

// parseMarkdown reduces a report to the flat block list the PDF and DOCX
// writers render. Inline emphasis markers are stripped; everything else is
// kept verbatim.
func parseMarkdown(report string) []mdBlock {
	lines := strings.Split(strings.ReplaceAll(report, "\r\n", "\n"), "\n")

	blocks := make([]mdBlock, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			blocks = append(blocks, mdBlock{})
		case trimmed == "---" || trimmed == "***":
			blocks = append(blocks, mdBlock{})
		case strings.HasPrefix(trimmed, "### "):
			blocks = append(blocks, mdBlock{Level: 3, Text: stripInline(trimmed[4:])})
		case strings.HasPrefix(trimmed, "## "):
			blocks = append(blocks, mdBlock{Level: 2, Text: stripInline(trimmed[3:])})
		case strings.HasPrefix(trimmed, "# "):
			blocks = append(blocks, mdBlock{Level: 1, Text: stripInline(trimmed[2:])})
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") || strings.HasPrefix(trimmed, "+ "):
			blocks = append(blocks, mdBlock{Bullet: true, Text: stripInline(trimmed[2:])})
		default:
			blocks = append(blocks, mdBlock{Text: stripInline(trimmed)})
		}
	}
	return blocks
}

func stripInline(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return strings.TrimSpace(s)
}
