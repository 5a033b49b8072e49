package preprocess

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	intraLineSpace = regexp.MustCompile(`[^\S\n]+`)
	excessNewlines = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted text before it is stored or scored.
// Paragraph breaks survive as at most one blank line.
func CleanText(text string) string {
	text = norm.NFKC.String(text)
	text = strings.ReplaceAll(text, "\x00", "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(intraLineSpace.ReplaceAllString(line, " "))
	}
	text = strings.Join(lines, "\n")

	text = excessNewlines.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
