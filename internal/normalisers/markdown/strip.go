package markdown

import (
	"regexp"
	"strings"
)

// stripRule replaces every match of pattern with repl.
type stripRule struct {
	pattern *regexp.Regexp
	repl    string
}

// stripRules are applied in order. Fenced blocks go first so that code
// containing link or tag syntax is dropped whole. A fence left over after
// that has no partner and is blanked, so its backticks cannot pair with a
// later inline code span.
var stripRules = []stripRule{
	{regexp.MustCompile("(?s)```.*?```"), " "},
	{regexp.MustCompile("```"), " "},
	{regexp.MustCompile("`[^`]*`"), " "},
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`), "$1"},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`), "$1"},
	{regexp.MustCompile(`<[^>]+>`), " "},
	{regexp.MustCompile("[#>*_~`]+"), " "},
	{regexp.MustCompile(`[\s\x0b\x1c-\x1f\x{85}\p{Z}]+`), " "},
}

// Strip converts markdown to plain text for embedding.
//
// Fenced and inline code are removed, images and links keep their alt text
// and label, HTML tags are removed, emphasis and heading markers become
// spaces, and whitespace is collapsed. An unterminated fence is kept as text.
//
// The rules are reapplied until the text stops changing, so nested link
// syntax is fully unwrapped and Strip(Strip(s)) == Strip(s).
func Strip(text string) string {
	for {
		stripped := stripOnce(text)
		if stripped == text {
			return stripped
		}
		text = stripped
	}
}

func stripOnce(text string) string {
	for _, rule := range stripRules {
		text = rule.pattern.ReplaceAllString(text, rule.repl)
	}
	return strings.TrimSpace(text)
}
