package textutil

import "strings"

var scriptEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\r", ``,
)

// EscapeScriptString escapes task content for embedding inside a
// double-quoted AppleScript string literal. Backslashes must be escaped
// before quotes; strings.Replacer applies all pairs in a single pass, so
// the ordering above is safe.
func EscapeScriptString(text string) string {
	if text == "" {
		return ""
	}
	return scriptEscaper.Replace(text)
}

// TruncateLabel shortens task content to a menu-friendly label. Truncation
// operates on runes so multibyte content never splits mid-character.
func TruncateLabel(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
