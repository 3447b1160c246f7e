package format

import "strings"

// mdV2Specials is the MarkdownV2 control set defined by the Bot API.
const mdV2Specials = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 prefixes every MarkdownV2 control character with a
// backslash. It is meant for free-form user or operator content, never for
// template literals that intentionally carry formatting. Escaping is not
// idempotent: callers must escape exactly once per raw value.
func EscapeMarkdownV2(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text) * 2)
	for _, r := range text {
		if strings.ContainsRune(mdV2Specials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// UnescapeMarkdownV2 removes the escape markers added by EscapeMarkdownV2.
// For any input, UnescapeMarkdownV2(EscapeMarkdownV2(s)) == s.
func UnescapeMarkdownV2(text string) string {
	if text == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\\' && i+1 < len(runes) && strings.ContainsRune(mdV2Specials, runes[i+1]) {
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
