// Package format escapes user-supplied text for Telegram parse modes.
package format

import (
	"fmt"
	"regexp"
)

// Markdown parse mode versions.
const (
	MarkdownV1 = 1
	MarkdownV2 = 2
)

var reserved = map[int]*regexp.Regexp{
	MarkdownV1: regexp.MustCompile("[_*`\\[]"),
	MarkdownV2: regexp.MustCompile(`[_*\[\]()~` + "`" + `>#+\-=|{}.!\\]`),
}

// EscapeMarkdown backslash-escapes the characters reserved by version.
func EscapeMarkdown(text string, version int) (string, error) {
	re, ok := reserved[version]
	if !ok {
		return "", fmt.Errorf("format: unsupported markdown version %d", version)
	}
	return re.ReplaceAllString(text, `\${0}`), nil
}

// EscapeMD escapes text for the legacy Markdown mode the bot replies in.
func EscapeMD(text string) string {
	s, _ := EscapeMarkdown(text, MarkdownV1)
	return s
}
