// Package common содержит общие утилиты, используемые во всём проекте.
package common

import "strings"

var markdownEscaper = strings.NewReplacer(
	"_", "\\_",
	"*", "\\*",
	"[", "\\[",
	"`", "\\`",
)

// EscapeMarkdown экранирует спецсимволы легаси-Markdown в тексте.
// Нужно для имён пользователей внутри упоминаний — Telegram
// отклоняет сообщение целиком, если разметка сломана.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// Truncate обрезает строку до max рун, добавляя троеточие.
// Используется при логировании текста сообщений.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
