// Package middleware содержит промежуточные обработчики для логирования
// и восстановления после паники.
package middleware

import (
	"time"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// LogMessage логирует входящее сообщение.
// Записывает: user_id, chat_id, текст (первые 50 символов).
func LogMessage(message *telego.Message) {
	if message == nil || message.From == nil {
		return
	}

	text := message.Text
	if len(text) > 50 {
		text = text[:50] + "..."
	}

	log.WithFields(log.Fields{
		"user_id": message.From.ID,
		"chat_id": message.Chat.ID,
		"text":    text,
		"time":    time.Now().Format("15:04:05"),
	}).Debug("Входящее сообщение")
}

// LogReaction логирует изменение реакции на сообщение.
func LogReaction(reaction *telego.MessageReactionUpdated) {
	if reaction == nil || reaction.User == nil {
		return
	}

	log.WithFields(log.Fields{
		"user_id":    reaction.User.ID,
		"chat_id":    reaction.Chat.ID,
		"message_id": reaction.MessageID,
		"old":        len(reaction.OldReaction),
		"new":        len(reaction.NewReaction),
	}).Debug("Изменение реакции")
}
