// Package bot — notifier.go отправляет поздравление о новом достижении
// и удаляет его из чата спустя настроенную задержку.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"achivator.ru/telegram-bot/internal/bot/middleware"
	"achivator.ru/telegram-bot/internal/common"
	"achivator.ru/telegram-bot/internal/features/achievements"
)

// Notifier поздравляет пользователя в чате с полученным достижением.
type Notifier struct {
	api         *telego.Bot
	miniAppURL  string
	deleteDelay time.Duration
}

// NewNotifier создаёт нотификатор поздравлений.
func NewNotifier(api *telego.Bot, miniAppURL string, deleteDelay time.Duration) *Notifier {
	return &Notifier{api: api, miniAppURL: miniAppURL, deleteDelay: deleteDelay}
}

// Congratulate отправляет поздравление в чат и планирует его удаление,
// чтобы не засорять группу. Ошибки только логируются: поздравление —
// побочный эффект, он не должен ронять обработку событий.
func (n *Notifier) Congratulate(chatID, userID int64, firstName string, kind achievements.Kind) {
	defer middleware.RecoverFromPanic()

	name := common.EscapeMarkdown(firstName)
	if name == "" {
		name = "friend"
	}

	text := fmt.Sprintf(
		"Hey, [%s](tg://user?id=%d)! New achievement unlocked: *%s*! Check it out in [the mini app](%s) 🎉",
		name, userID, kind, n.miniAppURL,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sent, err := n.api.SendMessage(ctx, &telego.SendMessageParams{
		ChatID:    telego.ChatID{ID: chatID},
		Text:      text,
		ParseMode: "Markdown",
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"chat_id": chatID,
			"user_id": userID,
			"type":    kind,
		}).Error("Не удалось отправить поздравление")
		return
	}

	n.scheduleDelete(chatID, sent.MessageID)
}

// scheduleDelete удаляет сообщение спустя deleteDelay.
func (n *Notifier) scheduleDelete(chatID int64, messageID int) {
	time.AfterFunc(n.deleteDelay, func() {
		defer middleware.RecoverFromPanic()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		err := n.api.DeleteMessage(ctx, &telego.DeleteMessageParams{
			ChatID:    telego.ChatID{ID: chatID},
			MessageID: messageID,
		})
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"chat_id":    chatID,
				"message_id": messageID,
			}).Warn("Не удалось удалить поздравление")
		}
	})
}
