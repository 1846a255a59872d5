// Package admin — handlers.go обрабатывает команды /migrate и /verify.
package admin

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
)

// Handler обрабатывает административные команды.
type Handler struct {
	service *Service
	api     *telego.Bot
}

// NewHandler создаёт обработчик административных команд.
func NewHandler(service *Service, api *telego.Bot) *Handler {
	return &Handler{service: service, api: api}
}

// HandleMigrate — команда /migrate. Доступна только операторам бота;
// для всех остальных молча игнорируется — без ответа и без ошибки.
func (h *Handler) HandleMigrate(ctx context.Context, chatID, userID int64) {
	if !h.service.IsOperator(userID) {
		return
	}

	copied, err := h.service.Migrate(ctx)
	if err != nil {
		log.WithError(err).Error("Миграция не завершена")
		h.sendMessage(ctx, chatID, fmt.Sprintf("Migration failed after %d chats", copied))
		return
	}

	log.WithField("copied", copied).Info("Миграция чатов завершена")
	h.sendMessage(ctx, chatID, "Migration completed")
}

// HandleVerify — команда /verify. Сверяет статус пользователя с тем,
// что сообщает Telegram: только создатель чата может верифицироваться.
func (h *Handler) HandleVerify(ctx context.Context, chatID, userID int64) {
	member, err := h.api.GetChatMember(ctx, &telego.GetChatMemberParams{
		ChatID: telego.ChatID{ID: chatID},
		UserID: userID,
	})
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("GetChatMember failed")
		return
	}

	status := member.MemberStatus()
	if status != telego.MemberStatusCreator {
		h.sendMessage(ctx, chatID, fmt.Sprintf("You are %s, but only chat creators can verify the bot.", status))
		return
	}

	if err := h.service.RecordCreator(ctx, chatID, userID); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Не удалось записать создателя чата")
		return
	}

	h.sendMessage(ctx, chatID,
		"Verified. You are creator.\nYou can now set Jetton for this chat and access other settings.")
}

// sendMessage — утилита для отправки сообщений.
func (h *Handler) sendMessage(ctx context.Context, chatID int64, text string) {
	_, err := h.api.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}
