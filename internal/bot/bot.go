// Package bot содержит главный модуль бота — запуск polling,
// приём апдейтов и маршрутизацию к сервисам.
// bot.go держит цикл обновлений и диспетчеризацию по типу апдейта.
package bot

import (
	"context"
	"strings"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"

	"achivator.ru/telegram-bot/internal/bot/middleware"
	"achivator.ru/telegram-bot/internal/config"
	"achivator.ru/telegram-bot/internal/events"
	"achivator.ru/telegram-bot/internal/features/achievements"
	"achivator.ru/telegram-bot/internal/features/admin"
	"achivator.ru/telegram-bot/internal/features/stats"
)

// Типы апдейтов, которые бот запрашивает у Telegram.
// Без явного списка message_reaction не приходит вовсе.
var allowedUpdates = []string{
	"message",
	"message_reaction",
	"message_reaction_count",
	"my_chat_member",
}

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *telego.Bot
	cfg *config.Config

	statsService *stats.Service
	evaluator    *achievements.Evaluator
	granter      *achievements.Service
	adminHandler *admin.Handler

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *telego.Bot,
	cfg *config.Config,
	statsService *stats.Service,
	evaluator *achievements.Evaluator,
	granter *achievements.Service,
	adminHandler *admin.Handler,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:          api,
		cfg:          cfg,
		statsService: statsService,
		evaluator:    evaluator,
		granter:      granter,
		adminHandler: adminHandler,
		parser:       NewCommandParser(),
		inflight:     make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
// Блокируется до отмены контекста или закрытия канала апдейтов.
func (b *Bot) Start(ctx context.Context) error {
	b.registerCommands(ctx)

	updates, err := b.api.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout:        b.cfg.BotUpdateTimeoutSeconds,
		AllowedUpdates: allowedUpdates,
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			return nil

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return nil
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd telego.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// registerCommands публикует список команд бота в меню Telegram.
func (b *Bot) registerCommands(ctx context.Context) {
	err := b.api.SetMyCommands(ctx, &telego.SetMyCommandsParams{
		Commands: []telego.BotCommand{
			{Command: "verify", Description: "Verify yourself as the chat creator"},
		},
	})
	if err != nil {
		log.WithError(err).Warn("SetMyCommands failed")
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	defer middleware.RecoverFromPanic()

	switch {
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)

	case update.MessageReaction != nil:
		b.handleReaction(ctx, update.MessageReaction)

	case update.MessageReactionCount != nil:
		// Агрегированные счётчики приходят из чатов, где упоминания
		// пользователей скрыты; персональной статистики тут не выйдет
		log.WithFields(log.Fields{
			"chat_id":    update.MessageReactionCount.Chat.ID,
			"message_id": update.MessageReactionCount.MessageID,
		}).Debug("Анонимные реакции пропущены")

	case update.MyChatMember != nil:
		b.handleMembership(ctx, update.MyChatMember)
	}
}

// handleMessage обрабатывает входящее сообщение: сначала команды,
// потом статистика и достижения.
func (b *Bot) handleMessage(ctx context.Context, message *telego.Message) {
	middleware.LogMessage(message)

	// Команды разбираются до классификации: /migrate работает и в личке
	if cmd, isCommand := b.parser.ParseCommand(message.Text); isCommand {
		if message.From == nil {
			return
		}
		b.routeCommand(ctx, message.Chat.ID, message.From.ID, cmd)
		return
	}

	ev, ok := events.ClassifyMessage(message)
	if !ok {
		return
	}

	rec, err := b.statsService.RecordMessage(ctx, ev)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"chat_id": ev.ChatID,
			"user_id": ev.UserID,
		}).Error("Не удалось учесть сообщение")
		return
	}

	var kinds []achievements.Kind
	if ev.Content == events.ContentText {
		kinds = b.evaluator.Message(rec, ev)
	} else if kind, found := b.evaluator.Media(ev.Content); found {
		kinds = append(kinds, kind)
	}

	b.grantAll(ctx, ev.ChatID, ev.UserID, ev.FirstName, ev.MessageID, kinds)
}

// handleReaction обрабатывает изменение реакций на сообщении.
// Достижения проверяются у обеих сторон: у автора реакции и у автора
// сообщения — каждому по его собственным счётчикам.
func (b *Bot) handleReaction(ctx context.Context, reaction *telego.MessageReactionUpdated) {
	middleware.LogReaction(reaction)

	ev, ok := events.ClassifyReaction(reaction)
	if !ok {
		log.WithFields(log.Fields{
			"chat_id":    reaction.Chat.ID,
			"message_id": reaction.MessageID,
		}).Debug("Реакция без пользователя пропущена")
		return
	}

	out, err := b.statsService.ApplyReaction(ctx, ev)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"chat_id": ev.ChatID,
			"user_id": ev.UserID,
		}).Error("Не удалось учесть реакцию")
		return
	}

	if out.Actor != nil {
		kinds := b.evaluator.ReactionActor(out.Actor, ev.Added, ev.Removed)
		b.grantAll(ctx, ev.ChatID, ev.UserID, ev.FirstName, ev.MessageID, kinds)
	}

	if out.Receiver != nil {
		kinds := b.evaluator.ReactionReceiver(out.Receiver, ev.Added, ev.Removed)
		// Имя получателя апдейт не несёт — поздравление обойдётся без него
		b.grantAll(ctx, ev.ChatID, out.ReceiverID, "", ev.MessageID, kinds)
	}
}

// handleMembership реагирует на смену статуса бота в чате.
func (b *Bot) handleMembership(ctx context.Context, member *telego.ChatMemberUpdated) {
	ev := events.ClassifyMembership(member)

	log.WithFields(log.Fields{
		"chat_id": ev.ChatID,
		"status":  ev.NewStatus,
	}).Info("Статус бота в чате изменился")

	switch ev.NewStatus {
	case telego.MemberStatusMember:
		b.sendMessage(ctx, ev.ChatID,
			"Hello! I count messages and reactions in this chat and hand out achievements. "+
				"Promote me to admin so I can see every message.")
	case telego.MemberStatusAdministrator:
		b.sendMessage(ctx, ev.ChatID,
			"Thanks for the promotion! Now I can see every message and reaction. Let the achievements begin 🏆")
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string) {
	log.WithFields(log.Fields{
		"cmd":     cmd,
		"chat_id": chatID,
		"user_id": userID,
	}).Debug("routing command")

	switch cmd {
	case "verify":
		b.adminHandler.HandleVerify(ctx, chatID, userID)

	case "migrate":
		b.adminHandler.HandleMigrate(ctx, chatID, userID)
	}
	// Остальные команды игнорируются: бот живёт статистикой, не диалогом
}

// grantAll выдаёт пользователю все открывшиеся достижения.
func (b *Bot) grantAll(ctx context.Context, chatID, userID int64, firstName string, messageID int, kinds []achievements.Kind) {
	for _, kind := range kinds {
		_, err := b.granter.Give(ctx, achievements.Grant{
			ChatID:    chatID,
			UserID:    userID,
			FirstName: firstName,
			Kind:      kind,
			MessageID: messageID,
		})
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"chat_id": chatID,
				"user_id": userID,
				"type":    kind,
			}).Warn("Не удалось выдать достижение")
		}
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(ctx context.Context, chatID int64, text string) {
	_, err := b.api.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   text,
	})
	if err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// CommandParser разбирает команды вида /cmd и /cmd@botname.
type CommandParser struct{}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{}
}

// ParseCommand разбирает текст и возвращает имя команды без префикса
// и упоминания бота. Не команда — возвращается false.
func (p *CommandParser) ParseCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}

	parts := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(parts) == 0 {
		return "", false
	}

	command := strings.ToLower(parts[0])
	// В группах команды приходят адресно: /verify@achivator_bot
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	if command == "" {
		return "", false
	}

	return command, true
}
