// Package stats — service.go применяет дельты событий к счётчикам.
// Сервис ничего не кэширует: каждое событие читает и пишет через
// хранилище, оно же — точка синхронизации параллельных обработчиков.
package stats

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"achivator.ru/telegram-bot/internal/events"
)

// Store — операции хранилища, нужные сервису статистики.
type Store interface {
	Increment(ctx context.Context, chatID, userID int64, fields map[string]int64) (*StatisticsRecord, error)
	InsertMessage(ctx context.Context, m *MessageRecord) error
	MessageAuthor(ctx context.Context, chatID int64, messageID int) (int64, bool, error)
	EnsureChat(ctx context.Context, chatID int64, title string) error
}

// Recorder — счётные метрики во внешнюю телеметрию, fire-and-forget.
type Recorder interface {
	Count(measurement string, chatID, userID int64, typ string)
}

// Service управляет статистикой.
type Service struct {
	store   Store
	metrics Recorder
}

// NewService создаёт сервис статистики.
func NewService(store Store, metrics Recorder) *Service {
	return &Service{store: store, metrics: metrics}
}

// RecordMessage учитывает входящее сообщение и возвращает
// счётчики пользователя ПОСЛЕ обновления — по ним решается,
// не открылось ли достижение.
//
// Для текстовых сообщений дополнительно пополняется индекс сообщений
// (по нему потом ищутся получатели реакций) и лениво создаётся запись
// чата. Голосовые, кружки и стикеры увеличивают свой счётчик.
func (s *Service) RecordMessage(ctx context.Context, ev events.MessagePosted) (*StatisticsRecord, error) {
	if ev.Content == events.ContentText {
		if err := s.store.InsertMessage(ctx, &MessageRecord{
			ChatID:    ev.ChatID,
			UserID:    ev.UserID,
			MessageID: ev.MessageID,
			Date:      ev.SentAt,
		}); err != nil {
			return nil, err
		}

		if err := s.store.EnsureChat(ctx, ev.ChatID, ev.ChatTitle); err != nil {
			// Чат не критичен для подсчёта — жалуемся и продолжаем
			log.WithError(err).WithField("chat_id", ev.ChatID).Warn("EnsureChat failed")
		}
	}

	field := string(ev.Content)
	rec, err := s.store.Increment(ctx, ev.ChatID, ev.UserID, map[string]int64{field: 1})
	if err != nil {
		return nil, fmt.Errorf("учёт сообщения: %w", err)
	}

	s.metrics.Count("messages", ev.ChatID, ev.UserID, field)

	return rec, nil
}

// ReactionOutcome — счётчики обеих затронутых сторон после применения дельты.
// Receiver равен nil, если автор сообщения не найден в индексе
// или наборы added/removed пусты.
type ReactionOutcome struct {
	Actor      *StatisticsRecord
	Receiver   *StatisticsRecord
	ReceiverID int64
}

// ApplyReaction применяет дельту реакций: актору — reactions и
// reactionsGiven, автору сообщения — reactionsReceived.
//
// Если автора нет в индексе сообщений, его статистика молча
// пропускается — это не ошибка. Пустая дельта не трогает хранилище.
func (s *Service) ApplyReaction(ctx context.Context, ev events.ReactionChanged) (*ReactionOutcome, error) {
	if len(ev.Added) == 0 && len(ev.Removed) == 0 {
		return &ReactionOutcome{}, nil
	}

	fields := map[string]int64{
		FieldReactions: int64(len(ev.Added) - len(ev.Removed)),
	}
	for _, emoji := range ev.Added {
		fields[GivenField(emoji)]++
	}
	for _, emoji := range ev.Removed {
		fields[GivenField(emoji)]--
	}

	actor, err := s.store.Increment(ctx, ev.ChatID, ev.UserID, fields)
	if err != nil {
		return nil, fmt.Errorf("учёт реакции: %w", err)
	}
	out := &ReactionOutcome{Actor: actor}

	authorID, found, err := s.store.MessageAuthor(ctx, ev.ChatID, ev.MessageID)
	if err != nil {
		// Статистика актора уже учтена; получателя теряем молча —
		// upstream всё равно не гарантирует повторную доставку
		log.WithError(err).WithFields(log.Fields{
			"chat_id":    ev.ChatID,
			"message_id": ev.MessageID,
		}).Warn("Не удалось найти автора сообщения")
		return out, nil
	}
	if !found {
		return out, nil
	}

	rfields := make(map[string]int64, len(ev.Added)+len(ev.Removed))
	for _, emoji := range ev.Added {
		rfields[ReceivedField(emoji)]++
	}
	for _, emoji := range ev.Removed {
		rfields[ReceivedField(emoji)]--
	}

	receiver, err := s.store.Increment(ctx, ev.ChatID, authorID, rfields)
	if err != nil {
		log.WithError(err).WithField("user_id", authorID).Warn("Не удалось обновить статистику получателя")
		return out, nil
	}

	out.Receiver = receiver
	out.ReceiverID = authorID
	return out, nil
}
