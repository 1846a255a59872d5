// Package achievements — service.go выдаёт достижения.
// Выдача идемпотентна: реестр хранит не больше одной записи на кортеж,
// повторная попытка не производит видимых эффектов.
package achievements

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// Ledger — реестр выданных достижений.
type Ledger interface {
	Exists(ctx context.Context, chatID, userID int64, kind Kind, collection string) (bool, error)
	Insert(ctx context.Context, rec *Record) error
}

// Notifier отправляет пользователю поздравление.
// Вызывается в отдельной горутине и сам отвечает за свои ошибки.
type Notifier interface {
	Congratulate(chatID, userID int64, firstName string, kind Kind)
}

// Recorder — счётные метрики во внешнюю телеметрию.
type Recorder interface {
	Count(measurement string, chatID, userID int64, typ string)
}

// Grant — запрос на выдачу одного достижения.
type Grant struct {
	ChatID int64
	UserID int64
	// Имя для упоминания в поздравлении; может быть пустым,
	// если получатель известен только по id
	FirstName string
	Kind      Kind
	// Сообщение-триггер, 0 если неизвестно
	MessageID int
}

// Service выдаёт достижения.
type Service struct {
	ledger     Ledger
	notes      Notifier
	metrics    Recorder
	collection string
}

// NewService создаёт сервис выдачи.
func NewService(ledger Ledger, notes Notifier, metrics Recorder, collection string) *Service {
	return &Service{
		ledger:     ledger,
		notes:      notes,
		metrics:    metrics,
		collection: collection,
	}
}

// Give выдаёт достижение не больше одного раза.
// Возвращает true, если достижение выдано сейчас, и false, если оно
// уже было у пользователя (в том числе при проигранной гонке записи).
//
// Побочные эффекты — поздравление и метрика — запускаются после записи
// в реестр и его не блокируют: их сбой логируется и проглатывается.
func (s *Service) Give(ctx context.Context, g Grant) (bool, error) {
	held, err := s.ledger.Exists(ctx, g.ChatID, g.UserID, g.Kind, s.collection)
	if err != nil {
		return false, err
	}
	if held {
		return false, nil
	}

	rec := &Record{
		ChatID:     g.ChatID,
		UserID:     g.UserID,
		Type:       g.Kind,
		Date:       time.Now().UTC(),
		MessageID:  g.MessageID,
		Collection: s.collection,
	}
	if err := s.ledger.Insert(ctx, rec); err != nil {
		if errors.Is(err, ErrAlreadyGranted) {
			// Параллельная выдача успела раньше — не ошибка
			return false, nil
		}
		return false, err
	}

	log.WithFields(log.Fields{
		"chat_id": g.ChatID,
		"user_id": g.UserID,
		"type":    g.Kind,
	}).Info("Достижение выдано")

	go s.notes.Congratulate(g.ChatID, g.UserID, g.FirstName, g.Kind)
	s.metrics.Count("achievements", g.ChatID, g.UserID, string(g.Kind))

	return true, nil
}
