// Package admin — service.go содержит логику служебных операций.
package admin

import (
	"context"

	"achivator.ru/telegram-bot/internal/config"
)

// Store — операции хранилища, нужные административным командам.
type Store interface {
	CopyEmbeddedChats(ctx context.Context) (int, error)
	SetChatCreator(ctx context.Context, chatID, userID int64) error
}

// Service управляет служебными операциями.
type Service struct {
	store Store
	cfg   *config.Config
}

// NewService создаёт сервис административных операций.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// IsOperator проверяет, входит ли пользователь в список операторов бота.
func (s *Service) IsOperator(userID int64) bool {
	for _, id := range s.cfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Migrate переносит вложенные чаты из statistics в chats.
func (s *Service) Migrate(ctx context.Context) (int, error) {
	return s.store.CopyEmbeddedChats(ctx)
}

// RecordCreator записывает подтверждённого создателя чата.
func (s *Service) RecordCreator(ctx context.Context, chatID, userID int64) error {
	return s.store.SetChatCreator(ctx, chatID, userID)
}
