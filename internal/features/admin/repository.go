// Package admin содержит служебные операции оператора и владельцев чатов.
// repository.go выполняет операции миграции и верификации в MongoDB.
package admin

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository работает с коллекциями statistics и chats.
type Repository struct {
	statistics *mongo.Collection
	chats      *mongo.Collection
}

// NewRepository создаёт репозиторий административных операций.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		statistics: db.Collection("statistics"),
		chats:      db.Collection("chats"),
	}
}

// CopyEmbeddedChats переносит вложенные документы chat из statistics
// в коллекцию chats. Одноразовая миграция старой схемы; дубликаты
// по уникальному индексу id пропускаются.
func (r *Repository) CopyEmbeddedChats(ctx context.Context) (int, error) {
	cursor, err := r.statistics.Find(ctx, bson.M{"chat": bson.M{"$exists": true}})
	if err != nil {
		return 0, fmt.Errorf("ошибка выборки статистики: %w", err)
	}
	defer cursor.Close(ctx)

	copied := 0
	for cursor.Next(ctx) {
		var doc struct {
			Chat bson.M `bson:"chat"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return copied, fmt.Errorf("ошибка декодирования документа: %w", err)
		}
		if len(doc.Chat) == 0 {
			continue
		}

		_, err := r.chats.InsertOne(ctx, doc.Chat)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("ошибка переноса чата: %w", err)
		}
		copied++
	}
	if err := cursor.Err(); err != nil {
		return copied, fmt.Errorf("ошибка курсора: %w", err)
	}

	return copied, nil
}

// SetChatCreator записывает подтверждённого создателя чата.
func (r *Repository) SetChatCreator(ctx context.Context, chatID, userID int64) error {
	_, err := r.chats.UpdateOne(ctx,
		bson.M{"id": chatID},
		bson.M{"$set": bson.M{"creator": userID}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("ошибка записи создателя чата: %w", err)
	}
	return nil
}
