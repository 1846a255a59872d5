// Package mongodb управляет подключением к MongoDB.
// Хранилище документное: четыре коллекции (achievements, statistics,
// messages, chats) без транзакций между ними. Хранилище — единственный
// разделяемый ресурс и точка синхронизации параллельных обработчиков.
package mongodb

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"achivator.ru/telegram-bot/internal/config"
)

// Collections — имена всех коллекций бота.
var Collections = []string{"achievements", "statistics", "messages", "chats"}

// Connect подключается к MongoDB и проверяет соединение.
func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка подключения к MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, fmt.Errorf("MongoDB не отвечает: %w", err)
	}

	log.WithField("database", cfg.MongoDatabase).Info("Подключение к MongoDB установлено")

	return client, client.Database(cfg.MongoDatabase), nil
}

// EnsureIndexes создаёт индексы при старте (аналог миграций).
//
// Уникальный индекс на achievements — барьер идемпотентности выдачи:
// две параллельные проверки «ещё не выдано» могут пройти обе, но
// вставить запись сможет только одна.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{
			collection: "achievements",
			model: mongo.IndexModel{
				Keys: bson.D{
					{Key: "chat_id", Value: 1},
					{Key: "user_id", Value: 1},
					{Key: "type", Value: 1},
					{Key: "collection", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: "statistics",
			model: mongo.IndexModel{
				Keys: bson.D{
					{Key: "chat_id", Value: 1},
					{Key: "user_id", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			// Поиск автора сообщения при обработке реакции
			collection: "messages",
			model: mongo.IndexModel{
				Keys: bson.D{
					{Key: "chat_id", Value: 1},
					{Key: "message_id", Value: 1},
				},
			},
		},
		{
			collection: "chats",
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for _, idx := range indexes {
		if _, err := db.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("индекс для %s: %w", idx.collection, err)
		}
		log.WithField("collection", idx.collection).Debug("Индекс готов")
	}

	return nil
}
