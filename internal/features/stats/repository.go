// Package stats — repository.go выполняет операции с коллекциями
// statistics, messages и chats в MongoDB.
package stats

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository предоставляет методы для работы со статистикой.
type Repository struct {
	statistics *mongo.Collection
	messages   *mongo.Collection
	chats      *mongo.Collection
}

// NewRepository создаёт репозиторий статистики.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{
		statistics: db.Collection("statistics"),
		messages:   db.Collection("messages"),
		chats:      db.Collection("chats"),
	}
}

// Increment атомарно применяет знаковые дельты к счётчикам пользователя
// и возвращает документ ПОСЛЕ обновления. Отсутствующий документ
// создаётся с дельтами в качестве начальных значений (upsert).
func (r *Repository) Increment(ctx context.Context, chatID, userID int64, fields map[string]int64) (*StatisticsRecord, error) {
	rec, err := r.tryIncrement(ctx, chatID, userID, fields)
	if mongo.IsDuplicateKeyError(err) {
		// Два параллельных upsert'а по новому ключу: проигравший
		// повторяет по уже существующему документу.
		rec, err = r.tryIncrement(ctx, chatID, userID, fields)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления статистики (chat=%d user=%d): %w", chatID, userID, err)
	}
	return rec, nil
}

func (r *Repository) tryIncrement(ctx context.Context, chatID, userID int64, fields map[string]int64) (*StatisticsRecord, error) {
	inc := bson.M{}
	for field, delta := range fields {
		inc[field] = delta
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var rec StatisticsRecord
	err := r.statistics.FindOneAndUpdate(ctx,
		bson.M{"chat_id": chatID, "user_id": userID},
		bson.M{"$inc": inc},
		opts,
	).Decode(&rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertMessage добавляет запись в индекс сообщений.
func (r *Repository) InsertMessage(ctx context.Context, m *MessageRecord) error {
	if _, err := r.messages.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("ошибка записи индекса сообщений: %w", err)
	}
	return nil
}

// MessageAuthor ищет автора сообщения по индексу.
// Отсутствие записи — ожидаемая ситуация (сообщение старше бота), не ошибка.
func (r *Repository) MessageAuthor(ctx context.Context, chatID int64, messageID int) (int64, bool, error) {
	var m MessageRecord
	err := r.messages.FindOne(ctx, bson.M{"chat_id": chatID, "message_id": messageID}).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка поиска автора сообщения: %w", err)
	}
	return m.UserID, true, nil
}

// EnsureChat лениво создаёт запись чата.
// Чтение-потом-запись намеренно гоночное: проигравший дубликат
// упирается в уникальный индекс по id и молча игнорируется.
func (r *Repository) EnsureChat(ctx context.Context, chatID int64, title string) error {
	err := r.chats.FindOne(ctx, bson.M{"id": chatID}).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("ошибка поиска чата: %w", err)
	}

	_, err = r.chats.InsertOne(ctx, &ChatRecord{ID: chatID, Title: title})
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ошибка создания чата: %w", err)
	}
	return nil
}
