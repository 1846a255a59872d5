// Package achievements — repository.go выполняет операции
// с коллекцией achievements (реестром выданных достижений).
package achievements

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrAlreadyGranted — достижение уже записано в реестр.
// Возникает, когда вторая из двух параллельных выдач проигрывает
// гонку на уникальном индексе.
var ErrAlreadyGranted = errors.New("достижение уже выдано")

// Repository работает с реестром достижений.
type Repository struct {
	achievements *mongo.Collection
}

// NewRepository создаёт репозиторий достижений.
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{achievements: db.Collection("achievements")}
}

// Exists проверяет, выдано ли достижение для кортежа
// (чат, пользователь, вид, версия коллекции).
func (r *Repository) Exists(ctx context.Context, chatID, userID int64, kind Kind, collection string) (bool, error) {
	err := r.achievements.FindOne(ctx, bson.M{
		"chat_id":    chatID,
		"user_id":    userID,
		"type":       kind,
		"collection": collection,
	}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("ошибка поиска достижения: %w", err)
	}
	return true, nil
}

// Insert записывает выдачу в реестр.
// Конфликт уникального индекса переводится в ErrAlreadyGranted.
func (r *Repository) Insert(ctx context.Context, rec *Record) error {
	_, err := r.achievements.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		return ErrAlreadyGranted
	}
	if err != nil {
		return fmt.Errorf("ошибка записи достижения: %w", err)
	}
	return nil
}
