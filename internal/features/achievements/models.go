// Package achievements — models.go описывает документ выданного достижения.
package achievements

import "time"

// Record — факт выдачи достижения.
// Кортеж (chat_id, user_id, type, collection) уникален: на нём стоит
// индекс, который закрывает гонку двух параллельных выдач.
type Record struct {
	ChatID int64     `bson:"chat_id"`
	UserID int64     `bson:"user_id"`
	Type   Kind      `bson:"type"`
	Date   time.Time `bson:"date"`
	// Сообщение-триггер; 0, если достижение пришло не от сообщения
	MessageID int `bson:"message_id,omitempty"`
	// Версия коллекции наград (тег схемы внешнего артефакта)
	Collection string `bson:"collection"`
}
