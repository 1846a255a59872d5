// Package stats ведёт статистику по паре (чат, пользователь).
// models.go описывает документы коллекций statistics, messages и chats.
package stats

import "time"

// Названия полей-счётчиков в документе статистики.
// Используются при построении $inc-обновлений.
const (
	FieldMessages  = "messages"
	FieldReactions = "reactions"

	fieldGivenPrefix    = "reactionsGiven."
	fieldReceivedPrefix = "reactionsReceived."
)

// GivenField возвращает путь счётчика выданных реакций для эмодзи.
func GivenField(emoji string) string { return fieldGivenPrefix + emoji }

// ReceivedField возвращает путь счётчика полученных реакций для эмодзи.
func ReceivedField(emoji string) string { return fieldReceivedPrefix + emoji }

// StatisticsRecord — счётчики одного пользователя в одном чате.
// Документ создаётся лениво первым $inc-upsert'ом и никогда не удаляется.
// Счётчики меняются только знаковыми дельтами, прямой перезаписи нет.
type StatisticsRecord struct {
	ChatID            int64            `bson:"chat_id"`
	UserID            int64            `bson:"user_id"`
	Messages          int64            `bson:"messages"`
	Reactions         int64            `bson:"reactions"` // нетто: снятая реакция уводит в минус
	ReactionsGiven    map[string]int64 `bson:"reactionsGiven"`
	ReactionsReceived map[string]int64 `bson:"reactionsReceived"`
	Voice             int64            `bson:"voice"`
	VideoNotes        int64            `bson:"video_note"`
	Stickers          int64            `bson:"sticker"`
}

// Given возвращает счётчик выданных реакций по эмодзи (0, если не было).
func (r *StatisticsRecord) Given(emoji string) int64 { return r.ReactionsGiven[emoji] }

// Received возвращает счётчик полученных реакций по эмодзи.
func (r *StatisticsRecord) Received(emoji string) int64 { return r.ReactionsReceived[emoji] }

// MessageRecord — лёгкий индекс (chat_id, message_id) → автор.
// Нужен только чтобы находить получателя реакции: сами реакции
// приходят без информации об авторе сообщения.
// Записи не обновляются и не удаляются; рост принят осознанно.
type MessageRecord struct {
	ChatID    int64     `bson:"chat_id"`
	UserID    int64     `bson:"user_id"`
	MessageID int       `bson:"message_id"`
	Date      time.Time `bson:"date"`
}

// ChatRecord — чат, в котором бот видел хотя бы одно текстовое сообщение.
type ChatRecord struct {
	ID    int64  `bson:"id"`
	Title string `bson:"title"`
	// Заполняется только после подтверждения через /verify
	Creator int64 `bson:"creator,omitempty"`
}
