// Package events переводит сырые апдейты Telegram в семантические события бота.
// Классификация чистая: никаких походов в БД и сеть, только извлечение полей.
// Всё, что не относится к групповым чатам или приходит от ботов, отсеивается здесь.
package events

import (
	"time"

	"github.com/mymmrac/telego"
)

// ContentKind — тип содержимого сообщения, за который ведётся статистика.
type ContentKind string

const (
	ContentText      ContentKind = "messages"
	ContentVoice     ContentKind = "voice"
	ContentVideoNote ContentKind = "video_note"
	ContentSticker   ContentKind = "sticker"
)

// MessagePosted — сообщение пользователя в групповом чате.
type MessagePosted struct {
	ChatID    int64
	ChatTitle string
	UserID    int64
	FirstName string
	MessageID int
	SentAt    time.Time
	Text      string
	Entities  []string // типы entity из Telegram: "code", "pre", "mention", ...
	Content   ContentKind
}

// ReactionChanged — изменение набора реакций пользователя на сообщении.
// Added и Removed — разность нового и старого наборов, только обычные эмодзи.
type ReactionChanged struct {
	ChatID    int64
	UserID    int64
	FirstName string
	MessageID int
	Added     []string
	Removed   []string
}

// MembershipChanged — смена статуса самого бота в чате.
type MembershipChanged struct {
	ChatID    int64
	NewStatus string
}

// ClassifyMessage извлекает событие из входящего сообщения.
// Возвращает false для личных чатов, ботов, анонимных отправителей
// и типов контента, которые бот не отслеживает.
func ClassifyMessage(m *telego.Message) (MessagePosted, bool) {
	if m == nil || m.From == nil || m.From.IsBot {
		return MessagePosted{}, false
	}
	if m.Chat.Type != telego.ChatTypeGroup && m.Chat.Type != telego.ChatTypeSupergroup {
		return MessagePosted{}, false
	}

	content, ok := classifyContent(m)
	if !ok {
		return MessagePosted{}, false
	}

	entities := make([]string, 0, len(m.Entities))
	for _, e := range m.Entities {
		entities = append(entities, e.Type)
	}

	return MessagePosted{
		ChatID:    m.Chat.ID,
		ChatTitle: m.Chat.Title,
		UserID:    m.From.ID,
		FirstName: m.From.FirstName,
		MessageID: m.MessageID,
		SentAt:    time.Unix(m.Date, 0),
		Text:      m.Text,
		Entities:  entities,
		Content:   content,
	}, true
}

func classifyContent(m *telego.Message) (ContentKind, bool) {
	switch {
	case m.Voice != nil:
		return ContentVoice, true
	case m.VideoNote != nil:
		return ContentVideoNote, true
	case m.Sticker != nil:
		return ContentSticker, true
	case m.Text != "":
		return ContentText, true
	}
	// фото, опросы и прочее статистикой не покрываются
	return "", false
}

// ClassifyReaction извлекает дельту реакций из апдейта message_reaction.
// Анонимные реакции (без пользователя) для персональной статистики
// бесполезны — возвращается false, наблюдение остаётся за вызывающим.
func ClassifyReaction(r *telego.MessageReactionUpdated) (ReactionChanged, bool) {
	if r == nil || r.User == nil {
		return ReactionChanged{}, false
	}

	// Нас интересуют только обычные эмодзи; кастомные и платные
	// реакции отбрасываются до вычисления разности.
	newSet := plainEmojis(r.NewReaction)
	oldSet := plainEmojis(r.OldReaction)

	return ReactionChanged{
		ChatID:    r.Chat.ID,
		UserID:    r.User.ID,
		FirstName: r.User.FirstName,
		MessageID: r.MessageID,
		Added:     difference(newSet, oldSet),
		Removed:   difference(oldSet, newSet),
	}, true
}

// ClassifyMembership извлекает новый статус бота из апдейта my_chat_member.
func ClassifyMembership(c *telego.ChatMemberUpdated) MembershipChanged {
	return MembershipChanged{
		ChatID:    c.Chat.ID,
		NewStatus: c.NewChatMember.MemberStatus(),
	}
}

func plainEmojis(reactions []telego.ReactionType) []string {
	out := make([]string, 0, len(reactions))
	for _, r := range reactions {
		if e, ok := r.(*telego.ReactionTypeEmoji); ok {
			out = append(out, e.Emoji)
		}
	}
	return out
}

// difference возвращает элементы a, которых нет в b.
func difference(a, b []string) []string {
	var out []string
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
				break
			}
		}
		if !found {
			out = append(out, x)
		}
	}
	return out
}
