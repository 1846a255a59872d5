package stats_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"achivator.ru/telegram-bot/internal/events"
	"achivator.ru/telegram-bot/internal/features/stats"
)

// fakeStore накапливает дельты в памяти по контракту настоящего
// хранилища: Increment атомарен и возвращает документ после обновления.
type fakeStore struct {
	mu       sync.Mutex
	records  map[string]*stats.StatisticsRecord
	authors  map[string]int64
	chats    map[int64]string
	inserted int

	incrementErr error
	authorErr    error
	ensureErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: map[string]*stats.StatisticsRecord{},
		authors: map[string]int64{},
		chats:   map[int64]string{},
	}
}

func userKey(chatID, userID int64) string   { return fmt.Sprintf("%d/%d", chatID, userID) }
func msgKey(chatID int64, msgID int) string { return fmt.Sprintf("%d/%d", chatID, msgID) }

func (f *fakeStore) Increment(_ context.Context, chatID, userID int64, fields map[string]int64) (*stats.StatisticsRecord, error) {
	if f.incrementErr != nil {
		return nil, f.incrementErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	rec, ok := f.records[userKey(chatID, userID)]
	if !ok {
		rec = &stats.StatisticsRecord{
			ChatID:            chatID,
			UserID:            userID,
			ReactionsGiven:    map[string]int64{},
			ReactionsReceived: map[string]int64{},
		}
		f.records[userKey(chatID, userID)] = rec
	}

	for field, delta := range fields {
		switch {
		case field == stats.FieldMessages:
			rec.Messages += delta
		case field == stats.FieldReactions:
			rec.Reactions += delta
		case field == "voice":
			rec.Voice += delta
		case field == "video_note":
			rec.VideoNotes += delta
		case field == "sticker":
			rec.Stickers += delta
		case strings.HasPrefix(field, "reactionsGiven."):
			rec.ReactionsGiven[strings.TrimPrefix(field, "reactionsGiven.")] += delta
		case strings.HasPrefix(field, "reactionsReceived."):
			rec.ReactionsReceived[strings.TrimPrefix(field, "reactionsReceived.")] += delta
		default:
			return nil, fmt.Errorf("неизвестное поле %q", field)
		}
	}

	return snapshot(rec), nil
}

func (f *fakeStore) InsertMessage(_ context.Context, m *stats.MessageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authors[msgKey(m.ChatID, m.MessageID)] = m.UserID
	f.inserted++
	return nil
}

func (f *fakeStore) MessageAuthor(_ context.Context, chatID int64, messageID int) (int64, bool, error) {
	if f.authorErr != nil {
		return 0, false, f.authorErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	author, ok := f.authors[msgKey(chatID, messageID)]
	return author, ok, nil
}

func (f *fakeStore) EnsureChat(_ context.Context, chatID int64, title string) error {
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.chats[chatID]; !ok {
		f.chats[chatID] = title
	}
	return nil
}

func snapshot(rec *stats.StatisticsRecord) *stats.StatisticsRecord {
	out := *rec
	out.ReactionsGiven = map[string]int64{}
	for k, v := range rec.ReactionsGiven {
		out.ReactionsGiven[k] = v
	}
	out.ReactionsReceived = map[string]int64{}
	for k, v := range rec.ReactionsReceived {
		out.ReactionsReceived[k] = v
	}
	return &out
}

type nopRecorder struct{}

func (nopRecorder) Count(string, int64, int64, string) {}

func textMessage(userID int64, messageID int) events.MessagePosted {
	return events.MessagePosted{
		ChatID:    -100123,
		ChatTitle: "Тестовый чат",
		UserID:    userID,
		FirstName: "Вася",
		MessageID: messageID,
		SentAt:    time.Now(),
		Text:      "привет",
		Content:   events.ContentText,
	}
}

func TestRecordMessage_Text(t *testing.T) {
	store := newFakeStore()
	svc := stats.NewService(store, nopRecorder{})

	rec, err := svc.RecordMessage(context.Background(), textMessage(7, 42))
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.Messages)

	// индекс сообщений и запись чата пополнились
	author, found, err := store.MessageAuthor(context.Background(), -100123, 42)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(7), author)
	require.Equal(t, "Тестовый чат", store.chats[-100123])

	rec, err = svc.RecordMessage(context.Background(), textMessage(7, 43))
	require.NoError(t, err)
	require.Equal(t, int64(2), rec.Messages)
}

func TestRecordMessage_Media(t *testing.T) {
	store := newFakeStore()
	svc := stats.NewService(store, nopRecorder{})

	ev := textMessage(7, 42)
	ev.Text = ""
	ev.Content = events.ContentVoice

	rec, err := svc.RecordMessage(context.Background(), ev)
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.Voice)
	require.Equal(t, int64(0), rec.Messages)

	// медиа в индекс сообщений не попадает: реакции ищут только текст
	require.Equal(t, 0, store.inserted)
}

func TestRecordMessage_EnsureChatFailureTolerated(t *testing.T) {
	store := newFakeStore()
	store.ensureErr = errors.New("mongo down")
	svc := stats.NewService(store, nopRecorder{})

	rec, err := svc.RecordMessage(context.Background(), textMessage(7, 42))
	require.NoError(t, err)
	require.Equal(t, int64(1), rec.Messages)
}

func reactionEvent(added, removed []string) events.ReactionChanged {
	return events.ReactionChanged{
		ChatID:    -100123,
		UserID:    7,
		FirstName: "Вася",
		MessageID: 42,
		Added:     added,
		Removed:   removed,
	}
}

func TestApplyReaction_BothSides(t *testing.T) {
	store := newFakeStore()
	svc := stats.NewService(store, nopRecorder{})

	// пользователь 9 написал сообщение 42
	_, err := svc.RecordMessage(context.Background(), textMessage(9, 42))
	require.NoError(t, err)

	out, err := svc.ApplyReaction(context.Background(), reactionEvent([]string{"👍"}, nil))
	require.NoError(t, err)

	require.Equal(t, int64(1), out.Actor.Reactions)
	require.Equal(t, int64(1), out.Actor.Given("👍"))

	require.NotNil(t, out.Receiver)
	require.Equal(t, int64(9), out.ReceiverID)
	require.Equal(t, int64(1), out.Receiver.Received("👍"))
	// полученная реакция нетто-счётчик получателя не трогает
	require.Equal(t, int64(0), out.Receiver.Reactions)
}

func TestApplyReaction_Removal(t *testing.T) {
	store := newFakeStore()
	svc := stats.NewService(store, nopRecorder{})

	_, err := svc.RecordMessage(context.Background(), textMessage(9, 42))
	require.NoError(t, err)

	_, err = svc.ApplyReaction(context.Background(), reactionEvent([]string{"👍"}, nil))
	require.NoError(t, err)

	out, err := svc.ApplyReaction(context.Background(), reactionEvent(nil, []string{"👍"}))
	require.NoError(t, err)

	require.Equal(t, int64(0), out.Actor.Reactions)
	require.Equal(t, int64(0), out.Actor.Given("👍"))
	require.Equal(t, int64(0), out.Receiver.Received("👍"))
}

func TestApplyReaction_EmptyDelta(t *testing.T) {
	store := newFakeStore()
	store.incrementErr = errors.New("хранилище трогать нельзя")
	svc := stats.NewService(store, nopRecorder{})

	out, err := svc.ApplyReaction(context.Background(), reactionEvent(nil, nil))
	require.NoError(t, err)
	require.Nil(t, out.Actor)
	require.Nil(t, out.Receiver)
}

func TestApplyReaction_UnknownAuthor(t *testing.T) {
	store := newFakeStore()
	svc := stats.NewService(store, nopRecorder{})

	// реакция на сообщение, которого нет в индексе
	out, err := svc.ApplyReaction(context.Background(), reactionEvent([]string{"🔥"}, nil))
	require.NoError(t, err)
	require.NotNil(t, out.Actor)
	require.Equal(t, int64(1), out.Actor.Given("🔥"))
	require.Nil(t, out.Receiver)
}

func TestApplyReaction_AuthorLookupErrorSwallowed(t *testing.T) {
	store := newFakeStore()
	store.authorErr = errors.New("mongo down")
	svc := stats.NewService(store, nopRecorder{})

	out, err := svc.ApplyReaction(context.Background(), reactionEvent([]string{"🔥"}, nil))
	require.NoError(t, err)
	require.NotNil(t, out.Actor)
	require.Nil(t, out.Receiver)
}

// Итоговые счётчики не зависят от порядка применения событий:
// все дельты коммутативны.
func TestApplyReaction_OrderIndependent(t *testing.T) {
	evA := reactionEvent([]string{"👍", "🔥"}, nil)
	evB := reactionEvent(nil, []string{"👍"})

	run := func(first, second events.ReactionChanged) *stats.StatisticsRecord {
		store := newFakeStore()
		svc := stats.NewService(store, nopRecorder{})

		_, err := svc.ApplyReaction(context.Background(), first)
		require.NoError(t, err)
		out, err := svc.ApplyReaction(context.Background(), second)
		require.NoError(t, err)
		return out.Actor
	}

	ab := run(evA, evB)
	ba := run(evB, evA)

	require.Equal(t, ab.Reactions, ba.Reactions)
	require.Equal(t, ab.ReactionsGiven, ba.ReactionsGiven)
	require.Equal(t, int64(1), ab.Reactions)
	require.Equal(t, int64(0), ab.Given("👍"))
	require.Equal(t, int64(1), ab.Given("🔥"))
}
