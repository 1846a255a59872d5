package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"achivator.ru/telegram-bot/internal/metrics"
)

func TestLine(t *testing.T) {
	line := metrics.Line("messages", map[string]string{
		"user_id": "7",
		"chat_id": "-100123",
		"type":    "voice",
	}, 1)

	// теги отсортированы по ключу
	require.Equal(t, "messages,chat_id=-100123,type=voice,user_id=7 value=1", line)
}

func TestLine_NoTags(t *testing.T) {
	require.Equal(t, "collections value=42", metrics.Line("collections", nil, 42))
}

func TestLine_EscapesTagValues(t *testing.T) {
	line := metrics.Line("collections", map[string]string{
		"name": "my chats,v=1",
	}, 3)
	require.Equal(t, `collections,name=my\ chats\,v\=1 value=3`, line)
}

func TestSend_Push(t *testing.T) {
	type received struct {
		body string
		auth string
	}
	got := make(chan received, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got <- received{body: string(body), auth: r.Header.Get("Authorization")}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := metrics.New(srv.URL, "user", "token")
	require.True(t, c.Enabled())

	c.Count("achievements", -100123, 7, "newbie")

	select {
	case r := <-got:
		require.Equal(t, "achievements,chat_id=-100123,type=newbie,user_id=7 value=1", r.body)
		require.Equal(t, "Bearer user:token", r.auth)
	case <-time.After(2 * time.Second):
		t.Fatal("метрика не дошла до эндпоинта")
	}
}

func TestSend_DisabledIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("выключенный клиент не должен отправлять запросы")
	}))
	defer srv.Close()

	c := metrics.New(srv.URL, "", "")
	require.False(t, c.Enabled())

	c.Count("messages", -100123, 7, "messages")
	time.Sleep(50 * time.Millisecond)
}
