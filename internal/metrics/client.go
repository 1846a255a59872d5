// Package metrics отправляет счётчики в Grafana Cloud
// в формате influx line protocol одной строкой на POST.
// Отправка fire-and-forget: сбой телеметрии никогда не влияет
// на обработку событий и логируется только на уровне debug.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Client — клиент пуш-эндпоинта метрик.
// Без учётных данных клиент выключен и все вызовы — no-op
// (удобно для локальной разработки и тестов).
type Client struct {
	url     string
	auth    string
	http    *http.Client
	enabled bool
}

// New создаёт клиент метрик.
// userID и token — учётные данные Grafana Cloud; если какой-то пуст,
// клиент работает вхолостую.
func New(pushURL, userID, token string) *Client {
	return &Client{
		url:     pushURL,
		auth:    fmt.Sprintf("Bearer %s:%s", userID, token),
		http:    &http.Client{Timeout: 10 * time.Second},
		enabled: pushURL != "" && userID != "" && token != "",
	}
}

// Enabled сообщает, настроен ли клиент.
func (c *Client) Enabled() bool { return c.enabled }

// Count отправляет счётчик value=1 с тегами chat_id, user_id и type.
// Не ждёт ответа — уходит в фоновую горутину.
func (c *Client) Count(measurement string, chatID, userID int64, typ string) {
	c.Send(measurement, map[string]string{
		"chat_id": fmt.Sprintf("%d", chatID),
		"user_id": fmt.Sprintf("%d", userID),
		"type":    typ,
	}, 1)
}

// Send отправляет произвольную метрику с тегами, fire-and-forget.
func (c *Client) Send(measurement string, tags map[string]string, value int64) {
	if !c.enabled {
		return
	}
	line := Line(measurement, tags, value)
	go func() {
		if err := c.push(line); err != nil {
			log.WithError(err).WithField("line", line).Debug("Метрика не отправлена")
		}
	}()
}

// Line собирает строку line protocol: <measurement>,<tag>=<v>,... value=<n>.
// Теги сортируются по ключу, чтобы строка была детерминированной.
func Line(measurement string, tags map[string]string, value int64) string {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(measurement)
	for _, k := range keys {
		b.WriteByte(',')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(escapeTag(tags[k]))
	}
	fmt.Fprintf(&b, " value=%d", value)
	return b.String()
}

// escapeTag экранирует спецсимволы line protocol в значении тега.
func escapeTag(v string) string {
	v = strings.ReplaceAll(v, " ", "\\ ")
	v = strings.ReplaceAll(v, ",", "\\,")
	v = strings.ReplaceAll(v, "=", "\\=")
	return v
}

func (c *Client) push(line string) error {
	req, err := http.NewRequest(http.MethodPost, c.url, strings.NewReader(line))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push endpoint ответил %d", resp.StatusCode)
	}
	return nil
}
