// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Операторы бота (через запятую). Только им доступна команда /migrate.
	AdminIDsRaw string  `envconfig:"ADMIN_IDS"`
	AdminIDs    []int64 `envconfig:"-"` // заполним вручную

	// --- MongoDB ---
	MongoURI      string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"achivator_bot"`

	// --- Grafana (push метрик в формате influx line protocol) ---
	GrafanaPushURL string `envconfig:"GRAFANA_PUSH_URL" default:"https://influx-prod-24-prod-eu-west-2.grafana.net/api/v1/push/influx/write"`
	GrafanaUserID  string `envconfig:"GRAFANA_USER_ID"`
	GrafanaToken   string `envconfig:"GRAFANA_TOKEN"`

	// --- Достижения ---
	// Версия коллекции наград. При выпуске нового набора версия меняется,
	// и достижения начинают выдаваться заново.
	CollectionVersion string `envconfig:"COLLECTION_VERSION" default:"v1"`
	// Через сколько удалять поздравление из чата
	NoteDeleteDelay time.Duration `envconfig:"NOTE_DELETE_DELAY" default:"30s"`
	MiniAppURL      string        `envconfig:"MINI_APP_URL" default:"https://t.me/achivator_bot/app"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`
}

// Location возвращает часовой пояс приложения.
// По нему считаются «полночные» и календарные достижения.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		// Если не удалось загрузить — используем UTC+3 вручную
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

func (c *Config) Validate() error {
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.NoteDeleteDelay < 0 {
		return fmt.Errorf("NOTE_DELETE_DELAY не может быть отрицательным")
	}
	if c.CollectionVersion == "" {
		return fmt.Errorf("COLLECTION_VERSION не может быть пустым")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}
