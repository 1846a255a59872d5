package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"achivator.ru/telegram-bot/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := config.Load()
	require.NoError(t, err)

	require.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	require.Equal(t, "achivator_bot", cfg.MongoDatabase)
	require.Equal(t, "v1", cfg.CollectionVersion)
	require.Equal(t, 30*time.Second, cfg.NoteDeleteDelay)
	require.Equal(t, 64, cfg.BotMaxInflight)
	require.Equal(t, 60, cfg.BotUpdateTimeoutSeconds)
	require.Empty(t, cfg.AdminIDs)
}

func TestLoad_RequiresToken(t *testing.T) {
	// t.Setenv регистрирует восстановление, после чего переменную можно снять
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	os.Unsetenv("TELEGRAM_BOT_TOKEN")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_AdminIDs(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "100, 200 ,300")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, []int64{100, 200, 300}, cfg.AdminIDs)
}

func TestLoad_BadAdminIDs(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("ADMIN_IDS", "100,petya")

	_, err := config.Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("BOT_MAX_INFLIGHT", "0")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLocation(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := config.Load()
	require.NoError(t, err)

	// дефолт — Москва; либо зона из tzdata, либо запасная UTC+3
	_, offset := time.Now().In(cfg.Location()).Zone()
	require.Equal(t, 3*60*60, offset)
}

func TestLocation_FallbackOnGarbage(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("APP_TIMEZONE", "Nowhere/Nonexistent")

	cfg, err := config.Load()
	require.NoError(t, err)

	_, offset := time.Now().In(cfg.Location()).Zone()
	require.Equal(t, 3*60*60, offset)
}
