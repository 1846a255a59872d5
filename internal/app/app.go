// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт подключение к Mongo, репозитории,
// сервисы, обработчики и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"achivator.ru/telegram-bot/internal/bot"
	"achivator.ru/telegram-bot/internal/config"
	"achivator.ru/telegram-bot/internal/db/mongodb"
	"achivator.ru/telegram-bot/internal/features/achievements"
	"achivator.ru/telegram-bot/internal/features/admin"
	"achivator.ru/telegram-bot/internal/features/stats"
	"achivator.ru/telegram-bot/internal/jobs"
	"achivator.ru/telegram-bot/internal/metrics"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	Mongo     *mongo.Client
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	client, db, err := mongodb.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return nil, fmt.Errorf("ошибка создания индексов: %w", err)
	}

	// === 2. Telegram Bot API ===
	api, err := telego.NewBot(cfg.TelegramBotToken,
		telego.WithDefaultLogger(cfg.AppEnv == "development", true))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}

	me, err := api.GetMe(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки токена: %w", err)
	}
	log.Infof("Авторизован как @%s", me.Username)

	// === 3. Телеметрия ===
	telemetry := metrics.New(cfg.GrafanaPushURL, cfg.GrafanaUserID, cfg.GrafanaToken)
	if !telemetry.Enabled() {
		log.Info("Телеметрия выключена: параметры Grafana не заданы")
	}

	// === 4. Репозитории ===
	statsRepo := stats.NewRepository(db)
	achievementsRepo := achievements.NewRepository(db)
	adminRepo := admin.NewRepository(db)

	// === 5. Сервисы ===
	statsService := stats.NewService(statsRepo, telemetry)
	notifier := bot.NewNotifier(api, cfg.MiniAppURL, cfg.NoteDeleteDelay)
	granter := achievements.NewService(achievementsRepo, notifier, telemetry, cfg.CollectionVersion)
	evaluator := achievements.NewEvaluator(cfg.Location())
	adminService := admin.NewService(adminRepo, cfg)

	// === 6. Обработчики ===
	adminHandler := admin.NewHandler(adminService, api)

	// === 7. Собираем бота ===
	b := bot.New(api, cfg, statsService, evaluator, granter, adminHandler)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(db, telemetry, cfg.Location())

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		Mongo:     client,
	}, nil
}

// Close освобождает ресурсы приложения.
func (a *App) Close(ctx context.Context) {
	if err := a.Mongo.Disconnect(ctx); err != nil {
		log.WithError(err).Warn("Ошибка при отключении от Mongo")
	}
}
