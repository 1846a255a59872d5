// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневный отчёт о размерах
// коллекций в телеметрию.
package jobs

import (
	"context"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"achivator.ru/telegram-bot/internal/db/mongodb"
	"achivator.ru/telegram-bot/internal/metrics"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron    *cron.Cron
	db      *mongo.Database
	metrics *metrics.Client
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(db *mongo.Database, client *metrics.Client, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		db:      db,
		metrics: client,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ежедневный отчёт о размерах коллекций в 00:00
	s.cron.AddFunc("0 0 * * *", func() {
		log.Info("[CRON] Отчёт о размерах коллекций")
		s.reportCollectionSizes(ctx)
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается завершения текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}

// reportCollectionSizes отправляет количество документов каждой
// коллекции в телеметрию.
func (s *Scheduler) reportCollectionSizes(ctx context.Context) {
	countCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, name := range mongodb.Collections {
		n, err := s.db.Collection(name).CountDocuments(countCtx, bson.D{})
		if err != nil {
			log.WithError(err).WithField("collection", name).Error("[CRON] Ошибка подсчёта документов")
			continue
		}

		log.WithFields(log.Fields{
			"collection": name,
			"documents":  strconv.FormatInt(n, 10),
		}).Debug("[CRON] Размер коллекции")

		s.metrics.Send("collections", map[string]string{"name": name}, n)
	}
}
