// Package achievements — evaluator.go проверяет предикаты каталога.
// Проверка чистая и реактивная: вызывается один раз на событие,
// смотрит на счётчики ПОСЛЕ применения дельты, фоновых обходов нет.
package achievements

import (
	"regexp"
	"time"

	"achivator.ru/telegram-bot/internal/events"
	"achivator.ru/telegram-bot/internal/features/stats"
)

// Пороги счётчиков. Сравнение строго на равенство (== 100, не >= 100):
// счётчик, проскочивший порог многоединичной дельтой, достижения
// не открывает. Это осознанное поведение, не баг.
const (
	newbieThreshold = 10
	countThreshold  = 100
)

var (
	// Три и более восклицательных знака подряд
	exclamationRe = regexp.MustCompile(`!{3,}`)
	// Отдельно стоящее четырёхзначное число 9000–9999
	over9000Re = regexp.MustCompile(`\b9\d{3}\b`)
)

// Эмодзи-бейджи: какой вид достижения закреплён за каждым эмодзи.
var (
	givenBadges = map[string]Kind{
		"🤡":  KindSadClown,
		"❤️": KindSpreadTheLove,
		"👍":  KindLikesForEveryone,
		"🔥":  KindFireStarter,
		"💩":  KindPoopMaster,
	}
	receivedBadges = map[string]Kind{
		"👍":  KindLiked,
		"🔥":  KindOnFire,
		"❤️": KindLoved,
		"🤡":  KindClown,
		"💩":  KindPoop,
	}
	mediaBadges = map[events.ContentKind]Kind{
		events.ContentVoice:     KindVoicy,
		events.ContentVideoNote: KindTelescope,
		events.ContentSticker:   KindSticker,
	}
)

// Evaluator проверяет каталог предикатов.
// Часовой пояс нужен календарным достижениям: «полночь» и «24 декабря»
// считаются по локальному времени приложения.
type Evaluator struct {
	loc *time.Location
}

// NewEvaluator создаёт проверщик достижений.
func NewEvaluator(loc *time.Location) *Evaluator {
	return &Evaluator{loc: loc}
}

// Message возвращает кандидатов по текстовому сообщению.
// Одно сообщение может открыть сразу несколько достижений.
func (e *Evaluator) Message(rec *stats.StatisticsRecord, ev events.MessagePosted) []Kind {
	var kinds []Kind

	// Счётчик сообщений меняется только на +1, поэтому достаточно равенства
	switch rec.Messages {
	case newbieThreshold:
		kinds = append(kinds, KindNewbie)
	case countThreshold:
		kinds = append(kinds, KindTalkative)
	}

	for _, entity := range ev.Entities {
		if entity == "code" || entity == "pre" {
			kinds = append(kinds, KindProgrammer)
			break
		}
	}

	sent := ev.SentAt.In(e.loc)
	if sent.Hour() == 0 && sent.Minute() == 0 && sent.Second() == 0 {
		kinds = append(kinds, KindNightOwl)
	}
	if sent.Month() == time.December && sent.Day() == 24 {
		kinds = append(kinds, KindSanta)
	}

	if exclamationRe.MatchString(ev.Text) {
		kinds = append(kinds, KindExclamator)
	}
	if over9000Re.MatchString(ev.Text) {
		kinds = append(kinds, KindOver9000)
	}

	return kinds
}

// Media возвращает безусловное достижение за особый тип контента.
// Первым и единственным его делает дедупликация в реестре.
func (e *Evaluator) Media(content events.ContentKind) (Kind, bool) {
	kind, ok := mediaBadges[content]
	return kind, ok
}

// ReactionActor возвращает кандидатов для автора реакции.
func (e *Evaluator) ReactionActor(rec *stats.StatisticsRecord, added, removed []string) []Kind {
	var kinds []Kind

	// Нетто-дельта больше единицы проскакивает порог, не открывая его
	net := len(added) - len(removed)
	if hitsExactly(rec.Reactions, int64(net), countThreshold) {
		kinds = append(kinds, KindReactive)
	}

	for _, emoji := range mutated(added, removed) {
		badge, ok := givenBadges[emoji]
		if ok && rec.Given(emoji) == countThreshold {
			kinds = append(kinds, badge)
		}
	}

	return kinds
}

// ReactionReceiver возвращает кандидатов для автора сообщения,
// на котором поменялись реакции.
func (e *Evaluator) ReactionReceiver(rec *stats.StatisticsRecord, added, removed []string) []Kind {
	var kinds []Kind
	for _, emoji := range mutated(added, removed) {
		badge, ok := receivedBadges[emoji]
		if ok && rec.Received(emoji) == countThreshold {
			kinds = append(kinds, badge)
		}
	}
	return kinds
}

// hitsExactly — политика точного попадания: порог засчитывается,
// только когда счётчик пришёл в него единичным шагом.
func hitsExactly(value, delta, threshold int64) bool {
	if delta != 1 && delta != -1 {
		return false
	}
	return value == threshold
}

// mutated — эмодзи, чьи счётчики затронуло событие.
// Added и Removed не пересекаются (это разность множеств),
// поэтому каждый счётчик проверяется ровно один раз.
func mutated(added, removed []string) []string {
	out := make([]string, 0, len(added)+len(removed))
	out = append(out, added...)
	out = append(out, removed...)
	return out
}
