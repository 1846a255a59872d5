// Package achievements реализует каталог достижений, их проверку и выдачу.
// kinds.go описывает закрытый набор видов достижений.
package achievements

// Kind — вид достижения. Набор фиксированный: строковые значения
// попадают в БД и мини-приложение, менять их нельзя.
type Kind string

const (
	// За счётчики сообщений
	KindNewbie    Kind = "newbie"    // 10 сообщений
	KindTalkative Kind = "talkative" // 100 сообщений

	// За содержимое сообщения
	KindProgrammer Kind = "programmer" // code/pre entity
	KindNightOwl   Kind = "night owl"  // отправлено ровно в 00:00:00
	KindSanta      Kind = "Santa"      // отправлено 24 декабря
	KindExclamator Kind = "exclamator" // "!!!" и длиннее
	KindOver9000   Kind = "over 9000"  // отдельное число 9000–9999

	// За реакции (актор)
	KindReactive         Kind = "reactive"           // 100 реакций нетто
	KindSadClown         Kind = "sad clown"          // выдал 100 × 🤡
	KindSpreadTheLove    Kind = "spread the love"    // выдал 100 × ❤️
	KindLikesForEveryone Kind = "likes for everyone" // выдал 100 × 👍
	KindFireStarter      Kind = "fire starter"       // выдал 100 × 🔥
	KindPoopMaster       Kind = "poop master"        // выдал 100 × 💩

	// За реакции (получатель)
	KindLiked  Kind = "liked"   // получил 100 × 👍
	KindOnFire Kind = "on fire" // получил 100 × 🔥
	KindLoved  Kind = "loved"   // получил 100 × ❤️
	KindClown  Kind = "clown"   // получил 100 × 🤡
	KindPoop   Kind = "poop"    // получил 100 × 💩

	// За первое сообщение особого типа
	KindVoicy     Kind = "voicy"     // голосовое
	KindTelescope Kind = "telescope" // видео-кружок
	KindSticker   Kind = "sticker"   // стикер
)
