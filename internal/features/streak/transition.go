package streak

import (
	"time"

	"serotonyl.ru/edu-engagement/internal/common"
)

// Advance вычисляет новое состояние стрика для касания в день today.
// prev == nil — записи ещё нет. today должен быть уже обрезан до дня
// в часовом поясе сервиса.
//
// Сравнение идёт по календарным дням, а не по 24-часовым интервалам:
//
//	разница 0  → без изменений
//	разница 1  → серия +1
//	разница >1 → серия = 1
//	разница <0 → без изменений (сдвиг часов)
func Advance(prev *Streak, userID int64, today time.Time) (Streak, Transition) {
	if prev == nil {
		return Streak{
			UserID:           userID,
			CurrentStreak:    1,
			LongestStreak:    1,
			LastActivityDate: today,
		}, TransitionCreated
	}

	next := *prev
	gap := common.DaysBetween(prev.LastActivityDate, today)
	switch {
	case gap == 0:
		return next, TransitionUnchanged
	case gap < 0:
		return next, TransitionSkew
	case gap == 1:
		next.CurrentStreak++
		next.LastActivityDate = today
		if next.CurrentStreak > next.LongestStreak {
			next.LongestStreak = next.CurrentStreak
		}
		return next, TransitionExtended
	default:
		next.CurrentStreak = 1
		next.LastActivityDate = today
		if next.LongestStreak < 1 {
			next.LongestStreak = 1
		}
		return next, TransitionReset
	}
}
