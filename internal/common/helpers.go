// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: работа с календарными днями, русская плюрализация, форматирование кармы.
package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TruncateDay отбрасывает время суток в часовом поясе loc.
// Результат — полночь того же календарного дня.
func TruncateDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DaysBetween возвращает разницу в календарных днях (to − from).
// Считаем по датам, а не по длительности: переход на летнее время
// и 23/25-часовые сутки на результат не влияют.
//
// Примеры:
//
//	DaysBetween(1 марта 23:59, 2 марта 00:01) → 1
//	DaysBetween(2 марта 10:00, 2 марта 22:00) → 0
//	DaysBetween(3 марта, 1 марта)             → -2
func DaysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// FormatKarma форматирует баланс кармы в читабельную строку.
// Пример: FormatKarma(2350) → "2 350 karma"
func FormatKarma(balance int64) string {
	return FormatNumber(balance) + " karma"
}

// FormatKarmaDelta создаёт строку вида "+50 karma" или "-5 karma".
func FormatKarmaDelta(amount int64) string {
	if amount >= 0 {
		return "+" + FormatNumber(amount) + " karma"
	}
	return FormatNumber(amount) + " karma"
}

// FormatStreak возвращает подпись стрика: "🔥 3 дня подряд".
func FormatStreak(days int) string {
	return fmt.Sprintf("🔥 %d %s подряд", days, PluralizeDays(days))
}

// ParseID разбирает положительный идентификатор из пути запроса.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
