// Package ranking считает позицию пользователя по балансу кармы среди всех
// пользователей. Только чтение: блокировок нет, устаревшие данные допустимы.
package ranking

// Standing — позиция пользователя.
type Standing struct {
	UserID     int64 `json:"user_id"`
	Balance    int64 `json:"balance"`
	Rank       int64 `json:"rank"`       // 1 — лучший
	Population int64 `json:"population"` // размер популяции, против которой считался процентиль
	Percentile int   `json:"percentile"` // доля популяции ниже, [1, 99]
	Scaled     bool  `json:"scaled"`     // true, если к позиции применено отображаемое масштабирование
}

// Границы процентиля
const (
	MinPercentile = 1
	MaxPercentile = 99
)

// TrueStanding строит истинную позицию по числу пользователей с балансом
// строго выше (above) и размеру популяции.
//
// Равные балансы получают одинаковый ранг. Счётчики могут прийти из разных
// запросов, поэтому ранг ограничивается размером популяции.
func TrueStanding(userID, balance, above, population int64) Standing {
	if above < 0 {
		above = 0
	}
	rank := above + 1
	if population < rank {
		population = rank
	}
	return Standing{
		UserID:     userID,
		Balance:    balance,
		Rank:       rank,
		Population: population,
		Percentile: Percentile(rank, population),
	}
}

// Percentile возвращает долю популяции ниже ранга: 100*(population-rank)/population,
// ограниченную диапазоном [1, 99].
func Percentile(rank, population int64) int {
	if population <= 0 {
		return MinPercentile
	}
	p := 100 * (population - rank) / population
	switch {
	case p < MinPercentile:
		return MinPercentile
	case p > MaxPercentile:
		return MaxPercentile
	}
	return int(p)
}

// Label — подпись позиции для отображения.
func Label(percentile int) string {
	switch {
	case percentile >= 99:
		return "топ 1%"
	case percentile >= 95:
		return "топ 5%"
	case percentile >= 90:
		return "топ 10%"
	case percentile >= 75:
		return "топ 25%"
	case percentile >= 50:
		return "верхняя половина"
	}
	return "есть куда расти"
}
