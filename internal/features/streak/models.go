// Package streak ведёт ежедневные серии активности (стрики).
// models.go описывает запись стрика и возможные переходы.
package streak

import "time"

// Streak — запись стрика пользователя. Создаётся при первой активности,
// никогда не удаляется.
type Streak struct {
	UserID           int64     `db:"user_id" json:"user_id"`
	CurrentStreak    int       `db:"current_streak" json:"current_streak"`         // Текущая серия (дней подряд), >= 1
	LongestStreak    int       `db:"longest_streak" json:"longest_streak"`         // Личный рекорд
	LastActivityDate time.Time `db:"last_activity_date" json:"last_activity_date"` // Календарный день последней активности
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Transition — что произошло со стриком при касании.
type Transition string

const (
	TransitionCreated   Transition = "created"   // первой активности не было, серия = 1
	TransitionUnchanged Transition = "unchanged" // сегодня уже засчитано
	TransitionExtended  Transition = "extended"  // вчера была активность, серия +1
	TransitionReset     Transition = "reset"     // пропуск 2+ дней, серия = 1
	TransitionSkew      Transition = "skew"      // последняя активность в будущем, ничего не меняем
)

// Changed сообщает, нужно ли сохранять новое состояние.
func (t Transition) Changed() bool {
	switch t {
	case TransitionCreated, TransitionExtended, TransitionReset:
		return true
	}
	return false
}
