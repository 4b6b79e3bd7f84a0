// Package ledger — единственная точка начисления и списания кармы.
// models.go описывает записи журнала и расхождения при сверке.
package ledger

import "time"

// Entry — одна неизменяемая запись журнала кармы.
// Сумма со знаком: положительная — начисление, отрицательная — списание.
type Entry struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Amount    int64     `db:"amount" json:"amount"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Drift — пользователь, у которого кешированный баланс не равен сумме журнала.
// В нормальной работе сверка возвращает пустой список.
type Drift struct {
	UserID    int64 `json:"user_id"`
	Cached    int64 `json:"cached"`
	LedgerSum int64 `json:"ledger_sum"`
}

// Причины начислений. Диспетчер их не интерпретирует — только для истории.
const (
	ReasonLessonCompletion = "lesson completion"
	ReasonEnrollmentBonus  = "enrollment bonus"
	ReasonPostUpvoted      = "post upvoted"
	ReasonAdminPrefix      = "admin: "
)

// History limits
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)
