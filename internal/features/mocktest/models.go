// Package mocktest — попытки пробных тестов и награда за результат.
// Пересдачи разрешены: каждая попытка — новая запись и новое начисление.
package mocktest

import "time"

// Status — итог попытки.
type Status string

const (
	StatusPassed Status = "PASSED"
	StatusFailed Status = "FAILED"
)

// MockTest — пробный тест. PassingThreshold в процентах; 0 — порог по умолчанию.
type MockTest struct {
	ID               int64     `db:"id" json:"id"`
	Title            string    `db:"title" json:"title"`
	MaxScore         float64   `db:"max_score" json:"max_score"`
	PassingThreshold float64   `db:"passing_threshold" json:"passing_threshold"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// Attempt — неизменяемая запись попытки.
type Attempt struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	MockTestID  int64     `db:"mock_test_id" json:"mock_test_id"`
	Score       float64   `db:"score" json:"score"`
	Percentage  float64   `db:"percentage" json:"percentage"`
	Status      Status    `db:"status" json:"status"`
	KarmaDelta  int64     `db:"karma_delta" json:"karma_delta"`
	Reason      string    `db:"reason" json:"reason"`
	CompletedAt time.Time `db:"completed_at" json:"completed_at"`
}

// Result — ответ на отправку попытки.
type Result struct {
	Attempt    *Attempt `json:"attempt"`
	Status     Status   `json:"status"`
	KarmaDelta int64    `json:"karma_delta"`
	Reason     string   `json:"reason"`
	Balance    int64    `json:"balance"`
}

// Лимиты списка попыток
const (
	DefaultAttemptsLimit = 20
	MaxAttemptsLimit     = 100
)
