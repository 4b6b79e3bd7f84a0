// Package admin — служебные операции: ручная корректировка кармы, сверка
// журнала, проверка сервисного токена.
// models.go описывает запросы и параметры защиты от перебора.
package admin

import "time"

// Защита от перебора токена: после MaxFailedAttempts неудач за LockoutWindow
// адрес блокируется до конца окна.
const (
	MaxFailedAttempts = 3
	LockoutWindow     = time.Hour
)

// Adjustment — ручная корректировка кармы.
type Adjustment struct {
	UserID int64  `json:"user_id" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
	Note   string `json:"note" binding:"required"`
}

// AdjustmentResult — итог корректировки.
type AdjustmentResult struct {
	UserID  int64  `json:"user_id"`
	Amount  int64  `json:"amount"`
	Reason  string `json:"reason"`
	Balance int64  `json:"balance"`
}
