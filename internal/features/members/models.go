// Package members управляет пользователями, которых знает ядро вовлечённости.
// Саму учётную запись ведёт внешняя система; здесь только id, отображаемое имя
// и кешированный баланс кармы.
// models.go описывает структуры данных для работы с таблицей users.
package members

import (
	"strconv"
	"time"
)

// Member представляет пользователя в таблице users.
// KarmaBalance меняет только диспетчер наград (пакет ledger).
type Member struct {
	ID           int64     `db:"id" json:"id"`                       // ID пользователя во внешней системе
	DisplayName  string    `db:"display_name" json:"display_name"`   // Отображаемое имя
	KarmaBalance int64     `db:"karma_balance" json:"karma_balance"` // Кеш суммы журнала
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Name возвращает отображаемое имя или «user#ID», если имя пустое.
func (m *Member) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return "user#" + strconv.FormatInt(m.ID, 10)
}

// Лимиты списка пользователей
const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)
