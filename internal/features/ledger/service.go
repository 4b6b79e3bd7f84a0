// Package ledger — service.go содержит диспетчер наград.
// Все фичи (уроки, голоса, тесты, зачисления) меняют карму только через Award.
package ledger

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/events"
)

// Store — хранилище журнала и баланса.
// AppendEntry обязан быть атомарным: запись в журнал и изменение баланса
// видны вместе или не видны вовсе.
type Store interface {
	AppendEntry(ctx context.Context, userID, amount int64, reason string) (*Entry, int64, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	ListEntries(ctx context.Context, userID int64, limit int) ([]*Entry, error)
	FindDrift(ctx context.Context) ([]Drift, error)
}

// Service — диспетчер наград.
//
// Идемпотентность здесь НЕ проверяется: каждая фича сама решает,
// было ли уже событие (строка завершения урока, строка голоса),
// и вызывает Award не больше одного раза на событие.
type Service struct {
	store     Store
	publisher events.Publisher
}

// NewService создаёт диспетчер наград.
func NewService(store Store, publisher events.Publisher) *Service {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Service{store: store, publisher: publisher}
}

// Award добавляет одну запись в журнал и меняет баланс на amount.
// Возвращает новый баланс.
//
// Ошибки:
//   - common.ErrInvalidAmount / common.ErrInvalidReason — ничего не записано
//   - common.ErrUserNotFound — пользователя нет, ничего не записано
//   - common.ErrStorageFailure — транзакция не зафиксирована, повтор допустим
//     только после проверки guard-а вызывающей стороны
func (s *Service) Award(ctx context.Context, userID, amount int64, reason string) (int64, error) {
	if amount == 0 {
		return 0, common.ErrInvalidAmount
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return 0, common.ErrInvalidReason
	}

	entry, balance, err := s.store.AppendEntry(ctx, userID, amount, reason)
	if err != nil {
		if !errors.Is(err, common.ErrUserNotFound) {
			log.WithError(err).WithFields(log.Fields{
				"user_id": userID,
				"amount":  amount,
				"reason":  reason,
			}).Error("Начисление кармы не выполнено")
		}
		return 0, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"amount":   amount,
		"reason":   reason,
		"balance":  balance,
		"entry_id": entry.ID,
	}).Info("Карма начислена")

	if err := s.publisher.Publish(ctx, events.Event{
		Type:   events.TypeKarmaAwarded,
		UserID: userID,
		Data: map[string]any{
			"amount":   amount,
			"reason":   reason,
			"balance":  balance,
			"entry_id": entry.ID,
		},
		OccurredAt: entry.CreatedAt,
	}); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Событие начисления не опубликовано")
	}

	return balance, nil
}

// GetBalance возвращает текущий баланс кармы.
func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	return s.store.GetBalance(ctx, userID)
}

// History возвращает последние записи журнала пользователя (новые первыми).
func (s *Service) History(ctx context.Context, userID int64, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	if _, err := s.store.GetBalance(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.ListEntries(ctx, userID, limit)
}

// Reconcile проверяет инвариант sum(журнал) == баланс для всех пользователей.
// Только читает; расхождения логируются и возвращаются.
func (s *Service) Reconcile(ctx context.Context) ([]Drift, error) {
	drifts, err := s.store.FindDrift(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drifts {
		log.WithFields(log.Fields{
			"user_id":    d.UserID,
			"cached":     d.Cached,
			"ledger_sum": d.LedgerSum,
		}).Error("Баланс расходится с журналом")
	}
	log.WithField("drifts", len(drifts)).Info("Сверка журнала завершена")
	return drifts, nil
}
