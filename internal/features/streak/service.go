// Package streak — service.go содержит движок стриков.
// Касание (Touch) вызывается на любую засчитываемую активность, чаще всего
// на завершение урока.
package streak

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/events"
)

// ApplyFunc получает текущее состояние (nil, если записи нет) и возвращает
// новое. При save == false хранилище ничего не пишет.
// Может вызываться повторно, если хранилище повторяет транзакцию.
type ApplyFunc func(prev *Streak) (next Streak, save bool)

// Store — хранилище стриков. ApplyStreak обязан сериализовать вызовы
// для одного пользователя.
type Store interface {
	ApplyStreak(ctx context.Context, userID int64, fn ApplyFunc) (*Streak, error)
	GetStreak(ctx context.Context, userID int64) (*Streak, error)
}

// Service — движок стриков.
type Service struct {
	store     Store
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time
}

// NewService создаёт движок стриков. Сутки режутся в часовом поясе loc.
func NewService(store Store, publisher events.Publisher, loc *time.Location) *Service {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, publisher: publisher, loc: loc, now: time.Now}
}

// WithClock подменяет источник времени.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Touch засчитывает активность пользователя за сегодня.
// Повторное касание в тот же день ничего не меняет.
func (s *Service) Touch(ctx context.Context, userID int64) (*Streak, Transition, error) {
	today := common.TruncateDay(s.now(), s.loc)

	var transition Transition
	st, err := s.store.ApplyStreak(ctx, userID, func(prev *Streak) (Streak, bool) {
		next, t := Advance(prev, userID, today)
		transition = t
		return next, t.Changed()
	})
	if err != nil {
		return nil, "", err
	}

	logger := log.WithFields(log.Fields{
		"user_id":    userID,
		"streak":     st.CurrentStreak,
		"transition": transition,
	})
	switch {
	case transition == TransitionSkew:
		logger.WithField("last_activity", st.LastActivityDate.Format(time.DateOnly)).
			Warn("Последняя активность в будущем, стрик не изменён")
	case transition.Changed():
		logger.Info("Стрик обновлён")
		if err := s.publisher.Publish(ctx, events.Event{
			Type:   events.TypeStreakUpdated,
			UserID: userID,
			Data: map[string]any{
				"current":    st.CurrentStreak,
				"longest":    st.LongestStreak,
				"transition": string(transition),
			},
		}); err != nil {
			logger.WithError(err).Warn("Событие стрика не опубликовано")
		}
	default:
		logger.Debug("Активность за сегодня уже засчитана")
	}

	return st, transition, nil
}

// Get возвращает стрик пользователя. Если активности ещё не было —
// нулевую серию без даты.
func (s *Service) Get(ctx context.Context, userID int64) (*Streak, error) {
	st, err := s.store.GetStreak(ctx, userID)
	if errors.Is(err, common.ErrStreakNotFound) {
		return &Streak{UserID: userID}, nil
	}
	return st, err
}

// IsActiveToday сообщает, засчитана ли активность за сегодня.
func (s *Service) IsActiveToday(st *Streak) bool {
	if st == nil || st.CurrentStreak == 0 {
		return false
	}
	return common.DaysBetween(st.LastActivityDate, common.TruncateDay(s.now(), s.loc)) == 0
}
