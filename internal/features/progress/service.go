// Package progress — service.go: завершение урока и бонус за зачисление.
package progress

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/events"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/streak"
)

// Store — guard-строки учебных событий.
type Store interface {
	InsertLessonCompletion(ctx context.Context, userID, lessonID int64) (bool, error)
	DeleteLessonCompletion(ctx context.Context, userID, lessonID int64) error
	InsertEnrollmentReward(ctx context.Context, userID, courseID int64) (bool, error)
	DeleteEnrollmentReward(ctx context.Context, userID, courseID int64) error
}

// Awarder — диспетчер наград.
type Awarder interface {
	Award(ctx context.Context, userID, amount int64, reason string) (int64, error)
}

// Toucher — движок стриков.
type Toucher interface {
	Touch(ctx context.Context, userID int64) (*streak.Streak, streak.Transition, error)
}

// Rewards — размеры наград.
type Rewards struct {
	LessonCompletion int64
	EnrollmentBonus  int64
}

type Service struct {
	store     Store
	awarder   Awarder
	streaks   Toucher
	publisher events.Publisher
	rewards   Rewards
}

// NewService создаёт сервис учебных событий. streaks == nil — стрики выключены.
func NewService(store Store, awarder Awarder, streaks Toucher, publisher events.Publisher, rewards Rewards) *Service {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Service{store: store, awarder: awarder, streaks: streaks, publisher: publisher, rewards: rewards}
}

// CompleteLesson засчитывает урок: guard-строка → награда → касание стрика.
//
// Повторное завершение — no-op с AlreadyCompleted. Если награда не прошла,
// guard-строка удаляется, и повтор запроса безопасен. Ошибка стрика
// только логируется.
func (s *Service) CompleteLesson(ctx context.Context, userID, lessonID int64) (*CompletionOutcome, error) {
	if lessonID <= 0 {
		return nil, common.ErrInvalidID
	}
	logger := log.WithFields(log.Fields{"user_id": userID, "lesson_id": lessonID})

	inserted, err := s.store.InsertLessonCompletion(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	out := &CompletionOutcome{UserID: userID, LessonID: lessonID}
	if !inserted {
		out.AlreadyCompleted = true
		out.Message = MsgLessonAlreadyCompleted
		logger.Debug("Урок уже завершён")
		return out, nil
	}

	balance, err := s.awarder.Award(ctx, userID, s.rewards.LessonCompletion, ledger.ReasonLessonCompletion)
	if err != nil {
		if delErr := s.store.DeleteLessonCompletion(ctx, userID, lessonID); delErr != nil {
			logger.WithError(delErr).Error("Не удалось снять guard завершения урока после ошибки начисления")
		}
		return nil, fmt.Errorf("начисление за урок: %w", err)
	}
	out.Completed = true
	out.KarmaAwarded = s.rewards.LessonCompletion
	out.Balance = balance
	out.Message = MsgLessonCompleted

	if s.streaks != nil {
		st, _, err := s.streaks.Touch(ctx, userID)
		if err != nil {
			logger.WithError(err).Warn("Стрик не обновлён после завершения урока")
		} else {
			out.Streak = st
		}
	}

	logger.Info("Урок завершён")
	if err := s.publisher.Publish(ctx, events.Event{
		Type:   events.TypeLessonCompleted,
		UserID: userID,
		Data:   map[string]any{"lesson_id": lessonID, "karma": out.KarmaAwarded},
	}); err != nil {
		logger.WithError(err).Warn("Событие завершения урока не опубликовано")
	}
	return out, nil
}

// OnEnrollmentSucceeded начисляет бонус за успешное зачисление на курс.
// Вызывается платёжным контуром; повторный вызов — no-op.
func (s *Service) OnEnrollmentSucceeded(ctx context.Context, userID, courseID int64) (*EnrollmentOutcome, error) {
	if userID <= 0 || courseID <= 0 {
		return nil, common.ErrInvalidID
	}
	logger := log.WithFields(log.Fields{"user_id": userID, "course_id": courseID})

	inserted, err := s.store.InsertEnrollmentReward(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	out := &EnrollmentOutcome{UserID: userID, CourseID: courseID}
	if !inserted {
		out.AlreadyAwarded = true
		out.Message = MsgEnrollmentAlready
		logger.Debug("Бонус за зачисление уже начислен")
		return out, nil
	}

	balance, err := s.awarder.Award(ctx, userID, s.rewards.EnrollmentBonus, ledger.ReasonEnrollmentBonus)
	if err != nil {
		if delErr := s.store.DeleteEnrollmentReward(ctx, userID, courseID); delErr != nil {
			logger.WithError(delErr).Error("Не удалось снять guard зачисления после ошибки начисления")
		}
		return nil, fmt.Errorf("бонус за зачисление: %w", err)
	}
	out.Awarded = true
	out.KarmaAwarded = s.rewards.EnrollmentBonus
	out.Balance = balance
	out.Message = MsgEnrollmentAwarded

	logger.Info("Бонус за зачисление начислен")
	if err := s.publisher.Publish(ctx, events.Event{
		Type:   events.TypeEnrollmentAwarded,
		UserID: userID,
		Data:   map[string]any{"course_id": courseID, "karma": out.KarmaAwarded},
	}); err != nil {
		logger.WithError(err).Warn("Событие зачисления не опубликовано")
	}
	return out, nil
}
