// Package mocktest — service.go: приём попытки, расчёт награды, начисление.
package mocktest

import (
	"context"
	"fmt"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/events"
)

// Store — хранилище тестов и попыток.
type Store interface {
	CreateMockTest(ctx context.Context, t *MockTest) error
	GetMockTest(ctx context.Context, testID int64) (*MockTest, error)
	SaveAttempt(ctx context.Context, a *Attempt) error
	DeleteAttempt(ctx context.Context, attemptID int64) error
	LatestAttempt(ctx context.Context, userID, testID int64) (*Attempt, error)
	ListAttempts(ctx context.Context, userID, testID int64, limit int) ([]*Attempt, error)
}

// Awarder — диспетчер наград.
type Awarder interface {
	Award(ctx context.Context, userID, amount int64, reason string) (int64, error)
}

type Service struct {
	store          Store
	awarder        Awarder
	publisher      events.Publisher
	defaultPassing float64
}

// NewService создаёт сервис пробных тестов. defaultPassing — порог
// прохождения в процентах для тестов без своего порога.
func NewService(store Store, awarder Awarder, publisher events.Publisher, defaultPassing float64) *Service {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Service{store: store, awarder: awarder, publisher: publisher, defaultPassing: defaultPassing}
}

func (s *Service) passingThreshold(t *MockTest) float64 {
	if t.PassingThreshold > 0 {
		return t.PassingThreshold
	}
	return s.defaultPassing
}

func validScore(score, percentage float64, t *MockTest) bool {
	if math.IsNaN(score) || math.IsNaN(percentage) {
		return false
	}
	if score < 0 || percentage < 0 || percentage > 100 {
		return false
	}
	return t.MaxScore <= 0 || score <= t.MaxScore
}

// RecordAttempt сохраняет попытку и один раз начисляет карму по её результату.
//
// Попытки не защищены от повторов: каждая отправка — новая попытка
// и новое начисление. Если начисление не удалось, попытка удаляется
// и возвращается ошибка, повторная отправка безопасна.
func (s *Service) RecordAttempt(ctx context.Context, userID, testID int64, score, percentage float64) (*Result, error) {
	if testID <= 0 {
		return nil, common.ErrInvalidID
	}

	test, err := s.store.GetMockTest(ctx, testID)
	if err != nil {
		return nil, err
	}
	if !validScore(score, percentage, test) {
		return nil, common.ErrInvalidScore
	}

	status, delta, reason := Evaluate(percentage, s.passingThreshold(test))
	attempt := &Attempt{
		UserID:     userID,
		MockTestID: testID,
		Score:      score,
		Percentage: percentage,
		Status:     status,
		KarmaDelta: delta,
		Reason:     reason,
	}
	if err := s.store.SaveAttempt(ctx, attempt); err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"user_id":    userID,
		"test_id":    testID,
		"attempt_id": attempt.ID,
		"percentage": percentage,
		"status":     status,
	})

	balance, err := s.awarder.Award(ctx, userID, delta, reason)
	if err != nil {
		if delErr := s.store.DeleteAttempt(ctx, attempt.ID); delErr != nil {
			logger.WithError(delErr).Error("Не удалось удалить попытку без начисления")
		}
		return nil, fmt.Errorf("начисление за попытку: %w", err)
	}

	logger.WithField("delta", delta).Info("Попытка пробного теста записана")

	if err := s.publisher.Publish(ctx, events.Event{
		Type:   events.TypeMockTestRecorded,
		UserID: userID,
		Data: map[string]any{
			"test_id":    testID,
			"attempt_id": attempt.ID,
			"status":     string(status),
			"percentage": percentage,
			"delta":      delta,
		},
		OccurredAt: attempt.CompletedAt,
	}); err != nil {
		logger.WithError(err).Warn("Событие попытки не опубликовано")
	}

	return &Result{
		Attempt:    attempt,
		Status:     status,
		KarmaDelta: delta,
		Reason:     reason,
		Balance:    balance,
	}, nil
}

// LatestAttempt возвращает самую позднюю попытку пользователя по тесту.
func (s *Service) LatestAttempt(ctx context.Context, userID, testID int64) (*Attempt, error) {
	if testID <= 0 {
		return nil, common.ErrInvalidID
	}
	if _, err := s.store.GetMockTest(ctx, testID); err != nil {
		return nil, err
	}
	return s.store.LatestAttempt(ctx, userID, testID)
}

// Attempts возвращает попытки пользователя по тесту, новые первыми.
func (s *Service) Attempts(ctx context.Context, userID, testID int64, limit int) ([]*Attempt, error) {
	if testID <= 0 {
		return nil, common.ErrInvalidID
	}
	if _, err := s.store.GetMockTest(ctx, testID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultAttemptsLimit
	}
	if limit > MaxAttemptsLimit {
		limit = MaxAttemptsLimit
	}
	return s.store.ListAttempts(ctx, userID, testID, limit)
}

// CreateMockTest регистрирует тест.
func (s *Service) CreateMockTest(ctx context.Context, title string, maxScore, passingThreshold float64) (*MockTest, error) {
	if maxScore < 0 || passingThreshold < 0 || passingThreshold > 100 {
		return nil, common.ErrInvalidScore
	}
	t := &MockTest{
		Title:            strings.TrimSpace(title),
		MaxScore:         maxScore,
		PassingThreshold: passingThreshold,
	}
	if err := s.store.CreateMockTest(ctx, t); err != nil {
		return nil, err
	}
	log.WithField("test_id", t.ID).Info("Пробный тест зарегистрирован")
	return t, nil
}
