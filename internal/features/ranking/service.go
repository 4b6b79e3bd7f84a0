// Package ranking — service.go: расчёт позиции с отображаемым преобразованием.
package ranking

import (
	"context"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Store — агрегатное чтение балансов.
type Store interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	CountAbove(ctx context.Context, balance int64) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Service считает позицию пользователя.
type Service struct {
	store     Store
	transform Transform
}

// NewService создаёт сервис позиций. transform == nil — без масштабирования.
func NewService(store Store, transform Transform) *Service {
	if transform == nil {
		transform = IdentityTransform
	}
	return &Service{store: store, transform: transform}
}

// TrueRank возвращает истинную позицию без отображаемого преобразования.
func (s *Service) TrueRank(ctx context.Context, userID int64) (Standing, error) {
	balance, err := s.store.GetBalance(ctx, userID)
	if err != nil {
		return Standing{}, err
	}

	var above, population int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		above, err = s.store.CountAbove(gctx, balance)
		return err
	})
	g.Go(func() error {
		var err error
		population, err = s.store.CountUsers(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Standing{}, err
	}

	return TrueStanding(userID, balance, above, population), nil
}

// Rank возвращает позицию для отображения. Если преобразование вернуло
// ошибку, отдаётся истинная позиция.
func (s *Service) Rank(ctx context.Context, userID int64) (Standing, error) {
	standing, err := s.TrueRank(ctx, userID)
	if err != nil {
		return Standing{}, err
	}

	shown, err := s.transform.Apply(standing)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Масштабирование позиции не применено")
		return standing, nil
	}
	return shown, nil
}
