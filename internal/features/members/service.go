// Package members — service.go содержит логику регистрации и проверки пользователей.
package members

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/common"
)

// Store — хранилище пользователей.
type Store interface {
	CreateMember(ctx context.Context, m *Member) (bool, error)
	GetMember(ctx context.Context, userID int64) (*Member, error)
	MemberExists(ctx context.Context, userID int64) (bool, error)
	ListMembers(ctx context.Context, limit int) ([]*Member, error)
}

// Service управляет пользователями.
type Service struct {
	store Store
}

// NewService создаёт новый сервис пользователей.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register регистрирует пользователя с внешним id.
// Если пользователь уже есть — обновляет имя, баланс не меняется.
func (s *Service) Register(ctx context.Context, userID int64, displayName string) (*Member, bool, error) {
	if userID <= 0 {
		return nil, false, common.ErrInvalidID
	}
	m := &Member{ID: userID, DisplayName: strings.TrimSpace(displayName)}

	created, err := s.store.CreateMember(ctx, m)
	if err != nil {
		return nil, false, fmt.Errorf("ошибка регистрации пользователя: %w", err)
	}

	if created {
		log.WithFields(log.Fields{
			"user_id": userID,
			"name":    m.DisplayName,
		}).Info("Новый пользователь зарегистрирован")
	} else {
		log.WithField("user_id", userID).Info("Пользователь уже был, обновили имя")
	}
	return m, created, nil
}

// IsMember проверяет, что пользователь зарегистрирован.
// Используется middleware идентификации.
func (s *Service) IsMember(ctx context.Context, userID int64) (bool, error) {
	return s.store.MemberExists(ctx, userID)
}

// Get возвращает пользователя по id.
func (s *Service) Get(ctx context.Context, userID int64) (*Member, error) {
	return s.store.GetMember(ctx, userID)
}

// List возвращает пользователей по убыванию баланса.
func (s *Service) List(ctx context.Context, limit int) ([]*Member, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.store.ListMembers(ctx, limit)
}
