// Package admin — service.go содержит проверку токена и служебные операции.
package admin

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/edu-engagement/internal/common"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
)

// Ledger — то, что админке нужно от диспетчера наград.
type Ledger interface {
	Award(ctx context.Context, userID, amount int64, reason string) (int64, error)
	Reconcile(ctx context.Context) ([]ledger.Drift, error)
}

// Service управляет служебными операциями.
type Service struct {
	ledger    Ledger
	tokenHash string

	mu       sync.Mutex
	failures  map[string][]time.Time // неудачные попытки по IP
	lastPrune time.Time
	now       func() time.Time
}

// NewService создаёт сервис админки. tokenHash — argon2id-хеш сервисного токена.
func NewService(l Ledger, tokenHash string) *Service {
	return &Service{
		ledger:    l,
		tokenHash: tokenHash,
		failures:  make(map[string][]time.Time),
		now:       time.Now,
	}
}

// VerifyToken проверяет сервисный токен с защитой от перебора:
// MaxFailedAttempts неудач за LockoutWindow блокируют адрес.
func (s *Service) VerifyToken(clientIP, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cutoff := now.Add(-LockoutWindow)
	if now.Sub(s.lastPrune) >= LockoutWindow {
		s.pruneLocked(cutoff)
		s.lastPrune = now
	}

	var recent []time.Time
	for _, t := range s.failures[clientIP] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	if len(recent) >= MaxFailedAttempts {
		s.failures[clientIP] = recent
		return common.ErrRateLimited
	}

	if !verifyArgon2id(token, s.tokenHash) {
		s.failures[clientIP] = append(recent, now)
		log.WithFields(log.Fields{
			"ip":       clientIP,
			"failures": len(recent) + 1,
		}).Warn("Неверный сервисный токен")
		return common.ErrForbidden
	}

	delete(s.failures, clientIP)
	return nil
}

// pruneLocked удаляет адреса без неудач после cutoff. Вызывается под s.mu.
func (s *Service) pruneLocked(cutoff time.Time) {
	for ip, attempts := range s.failures {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(cutoff) {
			delete(s.failures, ip)
		}
	}
}

// AdjustKarma вручную меняет карму через диспетчер. Причина получает
// префикс «admin: », чтобы корректировки были видны в истории.
func (s *Service) AdjustKarma(ctx context.Context, adj Adjustment) (*AdjustmentResult, error) {
	note := strings.TrimSpace(adj.Note)
	if note == "" {
		return nil, common.ErrInvalidReason
	}
	reason := ledger.ReasonAdminPrefix + note

	balance, err := s.ledger.Award(ctx, adj.UserID, adj.Amount, reason)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_id": adj.UserID,
		"amount":  adj.Amount,
		"reason":  reason,
	}).Info("Ручная корректировка кармы")

	return &AdjustmentResult{
		UserID:  adj.UserID,
		Amount:  adj.Amount,
		Reason:  reason,
		Balance: balance,
	}, nil
}

// Reconcile запускает сверку журнала вне расписания.
func (s *Service) Reconcile(ctx context.Context) ([]ledger.Drift, error) {
	return s.ledger.Reconcile(ctx)
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет токен по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(token, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		log.Error("Неподдерживаемая версия Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(token), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравниваем в постоянном времени
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// HashToken строит argon2id-хеш токена в формате, который понимает verifyArgon2id.
func HashToken(token string, salt []byte) string {
	const (
		memory      uint32 = 64 * 1024
		iterations  uint32 = 3
		parallelism uint8  = 2
		keyLength   uint32 = 32
	)
	hash := argon2.IDKey([]byte(token), salt, iterations, memory, parallelism, keyLength)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}
