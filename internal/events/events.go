// Package events публикует события вовлечённости (начисления кармы, стрики, голоса).
// Доставка уведомлений — забота подписчиков; ядро только публикует.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Типы событий
const (
	TypeKarmaAwarded      = "karma.awarded"
	TypeStreakUpdated     = "streak.updated"
	TypePostUpvoted       = "post.upvoted"
	TypeMockTestRecorded  = "mocktest.recorded"
	TypeLessonCompleted   = "lesson.completed"
	TypeEnrollmentAwarded = "enrollment.awarded"
)

// Event — одно событие. Data сериализуется как есть.
type Event struct {
	Type       string         `json:"type"`
	UserID     int64          `json:"user_id"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher публикует события. Ошибка публикации никогда не откатывает
// уже зафиксированное изменение — вызывающий только логирует её.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// redisClient — часть *redis.Client, которая нам нужна.
type redisClient interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisPublisher отправляет события в канал Redis Pub/Sub в виде JSON.
type RedisPublisher struct {
	client  redisClient
	channel string
}

// NewRedisPublisher создаёт издателя поверх готового клиента.
func NewRedisPublisher(client redisClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Publish сериализует событие и публикует его в канал.
func (p *RedisPublisher) Publish(ctx context.Context, e Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("ошибка сериализации события %s: %w", e.Type, err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("ошибка публикации события %s: %w", e.Type, err)
	}
	return nil
}

// NewRedisClient создаёт клиента Redis и проверяет соединение.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis недоступен (%s): %w", addr, err)
	}
	log.WithField("addr", addr).Info("Подключение к Redis установлено")
	return client, nil
}

// LogPublisher пишет события в лог. Используется, когда Redis не настроен.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, e Event) error {
	log.WithFields(log.Fields{
		"type":    e.Type,
		"user_id": e.UserID,
		"data":    e.Data,
	}).Debug("Событие")
	return nil
}

// MemoryPublisher копит события в памяти.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (m *MemoryPublisher) Publish(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events возвращает копию накопленных событий.
func (m *MemoryPublisher) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// OfType возвращает события указанного типа.
func (m *MemoryPublisher) OfType(eventType string) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
