// Package config загружает конфигурацию сервиса из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- HTTP ---
	HTTPAddr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	HTTPWriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	HTTPShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"20s"`

	// --- Storage ---
	// memory — только для локальной разработки и тестов, данные живут до рестарта.
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"engagement"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"edu_engagement"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Redis (публикация событий) ---
	RedisAddr     string `envconfig:"REDIS_ADDR" default:""`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	EventsChannel string `envconfig:"EVENTS_CHANNEL" default:"engagement.events"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Rewards ---
	RewardLessonCompletion int64 `envconfig:"REWARD_LESSON_COMPLETION" default:"50"`
	RewardEnrollmentBonus  int64 `envconfig:"REWARD_ENROLLMENT_BONUS" default:"25"`
	RewardPostUpvote       int64 `envconfig:"REWARD_POST_UPVOTE" default:"10"`

	// --- Mock tests ---
	// Порог прохождения, если у теста он не задан.
	MockTestDefaultPassing float64 `envconfig:"MOCKTEST_DEFAULT_PASSING" default:"40"`

	// --- Ranking ---
	// Презентационное масштабирование ранга. Выключено по умолчанию.
	RankingDisplayScaling    bool  `envconfig:"RANKING_DISPLAY_SCALING" default:"false"`
	RankingRankFactor        int64 `envconfig:"RANKING_RANK_FACTOR" default:"7"`
	RankingVirtualPopulation int64 `envconfig:"RANKING_VIRTUAL_POPULATION" default:"25000"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"30"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Admin ---
	// Argon2id-хеш токена админки и внутренних вызовов (scripts/generate_hash.go).
	AdminTokenHash string `envconfig:"ADMIN_TOKEN_HASH" required:"true"`

	// --- Jobs ---
	ReconcileCron string `envconfig:"RECONCILE_CRON" default:"30 3 * * *"`

	// --- Feature Flags ---
	FeatureStreaksEnabled   bool `envconfig:"FEATURE_STREAKS_ENABLED" default:"true"`
	FeatureVotingEnabled    bool `envconfig:"FEATURE_VOTING_ENABLED" default:"true"`
	FeatureMockTestsEnabled bool `envconfig:"FEATURE_MOCKTESTS_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс, по которому режутся сутки для стриков.
// Если пояс не загрузился — UTC+3, как и раньше.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("STORAGE_DRIVER должен быть %q или %q, получено %q", StoragePostgres, StorageMemory, c.StorageDriver)
	}
	if c.RewardLessonCompletion <= 0 || c.RewardEnrollmentBonus <= 0 || c.RewardPostUpvote <= 0 {
		return fmt.Errorf("REWARD_* должны быть > 0")
	}
	if c.MockTestDefaultPassing < 0 || c.MockTestDefaultPassing > 100 {
		return fmt.Errorf("MOCKTEST_DEFAULT_PASSING должен быть в диапазоне [0, 100]")
	}
	if c.RankingDisplayScaling && (c.RankingRankFactor <= 0 || c.RankingVirtualPopulation <= 0) {
		return fmt.Errorf("RANKING_RANK_FACTOR и RANKING_VIRTUAL_POPULATION должны быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS/RATE_LIMIT_WINDOW должны быть > 0")
	}
	if !strings.HasPrefix(c.AdminTokenHash, "$argon2id$") {
		return fmt.Errorf("ADMIN_TOKEN_HASH должен быть argon2id-хешем")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
