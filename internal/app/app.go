// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: выбирает хранилище, создаёт сервисы, обработчики,
// HTTP-сервер и планировщик.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/config"
	"serotonyl.ru/edu-engagement/internal/db/memory"
	"serotonyl.ru/edu-engagement/internal/db/postgres"
	"serotonyl.ru/edu-engagement/internal/events"
	"serotonyl.ru/edu-engagement/internal/features/admin"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
	"serotonyl.ru/edu-engagement/internal/features/mocktest"
	"serotonyl.ru/edu-engagement/internal/features/progress"
	"serotonyl.ru/edu-engagement/internal/features/ranking"
	"serotonyl.ru/edu-engagement/internal/features/streak"
	"serotonyl.ru/edu-engagement/internal/features/voting"
	"serotonyl.ru/edu-engagement/internal/jobs"
	"serotonyl.ru/edu-engagement/internal/server"
)

// App содержит все компоненты приложения.
type App struct {
	Server    *server.Server
	Scheduler *jobs.Scheduler

	// Сервисы доступны для тестов и скриптов.
	Members  *members.Service
	Ledger   *ledger.Service
	Streaks  *streak.Service
	Ranking  *ranking.Service
	Voting   *voting.Service
	MockTest *mocktest.Service
	Progress *progress.Service
	Admin    *admin.Service

	closers []func()
}

// Stores — реализации хранилищ всех фич.
type Stores struct {
	Members   members.Store
	Ledger    ledger.Store
	Streaks   streak.Store
	Ranking   ranking.Store
	Voting    voting.Store
	MockTests mocktest.Store
	Progress  progress.Store
	Health    server.HealthFunc
}

// MemoryStores — все хранилища поверх одного memory.DB.
func MemoryStores(db *memory.DB) Stores {
	return Stores{
		Members:   db,
		Ledger:    db,
		Streaks:   db,
		Ranking:   db,
		Voting:    db,
		MockTests: db,
		Progress:  db,
	}
}

// PostgresStores — репозитории поверх пула.
func PostgresStores(pool *pgxpool.Pool) Stores {
	return Stores{
		Members:   members.NewRepository(pool),
		Ledger:    ledger.NewRepository(pool),
		Streaks:   streak.NewRepository(pool),
		Ranking:   ranking.NewRepository(pool),
		Voting:    voting.NewRepository(pool),
		MockTests: mocktest.NewRepository(pool),
		Progress:  progress.NewRepository(pool),
		Health:    pool.Ping,
	}
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// === 1. Хранилище ===
	var stores Stores
	switch cfg.StorageDriver {
	case config.StorageMemory:
		log.Warn("Хранилище в памяти: данные пропадут при рестарте")
		stores = MemoryStores(memory.New())
	default:
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := postgres.RunMigrations(ctx, pool, Migrations); err != nil {
			closeAll()
			return nil, fmt.Errorf("ошибка миграций: %w", err)
		}
		stores = PostgresStores(pool)
	}

	// === 2. События ===
	var publisher events.Publisher = events.LogPublisher{}
	if cfg.RedisAddr != "" {
		client, err := events.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// События не критичны: без Redis пишем их в лог.
			log.WithError(err).Warn("Redis недоступен, события пишутся в лог")
		} else {
			closers = append(closers, func() { closeRedis(client) })
			publisher = events.NewRedisPublisher(client, cfg.EventsChannel)
		}
	}

	a := Build(cfg, stores, publisher)
	a.closers = closers
	return a, nil
}

// Build собирает сервисы, обработчики, сервер и планировщик поверх готовых хранилищ.
func Build(cfg *config.Config, stores Stores, publisher events.Publisher) *App {
	loc := cfg.Location()

	// === Сервисы ===
	memberService := members.NewService(stores.Members)
	ledgerService := ledger.NewService(stores.Ledger, publisher)

	var transform ranking.Transform = ranking.IdentityTransform
	if cfg.RankingDisplayScaling {
		transform = ranking.InflatedTransform(cfg.RankingRankFactor, cfg.RankingVirtualPopulation)
	}
	rankingService := ranking.NewService(stores.Ranking, transform)

	var streakService *streak.Service
	var toucher progress.Toucher
	if cfg.FeatureStreaksEnabled {
		streakService = streak.NewService(stores.Streaks, publisher, loc)
		toucher = streakService
	}

	progressService := progress.NewService(stores.Progress, ledgerService, toucher, publisher, progress.Rewards{
		LessonCompletion: cfg.RewardLessonCompletion,
		EnrollmentBonus:  cfg.RewardEnrollmentBonus,
	})
	votingService := voting.NewService(stores.Voting, ledgerService, publisher, cfg.RewardPostUpvote)
	mockTestService := mocktest.NewService(stores.MockTests, ledgerService, publisher, cfg.MockTestDefaultPassing)
	adminService := admin.NewService(ledgerService, cfg.AdminTokenHash)

	// === Обработчики ===
	handlers := server.Handlers{
		Members:  members.NewHandler(memberService),
		Ledger:   ledger.NewHandler(ledgerService),
		Ranking:  ranking.NewHandler(rankingService),
		Progress: progress.NewHandler(progressService),
		Admin:    admin.NewHandler(adminService),
	}
	if streakService != nil {
		handlers.Streak = streak.NewHandler(streakService)
	}
	if cfg.FeatureVotingEnabled {
		handlers.Voting = voting.NewHandler(votingService)
	}
	if cfg.FeatureMockTestsEnabled {
		handlers.MockTest = mocktest.NewHandler(mockTestService)
	}

	srv := server.New(cfg, server.Deps{
		Members:     memberService,
		VerifyToken: adminService.VerifyToken,
		Health:      stores.Health,
	}, handlers)

	// === Планировщик задач ===
	scheduler := jobs.NewScheduler(ledgerService, cfg.ReconcileCron, loc)

	return &App{
		Server:    srv,
		Scheduler: scheduler,
		Members:   memberService,
		Ledger:    ledgerService,
		Streaks:   streakService,
		Ranking:   rankingService,
		Voting:    votingService,
		MockTest:  mockTestService,
		Progress:  progressService,
		Admin:     adminService,
	}
}

// Close освобождает соединения в обратном порядке.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func closeRedis(client *redis.Client) {
	if err := client.Close(); err != nil {
		log.WithError(err).Warn("Ошибка закрытия Redis")
	}
}
