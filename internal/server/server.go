// Package server собирает HTTP API: роутер gin, группы маршрутов,
// middleware и graceful shutdown.
//
// Группы:
//
//	/healthz       — проверка живости (без идентификации)
//	/api/v1        — пользовательские маршруты, X-User-ID + rate limit
//	/api/v1/me     — данные текущего пользователя
//	/internal      — вызовы других сервисов по X-Service-Token
//	/admin         — служебные операции по X-Service-Token
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/edu-engagement/internal/config"
	"serotonyl.ru/edu-engagement/internal/features/admin"
	"serotonyl.ru/edu-engagement/internal/features/ledger"
	"serotonyl.ru/edu-engagement/internal/features/members"
	"serotonyl.ru/edu-engagement/internal/features/mocktest"
	"serotonyl.ru/edu-engagement/internal/features/progress"
	"serotonyl.ru/edu-engagement/internal/features/ranking"
	"serotonyl.ru/edu-engagement/internal/features/streak"
	"serotonyl.ru/edu-engagement/internal/features/voting"
	"serotonyl.ru/edu-engagement/internal/server/middleware"
	"serotonyl.ru/edu-engagement/internal/server/response"
)

// Handlers — обработчики фич. nil — фича выключена, маршруты не регистрируются.
type Handlers struct {
	Members  *members.Handler
	Ledger   *ledger.Handler
	Streak   *streak.Handler
	Ranking  *ranking.Handler
	Voting   *voting.Handler
	MockTest *mocktest.Handler
	Progress *progress.Handler
	Admin    *admin.Handler
}

// HealthFunc проверяет доступность хранилища.
type HealthFunc func(ctx context.Context) error

// Deps — всё, что нужно роутеру помимо обработчиков.
type Deps struct {
	Members     middleware.MemberChecker
	VerifyToken middleware.TokenVerifier
	Health      HealthFunc
}

// Server — HTTP-сервер API.
type Server struct {
	engine  *gin.Engine
	http    *http.Server
	limiter *middleware.RateLimiter

	shutdownTimeout time.Duration
}

// New строит роутер и HTTP-сервер.
func New(cfg *config.Config, deps Deps, h Handlers) *Server {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	engine := newRouter(deps, h, limiter)

	return &Server{
		engine:  engine,
		limiter: limiter,
		http: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      engine,
			ReadTimeout:  cfg.HTTPReadTimeout,
			WriteTimeout: cfg.HTTPWriteTimeout,
		},
		shutdownTimeout: cfg.HTTPShutdownTimeout,
	}
}

func newRouter(deps Deps, h Handlers, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(), middleware.AccessLog())

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, errors.New("маршрут не найден"))
	})
	r.GET("/healthz", healthHandler(deps.Health))

	api := r.Group("/api/v1", middleware.Identity(deps.Members), limiter.Middleware())
	me := api.Group("/me")

	if h.Ledger != nil {
		h.Ledger.Register(me)
	}
	if h.Ranking != nil {
		h.Ranking.Register(me)
	}
	if h.Streak != nil {
		h.Streak.Register(me)
	}
	if h.Progress != nil {
		h.Progress.Register(api)
	}
	if h.Voting != nil {
		h.Voting.Register(api)
	}
	if h.MockTest != nil {
		h.MockTest.Register(api)
	}

	internal := r.Group("/internal", middleware.RequireToken(deps.VerifyToken))
	if h.Progress != nil {
		h.Progress.RegisterInternal(internal)
	}

	adm := r.Group("/admin", middleware.RequireToken(deps.VerifyToken))
	if h.Admin != nil {
		h.Admin.Register(adm)
	}
	if h.Members != nil {
		h.Members.Register(adm)
	}
	if h.Voting != nil {
		h.Voting.RegisterAdmin(adm)
	}
	if h.MockTest != nil {
		h.MockTest.RegisterAdmin(adm)
	}

	return r
}

func healthHandler(check HealthFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.WithError(err).Warn("Проверка здоровья не пройдена")
				response.Error(c, http.StatusServiceUnavailable, response.CodeStorage, errors.New("хранилище недоступно"))
				return
			}
		}
		response.OK(c, gin.H{"status": "ok"})
	}
}

// Handler возвращает роутер (для тестов).
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start слушает адрес до вызова Shutdown. http.ErrServerClosed ошибкой не считается.
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP API запущен")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown дожидается активных запросов, но не дольше HTTP_SHUTDOWN_TIMEOUT.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.limiter.Close()

	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(ctx); err != nil {
		return err
	}
	log.Info("HTTP API остановлен")
	return nil
}
